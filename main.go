package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/tasktraq/backend/analytics"
	"github.com/tasktraq/backend/auth"
	"github.com/tasktraq/backend/config"
	"github.com/tasktraq/backend/habits"
	"github.com/tasktraq/backend/handlers"
	"github.com/tasktraq/backend/middleware"
	"github.com/tasktraq/backend/store"
	"github.com/tasktraq/backend/utils"
)

func main() {
	cfg := config.Load()

	utils.InitLogger(cfg.LogFile)
	defer utils.Logger.Sync()
	utils.InitMetrics()

	utils.Logger.Info("starting_application")

	snap, err := openSnapshotter(cfg)
	if err != nil {
		utils.Logger.Fatal("store_init_failed", zap.Error(err))
	}
	st := store.Open(snap, utils.Logger)

	authService := auth.NewService(st, cfg.JWTSecret, cfg.TokenTTL, utils.Logger)
	registry := habits.NewRegistry(st, utils.Logger)
	engine := analytics.NewEngine(st)

	api := &handlers.API{
		Auth:     authService,
		Registry: registry,
		Engine:   engine,
		Logger:   utils.Logger,
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(middleware.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.SecurityHeaders())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.CORSOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", api.Health)
	r.POST("/auth/register", api.Register)
	r.POST("/auth/login", api.Login)

	authed := r.Group("/")
	authed.Use(middleware.Auth(authService))
	{
		authed.GET("/habits", api.ListHabits)
		authed.POST("/habits", api.CreateHabit)
		authed.PUT("/habits/:id", api.UpdateHabit)
		authed.DELETE("/habits/:id", api.DeleteHabit)
		authed.PUT("/habits/:id/day/:date", api.ToggleDay)

		authed.GET("/dashboard", api.Dashboard)
		authed.GET("/dashboard/trend", api.Trend)
		authed.GET("/dashboard/today", api.Today)
		authed.GET("/calendar", api.Calendar)
	}

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	startServer(r, cfg.Port)
}

func openSnapshotter(cfg config.Config) (store.Snapshotter, error) {
	if cfg.DatabaseURL != "" {
		utils.Logger.Info("using_postgres_store")
		return store.NewPostgresSnapshotter(cfg.DatabaseURL)
	}
	utils.Logger.Info("using_file_store", zap.String("dir", cfg.DataDir))
	return store.NewFileSnapshotter(cfg.DataDir)
}

func startServer(router *gin.Engine, port string) {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	utils.Logger.Info("starting_http_server", zap.String("port", port))
	fmt.Printf("TaskTraQ backend listening on http://localhost:%s\n", port)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			utils.Logger.Fatal("http_server_failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	utils.Logger.Info("shutting_down_server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		utils.Logger.Fatal("server_forced_shutdown", zap.Error(err))
	}

	utils.Logger.Info("server_stopped")
}
