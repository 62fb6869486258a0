package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	DataDir     string
	DatabaseURL string
	JWTSecret   string
	TokenTTL    time.Duration
	LogFile     string
	CORSOrigin  string
}

// Load reads configuration from the environment, after merging an optional
// .env file. Every value has a development default; DATABASE_URL selects the
// Postgres snapshot adapter when set.
func Load() Config {
	_ = godotenv.Load()

	ttlHours, err := strconv.Atoi(getEnv("TOKEN_TTL_HOURS", "168"))
	if err != nil || ttlHours <= 0 {
		ttlHours = 168
	}

	return Config{
		Port:        getEnv("PORT", "8080"),
		DataDir:     getEnv("DATA_DIR", "data"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		JWTSecret:   getEnv("JWT_SECRET", "tasktraq-jwt-secret-change-in-production"),
		TokenTTL:    time.Duration(ttlHours) * time.Hour,
		LogFile:     getEnv("LOG_FILE", "./logs/app.log"),
		CORSOrigin:  getEnv("CORS_ORIGIN", "http://localhost:3000"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
