// Package handlers holds the HTTP surface: thin gin handlers that validate
// input, call the services and serialize results.
package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tasktraq/backend/analytics"
	"github.com/tasktraq/backend/apperr"
	"github.com/tasktraq/backend/auth"
	"github.com/tasktraq/backend/habits"
	"github.com/tasktraq/backend/utils"
)

type API struct {
	Auth     *auth.Service
	Registry *habits.Registry
	Engine   *analytics.Engine
	Logger   *zap.Logger
}

// respondError maps the error taxonomy onto HTTP statuses. Anything outside
// the taxonomy is an internal error and is logged, never echoed.
func (a *API) respondError(c *gin.Context, err error) {
	var validationErr *apperr.ValidationError
	var notFoundErr *apperr.NotFoundError
	var authErr *apperr.AuthError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Message})
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, gin.H{"error": notFoundErr.Message})
	case errors.As(err, &authErr):
		c.JSON(http.StatusUnauthorized, gin.H{"error": authErr.Message})
	default:
		a.Logger.Error("request_failed",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		utils.ErrorCount.WithLabelValues(c.FullPath(), "internal").Inc()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// yearMonthQuery reads year/month query params, defaulting to the current
// date.
func yearMonthQuery(c *gin.Context) (int, int, error) {
	now := time.Now()

	year, err := strconv.Atoi(c.DefaultQuery("year", strconv.Itoa(now.Year())))
	if err != nil {
		return 0, 0, apperr.Validation("Invalid year")
	}
	month, err := strconv.Atoi(c.DefaultQuery("month", strconv.Itoa(int(now.Month()))))
	if err != nil || month < 1 || month > 12 {
		return 0, 0, apperr.Validation("Invalid month")
	}
	return year, month, nil
}

func currentYear() int {
	return time.Now().Year()
}

func (a *API) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
