package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tasktraq/backend/auth"
	"github.com/tasktraq/backend/models"
)

const userContextKey = "user"

// Auth resolves the bearer credential and injects the user into the request
// context. Handlers behind it never see the token.
func Auth(service *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}

		user, err := service.ResolveUser(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

// CurrentUser returns the user injected by Auth.
func CurrentUser(c *gin.Context) models.User {
	v, _ := c.Get(userContextKey)
	user, _ := v.(models.User)
	return user
}
