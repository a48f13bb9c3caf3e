package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/guildroster/roster_backend/models"
	"github.com/guildroster/roster_backend/utils"
)

// RequireAuth rejects requests that SessionMiddleware did not authenticate.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		guildId, ok := utils.GetGuildIdFromContext(c.Request.Context())
		if !ok || guildId == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}

// RequireWriter lets officers and admins through on mutating methods.
func RequireWriter() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}
		role, _ := utils.GetUserRoleFromContext(c.Request.Context())
		if !models.UserRole(role).CanWrite() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}

// RequireAdmin guards user management.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, _ := utils.GetUserRoleFromContext(c.Request.Context())
		if models.UserRole(role) != models.UserRoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}
