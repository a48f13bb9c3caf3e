package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/guildroster/roster_backend/models"
	"github.com/guildroster/roster_backend/utils"
)

// bearerToken accepts the token header or an Authorization bearer.
func bearerToken(c *gin.Context) string {
	if token := strings.TrimSpace(c.Request.Header.Get("token")); token != "" {
		return token
	}
	auth := c.Request.Header.Get("Authorization")
	const bearer = "Bearer "
	if len(auth) > len(bearer) && strings.EqualFold(auth[:len(bearer)], bearer) {
		return strings.TrimSpace(auth[len(bearer):])
	}
	return ""
}

// SessionMiddleware resolves the token to a user and puts the guild, user and
// role into the request context. Requests without a token pass through.
func SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.Next()
			return
		}
		claims, err := utils.JwtValidate(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		user, err := models.GetSessionUser(c.Request.Context(), token)
		if err != nil || user.ID != claims.ID || user.GuildId != claims.GuildId {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		ctx := utils.SetTokenInContext(c.Request.Context(), token)
		ctx = utils.SetUsernameInContext(ctx, user.Username)
		ctx = utils.SetUserIdInContext(ctx, user.ID)
		ctx = utils.SetGuildIdInContext(ctx, user.GuildId)
		ctx = utils.SetUserRoleInContext(ctx, string(user.Role))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
