package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/pos_backend/models"
	"github.com/mmdatafocus/pos_backend/utils"
)

const currentUserKey = "currentUser"

// AuthMiddleware requires a bearer access token and stores the caller on the request context.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.Request.Header.Get("Authorization")
		const bearer = "Bearer "
		if len(auth) <= len(bearer) || !strings.EqualFold(auth[:len(bearer)], bearer) {
			c.Header("WWW-Authenticate", "Bearer")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": utils.ErrUnauthorized.Error()})
			return
		}
		token := strings.TrimSpace(auth[len(bearer):])

		user, claim, err := models.AuthenticateToken(c.Request.Context(), token)
		if err != nil {
			c.Header("WWW-Authenticate", "Bearer")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": utils.ErrUnauthorized.Error()})
			return
		}

		ctx := utils.SetTokenInContext(c.Request.Context(), token)
		ctx = utils.SetTokenIdInContext(ctx, claim.Id)
		ctx = utils.SetUsernameInContext(ctx, user.Username)
		ctx = utils.SetUserIdInContext(ctx, user.ID)
		ctx = utils.SetRoleInContext(ctx, user.RoleName())
		c.Request = c.Request.WithContext(ctx)
		c.Set(currentUserKey, user)
		c.Next()
	}
}

// RequireRoles aborts with 403 unless the caller holds one of roles.
func RequireRoles(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, _ := utils.GetRoleFromContext(c.Request.Context())
		for _, r := range roles {
			if r == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": utils.ErrForbidden.Error()})
	}
}

// CurrentUser is the user AuthMiddleware resolved for this request, or nil.
func CurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get(currentUserKey)
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}
