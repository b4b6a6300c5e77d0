package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"gopherchat/internal/app"
	"gopherchat/internal/model"
	"gopherchat/internal/pkg/jwtutil"
	"gopherchat/internal/transport/http/response"
)

const ContextUserKey = "current_user"

// AuthBearer is the single authentication gate: it verifies the bearer
// token's signature and expiry, then resolves the subject email to a stored
// user. Every failure collapses to a 401.
func AuthBearer(secret string, authService *app.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		if authHeader == "" {
			response.Unauthorized(c, "Not authenticated")
			c.Abort()
			return
		}

		const prefix = "Bearer "
		if !strings.HasPrefix(authHeader, prefix) {
			response.Unauthorized(c, "Not authenticated")
			c.Abort()
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, prefix))
		claims, err := jwtutil.ParseToken(secret, token)
		if err != nil {
			response.Unauthorized(c, "Could not validate credentials")
			c.Abort()
			return
		}

		user, err := authService.ResolveUser(claims.Subject)
		if err != nil {
			response.Unauthorized(c, "Could not validate credentials")
			c.Abort()
			return
		}

		c.Set(ContextUserKey, user)
		c.Next()
	}
}

// CurrentUser returns the user the auth middleware resolved for this request.
func CurrentUser(c *gin.Context) (*model.User, bool) {
	userAny, exists := c.Get(ContextUserKey)
	if !exists {
		return nil, false
	}
	user, ok := userAny.(*model.User)
	return user, ok
}
