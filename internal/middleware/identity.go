package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/ItsOuaail/aptiv-interns-platform/internal/models"
	appErrors "github.com/ItsOuaail/aptiv-interns-platform/pkg/errors"
	"github.com/ItsOuaail/aptiv-interns-platform/pkg/response"
)

// ContextActorKey is the gin context key storing the acting *models.User.
const ContextActorKey = "currentActor"

// ActorResolver maps validated claims to a stored user, creating it on first sight.
type ActorResolver interface {
	Resolve(ctx context.Context, claims *models.JWTClaims) (*models.User, error)
}

// Identity resolves the acting user once per request. It must run after JWT.
func Identity(resolver ActorResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := Claims(c)
		if claims == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		user, err := resolver.Resolve(c.Request.Context(), claims)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		c.Set(ContextActorKey, user)
		c.Next()
	}
}

// Actor returns the resolved acting user, or nil when Identity did not run.
func Actor(c *gin.Context) *models.User {
	value, exists := c.Get(ContextActorKey)
	if !exists {
		return nil
	}
	user, _ := value.(*models.User)
	return user
}
