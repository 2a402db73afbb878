// Package auth carries the authenticated actor through a request. Real
// authentication lives in front of this service; the middleware here only
// trusts the identity headers that layer injects.
package auth

import "github.com/gin-gonic/gin"

type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleSecretary Role = "SECRETARY"
)

type Actor struct {
	ID              string
	Role            Role
	LinkedAccountID string
}

const contextKey = "actor"

// Middleware reads X-User-Id, X-User-Role and X-Account-Id into an Actor.
// An absent or unknown role falls back to ADMIN, matching the dev setup.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := Actor{
			ID:              c.GetHeader("X-User-Id"),
			Role:            RoleAdmin,
			LinkedAccountID: c.GetHeader("X-Account-Id"),
		}
		if r := Role(c.GetHeader("X-User-Role")); r == RoleSecretary {
			actor.Role = r
		}
		c.Set(contextKey, actor)
		c.Next()
	}
}

func FromContext(c *gin.Context) Actor {
	if v, ok := c.Get(contextKey); ok {
		if a, ok := v.(Actor); ok {
			return a
		}
	}
	return Actor{Role: RoleAdmin}
}
