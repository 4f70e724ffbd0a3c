package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/vpms/internal/domain/entity"
	"github.com/oksasatya/vpms/internal/domain/policy"
	"github.com/oksasatya/vpms/pkg/apperror"
)

const (
	CtxCurrentUser = "currentUser"
	CtxUserID      = "userID"
	CtxUserRole    = "userRole"
)

// Authenticator resolves a bearer token to an active user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*entity.User, error)
}

// Auth requires "Authorization: Bearer <token>" and stores the resolved user
// in the Gin context under CtxCurrentUser, CtxUserID and CtxUserRole.
func Auth(a Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			abortWith(c, apperror.Unauthenticated("missing bearer token"))
			return
		}
		u, err := a.Authenticate(c.Request.Context(), token)
		if err != nil {
			abortWith(c, err)
			return
		}
		c.Set(CtxCurrentUser, u)
		c.Set(CtxUserID, u.ID)
		c.Set(CtxUserRole, string(u.Role))
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// RequireRoles lets the request through only for the listed roles. It must run after Auth.
func RequireRoles(roles ...entity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := CurrentUser(c)
		if u == nil {
			abortWith(c, apperror.Unauthenticated("authentication required"))
			return
		}
		for _, r := range roles {
			if u.Role == r {
				c.Next()
				return
			}
		}
		abortWith(c, apperror.Forbidden("insufficient role"))
	}
}

// CurrentUser returns the user set by Auth, or nil.
func CurrentUser(c *gin.Context) *entity.User {
	v, ok := c.Get(CtxCurrentUser)
	if !ok {
		return nil
	}
	u, _ := v.(*entity.User)
	return u
}

// Actor is the policy view of the current user.
func Actor(c *gin.Context) policy.Actor {
	return policy.ActorOf(CurrentUser(c))
}

// abortWith records err for ErrorHandler and stops the chain.
func abortWith(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
