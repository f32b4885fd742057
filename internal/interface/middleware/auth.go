package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-ddd-task-tracker/internal/application"
	"github.com/oksasatya/go-ddd-task-tracker/pkg/apperror"
	"github.com/oksasatya/go-ddd-task-tracker/pkg/response"
)

const ctxIdentity = "identity"

// IdentitySource resolves a bearer token to the caller.
type IdentitySource interface {
	Resolve(ctx context.Context, token string) (application.Identity, error)
}

// Auth requires "Authorization: Bearer <token>" and stores the resolved
// identity in the Gin context. Every rejection is the same 401.
func Auth(src IdentitySource) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			response.Fail(c, apperror.New(apperror.KindUnauthorized, response.MsgCouldNotValidate))
			return
		}
		id, err := src.Resolve(c.Request.Context(), token)
		if err != nil {
			response.Fail(c, err)
			return
		}
		c.Set(ctxIdentity, id)
		c.Next()
	}
}

// IdentityFrom returns the identity stored by Auth.
func IdentityFrom(c *gin.Context) (application.Identity, bool) {
	v, ok := c.Get(ctxIdentity)
	if !ok {
		return application.Identity{}, false
	}
	id, ok := v.(application.Identity)
	return id, ok
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
