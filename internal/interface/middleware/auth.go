package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-auth-service/internal/application"
	"github.com/oksasatya/go-auth-service/internal/domain/apperror"
	"github.com/oksasatya/go-auth-service/pkg/response"
)

const CtxUserIDKey = "userID"

// Authorizer resolves a presented token to a user id.
type Authorizer interface {
	Authorize(ctx context.Context, token string) (int64, error)
}

// BearerAuth reads the Authorization header, authorizes the token and injects the user id into the context.
// A missing token is answered with 401, a token that fails verification with 403.
func BearerAuth(authz Authorizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, err := authz.Authorize(c.Request.Context(), BearerToken(c.GetHeader("Authorization")))
		if err != nil {
			switch {
			case errors.Is(err, application.ErrMissingToken):
				response.Error[any](c, http.StatusUnauthorized, "no token provided", nil)
			case errors.Is(err, apperror.ErrAuthentication):
				response.Error[any](c, http.StatusForbidden, "failed to authenticate token", nil)
			default:
				response.Error[any](c, http.StatusInternalServerError, "internal error", nil)
			}
			return
		}
		c.Set(CtxUserIDKey, uid)
		c.Next()
	}
}

// BearerToken extracts the token from an Authorization header value.
// Both "Bearer <token>" and a bare token are accepted.
func BearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	if strings.EqualFold(header, "bearer") {
		return ""
	}
	return header
}
