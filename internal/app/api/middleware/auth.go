package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/petrelhq/petrel/internal/app/service/session"
	"github.com/petrelhq/petrel/pkg/auth"
	cfgpkg "github.com/petrelhq/petrel/pkg/config"
	"github.com/petrelhq/petrel/pkg/logctx"
	"github.com/petrelhq/petrel/pkg/response"
)

const sessionKey = "session"

// AuthMiddleware validates the bearer token and builds a fresh
// request-scoped session handle. Token validation failure is fatal for the
// request: no handle is constructed and the protected handler never runs.
func AuthMiddleware(cfg *cfgpkg.Config, factory *session.Factory, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				response.ErrorT[any](response.APIResponseCodeUnauthorized, nil))
			return
		}

		token := strings.TrimPrefix(header, "Bearer ")
		claims, err := auth.ValidateToken(cfg.Auth.JWTSecret, token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				response.ErrorT[any](response.APIResponseCodeUnauthorized, nil))
			return
		}

		// user_id in the request context feeds log enrichment (logctx).
		ctx := context.WithValue(c.Request.Context(), "user_id", claims.UserID())
		c.Request = c.Request.WithContext(ctx)

		handle := factory.New(c.Request.Context(), claims, token)
		c.Set(sessionKey, handle)
		c.Set("user_id", claims.UserID())

		// The handle wraps one transaction; it must not outlive the request.
		defer func() {
			if r := recover(); r != nil {
				handle.Rollback()
				panic(r)
			}
		}()
		c.Next()

		if len(c.Errors) > 0 || c.Writer.Status() >= http.StatusInternalServerError {
			handle.Rollback()
			return
		}
		if err := handle.Commit(); err != nil {
			logctx.FromGin(c, log).Errorw("failed to commit request transaction", "err", err)
		}
	}
}

// SessionFromGin returns the request's session handle. The second return is
// false on unauthenticated routes where the middleware did not run.
func SessionFromGin(c *gin.Context) (*session.Handle, bool) {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil, false
	}
	h, ok := v.(*session.Handle)
	return h, ok && h != nil
}
