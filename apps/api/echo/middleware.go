package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// sessionMiddleware loads the session named by the JWT subject; it must run after the JWT middleware.
// Logged out and expired sessions are rejected even while their token is still valid.
func sessionMiddleware(svc SessionService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			sess, err := svc.Get(ctx.Request().Context(), claims.Subject)
			if err != nil {
				return errors.Wrap(err, "getting session")
			}
			ctx.Set(contextSessionKey, sess)
			return next(ctx)
		}
	}
}
