package middleware

import (
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/labstack/echo/v4"

	"github.com/cheatday/planner/pkg/appcontext"
	"github.com/cheatday/planner/pkg/session"
)

// Session validates the auth cookie and records the result on the request
// context. It never rejects; handlers that need auth use RequireSession.
func Session(gateway *session.Gateway) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims := gateway.Authenticate(c.Request())
			ctx := appcontext.SetAuthenticated(c.Request().Context(), claims != nil)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// RequireSession rejects unauthenticated requests with 401 and clears the
// stale cookie so the client stops replaying it.
func RequireSession(gateway *session.Gateway) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !appcontext.IsAuthenticated(c.Request().Context()) {
				c.SetCookie(gateway.ClearSessionCookie())
				return httperror.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			return next(c)
		}
	}
}
