package handlers

import (
	"github.com/labstack/echo/v4"

	"github.com/cheatday/planner/pkg/appcontext"
	"github.com/cheatday/planner/pkg/metrics"
	"github.com/cheatday/planner/pkg/session"
	"github.com/cheatday/planner/pkg/tracing"
)

// AuthHandler handles login, logout and session verification
type AuthHandler struct {
	gateway *session.Gateway
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(gateway *session.Gateway) *AuthHandler {
	return &AuthHandler{gateway: gateway}
}

// LoginRequest is the request body for logging in
type LoginRequest struct {
	Password string `json:"password"`
}

// RegisterRoutes registers the auth routes
func (h *AuthHandler) RegisterRoutes(g *echo.Group) {
	auth := g.Group("/auth")
	auth.POST("/login", h.Login)
	auth.POST("/logout", h.Logout)
	auth.GET("/verify", h.Verify)
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c echo.Context) error {
	_, span := tracing.StartSpan(c.Request().Context(), "AuthHandler.Login")
	defer span.End()

	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return BadRequest("invalid request body")
	}

	if !h.gateway.CheckPassword(req.Password) {
		metrics.RecordAuthAttempt("rejected")
		return Unauthorized("password is incorrect")
	}

	cookie, err := h.gateway.IssueSessionCookie(map[string]any{"authenticated": true})
	if err != nil {
		metrics.RecordAuthAttempt("error")
		return err
	}

	metrics.RecordAuthAttempt("accepted")
	c.SetCookie(cookie)
	return SuccessResponse(c, map[string]any{"success": true})
}

// Logout handles POST /auth/logout
func (h *AuthHandler) Logout(c echo.Context) error {
	_, span := tracing.StartSpan(c.Request().Context(), "AuthHandler.Logout")
	defer span.End()

	c.SetCookie(h.gateway.ClearSessionCookie())
	return SuccessResponse(c, map[string]any{"success": true})
}

// Verify handles GET /auth/verify. Always 200; the body reports whether the
// request carried a valid session.
func (h *AuthHandler) Verify(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "AuthHandler.Verify")
	defer span.End()

	return SuccessResponse(c, map[string]any{
		"authenticated": appcontext.IsAuthenticated(ctx),
	})
}
