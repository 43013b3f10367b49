package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cheatday/planner/pkg/middleware"
	"github.com/cheatday/planner/pkg/planstore"
	"github.com/cheatday/planner/pkg/session"
	plansync "github.com/cheatday/planner/pkg/sync"
)

const testPassword = "correct-horse"

func newTestServer(t *testing.T) *echo.Echo {
	t.Helper()

	logger := ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
	store := planstore.NewMemoryStore()
	controller := plansync.NewController(store, "memory", nil, logger, time.Hour, plansync.Callbacks{})
	t.Cleanup(controller.Close)

	gateway := session.New(testPassword, "test-secret", time.Hour)

	e := echo.New()
	e.HTTPErrorHandler = middleware.Error(logger)
	e.Use(middleware.Context())

	api := e.Group("/api")
	api.Use(middleware.Session(gateway))
	NewAuthHandler(gateway).RegisterRoutes(api)

	protected := api.Group("", middleware.RequireSession(gateway))
	NewDataHandler(controller).RegisterRoutes(protected)

	return e
}

func doJSON(e *echo.Echo, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == session.CookieName {
			return c
		}
	}
	return nil
}

func TestLoginSuccessSetsCookie(t *testing.T) {
	e := newTestServer(t)

	rec := doJSON(e, http.MethodPost, "/api/auth/login", `{"password":"correct-horse"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])

	cookie := sessionCookie(rec)
	require.NotNil(t, cookie)
	assert.NotEmpty(t, cookie.Value)
	assert.True(t, cookie.HttpOnly)
}

func TestLoginWrongPassword(t *testing.T) {
	e := newTestServer(t)

	rec := doJSON(e, http.MethodPost, "/api/auth/login", `{"password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, sessionCookie(rec))

	// A failed login leaves the session unauthenticated
	rec = doJSON(e, http.MethodGet, "/api/auth/verify", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["authenticated"])
}

func TestVerifyWithValidSession(t *testing.T) {
	e := newTestServer(t)

	login := doJSON(e, http.MethodPost, "/api/auth/login", `{"password":"correct-horse"}`)
	cookie := sessionCookie(login)
	require.NotNil(t, cookie)

	rec := doJSON(e, http.MethodGet, "/api/auth/verify", "", cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["authenticated"])
}

func TestLogoutClearsCookie(t *testing.T) {
	e := newTestServer(t)

	rec := doJSON(e, http.MethodPost, "/api/auth/logout", "")
	require.Equal(t, http.StatusOK, rec.Code)

	cookie := sessionCookie(rec)
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
	assert.Negative(t, cookie.MaxAge)
}

func TestDataRequiresAuthentication(t *testing.T) {
	e := newTestServer(t)

	rec := doJSON(e, http.MethodGet, "/api/data", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// The stale cookie is cleared alongside the 401
	cookie := sessionCookie(rec)
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)

	rec = doJSON(e, http.MethodPost, "/api/data", `{"data":{"plans":[]}}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDataRejectsTamperedToken(t *testing.T) {
	e := newTestServer(t)

	other := session.New(testPassword, "different-secret", time.Hour)
	cookie, err := other.IssueSessionCookie(map[string]any{"authenticated": true})
	require.NoError(t, err)

	rec := doJSON(e, http.MethodGet, "/api/data", "", cookie)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetDataAbsentReturnsNull(t *testing.T) {
	e := newTestServer(t)

	login := doJSON(e, http.MethodPost, "/api/auth/login", `{"password":"correct-horse"}`)
	cookie := sessionCookie(login)

	rec := doJSON(e, http.MethodGet, "/api/data", "", cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	val, ok := body["data"]
	require.True(t, ok)
	assert.Nil(t, val)
}

func TestSaveAndReloadData(t *testing.T) {
	e := newTestServer(t)

	login := doJSON(e, http.MethodPost, "/api/auth/login", `{"password":"correct-horse"}`)
	cookie := sessionCookie(login)

	doc := `{"data":{"plans":[{"id":"p1","name":"休日","date":"2026-09-01","items":[]}],"cats":[{"id":"food","name":"食事","color":"#f97316"}],"curId":"p1"}}`
	rec := doJSON(e, http.MethodPost, "/api/data", doc, cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(e, http.MethodGet, "/api/data", "", cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data struct {
			Plans []struct {
				Name string `json:"name"`
			} `json:"plans"`
			CurrentID string `json:"curId"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data.Plans, 1)
	assert.Equal(t, "休日", body.Data.Plans[0].Name)
	assert.Equal(t, "p1", body.Data.CurrentID)
}

func TestSaveDataRejectsBadBody(t *testing.T) {
	e := newTestServer(t)

	login := doJSON(e, http.MethodPost, "/api/auth/login", `{"password":"correct-horse"}`)
	cookie := sessionCookie(login)

	rec := doJSON(e, http.MethodPost, "/api/data", `{"data":"not an object"}`, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(e, http.MethodPost, "/api/data", `{}`, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestErrorResponseShape(t *testing.T) {
	e := newTestServer(t)

	rec := doJSON(e, http.MethodGet, "/api/data", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body, "message")
	assert.Contains(t, body, "request_id")
	assert.Contains(t, body, "trace_id")
}
