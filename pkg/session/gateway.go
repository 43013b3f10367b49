// Package session gates access behind a single shared credential and an
// HttpOnly session cookie carrying a signed token.
package session

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/cheatday/planner/pkg/token"
)

// CookieName is the fixed session cookie name.
const CookieName = "auth_token"

// Gateway validates the shared password, and issues, clears and verifies
// the session cookie. The secrets are injected at construction so tests
// can run with arbitrary values.
type Gateway struct {
	password string
	secret   string
	ttl      time.Duration
}

// New returns a gateway for the given shared password and signing secret.
func New(password, secret string, ttl time.Duration) *Gateway {
	return &Gateway{password: password, secret: secret, ttl: ttl}
}

// CheckPassword compares the submitted password with the configured one in
// constant time. An empty submission never matches.
func (g *Gateway) CheckPassword(candidate string) bool {
	if candidate == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(g.password)) == 1
}

// IssueSessionCookie signs the claims and wraps the token in the fixed
// cookie attribute set: HttpOnly, Secure, SameSite=Strict, root path,
// Max-Age mirroring the session ttl.
func (g *Gateway) IssueSessionCookie(claims token.Claims) (*http.Cookie, error) {
	tok, err := token.Issue(claims, g.secret, g.ttl)
	if err != nil {
		return nil, err
	}
	return g.cookie(tok, int(g.ttl.Seconds())), nil
}

// ClearSessionCookie returns a cookie with an empty value and zero max-age
// so the client drops the session immediately. net/http serializes a
// negative MaxAge as Max-Age=0.
func (g *Gateway) ClearSessionCookie() *http.Cookie {
	return g.cookie("", -1)
}

// Authenticate extracts the session cookie from the request and verifies
// its token. A missing cookie and an invalid or expired token are
// indistinguishable: both return nil claims.
func (g *Gateway) Authenticate(r *http.Request) token.Claims {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return nil
	}
	claims, ok := token.Verify(c.Value, g.secret)
	if !ok {
		return nil
	}
	return claims
}

func (g *Gateway) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	}
}
