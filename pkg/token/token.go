// Package token issues and verifies the signed, expiring session tokens
// used by the cookie auth scheme. Tokens are stateless: validity is purely
// a function of the signature and the embedded expiry.
package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"
)

// Claims is the token payload. Arbitrary keys plus the issued-at and
// expires-at stamps added by Issue.
type Claims map[string]any

const (
	claimIssuedAt  = "iat"
	claimExpiresAt = "exp"
)

var encoding = base64.RawURLEncoding

type header struct {
	Alg string `json:"alg"`
	Typ string `json:"typ"`
}

// Issue signs claims with the secret and returns a three-part token:
// base64url(header).base64url(claims).base64url(signature), with the
// signature an HMAC-SHA256 over the first two dot-joined parts.
func Issue(claims Claims, secret string, ttl time.Duration) (string, error) {
	return issueAt(claims, secret, ttl, time.Now())
}

func issueAt(claims Claims, secret string, ttl time.Duration, now time.Time) (string, error) {
	payload := make(Claims, len(claims)+2)
	for k, v := range claims {
		payload[k] = v
	}
	payload[claimIssuedAt] = now.Unix()
	payload[claimExpiresAt] = now.Add(ttl).Unix()

	headerJSON, err := json.Marshal(header{Alg: "HS256", Typ: "JWT"})
	if err != nil {
		return "", err
	}
	claimsJSON, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	message := encoding.EncodeToString(headerJSON) + "." + encoding.EncodeToString(claimsJSON)
	return message + "." + encoding.EncodeToString(sign(message, secret)), nil
}

// Verify checks the token signature and expiry and returns the claims.
// Every failure mode (wrong part count, bad signature, undecodable claims,
// expired) returns ok=false with nil claims; callers cannot distinguish
// why a token was rejected.
func Verify(tok string, secret string) (Claims, bool) {
	return verifyAt(tok, secret, time.Now())
}

func verifyAt(tok string, secret string, now time.Time) (Claims, bool) {
	parts := strings.Split(tok, ".")
	if len(parts) != 3 {
		return nil, false
	}

	message := parts[0] + "." + parts[1]
	sig, err := encoding.DecodeString(parts[2])
	if err != nil {
		return nil, false
	}
	if !hmac.Equal(sig, sign(message, secret)) {
		return nil, false
	}

	claimsJSON, err := encoding.DecodeString(parts[1])
	if err != nil {
		return nil, false
	}
	var claims Claims
	if err := json.Unmarshal(claimsJSON, &claims); err != nil {
		return nil, false
	}

	exp, ok := claims[claimExpiresAt].(float64)
	if !ok || int64(exp) <= now.Unix() {
		return nil, false
	}

	return claims, true
}

func sign(message, secret string) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(message))
	return mac.Sum(nil)
}
