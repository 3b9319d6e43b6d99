package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"strings"
)

// TokenCodec signs and verifies compact bearer tokens of the form
// base64url(payload) + "." + base64url(hmac-sha256(payload)). Tokens are
// self-contained; revocation happens by deleting the session record the
// payload points at, never by a token blacklist.
type TokenCodec struct {
	secret []byte
}

func NewTokenCodec(secret string) *TokenCodec {
	return &TokenCodec{secret: []byte(secret)}
}

// Sign serializes payload as JSON and appends a keyed MAC over the encoded
// payload segment.
func (c *TokenCodec) Sign(payload any) (string, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	encoded := base64.RawURLEncoding.EncodeToString(raw)
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(encoded))
	sig := base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
	return encoded + "." + sig, nil
}

// Verify checks the MAC and returns the raw payload JSON. Every failure
// mode (wrong segment count, undecodable segments, MAC mismatch, payload
// that is not a JSON object) collapses to ok=false; no error detail leaks
// to callers.
func (c *TokenCodec) Verify(token string) (json.RawMessage, bool) {
	parts := strings.Split(token, ".")
	if len(parts) != 2 {
		return nil, false
	}
	sig, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, false
	}
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(parts[0]))
	if !hmac.Equal(mac.Sum(nil), sig) {
		return nil, false
	}
	raw, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, false
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		return nil, false
	}
	return raw, true
}

// SessionClaims is the payload of a visitor session token.
type SessionClaims struct {
	SID  string `json:"sid"`
	Code string `json:"code"`
	Exp  int64  `json:"exp"`
	Iat  int64  `json:"iat"`
	V    int    `json:"v"`
}

// AdminClaims is the payload of a short-lived admin token.
type AdminClaims struct {
	Typ string `json:"typ"`
	Iat int64  `json:"iat"`
	Exp int64  `json:"exp"`
	V   int    `json:"v"`
}

// DecodeSessionClaims verifies the token and unmarshals session claims.
func (c *TokenCodec) DecodeSessionClaims(token string) (*SessionClaims, bool) {
	raw, ok := c.Verify(token)
	if !ok {
		return nil, false
	}
	var claims SessionClaims
	if err := json.Unmarshal(raw, &claims); err != nil {
		return nil, false
	}
	return &claims, true
}

// DecodeAdminClaims verifies the token and unmarshals admin claims.
func (c *TokenCodec) DecodeAdminClaims(token string) (*AdminClaims, bool) {
	raw, ok := c.Verify(token)
	if !ok {
		return nil, false
	}
	var claims AdminClaims
	if err := json.Unmarshal(raw, &claims); err != nil {
		return nil, false
	}
	return &claims, true
}
