// Package session holds the bearer token the UI obtains from the external
// auth provider. The gateway never verifies signatures (the backend does);
// it only inspects claims to refuse tokens that are already expired.
package session

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrEmptyToken   = errors.New("session: token is empty")
	ErrTokenExpired = errors.New("session: token is expired")
)

// TokenInfo carries the claims worth logging for a session token.
type TokenInfo struct {
	Subject   string
	ExpiresAt time.Time
}

// Inspect decodes token claims without verifying the signature. Opaque
// (non-JWT) tokens are accepted as-is; a well-formed JWT with an elapsed
// exp claim is rejected.
func Inspect(token string) (TokenInfo, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return TokenInfo{}, ErrEmptyToken
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		// Not a JWT; the backend is the authority on opaque tokens.
		return TokenInfo{}, nil
	}

	info := TokenInfo{}
	if sub, err := claims.GetSubject(); err == nil {
		info.Subject = sub
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		info.ExpiresAt = exp.Time
		if exp.Before(time.Now()) {
			return TokenInfo{}, ErrTokenExpired
		}
	}
	return info, nil
}

// Holder is the single mutable owner of the current bearer token.
type Holder struct {
	mu    sync.RWMutex
	token string
	info  TokenInfo
}

func NewHolder() *Holder {
	return &Holder{}
}

// Set validates and stores the token. A rejected token leaves the previous
// session untouched.
func (h *Holder) Set(token string) (TokenInfo, error) {
	info, err := Inspect(token)
	if err != nil {
		return TokenInfo{}, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.token = strings.TrimSpace(token)
	h.info = info
	return info, nil
}

// Token returns the current bearer token, if any.
func (h *Holder) Token() (string, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token, h.token != ""
}

// Info returns the claims captured when the token was set.
func (h *Holder) Info() TokenInfo {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.info
}

// Clear drops the session token, returning the gateway to anonymous mode.
func (h *Holder) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.token = ""
	h.info = TokenInfo{}
}
