// Package session authenticates console requests and carries the signed-in
// user's token and menu permissions through the request context.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/nna-wms/wmsconsole/pkg/menu"
)

// CookieName is the cookie holding the access token.
const CookieName = "accessToken"

// Sentinel errors for token handling.
var (
	ErrNoToken      = errors.New("no access token")
	ErrInvalidToken = errors.New("invalid access token")
)

// Claims are the JWT claims issued by the warehouse API. Menus is the tree
// of pages the user may open.
type Claims struct {
	UserID   string      `json:"user_id,omitempty"`
	Username string      `json:"username,omitempty"`
	Role     string      `json:"role,omitempty"`
	Menus    []menu.Node `json:"menus,omitempty"`
	jwt.RegisteredClaims
}

// Session is the authenticated state of one request.
type Session struct {
	Token string
	// Claims is nil when the token is opaque and no secret is configured.
	Claims *Claims
	// Verified reports whether the token signature was checked.
	Verified bool
}

// Menus returns the menu tree granted by the token, if any.
func (s *Session) Menus() []menu.Node {
	if s == nil || s.Claims == nil {
		return nil
	}
	return s.Claims.Menus
}

type contextKey struct{}

// WithSession returns a copy of ctx carrying s.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session stored in ctx.
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(contextKey{}).(*Session)
	return s, ok && s != nil
}

// Token returns the access token stored in ctx, or "". It matches
// restclient.TokenSource so API calls are made on behalf of the user.
func Token(ctx context.Context) string {
	if s, ok := FromContext(ctx); ok {
		return s.Token
	}
	return ""
}

// TokenFromRequest returns the bearer token from the Authorization header,
// else the access token cookie. fromHeader reports which one was used.
func TokenFromRequest(r *http.Request) (token string, fromHeader bool) {
	if auth := r.Header.Get("Authorization"); auth != "" {
		scheme, value, ok := strings.Cut(auth, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			if value = strings.TrimSpace(value); value != "" {
				return value, true
			}
		}
	}
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		return c.Value, false
	}
	return "", false
}

// SetCookie stores token in the access token cookie.
func SetCookie(w http.ResponseWriter, r *http.Request, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCookie removes the access token cookie.
func ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
	})
}

// Sign issues an HS256 token for claims.
func Sign(secret []byte, claims *Claims) (string, error) {
	if len(secret) == 0 {
		return "", errors.New("empty signing secret")
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// Parse validates an HS256 token against secret. An empty secret skips the
// signature check and only decodes the claims; tokens that are not JWTs then
// yield a session without claims.
func Parse(secret []byte, token string) (*Session, error) {
	if token == "" {
		return nil, ErrNoToken
	}

	if len(secret) == 0 {
		claims := &Claims{}
		if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
			return &Session{Token: token}, nil
		}
		return &Session{Token: token, Claims: claims}, nil
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return &Session{Token: token, Claims: claims, Verified: true}, nil
}
