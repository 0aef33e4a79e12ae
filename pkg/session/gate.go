package session

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/nna-wms/wmsconsole/pkg/httputil"
	"github.com/nna-wms/wmsconsole/pkg/logging"
)

// DefaultSignInPath is where unauthenticated page requests are sent.
const DefaultSignInPath = "/signin"

// DefaultExempt are the paths reachable without a token. The gate's own
// sign-in path is always exempt on top of these.
var DefaultExempt = []string{"/signout", "/healthz", "/metrics", "/static/**"}

// GateConfig configures a Gate.
type GateConfig struct {
	// Secret is the HS256 key. Empty means any token is accepted.
	Secret []byte
	// Exempt lists doublestar patterns of paths that skip the check.
	Exempt []string
	// SignInPath is the redirect target. Defaults to DefaultSignInPath.
	SignInPath string
	// APIPatterns lists paths that answer 401 instead of redirecting.
	APIPatterns []string
	Logger      *slog.Logger
}

// Gate is the authentication middleware.
type Gate struct {
	secret     []byte
	exempt     []string
	api        []string
	signInPath string
	log        *slog.Logger
}

// NewGate validates the patterns in cfg and builds a Gate.
func NewGate(cfg GateConfig) (*Gate, error) {
	exempt := cfg.Exempt
	if exempt == nil {
		exempt = DefaultExempt
	}
	api := cfg.APIPatterns
	if api == nil {
		api = []string{"/api/**"}
	}
	for _, p := range append(append([]string{}, exempt...), api...) {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid path pattern %q", p)
		}
	}

	signIn := cfg.SignInPath
	if signIn == "" {
		signIn = DefaultSignInPath
	}
	return &Gate{
		secret:     cfg.Secret,
		exempt:     exempt,
		api:        api,
		signInPath: signIn,
		log:        logging.Component(cfg.Logger, "session"),
	}, nil
}

// Verifies reports whether token signatures are checked.
func (g *Gate) Verifies() bool {
	return len(g.secret) > 0
}

// IsExempt reports whether path skips authentication.
func (g *Gate) IsExempt(path string) bool {
	return path == g.signInPath || matchAny(g.exempt, path)
}

// Authenticate resolves the session of r without writing a response.
func (g *Gate) Authenticate(r *http.Request) (*Session, bool, error) {
	token, fromHeader := TokenFromRequest(r)
	s, err := g.Parse(token)
	return s, fromHeader, err
}

// Parse checks token against the gate's secret.
func (g *Gate) Parse(token string) (*Session, error) {
	return Parse(g.secret, token)
}

// SignInPath returns the redirect target for unauthenticated pages.
func (g *Gate) SignInPath() string {
	return g.signInPath
}

// Middleware rejects requests without a valid token. Page requests are
// redirected to the sign-in page; API requests get a 401. A token supplied
// in the Authorization header is persisted to the cookie.
func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if g.IsExempt(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		s, fromHeader, err := g.Authenticate(r)
		if err != nil {
			g.log.Debug("authentication failed", "path", r.URL.Path, "error", err)
			g.reject(w, r, err)
			return
		}
		if fromHeader {
			SetCookie(w, r, s.Token)
		}

		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
	})
}

func (g *Gate) reject(w http.ResponseWriter, r *http.Request, err error) {
	ClearCookie(w)
	if matchAny(g.api, r.URL.Path) {
		code := "missing_token"
		if !errors.Is(err, ErrNoToken) {
			code = "invalid_token"
		}
		httputil.WriteError(w, http.StatusUnauthorized, code, err.Error())
		return
	}
	http.Redirect(w, r, g.signInPath, http.StatusFound)
}

func matchAny(patterns []string, path string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, path); ok {
			return true
		}
	}
	return false
}
