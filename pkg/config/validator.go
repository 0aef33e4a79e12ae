package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/ohler55/ojg/jp"

	"github.com/nna-wms/wmsconsole/pkg/logging"
)

// ValidationError reports an invalid configuration field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on %s: %s", e.Field, e.Message)
}

var validLogFormats = map[string]bool{"text": true, "json": true}

// Validate checks the configuration and returns the first problem found.
func (c *Config) Validate() error {
	if c.Listen == "" {
		return &ValidationError{Field: "listen", Message: "must not be empty"}
	}
	if _, _, err := net.SplitHostPort(c.Listen); err != nil {
		return &ValidationError{Field: "listen", Message: fmt.Sprintf("invalid address %q: %v", c.Listen, err)}
	}

	u, err := url.Parse(c.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return &ValidationError{Field: "api.base_url", Message: fmt.Sprintf("must be an absolute http(s) URL, got %q", c.API.BaseURL)}
	}
	if c.API.Timeout <= 0 {
		return &ValidationError{Field: "api.timeout", Message: "must be positive"}
	}
	if c.API.Envelope != "" && c.API.Envelope != "$" {
		if _, err := jp.ParseString(c.API.Envelope); err != nil {
			return &ValidationError{Field: "api.envelope", Message: fmt.Sprintf("invalid JSONPath: %v", err)}
		}
	}
	if c.API.HealthPath != "" && !strings.HasPrefix(c.API.HealthPath, "/") {
		return &ValidationError{Field: "api.health_path", Message: "must start with /"}
	}

	for _, p := range c.Auth.Exempt {
		if !doublestar.ValidatePattern(p) {
			return &ValidationError{Field: "auth.exempt", Message: fmt.Sprintf("invalid pattern %q", p)}
		}
	}
	if !strings.HasPrefix(c.Auth.SignInPath, "/") {
		return &ValidationError{Field: "auth.signin_path", Message: "must start with /"}
	}
	if c.Auth.SignInLimit < 0 {
		return &ValidationError{Field: "auth.signin_limit", Message: "must not be negative"}
	}
	for _, p := range c.Auth.TrustedProxies {
		if _, _, err := net.ParseCIDR(p); err != nil && net.ParseIP(p) == nil {
			return &ValidationError{Field: "auth.trusted_proxies", Message: fmt.Sprintf("invalid IP or CIDR %q", p)}
		}
	}

	if err := validateFilePath(c.Menu.File, "menu.file"); err != nil {
		return err
	}

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return &ValidationError{Field: "log.level", Message: err.Error()}
	}
	if !validLogFormats[strings.ToLower(c.Log.Format)] {
		return &ValidationError{Field: "log.format", Message: fmt.Sprintf("unknown format %q", c.Log.Format)}
	}
	if c.Log.File != "" {
		dir := filepath.Dir(c.Log.File)
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			return &ValidationError{Field: "log.file", Message: fmt.Sprintf("directory does not exist: %s", dir)}
		}
	}
	if c.Notify.History < 0 {
		return &ValidationError{Field: "notify.history", Message: "must not be negative"}
	}
	return nil
}

// validateFilePath checks that an optional file exists and is not a
// directory.
func validateFilePath(path, fieldName string) error {
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &ValidationError{Field: fieldName, Message: fmt.Sprintf("file does not exist: %s", path)}
		}
		return &ValidationError{Field: fieldName, Message: fmt.Sprintf("cannot access file: %s", err.Error())}
	}
	if info.IsDir() {
		return &ValidationError{Field: fieldName, Message: fmt.Sprintf("path is a directory, not a file: %s", path)}
	}
	return nil
}
