package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Environment variable names.
const (
	EnvListen        = "WMS_LISTEN"
	EnvAPIBaseURL    = "WMS_API_BASE_URL"
	EnvAPITimeout    = "WMS_API_TIMEOUT"
	EnvAPIEnvelope   = "WMS_API_ENVELOPE"
	EnvAPIHealthPath = "WMS_API_HEALTH_PATH"
	EnvAuthSecret    = "WMS_AUTH_SECRET"
	EnvAuthExempt    = "WMS_AUTH_EXEMPT"
	EnvAuthLimit     = "WMS_AUTH_SIGNIN_LIMIT"
	EnvAuthProxies   = "WMS_AUTH_TRUSTED_PROXIES"
	EnvMenuFile      = "WMS_MENU_FILE"
	EnvLogLevel      = "WMS_LOG_LEVEL"
	EnvLogFormat     = "WMS_LOG_FORMAT"
	EnvLogFile       = "WMS_LOG_FILE"
	EnvNotifyHistory = "WMS_NOTIFY_HISTORY"
	EnvNotifyOrigins = "WMS_NOTIFY_ORIGINS"
)

// LoadEnv applies WMS_* environment variables to cfg. Only variables that are
// set and parse cleanly are applied.
func LoadEnv(cfg *Config) {
	if cfg.Sources == nil {
		cfg.Sources = make(map[string]string)
	}

	str := func(env, field string, dst *string) {
		if v := os.Getenv(env); v != "" {
			*dst = v
			cfg.Sources[field] = SourceEnv
		}
	}
	list := func(env, field string, dst *[]string) {
		if v := os.Getenv(env); v != "" {
			*dst = splitList(v)
			cfg.Sources[field] = SourceEnv
		}
	}

	str(EnvListen, "listen", &cfg.Listen)
	str(EnvAPIBaseURL, "api.base_url", &cfg.API.BaseURL)
	str(EnvAPIEnvelope, "api.envelope", &cfg.API.Envelope)
	str(EnvAPIHealthPath, "api.health_path", &cfg.API.HealthPath)
	str(EnvAuthSecret, "auth.secret", &cfg.Auth.Secret)
	list(EnvAuthExempt, "auth.exempt", &cfg.Auth.Exempt)
	list(EnvAuthProxies, "auth.trusted_proxies", &cfg.Auth.TrustedProxies)
	str(EnvMenuFile, "menu.file", &cfg.Menu.File)
	str(EnvLogLevel, "log.level", &cfg.Log.Level)
	str(EnvLogFormat, "log.format", &cfg.Log.Format)
	str(EnvLogFile, "log.file", &cfg.Log.File)
	list(EnvNotifyOrigins, "notify.origin_patterns", &cfg.Notify.OriginPatterns)

	if v := os.Getenv(EnvAPITimeout); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.API.Timeout = d
			cfg.Sources["api.timeout"] = SourceEnv
		} else if secs, err := strconv.Atoi(v); err == nil {
			cfg.API.Timeout = time.Duration(secs) * time.Second
			cfg.Sources["api.timeout"] = SourceEnv
		}
	}
	if v := os.Getenv(EnvAuthLimit); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Auth.SignInLimit = n
			cfg.Sources["auth.signin_limit"] = SourceEnv
		}
	}
	if v := os.Getenv(EnvNotifyHistory); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Notify.History = n
			cfg.Sources["notify.history"] = SourceEnv
		}
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
