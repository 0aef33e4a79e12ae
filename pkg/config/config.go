// Package config loads the console configuration.
//
// Values are layered in order, later layers winning:
//   - built-in defaults (Default)
//   - a YAML file
//   - WMS_* environment variables, optionally seeded from a .env file
//   - command-line flags, applied by the caller through Set* helpers
//
// Sources records which layer set each field, for the validate command.
package config

import "time"

// Source names for Config.Sources.
const (
	SourceDefault = "default"
	SourceFile    = "file"
	SourceEnv     = "env"
	SourceFlag    = "flag"
)

// Defaults.
const (
	DefaultListen     = ":8080"
	DefaultBaseURL    = "http://localhost:3000/api"
	DefaultTimeout    = 30 * time.Second
	DefaultEnvelope   = "$.data"
	DefaultLogLevel   = "info"
	DefaultLogFormat  = "text"
	DefaultHistory    = 50
	DefaultSignInPath = "/signin"

	// DefaultSignInLimit is sign-in attempts per minute per client.
	DefaultSignInLimit = 10
)

// Config is the console configuration.
type Config struct {
	// Listen is the HTTP listen address.
	Listen string `yaml:"listen"`

	API    APIConfig    `yaml:"api"`
	Auth   AuthConfig   `yaml:"auth"`
	Menu   MenuConfig   `yaml:"menu"`
	Log    LogConfig    `yaml:"log"`
	Notify NotifyConfig `yaml:"notify"`

	// Sources maps a dotted field name to the layer that set it.
	Sources map[string]string `yaml:"-"`
}

// APIConfig points at the warehouse REST API.
type APIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
	// Envelope is the JSONPath of the payload in API responses. "$" means the
	// whole body.
	Envelope string `yaml:"envelope"`
	// HealthPath is probed by the readiness check. Empty disables the probe.
	HealthPath string `yaml:"health_path"`
}

// AuthConfig controls the session gate.
type AuthConfig struct {
	// Secret is the HS256 key for access tokens. Empty accepts any token.
	Secret string `yaml:"secret"`
	// Exempt lists doublestar path patterns that skip authentication.
	Exempt []string `yaml:"exempt"`
	// SignInPath is where unauthenticated users are redirected.
	SignInPath string `yaml:"signin_path"`
	// SignInLimit caps sign-in attempts per minute per client IP. Zero
	// disables the limit.
	SignInLimit int `yaml:"signin_limit"`
	// TrustedProxies lists IPs or CIDRs whose X-Forwarded-For is believed
	// when identifying the client.
	TrustedProxies []string `yaml:"trusted_proxies"`
}

// MenuConfig controls route building.
type MenuConfig struct {
	// File is a YAML or JSON menu tree used when the session carries none.
	File string `yaml:"file"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	// File, when set, receives a JSON copy of every log record.
	File string `yaml:"file"`
}

// NotifyConfig controls the notification hub.
type NotifyConfig struct {
	// History is how many notifications are replayed to new subscribers.
	History int `yaml:"history"`
	// OriginPatterns lists extra websocket origins to accept.
	OriginPatterns []string `yaml:"origin_patterns"`
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg := &Config{
		Listen: DefaultListen,
		API: APIConfig{
			BaseURL:  DefaultBaseURL,
			Timeout:  DefaultTimeout,
			Envelope: DefaultEnvelope,
		},
		Auth: AuthConfig{
			SignInPath:  DefaultSignInPath,
			SignInLimit: DefaultSignInLimit,
		},
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Notify: NotifyConfig{
			History: DefaultHistory,
		},
		Sources: make(map[string]string),
	}
	for _, f := range []string{"listen", "api.base_url", "api.timeout", "api.envelope", "auth.signin_path", "auth.signin_limit", "log.level", "log.format", "notify.history"} {
		cfg.Sources[f] = SourceDefault
	}
	return cfg
}

// SetListen overrides Listen from a flag.
func (c *Config) SetListen(v string) {
	c.set("listen", SourceFlag, func() { c.Listen = v })
}

// SetBaseURL overrides API.BaseURL from a flag.
func (c *Config) SetBaseURL(v string) {
	c.set("api.base_url", SourceFlag, func() { c.API.BaseURL = v })
}

// SetMenuFile overrides Menu.File from a flag.
func (c *Config) SetMenuFile(v string) {
	c.set("menu.file", SourceFlag, func() { c.Menu.File = v })
}

// SetLogLevel overrides Log.Level from a flag.
func (c *Config) SetLogLevel(v string) {
	c.set("log.level", SourceFlag, func() { c.Log.Level = v })
}

// SetLogFormat overrides Log.Format from a flag.
func (c *Config) SetLogFormat(v string) {
	c.set("log.format", SourceFlag, func() { c.Log.Format = v })
}

// SetLogFile overrides Log.File from a flag.
func (c *Config) SetLogFile(v string) {
	c.set("log.file", SourceFlag, func() { c.Log.File = v })
}

func (c *Config) set(field, source string, apply func()) {
	apply()
	if c.Sources == nil {
		c.Sources = make(map[string]string)
	}
	c.Sources[field] = source
}
