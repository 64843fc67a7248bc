// Package config manages environment variables.
//
// It reads variables from the process environment (and a `.env` file, if
// present), loads them into structured Go types and validates that required
// values are present so they can be reused across the application runtime.
//
// Variables use the QUANTUMROCKET_ prefix; a double underscore separates
// nesting levels:
//
//	QUANTUMROCKET_DATABASE__MAX_OPEN_CONNS=20 -> database.max_open_conns
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	// Loads `.env` into the process environment before anything reads it.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix   = "QUANTUMROCKET_"
	serviceName = "quantumrocket"
)

// Config is the root configuration object for the application.
//
// Observability is a pointer because it is optional. If not provided,
// defaults are injected.
type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Server        ServerConfig         `koanf:"server" validate:"required"`
	Database      DatabaseConfig       `koanf:"database" validate:"required"`
	Redis         RedisConfig          `koanf:"redis" validate:"required"`
	Auth          AuthConfig           `koanf:"auth"`
	Integration   IntegrationConfig    `koanf:"integration"`
	Observability *ObservabilityConfig `koanf:"observability"`
}

// Primary holds top-level information about the runtime environment.
type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

// ServerConfig groups settings for the HTTP server runtime. Timeouts are
// in seconds.
type ServerConfig struct {
	Port               string   `koanf:"port" validate:"required"`
	ReadTimeout        int      `koanf:"read_timeout" validate:"required"`
	WriteTimeout       int      `koanf:"write_timeout" validate:"required"`
	IdleTimeout        int      `koanf:"idle_timeout" validate:"required"`
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins" validate:"required"`
}

// DatabaseConfig selects the store and tunes the connection pool.
//
// Driver "postgres" uses the host/port/user fields; driver "sqlite" only
// needs Path. MaxOpenConns should match the expected serving concurrency.
type DatabaseConfig struct {
	Driver           string        `koanf:"driver" validate:"omitempty,oneof=postgres sqlite"`
	Path             string        `koanf:"path" validate:"required_if=Driver sqlite"`
	Host             string        `koanf:"host" validate:"required_unless=Driver sqlite"`
	Port             int           `koanf:"port" validate:"required_unless=Driver sqlite"`
	User             string        `koanf:"user" validate:"required_unless=Driver sqlite"`
	Password         string        `koanf:"password"`
	Name             string        `koanf:"name" validate:"required_unless=Driver sqlite"`
	SSLMode          string        `koanf:"ssl_mode"`
	MaxOpenConns     int           `koanf:"max_open_conns" validate:"required,min=1"`
	MaxIdleConns     int           `koanf:"max_idle_conns" validate:"min=0"`
	ConnMaxLifetime  int           `koanf:"conn_max_lifetime"`
	ConnMaxIdleTime  int           `koanf:"conn_max_idle_time"`
	StatementTimeout time.Duration `koanf:"statement_timeout"`
}

// IsSQLite reports whether the SQLite driver is selected.
func (c DatabaseConfig) IsSQLite() bool {
	return c.Driver == "sqlite"
}

// RedisConfig contains Redis connection details. Address is "host:port".
type RedisConfig struct {
	Address string `koanf:"address" validate:"required"`
}

// AuthConfig controls the session cookie and sign-in throttling.
type AuthConfig struct {
	SessionCookieName string        `koanf:"session_cookie_name"`
	SessionTTL        time.Duration `koanf:"session_ttl"`
	SecureCookie      bool          `koanf:"secure_cookie"`
	SignInRate        float64       `koanf:"sign_in_rate"`
	SignInBurst       int           `koanf:"sign_in_burst"`
	// MaxFailedSignIns failures within FailureWindow lock an email out
	// until the oldest failure ages out of the window.
	MaxFailedSignIns int           `koanf:"max_failed_sign_ins"`
	FailureWindow    time.Duration `koanf:"failure_window"`
}

// IntegrationConfig holds credentials for third-party services.
// An empty ResendAPIKey disables outgoing email.
type IntegrationConfig struct {
	ResendAPIKey string `koanf:"resend_api_key"`
	EmailFrom    string `koanf:"email_from"`
	// AppURL is the public base URL used for links in outgoing email.
	AppURL string `koanf:"app_url" validate:"omitempty,url"`
}

// LoadConfig reads the environment, validates it and applies defaults.
func LoadConfig() (*Config, error) {
	k := koanf.New(".")

	err := k.Load(env.ProviderWithValue(envPrefix, ".", func(s, v string) (string, any) {
		key := strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "__", ".")
		if _, isList := listKeys[key]; isList {
			return key, splitList(v)
		}
		return key, v
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("loading env variables: %w", err)
	}

	mainConfig := &Config{}
	if err := k.Unmarshal("", mainConfig); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	mainConfig.applyDefaults()

	validate := validator.New()
	if err := validate.Struct(mainConfig); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	if mainConfig.Observability == nil {
		mainConfig.Observability = DefaultObservabilityConfig()
	}
	mainConfig.Observability.ServiceName = serviceName
	mainConfig.Observability.Environment = mainConfig.Primary.Env

	if err := mainConfig.Observability.Validate(); err != nil {
		return nil, fmt.Errorf("invalid observability config: %w", err)
	}

	return mainConfig, nil
}

// listKeys are comma separated in the environment.
var listKeys = map[string]struct{}{
	"server.cors_allowed_origins":        {},
	"observability.health_checks.checks": {},
}

func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func (c *Config) applyDefaults() {
	if c.Database.Driver == "" {
		c.Database.Driver = "postgres"
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Database.StatementTimeout == 0 {
		c.Database.StatementTimeout = 5 * time.Second
	}

	if c.Auth.SessionCookieName == "" {
		c.Auth.SessionCookieName = "quantumrocket_session"
	}
	if c.Auth.SessionTTL == 0 {
		c.Auth.SessionTTL = 24 * time.Hour
	}
	if c.Auth.SignInRate == 0 {
		c.Auth.SignInRate = 1
	}
	if c.Auth.SignInBurst == 0 {
		c.Auth.SignInBurst = 5
	}
	if c.Auth.MaxFailedSignIns == 0 {
		c.Auth.MaxFailedSignIns = 10
	}
	if c.Auth.FailureWindow == 0 {
		c.Auth.FailureWindow = 15 * time.Minute
	}

	if c.Integration.EmailFrom == "" {
		c.Integration.EmailFrom = "QuantumRocket <onboarding@resend.dev>"
	}
	if c.Integration.AppURL == "" {
		c.Integration.AppURL = "http://localhost:" + c.Server.Port
	}
}
