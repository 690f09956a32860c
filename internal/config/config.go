package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Example names one of the servers the binary can run.
type Example string

const (
	ExampleHelmet  Example = "helmet"
	ExampleOAuth   Example = "oauth"
	ExampleSession Example = "session"
)

// DefaultPort returns the port each example listens on when PORT is unset.
func (e Example) DefaultPort() string {
	switch e {
	case ExampleHelmet:
		return "4000"
	case ExampleOAuth:
		return "4001"
	default:
		return "4002"
	}
}

const (
	SessionStoreCookie = "cookie"
	SessionStoreRedis  = "redis"
)

type Config struct {
	AppPort string `env:"PORT"`

	TLSCertFile string `env:"TLS_CERT_FILE" envDefault:"certificate/cert.pem"`
	TLSKeyFile  string `env:"TLS_KEY_FILE"  envDefault:"certificate/key.pem"`

	// PublicBaseURL is used to build absolute callback URLs. When empty the
	// request host is used.
	PublicBaseURL string `env:"PUBLIC_BASE_URL"`
	PublicDir     string `env:"PUBLIC_DIR"`

	GoogleClientID     string `env:"OAUTH_CLIENT_ID"`
	GoogleClientSecret string `env:"OAUTH_CLIENT_SECRET"`

	KeycloakIssuer        string `env:"KEYCLOAK_ISSUER"`
	KeycloakClientID      string `env:"KEYCLOAK_CLIENT_ID"`
	KeycloakPublicBaseURL string `env:"KEYCLOAK_PUBLIC_BASE_URL"`

	CookieKey1   string `env:"COOKIE_SESSION_KEY_1"`
	CookieKey2   string `env:"COOKIE_SESSION_KEY_2"`
	SessionStore string `env:"SESSION_STORE" envDefault:"cookie"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`

	DatabaseDSN string `env:"DATABASE_DSN"`

	LogLevel  string `env:"LOG_LEVEL"  envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
}

// Load reads an optional .env file and then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("config: load .env: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse env: %w", err)
	}
	return cfg, nil
}

// CookieKeys returns the configured signing keys, primary first.
func (c Config) CookieKeys() [][]byte {
	var keys [][]byte
	for _, k := range []string{c.CookieKey1, c.CookieKey2} {
		if k != "" {
			keys = append(keys, []byte(k))
		}
	}
	return keys
}

// Validate checks that the values an example needs are present.
// Values are opaque; only presence is checked.
func (c Config) Validate(example Example) error {
	var missing []string
	require := func(name, value string) {
		if value == "" {
			missing = append(missing, name)
		}
	}

	require("TLS_CERT_FILE", c.TLSCertFile)
	require("TLS_KEY_FILE", c.TLSKeyFile)

	switch example {
	case ExampleHelmet:
	case ExampleOAuth:
		require("OAUTH_CLIENT_ID", c.GoogleClientID)
		require("OAUTH_CLIENT_SECRET", c.GoogleClientSecret)
	case ExampleSession:
		require("OAUTH_CLIENT_ID", c.GoogleClientID)
		require("OAUTH_CLIENT_SECRET", c.GoogleClientSecret)
		require("COOKIE_SESSION_KEY_1", c.CookieKey1)
		switch c.SessionStore {
		case SessionStoreCookie:
		case SessionStoreRedis:
			require("REDIS_ADDR", c.RedisAddr)
		default:
			return fmt.Errorf("config: unknown SESSION_STORE %q", c.SessionStore)
		}
	default:
		return fmt.Errorf("config: unknown example %q", example)
	}

	if len(missing) > 0 {
		return fmt.Errorf("config: missing required values for %s: %v", example, missing)
	}
	return nil
}
