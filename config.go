package accounts

import (
	"os"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	goerrors "github.com/goliatone/go-errors"
	"github.com/joho/godotenv"
)

// Config holds the immutable service configuration, loaded once at startup
// and injected into the token service and store wiring. Request handling
// never reads the environment.
type Config struct {
	SigningKey      string
	TokenExpiration time.Duration
	DSN             string
	Port            string
	Environment     string
}

// IsProduction reports whether the service runs with sanitized error output
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Validate will run validation rules
func (c Config) Validate() *goerrors.Error {
	return goerrors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&c,
			validation.Field(
				&c.SigningKey,
				validation.Required.Error("JWT_SECRET is required."),
			),
			validation.Field(
				&c.DSN,
				validation.Required,
			),
			validation.Field(
				&c.Port,
				validation.Required,
			),
		)
	}, "Invalid service configuration")
}

// LoadConfig reads the environment, with an optional .env file for local
// development
func LoadConfig() (*Config, error) {
	// missing .env is fine, the environment wins either way
	_ = godotenv.Load()

	ttl := 24 * time.Hour
	if raw := os.Getenv("JWT_EXPIRES_IN"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid JWT_EXPIRES_IN duration")
		}
		ttl = parsed
	}

	cfg := &Config{
		SigningKey:      os.Getenv("JWT_SECRET"),
		TokenExpiration: ttl,
		DSN:             envOr("DSN", "file:accounts.db?cache=shared"),
		Port:            envOr("PORT", "3000"),
		Environment:     envOr("APP_ENV", "development"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func envOr(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}
