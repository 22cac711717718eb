package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Store drivers
const (
	DriverFirestore = "firestore"
	DriverMongo     = "mongo"
	DriverMemory    = "memory"
)

const defaultJWTSecret = "supersecretjwtkey"

type Config struct {
	Port                    string        `env:"PORT" env-default:"8080"`
	Env                     string        `env:"ENV" env-default:"development"`
	MetricsPort             string        `env:"METRICS_PORT" env-default:"9090"`
	FirebaseCredentialsPath string        `env:"FIREBASE_CREDENTIALS_PATH" env-default:"./firebase_credentials.json"`
	FirebaseProjectID       string        `env:"FIREBASE_PROJECT_ID"`
	StoreDriver             string        `env:"STORE_DRIVER" env-default:"firestore"`
	MongoURI                string        `env:"MONGO_URI"`
	MongoDatabase           string        `env:"MONGO_DATABASE" env-default:"topichub"`
	JWTSecret               string        `env:"JWT_SECRET" env-default:"supersecretjwtkey"`
	JWTTTL                  time.Duration `env:"JWT_TTL" env-default:"72h"`
	LogLevel                string        `env:"LOG_LEVEL" env-default:"info"`
	LogFormat               string        `env:"LOG_FORMAT" env-default:"json"`
	UserPageSize            int           `env:"USER_PAGE_SIZE" env-default:"1000"`
	FanoutLimit             int           `env:"FANOUT_LIMIT" env-default:"16"`
	ShutdownTimeout         time.Duration `env:"SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// Load reads an optional .env file, then the environment.
func Load() (*Config, error) {
	// A missing .env is fine; the environment may be set directly.
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: read env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return &cfg, nil
}

// IsProduction reports whether ENV is production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate checks settings that depend on each other.
func (c *Config) Validate() error {
	var errs []error

	// Firebase owns identity whichever store holds the documents.
	if c.FirebaseCredentialsPath == "" {
		errs = append(errs, errors.New("FIREBASE_CREDENTIALS_PATH must not be empty"))
	}

	switch c.StoreDriver {
	case DriverFirestore:
	case DriverMongo:
		if c.MongoURI == "" {
			errs = append(errs, errors.New("MONGO_URI is required for the mongo driver"))
		}
		if c.MongoDatabase == "" {
			errs = append(errs, errors.New("MONGO_DATABASE is required for the mongo driver"))
		}
	case DriverMemory:
		if c.IsProduction() {
			errs = append(errs, errors.New("the memory driver is not allowed in production"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver))
	}

	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET must not be empty"))
	} else if c.IsProduction() && c.JWTSecret == defaultJWTSecret {
		errs = append(errs, errors.New("JWT_SECRET must be set in production"))
	}
	if c.JWTTTL <= 0 {
		errs = append(errs, errors.New("JWT_TTL must be positive"))
	}
	if c.UserPageSize < 1 || c.UserPageSize > 1000 {
		errs = append(errs, fmt.Errorf("USER_PAGE_SIZE must be between 1 and 1000, got %d", c.UserPageSize))
	}
	if c.FanoutLimit < 1 {
		errs = append(errs, fmt.Errorf("FANOUT_LIMIT must be positive, got %d", c.FanoutLimit))
	}
	if c.Port == c.MetricsPort {
		errs = append(errs, errors.New("PORT and METRICS_PORT must differ"))
	}

	return errors.Join(errs...)
}
