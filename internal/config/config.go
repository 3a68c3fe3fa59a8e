// Package config assembles the application configuration from defaults,
// command line flags, an optional .env file and environment variables
// (in increasing priority for env over defaults, flags taking precedence
// over defaults but yielding to explicit env values), then validates it.
package config

import (
	"flag"
	"log"
	"time"

	env "github.com/caarlos0/env/v6"
	validator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds every runtime knob of the blog service.
type Config struct {
	RunAddr             string        `env:"SERVER_ADDRESS" validate:"hostname_port"`
	LogLevel            string        `env:"LOG_LEVEL" validate:"loglevel"`
	DatabaseDSN         string        `env:"DATABASE_DSN"`
	DBConnectionTimeout time.Duration `env:"DB_CONNECTION_TIMEOUT"`
	MigrationsDir       string        `env:"MIGRATIONS_DIR"`
	BcryptCost          int           `env:"BCRYPT_COST" validate:"min=0,max=31"`
	SessionCookieName   string        `env:"SESSION_COOKIE_NAME" validate:"required"`
	SessionTTL          time.Duration `env:"SESSION_TTL" validate:"required"`
	SessionCleanupEvery time.Duration `env:"SESSION_CLEANUP_EVERY" validate:"required"`
}

var defaultConfig = Config{
	RunAddr:             ":8080",
	LogLevel:            "info",
	DatabaseDSN:         "",
	DBConnectionTimeout: 10 * time.Second,
	MigrationsDir:       "cmd/miniblog/migrations",
	BcryptCost:          10,
	SessionCookieName:   "blog_session",
	SessionTTL:          time.Hour,
	SessionCleanupEvery: 5 * time.Minute,
}

func validateLogLevel(fieldLevel validator.FieldLevel) bool {
	allowedLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
		"fatal": true,
	}

	return allowedLogLevels[fieldLevel.Field().String()]
}

func (c *Config) validate() error {
	validate := validator.New()

	if err := validate.RegisterValidation("loglevel", validateLogLevel); err != nil {
		return err
	}

	return validate.Struct(c)
}

// InitOption customizes New().
type InitOption func(*initOptions)

type initOptions struct {
	disableFlagsParsing bool
}

// WithDisableFlagsParsing skips CLI flag parsing; used by tests, which own
// os.Args themselves.
func WithDisableFlagsParsing(disableFlagsParsing bool) InitOption {
	return func(options *initOptions) {
		options.disableFlagsParsing = disableFlagsParsing
	}
}

func applyDefaults(dst *Config, src Config) {
	*dst = src
}

// New builds and validates the configuration.
func New(optionsProto ...InitOption) (*Config, error) {
	options := &initOptions{}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	if err := godotenv.Load(); err != nil {
		log.Printf("Unable to load .env file: %v", err)
	}

	values := &Config{}
	applyDefaults(values, defaultConfig)

	if !options.disableFlagsParsing {
		flag.StringVar(&values.RunAddr, "a", values.RunAddr, "address and port to run server")
		flag.StringVar(&values.LogLevel, "l", values.LogLevel, "logger level")
		flag.StringVar(&values.DatabaseDSN, "d", values.DatabaseDSN, "database connection string (empty = in-memory storage)")
		flag.StringVar(&values.MigrationsDir, "m", values.MigrationsDir, "goose migrations directory")
		flag.IntVar(&values.BcryptCost, "c", values.BcryptCost, "bcrypt work factor for password hashing")
		flag.Parse()
	}

	var valuesFromEnv Config
	if err := env.Parse(&valuesFromEnv); err != nil {
		return nil, err
	}

	if valuesFromEnv.RunAddr != "" {
		values.RunAddr = valuesFromEnv.RunAddr
	}

	if valuesFromEnv.LogLevel != "" {
		values.LogLevel = valuesFromEnv.LogLevel
	}

	if valuesFromEnv.DatabaseDSN != "" {
		values.DatabaseDSN = valuesFromEnv.DatabaseDSN
	}

	if valuesFromEnv.DBConnectionTimeout != 0 {
		values.DBConnectionTimeout = valuesFromEnv.DBConnectionTimeout
	}

	if valuesFromEnv.MigrationsDir != "" {
		values.MigrationsDir = valuesFromEnv.MigrationsDir
	}

	if valuesFromEnv.BcryptCost != 0 {
		values.BcryptCost = valuesFromEnv.BcryptCost
	}

	if valuesFromEnv.SessionCookieName != "" {
		values.SessionCookieName = valuesFromEnv.SessionCookieName
	}

	if valuesFromEnv.SessionTTL != 0 {
		values.SessionTTL = valuesFromEnv.SessionTTL
	}

	if valuesFromEnv.SessionCleanupEvery != 0 {
		values.SessionCleanupEvery = valuesFromEnv.SessionCleanupEvery
	}

	if err := values.validate(); err != nil {
		return nil, err
	}

	return values, nil
}
