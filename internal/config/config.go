// Package config loads the wizard server settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds the server settings.
type Config struct {
	GRPCAddr string `env:"WIZARD_GRPC_ADDR" envDefault:":50051"`
	HTTPAddr string `env:"WIZARD_HTTP_ADDR" envDefault:":8080"`
	DBPath   string `env:"WIZARD_DB" envDefault:"wizard.db"`

	// DebugAddr serves pprof and metrics when set.
	DebugAddr string `env:"WIZARD_DEBUG_ADDR"`

	// Table names a built-in step table; TableFile, when set, wins.
	Table     string `env:"WIZARD_TABLE" envDefault:"feedback"`
	TableFile string `env:"WIZARD_TABLE_FILE"`

	// TokenSecret signs identity tokens. Without it every request is
	// anonymous and only in-process callers can use the wizard.
	TokenSecret string `env:"WIZARD_TOKEN_SECRET"`

	OTelEnabled     bool    `env:"WIZARD_OTEL_ENABLED" envDefault:"false"`
	OTelEndpoint    string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTelSampleRatio float64 `env:"WIZARD_OTEL_SAMPLE_RATIO" envDefault:"1"`

	ShutdownTimeout time.Duration `env:"WIZARD_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Load reads the optional dotenv files and then the environment. Variables
// already set in the environment take precedence over the files.
func Load(dotenvFiles ...string) (*Config, error) {
	if len(dotenvFiles) == 0 {
		dotenvFiles = []string{".env"}
	}
	for _, path := range dotenvFiles {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}

	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate checks settings that env parsing cannot.
func (c *Config) Validate() error {
	if c.Table == "" && c.TableFile == "" {
		return errors.New("config: WIZARD_TABLE or WIZARD_TABLE_FILE is required")
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("config: WIZARD_SHUTDOWN_TIMEOUT must be positive, got %s", c.ShutdownTimeout)
	}
	if c.OTelSampleRatio < 0 || c.OTelSampleRatio > 1 {
		return fmt.Errorf("config: WIZARD_OTEL_SAMPLE_RATIO must be in [0, 1], got %g", c.OTelSampleRatio)
	}
	return nil
}
