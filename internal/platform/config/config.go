package config

import "github.com/caarlos0/env/v11"

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName string `env:"SERVICE_NAME" envDefault:"warehouse"`
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8080"`
	PostgresDSN string `env:"POSTGRES_DSN"`

	// SeedBaseline inserts the sample products on startup when the
	// products table is empty.
	SeedBaseline bool `env:"SEED_BASELINE" envDefault:"false"`

	// AppendRetries bounds how often a command re-reads and re-appends
	// after a revision conflict before failing.
	AppendRetries int `env:"APPEND_RETRIES" envDefault:"3"`

	// LowStockThreshold is the worker's warning floor.
	LowStockThreshold int `env:"LOW_STOCK_THRESHOLD" envDefault:"10"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
