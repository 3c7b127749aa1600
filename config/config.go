package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
)

const envPrefix = "PLAYERS"

// Config is the application configuration, read from PLAYERS_* variables.
// Database settings keep the DB_* names.
type Config struct {
	Sources SourcesConfig
	Output  OutputConfig
	Stats   StatsConfig
	Server  ServerConfig
	Logging LoggingConfig
	DB      DBConfig `ignored:"true"`
}

type SourcesConfig struct {
	RealmEyeFile       string `envconfig:"REALMEYE_FILE" default:"data/realmeye-full.csv" validate:"required"`
	RealmEyeFallback   string `envconfig:"REALMEYE_FALLBACK" default:"ROTMG Players Active Players Over Time - RealmEyeData.csv"`
	RealmStockFile     string `envconfig:"REALMSTOCK_FILE" default:"data/realmstock-full.csv" validate:"required"`
	RealmStockFallback string `envconfig:"REALMSTOCK_FALLBACK"`
}

type OutputConfig struct {
	File   string `envconfig:"FILE" default:"data/daily.json" validate:"required"`
	Format string `envconfig:"FORMAT" default:"rows" validate:"oneof=rows columnar"`
}

type StatsConfig struct {
	Primary     string `envconfig:"PRIMARY" default:"realmeye" validate:"required"`
	TrendWindow int    `envconfig:"TREND_WINDOW" default:"30" validate:"min=1"`
}

type ServerConfig struct {
	Port int `envconfig:"PORT" default:"8080" validate:"min=1,max=65535"`
}

type LoggingConfig struct {
	Level       string `envconfig:"LEVEL" default:"info" validate:"oneof=debug info warn error"`
	Development bool   `envconfig:"DEVELOPMENT" default:"false"`
}

type DBConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" default:"postgres"`
	Password string `envconfig:"DB_PASSWORD" default:"password"`
	Name     string `envconfig:"DB_NAME" default:"playerstats"`
}

// DSN returns the postgres connection string.
func (c DBConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
		c.Host, c.Port, c.User, c.Password, c.Name)
}

// Load reads the configuration from the environment and validates it.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}
	if err := envconfig.Process("", &cfg.DB); err != nil {
		return nil, fmt.Errorf("failed to load database config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}
