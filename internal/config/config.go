// Package config loads sqlfinder settings from a YAML file, SQLFINDER_*
// environment variables and defaults, in increasing order of precedence
// file < env. Command-line flags are applied on top by the CLI.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/viper"

	"github.com/roach88/sqlfinder/internal/dialect"
)

// EnvPrefix prefixes every environment override, e.g. SQLFINDER_DATABASE.
const EnvPrefix = "SQLFINDER"

// Config is the resolved configuration.
type Config struct {
	// Database is the path of the SQLite host database.
	Database string `mapstructure:"database"`

	// Dialect is the SQL dialect finders compose for.
	Dialect string `mapstructure:"dialect"`

	// Language selects the current content language by name or tag.
	// Empty means the default language.
	Language string `mapstructure:"language"`

	// Sort keeps rows in selector order.
	Sort bool `mapstructure:"sort"`

	LogLevel string `mapstructure:"log_level"`

	// PGDSN, when set, executes finders on PostgreSQL instead of SQLite.
	PGDSN string `mapstructure:"pg_dsn"`
}

// Default returns the built-in defaults.
func Default() Config {
	return Config{
		Database: "sqlfinder.db",
		Dialect:  "sqlite",
		Language: "",
		Sort:     true,
		LogLevel: "info",
	}
}

// Load reads configuration. With an empty path, sqlfinder.yaml is looked
// up in the working directory and may be missing; an explicit path must
// exist.
func Load(path string) (Config, error) {
	v := viper.New()
	def := Default()
	v.SetDefault("database", def.Database)
	v.SetDefault("dialect", def.Dialect)
	v.SetDefault("language", def.Language)
	v.SetDefault("sort", def.Sort)
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("pg_dsn", def.PGDSN)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("sqlfinder")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail late.
func (c Config) Validate() error {
	if _, err := dialect.ByName(c.Dialect); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	if c.Database == "" && c.PGDSN == "" {
		return fmt.Errorf("config: database must be set")
	}
	return nil
}

// Level parses LogLevel.
func (c Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("config: log_level %q: %w", c.LogLevel, err)
	}
	return level, nil
}

// SQLDialect returns the configured dialect.
func (c Config) SQLDialect() dialect.Dialect {
	d, err := dialect.ByName(c.Dialect)
	if err != nil {
		return dialect.SQLite{}
	}
	return d
}
