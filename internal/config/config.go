package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/arc-research/housing-dashboard/internal/dataset"
)

// Config holds the full application configuration.
type Config struct {
	Data   DataConfig   `yaml:"data" mapstructure:"data"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Cache  CacheConfig  `yaml:"cache" mapstructure:"cache"`
	Theme  ThemeConfig  `yaml:"theme" mapstructure:"theme"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// DataConfig locates the dataset snapshots.
type DataConfig struct {
	DatabaseURL string           `yaml:"database_url" mapstructure:"database_url"`
	Datasets    []dataset.Source `yaml:"datasets" mapstructure:"datasets"`
	Boundaries  dataset.Source   `yaml:"boundaries" mapstructure:"boundaries"`
	History     string           `yaml:"history" mapstructure:"history"`
}

// Sources returns the loader input.
func (d DataConfig) Sources() dataset.Sources {
	return dataset.Sources{
		Datasets:   d.Datasets,
		Boundaries: d.Boundaries,
		History:    d.History,
	}
}

// NeedsDatabase reports whether any source is read from PostGIS.
func (d DataConfig) NeedsDatabase() bool {
	if strings.EqualFold(d.Boundaries.Driver, dataset.DriverPostGIS) {
		return true
	}
	for _, s := range d.Datasets {
		if strings.EqualFold(s.Driver, dataset.DriverPostGIS) {
			return true
		}
	}
	return false
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port            int      `yaml:"port" mapstructure:"port"`
	CORSOrigins     []string `yaml:"cors_origins" mapstructure:"cors_origins"`
	RateLimit       float64  `yaml:"rate_limit" mapstructure:"rate_limit"`
	RateBurst       int      `yaml:"rate_burst" mapstructure:"rate_burst"`
	ShutdownTimeout int      `yaml:"shutdown_timeout_secs" mapstructure:"shutdown_timeout_secs"`
}

// CacheConfig configures render output caching.
type CacheConfig struct {
	Driver     string `yaml:"driver" mapstructure:"driver"`
	MaxEntries int    `yaml:"max_entries" mapstructure:"max_entries"`
	TTLMinutes int    `yaml:"ttl_minutes" mapstructure:"ttl_minutes"`
	RedisAddr  string `yaml:"redis_addr" mapstructure:"redis_addr"`
	RedisDB    int    `yaml:"redis_db" mapstructure:"redis_db"`
}

// TTL returns the entry lifetime.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLMinutes) * time.Minute
}

// ThemeConfig points at an optional colour ramp override file.
type ThemeConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("HOUSING")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.rate_limit", 20.0)
	v.SetDefault("server.rate_burst", 40)
	v.SetDefault("server.shutdown_timeout_secs", 10)
	v.SetDefault("cache.driver", "memory")
	v.SetDefault("cache.max_entries", 512)
	v.SetDefault("cache.ttl_minutes", 60)
	v.SetDefault("cache.redis_addr", "localhost:6379")
	v.SetDefault("data.database_url", "")
	v.SetDefault("data.history", "")
	v.SetDefault("theme.path", "")
	v.SetDefault("data.datasets", []map[string]string{
		{"name": "home_values", "driver": "gpkg", "path": "data/zillow_final.gpkg"},
		{"name": "forecasts", "driver": "gpkg", "path": "data/forecasts.gpkg"},
		{"name": "rent_index", "driver": "gpkg", "path": "data/rent_index.gpkg"},
	})
	v.SetDefault("data.boundaries.driver", "shapefile")
	v.SetDefault("data.boundaries.path", "data/county_boundaries.shp")
	v.SetDefault("data.boundaries.name_field", "NAMELSAD")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings a command mode depends on. Modes are serve,
// render and validate.
func (c *Config) Validate(mode string) error {
	var problems []string

	switch mode {
	case "serve":
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			problems = append(problems, "server.port must be > 0 and <= 65535")
		}
		if c.Server.RateLimit < 0 {
			problems = append(problems, "server.rate_limit must be >= 0")
		}
		if c.Server.RateLimit > 0 && c.Server.RateBurst < 1 {
			problems = append(problems, "server.rate_burst must be >= 1 when rate_limit is set")
		}
		switch strings.ToLower(c.Cache.Driver) {
		case "", "memory", "none":
		case "redis":
			if c.Cache.RedisAddr == "" {
				problems = append(problems, "cache.redis_addr is required for the redis cache")
			}
		default:
			problems = append(problems, "cache.driver must be memory, redis or none")
		}
		problems = append(problems, c.dataProblems()...)
	case "render", "validate":
		problems = append(problems, c.dataProblems()...)
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

func (c *Config) dataProblems() []string {
	var problems []string
	if len(c.Data.Datasets) == 0 {
		problems = append(problems, "data.datasets must list at least one dataset")
	}
	seen := make(map[string]bool)
	for i, s := range c.Data.Datasets {
		if s.Name == "" {
			problems = append(problems, fmt.Sprintf("data.datasets[%d].name is required", i))
			continue
		}
		if seen[s.Name] {
			problems = append(problems, fmt.Sprintf("data.datasets name %s is duplicated", s.Name))
		}
		seen[s.Name] = true
	}
	if c.Data.NeedsDatabase() && c.Data.DatabaseURL == "" {
		problems = append(problems, "data.database_url is required for postgis sources")
	}
	return problems
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
