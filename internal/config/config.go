package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Starlink  StarlinkConfig  `yaml:"starlink" mapstructure:"starlink"`
	Nox       NoxConfig       `yaml:"nox" mapstructure:"nox"`
	Venus     VenusConfig     `yaml:"venus" mapstructure:"venus"`
	Overrides OverridesConfig `yaml:"overrides" mapstructure:"overrides"`
	Report    ReportConfig    `yaml:"report" mapstructure:"report"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the run-history database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	Path        string `yaml:"path" mapstructure:"path"`
}

// StarlinkConfig holds Starlink management API settings.
type StarlinkConfig struct {
	BaseURL   string  `yaml:"base_url" mapstructure:"base_url"`
	Token     string  `yaml:"token" mapstructure:"token"`
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// NoxConfig holds Nox router directory API settings.
type NoxConfig struct {
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	Token   string `yaml:"token" mapstructure:"token"`
}

// VenusConfig holds Venus ISP-membership API settings.
type VenusConfig struct {
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	Token   string `yaml:"token" mapstructure:"token"`
}

// OverridesConfig points at the local nickname override file.
type OverridesConfig struct {
	File string `yaml:"file" mapstructure:"file"`
}

// ReportConfig configures report output.
type ReportConfig struct {
	Output string `yaml:"output" mapstructure:"output"`
	Format string `yaml:"format" mapstructure:"format"`
}

// ServerConfig configures the run-history HTTP server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
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
	v.SetEnvPrefix("STARLINKER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "starlinker.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("starlink.rate_limit", 4)
	v.SetDefault("report.output", "report.csv")
	v.SetDefault("report.format", "csv")

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

// Validate checks that the fields required for the given mode are present.
// Mode is one of "reconcile", "offline", or "serve".
func (c *Config) Validate(mode string) error {
	var missing []string

	checkStore := func() {
		switch c.Store.Driver {
		case "sqlite":
			if c.Store.Path == "" {
				missing = append(missing, "store.path is required for the sqlite driver")
			}
		case "postgres":
			if c.Store.DatabaseURL == "" {
				missing = append(missing, "store.database_url is required for the postgres driver")
			}
		default:
			missing = append(missing, "store.driver must be sqlite or postgres")
		}
	}

	switch mode {
	case "reconcile":
		if c.Starlink.BaseURL == "" {
			missing = append(missing, "starlink.base_url is required")
		}
		if c.Starlink.Token == "" {
			missing = append(missing, "starlink.token is required")
		}
		if c.Nox.BaseURL == "" {
			missing = append(missing, "nox.base_url is required")
		}
		if c.Venus.BaseURL == "" {
			missing = append(missing, "venus.base_url is required")
		}
		checkStore()
	case "offline":
		checkStore()
	case "serve":
		if c.Server.Port <= 0 {
			missing = append(missing, "server.port must be > 0")
		}
		checkStore()
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(missing) > 0 {
		return eris.New("config: " + strings.Join(missing, "; "))
	}
	return nil
}
