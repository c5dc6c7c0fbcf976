package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Input   InputConfig   `yaml:"input" mapstructure:"input"`
	Clean   CleanConfig   `yaml:"clean" mapstructure:"clean"`
	Report  ReportConfig  `yaml:"report" mapstructure:"report"`
	Fetch   FetchConfig   `yaml:"fetch" mapstructure:"fetch"`
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Publish PublishConfig `yaml:"publish" mapstructure:"publish"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// InputConfig locates and decodes the raw CSV exports.
type InputConfig struct {
	MembershipGlob string   `yaml:"membership_glob" mapstructure:"membership_glob"`
	RosterGlob     string   `yaml:"roster_glob" mapstructure:"roster_glob"`
	Encodings      []string `yaml:"encodings" mapstructure:"encodings"`
	Workers        int      `yaml:"workers" mapstructure:"workers"`
	SkipUnreadable bool     `yaml:"skip_unreadable" mapstructure:"skip_unreadable"`
}

// CleanConfig configures where the cleaned dataset is written.
type CleanConfig struct {
	OutputDir    string `yaml:"output_dir" mapstructure:"output_dir"`
	OutputFile   string `yaml:"output_file" mapstructure:"output_file"`
	UnknownLabel string `yaml:"unknown_label" mapstructure:"unknown_label"`
}

// ReportConfig configures the statistics stage.
type ReportConfig struct {
	TopN   int  `yaml:"top_n" mapstructure:"top_n"`
	Charts bool `yaml:"charts" mapstructure:"charts"`
	XLSX   bool `yaml:"xlsx" mapstructure:"xlsx"`
}

// FetchConfig configures downloads from the open data portal.
type FetchConfig struct {
	BaseURL           string  `yaml:"base_url" mapstructure:"base_url"`
	DestDir           string  `yaml:"dest_dir" mapstructure:"dest_dir"`
	UserAgent         string  `yaml:"user_agent" mapstructure:"user_agent"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	TimeoutSecs       int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries        int     `yaml:"max_retries" mapstructure:"max_retries"`
}

// StoreConfig configures the run ledger backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// PublishConfig configures loading the cleaned dataset into Postgres.
type PublishConfig struct {
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	Schema      string `yaml:"schema" mapstructure:"schema"`
	Table       string `yaml:"table" mapstructure:"table"`
}

// ServerConfig configures the read-only API server.
type ServerConfig struct {
	Port        int      `yaml:"port" mapstructure:"port"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// OutputPath is the cleaned dataset location.
func (c CleanConfig) OutputPath() string {
	return filepath.Join(c.OutputDir, c.OutputFile)
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("ORGAOS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("input.membership_glob", "data/orgaosDeputados-L*.csv")
	v.SetDefault("input.roster_glob", "data/deputados*.csv")
	v.SetDefault("input.encodings", []string{"utf-8", "latin-1"})
	v.SetDefault("input.workers", 4)
	v.SetDefault("input.skip_unreadable", false)
	v.SetDefault("clean.output_dir", "output")
	v.SetDefault("clean.output_file", "orgaos_deputados_limpo.csv")
	v.SetDefault("clean.unknown_label", "Unknown")
	v.SetDefault("report.top_n", 10)
	v.SetDefault("report.charts", true)
	v.SetDefault("report.xlsx", true)
	v.SetDefault("fetch.base_url", "https://dadosabertos.camara.leg.br/arquivos")
	v.SetDefault("fetch.dest_dir", "data")
	v.SetDefault("fetch.user_agent", "orgaos-cli/1.0")
	v.SetDefault("fetch.requests_per_second", 2.0)
	v.SetDefault("fetch.timeout_secs", 120)
	v.SetDefault("fetch.max_retries", 3)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "orgaos.db")
	v.SetDefault("publish.schema", "orgaos")
	v.SetDefault("publish.table", "memberships")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

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

// Validate checks the settings a command mode depends on. Modes: clean,
// report, fetch, publish, serve, runs.
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "clean":
		if c.Input.MembershipGlob == "" {
			errs = append(errs, "input.membership_glob is required")
		}
		if c.Input.Workers < 1 || c.Input.Workers > 64 {
			errs = append(errs, "input.workers must be between 1 and 64")
		}
		if len(c.Input.Encodings) == 0 {
			errs = append(errs, "input.encodings must list at least one encoding")
		}
		if c.Clean.OutputFile == "" {
			errs = append(errs, "clean.output_file is required")
		}
		if c.Clean.UnknownLabel == "" {
			errs = append(errs, "clean.unknown_label is required")
		}
		errs = append(errs, c.storeErrors()...)
	case "report":
		if c.Clean.OutputFile == "" {
			errs = append(errs, "clean.output_file is required")
		}
		if c.Report.TopN < 1 {
			errs = append(errs, "report.top_n must be > 0")
		}
	case "fetch":
		if c.Fetch.BaseURL == "" {
			errs = append(errs, "fetch.base_url is required")
		}
		if c.Fetch.RequestsPerSecond <= 0 {
			errs = append(errs, "fetch.requests_per_second must be > 0")
		}
	case "publish":
		if c.PublishURL() == "" {
			errs = append(errs, "publish.database_url (or store.database_url with the postgres driver) is required")
		}
		if c.Publish.Schema == "" || c.Publish.Table == "" {
			errs = append(errs, "publish.schema and publish.table are required")
		}
	case "serve":
		if c.Server.Port <= 0 {
			errs = append(errs, "server.port must be > 0")
		}
	case "runs":
		errs = append(errs, c.storeErrors()...)
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(errs) > 0 {
		return eris.New(fmt.Sprintf("config: %s", strings.Join(errs, "; ")))
	}
	return nil
}

func (c *Config) storeErrors() []string {
	var errs []string
	switch c.Store.Driver {
	case "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Sprintf("store.driver %q must be sqlite or postgres", c.Store.Driver))
	}
	if c.Store.DatabaseURL == "" {
		errs = append(errs, "store.database_url is required")
	}
	return errs
}

// PublishURL is the publish target, falling back to the ledger database
// when it is Postgres.
func (c *Config) PublishURL() string {
	if c.Publish.DatabaseURL != "" {
		return c.Publish.DatabaseURL
	}
	if c.Store.Driver == "postgres" {
		return c.Store.DatabaseURL
	}
	return ""
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
