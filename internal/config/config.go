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
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Registry RegistryConfig `yaml:"registry" mapstructure:"registry"`
	Matching MatchingConfig `yaml:"matching" mapstructure:"matching"`
	Survey   SurveyConfig   `yaml:"survey" mapstructure:"survey"`
	Export   ExportConfig   `yaml:"export" mapstructure:"export"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	SQLitePath  string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
}

// RegistryConfig locates the canonical entity dataset and its consolidation
// rules.
type RegistryConfig struct {
	RulesPath  string `yaml:"rules_path" mapstructure:"rules_path"`
	FiscalYear string `yaml:"fiscal_year" mapstructure:"fiscal_year"`
}

// MatchingConfig carries the resolution thresholds. Zero values fall back to
// the built-in defaults.
type MatchingConfig struct {
	ScopedThreshold float64 `yaml:"scoped_threshold" mapstructure:"scoped_threshold"`
	GlobalThreshold float64 `yaml:"global_threshold" mapstructure:"global_threshold"`
	LinkThreshold   float64 `yaml:"link_threshold" mapstructure:"link_threshold"`
}

// SurveyConfig configures the survey-platform API client and its sources.
type SurveyConfig struct {
	BaseURL        string         `yaml:"base_url" mapstructure:"base_url"`
	Token          string         `yaml:"token" mapstructure:"token"`
	OrganizationID string         `yaml:"organization_id" mapstructure:"organization_id"`
	PageSize       int            `yaml:"page_size" mapstructure:"page_size"`
	RatePerSec     float64        `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	Sources        []SurveySource `yaml:"sources" mapstructure:"sources"`
}

// SurveySource is one survey form to pull: a name used as the stored
// survey_type plus its API endpoint.
type SurveySource struct {
	Name     string `yaml:"name" mapstructure:"name"`
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint"`
}

// ExportConfig configures report output.
type ExportConfig struct {
	OutputDir string `yaml:"output_dir" mapstructure:"output_dir"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Validate checks the configuration for a given command mode. Modes only
// check what they actually need, so offline commands run without survey
// credentials.
func (c *Config) Validate(mode string) error {
	var problems []string

	check := func() {
		switch c.Store.Driver {
		case "sqlite":
			if c.Store.SQLitePath == "" {
				problems = append(problems, "store.sqlite_path is required for the sqlite driver")
			}
		case "postgres":
			if c.Store.DatabaseURL == "" {
				problems = append(problems, "store.database_url is required for the postgres driver")
			}
		default:
			problems = append(problems, "store.driver must be sqlite or postgres")
		}
	}

	switch mode {
	case "fetch":
		check()
		if c.Survey.BaseURL == "" {
			problems = append(problems, "survey.base_url is required")
		}
		if c.Survey.Token == "" {
			problems = append(problems, "survey.token is required")
		}
		if len(c.Survey.Sources) == 0 {
			problems = append(problems, "survey.sources must list at least one source")
		}
	case "ingest", "link", "report", "registry":
		check()
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	for _, t := range []struct {
		name  string
		value float64
	}{
		{"matching.scoped_threshold", c.Matching.ScopedThreshold},
		{"matching.global_threshold", c.Matching.GlobalThreshold},
		{"matching.link_threshold", c.Matching.LinkThreshold},
	} {
		if t.value < 0 || t.value > 1 {
			problems = append(problems, t.name+" must be between 0 and 1")
		}
	}

	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("COMPLIANCE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.sqlite_path", "compliance.db")
	v.SetDefault("registry.fiscal_year", "2024")
	v.SetDefault("matching.scoped_threshold", 0.85)
	v.SetDefault("matching.global_threshold", 0.90)
	v.SetDefault("matching.link_threshold", 0.90)
	v.SetDefault("survey.page_size", 100)
	v.SetDefault("survey.rate_per_sec", 5.0)
	v.SetDefault("survey.sources", []map[string]any{
		{"name": "survey1", "endpoint": "/api/v1/responses/survey1"},
		{"name": "survey2", "endpoint": "/api/v1/responses/survey2"},
	})
	v.SetDefault("export.output_dir", ".")
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
