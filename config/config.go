// Package config loads renewalboard settings from config.yaml and the environment.
package config

import (
	"math"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store          StoreConfig          `yaml:"store" mapstructure:"store"`
	Server         ServerConfig         `yaml:"server" mapstructure:"server"`
	Log            LogConfig            `yaml:"log" mapstructure:"log"`
	Goals          GoalsConfig          `yaml:"goals" mapstructure:"goals"`
	Classification ClassificationConfig `yaml:"classification" mapstructure:"classification"`
	Compliance     ComplianceConfig     `yaml:"compliance" mapstructure:"compliance"`
	Seed           SeedConfig           `yaml:"seed" mapstructure:"seed"`
}

// StoreConfig configures the manager record store backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	SQLitePath  string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port                int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins      []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	ShutdownTimeoutSecs int      `yaml:"shutdown_timeout_secs" mapstructure:"shutdown_timeout_secs"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// GoalsConfig holds the renewal goal for each reporting period of the quarter.
type GoalsConfig struct {
	Month1      int      `yaml:"month1" mapstructure:"month1"`
	Month2      int      `yaml:"month2" mapstructure:"month2"`
	Month3      int      `yaml:"month3" mapstructure:"month3"`
	Quarter     int      `yaml:"quarter" mapstructure:"quarter"`
	MonthLabels []string `yaml:"month_labels" mapstructure:"month_labels"`
}

// ClassificationConfig tunes the weighted impact index.
type ClassificationConfig struct {
	Weights    WeightsConfig    `yaml:"weights" mapstructure:"weights"`
	LateCap    float64          `yaml:"late_cap" mapstructure:"late_cap"`
	Thresholds ThresholdsConfig `yaml:"thresholds" mapstructure:"thresholds"`
}

// WeightsConfig holds the impact index component weights. They must sum to 1.
type WeightsConfig struct {
	Renewals float64 `yaml:"renewals" mapstructure:"renewals"`
	Quality  float64 `yaml:"quality" mapstructure:"quality"`
	Late     float64 `yaml:"late" mapstructure:"late"`
}

// ThresholdsConfig holds the inclusive upper bounds of each label band.
type ThresholdsConfig struct {
	HighPerformer    float64 `yaml:"high_performer" mapstructure:"high_performer"`
	OnTrack          float64 `yaml:"on_track" mapstructure:"on_track"`
	NeedsImprovement float64 `yaml:"needs_improvement" mapstructure:"needs_improvement"`
}

// ComplianceConfig holds the corporate indicator targets beyond the renewal goal.
type ComplianceConfig struct {
	MinQuality int     `yaml:"min_quality" mapstructure:"min_quality"`
	MaxLatePct float64 `yaml:"max_late_pct" mapstructure:"max_late_pct"`
	MinManaged int     `yaml:"min_managed" mapstructure:"min_managed"`
}

// SeedConfig controls the startup bulk load.
type SeedConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Path    string `yaml:"path" mapstructure:"path"`
}

// Load reads configuration from file and environment. An empty path searches
// the working directory for config.yaml.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("RENEWALS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("store.driver", "postgres")
	v.SetDefault("store.database_url", "")
	v.SetDefault("store.sqlite_path", "renewals.db")
	v.SetDefault("store.max_conns", 10)
	v.SetDefault("store.min_conns", 2)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.shutdown_timeout_secs", 10)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("goals.month1", 8)
	v.SetDefault("goals.month2", 13)
	v.SetDefault("goals.month3", 15)
	v.SetDefault("goals.quarter", 36)
	v.SetDefault("goals.month_labels", []string{"Feb", "Mar", "Apr"})
	v.SetDefault("classification.weights.renewals", 0.50)
	v.SetDefault("classification.weights.quality", 0.30)
	v.SetDefault("classification.weights.late", 0.20)
	v.SetDefault("classification.late_cap", 10.0)
	v.SetDefault("classification.thresholds.high_performer", 0.25)
	v.SetDefault("classification.thresholds.on_track", 0.45)
	v.SetDefault("classification.thresholds.needs_improvement", 0.65)
	v.SetDefault("compliance.min_quality", 80)
	v.SetDefault("compliance.max_late_pct", 2.0)
	v.SetDefault("compliance.min_managed", 180)
	v.SetDefault("seed.enabled", true)
	v.SetDefault("seed.path", "")
}

// Validate rejects settings the analytics cannot work with.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case "postgres", "sqlite":
	default:
		return eris.Errorf("config: unknown store driver %q", c.Store.Driver)
	}

	g := c.Goals
	if g.Month1 <= 0 || g.Month2 <= 0 || g.Month3 <= 0 || g.Quarter <= 0 {
		return eris.New("config: goals must be positive")
	}
	if len(g.MonthLabels) != 3 {
		return eris.Errorf("config: expected 3 month labels, got %d", len(g.MonthLabels))
	}

	w := c.Classification.Weights
	if w.Renewals < 0 || w.Quality < 0 || w.Late < 0 {
		return eris.New("config: classification weights must not be negative")
	}
	if math.Abs(w.Renewals+w.Quality+w.Late-1) > 0.001 {
		return eris.Errorf("config: classification weights sum to %.3f, want 1", w.Renewals+w.Quality+w.Late)
	}
	if c.Classification.LateCap <= 0 {
		return eris.New("config: classification late_cap must be positive")
	}

	t := c.Classification.Thresholds
	if !(0 <= t.HighPerformer && t.HighPerformer < t.OnTrack && t.OnTrack < t.NeedsImprovement && t.NeedsImprovement <= 1) {
		return eris.New("config: classification thresholds must ascend within [0,1]")
	}

	return nil
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
