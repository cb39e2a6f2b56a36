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
	AI        AIConfig        `yaml:"ai" mapstructure:"ai"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// AIConfig configures the classification/extraction cascade.
type AIConfig struct {
	// Enabled gates all model calls. When false every component skips
	// straight to its regex-only path.
	Enabled           bool    `yaml:"enabled" mapstructure:"enabled"`
	ClassifyThreshold float64 `yaml:"classify_threshold" mapstructure:"classify_threshold"`
	MinScore          float64 `yaml:"min_score" mapstructure:"min_score"`
	QuarterlyMinScore float64 `yaml:"quarterly_min_score" mapstructure:"quarterly_min_score"`
	MaxKPIs           int     `yaml:"max_kpis" mapstructure:"max_kpis"`
	MaxHighlights     int     `yaml:"max_highlights" mapstructure:"max_highlights"`
	ContextChars      int     `yaml:"context_chars" mapstructure:"context_chars"`
	ClassifyChars     int     `yaml:"classify_chars" mapstructure:"classify_chars"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key             string  `yaml:"key" mapstructure:"key"`
	Model           string  `yaml:"model" mapstructure:"model"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec" mapstructure:"rate_limit_per_sec"`
	MaxTokens       int64   `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver string `yaml:"driver" mapstructure:"driver"`
	DSN    string `yaml:"dsn" mapstructure:"dsn"`
}

// ServerConfig configures the HTTP server.
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
	v.SetEnvPrefix("DOCINTEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("ai.enabled", true)
	v.SetDefault("ai.classify_threshold", 0.55)
	v.SetDefault("ai.min_score", 0.20)
	v.SetDefault("ai.quarterly_min_score", 0.15)
	v.SetDefault("ai.max_kpis", 12)
	v.SetDefault("ai.max_highlights", 8)
	v.SetDefault("ai.context_chars", 4000)
	v.SetDefault("ai.classify_chars", 1500)
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.rate_limit_per_sec", 2)
	v.SetDefault("anthropic.max_tokens", 1024)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.dsn", "docintel.db")
	v.SetDefault("server.port", 8080)
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
