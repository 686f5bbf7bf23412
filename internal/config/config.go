// Package config loads application configuration from defaults, an
// optional config file, and COURSESHELF_* environment variables, in
// rising precedence.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Default output file names.
const (
	DefaultDBPath       = "file.db"
	DefaultReportPath   = "courseshelf_report.md"
	DefaultPlanPath     = "courseshelf_plan.json"
	DefaultDebugLogPath = "courseshelf_llm_debug.json"
)

// Config holds all settings for a planning run.
type Config struct {
	DBPath       string  `mapstructure:"db_path"`
	Provider     string  `mapstructure:"provider"`
	Model        string  `mapstructure:"model"`
	Threshold    float64 `mapstructure:"threshold"`
	MaxDepth     int     `mapstructure:"max_depth"`
	CacheSize    int     `mapstructure:"cache_size"`
	LogLevel     string  `mapstructure:"log_level"`
	ReportPath   string  `mapstructure:"report_path"`
	PlanPath     string  `mapstructure:"plan_path"`
	DebugLogPath string  `mapstructure:"debug_log_path"`

	// ExcludeDirs overrides the scanner's exclusion set when non-empty.
	ExcludeDirs []string `mapstructure:"exclude_dirs"`
}

// Load reads configuration. cfgFile may be empty, in which case
// courseshelf.yaml is looked for in the working directory and is
// optional.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("db_path", DefaultDBPath)
	v.SetDefault("provider", "")
	v.SetDefault("model", "")
	v.SetDefault("threshold", 0.75)
	v.SetDefault("max_depth", 0)
	v.SetDefault("cache_size", 4096)
	v.SetDefault("log_level", "info")
	v.SetDefault("report_path", DefaultReportPath)
	v.SetDefault("plan_path", DefaultPlanPath)
	v.SetDefault("debug_log_path", DefaultDebugLogPath)

	v.SetEnvPrefix("COURSESHELF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	} else {
		v.SetConfigName("courseshelf")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings that a run cannot work with.
func (c *Config) Validate() error {
	if c.Threshold < 0 || c.Threshold > 1 {
		return fmt.Errorf("threshold must be in [0, 1], got %g", c.Threshold)
	}
	if c.MaxDepth < 0 {
		return fmt.Errorf("max_depth must be non-negative, got %d", c.MaxDepth)
	}
	if c.DBPath == "" {
		return fmt.Errorf("db_path must not be empty")
	}
	return nil
}
