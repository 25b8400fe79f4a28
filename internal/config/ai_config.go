package config

import (
	"fmt"
	"github.com/spf13/viper"
)

type AIConfig struct {
	Key                   string  `mapstructure:"key"`
	Model                 string  `mapstructure:"model"`
	MaxRequestsPerMinute  float32 `mapstructure:"max_requests_per_minute"`
	MaxRequestsPerDay     float32 `mapstructure:"max_requests_per_day"`
	AnalysisRetentionDays int     `mapstructure:"analysis_retention_days"`
}

func (config AIConfig) validate() error {
	if config.Key == "" {
		return fmt.Errorf("missing variable: ai key")
	}
	if config.AnalysisRetentionDays <= 0 {
		return fmt.Errorf("analysis_retention_days must be greater than zero")
	}
	return nil
}

func (config AIConfig) bindEnvironmentVariables(v *viper.Viper) error {
	return bindAll(v, map[string]string{
		"ai.key":                     "AI_KEY",
		"ai.model":                   "AI_MODEL",
		"ai.max_requests_per_minute": "AI_MAX_REQUESTS_PER_MINUTE",
		"ai.max_requests_per_day":    "AI_MAX_REQUESTS_PER_DAY",
	})
}
