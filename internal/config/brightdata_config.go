package config

import (
	"fmt"
	"github.com/spf13/viper"
	"strings"
	"time"
)

type BrightDataConfig struct {
	APIToken             string        `mapstructure:"api_token"`
	DatasetID            string        `mapstructure:"dataset_id"`
	TriggerURL           string        `mapstructure:"trigger_url"`
	SnapshotURL          string        `mapstructure:"snapshot_url"`
	PollInterval         time.Duration `mapstructure:"poll_interval"`
	MaxPollAttempts      int           `mapstructure:"max_poll_attempts"`
	MaxRequestsPerSecond float32       `mapstructure:"max_requests_per_second"`
}

func (config BrightDataConfig) validate() error {

	var missingFields []string

	if config.APIToken == "" {
		missingFields = append(missingFields, "api_token")
	}

	if config.DatasetID == "" {
		missingFields = append(missingFields, "dataset_id")
	}

	if len(missingFields) > 0 {
		return fmt.Errorf("missing required variables: %s", strings.Join(missingFields, ", "))
	}

	if config.MaxPollAttempts <= 0 {
		return fmt.Errorf("max_poll_attempts must be greater than zero")
	}

	return nil
}

func (config BrightDataConfig) bindEnvironmentVariables(v *viper.Viper) error {
	return bindAll(v, map[string]string{
		"brightdata.api_token":               "BRIGHTDATA_API_TOKEN",
		"brightdata.dataset_id":              "BRIGHTDATA_DATASET_ID",
		"brightdata.trigger_url":             "BRIGHTDATA_TRIGGER_URL",
		"brightdata.snapshot_url":            "BRIGHTDATA_SNAPSHOT_URL",
		"brightdata.poll_interval":           "BRIGHTDATA_POLL_INTERVAL",
		"brightdata.max_poll_attempts":       "BRIGHTDATA_MAX_POLL_ATTEMPTS",
		"brightdata.max_requests_per_second": "BRIGHTDATA_MAX_REQUESTS_PER_SECOND",
	})
}
