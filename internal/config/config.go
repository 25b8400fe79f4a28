package config

import (
	"errors"
	"fmt"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"os"
)

type Config struct {
	Logger     LoggerConfig     `mapstructure:"logger"`
	Server     ServerConfig     `mapstructure:"server"`
	DB         DBConfig         `mapstructure:"db"`
	BrightData BrightDataConfig `mapstructure:"brightdata"`
	AI         AIConfig         `mapstructure:"ai"`
}

var configFile = "./configs/config.yaml"

func Get() *Config {

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warnf("can't load .env file: %v", err)
	}

	file := configFile
	if value, ok := os.LookupEnv("CONFIG_PATH"); ok && value != "" {
		file = value
	}

	config, err := loadConfig(file)
	if err != nil {
		log.Fatal(err)
	}

	return config
}

func loadConfig(file string) (*Config, error) {

	v := viper.New()
	v.SetConfigFile(file)
	v.AutomaticEnv()

	setDefaults(v)

	err := bindEnvironmentVariables(v)
	if err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", file, err)
	}

	config := Config{}
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	err = config.validate()
	if err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("logger.log_level", string(LevelInfo))
	v.SetDefault("logger.output_file", "./logs/app.log")
	v.SetDefault("brightdata.trigger_url", "https://api.brightdata.com/datasets/v3/trigger")
	v.SetDefault("brightdata.snapshot_url", "https://api.brightdata.com/datasets/v3/snapshot")
	v.SetDefault("brightdata.poll_interval", "10s")
	v.SetDefault("brightdata.max_poll_attempts", 30)
	v.SetDefault("ai.model", "gemini-2.0-flash")
	v.SetDefault("ai.max_requests_per_minute", 15)
	v.SetDefault("ai.analysis_retention_days", 30)
}

func bindEnvironmentVariables(v *viper.Viper) error {
	var errs []error

	server, db, logger, brightData, ai := ServerConfig{}, DBConfig{}, LoggerConfig{}, BrightDataConfig{}, AIConfig{}

	if err := server.bindEnvironmentVariables(v); err != nil {
		errs = append(errs, fmt.Errorf("ServerConfig: %w", err))
	}

	if err := db.bindEnvironmentVariables(v); err != nil {
		errs = append(errs, fmt.Errorf("DBConfig: %w", err))
	}

	if err := logger.bindEnvironmentVariables(v); err != nil {
		errs = append(errs, fmt.Errorf("LoggerConfig: %w", err))
	}

	if err := brightData.bindEnvironmentVariables(v); err != nil {
		errs = append(errs, fmt.Errorf("BrightDataConfig: %w", err))
	}

	if err := ai.bindEnvironmentVariables(v); err != nil {
		errs = append(errs, fmt.Errorf("AIConfig: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred: %w", errors.Join(errs...))
	}

	return nil
}

func (config Config) validate() error {
	var errs []error

	if err := config.Server.validate(); err != nil {
		errs = append(errs, fmt.Errorf("ServerConfig: %w", err))
	}

	if err := config.DB.validate(); err != nil {
		errs = append(errs, fmt.Errorf("DBConfig: %w", err))
	}

	if err := config.Logger.validate(); err != nil {
		errs = append(errs, fmt.Errorf("LoggerConfig: %w", err))
	}

	if err := config.BrightData.validate(); err != nil {
		errs = append(errs, fmt.Errorf("BrightDataConfig: %w", err))
	}

	if err := config.AI.validate(); err != nil {
		errs = append(errs, fmt.Errorf("AIConfig: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred: %w", errors.Join(errs...))
	}

	return nil
}

func bindAll(v *viper.Viper, bindings map[string]string) error {
	var errs []error
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
