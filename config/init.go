package config

import (
	"log"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"

	cron_config "github.com/customeros/mailsorter/internal/cron/config"
	"github.com/customeros/mailsorter/internal/logger"
	"github.com/customeros/mailsorter/internal/tracing"
)

type Config struct {
	AppConfig        *AppConfig
	Logger           *logger.Config
	Tracing          *tracing.JaegerConfig
	DatabaseConfig   *DatabaseConfig
	MailboxConfig    *MailboxConfig
	ClassifierConfig *ClassifierConfig
	PipelineConfig   *PipelineConfig
	R2StorageConfig  *R2StorageConfig
	Cron             *cron_config.Config
}

func InitConfig() (*Config, error) {
	config := &Config{
		AppConfig:        &AppConfig{},
		Logger:           &logger.Config{},
		Tracing:          &tracing.JaegerConfig{},
		DatabaseConfig:   &DatabaseConfig{},
		MailboxConfig:    &MailboxConfig{},
		ClassifierConfig: &ClassifierConfig{},
		PipelineConfig:   &PipelineConfig{},
		R2StorageConfig:  &R2StorageConfig{},
		Cron:             &cron_config.Config{},
	}

	err := godotenv.Load()
	if err != nil {
		log.Print("Unable to load .env file")
	}

	err = env.Parse(config)
	if err != nil {
		return nil, errors.Wrap(err, "error loading mailsorter config")
	}

	if config.PipelineConfig.IntervalMinutes <= 0 {
		return nil, errors.New("PIPELINE_INTERVAL_MINUTES must be positive")
	}
	if config.PipelineConfig.WindowDays <= 0 {
		return nil, errors.New("PIPELINE_WINDOW_DAYS must be positive")
	}
	if config.ClassifierConfig.ApiKey == "" {
		log.Print("CLASSIFIER_API_KEY is not set, every pipeline run will fail at classification")
	}

	return config, nil
}
