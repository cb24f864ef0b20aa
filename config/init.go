package config

import (
	"log"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"

	"github.com/recruitstack/recruitstack/internal/logger"
	"github.com/recruitstack/recruitstack/internal/tracing"
)

type Config struct {
	AppConfig        *AppConfig
	Logger           *logger.Config
	Tracing          *tracing.JaegerConfig
	DatabaseConfig   *DatabaseConfig
	ImapConfig       *ImapConfig
	ProcessingConfig *ProcessingConfig
	AnalysisConfig   *AnalysisConfig
	R2StorageConfig  *R2StorageConfig
	KubernetesConfig *KubernetesConfig
}

func InitConfig() (*Config, error) {
	config := &Config{
		AppConfig:        &AppConfig{},
		Logger:           &logger.Config{},
		Tracing:          &tracing.JaegerConfig{},
		DatabaseConfig:   &DatabaseConfig{},
		ImapConfig:       &ImapConfig{},
		ProcessingConfig: &ProcessingConfig{},
		AnalysisConfig:   &AnalysisConfig{},
		R2StorageConfig:  &R2StorageConfig{},
		KubernetesConfig: &KubernetesConfig{},
	}

	err := godotenv.Load()
	if err != nil {
		log.Print("Unable to load .env file")
	}

	err = env.Parse(config)
	if err != nil {
		return nil, errors.Wrap(err, "error loading recruitstack config")
	}

	return config, nil
}
