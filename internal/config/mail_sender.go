package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// SenderConfig is the subset of settings the mail_sender worker needs.
type SenderConfig struct {
	Env      string `yaml:"env" env:"ENV" env-default:"local"`
	Mail     `yaml:"mail"`
	RabbitMQ `yaml:"rabbitmq"`
}

func MustLoadSender(defaultPath string) *SenderConfig {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = defaultPath
	}

	cfg, err := LoadSender(configPath)
	if err != nil {
		panic(err.Error())
	}

	return cfg
}

func LoadSender(configPath string) (*SenderConfig, error) {
	const op = "config.LoadSender"

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s: config file does not exist: %s", op, configPath)
	}

	var cfg SenderConfig

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("%s: failed to read config: %w", op, err)
	}

	if cfg.RabbitMQ.URL == "" || cfg.Mail.Host == "" {
		return nil, fmt.Errorf("%s: rabbitmq url and smtp host are required", op)
	}

	return &cfg, nil
}
