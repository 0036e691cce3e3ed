// Package config loads runtime settings from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`

	MySQLDSN  string `env:"MYSQL_DSN" envDefault:"root:root@tcp(localhost:3306)/stocktalk?parseTime=true"`
	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`

	// NATSURL left empty disables change notifications.
	NATSURL string `env:"NATS_URL"`

	LLMBaseURL string        `env:"LLM_BASE_URL" envDefault:"https://api.openai.com/v1"`
	LLMAPIKey  string        `env:"LLM_API_KEY"`
	LLMModel   string        `env:"LLM_MODEL" envDefault:"gpt-4o-mini"`
	LLMTimeout time.Duration `env:"LLM_TIMEOUT" envDefault:"30s"`

	ConfidenceThreshold float64       `env:"CONFIDENCE_THRESHOLD" envDefault:"0.7"`
	DeleteCap           int           `env:"DELETE_CAP" envDefault:"5"`
	SummaryLimit        int           `env:"SUMMARY_LIMIT" envDefault:"100"`
	RateLimit           int           `env:"RATE_LIMIT" envDefault:"30"`
	RateWindow          time.Duration `env:"RATE_WINDOW" envDefault:"1m"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
