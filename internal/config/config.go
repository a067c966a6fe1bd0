package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config is the process configuration, parsed from the environment.
type Config struct {
	HTTPAddr       string `env:"HTTP_ADDR" envDefault:":5175"`
	DBPath         string `env:"DB_PATH" envDefault:"./data/app.db"`
	LogLevel       string `env:"LOG_LEVEL" envDefault:"info"`
	ClientOrigin   string `env:"CLIENT_ORIGIN" envDefault:"http://localhost:5173"`
	JWTSecret      string `env:"JWT_SECRET" envDefault:"dev_secret_change_me"`
	JWTExpiresDays int    `env:"JWT_EXPIRES_DAYS" envDefault:"14"`
	CookieName     string `env:"COOKIE_NAME" envDefault:"crono_token"`
	DailySalt      string `env:"DAILY_SALT" envDefault:"local_dev_salt"`
	EventsFile     string `env:"EVENTS_FILE"`
	Production     bool   `env:"PRODUCTION"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	return &cfg, nil
}
