package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/robfig/cron/v3"
)

type Config struct {
	SquashLevels SquashLevels
	Poll         Poll
	HTTP         HTTP
	TelegramBot  TelegramBot
}

type SquashLevels struct {
	BaseURL  string `envconfig:"SQUASHLEVELS_BASE_URL" default:"https://api.leveltech.squashlevels.com"`
	PlayerID int64  `envconfig:"PLAYER_ID" required:"true"`
	Username string `envconfig:"SQUASHLEVELS_USERNAME"`
	Password string `envconfig:"SQUASHLEVELS_PASSWORD"`
	Show     string `envconfig:"SHOW" default:"all"`
}

type Poll struct {
	Interval time.Duration `envconfig:"POLL_INTERVAL" default:"1h"`
	// Cron overrides Interval when set.
	Cron string `envconfig:"POLL_CRON"`
}

type HTTP struct {
	Addr string `envconfig:"HTTP_ADDR" default:":8080"`
}

type TelegramBot struct {
	Token  string `envconfig:"TELEGRAM_TOKEN"`
	ChatID int64  `envconfig:"CHAT_ID"`
}

func New() (*Config, error) {
	var c Config
	err := envconfig.Process("", &c)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) Validate() error {
	var errs []error

	if c.SquashLevels.PlayerID <= 0 {
		errs = append(errs, fmt.Errorf("PLAYER_ID must be a positive integer, got %d", c.SquashLevels.PlayerID))
	}
	if (c.SquashLevels.Username == "") != (c.SquashLevels.Password == "") {
		errs = append(errs, errors.New("SQUASHLEVELS_USERNAME and SQUASHLEVELS_PASSWORD must be set together"))
	}
	if c.Poll.Cron != "" {
		if _, err := cron.ParseStandard(c.Poll.Cron); err != nil {
			errs = append(errs, fmt.Errorf("invalid POLL_CRON %q: %w", c.Poll.Cron, err))
		}
	} else if c.Poll.Interval <= 0 {
		errs = append(errs, fmt.Errorf("POLL_INTERVAL must be positive, got %s", c.Poll.Interval))
	}
	if c.TelegramBot.Token != "" && c.TelegramBot.ChatID == 0 {
		errs = append(errs, errors.New("CHAT_ID is required when TELEGRAM_TOKEN is set"))
	}

	return errors.Join(errs...)
}
