package config

import (
	"fmt"
	"os"
	"time"

	"github.com/a8m/envsubst"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"
)

type Config struct {
	Global        Global        `yaml:"global"`
	Services      []Service     `yaml:"services" validate:"required,min=1,unique=Name,dive"`
	Notifications Notifications `yaml:"notifications"`
	Rollback      Rollback      `yaml:"rollback"`
}

type Global struct {
	Timeout          int    `yaml:"timeout" validate:"gt=0"`
	CheckInterval    int    `yaml:"check_interval" validate:"gt=0"`
	FailureThreshold int    `yaml:"failure_threshold" validate:"gte=1"`
	CheckSchedule    string `yaml:"check_schedule"`
}

// ProbeTimeout is the per-probe timeout.
func (g Global) ProbeTimeout() time.Duration {
	return time.Duration(g.Timeout) * time.Second
}

// Interval is the polling loop period.
func (g Global) Interval() time.Duration {
	return time.Duration(g.CheckInterval) * time.Second
}

type Service struct {
	Name           string            `yaml:"name" validate:"required"`
	URL            string            `yaml:"url" validate:"required,url"`
	Method         string            `yaml:"method" validate:"oneof=GET HEAD POST PUT PATCH DELETE OPTIONS"`
	ExpectedStatus int               `yaml:"expected_status" validate:"gte=100,lte=599"`
	ExpectedBody   string            `yaml:"expected_body"`
	Headers        map[string]string `yaml:"headers"`
}

type Notifications struct {
	Slack    SlackSink    `yaml:"slack"`
	Webhook  WebhookSink  `yaml:"webhook"`
	Shoutrrr ShoutrrrSink `yaml:"shoutrrr"`
}

type SlackSink struct {
	WebhookURL string `yaml:"webhook_url" validate:"omitempty,url"`
}

type WebhookSink struct {
	URL string `yaml:"url" validate:"omitempty,url"`
}

type ShoutrrrSink struct {
	URL      string `yaml:"url"`
	Template string `yaml:"template"`
}

type Rollback struct {
	Enabled  bool   `yaml:"enabled"`
	Command  string `yaml:"command" validate:"required_if=Enabled true"`
	Cooldown int    `yaml:"cooldown" validate:"gte=0"`
}

// CooldownDuration is the minimum time between rollback invocations.
func (r Rollback) CooldownDuration() time.Duration {
	return time.Duration(r.Cooldown) * time.Second
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load reads, env-expands, parses, defaults, and validates a config file.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	data, err = envsubst.Bytes(data)
	if err != nil {
		return nil, fmt.Errorf("expanding env vars: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.applyDefaults()

	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Global.Timeout == 0 {
		c.Global.Timeout = 5
	}
	if c.Global.CheckInterval == 0 {
		c.Global.CheckInterval = 10
	}
	if c.Global.FailureThreshold == 0 {
		c.Global.FailureThreshold = 3
	}
	if c.Rollback.Cooldown == 0 {
		c.Rollback.Cooldown = 300
	}
	for i := range c.Services {
		if c.Services[i].Method == "" {
			c.Services[i].Method = "GET"
		}
		if c.Services[i].ExpectedStatus == 0 {
			c.Services[i].ExpectedStatus = 200
		}
	}
}
