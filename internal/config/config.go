package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all daemon configuration.
type Config struct {
	JobAPI struct {
		BaseURL string `yaml:"base_url"`
		APIKey  string `yaml:"api_key"`
	} `yaml:"job_api"`
	QueryAPI struct {
		BaseURL        string  `yaml:"base_url"`
		APIKey         string  `yaml:"api_key"`
		RequestsPerSec float64 `yaml:"requests_per_sec"`
	} `yaml:"query_api"`
	PostAPI struct {
		BaseURL string `yaml:"base_url"`
		APIKey  string `yaml:"api_key"`
	} `yaml:"post_api"`
	Schedule struct {
		Timezone            string `yaml:"timezone"`
		PollIntervalSeconds int    `yaml:"poll_interval_seconds"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
	HTTPTimeoutSeconds int    `yaml:"http_timeout_seconds"`
	Proxy              string `yaml:"proxy"`
}

// HTTPTimeout is the shared client timeout as a duration.
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSeconds) * time.Second
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("JOB_API_BASE_URL"); v != "" {
		cfg.JobAPI.BaseURL = v
	}
	if v := os.Getenv("JOB_API_KEY"); v != "" {
		cfg.JobAPI.APIKey = v
	}
	if v := os.Getenv("QUERY_API_BASE_URL"); v != "" {
		cfg.QueryAPI.BaseURL = v
	}
	if v := os.Getenv("QUERY_API_KEY"); v != "" {
		cfg.QueryAPI.APIKey = v
	}
	if v := os.Getenv("POST_API_BASE_URL"); v != "" {
		cfg.PostAPI.BaseURL = v
	}
	if v := os.Getenv("POST_API_KEY"); v != "" {
		cfg.PostAPI.APIKey = v
	}
	if v := os.Getenv("SCHEDULE_TIMEZONE"); v != "" {
		cfg.Schedule.Timezone = v
	}
	if v := os.Getenv("POLL_INTERVAL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Schedule.PollIntervalSeconds = n
		}
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}

	// Defaults
	if cfg.QueryAPI.BaseURL == "" {
		cfg.QueryAPI.BaseURL = cfg.JobAPI.BaseURL
	}
	if cfg.PostAPI.BaseURL == "" {
		cfg.PostAPI.BaseURL = cfg.JobAPI.BaseURL
	}
	if cfg.QueryAPI.RequestsPerSec == 0 {
		cfg.QueryAPI.RequestsPerSec = 2
	}
	if cfg.Schedule.Timezone == "" {
		cfg.Schedule.Timezone = "Asia/Taipei"
	}
	if cfg.Schedule.PollIntervalSeconds == 0 {
		cfg.Schedule.PollIntervalSeconds = 30
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/kolscheduler.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.HTTPTimeoutSeconds == 0 {
		cfg.HTTPTimeoutSeconds = 30
	}

	return cfg, nil
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.JobAPI.BaseURL == "" {
		return fmt.Errorf("job_api.base_url is required")
	}
	if _, err := time.LoadLocation(c.Schedule.Timezone); err != nil {
		return fmt.Errorf("schedule.timezone: %w", err)
	}
	if c.Schedule.PollIntervalSeconds < 5 || c.Schedule.PollIntervalSeconds > 60 {
		return fmt.Errorf("schedule.poll_interval_seconds must be within 5..60")
	}
	return nil
}
