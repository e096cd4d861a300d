// Package config loads server configuration from a YAML file with
// ${ENV_VAR} placeholder support.
package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		ListenAddr     string `yaml:"listen_addr"`
		RateLimitRPS   int    `yaml:"rate_limit_rps"`
		RateLimitBurst int    `yaml:"rate_limit_burst"`
		// TrustProxyHeader makes rate limiting honor X-Forwarded-For.
		// Enable only behind a proxy that sets the header itself.
		TrustProxyHeader bool `yaml:"trust_proxy_header"`
	} `yaml:"server"`

	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`

	Redis struct {
		Address  string `yaml:"address"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	Cache struct {
		AvailabilityTTLSeconds int `yaml:"availability_ttl_seconds"`
	} `yaml:"cache"`

	Monitoring struct {
		HealthCheckPort   int  `yaml:"health_check_port"`
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
		PrometheusPort    int  `yaml:"prometheus_port"`
	} `yaml:"monitoring"`

	Scheduling struct {
		SlotStepMinutes int `yaml:"slot_step_minutes"`
	} `yaml:"scheduling"`

	Backup BackupConfig `yaml:"backup"`
}

// BackupConfig controls periodic snapshots of the sqlite file.
type BackupConfig struct {
	Enabled       bool   `yaml:"enabled"`
	StoragePath   string `yaml:"storage_path"`
	IntervalHours int    `yaml:"interval_hours"`
	RetentionDays int    `yaml:"retention_days"`
}

func Load(path string) (*Config, error) {
	if path == "" {
		path = "configs/config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Support ${ENV_VAR} placeholders in YAML config.
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if err = os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.ListenAddr == "" {
		c.Server.ListenAddr = ":8080"
	}
	if c.Server.RateLimitRPS <= 0 {
		c.Server.RateLimitRPS = 20
	}
	if c.Server.RateLimitBurst <= 0 {
		c.Server.RateLimitBurst = 40
	}
	if c.Database.Path == "" {
		c.Database.Path = "data/findly.db"
	}
	if c.Scheduling.SlotStepMinutes <= 0 {
		c.Scheduling.SlotStepMinutes = 30
	}
	if c.Monitoring.HealthCheckPort == 0 {
		c.Monitoring.HealthCheckPort = 8090
	}
	if c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.Backup.StoragePath == "" {
		c.Backup.StoragePath = "data/backups"
	}
	if c.Backup.IntervalHours <= 0 {
		c.Backup.IntervalHours = 24
	}
	if c.Backup.RetentionDays <= 0 {
		c.Backup.RetentionDays = 14
	}
}
