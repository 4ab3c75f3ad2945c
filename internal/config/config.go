package config

import (
	"flag"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/barstats/barstats/internal/gpu"
	"github.com/barstats/barstats/internal/pubip"
)

// Config carries runtime options for barstats.
type Config struct {
	FastInterval time.Duration
	SlowInterval time.Duration
	Interface    string // empty means automatic selection
	ProbeCommand []string
	PublicIP     PublicIP
	LogLevel     string
}

// PublicIP configures the public-address lookup.
type PublicIP struct {
	Enabled   bool
	URL       string
	TTL       time.Duration
	UserAgent string
}

func Default() Config {
	return Config{
		FastInterval: time.Second,
		SlowInterval: 3 * time.Second,
		ProbeCommand: gpu.DefaultProbeCommand,
		PublicIP: PublicIP{
			Enabled:   true,
			URL:       pubip.DefaultURL,
			TTL:       pubip.DefaultTTL,
			UserAgent: "barstats/1.0",
		},
		LogLevel: "info",
	}
}

// fileConfig is the YAML shape; intervals are whole seconds.
type fileConfig struct {
	FastIntervalSec int      `yaml:"fast_interval_sec"`
	SlowIntervalSec int      `yaml:"slow_interval_sec"`
	Interface       string   `yaml:"interface"`
	ProbeCommand    []string `yaml:"probe_command"`
	PublicIP        struct {
		Enabled   *bool  `yaml:"enabled"`
		URL       string `yaml:"url"`
		TTLSec    int    `yaml:"ttl_sec"`
		UserAgent string `yaml:"user_agent"`
	} `yaml:"public_ip"`
	LogLevel string `yaml:"log_level"`
}

// Load builds the configuration: defaults, then the optional YAML file,
// then flags, then environment overrides.
func Load(args []string) (Config, error) {
	cfg := Default()

	fs := flag.NewFlagSet("barstats", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to config.yaml")
	fs.DurationVar(&cfg.FastInterval, "interval", cfg.FastInterval, "fast sampling interval")
	fs.DurationVar(&cfg.SlowInterval, "slow-interval", cfg.SlowInterval, "utilization probe interval")
	fs.StringVar(&cfg.Interface, "interface", cfg.Interface, "fixed interface name (empty = auto)")
	fs.BoolVar(&cfg.PublicIP.Enabled, "public-ip", cfg.PublicIP.Enabled, "enable public address lookup")
	fs.StringVar(&cfg.PublicIP.URL, "public-ip-url", cfg.PublicIP.URL, "public address lookup endpoint")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug|info|warn|error")

	// Flags beat the file, so after merging the file re-parse the flags.
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	if *configPath != "" {
		if err := cfg.mergeFile(*configPath); err != nil {
			return cfg, err
		}
		if err := fs.Parse(args); err != nil {
			return cfg, err
		}
	}

	cfg.applyEnv()
	return cfg, cfg.validate()
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	if fc.FastIntervalSec > 0 {
		c.FastInterval = time.Duration(fc.FastIntervalSec) * time.Second
	}
	if fc.SlowIntervalSec > 0 {
		c.SlowInterval = time.Duration(fc.SlowIntervalSec) * time.Second
	}
	if fc.Interface != "" {
		c.Interface = fc.Interface
	}
	if len(fc.ProbeCommand) > 0 {
		c.ProbeCommand = fc.ProbeCommand
	}
	if fc.PublicIP.Enabled != nil {
		c.PublicIP.Enabled = *fc.PublicIP.Enabled
	}
	if fc.PublicIP.URL != "" {
		c.PublicIP.URL = fc.PublicIP.URL
	}
	if fc.PublicIP.TTLSec > 0 {
		c.PublicIP.TTL = time.Duration(fc.PublicIP.TTLSec) * time.Second
	}
	if fc.PublicIP.UserAgent != "" {
		c.PublicIP.UserAgent = fc.PublicIP.UserAgent
	}
	if fc.LogLevel != "" {
		c.LogLevel = fc.LogLevel
	}
	return nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("BARSTATS_INTERVAL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			c.FastInterval = parsed
		} else if parsed, err2 := time.ParseDuration(v + "s"); err2 == nil {
			c.FastInterval = parsed
		}
	}
	if v := os.Getenv("BARSTATS_PUBLIC_IP"); v == "0" {
		c.PublicIP.Enabled = false
	}
	if v := os.Getenv("BARSTATS_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}

func (c *Config) validate() error {
	if c.FastInterval <= 0 {
		return fmt.Errorf("interval must be positive")
	}
	if c.SlowInterval <= 0 {
		return fmt.Errorf("slow interval must be positive")
	}
	if c.PublicIP.Enabled && c.PublicIP.URL == "" {
		return fmt.Errorf("public-ip-url cannot be empty when lookup is enabled")
	}
	return nil
}
