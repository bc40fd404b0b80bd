package config

import (
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all runtime settings for the analysis engine and the
// services around it.
type Config struct {
	Proxy       Proxy    `yaml:"proxy"`
	Analysis    Analysis `yaml:"analysis"`
	RedisAddr   string   `yaml:"redis_addr"`
	DatabaseURL string   `yaml:"database_url"`
}

// Proxy configures the SOCKS5 routing client. Immutable after Load;
// invalid or missing values fall back to the defaults below.
type Proxy struct {
	Enabled            bool   `yaml:"enabled"`
	Host               string `yaml:"host"`
	Port               int    `yaml:"port"`
	ControlPort        int    `yaml:"control_port"`
	ConnectTimeoutMs   int    `yaml:"connect_timeout_ms"`
	ReadTimeoutMs      int    `yaml:"read_timeout_ms"`
	RotationIntervalMs int    `yaml:"rotation_interval_ms"`
}

type Analysis struct {
	Workers      int    `yaml:"workers"`
	PresenceMode string `yaml:"presence_mode"` // "live" or "inert"
	MaxProbes    int    `yaml:"max_probes"`
	ProbeDelayMs int    `yaml:"probe_delay_ms"`
}

func defaultConfig() *Config {
	return &Config{
		Proxy: Proxy{
			Enabled:            false,
			Host:               "127.0.0.1",
			Port:               9050,
			ControlPort:        9051,
			ConnectTimeoutMs:   30000,
			ReadTimeoutMs:      30000,
			RotationIntervalMs: 10000,
		},
		Analysis: Analysis{
			Workers:      4,
			PresenceMode: "inert",
			MaxProbes:    10,
			ProbeDelayMs: 500,
		},
		RedisAddr:   "127.0.0.1:6379",
		DatabaseURL: "",
	}
}

// Load reads configuration from a YAML file and then applies environment
// overrides. A missing file is not an error; the defaults are used.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, err
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()
	cfg.normalize()
	return cfg, nil
}

// FromEnv builds a config from environment variables alone.
func FromEnv() *Config {
	cfg := defaultConfig()
	cfg.applyEnv()
	cfg.normalize()
	return cfg
}

func (c *Config) applyEnv() {
	c.Proxy.Enabled = envBool("PROXY_ENABLED", c.Proxy.Enabled)
	c.Proxy.Host = envString("PROXY_HOST", c.Proxy.Host)
	c.Proxy.Port = envInt("PROXY_PORT", c.Proxy.Port)
	c.Proxy.ControlPort = envInt("PROXY_CONTROL_PORT", c.Proxy.ControlPort)
	c.Proxy.ConnectTimeoutMs = envInt("PROXY_CONNECT_TIMEOUT_MS", c.Proxy.ConnectTimeoutMs)
	c.Proxy.ReadTimeoutMs = envInt("PROXY_READ_TIMEOUT_MS", c.Proxy.ReadTimeoutMs)
	c.Proxy.RotationIntervalMs = envInt("PROXY_ROTATION_INTERVAL_MS", c.Proxy.RotationIntervalMs)

	c.Analysis.Workers = envInt("ANALYSIS_WORKERS", c.Analysis.Workers)
	c.Analysis.PresenceMode = envString("PRESENCE_MODE", c.Analysis.PresenceMode)
	c.Analysis.MaxProbes = envInt("PRESENCE_MAX_PROBES", c.Analysis.MaxProbes)
	c.Analysis.ProbeDelayMs = envInt("PRESENCE_PROBE_DELAY_MS", c.Analysis.ProbeDelayMs)

	c.RedisAddr = envString("REDIS_ADDR", c.RedisAddr)
	c.DatabaseURL = envString("DB_URL", c.DatabaseURL)
}

// normalize clamps nonsense values back to the defaults rather than
// failing startup over a typo in an env var.
func (c *Config) normalize() {
	def := defaultConfig()
	if c.Proxy.Host == "" {
		c.Proxy.Host = def.Proxy.Host
	}
	if c.Proxy.Port <= 0 || c.Proxy.Port > 65535 {
		c.Proxy.Port = def.Proxy.Port
	}
	if c.Proxy.ControlPort <= 0 || c.Proxy.ControlPort > 65535 {
		c.Proxy.ControlPort = def.Proxy.ControlPort
	}
	if c.Proxy.ConnectTimeoutMs <= 0 {
		c.Proxy.ConnectTimeoutMs = def.Proxy.ConnectTimeoutMs
	}
	if c.Proxy.ReadTimeoutMs <= 0 {
		c.Proxy.ReadTimeoutMs = def.Proxy.ReadTimeoutMs
	}
	if c.Proxy.RotationIntervalMs <= 0 {
		c.Proxy.RotationIntervalMs = def.Proxy.RotationIntervalMs
	}
	if c.Analysis.Workers <= 0 {
		c.Analysis.Workers = def.Analysis.Workers
	}
	if c.Analysis.MaxProbes <= 0 {
		c.Analysis.MaxProbes = def.Analysis.MaxProbes
	}
	if c.Analysis.ProbeDelayMs < 0 {
		c.Analysis.ProbeDelayMs = def.Analysis.ProbeDelayMs
	}
	mode := strings.ToLower(c.Analysis.PresenceMode)
	if mode != "live" && mode != "inert" {
		mode = def.Analysis.PresenceMode
	}
	c.Analysis.PresenceMode = mode
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envBool(key string, fallback bool) bool {
	v := strings.ToLower(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v == "true" || v == "1"
}
