package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the API server configuration.
type Config struct {
	Port       string          `yaml:"port"`
	CORSOrigin string          `yaml:"cors_origin"`
	SettingsDB string          `yaml:"settings_db"`
	CatalogTTL time.Duration   `yaml:"catalog_ttl"`
	Neo4j      Neo4jConfig     `yaml:"neo4j"`
	RateLimit  RateLimitConfig `yaml:"rate_limit"`
	MaxBodyKB  int             `yaml:"max_body_kb"`
}

// Neo4jConfig points at the document and catalog store. An empty URL runs
// the server on an in-memory document store with an empty catalog.
type Neo4jConfig struct {
	URL  string `yaml:"url"`
	User string `yaml:"user"`
	Pass string `yaml:"pass"`
}

// RateLimitConfig bounds inbound requests. RPS <= 0 disables limiting.
type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

// DefaultConfig returns the defaults used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Port:       "8080",
		CORSOrigin: "*",
		SettingsDB: "data/settings.db",
		CatalogTTL: 5 * time.Minute,
		Neo4j:      Neo4jConfig{User: "neo4j", Pass: "password"},
		RateLimit:  RateLimitConfig{RPS: 50, Burst: 100},
		MaxBodyKB:  2048,
	}
}

// LoadConfig reads a YAML file over the defaults, applies environment
// overrides and validates. An empty path skips the file.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() error {
	c.Port = envOr("PORT", c.Port)
	c.CORSOrigin = envOr("CORS_ORIGIN", c.CORSOrigin)
	c.SettingsDB = envOr("SETTINGS_DB", c.SettingsDB)
	c.Neo4j.URL = envOr("NEO4J_URL", c.Neo4j.URL)
	c.Neo4j.User = envOr("NEO4J_USER", c.Neo4j.User)
	c.Neo4j.Pass = envOr("NEO4J_PASS", c.Neo4j.Pass)
	if v := os.Getenv("CATALOG_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("CATALOG_TTL: %w", err)
		}
		c.CatalogTTL = d
	}
	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("RATE_LIMIT_RPS: %w", err)
		}
		c.RateLimit.RPS = f
	}
	if v := os.Getenv("RATE_LIMIT_BURST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("RATE_LIMIT_BURST: %w", err)
		}
		c.RateLimit.Burst = n
	}
	return nil
}

// Validate checks that required fields are present and values are sane.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("port is required")
	}
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("port %q is not a number", c.Port)
	}
	if c.SettingsDB == "" {
		return fmt.Errorf("settings_db is required")
	}
	if c.CatalogTTL <= 0 {
		return fmt.Errorf("catalog_ttl must be > 0")
	}
	if c.RateLimit.RPS > 0 && c.RateLimit.Burst <= 0 {
		return fmt.Errorf("rate_limit.burst must be > 0 when rps is set")
	}
	if c.MaxBodyKB <= 0 {
		return fmt.Errorf("max_body_kb must be > 0")
	}
	return nil
}

// MaxBodyBytes returns the request body limit in bytes.
func (c *Config) MaxBodyBytes() int64 { return int64(c.MaxBodyKB) * 1024 }

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
