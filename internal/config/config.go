package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/passbi/transport_catalogue/internal/models"
	"gopkg.in/yaml.v3"
)

// Network sources
const (
	SourceFile     = "file"
	SourcePostgres = "postgres"
)

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port        int    `yaml:"port" validate:"gt=0,lte=65535"`
	NetworkFile string `yaml:"network_file" validate:"required_if=Source file"`
	Source      string `yaml:"source" validate:"oneof=file postgres"`
}

// RoutingConfig holds routing settings in input units: minutes and km/h
type RoutingConfig struct {
	BusWaitTime int     `yaml:"bus_wait_time" validate:"gte=0,lte=1000"`
	BusVelocity float64 `yaml:"bus_velocity" validate:"gt=0,lte=1000"`
}

// CacheConfig configures route caching
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled"`
	TTL       time.Duration `yaml:"ttl" validate:"gte=0"`
	LocalSize int           `yaml:"local_size" validate:"gte=0"`
}

// RateLimitConfig configures the per-client request limit.
// Zero disables limiting.
type RateLimitConfig struct {
	PerSecond int `yaml:"per_second" validate:"gte=0"`
}

// AppConfig is the root configuration structure
type AppConfig struct {
	Server    ServerConfig    `yaml:"server"`
	Routing   RoutingConfig   `yaml:"routing"`
	Cache     CacheConfig     `yaml:"cache"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// Default returns the configuration used when no file is given
func Default() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:        8080,
			NetworkFile: "network.json",
			Source:      SourceFile,
		},
		Routing: RoutingConfig{
			BusWaitTime: 6,
			BusVelocity: 40,
		},
		Cache: CacheConfig{
			Enabled:   false,
			TTL:       10 * time.Minute,
			LocalSize: 1024,
		},
		RateLimit: RateLimitConfig{
			PerSecond: 10,
		},
	}
}

// Load reads the YAML file at path on top of the defaults, applies
// environment overrides and validates the result. An empty path skips the file.
func Load(path string) (*AppConfig, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// RoutingSettings converts the routing section to model units
func (c *AppConfig) RoutingSettings() models.RoutingSettings {
	return models.RoutingSettings{
		BusWaitTime: c.Routing.BusWaitTime,
		BusVelocity: c.Routing.BusVelocity * 1000 / 60,
	}
}

func (c *AppConfig) applyEnv() error {
	if v := getEnv("API_PORT", ""); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid API_PORT %q: %w", v, err)
		}
		c.Server.Port = port
	}
	c.Server.NetworkFile = getEnv("NETWORK_FILE", c.Server.NetworkFile)
	c.Server.Source = getEnv("NETWORK_SOURCE", c.Server.Source)

	if v := getEnv("BUS_WAIT_TIME", ""); v != "" {
		wait, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid BUS_WAIT_TIME %q: %w", v, err)
		}
		c.Routing.BusWaitTime = wait
	}
	if v := getEnv("BUS_VELOCITY", ""); v != "" {
		velocity, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid BUS_VELOCITY %q: %w", v, err)
		}
		c.Routing.BusVelocity = velocity
	}
	if v := getEnv("CACHE_ENABLED", ""); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid CACHE_ENABLED %q: %w", v, err)
		}
		c.Cache.Enabled = enabled
	}

	return nil
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
