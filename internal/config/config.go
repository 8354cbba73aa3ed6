// Package config loads run settings. Values come from built-in defaults, then
// an optional YAML file, then environment variables, each layer overriding
// the previous one.
package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// RemoteRoot is the authoritative directory of record databases.
	RemoteRoot string `yaml:"remote_root"`
	// LocalRoot is the local cache mirrored from RemoteRoot.
	LocalRoot string `yaml:"local_root"`

	Parallel bool `yaml:"parallel"`
	// WorkerFraction is the share of CPUs used for workers.
	WorkerFraction float64 `yaml:"worker_fraction"`
	// NumWorkers, when positive, overrides the computed worker count.
	NumWorkers int `yaml:"num_workers"`

	StaleAfter time.Duration `yaml:"stale_after"`

	DatabaseURL string   `yaml:"database_url"`
	APIPort     string   `yaml:"api_port"`
	RegionDeny  []string `yaml:"region_deny"`
	LogLevel    string   `yaml:"log_level"`
}

func Default() *Config {
	return &Config{
		LocalRoot:      "cache",
		Parallel:       true,
		WorkerFraction: 0.9,
		StaleAfter:     24 * time.Hour,
		APIPort:        "8080",
		LogLevel:       "info",
	}
}

// Load builds the configuration. path may be empty, in which case only
// defaults and the environment apply.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.RemoteRoot = getEnv("RECORDS_REMOTE_ROOT", c.RemoteRoot)
	c.LocalRoot = getEnv("RECORDS_LOCAL_ROOT", c.LocalRoot)
	c.DatabaseURL = getEnv("DATABASE_URL", c.DatabaseURL)
	c.APIPort = getEnv("API_PORT", c.APIPort)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	if v := os.Getenv("RECORDS_REGION_DENY"); v != "" {
		c.RegionDeny = splitList(v)
	}

	var err error
	c.Parallel, err = getEnvAsBool("RECORDS_PARALLEL", c.Parallel)
	if err != nil {
		return err
	}

	c.WorkerFraction, err = getEnvAsFloat("RECORDS_WORKER_FRACTION", c.WorkerFraction)
	if err != nil {
		return err
	}

	c.NumWorkers, err = getEnvAsInt("NUM_WORKERS", c.NumWorkers)
	if err != nil {
		return err
	}

	c.StaleAfter, err = getEnvAsDuration("RECORDS_STALE_AFTER", c.StaleAfter)
	if err != nil {
		return err
	}

	return nil
}

func (c *Config) Validate() error {
	if c.LocalRoot == "" {
		return fmt.Errorf("local_root must be set")
	}
	if c.WorkerFraction <= 0 || c.WorkerFraction > 1 {
		return fmt.Errorf("worker_fraction must be in (0, 1], got %v", c.WorkerFraction)
	}
	if c.NumWorkers < 0 {
		return fmt.Errorf("num_workers must not be negative, got %d", c.NumWorkers)
	}
	if c.StaleAfter <= 0 {
		return fmt.Errorf("stale_after must be positive, got %s", c.StaleAfter)
	}
	return nil
}

// WorkerCount is the pool size for a run: 1 when not parallel, NumWorkers
// when set, otherwise the CPU fraction minus one, at least 1.
func (c *Config) WorkerCount() int {
	return c.workerCount(runtime.NumCPU())
}

func (c *Config) workerCount(numCPU int) int {
	if !c.Parallel {
		return 1
	}
	if c.NumWorkers > 0 {
		return c.NumWorkers
	}
	return max(1, int(float64(numCPU)*c.WorkerFraction)-1)
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) (int, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: expected an integer, got '%s'", key, valueStr)
	}

	return value, nil
}

func getEnvAsFloat(key string, defaultValue float64) (float64, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: expected a number, got '%s'", key, valueStr)
	}

	return value, nil
}

func getEnvAsBool(key string, defaultValue bool) (bool, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return false, fmt.Errorf("invalid value for %s: expected a boolean, got '%s'", key, valueStr)
	}

	return value, nil
}

func getEnvAsDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: expected a duration, got '%s'", key, valueStr)
	}

	return value, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
