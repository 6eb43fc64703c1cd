package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/leonardcser/kvcache/internal/cache"
)

// Environment variables override whatever the config file says, so a daemon
// can be repointed without editing files.
const (
	envSocket   = "KVCACHE_SOCK"
	envCapacity = "KVCACHE_CAPACITY"
	envPolicy   = "KVCACHE_POLICY"
)

// Config controls the cache daemon.
type Config struct {
	// Socket is the Unix domain socket the daemon listens on.
	Socket string `yaml:"socket"`
	// Capacity bounds the number of cached entries; <= 0 means unbounded.
	Capacity int `yaml:"capacity"`
	// Policy is the eviction policy: "fifo" (default) or "lru".
	Policy string `yaml:"policy"`
	// Log is the log file path; empty defers to KVCACHE_LOG or the default.
	Log string `yaml:"log"`
	// StatsInterval is how often the daemon logs cache occupancy; <= 0
	// disables the stats loop.
	StatsInterval Duration `yaml:"stats_interval"`
}

// Default returns the configuration used when no file and no environment
// overrides are present.
func Default() Config {
	return Config{
		Socket:   DefaultSocketPath(),
		Capacity: 1024,
		Policy:   "fifo",
	}
}

// Load reads the YAML file at path (skipped when path is empty), applies
// environment overrides, and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnv(&cfg)

	if _, err := cfg.EvictionPolicy(); err != nil {
		return Config{}, err
	}
	if cfg.Socket == "" {
		return Config{}, fmt.Errorf("config: socket path must not be empty")
	}
	return cfg, nil
}

// EvictionPolicy maps the configured policy name onto the cache package.
func (c Config) EvictionPolicy() (cache.Policy, error) {
	switch c.Policy {
	case "", "fifo":
		return cache.EvictOldest, nil
	case "lru":
		return cache.EvictLRU, nil
	default:
		return 0, fmt.Errorf("config: unknown eviction policy %q", c.Policy)
	}
}

// DefaultSocketPath honors KVCACHE_SOCK before falling back to the per-user
// cache directory.
func DefaultSocketPath() string {
	if s := os.Getenv(envSocket); s != "" {
		return s
	}
	home, _ := os.UserHomeDir()
	if home == "" {
		home = "."
	}
	return filepath.Join(home, ".cache", "kvcache", "cache.sock")
}

func applyEnv(cfg *Config) {
	if s := os.Getenv(envSocket); s != "" {
		cfg.Socket = s
	}
	if s := os.Getenv(envCapacity); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			cfg.Capacity = n
		}
	}
	if s := os.Getenv(envPolicy); s != "" {
		cfg.Policy = s
	}
}

// Duration wraps time.Duration so YAML values can be written as "15m" or
// "30s".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("config: bad duration %q: %w", s, err)
	}
	*d = Duration(v)
	return nil
}

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}
