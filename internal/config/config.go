package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v2"
)

const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"

	defaultListen    = ":8080"
	defaultRedisURL  = "redis://localhost:6379/0"
	defaultAPIURL    = "https://api.github.com"
	defaultUserAgent = "chunkvault-updater"
	defaultTimeout   = Duration(10 * time.Second)

	// Freshness window for both cached facts.
	defaultCacheWindow = Duration(300 * time.Second)
)

// Duration unmarshals yaml scalars like "10s" via time.ParseDuration.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}

	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("cannot parse duration %q: %w", s, err)
	}

	*d = Duration(v)

	return nil
}

type GithubConfig struct {
	Owner     string   `yaml:"owner"`
	Repo      string   `yaml:"repo"`
	APIURL    string   `yaml:"api_url"`
	UserAgent string   `yaml:"user_agent"`
	Timeout   Duration `yaml:"timeout"`
}

type CacheConfig struct {
	Window Duration `yaml:"window"`
}

type Config struct {
	Listen      string       `yaml:"listen"`
	LogLevel    string       `yaml:"log_level"`
	RedisURL    string       `yaml:"redis_url"`
	Github      GithubConfig `yaml:"github"`
	CacheConfig CacheConfig  `yaml:"cache"`
}

// MustLoad reads the yaml config at path and panics on any failure. A .env
// file next to the process, if present, is loaded first so ${VAR} references
// in the config file can be expanded from it.
func MustLoad(path string) *Config {
	cfg, err := load(afero.NewOsFs(), path)
	if err != nil {
		panic(err)
	}

	return cfg
}

func load(fs afero.Fs, path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("cannot read config file %s: %w", path, err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), cfg); err != nil {
		return nil, fmt.Errorf("cannot parse config file %s: %w", path, err)
	}

	cfg.setDefaults()

	if cfg.Github.Owner == "" || cfg.Github.Repo == "" {
		return nil, fmt.Errorf("github owner and repo must be set")
	}

	return cfg, nil
}

func (c *Config) setDefaults() {
	if c.Listen == "" {
		c.Listen = defaultListen
	}
	if c.LogLevel == "" {
		c.LogLevel = LogLevelInfo
	}
	if c.RedisURL == "" {
		c.RedisURL = defaultRedisURL
	}
	if c.Github.APIURL == "" {
		c.Github.APIURL = defaultAPIURL
	}
	if c.Github.UserAgent == "" {
		c.Github.UserAgent = defaultUserAgent
	}
	if c.Github.Timeout == 0 {
		c.Github.Timeout = defaultTimeout
	}
	if c.CacheConfig.Window == 0 {
		c.CacheConfig.Window = defaultCacheWindow
	}
}
