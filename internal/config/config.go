package config

import (
	"fmt"
	"net"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/rs/zerolog"
)

// Storage backends
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

type Config struct {
	LogLevel  string  `yaml:"log-level" env:"CHESS_LOG_LEVEL" env-default:"info"`
	Dev       bool    `yaml:"dev" env:"CHESS_DEV" env-default:"false"`
	API       API     `yaml:"api"`
	Storage   Storage `yaml:"storage"`
	RateLimit int     `yaml:"rate-limit" env:"CHESS_RATE_LIMIT" env-default:"10"`
}

type API struct {
	Host string `yaml:"host" env:"CHESS_API_HOST" env-default:"localhost"`
	Port int    `yaml:"port" env:"CHESS_API_PORT" env-default:"8080"`
}

type Storage struct {
	Backend    string `yaml:"backend" env:"CHESS_STORAGE" env-default:"memory"`
	SQLitePath string `yaml:"sqlite-path" env:"CHESS_SQLITE_PATH" env-default:"chess.db"`
	Redis      Redis  `yaml:"redis"`
}

type Redis struct {
	Host string `yaml:"host" env:"CHESS_REDIS_HOST" env-default:"localhost"`
	Port string `yaml:"port" env:"CHESS_REDIS_PORT" env-default:"6379"`
	DB   int    `yaml:"db" env:"CHESS_REDIS_DB" env-default:"0"`
}

// Load reads the YAML file at path, or the environment alone when path is
// empty. Environment variables override file values.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	var err error
	if path != "" {
		err = cleanenv.ReadConfig(path, cfg)
	} else {
		err = cleanenv.ReadEnv(cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("unable to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values cleanenv cannot express as tags
func (c *Config) Validate() error {
	c.Storage.Backend = strings.ToLower(c.Storage.Backend)
	switch c.Storage.Backend {
	case BackendMemory, BackendSQLite, BackendRedis:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}

	if c.API.Port < 1 || c.API.Port > 65535 {
		return fmt.Errorf("invalid api port %d", c.API.Port)
	}
	if c.Storage.Backend == BackendSQLite && c.Storage.SQLitePath == "" {
		return fmt.Errorf("sqlite backend needs a path")
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return nil
}

// Level returns the configured zerolog level
func (c *Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}

func (a API) Addr() string {
	return net.JoinHostPort(a.Host, fmt.Sprint(a.Port))
}

func (r Redis) Addr() string {
	return net.JoinHostPort(r.Host, r.Port)
}

// Usage describes the environment variables Load understands
func Usage() string {
	text, err := cleanenv.GetDescription(&Config{}, nil)
	if err != nil {
		return ""
	}
	return text
}
