package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/brk3/habitstate/internal/session"

	"go.yaml.in/yaml/v4"
)

const defaultConfigPath = "config.yaml"

type Config struct {
	Storage   Storage   `yaml:"storage"`
	Log       Log       `yaml:"log"`
	Server    Server    `yaml:"server"`
	Timezone  string    `yaml:"timezone"`
	Profile   string    `yaml:"profile"`
	Reminders Reminders `yaml:"reminders"`
	Session   Session   `yaml:"session"`
}

type Storage struct {
	Driver string `yaml:"driver"` // bolt, sqlite or memory
	Path   string `yaml:"path"`
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

type Server struct {
	ListenAddr string `yaml:"listen_addr"`
}

type Reminders struct {
	Enabled      bool   `yaml:"enabled"`
	From         string `yaml:"from"`
	To           string `yaml:"to"`
	ResendAPIKey string `yaml:"resend_api_key"`
	// Window is how far back `habits remind` looks on its first run.
	Window time.Duration `yaml:"window"`
}

type Session struct {
	HashKey  string `yaml:"hash_key"`
	BlockKey string `yaml:"block_key"`
}

// Load reads the YAML file named by HABITS_CONFIG, or config.yaml when unset,
// and applies environment overrides. A missing default file is not an error.
func Load() (*Config, error) {
	path, explicit := os.LookupEnv("HABITS_CONFIG")
	if !explicit || path == "" {
		path, explicit = defaultConfigPath, false
	}

	cfg := &Config{}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Storage.Driver = getenv("HABITS_STORAGE_DRIVER", c.Storage.Driver)
	c.Storage.Path = getenv("HABITS_DB_PATH", c.Storage.Path)
	c.Log.Level = getenv("HABITS_LOG_LEVEL", c.Log.Level)
	c.Log.Format = getenv("HABITS_LOG_FORMAT", c.Log.Format)
	c.Log.File = getenv("HABITS_LOG_FILE", c.Log.File)
	c.Server.ListenAddr = getenv("HABITS_LISTEN_ADDR", c.Server.ListenAddr)
	c.Timezone = getenv("HABITS_TIMEZONE", c.Timezone)
	c.Profile = getenv("HABITS_PROFILE", c.Profile)
	c.Reminders.ResendAPIKey = getenv("HABITS_RESEND_API_KEY", c.Reminders.ResendAPIKey)
	c.Reminders.To = getenv("HABITS_NOTIFY_EMAIL", c.Reminders.To)
	if v, err := strconv.ParseBool(os.Getenv("HABITS_REMINDERS_ENABLED")); err == nil {
		c.Reminders.Enabled = v
	}
	c.Session.HashKey = getenv("HABITS_SESSION_HASH_KEY", c.Session.HashKey)
	c.Session.BlockKey = getenv("HABITS_SESSION_BLOCK_KEY", c.Session.BlockKey)
}

func (c *Config) applyDefaults() {
	if c.Storage.Driver == "" {
		c.Storage.Driver = "bolt"
	}
	if c.Storage.Path == "" {
		c.Storage.Path = "habits.db"
	}
	if c.Server.ListenAddr == "" {
		c.Server.ListenAddr = ":8080"
	}
	if c.Reminders.Window == 0 {
		c.Reminders.Window = 15 * time.Minute
	}
}

func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "bolt", "sqlite", "memory":
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.Session.HashKey != "" || c.Session.BlockKey != "" {
		if err := session.ValidateKeys([]byte(c.Session.HashKey), []byte(c.Session.BlockKey)); err != nil {
			return err
		}
	}
	if c.Reminders.Window < 0 {
		return fmt.Errorf("reminders.window must not be negative")
	}
	return nil
}

// Location is the zone whose calendar defines "today". Empty means local.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
