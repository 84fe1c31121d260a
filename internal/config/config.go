package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	API   APIConfig   `mapstructure:"api"`
	Store StoreConfig `mapstructure:"store"`
	Log   LogConfig   `mapstructure:"log"`
}

type APIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
	Token   string        `mapstructure:"token"` // optional; skips the login screen
}

// StoreConfig selects the backend for locally remembered values
type StoreConfig struct {
	Backend    string `mapstructure:"backend"` // sqlite, redis or memory
	SQLitePath string `mapstructure:"sqlite_path"`
	RedisURL   string `mapstructure:"redis_url"`
	Namespace  string `mapstructure:"namespace"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Output string `mapstructure:"output"` // file, stderr or none
	File   string `mapstructure:"file"`
}

// Load reads .env, config.yaml and TEAMBOARD_* environment variables, in
// increasing order of precedence.
func Load() (*Config, error) {
	// A missing .env is the normal case.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if dir, err := configDir(); err == nil {
		v.AddConfigPath(dir)
	}

	setDefaults(v)

	v.SetEnvPrefix("teamboard")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	cfg.API.BaseURL = strings.TrimRight(cfg.API.BaseURL, "/")
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "http://localhost:3000/api")
	v.SetDefault("api.timeout", 15*time.Second)
	v.SetDefault("api.token", "")
	v.SetDefault("store.backend", "sqlite")
	v.SetDefault("store.sqlite_path", defaultPath(dataDir, "teamboard.db"))
	v.SetDefault("store.redis_url", "redis://localhost:6379/0")
	v.SetDefault("store.namespace", "teamboard:")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.output", "file")
	v.SetDefault("log.file", defaultPath(stateDir, "teamboard.log"))
}

func defaultPath(dir func() (string, error), name string) string {
	d, err := dir()
	if err != nil {
		return name
	}
	return filepath.Join(d, name)
}

// configDir, dataDir and stateDir follow the XDG base directory layout
func configDir() (string, error) {
	return xdgDir("XDG_CONFIG_HOME", ".config")
}

func dataDir() (string, error) {
	return xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

func stateDir() (string, error) {
	return xdgDir("XDG_STATE_HOME", filepath.Join(".local", "state"))
}

func xdgDir(env, fallback string) (string, error) {
	base := os.Getenv(env)
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, fallback)
	}
	return filepath.Join(base, "teamboard"), nil
}
