// Package config resolves settings from defaults, an optional YAML file,
// a .env file and QUESTLOG_* environment variables, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	// AppName is the application directory name.
	AppName = "questlog"

	// EnvPrefix prefixes every environment override, e.g. QUESTLOG_STORAGE_DRIVER.
	EnvPrefix = "QUESTLOG"

	DefaultTasksKey  = "devtrack-tasks"
	DefaultQuestsKey = "questlog-quests"
)

type Config struct {
	Storage Storage `mapstructure:"storage"`
	Log     Log     `mapstructure:"log"`
	UI      UI      `mapstructure:"ui"`
	Server  Server  `mapstructure:"server"`
	AI      AI      `mapstructure:"ai"`

	// File is the config file actually read, empty if none.
	File string `mapstructure:"-"`
}

type Storage struct {
	Driver    string        `mapstructure:"driver"`
	Dir       string        `mapstructure:"dir"`
	SQLite    string        `mapstructure:"sqlite_path"`
	Postgres  string        `mapstructure:"postgres_dsn"`
	Redis     Redis         `mapstructure:"redis"`
	TasksKey  string        `mapstructure:"tasks_key"`
	QuestsKey string        `mapstructure:"quests_key"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

type Log struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

type UI struct {
	Theme string `mapstructure:"theme"`
	Kind  string `mapstructure:"kind"`
	Color string `mapstructure:"color"` // auto, always or never
}

type Server struct {
	Addr          string `mapstructure:"addr"`
	AllowedOrigin string `mapstructure:"allowed_origin"`
}

type AI struct {
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// Enabled reports whether a generator can be built.
func (a AI) Enabled() bool { return strings.TrimSpace(a.APIKey) != "" }

func setDefaults(v *viper.Viper) {
	v.SetDefault("storage.driver", "file")
	v.SetDefault("storage.dir", DefaultDataDir())
	v.SetDefault("storage.sqlite_path", filepath.Join(DefaultDataDir(), "questlog.db"))
	v.SetDefault("storage.postgres_dsn", "")
	v.SetDefault("storage.redis.addr", "")
	v.SetDefault("storage.redis.password", "")
	v.SetDefault("storage.redis.db", 0)
	v.SetDefault("storage.redis.prefix", "questlog:")
	v.SetDefault("storage.tasks_key", DefaultTasksKey)
	v.SetDefault("storage.quests_key", DefaultQuestsKey)
	v.SetDefault("storage.timeout", 2*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)

	v.SetDefault("ui.theme", "classic")
	v.SetDefault("ui.kind", "task")
	v.SetDefault("ui.color", "auto")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.allowed_origin", "")

	v.SetDefault("ai.base_url", "https://api.openai.com/v1")
	v.SetDefault("ai.api_key", "")
	v.SetDefault("ai.model", "gpt-4o-mini")
	v.SetDefault("ai.timeout", 30*time.Second)
}

// Load builds a Config. path may be empty, in which case the default file
// is used when it exists. An explicit path that does not exist is an error.
func Load(path string) (*Config, error) {
	// .env is optional, like in most deployments
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	file := path
	if file == "" {
		if def := DefaultConfigFile(); fileExists(def) {
			file = def
		}
	}
	if file != "" {
		v.SetConfigFile(file)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.File = file

	// the conventional variable wins when the namespaced one is unset
	if cfg.AI.APIKey == "" {
		cfg.AI.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	if c.Storage.TasksKey == "" || c.Storage.QuestsKey == "" {
		return errors.New("storage keys must not be empty")
	}
	if c.Storage.TasksKey == c.Storage.QuestsKey {
		return errors.New("tasks and quests must use distinct storage keys")
	}
	if c.Storage.Timeout <= 0 {
		return errors.New("storage timeout must be positive")
	}
	return nil
}

// DefaultConfigDir uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// DefaultConfigFile is config.yaml inside DefaultConfigDir.
func DefaultConfigFile() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// DefaultDataDir uses XDG_DATA_HOME if set, otherwise $HOME/.local/share.
func DefaultDataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return AppName
	}
	return filepath.Join(home, ".local", "share", AppName)
}

func fileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
