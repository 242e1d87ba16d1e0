package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"

	"taskflow/internal/storage"
)

const (
	DefaultConfigFileName = "config.toml"
	DefaultDBName         = "taskflow.db"
	DefaultLogName        = "taskflow.log"
	appDirName            = "taskflow"
)

type Keymap struct {
	Quit    string `toml:"quit"`
	Add     string `toml:"add"`
	Up      string `toml:"up"`
	Down    string `toml:"down"`
	Toggle  string `toml:"toggle"`
	Delete  string `toml:"delete"`
	Confirm string `toml:"confirm"`
	Cancel  string `toml:"cancel"`
	Edit    string `toml:"edit"`
	Search  string `toml:"search"`
	Filter  string `toml:"filter"`
	Sort    string `toml:"sort"`
	Theme   string `toml:"theme"`
}

type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	Prefix   string `toml:"prefix"`
}

type LogConfig struct {
	Level    string `toml:"level"`
	Encoding string `toml:"encoding"`
	Path     string `toml:"path"`
}

type Config struct {
	Backend       string      `toml:"backend"`
	DBPath        string      `toml:"db_path"`
	Seed          string      `toml:"seed"`
	DefaultFilter string      `toml:"default_filter"`
	DefaultSort   string      `toml:"default_sort"`
	Redis         RedisConfig `toml:"redis"`
	Log           LogConfig   `toml:"log"`
	Keys          Keymap      `toml:"keys"`
}

// ResolveConfigPath returns $TASKFLOW_CONFIG, else the per-user config
// directory, else config.toml in the working directory.
func ResolveConfigPath() string {
	if p := os.Getenv("TASKFLOW_CONFIG"); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return DefaultConfigFileName
	}
	return filepath.Join(dir, appDirName, DefaultConfigFileName)
}

// LoadOrCreate reads the TOML config at path, writing the defaults there on
// first launch. Environment variables (and a .env file in the working
// directory) override file values. Relative paths resolve against the
// config file's directory.
func LoadOrCreate(path string) (Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, err
		}
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}

	_ = godotenv.Load(".env")
	applyEnv(&cfg)

	if cfg.DBPath == "" {
		cfg.DBPath = DefaultDBName
	}
	cfg.resolvePaths(filepath.Dir(path))
	return cfg, nil
}

func write(path string, cfg Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func applyEnv(cfg *Config) {
	setString(&cfg.Backend, "TASKFLOW_BACKEND")
	setString(&cfg.DBPath, "TASKFLOW_DB_PATH")
	setString(&cfg.Seed, "TASKFLOW_SEED")
	setString(&cfg.DefaultFilter, "TASKFLOW_DEFAULT_FILTER")
	setString(&cfg.DefaultSort, "TASKFLOW_DEFAULT_SORT")
	setString(&cfg.Redis.Addr, "TASKFLOW_REDIS_ADDR")
	setString(&cfg.Redis.Password, "TASKFLOW_REDIS_PASSWORD")
	setString(&cfg.Redis.Prefix, "TASKFLOW_REDIS_PREFIX")
	setString(&cfg.Log.Level, "TASKFLOW_LOG_LEVEL")
	setString(&cfg.Log.Encoding, "TASKFLOW_LOG_ENCODING")
	setString(&cfg.Log.Path, "TASKFLOW_LOG_PATH")
	if v, ok := os.LookupEnv("TASKFLOW_REDIS_DB"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Redis.DB = n
		}
	}
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func (c *Config) resolvePaths(base string) {
	if c.DBPath != "" && !filepath.IsAbs(c.DBPath) && !isDSN(c.DBPath) {
		c.DBPath = filepath.Join(base, c.DBPath)
	}
	if c.Log.Path != "" && !filepath.IsAbs(c.Log.Path) {
		c.Log.Path = filepath.Join(base, c.Log.Path)
	}
}

func isDSN(p string) bool {
	return len(p) > 5 && p[:5] == "file:"
}

// StorageOptions maps the config onto the storage backend options.
func (c Config) StorageOptions() storage.Options {
	return storage.Options{
		Backend: c.Backend,
		Path:    c.DBPath,
		Redis: storage.RedisOptions{
			Addr:     c.Redis.Addr,
			Password: c.Redis.Password,
			DB:       c.Redis.DB,
			Prefix:   c.Redis.Prefix,
		},
	}
}

// Default returns the configuration written on first launch.
func Default() Config {
	return Config{
		Backend:       storage.BackendSQLite,
		DBPath:        DefaultDBName,
		Seed:          "sample",
		DefaultFilter: "all",
		DefaultSort:   "dueDate",
		Redis: RedisConfig{
			Addr:   "localhost:6379",
			Prefix: "taskflow:",
		},
		Log: LogConfig{
			Level:    "info",
			Encoding: "console",
			Path:     DefaultLogName,
		},
		Keys: Keymap{
			Quit:    "q",
			Add:     "a",
			Up:      "k",
			Down:    "j",
			Toggle:  " ",
			Delete:  "d",
			Confirm: "enter",
			Cancel:  "esc",
			Edit:    "e",
			Search:  "/",
			Filter:  "f",
			Sort:    "s",
			Theme:   "t",
		},
	}
}
