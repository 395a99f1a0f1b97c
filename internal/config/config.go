package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/existflow/deadlines/internal/storage"
	"gopkg.in/yaml.v3"
)

// Config holds user preferences
type Config struct {
	Timezone       string `yaml:"timezone" json:"timezone"`               // Region the form shows due instants in
	TruncateLength int    `yaml:"truncate_length" json:"truncate_length"` // Card budget for task text
	PersistEmpty   bool   `yaml:"persist_empty" json:"persist_empty"`     // Write an empty collection instead of skipping it
	Seed           bool   `yaml:"seed" json:"seed"`                       // Populate example deadlines on first run

	Storage storage.Config `yaml:"storage" json:"storage"`

	// Logging configuration
	LogLevel   string `yaml:"log_level" json:"log_level"`     // Log level: DEBUG, INFO, WARN, ERROR
	LogFile    string `yaml:"log_file" json:"log_file"`       // Path to log file
	LogConsole bool   `yaml:"log_console" json:"log_console"` // Enable console logging
}

// Dir returns ~/.deadlines, or DEADLINES_HOME when set
func Dir() (string, error) {
	if dir := os.Getenv("DEADLINES_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".deadlines"), nil
}

// defaults are the built-in settings, before file and environment
func defaults() *Config {
	dir, _ := Dir()
	logPath, dbPath := "", ""
	if dir != "" {
		logPath = filepath.Join(dir, "logs", "deadlines.log")
		dbPath = filepath.Join(dir, "deadlines.db")
	}

	return &Config{
		Timezone:       "Europe/Madrid",
		TruncateLength: 25,
		PersistEmpty:   false,
		Seed:           true,
		Storage: storage.Config{
			Driver:      storage.DriverSQLite,
			SQLitePath:  dbPath,
			RedisAddr:   "localhost:6379",
			RedisPrefix: "deadlines:",
			Key:         "deadlines",
		},
		LogLevel:   "INFO",
		LogFile:    logPath,
		LogConsole: false,
	}
}

// DefaultConfig returns default settings with environment overrides applied
func DefaultConfig() *Config {
	cfg := defaults()
	cfg.applyEnv()
	return cfg
}

// applyEnv overrides fields from DEADLINES_* variables; unset or empty
// variables leave the field alone
func (c *Config) applyEnv() {
	setString(&c.Timezone, "DEADLINES_TIMEZONE")
	setInt(&c.TruncateLength, "DEADLINES_TRUNCATE_LENGTH")
	setBool(&c.PersistEmpty, "DEADLINES_PERSIST_EMPTY")
	setBool(&c.Seed, "DEADLINES_SEED")

	setString(&c.Storage.Driver, "DEADLINES_STORAGE")
	setString(&c.Storage.SQLitePath, "DEADLINES_SQLITE_PATH")
	setString(&c.Storage.PostgresDSN, "DEADLINES_POSTGRES_DSN")
	setString(&c.Storage.RedisAddr, "DEADLINES_REDIS_ADDR")
	setString(&c.Storage.RedisPassword, "DEADLINES_REDIS_PASSWORD")
	setInt(&c.Storage.RedisDB, "DEADLINES_REDIS_DB")
	setString(&c.Storage.RedisPrefix, "DEADLINES_REDIS_PREFIX")
	setString(&c.Storage.Key, "DEADLINES_KEY")

	setString(&c.LogLevel, "DEADLINES_LOG_LEVEL")
	setString(&c.LogFile, "DEADLINES_LOG_FILE")
	setBool(&c.LogConsole, "DEADLINES_LOG_CONSOLE")

	if c.TruncateLength <= 0 {
		c.TruncateLength = 25
	}
}

func setString(dst *string, key string) {
	if value := os.Getenv(key); value != "" {
		*dst = value
	}
}

func setInt(dst *int, key string) {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil && n >= 0 {
		*dst = n
	}
}

func setBool(dst *bool, key string) {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		*dst = b
	}
}

// Path returns the config file location
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load loads config from ~/.deadlines/config.yaml
func Load() (*Config, error) {
	configPath, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFile(configPath)
}

// LoadFile reads a YAML file over the defaults, then applies the
// environment. A missing file yields defaults.
func LoadFile(configPath string) (*Config, error) {
	cfg, err := readFile(configPath)
	if err != nil {
		return nil, err
	}
	cfg.applyEnv()
	return cfg, nil
}

// readFile is defaults plus the file, without the environment
func readFile(configPath string) (*Config, error) {
	cfg := defaults()
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// Update applies fn to the saved config and writes it back. Environment
// values are never part of what is written.
func Update(fn func(*Config)) error {
	configPath, err := Path()
	if err != nil {
		return err
	}
	return UpdateFile(configPath, fn)
}

// UpdateFile is Update for an explicit path
func UpdateFile(configPath string, fn func(*Config)) error {
	cfg, err := readFile(configPath)
	if err != nil {
		return err
	}
	fn(cfg)
	return cfg.SaveFile(configPath)
}

// Save saves config to ~/.deadlines/config.yaml
func (c *Config) Save() error {
	configPath, err := Path()
	if err != nil {
		return err
	}
	return c.SaveFile(configPath)
}

// SaveFile writes the config as YAML to configPath
func (c *Config) SaveFile(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}
