package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"
)

// fileName is the config file written inside the config directory
const fileName = "config.yaml"

// envPrefix prefixes environment overrides, e.g. DOKUSHA_LIBRARY_SORT_READ
const envPrefix = "DOKUSHA"

// Config holds all application configuration
type Config struct {
	Library LibraryConfig `mapstructure:"library"`
	Storage StorageConfig `mapstructure:"storage"`
	UI      UIConfig      `mapstructure:"ui"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// LibraryConfig holds the library screen preferences
type LibraryConfig struct {
	FilterRead string `mapstructure:"filter_read"` // "active", "inverse" or "inactive"
	SortRead   string `mapstructure:"sort_read"`   // "active", "inverse" or "inactive"
	DefaultTab string `mapstructure:"default_tab"` // "reading" or "completed"
}

// StorageConfig holds where the library database lives
type StorageConfig struct {
	DataDir string `mapstructure:"data_dir"`
}

// UIConfig holds UI configuration
type UIConfig struct {
	GridColumns int `mapstructure:"grid_columns"` // 0 picks by terminal width
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Library: LibraryConfig{
			FilterRead: "inactive",
			SortRead:   "inactive",
			DefaultTab: "reading",
		},
		Storage: StorageConfig{
			DataDir: defaultDataPath(),
		},
		UI: UIConfig{
			GridColumns: 0,
		},
		Logging: LoggingConfig{
			File:  filepath.Join(defaultDataPath(), "dokusha.log"),
			Level: "INFO",
		},
	}
}

// defaultDataPath returns the default data directory for the current OS
func defaultDataPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "dokusha")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "dokusha")
	}
}

// DefaultConfigDir returns the default config directory for the current OS
func DefaultConfigDir() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "dokusha")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "dokusha")
	}
}

// FilePath returns the config file path inside dir ("" = default dir)
func FilePath(dir string) string {
	if dir == "" {
		dir = DefaultConfigDir()
	}
	return filepath.Join(dir, fileName)
}

// ExpandPath expands a leading ~ to the user's home directory
func ExpandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, path[1:]), nil
}

// newViper returns a viper instance with defaults and env overrides set
func newViper(dir string) *viper.Viper {
	if dir == "" {
		dir = DefaultConfigDir()
	}
	v := viper.New()
	v.SetConfigName(strings.TrimSuffix(fileName, filepath.Ext(fileName)))
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)

	// Defaults make every key visible to AutomaticEnv
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// setDefaults registers every field of cfg as a default using snake_case keys
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("library.filter_read", cfg.Library.FilterRead)
	v.SetDefault("library.sort_read", cfg.Library.SortRead)
	v.SetDefault("library.default_tab", cfg.Library.DefaultTab)
	v.SetDefault("storage.data_dir", cfg.Storage.DataDir)
	v.SetDefault("ui.grid_columns", cfg.UI.GridColumns)
	v.SetDefault("logging.file", cfg.Logging.File)
	v.SetDefault("logging.level", cfg.Logging.Level)
}

// LoadConfig loads configuration from dir ("" = default dir) and environment.
// A missing config file is not an error.
func LoadConfig(dir string) (*Config, error) {
	v := newViper(dir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}
	return cfg, nil
}

// SaveConfig writes cfg to dir ("" = default dir)
func SaveConfig(dir string, cfg *Config) error {
	path := FilePath(dir)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Set fields individually to ensure correct key names (snake_case)
	v := viper.New()
	v.SetConfigType("yaml")
	v.Set("library.filter_read", cfg.Library.FilterRead)
	v.Set("library.sort_read", cfg.Library.SortRead)
	v.Set("library.default_tab", cfg.Library.DefaultTab)
	v.Set("storage.data_dir", cfg.Storage.DataDir)
	v.Set("ui.grid_columns", cfg.UI.GridColumns)
	v.Set("logging.file", cfg.Logging.File)
	v.Set("logging.level", cfg.Logging.Level)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
