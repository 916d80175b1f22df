package config

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"

	"github.com/AlvinPalmgren/PunktGrader/internal/stamp"
)

// Config is the full punktgrader configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server" yaml:"server"`
	Processor ProcessorConfig `mapstructure:"processor" yaml:"processor"`
	Stamp     StampConfig     `mapstructure:"stamp" yaml:"stamp"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port string `mapstructure:"port" yaml:"port"`
}

// ProcessorConfig holds background processor settings.
type ProcessorConfig struct {
	// MaxConcurrent bounds simultaneously running student tasks.
	MaxConcurrent int `mapstructure:"max_concurrent" yaml:"max_concurrent"`
}

// StampConfig holds watermark rendering settings.
type StampConfig struct {
	Font    string  `mapstructure:"font" yaml:"font"`
	Points  int     `mapstructure:"points" yaml:"points"`
	Opacity float64 `mapstructure:"opacity" yaml:"opacity"`
}

// StampOptions converts the stamp section for the stamping engine.
func (c *Config) StampOptions() stamp.Options {
	return stamp.Options{
		Font:    c.Stamp.Font,
		Points:  c.Stamp.Points,
		Opacity: c.Stamp.Opacity,
	}
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: "8080",
		},
		Processor: ProcessorConfig{
			MaxConcurrent: 4,
		},
		Stamp: StampConfig{
			Font:    "Helvetica",
			Points:  12,
			Opacity: 0.4,
		},
	}
}

// Manager handles loading and hot-reloading configuration.
type Manager struct {
	mu        sync.RWMutex
	config    *Config
	callbacks []func(*Config)
}

// NewManager creates a new config manager and loads initial config.
func NewManager(cfgFile string) (*Manager, error) {
	cm := &Manager{
		callbacks: make([]func(*Config), 0),
	}

	if err := cm.initViper(cfgFile); err != nil {
		return nil, err
	}

	cfg, err := cm.load()
	if err != nil {
		return nil, err
	}
	cm.config = cfg

	return cm, nil
}

// initViper sets up viper with defaults and config file.
func (cm *Manager) initViper(cfgFile string) error {
	defaults := DefaultConfig()
	viper.SetDefault("server", defaults.Server)
	viper.SetDefault("processor", defaults.Processor)
	viper.SetDefault("stamp", defaults.Stamp)

	// Environment variables with PUNKTGRADER_ prefix
	viper.SetEnvPrefix("PUNKTGRADER")
	viper.AutomaticEnv()

	// Config file
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.punktgrader")
	}

	// Try to read config file (not required)
	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	return nil
}

// load parses the current viper state into a Config struct.
func (cm *Manager) load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Get returns the current configuration (thread-safe).
func (cm *Manager) Get() *Config {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.config
}

// OnChange registers a callback for config changes.
func (cm *Manager) OnChange(fn func(*Config)) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.callbacks = append(cm.callbacks, fn)
}

// WatchConfig enables hot-reloading of configuration.
func (cm *Manager) WatchConfig() {
	viper.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := cm.load()
		if err != nil {
			return
		}

		cm.mu.Lock()
		cm.config = cfg
		callbacks := make([]func(*Config), len(cm.callbacks))
		copy(callbacks, cm.callbacks)
		cm.mu.Unlock()

		for _, fn := range callbacks {
			fn(cfg)
		}
	})
	viper.WatchConfig()
}

// WriteDefault writes the default configuration to the specified path.
func WriteDefault(path string) error {
	cfg := DefaultConfig()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# PunktGrader configuration
# Values may also be set via PUNKTGRADER_* environment variables.

`)
	return os.WriteFile(path, append(header, data...), 0o644)
}
