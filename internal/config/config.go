package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"
)

// envRefPattern matches ${ENV_VAR} references in config values.
var envRefPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Manager loads configuration once and republishes it on file changes.
// Readers always see a complete snapshot; a half-written config file is
// ignored and the previous snapshot stays current.
type Manager struct {
	mu        sync.RWMutex
	config    *Config
	callbacks []func(*Config)
}

// NewManager reads configuration from cfgFile, or from the standard
// search path (., $HOME/.easel) when cfgFile is empty. A missing file is
// fine; defaults and EASEL_* environment variables still apply.
func NewManager(cfgFile string) (*Manager, error) {
	bindDefaults()

	viper.SetEnvPrefix("EASEL")
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.easel")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cm := &Manager{callbacks: make([]func(*Config), 0)}
	cfg, err := snapshot()
	if err != nil {
		return nil, err
	}
	cm.config = cfg
	return cm, nil
}

// bindDefaults seeds viper with the default tree so partial config files
// unmarshal into fully populated structs.
func bindDefaults() {
	defaults := DefaultConfig()
	viper.SetDefault("log", defaults.Log)
	viper.SetDefault("expansion", defaults.Expansion)
	viper.SetDefault("provider", defaults.Provider)
	viper.SetDefault("server", defaults.Server)
	viper.SetDefault("defaults", defaults.Defaults)
}

// snapshot materializes the current viper state as a Config.
func snapshot() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Get returns the current configuration snapshot.
func (cm *Manager) Get() *Config {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.config
}

// OnChange registers fn to run with each new snapshot after a reload.
func (cm *Manager) OnChange(fn func(*Config)) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.callbacks = append(cm.callbacks, fn)
}

// WatchConfig starts hot-reloading: file writes reload the snapshot and
// fan out to the registered callbacks.
func (cm *Manager) WatchConfig() {
	viper.OnConfigChange(func(fsnotify.Event) { cm.reload() })
	viper.WatchConfig()
}

// reload swaps in a fresh snapshot and notifies callbacks. Callbacks run
// outside the lock so they may call Get or OnChange themselves.
func (cm *Manager) reload() {
	cfg, err := snapshot()
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
}

// ResolveEnvVars expands ${ENV_VAR} references in a string. Unset
// variables expand to the empty string.
func ResolveEnvVars(value string) string {
	if value == "" {
		return value
	}
	return envRefPattern.ReplaceAllStringFunc(value, func(match string) string {
		return os.Getenv(match[2 : len(match)-1])
	})
}

const defaultFileHeader = `# Easel configuration
# API keys use ${ENV_VAR} syntax to reference environment variables
# Set these in your shell: export OPENAI_API_KEY=xxx

`

// WriteDefault writes the default configuration to path as commented YAML.
func WriteDefault(path string) error {
	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(path, append([]byte(defaultFileHeader), data...), 0o644)
}
