package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/bryanchriswhite/FocusVibrance/internal/ctm"
	"github.com/bryanchriswhite/FocusVibrance/internal/logger"
)

// Configuration keys
const (
	KeyTitleFilters   = "title_filters"
	KeySaturation     = "saturation"
	KeyLogLevel       = "log_level"
	KeyLogPretty      = "log_pretty"
	KeyStatusPort     = "status_port"
	KeyWaylandDisplay = "wayland_display"
	KeyDBusService    = "dbus_service"
)

// Keys lists every key accepted by Set
var Keys = []string{
	KeyTitleFilters,
	KeySaturation,
	KeyLogLevel,
	KeyLogPretty,
	KeyStatusPort,
	KeyWaylandDisplay,
	KeyDBusService,
}

// DefaultSaturation is the saturation used when none is configured
const DefaultSaturation = 3.3

var ErrNoTitleFilters = errors.New("no title filters configured")

// Config represents the application configuration
type Config struct {
	TitleFilters   []string `json:"title_filters" yaml:"title_filters" mapstructure:"title_filters"`
	Saturation     float64  `json:"saturation" yaml:"saturation" mapstructure:"saturation"`
	LogLevel       string   `json:"log_level" yaml:"log_level" mapstructure:"log_level"`
	LogPretty      bool     `json:"log_pretty" yaml:"log_pretty" mapstructure:"log_pretty"`
	StatusPort     int      `json:"status_port" yaml:"status_port" mapstructure:"status_port"`
	WaylandDisplay string   `json:"wayland_display,omitempty" yaml:"wayland_display,omitempty" mapstructure:"wayland_display"`
	DBusService    bool     `json:"dbus_service" yaml:"dbus_service" mapstructure:"dbus_service"`
}

// Validate checks the settings a running daemon depends on
func (c *Config) Validate() error {
	if len(c.TitleFilters) == 0 {
		return ErrNoTitleFilters
	}
	for _, f := range c.TitleFilters {
		if f == "" {
			return errors.New("title filters must not be empty strings")
		}
	}
	if !ctm.ValidSaturation(c.Saturation) {
		return fmt.Errorf("saturation %v out of range [%v, %v]", c.Saturation, ctm.MinSaturation, ctm.MaxSaturation)
	}
	if !logger.ValidLevel(c.LogLevel) {
		return fmt.Errorf("invalid log level: %s (use: debug, info, warn, error)", c.LogLevel)
	}
	if c.StatusPort < 0 || c.StatusPort > 65535 {
		return fmt.Errorf("invalid status port: %d", c.StatusPort)
	}
	return nil
}

// Manager handles configuration. The file contents live in a viper
// instance; overrides from flags are layered on top by Get and never saved.
type Manager struct {
	configPath string
	v          *viper.Viper
	overrides  map[string]any
	mu         sync.RWMutex
}

// DefaultPath returns $HOME/.config/focusvibrance/config.yaml
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "focusvibrance", "config.yaml"), nil
}

// NewManager loads configFile, or the default path when empty. A missing
// file is created with defaults.
func NewManager(configFile string) (*Manager, error) {
	path := configFile
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	m := &Manager{
		configPath: path,
		v:          viper.New(),
		overrides:  make(map[string]any),
	}
	setDefaults(m.v)
	m.v.SetConfigFile(path)
	m.v.SetConfigType("yaml")

	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		logger.WithComponent("config").Info().
			Str("path", path).
			Msg("Config file not found, creating new config")
		if err := m.Save(); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	}

	if err := m.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	logger.WithComponent("config").Debug().
		Str("path", path).
		Int("title_filters", len(m.v.GetStringSlice(KeyTitleFilters))).
		Msg("Config loaded")
	return m, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyTitleFilters, []string{})
	v.SetDefault(KeySaturation, DefaultSaturation)
	v.SetDefault(KeyLogLevel, string(logger.InfoLevel))
	v.SetDefault(KeyLogPretty, true)
	v.SetDefault(KeyStatusPort, 0)
	v.SetDefault(KeyWaylandDisplay, "")
	v.SetDefault(KeyDBusService, false)
}

// fileConfigLocked decodes the persisted settings (caller must hold a lock)
func (m *Manager) fileConfigLocked() (*Config, error) {
	var cfg Config
	if err := m.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if cfg.TitleFilters == nil {
		cfg.TitleFilters = []string{}
	}
	return &cfg, nil
}

// Get returns the effective configuration: file values with overrides applied
func (m *Manager) Get() (*Config, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.overrides) == 0 {
		return m.fileConfigLocked()
	}

	layered := viper.New()
	if err := layered.MergeConfigMap(m.v.AllSettings()); err != nil {
		return nil, fmt.Errorf("failed to layer config: %w", err)
	}
	for k, val := range m.overrides {
		layered.Set(k, val)
	}

	var cfg Config
	if err := layered.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if cfg.TitleFilters == nil {
		cfg.TitleFilters = []string{}
	}
	return &cfg, nil
}

// Value returns the effective value for key
func (m *Manager) Value(key string) (any, error) {
	if !slices.Contains(Keys, key) {
		return nil, fmt.Errorf("configuration key not found: %s", key)
	}
	cfg, err := m.Get()
	if err != nil {
		return nil, err
	}

	switch key {
	case KeyTitleFilters:
		return cfg.TitleFilters, nil
	case KeySaturation:
		return cfg.Saturation, nil
	case KeyLogLevel:
		return cfg.LogLevel, nil
	case KeyLogPretty:
		return cfg.LogPretty, nil
	case KeyStatusPort:
		return cfg.StatusPort, nil
	case KeyDBusService:
		return cfg.DBusService, nil
	default:
		return cfg.WaylandDisplay, nil
	}
}

// Override applies value for key to Get without persisting it
func (m *Manager) Override(key string, value any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.overrides[key] = value
}

// Save writes the persisted settings to disk
func (m *Manager) Save() error {
	m.mu.RLock()
	cfg, err := m.fileConfigLocked()
	m.mu.RUnlock()
	if err != nil {
		return err
	}

	logger.WithComponent("config").Debug().
		Str("path", m.configPath).
		Msg("Saving config")

	configDir := filepath.Dir(m.configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(m.configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config %s: %w", m.configPath, err)
	}
	return nil
}

// ParseValue converts the textual value of key to its typed form
func ParseValue(key, value string) (any, error) {
	switch key {
	case KeyTitleFilters:
		var filters []string
		for _, f := range strings.Split(value, ",") {
			if f = strings.TrimSpace(f); f != "" {
				filters = append(filters, f)
			}
		}
		return filters, nil
	case KeySaturation:
		s, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid saturation: %s", value)
		}
		if !ctm.ValidSaturation(s) {
			return nil, fmt.Errorf("saturation %v out of range [%v, %v]", s, ctm.MinSaturation, ctm.MaxSaturation)
		}
		return s, nil
	case KeyLogLevel:
		if !logger.ValidLevel(value) {
			return nil, fmt.Errorf("invalid log level: %s (use: debug, info, warn, error)", value)
		}
		return strings.ToLower(value), nil
	case KeyLogPretty, KeyDBusService:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("invalid boolean: %s (use: true or false)", value)
		}
		return b, nil
	case KeyStatusPort:
		port, err := strconv.Atoi(value)
		if err != nil || port < 0 || port > 65535 {
			return nil, fmt.Errorf("invalid port number: %s", value)
		}
		return port, nil
	case KeyWaylandDisplay:
		return value, nil
	}
	return nil, fmt.Errorf("configuration key not found: %s", key)
}

// Set parses value for key and persists it
func (m *Manager) Set(key, value string) error {
	parsed, err := ParseValue(key, value)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.v.Set(key, parsed)
	m.mu.Unlock()
	return m.Save()
}

// TitleFilters returns the persisted title filters
func (m *Manager) TitleFilters() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.v.GetStringSlice(KeyTitleFilters))
}

// AddTitleFilter adds an exact window title to the filter list
func (m *Manager) AddTitleFilter(title string) error {
	if title == "" {
		return errors.New("title filter must not be empty")
	}

	m.mu.Lock()
	filters := m.v.GetStringSlice(KeyTitleFilters)
	if slices.Contains(filters, title) {
		m.mu.Unlock()
		return nil // Already exists
	}
	m.v.Set(KeyTitleFilters, append(slices.Clone(filters), title))
	m.mu.Unlock()
	return m.Save()
}

// RemoveTitleFilter removes an exact window title from the filter list
func (m *Manager) RemoveTitleFilter(title string) error {
	m.mu.Lock()
	filters := m.v.GetStringSlice(KeyTitleFilters)
	i := slices.Index(filters, title)
	if i < 0 {
		m.mu.Unlock()
		return fmt.Errorf("title filter not found: %q", title)
	}
	m.v.Set(KeyTitleFilters, slices.Delete(slices.Clone(filters), i, i+1))
	m.mu.Unlock()
	return m.Save()
}

// GetConfigPath returns the path to the config file
func (m *Manager) GetConfigPath() string {
	return m.configPath
}
