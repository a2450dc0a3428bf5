package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"github.com/wricardo/mcp-training/slidepuzzle/game/engine"
	"github.com/wricardo/mcp-training/slidepuzzle/game/service"
)

var (
	ErrConfigNotFound = errors.New("configuration not found")
	ErrInvalidConfig  = errors.New("invalid configuration")
)

// DefaultConfigName is loaded as the default when present.
const DefaultConfigName = "classic"

// extensions lists the supported config formats in lookup order.
var extensions = []string{".json", ".yaml", ".yml"}

// Manager handles game configuration loading and caching
type Manager struct {
	configDir     string
	defaultConfig *engine.GameConfig
	configs       map[string]*engine.GameConfig
	mu            sync.RWMutex
}

// NewManager creates a new configuration manager
func NewManager(configDir string) (*Manager, error) {
	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("config directory does not exist: %s", configDir)
	}

	m := &Manager{
		configDir: configDir,
		configs:   make(map[string]*engine.GameConfig),
	}

	if err := m.loadDefaultConfig(); err != nil {
		return nil, fmt.Errorf("failed to load default config: %w", err)
	}

	return m, nil
}

// configID strips a supported extension from a file or config name.
func configID(name string) string {
	ext := filepath.Ext(name)
	for _, known := range extensions {
		if ext == known {
			return strings.TrimSuffix(name, ext)
		}
	}
	return name
}

func validName(name string) bool {
	return name != "" && !strings.ContainsAny(name, `/\`) && !strings.Contains(name, "..")
}

// findFile locates the file backing a config id.
func (m *Manager) findFile(name string) (string, error) {
	if ext := filepath.Ext(name); ext != "" && configID(name) != name {
		path := filepath.Join(m.configDir, name)
		if _, err := os.Stat(path); err != nil {
			return "", ErrConfigNotFound
		}
		return path, nil
	}
	for _, ext := range extensions {
		path := filepath.Join(m.configDir, name+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", ErrConfigNotFound
}

// parseConfig decodes JSON or YAML depending on the file extension.
func parseConfig(path string, data []byte) (*engine.GameConfig, error) {
	var config engine.GameConfig
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}
	return &config, nil
}

// LoadConfig loads a configuration by name
func (m *Manager) LoadConfig(name string) (*engine.GameConfig, error) {
	if !validName(name) {
		return nil, ErrConfigNotFound
	}
	id := configID(name)

	m.mu.RLock()
	if config, exists := m.configs[id]; exists {
		m.mu.RUnlock()
		return config, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadLocked(name)
}

// loadLocked reads, validates and caches a config. Callers hold mu.
func (m *Manager) loadLocked(name string) (*engine.GameConfig, error) {
	id := configID(name)
	if config, exists := m.configs[id]; exists {
		return config, nil
	}

	path, err := m.findFile(name)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	parsed, err := parseConfig(path, data)
	if err != nil {
		return nil, err
	}

	config := parsed.WithDefaults()
	if err := engine.ValidateGameConfig(config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	m.configs[id] = config
	return config, nil
}

// ListConfigs returns information about all available configurations
func (m *Manager) ListConfigs() ([]*service.ConfigInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listLocked()
}

func (m *Manager) listLocked() ([]*service.ConfigInfo, error) {
	entries, err := os.ReadDir(m.configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}

	configs := []*service.ConfigInfo{}
	seen := make(map[string]bool)
	for _, entry := range entries {
		id := configID(entry.Name())
		if entry.IsDir() || id == entry.Name() || seen[id] {
			continue
		}

		config, err := m.loadLocked(entry.Name())
		if err != nil {
			log.Warn("Skipping invalid config", "file", entry.Name(), "error", err)
			continue
		}
		seen[id] = true

		configs = append(configs, &service.ConfigInfo{
			Filename:             entry.Name(),
			ConfigID:             id,
			Name:                 config.Name,
			Description:          config.Description,
			TimeLimitSeconds:     config.TimeLimitSeconds,
			RecoverableFromLevel: config.RecoverableFromLevel,
			QuestionCount:        len(config.Questions),
			AllowSkip:            config.AllowSkip,
			AllowAutoSolve:       config.AllowAutoSolve,
		})
	}

	sort.Slice(configs, func(i, j int) bool { return configs[i].ConfigID < configs[j].ConfigID })
	return configs, nil
}

// GetDefault returns the default configuration
func (m *Manager) GetDefault() *engine.GameConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultConfig
}

// SetDefault sets the default configuration by name
func (m *Manager) SetDefault(name string) error {
	config, err := m.LoadConfig(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultConfig = config
	return nil
}

// RefreshCache reloads all cached configurations from disk
func (m *Manager) RefreshCache() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.configs = make(map[string]*engine.GameConfig)
	return m.loadDefaultLocked()
}

// ReloadConfig drops a cached configuration and reads it again from disk
func (m *Manager) ReloadConfig(name string) error {
	if !validName(name) {
		return ErrConfigNotFound
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.configs, configID(name))
	_, err := m.loadLocked(name)
	return err
}

// ValidateConfig checks a configuration without storing it
func (m *Manager) ValidateConfig(config *engine.GameConfig) error {
	if config == nil {
		return fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}
	if err := engine.ValidateGameConfig(config.WithDefaults()); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Count returns the number of cached configurations
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.configs)
}

func (m *Manager) loadDefaultConfig() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadDefaultLocked()
}

// loadDefaultLocked picks classic, then the first valid config, then the
// built-in rules.
func (m *Manager) loadDefaultLocked() error {
	if config, err := m.loadLocked(DefaultConfigName); err == nil {
		m.defaultConfig = config
		return nil
	}

	configs, err := m.listLocked()
	if err != nil || len(configs) == 0 {
		log.Warn("No usable config files, falling back to built-in rules", "dir", m.configDir)
		m.defaultConfig = engine.DefaultGameConfig()
		return nil
	}

	m.defaultConfig = m.configs[configs[0].ConfigID]
	return nil
}

// SaveConfig saves a configuration to disk. A .yaml or .yml suffix selects
// YAML; anything else is written as JSON.
func (m *Manager) SaveConfig(name string, config *engine.GameConfig) error {
	if !validName(name) {
		return fmt.Errorf("%w: invalid config name %q", ErrInvalidConfig, name)
	}
	if config == nil {
		return fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}
	config = config.WithDefaults()
	if err := engine.ValidateGameConfig(config); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	filename := name
	if configID(name) == name {
		filename = name + ".json"
	}

	var (
		data []byte
		err  error
	)
	switch filepath.Ext(filename) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(config)
	default:
		data, err = json.MarshalIndent(config, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filepath.Join(m.configDir, filename), data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	m.mu.Lock()
	m.configs[configID(name)] = config
	m.mu.Unlock()

	return nil
}
