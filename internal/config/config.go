package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	AppName        = "RadioBrowse"
	AppDescription = "A command-line browser and recorder for internet radio stations"
	AppProjectURL  = "https://github.com/radiobrowse/radiobrowse"

	ConfigDir      = ".config/radiobrowse"
	ConfigFileName = "config.yml"
	DefaultVolume  = 70
	MinVolume      = 0
	MaxVolume      = 100
)

// ClampVolume ensures volume is within the valid range [0, 100].
func ClampVolume(volume int) int {
	if volume < MinVolume {
		return MinVolume
	}
	if volume > MaxVolume {
		return MaxVolume
	}
	return volume
}

type Config struct {
	Volume      int      `yaml:"volume"`
	LastStation string   `yaml:"last_station"` // station UUID
	Autostart   bool     `yaml:"autostart"`
	Favorites   []string `yaml:"favorites"` // station UUIDs
	RecordDir   string   `yaml:"record_dir"`
}

func GetConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(home, ConfigDir, ConfigFileName), nil
}

// Load reads the config file, falling back to defaults when it is missing or
// unreadable. Load never leaves the caller without a usable config.
func Load() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return DefaultConfig(), err
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return DefaultConfig(), fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.Volume = ClampVolume(cfg.Volume)

	return cfg, nil
}

// Save writes the configuration to disk atomically using temp file + rename.
func (c *Config) Save() error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	tmpFile, err := os.CreateTemp(configDir, ".config-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	defer func() {
		if tmpPath != "" {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, configPath); err != nil {
		return fmt.Errorf("failed to rename config file: %w", err)
	}

	tmpPath = "" // Prevent defer from removing the final file
	return nil
}

func DefaultConfig() *Config {
	return &Config{
		Volume:      DefaultVolume,
		LastStation: "",
		Autostart:   false,
		Favorites:   []string{},
		RecordDir:   "",
	}
}

func (c *Config) IsFavorite(stationUUID string) bool {
	for _, id := range c.Favorites {
		if id == stationUUID {
			return true
		}
	}
	return false
}

func (c *Config) ToggleFavorite(stationUUID string) {
	for i, id := range c.Favorites {
		if id == stationUUID {
			c.Favorites = append(c.Favorites[:i], c.Favorites[i+1:]...)
			return
		}
	}
	c.Favorites = append(c.Favorites, stationUUID)
}

// CleanupFavorites drops favorites whose station UUID is no longer known to
// the directory.
func (c *Config) CleanupFavorites(validStationUUIDs map[string]bool) {
	cleaned := []string{}
	for _, id := range c.Favorites {
		if validStationUUIDs[id] {
			cleaned = append(cleaned, id)
		}
	}
	c.Favorites = cleaned
}
