package client

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/skriptik666-dev/flick-messenger/internal/config"
)

const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// Config is what survives between runs.
type Config struct {
	Token           string               `json:"token,omitempty"`
	Theme           string               `json:"theme"`
	Storage         config.StorageConfig `json:"storage"`                     // Overrides the environment's storage settings
	LastListedChats []string             `json:"last_listed_chats,omitempty"` // Cache for index-based access
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{Theme: ThemeLight}, nil
		}
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if cfg.Theme != ThemeDark {
		cfg.Theme = ThemeLight
	}
	return &cfg, nil
}

func SaveConfig(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

func GetConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "flick-messenger", "config.json"), nil
}

// prefsTokens keeps the bearer token in the config file.
type prefsTokens struct{}

func (prefsTokens) Token() string {
	if cfg == nil {
		return ""
	}
	return cfg.Token
}

func (prefsTokens) SetToken(token string) error {
	if cfg == nil {
		cfg = &Config{Theme: ThemeLight}
	}
	cfg.Token = token
	return SaveConfigGlobal()
}
