package scenario

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Entry is one statically configured scenario.
type Entry struct {
	Filename    string `json:"filename"`
	DisplayName string `json:"displayName"`
	FollowUp    string `json:"followUpScenario,omitempty"`
}

// Config is the scenario playlist.
type Config struct {
	ShuffleEnabled bool    `json:"shuffleEnabled"`
	Scenarios      []Entry `json:"scenarios"`
}

// ParseConfig decodes a playlist document.
func ParseConfig(data []byte) (Config, error) {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse scenario config: %w", err)
	}
	return cfg, nil
}

// LoadConfig reads a playlist file. A missing file yields an empty playlist
// and no error, matching how a missing world config falls back to defaults.
func LoadConfig(path string) (Config, error) {
	cleanPath := filepath.Clean(path)
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("read scenario config %q: %w", cleanPath, err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", cleanPath, err)
	}
	return cfg, nil
}
