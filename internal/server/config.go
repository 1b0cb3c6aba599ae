package server

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"ProjectKiosk/internal/kiosk"
	"ProjectKiosk/internal/score"
)

type scoreConfig struct {
	MaxScore *int                     `json:"maxScore"`
	Inbox    *[]score.InboxThreshold  `json:"inbox"`
	Police   *[]score.PoliceThreshold `json:"police"`
}

type sessionConfig struct {
	RevealCharsPerSecond *float64 `json:"revealCharsPerSecond"`
	AuthorizationSeconds *float64 `json:"authorizationSeconds"`
	SkipBrokenScenarios  *bool    `json:"skipBrokenScenarios"`
}

type worldConfig struct {
	Score     *scoreConfig   `json:"score"`
	Session   *sessionConfig `json:"session"`
	Scenarios *string        `json:"scenarios"`
}

// SessionOverrides represents optional command-line overrides for session tuning.
type SessionOverrides struct {
	MaxScore             *int
	RevealCharsPerSecond *float64
	AuthorizationSeconds *float64
	SkipBrokenScenarios  *bool
}

func (o SessionOverrides) apply(base kiosk.Config) kiosk.Config {
	if o.MaxScore != nil {
		base.Score.MaxScore = *o.MaxScore
	}
	if o.RevealCharsPerSecond != nil {
		base.RevealCharsPerSecond = *o.RevealCharsPerSecond
	}
	if o.AuthorizationSeconds != nil {
		base.AuthorizationSeconds = *o.AuthorizationSeconds
	}
	if o.SkipBrokenScenarios != nil {
		base.SkipBrokenScenarios = *o.SkipBrokenScenarios
	}
	base.Score = score.SanitizeConfig(base.Score)
	return base
}

func mergeScoreConfig(base score.Config, cfg *scoreConfig) score.Config {
	if cfg == nil {
		return base
	}
	if cfg.MaxScore != nil {
		base.MaxScore = *cfg.MaxScore
	}
	if cfg.Inbox != nil {
		base.Inbox = *cfg.Inbox
	}
	if cfg.Police != nil {
		base.Police = *cfg.Police
	}
	return score.SanitizeConfig(base)
}

func mergeSessionConfig(base kiosk.Config, cfg *sessionConfig) kiosk.Config {
	if cfg == nil {
		return base
	}
	if cfg.RevealCharsPerSecond != nil {
		base.RevealCharsPerSecond = *cfg.RevealCharsPerSecond
	}
	if cfg.AuthorizationSeconds != nil {
		base.AuthorizationSeconds = *cfg.AuthorizationSeconds
	}
	if cfg.SkipBrokenScenarios != nil {
		base.SkipBrokenScenarios = *cfg.SkipBrokenScenarios
	}
	return base
}

// loadWorldConfig merges the world file over base. It also returns the
// playlist path named by the file, resolved against the file's directory.
func loadWorldConfig(path string, base kiosk.Config) (kiosk.Config, string, error) {
	if path == "" {
		return base, "", nil
	}
	cleanPath := filepath.Clean(path)
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		if os.IsNotExist(err) {
			return base, "", nil
		}
		return base, "", fmt.Errorf("read world config %q: %w", cleanPath, err)
	}
	var cfg worldConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return base, "", fmt.Errorf("parse world config %q: %w", cleanPath, err)
	}
	base.Score = mergeScoreConfig(base.Score, cfg.Score)
	base = mergeSessionConfig(base, cfg.Session)

	playlist := ""
	if cfg.Scenarios != nil && *cfg.Scenarios != "" {
		playlist = *cfg.Scenarios
		if !filepath.IsAbs(playlist) {
			playlist = filepath.Join(filepath.Dir(cleanPath), playlist)
		}
	}
	return base, playlist, nil
}

func applySessionOverrides(base kiosk.Config, overrides SessionOverrides) kiosk.Config {
	return overrides.apply(base)
}
