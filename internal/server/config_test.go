package server

import (
	"os"
	"path/filepath"
	"testing"

	"ProjectKiosk/internal/kiosk"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadWorldConfigMergesOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "world.json", `{
		"score": {"maxScore": 100, "police": [{"name": "late", "threshold": 90, "scenario": "Cops"}]},
		"session": {"authorizationSeconds": 1.5},
		"scenarios": "playlist.json"
	}`)

	cfg, playlist, err := loadWorldConfig(path, kiosk.DefaultConfig())
	if err != nil {
		t.Fatalf("loadWorldConfig: %v", err)
	}
	if cfg.Score.MaxScore != 100 {
		t.Errorf("MaxScore = %d, want 100", cfg.Score.MaxScore)
	}
	if len(cfg.Score.Police) != 1 || cfg.Score.Police[0].ScenarioID != "Cops" {
		t.Errorf("police thresholds not replaced: %+v", cfg.Score.Police)
	}
	if len(cfg.Score.Inbox) != 3 {
		t.Errorf("inbox thresholds should keep defaults, got %d", len(cfg.Score.Inbox))
	}
	if cfg.AuthorizationSeconds != 1.5 {
		t.Errorf("AuthorizationSeconds = %v", cfg.AuthorizationSeconds)
	}
	if cfg.RevealCharsPerSecond != kiosk.DefaultConfig().RevealCharsPerSecond {
		t.Errorf("RevealCharsPerSecond changed to %v", cfg.RevealCharsPerSecond)
	}
	if playlist != filepath.Join(dir, "playlist.json") {
		t.Errorf("playlist = %q", playlist)
	}
}

func TestLoadWorldConfigMissingFile(t *testing.T) {
	base := kiosk.DefaultConfig()
	cfg, playlist, err := loadWorldConfig(filepath.Join(t.TempDir(), "nope.json"), base)
	if err != nil || playlist != "" || cfg.Score.MaxScore != base.Score.MaxScore {
		t.Fatalf("missing file should yield defaults, got %v %q %+v", err, playlist, cfg.Score)
	}
}

func TestLoadWorldConfigBadJSON(t *testing.T) {
	path := writeFile(t, t.TempDir(), "world.json", `{"score": `)
	if _, _, err := loadWorldConfig(path, kiosk.DefaultConfig()); err == nil {
		t.Fatal("expected a parse error")
	}
}

func TestSessionOverrides(t *testing.T) {
	maxScore := 40
	skip := true
	cfg := applySessionOverrides(kiosk.DefaultConfig(), SessionOverrides{MaxScore: &maxScore, SkipBrokenScenarios: &skip})
	if cfg.Score.MaxScore != 40 || !cfg.SkipBrokenScenarios {
		t.Fatalf("overrides not applied: max %d skip %v", cfg.Score.MaxScore, cfg.SkipBrokenScenarios)
	}
}

func TestResolveSessionConfigFallsBackToSeedPlaylist(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "world.json", `{"scenarios": "missing.json"}`)
	cfg := ResolveSessionConfig(AppConfig{WorldConfigPath: path})
	if len(cfg.Scenarios.Scenarios) == 0 {
		t.Fatal("expected the seed playlist")
	}

	writeFile(t, dir, "mine.json", `{"scenarios": [{"filename": "Grandma"}]}`)
	path = writeFile(t, dir, "world2.json", `{"scenarios": "mine.json"}`)
	cfg = ResolveSessionConfig(AppConfig{WorldConfigPath: path})
	if len(cfg.Scenarios.Scenarios) != 1 || cfg.Scenarios.Scenarios[0].Filename != "Grandma" {
		t.Fatalf("unexpected playlist %+v", cfg.Scenarios)
	}
}

func TestOpenStoreUsesSeed(t *testing.T) {
	store, closeFn, err := OpenStore(AppConfig{ContentDB: filepath.Join(t.TempDir(), "kiosk.db")})
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	t.Cleanup(closeFn)
	if _, err := store.Load(t.Context(), "ShaunBaker"); err != nil {
		t.Fatalf("seed scenario should load through the chain: %v", err)
	}
}
