package main

import (
	"flag"
	"math"

	"ProjectKiosk/internal/server"
)

func main() {
	addr := flag.String("addr", ":8080", "address to listen on (e.g., 127.0.0.1:8080)")
	worldConfigPath := flag.String("config", "configs/world.json", "path to world tuning JSON (score thresholds, session timing, playlist)")
	contentDir := flag.String("content-dir", "", "directory of scenario files (.json legacy or .yaml), layered over the built-in content")
	contentDB := flag.String("content-db", "", "SQLite scenario database, consulted before -content-dir and the built-in content")
	maxScore := flag.Int("max-score", -1, "override the corruption score ceiling")
	revealCPS := flag.Float64("reveal-cps", math.NaN(), "override the typewriter rate in characters per second (0 = instant)")
	authSeconds := flag.Float64("auth-seconds", math.NaN(), "override the authorization card verification delay")
	skipBroken := flag.Bool("skip-broken", false, "skip scenarios that fail to load instead of ending the game")
	flag.Parse()

	cfg := server.DefaultAppConfig()
	cfg.WorldConfigPath = *worldConfigPath
	cfg.ContentDir = *contentDir
	cfg.ContentDB = *contentDB

	var overrides server.SessionOverrides

	if *maxScore >= 0 {
		val := *maxScore
		overrides.MaxScore = &val
	}
	if !math.IsNaN(*revealCPS) {
		val := *revealCPS
		overrides.RevealCharsPerSecond = &val
	}
	if !math.IsNaN(*authSeconds) {
		val := *authSeconds
		overrides.AuthorizationSeconds = &val
	}
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "skip-broken" {
			val := *skipBroken
			overrides.SkipBrokenScenarios = &val
		}
	})

	cfg.Overrides = overrides

	server.StartApp(*addr, cfg)
}
