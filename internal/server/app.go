package server

import (
	"log"
	"time"

	"ProjectKiosk/internal/content"
	"ProjectKiosk/internal/kiosk"
	"ProjectKiosk/internal/scenario"
)

type AppConfig struct {
	WorldConfigPath string
	// ContentDir serves scenarios from a directory of scenario files.
	ContentDir string
	// ContentDB serves scenarios from a SQLite store.
	ContentDB string
	Overrides SessionOverrides
}

func DefaultAppConfig() AppConfig {
	return AppConfig{
		WorldConfigPath: "configs/world.json",
	}
}

func ResolveSessionConfig(cfg AppConfig) kiosk.Config {
	params := kiosk.DefaultConfig()
	loaded, playlistPath, err := loadWorldConfig(cfg.WorldConfigPath, params)
	if err != nil {
		log.Printf("world config: %v (using defaults)", err)
	} else {
		params = loaded
	}
	params.Scenarios = resolvePlaylist(playlistPath)
	return applySessionOverrides(params, cfg.Overrides)
}

// resolvePlaylist reads the configured playlist, falling back to the one
// shipped with the seed content when none is configured or it is empty.
func resolvePlaylist(path string) scenario.Config {
	if path != "" {
		pl, err := scenario.LoadConfig(path)
		switch {
		case err != nil:
			log.Printf("scenario config: %v (using seed playlist)", err)
		case len(pl.Scenarios) == 0:
			log.Printf("scenario config %s is empty (using seed playlist)", path)
		default:
			return pl
		}
	}
	pl, err := scenario.ParseConfig(content.SeedPlaylist())
	if err != nil {
		log.Printf("seed playlist: %v", err)
	}
	return pl
}

// OpenStore layers the configured sources over the embedded seed content.
// The returned close function releases the database, if any.
func OpenStore(cfg AppConfig) (content.Store, func(), error) {
	var chain content.Chain
	closeFn := func() {}
	if cfg.ContentDB != "" {
		db, err := content.OpenSQLite(cfg.ContentDB)
		if err != nil {
			return nil, closeFn, err
		}
		chain = append(chain, db)
		closeFn = func() { _ = db.Close() }
	}
	if cfg.ContentDir != "" {
		chain = append(chain, content.NewDirStore(cfg.ContentDir))
	}
	chain = append(chain, content.Seed())
	return chain, closeFn, nil
}

func StartApp(addr string, cfg AppConfig) {
	settings := ResolveSessionConfig(cfg)
	store, closeStore, err := OpenStore(cfg)
	if err != nil {
		log.Fatalf("failed to open content store: %v", err)
	}
	defer closeStore()

	hub := NewHub(settings, store)

	// Periodic cleanup of abandoned sessions (every 60 seconds)
	go func() {
		ticker := time.NewTicker(60 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			hub.CleanupDetached(sessionIdleTTL)
		}
	}()

	log.Printf("starting kiosk server on %s (%d scenarios, max score %d, reveal %.0f cps, authorization %.1fs)\n",
		addr, len(settings.Scenarios.Scenarios), settings.Score.MaxScore, settings.RevealCharsPerSecond, settings.AuthorizationSeconds)
	startServer(hub, addr)
}
