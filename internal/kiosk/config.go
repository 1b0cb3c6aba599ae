package kiosk

import (
	"math/rand/v2"
	"time"

	"ProjectKiosk/internal/reveal"
	"ProjectKiosk/internal/scenario"
	"ProjectKiosk/internal/score"
)

// DefaultAuthorizationSeconds is how long an authorization card takes to
// verify.
const DefaultAuthorizationSeconds = 5.0

// Config tunes one kiosk session.
type Config struct {
	Score     score.Config
	Scenarios scenario.Config

	// RevealCharsPerSecond drives the typewriter effect. Zero reveals lines
	// instantly.
	RevealCharsPerSecond float64
	// AuthorizationSeconds is the verification delay for authorization cards.
	AuthorizationSeconds float64
	// SkipBrokenScenarios skips ids that fail to load instead of ending the
	// game.
	SkipBrokenScenarios bool

	// Rand shuffles the playlist. Nil uses the global source.
	Rand *rand.Rand
	// Clock schedules holds, authorization and reveal completion. Nil uses
	// wall-clock timers.
	Clock Clock
}

// DefaultConfig returns the shipped tuning with an empty playlist.
func DefaultConfig() Config {
	return Config{
		Score:                score.DefaultConfig(),
		RevealCharsPerSecond: reveal.DefaultCharsPerSecond,
		AuthorizationSeconds: DefaultAuthorizationSeconds,
	}
}

// Clock abstracts timers so tests can fire them by hand.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) (stop func() bool)
}

type wallClock struct{}

func (wallClock) Now() time.Time { return time.Now() }

func (wallClock) AfterFunc(d time.Duration, f func()) func() bool {
	return time.AfterFunc(d, f).Stop
}

func seconds(s float64) time.Duration {
	if s <= 0 {
		return 0
	}
	return time.Duration(s * float64(time.Second))
}
