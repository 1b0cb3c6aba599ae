// Package score tracks the hidden corruption score and fires one-shot events
// when configured thresholds are crossed.
//
// A threshold T is crossed by a change from prev to next when prev < T <= next.
// Crossing is used instead of equality because one response can award several
// points at once. Every threshold fires at most once per session, and all
// thresholds crossed by a single change fire in ascending order of T.
package score

import (
	"log"
	"sort"
)

// Observer receives score events. Callbacks run synchronously on the caller's
// goroutine.
type Observer interface {
	OnScoreChanged(score, max int)
	OnInboxThreshold(t InboxThreshold)
	OnPoliceThreshold(t PoliceThreshold)
}

// NoOpObserver ignores every event.
type NoOpObserver struct{}

func (NoOpObserver) OnScoreChanged(score, max int)      {}
func (NoOpObserver) OnInboxThreshold(t InboxThreshold)   {}
func (NoOpObserver) OnPoliceThreshold(t PoliceThreshold) {}

type inboxEntry struct {
	InboxThreshold
	triggered bool
}

type policeEntry struct {
	PoliceThreshold
	triggered bool
}

// Engine is the authoritative score for one game session.
type Engine struct {
	max       int
	current   int
	inbox     []*inboxEntry
	police    []*policeEntry
	observers []Observer
}

// New builds an engine from a sanitized copy of cfg.
func New(cfg Config) *Engine {
	cfg = SanitizeConfig(cfg)
	e := &Engine{max: cfg.MaxScore}
	for _, t := range cfg.Inbox {
		e.inbox = append(e.inbox, &inboxEntry{InboxThreshold: t})
	}
	for _, t := range cfg.Police {
		e.police = append(e.police, &policeEntry{PoliceThreshold: t})
	}
	log.Printf("[score] initialized: max %d, %d inbox thresholds, %d police thresholds",
		e.max, len(e.inbox), len(e.police))
	return e
}

// Subscribe registers an observer. Observers are notified in subscription order.
func (e *Engine) Subscribe(o Observer) {
	if o != nil {
		e.observers = append(e.observers, o)
	}
}

// Score returns the current score.
func (e *Engine) Score() int { return e.current }

// Max returns the ceiling.
func (e *Engine) Max() int { return e.max }

// AddScore credits points. Non-positive amounts are ignored.
func (e *Engine) AddScore(points int) {
	if points <= 0 {
		return
	}
	prev := e.current
	next := prev + points
	if next > e.max || next < prev { // overflow guard
		next = e.max
	}
	e.apply(prev, next)
	log.Printf("[score] +%d -> %d/%d", points, e.current, e.max)
}

// SetScore assigns the score directly, clamped to [0, max]. Thresholds
// between the old and new value fire as for AddScore.
func (e *Engine) SetScore(value int) {
	prev := e.current
	e.apply(prev, clamp(value, 0, e.max))
	log.Printf("[score] set -> %d/%d", e.current, e.max)
}

// Reset zeroes the score and re-arms every threshold for a new playthrough.
func (e *Engine) Reset() {
	e.current = 0
	for _, t := range e.inbox {
		t.triggered = false
	}
	for _, t := range e.police {
		t.triggered = false
	}
	log.Printf("[score] reset")
	for _, o := range e.observers {
		o.OnScoreChanged(e.current, e.max)
	}
}

func (e *Engine) apply(prev, next int) {
	e.current = next
	for _, o := range e.observers {
		o.OnScoreChanged(next, e.max)
	}
	e.checkThresholds(prev, next)
}

// crossing is one fired threshold; exactly one of inbox/police is set.
type crossing struct {
	value  int
	inbox  *inboxEntry
	police *policeEntry
}

func (e *Engine) checkThresholds(prev, next int) {
	if next <= prev {
		return
	}
	var fired []crossing
	for _, t := range e.inbox {
		if !t.triggered && prev < t.Threshold && next >= t.Threshold {
			t.triggered = true
			fired = append(fired, crossing{value: t.Threshold, inbox: t})
		}
	}
	for _, t := range e.police {
		if !t.triggered && prev < t.Threshold && next >= t.Threshold {
			t.triggered = true
			fired = append(fired, crossing{value: t.Threshold, police: t})
		}
	}
	// Inbox entries were appended first, so a stable sort keeps them ahead
	// of police entries on equal values.
	sort.SliceStable(fired, func(i, j int) bool { return fired[i].value < fired[j].value })

	for _, c := range fired {
		if c.inbox != nil {
			log.Printf("[score] inbox threshold %q reached at %d", c.inbox.Name, c.value)
			for _, o := range e.observers {
				o.OnInboxThreshold(c.inbox.InboxThreshold)
			}
			continue
		}
		log.Printf("[score] police threshold %q reached at %d -> %s", c.police.Name, c.value, c.police.ScenarioID)
		for _, o := range e.observers {
			o.OnPoliceThreshold(c.police.PoliceThreshold)
		}
	}
}

// IsInboxTriggered reports whether the named inbox threshold has fired.
func (e *Engine) IsInboxTriggered(name string) bool {
	for _, t := range e.inbox {
		if t.Name == name {
			return t.triggered
		}
	}
	return false
}

// IsPoliceTriggered reports whether the named police threshold has fired.
func (e *Engine) IsPoliceTriggered(name string) bool {
	for _, t := range e.police {
		if t.Name == name {
			return t.triggered
		}
	}
	return false
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
