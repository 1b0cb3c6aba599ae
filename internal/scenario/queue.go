// Package scenario orders the customer encounters of a playthrough.
//
// The queue is built once from a static list, optionally shuffled a single
// time, and then mutated only by front injection (follow-ups and police
// visits). Injection never reorders what is already queued.
package scenario

import (
	"log"
	"math/rand/v2"
	"strings"
)

// ID names a scenario; it is the key passed to the content store.
type ID string

// Queue is the pending list of scenarios for one session.
type Queue struct {
	pending  []ID
	followUp map[ID]ID
	total    int
	current  ID
}

// NewQueue builds a queue from cfg. When cfg.ShuffleEnabled is set the order
// is shuffled once with rng (Fisher-Yates); a nil rng uses the global source.
func NewQueue(cfg Config, rng *rand.Rand) *Queue {
	q := &Queue{followUp: make(map[ID]ID)}
	ids := make([]ID, 0, len(cfg.Scenarios))
	for _, entry := range cfg.Scenarios {
		id := ID(entry.Filename)
		if id == "" {
			continue
		}
		ids = append(ids, id)
		if entry.FollowUp != "" {
			q.followUp[id] = ID(entry.FollowUp)
		}
	}
	if len(ids) == 0 {
		log.Printf("[scenario] no scenarios configured")
	}
	if cfg.ShuffleEnabled {
		shuffle(ids, rng)
		log.Printf("[scenario] shuffled order: %s", joinIDs(ids))
	}
	q.pending = ids
	q.total = len(ids)
	return q
}

// shuffle is an in-place Fisher-Yates pass.
func shuffle(ids []ID, rng *rand.Rand) {
	swap := func(i, j int) { ids[i], ids[j] = ids[j], ids[i] }
	if rng != nil {
		rng.Shuffle(len(ids), swap)
		return
	}
	rand.Shuffle(len(ids), swap)
}

// HasNext reports whether any scenario is still queued.
func (q *Queue) HasNext() bool {
	return len(q.pending) > 0
}

// Next dequeues the next scenario. ok is false when the queue is exhausted.
func (q *Queue) Next() (id ID, ok bool) {
	if len(q.pending) == 0 {
		return "", false
	}
	id = q.pending[0]
	q.pending = q.pending[1:]
	q.current = id
	log.Printf("[scenario] next: %s (%d remaining)", id, len(q.pending))
	return id, true
}

// Current returns the most recently dequeued scenario.
func (q *Queue) Current() ID { return q.current }

// InjectFront makes ids the immediate next scenarios, in the order given,
// ahead of everything already queued.
func (q *Queue) InjectFront(ids ...ID) {
	var add []ID
	for _, id := range ids {
		if id != "" {
			add = append(add, id)
		}
	}
	if len(add) == 0 {
		return
	}
	pending := make([]ID, 0, len(add)+len(q.pending))
	pending = append(pending, add...)
	pending = append(pending, q.pending...)
	q.pending = pending
	log.Printf("[scenario] injected %s; next is %s, %d queued", joinIDs(add), q.pending[0], len(q.pending))
}

// NotifyCompleted injects the configured follow-up of id, if any.
func (q *Queue) NotifyCompleted(id ID) {
	log.Printf("[scenario] completed: %s", id)
	if next, ok := q.followUp[id]; ok {
		q.InjectFront(next)
	}
}

// FollowUp returns the statically configured follow-up of id.
func (q *Queue) FollowUp(id ID) (ID, bool) {
	next, ok := q.followUp[id]
	return next, ok
}

// Pending returns a copy of the queued ids in play order.
func (q *Queue) Pending() []ID {
	return append([]ID(nil), q.pending...)
}

// Total returns the number of statically configured scenarios.
func (q *Queue) Total() int { return q.total }

// Remaining returns the number of queued scenarios.
func (q *Queue) Remaining() int { return len(q.pending) }

func joinIDs(ids []ID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = string(id)
	}
	return strings.Join(parts, ", ")
}
