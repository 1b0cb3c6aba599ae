package server

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"ProjectKiosk/internal/content"
	"ProjectKiosk/internal/kiosk"
)

// sessionIdleTTL is how long a session survives without a connection.
const sessionIdleTTL = 10 * time.Minute

// booth is one kiosk session and the connection currently driving it.
type booth struct {
	session    *kiosk.Session
	conn       uint64
	stop       context.CancelFunc
	detachedAt time.Time
}

// Hub owns the kiosk sessions. A client reconnecting with its session id
// resumes where it left off; a kiosk has one screen, so a newer connection
// takes the session over from an older one.
type Hub struct {
	Mu       sync.Mutex
	booths   map[string]*booth
	settings kiosk.Config
	store    content.Store
	nextConn uint64
}

func NewHub(settings kiosk.Config, store content.Store) *Hub {
	return &Hub{
		booths:   map[string]*booth{},
		settings: settings,
		store:    store,
	}
}

// Attach returns the session for id, creating a new one when id is unknown
// or empty, and a connection token that identifies the new driver. stop is
// called when a later connection takes the session over.
func (h *Hub) Attach(id string, stop context.CancelFunc) (*kiosk.Session, uint64) {
	h.Mu.Lock()
	defer h.Mu.Unlock()
	h.nextConn++
	conn := h.nextConn
	if b, ok := h.booths[id]; ok {
		if b.conn != 0 {
			log.Printf("[hub] session %s taken over by a new connection", id)
			if b.stop != nil {
				b.stop()
			}
		}
		b.conn = conn
		b.stop = stop
		return b.session, conn
	}
	if id != "" {
		if _, err := uuid.Parse(id); err != nil {
			log.Printf("[hub] ignoring malformed session id %q", id)
		}
	}
	s := kiosk.NewSession(h.settings, h.store)
	h.booths[s.ID()] = &booth{session: s, conn: conn, stop: stop}
	return s, conn
}

// Owns reports whether conn is still the driver of session id.
func (h *Hub) Owns(id string, conn uint64) bool {
	h.Mu.Lock()
	defer h.Mu.Unlock()
	b, ok := h.booths[id]
	return ok && b.conn == conn
}

// Drain hands the session's queued messages to conn only while conn drives
// it. A replaced connection gets nothing, so the new screen sees every message.
func (h *Hub) Drain(id string, conn uint64) ([]kiosk.OutboundMessage, bool) {
	h.Mu.Lock()
	defer h.Mu.Unlock()
	b, ok := h.booths[id]
	if !ok || b.conn != conn {
		return nil, false
	}
	return b.session.Drain(), true
}

// Detach releases the session if conn still drives it.
func (h *Hub) Detach(id string, conn uint64) {
	h.Mu.Lock()
	defer h.Mu.Unlock()
	if b, ok := h.booths[id]; ok && b.conn == conn {
		b.conn = 0
		b.stop = nil
		b.detachedAt = time.Now()
	}
}

// CleanupDetached drops sessions that have had no connection for ttl.
func (h *Hub) CleanupDetached(ttl time.Duration) int {
	h.Mu.Lock()
	defer h.Mu.Unlock()
	n := 0
	for id, b := range h.booths {
		if b.conn == 0 && time.Since(b.detachedAt) > ttl {
			delete(h.booths, id)
			n++
		}
	}
	if n > 0 {
		log.Printf("[hub] removed %d idle sessions, %d remain", n, len(h.booths))
	}
	return n
}

// Len returns the number of live sessions.
func (h *Hub) Len() int {
	h.Mu.Lock()
	defer h.Mu.Unlock()
	return len(h.booths)
}
