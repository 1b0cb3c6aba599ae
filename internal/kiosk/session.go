// Package kiosk wires the scenario queue, dialogue engine, score, inbox and
// checkout into one playable session.
//
// A Session serializes every event behind a mutex: player input from the
// transport and timer completions (line holds, authorization, typewriter
// reveal) all run one at a time. Presentation events are queued as
// OutboundMessage values and collected with Drain.
package kiosk

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"

	"ProjectKiosk/internal/access"
	"ProjectKiosk/internal/content"
	"ProjectKiosk/internal/dialogue"
	"ProjectKiosk/internal/inbox"
	"ProjectKiosk/internal/reveal"
	"ProjectKiosk/internal/scenario"
	"ProjectKiosk/internal/score"
)

// Phase is the session's position between scenarios.
type Phase string

const (
	PhaseIdle        Phase = "idle"
	PhasePlaying     Phase = "playing"
	PhaseScoreScreen Phase = "score_screen"
	PhaseFinished    Phase = "finished"
)

var (
	// ErrWrongPhase is returned for input the current phase does not accept.
	ErrWrongPhase = errors.New("kiosk: not allowed in this phase")
	// ErrNoCard is returned when the requested ID card is not part of the
	// scenario.
	ErrNoCard = errors.New("kiosk: no ID card available")
	// ErrNotOnCounter is returned when removing an item that is not there.
	ErrNotOnCounter = errors.New("kiosk: item not on the counter")
)

// Session is one player's game.
type Session struct {
	mu    sync.Mutex
	id    string
	cfg   Config
	store content.Store
	clock Clock

	score    *score.Engine
	inbox    *inbox.Inbox
	queue    *scenario.Queue
	engine   *dialogue.Engine
	checkout *Checkout

	phase    Phase
	scenario *dialogue.Scenario
	served   int
	gen      uint64
	police   []scenario.ID

	// presentation state mirrored for View
	line       *dialogue.LineView
	choices    []dialogue.ChoiceView
	contOn     bool
	goBackOn   bool
	panel      *access.View
	scanPrefab string
	text       *reveal.Task

	outbox []OutboundMessage
}

// NewSession builds a session over store. Nothing is shown until Begin.
func NewSession(cfg Config, store content.Store) *Session {
	if cfg.Clock == nil {
		cfg.Clock = wallClock{}
	}
	if cfg.AuthorizationSeconds < 0 {
		cfg.AuthorizationSeconds = 0
	}
	s := &Session{
		id:       uuid.NewString(),
		cfg:      cfg,
		store:    store,
		clock:    cfg.Clock,
		score:    score.New(cfg.Score),
		inbox:    inbox.New(),
		checkout: &Checkout{},
		phase:    PhaseIdle,
	}
	s.score.Subscribe(scoreObserver{s})
	s.engine = dialogue.NewEngine(dialogue.Deps{
		Sink:     sink{s},
		Scorer:   scorer{s},
		Checkout: s.checkout,
		Access:   access.NewModel(),
	})
	s.queue = scenario.NewQueue(cfg.Scenarios, cfg.Rand)
	log.Printf("[session] %s created: %d scenarios queued", s.id, s.queue.Total())
	return s
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// Begin starts the first customer. It is a no-op once the game is running.
func (s *Session) Begin(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseIdle {
		return nil
	}
	s.emit(MsgScore, ScoreMsg{Score: s.score.Score(), Max: s.score.Max()})
	s.emitInbox()
	s.emitCheckout()
	return s.advanceQueue(ctx)
}

// NewGame discards all progress and starts over from the first customer.
func (s *Session) NewGame(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	log.Printf("[session] %s new game", s.id)
	s.engine.Abort()
	s.gen++
	s.stopReveal()
	s.score.Reset()
	s.inbox.Clear()
	s.checkout.Clear()
	// A new playthrough gets its own single shuffle.
	s.queue = scenario.NewQueue(s.cfg.Scenarios, s.cfg.Rand)
	s.police = nil
	s.served = 0
	s.scenario = nil
	s.clearPresentation()
	s.phase = PhaseIdle
	s.emitInbox()
	s.emitCheckout()
	return s.advanceQueue(ctx)
}

// NextCustomer leaves the score screen and loads the next scenario.
func (s *Session) NextCustomer(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseScoreScreen {
		return fmt.Errorf("%w: next customer during %s", ErrWrongPhase, s.phase)
	}
	return s.advanceQueue(ctx)
}

// Continue completes any running reveal and advances the dialogue.
func (s *Session) Continue() error {
	return s.playing(func() error {
		s.finishReveal()
		return s.engine.Continue()
	})
}

// Choose selects a response by its index on the current line.
func (s *Session) Choose(i int) error {
	return s.playing(func() error {
		s.finishReveal()
		return s.engine.ChooseResponse(i)
	})
}

// GoBack follows the current line's go-back button.
func (s *Session) GoBack() error {
	return s.playing(func() error {
		s.finishReveal()
		return s.engine.GoBack()
	})
}

// ScanID hands the requested card to the scanner.
func (s *Session) ScanID() error {
	return s.playing(func() error {
		id, ok := s.scenario.CardFor(s.scanPrefab)
		if !ok {
			s.emit(MsgNotice, NoticeMsg{Text: "No ID card to scan."})
			return fmt.Errorf("%w: %q", ErrNoCard, s.scanPrefab)
		}
		return s.engine.OnIdentityScanned(id)
	})
}

// DismissCard acknowledges a shown business card.
func (s *Session) DismissCard() error {
	return s.playing(s.engine.DismissCard)
}

// SkipReveal shows the whole current line immediately.
func (s *Session) SkipReveal() error {
	return s.playing(func() error {
		s.finishReveal()
		return nil
	})
}

// AddToCheckout puts an item on the counter.
func (s *Session) AddToCheckout(name string) error {
	item, err := dialogue.ParseItemCategory(name)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkout.Add(item)
	s.emitCheckout()
	return nil
}

// RemoveFromCheckout returns an item to the shelf.
func (s *Session) RemoveFromCheckout(name string) error {
	item, err := dialogue.ParseItemCategory(name)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.checkout.Remove(item) {
		return fmt.Errorf("%w: %s", ErrNotOnCounter, item)
	}
	s.emitCheckout()
	return nil
}

// OpenInbox marks every message read.
func (s *Session) OpenInbox() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inbox.Open()
	s.emitInbox()
}

// Drain returns and clears the queued outbound messages.
func (s *Session) Drain() []OutboundMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.outbox) == 0 {
		return nil
	}
	out := s.outbox
	s.outbox = nil
	return out
}

func (s *Session) playing(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhasePlaying {
		return fmt.Errorf("%w: %s", ErrWrongPhase, s.phase)
	}
	return fn()
}

// advanceQueue loads scenarios until one starts or the queue runs out.
func (s *Session) advanceQueue(ctx context.Context) error {
	s.clearPresentation()
	s.checkout.Clear()
	s.emitCheckout()
	for {
		id, ok := s.queue.Next()
		if !ok {
			s.finish()
			return nil
		}
		sc, err := s.store.Load(ctx, string(id))
		if err == nil {
			err = s.start(sc)
		}
		if err == nil {
			return nil
		}
		log.Printf("[session] %s scenario %s failed to load: %v", s.id, id, err)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if !s.cfg.SkipBrokenScenarios {
			s.finish()
			return nil
		}
	}
}

func (s *Session) start(sc *dialogue.Scenario) error {
	s.gen++
	s.scenario = sc
	s.phase = PhasePlaying
	s.emit(MsgCustomer, CustomerMsg{
		ScenarioID: sc.ID,
		Name:       sc.CustomerName,
		NPCPrefab:  sc.NPCPrefab,
		Requested:  itemNames(sc.RequestedItems),
		Served:     s.served,
		Remaining:  s.queue.Remaining(),
		Total:      s.queue.Total(),
	})
	if err := s.engine.Start(sc); err != nil {
		s.scenario = nil
		s.phase = PhaseIdle
		return err
	}
	return nil
}

func (s *Session) finish() {
	s.engine.Abort()
	s.gen++
	s.stopReveal()
	s.phase = PhaseFinished
	s.scenario = nil
	log.Printf("[session] %s all customers served (%d), final score %d", s.id, s.served, s.score.Score())
	s.emit(MsgAllServed, AllServedMsg{Served: s.served, Score: s.score.Score()})
}

func (s *Session) emit(typ string, payload any) {
	s.outbox = append(s.outbox, OutboundMessage{Type: typ, Payload: payload})
}

func (s *Session) emitInbox() {
	s.emit(MsgInbox, InboxMsg{Messages: s.inbox.Messages(), Unread: s.inbox.Unread(), Badge: s.inbox.Badge()})
}

func (s *Session) emitCheckout() {
	s.emit(MsgCheckout, CheckoutMsg{Items: itemNames(s.checkout.Snapshot()), Total: s.checkout.Total()})
}

func (s *Session) clearPresentation() {
	s.line = nil
	s.choices = nil
	s.contOn = false
	s.goBackOn = false
	s.panel = nil
	s.scanPrefab = ""
}

// flushPolice injects police scenarios collected during one score change as
// a single batch, lowest threshold first.
func (s *Session) flushPolice() {
	if len(s.police) == 0 {
		return
	}
	batch := s.police
	s.police = nil
	s.queue.InjectFront(batch...)
}

// after schedules fn under the session lock, dropped if the scenario changed
// in the meantime.
func (s *Session) after(delay float64, fn func()) {
	gen := s.gen
	s.clock.AfterFunc(seconds(delay), func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.gen != gen || s.phase != PhasePlaying {
			return
		}
		fn()
	})
}
