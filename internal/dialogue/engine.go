package dialogue

import (
	"errors"
	"fmt"
	"log"

	"ProjectKiosk/internal/access"
)

var (
	// ErrNotStarted is returned when no scenario is running.
	ErrNotStarted = errors.New("dialogue: no scenario running")
	// ErrScenarioEnded is returned for input after the scenario ended.
	ErrScenarioEnded = errors.New("dialogue: scenario ended")
	// ErrActionRequired is returned while an ID scan or authorization is pending.
	ErrActionRequired = errors.New("dialogue: required action pending")
	// ErrChoiceRequired is returned by Continue on a choice line that has not
	// enabled it.
	ErrChoiceRequired = errors.New("dialogue: choice required")
	// ErrNotAwaitingChoice is returned by ChooseResponse outside a choice line.
	ErrNotAwaitingChoice = errors.New("dialogue: not awaiting a choice")
	// ErrNoSuchResponse is returned for an out-of-range or hidden response.
	ErrNoSuchResponse = errors.New("dialogue: no such response")
	// ErrSaleRejected reports a checkout mismatch. It is a business outcome:
	// the customer has already been told and the flow stays put.
	ErrSaleRejected = errors.New("dialogue: sale rejected")
	// ErrGoBackUnavailable is returned when the line offers no go-back.
	ErrGoBackUnavailable = errors.New("dialogue: go back not available")
	// ErrNotAwaitingScan is returned for a scan or authorization completion
	// the current line did not ask for.
	ErrNotAwaitingScan = errors.New("dialogue: not waiting for an ID scan")
	// ErrLineHeld is returned by Continue while a timed line is displaying.
	ErrLineHeld = errors.New("dialogue: line is still displaying")
	// ErrStaleHold is returned for a hold completion that no longer applies.
	ErrStaleHold = errors.New("dialogue: stale hold ticket")
	// ErrCardPending is returned while a business card awaits dismissal.
	ErrCardPending = errors.New("dialogue: business card not dismissed")
	// ErrNoCard is returned by DismissCard when no card is waiting.
	ErrNoCard = errors.New("dialogue: no business card shown")
	// ErrContinueDisabled is returned on lines that suppress Continue.
	ErrContinueDisabled = errors.New("dialogue: continue disabled on this line")
)

// Player-facing notices.
const (
	NoticeActionRequired = "Please complete the required action."
	NoticeIDScanned      = "ID scanned. Thank you!"
	NoticeChooseResponse = "Please choose a response."
	NoticeTakeCard       = "Please take the card first."
	NoticeVerifying      = "Verifying Authorization..."
	NoticeUnavailable    = "That option is not available right now."
)

// HoldTicket identifies one timed hold of a line. Completions carrying an
// older ticket are ignored.
type HoldTicket uint64

// Deps are the collaborators an engine drives. Nil members get inert
// defaults.
type Deps struct {
	Sink     Sink
	Scorer   Scorer
	Checkout Checkout
	Access   *access.Model
}

// Engine runs one scenario's conversation.
type Engine struct {
	sink     Sink
	scorer   Scorer
	checkout Checkout
	access   *access.Model
	conds    *Conditions

	scenario *Scenario
	graph    *Graph
	pos      int
	state    State
	memory   *Memory
	stack    ReturnStack

	continueOn   bool
	holding      bool
	hold         HoldTicket
	cardPending  bool
	endAfterCard bool
	endScreen    int
}

// NewEngine wires an engine to its collaborators.
func NewEngine(d Deps) *Engine {
	e := &Engine{
		sink:     d.Sink,
		scorer:   d.Scorer,
		checkout: d.Checkout,
		access:   d.Access,
		conds:    NewConditions(),
		state:    StateNotStarted,
		memory:   NewMemory(),
	}
	if e.sink == nil {
		e.sink = NoOpSink{}
	}
	if e.scorer == nil {
		e.scorer = nopScorer{}
	}
	if e.checkout == nil {
		e.checkout = emptyCheckout{}
	}
	if e.access == nil {
		e.access = access.NewModel()
	}
	return e
}

// Start resets per-scenario state and shows the scenario's first line.
func (e *Engine) Start(s *Scenario) error {
	if s == nil {
		return ErrEmptyScenario
	}
	g, err := NewGraph(s.Lines)
	if err != nil {
		return fmt.Errorf("scenario %s: %w", s.ID, err)
	}
	for _, problem := range g.Lint() {
		log.Printf("[dialogue] scenario %s: %v", s.ID, problem)
	}

	e.memory.Clear()
	e.stack.Clear()
	e.access.Reset()
	e.clearHolds()
	e.scenario = s
	e.graph = g
	e.pos = 0
	e.state = StateInLine
	log.Printf("[dialogue] starting scenario %s (%s, %d lines)", s.ID, s.CustomerName, len(s.Lines))

	e.sink.ShowAccessPanel(nil)
	e.showCurrentLine()
	return nil
}

// Abort drops the running scenario, discarding any pending authorization or
// hold completion.
func (e *Engine) Abort() {
	e.access.Authorization().Abort()
	e.clearHolds()
	e.stack.Clear()
	e.scenario = nil
	e.graph = nil
	e.state = StateNotStarted
}

// State returns the lifecycle state.
func (e *Engine) State() State { return e.state }

// Scenario returns the running scenario, or nil.
func (e *Engine) Scenario() *Scenario { return e.scenario }

// Memory exposes the chosen-response memory of the current run.
func (e *Engine) Memory() *Memory { return e.memory }

// ReturnStack returns a copy of the suspended lines, bottom first.
func (e *Engine) ReturnStack() []int { return e.stack.Items() }

// Access exposes the access model for the current scenario.
func (e *Engine) Access() *access.Model { return e.access }

// CurrentLine returns the line being shown, or nil.
func (e *Engine) CurrentLine() *Line {
	if e.graph == nil || e.pos < 0 || e.pos >= len(e.graph.Lines) {
		return nil
	}
	return &e.graph.Lines[e.pos]
}

// ContinueEnabled reports whether Continue would currently advance.
func (e *Engine) ContinueEnabled() bool {
	switch e.state {
	case StateInLine, StateAwaitingChoice:
		return e.continueOn && !e.holding && !e.cardPending
	}
	return false
}

// Snapshot captures the conversation state.
func (e *Engine) Snapshot() Snapshot {
	s := Snapshot{State: e.state, ReturnStack: e.stack.Items()}
	if e.scenario != nil {
		s.ScenarioID = e.scenario.ID
	}
	if line := e.CurrentLine(); line != nil && e.state != StateEnded {
		idx := line.EditorIndex
		s.EditorIndex = &idx
	}
	if e.graph != nil {
		for _, line := range e.graph.Lines {
			if chosen := e.memory.ChosenOn(line.EditorIndex); len(chosen) > 0 {
				if s.Chosen == nil {
					s.Chosen = make(map[int][]int)
				}
				s.Chosen[line.EditorIndex] = chosen
			}
		}
	}
	return s
}

// ShowCurrentLine re-renders the current line, re-applying its effects.
func (e *Engine) ShowCurrentLine() error {
	switch e.state {
	case StateNotStarted:
		return ErrNotStarted
	case StateEnded:
		return ErrScenarioEnded
	}
	e.showCurrentLine()
	return nil
}

// Continue advances to the line stored after the current one.
func (e *Engine) Continue() error {
	switch e.state {
	case StateNotStarted:
		return ErrNotStarted
	case StateEnded:
		return ErrScenarioEnded
	case StateAwaitingAction:
		e.sink.Notice(NoticeActionRequired)
		return ErrActionRequired
	case StateAwaitingChoice:
		if !e.continueOn {
			e.sink.Notice(NoticeChooseResponse)
			return ErrChoiceRequired
		}
	}
	if e.cardPending {
		e.sink.Notice(NoticeTakeCard)
		return ErrCardPending
	}
	if e.holding {
		return ErrLineHeld
	}
	if !e.continueOn {
		return ErrContinueDisabled
	}
	e.advance()
	return nil
}

// ChooseResponse selects response i of the current line.
func (e *Engine) ChooseResponse(i int) error {
	if e.state != StateAwaitingChoice {
		switch e.state {
		case StateNotStarted:
			return ErrNotStarted
		case StateEnded:
			return ErrScenarioEnded
		case StateAwaitingAction:
			e.sink.Notice(NoticeActionRequired)
			return ErrActionRequired
		}
		return ErrNotAwaitingChoice
	}
	line := e.CurrentLine()
	if i < 0 || i >= len(line.Responses) || !e.responseVisible(line, i) {
		return fmt.Errorf("%w: %d on line %d", ErrNoSuchResponse, i, line.EditorIndex)
	}
	resp := line.Responses[i]

	if resp.IsSale {
		requested := e.scenario.RequestedItems
		if !MatchSale(requested, e.checkout.Snapshot()) {
			log.Printf("[dialogue] sale rejected in %s: checkout does not match request", e.scenario.ID)
			e.sink.PlayAudioCue(CueSaleRejected, "")
			e.sink.Notice(rejectionText(requested))
			return ErrSaleRejected
		}
		log.Printf("[dialogue] sale completed in %s: %d items, %.2f credits", e.scenario.ID, len(requested), Total(requested))
		e.sink.PlayAudioCue(CueSaleSuccess, "")
		e.checkout.RemoveSold(append([]ItemCategory(nil), requested...))
	}

	if resp.Score > 0 {
		e.scorer.AddScore(resp.Score)
	}
	e.memory.Mark(line.EditorIndex, i)

	if resp.Next >= 0 {
		if pos, ok := e.graph.Position(resp.Next); ok {
			if resp.ReturnAfter {
				e.stack.Push(line.EditorIndex)
			}
			e.pos = pos
			e.showCurrentLine()
			return nil
		}
		log.Printf("[dialogue] scenario %s: line %d response %d targets unknown line %d, continuing sequentially",
			e.scenario.ID, line.EditorIndex, i, resp.Next)
	}
	e.advance()
	return nil
}

// GoBack jumps to the current line's go-back target. The return stack is
// left untouched.
func (e *Engine) GoBack() error {
	switch e.state {
	case StateNotStarted:
		return ErrNotStarted
	case StateEnded:
		return ErrScenarioEnded
	case StateAwaitingAction:
		e.sink.Notice(NoticeActionRequired)
		return ErrActionRequired
	}
	line := e.CurrentLine()
	if !line.ShowGoBack {
		return ErrGoBackUnavailable
	}
	pos, ok := e.graph.Position(line.GoBackTarget)
	if !ok {
		log.Printf("[dialogue] scenario %s: line %d go-back target %d not found", e.scenario.ID, line.EditorIndex, line.GoBackTarget)
		e.sink.Notice(NoticeUnavailable)
		return fmt.Errorf("%w: %d", ErrLineNotFound, line.GoBackTarget)
	}
	e.pos = pos
	e.showCurrentLine()
	return nil
}

// OnIdentityScanned installs the scanned card. Authorization cards start
// verification and keep the dialogue waiting for CompleteAuthorization.
func (e *Engine) OnIdentityScanned(id access.Identity) error {
	if e.state != StateAwaitingAction {
		log.Printf("[dialogue] ignoring ID scan in state %s", e.state)
		return ErrNotAwaitingScan
	}
	auth := e.access.Authorization()
	if auth.Status() == access.AuthLoading {
		log.Printf("[dialogue] ignoring ID scan while authorization is running")
		return access.ErrAuthInProgress
	}
	e.access.Install(id)
	e.sink.PlayAudioCue(CueIDScanned, "")
	e.sink.ShowAccessPanel(e.access.View())

	if id.RequiresAuthorization {
		ticket, err := auth.Start()
		if err != nil {
			return err
		}
		log.Printf("[dialogue] authorization started for %s (ticket %d)", e.scenario.ID, ticket)
		e.sink.Notice(NoticeVerifying)
		e.sink.ShowAccessPanel(e.access.View())
		e.sink.AuthorizationStarted(ticket)
		return nil
	}
	e.finishScan()
	return nil
}

// CompleteAuthorization is the external completion signal of a verification
// started by OnIdentityScanned.
func (e *Engine) CompleteAuthorization(t access.Ticket) error {
	if e.state != StateAwaitingAction {
		return ErrNotAwaitingScan
	}
	if err := e.access.Authorization().Complete(t, true); err != nil {
		log.Printf("[dialogue] discarding authorization completion: %v", err)
		return err
	}
	e.sink.PlayAudioCue(CueAuthorized, "")
	e.sink.AuthorizationCompleted()
	e.sink.ShowAccessPanel(e.access.View())
	e.finishScan()
	return nil
}

// HoldElapsed is the external completion of a HoldLine request.
func (e *Engine) HoldElapsed(t HoldTicket) error {
	if !e.holding || t != e.hold || e.state != StateInLine {
		return ErrStaleHold
	}
	e.holding = false
	line := e.CurrentLine()
	if line.Hints.AutoAdvance {
		if e.cardPending {
			return nil
		}
		e.advance()
		return nil
	}
	e.continueOn = !line.DisableContinue
	e.sink.ShowContinue(e.ContinueEnabled())
	return nil
}

// DismissCard acknowledges the business card shown by the current line.
func (e *Engine) DismissCard() error {
	if !e.cardPending {
		return ErrNoCard
	}
	e.cardPending = false
	if e.endAfterCard {
		e.end(e.endScreen)
		return nil
	}
	line := e.CurrentLine()
	if e.state == StateInLine && line.Hints.AutoAdvance && !e.holding {
		e.advance()
		return nil
	}
	e.sink.ShowContinue(e.ContinueEnabled())
	return nil
}

func (e *Engine) advance() {
	e.pos++
	e.showCurrentLine()
}

func (e *Engine) clearHolds() {
	e.hold++
	e.holding = false
	e.cardPending = false
	e.endAfterCard = false
	e.continueOn = false
}

func (e *Engine) showCurrentLine() {
	for {
		if e.pos < 0 || e.pos >= len(e.graph.Lines) {
			log.Printf("[dialogue] scenario %s ran past its last line", e.scenario.ID)
			e.end(0)
			return
		}
		line := &e.graph.Lines[e.pos]
		if line.Condition == "" || e.eval(line.Condition, line) {
			break
		}
		e.pos++
	}
	line := &e.graph.Lines[e.pos]
	e.clearHolds()

	e.access.GrantAll(line.Grants)
	e.sink.ShowLine(LineView{
		ScenarioID:  e.scenario.ID,
		EditorIndex: line.EditorIndex,
		Speaker:     line.Speaker,
		Text:        line.Text,
		Hints:       line.Hints,
	})
	if e.access.Scanned() {
		e.sink.ShowAccessPanel(e.access.View())
	}
	if line.Hints.VoiceOver != "" {
		e.sink.PlayAudioCue(CueVoiceOver, line.Hints.VoiceOver)
	}
	if line.Hints.BusinessCard != "" {
		e.sink.ShowBusinessCard(line.Hints.BusinessCard)
		e.cardPending = line.Hints.WaitForCardDismissal
	}

	if line.AskForID {
		e.state = StateAwaitingAction
		e.sink.ShowChoices(nil)
		e.sink.ShowContinue(false)
		e.sink.ShowGoBack(false)
		prefab := line.Hints.IDPrefab
		if prefab == "" {
			prefab = e.scenario.IDPrefab
		}
		e.sink.RequestIdentityScan(prefab)
		return
	}

	if line.EndConversation {
		e.sink.ShowChoices(nil)
		e.sink.ShowContinue(false)
		e.sink.ShowGoBack(false)
		if top, ok := e.stack.Pop(); ok {
			e.resume(top, line.ScoreScreen)
			return
		}
		if e.cardPending {
			e.state = StateInLine
			e.endAfterCard = true
			e.endScreen = line.ScoreScreen
			return
		}
		e.end(line.ScoreScreen)
		return
	}

	if choices := e.visibleChoices(line); len(choices) > 0 {
		e.state = StateAwaitingChoice
		e.continueOn = e.anyChosenActivates(line)
		e.sink.ShowChoices(choices)
	} else {
		e.state = StateInLine
		e.sink.ShowChoices(nil)
		if line.Hints.DisplayDuration > 0 || line.Hints.AutoAdvance {
			e.holding = true
			e.sink.HoldLine(e.hold, line.Hints.DisplayDuration)
		} else {
			e.continueOn = !line.DisableContinue
		}
	}
	e.sink.ShowContinue(e.ContinueEnabled())
	e.sink.ShowGoBack(e.goBackAvailable(line))
}

// resume re-shows a line popped from the return stack.
func (e *Engine) resume(editorIndex, fallbackScreen int) {
	pos, ok := e.graph.Position(editorIndex)
	if !ok {
		log.Printf("[dialogue] scenario %s: return target %d not found, ending", e.scenario.ID, editorIndex)
		e.end(fallbackScreen)
		return
	}
	log.Printf("[dialogue] scenario %s: resuming line %d", e.scenario.ID, editorIndex)
	e.pos = pos
	e.showCurrentLine()
}

func (e *Engine) finishScan() {
	e.sink.Notice(NoticeIDScanned)
	line := e.CurrentLine()
	if choices := e.visibleChoices(line); len(choices) > 0 {
		e.state = StateAwaitingChoice
		e.continueOn = e.anyChosenActivates(line)
		e.sink.ShowChoices(choices)
	} else {
		e.state = StateInLine
		e.continueOn = true
	}
	e.sink.ShowContinue(e.ContinueEnabled())
	e.sink.ShowGoBack(e.goBackAvailable(line))
}

func (e *Engine) end(screen int) {
	if n := e.stack.Len(); n > 0 {
		log.Printf("[dialogue] scenario %s ended with %d suspended lines, discarding", e.scenario.ID, n)
		e.stack.Clear()
	}
	e.clearHolds()
	e.state = StateEnded
	log.Printf("[dialogue] scenario %s ended (score screen %d)", e.scenario.ID, screen)
	e.sink.ShowChoices(nil)
	e.sink.ShowContinue(false)
	e.sink.ShowGoBack(false)
	e.sink.ShowScoreScreen(screen)
	e.sink.ScenarioEnded(e.scenario.ID, screen)
}

func (e *Engine) goBackAvailable(line *Line) bool {
	if !line.ShowGoBack {
		return false
	}
	_, ok := e.graph.Position(line.GoBackTarget)
	return ok
}

func (e *Engine) visibleChoices(line *Line) []ChoiceView {
	var out []ChoiceView
	for i, r := range line.Responses {
		if r.Condition != "" && !e.eval(r.Condition, line) {
			continue
		}
		out = append(out, ChoiceView{Index: i, Text: r.Text, Chosen: e.memory.Chosen(line.EditorIndex, i)})
	}
	return out
}

func (e *Engine) responseVisible(line *Line, i int) bool {
	cond := line.Responses[i].Condition
	return cond == "" || e.eval(cond, line)
}

func (e *Engine) anyChosenActivates(line *Line) bool {
	for _, i := range e.memory.ChosenOn(line.EditorIndex) {
		if i < len(line.Responses) && line.Responses[i].ActivateContinue {
			return true
		}
	}
	return false
}

func (e *Engine) eval(src string, line *Line) bool {
	ok, err := e.conds.Eval(src, e.env(line))
	if err != nil {
		log.Printf("[dialogue] scenario %s: %v", e.scenario.ID, err)
		return false
	}
	return ok
}

func (e *Engine) env(line *Line) Env {
	env := Env{
		Score:      e.scorer.Score(),
		Scanned:    e.access.Scanned(),
		Authorized: e.access.Authorization().Status() == access.AuthAuthorized,
		Visible:    make(map[string]bool, len(access.AllFields)),
		Checkout:   make(map[string]int),
		Requested:  len(e.scenario.RequestedItems),
	}
	for _, f := range access.AllFields {
		env.Visible[f.String()] = e.access.IsVisible(f)
	}
	for _, c := range Catalogue() {
		env.Checkout[string(c)] = 0
	}
	for _, c := range e.checkout.Snapshot() {
		env.Checkout[string(c)]++
	}
	if line != nil {
		env.Chosen = len(e.memory.ChosenOn(line.EditorIndex))
	}
	return env
}

type nopScorer struct{}

func (nopScorer) AddScore(int) {}
func (nopScorer) Score() int   { return 0 }

type emptyCheckout struct{}

func (emptyCheckout) Snapshot() []ItemCategory  { return nil }
func (emptyCheckout) RemoveSold([]ItemCategory) {}
