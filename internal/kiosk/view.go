package kiosk

import (
	"ProjectKiosk/internal/access"
	"ProjectKiosk/internal/dialogue"
	"ProjectKiosk/internal/inbox"
)

// View is a full snapshot of what the client should be showing. It lets a
// reconnecting client or a tool caller catch up without replaying messages.
type View struct {
	SessionID string `json:"session_id"`
	Phase     Phase  `json:"phase"`

	ScenarioID string                `json:"scenario_id,omitempty"`
	Customer   string                `json:"customer,omitempty"`
	Requested  []string              `json:"requested,omitempty"`
	Line       *dialogue.LineView    `json:"line,omitempty"`
	Choices    []dialogue.ChoiceView `json:"choices,omitempty"`
	Continue   bool                  `json:"continue"`
	GoBack     bool                  `json:"go_back"`
	Revealing  bool                  `json:"revealing"`
	// Revealed is the part of the line's text shown so far, so a screen
	// that reconnects mid-line resumes the typewriter where it was.
	Revealed   string                `json:"revealed,omitempty"`

	Access        *access.View      `json:"access,omitempty"`
	AwaitingScan  string            `json:"awaiting_scan,omitempty"`
	Authorization access.AuthStatus `json:"authorization,omitempty"`

	Score    int             `json:"score"`
	MaxScore int             `json:"max_score"`
	Inbox    []inbox.Message `json:"inbox"`
	Unread   int             `json:"unread"`
	Badge    string          `json:"badge"`

	Checkout      []string `json:"checkout"`
	CheckoutTotal float64  `json:"checkout_total"`

	Served    int `json:"served"`
	Remaining int `json:"remaining"`
	Total     int `json:"total"`

	Dialogue dialogue.Snapshot `json:"dialogue"`
}

// View captures the session state.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := View{
		SessionID:     s.id,
		Phase:         s.phase,
		Line:          s.line,
		Choices:       s.choices,
		Continue:      s.contOn,
		GoBack:        s.goBackOn,
		Revealing:     s.text != nil && !s.text.Finished(),
		Access:        s.panel,
		Score:         s.score.Score(),
		MaxScore:      s.score.Max(),
		Inbox:         s.inbox.Messages(),
		Unread:        s.inbox.Unread(),
		Badge:         s.inbox.Badge(),
		Checkout:      itemNames(s.checkout.Snapshot()),
		CheckoutTotal: s.checkout.Total(),
		Served:        s.served,
		Remaining:     s.queue.Remaining(),
		Total:         s.queue.Total(),
		Dialogue:      s.engine.Snapshot(),
	}
	if s.text != nil {
		v.Revealed = s.text.Visible(s.clock.Now())
	}
	if s.scenario != nil {
		v.ScenarioID = s.scenario.ID
		v.Customer = s.scenario.CustomerName
		v.Requested = itemNames(s.scenario.RequestedItems)
	}
	if s.engine.State() == dialogue.StateAwaitingAction {
		v.AwaitingScan = s.scanPrefab
		v.Authorization = s.engine.Access().Authorization().Status()
	}
	return v
}
