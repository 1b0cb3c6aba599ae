package dialogue

import (
	"ProjectKiosk/internal/access"
)

// NextSequential is the response target meaning "advance to the line stored
// after this one".
const NextSequential = -1

// Response is one player reply offered on a line.
type Response struct {
	Text string `json:"text"`
	// Next is the editorIndex of the target line, or NextSequential.
	Next int `json:"next"`
	// ReturnAfter pushes the current line onto the return stack before the
	// jump so an end marker later resumes here.
	ReturnAfter bool `json:"return_after,omitempty"`
	// ActivateContinue enables Continue on this line once the response has
	// been chosen, alongside the choices.
	ActivateContinue bool `json:"activate_continue,omitempty"`
	// IsSale runs checkout matching before the response is accepted.
	IsSale bool `json:"is_sale,omitempty"`
	// Score is the corruption credited when chosen.
	Score int `json:"score,omitempty"`
	// Condition hides the response while it evaluates false.
	Condition string `json:"condition,omitempty"`
}

// Hints are presentation details the engine sequences but never renders.
type Hints struct {
	IDPrefab             string  `json:"id_prefab,omitempty"`
	DisplayDuration      float64 `json:"display_duration,omitempty"` // seconds before Continue appears
	AutoAdvance          bool    `json:"auto_advance,omitempty"`
	BusinessCard         string  `json:"business_card,omitempty"`
	WaitForCardDismissal bool    `json:"wait_for_card_dismissal,omitempty"`
	NPCSprite            string  `json:"npc_sprite,omitempty"`
	VoiceOver            string  `json:"voice_over,omitempty"`
}

// Line is an addressable node of a scenario. Lines reference each other by
// EditorIndex, never by storage position.
type Line struct {
	EditorIndex int        `json:"editor_index"`
	Speaker     string     `json:"speaker"`
	Text        string     `json:"text"`
	Responses   []Response `json:"responses,omitempty"`

	AskForID        bool          `json:"ask_for_id,omitempty"`
	ShowGoBack      bool          `json:"show_go_back,omitempty"`
	GoBackTarget    int           `json:"go_back_target"`
	Grants          access.Grants `json:"grants,omitempty"`
	DisableContinue bool          `json:"disable_continue,omitempty"`

	EndConversation bool `json:"end_conversation,omitempty"`
	ScoreScreen     int  `json:"score_screen,omitempty"`

	// Condition skips the line while it evaluates false.
	Condition string `json:"condition,omitempty"`

	Hints Hints `json:"hints"`
}

// Scenario is one customer encounter: a line graph plus the sale request and
// the card the customer hands over.
type Scenario struct {
	ID             string           `json:"id"`
	CustomerName   string           `json:"customer_name"`
	NPCPrefab      string           `json:"npc_prefab,omitempty"`
	IDPrefab       string           `json:"id_prefab,omitempty"`
	Identity       *access.Identity `json:"identity,omitempty"`
	RequestedItems []ItemCategory   `json:"requested_items"`
	Lines          []Line           `json:"lines"`

	// Cards are extra identities a line can ask for through Hints.IDPrefab,
	// keyed by prefab path.
	Cards map[string]access.Identity `json:"cards,omitempty"`
}

// CardFor returns the identity handed over when a line requests prefab. An
// empty prefab or the scenario's own prefab yields the customer's card.
func (s *Scenario) CardFor(prefab string) (access.Identity, bool) {
	if prefab == "" || prefab == s.IDPrefab {
		if s.Identity == nil {
			return access.Identity{}, false
		}
		return *s.Identity, true
	}
	id, ok := s.Cards[prefab]
	return id, ok
}
