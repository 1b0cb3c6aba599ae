package kiosk

import (
	"ProjectKiosk/internal/access"
	"ProjectKiosk/internal/dialogue"
	"ProjectKiosk/internal/inbox"
)

// OutboundMessage packages queued client events.
type OutboundMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Outbound message types.
const (
	MsgCustomer      = "customer"
	MsgLine          = "line"
	MsgReveal        = "reveal"
	MsgChoices       = "choices"
	MsgContinue      = "continue"
	MsgGoBack        = "go_back"
	MsgAccessPanel   = "access_panel"
	MsgScanRequest   = "scan_request"
	MsgAuthorization = "authorization"
	MsgBusinessCard  = "business_card"
	MsgAudio         = "audio"
	MsgNotice        = "notice"
	MsgScoreScreen   = "score_screen"
	MsgScenarioEnded = "scenario_ended"
	MsgScore         = "score"
	MsgInbox         = "inbox"
	MsgCheckout      = "checkout"
	MsgAllServed     = "all_served"
)

// CustomerMsg announces a new scenario.
type CustomerMsg struct {
	ScenarioID string   `json:"scenario_id"`
	Name       string   `json:"name"`
	NPCPrefab  string   `json:"npc_prefab,omitempty"`
	Requested  []string `json:"requested"`
	Served     int      `json:"served"`
	Remaining  int      `json:"remaining"`
	Total      int      `json:"total"`
}

// RevealMsg reports typewriter progress for the current line.
type RevealMsg struct {
	EditorIndex int     `json:"editor_index"`
	Done        bool    `json:"done"`
	Seconds     float64 `json:"seconds,omitempty"`
}

// EnabledMsg toggles a button.
type EnabledMsg struct {
	Enabled bool `json:"enabled"`
}

// ChoicesMsg lists the visible responses. Empty hides the panel.
type ChoicesMsg struct {
	Choices []dialogue.ChoiceView `json:"choices"`
}

// AccessPanelMsg carries the masked identity view, nil when hidden.
type AccessPanelMsg struct {
	View *access.View `json:"view"`
}

// ScanRequestMsg asks the client to hand over an ID card.
type ScanRequestMsg struct {
	IDPrefab string `json:"id_prefab"`
}

// AuthorizationMsg reports the authorization sub-flow.
type AuthorizationMsg struct {
	Status  access.AuthStatus `json:"status"`
	Seconds float64           `json:"seconds,omitempty"`
}

// BusinessCardMsg shows a card image.
type BusinessCardMsg struct {
	Path string `json:"path"`
	Wait bool   `json:"wait"`
}

// AudioMsg asks the client to play a cue.
type AudioMsg struct {
	Cue dialogue.Cue `json:"cue"`
	Ref string       `json:"ref,omitempty"`
}

// NoticeMsg is a short player-facing text.
type NoticeMsg struct {
	Text string `json:"text"`
}

// ScoreScreenMsg selects the end screen of a scenario.
type ScoreScreenMsg struct {
	ScenarioID string `json:"scenario_id"`
	Index      int    `json:"index"`
}

// ScoreMsg reports the corruption score.
type ScoreMsg struct {
	Score int `json:"score"`
	Max   int `json:"max"`
}

// InboxMsg is the inbox state.
type InboxMsg struct {
	Messages []inbox.Message `json:"messages"`
	Unread   int             `json:"unread"`
	Badge    string          `json:"badge"`
}

// CheckoutMsg is the counter contents.
type CheckoutMsg struct {
	Items []string `json:"items"`
	Total float64  `json:"total"`
}

// AllServedMsg ends the game.
type AllServedMsg struct {
	Served int `json:"served"`
	Score  int `json:"score"`
}

func itemNames(items []dialogue.ItemCategory) []string {
	out := make([]string, len(items))
	for i, c := range items {
		out[i] = string(c)
	}
	return out
}
