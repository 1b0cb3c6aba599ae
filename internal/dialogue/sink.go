package dialogue

import (
	"ProjectKiosk/internal/access"
)

// Cue names an audio cue the presentation layer should play.
type Cue string

const (
	CueSaleSuccess  Cue = "sale_success"
	CueSaleRejected Cue = "sale_rejected"
	CueIDScanned    Cue = "id_scanned"
	CueAuthorized   Cue = "authorized"
	CueVoiceOver    Cue = "voice_over"
)

// LineView is the presentation data for the current line.
type LineView struct {
	ScenarioID  string `json:"scenario_id"`
	EditorIndex int    `json:"editor_index"`
	Speaker     string `json:"speaker"`
	Text        string `json:"text"`
	Hints       Hints  `json:"hints"`
}

// ChoiceView is one rendered response. Index is the response's position on
// its line and is what ChooseResponse expects back.
type ChoiceView struct {
	Index  int    `json:"index"`
	Text   string `json:"text"`
	Chosen bool   `json:"chosen"` // picked earlier this scenario; still clickable
}

// Sink receives fire-and-forget presentation events. Implementations must not
// call back into the engine synchronously; completions (holds, authorization,
// card dismissal) arrive later as separate engine calls.
type Sink interface {
	ShowLine(v LineView)
	ShowChoices(choices []ChoiceView) // empty hides the choice panel
	ShowContinue(enabled bool)
	ShowGoBack(enabled bool)
	ShowAccessPanel(v *access.View) // nil hides the panel
	RequestIdentityScan(idPrefab string)
	AuthorizationStarted(t access.Ticket)
	AuthorizationCompleted()
	HoldLine(t HoldTicket, seconds float64)
	ShowBusinessCard(path string)
	ShowScoreScreen(index int)
	PlayAudioCue(c Cue, ref string)
	Notice(text string)
	ScenarioEnded(scenarioID string, scoreScreen int)
}

// NoOpSink discards every event.
type NoOpSink struct{}

func (NoOpSink) ShowLine(v LineView)                    {}
func (NoOpSink) ShowChoices(choices []ChoiceView)       {}
func (NoOpSink) ShowContinue(enabled bool)              {}
func (NoOpSink) ShowGoBack(enabled bool)                {}
func (NoOpSink) ShowAccessPanel(v *access.View)         {}
func (NoOpSink) RequestIdentityScan(idPrefab string)    {}
func (NoOpSink) AuthorizationStarted(t access.Ticket)   {}
func (NoOpSink) AuthorizationCompleted()                {}
func (NoOpSink) HoldLine(t HoldTicket, seconds float64) {}
func (NoOpSink) ShowBusinessCard(path string)           {}
func (NoOpSink) ShowScoreScreen(index int)              {}
func (NoOpSink) PlayAudioCue(c Cue, ref string)         {}
func (NoOpSink) Notice(text string)                     {}
func (NoOpSink) ScenarioEnded(id string, screen int)    {}

// Scorer credits corruption points.
type Scorer interface {
	AddScore(points int)
	Score() int
}

// Checkout is the counter the player drags items onto.
type Checkout interface {
	Snapshot() []ItemCategory
	RemoveSold(items []ItemCategory)
}
