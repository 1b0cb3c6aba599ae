package dialogue

import (
	"encoding/json"
	"sort"
)

// State is the engine's position in a scenario's lifecycle.
type State string

const (
	// StateNotStarted means no scenario is loaded.
	StateNotStarted State = "not_started"
	// StateInLine means a line without choices is shown and awaits Continue.
	StateInLine State = "in_line"
	// StateAwaitingAction means the line asked for an ID scan (and possibly
	// its authorization) before the dialogue may proceed.
	StateAwaitingAction State = "awaiting_action"
	// StateAwaitingChoice means responses are shown.
	StateAwaitingChoice State = "awaiting_choice"
	// StateEnded means the scenario is over.
	StateEnded State = "ended"
)

// Memory records which responses were chosen on each line during the current
// scenario run, so revisited lines can mark them as already answered.
type Memory struct {
	chosen map[int]map[int]bool // editorIndex -> response index set
}

// NewMemory creates an empty memory.
func NewMemory() *Memory {
	return &Memory{chosen: make(map[int]map[int]bool)}
}

// Mark records response i on line editorIndex.
func (m *Memory) Mark(editorIndex, i int) {
	set := m.chosen[editorIndex]
	if set == nil {
		set = make(map[int]bool)
		m.chosen[editorIndex] = set
	}
	set[i] = true
}

// Chosen reports whether response i on line editorIndex was chosen before.
func (m *Memory) Chosen(editorIndex, i int) bool {
	return m.chosen[editorIndex][i]
}

// ChosenOn returns the chosen response indices of a line, ascending.
func (m *Memory) ChosenOn(editorIndex int) []int {
	set := m.chosen[editorIndex]
	out := make([]int, 0, len(set))
	for i := range set {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// Clear forgets everything; called when a scenario begins.
func (m *Memory) Clear() {
	m.chosen = make(map[int]map[int]bool)
}

// ReturnStack holds the editorIndex of lines suspended by a detour.
type ReturnStack struct {
	items []int
}

// Push suspends a line.
func (s *ReturnStack) Push(editorIndex int) { s.items = append(s.items, editorIndex) }

// Pop resumes the most recently suspended line.
func (s *ReturnStack) Pop() (int, bool) {
	if len(s.items) == 0 {
		return 0, false
	}
	top := s.items[len(s.items)-1]
	s.items = s.items[:len(s.items)-1]
	return top, true
}

// Len returns the stack depth.
func (s *ReturnStack) Len() int { return len(s.items) }

// Items returns a copy, bottom first.
func (s *ReturnStack) Items() []int { return append([]int(nil), s.items...) }

// Clear empties the stack.
func (s *ReturnStack) Clear() { s.items = nil }

// Snapshot is a serializable view of the engine's conversation state.
type Snapshot struct {
	ScenarioID  string        `json:"scenario_id,omitempty"`
	State       State         `json:"state"`
	EditorIndex *int          `json:"editor_index,omitempty"`
	Chosen      map[int][]int `json:"chosen,omitempty"`
	ReturnStack []int         `json:"return_stack,omitempty"`
}

// JSON encodes the snapshot.
func (s Snapshot) JSON() ([]byte, error) {
	return json.Marshal(s)
}

// LoadSnapshot decodes a snapshot produced by Snapshot.JSON.
func LoadSnapshot(data []byte) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return Snapshot{}, err
	}
	return s, nil
}
