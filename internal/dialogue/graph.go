// Package dialogue implements the branching conversation engine for one
// customer scenario at a time.
//
// Lines are authored out of order, so every reference (response target,
// go-back target, return stack entry) is an editorIndex resolved through the
// graph index. The engine is single-threaded: callers serialize events.
package dialogue

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateEditorIndex is returned when two lines share an editorIndex.
	ErrDuplicateEditorIndex = errors.New("dialogue: duplicate editor index")
	// ErrLineNotFound is returned when an editorIndex does not resolve.
	ErrLineNotFound = errors.New("dialogue: line not found")
	// ErrEmptyScenario is returned for a scenario without lines.
	ErrEmptyScenario = errors.New("dialogue: scenario has no lines")
)

// Graph indexes a scenario's lines by editorIndex.
type Graph struct {
	Lines    []Line
	position map[int]int // editorIndex -> storage position
}

// NewGraph indexes lines and rejects duplicate editor indices.
func NewGraph(lines []Line) (*Graph, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyScenario
	}
	g := &Graph{
		Lines:    lines,
		position: make(map[int]int, len(lines)),
	}
	for pos, line := range lines {
		if prev, exists := g.position[line.EditorIndex]; exists {
			return nil, fmt.Errorf("%w: %d at positions %d and %d", ErrDuplicateEditorIndex, line.EditorIndex, prev, pos)
		}
		g.position[line.EditorIndex] = pos
	}
	return g, nil
}

// Position resolves an editorIndex to its storage position.
func (g *Graph) Position(editorIndex int) (int, bool) {
	pos, ok := g.position[editorIndex]
	return pos, ok
}

// Line returns the line with the given editorIndex, or nil.
func (g *Graph) Line(editorIndex int) *Line {
	pos, ok := g.position[editorIndex]
	if !ok {
		return nil
	}
	return &g.Lines[pos]
}

// Lint reports references that do not resolve. They are not fatal: the
// engine falls back at runtime, but authors should see them at load time.
func (g *Graph) Lint() []error {
	var problems []error
	for _, line := range g.Lines {
		if line.ShowGoBack {
			if _, ok := g.position[line.GoBackTarget]; !ok {
				problems = append(problems, fmt.Errorf("%w: line %d go-back target %d", ErrLineNotFound, line.EditorIndex, line.GoBackTarget))
			}
		}
		for i, r := range line.Responses {
			if r.Next < 0 {
				continue
			}
			if _, ok := g.position[r.Next]; !ok {
				problems = append(problems, fmt.Errorf("%w: line %d response %d target %d", ErrLineNotFound, line.EditorIndex, i, r.Next))
			}
		}
	}
	return problems
}
