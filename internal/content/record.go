// Package content loads scenario records from disk, embedded seed data or a
// SQLite content database, and normalizes both authoring formats into
// dialogue.Scenario values.
package content

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"ProjectKiosk/internal/dialogue"
)

// Format names an authoring format.
type Format string

const (
	// FormatLegacyJSON is the flat editor export.
	FormatLegacyJSON Format = "legacy-json"
	// FormatYAML is the hand-written format.
	FormatYAML Format = "yaml"
)

var (
	// ErrNotFound is returned when no record exists for an id.
	ErrNotFound = errors.New("content: scenario not found")
	// ErrUnknownFormat is returned for files that are neither JSON nor YAML.
	ErrUnknownFormat = errors.New("content: unknown scenario format")
)

// FormatFor picks a format from a file name.
func FormatFor(name string) (Format, error) {
	switch strings.ToLower(path.Ext(name)) {
	case ".json":
		return FormatLegacyJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownFormat, name)
}

// Record is one decoded scenario document. Exactly one of Legacy and Authored
// is set, matching Format.
type Record struct {
	ID       string
	Format   Format
	Legacy   *LegacyScenario
	Authored *AuthoredScenario
}

// Decode parses data in the given format.
func Decode(id string, format Format, data []byte) (Record, error) {
	r := Record{ID: id, Format: format}
	var err error
	switch format {
	case FormatLegacyJSON:
		r.Legacy, err = decodeLegacy(data)
	case FormatYAML:
		r.Authored, err = decodeAuthored(data)
	default:
		return Record{}, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err != nil {
		return Record{}, fmt.Errorf("decode %s (%s): %w", id, format, err)
	}
	return r, nil
}

// DecodeRecord parses data, choosing the format from name.
func DecodeRecord(id, name string, data []byte) (Record, error) {
	format, err := FormatFor(name)
	if err != nil {
		return Record{}, err
	}
	return Decode(id, format, data)
}

// Normalize converts the record to the engine's model and validates it: line
// indices must be unique and every condition must compile. Dangling targets
// are left for the engine to report.
func (r Record) Normalize() (*dialogue.Scenario, error) {
	var (
		s   *dialogue.Scenario
		err error
	)
	switch {
	case r.Legacy != nil:
		s = r.Legacy.scenario(r.ID)
	case r.Authored != nil:
		s, err = r.Authored.scenario(r.ID)
	default:
		return nil, fmt.Errorf("%w: empty record %s", ErrUnknownFormat, r.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", r.ID, err)
	}
	if err := Validate(s); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks what the engine would reject at Start, plus condition
// syntax, so broken content fails at load time.
func Validate(s *dialogue.Scenario) error {
	if _, err := dialogue.NewGraph(s.Lines); err != nil {
		return fmt.Errorf("scenario %s: %w", s.ID, err)
	}
	conds := dialogue.NewConditions()
	for _, l := range s.Lines {
		if err := conds.Compile(l.Condition); err != nil {
			return fmt.Errorf("scenario %s line %d: %w", s.ID, l.EditorIndex, err)
		}
		for i, r := range l.Responses {
			if err := conds.Compile(r.Condition); err != nil {
				return fmt.Errorf("scenario %s line %d response %d: %w", s.ID, l.EditorIndex, i, err)
			}
		}
	}
	return nil
}
