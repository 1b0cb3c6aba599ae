// Package access models what a kiosk operator is allowed to see on a scanned
// identity card.
//
// Grants are monotonic within a scenario: once a field has been granted it
// stays visible until Reset is called at the next scenario boundary.
package access

import (
	"fmt"
	"strings"
)

// Field identifies one disclosable attribute of an identity card.
type Field uint8

const (
	FieldName Field = 1 << iota
	FieldDOB
	FieldAddress
	FieldIssuer
	FieldPicture
)

// AllFields lists every field in display order.
var AllFields = []Field{FieldName, FieldDOB, FieldAddress, FieldIssuer, FieldPicture}

// DeniedText is shown in place of a field the operator may not see.
const DeniedText = "[Access Denied]"

func (f Field) String() string {
	switch f {
	case FieldName:
		return "name"
	case FieldDOB:
		return "dob"
	case FieldAddress:
		return "address"
	case FieldIssuer:
		return "issuer"
	case FieldPicture:
		return "picture"
	}
	return fmt.Sprintf("field(%d)", uint8(f))
}

// ParseField maps an authoring name ("name", "dob", ...) to a Field.
func ParseField(s string) (Field, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "name":
		return FieldName, true
	case "dob", "dateofbirth", "date_of_birth":
		return FieldDOB, true
	case "address":
		return FieldAddress, true
	case "issuer":
		return FieldIssuer, true
	case "picture", "photo", "image":
		return FieldPicture, true
	}
	return 0, false
}

// Grants is a bitset of visible fields.
type Grants uint8

// Has reports whether every bit of f is set.
func (g Grants) Has(f Field) bool { return g&Grants(f) == Grants(f) }

// With returns g with f set.
func (g Grants) With(f Field) Grants { return g | Grants(f) }

// Fields expands the bitset in display order.
func (g Grants) Fields() []Field {
	var out []Field
	for _, f := range AllFields {
		if g.Has(f) {
			out = append(out, f)
		}
	}
	return out
}

// GrantsOf builds a bitset from individual fields.
func GrantsOf(fields ...Field) Grants {
	var g Grants
	for _, f := range fields {
		g = g.With(f)
	}
	return g
}

// Identity is the data printed on a card together with the fields the card
// itself discloses without any dialogue grant.
type Identity struct {
	Name       string `json:"name"`
	DOB        string `json:"dob"`
	Address    string `json:"address"`
	Issuer     string `json:"issuer"`
	PictureRef string `json:"picture,omitempty"`

	Allow Grants `json:"allow"`

	// RequiresAuthorization marks owner/authorization cards that run the
	// verification sub-flow after being scanned.
	RequiresAuthorization bool `json:"requires_authorization,omitempty"`
}

// View is the operator-facing rendering of a scanned identity.
type View struct {
	Name       string `json:"name"`
	DOB        string `json:"dob"`
	Address    string `json:"address"`
	Issuer     string `json:"issuer"`
	PictureRef string `json:"picture,omitempty"`
	Status     string `json:"status,omitempty"`
}

// Model holds the grant state for the current scenario.
type Model struct {
	grants   Grants
	identity *Identity
	auth     Authorization
}

// NewModel returns an empty model.
func NewModel() *Model {
	return &Model{}
}

// Grant makes f visible. It returns true only when the visible set changed.
func (m *Model) Grant(f Field) bool {
	before := m.effective()
	m.grants = m.grants.With(f)
	return m.effective() != before
}

// GrantAll applies every field in g and reports whether visibility changed.
func (m *Model) GrantAll(g Grants) bool {
	changed := false
	for _, f := range g.Fields() {
		if m.Grant(f) {
			changed = true
		}
	}
	return changed
}

// IsVisible reports whether f is currently visible. Nothing is visible until an
// identity has been scanned.
func (m *Model) IsVisible(f Field) bool {
	if m.identity == nil {
		return false
	}
	return m.effective().Has(f)
}

// Visible returns the visible fields in display order.
func (m *Model) Visible() []Field {
	if m.identity == nil {
		return nil
	}
	return m.effective().Fields()
}

func (m *Model) effective() Grants {
	if m.identity == nil {
		return m.grants
	}
	return m.grants | m.identity.Allow
}

// Install records a scanned identity. Grants accumulated before the scan
// carry over, and so do the fields a previously scanned card allowed.
func (m *Model) Install(id Identity) {
	if m.identity != nil {
		m.grants |= m.identity.Allow
	}
	cp := id
	m.identity = &cp
	m.auth.Reset()
}

// Identity returns the scanned identity, or nil.
func (m *Model) Identity() *Identity {
	return m.identity
}

// Scanned reports whether an identity has been installed.
func (m *Model) Scanned() bool { return m.identity != nil }

// Authorization exposes the authorization sub-state of the scanned card.
func (m *Model) Authorization() *Authorization { return &m.auth }

// Reset clears grants, identity and any pending authorization. It is only
// called at scenario boundaries.
func (m *Model) Reset() {
	m.grants = 0
	m.identity = nil
	m.auth.Reset()
}

// View renders the identity with denied fields masked.
func (m *Model) View() *View {
	if m.identity == nil {
		return nil
	}
	id := m.identity
	v := &View{
		Name:    DeniedText,
		DOB:     DeniedText,
		Address: DeniedText,
		Issuer:  DeniedText,
	}
	if m.IsVisible(FieldName) {
		v.Name = id.Name
	}
	if m.IsVisible(FieldDOB) {
		v.DOB = id.DOB
	}
	if m.IsVisible(FieldAddress) {
		v.Address = id.Address
	}
	if m.IsVisible(FieldIssuer) {
		v.Issuer = id.Issuer
	}
	if m.IsVisible(FieldPicture) {
		v.PictureRef = id.PictureRef
	}
	if id.RequiresAuthorization {
		v.Status = m.auth.Label()
	}
	return v
}
