package access

import (
	"errors"
	"testing"
)

func TestGrantIsMonotonic(t *testing.T) {
	m := NewModel()
	m.Install(Identity{Name: "Shaun Baker", DOB: "1990-02-11", Address: "12 Pier St", Issuer: "NEU"})

	if m.IsVisible(FieldName) {
		t.Fatalf("name should start hidden")
	}
	if !m.Grant(FieldName) {
		t.Fatalf("first grant should report a change")
	}
	if m.Grant(FieldName) {
		t.Errorf("second grant of the same field should be a no-op")
	}
	for i := 0; i < 5; i++ {
		m.GrantAll(GrantsOf(FieldDOB))
		if !m.IsVisible(FieldName) {
			t.Fatalf("name became hidden after later grants")
		}
	}
	view := m.View()
	if view.Name != "Shaun Baker" || view.DOB != "1990-02-11" {
		t.Errorf("unexpected view %+v", view)
	}
	if view.Address != DeniedText || view.Issuer != DeniedText {
		t.Errorf("address/issuer should be denied, got %+v", view)
	}
}

func TestGrantsBeforeScanApplyOnInstall(t *testing.T) {
	m := NewModel()
	m.Grant(FieldAddress)
	if m.IsVisible(FieldAddress) {
		t.Fatalf("nothing is visible without a scanned identity")
	}
	m.Install(Identity{Address: "1 Main"})
	if !m.IsVisible(FieldAddress) {
		t.Errorf("grant issued before scan should apply after it")
	}
}

func TestCardAllowFlagsAndReset(t *testing.T) {
	m := NewModel()
	m.Install(Identity{Name: "Fridgy", Allow: GrantsOf(FieldName, FieldPicture), PictureRef: "fridgy.png"})
	if got := m.Visible(); len(got) != 2 || got[0] != FieldName || got[1] != FieldPicture {
		t.Fatalf("expected [name picture], got %v", got)
	}
	if m.Grant(FieldName) {
		t.Errorf("granting a field the card already allows should not change visibility")
	}
	m.Reset()
	if m.Scanned() || m.IsVisible(FieldName) {
		t.Errorf("reset should clear identity and grants")
	}
}

func TestSecondCardKeepsEarlierVisibility(t *testing.T) {
	m := NewModel()
	m.Install(Identity{Name: "Fridgy", Issuer: "Kelvinator", Allow: GrantsOf(FieldName, FieldIssuer)})
	m.Install(Identity{Name: "Dana", Issuer: "NEU", Allow: GrantsOf(FieldName)})
	if !m.IsVisible(FieldIssuer) {
		t.Fatal("issuer allowed by the first card must stay visible")
	}
	if v := m.View(); v.Issuer != "NEU" || v.Name != "Dana" {
		t.Errorf("unexpected view %+v", v)
	}
}

func TestParseField(t *testing.T) {
	cases := map[string]Field{"Name": FieldName, "dob": FieldDOB, "ADDRESS": FieldAddress, "issuer": FieldIssuer, "photo": FieldPicture}
	for in, want := range cases {
		got, ok := ParseField(in)
		if !ok || got != want {
			t.Errorf("ParseField(%q) = %v, %v; want %v", in, got, ok, want)
		}
	}
	if _, ok := ParseField("ssn"); ok {
		t.Errorf("unknown field should not parse")
	}
}

func TestAuthorizationFlow(t *testing.T) {
	var a Authorization
	if a.Status() != AuthPending {
		t.Fatalf("expected pending, got %s", a.Status())
	}
	ticket, err := a.Start()
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := a.Start(); !errors.Is(err, ErrAuthInProgress) {
		t.Errorf("second start should be rejected, got %v", err)
	}
	if err := a.Complete(ticket+1, true); !errors.Is(err, ErrStaleTicket) {
		t.Errorf("wrong ticket should be stale, got %v", err)
	}
	if err := a.Complete(ticket, true); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if a.Status() != AuthAuthorized || a.Label() != "Authorized" {
		t.Errorf("expected authorized, got %s", a.Status())
	}
	if _, err := a.Start(); !errors.Is(err, ErrAuthFinished) {
		t.Errorf("start after authorization should fail, got %v", err)
	}
}

func TestAuthorizationAbortDiscardsCompletion(t *testing.T) {
	var a Authorization
	ticket, _ := a.Start()
	a.Abort()
	if err := a.Complete(ticket, true); !errors.Is(err, ErrStaleTicket) {
		t.Fatalf("completion after abort should be stale, got %v", err)
	}
	if a.Status() != AuthPending {
		t.Errorf("abort should return to pending, got %s", a.Status())
	}
}
