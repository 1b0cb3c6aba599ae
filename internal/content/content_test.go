package content

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"testing/fstest"

	"ProjectKiosk/internal/access"
	"ProjectKiosk/internal/dialogue"
	"ProjectKiosk/internal/scenario"
)

func TestLegacyNormalize(t *testing.T) {
	data := []byte(`{
		"customerName": "Bob",
		"idPrefabPath": "ID_Prefabs/StandardID",
		"idName": "Bob B.",
		"idAllowNameAccess": true,
		"requestedItems": [4, "Chicken_Jerky"],
		"lines": [
			{"editorIndex": 5, "text": "hi", "grantDOBAccess": true, "grantPictureAccess": true,
			 "responses": [{"responseText": "a"}, {"responseText": "b", "nextLineIndex": 7, "scoreValue": 3}]},
			{"editorIndex": 7, "text": "bye", "endConversationHere": true, "scoreScreenIndex": 2,
			 "showBusinessCard": false, "businessCardImagePath": "Cards/X", "waitForCardDismissal": true}
		]
	}`)
	rec, err := DecodeRecord("bob", "bob.json", data)
	if err != nil {
		t.Fatalf("DecodeRecord: %v", err)
	}
	if rec.Format != FormatLegacyJSON || rec.Legacy == nil {
		t.Fatalf("unexpected record %+v", rec)
	}
	s, err := rec.Normalize()
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if s.ID != "bob" || s.CustomerName != "Bob" || s.Identity == nil || s.Identity.Name != "Bob B." {
		t.Errorf("unexpected scenario header %+v", s)
	}
	if !s.Identity.Allow.Has(access.FieldName) || s.Identity.Allow.Has(access.FieldDOB) {
		t.Errorf("unexpected card grants %v", s.Identity.Allow.Fields())
	}
	if len(s.RequestedItems) != 2 || s.RequestedItems[0] != dialogue.ItemSodaCan || s.RequestedItems[1] != dialogue.ItemChickenJerky {
		t.Errorf("unexpected requested items %v", s.RequestedItems)
	}
	first := s.Lines[0]
	if first.Grants != access.GrantsOf(access.FieldDOB, access.FieldPicture) {
		t.Errorf("unexpected line grants %v", first.Grants.Fields())
	}
	if first.Responses[0].Next != dialogue.NextSequential || first.Responses[1].Next != 7 || first.Responses[1].Score != 3 {
		t.Errorf("unexpected responses %+v", first.Responses)
	}
	last := s.Lines[1]
	if !last.EndConversation || last.ScoreScreen != 2 {
		t.Errorf("unexpected end line %+v", last)
	}
	if last.Hints.BusinessCard != "" || last.Hints.WaitForCardDismissal {
		t.Errorf("hidden card must not block: %+v", last.Hints)
	}
}

func TestLegacyRejectsBadItems(t *testing.T) {
	for _, body := range []string{
		`{"requestedItems": [17], "lines": [{"editorIndex": 0}]}`,
		`{"requestedItems": ["Caviar"], "lines": [{"editorIndex": 0}]}`,
	} {
		if _, err := DecodeRecord("x", "x.json", []byte(body)); err == nil {
			t.Errorf("expected error for %s", body)
		}
	}
}

func TestAuthoredNormalize(t *testing.T) {
	data := []byte(`
customer: Alice
card: {prefab: ID_Prefabs/StandardID, name: Alice Smith, allow: [name, dob]}
cards:
  ID_Prefabs/OwnerID: {name: Owner, authorization: true}
requested: [SodaCan]
lines:
  - index: 0
    text: hi
    grant: [address]
    goBack: 0
    when: score > 5
    responses:
      - {text: a}
      - {text: b, next: 1, returnAfter: true, activateContinue: true, sale: true, score: 4}
  - index: 1
    text: bye
    end: true
    hints: {card: Cards/A, waitForCard: true, duration: 2, voice: VO/1}
`)
	rec, err := DecodeRecord("alice", "alice.yaml", data)
	if err != nil {
		t.Fatalf("DecodeRecord: %v", err)
	}
	s, err := rec.Normalize()
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if s.IDPrefab != "ID_Prefabs/StandardID" || s.Identity.Allow != access.GrantsOf(access.FieldName, access.FieldDOB) {
		t.Errorf("unexpected card %+v", s.Identity)
	}
	owner, ok := s.CardFor("ID_Prefabs/OwnerID")
	if !ok || !owner.RequiresAuthorization {
		t.Errorf("expected owner authorization card, got %+v %v", owner, ok)
	}
	if own, ok := s.CardFor(""); !ok || own.Name != "Alice Smith" {
		t.Errorf("CardFor(\"\") = %+v, %v", own, ok)
	}
	l0 := s.Lines[0]
	if !l0.ShowGoBack || l0.GoBackTarget != 0 || l0.Condition != "score > 5" || !l0.Grants.Has(access.FieldAddress) {
		t.Errorf("unexpected line 0 %+v", l0)
	}
	r := l0.Responses[1]
	if r.Next != 1 || !r.ReturnAfter || !r.ActivateContinue || !r.IsSale || r.Score != 4 {
		t.Errorf("unexpected response %+v", r)
	}
	if l0.Responses[0].Next != dialogue.NextSequential {
		t.Errorf("omitted next should be sequential, got %d", l0.Responses[0].Next)
	}
	h := s.Lines[1].Hints
	if h.BusinessCard != "Cards/A" || !h.WaitForCardDismissal || h.DisplayDuration != 2 || h.VoiceOver != "VO/1" {
		t.Errorf("unexpected hints %+v", h)
	}
}

func TestNormalizeValidates(t *testing.T) {
	tests := map[string]string{
		"duplicate index": "lines: [{index: 1}, {index: 1}]",
		"empty":           "customer: nobody",
		"bad condition":   "lines: [{index: 0, when: 'score >'}]",
		"bad field":       "lines: [{index: 0, grant: [shoe_size]}]",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			rec, err := DecodeRecord("x", "x.yaml", []byte(body))
			if err != nil {
				return
			}
			if _, err := rec.Normalize(); err == nil {
				t.Errorf("expected Normalize to fail")
			}
		})
	}
	if _, err := DecodeRecord("x", "x.txt", nil); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("expected ErrUnknownFormat, got %v", err)
	}
}

func TestFileStore(t *testing.T) {
	fsys := fstest.MapFS{
		"a.json":      {Data: []byte(`{"customerName": "A", "lines": [{"editorIndex": 0}]}`)},
		"sub/b.yaml":  {Data: []byte("customer: B\nlines: [{index: 0}]\n")},
		"notes.txt":   {Data: []byte("ignore me")},
		"broken.json": {Data: []byte("{")},
	}
	store := NewFileStore(fsys)
	ctx := context.Background()

	a, err := store.Load(ctx, "a")
	if err != nil || a.CustomerName != "A" {
		t.Fatalf("Load(a) = %+v, %v", a, err)
	}
	b, err := store.Load(ctx, "sub/b")
	if err != nil || b.CustomerName != "B" {
		t.Fatalf("Load(sub/b) = %+v, %v", b, err)
	}
	if _, err := store.Load(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := store.Load(ctx, "../etc/passwd"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for escaping path, got %v", err)
	}
	if _, err := store.Load(ctx, "broken"); err == nil || errors.Is(err, ErrNotFound) {
		t.Errorf("expected decode error, got %v", err)
	}
	ids, err := store.IDs()
	if err != nil {
		t.Fatalf("IDs: %v", err)
	}
	if len(ids) != 3 || ids[0] != "a" || ids[1] != "broken" || ids[2] != "sub/b" {
		t.Errorf("IDs = %v", ids)
	}
}

// TestSeedContent checks that every shipped scenario and every playlist and
// police reference loads.
func TestSeedContent(t *testing.T) {
	store := Seed()
	ids, err := store.IDs()
	if err != nil {
		t.Fatalf("IDs: %v", err)
	}
	ctx := context.Background()
	for _, id := range ids {
		if _, err := store.Load(ctx, id); err != nil {
			t.Errorf("seed %s: %v", id, err)
		}
	}
	cfg, err := scenario.ParseConfig(SeedPlaylist())
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	if len(cfg.Scenarios) == 0 {
		t.Fatal("seed playlist is empty")
	}
	for _, e := range cfg.Scenarios {
		if _, err := store.Load(ctx, e.Filename); err != nil {
			t.Errorf("playlist entry %s: %v", e.Filename, err)
		}
		if e.FollowUp != "" {
			if _, err := store.Load(ctx, e.FollowUp); err != nil {
				t.Errorf("follow-up %s: %v", e.FollowUp, err)
			}
		}
	}
	for _, id := range []string{"PoliceWarningScenario", "PoliceArrestScenario"} {
		if _, err := store.Load(ctx, id); err != nil {
			t.Errorf("police scenario %s: %v", id, err)
		}
	}
}

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "content", "kiosk.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStore(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	if _, err := s.Load(ctx, "a"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.Put(ctx, "a", FormatYAML, []byte("customer: A\nlines: [{index: 0}]\n")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Put(ctx, "a", FormatYAML, []byte("customer: A2\nlines: [{index: 0}]\n")); err != nil {
		t.Fatalf("Put replace: %v", err)
	}
	got, err := s.Load(ctx, "a")
	if err != nil || got.CustomerName != "A2" {
		t.Fatalf("Load = %+v, %v", got, err)
	}
	if err := s.Put(ctx, "bad", FormatYAML, []byte("lines: [{index: 0}, {index: 0}]")); err == nil {
		t.Error("invalid scenario should not be stored")
	}
	if err := s.Delete(ctx, "a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	ids, err := s.IDs(ctx)
	if err != nil || len(ids) != 0 {
		t.Errorf("IDs after delete = %v, %v", ids, err)
	}
}

func TestSQLiteImportSeedAndChain(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()
	n, errs := s.Import(ctx, Seed())
	if len(errs) != 0 {
		t.Fatalf("Import errors: %v", errs)
	}
	ids, err := s.IDs(ctx)
	if err != nil || len(ids) != n || n == 0 {
		t.Fatalf("IDs = %v (imported %d), %v", ids, n, err)
	}

	if err := s.Put(ctx, "Override", FormatYAML, []byte("customer: DB\nlines: [{index: 0}]\n")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	chain := Chain{s, Seed()}
	if sc, err := chain.Load(ctx, "Override"); err != nil || sc.CustomerName != "DB" {
		t.Errorf("chain Load(Override) = %+v, %v", sc, err)
	}
	if _, err := chain.Load(ctx, "Fridgy"); err != nil {
		t.Errorf("chain Load(Fridgy): %v", err)
	}
	if _, err := chain.Load(ctx, "Nobody"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
