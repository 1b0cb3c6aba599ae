package content

import (
	"bytes"
	"encoding/json"
	"fmt"

	"ProjectKiosk/internal/access"
	"ProjectKiosk/internal/dialogue"
)

// legacyItemOrder is the ordinal encoding of item categories used by scenario
// files exported from the desktop editor.
var legacyItemOrder = []dialogue.ItemCategory{
	dialogue.ItemChipsBag,
	dialogue.ItemSproingles,
	dialogue.ItemBoxOfChocolates,
	dialogue.ItemFamilyChips,
	dialogue.ItemSodaCan,
	dialogue.ItemBeerBottle,
	dialogue.ItemHaynakoBeer,
	dialogue.ItemAkiraBeer,
	dialogue.ItemWineBottle,
	dialogue.ItemBluePortCigarettes,
	dialogue.ItemRamboloCigarettes,
	dialogue.ItemHotShotCigarettes,
	dialogue.ItemDirtyMagazine,
	dialogue.ItemNerdComics,
	dialogue.ItemPackage,
	dialogue.ItemChickenJerky,
	dialogue.ItemGiddyBeer,
}

// legacyItem accepts either the ordinal or the category name.
type legacyItem struct {
	category dialogue.ItemCategory
}

func (li *legacyItem) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return err
		}
		c, err := dialogue.ParseItemCategory(name)
		if err != nil {
			return err
		}
		li.category = c
		return nil
	}
	var ord int
	if err := json.Unmarshal(data, &ord); err != nil {
		return fmt.Errorf("item category: %w", err)
	}
	if ord < 0 || ord >= len(legacyItemOrder) {
		return fmt.Errorf("item category ordinal %d out of range", ord)
	}
	li.category = legacyItemOrder[ord]
	return nil
}

type legacyResponse struct {
	ResponseText                string `json:"responseText"`
	NextLineIndex               *int   `json:"nextLineIndex"`
	ReturnAfterResponse         bool   `json:"returnAfterResponse"`
	ActivateContinueAfterChoice bool   `json:"activateContinueAfterChoice"`
	IsMakeSaleResponse          bool   `json:"isMakeSaleResponse"`
	ScoreValue                  int    `json:"scoreValue"`
	Condition                   string `json:"condition"`
}

type legacyLine struct {
	EditorIndex int              `json:"editorIndex"`
	Speaker     string           `json:"speaker"`
	Text        string           `json:"text"`
	Responses   []legacyResponse `json:"responses"`

	AskForID          bool `json:"askForID"`
	ShowGoBackButton  bool `json:"showGoBackButton"`
	GoBackTargetIndex *int `json:"goBackTargetIndex"`

	GrantNameAccess    bool `json:"grantNameAccess"`
	GrantDOBAccess     bool `json:"grantDOBAccess"`
	GrantAddressAccess bool `json:"grantAddressAccess"`
	GrantIssuerAccess  bool `json:"grantIssuerAccess"`
	GrantPictureAccess bool `json:"grantPictureAccess"`

	DisableContinueButton bool `json:"disableContinueButton"`

	IDPrefabToSpawn       string  `json:"idPrefabToSpawn"`
	DisplayDuration       float64 `json:"displayDuration"`
	AutoAdvanceToNext     bool    `json:"autoAdvanceToNext"`
	ShowBusinessCard      bool    `json:"showBusinessCard"`
	BusinessCardImagePath string  `json:"businessCardImagePath"`
	WaitForCardDismissal  bool    `json:"waitForCardDismissal"`
	NPCSprite             string  `json:"npcSprite"`
	VoiceOverPath         string  `json:"voiceOverPath"`

	EndConversationHere bool `json:"endConversationHere"`
	ScoreScreenIndex    int  `json:"scoreScreenIndex"`

	Condition string `json:"condition"`
}

type legacyCard struct {
	Name                  string `json:"idName"`
	DOB                   string `json:"idDOB"`
	Address               string `json:"idAddress"`
	Issuer                string `json:"idIssuer"`
	Picture               string `json:"idPicture"`
	AllowName             bool   `json:"idAllowNameAccess"`
	AllowDOB              bool   `json:"idAllowDOBAccess"`
	AllowAddress          bool   `json:"idAllowAddressAccess"`
	AllowIssuer           bool   `json:"idAllowIssuerAccess"`
	AllowPicture          bool   `json:"idAllowPictureAccess"`
	RequiresAuthorization bool   `json:"isAuthorizationID"`
}

func (c legacyCard) identity() access.Identity {
	var allow access.Grants
	for f, on := range map[access.Field]bool{
		access.FieldName:    c.AllowName,
		access.FieldDOB:     c.AllowDOB,
		access.FieldAddress: c.AllowAddress,
		access.FieldIssuer:  c.AllowIssuer,
		access.FieldPicture: c.AllowPicture,
	} {
		if on {
			allow = allow.With(f)
		}
	}
	return access.Identity{
		Name:                  c.Name,
		DOB:                   c.DOB,
		Address:               c.Address,
		Issuer:                c.Issuer,
		PictureRef:            c.Picture,
		Allow:                 allow,
		RequiresAuthorization: c.RequiresAuthorization,
	}
}

// LegacyScenario is the flat editor export: card data inlined with the
// customer, one boolean per granted field.
type LegacyScenario struct {
	CustomerName string `json:"customerName"`
	NPCPrefab    string `json:"npcPrefabPath"`
	IDPrefab     string `json:"idPrefabPath"`
	legacyCard

	// ExtraCards maps an idPrefabToSpawn path to the card it produces.
	ExtraCards map[string]legacyCard `json:"extraCards"`

	RequestedItems []legacyItem `json:"requestedItems"`
	Lines          []legacyLine `json:"lines"`
}

func decodeLegacy(data []byte) (*LegacyScenario, error) {
	var ls LegacyScenario
	if err := json.Unmarshal(data, &ls); err != nil {
		return nil, err
	}
	return &ls, nil
}

func (ls *LegacyScenario) scenario(id string) *dialogue.Scenario {
	s := &dialogue.Scenario{
		ID:           id,
		CustomerName: ls.CustomerName,
		NPCPrefab:    ls.NPCPrefab,
		IDPrefab:     ls.IDPrefab,
	}
	if ls.Name != "" || ls.IDPrefab != "" {
		card := ls.legacyCard.identity()
		s.Identity = &card
	}
	if len(ls.ExtraCards) > 0 {
		s.Cards = make(map[string]access.Identity, len(ls.ExtraCards))
		for prefab, c := range ls.ExtraCards {
			s.Cards[prefab] = c.identity()
		}
	}
	for _, it := range ls.RequestedItems {
		s.RequestedItems = append(s.RequestedItems, it.category)
	}
	for _, ll := range ls.Lines {
		s.Lines = append(s.Lines, ll.line())
	}
	return s
}

func (ll legacyLine) line() dialogue.Line {
	l := dialogue.Line{
		EditorIndex:     ll.EditorIndex,
		Speaker:         ll.Speaker,
		Text:            ll.Text,
		AskForID:        ll.AskForID,
		ShowGoBack:      ll.ShowGoBackButton,
		GoBackTarget:    -1,
		DisableContinue: ll.DisableContinueButton,
		EndConversation: ll.EndConversationHere,
		ScoreScreen:     ll.ScoreScreenIndex,
		Condition:       ll.Condition,
		Hints: dialogue.Hints{
			IDPrefab:             ll.IDPrefabToSpawn,
			DisplayDuration:      ll.DisplayDuration,
			AutoAdvance:          ll.AutoAdvanceToNext,
			WaitForCardDismissal: ll.WaitForCardDismissal,
			NPCSprite:            ll.NPCSprite,
			VoiceOver:            ll.VoiceOverPath,
		},
	}
	if ll.GoBackTargetIndex != nil {
		l.GoBackTarget = *ll.GoBackTargetIndex
	}
	if ll.ShowBusinessCard {
		l.Hints.BusinessCard = ll.BusinessCardImagePath
	}
	if !ll.ShowBusinessCard || ll.BusinessCardImagePath == "" {
		l.Hints.WaitForCardDismissal = false
	}
	for f, on := range map[access.Field]bool{
		access.FieldName:    ll.GrantNameAccess,
		access.FieldDOB:     ll.GrantDOBAccess,
		access.FieldAddress: ll.GrantAddressAccess,
		access.FieldIssuer:  ll.GrantIssuerAccess,
		access.FieldPicture: ll.GrantPictureAccess,
	} {
		if on {
			l.Grants = l.Grants.With(f)
		}
	}
	for _, lr := range ll.Responses {
		r := dialogue.Response{
			Text:             lr.ResponseText,
			Next:             dialogue.NextSequential,
			ReturnAfter:      lr.ReturnAfterResponse,
			ActivateContinue: lr.ActivateContinueAfterChoice,
			IsSale:           lr.IsMakeSaleResponse,
			Score:            lr.ScoreValue,
			Condition:        lr.Condition,
		}
		if lr.NextLineIndex != nil && *lr.NextLineIndex >= 0 {
			r.Next = *lr.NextLineIndex
		}
		l.Responses = append(l.Responses, r)
	}
	return l
}
