package content

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"ProjectKiosk/internal/access"
	"ProjectKiosk/internal/dialogue"
)

// AuthoredScenario is the hand-written YAML format. Field grants are lists of
// names and an omitted response target means "next line".
//
//	customer: Alice
//	card: {prefab: ID_Prefabs/StandardID, name: Alice Smith, allow: [name]}
//	requested: [SodaCan, SodaCan]
//	lines:
//	  - index: 0
//	    speaker: Alice
//	    text: Two sodas please.
//	    responses:
//	      - {text: Here you go., sale: true, next: 4}
type AuthoredScenario struct {
	Customer  string                  `yaml:"customer"`
	NPC       string                  `yaml:"npc"`
	Card      *authoredCard           `yaml:"card"`
	Cards     map[string]authoredCard `yaml:"cards"`
	Requested []string                `yaml:"requested"`
	Lines     []authoredLine          `yaml:"lines"`
}

type authoredCard struct {
	Prefab        string   `yaml:"prefab"`
	Name          string   `yaml:"name"`
	DOB           string   `yaml:"dob"`
	Address       string   `yaml:"address"`
	Issuer        string   `yaml:"issuer"`
	Picture       string   `yaml:"picture"`
	Allow         []string `yaml:"allow"`
	Authorization bool     `yaml:"authorization"`
}

type authoredHints struct {
	IDPrefab    string  `yaml:"idPrefab"`
	Duration    float64 `yaml:"duration"`
	AutoAdvance bool    `yaml:"autoAdvance"`
	Card        string  `yaml:"card"`
	WaitForCard bool    `yaml:"waitForCard"`
	Sprite      string  `yaml:"sprite"`
	Voice       string  `yaml:"voice"`
}

type authoredResponse struct {
	Text             string `yaml:"text"`
	Next             *int   `yaml:"next"`
	ReturnAfter      bool   `yaml:"returnAfter"`
	ActivateContinue bool   `yaml:"activateContinue"`
	Sale             bool   `yaml:"sale"`
	Score            int    `yaml:"score"`
	When             string `yaml:"when"`
}

type authoredLine struct {
	Index           int                `yaml:"index"`
	Speaker         string             `yaml:"speaker"`
	Text            string             `yaml:"text"`
	Responses       []authoredResponse `yaml:"responses"`
	AskForID        bool               `yaml:"askForId"`
	GoBack          *int               `yaml:"goBack"`
	Grant           []string           `yaml:"grant"`
	DisableContinue bool               `yaml:"disableContinue"`
	End             bool               `yaml:"end"`
	ScoreScreen     int                `yaml:"scoreScreen"`
	When            string             `yaml:"when"`
	Hints           authoredHints      `yaml:"hints"`
}

func decodeAuthored(data []byte) (*AuthoredScenario, error) {
	var as AuthoredScenario
	if err := yaml.Unmarshal(data, &as); err != nil {
		return nil, err
	}
	return &as, nil
}

func parseGrants(names []string) (access.Grants, error) {
	var g access.Grants
	for _, n := range names {
		f, ok := access.ParseField(n)
		if !ok {
			return 0, fmt.Errorf("unknown access field %q", n)
		}
		g = g.With(f)
	}
	return g, nil
}

func (c authoredCard) identity() (access.Identity, error) {
	allow, err := parseGrants(c.Allow)
	if err != nil {
		return access.Identity{}, err
	}
	return access.Identity{
		Name:                  c.Name,
		DOB:                   c.DOB,
		Address:               c.Address,
		Issuer:                c.Issuer,
		PictureRef:            c.Picture,
		Allow:                 allow,
		RequiresAuthorization: c.Authorization,
	}, nil
}

func (as *AuthoredScenario) scenario(id string) (*dialogue.Scenario, error) {
	s := &dialogue.Scenario{
		ID:           id,
		CustomerName: as.Customer,
		NPCPrefab:    as.NPC,
	}
	if as.Card != nil {
		card, err := as.Card.identity()
		if err != nil {
			return nil, fmt.Errorf("card: %w", err)
		}
		s.IDPrefab = as.Card.Prefab
		s.Identity = &card
	}
	if len(as.Cards) > 0 {
		s.Cards = make(map[string]access.Identity, len(as.Cards))
		for prefab, c := range as.Cards {
			card, err := c.identity()
			if err != nil {
				return nil, fmt.Errorf("card %s: %w", prefab, err)
			}
			s.Cards[prefab] = card
		}
	}
	for _, name := range as.Requested {
		c, err := dialogue.ParseItemCategory(name)
		if err != nil {
			return nil, err
		}
		s.RequestedItems = append(s.RequestedItems, c)
	}
	for _, al := range as.Lines {
		l, err := al.line()
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", al.Index, err)
		}
		s.Lines = append(s.Lines, l)
	}
	return s, nil
}

func (al authoredLine) line() (dialogue.Line, error) {
	grants, err := parseGrants(al.Grant)
	if err != nil {
		return dialogue.Line{}, err
	}
	l := dialogue.Line{
		EditorIndex:     al.Index,
		Speaker:         al.Speaker,
		Text:            al.Text,
		AskForID:        al.AskForID,
		GoBackTarget:    -1,
		Grants:          grants,
		DisableContinue: al.DisableContinue,
		EndConversation: al.End,
		ScoreScreen:     al.ScoreScreen,
		Condition:       al.When,
		Hints: dialogue.Hints{
			IDPrefab:             al.Hints.IDPrefab,
			DisplayDuration:      al.Hints.Duration,
			AutoAdvance:          al.Hints.AutoAdvance,
			BusinessCard:         al.Hints.Card,
			WaitForCardDismissal: al.Hints.WaitForCard && al.Hints.Card != "",
			NPCSprite:            al.Hints.Sprite,
			VoiceOver:            al.Hints.Voice,
		},
	}
	if al.GoBack != nil {
		l.ShowGoBack = true
		l.GoBackTarget = *al.GoBack
	}
	for _, ar := range al.Responses {
		r := dialogue.Response{
			Text:             ar.Text,
			Next:             dialogue.NextSequential,
			ReturnAfter:      ar.ReturnAfter,
			ActivateContinue: ar.ActivateContinue,
			IsSale:           ar.Sale,
			Score:            ar.Score,
			Condition:        ar.When,
		}
		if ar.Next != nil && *ar.Next >= 0 {
			r.Next = *ar.Next
		}
		l.Responses = append(l.Responses, r)
	}
	return l, nil
}
