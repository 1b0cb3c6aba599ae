package score

import (
	"log"
	"sort"
)

// DefaultMaxScore is the corruption ceiling used when none is configured.
const DefaultMaxScore = 80

// InboxThreshold posts a message to the operator inbox the first time the
// score reaches Threshold.
type InboxThreshold struct {
	Name      string `json:"name"`
	Threshold int    `json:"threshold"`
	Sender    string `json:"sender"`
	Subject   string `json:"subject"`
	Content   string `json:"content"`
	Type      string `json:"type"` // info, warning, alert, critical
}

// PoliceThreshold injects a police scenario the first time the score reaches
// Threshold.
type PoliceThreshold struct {
	Name       string `json:"name"`
	Threshold  int    `json:"threshold"`
	ScenarioID string `json:"scenario"`
}

// Config defines the bounds and thresholds of a score engine.
type Config struct {
	MaxScore int               `json:"maxScore"`
	Inbox    []InboxThreshold  `json:"inbox"`
	Police   []PoliceThreshold `json:"police"`
}

// DefaultConfig mirrors the shipped campaign tuning.
func DefaultConfig() Config {
	return SanitizeConfig(Config{
		MaxScore: DefaultMaxScore,
		Inbox: []InboxThreshold{
			{
				Name:      "Minor Irregularities",
				Threshold: 15,
				Sender:    "NEU Compliance Office",
				Subject:   "Minor Irregularities Detected",
				Content:   "Hello, this is NEU Compliance Office. We've noticed some minor irregularities in your transaction logs. Please ensure all protocols are followed.\n\n- Automated Message",
				Type:      "warning",
			},
			{
				Name:      "Official Warning",
				Threshold: 30,
				Sender:    "NEU Data Protection Agency",
				Subject:   "ATTENTION: Kiosk Flagged for Review",
				Content:   "Your kiosk has been flagged for review. Suspicious activity detected. An officer may visit for routine inspection. Ensure all records are compliant.\n\n- NEU Data Protection Agency",
				Type:      "alert",
			},
			{
				Name:      "Final Warning",
				Threshold: 45,
				Sender:    "Lead Investigator Larry Beige",
				Subject:   "URGENT: Active Investigation",
				Content:   "Multiple violations detected. You are now under active investigation. Any further infractions will result in immediate enforcement action.\n\nThis is your final warning.\n\n- Lead Investigator Larry Beige\nNEU Police Department",
				Type:      "critical",
			},
		},
		Police: []PoliceThreshold{
			{Name: "Police Warning", Threshold: 50, ScenarioID: "PoliceWarningScenario"},
			{Name: "Police Arrest", Threshold: 70, ScenarioID: "PoliceArrestScenario"},
		},
	})
}

// SanitizeConfig fills a missing ceiling, copies the threshold slices and
// sorts them ascending. Out-of-range thresholds are kept but logged; they can
// never fire.
func SanitizeConfig(c Config) Config {
	if !(c.MaxScore > 0) {
		c.MaxScore = DefaultMaxScore
	}
	c.Inbox = append([]InboxThreshold(nil), c.Inbox...)
	c.Police = append([]PoliceThreshold(nil), c.Police...)
	sort.SliceStable(c.Inbox, func(i, j int) bool { return c.Inbox[i].Threshold < c.Inbox[j].Threshold })
	sort.SliceStable(c.Police, func(i, j int) bool { return c.Police[i].Threshold < c.Police[j].Threshold })

	for _, t := range c.Inbox {
		if t.Threshold <= 0 || t.Threshold > c.MaxScore {
			log.Printf("[score] inbox threshold %q has invalid value %d (expected 1-%d)", t.Name, t.Threshold, c.MaxScore)
		}
	}
	for _, t := range c.Police {
		if t.Threshold <= 0 || t.Threshold > c.MaxScore {
			log.Printf("[score] police threshold %q has invalid value %d (expected 1-%d)", t.Name, t.Threshold, c.MaxScore)
		}
		if t.ScenarioID == "" {
			log.Printf("[score] police threshold %q has no scenario", t.Name)
		}
	}
	return c
}
