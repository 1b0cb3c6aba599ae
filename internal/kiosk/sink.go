package kiosk

import (
	"log"

	"ProjectKiosk/internal/access"
	"ProjectKiosk/internal/dialogue"
	"ProjectKiosk/internal/reveal"
	"ProjectKiosk/internal/scenario"
	"ProjectKiosk/internal/score"
)

// sink turns engine presentation events into outbound messages and timers.
// Every method runs with the session lock held.
type sink struct{ s *Session }

func (k sink) ShowLine(v dialogue.LineView) {
	s := k.s
	s.line = &v
	s.emit(MsgLine, v)
	s.startReveal(v)
}

func (k sink) ShowChoices(choices []dialogue.ChoiceView) {
	k.s.choices = choices
	k.s.emit(MsgChoices, ChoicesMsg{Choices: choices})
}

func (k sink) ShowContinue(enabled bool) {
	k.s.contOn = enabled
	k.s.emit(MsgContinue, EnabledMsg{Enabled: enabled})
}

func (k sink) ShowGoBack(enabled bool) {
	k.s.goBackOn = enabled
	k.s.emit(MsgGoBack, EnabledMsg{Enabled: enabled})
}

func (k sink) ShowAccessPanel(v *access.View) {
	k.s.panel = v
	k.s.emit(MsgAccessPanel, AccessPanelMsg{View: v})
}

func (k sink) RequestIdentityScan(idPrefab string) {
	k.s.scanPrefab = idPrefab
	k.s.emit(MsgScanRequest, ScanRequestMsg{IDPrefab: idPrefab})
}

func (k sink) AuthorizationStarted(t access.Ticket) {
	s := k.s
	s.emit(MsgAuthorization, AuthorizationMsg{Status: access.AuthLoading, Seconds: s.cfg.AuthorizationSeconds})
	s.after(s.cfg.AuthorizationSeconds, func() {
		if err := s.engine.CompleteAuthorization(t); err != nil {
			log.Printf("[session] %s authorization %d: %v", s.id, t, err)
		}
	})
}

func (k sink) AuthorizationCompleted() {
	k.s.emit(MsgAuthorization, AuthorizationMsg{Status: access.AuthAuthorized})
}

// HoldLine counts the hold from the end of the typewriter reveal.
func (k sink) HoldLine(t dialogue.HoldTicket, secs float64) {
	s := k.s
	delay := secs
	if s.text != nil && !s.text.Finished() {
		delay += s.text.Duration().Seconds()
	}
	s.after(delay, func() {
		if err := s.engine.HoldElapsed(t); err != nil {
			log.Printf("[session] %s hold %d: %v", s.id, t, err)
		}
	})
}

func (k sink) ShowBusinessCard(path string) {
	wait := false
	if line := k.s.engine.CurrentLine(); line != nil {
		wait = line.Hints.WaitForCardDismissal
	}
	k.s.emit(MsgBusinessCard, BusinessCardMsg{Path: path, Wait: wait})
}

func (k sink) ShowScoreScreen(index int) {
	id := ""
	if k.s.scenario != nil {
		id = k.s.scenario.ID
	}
	k.s.emit(MsgScoreScreen, ScoreScreenMsg{ScenarioID: id, Index: index})
}

func (k sink) PlayAudioCue(c dialogue.Cue, ref string) {
	k.s.emit(MsgAudio, AudioMsg{Cue: c, Ref: ref})
}

func (k sink) Notice(text string) {
	k.s.emit(MsgNotice, NoticeMsg{Text: text})
}

func (k sink) ScenarioEnded(scenarioID string, scoreScreen int) {
	s := k.s
	s.finishReveal()
	s.served++
	s.phase = PhaseScoreScreen
	s.queue.NotifyCompleted(scenario.ID(scenarioID))
	s.emit(MsgScenarioEnded, ScoreScreenMsg{ScenarioID: scenarioID, Index: scoreScreen})
}

// scorer credits points and injects police scenarios crossed by the change.
type scorer struct{ s *Session }

func (k scorer) AddScore(points int) {
	k.s.score.AddScore(points)
	k.s.flushPolice()
}

func (k scorer) Score() int { return k.s.score.Score() }

type scoreObserver struct{ s *Session }

func (o scoreObserver) OnScoreChanged(value, maxScore int) {
	o.s.emit(MsgScore, ScoreMsg{Score: value, Max: maxScore})
}

func (o scoreObserver) OnInboxThreshold(t score.InboxThreshold) {
	o.s.inbox.AddFromThreshold(t)
	o.s.emitInbox()
}

func (o scoreObserver) OnPoliceThreshold(t score.PoliceThreshold) {
	if t.ScenarioID == "" {
		log.Printf("[session] police threshold %s has no scenario", t.Name)
		return
	}
	o.s.police = append(o.s.police, scenario.ID(t.ScenarioID))
}

func (s *Session) startReveal(v dialogue.LineView) {
	s.stopReveal()
	task := reveal.New(v.Text, s.cfg.RevealCharsPerSecond)
	task.Start(s.clock.Now())
	s.text = task
	d := task.Duration()
	s.emit(MsgReveal, RevealMsg{EditorIndex: v.EditorIndex, Done: task.Finished(), Seconds: d.Seconds()})
	if task.Finished() {
		return
	}
	s.after(d.Seconds(), func() {
		if s.text != task || task.Finished() {
			return
		}
		// Rounding can leave the last rune a nanosecond short.
		if !task.Tick(s.clock.Now()) {
			task.SkipToEnd()
		}
		s.emit(MsgReveal, RevealMsg{EditorIndex: v.EditorIndex, Done: true})
	})
}

// finishReveal completes the running reveal so input is never blocked by it.
func (s *Session) finishReveal() {
	if s.text == nil || !s.text.SkipToEnd() {
		return
	}
	idx := 0
	if s.line != nil {
		idx = s.line.EditorIndex
	}
	s.emit(MsgReveal, RevealMsg{EditorIndex: idx, Done: true})
}

func (s *Session) stopReveal() {
	if s.text != nil {
		s.text.SkipToEnd()
		s.text = nil
	}
}
