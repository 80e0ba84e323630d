package app

import (
	"fmt"

	"github.com/ayusman/isyarat/internal/detector"
	"github.com/ayusman/isyarat/internal/expression"
	"github.com/ayusman/isyarat/internal/gesture"
	"github.com/ayusman/isyarat/internal/speech"
)

// ProcessObservation handles the hands and the face of one perception tick.
// The two streams are independent: the face is classified even when no hand
// is visible.
func (a *App) ProcessObservation(obs detector.Observation) []Event {
	events := a.ProcessHands(obs.Hands)
	if len(obs.Face) > 0 {
		if e, ok := a.ProcessFace(obs.Face); ok {
			events = append(events, e)
		}
	}
	return events
}

// ProcessHands handles one hand frame callback. While recording, raw frames
// go to the recording buffer; otherwise each hand is normalized and matched
// against the library, and an accepted match is gated by the template's
// cooldown before its response is dispatched.
func (a *App) ProcessHands(hands []detector.HandFrame) []Event {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(hands) == 0 {
		return []Event{a.publish(Event{Kind: EventStatus, Source: SourceSystem, Message: "No hands detected"})}
	}

	var events []Event
	for _, raw := range hands {
		if e, ok := a.processHand(raw); ok {
			events = append(events, a.publish(e))
		}
	}

	if len(events) == 0 {
		msg := fmt.Sprintf("%d hands detected", len(hands))
		if len(hands) == 1 {
			msg = "1 hand detected"
		}
		events = append(events, a.publish(Event{Kind: EventStatus, Source: SourceSystem, Message: msg}))
	}
	return events
}

// processHand must be called with a.mu held.
func (a *App) processHand(raw detector.HandFrame) (Event, bool) {
	if a.recorder.IsRecording() {
		n, _ := a.recorder.Add(raw)
		e := Event{Kind: EventRecording, Source: SourceRecording, Frames: n}
		if n >= gesture.TargetFrames {
			e.Message = "Recording complete. Save the gesture."
		} else {
			e.Message = fmt.Sprintf("Recording... (%d/%d)", n, gesture.TargetFrames)
		}
		return e, true
	}

	if !a.enabled {
		return Event{}, false
	}

	templates := a.library.List()
	if len(templates) == 0 {
		return Event{}, false
	}

	m, ok := a.matcher.Match(raw.Normalize(), templates)
	if !ok {
		return Event{}, false
	}

	now := a.nowMs()
	t, allowed, err := a.library.Trigger(m.Template.ID, now, a.gestureCooldown.Milliseconds())
	if err != nil {
		return Event{}, false
	}

	e := Event{
		Source:     SourceGesture,
		Subject:    t.Name,
		TemplateID: t.ID,
		Distance:   m.Distance,
		Time:       now,
	}
	if !allowed {
		e.Kind = EventCooldown
		e.Message = fmt.Sprintf("Gesture %q matched but on cooldown", t.Name)
		return e, true
	}

	a.lastGesture = t.Name
	a.speech.Say(now, speech.Utterance{Text: t.Response, Source: SourceGesture, Subject: t.Name})
	e.Kind = EventTriggered
	e.Message = fmt.Sprintf("Gesture %q detected (score %.2f)", t.Name, m.Distance)
	return e, true
}

// ProcessFace classifies one face mesh. Yawning, sleepy and sad share the
// face cooldown; a classification denied by it is dropped silently.
func (a *App) ProcessFace(face detector.FaceMesh) (Event, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.enabled {
		return Event{}, false
	}

	state, metrics, err := expression.ClassifyFace(face)
	if err != nil || state == expression.Neutral {
		return Event{}, false
	}

	now := a.nowMs()
	if !a.faceGate.TryTrigger(now) {
		return Event{}, false
	}

	a.speech.Say(now, speech.Utterance{Text: state.Response(), Source: SourceFace, Subject: string(state)})

	distance := metrics.MouthOpen
	switch state {
	case expression.Sleepy:
		distance = max(metrics.LeftEye, metrics.RightEye)
	case expression.Sad:
		distance = min(metrics.LeftFrown, metrics.RightFrown)
	}

	return a.publish(Event{
		Kind:     EventTriggered,
		Source:   SourceFace,
		Subject:  string(state),
		Message:  state.Status(),
		Distance: distance,
		Time:     now,
	}), true
}
