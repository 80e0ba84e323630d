package app

import (
	"log"

	"github.com/ayusman/isyarat/internal/store"
)

// EventKind classifies engine events.
type EventKind string

const (
	// EventTriggered means a response was dispatched.
	EventTriggered EventKind = "triggered"
	// EventCooldown means a template matched while its cooldown was active.
	EventCooldown EventKind = "cooldown"
	// EventRecording reports recording progress and state changes.
	EventRecording EventKind = "recording"
	// EventStatus is a plain status line update.
	EventStatus EventKind = "status"
	// EventTemplates reports a change to the template library.
	EventTemplates EventKind = "templates"
	// EventError reports a failed command.
	EventError EventKind = "error"
)

// Event sources.
const (
	SourceGesture   = "gesture"
	SourceFace      = "face"
	SourceRecording = "recording"
	SourceSystem    = "system"
)

// Event is a user-visible outcome of frame processing or a command.
type Event struct {
	Kind       EventKind `json:"kind"`
	Source     string    `json:"source,omitempty"`
	Subject    string    `json:"subject,omitempty"`
	TemplateID string    `json:"templateId,omitempty"`
	Message    string    `json:"message"`
	Distance   float64   `json:"distance,omitempty"`
	Frames     int       `json:"frames,omitempty"`
	Time       int64     `json:"time"`
}

// subscriberBuffer is the channel depth of each subscriber. Events are
// dropped for subscribers that fall this far behind.
const subscriberBuffer = 64

// Subscribe returns a channel receiving every published event and a function
// that unsubscribes and closes the channel.
func (a *App) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	a.subsMu.Lock()
	a.subs[ch] = struct{}{}
	a.subsMu.Unlock()

	var once bool
	cancel := func() {
		a.subsMu.Lock()
		defer a.subsMu.Unlock()
		if once {
			return
		}
		once = true
		delete(a.subs, ch)
		close(ch)
	}
	return ch, cancel
}

// publish records e as the status line, journals it and fans it out. A
// status or cooldown event repeating the current status line is dropped so
// steady frames do not flood subscribers. It must be called with a.mu held.
func (a *App) publish(e Event) Event {
	if e.Time == 0 {
		e.Time = a.nowMs()
	}
	if (e.Kind == EventStatus || e.Kind == EventCooldown) && e.Message == a.status {
		return e
	}
	a.status = e.Message

	if a.journal != nil {
		rec := &store.Event{
			Kind:      string(e.Kind),
			Source:    e.Source,
			Subject:   e.Subject,
			Message:   e.Message,
			Distance:  e.Distance,
			CreatedAt: e.Time,
		}
		if err := a.journal.Record(rec); err != nil {
			log.Printf("Failed to journal event: %v", err)
		}
	}

	a.subsMu.RLock()
	for ch := range a.subs {
		select {
		case ch <- e:
		default:
		}
	}
	a.subsMu.RUnlock()

	return e
}

// RecentEvents returns up to limit journaled events, newest first.
func (a *App) RecentEvents(limit int) ([]*store.Event, error) {
	if a.journal == nil {
		return []*store.Event{}, nil
	}
	return a.journal.Recent(limit)
}

// PruneJournal trims the journal to JournalLimit entries.
func (a *App) PruneJournal() {
	if a.journal == nil {
		return
	}
	if n, err := a.journal.Prune(JournalLimit); err != nil {
		log.Printf("Failed to prune journal: %v", err)
	} else if n > 0 {
		log.Printf("Pruned %d journal events", n)
	}
}
