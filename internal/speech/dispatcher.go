// Package speech throttles and fans out spoken responses.
package speech

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/ayusman/isyarat/internal/gesture"
)

// Utterance is one response handed to the sinks.
type Utterance struct {
	Text string `json:"text"`
	Lang string `json:"lang"`
	// Source is "gesture", "face" or "test".
	Source  string `json:"source,omitempty"`
	Subject string `json:"subject,omitempty"`
}

// Sink presents an utterance, for example by running a speech plugin.
type Sink interface {
	Speak(ctx context.Context, u Utterance) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, u Utterance) error

// Speak calls f(ctx, u).
func (f SinkFunc) Speak(ctx context.Context, u Utterance) error {
	return f(ctx, u)
}

// LogSink writes utterances to the standard logger.
var LogSink = SinkFunc(func(_ context.Context, u Utterance) error {
	log.Printf("Speak [%s %s]: %s", u.Source, u.Subject, u.Text)
	return nil
})

// Dispatcher owns the global speech cooldown. Accepted utterances are
// delivered to every sink in the background; Say never waits for them.
type Dispatcher struct {
	gate    *gesture.Gate
	lang    string
	timeout time.Duration

	mu    sync.RWMutex
	sinks []Sink

	wg sync.WaitGroup
}

// NewDispatcher creates a Dispatcher that lets at most one utterance through
// per cooldown window.
func NewDispatcher(cooldown time.Duration, lang string, sinks ...Sink) *Dispatcher {
	if lang == "" {
		lang = "en-US"
	}
	return &Dispatcher{
		gate:    gesture.NewGate(cooldown),
		lang:    lang,
		timeout: 10 * time.Second,
		sinks:   sinks,
	}
}

// AddSink registers another output.
func (d *Dispatcher) AddSink(s Sink) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sinks = append(d.sinks, s)
}

// SetCooldown changes the global speech cooldown.
func (d *Dispatcher) SetCooldown(cooldown time.Duration) {
	d.gate.SetCooldown(cooldown)
}

// Cooldown returns the global speech cooldown.
func (d *Dispatcher) Cooldown() time.Duration {
	return d.gate.Cooldown()
}

// Say dispatches u if the speech cooldown allows it at nowMs. Blank text is
// never dispatched and does not consume the cooldown. It reports whether the
// utterance was accepted.
func (d *Dispatcher) Say(nowMs int64, u Utterance) bool {
	u.Text = strings.TrimSpace(u.Text)
	if u.Text == "" {
		return false
	}
	if !d.gate.TryTrigger(nowMs) {
		return false
	}
	if u.Lang == "" {
		u.Lang = d.lang
	}

	d.mu.RLock()
	sinks := make([]Sink, len(d.sinks))
	copy(sinks, d.sinks)
	d.mu.RUnlock()

	for _, s := range sinks {
		d.wg.Add(1)
		go func(s Sink) {
			defer d.wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
			defer cancel()
			if err := s.Speak(ctx, u); err != nil {
				log.Printf("Speech output failed: %v", err)
			}
		}(s)
	}
	return true
}

// Wait blocks until every in-flight delivery has returned.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
