package plugin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ayusman/isyarat/internal/speech"
)

// ActionSpeak is the plugin action that voices a response.
const ActionSpeak = "speak"

// ErrPluginFailed wraps a Response with Success=false.
var ErrPluginFailed = errors.New("plugin reported failure")

// Speaker is a speech.Sink that runs a named plugin with the "speak" action.
// The plugin is looked up on every call so a rescan picks up new installs.
type Speaker struct {
	manager  *Manager
	executor *Executor
	name     string
}

var _ speech.Sink = (*Speaker)(nil)

// NewSpeaker creates a Speaker for the plugin called name.
func NewSpeaker(manager *Manager, executor *Executor, name string) *Speaker {
	return &Speaker{manager: manager, executor: executor, name: name}
}

// Speak implements speech.Sink.
func (s *Speaker) Speak(ctx context.Context, u speech.Utterance) error {
	p, err := s.manager.Get(s.name)
	if err != nil {
		return err
	}
	if !p.Supports(ActionSpeak) {
		return fmt.Errorf("plugin %s does not support %q", s.name, ActionSpeak)
	}

	params, err := json.Marshal(SpeakParams{Text: u.Text, Lang: u.Lang})
	if err != nil {
		return err
	}

	resp, err := s.executor.Execute(ctx, p, &Request{
		Action:  ActionSpeak,
		Source:  u.Source,
		Subject: u.Subject,
		Params:  params,
	})
	if err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("%w: %s: %s", ErrPluginFailed, s.name, resp.Error)
	}
	return nil
}
