package app

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/ayusman/isyarat/internal/gesture"
	"github.com/ayusman/isyarat/internal/speech"
)

// ErrInvalidSettings is returned by UpdateSettings for out-of-range values.
var ErrInvalidSettings = errors.New("invalid settings")

// RecordingState describes the recording session.
type RecordingState struct {
	Recording bool `json:"recording"`
	Frames    int  `json:"frames"`
	Target    int  `json:"target"`
	Complete  bool `json:"complete"`
}

// NewGesture is the user input for saving a recording.
type NewGesture struct {
	Name     string `json:"name"`
	Response string `json:"response"`
	// Cooldown in milliseconds; <= 0 uses the configured default.
	Cooldown int64 `json:"cooldown"`
}

// Settings are the runtime-tunable recognition settings. Cooldowns are in
// milliseconds.
type Settings struct {
	Sensitivity     float64 `json:"sensitivity"`
	GestureCooldown int64   `json:"gestureCooldown"`
	FaceCooldown    int64   `json:"faceCooldown"`
	SpeechCooldown  int64   `json:"speechCooldown"`
}

// SettingsPatch holds the settings to change. Nil fields are kept.
type SettingsPatch struct {
	Sensitivity     *float64 `json:"sensitivity"`
	GestureCooldown *int64   `json:"gestureCooldown"`
	FaceCooldown    *int64   `json:"faceCooldown"`
	SpeechCooldown  *int64   `json:"speechCooldown"`
}

// Status is a snapshot of the engine for the UI and the tray.
type Status struct {
	Enabled     bool           `json:"enabled"`
	Message     string         `json:"message"`
	LastGesture string         `json:"lastGesture,omitempty"`
	Templates   int            `json:"templates"`
	Recording   RecordingState `json:"recording"`
	Camera      bool           `json:"camera"`
	Settings    Settings       `json:"settings"`
}

// StartRecording begins a new recording session and clears the buffer.
func (a *App) StartRecording() Event {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.recorder.Start()
	return a.publish(Event{
		Kind:    EventRecording,
		Source:  SourceRecording,
		Message: "Recording gesture... hold the pose until it completes.",
	})
}

// StopRecording ends the session and keeps the buffer for saving.
func (a *App) StopRecording() Event {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.recorder.Stop()
	return a.publish(Event{
		Kind:    EventRecording,
		Source:  SourceRecording,
		Frames:  a.recorder.Count(),
		Message: "Recording stopped. Save the gesture to keep it.",
	})
}

// DiscardRecording ends the session and drops the buffer.
func (a *App) DiscardRecording() Event {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.recorder.Discard()
	return a.publish(Event{
		Kind:    EventRecording,
		Source:  SourceRecording,
		Message: "Recording discarded",
	})
}

// Recording returns the state of the recording session.
func (a *App) Recording() RecordingState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.recordingState()
}

func (a *App) recordingState() RecordingState {
	n := a.recorder.Count()
	return RecordingState{
		Recording: a.recorder.IsRecording(),
		Frames:    n,
		Target:    gesture.TargetFrames,
		Complete:  n >= gesture.TargetFrames,
	}
}

// CommitRecording turns the buffered frames into a template. It fails with
// gesture.ErrEmptyRecording when nothing was recorded.
func (a *App) CommitRecording(in NewGesture) (gesture.Template, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	t, err := a.recorder.Commit(a.library, gesture.NewTemplate{
		Name:            in.Name,
		Response:        in.Response,
		Cooldown:        in.Cooldown,
		DefaultCooldown: a.gestureCooldown.Milliseconds(),
		Now:             a.now(),
	})
	if err != nil {
		a.publish(Event{Kind: EventError, Source: SourceRecording, Message: "Record a gesture first"})
		return gesture.Template{}, err
	}

	a.publish(Event{
		Kind:       EventTemplates,
		Source:     SourceRecording,
		Subject:    t.Name,
		TemplateID: t.ID,
		Message:    fmt.Sprintf("Gesture %q saved (%d total)", t.Name, a.library.Len()),
	})
	return t, nil
}

// SuggestName returns the auto-generated name for the current buffer.
func (a *App) SuggestName() (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.recorder.SuggestName(a.now())
}

// UpdateTemplate edits a template's name, response or cooldown.
func (a *App) UpdateTemplate(id string, patch gesture.TemplatePatch) (gesture.Template, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	t, err := a.library.Update(id, patch)
	if err != nil {
		return gesture.Template{}, err
	}
	a.publish(Event{
		Kind:       EventTemplates,
		Source:     SourceSystem,
		Subject:    t.Name,
		TemplateID: t.ID,
		Message:    fmt.Sprintf("Gesture %q updated", t.Name),
	})
	return t, nil
}

// DeleteTemplate removes one template.
func (a *App) DeleteTemplate(id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	t, err := a.library.Get(id)
	if err != nil {
		return err
	}
	if err := a.library.Delete(id); err != nil {
		return err
	}
	a.publish(Event{
		Kind:       EventTemplates,
		Source:     SourceSystem,
		Subject:    t.Name,
		TemplateID: id,
		Message:    fmt.Sprintf("Gesture %q deleted", t.Name),
	})
	return nil
}

// ClearTemplates removes every template.
func (a *App) ClearTemplates() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.library.Clear()
	a.publish(Event{Kind: EventTemplates, Source: SourceSystem, Message: "All gestures deleted"})
}

// TestTemplate speaks a template's response without consuming its cooldown.
// The global speech cooldown still applies; the result reports whether the
// response was voiced.
func (a *App) TestTemplate(id string) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	t, err := a.library.Get(id)
	if err != nil {
		return false, err
	}
	return a.speech.Say(a.nowMs(), speech.Utterance{Text: t.Response, Source: "test", Subject: t.Name}), nil
}

// ImportTemplates replaces the library with a JSON template list.
func (a *App) ImportTemplates(r io.Reader) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	n, err := a.library.Import(r)
	if err != nil {
		a.publish(Event{Kind: EventError, Source: SourceSystem, Message: "Invalid template file"})
		return 0, err
	}
	a.publish(Event{Kind: EventTemplates, Source: SourceSystem, Message: fmt.Sprintf("Imported %d gestures", n)})
	return n, nil
}

// ExportTemplates writes the library as JSON.
func (a *App) ExportTemplates(w io.Writer) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.library.Export(w)
}

// SetEnabled pauses or resumes recognition. Recording is not affected.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.enabled == enabled {
		return
	}
	a.enabled = enabled
	msg := "Recognition paused"
	if enabled {
		msg = "Recognition resumed"
	}
	a.publish(Event{Kind: EventStatus, Source: SourceSystem, Message: msg})
}

// IsEnabled reports whether recognition is running.
func (a *App) IsEnabled() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.enabled
}

// Settings returns the current recognition settings.
func (a *App) Settings() Settings {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.settings()
}

func (a *App) settings() Settings {
	return Settings{
		Sensitivity:     a.matcher.Threshold(),
		GestureCooldown: a.gestureCooldown.Milliseconds(),
		FaceCooldown:    a.faceGate.Cooldown().Milliseconds(),
		SpeechCooldown:  a.speech.Cooldown().Milliseconds(),
	}
}

// UpdateSettings validates and applies patch. Either every field is applied
// or none is.
func (a *App) UpdateSettings(patch SettingsPatch) (Settings, error) {
	var errs []error
	if patch.Sensitivity != nil && *patch.Sensitivity <= 0 {
		errs = append(errs, fmt.Errorf("sensitivity must be positive, got %v", *patch.Sensitivity))
	}
	if patch.GestureCooldown != nil && *patch.GestureCooldown <= 0 {
		errs = append(errs, fmt.Errorf("gesture cooldown must be positive, got %d", *patch.GestureCooldown))
	}
	if patch.FaceCooldown != nil && *patch.FaceCooldown < 0 {
		errs = append(errs, fmt.Errorf("face cooldown must not be negative, got %d", *patch.FaceCooldown))
	}
	if patch.SpeechCooldown != nil && *patch.SpeechCooldown < 0 {
		errs = append(errs, fmt.Errorf("speech cooldown must not be negative, got %d", *patch.SpeechCooldown))
	}
	if len(errs) > 0 {
		return a.Settings(), fmt.Errorf("%w: %w", ErrInvalidSettings, errors.Join(errs...))
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if patch.Sensitivity != nil {
		a.matcher.SetThreshold(*patch.Sensitivity)
	}
	if patch.GestureCooldown != nil {
		a.gestureCooldown = time.Duration(*patch.GestureCooldown) * time.Millisecond
	}
	if patch.FaceCooldown != nil {
		a.faceGate.SetCooldown(time.Duration(*patch.FaceCooldown) * time.Millisecond)
	}
	if patch.SpeechCooldown != nil {
		a.speech.SetCooldown(time.Duration(*patch.SpeechCooldown) * time.Millisecond)
	}

	s := a.settings()
	a.publish(Event{
		Kind:    EventStatus,
		Source:  SourceSystem,
		Message: fmt.Sprintf("Settings updated (sensitivity %.2f)", s.Sensitivity),
	})
	return s, nil
}

// Status returns a snapshot for the UI.
func (a *App) Status() Status {
	a.mu.Lock()
	defer a.mu.Unlock()

	return Status{
		Enabled:     a.enabled,
		Message:     a.status,
		LastGesture: a.lastGesture,
		Templates:   a.library.Len(),
		Recording:   a.recordingState(),
		Camera:      a.camera != nil,
		Settings:    a.settings(),
	}
}
