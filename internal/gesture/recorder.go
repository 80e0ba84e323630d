package gesture

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/isyarat/internal/detector"
)

// TargetFrames is the number of frames after which a recording is reported
// as complete. Recording continues until Stop is called.
const TargetFrames = 18

// DefaultResponse is spoken for templates saved without a response text.
const DefaultResponse = "Halo"

// ErrEmptyRecording is returned when committing a recording with no frames.
var ErrEmptyRecording = errors.New("recording has no frames")

// NewTemplate describes the template produced by Commit.
type NewTemplate struct {
	Name     string
	Response string
	// Cooldown in milliseconds. Non-positive values use DefaultCooldown.
	Cooldown int64
	// DefaultCooldown in milliseconds, normally the configured per-template
	// cooldown.
	DefaultCooldown int64
	// Now is used for fallback naming. Zero means time.Now.
	Now time.Time
}

// Recorder buffers raw frames while a recording session is active.
type Recorder struct {
	mu        sync.Mutex
	recording bool
	frames    []detector.HandFrame
}

// NewRecorder creates an idle Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Start begins a new recording and clears the buffer.
func (r *Recorder) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recording = true
	r.frames = r.frames[:0]
}

// Stop ends the recording. Buffered frames are kept until Commit or Discard.
func (r *Recorder) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recording = false
}

// Discard ends the recording and drops the buffer.
func (r *Recorder) Discard() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recording = false
	r.frames = nil
}

// Add appends a raw frame while recording and returns the buffered count.
// Frames arriving while idle are ignored.
func (r *Recorder) Add(frame detector.HandFrame) (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.recording {
		return len(r.frames), false
	}
	r.frames = append(r.frames, frame)
	return len(r.frames), true
}

// IsRecording reports whether frames are currently being buffered.
func (r *Recorder) IsRecording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.recording
}

// Count returns the number of buffered frames.
func (r *Recorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.frames)
}

// Complete reports whether the buffer reached TargetFrames.
func (r *Recorder) Complete() bool {
	return r.Count() >= TargetFrames
}

// Average returns the per-landmark mean of the buffered raw frames.
func (r *Recorder) Average() (detector.HandFrame, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return averageFrames(r.frames)
}

// Commit averages and normalizes the buffer, builds a template from it and
// appends it to lib. The buffer is cleared and the session returns to idle.
// With an empty buffer ErrEmptyRecording is returned and lib is untouched.
func (r *Recorder) Commit(lib *Library, opts NewTemplate) (Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	avg, err := averageFrames(r.frames)
	if err != nil {
		return Template{}, err
	}
	normalized := avg.Normalize()

	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	name := strings.TrimSpace(opts.Name)
	if name == "" {
		name = autoName(normalized[:], now)
	}
	response := strings.TrimSpace(opts.Response)
	if response == "" {
		response = DefaultResponse
	}
	cooldown := opts.Cooldown
	if cooldown <= 0 {
		cooldown = opts.DefaultCooldown
	}
	if cooldown <= 0 {
		cooldown = DefaultTemplateCooldown.Milliseconds()
	}

	t := lib.Add(Template{
		ID:        uuid.NewString(),
		Name:      name,
		Response:  response,
		Cooldown:  cooldown,
		Landmarks: normalized,
	})

	r.frames = nil
	r.recording = false
	return t, nil
}

// SuggestName averages the buffer and returns the auto-generated name for it.
func (r *Recorder) SuggestName(now time.Time) (string, error) {
	avg, err := r.Average()
	if err != nil {
		return "", err
	}
	normalized := avg.Normalize()
	return autoName(normalized[:], now), nil
}

func averageFrames(frames []detector.HandFrame) (detector.HandFrame, error) {
	var avg detector.HandFrame
	if len(frames) == 0 {
		return avg, ErrEmptyRecording
	}

	for _, f := range frames {
		for i, p := range f {
			avg[i].X += p.X
			avg[i].Y += p.Y
		}
	}

	n := float64(len(frames))
	for i := range avg {
		avg[i].X /= n
		avg[i].Y /= n
	}
	return avg, nil
}
