// Package app is the recognition engine. It owns the template library, the
// recording session and the cooldown gates, and turns landmark frames into
// spoken responses.
package app

import (
	"log"
	"sync"
	"time"

	"github.com/ayusman/isyarat/internal/capture"
	"github.com/ayusman/isyarat/internal/detector"
	"github.com/ayusman/isyarat/internal/gesture"
	"github.com/ayusman/isyarat/internal/speech"
	"github.com/ayusman/isyarat/internal/store"
)

// Pipeline timing constants.
const (
	// IdleFPS is the frame rate when no motion is detected.
	IdleFPS = 5
	// ActiveFPS is the frame rate during active detection.
	ActiveFPS = 15
	// IdleTimeout is how long the scene must stay still before the pipeline
	// drops back to IdleFPS.
	IdleTimeout = 2 * time.Second
	// JournalLimit is the number of events kept in the journal.
	JournalLimit = 1000
)

// Config holds the collaborators and initial settings of the engine.
type Config struct {
	// Journal receives every published event. Optional.
	Journal *store.Store
	// Speech voices responses. A log-only dispatcher is used when nil.
	Speech *speech.Dispatcher

	Sensitivity     float64
	GestureCooldown time.Duration
	FaceCooldown    time.Duration

	// Camera enables the local capture pipeline. Optional.
	Camera          capture.Camera
	Detector        detector.Detector
	MotionThreshold float64
	// DataDir is searched for the perception helper script.
	DataDir string

	// Now overrides the clock in tests.
	Now func() time.Time
}

// App is the recognition engine. Frame processing and commands are
// serialized by a single mutex, so templates, the recording buffer and the
// cooldown timestamps are never touched concurrently.
type App struct {
	mu              sync.Mutex
	library         *gesture.Library
	recorder        *gesture.Recorder
	matcher         *gesture.Matcher
	faceGate        *gesture.Gate
	speech          *speech.Dispatcher
	journal         *store.EventRepository
	gestureCooldown time.Duration
	enabled         bool
	status          string
	lastGesture     string
	now             func() time.Time

	subsMu sync.RWMutex
	subs   map[chan Event]struct{}

	pipeMu   sync.Mutex
	camera   capture.Camera
	motion   *capture.MotionDetector
	detector detector.Detector
	preview  *capture.Preview
	stopCh   chan struct{}
	done     chan struct{}
}

// New creates an App with an empty template library. Recognition starts
// enabled.
func New(config Config) *App {
	if config.Speech == nil {
		config.Speech = speech.NewDispatcher(gesture.DefaultSpeechCooldown, "", speech.LogSink)
	}
	if config.GestureCooldown <= 0 {
		config.GestureCooldown = gesture.DefaultTemplateCooldown
	}
	if config.FaceCooldown <= 0 {
		config.FaceCooldown = gesture.DefaultFaceCooldown
	}
	if config.Now == nil {
		config.Now = time.Now
	}

	a := &App{
		library:         gesture.NewLibrary(),
		recorder:        gesture.NewRecorder(),
		matcher:         gesture.NewMatcher(config.Sensitivity),
		faceGate:        gesture.NewGate(config.FaceCooldown),
		speech:          config.Speech,
		gestureCooldown: config.GestureCooldown,
		enabled:         true,
		status:          "Ready",
		now:             config.Now,
		subs:            make(map[chan Event]struct{}),
		camera:          config.Camera,
		detector:        config.Detector,
		preview:         capture.NewPreview(),
	}
	if config.Journal != nil {
		a.journal = config.Journal.Events()
	}

	if a.camera != nil {
		a.motion = capture.NewMotionDetector(config.MotionThreshold)
		if a.detector == nil {
			a.detector = defaultDetector(config.DataDir)
		}
	}

	return a
}

// defaultDetector tries MediaPipe first and falls back to the mock detector.
func defaultDetector(dataDir string) detector.Detector {
	var dirs []string
	if dataDir != "" {
		dirs = append(dirs, dataDir)
	}
	mp, err := detector.NewMediaPipeDetector(detector.DefaultConfig(), dirs...)
	if err != nil {
		log.Printf("MediaPipe not available (%v), using mock detector", err)
		return detector.NewMockDetector()
	}
	log.Println("Using MediaPipe hand and face detection")
	return mp
}

// Library returns the template library.
func (a *App) Library() *gesture.Library {
	return a.library
}

// Speech returns the response dispatcher.
func (a *App) Speech() *speech.Dispatcher {
	return a.speech
}

// Preview returns the latest camera frame holder.
func (a *App) Preview() *capture.Preview {
	return a.preview
}

// HasCamera reports whether a local capture pipeline is configured.
func (a *App) HasCamera() bool {
	return a.camera != nil
}

// SetDetector replaces the landmark detector used by the local pipeline.
func (a *App) SetDetector(d detector.Detector) {
	a.pipeMu.Lock()
	defer a.pipeMu.Unlock()
	a.detector = d
}

// Detector returns the landmark detector of the local pipeline.
func (a *App) Detector() detector.Detector {
	a.pipeMu.Lock()
	defer a.pipeMu.Unlock()
	return a.detector
}

func (a *App) nowMs() int64 {
	return a.now().UnixMilli()
}
