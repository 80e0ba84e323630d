package app

import (
	"errors"
	"log"
	"time"

	"github.com/ayusman/isyarat/internal/capture"
)

// ErrNoCamera is returned by Start when the App was built without a camera.
var ErrNoCamera = errors.New("no camera configured")

// pruneInterval is how often the running pipeline trims the journal.
const pruneInterval = time.Minute

// Start opens the camera and launches the capture pipeline. Calling Start on
// a running pipeline is a no-op.
func (a *App) Start() error {
	a.pipeMu.Lock()
	defer a.pipeMu.Unlock()

	if a.camera == nil {
		return ErrNoCamera
	}
	if a.stopCh != nil {
		return nil
	}

	if err := a.camera.Open(); err != nil {
		return err
	}
	a.camera.SetFPS(IdleFPS)

	a.stopCh = make(chan struct{})
	a.done = make(chan struct{})
	go a.runPipeline(a.stopCh, a.done)

	log.Println("Capture pipeline started")
	return nil
}

// Stop halts the pipeline and releases the camera, the motion detector and
// the landmark detector.
func (a *App) Stop() {
	a.pipeMu.Lock()
	stopCh, done := a.stopCh, a.done
	a.stopCh, a.done = nil, nil
	a.pipeMu.Unlock()

	if stopCh == nil {
		return
	}
	close(stopCh)
	<-done

	if err := a.camera.Close(); err != nil {
		log.Printf("Error closing camera: %v", err)
	}
	a.motion.Close()
	if d := a.Detector(); d != nil {
		if err := d.Close(); err != nil {
			log.Printf("Error closing detector: %v", err)
		}
	}

	log.Println("Capture pipeline stopped")
}

// IsRunning reports whether the capture pipeline is active.
func (a *App) IsRunning() bool {
	a.pipeMu.Lock()
	defer a.pipeMu.Unlock()
	return a.stopCh != nil
}

// runPipeline reads frames until stopCh closes. It idles at IdleFPS, runs
// landmark detection at ActiveFPS while motion is seen, and returns to idle
// after IdleTimeout without motion.
func (a *App) runPipeline(stopCh <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	active := false
	lastMotion := time.Now()

	ticker := time.NewTicker(time.Second / IdleFPS)
	defer ticker.Stop()
	prune := time.NewTicker(pruneInterval)
	defer prune.Stop()

	setRate := func(fps int) {
		a.camera.SetFPS(fps)
		ticker.Reset(time.Second / time.Duration(fps))
	}

	for {
		select {
		case <-stopCh:
			return
		case <-prune.C:
			a.PruneJournal()
		case <-ticker.C:
			frame, err := a.camera.ReadFrame()
			if err != nil {
				if !errors.Is(err, capture.ErrNoFrames) {
					log.Printf("Error reading frame: %v", err)
				}
				continue
			}

			if err := a.preview.Update(frame); err != nil {
				log.Printf("Error updating preview: %v", err)
			}

			if a.motion.Detect(frame).Detected {
				lastMotion = time.Now()
				if !active {
					active = true
					setRate(ActiveFPS)
					log.Println("Switched to active mode")
				}
			} else if active && time.Since(lastMotion) > IdleTimeout {
				active = false
				setRate(IdleFPS)
				log.Println("Switched to idle mode")
			}

			d := a.Detector()
			if !active || d == nil {
				frame.Close()
				continue
			}

			obs, err := d.Detect(frame)
			frame.Close()
			if err != nil {
				log.Printf("Error detecting landmarks: %v", err)
				continue
			}
			a.ProcessObservation(obs)
		}
	}
}
