package detector

import "gocv.io/x/gocv"

// Detector is a perception service that turns a video frame into landmarks.
type Detector interface {
	// Detect analyzes a video frame and returns the hands and face found in it.
	// An empty Observation means nothing was tracked.
	Detect(frame *gocv.Mat) (Observation, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for the perception models.
type Config struct {
	// MaxHands is the maximum number of hands to track (default: 2).
	MaxHands int

	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64

	// MinTrackingConf is the minimum tracking confidence threshold (0.0-1.0).
	MinTrackingConf float64

	// Face enables the face mesh model alongside hand tracking.
	Face bool
}

// DefaultConfig returns the settings the browser client also uses.
func DefaultConfig() Config {
	return Config{
		MaxHands:        2,
		MinConfidence:   0.7,
		MinTrackingConf: 0.6,
		Face:            true,
	}
}
