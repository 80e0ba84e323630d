// Package expression classifies facial landmarks into a small set of
// states (yawning, sleepy, sad) using fixed geometric thresholds.
package expression

import (
	"errors"
	"fmt"

	"github.com/ayusman/isyarat/internal/detector"
)

// Thresholds on the face metrics, in normalized image units.
const (
	YawnThreshold  = 0.055
	SleepThreshold = 0.015
	SadThreshold   = 0.02
)

// ErrFaceLandmarks is returned when a face mesh lacks the points the
// metrics need.
var ErrFaceLandmarks = errors.New("face mesh is missing required landmarks")

// State is the classified expression for one frame.
type State string

const (
	Neutral State = ""
	Yawning State = "yawning"
	Sleepy  State = "sleepy"
	Sad     State = "sad"
)

// Response returns the line spoken for the state.
func (s State) Response() string {
	switch s {
	case Yawning:
		return "You look like you're yawning, take a short break"
	case Sleepy:
		return "You look sleepy, don't push yourself"
	case Sad:
		return "You look sad, I hope your day gets better soon"
	default:
		return ""
	}
}

// Status returns the user-visible status line for the state.
func (s State) Status() string {
	switch s {
	case Yawning:
		return "Yawning detected"
	case Sleepy:
		return "Looks sleepy"
	case Sad:
		return "Looks sad"
	default:
		return ""
	}
}

// Metrics are the distances the classifier looks at.
type Metrics struct {
	MouthOpen  float64 `json:"mouth_open"`
	LeftEye    float64 `json:"left_eye"`
	RightEye   float64 `json:"right_eye"`
	LeftFrown  float64 `json:"left_frown"`
	RightFrown float64 `json:"right_frown"`
}

// Measure computes mouth opening, eye apertures and brow-to-eye distances.
func Measure(face detector.FaceMesh) (Metrics, error) {
	indices := []int{
		detector.UpperLip, detector.LowerLip,
		detector.LeftEyeTop, detector.LeftEyeBottom,
		detector.RightEyeTop, detector.RightEyeBottom,
		detector.LeftBrow, detector.RightBrow,
	}
	for _, i := range indices {
		if _, ok := face.At(i); !ok {
			return Metrics{}, fmt.Errorf("%w: have %d points, need index %d", ErrFaceLandmarks, len(face), i)
		}
	}

	leftTop, rightTop := face[detector.LeftEyeTop], face[detector.RightEyeTop]
	return Metrics{
		MouthOpen:  face[detector.UpperLip].Sub(face[detector.LowerLip]).Len(),
		LeftEye:    leftTop.Sub(face[detector.LeftEyeBottom]).Len(),
		RightEye:   rightTop.Sub(face[detector.RightEyeBottom]).Len(),
		LeftFrown:  face[detector.LeftBrow].Sub(leftTop).Len(),
		RightFrown: face[detector.RightBrow].Sub(rightTop).Len(),
	}, nil
}

// Classify checks yawning, then sleepiness, then sadness and returns the
// first state that applies.
func Classify(m Metrics) State {
	switch {
	case m.MouthOpen > YawnThreshold:
		return Yawning
	case m.LeftEye < SleepThreshold && m.RightEye < SleepThreshold:
		return Sleepy
	case m.LeftFrown < SadThreshold || m.RightFrown < SadThreshold:
		return Sad
	default:
		return Neutral
	}
}

// ClassifyFace measures and classifies a face mesh in one step.
func ClassifyFace(face detector.FaceMesh) (State, Metrics, error) {
	m, err := Measure(face)
	if err != nil {
		return Neutral, Metrics{}, err
	}
	return Classify(m), m, nil
}
