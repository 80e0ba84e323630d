// Package detector provides the landmark types delivered by the perception
// service and the interfaces used to obtain them.
package detector

import (
	"errors"
	"fmt"
	"math"
)

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// minScale is the floor applied to the normalization scale so that a frame
// whose points all coincide with the wrist does not divide by zero.
const minScale = 1e-6

// ErrLandmarkCount is returned when a point sequence does not hold exactly
// NumLandmarks hand points.
var ErrLandmarkCount = errors.New("hand frame must have 21 landmarks")

// Point is a 2D landmark in normalized image space. Any z component sent
// upstream is dropped when decoding.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Len returns the distance of p from the origin.
func (p Point) Len() float64 {
	return math.Hypot(p.X, p.Y)
}

// HandFrame is one tracked hand: 21 index-addressed points.
type HandFrame [NumLandmarks]Point

// HandFrameFromPoints copies points into a HandFrame.
func HandFrameFromPoints(points []Point) (HandFrame, error) {
	var f HandFrame
	if len(points) != NumLandmarks {
		return f, fmt.Errorf("%w: got %d", ErrLandmarkCount, len(points))
	}
	copy(f[:], points)
	return f, nil
}

// Normalize makes the frame translation and scale invariant. The wrist is
// moved to the origin and every point is divided by the largest
// point-to-wrist distance, so the farthest point ends up at distance 1.
func (f HandFrame) Normalize() HandFrame {
	var out HandFrame
	ref := f[Wrist]

	scale := minScale
	for i, p := range f {
		out[i] = p.Sub(ref)
		if d := out[i].Len(); d > scale {
			scale = d
		}
	}

	for i := range out {
		out[i].X /= scale
		out[i].Y /= scale
	}
	return out
}

// Translate returns the frame shifted by d.
func (f HandFrame) Translate(d Point) HandFrame {
	var out HandFrame
	for i, p := range f {
		out[i] = Point{X: p.X + d.X, Y: p.Y + d.Y}
	}
	return out
}

// Face mesh landmark indices used for expression metrics.
const (
	UpperLip          = 13
	LowerLip          = 14
	LeftEyeTop        = 159
	LeftEyeBottom     = 145
	RightEyeTop       = 386
	RightEyeBottom    = 374
	LeftBrow          = 65
	RightBrow         = 295
	MinFaceLandmarks  = RightEyeTop + 1
	FaceMeshLandmarks = 468
)

// FaceMesh is one tracked face as delivered by the face mesh model.
type FaceMesh []Point

// At returns the point at index i and whether it exists.
func (m FaceMesh) At(i int) (Point, bool) {
	if i < 0 || i >= len(m) {
		return Point{}, false
	}
	return m[i], true
}

// Observation is everything the perception service reported for one tick.
type Observation struct {
	Hands []HandFrame `json:"hands"`
	Face  FaceMesh    `json:"face,omitempty"`
}
