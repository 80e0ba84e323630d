package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	mu  sync.Mutex
	obs Observation
	err error
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands ...HandFrame) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.obs.Hands = hands
}

// SetFace sets the face mesh that will be returned by Detect.
func (m *MockDetector) SetFace(face FaceMesh) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.obs.Face = face
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Detect returns the pre-configured observation or error.
func (m *MockDetector) Detect(frame *gocv.Mat) (Observation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return Observation{}, m.err
	}
	return m.obs, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// OpenPalmFrame returns a right hand with all five fingers extended upward.
func OpenPalmFrame() HandFrame {
	var f HandFrame
	f[Wrist] = Point{X: 0.5, Y: 0.8}

	f[ThumbCMC] = Point{X: 0.55, Y: 0.75}
	f[ThumbMCP] = Point{X: 0.62, Y: 0.70}
	f[ThumbIP] = Point{X: 0.68, Y: 0.65}
	f[ThumbTip] = Point{X: 0.73, Y: 0.60}

	f[IndexMCP] = Point{X: 0.55, Y: 0.68}
	f[IndexPIP] = Point{X: 0.57, Y: 0.55}
	f[IndexDIP] = Point{X: 0.58, Y: 0.45}
	f[IndexTip] = Point{X: 0.58, Y: 0.35}

	f[MiddleMCP] = Point{X: 0.50, Y: 0.66}
	f[MiddlePIP] = Point{X: 0.50, Y: 0.52}
	f[MiddleDIP] = Point{X: 0.50, Y: 0.40}
	f[MiddleTip] = Point{X: 0.50, Y: 0.28}

	f[RingMCP] = Point{X: 0.45, Y: 0.68}
	f[RingPIP] = Point{X: 0.43, Y: 0.55}
	f[RingDIP] = Point{X: 0.42, Y: 0.45}
	f[RingTip] = Point{X: 0.42, Y: 0.35}

	f[PinkyMCP] = Point{X: 0.40, Y: 0.70}
	f[PinkyPIP] = Point{X: 0.37, Y: 0.60}
	f[PinkyDIP] = Point{X: 0.35, Y: 0.50}
	f[PinkyTip] = Point{X: 0.34, Y: 0.42}

	return f
}

// ThumbsUpFrame returns a right hand with only the thumb extended.
func ThumbsUpFrame() HandFrame {
	f := FistFrame()
	f[ThumbCMC] = Point{X: 0.55, Y: 0.75}
	f[ThumbMCP] = Point{X: 0.58, Y: 0.65}
	f[ThumbIP] = Point{X: 0.58, Y: 0.50}
	f[ThumbTip] = Point{X: 0.58, Y: 0.35}
	return f
}

// PeaceFrame returns a right hand showing index and middle fingers.
func PeaceFrame() HandFrame {
	f := FistFrame()
	open := OpenPalmFrame()
	for i := IndexMCP; i <= MiddleTip; i++ {
		f[i] = open[i]
	}
	return f
}

// FistFrame returns a right hand with every finger curled into the palm.
func FistFrame() HandFrame {
	var f HandFrame
	f[Wrist] = Point{X: 0.5, Y: 0.8}

	f[ThumbCMC] = Point{X: 0.55, Y: 0.75}
	f[ThumbMCP] = Point{X: 0.58, Y: 0.70}
	f[ThumbIP] = Point{X: 0.56, Y: 0.66}
	f[ThumbTip] = Point{X: 0.52, Y: 0.68}

	f[IndexMCP] = Point{X: 0.55, Y: 0.70}
	f[IndexPIP] = Point{X: 0.55, Y: 0.68}
	f[IndexDIP] = Point{X: 0.52, Y: 0.70}
	f[IndexTip] = Point{X: 0.50, Y: 0.72}

	f[MiddleMCP] = Point{X: 0.50, Y: 0.68}
	f[MiddlePIP] = Point{X: 0.50, Y: 0.66}
	f[MiddleDIP] = Point{X: 0.47, Y: 0.68}
	f[MiddleTip] = Point{X: 0.45, Y: 0.70}

	f[RingMCP] = Point{X: 0.45, Y: 0.70}
	f[RingPIP] = Point{X: 0.45, Y: 0.68}
	f[RingDIP] = Point{X: 0.42, Y: 0.70}
	f[RingTip] = Point{X: 0.40, Y: 0.72}

	f[PinkyMCP] = Point{X: 0.40, Y: 0.72}
	f[PinkyPIP] = Point{X: 0.40, Y: 0.70}
	f[PinkyDIP] = Point{X: 0.37, Y: 0.72}
	f[PinkyTip] = Point{X: 0.35, Y: 0.74}

	return f
}

// NeutralFace returns a full face mesh with open eyes, relaxed brows and a
// closed mouth. Points not used by the expression metrics sit at the centre.
func NeutralFace() FaceMesh {
	face := make(FaceMesh, FaceMeshLandmarks)
	for i := range face {
		face[i] = Point{X: 0.5, Y: 0.5}
	}

	face[UpperLip] = Point{X: 0.5, Y: 0.70}
	face[LowerLip] = Point{X: 0.5, Y: 0.71}

	face[LeftEyeTop] = Point{X: 0.4, Y: 0.40}
	face[LeftEyeBottom] = Point{X: 0.4, Y: 0.43}
	face[RightEyeTop] = Point{X: 0.6, Y: 0.40}
	face[RightEyeBottom] = Point{X: 0.6, Y: 0.43}

	face[LeftBrow] = Point{X: 0.4, Y: 0.35}
	face[RightBrow] = Point{X: 0.6, Y: 0.35}

	return face
}

// YawningFace returns a neutral face with the mouth 0.06 open.
func YawningFace() FaceMesh {
	face := NeutralFace()
	face[LowerLip] = Point{X: 0.5, Y: 0.76}
	return face
}

// SleepyFace returns a neutral face with both eyes nearly shut.
func SleepyFace() FaceMesh {
	face := NeutralFace()
	face[LeftEyeBottom] = Point{X: 0.4, Y: 0.41}
	face[RightEyeBottom] = Point{X: 0.6, Y: 0.41}
	return face
}

// SadFace returns a neutral face with both brows pulled down to the eyes.
func SadFace() FaceMesh {
	face := NeutralFace()
	face[LeftBrow] = Point{X: 0.4, Y: 0.39}
	face[RightBrow] = Point{X: 0.6, Y: 0.39}
	return face
}
