package expression

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/isyarat/internal/detector"
)

func TestMeasure(t *testing.T) {
	m, err := Measure(detector.NeutralFace())
	require.NoError(t, err)

	assert.InDelta(t, 0.01, m.MouthOpen, 1e-9)
	assert.InDelta(t, 0.03, m.LeftEye, 1e-9)
	assert.InDelta(t, 0.03, m.RightEye, 1e-9)
	assert.InDelta(t, 0.05, m.LeftFrown, 1e-9)
	assert.InDelta(t, 0.05, m.RightFrown, 1e-9)
}

func TestMeasure_ShortMesh(t *testing.T) {
	face := detector.NeutralFace()[:300]

	_, err := Measure(face)
	if !errors.Is(err, ErrFaceLandmarks) {
		t.Fatalf("expected ErrFaceLandmarks, got %v", err)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		metrics Metrics
		want    State
	}{
		{"neutral", Metrics{MouthOpen: 0.01, LeftEye: 0.03, RightEye: 0.03, LeftFrown: 0.05, RightFrown: 0.05}, Neutral},
		{"yawning", Metrics{MouthOpen: 0.06, LeftEye: 0.03, RightEye: 0.03, LeftFrown: 0.05, RightFrown: 0.05}, Yawning},
		{"yawn wins over sleepy and sad", Metrics{MouthOpen: 0.06, LeftEye: 0.01, RightEye: 0.01, LeftFrown: 0.01, RightFrown: 0.01}, Yawning},
		{"mouth at threshold is not a yawn", Metrics{MouthOpen: YawnThreshold, LeftEye: 0.03, RightEye: 0.03, LeftFrown: 0.05, RightFrown: 0.05}, Neutral},
		{"sleepy", Metrics{MouthOpen: 0.01, LeftEye: 0.01, RightEye: 0.01, LeftFrown: 0.05, RightFrown: 0.05}, Sleepy},
		{"sleepy wins over sad", Metrics{MouthOpen: 0.01, LeftEye: 0.01, RightEye: 0.01, LeftFrown: 0.01, RightFrown: 0.05}, Sleepy},
		{"one eye closed is not sleepy", Metrics{MouthOpen: 0.01, LeftEye: 0.01, RightEye: 0.03, LeftFrown: 0.05, RightFrown: 0.05}, Neutral},
		{"sad on left brow", Metrics{MouthOpen: 0.01, LeftEye: 0.03, RightEye: 0.03, LeftFrown: 0.01, RightFrown: 0.05}, Sad},
		{"sad on right brow", Metrics{MouthOpen: 0.01, LeftEye: 0.03, RightEye: 0.03, LeftFrown: 0.05, RightFrown: 0.019}, Sad},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.metrics); got != tt.want {
				t.Errorf("Classify() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClassifyFace(t *testing.T) {
	tests := []struct {
		name string
		face detector.FaceMesh
		want State
	}{
		{"neutral", detector.NeutralFace(), Neutral},
		{"yawning", detector.YawningFace(), Yawning},
		{"sleepy", detector.SleepyFace(), Sleepy},
		{"sad", detector.SadFace(), Sad},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _, err := ClassifyFace(tt.face)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassifyFace_YawnWithClosedEyes(t *testing.T) {
	face := detector.YawningFace()
	sleepy := detector.SleepyFace()
	face[detector.LeftEyeBottom] = sleepy[detector.LeftEyeBottom]
	face[detector.RightEyeBottom] = sleepy[detector.RightEyeBottom]

	state, m, err := ClassifyFace(face)
	require.NoError(t, err)
	assert.Less(t, m.LeftEye, SleepThreshold)
	assert.Equal(t, Yawning, state)
}

func TestState_Text(t *testing.T) {
	for _, s := range []State{Yawning, Sleepy, Sad} {
		assert.NotEmpty(t, s.Response(), "response for %q", s)
		assert.NotEmpty(t, s.Status(), "status for %q", s)
	}
	assert.Empty(t, Neutral.Response())
}
