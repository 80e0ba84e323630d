package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/isyarat/internal/capture"
	"github.com/ayusman/isyarat/internal/detector"
	"github.com/ayusman/isyarat/internal/gesture"
	"github.com/ayusman/isyarat/internal/speech"
)

func TestStart_WithoutCamera(t *testing.T) {
	a := New(Config{})

	assert.ErrorIs(t, a.Start(), ErrNoCamera)
	assert.False(t, a.IsRunning())
	a.Stop()
}

func TestPipeline_DetectsGesture(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping pipeline test in short mode")
	}

	frames := capture.MovingSquareFrames(10, 320, 240, 20)
	defer func() {
		for _, f := range frames {
			f.Close()
		}
	}()

	det := detector.NewMockDetector()
	det.SetHands(detector.OpenPalmFrame())

	out := &spoken{}
	a := New(Config{
		Speech:   speech.NewDispatcher(gesture.DefaultSpeechCooldown, "", out),
		Camera:   capture.NewMockCamera(frames, true),
		Detector: det,
	})
	a.Library().Add(gesture.Template{
		ID:        "wave",
		Name:      "wave",
		Response:  "Halo",
		Cooldown:  gesture.DefaultTemplateCooldown.Milliseconds(),
		Landmarks: detector.OpenPalmFrame().Normalize(),
	})

	events, cancel := a.Subscribe()
	defer cancel()

	require.NoError(t, a.Start())
	require.NoError(t, a.Start(), "starting twice is a no-op")
	assert.True(t, a.IsRunning())

	timeout := time.After(5 * time.Second)
	var triggered Event
wait:
	for {
		select {
		case e := <-events:
			if e.Kind == EventTriggered {
				triggered = e
				break wait
			}
		case <-timeout:
			t.Fatal("timed out waiting for a triggered event")
		}
	}

	a.Stop()
	assert.False(t, a.IsRunning())

	assert.Equal(t, "wave", triggered.Subject)
	a.Speech().Wait()
	assert.Equal(t, []string{"Halo"}, out.texts())

	jpeg, seq := a.Preview().Latest()
	assert.NotEmpty(t, jpeg, "the pipeline should publish preview frames")
	assert.NotZero(t, seq)
}
