package gesture

import (
	"math"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/ayusman/isyarat/internal/detector"
)

func TestAutoName(t *testing.T) {
	tests := []struct {
		name string
		pose detector.HandFrame
		want string
	}{
		{"open palm", detector.OpenPalmFrame(), "open_palm"},
		{"fist", detector.FistFrame(), "fist"},
		{"thumbs up", detector.ThumbsUpFrame(), "1_fingers"},
		{"peace", detector.PeaceFrame(), "2_fingers"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			normalized := tt.pose.Normalize()
			if got := AutoName(normalized[:]); got != tt.want {
				t.Errorf("AutoName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAutoName_FourFingers(t *testing.T) {
	pose := detector.OpenPalmFrame()
	pose[detector.PinkyTip] = detector.Point{X: 0.37, Y: 0.65} // below pinky PIP

	normalized := pose.Normalize()
	if got := AutoName(normalized[:]); got != "4_fingers" {
		t.Errorf("AutoName() = %q, want 4_fingers", got)
	}
}

func TestAutoName_EqualHeightIsNotExtended(t *testing.T) {
	pose := detector.PeaceFrame()
	pose[detector.MiddleTip].Y = pose[detector.MiddlePIP].Y

	normalized := pose.Normalize()
	if got := AutoName(normalized[:]); got != "1_fingers" {
		t.Errorf("AutoName() = %q, want 1_fingers", got)
	}
}

func TestAutoName_Fallback(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)
	want := "gesture_" + strconv.FormatInt(now.UnixMilli(), 36)

	t.Run("too few points", func(t *testing.T) {
		if got := autoName(make([]detector.Point, 5), now); got != want {
			t.Errorf("autoName() = %q, want %q", got, want)
		}
	})

	t.Run("nil input", func(t *testing.T) {
		if got := autoName(nil, now); got != want {
			t.Errorf("autoName() = %q, want %q", got, want)
		}
	})

	t.Run("nan coordinates", func(t *testing.T) {
		points := make([]detector.Point, detector.NumLandmarks)
		points[detector.IndexTip].Y = math.NaN()
		if got := autoName(points, now); got != want {
			t.Errorf("autoName() = %q, want %q", got, want)
		}
	})

	t.Run("public helper uses current time", func(t *testing.T) {
		if got := AutoName(nil); !strings.HasPrefix(got, "gesture_") {
			t.Errorf("AutoName(nil) = %q, want gesture_ prefix", got)
		}
	})
}
