package gesture

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ayusman/isyarat/internal/detector"
)

func templateFor(id string, pose detector.HandFrame) Template {
	return Template{
		ID:        id,
		Name:      id,
		Response:  "hello " + id,
		Cooldown:  1000,
		Landmarks: pose.Normalize(),
	}
}

func TestMatcher_Match(t *testing.T) {
	matcher := NewMatcher(DefaultSensitivity)
	templates := []Template{
		templateFor("fist", detector.FistFrame()),
		templateFor("open", detector.OpenPalmFrame()),
	}

	match, ok := matcher.Match(detector.OpenPalmFrame().Normalize(), templates)
	if !ok {
		t.Fatal("expected open palm to match")
	}
	if match.Template.ID != "open" {
		t.Errorf("expected match for 'open' template, got %q", match.Template.ID)
	}
	if match.Distance != 0 {
		t.Errorf("expected distance 0 for identical pose, got %f", match.Distance)
	}
}

func TestMatcher_MatchTranslatedInput(t *testing.T) {
	matcher := NewMatcher(DefaultSensitivity)
	templates := []Template{templateFor("peace", detector.PeaceFrame())}

	moved := detector.PeaceFrame().Translate(detector.Point{X: 0.2, Y: -0.1})
	match, ok := matcher.Match(moved.Normalize(), templates)

	if !ok {
		t.Fatal("expected translated pose to match")
	}
	assert.InDelta(t, 0, match.Distance, 1e-9)
}

func TestMatcher_NoMatch(t *testing.T) {
	t.Run("empty template list", func(t *testing.T) {
		matcher := NewMatcher(DefaultSensitivity)
		if _, ok := matcher.Match(detector.FistFrame().Normalize(), nil); ok {
			t.Error("expected no match with no templates")
		}
	})

	t.Run("best distance above threshold", func(t *testing.T) {
		templates := []Template{templateFor("fist", detector.FistFrame())}
		input := detector.OpenPalmFrame().Normalize()

		d := Distance(templates[0].Landmarks, input)
		matcher := NewMatcher(d / 2)

		best, ok := matcher.Match(input, templates)
		if ok {
			t.Errorf("expected no match with threshold %f and distance %f", matcher.Threshold(), d)
		}
		if best.Template.ID != "fist" {
			t.Errorf("expected best candidate to still be reported, got %q", best.Template.ID)
		}
	})

	t.Run("distance equal to threshold is rejected", func(t *testing.T) {
		templates := []Template{templateFor("fist", detector.FistFrame())}
		input := detector.ThumbsUpFrame().Normalize()
		d := Distance(templates[0].Landmarks, input)

		if _, ok := NewMatcher(d).Match(input, templates); ok {
			t.Error("expected distance == threshold to be rejected")
		}
	})
}

func TestMatcher_TieGoesToFirstTemplate(t *testing.T) {
	matcher := NewMatcher(DefaultSensitivity)
	templates := []Template{
		templateFor("first", detector.PeaceFrame()),
		templateFor("second", detector.PeaceFrame()),
	}

	match, ok := matcher.Match(detector.PeaceFrame().Normalize(), templates)
	if !ok {
		t.Fatal("expected a match")
	}
	if match.Template.ID != "first" {
		t.Errorf("expected tie to go to 'first', got %q", match.Template.ID)
	}
}

func TestMatcher_Threshold(t *testing.T) {
	tests := []struct {
		name    string
		initial float64
		set     float64
		want    float64
	}{
		{"default on zero", 0, 0, DefaultSensitivity},
		{"default on negative", -1, 0, DefaultSensitivity},
		{"custom", 1.5, 0, 1.5},
		{"set overrides", 1.5, 4, 4},
		{"set ignores negative", 1.5, -2, 1.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMatcher(tt.initial)
			if tt.set != 0 {
				m.SetThreshold(tt.set)
			}
			if got := m.Threshold(); got != tt.want {
				t.Errorf("Threshold() = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestDistance(t *testing.T) {
	t.Run("identical frames", func(t *testing.T) {
		f := detector.OpenPalmFrame().Normalize()
		if d := Distance(f, f); d != 0 {
			t.Errorf("expected distance 0, got %f", d)
		}
	})

	t.Run("l1 over coordinates", func(t *testing.T) {
		var a, b detector.HandFrame
		b[detector.IndexTip] = detector.Point{X: 0.5, Y: -0.25}
		b[detector.PinkyTip] = detector.Point{X: -1, Y: 0}

		assert.InDelta(t, 1.75, Distance(a, b), 1e-12)
	})

	t.Run("symmetric", func(t *testing.T) {
		poses := []detector.HandFrame{
			detector.OpenPalmFrame().Normalize(),
			detector.FistFrame().Normalize(),
			detector.PeaceFrame().Normalize(),
			detector.ThumbsUpFrame().Normalize(),
		}
		for i := range poses {
			for j := range poses {
				assert.Equal(t, Distance(poses[i], poses[j]), Distance(poses[j], poses[i]))
			}
		}
	})
}
