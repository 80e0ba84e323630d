// Package gesture provides gesture templates, recording and matching.
package gesture

import (
	"math"
	"sync"

	"github.com/ayusman/isyarat/internal/detector"
)

// DefaultSensitivity is the distance below which a match is accepted.
const DefaultSensitivity = 3.0

// Match is the nearest template for a frame and its distance.
type Match struct {
	Template Template
	Distance float64
}

// Distance is the L1 distance between two normalized frames: the sum of
// |dx| + |dy| over all 21 landmarks.
func Distance(a, b detector.HandFrame) float64 {
	var sum float64
	for i := range a {
		sum += math.Abs(a[i].X-b[i].X) + math.Abs(a[i].Y-b[i].Y)
	}
	return sum
}

// Matcher scores normalized frames against templates. Smaller thresholds
// are stricter.
type Matcher struct {
	mu        sync.RWMutex
	threshold float64
}

// NewMatcher creates a Matcher. A non-positive threshold selects
// DefaultSensitivity.
func NewMatcher(threshold float64) *Matcher {
	if threshold <= 0 {
		threshold = DefaultSensitivity
	}
	return &Matcher{threshold: threshold}
}

// Threshold returns the current acceptance threshold.
func (m *Matcher) Threshold() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.threshold
}

// SetThreshold changes the acceptance threshold.
// Values less than or equal to 0 are ignored.
func (m *Matcher) SetThreshold(threshold float64) {
	if threshold <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.threshold = threshold
}

// Best returns the template nearest to frame regardless of threshold.
// Templates are visited in order and the first strict minimum wins.
func (m *Matcher) Best(frame detector.HandFrame, templates []Template) (Match, bool) {
	best := Match{Distance: math.Inf(1)}
	found := false

	for _, t := range templates {
		d := Distance(t.Landmarks, frame)
		if d < best.Distance {
			best = Match{Template: t, Distance: d}
			found = true
		}
	}

	return best, found
}

// Match returns the nearest template if its distance is below the threshold.
// An empty template list or a distant best are both reported as no match.
func (m *Matcher) Match(frame detector.HandFrame, templates []Template) (Match, bool) {
	best, ok := m.Best(frame, templates)
	if !ok || best.Distance >= m.Threshold() {
		return best, false
	}
	return best, true
}
