package gesture

import (
	"sync"
	"time"
)

// Default cooldowns.
const (
	DefaultTemplateCooldown = 2500 * time.Millisecond
	DefaultFaceCooldown     = 3000 * time.Millisecond
	DefaultSpeechCooldown   = 500 * time.Millisecond
)

// Allow reports whether a source last triggered at lastMs may trigger again
// at nowMs. A zero lastMs means the source never fired, so callers whose
// clock can read 0 must track that separately, as Gate does.
func Allow(nowMs, lastMs, cooldownMs int64) bool {
	return lastMs == 0 || nowMs-lastMs >= cooldownMs
}

// Gate is a single cooldown timer shared by every source that must not fire
// more often than once per cooldown.
type Gate struct {
	mu       sync.Mutex
	cooldown time.Duration
	last     int64
	fired    bool
}

// NewGate creates a Gate with the given cooldown.
func NewGate(cooldown time.Duration) *Gate {
	return &Gate{cooldown: cooldown}
}

// TryTrigger checks the cooldown and, when allowed, records nowMs as the
// last trigger in the same step.
func (g *Gate) TryTrigger(nowMs int64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.fired && nowMs-g.last < g.cooldown.Milliseconds() {
		return false
	}
	g.last = nowMs
	g.fired = true
	return true
}

// Cooldown returns the current cooldown.
func (g *Gate) Cooldown() time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.cooldown
}

// SetCooldown changes the cooldown. Negative values are ignored.
func (g *Gate) SetCooldown(d time.Duration) {
	if d < 0 {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cooldown = d
}

// Last returns the time of the last allowed trigger in unix milliseconds.
func (g *Gate) Last() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.last
}

// Reset forgets the last trigger.
func (g *Gate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.last = 0
	g.fired = false
}
