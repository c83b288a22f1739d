package detect

import (
	"time"

	"github.com/Arkpointt/gangware-sub001/internal/menus"
)

// Default suppression tuning. A sample is emitted when the classification
// meaningfully changes or when the heartbeat interval elapses with no change.
const (
	DefaultScoreDelta = 0.05
	DefaultHeartbeat  = 2 * time.Second
)

// Suppressor decides which classification samples are worth reporting.
// Between changes it stays quiet except for a periodic heartbeat, so a
// stable screen produces a trickle of output instead of a flood.
type Suppressor struct {
	scoreDelta float64
	heartbeat  time.Duration

	last     *menus.Sample
	lastEmit time.Time

	now func() time.Time
}

// NewSuppressor creates a suppressor. Non-positive arguments fall back to
// the package defaults.
func NewSuppressor(scoreDelta float64, heartbeat time.Duration) *Suppressor {
	if scoreDelta <= 0 {
		scoreDelta = DefaultScoreDelta
	}
	if heartbeat <= 0 {
		heartbeat = DefaultHeartbeat
	}
	return &Suppressor{
		scoreDelta: scoreDelta,
		heartbeat:  heartbeat,
		now:        time.Now,
	}
}

// ShouldEmit reports whether the sample should be surfaced. The first sample
// is always emitted. After that a sample passes when the menu, anchor, or
// matched flag changed, when the score improved by at least the configured
// delta, or when the heartbeat interval elapsed since the last emission.
func (s *Suppressor) ShouldEmit(sample menus.Sample) bool {
	now := s.now()

	if s.last == nil {
		s.record(sample, now)
		return true
	}

	changed := sample.Menu != s.last.Menu ||
		sample.Anchor != s.last.Anchor ||
		sample.Matched != s.last.Matched ||
		sample.Score >= s.last.Score+s.scoreDelta

	if changed || now.Sub(s.lastEmit) >= s.heartbeat {
		s.record(sample, now)
		return true
	}
	return false
}

// Reset clears history so the next sample is emitted unconditionally.
func (s *Suppressor) Reset() {
	s.last = nil
	s.lastEmit = time.Time{}
}

func (s *Suppressor) record(sample menus.Sample, now time.Time) {
	copied := sample
	s.last = &copied
	s.lastEmit = now
}
