package window

import (
	"errors"

	"github.com/Arkpointt/gangware-sub001/internal/logging"
)

// ErrWindowNotFound is returned when no visible top-level window belongs to
// the target process. This is an expected, recoverable condition: the target
// application may simply not be running, and callers fall back to capturing
// the primary display.
var ErrWindowNotFound = errors.New("window: no visible window for target process")

// candidate is one visible top-level window owned by the target process.
type candidate struct {
	region     Region
	clientArea int
	foreground bool
}

// Resolver locates the target application's window on screen. Resolution is
// idempotent and side-effect-free; the region is recomputed on every call
// because the window may move or resize between polls.
type Resolver struct {
	log *logging.Logger
}

// NewResolver creates a window resolver.
func NewResolver(log *logging.Logger) *Resolver {
	if log == nil {
		log = logging.NewLogger("resolver")
	}
	return &Resolver{log: log}
}

// Resolve finds the window whose owning executable matches processName
// (case-insensitive substring) and returns its outer rectangle corrected for
// per-window DPI. When several windows match, the foreground one wins,
// otherwise the one with the largest client area.
func (r *Resolver) Resolve(processName string) (Region, error) {
	cands, err := enumCandidates(processName)
	if err != nil {
		r.log.DebugWithContext("window enumeration failed", map[string]interface{}{
			"process": processName, "error": err,
		})
		return Region{}, ErrWindowNotFound
	}
	region, ok := pickCandidate(cands)
	if !ok {
		return Region{}, ErrWindowNotFound
	}
	r.log.DebugWithContext("window resolved", map[string]interface{}{
		"process": processName, "region": region.String(), "candidates": len(cands),
	})
	return region, nil
}

// pickCandidate applies the selection order from the resolver contract:
// foreground first, then largest client area.
func pickCandidate(cands []candidate) (Region, bool) {
	best := -1
	bestArea := -1
	for i, c := range cands {
		if c.region.Width <= 0 || c.region.Height <= 0 {
			continue
		}
		if c.foreground {
			return c.region, true
		}
		if c.clientArea > bestArea {
			best = i
			bestArea = c.clientArea
		}
	}
	if best < 0 {
		return Region{}, false
	}
	return cands[best].region, true
}
