package cv

import "strings"

// ScaleTier selects which ordered set of template resize factors a search
// tries. The target UI may render at a different logical resolution than the
// template was captured at, so the matcher retries the template at several
// scales and keeps the first one clearing the confidence threshold.
type ScaleTier int

const (
	// TierFast covers a narrow band around native scale. Used on the hot
	// polling path where latency matters more than breadth.
	TierFast ScaleTier = iota
	// TierFull covers 0.55x-1.65x. Used for calibration and diagnostics.
	TierFull
	// TierServer is tuned for the server browser rows, which rescale more
	// aggressively than the rest of the UI.
	TierServer
)

var fastScales = []float64{1.00, 0.95, 1.05, 0.90, 1.10}

var (
	fullScales   = stepRange(0.55, 1.65, 0.05)
	serverScales = stepRange(0.80, 1.20, 0.05)
)

// Scales returns the tier's resize factors ordered by distance from native
// scale, so the first factor clearing a threshold is also the closest to 1.0.
func (t ScaleTier) Scales() []float64 {
	switch t {
	case TierFull:
		return fullScales
	case TierServer:
		return serverScales
	default:
		return fastScales
	}
}

func (t ScaleTier) String() string {
	switch t {
	case TierFull:
		return "full"
	case TierServer:
		return "server"
	default:
		return "fast"
	}
}

// ParseTier maps a configuration value onto a ScaleTier, defaulting to fast.
func ParseTier(s string) ScaleTier {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "full":
		return TierFull
	case "server":
		return TierServer
	default:
		return TierFast
	}
}

// stepRange builds factors from lo to hi inclusive and orders them by
// distance from 1.0 (nearest first) to satisfy the tie-break rule.
func stepRange(lo, hi, step float64) []float64 {
	var out []float64
	for v := lo; v <= hi+1e-9; v += step {
		// Round to two decimals to keep factors stable across float drift.
		out = append(out, float64(int(v*100+0.5))/100)
	}
	// Insertion sort by |scale-1.0|; the sets are small.
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && dist(out[j]) < dist(out[j-1]); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

func dist(s float64) float64 {
	if s < 1.0 {
		return 1.0 - s
	}
	return s - 1.0
}
