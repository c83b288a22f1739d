package cv

import (
	"image"
	"math"
)

// Match is the result of a successful template search. Coordinates are the
// template center in frame space. Confidence is the normalized correlation
// peak in [0,1]. LowConfidence marks a best-guess produced by the relaxed
// retry; such matches are for diagnostic display only and must never drive
// an automated click.
type Match struct {
	CenterX       int
	CenterY       int
	Confidence    float64
	Scale         float64
	LowConfidence bool
}

// MatchConfig configures a template search.
type MatchConfig struct {
	// Threshold is the minimum correlation peak for a committed match.
	Threshold float64
	// Tier selects the ordered scale factors tried against the frame.
	Tier ScaleTier
	// SearchRegion optionally restricts the scan to a sub-rectangle of the
	// frame, in frame coordinates.
	SearchRegion *image.Rectangle
	// MinStdDev is the blank-frame guard: frames whose pixel standard
	// deviation falls below it are skipped without any correlation work.
	MinStdDev float64
	// RelaxedFloor, when positive, enables one retry at this floor after all
	// scales miss Threshold, producing a LowConfidence best-guess.
	RelaxedFloor float64
}

// DefaultMatchConfig returns the settings used by the polling path.
func DefaultMatchConfig() *MatchConfig {
	return &MatchConfig{
		Threshold:    0.80,
		Tier:         TierFast,
		MinStdDev:    1.0,
		RelaxedFloor: 0.15,
	}
}

// Find searches frame for tpl across the configured scale tier and returns
// the correlation peak, or nil when nothing clears the threshold. A nil
// result is a normal, frequent outcome, not an error: callers treat it as
// "not on screen right now".
//
// Scales are tried nearest-to-native first, so the first scale clearing the
// threshold is also the preferred one on ties.
func Find(frame *image.Gray, tpl *Template, config *MatchConfig) *Match {
	if config == nil {
		config = DefaultMatchConfig()
	}
	if frame == nil || tpl == nil {
		return nil
	}

	if config.MinStdDev > 0 && StdDev(frame) < config.MinStdDev {
		// Featureless frame (black load screen, solid fade); correlation
		// against it only produces noise.
		return nil
	}

	search := frame.Bounds()
	if config.SearchRegion != nil {
		search = config.SearchRegion.Intersect(search)
		if search.Empty() {
			return nil
		}
	}

	bestScore := -1.0
	var bestMatch Match

	for _, scale := range config.Tier.Scales() {
		scaled := ResizeGray(tpl.Image(), scale)
		tw, th := scaled.Bounds().Dx(), scaled.Bounds().Dy()
		if tw > search.Dx() || th > search.Dy() {
			continue
		}

		score, loc := correlatePeak(frame, scaled, search)
		if loc == nil {
			continue
		}
		m := Match{
			CenterX:    loc.X + tw/2,
			CenterY:    loc.Y + th/2,
			Confidence: score,
			Scale:      scale,
		}
		if score >= config.Threshold {
			return &m
		}
		if score > bestScore {
			bestScore = score
			bestMatch = m
		}
	}

	// Relaxed retry: report the best candidate seen across all scales when
	// it clears the floor, tagged so it never drives input.
	if config.RelaxedFloor > 0 && bestScore >= config.RelaxedFloor {
		bestMatch.LowConfidence = true
		return &bestMatch
	}
	return nil
}

// correlatePeak scans the search rectangle and returns the location and
// score of the best normalized cross-correlation between frame and template.
// Scores are clamped to [0,1]: anti-correlation carries no meaning for UI
// anchors.
func correlatePeak(frame, tpl *image.Gray, search image.Rectangle) (float64, *image.Point) {
	tw, th := tpl.Bounds().Dx(), tpl.Bounds().Dy()
	n := float64(tw * th)

	// Template statistics are constant across the scan.
	var sumT, sumTT float64
	for y := 0; y < th; y++ {
		row := tpl.Pix[y*tpl.Stride:]
		for x := 0; x < tw; x++ {
			v := float64(row[x])
			sumT += v
			sumTT += v * v
		}
	}
	denomT := math.Sqrt(sumTT - sumT*sumT/n)
	if denomT == 0 {
		// Flat template matches everything equally; treat as no signal.
		return 0, nil
	}

	maxX := search.Max.X - tw
	maxY := search.Max.Y - th

	best := -2.0
	var bestLoc image.Point

	for y := search.Min.Y; y <= maxY; y++ {
		for x := search.Min.X; x <= maxX; x++ {
			var sumF, sumFF, sumFT float64
			for ty := 0; ty < th; ty++ {
				frow := frame.Pix[(y+ty-frame.Bounds().Min.Y)*frame.Stride+(x-frame.Bounds().Min.X):]
				trow := tpl.Pix[ty*tpl.Stride:]
				for tx := 0; tx < tw; tx++ {
					f := float64(frow[tx])
					sumF += f
					sumFF += f * f
					sumFT += f * float64(trow[tx])
				}
			}
			denomF := math.Sqrt(sumFF - sumF*sumF/n)
			if denomF == 0 {
				continue
			}
			corr := (sumFT - sumF*sumT/n) / (denomF * denomT)
			if corr > best {
				best = corr
				bestLoc = image.Point{X: x, Y: y}
			}
		}
	}

	if best <= -2.0 {
		return 0, nil
	}
	if best < 0 {
		best = 0
	} else if best > 1 {
		best = 1
	}
	return best, &bestLoc
}
