package menus

import (
	"image"
	"time"

	"github.com/Arkpointt/gangware-sub001/internal/cv"
	"github.com/Arkpointt/gangware-sub001/internal/logging"
)

// Sample is the outcome of classifying one frame. When Matched is false the
// menu and anchor name the best-scoring candidate seen, reported purely for
// diagnostics and never as a committed state.
type Sample struct {
	Time    time.Time
	Menu    string
	Anchor  string
	Score   float64
	Matched bool
}

// diagnosticFloor keeps the per-anchor best-guess score flowing back even
// when nothing clears its threshold.
const diagnosticFloor = 0.01

// Detector classifies which menu the target application currently displays.
// Classification is a pure function of the input frame: the detector carries
// no state between calls beyond its template cache.
type Detector struct {
	menus     []Menu
	tier      cv.ScaleTier
	minStdDev float64
	log       *logging.Logger

	templates map[string]*cv.Template
	broken    map[string]bool

	// Seams for tests; production uses cv.LoadTemplate / cv.Find.
	load  func(path string) (*cv.Template, error)
	match func(frame *image.Gray, tpl *cv.Template, cfg *cv.MatchConfig) *cv.Match
	now   func() time.Time
}

// NewDetector creates a detector over the given catalogue. Catalogue order
// is the priority order: the first anchor clearing its threshold wins.
func NewDetector(catalogue []Menu, tier cv.ScaleTier, minStdDev float64, log *logging.Logger) *Detector {
	if log == nil {
		log = logging.NewLogger("menus")
	}
	return &Detector{
		menus:     catalogue,
		tier:      tier,
		minStdDev: minStdDev,
		log:       log,
		templates: make(map[string]*cv.Template),
		broken:    make(map[string]bool),
		load:      cv.LoadTemplate,
		match:     cv.Find,
		now:       time.Now,
	}
}

// Menus returns the catalogue in priority order.
func (d *Detector) Menus() []Menu { return d.menus }

// Detect classifies a single frame. Menus are tried in priority order and
// anchors in catalogue order; the first anchor clearing its own threshold
// short-circuits the scan. If none match, the best score seen across every
// anchor is reported with Matched=false.
func (d *Detector) Detect(frame *image.Gray) Sample {
	sample := Sample{Time: d.now()}

	for _, menu := range d.menus {
		for _, anchor := range menu.Anchors {
			score, ok := d.scoreAnchor(frame, anchor)
			if ok {
				sample.Menu = menu.Name
				sample.Anchor = anchor.Name
				sample.Score = score
				sample.Matched = true
				return sample
			}
			if score > sample.Score {
				sample.Menu = menu.Name
				sample.Anchor = anchor.Name
				sample.Score = score
			}
		}
	}
	return sample
}

// scoreAnchor runs one anchor's template against the frame and returns its
// best score plus whether it cleared the anchor's threshold.
func (d *Detector) scoreAnchor(frame *image.Gray, anchor Anchor) (float64, bool) {
	tpl, err := d.template(anchor)
	if err != nil {
		return 0, false
	}

	search := frame
	if anchor.ROI != nil {
		crop := cropFrac(frame, anchor.ROI)
		if crop == nil {
			return 0, false
		}
		search = crop
	}

	searchImg, tplImg := preprocessForMode(anchor.Mode, search, tpl.Image())

	cfg := &cv.MatchConfig{
		Threshold:    anchor.Threshold,
		Tier:         d.tier,
		MinStdDev:    d.minStdDev,
		RelaxedFloor: diagnosticFloor,
	}
	m := d.match(searchImg, cv.NewTemplateFromImage(tpl.Name, tplImg), cfg)
	if m == nil {
		return 0, false
	}
	return m.Confidence, !m.LowConfidence
}

// template returns the decoded template for an anchor, loading and caching
// it on first use. Anchors with missing or corrupt assets are reported once
// and skipped on every later call so a bad asset can never crash the
// polling loop.
func (d *Detector) template(anchor Anchor) (*cv.Template, error) {
	if d.broken[anchor.TemplatePath] {
		return nil, cv.ErrTemplateNotFound
	}
	if tpl, ok := d.templates[anchor.TemplatePath]; ok {
		return tpl, nil
	}
	tpl, err := d.load(anchor.TemplatePath)
	if err != nil {
		d.broken[anchor.TemplatePath] = true
		d.log.ErrorWithContext("anchor template unavailable", err, map[string]interface{}{
			"anchor": anchor.Name, "path": anchor.TemplatePath,
		})
		return nil, err
	}
	d.templates[anchor.TemplatePath] = tpl
	return tpl, nil
}

// cropFrac extracts a fractional ROI from the frame, clamped to frame bounds
// with a minimum usable size.
func cropFrac(frame *image.Gray, roi *FracROI) *image.Gray {
	b := frame.Bounds()
	w, h := b.Dx(), b.Dy()
	x := clampInt(int(roi.X*float64(w)+0.5), 0, w-1)
	y := clampInt(int(roi.Y*float64(h)+0.5), 0, h-1)
	cw := clampInt(int(roi.W*float64(w)+0.5), 2, w-x)
	ch := clampInt(int(roi.H*float64(h)+0.5), 2, h-y)
	if cw < 2 || ch < 2 {
		return nil
	}
	return cv.CropGray(frame, image.Rect(b.Min.X+x, b.Min.Y+y, b.Min.X+x+cw, b.Min.Y+y+ch))
}

// preprocessForMode prepares the frame crop and template the same way so
// correlation compares like with like.
func preprocessForMode(mode string, frame, tpl *image.Gray) (*image.Gray, *image.Gray) {
	switch mode {
	case "eq":
		return cv.EqualizeHist(frame), cv.EqualizeHist(tpl)
	default: // raw
		return cv.Blur3(frame), cv.Blur3(tpl)
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
