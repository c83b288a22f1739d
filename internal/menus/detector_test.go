package menus

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Arkpointt/gangware-sub001/internal/cv"
)

func writeCatalogue(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "anchors.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write catalogue: %v", err)
	}
	return path
}

func TestLoadCatalogue(t *testing.T) {
	path := writeCatalogue(t, `
menus:
  - name: main_menu
    anchors:
      - name: join_button
        template: main/join.png
        threshold: 0.85
        mode: eq
        roi: {x: 0.1, y: 0.2, w: 0.5, h: 0.3}
      - name: title_logo
        template: main/logo.png
  - name: server_browser
    anchors:
      - name: refresh_button
        template: browser/refresh.png
`)

	menus, err := LoadCatalogue(path, "/assets")
	if err != nil {
		t.Fatalf("LoadCatalogue failed: %v", err)
	}
	if len(menus) != 2 {
		t.Fatalf("Expected 2 menus, got %d", len(menus))
	}
	if menus[0].Name != "main_menu" || menus[1].Name != "server_browser" {
		t.Errorf("Menu order not preserved: %s, %s", menus[0].Name, menus[1].Name)
	}

	join := menus[0].Anchors[0]
	if join.Threshold != 0.85 {
		t.Errorf("Expected threshold 0.85, got %.2f", join.Threshold)
	}
	if join.Mode != "eq" {
		t.Errorf("Expected mode eq, got %s", join.Mode)
	}
	if join.TemplatePath != filepath.Join("/assets", "main/join.png") {
		t.Errorf("Template path not resolved against base dir: %s", join.TemplatePath)
	}
	if join.ROI == nil || join.ROI.W != 0.5 {
		t.Errorf("ROI not parsed: %+v", join.ROI)
	}

	logo := menus[0].Anchors[1]
	if logo.Threshold != defaultAnchorThreshold {
		t.Errorf("Expected default threshold %.2f, got %.2f", defaultAnchorThreshold, logo.Threshold)
	}
	if logo.Mode != "raw" {
		t.Errorf("Expected default mode raw, got %s", logo.Mode)
	}
	if logo.ROI != nil {
		t.Errorf("Expected nil ROI, got %+v", logo.ROI)
	}
}

func TestLoadCatalogueRejectsInvalid(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"empty", "menus: []"},
		{"unnamed menu", "menus:\n  - anchors:\n      - {name: a, template: a.png}"},
		{"unnamed anchor", "menus:\n  - name: m\n    anchors:\n      - {template: a.png}"},
		{"missing template", "menus:\n  - name: m\n    anchors:\n      - {name: a}"},
		{"no anchors", "menus:\n  - name: m"},
		{"bad yaml", "menus: ["},
	}
	for _, tc := range cases {
		path := writeCatalogue(t, tc.content)
		if _, err := LoadCatalogue(path, ""); err == nil {
			t.Errorf("%s: expected error, got none", tc.name)
		}
	}
}

func TestLoadCatalogueMissingFile(t *testing.T) {
	if _, err := LoadCatalogue("/nonexistent/anchors.yaml", ""); err == nil {
		t.Error("Expected error for missing catalogue file")
	}
}

// testDetector builds a detector whose match seam replies with canned scores
// keyed by template path.
func testDetector(catalogue []Menu, scores map[string]float64) *Detector {
	d := NewDetector(catalogue, cv.TierFast, 1.0, nil)
	d.load = func(path string) (*cv.Template, error) {
		return cv.NewTemplateFromImage(path, image.NewGray(image.Rect(0, 0, 16, 16))), nil
	}
	d.match = func(frame *image.Gray, tpl *cv.Template, cfg *cv.MatchConfig) *cv.Match {
		score, ok := scores[tpl.Name]
		if !ok {
			return nil
		}
		return &cv.Match{Confidence: score, Scale: 1.0, LowConfidence: score < cfg.Threshold}
	}
	fixed := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	d.now = func() time.Time { return fixed }
	return d
}

func twoMenuCatalogue() []Menu {
	return []Menu{
		{Name: "main_menu", Anchors: []Anchor{
			{Name: "join_button", TemplatePath: "join.png", Threshold: 0.80, Mode: "raw"},
		}},
		{Name: "server_browser", Anchors: []Anchor{
			{Name: "refresh_button", TemplatePath: "refresh.png", Threshold: 0.80, Mode: "raw"},
		}},
	}
}

func TestDetectPriorityShortCircuit(t *testing.T) {
	// Both anchors clear their thresholds; the first menu in catalogue
	// order must win even though the second scores higher.
	d := testDetector(twoMenuCatalogue(), map[string]float64{
		"join.png":    0.85,
		"refresh.png": 0.99,
	})

	frame := image.NewGray(image.Rect(0, 0, 200, 120))
	sample := d.Detect(frame)
	if !sample.Matched {
		t.Fatal("Expected a matched sample")
	}
	if sample.Menu != "main_menu" || sample.Anchor != "join_button" {
		t.Errorf("Expected main_menu/join_button, got %s/%s", sample.Menu, sample.Anchor)
	}
	if sample.Score != 0.85 {
		t.Errorf("Expected score 0.85, got %.3f", sample.Score)
	}
}

func TestDetectDeterministic(t *testing.T) {
	d := testDetector(twoMenuCatalogue(), map[string]float64{
		"join.png":    0.85,
		"refresh.png": 0.90,
	})
	frame := image.NewGray(image.Rect(0, 0, 200, 120))

	first := d.Detect(frame)
	for i := 0; i < 5; i++ {
		got := d.Detect(frame)
		if got != first {
			t.Fatalf("Detection not deterministic: run %d got %+v, want %+v", i, got, first)
		}
	}
}

func TestDetectBestGuessWhenNothingMatches(t *testing.T) {
	d := testDetector(twoMenuCatalogue(), map[string]float64{
		"join.png":    0.30,
		"refresh.png": 0.55,
	})

	sample := d.Detect(image.NewGray(image.Rect(0, 0, 200, 120)))
	if sample.Matched {
		t.Fatal("Expected no match")
	}
	if sample.Menu != "server_browser" || sample.Anchor != "refresh_button" {
		t.Errorf("Expected best guess server_browser/refresh_button, got %s/%s", sample.Menu, sample.Anchor)
	}
	if sample.Score != 0.55 {
		t.Errorf("Expected best score 0.55, got %.3f", sample.Score)
	}
}

func TestDetectSkipsBrokenTemplate(t *testing.T) {
	d := testDetector(twoMenuCatalogue(), map[string]float64{
		"refresh.png": 0.90,
	})
	loads := 0
	d.load = func(path string) (*cv.Template, error) {
		if path == "join.png" {
			loads++
			return nil, fmt.Errorf("decode %s: %w", path, cv.ErrTemplateNotFound)
		}
		return cv.NewTemplateFromImage(path, image.NewGray(image.Rect(0, 0, 16, 16))), nil
	}

	frame := image.NewGray(image.Rect(0, 0, 200, 120))
	for i := 0; i < 3; i++ {
		sample := d.Detect(frame)
		if !sample.Matched || sample.Menu != "server_browser" {
			t.Fatalf("Expected server_browser match despite broken anchor, got %+v", sample)
		}
	}
	if loads != 1 {
		t.Errorf("Broken template should only be loaded once, got %d attempts", loads)
	}
}

func TestDetectAppliesROICrop(t *testing.T) {
	catalogue := []Menu{{Name: "main_menu", Anchors: []Anchor{{
		Name:         "join_button",
		TemplatePath: "join.png",
		Threshold:    0.80,
		Mode:         "raw",
		ROI:          &FracROI{X: 0.5, Y: 0.5, W: 0.5, H: 0.5},
	}}}}

	var searched image.Rectangle
	d := testDetector(catalogue, nil)
	d.match = func(frame *image.Gray, tpl *cv.Template, cfg *cv.MatchConfig) *cv.Match {
		searched = frame.Bounds()
		return &cv.Match{Confidence: 0.90, Scale: 1.0}
	}

	d.Detect(image.NewGray(image.Rect(0, 0, 400, 200)))
	if searched.Dx() != 200 || searched.Dy() != 100 {
		t.Errorf("Expected 200x100 ROI crop, got %dx%d", searched.Dx(), searched.Dy())
	}
}
