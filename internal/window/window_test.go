package window

import "testing"

func TestClampInsideIsIdentity(t *testing.T) {
	r := Region{Left: 100, Top: 50, Width: 800, Height: 600}

	points := []Point{
		{X: 100, Y: 50},   // top-left corner
		{X: 900, Y: 650},  // bottom-right corner (inclusive)
		{X: 500, Y: 300},  // interior
		{X: 100, Y: 650},  // edge
	}

	for _, p := range points {
		got := Clamp(p, r)
		if got != p {
			t.Errorf("Clamp(%v) = %v, want unchanged", p, got)
		}
		// Idempotence: clamping a clamped point changes nothing
		if again := Clamp(got, r); again != got {
			t.Errorf("Clamp not idempotent: %v -> %v", got, again)
		}
	}
}

func TestClampOutsidePoints(t *testing.T) {
	r := Region{Left: 100, Top: 50, Width: 800, Height: 600}

	tests := []struct {
		in   Point
		want Point
	}{
		{Point{X: 50, Y: 900}, Point{X: 100, Y: 650}},
		{Point{X: -10, Y: -10}, Point{X: 100, Y: 50}},
		{Point{X: 5000, Y: 300}, Point{X: 900, Y: 300}},
		{Point{X: 500, Y: 10000}, Point{X: 500, Y: 650}},
		{Point{X: 2000, Y: 2000}, Point{X: 900, Y: 650}},
	}

	for _, tt := range tests {
		got := Clamp(tt.in, r)
		if got != tt.want {
			t.Errorf("Clamp(%v) = %v, want %v", tt.in, got, tt.want)
		}
		if !r.Contains(got) {
			t.Errorf("Clamp(%v) = %v lies outside region %v", tt.in, got, r)
		}
	}
}

func TestClampResultAlwaysInBounds(t *testing.T) {
	regions := []Region{
		{Left: 0, Top: 0, Width: 1920, Height: 1080},
		{Left: -1920, Top: 0, Width: 1920, Height: 1080}, // monitor left of primary
		{Left: 100, Top: 50, Width: 1, Height: 1},
	}
	points := []Point{
		{X: -5000, Y: -5000}, {X: 0, Y: 0}, {X: 960, Y: 540}, {X: 99999, Y: 99999},
	}

	for _, r := range regions {
		for _, p := range points {
			got := Clamp(p, r)
			if got.X < r.Left || got.X > r.Right() || got.Y < r.Top || got.Y > r.Bottom() {
				t.Errorf("Clamp(%v, %v) = %v out of bounds", p, r, got)
			}
		}
	}
}

func TestPickCandidatePrefersForeground(t *testing.T) {
	small := Region{Left: 0, Top: 0, Width: 640, Height: 480}
	large := Region{Left: 0, Top: 0, Width: 2560, Height: 1440}

	cands := []candidate{
		{region: large, clientArea: large.Area()},
		{region: small, clientArea: small.Area(), foreground: true},
	}
	got, ok := pickCandidate(cands)
	if !ok {
		t.Fatal("expected a candidate")
	}
	if got != small {
		t.Errorf("got %v, want foreground window %v", got, small)
	}
}

func TestPickCandidateFallsBackToLargestClientArea(t *testing.T) {
	small := Region{Left: 0, Top: 0, Width: 640, Height: 480}
	large := Region{Left: 100, Top: 100, Width: 1920, Height: 1080}

	cands := []candidate{
		{region: small, clientArea: small.Area()},
		{region: large, clientArea: large.Area()},
	}
	got, ok := pickCandidate(cands)
	if !ok {
		t.Fatal("expected a candidate")
	}
	if got != large {
		t.Errorf("got %v, want largest window %v", got, large)
	}
}

func TestPickCandidateRejectsDegenerate(t *testing.T) {
	cands := []candidate{
		{region: Region{Left: 0, Top: 0, Width: 0, Height: 0}},
		{region: Region{Left: 0, Top: 0, Width: -5, Height: 100}},
	}
	if _, ok := pickCandidate(cands); ok {
		t.Error("degenerate regions must not be selected")
	}
	if _, ok := pickCandidate(nil); ok {
		t.Error("empty candidate list must not resolve")
	}
}
