package cv

import (
	"testing"

	"github.com/Arkpointt/gangware-sub001/internal/window"
)

// TestPrimaryCapture grabs one frame from the primary display. Needs a real
// desktop session, so it is skipped in short mode and on headless machines.
func TestPrimaryCapture(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping screen capture test in short mode")
	}
	primary, ok := PrimaryRegion()
	if !ok {
		t.Skip("No active display found")
	}

	capture := NewScreenCapture(nil)
	frame, err := capture.CapturePrimary()
	if err != nil {
		t.Fatalf("Failed to capture primary display: %v", err)
	}
	if frame == nil {
		t.Fatal("Captured frame is nil")
	}

	bounds := frame.Bounds()
	t.Logf("Captured %dx%d (display %s)", bounds.Dx(), bounds.Dy(), primary)
	if bounds.Dx() != primary.Width || bounds.Dy() != primary.Height {
		t.Errorf("Frame size mismatch: expected %dx%d, got %dx%d",
			primary.Width, primary.Height, bounds.Dx(), bounds.Dy())
	}
}

// TestRegionCapture grabs a small sub-region of the primary display.
func TestRegionCapture(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping screen capture test in short mode")
	}
	primary, ok := PrimaryRegion()
	if !ok || primary.Width < 200 || primary.Height < 200 {
		t.Skip("No usable display found")
	}

	capture := NewScreenCapture(nil)
	region := window.Region{Left: primary.Left + 50, Top: primary.Top + 50, Width: 100, Height: 100}
	frame, err := capture.CaptureRegion(region)
	if err != nil {
		t.Fatalf("Failed to capture region: %v", err)
	}

	bounds := frame.Bounds()
	if bounds.Dx() != 100 || bounds.Dy() != 100 {
		t.Errorf("Expected 100x100 frame, got %dx%d", bounds.Dx(), bounds.Dy())
	}
}
