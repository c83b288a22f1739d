package cv

import (
	"errors"
	"fmt"
	"image"

	"github.com/kbinani/screenshot"

	"github.com/Arkpointt/gangware-sub001/internal/logging"
	"github.com/Arkpointt/gangware-sub001/internal/window"
)

// ErrCaptureFailed indicates the OS capture call failed, for example when
// the requested rectangle lies partially off the virtual desktop. Recoverable:
// callers retry next cycle or fall back to the primary display.
var ErrCaptureFailed = errors.New("cv: screen capture failed")

// Capturer grabs pixel data for the matcher. Frames are owned by the caller
// that captured them and are never mutated downstream.
type Capturer interface {
	CaptureRegion(r window.Region) (*image.Gray, error)
	CapturePrimary() (*image.Gray, error)
}

// ScreenCapture captures screen pixels and converts them to the grayscale
// representation the correlation matcher expects.
type ScreenCapture struct {
	log *logging.Logger
}

// NewScreenCapture creates a screen capturer.
func NewScreenCapture(log *logging.Logger) *ScreenCapture {
	if log == nil {
		log = logging.NewLogger("capture")
	}
	return &ScreenCapture{log: log}
}

// CaptureRegion grabs exactly the requested rectangle.
func (c *ScreenCapture) CaptureRegion(r window.Region) (*image.Gray, error) {
	if r.Width <= 0 || r.Height <= 0 {
		return nil, fmt.Errorf("%w: invalid region %s", ErrCaptureFailed, r)
	}
	rect := image.Rect(r.Left, r.Top, r.Left+r.Width, r.Top+r.Height)
	img, err := screenshot.CaptureRect(rect)
	if err != nil {
		c.log.DebugWithContext("region capture failed", map[string]interface{}{
			"region": r.String(), "error": err,
		})
		return nil, fmt.Errorf("%w: %v", ErrCaptureFailed, err)
	}
	return ToGray(img), nil
}

// CapturePrimary grabs the primary display. This is the fallback path when
// the target window cannot be resolved.
func (c *ScreenCapture) CapturePrimary() (*image.Gray, error) {
	if screenshot.NumActiveDisplays() == 0 {
		return nil, fmt.Errorf("%w: no active displays", ErrCaptureFailed)
	}
	bounds := screenshot.GetDisplayBounds(0)
	img, err := screenshot.CaptureRect(bounds)
	if err != nil {
		c.log.DebugWithContext("primary capture failed", map[string]interface{}{"error": err})
		return nil, fmt.Errorf("%w: %v", ErrCaptureFailed, err)
	}
	return ToGray(img), nil
}

// PrimaryRegion returns the primary display bounds as a window region, so the
// fallback path can still clamp derived input coordinates.
func PrimaryRegion() (window.Region, bool) {
	if screenshot.NumActiveDisplays() == 0 {
		return window.Region{}, false
	}
	b := screenshot.GetDisplayBounds(0)
	return window.Region{Left: b.Min.X, Top: b.Min.Y, Width: b.Dx(), Height: b.Dy()}, true
}
