package window

import "fmt"

// Region is the screen rectangle occupied by a window, in physical pixels.
// Width and Height are always positive for a valid region.
type Region struct {
	Left   int
	Top    int
	Width  int
	Height int
}

// Point is a position in screen coordinates.
type Point struct {
	X int
	Y int
}

// Right returns the inclusive right edge of the region.
func (r Region) Right() int { return r.Left + r.Width }

// Bottom returns the inclusive bottom edge of the region.
func (r Region) Bottom() int { return r.Top + r.Height }

// Area returns the pixel area of the region.
func (r Region) Area() int { return r.Width * r.Height }

// Contains reports whether p lies within the region bounds.
func (r Region) Contains(p Point) bool {
	return p.X >= r.Left && p.X <= r.Right() && p.Y >= r.Top && p.Y <= r.Bottom()
}

func (r Region) String() string {
	return fmt.Sprintf("%dx%d@(%d,%d)", r.Width, r.Height, r.Left, r.Top)
}

// Clamp restricts p to the bounds of r, axis by axis. Points already inside
// the region are returned unchanged. Derived input actions pass their targets
// through Clamp so a spurious match near an edge or on another monitor can
// never produce a click outside the target window.
func Clamp(p Point, r Region) Point {
	x := p.X
	if x < r.Left {
		x = r.Left
	} else if x > r.Right() {
		x = r.Right()
	}
	y := p.Y
	if y < r.Top {
		y = r.Top
	} else if y > r.Bottom() {
		y = r.Bottom()
	}
	return Point{X: x, Y: y}
}
