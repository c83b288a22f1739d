package cv

import (
	"image"
	"math"

	"github.com/nfnt/resize"
)

// minTemplateDim is the smallest usable template edge; anything smaller
// produces meaningless correlation peaks.
const minTemplateDim = 8

// ToGray converts any decoded image to 8-bit grayscale using the standard
// luminance weights.
func ToGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	bounds := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))

	if rgba, ok := img.(*image.RGBA); ok {
		// Fast path for capture output: walk the pixel buffer directly.
		for y := 0; y < bounds.Dy(); y++ {
			src := rgba.Pix[y*rgba.Stride:]
			dst := gray.Pix[y*gray.Stride:]
			for x := 0; x < bounds.Dx(); x++ {
				i := x * 4
				dst[x] = uint8((int(src[i])*299 + int(src[i+1])*587 + int(src[i+2])*114) / 1000)
			}
		}
		return gray
	}

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			v := (int(r>>8)*299 + int(g>>8)*587 + int(b>>8)*114) / 1000
			gray.Pix[(y-bounds.Min.Y)*gray.Stride+(x-bounds.Min.X)] = uint8(v)
		}
	}
	return gray
}

// StdDev returns the standard deviation of the frame's pixel values. Frames
// with near-zero deviation are blank or loading screens and are skipped
// before any correlation work.
func StdDev(img *image.Gray) float64 {
	bounds := img.Bounds()
	n := bounds.Dx() * bounds.Dy()
	if n == 0 {
		return 0
	}
	var sum, sumSq float64
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		row := img.Pix[(y-bounds.Min.Y)*img.Stride:]
		for x := 0; x < bounds.Dx(); x++ {
			v := float64(row[x])
			sum += v
			sumSq += v * v
		}
	}
	mean := sum / float64(n)
	variance := sumSq/float64(n) - mean*mean
	if variance < 0 {
		return 0
	}
	return math.Sqrt(variance)
}

// ResizeGray rescales a template by the given factor, clamped to the minimum
// template size. Downscaling uses bilinear, upscaling bicubic.
func ResizeGray(g *image.Gray, scale float64) *image.Gray {
	if math.Abs(scale-1.0) < 1e-6 {
		return g
	}
	w := int(float64(g.Bounds().Dx())*scale + 0.5)
	h := int(float64(g.Bounds().Dy())*scale + 0.5)
	if w < minTemplateDim {
		w = minTemplateDim
	}
	if h < minTemplateDim {
		h = minTemplateDim
	}
	interp := resize.Bilinear
	if scale > 1.0 {
		interp = resize.Bicubic
	}
	out := resize.Resize(uint(w), uint(h), g, interp)
	if gg, ok := out.(*image.Gray); ok {
		return gg
	}
	return ToGray(out)
}

// Blur3 applies a 3x3 box blur, denoising the frame slightly before
// correlation. Mirrors the light blur applied to anchor crops.
func Blur3(g *image.Gray) *image.Gray {
	bounds := g.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var sum, cnt int
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					nx, ny := x+dx, y+dy
					if nx < 0 || ny < 0 || nx >= w || ny >= h {
						continue
					}
					sum += int(g.Pix[ny*g.Stride+nx])
					cnt++
				}
			}
			out.Pix[y*out.Stride+x] = uint8(sum / cnt)
		}
	}
	return out
}

// EqualizeHist performs global histogram equalization, improving match
// stability under the game's day/night illumination swings.
func EqualizeHist(g *image.Gray) *image.Gray {
	bounds := g.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	n := w * h
	if n == 0 {
		return g
	}

	var hist [256]int
	for y := 0; y < h; y++ {
		row := g.Pix[y*g.Stride:]
		for x := 0; x < w; x++ {
			hist[row[x]]++
		}
	}

	var lut [256]uint8
	cum := 0
	for i := 0; i < 256; i++ {
		cum += hist[i]
		lut[i] = uint8((cum*255 + n/2) / n)
	}

	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		src := g.Pix[y*g.Stride:]
		dst := out.Pix[y*out.Stride:]
		for x := 0; x < w; x++ {
			dst[x] = lut[src[x]]
		}
	}
	return out
}

// CropGray extracts rect (in frame coordinates) as a new image. The source is
// never mutated; frames are treated as immutable once captured.
func CropGray(g *image.Gray, rect image.Rectangle) *image.Gray {
	rect = rect.Intersect(g.Bounds())
	out := image.NewGray(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	for y := 0; y < rect.Dy(); y++ {
		src := g.Pix[(rect.Min.Y+y-g.Bounds().Min.Y)*g.Stride+(rect.Min.X-g.Bounds().Min.X):]
		copy(out.Pix[y*out.Stride:y*out.Stride+rect.Dx()], src[:rect.Dx()])
	}
	return out
}
