package cv

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
)

// ErrTemplateNotFound indicates a template asset is missing or undecodable.
// This is a load-time setup problem surfaced to the calibration layer, fatal
// for that template only, and distinct from a runtime non-match.
var ErrTemplateNotFound = errors.New("cv: template not found")

// Template is a decoded reference image searched for inside captured frames.
// Templates are long-lived: loaded once by the caller and reused across many
// detection cycles.
type Template struct {
	Name string
	Path string
	gray *image.Gray
}

// LoadTemplate decodes the image file at path into a grayscale template.
func LoadTemplate(path string) (*Template, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrTemplateNotFound, path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: decode: %v", ErrTemplateNotFound, path, err)
	}
	g := ToGray(img)
	if g.Bounds().Dx() < minTemplateDim || g.Bounds().Dy() < minTemplateDim {
		return nil, fmt.Errorf("%w: %s: template %dx%d below minimum size",
			ErrTemplateNotFound, path, g.Bounds().Dx(), g.Bounds().Dy())
	}
	return &Template{Name: templateName(path), Path: path, gray: g}, nil
}

// NewTemplateFromImage builds a template from an already-decoded image.
// Used by tests and by calibration captures that never touch disk.
func NewTemplateFromImage(name string, img image.Image) *Template {
	return &Template{Name: name, gray: ToGray(img)}
}

// Image exposes the decoded grayscale pixels.
func (t *Template) Image() *image.Gray { return t.gray }

// Width returns the template's native width in pixels.
func (t *Template) Width() int { return t.gray.Bounds().Dx() }

// Height returns the template's native height in pixels.
func (t *Template) Height() int { return t.gray.Bounds().Dy() }

func templateName(path string) string {
	base := path
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' || path[i] == '\\' {
			base = path[i+1:]
			break
		}
	}
	for i := len(base) - 1; i >= 0; i-- {
		if base[i] == '.' {
			return base[:i]
		}
	}
	return base
}
