package menus

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FracROI restricts an anchor's search to a fractional sub-rectangle of the
// frame (0..1 on each axis). Fractions survive window resizes where pixel
// rectangles would not.
type FracROI struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	W float64 `yaml:"w"`
	H float64 `yaml:"h"`
}

// Anchor is one recognizable visual feature of a menu: a template plus the
// threshold its correlation score must clear.
type Anchor struct {
	Name         string
	TemplatePath string
	Threshold    float64
	Mode         string // "raw" (blurred) or "eq" (histogram equalized)
	ROI          *FracROI
}

// Menu is a named screen recognized through any one of its anchors.
type Menu struct {
	Name    string
	Anchors []Anchor
}

// anchorDef mirrors one anchor entry in the YAML catalogue file.
type anchorDef struct {
	Name      string   `yaml:"name"`
	Template  string   `yaml:"template"`
	Threshold float64  `yaml:"threshold"`
	Mode      string   `yaml:"mode,omitempty"`
	ROI       *FracROI `yaml:"roi,omitempty"`
}

type menuDef struct {
	Name    string      `yaml:"name"`
	Anchors []anchorDef `yaml:"anchors"`
}

type catalogueFile struct {
	Menus []menuDef `yaml:"menus"`
}

const defaultAnchorThreshold = 0.80

// LoadCatalogue reads menu definitions from a YAML file. Menu order in the
// file is the detection priority order. Template paths are resolved relative
// to baseDir.
func LoadCatalogue(path, baseDir string) ([]Menu, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalogue %s: %w", path, err)
	}

	var file catalogueFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to unmarshal catalogue YAML: %w", err)
	}
	if len(file.Menus) == 0 {
		return nil, fmt.Errorf("catalogue %s defines no menus", path)
	}

	menus := make([]Menu, 0, len(file.Menus))
	for i, md := range file.Menus {
		if md.Name == "" {
			return nil, fmt.Errorf("menu %d: name cannot be empty", i+1)
		}
		menu := Menu{Name: md.Name}
		for j, ad := range md.Anchors {
			if ad.Name == "" {
				return nil, fmt.Errorf("menu %s: anchor %d: name cannot be empty", md.Name, j+1)
			}
			if ad.Template == "" {
				return nil, fmt.Errorf("menu %s: anchor %s: template cannot be empty", md.Name, ad.Name)
			}
			anchor := Anchor{
				Name:         ad.Name,
				TemplatePath: filepath.Join(baseDir, ad.Template),
				Threshold:    ad.Threshold,
				Mode:         ad.Mode,
				ROI:          ad.ROI,
			}
			if anchor.Threshold == 0 {
				anchor.Threshold = defaultAnchorThreshold
			}
			if anchor.Mode == "" {
				anchor.Mode = "raw"
			}
			menu.Anchors = append(menu.Anchors, anchor)
		}
		if len(menu.Anchors) == 0 {
			return nil, fmt.Errorf("menu %s has no anchors", md.Name)
		}
		menus = append(menus, menu)
	}
	return menus, nil
}
