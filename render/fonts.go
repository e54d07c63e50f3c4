package render

import (
	"fmt"
	"os"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

// Fonts parses one TrueType font and hands out faces by size.
type Fonts struct {
	font *truetype.Font
}

// LoadFonts parses the TTF at path, or the embedded Go font when path is
// empty.
func LoadFonts(path string) (*Fonts, error) {
	data := goregular.TTF
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read font file: %w", err)
		}
		data = b
	}
	parsed, err := truetype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TTF: %w", err)
	}
	return &Fonts{font: parsed}, nil
}

// Face returns a face of the given point size at 72 DPI (1pt = 1px).
func (f *Fonts) Face(size float64) font.Face {
	return truetype.NewFace(f.font, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
}
