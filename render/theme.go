package render

import (
	"encoding/hex"
	"fmt"
	"image/color"
	"strings"
)

// ============================================================================
// THEME — Figure colours
// ============================================================================

// Theme holds the colours shared by every figure.
type Theme struct {
	Plot   color.NRGBA // plotting area and table cells
	Paper  color.NRGBA // figure background
	Header color.NRGBA // table header fill and notes border
	Text   color.NRGBA
	Grid   color.NRGBA
	Land   color.NRGBA // map fill outside the colour scale
}

// DefaultTheme is the dark theme of the published charts.
func DefaultTheme() Theme {
	return Theme{
		Plot:   color.NRGBA{R: 0x0F, G: 0x0F, B: 0x0F, A: 0xFF},
		Paper:  color.NRGBA{R: 0x23, G: 0x2D, B: 0x3F, A: 0xFF},
		Header: color.NRGBA{R: 0x5C, G: 0x6B, B: 0xC0, A: 0xFF},
		Text:   color.NRGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF},
		Grid:   color.NRGBA{R: 0x5F, G: 0x63, B: 0x6E, A: 0xFF},
		Land:   color.NRGBA{R: 0x1C, G: 0x0A, B: 0x00, A: 0xFF},
	}
}

// NewTheme overrides the default plot, paper and header colours with hex
// values. Empty strings keep the default.
func NewTheme(plot, paper, header string) (Theme, error) {
	t := DefaultTheme()
	for _, c := range []struct {
		hex string
		dst *color.NRGBA
	}{{plot, &t.Plot}, {paper, &t.Paper}, {header, &t.Header}} {
		if strings.TrimSpace(c.hex) == "" {
			continue
		}
		parsed, err := ParseHex(c.hex)
		if err != nil {
			return Theme{}, err
		}
		*c.dst = parsed
	}
	return t, nil
}

// ParseHex parses "#RRGGBB" (the leading # is optional).
func ParseHex(s string) (color.NRGBA, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return color.NRGBA{}, fmt.Errorf("invalid colour %q: expected 6 hex chars", s)
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid colour %q: %w", s, err)
	}
	return color.NRGBA{R: raw[0], G: raw[1], B: raw[2], A: 0xFF}, nil
}

func mustHex(s string, fallback color.NRGBA) color.NRGBA {
	c, err := ParseHex(s)
	if err != nil {
		return fallback
	}
	return c
}
