package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/fogleman/gg"
	"github.com/paulmach/orb"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"

	"github.com/spektr-org/marriagestats/dataset"
	"github.com/spektr-org/marriagestats/engine"
)

// ============================================================================
// MAP RENDERER — engine.MapConfig + boundaries → choropleth PNG
// ============================================================================
// Regions are projected equirectangularly (longitude scaled by the cosine of
// the mid latitude) and filled from a Kindlmann colour map clamped to the
// configured domain. The colour bar sits on the left edge.
// ============================================================================

// ErrUnknownFeature is returned when a boundary feature has no value.
var ErrUnknownFeature = errors.New("boundary feature without aggregate row")

// Map layout in pixels.
const (
	MapWidth       = 1280
	MapHeight      = 720
	mapTop         = 60
	mapBottom      = 60
	mapLeft        = 200
	mapRight       = 40
	colorbarX      = 70
	colorbarWidth  = 28
	colorbarMargin = 110
)

// MapRenderer draws choropleth maps.
type MapRenderer struct {
	Theme  Theme
	Fonts  *Fonts
	Width  int
	Height int
}

// NewMapRenderer returns a renderer with the default map size.
func NewMapRenderer(theme Theme, fonts *Fonts) *MapRenderer {
	return &MapRenderer{Theme: theme, Fonts: fonts, Width: MapWidth, Height: MapHeight}
}

// Render draws the map and writes it as a PNG to path.
func (r *MapRenderer) Render(cfg *engine.MapConfig, boundaries *dataset.Boundaries, path string) error {
	img, err := r.Draw(cfg, boundaries)
	if err != nil {
		return err
	}
	if err := gg.SavePNG(path, img); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Draw renders the map to an image. Every boundary feature must have a
// value in cfg.Values.
func (r *MapRenderer) Draw(cfg *engine.MapConfig, boundaries *dataset.Boundaries) (image.Image, error) {
	if cfg == nil || boundaries == nil || len(boundaries.Features) == 0 {
		return nil, ErrEmptyFigure
	}
	for _, name := range boundaries.Names() {
		if _, ok := cfg.Values[name]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownFeature, name)
		}
	}

	cmap := newColorScale(cfg.Domain)

	dc := gg.NewContext(r.Width, r.Height)
	dc.SetColor(r.Theme.Paper)
	dc.Clear()

	// ocean / frame
	proj := newProjection(boundaries.Bound(), mapLeft, mapTop, float64(r.Width-mapLeft-mapRight), float64(r.Height-mapTop-mapBottom))
	dc.SetColor(r.Theme.Plot)
	dc.DrawRectangle(mapLeft, mapTop, float64(r.Width-mapLeft-mapRight), float64(r.Height-mapTop-mapBottom))
	dc.FillPreserve()
	dc.SetColor(r.Theme.Text)
	dc.SetLineWidth(2)
	dc.Stroke()

	dc.SetFillRuleEvenOdd()
	for _, f := range boundaries.Features {
		tracePolygons(dc, proj, f.Geometry)
		dc.SetColor(cmap.color(cfg.Values[f.Name], r.Theme.Land))
		dc.FillPreserve()
		dc.SetColor(r.Theme.Text)
		dc.SetLineWidth(1)
		dc.Stroke()
	}

	r.drawColorbar(dc, cmap, cfg)

	dc.SetColor(r.Theme.Text)
	dc.SetFontFace(r.Fonts.Face(28))
	dc.DrawStringAnchored(cfg.Title, float64(r.Width)/2, mapTop/2, 0.5, 0.5)

	y := float64(r.Height) - mapBottom/2
	if cfg.Subtitle != "" {
		dc.SetFontFace(r.Fonts.Face(22))
		dc.DrawStringAnchored(cfg.Subtitle, float64(r.Width)*0.58, y, 0.5, 0.5)
	}
	drawFooter(dc, r.Fonts.Face(22), r.Theme.Text, cfg.Footer, r.Width, y)
	return dc.Image(), nil
}

// ── Projection ──────────────────────────────────────────────────────────

type projection struct {
	bound      orb.Bound
	kx         float64
	scale      float64
	offX, offY float64
}

// newProjection fits bound into the w×h box at (x, y), preserving aspect.
func newProjection(bound orb.Bound, x, y, w, h float64) projection {
	midLat := (bound.Min[1] + bound.Max[1]) / 2
	kx := math.Cos(midLat * math.Pi / 180)

	pw := (bound.Max[0] - bound.Min[0]) * kx
	ph := bound.Max[1] - bound.Min[1]
	scale := 1.0
	if pw > 0 && ph > 0 {
		scale = math.Min(w/pw, h/ph)
	}
	return projection{
		bound: bound,
		kx:    kx,
		scale: scale,
		offX:  x + (w-pw*scale)/2,
		offY:  y + (h-ph*scale)/2,
	}
}

func (p projection) point(pt orb.Point) (float64, float64) {
	x := (pt[0] - p.bound.Min[0]) * p.kx * p.scale
	y := (p.bound.Max[1] - pt[1]) * p.scale
	return p.offX + x, p.offY + y
}

func tracePolygons(dc *gg.Context, proj projection, g orb.Geometry) {
	var polys []orb.Polygon
	switch geom := g.(type) {
	case orb.Polygon:
		polys = []orb.Polygon{geom}
	case orb.MultiPolygon:
		polys = geom
	}
	for _, poly := range polys {
		for _, ring := range poly {
			if len(ring) == 0 {
				continue
			}
			dc.NewSubPath()
			dc.MoveTo(proj.point(ring[0]))
			for _, pt := range ring[1:] {
				dc.LineTo(proj.point(pt))
			}
			dc.ClosePath()
		}
	}
}

// ── Colour scale ────────────────────────────────────────────────────────

type colorScale struct {
	cmap   palette.ColorMap
	domain engine.Domain
}

func newColorScale(d engine.Domain) colorScale {
	cmap := moreland.Kindlmann()
	cmap.SetMin(d.Min)
	cmap.SetMax(d.Max)
	return colorScale{cmap: cmap, domain: d}
}

// color maps v into the domain, clamping values outside it.
func (s colorScale) color(v float64, fallback color.Color) color.Color {
	if math.IsNaN(v) || s.domain.Max <= s.domain.Min {
		return fallback
	}
	v = math.Max(s.domain.Min, math.Min(s.domain.Max, v))
	c, err := s.cmap.At(v)
	if err != nil {
		return fallback
	}
	return c
}

func (r *MapRenderer) drawColorbar(dc *gg.Context, cmap colorScale, cfg *engine.MapConfig) {
	top := float64(colorbarMargin)
	bottom := float64(r.Height - colorbarMargin)
	height := bottom - top
	d := cfg.Domain
	if d.Max <= d.Min || height <= 0 {
		return
	}

	// gradient, one row per pixel, high values on top
	for y := 0; y < int(height); y++ {
		v := d.Max - (d.Max-d.Min)*float64(y)/height
		dc.SetColor(cmap.color(v, r.Theme.Land))
		dc.DrawRectangle(colorbarX, top+float64(y), colorbarWidth, 1)
		dc.Fill()
	}
	dc.SetColor(r.Theme.Text)
	dc.SetLineWidth(2)
	dc.DrawRectangle(colorbarX, top, colorbarWidth, height)
	dc.Stroke()

	dc.SetFontFace(r.Fonts.Face(18))
	for i, t := range d.Ticks {
		y := bottom - (t-d.Min)/(d.Max-d.Min)*height
		dc.SetLineWidth(3)
		dc.DrawLine(colorbarX+colorbarWidth, y, colorbarX+colorbarWidth+10, y)
		dc.Stroke()
		if i < len(d.TickLabels) {
			dc.DrawStringAnchored(d.TickLabels[i], colorbarX+colorbarWidth+14, y, 0, 0.35)
		}
	}

	if cfg.ColorbarTitle != "" {
		cx, cy := float64(colorbarX-26), top+height/2
		dc.Push()
		dc.RotateAbout(-math.Pi/2, cx, cy)
		dc.SetFontFace(r.Fonts.Face(16))
		dc.DrawStringAnchored(cfg.ColorbarTitle, cx, cy, 0.5, 0.5)
		dc.Pop()
	}
}
