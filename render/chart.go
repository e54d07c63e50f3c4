package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"sort"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/spektr-org/marriagestats/engine"
)

// ============================================================================
// CHART RENDERER — engine.ChartConfig → PNG via gonum/plot
// ============================================================================
// gonum/plot draws axes, series, labels and legend into an image canvas;
// gg then adds the notes box and the footer captions underneath.
// ============================================================================

// ErrEmptyFigure is returned when a figure description has nothing to draw.
var ErrEmptyFigure = errors.New("figure has no data")

// Default figure size in pixels.
const (
	ChartWidth   = 1280
	ChartHeight  = 720
	footerHeight = 48
)

// ChartRenderer draws bar, line and scatter charts.
type ChartRenderer struct {
	Theme  Theme
	Fonts  *Fonts
	Width  int
	Height int
}

// NewChartRenderer returns a renderer with the default figure size.
func NewChartRenderer(theme Theme, fonts *Fonts) *ChartRenderer {
	return &ChartRenderer{Theme: theme, Fonts: fonts, Width: ChartWidth, Height: ChartHeight}
}

// Render draws cfg and writes it as a PNG to path.
func (r *ChartRenderer) Render(cfg *engine.ChartConfig, path string) error {
	img, err := r.Draw(cfg)
	if err != nil {
		return err
	}
	if err := gg.SavePNG(path, img); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Draw renders cfg to an image.
func (r *ChartRenderer) Draw(cfg *engine.ChartConfig) (image.Image, error) {
	if cfg == nil || len(cfg.Series) == 0 {
		return nil, ErrEmptyFigure
	}

	p := plot.New()
	r.style(p, cfg)

	var err error
	switch cfg.ChartType {
	case engine.ChartBar:
		err = r.addBars(p, cfg)
	case engine.ChartLine:
		err = r.addPoints(p, cfg, true)
	case engine.ChartScatter:
		err = r.addPoints(p, cfg, false)
	default:
		err = fmt.Errorf("unsupported chart type %q", cfg.ChartType)
	}
	if err != nil {
		return nil, err
	}

	if cfg.YRange != nil {
		p.Y.Min, p.Y.Max = cfg.YRange.Min, cfg.YRange.Max
	}

	plotHeight := r.Height - footerHeight
	canvas := vgimg.NewWith(
		vgimg.UseWH(vg.Length(r.Width), vg.Length(plotHeight)),
		vgimg.UseDPI(72),
	)
	p.Draw(draw.New(canvas))

	dc := gg.NewContext(r.Width, r.Height)
	dc.SetColor(r.Theme.Paper)
	dc.Clear()
	dc.DrawImage(canvas.Image(), 0, 0)

	r.drawNotes(dc, cfg.Notes)
	drawFooter(dc, r.Fonts.Face(18), r.Theme.Text, cfg.Footer, r.Width, float64(r.Height)-footerHeight/2)
	return dc.Image(), nil
}

// ── Styling ─────────────────────────────────────────────────────────────

func (r *ChartRenderer) style(p *plot.Plot, cfg *engine.ChartConfig) {
	text := r.Theme.Text

	p.BackgroundColor = r.Theme.Paper
	p.Title.Text = cfg.Title
	p.Title.TextStyle.Color = text
	p.Title.TextStyle.Font.Size = vg.Points(24)
	p.Title.Padding = vg.Points(12)

	p.X.Label.Text = cfg.XAxis
	p.Y.Label.Text = cfg.YAxis
	for _, ax := range []*plot.Axis{&p.X, &p.Y} {
		ax.LineStyle.Color = text
		ax.LineStyle.Width = vg.Points(2)
		ax.Label.TextStyle.Color = text
		ax.Label.TextStyle.Font.Size = vg.Points(20)
		ax.Tick.Label.Color = text
		ax.Tick.Label.Font.Size = vg.Points(16)
		ax.Tick.LineStyle.Color = text
	}
	p.Y.Tick.Marker = numberTicks{}

	p.Legend.TextStyle.Color = text
	p.Legend.TextStyle.Font.Size = vg.Points(16)
	p.Legend.Top = true
	p.Legend.Left = true
	p.Legend.XOffs = vg.Points(12)
	p.Legend.YOffs = -vg.Points(12)

	p.Add(areaFill{color: r.Theme.Plot})
	if cfg.ShowGrid {
		grid := plotter.NewGrid()
		grid.Vertical.Color = r.Theme.Grid
		grid.Vertical.Width = vg.Points(0.5)
		grid.Horizontal.Color = r.Theme.Grid
		grid.Horizontal.Width = vg.Points(0.5)
		p.Add(grid)
	}
}

// areaFill paints the data area behind every other plotter.
type areaFill struct {
	color color.Color
}

func (a areaFill) Plot(c draw.Canvas, _ *plot.Plot) {
	c.FillPolygon(a.color, []vg.Point{
		c.Min,
		{X: c.Max.X, Y: c.Min.Y},
		c.Max,
		{X: c.Min.X, Y: c.Max.Y},
	})
}

// ── Series ──────────────────────────────────────────────────────────────

// addBars draws one bar per series side by side at each x position.
func (r *ChartRenderer) addBars(p *plot.Plot, cfg *engine.ChartConfig) error {
	xs, names := categories(cfg.Series)
	if len(xs) == 0 {
		return ErrEmptyFigure
	}
	pos := make(map[float64]int, len(xs))
	for i, x := range xs {
		pos[x] = i
	}

	k := len(cfg.Series)
	groupWidth := 0.8 * float64(r.Width-160) / float64(len(xs))
	barWidth := groupWidth / float64(k)

	for i, s := range cfg.Series {
		values := make(plotter.Values, len(xs))
		xys := make(plotter.XYs, 0, len(s.Data))
		texts := make([]string, 0, len(s.Data))
		for _, pt := range s.Data {
			values[pos[pt.X]] = pt.Value
			xys = append(xys, plotter.XY{X: float64(pos[pt.X]), Y: pt.Value})
			texts = append(texts, pt.Text)
		}

		bars, err := plotter.NewBarChart(values, vg.Length(barWidth))
		if err != nil {
			return fmt.Errorf("series %q: %w", s.Name, err)
		}
		bars.Color = mustHex(s.Color, r.Theme.Header)
		bars.LineStyle.Width = 0
		bars.Offset = vg.Length((float64(i) - float64(k-1)/2) * barWidth)
		p.Add(bars)
		p.Legend.Add(s.Name, bars)

		labels, err := r.labels(xys, texts, vg.Point{X: bars.Offset, Y: vg.Points(4)}, draw.YBottom, 13)
		if err != nil {
			return fmt.Errorf("series %q: %w", s.Name, err)
		}
		if labels != nil {
			p.Add(labels)
		}
	}

	p.NominalX(names...)
	p.X.Min, p.X.Max = -0.5, float64(len(xs))-0.5
	if cfg.YRange == nil {
		p.Y.Min = 0
	}
	return nil
}

// addPoints draws markers (joined by a line when connect is set).
// Line charts label above each point; scatter markers carry their label
// inside.
func (r *ChartRenderer) addPoints(p *plot.Plot, cfg *engine.ChartConfig, connect bool) error {
	drawn := 0
	for _, s := range cfg.Series {
		if len(s.Data) == 0 {
			continue
		}
		col := mustHex(s.Color, r.Theme.Header)

		xys := make(plotter.XYs, len(s.Data))
		texts := make([]string, len(s.Data))
		for i, pt := range s.Data {
			xys[i] = plotter.XY{X: pt.X, Y: pt.Value}
			texts[i] = pt.Text
		}

		scatter, err := plotter.NewScatter(xys)
		if err != nil {
			return fmt.Errorf("series %q: %w", s.Name, err)
		}
		scatter.GlyphStyle.Color = col
		scatter.GlyphStyle.Radius = vg.Points(7)
		scatter.GlyphStyle.Shape = draw.CircleGlyph{}
		if !connect {
			scatter.GlyphStyle.Radius = vg.Points(24)
		}

		if connect {
			line, err := plotter.NewLine(xys)
			if err != nil {
				return fmt.Errorf("series %q: %w", s.Name, err)
			}
			line.LineStyle.Color = col
			line.LineStyle.Width = vg.Points(5)
			p.Add(line, scatter)
			p.Legend.Add(s.Name, line, scatter)
		} else {
			p.Add(scatter)
			p.Legend.Add(s.Name, scatter)
		}

		offset, align, size := vg.Point{Y: vg.Points(12)}, draw.YBottom, 18.0
		if !connect {
			offset, align, size = vg.Point{}, draw.YCenter, 16
		}
		labels, err := r.labels(xys, texts, offset, align, size)
		if err != nil {
			return fmt.Errorf("series %q: %w", s.Name, err)
		}
		if labels != nil {
			p.Add(labels)
		}
		drawn++
	}
	if drawn == 0 {
		return ErrEmptyFigure
	}

	p.X.Tick.Marker = integerTicks{}
	if cfg.XRange != nil {
		p.X.Min, p.X.Max = cfg.XRange.Min, cfg.XRange.Max
	}
	return nil
}

func (r *ChartRenderer) labels(xys plotter.XYs, texts []string, offset vg.Point, align draw.YAlignment, size float64) (*plotter.Labels, error) {
	hasText := false
	for _, t := range texts {
		if t != "" {
			hasText = true
			break
		}
	}
	if !hasText {
		return nil, nil
	}

	labels, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: texts})
	if err != nil {
		return nil, err
	}
	labels.Offset = offset
	for i := range labels.TextStyle {
		labels.TextStyle[i].Color = r.Theme.Text
		labels.TextStyle[i].Font.Size = vg.Points(size)
		labels.TextStyle[i].XAlign = draw.XCenter
		labels.TextStyle[i].YAlign = align
	}
	return labels, nil
}

// categories returns the sorted distinct x values of all series and the
// label of each.
func categories(series []engine.ChartSeries) ([]float64, []string) {
	label := make(map[float64]string)
	for _, s := range series {
		for _, pt := range s.Data {
			if _, ok := label[pt.X]; !ok {
				label[pt.X] = pt.Label
			}
		}
	}
	xs := make([]float64, 0, len(label))
	for x := range label {
		xs = append(xs, x)
	}
	sort.Float64s(xs)
	names := make([]string, len(xs))
	for i, x := range xs {
		names[i] = label[x]
	}
	return xs, names
}

// ── Ticks ───────────────────────────────────────────────────────────────

// numberTicks are the default ticks labelled with thousands separators.
type numberTicks struct{}

func (numberTicks) Ticks(min, max float64) []plot.Tick {
	ticks := plot.DefaultTicks{}.Ticks(min, max)
	decimals := 0
	for _, t := range ticks {
		if t.Label != "" && t.Value != math.Trunc(t.Value) {
			decimals = 1
			break
		}
	}
	for i := range ticks {
		if ticks[i].Label != "" {
			ticks[i].Label = engine.FormatNumber(ticks[i].Value, decimals)
		}
	}
	return ticks
}

// integerTicks label every whole number in range (years).
type integerTicks struct{}

func (integerTicks) Ticks(min, max float64) []plot.Tick {
	var ticks []plot.Tick
	for v := math.Ceil(min); v <= math.Floor(max); v++ {
		ticks = append(ticks, plot.Tick{Value: v, Label: fmt.Sprintf("%.0f", v)})
	}
	return ticks
}

// ── Annotations ─────────────────────────────────────────────────────────

func (r *ChartRenderer) drawNotes(dc *gg.Context, notes []string) {
	if len(notes) == 0 {
		return
	}
	dc.SetFontFace(r.Fonts.Face(16))

	const pad, lineGap = 12.0, 1.5
	width, lineHeight := 0.0, 0.0
	for _, n := range notes {
		w, h := dc.MeasureString(n)
		width = math.Max(width, w)
		lineHeight = math.Max(lineHeight, h)
	}
	boxW := width + 2*pad
	boxH := float64(len(notes))*lineHeight*lineGap + 2*pad - lineHeight*(lineGap-1)
	x := 110.0
	y := 0.3 * float64(r.Height-footerHeight)

	dc.SetColor(r.Theme.Plot)
	dc.DrawRectangle(x, y, boxW, boxH)
	dc.FillPreserve()
	dc.SetColor(r.Theme.Text)
	dc.SetLineWidth(1.5)
	dc.Stroke()

	for i, n := range notes {
		dc.DrawStringAnchored(n, x+pad, y+pad+float64(i)*lineHeight*lineGap, 0, 1)
	}
}

// drawFooter writes the left, centre and right captions on one baseline.
func drawFooter(dc *gg.Context, face font.Face, col color.Color, f engine.Footer, width int, y float64) {
	dc.SetFontFace(face)
	dc.SetColor(col)
	if f.Left != "" {
		dc.DrawStringAnchored(f.Left, 20, y, 0, 0.5)
	}
	if f.Center != "" {
		dc.DrawStringAnchored(f.Center, float64(width)/2, y, 0.5, 0.5)
	}
	if f.Right != "" {
		dc.DrawStringAnchored(f.Right, float64(width)-20, y, 1, 0.5)
	}
}
