package render

import (
	"fmt"
	"image"

	"github.com/fogleman/gg"

	"github.com/spektr-org/marriagestats/engine"
)

// Table layout in pixels.
const (
	TableWidth    = 1280
	TableHeight   = 560
	tableMargin   = 40
	tableSpacing  = 38
	tableRow      = 29
	tableTop      = 20
	tableTextSize = 18
)

// TableRenderer draws one or more tables side by side.
type TableRenderer struct {
	Theme  Theme
	Fonts  *Fonts
	Width  int
	Height int
	// Weights are relative column widths; the last weight repeats.
	Weights []float64
}

// NewTableRenderer returns a renderer with the default size and a wide
// first column.
func NewTableRenderer(theme Theme, fonts *Fonts) *TableRenderer {
	return &TableRenderer{
		Theme:   theme,
		Fonts:   fonts,
		Width:   TableWidth,
		Height:  TableHeight,
		Weights: []float64{160, 90},
	}
}

// Render draws the tables and writes them as a PNG to path.
func (r *TableRenderer) Render(path string, tables ...*engine.TableData) error {
	img, err := r.Draw(tables...)
	if err != nil {
		return err
	}
	if err := gg.SavePNG(path, img); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Draw renders the tables in equal-width panels.
func (r *TableRenderer) Draw(tables ...*engine.TableData) (image.Image, error) {
	if len(tables) == 0 {
		return nil, ErrEmptyFigure
	}

	dc := gg.NewContext(r.Width, r.Height)
	dc.SetColor(r.Theme.Paper)
	dc.Clear()
	dc.SetFontFace(r.Fonts.Face(tableTextSize))

	n := float64(len(tables))
	panel := (float64(r.Width-2*tableMargin) - tableSpacing*(n-1)) / n
	for i, t := range tables {
		if t == nil {
			continue
		}
		x := tableMargin + float64(i)*(panel+tableSpacing)
		r.drawTable(dc, t, x, tableTop, panel)
	}
	return dc.Image(), nil
}

func (r *TableRenderer) drawTable(dc *gg.Context, t *engine.TableData, x, y, width float64) {
	widths := r.columnWidths(len(t.Columns), width)

	// header
	cx := x
	for i, col := range t.Columns {
		r.cell(dc, col.Label, cx, y, widths[i], "center", true)
		cx += widths[i]
	}

	for row, cells := range t.Rows {
		cy := y + float64(row+1)*tableRow
		cx := x
		for i := range t.Columns {
			val := ""
			if i < len(cells) {
				val = cells[i]
			}
			r.cell(dc, val, cx, cy, widths[i], t.Columns[i].Align, false)
			cx += widths[i]
		}
	}

	if t.Summary == nil {
		return
	}
	cy := y + float64(len(t.Rows)+1)*tableRow
	cx = x
	for i, col := range t.Columns {
		val := t.Summary.Values[col.Key]
		if i == 0 {
			val = t.Summary.Label
		}
		r.cell(dc, val, cx, cy, widths[i], col.Align, true)
		cx += widths[i]
	}
}

func (r *TableRenderer) cell(dc *gg.Context, text string, x, y, w float64, align string, header bool) {
	fill := r.Theme.Plot
	if header {
		fill = r.Theme.Header
	}
	dc.DrawRectangle(x, y, w, tableRow)
	dc.SetColor(fill)
	dc.FillPreserve()
	dc.SetColor(r.Theme.Text)
	dc.SetLineWidth(0.8)
	dc.Stroke()

	const pad = 8
	ty := y + tableRow/2.0
	switch align {
	case "left":
		dc.DrawStringAnchored(text, x+pad, ty, 0, 0.35)
	case "right":
		dc.DrawStringAnchored(text, x+w-pad, ty, 1, 0.35)
	default:
		dc.DrawStringAnchored(text, x+w/2, ty, 0.5, 0.35)
	}
}

func (r *TableRenderer) columnWidths(n int, total float64) []float64 {
	weights := make([]float64, n)
	sum := 0.0
	for i := range weights {
		w := 1.0
		switch {
		case i < len(r.Weights):
			w = r.Weights[i]
		case len(r.Weights) > 0:
			w = r.Weights[len(r.Weights)-1]
		}
		weights[i] = w
		sum += w
	}
	for i := range weights {
		weights[i] = weights[i] / sum * total
	}
	return weights
}
