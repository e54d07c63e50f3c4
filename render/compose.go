package render

import (
	"fmt"
	"image"

	"github.com/fogleman/gg"
	"golang.org/x/image/draw"
)

// ============================================================================
// COMPOSITOR — Stacks rendered PNGs vertically
// ============================================================================

// Stack reads the PNGs in parts, scales each to width (keeping aspect) and
// writes them top to bottom into dst. A width of 0 keeps the widest part.
func Stack(dst string, width int, parts ...string) error {
	if len(parts) == 0 {
		return fmt.Errorf("stack %s: no parts", dst)
	}

	images := make([]image.Image, 0, len(parts))
	for _, p := range parts {
		img, err := gg.LoadPNG(p)
		if err != nil {
			return fmt.Errorf("read %s: %w", p, err)
		}
		images = append(images, img)
	}

	if width <= 0 {
		for _, img := range images {
			if w := img.Bounds().Dx(); w > width {
				width = w
			}
		}
	}

	height := 0
	scaled := make([]image.Image, len(images))
	for i, img := range images {
		scaled[i] = fitWidth(img, width)
		height += scaled[i].Bounds().Dy()
	}

	out := image.NewRGBA(image.Rect(0, 0, width, height))
	y := 0
	for _, img := range scaled {
		b := img.Bounds()
		draw.Draw(out, image.Rect(0, y, b.Dx(), y+b.Dy()), img, b.Min, draw.Src)
		y += b.Dy()
	}

	if err := gg.SavePNG(dst, out); err != nil {
		return fmt.Errorf("write %s: %w", dst, err)
	}
	return nil
}

func fitWidth(img image.Image, width int) image.Image {
	b := img.Bounds()
	if b.Dx() == width || b.Dx() == 0 {
		return img
	}
	height := b.Dy() * width / b.Dx()
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}
