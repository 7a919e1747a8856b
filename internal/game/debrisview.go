package game

import (
	"image/color"

	"chosenoffset.com/rubble/internal/core/fracture"
	"chosenoffset.com/rubble/internal/debris"
)

var solidOverlay = color.NRGBA{R: 40, G: 90, B: 160, A: 90}

// DebrisPixels renders the field into pix as RGBA bytes, one pixel per cell, growing
// pix when it is too small. Quantity maps to opacity. With showSolid, cells the
// occupancy sync marked solid are tinted.
func DebrisPixels(pix []byte, f *debris.Field, reg *fracture.Registry, showSolid bool) []byte {
	w, h := f.Width(), f.Height()
	n := w * h * 4
	if cap(pix) < n {
		pix = make([]byte, n)
	}
	pix = pix[:n]
	clear(pix)

	if showSolid {
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				if f.IsSolid(x, y) {
					putPixel(pix, (y*w+x)*4, solidOverlay, 1)
				}
			}
		}
	}

	capacity := f.Config().Capacity
	f.ForEachOccupied(func(x, y int, c debris.Cell) {
		fill := c.Quantity / capacity
		if fill > 1 {
			fill = 1
		}
		// Thin cells stay visible.
		alpha := 0.35 + 0.65*fill
		putPixel(pix, (y*w+x)*4, reg.Material(c.Material).Color, alpha)
	})
	return pix
}

// putPixel writes clr premultiplied by alpha.
func putPixel(pix []byte, i int, clr color.NRGBA, alpha float64) {
	a := float64(clr.A) / 255 * alpha
	pix[i] = uint8(float64(clr.R) * a)
	pix[i+1] = uint8(float64(clr.G) * a)
	pix[i+2] = uint8(float64(clr.B) * a)
	pix[i+3] = uint8(255 * a)
}
