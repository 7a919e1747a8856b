package render

import (
	"image/color"

	"github.com/chewxy/math32"

	"chosenoffset.com/rubble/internal/core/geom"
)

// Camera maps world coordinates onto screen pixels.
type Camera struct {
	X, Y float32 // World position shown at the screen's top-left corner
	Zoom float32 // Screen pixels per world unit
	// Snap rounds screen positions to whole pixels.
	Snap bool
}

// ToScreen converts a world point to screen coordinates.
func (c Camera) ToScreen(p geom.Point) (float32, float32) {
	zoom := c.zoom()
	x := (float32(p.X) - c.X) * zoom
	y := (float32(p.Y) - c.Y) * zoom
	if c.Snap {
		x, y = math32.Round(x), math32.Round(y)
	}
	return x, y
}

// ToWorld converts screen coordinates to a world point.
func (c Camera) ToWorld(sx, sy int) geom.Point {
	zoom := c.zoom()
	return geom.Pt(float64(float32(sx)/zoom+c.X), float64(float32(sy)/zoom+c.Y))
}

func (c Camera) zoom() float32 {
	if c.Zoom <= 0 {
		return 1
	}
	return c.Zoom
}

// ColorScale returns clr as premultiplied components in [0,1], the form Vertex expects.
func ColorScale(clr color.Color) (r, g, b, a float32) {
	cr, cg, cb, ca := clr.RGBA()
	return unit(cr), unit(cg), unit(cb), unit(ca)
}

func unit(v uint32) float32 {
	return math32.Min(math32.Max(float32(v)/0xffff, 0), 1)
}

// TexturedVertices appends one vertex per position to dst. uvs are in texture repeats
// and are scaled by the texture size; draw with DrawTrianglesOptions.Repeat to tile.
// The vertex color tints the texture.
func TexturedVertices(dst []Vertex, cam Camera, positions, uvs []geom.Point, texWidth, texHeight int, tint color.Color) []Vertex {
	r, g, b, a := ColorScale(tint)
	tw, th := float32(texWidth), float32(texHeight)
	for i, p := range positions {
		x, y := cam.ToScreen(p)
		var u, v float32
		if i < len(uvs) {
			u = float32(uvs[i].X) * tw
			v = float32(uvs[i].Y) * th
		}
		dst = append(dst, Vertex{
			DstX: x, DstY: y,
			SrcX: u, SrcY: v,
			ColorR: r, ColorG: g, ColorB: b, ColorA: a,
		})
	}
	return dst
}

// PolylineBounds returns the screen-space bounding box of positions under cam.
func PolylineBounds(cam Camera, positions []geom.Point) (minX, minY, maxX, maxY float32) {
	if len(positions) == 0 {
		return 0, 0, 0, 0
	}
	minX, minY = cam.ToScreen(positions[0])
	maxX, maxY = minX, minY
	for _, p := range positions[1:] {
		x, y := cam.ToScreen(p)
		minX, maxX = math32.Min(minX, x), math32.Max(maxX, x)
		minY, maxY = math32.Min(minY, y), math32.Max(maxY, y)
	}
	return minX, minY, maxX, maxY
}
