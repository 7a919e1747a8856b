package render

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chosenoffset.com/rubble/internal/core/geom"
)

func TestCameraRoundTrip(t *testing.T) {
	cam := Camera{X: 10, Y: -4, Zoom: 2}
	x, y := cam.ToScreen(geom.Pt(15, 6))
	assert.Equal(t, float32(10), x)
	assert.Equal(t, float32(20), y)

	p := cam.ToWorld(10, 20)
	assert.InDelta(t, 15, p.X, 1e-5)
	assert.InDelta(t, 6, p.Y, 1e-5)

	x, _ = Camera{Snap: true}.ToScreen(geom.Pt(3.6, 0))
	assert.Equal(t, float32(4), x, "zero zoom falls back to 1 and snap rounds")
}

func TestColorScalePremultiplied(t *testing.T) {
	r, g, b, a := ColorScale(color.NRGBA{R: 255, G: 0, B: 0, A: 128})
	assert.InDelta(t, 128.0/255, r, 1e-3)
	assert.Zero(t, g)
	assert.Zero(t, b)
	assert.InDelta(t, 128.0/255, a, 1e-3)
}

func TestTexturedVertices(t *testing.T) {
	pos := []geom.Point{{X: 0, Y: 0}, {X: 64, Y: 0}, {X: 64, Y: 32}}
	uvs := []geom.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 0.5}}
	verts := TexturedVertices(nil, Camera{Zoom: 1}, pos, uvs, 16, 16, color.White)

	require.Len(t, verts, 3)
	assert.Equal(t, float32(16), verts[1].SrcX)
	assert.Equal(t, float32(8), verts[2].SrcY)
	assert.Equal(t, float32(64), verts[2].DstX)
	assert.Equal(t, float32(1), verts[0].ColorA)

	minX, minY, maxX, maxY := PolylineBounds(Camera{Zoom: 1}, pos)
	assert.Equal(t, [4]float32{0, 0, 64, 32}, [4]float32{minX, minY, maxX, maxY})
}
