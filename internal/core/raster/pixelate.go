// Package raster snaps cut edges onto the pixel grid so fragments get a crisp,
// staircase silhouette.
package raster

import (
	"math"

	"chosenoffset.com/rubble/internal/core/geom"
)

// PixelateEdge snaps start and end to the pixel grid and returns the 4-connected
// staircase between them, both endpoints included. Consecutive points differ in exactly
// one coordinate by exactly pixelSize.
func PixelateEdge(start, end geom.Point, pixelSize float64) []geom.Point {
	if pixelSize <= 0 {
		return []geom.Point{start, end}
	}
	x0, y0 := snap(start.X, pixelSize), snap(start.Y, pixelSize)
	x1, y1 := snap(end.X, pixelSize), snap(end.Y, pixelSize)

	nx, sx := absSign(x1 - x0)
	ny, sy := absSign(y1 - y0)

	pts := make([]geom.Point, 0, nx+ny+1)
	x, y := x0, y0
	pts = append(pts, gridPoint(x, y, pixelSize))
	for ix, iy := 0, 0; ix < nx || iy < ny; {
		// Step along whichever axis is further behind the ideal line, comparing
		// (ix+0.5)/nx with (iy+0.5)/ny without dividing.
		if (1+2*ix)*ny < (1+2*iy)*nx {
			x += sx
			ix++
		} else {
			y += sy
			iy++
		}
		pts = append(pts, gridPoint(x, y, pixelSize))
	}
	return pts
}

// PixelatePath rasterizes a polyline, joining the per-edge staircases without repeating
// the shared points.
func PixelatePath(points []geom.Point, pixelSize float64) []geom.Point {
	if len(points) < 2 {
		return append([]geom.Point(nil), points...)
	}
	var out []geom.Point
	for i := 0; i+1 < len(points); i++ {
		for _, p := range PixelateEdge(points[i], points[i+1], pixelSize) {
			if len(out) > 0 && out[len(out)-1] == p {
				continue
			}
			out = append(out, p)
		}
	}
	return out
}

// PixelateChain replaces the run of vertices matching chain (in either direction) with
// its staircase. Every other edge of poly is passed through unchanged. ok is false when
// the chain cannot be found, in which case poly is returned as-is.
func PixelateChain(poly geom.Polygon, chain []geom.Point, pixelSize float64) (out geom.Polygon, ok bool) {
	n, m := len(poly), len(chain)
	if n < 3 || m < 2 || m > n {
		return poly, false
	}
	i0, d := poly.NearestVertex(chain[0])
	if d > 2*geom.Epsilon {
		return poly, false
	}

	stairs := PixelatePath(chain, pixelSize)
	switch {
	case matchRun(poly, chain, i0, 1):
		out = make(geom.Polygon, 0, len(stairs)+n-m)
		out = append(out, stairs...)
		for k := m; k < n; k++ {
			out = append(out, poly[(i0+k)%n])
		}
	case matchRun(poly, chain, i0, -1):
		out = make(geom.Polygon, 0, len(stairs)+n-m)
		for k := len(stairs) - 1; k >= 0; k-- {
			out = append(out, stairs[k])
		}
		for k := 1; k <= n-m; k++ {
			out = append(out, poly[(i0+k)%n])
		}
	default:
		return poly, false
	}
	return out.Clean(geom.Epsilon), true
}

func matchRun(poly geom.Polygon, chain []geom.Point, start, step int) bool {
	n := len(poly)
	for k, p := range chain {
		idx := ((start+step*k)%n + n) % n
		if !poly[idx].Near(p, 2*geom.Epsilon) {
			return false
		}
	}
	return true
}

func snap(v, pixelSize float64) int {
	return int(math.Round(v / pixelSize))
}

func gridPoint(x, y int, pixelSize float64) geom.Point {
	return geom.Point{X: float64(x) * pixelSize, Y: float64(y) * pixelSize}
}

func absSign(v int) (abs, sign int) {
	switch {
	case v > 0:
		return v, 1
	case v < 0:
		return -v, -1
	}
	return 0, 0
}
