// Package triangulate splits simple polygons into triangles for meshes and colliders.
package triangulate

import (
	"errors"

	"chosenoffset.com/rubble/internal/core/geom"
)

// ErrTooFewVertices is returned for input with fewer than 3 vertices.
var ErrTooFewVertices = errors.New("triangulate: polygon needs at least 3 vertices")

// areaEpsilon is the smallest doubled triangle area accepted as an ear.
const areaEpsilon = 1e-12

// Triangle holds three vertex indices into the triangulated polygon.
type Triangle [3]int

// Result is the output of Triangulate.
type Result struct {
	Triangles []Triangle
	// Fan is set when ear clipping failed and a fan from vertex 0 was emitted instead.
	Fan bool
}

// Triangulate ear clips poly. Either winding is accepted; triangles are emitted in the
// polygon's own orientation.
//
// If a full pass over the remaining vertices finds no ear, which happens on
// near-degenerate input, the whole polygon is fanned from vertex 0 instead.
func Triangulate(poly geom.Polygon) (Result, error) {
	n := len(poly)
	if n < 3 {
		return Result{}, ErrTooFewVertices
	}

	orient := 1.0
	if poly.SignedArea() < 0 {
		orient = -1
	}

	remaining := make([]int, n)
	for i := range remaining {
		remaining[i] = i
	}
	tris := make([]Triangle, 0, n-2)

	for len(remaining) > 3 {
		ear := -1
		for i := range remaining {
			if isEar(poly, remaining, i, orient) {
				ear = i
				break
			}
		}
		if ear < 0 {
			return Result{Triangles: Fan(n), Fan: true}, nil
		}
		m := len(remaining)
		tris = append(tris, Triangle{
			remaining[(ear+m-1)%m],
			remaining[ear],
			remaining[(ear+1)%m],
		})
		remaining = append(remaining[:ear], remaining[ear+1:]...)
	}

	last := Triangle{remaining[0], remaining[1], remaining[2]}
	if orient*twiceArea(poly[last[0]], poly[last[1]], poly[last[2]]) <= areaEpsilon {
		return Result{Triangles: Fan(n), Fan: true}, nil
	}
	return Result{Triangles: append(tris, last)}, nil
}

// Fan returns the naive fan triangulation of an n-gon from vertex 0.
func Fan(n int) []Triangle {
	if n < 3 {
		return nil
	}
	tris := make([]Triangle, 0, n-2)
	for i := 1; i+1 < n; i++ {
		tris = append(tris, Triangle{0, i, i + 1})
	}
	return tris
}

// Indices flattens triangles into a 16-bit index buffer for mesh submission.
func Indices(tris []Triangle) []uint16 {
	out := make([]uint16, 0, len(tris)*3)
	for _, t := range tris {
		out = append(out, uint16(t[0]), uint16(t[1]), uint16(t[2]))
	}
	return out
}

func isEar(poly geom.Polygon, remaining []int, i int, orient float64) bool {
	m := len(remaining)
	ia, ib, ic := remaining[(i+m-1)%m], remaining[i], remaining[(i+1)%m]
	a, b, c := poly[ia], poly[ib], poly[ic]

	// Reflex or collinear vertices are never ears.
	if orient*twiceArea(a, b, c) <= areaEpsilon {
		return false
	}
	for _, j := range remaining {
		if j == ia || j == ib || j == ic {
			continue
		}
		p := poly[j]
		if p == a || p == b || p == c {
			continue
		}
		if inTriangle(p, a, b, c, orient) {
			return false
		}
	}
	return true
}

// inTriangle reports whether p lies inside or on the boundary of triangle abc.
func inTriangle(p, a, b, c geom.Point, orient float64) bool {
	return orient*twiceArea(a, b, p) >= 0 &&
		orient*twiceArea(b, c, p) >= 0 &&
		orient*twiceArea(c, a, p) >= 0
}

func twiceArea(a, b, c geom.Point) float64 {
	return b.Sub(a).Cross(c.Sub(a))
}
