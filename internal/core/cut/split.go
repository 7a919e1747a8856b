// Package cut splits a simple polygon into two along a line.
//
// The polygon edges are bounded segments while the cut line itself is unbounded by
// default, so a short drag across a shape still bisects it completely. Callers that
// want segment semantics set Options.Bounded.
package cut

import (
	"errors"
	"math"
	"sort"

	"chosenoffset.com/rubble/internal/core/geom"
)

var (
	// ErrTooFewVertices is returned when the input polygon has fewer than 3 vertices.
	ErrTooFewVertices = errors.New("cut: polygon needs at least 3 vertices")
	// ErrZeroLengthLine is returned when the cut line endpoints coincide.
	ErrZeroLengthLine = errors.New("cut: cut line has no length")
	// ErrDegenerateCut is returned when either side of the cut collapses below 3
	// vertices or to zero area. The caller should leave the original shape untouched.
	ErrDegenerateCut = errors.New("cut: degenerate cut")
)

// Options tunes Split.
type Options struct {
	// Bounded constrains intersections to lie between the line endpoints.
	Bounded bool
	// Epsilon overrides geom.Epsilon for vertex merging and on-line classification.
	Epsilon float64
}

// Result holds both halves of a successful cut. A and B are in canonical winding.
type Result struct {
	A, B geom.Polygon
	// Entry and Exit are the points where the cut line meets the boundary, ordered
	// along the line direction. Both appear as vertices in A and B.
	Entry, Exit geom.Point
	// Fallback is set when the coarse half-plane classification produced the result.
	Fallback bool
}

type hit struct {
	edge int
	t    float64
	p    geom.Point
}

// Split cuts polygon along the unbounded line through lineStart and lineEnd.
func Split(polygon geom.Polygon, lineStart, lineEnd geom.Point) (Result, error) {
	return SplitWithOptions(polygon, lineStart, lineEnd, Options{})
}

// SplitWithOptions is Split with explicit options.
func SplitWithOptions(polygon geom.Polygon, lineStart, lineEnd geom.Point, opts Options) (Result, error) {
	if len(polygon) < 3 {
		return Result{}, ErrTooFewVertices
	}
	eps := opts.Epsilon
	if eps <= 0 {
		eps = geom.Epsilon
	}
	dir := lineEnd.Sub(lineStart)
	if dir.Len() < eps {
		return Result{}, ErrZeroLengthLine
	}

	hits := intersections(polygon, lineStart, dir, opts.Bounded)

	var res Result
	switch {
	case len(hits) == 2 && hits[0].edge != hits[1].edge && !hits[0].p.Near(hits[1].p, eps):
		sort.Slice(hits, func(i, j int) bool { return hits[i].t < hits[j].t })
		res.A, res.B = walk(polygon, hits[0], hits[1])
		res.Entry, res.Exit = hits[0].p, hits[1].p
	case opts.Bounded && len(hits) < 2:
		// The segment never crosses the shape.
		return Result{}, ErrDegenerateCut
	default:
		var ok bool
		res.A, res.B, res.Entry, res.Exit, ok = halfPlane(polygon, lineStart, dir, eps)
		if !ok {
			return Result{}, ErrDegenerateCut
		}
		res.Fallback = true
	}

	res.A = res.A.Clean(eps).Normalize()
	res.B = res.B.Clean(eps).Normalize()
	if !usable(res.A, eps) || !usable(res.B, eps) {
		return Result{}, ErrDegenerateCut
	}
	return res, nil
}

func usable(p geom.Polygon, eps float64) bool {
	return len(p) >= 3 && p.Area() > eps*eps
}

// intersections tests every edge against the line origin + t*dir. The edge parameter u
// is bounded to [0,1]; t is free unless bounded is set.
func intersections(polygon geom.Polygon, origin, dir geom.Point, bounded bool) []hit {
	var hits []hit
	n := len(polygon)
	for i := 0; i < n; i++ {
		a := polygon[i]
		b := polygon[(i+1)%n]
		edge := b.Sub(a)
		denom := dir.Cross(edge)
		if math.Abs(denom) < 1e-12 {
			continue // parallel
		}
		ao := a.Sub(origin)
		t := ao.Cross(edge) / denom
		u := ao.Cross(dir) / denom
		if u < 0 || u > 1 {
			continue
		}
		if bounded && (t < 0 || t > 1) {
			continue
		}
		hits = append(hits, hit{edge: i, t: t, p: a.Lerp(b, u)})
	}
	return hits
}

// walk builds the two loops. Starting at the first intersection it follows the vertex
// cycle up to the edge of the second intersection, and vice versa.
func walk(polygon geom.Polygon, h0, h1 hit) (a, b geom.Polygon) {
	n := len(polygon)
	a = append(a, h0.p)
	for i := (h0.edge + 1) % n; ; i = (i + 1) % n {
		a = append(a, polygon[i])
		if i == h1.edge {
			break
		}
	}
	a = append(a, h1.p)

	b = append(b, h1.p)
	for i := (h1.edge + 1) % n; ; i = (i + 1) % n {
		b = append(b, polygon[i])
		if i == h0.edge {
			break
		}
	}
	b = append(b, h0.p)
	return a, b
}

// halfPlane classifies each vertex against the line. Vertices within eps of the line go
// to both sides, and a crossing point is inserted wherever the sign strictly changes.
func halfPlane(polygon geom.Polygon, origin, dir geom.Point, eps float64) (left, right geom.Polygon, entry, exit geom.Point, ok bool) {
	unit := dir.Normalize()
	side := func(p geom.Point) float64 { return unit.Cross(p.Sub(origin)) }

	var onLine []geom.Point
	n := len(polygon)
	for i := 0; i < n; i++ {
		a := polygon[i]
		b := polygon[(i+1)%n]
		da, db := side(a), side(b)
		if da >= -eps {
			left = append(left, a)
		}
		if da <= eps {
			right = append(right, a)
		}
		if math.Abs(da) <= eps {
			onLine = append(onLine, a)
		}
		if (da > eps && db < -eps) || (da < -eps && db > eps) {
			p := a.Lerp(b, da/(da-db))
			left = append(left, p)
			right = append(right, p)
			onLine = append(onLine, p)
		}
	}
	if len(onLine) < 2 {
		return nil, nil, geom.Point{}, geom.Point{}, false
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, p := range onLine {
		proj := p.Sub(origin).Dot(unit)
		if proj < lo {
			lo, entry = proj, p
		}
		if proj > hi {
			hi, exit = proj, p
		}
	}
	return left, right, entry, exit, true
}
