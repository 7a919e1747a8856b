package fracture

import (
	"math"
	"math/rand"

	"chosenoffset.com/rubble/internal/core/geom"
)

const (
	// MinSegments is the interior point count at softness 0.
	MinSegments = 2
	// MaxSegments is the interior point count at softness 1.
	MaxSegments = 12

	// skew pushes offsets toward the positive side of the edge normal so the edge
	// reads as torn rather than as a symmetric sawtooth.
	skew = 0.35

	matchEpsilon = 2 * geom.Epsilon
)

// Segments returns the number of interior points generated for p.
func Segments(p Profile) int {
	p = p.Clamped()
	return MinSegments + int(math.Round(p.Softness*float64(MaxSegments-MinSegments)))
}

// MaxOffset returns the largest perpendicular displacement a point on an edge of the
// given length may receive.
func MaxOffset(edgeLength float64, p Profile) float64 {
	return edgeLength * p.Clamped().Strength * 0.5
}

// FractureLine returns the torn chain from entry to exit, both endpoints included.
// Generating it once and inserting it into both halves of a cut keeps the halves
// fitting together.
func FractureLine(entry, exit geom.Point, profile Profile, rng *rand.Rand) []geom.Point {
	profile = profile.Clamped()
	edge := exit.Sub(entry)
	length := edge.Len()
	if length < geom.Epsilon || rng == nil {
		return []geom.Point{entry, exit}
	}

	n := Segments(profile)
	normal := edge.Perp().Normalize()
	limit := MaxOffset(length, profile)
	// Soft materials tear with smaller teeth.
	roughness := 1 - 0.5*profile.Softness

	chain := make([]geom.Point, 0, n+2)
	chain = append(chain, entry)
	for k := 1; k <= n; k++ {
		t := float64(k) / float64(n+1)
		r := (rng.Float64()*2 - 1 + skew) / (1 + skew)
		offset := r * limit * roughness * math.Sin(math.Pi*t)
		chain = append(chain, entry.Lerp(exit, t).Add(normal.Scale(offset)))
	}
	return append(chain, exit)
}

// ScaleChain returns chain with every interior point's distance from the straight
// entry→exit segment multiplied by factor. Factor 0 gives the straight edge.
func ScaleChain(chain []geom.Point, factor float64) []geom.Point {
	out := make([]geom.Point, len(chain))
	copy(out, chain)
	if len(chain) < 3 {
		return out
	}
	entry, exit := chain[0], chain[len(chain)-1]
	edge := exit.Sub(entry)
	l2 := edge.Dot(edge)
	if l2 == 0 {
		return out
	}
	for i := 1; i < len(chain)-1; i++ {
		base := entry.Add(edge.Scale(chain[i].Sub(entry).Dot(edge) / l2))
		out[i] = base.Add(chain[i].Sub(base).Scale(factor))
	}
	return out
}

// InsertChain replaces the edge joining the chain's first and last points with the
// chain. The edge may run in either direction in shape. When no such edge exists the
// shape is returned unchanged with ok false.
func InsertChain(shape geom.Polygon, chain []geom.Point) (out geom.Polygon, ok bool) {
	if len(shape) < 3 || len(chain) < 2 {
		return shape, false
	}
	entry, exit := chain[0], chain[len(chain)-1]
	ie, de := shape.NearestVertex(entry)
	ix, dx := shape.NearestVertex(exit)
	if de > matchEpsilon || dx > matchEpsilon || ie == ix {
		return shape, false
	}

	n := len(shape)
	interior := chain[1 : len(chain)-1]
	var after int
	switch {
	case (ie+1)%n == ix:
		after = ie
	case (ix+1)%n == ie:
		after = ix
		rev := make([]geom.Point, len(interior))
		for i, p := range interior {
			rev[len(interior)-1-i] = p
		}
		interior = rev
	default:
		return shape, false
	}

	out = make(geom.Polygon, 0, n+len(interior))
	out = append(out, shape[:after+1]...)
	out = append(out, interior...)
	out = append(out, shape[after+1:]...)
	return out.Normalize(), true
}

// ApplyIrregularCut replaces the straight edge between entry and exit with a jagged
// edge shaped by profile.
func ApplyIrregularCut(shape geom.Polygon, entry, exit geom.Point, profile Profile, rng *rand.Rand) geom.Polygon {
	out, _ := InsertChain(shape, FractureLine(entry, exit, profile, rng))
	return out
}
