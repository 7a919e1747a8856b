package geom

import "math"

// Polygon is an ordered ring of vertices. There is an implicit edge joining the last
// vertex to the first.
type Polygon []Point

// Clone returns a copy that shares no storage with p.
func (p Polygon) Clone() Polygon {
	if p == nil {
		return nil
	}
	out := make(Polygon, len(p))
	copy(out, p)
	return out
}

// SignedArea returns the shoelace area. Positive means clockwise on screen.
func (p Polygon) SignedArea() float64 {
	if len(p) < 3 {
		return 0
	}
	var sum float64
	j := len(p) - 1
	for i := range p {
		sum += p[j].X*p[i].Y - p[i].X*p[j].Y
		j = i
	}
	return sum / 2
}

// Area returns the absolute area of p.
func (p Polygon) Area() float64 {
	return math.Abs(p.SignedArea())
}

// Bounds returns the minimum and maximum corners of the axis aligned bounding box.
func (p Polygon) Bounds() (lo, hi Point) {
	if len(p) == 0 {
		return Point{}, Point{}
	}
	lo, hi = p[0], p[0]
	for _, v := range p[1:] {
		lo.X = math.Min(lo.X, v.X)
		lo.Y = math.Min(lo.Y, v.Y)
		hi.X = math.Max(hi.X, v.X)
		hi.Y = math.Max(hi.Y, v.Y)
	}
	return lo, hi
}

// Contains reports whether pt lies inside p using the even-odd rule.
func (p Polygon) Contains(pt Point) bool {
	inside := false
	j := len(p) - 1
	for i := range p {
		a, b := p[i], p[j]
		if (a.Y > pt.Y) != (b.Y > pt.Y) {
			x := (b.X-a.X)*(pt.Y-a.Y)/(b.Y-a.Y) + a.X
			if pt.X < x {
				inside = !inside
			}
		}
		j = i
	}
	return inside
}

// Reversed returns p with its vertex order reversed.
func (p Polygon) Reversed() Polygon {
	out := make(Polygon, len(p))
	for i, v := range p {
		out[len(p)-1-i] = v
	}
	return out
}

// Normalize returns p in canonical winding, reversing it when the signed area is
// negative.
func (p Polygon) Normalize() Polygon {
	if p.SignedArea() < 0 {
		return p.Reversed()
	}
	return p
}

// Clean merges consecutive vertices closer than eps and drops a closing vertex that
// duplicates the first one.
func (p Polygon) Clean(eps float64) Polygon {
	if len(p) == 0 {
		return p
	}
	out := make(Polygon, 0, len(p))
	for _, v := range p {
		if len(out) > 0 && out[len(out)-1].Near(v, eps) {
			continue
		}
		out = append(out, v)
	}
	for len(out) > 1 && out[len(out)-1].Near(out[0], eps) {
		out = out[:len(out)-1]
	}
	return out
}

// NearestVertex returns the index of the vertex closest to pt and its distance.
// It returns -1 for an empty polygon.
func (p Polygon) NearestVertex(pt Point) (int, float64) {
	best, bestDist := -1, math.Inf(1)
	for i, v := range p {
		if d := v.Dist(pt); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best, bestDist
}

// Centroid returns the area centroid of p, falling back to the vertex average for
// zero-area input.
func (p Polygon) Centroid() Point {
	a := p.SignedArea()
	if len(p) == 0 {
		return Point{}
	}
	if math.Abs(a) < 1e-12 {
		var c Point
		for _, v := range p {
			c = c.Add(v)
		}
		return c.Scale(1 / float64(len(p)))
	}
	var cx, cy float64
	j := len(p) - 1
	for i := range p {
		f := p[j].X*p[i].Y - p[i].X*p[j].Y
		cx += (p[j].X + p[i].X) * f
		cy += (p[j].Y + p[i].Y) * f
		j = i
	}
	return Point{cx / (6 * a), cy / (6 * a)}
}

// SegmentIntersectsPolygon reports whether segment a-b crosses any edge of p or lies
// inside it.
func SegmentIntersectsPolygon(a, b Point, p Polygon) bool {
	if p.Contains(a) || p.Contains(b) {
		return true
	}
	j := len(p) - 1
	for i := range p {
		if segmentsIntersect(a, b, p[j], p[i]) {
			return true
		}
		j = i
	}
	return false
}

func segmentsIntersect(p1, p2, q1, q2 Point) bool {
	d := p2.Sub(p1).Cross(q2.Sub(q1))
	if d == 0 {
		return false
	}
	t := q1.Sub(p1).Cross(q2.Sub(q1)) / d
	u := q1.Sub(p1).Cross(p2.Sub(p1)) / d
	return t >= 0 && t <= 1 && u >= 0 && u <= 1
}

// IsSimple reports whether no two edges of p cross or touch, other than neighbors
// sharing their common vertex. A neighbor that doubles back along its predecessor also
// counts as touching.
func (p Polygon) IsSimple() bool {
	n := len(p)
	if n < 3 {
		return false
	}
	for i := 0; i < n; i++ {
		a1, a2 := p[i], p[(i+1)%n]
		// Spike: the next edge runs back over this one.
		b2 := p[(i+2)%n]
		if e, f := a2.Sub(a1), b2.Sub(a2); math.Abs(e.Cross(f)) <= 1e-12*e.Len()*f.Len() && e.Dot(f) < 0 {
			return false
		}
		for j := i + 2; j < n; j++ {
			if i == 0 && j == n-1 {
				continue
			}
			if segmentsIntersect(a1, a2, p[j], p[(j+1)%n]) {
				return false
			}
		}
	}
	return true
}
