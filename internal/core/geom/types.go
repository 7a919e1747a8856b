// Package geom holds the 2D primitives shared by the cut, fracture, raster and
// triangulation stages.
//
// World space is screen-like: x grows to the right and y grows downward. With that
// convention a polygon with a non-negative shoelace area winds clockwise on screen,
// which is the canonical orientation every engine operation returns.
package geom

import "math"

// Epsilon is the distance under which two vertices are considered the same point.
const Epsilon = 0.001

// Point represents a 2D point in world space
type Point struct {
	X, Y float64
}

// Coord represents a grid cell coordinate
type Coord struct {
	X, Y int
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

func (p Point) Scale(s float64) Point { return Point{p.X * s, p.Y * s} }

// Dot returns the dot product of p and q.
func (p Point) Dot(q Point) float64 { return p.X*q.X + p.Y*q.Y }

// Cross returns the z component of the 3D cross product of p and q.
func (p Point) Cross(q Point) float64 { return p.X*q.Y - p.Y*q.X }

// Len returns the length of p as a vector.
func (p Point) Len() float64 { return math.Hypot(p.X, p.Y) }

// Dist returns the distance between p and q.
func (p Point) Dist(q Point) float64 { return p.Sub(q).Len() }

// Lerp interpolates between p (t=0) and q (t=1).
func (p Point) Lerp(q Point, t float64) Point {
	return Point{p.X + (q.X-p.X)*t, p.Y + (q.Y-p.Y)*t}
}

// Perp returns p rotated by 90 degrees.
func (p Point) Perp() Point { return Point{-p.Y, p.X} }

// Normalize returns the unit vector of p, or the zero vector when p has no length.
func (p Point) Normalize() Point {
	l := p.Len()
	if l == 0 {
		return Point{}
	}
	return Point{p.X / l, p.Y / l}
}

// Near reports whether p and q are within eps of each other.
func (p Point) Near(q Point, eps float64) bool {
	dx := p.X - q.X
	dy := p.Y - q.Y
	return dx*dx+dy*dy <= eps*eps
}
