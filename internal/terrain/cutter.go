// Package terrain runs the cut pipeline over polygonal bodies and feeds the removed
// material into the debris field.
package terrain

import (
	"fmt"
	"math/rand"

	"chosenoffset.com/rubble/internal/core/cut"
	"chosenoffset.com/rubble/internal/core/fracture"
	"chosenoffset.com/rubble/internal/core/geom"
	"chosenoffset.com/rubble/internal/core/raster"
	"chosenoffset.com/rubble/internal/core/triangulate"
)

// DefaultUVScale is the world distance covered by one texture repeat.
const DefaultUVScale = 64.0

// Mesh is a triangle list ready for a renderer. UVs are in texture repeats and follow
// world position, so textures stay put across successive cuts.
type Mesh struct {
	Vertices []geom.Point
	UVs      []geom.Point
	Indices  []uint16
	// Silhouette is the outline to draw, with the latest cut edge on the pixel grid.
	Silhouette geom.Polygon
}

// Fragment is one side of a finished cut.
type Fragment struct {
	// Outline carries the torn cut edge and is what colliders and meshes use.
	Outline geom.Polygon
	// Silhouette is Outline with only the cut edge snapped to the pixel grid.
	Silhouette geom.Polygon
	Mesh       Mesh
	// Fan is set when triangulation fell back to a fan.
	Fan  bool
	Area float64
}

// Output is the result of Cutter.Cut.
type Output struct {
	Remaining Fragment
	// Removed is the smaller of the two pieces.
	Removed Fragment
	// Fallback reports that the split needed the coarse half-plane classification.
	Fallback bool
}

// Cutter runs split, fracture, rasterize and triangulate in sequence.
type Cutter struct {
	Registry *fracture.Registry
	Options  cut.Options
	// PixelSize for cut-edge silhouettes. Zero or less skips rasterization.
	PixelSize float64
	UVScale   float64

	rng *rand.Rand
}

// NewCutter creates a cutter. A nil registry gets the builtin materials and a nil rng is
// seeded with 1.
func NewCutter(reg *fracture.Registry, opts cut.Options, pixelSize float64, rng *rand.Rand) *Cutter {
	if reg == nil {
		reg = fracture.DefaultRegistry()
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &Cutter{
		Registry:  reg,
		Options:   opts,
		PixelSize: pixelSize,
		UVScale:   DefaultUVScale,
		rng:       rng,
	}
}

// GetFractureProfile returns the fracture profile registered for a material tag, or the
// default material's profile for unknown tags.
func (c *Cutter) GetFractureProfile(tag string) fracture.Profile {
	return c.Registry.ProfileByTag(tag)
}

// Cut splits polygon along entry→exit. Both halves receive the same torn edge so they
// still fit together. On error the input is untouched and nothing is returned.
func (c *Cutter) Cut(polygon geom.Polygon, material fracture.MaterialID, entry, exit geom.Point) (Output, error) {
	res, err := cut.SplitWithOptions(polygon, entry, exit, c.Options)
	if err != nil {
		return Output{}, fmt.Errorf("split polygon: %w", err)
	}

	chain := c.tear(res, fracture.FractureLine(res.Entry, res.Exit, c.Registry.Profile(material), c.rng))
	a, err := c.fragment(res.A, chain)
	if err != nil {
		return Output{}, err
	}
	b, err := c.fragment(res.B, chain)
	if err != nil {
		return Output{}, err
	}

	out := Output{Remaining: a, Removed: b, Fallback: res.Fallback}
	if b.Area > a.Area {
		out.Remaining, out.Removed = b, a
	}
	return out, nil
}

// maxFlatten bounds how many times a torn edge is halved before the cut falls back to
// a straight edge.
const maxFlatten = 5

// tear returns a chain that leaves both halves simple. A chain that crosses another
// edge is flattened toward the straight cut until it fits.
func (c *Cutter) tear(res cut.Result, chain []geom.Point) []geom.Point {
	for i := 0; i <= maxFlatten; i++ {
		if fits(res.A, chain) && fits(res.B, chain) {
			return chain
		}
		chain = fracture.ScaleChain(chain, 0.5)
	}
	return []geom.Point{chain[0], chain[len(chain)-1]}
}

func fits(half geom.Polygon, chain []geom.Point) bool {
	outline, ok := fracture.InsertChain(half, chain)
	return ok && outline.IsSimple()
}

func (c *Cutter) fragment(half geom.Polygon, chain []geom.Point) (Fragment, error) {
	outline, ok := fracture.InsertChain(half, chain)
	if !ok {
		// The split put the cut edge somewhere InsertChain could not find; keep it straight.
		outline = half
		chain = []geom.Point{chain[0], chain[len(chain)-1]}
	}

	silhouette := outline
	if c.PixelSize > 0 {
		silhouette, _ = raster.PixelateChain(outline, chain, c.PixelSize)
	}

	tris, err := triangulate.Triangulate(outline)
	if err != nil {
		return Fragment{}, fmt.Errorf("triangulate fragment: %w", err)
	}

	mesh := c.mesh(outline, tris.Triangles)
	mesh.Silhouette = silhouette
	return Fragment{
		Outline:    outline,
		Silhouette: silhouette,
		Mesh:       mesh,
		Fan:        tris.Fan,
		Area:       outline.Area(),
	}, nil
}

// BuildMesh triangulates an uncut outline, for bodies entering the scene.
func (c *Cutter) BuildMesh(outline geom.Polygon) (Mesh, error) {
	outline = outline.Clone().Normalize()
	tris, err := triangulate.Triangulate(outline)
	if err != nil {
		return Mesh{}, fmt.Errorf("triangulate outline: %w", err)
	}
	return c.mesh(outline, tris.Triangles), nil
}

func (c *Cutter) mesh(outline geom.Polygon, tris []triangulate.Triangle) Mesh {
	scale := c.UVScale
	if scale <= 0 {
		scale = DefaultUVScale
	}
	uvs := make([]geom.Point, len(outline))
	for i, v := range outline {
		uvs[i] = v.Scale(1 / scale)
	}
	return Mesh{
		Vertices:   outline.Clone(),
		UVs:        uvs,
		Indices:    triangulate.Indices(tris),
		Silhouette: outline.Clone(),
	}
}
