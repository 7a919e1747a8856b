package fracture

import (
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chosenoffset.com/rubble/internal/core/geom"
)

func TestSegmentsFollowSoftness(t *testing.T) {
	assert.Equal(t, MinSegments, Segments(Profile{Softness: 0}))
	assert.Equal(t, MaxSegments, Segments(Profile{Softness: 1}))
	assert.Equal(t, MaxSegments, Segments(Profile{Softness: 7}), "softness is clamped")
	assert.Less(t, Segments(Profile{Softness: 0.2}), Segments(Profile{Softness: 0.8}))
}

func TestFractureLineOffsetsStayWithinCap(t *testing.T) {
	entry, exit := geom.Pt(0, 0), geom.Pt(10, 0)
	for seed := int64(0); seed < 50; seed++ {
		rng := rand.New(rand.NewSource(seed))
		profile := Profile{Softness: rng.Float64(), Strength: rng.Float64()}
		chain := FractureLine(entry, exit, profile, rng)

		require.Len(t, chain, Segments(profile)+2)
		assert.Equal(t, entry, chain[0])
		assert.Equal(t, exit, chain[len(chain)-1])

		limit := MaxOffset(10, profile)
		for _, p := range chain {
			assert.LessOrEqual(t, math.Abs(p.Y), limit+1e-9)
		}
	}
}

func TestFractureLineIsSkewed(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	entry, exit := geom.Pt(0, 0), geom.Pt(10, 0)
	normal := exit.Sub(entry).Perp().Normalize()

	var sum float64
	for i := 0; i < 200; i++ {
		for _, p := range FractureLine(entry, exit, Profile{Softness: 0.5, Strength: 1}, rng) {
			sum += p.Sub(entry).Dot(normal)
		}
	}
	assert.Greater(t, sum, 0.0, "offsets should lean toward the normal side")
}

func TestFractureLineDeterministic(t *testing.T) {
	profile := Profile{Softness: 0.3, Strength: 0.8}
	a := FractureLine(geom.Pt(1, 2), geom.Pt(9, 4), profile, rand.New(rand.NewSource(42)))
	b := FractureLine(geom.Pt(1, 2), geom.Pt(9, 4), profile, rand.New(rand.NewSource(42)))
	assert.Equal(t, a, b)
}

func TestZeroStrengthIsStraight(t *testing.T) {
	chain := FractureLine(geom.Pt(0, 0), geom.Pt(4, 0), Profile{Softness: 0, Strength: 0}, rand.New(rand.NewSource(1)))
	for _, p := range chain {
		assert.InDelta(t, 0.0, p.Y, 1e-12)
	}
}

func TestScaleChainShrinksOffsets(t *testing.T) {
	chain := []geom.Point{{X: 0, Y: 0}, {X: 2, Y: 3}, {X: 5, Y: -2}, {X: 8, Y: 0}}

	half := ScaleChain(chain, 0.5)
	assert.Equal(t, []geom.Point{{X: 0, Y: 0}, {X: 2, Y: 1.5}, {X: 5, Y: -1}, {X: 8, Y: 0}}, half)
	assert.Equal(t, geom.Pt(2, 3), chain[1], "input is not modified")

	for _, p := range ScaleChain(chain, 0) {
		assert.InDelta(t, 0.0, p.Y, 1e-12)
	}
}

func TestApplyIrregularCutReplacesOnlyCutEdge(t *testing.T) {
	shape := geom.Polygon{{X: 0, Y: 0}, {X: 4, Y: 0}, {X: 4, Y: 2}, {X: 0, Y: 2}}
	profile := Profile{Softness: 0.5, Strength: 0.2}
	rng := rand.New(rand.NewSource(9))

	// The edge (4,2)->(0,2) runs exit->entry in shape order.
	out := ApplyIrregularCut(shape, geom.Pt(0, 2), geom.Pt(4, 2), profile, rng)
	require.Len(t, out, len(shape)+Segments(profile))
	assert.GreaterOrEqual(t, out.SignedArea(), 0.0)

	for _, v := range shape {
		_, d := out.NearestVertex(v)
		assert.InDelta(t, 0.0, d, 1e-12, "original vertex %v must survive", v)
	}
}

func TestApplyIrregularCutWithoutMatchingEdge(t *testing.T) {
	shape := geom.Polygon{{X: 0, Y: 0}, {X: 4, Y: 0}, {X: 4, Y: 2}, {X: 0, Y: 2}}
	// Diagonal: both points are vertices but they are not adjacent.
	out := ApplyIrregularCut(shape, geom.Pt(0, 0), geom.Pt(4, 2), Profile{Strength: 1}, rand.New(rand.NewSource(1)))
	assert.Equal(t, shape, out)

	out = ApplyIrregularCut(shape, geom.Pt(1, 1), geom.Pt(3, 1), Profile{Strength: 1}, rand.New(rand.NewSource(1)))
	assert.Equal(t, shape, out)
}

func TestRegistryResolve(t *testing.T) {
	r := DefaultRegistry()
	stone, ok := r.Lookup("stone")
	require.True(t, ok)
	assert.NotEqual(t, DefaultMaterial, stone)
	assert.Equal(t, "stone", r.Material(stone).Name)
	assert.Equal(t, DefaultMaterial, r.Resolve("unobtainium"))
	assert.Equal(t, r.Profile(DefaultMaterial), r.ProfileByTag("unobtainium"))
	assert.Equal(t, DefaultMaterialName, r.Material(MaterialID(200)).Name)
}

func TestParseRegistry(t *testing.T) {
	data := []byte(`
[[material]]
name = "stone"
softness = 0.9
strength = 1.5
friction = 0.2

[[material]]
name = "glass"
softness = 0.0
strength = 0.9
color = "#c0e0ff"
`)
	r, err := ParseRegistry(data)
	require.NoError(t, err)

	stone := r.Material(r.Resolve("stone"))
	assert.Equal(t, Profile{Softness: 0.9, Strength: 1}, stone.Profile)
	assert.InDelta(t, 0.2, stone.Friction, 1e-12)
	assert.InDelta(t, 1.4, stone.Density, 1e-12, "unset fields keep the builtin value")

	glass, ok := r.Lookup("glass")
	require.True(t, ok)
	assert.Equal(t, uint8(0xc0), r.Material(glass).Color.R)
	assert.Equal(t, uint8(0xff), r.Material(glass).Color.A)

	_, err = ParseRegistry([]byte("[[material]]\nsoftness = 1.0\n"))
	assert.Error(t, err)
	_, err = ParseRegistry([]byte("[[material]]\nname = \"x\"\ncolor = \"nope\"\n"))
	assert.Error(t, err)
}

func TestLoadRegistryMissingFileUsesDefaults(t *testing.T) {
	r, err := LoadRegistry(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultRegistry().Names(), r.Names())
}

func TestLoadRegistryFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "materials.toml")
	require.NoError(t, os.WriteFile(path, []byte("[[material]]\nname = \"sand\"\nsoftness = 1.0\nstrength = 0.1\n"), 0o644))

	r, err := LoadRegistry(path)
	require.NoError(t, err)
	_, ok := r.Lookup("sand")
	assert.True(t, ok)
}

func TestMergeKeepsIDs(t *testing.T) {
	r := DefaultRegistry()
	wood := r.Resolve("wood")

	src := NewRegistry()
	_, err := src.Register(Material{Name: "wood", Profile: Profile{Softness: 1, Strength: 1}})
	require.NoError(t, err)
	_, err = src.Register(Material{Name: "clay"})
	require.NoError(t, err)

	require.NoError(t, r.Merge(src))
	assert.Equal(t, wood, r.Resolve("wood"))
	assert.Equal(t, Profile{Softness: 1, Strength: 1}, r.Profile(wood))
	_, ok := r.Lookup("clay")
	assert.True(t, ok)
}
