package terrain

import (
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chosenoffset.com/rubble/internal/core/cut"
	"chosenoffset.com/rubble/internal/core/fracture"
	"chosenoffset.com/rubble/internal/core/geom"
	"chosenoffset.com/rubble/internal/debris"
	"chosenoffset.com/rubble/internal/world"
)

type recordingSink struct {
	meshes    map[world.BodyID][]Mesh
	forgotten []world.BodyID
}

func (s *recordingSink) Forget(id world.BodyID) {
	s.forgotten = append(s.forgotten, id)
}

func (s *recordingSink) SubmitMesh(id world.BodyID, mesh Mesh) {
	if s.meshes == nil {
		s.meshes = make(map[world.BodyID][]Mesh)
	}
	s.meshes[id] = append(s.meshes[id], mesh)
}

func flatRegistry(t *testing.T) (*fracture.Registry, fracture.MaterialID) {
	t.Helper()
	reg := fracture.DefaultRegistry()
	id, err := reg.Register(fracture.Material{Name: "flat", Density: 1})
	require.NoError(t, err)
	return reg, id
}

func TestCutUnitSquare(t *testing.T) {
	reg, flat := flatRegistry(t)
	c := NewCutter(reg, cut.Options{}, 0, rand.New(rand.NewSource(1)))

	square := geom.Polygon{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}
	out, err := c.Cut(square, flat, geom.Pt(0, 0.5), geom.Pt(1, 0.5))
	require.NoError(t, err)

	assert.InDelta(t, 0.5, out.Remaining.Area, 1e-9)
	assert.InDelta(t, 0.5, out.Removed.Area, 1e-9)
	assert.False(t, out.Fallback)
}

func TestCutConservesAreaWithTornEdge(t *testing.T) {
	c := NewCutter(nil, cut.Options{}, 0, rand.New(rand.NewSource(9)))
	stone := c.Registry.Resolve("stone")

	rect := geom.Polygon{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 100, Y: 60}, {X: 0, Y: 60}}
	out, err := c.Cut(rect, stone, geom.Pt(-10, 20), geom.Pt(110, 35))
	require.NoError(t, err)

	assert.InDelta(t, rect.Area(), out.Remaining.Area+out.Removed.Area, 1e-6)
	assert.LessOrEqual(t, out.Removed.Area, out.Remaining.Area)
	assert.Greater(t, len(out.Remaining.Outline), 4, "the torn edge adds vertices")

	for _, frag := range []Fragment{out.Remaining, out.Removed} {
		assert.GreaterOrEqual(t, frag.Outline.SignedArea(), 0.0)
		require.False(t, frag.Fan)
		assert.Len(t, frag.Mesh.Indices, 3*(len(frag.Outline)-2))
		require.Len(t, frag.Mesh.UVs, len(frag.Mesh.Vertices))
		assert.InDelta(t, frag.Mesh.Vertices[1].X/DefaultUVScale, frag.Mesh.UVs[1].X, 1e-12)
	}
}

func TestRandomCutsKeepOutlinesSimple(t *testing.T) {
	rect := geom.Polygon{{X: 0, Y: 0}, {X: 200, Y: 0}, {X: 200, Y: 100}, {X: 0, Y: 100}}
	for _, tag := range []string{"ice", "stone", "metal"} {
		t.Run(tag, func(t *testing.T) {
			c := NewCutter(nil, cut.Options{}, 0, rand.New(rand.NewSource(3)))
			mat := c.Registry.Resolve(tag)
			lines := rand.New(rand.NewSource(11))
			point := func() geom.Point {
				return geom.Pt(lines.Float64()*240-20, lines.Float64()*140-20)
			}

			cuts := 0
			for i := 0; i < 2000; i++ {
				out, err := c.Cut(rect, mat, point(), point())
				if err != nil {
					continue
				}
				cuts++
				for _, frag := range []Fragment{out.Remaining, out.Removed} {
					require.True(t, frag.Outline.IsSimple(), "cut %d: %v", i, frag.Outline)
					require.False(t, frag.Fan, "cut %d", i)
				}
				require.InDelta(t, rect.Area(), out.Remaining.Area+out.Removed.Area, 1e-6, "cut %d", i)
			}
			assert.Greater(t, cuts, 1000)
		})
	}
}

func TestCutSilhouetteKeepsUncutEdges(t *testing.T) {
	c := NewCutter(nil, cut.Options{}, 2, rand.New(rand.NewSource(4)))
	dirt := c.Registry.Resolve("dirt")

	rect := geom.Polygon{{X: 0, Y: 0}, {X: 80, Y: 0}, {X: 80, Y: 40}, {X: 0, Y: 40}}
	out, err := c.Cut(rect, dirt, geom.Pt(-5, 10), geom.Pt(85, 12))
	require.NoError(t, err)

	sil := out.Remaining.Silhouette
	for _, corner := range []geom.Point{{X: 80, Y: 40}, {X: 0, Y: 40}} {
		_, d := sil.NearestVertex(corner)
		assert.InDelta(t, 0.0, d, 1e-9, "corner %v must survive rasterization", corner)
	}
	assert.Greater(t, len(sil), len(out.Remaining.Outline))
}

func TestCutIsDeterministicForSeed(t *testing.T) {
	rect := geom.Polygon{{X: 0, Y: 0}, {X: 50, Y: 0}, {X: 50, Y: 50}, {X: 0, Y: 50}}
	run := func() Output {
		c := NewCutter(nil, cut.Options{}, 1, rand.New(rand.NewSource(77)))
		out, err := c.Cut(rect, c.Registry.Resolve("wood"), geom.Pt(0, 10), geom.Pt(50, 40))
		require.NoError(t, err)
		return out
	}
	if diff := cmp.Diff(run(), run(), cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("cuts diverged (-first +second):\n%s", diff)
	}
}

func TestCutMissReturnsDegenerate(t *testing.T) {
	c := NewCutter(nil, cut.Options{}, 1, nil)
	rect := geom.Polygon{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}}
	_, err := c.Cut(rect, fracture.DefaultMaterial, geom.Pt(20, 0), geom.Pt(20, 10))
	assert.ErrorIs(t, err, cut.ErrDegenerateCut)
}

func TestGetFractureProfile(t *testing.T) {
	c := NewCutter(nil, cut.Options{}, 1, nil)
	assert.Equal(t, fracture.Profile{Softness: 0.05, Strength: 0.7}, c.GetFractureProfile("ice"))
	assert.Equal(t, c.GetFractureProfile(fracture.DefaultMaterialName), c.GetFractureProfile("unobtainium"))
}

type fixture struct {
	world   *world.World
	field   *debris.Field
	sink    *recordingSink
	terrain *Terrain
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	w := world.New()
	cfg := debris.DefaultConfig()
	cfg.Width, cfg.Height, cfg.CellSize = 64, 64, 1
	cfg.Lifetime = 0
	field, err := debris.New(cfg, w, rand.New(rand.NewSource(2)))
	require.NoError(t, err)

	sink := &recordingSink{}
	cutter := NewCutter(nil, cut.Options{}, 1, rand.New(rand.NewSource(3)))
	tr := New(cutter, w, Collaborators{Field: field, Mesh: sink, Collider: w}, 0.5)
	return &fixture{world: w, field: field, sink: sink, terrain: tr}
}

func TestCutBodyDepositsRemovedMass(t *testing.T) {
	fx := newFixture(t)
	rect := geom.Polygon{{X: 10, Y: 10}, {X: 50, Y: 10}, {X: 50, Y: 40}, {X: 10, Y: 40}}
	id := fx.world.Add(rect, fracture.DefaultMaterial)
	fx.field.Occupancy().Sync()
	require.True(t, fx.field.IsSolid(30, 38))

	report, err := fx.terrain.CutBody(id, geom.Pt(0, 30), geom.Pt(60, 30))
	require.NoError(t, err)

	assert.Equal(t, id, report.Body)
	assert.InDelta(t, report.Output.Removed.Area*0.5, report.Mass, 1e-9)
	assert.Greater(t, report.Cells, 0)
	assert.InDelta(t, report.Mass, fx.field.TotalMass(), 1e-6)

	outline, ok := fx.world.Outline(id)
	require.True(t, ok)
	assert.InDelta(t, report.Output.Remaining.Area, outline.Area(), 1e-6)
	assert.Len(t, fx.sink.meshes[id], 1)
	assert.False(t, fx.field.IsSolid(30, 38), "removed region resynced as open")
	assert.True(t, fx.field.IsSolid(30, 15))
}

func TestCutBodyCrumblesSmallRemainder(t *testing.T) {
	fx := newFixture(t)
	fx.terrain.MinBodyArea = 90
	id := fx.world.Add(geom.Polygon{{X: 10, Y: 10}, {X: 20, Y: 10}, {X: 20, Y: 20}, {X: 10, Y: 20}}, fracture.DefaultMaterial)
	fx.field.Occupancy().Sync()

	report, err := fx.terrain.CutBody(id, geom.Pt(0, 16), geom.Pt(30, 16))
	require.NoError(t, err)
	assert.True(t, report.Crumbled)

	_, ok := fx.world.Outline(id)
	assert.False(t, ok, "crumbled body is removed")
	assert.Equal(t, []world.BodyID{id}, fx.sink.forgotten)
	assert.Empty(t, fx.sink.meshes[id])

	density := fx.terrain.Cutter().Registry.Material(fracture.DefaultMaterial).Density
	assert.InDelta(t, 100*density*0.5, report.Mass, 1e-6)
	assert.InDelta(t, report.Mass, fx.field.TotalMass(), 1e-6)
	assert.False(t, fx.field.IsSolid(15, 12))
}

func TestCollapseSkipsCrumbledTarget(t *testing.T) {
	fx := newFixture(t)
	fx.terrain.MinBodyArea = 90
	id := fx.world.Add(geom.Polygon{{X: 10, Y: 10}, {X: 20, Y: 10}, {X: 20, Y: 20}, {X: 10, Y: 20}}, fracture.DefaultMaterial)

	c := fx.terrain.ScheduleCollapse([]Round{
		{Delay: 0.1, Target: id, Entry: geom.Pt(0, 16), Exit: geom.Pt(30, 16)},
		{Delay: 0.1, Target: id, Entry: geom.Pt(0, 12), Exit: geom.Pt(30, 12)},
	})
	for i := 0; i < 4; i++ {
		fx.terrain.Update(0.1)
	}
	require.Len(t, c.Results(), 2)
	assert.False(t, c.Results()[0].Skipped)
	assert.True(t, c.Results()[1].Skipped)
}

func TestCutBodyUnknown(t *testing.T) {
	fx := newFixture(t)
	_, err := fx.terrain.CutBody(world.NoBody, geom.Pt(0, 0), geom.Pt(1, 1))
	assert.ErrorIs(t, err, ErrUnknownBody)
}

func TestCutBodyFailureLeavesBodyUntouched(t *testing.T) {
	fx := newFixture(t)
	rect := geom.Polygon{{X: 10, Y: 10}, {X: 20, Y: 10}, {X: 20, Y: 20}, {X: 10, Y: 20}}
	id := fx.world.Add(rect, fracture.DefaultMaterial)

	_, err := fx.terrain.CutBody(id, geom.Pt(40, 0), geom.Pt(40, 50))
	require.Error(t, err)

	outline, _ := fx.world.Outline(id)
	assert.Equal(t, rect, outline)
	assert.Empty(t, fx.sink.meshes)
	assert.Zero(t, fx.field.TotalMass())
}

func TestCutWithoutCollaborators(t *testing.T) {
	w := world.New()
	id := w.Add(geom.Polygon{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}}, fracture.DefaultMaterial)
	tr := New(NewCutter(nil, cut.Options{}, 1, nil), w, Collaborators{}, 1)

	report, err := tr.CutBody(id, geom.Pt(-1, 4), geom.Pt(11, 4))
	require.NoError(t, err)
	assert.Zero(t, report.Cells)
	tr.Update(1.0 / 60)
}

func TestCutAllOnlyTouchesCrossedBodies(t *testing.T) {
	fx := newFixture(t)
	a := fx.world.Add(geom.Polygon{{X: 5, Y: 5}, {X: 20, Y: 5}, {X: 20, Y: 20}, {X: 5, Y: 20}}, fracture.DefaultMaterial)
	b := fx.world.Add(geom.Polygon{{X: 40, Y: 5}, {X: 55, Y: 5}, {X: 55, Y: 20}, {X: 40, Y: 20}}, fracture.DefaultMaterial)

	reports := fx.terrain.CutAll(geom.Pt(0, 12), geom.Pt(25, 14))
	require.Len(t, reports, 1)
	assert.Equal(t, a, reports[0].Body)

	outline, _ := fx.world.Outline(b)
	assert.InDelta(t, 225.0, outline.Area(), 1e-9)
}

func TestCollapseRoundsFireInSequence(t *testing.T) {
	fx := newFixture(t)
	a := fx.world.Add(geom.Polygon{{X: 5, Y: 5}, {X: 30, Y: 5}, {X: 30, Y: 30}, {X: 5, Y: 30}}, fracture.DefaultMaterial)
	b := fx.world.Add(geom.Polygon{{X: 35, Y: 5}, {X: 60, Y: 5}, {X: 60, Y: 30}, {X: 35, Y: 30}}, fracture.DefaultMaterial)

	c := fx.terrain.ScheduleCollapse([]Round{
		{Delay: 1, Target: a, Entry: geom.Pt(0, 20), Exit: geom.Pt(32, 20)},
		{Delay: 0.5, Target: b, Entry: geom.Pt(33, 20), Exit: geom.Pt(62, 20)},
		{Delay: 0.5, Target: a, Entry: geom.Pt(0, 10), Exit: geom.Pt(32, 10)},
	})
	require.Equal(t, 1, fx.terrain.PendingCollapses())

	fx.terrain.Update(0.6)
	assert.Empty(t, c.Results())

	fx.terrain.Update(0.6)
	require.Len(t, c.Results(), 1)
	assert.Equal(t, a, c.Results()[0].Target)
	assert.NoError(t, c.Results()[0].Err)

	// The second round's timer started after the first finished.
	fx.world.Remove(b)
	fx.terrain.Update(0.3)
	assert.Len(t, c.Results(), 1)
	fx.terrain.Update(0.3)
	require.Len(t, c.Results(), 2)
	assert.True(t, c.Results()[1].Skipped)

	fx.terrain.Update(0.5)
	require.Len(t, c.Results(), 3)
	assert.False(t, c.Results()[2].Skipped)
	assert.True(t, c.Done())
	assert.Zero(t, fx.terrain.PendingCollapses())
}

func TestScheduleEmptyCollapse(t *testing.T) {
	fx := newFixture(t)
	c := fx.terrain.ScheduleCollapse(nil)
	assert.True(t, c.Done())
	assert.Zero(t, fx.terrain.PendingCollapses())
}

func TestPublishSubmitsInitialMesh(t *testing.T) {
	fx := newFixture(t)
	id := fx.world.Add(geom.Polygon{{X: 0, Y: 0}, {X: 8, Y: 0}, {X: 8, Y: 8}, {X: 0, Y: 8}}, fracture.DefaultMaterial)

	require.NoError(t, fx.terrain.Publish(id))
	require.Len(t, fx.sink.meshes[id], 1)
	assert.Len(t, fx.sink.meshes[id][0].Indices, 6)

	assert.ErrorIs(t, fx.terrain.Publish(world.NoBody), ErrUnknownBody)
}
