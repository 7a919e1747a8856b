package terrain

import (
	"errors"
	"fmt"
	"log"

	"chosenoffset.com/rubble/internal/core/fracture"
	"chosenoffset.com/rubble/internal/core/geom"
	"chosenoffset.com/rubble/internal/debris"
	"chosenoffset.com/rubble/internal/world"
)

// ErrUnknownBody is returned when a cut names a body the registry does not hold.
var ErrUnknownBody = errors.New("terrain: unknown body")

// DefaultMinBodyArea is the smallest remaining piece that stays a body.
const DefaultMinBodyArea = 16.0

// Bodies is the rigid-body registry the terrain cuts.
type Bodies interface {
	Outline(id world.BodyID) (geom.Polygon, bool)
	MaterialOf(id world.BodyID) (fracture.MaterialID, bool)
	SetOutline(id world.BodyID, outline geom.Polygon) error
	Remove(id world.BodyID) bool
	IDs() []world.BodyID
}

// ColliderBuilder rebuilds a body's collision shape and reapplies material friction and
// bounciness after a cut.
type ColliderBuilder interface {
	RebuildCollider(id world.BodyID, outline geom.Polygon, material fracture.Material) error
}

// MeshSink receives the triangle mesh of a body after it changes.
type MeshSink interface {
	SubmitMesh(id world.BodyID, mesh Mesh)
}

// MeshForgetter is implemented by mesh sinks that want to hear about removed bodies.
type MeshForgetter interface {
	Forget(id world.BodyID)
}

// Collaborators are the optional services a Terrain reports to. A nil field disables
// only the step that needs it.
type Collaborators struct {
	Field    *debris.Field
	Mesh     MeshSink
	Collider ColliderBuilder
}

// CutReport describes one applied body cut.
type CutReport struct {
	Body   world.BodyID
	Output Output
	// Mass deposited into the debris field and the number of cells that received it.
	Mass  float64
	Cells int
	// Crumbled is set when the remaining piece was too small to keep and the whole
	// body became debris.
	Crumbled bool
}

// Terrain owns the cut pipeline for a set of bodies.
type Terrain struct {
	cutter *Cutter
	bodies Bodies
	collab Collaborators
	// MassScale multiplies removed area × density into debris mass.
	MassScale float64
	// MinBodyArea is the area below which a cut body crumbles entirely.
	MinBodyArea float64

	collapses []*Collapse
}

// New wires a terrain to its collaborators.
func New(cutter *Cutter, bodies Bodies, collab Collaborators, massScale float64) *Terrain {
	return &Terrain{
		cutter:      cutter,
		bodies:      bodies,
		collab:      collab,
		MassScale:   massScale,
		MinBodyArea: DefaultMinBodyArea,
	}
}

func (t *Terrain) Cutter() *Cutter      { return t.cutter }
func (t *Terrain) Field() *debris.Field { return t.collab.Field }

// Publish submits the current mesh of a body to the mesh sink, for bodies that were
// added to the registry directly.
func (t *Terrain) Publish(id world.BodyID) error {
	outline, ok := t.bodies.Outline(id)
	if !ok {
		return fmt.Errorf("publish body %s: %w", id, ErrUnknownBody)
	}
	if t.collab.Mesh == nil {
		return nil
	}
	mesh, err := t.cutter.BuildMesh(outline)
	if err != nil {
		return fmt.Errorf("publish body %s: %w", id, err)
	}
	t.collab.Mesh.SubmitMesh(id, mesh)
	return nil
}

// CutBody cuts one body along entry→exit. The larger piece stays as the body; the
// smaller one turns into debris. When the larger piece is under MinBodyArea the body
// is removed and both pieces turn into debris. A failed cut leaves the body untouched.
func (t *Terrain) CutBody(id world.BodyID, entry, exit geom.Point) (CutReport, error) {
	outline, ok := t.bodies.Outline(id)
	if !ok {
		return CutReport{}, fmt.Errorf("cut body %s: %w", id, ErrUnknownBody)
	}
	matID, _ := t.bodies.MaterialOf(id)
	material := t.cutter.Registry.Material(matID)

	out, err := t.cutter.Cut(outline, matID, entry, exit)
	if err != nil {
		log.Printf("Warning: cut of body %s failed: %v", id, err)
		return CutReport{}, fmt.Errorf("cut body %s: %w", id, err)
	}
	if out.Remaining.Fan || out.Removed.Fan {
		log.Printf("Warning: body %s mesh fell back to a fan triangulation", id)
	}

	report := CutReport{Body: id, Output: out}
	if out.Remaining.Area < t.MinBodyArea {
		t.bodies.Remove(id)
		if f, ok := t.collab.Mesh.(MeshForgetter); ok {
			f.Forget(id)
		}
		report.Crumbled = true
		t.deposit(&report, out.Remaining.Outline, matID, material.Density)
		t.deposit(&report, out.Removed.Outline, matID, material.Density)
		return report, nil
	}

	if err := t.bodies.SetOutline(id, out.Remaining.Outline); err != nil {
		return CutReport{}, fmt.Errorf("cut body %s: %w", id, err)
	}
	if t.collab.Collider != nil {
		if err := t.collab.Collider.RebuildCollider(id, out.Remaining.Outline, material); err != nil {
			log.Printf("Warning: collider rebuild for body %s failed: %v", id, err)
		}
	}
	if t.collab.Mesh != nil {
		t.collab.Mesh.SubmitMesh(id, out.Remaining.Mesh)
	}
	t.deposit(&report, out.Removed.Outline, matID, material.Density)
	return report, nil
}

// deposit turns region into debris mass excluding the cut body and resyncs the
// occupancy around it.
func (t *Terrain) deposit(report *CutReport, region geom.Polygon, matID fracture.MaterialID, density float64) {
	f := t.collab.Field
	if f == nil {
		return
	}
	mass := region.Area() * density * t.MassScale
	report.Mass += mass
	report.Cells += f.SpawnInRegion(region, mass, matID, report.Body)

	lo, hi := region.Bounds()
	a, b := f.WorldToGrid(lo), f.WorldToGrid(hi)
	f.Occupancy().SyncRect(a.X-1, a.Y-1, b.X+1, b.Y+1)
}

// CutAll cuts every body the entry→exit segment touches. Failed cuts are logged and
// skipped.
func (t *Terrain) CutAll(entry, exit geom.Point) []CutReport {
	var reports []CutReport
	for _, id := range t.bodies.IDs() {
		outline, ok := t.bodies.Outline(id)
		if !ok || !geom.SegmentIntersectsPolygon(entry, exit, outline) {
			continue
		}
		r, err := t.CutBody(id, entry, exit)
		if err != nil {
			continue
		}
		reports = append(reports, r)
	}
	return reports
}

// Update advances scheduled collapses and then the debris field by one frame.
func (t *Terrain) Update(dt float64) {
	live := t.collapses[:0]
	for _, c := range t.collapses {
		c.Update(dt)
		if !c.Done() {
			live = append(live, c)
		}
	}
	for i := len(live); i < len(t.collapses); i++ {
		t.collapses[i] = nil
	}
	t.collapses = live

	if t.collab.Field != nil {
		t.collab.Field.Update(dt)
	}
}

// PendingCollapses returns the number of collapse sequences still running.
func (t *Terrain) PendingCollapses() int {
	return len(t.collapses)
}
