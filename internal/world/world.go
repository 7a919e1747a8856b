// Package world is a minimal static-body registry. It plays the part of the rigid-body
// collaborator: it answers point-overlap queries and takes the new collider outline and
// surface properties after a cut. It does not integrate motion.
package world

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"chosenoffset.com/rubble/internal/core/fracture"
	"chosenoffset.com/rubble/internal/core/geom"
)

// BodyID identifies a rigid body.
type BodyID = uuid.UUID

// NoBody is the zero BodyID. Passing it as an ignored body ignores nothing.
var NoBody = uuid.Nil

// ErrUnknownBody is returned for ids that are not registered.
var ErrUnknownBody = errors.New("world: unknown body")

// Body is a static polygonal body.
type Body struct {
	ID         BodyID
	Material   fracture.MaterialID
	Outline    geom.Polygon
	Friction   float64
	Bounciness float64

	lo, hi geom.Point
}

// World holds bodies in insertion order.
type World struct {
	bodies map[BodyID]*Body
	order  []BodyID
}

// New creates an empty world.
func New() *World {
	return &World{bodies: make(map[BodyID]*Body)}
}

// Add registers a body with a fresh id.
func (w *World) Add(outline geom.Polygon, material fracture.MaterialID) BodyID {
	id := uuid.New()
	w.AddWithID(id, outline, material)
	return id
}

// AddWithID registers a body under id, replacing any body already using it.
func (w *World) AddWithID(id BodyID, outline geom.Polygon, material fracture.MaterialID) {
	if _, exists := w.bodies[id]; !exists {
		w.order = append(w.order, id)
	}
	b := &Body{ID: id, Material: material}
	b.setOutline(outline.Clone().Normalize())
	w.bodies[id] = b
}

// Body returns the body registered under id.
func (w *World) Body(id BodyID) (*Body, bool) {
	b, ok := w.bodies[id]
	return b, ok
}

// Outline returns a copy of a body's outline.
func (w *World) Outline(id BodyID) (geom.Polygon, bool) {
	b, ok := w.bodies[id]
	if !ok {
		return nil, false
	}
	return b.Outline.Clone(), true
}

// MaterialOf returns the material id of a body.
func (w *World) MaterialOf(id BodyID) (fracture.MaterialID, bool) {
	b, ok := w.bodies[id]
	if !ok {
		return 0, false
	}
	return b.Material, true
}

// Remove deletes a body. It reports whether the body existed.
func (w *World) Remove(id BodyID) bool {
	if _, ok := w.bodies[id]; !ok {
		return false
	}
	delete(w.bodies, id)
	for i, o := range w.order {
		if o == id {
			w.order = append(w.order[:i], w.order[i+1:]...)
			break
		}
	}
	return true
}

// IDs returns body ids in insertion order.
func (w *World) IDs() []BodyID {
	return append([]BodyID(nil), w.order...)
}

// Len returns the number of bodies.
func (w *World) Len() int {
	return len(w.order)
}

// SetOutline replaces a body's outline without touching its surface properties.
func (w *World) SetOutline(id BodyID, outline geom.Polygon) error {
	b, ok := w.bodies[id]
	if !ok {
		return fmt.Errorf("set outline %s: %w", id, ErrUnknownBody)
	}
	b.setOutline(outline.Clone().Normalize())
	return nil
}

// RebuildCollider replaces a body's outline and reapplies the material's surface
// properties.
func (w *World) RebuildCollider(id BodyID, outline geom.Polygon, material fracture.Material) error {
	b, ok := w.bodies[id]
	if !ok {
		return fmt.Errorf("rebuild collider %s: %w", id, ErrUnknownBody)
	}
	b.setOutline(outline.Clone().Normalize())
	b.Friction = material.Friction
	b.Bounciness = material.Bounciness
	return nil
}

// IsSolidAt reports whether any body other than ignore overlaps p.
func (w *World) IsSolidAt(p geom.Point, ignore BodyID) bool {
	for _, id := range w.order {
		if id == ignore {
			continue
		}
		if w.bodies[id].Contains(p) {
			return true
		}
	}
	return false
}

// BodyAt returns the first body overlapping p.
func (w *World) BodyAt(p geom.Point) (BodyID, bool) {
	for _, id := range w.order {
		if w.bodies[id].Contains(p) {
			return id, true
		}
	}
	return NoBody, false
}

// Contains reports whether p lies inside the body.
func (b *Body) Contains(p geom.Point) bool {
	if p.X < b.lo.X || p.X > b.hi.X || p.Y < b.lo.Y || p.Y > b.hi.Y {
		return false
	}
	return b.Outline.Contains(p)
}

func (b *Body) setOutline(outline geom.Polygon) {
	b.Outline = outline
	b.lo, b.hi = outline.Bounds()
}
