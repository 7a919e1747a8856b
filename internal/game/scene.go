package game

import (
	"log"

	"chosenoffset.com/rubble/internal/core/fracture"
	"chosenoffset.com/rubble/internal/core/geom"
	"chosenoffset.com/rubble/internal/terrain"
	"chosenoffset.com/rubble/internal/world"
)

// SceneBody is one static body placed when a scene loads.
type SceneBody struct {
	Name     string
	Material string // Material tag, resolved through the registry
	Outline  geom.Polygon
}

// CollapseCut is one round of a scene's scripted collapse.
type CollapseCut struct {
	Body        string
	Delay       float64 // Seconds after the previous round
	Entry, Exit geom.Point
}

// Scene is a set of bodies plus the collapse that Space triggers.
type Scene struct {
	Name     string
	Bodies   []SceneBody
	Collapse []CollapseCut
}

func rect(x0, y0, x1, y1 float64) geom.Polygon {
	return geom.Polygon{{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1}}
}

// Scenes returns the builtin sandbox scenes. They are laid out for a 640x360 world.
func Scenes() []Scene {
	return []Scene{
		{
			Name: "arch",
			Bodies: []SceneBody{
				{Name: "ground", Material: "stone", Outline: rect(0, 320, 640, 360)},
				{Name: "mound", Material: "dirt", Outline: geom.Polygon{{X: 20, Y: 320}, {X: 60, Y: 272}, {X: 112, Y: 262}, {X: 144, Y: 320}}},
				{Name: "left pillar", Material: "wood", Outline: rect(150, 140, 190, 320)},
				{Name: "right pillar", Material: "wood", Outline: rect(450, 140, 490, 320)},
				{Name: "lintel", Material: "stone", Outline: rect(130, 110, 510, 140)},
				{Name: "cap", Material: "ice", Outline: rect(280, 70, 360, 110)},
			},
			Collapse: []CollapseCut{
				{Body: "left pillar", Delay: 0.3, Entry: geom.Pt(140, 290), Exit: geom.Pt(200, 276)},
				{Body: "right pillar", Delay: 0.5, Entry: geom.Pt(440, 270), Exit: geom.Pt(500, 284)},
				{Body: "lintel", Delay: 0.5, Entry: geom.Pt(300, 100), Exit: geom.Pt(330, 150)},
				{Body: "cap", Delay: 0.4, Entry: geom.Pt(270, 100), Exit: geom.Pt(370, 80)},
				{Body: "lintel", Delay: 0.6, Entry: geom.Pt(400, 100), Exit: geom.Pt(420, 150)},
			},
		},
		{
			Name: "quarry",
			Bodies: []SceneBody{
				{Name: "floor", Material: "stone", Outline: rect(0, 330, 640, 360)},
				{Name: "cliff", Material: "dirt", Outline: geom.Polygon{{X: 340, Y: 120}, {X: 640, Y: 96}, {X: 640, Y: 330}, {X: 290, Y: 330}, {X: 320, Y: 210}}},
				{Name: "seam", Material: "metal", Outline: rect(420, 230, 640, 246)},
				{Name: "boulder", Material: "stone", Outline: geom.Polygon{{X: 80, Y: 330}, {X: 96, Y: 290}, {X: 140, Y: 280}, {X: 170, Y: 304}, {X: 160, Y: 330}}},
			},
			Collapse: []CollapseCut{
				{Body: "cliff", Delay: 0.2, Entry: geom.Pt(300, 130), Exit: geom.Pt(420, 150)},
				{Body: "cliff", Delay: 0.4, Entry: geom.Pt(300, 170), Exit: geom.Pt(400, 200)},
				{Body: "cliff", Delay: 0.4, Entry: geom.Pt(290, 240), Exit: geom.Pt(380, 260)},
				{Body: "seam", Delay: 0.6, Entry: geom.Pt(500, 220), Exit: geom.Pt(520, 260)},
			},
		},
	}
}

// Populate adds the scene's bodies to w and returns their ids by name.
func (s Scene) Populate(w *world.World, reg *fracture.Registry) map[string]world.BodyID {
	ids := make(map[string]world.BodyID, len(s.Bodies))
	for _, b := range s.Bodies {
		matID, ok := reg.Lookup(b.Material)
		if !ok {
			log.Printf("Warning: scene %q body %q uses unknown material %q", s.Name, b.Name, b.Material)
		}
		id := w.Add(b.Outline, matID)
		if err := w.RebuildCollider(id, b.Outline, reg.Material(matID)); err != nil {
			log.Printf("Warning: collider for %q: %v", b.Name, err)
		}
		ids[b.Name] = id
	}
	return ids
}

// Rounds resolves the scene's collapse against the body ids returned by Populate.
// Rounds naming a body the scene does not have target NoBody and are skipped when they
// fire.
func (s Scene) Rounds(ids map[string]world.BodyID) []terrain.Round {
	rounds := make([]terrain.Round, 0, len(s.Collapse))
	for _, c := range s.Collapse {
		rounds = append(rounds, terrain.Round{
			Delay:  c.Delay,
			Target: ids[c.Body],
			Entry:  c.Entry,
			Exit:   c.Exit,
		})
	}
	return rounds
}
