// Package game is the interactive sandbox: drag to cut bodies, watch the removed
// material pour into the debris field.
package game

import (
	"fmt"
	"log"
	"math/rand"

	"chosenoffset.com/rubble/internal/core/fracture"
	"chosenoffset.com/rubble/internal/debris"
	"chosenoffset.com/rubble/internal/render"
	"chosenoffset.com/rubble/internal/simulation"
	"chosenoffset.com/rubble/internal/terrain"
	"chosenoffset.com/rubble/internal/world"
)

// Minimum drag length in world units before a release counts as a cut.
const minCutLength = 4

// Debris mass poured per frame while the right mouse button is held.
const pourMass = 0.5

// Game holds all sandbox state and logic.
type Game struct {
	ScreenWidth  int
	ScreenHeight int
	Config       *simulation.Config
	Renderer     render.Renderer
	InputMgr     render.InputManager
	Camera       render.Camera

	// Terrain
	Registry *fracture.Registry
	Scene    Scene
	World    *world.World
	Field    *debris.Field
	Terrain  *terrain.Terrain
	Meshes   *MeshCache
	BodyIDs  map[string]world.BodyID

	// Render textures
	Texture     render.Image // Tiled surface texture for body meshes
	DebrisImage render.Image // One pixel per debris cell
	debrisPix   []byte

	// UI state
	Drag          Drag
	SpawnMaterial fracture.MaterialID
	ShowGrid      bool
	ShowOutlines  bool
	Messages      []Message
	LastCuts      []terrain.CutReport

	// Debug
	FrameCount int
}

// New creates a sandbox running scene. reg may be shared with a material watcher
// through ApplyMaterials.
func New(cfg *simulation.Config, reg *fracture.Registry, scene Scene, r render.Renderer, input render.InputManager) (*Game, error) {
	if cfg == nil {
		cfg = simulation.DefaultConfig()
	}
	if reg == nil {
		reg = fracture.DefaultRegistry()
	}
	g := &Game{
		ScreenWidth:   cfg.Render.ScreenWidth,
		ScreenHeight:  cfg.Render.ScreenHeight,
		Config:        cfg,
		Renderer:      r,
		InputMgr:      input,
		Camera:        render.Camera{Zoom: 1, Snap: true},
		Registry:      reg,
		Scene:         scene,
		SpawnMaterial: reg.Resolve("dirt"),
		ShowGrid:      cfg.Render.ShowGrid,
		ShowOutlines:  cfg.Render.ShowOutlines,
	}
	if err := g.Reset(); err != nil {
		return nil, err
	}
	return g, nil
}

// Reset rebuilds the world, debris field and terrain from the current scene.
func (g *Game) Reset() error {
	cfg := g.Config
	g.World = world.New()
	g.Meshes = NewMeshCache()
	g.BodyIDs = g.Scene.Populate(g.World, g.Registry)

	field, err := debris.New(cfg.DebrisSettings(), g.World, rand.New(rand.NewSource(cfg.Debris.Seed)))
	if err != nil {
		return fmt.Errorf("failed to create debris field: %w", err)
	}
	g.Field = field

	cutter := terrain.NewCutter(g.Registry, cfg.CutOptions(), cfg.Cut.PixelSize, rand.New(rand.NewSource(cfg.Cut.Seed)))
	g.Terrain = terrain.New(cutter, g.World, terrain.Collaborators{
		Field:    field,
		Mesh:     g.Meshes,
		Collider: g.World,
	}, cfg.Cut.MassScale)
	g.Terrain.MinBodyArea = cfg.Cut.MinBodyArea

	for _, id := range g.World.IDs() {
		if err := g.Terrain.Publish(id); err != nil {
			log.Printf("Warning: %v", err)
		}
	}
	field.Occupancy().Sync()

	g.Drag = Drag{}
	g.LastCuts = nil
	log.Printf("Loaded scene %q: %d bodies, %dx%d debris grid", g.Scene.Name, g.World.Len(), field.Width(), field.Height())
	return nil
}

// LoadScene switches to scene and resets.
func (g *Game) LoadScene(scene Scene) error {
	g.Scene = scene
	if err := g.Reset(); err != nil {
		return err
	}
	g.ShowMessage(fmt.Sprintf("Scene: %s", scene.Name))
	return nil
}

// ApplyMaterials merges a reloaded material file into the live registry. Existing tags
// keep their ids, so bodies and debris cells pick up the new values in place.
func (g *Game) ApplyMaterials(reg *fracture.Registry) {
	if err := g.Registry.Merge(reg); err != nil {
		log.Printf("Warning: material reload failed: %v", err)
		return
	}
	for _, id := range g.World.IDs() {
		matID, _ := g.World.MaterialOf(id)
		outline, _ := g.World.Outline(id)
		if err := g.World.RebuildCollider(id, outline, g.Registry.Material(matID)); err != nil {
			log.Printf("Warning: %v", err)
		}
	}
	g.ShowMessage(fmt.Sprintf("Materials reloaded (%d)", g.Registry.Len()))
}

// Update handles sandbox logic updates.
func (g *Game) Update() error {
	// Delta time for timers (assuming 60 FPS)
	dt := 1.0 / 60.0

	g.updateMessages(dt)
	g.handleInput()
	g.Terrain.Update(dt)

	g.FrameCount++
	return nil
}

// Layout returns the game's logical screen size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.ScreenWidth, g.ScreenHeight
}

func (g *Game) handleInput() {
	in := g.InputMgr
	if in == nil {
		return
	}

	cx, cy := in.GetCursorPosition()
	cursor := g.Camera.ToWorld(cx, cy)

	// Left drag draws the cut line
	if in.IsMouseButtonJustPressed(render.MouseButtonLeft) {
		g.Drag = Drag{Active: true, Start: cursor, End: cursor}
	}
	if g.Drag.Active {
		g.Drag.End = cursor
		if in.IsMouseButtonJustReleased(render.MouseButtonLeft) {
			g.Drag.Active = false
			g.ApplyCut(g.Drag)
		}
	}

	// Right button pours debris
	if in.IsMouseButtonPressed(render.MouseButtonRight) {
		g.Field.SpawnPoint(cursor, pourMass, g.SpawnMaterial)
	}

	if in.IsKeyJustPressed(render.KeySpace) {
		g.StartCollapse()
	}
	if in.IsKeyJustPressed(render.KeyB) {
		opts := &g.Terrain.Cutter().Options
		opts.Bounded = !opts.Bounded
		if opts.Bounded {
			g.ShowMessage("Cut line: segment")
		} else {
			g.ShowMessage("Cut line: infinite")
		}
	}
	if in.IsKeyJustPressed(render.KeyC) {
		g.Field.Clear()
		g.ShowMessage("Debris cleared")
	}
	if in.IsKeyJustPressed(render.KeyG) {
		g.ShowGrid = !g.ShowGrid
	}
	if in.IsKeyJustPressed(render.KeyM) {
		g.SpawnMaterial = fracture.MaterialID((int(g.SpawnMaterial) + 1) % g.Registry.Len())
		g.ShowMessage(fmt.Sprintf("Pouring %s", g.Registry.Material(g.SpawnMaterial).Name))
	}
	if in.IsKeyJustPressed(render.KeyR) {
		if err := g.Reset(); err != nil {
			log.Printf("Warning: reset failed: %v", err)
		}
		g.ShowMessage("Scene reset")
	}
}

// ApplyCut cuts every body the dragged line crosses. Short drags are ignored.
func (g *Game) ApplyCut(d Drag) []terrain.CutReport {
	if d.Length() < minCutLength {
		return nil
	}
	g.LastCuts = g.Terrain.CutAll(d.Start, d.End)
	if len(g.LastCuts) == 0 {
		return nil
	}
	var mass float64
	for _, r := range g.LastCuts {
		mass += r.Mass
	}
	g.ShowMessage(fmt.Sprintf("Cut %d bodies, %.1f debris", len(g.LastCuts), mass))
	return g.LastCuts
}

// StartCollapse schedules the scene's scripted collapse.
func (g *Game) StartCollapse() {
	if len(g.Scene.Collapse) == 0 {
		g.ShowMessage("Nothing to collapse")
		return
	}
	g.Terrain.ScheduleCollapse(g.Scene.Rounds(g.BodyIDs))
	g.ShowMessage("Collapse started")
}

func (g *Game) updateMessages(dt float64) {
	var active []Message
	for _, msg := range g.Messages {
		msg.TimeLeft -= dt
		if msg.TimeLeft > 0 {
			active = append(active, msg)
		}
	}
	g.Messages = active
}

// ShowMessage adds a new message to be displayed on screen.
func (g *Game) ShowMessage(text string) {
	g.Messages = append(g.Messages, Message{
		Text:     text,
		TimeLeft: 3.0,
		MaxTime:  3.0,
	})

	log.Printf("Message: %s", text)
}
