package game

import (
	"errors"
	"log"

	"chosenoffset.com/rubble/internal/core/fracture"
	"chosenoffset.com/rubble/internal/render"
	"chosenoffset.com/rubble/internal/textures"
)

// ErrQuit is returned from Update when the player asks to leave.
var ErrQuit = errors.New("game: quit")

// Manager owns the sandbox and everything around it: scene switching, material
// reloads and the surface texture.
type Manager struct {
	ScreenWidth  int
	ScreenHeight int
	Game         *Game
	Renderer     render.Renderer
	InputMgr     render.InputManager
	Loader       render.ResourceLoader

	Scenes  []Scene
	Current int

	materials <-chan *fracture.Registry
}

// NewManager creates a new manager around g. g must have been built from scenes[0].
func NewManager(g *Game, scenes []Scene, r render.Renderer, input render.InputManager, loader render.ResourceLoader) *Manager {
	return &Manager{
		ScreenWidth:  g.ScreenWidth,
		ScreenHeight: g.ScreenHeight,
		Game:         g,
		Renderer:     r,
		InputMgr:     input,
		Loader:       loader,
		Scenes:       scenes,
	}
}

// WatchMaterials makes Update apply registries received on updates.
func (m *Manager) WatchMaterials(updates <-chan *fracture.Registry) {
	m.materials = updates
}

// LoadTexture loads the body surface texture from path. An empty path or a load
// failure falls back to a generated texture with the named pattern.
func (m *Manager) LoadTexture(path, pattern string, seed int64) {
	if path != "" && m.Loader != nil {
		img, err := m.Loader.LoadImage(path)
		if err == nil {
			m.Game.Texture = img
			log.Printf("Loaded texture: %s", path)
			return
		}
		log.Printf("Warning: Could not load texture %s: %v", path, err)
	}
	gen := textures.Generate(pattern, textures.TileSize, seed)
	img := m.Renderer.NewImage(textures.TileSize, textures.TileSize)
	img.WritePixels(gen.Pix)
	m.Game.Texture = img
}

// Update updates the manager state and then the sandbox.
func (m *Manager) Update() error {
	if m.InputMgr != nil {
		if m.InputMgr.IsKeyJustPressed(render.KeyEscape) {
			return ErrQuit
		}
		if m.InputMgr.IsKeyJustPressed(render.KeyN) && len(m.Scenes) > 1 {
			m.NextScene()
		}
	}

	m.drainMaterials()
	return m.Game.Update()
}

// NextScene switches the sandbox to the next scene, wrapping around.
func (m *Manager) NextScene() {
	m.Current = (m.Current + 1) % len(m.Scenes)
	if err := m.Game.LoadScene(m.Scenes[m.Current]); err != nil {
		log.Printf("Warning: Could not load scene %q: %v", m.Scenes[m.Current].Name, err)
	}
}

func (m *Manager) drainMaterials() {
	if m.materials == nil {
		return
	}
	for {
		select {
		case reg, ok := <-m.materials:
			if !ok {
				m.materials = nil
				return
			}
			m.Game.ApplyMaterials(reg)
		default:
			return
		}
	}
}

// Draw draws the sandbox.
func (m *Manager) Draw(screen render.Image) {
	m.Game.Draw(screen)
}

// Layout returns the logical screen size.
func (m *Manager) Layout(outsideWidth, outsideHeight int) (int, int) {
	return m.ScreenWidth, m.ScreenHeight
}
