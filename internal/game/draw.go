package game

import (
	"fmt"
	"image/color"

	"chosenoffset.com/rubble/internal/core/geom"
	"chosenoffset.com/rubble/internal/render"
)

var (
	backgroundColor = color.RGBA{22, 24, 30, 255}
	outlineColor    = color.RGBA{240, 240, 240, 160}
	cutLineColor    = color.RGBA{255, 90, 60, 255}
	hudColor        = color.RGBA{220, 220, 220, 255}
)

// Draw renders the sandbox to the screen.
func (g *Game) Draw(screen render.Image) {
	screen.Fill(backgroundColor)

	g.drawBodies(screen)
	g.drawDebris(screen)
	if g.ShowOutlines {
		g.drawOutlines(screen)
	}
	g.drawDrag(screen)

	g.drawHUD(screen)
	g.drawUI(screen)
}

func needsResize(img render.Image, w, h int) bool {
	bounds := img.Bounds()
	return bounds.Dx() != w || bounds.Dy() != h
}

func (g *Game) drawBodies(screen render.Image) {
	if g.Texture == nil {
		return
	}
	tw, th := g.Texture.Size()
	opts := &render.DrawTrianglesOptions{Repeat: true}
	for _, id := range g.World.IDs() {
		matID, _ := g.World.MaterialOf(id)
		tint := g.Registry.Material(matID).Color
		verts, indices, ok := g.Meshes.Vertices(id, g.Camera, tw, th, tint)
		if !ok {
			continue
		}
		screen.DrawTriangles(verts, indices, g.Texture, opts)
	}
}

func (g *Game) drawDebris(screen render.Image) {
	f := g.Field
	w, h := f.Width(), f.Height()
	if g.DebrisImage == nil || needsResize(g.DebrisImage, w, h) {
		if g.DebrisImage != nil {
			g.DebrisImage.Dispose()
		}
		g.DebrisImage = g.Renderer.NewImage(w, h)
	}

	g.debrisPix = DebrisPixels(g.debrisPix, f, g.Registry, g.ShowGrid)
	g.DebrisImage.WritePixels(g.debrisPix)

	// Cell (0,0)'s top-left corner sits at the grid origin.
	origin := f.Config().Origin
	ox, oy := g.Camera.ToScreen(origin)
	zoom := g.Camera.Zoom
	if zoom <= 0 {
		zoom = 1
	}
	scale := f.CellSize() * float64(zoom)

	opts := &render.DrawImageOptions{GeoM: render.NewGeoM()}
	opts.GeoM.Scale(scale, scale)
	opts.GeoM.Translate(float64(ox), float64(oy))
	screen.DrawImage(g.DebrisImage, opts)
}

func (g *Game) drawOutlines(screen render.Image) {
	for _, id := range g.World.IDs() {
		outline, ok := g.Meshes.Silhouette(id)
		if !ok {
			if outline, ok = g.World.Outline(id); !ok {
				continue
			}
		}
		g.strokePolygon(screen, outline, 1, outlineColor)
	}
}

func (g *Game) strokePolygon(screen render.Image, poly geom.Polygon, width float32, clr color.Color) {
	for i := range poly {
		x0, y0 := g.Camera.ToScreen(poly[i])
		x1, y1 := g.Camera.ToScreen(poly[(i+1)%len(poly)])
		g.Renderer.StrokeLine(screen, x0, y0, x1, y1, width, clr)
	}
}

func (g *Game) drawDrag(screen render.Image) {
	if !g.Drag.Active {
		return
	}
	x0, y0 := g.Camera.ToScreen(g.Drag.Start)
	x1, y1 := g.Camera.ToScreen(g.Drag.End)
	g.Renderer.StrokeLine(screen, x0, y0, x1, y1, 2, cutLineColor)
	g.Renderer.FillCircle(screen, x0, y0, 3, cutLineColor)
}

func (g *Game) drawHUD(screen render.Image) {
	f := g.Field
	mode := "line"
	if g.Terrain.Cutter().Options.Bounded {
		mode = "segment"
	}
	lines := []string{
		fmt.Sprintf("scene %s  bodies %d  cut %s", g.Scene.Name, g.World.Len(), mode),
		fmt.Sprintf("debris %.1f  active %d  cells %d", f.TotalMass(), f.ActiveCount(), f.OccupiedCount()),
		fmt.Sprintf("pour %s  collapses %d", g.Registry.Material(g.SpawnMaterial).Name, g.Terrain.PendingCollapses()),
	}
	y := 16
	for _, line := range lines {
		g.Renderer.DrawText(screen, line, 8, y, hudColor, 1.0)
		y += 14
	}

	help := "drag: cut  rmb: pour  space: collapse  b c g m n r"
	w, _ := g.Renderer.MeasureText(help, 1.0)
	g.Renderer.DrawText(screen, help, g.ScreenWidth-w-8, 16, hudColor, 1.0)
}

func (g *Game) drawUI(screen render.Image) {
	// Draw on-screen messages
	y := 70.0
	for _, msg := range g.Messages {
		alpha := uint8(255 * (msg.TimeLeft / msg.MaxTime))
		g.Renderer.DrawText(screen, msg.Text, 8, int(y), color.RGBA{255, 255, 255, alpha}, 1.0)
		y += 16
	}
}
