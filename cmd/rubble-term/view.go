package main

import (
	"fmt"
	"image/color"

	"github.com/gdamore/tcell/v2"

	"chosenoffset.com/rubble/internal/core/geom"
	"chosenoffset.com/rubble/internal/game"
)

var (
	skyColor    = tcell.NewRGBColor(18, 20, 26)
	statusStyle = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorBlack)
	dragStyle   = tcell.StyleDefault.Foreground(tcell.ColorRed)
)

// Viewer draws the sandbox into a terminal. Each terminal cell shows two vertically
// stacked samples of the debris grid through a half block.
type Viewer struct {
	screen  tcell.Screen
	manager *game.Manager

	drag game.Drag
}

// NewViewer wraps a manager whose game has no renderer or input attached.
func NewViewer(screen tcell.Screen, manager *game.Manager) *Viewer {
	return &Viewer{screen: screen, manager: manager}
}

func (v *Viewer) game() *game.Game { return v.manager.Game }

// stride returns how many grid cells one sample covers horizontally and vertically so
// the whole grid fits the terminal above the status line.
func (v *Viewer) stride() (int, int) {
	w, h := v.screen.Size()
	rows := 2 * (h - 1)
	f := v.game().Field
	sx := ceilDiv(f.Width(), max(w, 1))
	sy := ceilDiv(f.Height(), max(rows, 1))
	return max(sx, 1), max(sy, 1)
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

// toWorld maps a terminal cell to the world point at the center of its top sample.
func (v *Viewer) toWorld(col, row int) geom.Point {
	sx, sy := v.stride()
	f := v.game().Field
	return f.GridToWorld(col*sx, 2*row*sy)
}

// HandleEvent processes a terminal event and reports whether the viewer keeps running.
func (v *Viewer) HandleEvent(ev tcell.Event) bool {
	g := v.game()
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q':
				return false
			case ' ':
				g.StartCollapse()
			case 'c':
				g.Field.Clear()
				g.ShowMessage("Debris cleared")
			case 'r':
				if err := g.Reset(); err != nil {
					g.ShowMessage(fmt.Sprintf("Reset failed: %v", err))
				}
			case 'n':
				v.manager.NextScene()
			case 'b':
				opts := &g.Terrain.Cutter().Options
				opts.Bounded = !opts.Bounded
			}
		}

	case *tcell.EventMouse:
		col, row := ev.Position()
		p := v.toWorld(col, row)
		switch {
		case ev.Buttons()&tcell.Button1 != 0:
			if !v.drag.Active {
				v.drag = game.Drag{Active: true, Start: p}
			}
			v.drag.End = p
		case ev.Buttons()&tcell.Button2 != 0:
			g.Field.SpawnPoint(p, 1, g.SpawnMaterial)
		case v.drag.Active:
			v.drag.Active = false
			v.drag.End = p
			g.ApplyCut(v.drag)
		}

	case *tcell.EventResize:
		v.screen.Sync()
	}
	return true
}

// Draw renders the current frame and the status line.
func (v *Viewer) Draw() {
	g := v.game()
	f := g.Field
	w, h := v.screen.Size()
	sx, sy := v.stride()

	v.screen.Clear()
	for row := 0; row < h-1; row++ {
		for col := 0; col < w; col++ {
			x := col * sx
			if x >= f.Width() {
				break
			}
			top := v.sample(x, 2*row*sy)
			bottom := v.sample(x, (2*row+1)*sy)
			style := tcell.StyleDefault.Foreground(top).Background(bottom)
			v.screen.SetContent(col, row, '▀', nil, style)
		}
	}

	if v.drag.Active {
		v.drawDrag(sx, sy)
	}

	status := fmt.Sprintf(" %s  mass %.1f  active %d  [drag] cut  [rmb] pour  [space] collapse  [n] scene  [q] quit",
		g.Scene.Name, f.TotalMass(), f.ActiveCount())
	if n := len(g.Messages); n > 0 {
		status = " " + g.Messages[n-1].Text + "  |" + status
	}
	drawString(v.screen, 0, h-1, status, statusStyle)

	v.screen.Show()
}

// sample returns the color of grid cell (x, y): debris first, then the solid body
// under it, then sky.
func (v *Viewer) sample(x, y int) tcell.Color {
	g := v.game()
	f := g.Field
	if !f.IsValidCell(x, y) {
		return skyColor
	}
	if c, ok := f.Cell(x, y); ok && c.Quantity > 0 {
		return toTcell(g.Registry.Material(c.Material).Color, 1)
	}
	if f.IsSolid(x, y) {
		if id, ok := g.World.BodyAt(f.GridToWorld(x, y)); ok {
			matID, _ := g.World.MaterialOf(id)
			return toTcell(g.Registry.Material(matID).Color, 0.6)
		}
	}
	return skyColor
}

func (v *Viewer) drawDrag(sx, sy int) {
	f := v.game().Field
	a, b := f.WorldToGrid(v.drag.Start), f.WorldToGrid(v.drag.End)
	steps := max(abs(b.X-a.X)/sx, abs(b.Y-a.Y)/(2*sy), 1)
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		x := a.X + int(t*float64(b.X-a.X))
		y := a.Y + int(t*float64(b.Y-a.Y))
		v.screen.SetContent(x/sx, y/(2*sy), '•', nil, dragStyle)
	}
}

func toTcell(c color.NRGBA, shade float64) tcell.Color {
	return tcell.NewRGBColor(int32(float64(c.R)*shade), int32(float64(c.G)*shade), int32(float64(c.B)*shade))
}

func drawString(s tcell.Screen, x, y int, str string, style tcell.Style) {
	w, _ := s.Size()
	for _, r := range str {
		if x >= w {
			return
		}
		s.SetContent(x, y, r, nil, style)
		x++
	}
	for ; x < w; x++ {
		s.SetContent(x, y, ' ', nil, style)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
