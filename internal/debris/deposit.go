package debris

import (
	"chosenoffset.com/rubble/internal/core/fracture"
	"chosenoffset.com/rubble/internal/core/geom"
	"chosenoffset.com/rubble/internal/world"
)

// SpawnInRegion spreads totalMass evenly over the open cells whose centers lie inside
// region and returns how many cells received mass. Solid cells qualify only when the
// live solidity query, with excluded ignored, reports them open; that lets debris land
// inside the body that was just cut. Per-cell quantities are capped at Capacity.
func (f *Field) SpawnInRegion(region geom.Polygon, totalMass float64, material fracture.MaterialID, excluded world.BodyID) int {
	if len(region) < 3 || totalMass <= 0 {
		return 0
	}
	lo, hi := region.Bounds()
	a, b := f.WorldToGrid(lo), f.WorldToGrid(hi)
	x0, y0 := max(a.X, 0), max(a.Y, 0)
	x1, y1 := min(b.X, f.cfg.Width-1), min(b.Y, f.cfg.Height-1)

	var cells []int
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			i := f.index(x, y)
			center := f.GridToWorld(x, y)
			if f.solid[i] && (f.sync.query == nil || f.sync.query.IsSolidAt(center, excluded)) {
				continue
			}
			if !region.Contains(center) {
				continue
			}
			cells = append(cells, i)
		}
	}
	if len(cells) == 0 {
		return 0
	}

	per := totalMass / float64(len(cells))
	for _, i := range cells {
		f.deposit(i, per, material)
	}
	return len(cells)
}

// SpawnPoint adds mass to the cell containing pos. It reports false when pos is outside
// the grid or the cell is solid.
func (f *Field) SpawnPoint(pos geom.Point, mass float64, material fracture.MaterialID) bool {
	c := f.WorldToGrid(pos)
	if mass <= 0 || !f.IsValidCell(c.X, c.Y) {
		return false
	}
	i := f.index(c.X, c.Y)
	if f.solid[i] {
		return false
	}
	f.deposit(i, mass, material)
	return true
}

func (f *Field) deposit(i int, mass float64, material fracture.MaterialID) {
	c := f.cur[i]
	c.Quantity = f.clamp(c.Quantity + mass)
	c.Material = material
	c.Age = 0
	c.VX = (f.rng.Float64()*2 - 1) * f.cfg.Jitter
	c.VY = (f.rng.Float64()*2 - 1) * f.cfg.Jitter
	c.Settled = false
	f.put(i, c)
	f.active.Add(i)
}
