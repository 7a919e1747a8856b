// Package debris simulates loose material as a granular cellular automaton.
//
// The Field owns a fixed grid of cells plus a separate solid-occupancy grid. Only cells
// in the active set are evaluated each substep, so the cost of a substep follows the
// amount of moving material rather than the size of the grid. All external reads and
// writes go through Field methods.
package debris

import (
	"errors"
	"math"
	"math/rand"
	"time"

	"chosenoffset.com/rubble/internal/core/fracture"
	"chosenoffset.com/rubble/internal/core/geom"
	"chosenoffset.com/rubble/internal/world"
)

// ErrInvalidGrid is returned by New for non-positive grid dimensions or cell size.
var ErrInvalidGrid = errors.New("debris: grid dimensions and cell size must be positive")

// ErrInvalidRate is returned by New when FallSpeed or SlideCoefficient is outside [0, 1].
var ErrInvalidRate = errors.New("debris: transfer rates must be within [0, 1]")

// SolidityQuery reports whether rigid geometry overlaps a world position. The ignored
// body is treated as absent; pass world.NoBody to consider every body.
type SolidityQuery interface {
	IsSolidAt(p geom.Point, ignore world.BodyID) bool
}

// Cell is the state of one grid cell.
type Cell struct {
	Quantity float64
	Material fracture.MaterialID
	Age      float64
	VX, VY   float64
	Settled  bool
}

// Config holds the grid layout and automaton tuning.
type Config struct {
	Width, Height int
	Origin        geom.Point
	CellSize      float64

	Capacity    float64
	MinQuantity float64
	// Gravity is added to VY per second, toward increasing row index.
	Gravity float64
	// Damping is the fraction of velocity kept each substep.
	Damping          float64
	FallSpeed        float64
	SlideCoefficient float64
	// Lifetime in seconds before a cell's mass despawns. Zero disables aging out.
	Lifetime         float64
	SubstepsPerFrame int
	// Jitter bounds the random velocity given to freshly deposited cells.
	Jitter       float64
	SyncInterval time.Duration
	Seed         int64
}

// DefaultConfig returns the tuning used by the demo.
func DefaultConfig() Config {
	return Config{
		Width:            160,
		Height:           90,
		CellSize:         4,
		Capacity:         1,
		MinQuantity:      0.01,
		Gravity:          9.8,
		Damping:          0.9,
		FallSpeed:        0.5,
		SlideCoefficient: 0.25,
		Lifetime:         30,
		SubstepsPerFrame: 2,
		Jitter:           0.5,
		SyncInterval:     250 * time.Millisecond,
		Seed:             1,
	}
}

// Field is the debris grid and its scheduler state.
type Field struct {
	cfg Config

	// cur is read during a substep and next receives its writes. Outside a substep
	// both hold identical contents.
	cur, next []Cell
	solid     []bool

	active, nextActive *indexSet
	occupied           *indexSet

	touched     []int
	touchedMark []bool
	// reserved is the inflow already promised to each destination this substep.
	reserved []float64

	// dirty is set by writes that do not activate cells, so an empty active set may
	// still hide movable mass.
	dirty bool

	rng  *rand.Rand
	sync *OccupancySync
}

// New allocates a field. query may be nil, in which case occupancy sync is a no-op.
// A nil rng is replaced by one seeded from cfg.Seed.
func New(cfg Config, query SolidityQuery, rng *rand.Rand) (*Field, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.CellSize <= 0 {
		return nil, ErrInvalidGrid
	}
	if !inUnit(cfg.FallSpeed) || !inUnit(cfg.SlideCoefficient) {
		return nil, ErrInvalidRate
	}
	if cfg.Capacity <= 0 {
		cfg.Capacity = 1
	}
	if cfg.SubstepsPerFrame <= 0 {
		cfg.SubstepsPerFrame = 1
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(cfg.Seed))
	}

	n := cfg.Width * cfg.Height
	f := &Field{
		cfg:         cfg,
		cur:         make([]Cell, n),
		next:        make([]Cell, n),
		solid:       make([]bool, n),
		active:      newIndexSet(n),
		nextActive:  newIndexSet(n),
		occupied:    newIndexSet(n),
		touchedMark: make([]bool, n),
		reserved:    make([]float64, n),
		dirty:       true,
		rng:         rng,
	}
	f.sync = newOccupancySync(f, query, cfg.SyncInterval)
	return f, nil
}

func inUnit(v float64) bool { return v >= 0 && v <= 1 }

func (f *Field) Config() Config { return f.cfg }
func (f *Field) Width() int     { return f.cfg.Width }
func (f *Field) Height() int    { return f.cfg.Height }

// CellSize returns the world-space edge length of a cell.
func (f *Field) CellSize() float64 { return f.cfg.CellSize }

// Occupancy returns the field's solid-occupancy synchronizer.
func (f *Field) Occupancy() *OccupancySync { return f.sync }

// IsValidCell reports whether (x, y) lies inside the grid.
func (f *Field) IsValidCell(x, y int) bool {
	return x >= 0 && y >= 0 && x < f.cfg.Width && y < f.cfg.Height
}

func (f *Field) index(x, y int) int {
	return y*f.cfg.Width + x
}

func (f *Field) coord(i int) (int, int) {
	return i % f.cfg.Width, i / f.cfg.Width
}

// WorldToGrid returns the cell containing p. The result may be outside the grid.
func (f *Field) WorldToGrid(p geom.Point) geom.Coord {
	return geom.Coord{
		X: int(math.Floor((p.X - f.cfg.Origin.X) / f.cfg.CellSize)),
		Y: int(math.Floor((p.Y - f.cfg.Origin.Y) / f.cfg.CellSize)),
	}
}

// GridToWorld returns the world-space center of cell (x, y).
func (f *Field) GridToWorld(x, y int) geom.Point {
	return geom.Point{
		X: f.cfg.Origin.X + (float64(x)+0.5)*f.cfg.CellSize,
		Y: f.cfg.Origin.Y + (float64(y)+0.5)*f.cfg.CellSize,
	}
}

// GetQuantity returns the mass held by a cell, or 0 outside the grid.
func (f *Field) GetQuantity(x, y int) float64 {
	if !f.IsValidCell(x, y) {
		return 0
	}
	return f.cur[f.index(x, y)].Quantity
}

// SetQuantity overwrites a cell's mass, clamped to [0, Capacity]. The cell is not
// activated; the next substep finds it through the reseed sweep.
func (f *Field) SetQuantity(x, y int, q float64) {
	if !f.IsValidCell(x, y) {
		return
	}
	i := f.index(x, y)
	c := f.cur[i]
	c.Quantity = f.clamp(q)
	if c.Quantity > 0 {
		c.Settled = false
	}
	f.put(i, c)
	f.dirty = true
}

// Cell returns a copy of cell (x, y).
func (f *Field) Cell(x, y int) (Cell, bool) {
	if !f.IsValidCell(x, y) {
		return Cell{}, false
	}
	return f.cur[f.index(x, y)], true
}

// IsSolid reports whether rigid geometry occupied the cell at the last sync.
func (f *Field) IsSolid(x, y int) bool {
	if !f.IsValidCell(x, y) {
		return false
	}
	return f.solid[f.index(x, y)]
}

// IsActive reports whether the cell is scheduled for the next substep.
func (f *Field) IsActive(x, y int) bool {
	if !f.IsValidCell(x, y) {
		return false
	}
	return f.active.Has(f.index(x, y))
}

// ActiveCount returns the size of the active set.
func (f *Field) ActiveCount() int {
	return f.active.Len()
}

// OccupiedCount returns the number of cells holding any mass.
func (f *Field) OccupiedCount() int {
	return f.occupied.Len()
}

// TotalMass sums the quantity of every occupied cell.
func (f *Field) TotalMass() float64 {
	var total float64
	for _, i := range f.occupied.dense {
		total += f.cur[i].Quantity
	}
	return total
}

// ForEachOccupied calls fn for every cell holding mass. fn must not write to the field.
func (f *Field) ForEachOccupied(fn func(x, y int, c Cell)) {
	for _, i := range f.occupied.dense {
		x, y := f.coord(i)
		fn(x, y, f.cur[i])
	}
}

// Clear removes all mass and schedules nothing. Solid flags are kept.
func (f *Field) Clear() {
	for _, i := range append([]int(nil), f.occupied.dense...) {
		f.put(i, Cell{})
	}
	f.active.Clear()
	f.nextActive.Clear()
}

// put writes c into both buffers and keeps the occupied set current. Only valid
// between substeps.
func (f *Field) put(i int, c Cell) {
	if c.Quantity <= 0 {
		c = Cell{}
	}
	f.cur[i] = c
	f.next[i] = c
	f.trackOccupied(i)
}

func (f *Field) trackOccupied(i int) {
	if f.cur[i].Quantity > 0 {
		f.occupied.Add(i)
	} else {
		f.occupied.Remove(i)
	}
}

func (f *Field) activate(x, y int) {
	if f.IsValidCell(x, y) {
		f.active.Add(f.index(x, y))
	}
}

// wakeAbove schedules the three cells above (x, y) into set.
func (f *Field) wakeAbove(set *indexSet, x, y int) {
	for dx := -1; dx <= 1; dx++ {
		if f.IsValidCell(x+dx, y-1) {
			set.Add(f.index(x+dx, y-1))
		}
	}
}

func (f *Field) clamp(q float64) float64 {
	if q < 0 || math.IsNaN(q) {
		return 0
	}
	if q > f.cfg.Capacity {
		return f.cfg.Capacity
	}
	return q
}
