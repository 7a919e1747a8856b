package debris

import "math"

// spareEpsilon is the smallest spare capacity worth transferring into.
const spareEpsilon = 1e-9

// Update advances one rendering frame: age every occupied cell, run the configured
// number of substeps and give the occupancy sync a chance to resample.
func (f *Field) Update(dt float64) {
	f.Age(dt)
	sub := dt / float64(f.cfg.SubstepsPerFrame)
	for i := 0; i < f.cfg.SubstepsPerFrame; i++ {
		f.Step(sub)
	}
	f.sync.Tick(f.sync.Now())
}

// Step runs one substep over the active set. Every decision reads the state from the
// start of the substep, so the evaluation order of active cells never changes the
// outcome beyond the random slide tie-break.
func (f *Field) Step(dt float64) {
	if f.active.Len() == 0 && f.dirty {
		f.reseed()
	}
	if f.active.Len() == 0 {
		return
	}

	for _, i := range f.active.dense {
		f.evaluate(i, dt)
	}

	f.cur, f.next = f.next, f.cur
	for _, i := range f.touched {
		c := f.cur[i]
		c.Quantity = f.clamp(c.Quantity)
		if c.Quantity <= 0 {
			c = Cell{}
		}
		f.cur[i] = c
		f.next[i] = c
		f.reserved[i] = 0
		f.touchedMark[i] = false
		f.trackOccupied(i)
	}
	f.touched = f.touched[:0]

	f.active, f.nextActive = f.nextActive, f.active
	f.nextActive.Clear()
}

func (f *Field) evaluate(i int, dt float64) {
	c := f.cur[i]
	if f.solid[i] || c.Quantity < f.cfg.MinQuantity {
		return
	}
	x, y := f.coord(i)

	vx := c.VX * f.cfg.Damping
	vy := (c.VY + f.cfg.Gravity*dt) * f.cfg.Damping
	f.touch(i)
	f.next[i].VX, f.next[i].VY = vx, vy

	if below, ok := f.openBelow(x, y+1); ok {
		spare := f.spare(below)
		if spare > spareEpsilon {
			f.transfer(i, below, math.Min(math.Min(c.Quantity*f.cfg.FallSpeed, spare), c.Quantity), vx, vy)
			f.nextActive.Add(i)
			f.nextActive.Add(below)
			f.wakeAbove(f.nextActive, x, y)
			return
		}
	}

	if dst, ok := f.slideTarget(x, y, vx); ok {
		amount := math.Min(math.Min(c.Quantity*f.cfg.SlideCoefficient, f.spare(dst)), c.Quantity)
		if amount > spareEpsilon {
			f.transfer(i, dst, amount, vx, vy)
			f.nextActive.Add(i)
			f.nextActive.Add(dst)
			f.wakeAbove(f.nextActive, x, y)
			return
		}
	}

	f.next[i].Settled = true
	f.next[i].VX, f.next[i].VY = 0, 0
}

// openBelow returns the index of (x, y) when it is inside the grid and not solid.
func (f *Field) openBelow(x, y int) (int, bool) {
	if !f.IsValidCell(x, y) {
		return 0, false
	}
	i := f.index(x, y)
	if f.solid[i] {
		return 0, false
	}
	return i, true
}

// slideTarget picks between the down-left and down-right neighbors. The sign of vx
// chooses the preferred side and a coin flip breaks a zero velocity. A side only
// qualifies while it is below half capacity and the cell beside the source is open, so
// mass never squeezes between two solids that meet at a corner.
func (f *Field) slideTarget(x, y int, vx float64) (int, bool) {
	dir := 1
	switch {
	case vx < 0:
		dir = -1
	case vx == 0 && f.rng.Intn(2) == 0:
		dir = -1
	}
	for _, d := range [2]int{dir, -dir} {
		if _, ok := f.openBelow(x+d, y); !ok {
			continue
		}
		i, ok := f.openBelow(x+d, y+1)
		if !ok {
			continue
		}
		if f.cur[i].Quantity+f.reserved[i] < f.cfg.Capacity/2 {
			return i, true
		}
	}
	return 0, false
}

// spare is the room left in a destination after inflows already promised this substep.
// Outflows from the destination are ignored, which keeps the bound safe in any order.
func (f *Field) spare(i int) float64 {
	return f.cfg.Capacity - f.cur[i].Quantity - f.reserved[i]
}

func (f *Field) transfer(src, dst int, amount, vx, vy float64) {
	f.touch(src)
	f.touch(dst)
	f.next[src].Quantity -= amount
	f.next[src].Settled = false

	d := &f.next[dst]
	if d.Quantity <= 0 {
		s := f.cur[src]
		d.Material = s.Material
		d.Age = s.Age
		d.VX, d.VY = vx, vy
	}
	d.Quantity += amount
	d.Settled = false
	f.reserved[dst] += amount
}

func (f *Field) touch(i int) {
	if !f.touchedMark[i] {
		f.touchedMark[i] = true
		f.touched = append(f.touched, i)
	}
}

// reseed rebuilds the active set from a sweep over every occupied cell. It runs only
// when the active set has drained while unscheduled writes may have left movable mass
// behind.
func (f *Field) reseed() {
	f.dirty = false
	for _, i := range f.occupied.dense {
		c := f.cur[i]
		if !f.solid[i] && !c.Settled && c.Quantity >= f.cfg.MinQuantity {
			f.active.Add(i)
		}
	}
}

// Age advances every occupied cell's age. Cells past Lifetime lose their mass and wake
// the cells above them.
func (f *Field) Age(dt float64) {
	if dt <= 0 {
		return
	}
	var expired []int
	for _, i := range f.occupied.dense {
		f.cur[i].Age += dt
		f.next[i].Age = f.cur[i].Age
		if f.cfg.Lifetime > 0 && f.cur[i].Age >= f.cfg.Lifetime {
			expired = append(expired, i)
		}
	}
	for _, i := range expired {
		f.put(i, Cell{})
		f.active.Remove(i)
		x, y := f.coord(i)
		f.wakeAbove(f.active, x, y)
	}
}
