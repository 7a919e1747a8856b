package debris

import (
	"time"

	"chosenoffset.com/rubble/internal/world"
)

// OccupancySync copies the external solidity query into the field's solid grid. Full
// resamples run at most once per Interval of wall-clock time.
type OccupancySync struct {
	Interval time.Duration
	// Now supplies the clock used by Field.Update. Tests replace it.
	Now func() time.Time

	field   *Field
	query   SolidityQuery
	last    time.Time
	started bool
}

func newOccupancySync(f *Field, q SolidityQuery, interval time.Duration) *OccupancySync {
	return &OccupancySync{
		Interval: interval,
		Now:      time.Now,
		field:    f,
		query:    q,
	}
}

// Tick resamples the whole grid when Interval has elapsed since the last resample, or
// on the first call. It reports whether a resample ran.
func (s *OccupancySync) Tick(now time.Time) bool {
	if s.query == nil {
		return false
	}
	if s.started && now.Sub(s.last) < s.Interval {
		return false
	}
	s.started = true
	s.last = now
	s.Sync()
	return true
}

// Sync resamples every cell and returns how many cells changed state.
func (s *OccupancySync) Sync() int {
	return s.SyncRect(0, 0, s.field.cfg.Width-1, s.field.cfg.Height-1)
}

// SyncRect resamples the inclusive cell rectangle (x0, y0)-(x1, y1), clamped to the
// grid, and returns how many cells changed state. A cell that opens up while still
// holding mass is unsettled and scheduled, and the cells above it are woken.
func (s *OccupancySync) SyncRect(x0, y0, x1, y1 int) int {
	if s.query == nil {
		return 0
	}
	f := s.field
	x0, y0 = max(x0, 0), max(y0, 0)
	x1, y1 = min(x1, f.cfg.Width-1), min(y1, f.cfg.Height-1)

	changed := 0
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			i := f.index(x, y)
			solid := s.query.IsSolidAt(f.GridToWorld(x, y), world.NoBody)
			if solid == f.solid[i] {
				continue
			}
			changed++
			f.solid[i] = solid
			if solid {
				f.active.Remove(i)
				continue
			}
			if c := f.cur[i]; c.Quantity > 0 {
				c.Settled = false
				f.put(i, c)
				f.active.Add(i)
			}
			f.wakeAbove(f.active, x, y)
		}
	}
	return changed
}
