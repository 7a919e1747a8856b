package terrain

import (
	"log"

	"chosenoffset.com/rubble/internal/core/geom"
	"chosenoffset.com/rubble/internal/world"
)

// Round is one timed cut in a collapse sequence. Delay counts from the completion of
// the previous round, or from scheduling for the first one.
type Round struct {
	Delay       float64
	Target      world.BodyID
	Entry, Exit geom.Point
}

// RoundResult records what happened when a round fired.
type RoundResult struct {
	Index   int
	Target  world.BodyID
	Skipped bool
	Report  CutReport
	Err     error
}

// Collapse runs a sequence of rounds one after another. Each round's cut finishes
// before the next round's timer starts. A round whose target is gone when it fires is
// skipped and never retried.
type Collapse struct {
	terrain *Terrain
	rounds  []Round
	next    int
	timer   float64
	results []RoundResult
}

// ScheduleCollapse queues rounds to be fired by Update.
func (t *Terrain) ScheduleCollapse(rounds []Round) *Collapse {
	c := &Collapse{
		terrain: t,
		rounds:  append([]Round(nil), rounds...),
	}
	if !c.Done() {
		t.collapses = append(t.collapses, c)
	}
	return c
}

// Update advances the current round's timer and fires every round that is due.
func (c *Collapse) Update(dt float64) {
	if c.Done() {
		return
	}
	c.timer += dt
	for !c.Done() && c.timer >= c.rounds[c.next].Delay {
		c.fire()
		c.timer = 0
	}
}

func (c *Collapse) fire() {
	r := c.rounds[c.next]
	res := RoundResult{Index: c.next, Target: r.Target}
	c.next++

	if _, ok := c.terrain.bodies.Outline(r.Target); !ok {
		log.Printf("Warning: collapse round %d skipped, body %s no longer exists", res.Index, r.Target)
		res.Skipped = true
		c.results = append(c.results, res)
		return
	}
	res.Report, res.Err = c.terrain.CutBody(r.Target, r.Entry, r.Exit)
	c.results = append(c.results, res)
}

// Done reports whether every round has fired or been skipped.
func (c *Collapse) Done() bool {
	return c.next >= len(c.rounds)
}

// Results returns the outcome of each round fired so far, in order.
func (c *Collapse) Results() []RoundResult {
	return append([]RoundResult(nil), c.results...)
}
