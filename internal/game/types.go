package game

import (
	"chosenoffset.com/rubble/internal/core/geom"
)

// Message represents an on-screen message that fades over time.
type Message struct {
	Text     string
	TimeLeft float64 // Seconds remaining
	MaxTime  float64 // Initial duration
}

// Drag tracks a cut line being drawn with the mouse, in world coordinates.
type Drag struct {
	Active     bool
	Start, End geom.Point
}

// Length returns the world length of the dragged line.
func (d Drag) Length() float64 {
	return d.Start.Dist(d.End)
}
