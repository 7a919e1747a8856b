// Package monitor records debris field statistics over time and renders them as plots.
package monitor

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"sync"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Source is the part of a debris field the plotter reads.
type Source interface {
	TotalMass() float64
	ActiveCount() int
	OccupiedCount() int
}

// Sample is one snapshot of a field.
type Sample struct {
	Step     int
	Mass     float64
	Active   int
	Occupied int
}

// Summary aggregates the recorded samples.
type Summary struct {
	Samples    int
	MeanMass   float64
	MaxMass    float64
	MinMass    float64
	PeakActive float64
	MeanActive float64
	// MassDrift is the last mass minus the first.
	MassDrift float64
}

// MassPlotter accumulates samples and writes PNG plots after a run.
type MassPlotter struct {
	mu        sync.Mutex
	enabled   bool
	outputDir string
	samples   []Sample
	step      int
}

// NewMassPlotter creates a disabled plotter. Call Start to begin recording.
func NewMassPlotter() *MassPlotter {
	return &MassPlotter{}
}

// Start resets the plotter and enables sampling into outputDir.
func (mp *MassPlotter) Start(outputDir string) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}
	mp.outputDir = outputDir
	mp.enabled = true
	mp.samples = mp.samples[:0]
	mp.step = 0
	return nil
}

// Stop disables sampling. Recorded samples are kept.
func (mp *MassPlotter) Stop() {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	mp.enabled = false
}

// Sample records the current state of src.
func (mp *MassPlotter) Sample(src Source) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if !mp.enabled || src == nil {
		return
	}
	mp.samples = append(mp.samples, Sample{
		Step:     mp.step,
		Mass:     src.TotalMass(),
		Active:   src.ActiveCount(),
		Occupied: src.OccupiedCount(),
	})
	mp.step++
}

// Samples returns a copy of the recorded samples.
func (mp *MassPlotter) Samples() []Sample {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	return append([]Sample(nil), mp.samples...)
}

// Summary computes statistics over the recorded samples.
func (mp *MassPlotter) Summary() Summary {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if len(mp.samples) == 0 {
		return Summary{}
	}
	mass := make([]float64, len(mp.samples))
	active := make([]float64, len(mp.samples))
	for i, s := range mp.samples {
		mass[i] = s.Mass
		active[i] = float64(s.Active)
	}
	return Summary{
		Samples:    len(mp.samples),
		MeanMass:   stat.Mean(mass, nil),
		MaxMass:    floats.Max(mass),
		MinMass:    floats.Min(mass),
		PeakActive: floats.Max(active),
		MeanActive: floats.Sum(active) / float64(len(active)),
		MassDrift:  mass[len(mass)-1] - mass[0],
	}
}

// GeneratePlots writes mass.png and activity.png into the output directory and
// returns the number of files written.
func (mp *MassPlotter) GeneratePlots() (int, error) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.outputDir == "" {
		return 0, fmt.Errorf("no output directory configured")
	}
	if len(mp.samples) == 0 {
		return 0, nil
	}

	massPts := make(plotter.XYs, len(mp.samples))
	activePts := make(plotter.XYs, len(mp.samples))
	occupiedPts := make(plotter.XYs, len(mp.samples))
	for i, s := range mp.samples {
		massPts[i] = plotter.XY{X: float64(s.Step), Y: s.Mass}
		activePts[i] = plotter.XY{X: float64(s.Step), Y: float64(s.Active)}
		occupiedPts[i] = plotter.XY{X: float64(s.Step), Y: float64(s.Occupied)}
	}

	pMass := plot.New()
	pMass.Title.Text = "Debris Total Mass"
	pMass.X.Label.Text = "Step"
	pMass.Y.Label.Text = "Mass"
	if err := addLine(pMass, "mass", massPts, color.RGBA{R: 200, G: 120, B: 40, A: 255}); err != nil {
		return 0, err
	}

	pActive := plot.New()
	pActive.Title.Text = "Debris Cell Activity"
	pActive.X.Label.Text = "Step"
	pActive.Y.Label.Text = "Cells"
	if err := addLine(pActive, "active", activePts, color.RGBA{R: 40, G: 120, B: 200, A: 255}); err != nil {
		return 0, err
	}
	if err := addLine(pActive, "occupied", occupiedPts, color.RGBA{R: 90, G: 90, B: 90, A: 255}); err != nil {
		return 0, err
	}
	pActive.Legend.Top = true

	massFile := filepath.Join(mp.outputDir, "mass.png")
	if err := pMass.Save(10*vg.Inch, 4*vg.Inch, massFile); err != nil {
		return 0, fmt.Errorf("save mass plot: %w", err)
	}
	activeFile := filepath.Join(mp.outputDir, "activity.png")
	if err := pActive.Save(10*vg.Inch, 4*vg.Inch, activeFile); err != nil {
		return 1, fmt.Errorf("save activity plot: %w", err)
	}
	return 2, nil
}

func addLine(p *plot.Plot, label string, pts plotter.XYs, c color.Color) error {
	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	line.Color = c
	line.Width = vg.Points(1)
	p.Add(line)
	p.Legend.Add(label, line)
	return nil
}
