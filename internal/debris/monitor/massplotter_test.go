package monitor

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"chosenoffset.com/rubble/internal/core/geom"
	"chosenoffset.com/rubble/internal/debris"
	"chosenoffset.com/rubble/internal/world"
)

type fixedSource struct {
	mass             float64
	active, occupied int
}

func (s *fixedSource) TotalMass() float64 { return s.mass }
func (s *fixedSource) ActiveCount() int   { return s.active }
func (s *fixedSource) OccupiedCount() int { return s.occupied }

func TestMassPlotter_SampleRequiresStart(t *testing.T) {
	mp := NewMassPlotter()
	mp.Sample(&fixedSource{mass: 1})
	if n := len(mp.Samples()); n != 0 {
		t.Fatalf("expected no samples before Start, got %d", n)
	}

	if err := mp.Start(t.TempDir()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	mp.Sample(&fixedSource{mass: 1})
	mp.Sample(nil)
	mp.Stop()
	mp.Sample(&fixedSource{mass: 2})

	if n := len(mp.Samples()); n != 1 {
		t.Errorf("expected 1 sample, got %d", n)
	}
}

func TestMassPlotter_Summary(t *testing.T) {
	mp := NewMassPlotter()
	if err := mp.Start(t.TempDir()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	for _, s := range []fixedSource{{4, 10, 20}, {3, 6, 20}, {2, 2, 10}} {
		mp.Sample(&s)
	}

	sum := mp.Summary()
	if sum.Samples != 3 {
		t.Errorf("expected 3 samples, got %d", sum.Samples)
	}
	if sum.MeanMass != 3 {
		t.Errorf("expected mean mass 3, got %f", sum.MeanMass)
	}
	if sum.MaxMass != 4 || sum.MinMass != 2 {
		t.Errorf("expected mass range [2, 4], got [%f, %f]", sum.MinMass, sum.MaxMass)
	}
	if sum.PeakActive != 10 {
		t.Errorf("expected peak active 10, got %f", sum.PeakActive)
	}
	if sum.MassDrift != -2 {
		t.Errorf("expected drift -2, got %f", sum.MassDrift)
	}
}

func TestMassPlotter_GeneratePlotsFromField(t *testing.T) {
	cfg := debris.DefaultConfig()
	cfg.Width, cfg.Height, cfg.CellSize = 24, 24, 1
	f, err := debris.New(cfg, nil, rand.New(rand.NewSource(3)))
	if err != nil {
		t.Fatalf("debris.New failed: %v", err)
	}
	f.SpawnInRegion(geom.Polygon{{X: 4, Y: 0}, {X: 20, Y: 0}, {X: 20, Y: 8}, {X: 4, Y: 8}}, 40, 0, world.NoBody)

	outputDir := filepath.Join(t.TempDir(), "plots")
	mp := NewMassPlotter()
	if err := mp.Start(outputDir); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	for i := 0; i < 30; i++ {
		f.Update(1.0 / 60)
		mp.Sample(f)
	}

	n, err := mp.GeneratePlots()
	if err != nil {
		t.Fatalf("GeneratePlots failed: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 plots, got %d", n)
	}
	for _, name := range []string{"mass.png", "activity.png"} {
		if _, err := os.Stat(filepath.Join(outputDir, name)); err != nil {
			t.Errorf("expected %s to exist: %v", name, err)
		}
	}

	if drift := mp.Summary().MassDrift; drift > 1e-9 || drift < -1e-9 {
		t.Errorf("expected mass to be conserved without aging, drift %g", drift)
	}
}

func TestMassPlotter_GeneratePlotsWithoutDir(t *testing.T) {
	mp := NewMassPlotter()
	if _, err := mp.GeneratePlots(); err == nil {
		t.Error("expected error without output directory")
	}
}
