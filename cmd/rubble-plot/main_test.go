package main

import (
	"testing"

	"chosenoffset.com/rubble/internal/core/fracture"
	"chosenoffset.com/rubble/internal/debris/monitor"
	"chosenoffset.com/rubble/internal/simulation"
)

func TestRunSamplesEveryFrame(t *testing.T) {
	scene, ok := findScene("quarry")
	if !ok {
		t.Fatal("quarry scene missing")
	}

	mp := monitor.NewMassPlotter()
	if err := mp.Start(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	summary, err := Run(simulation.DefaultConfig(), fracture.DefaultRegistry(), scene, 3, mp)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if summary.Samples != 180 {
		t.Errorf("expected 180 samples, got %d", summary.Samples)
	}
	if summary.MaxMass <= 0 {
		t.Errorf("expected the collapse to produce debris, max mass %v", summary.MaxMass)
	}

	n, err := mp.GeneratePlots()
	if err != nil {
		t.Fatalf("GeneratePlots failed: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 plots, got %d", n)
	}
}

func TestFindSceneUnknown(t *testing.T) {
	if _, ok := findScene("nowhere"); ok {
		t.Error("expected unknown scene to be rejected")
	}
}
