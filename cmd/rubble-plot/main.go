// Command rubble-plot runs a scene's collapse headlessly and plots debris mass and
// activity over time.
package main

import (
	"flag"
	"fmt"
	"log"

	"chosenoffset.com/rubble/internal/core/fracture"
	"chosenoffset.com/rubble/internal/debris/monitor"
	"chosenoffset.com/rubble/internal/game"
	"chosenoffset.com/rubble/internal/simulation"
)

func main() {
	configPath := flag.String("config", "data/simulation.json", "Simulation config file")
	sceneName := flag.String("scene", "arch", "Scene to collapse")
	seconds := flag.Float64("seconds", 20, "Simulated seconds to run")
	outDir := flag.String("out", "plots", "Output directory for PNG plots")
	flag.Parse()

	cfg, err := simulation.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	registry, err := fracture.LoadRegistry(cfg.Materials)
	if err != nil {
		log.Fatalf("Failed to load materials: %v", err)
	}

	scene, ok := findScene(*sceneName)
	if !ok {
		log.Fatalf("Unknown scene %q", *sceneName)
	}

	mp := monitor.NewMassPlotter()
	if err := mp.Start(*outDir); err != nil {
		log.Fatalf("Failed to start plotter: %v", err)
	}

	summary, err := Run(cfg, registry, scene, *seconds, mp)
	if err != nil {
		log.Fatalf("Run failed: %v", err)
	}
	mp.Stop()

	n, err := mp.GeneratePlots()
	if err != nil {
		log.Fatalf("Failed to generate plots: %v", err)
	}
	log.Printf("Wrote %d plots to %s", n, *outDir)
	fmt.Printf("samples=%d mean_mass=%.3f max_mass=%.3f peak_active=%.0f\n",
		summary.Samples, summary.MeanMass, summary.MaxMass, summary.PeakActive)
}

func findScene(name string) (game.Scene, bool) {
	for _, s := range game.Scenes() {
		if s.Name == name {
			return s, true
		}
	}
	return game.Scene{}, false
}

// Run collapses scene and samples the debris field once per frame for seconds of
// simulated time.
func Run(cfg *simulation.Config, reg *fracture.Registry, scene game.Scene, seconds float64, mp *monitor.MassPlotter) (monitor.Summary, error) {
	g, err := game.New(cfg, reg, scene, nil, nil)
	if err != nil {
		return monitor.Summary{}, err
	}
	g.StartCollapse()

	frames := int(seconds * 60)
	for i := 0; i < frames; i++ {
		if err := g.Update(); err != nil {
			return monitor.Summary{}, err
		}
		mp.Sample(g.Field)
	}
	return mp.Summary(), nil
}
