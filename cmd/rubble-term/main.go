// Command rubble-term runs the rubble sandbox in a terminal.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"

	"chosenoffset.com/rubble/internal/core/fracture"
	"chosenoffset.com/rubble/internal/game"
	"chosenoffset.com/rubble/internal/simulation"
)

func main() {
	configPath := flag.String("config", "data/simulation.json", "Simulation config file")
	materialsPath := flag.String("materials", "", "Material TOML file (overrides the config)")
	logPath := flag.String("log", "", "Write log output to this file (default: discard)")
	fps := flag.Int("fps", 30, "Frames per second")
	flag.Parse()

	// The terminal belongs to tcell once it starts
	log.SetOutput(io.Discard)
	if *logPath != "" {
		f, err := os.Create(*logPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		log.SetOutput(f)
	}

	cfg, err := simulation.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *materialsPath != "" {
		cfg.Materials = *materialsPath
	}
	registry, err := fracture.LoadRegistry(cfg.Materials)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load materials: %v\n", err)
		os.Exit(1)
	}

	scenes := game.Scenes()
	sandbox, err := game.New(cfg, registry, scenes[0], nil, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create sandbox: %v\n", err)
		os.Exit(1)
	}
	manager := game.NewManager(sandbox, scenes, nil, nil, nil)

	watcher, err := simulation.WatchMaterials(cfg.Materials)
	if err != nil {
		log.Printf("Warning: Material hot reload disabled: %v", err)
	} else {
		defer watcher.Close()
		manager.WatchMaterials(watcher.Updates())
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer screen.Fini()
	screen.EnableMouse()

	run(NewViewer(screen, manager), *fps)
}

func run(v *Viewer, fps int) {
	if fps <= 0 {
		fps = 30
	}
	steps := max(60/fps, 1)
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				return
			}
			eventChan <- ev
		}
	}()

	for {
		select {
		case ev := <-eventChan:
			if !v.HandleEvent(ev) {
				return
			}

		case <-ticker.C:
			// The sandbox steps at a fixed 1/60s; catch up to real time.
			for i := 0; i < steps; i++ {
				if err := v.manager.Update(); err != nil {
					log.Printf("Warning: update failed: %v", err)
					return
				}
			}
			v.Draw()
		}
	}
}
