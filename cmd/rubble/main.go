package main

import (
	"errors"
	"flag"
	"log"

	"chosenoffset.com/rubble/internal/core/fracture"
	"chosenoffset.com/rubble/internal/game"
	ebitenrender "chosenoffset.com/rubble/internal/render/ebiten"
	"chosenoffset.com/rubble/internal/simulation"
)

func main() {
	configPath := flag.String("config", "data/simulation.json", "Simulation config file")
	materialsPath := flag.String("materials", "", "Material TOML file (overrides the config)")
	texturePath := flag.String("texture", "", "Surface texture image (default: generated)")
	pattern := flag.String("pattern", "grain", "Generated texture pattern: grain, strata or cracked")
	watch := flag.Bool("watch", true, "Reload the material file when it changes")
	flag.Parse()

	cfg, err := simulation.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *materialsPath != "" {
		cfg.Materials = *materialsPath
	}

	registry, err := fracture.LoadRegistry(cfg.Materials)
	if err != nil {
		log.Fatalf("Failed to load materials: %v", err)
	}
	log.Printf("Loaded %d materials from %s", registry.Len(), cfg.Materials)

	// Initialize the renderer backend (ebiten)
	renderer := ebitenrender.NewRenderer()
	inputMgr := ebitenrender.NewInputManager()
	loader := ebitenrender.NewResourceLoader()
	engine := ebitenrender.NewEngine()

	scenes := game.Scenes()
	sandbox, err := game.New(cfg, registry, scenes[0], renderer, inputMgr)
	if err != nil {
		log.Fatalf("Failed to create sandbox: %v", err)
	}

	manager := game.NewManager(sandbox, scenes, renderer, inputMgr, loader)
	manager.LoadTexture(*texturePath, *pattern, cfg.Cut.Seed)

	if *watch {
		watcher, err := simulation.WatchMaterials(cfg.Materials)
		if err != nil {
			log.Printf("Warning: Material hot reload disabled: %v", err)
		} else {
			defer watcher.Close()
			manager.WatchMaterials(watcher.Updates())
		}
	}

	// Set up the window
	engine.SetWindowSize(cfg.Render.ScreenWidth*2, cfg.Render.ScreenHeight*2)
	engine.SetWindowTitle("Rubble")
	engine.SetWindowResizable(true)

	log.Println("Starting sandbox...")
	if err := engine.RunGame(manager); err != nil && !errors.Is(err, game.ErrQuit) {
		log.Fatal(err)
	}
}
