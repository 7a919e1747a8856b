package main

import (
	"flag"
	"fmt"
	"os"

	"chosenoffset.com/rubble/internal/core/fracture"
	"chosenoffset.com/rubble/internal/textures"
)

func main() {
	materials := flag.String("materials", "data/materials.toml", "Material TOML file for the swatch atlas")
	outDir := flag.String("out", "data/textures", "Output directory")
	seed := flag.Int64("seed", 1, "Noise seed")
	flag.Parse()

	fmt.Println("Rubble Texture Generator")
	fmt.Println("========================")
	fmt.Println()

	reg, err := fracture.LoadRegistry(*materials)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	paths, err := textures.GenerateAndSave(*outDir, reg, *seed)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	for _, p := range paths {
		fmt.Printf("  wrote %s\n", p)
	}

	fmt.Println()
	fmt.Println("Done! Pass one to rubble with -texture.")
}
