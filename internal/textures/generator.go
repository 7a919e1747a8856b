// Package textures generates the procedural surface textures body meshes are drawn
// with. Textures are light and mostly grey so the renderer can tint them per material.
package textures

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math/rand"
	"os"
	"path/filepath"

	"chosenoffset.com/rubble/internal/core/fracture"
)

// TileSize is the standard texture size
const TileSize = 32

// Pattern names accepted by Generate
const (
	PatternGrain   = "grain"
	PatternStrata  = "strata"
	PatternCracked = "cracked"
)

// Patterns lists every pattern Generate knows.
var Patterns = []string{PatternGrain, PatternStrata, PatternCracked}

// Generate creates a size×size texture with the named pattern. Unknown patterns fall
// back to grain.
func Generate(pattern string, size int, seed int64) *image.RGBA {
	switch pattern {
	case PatternStrata:
		return Strata(size, seed)
	case PatternCracked:
		return Cracked(size, seed)
	default:
		return Grain(size, seed)
	}
}

// Grain creates fine per-pixel noise with faint horizontal strata.
func Grain(size int, seed int64) *image.RGBA {
	rng := rand.New(rand.NewSource(seed))
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			v := 200 + rng.Intn(56)
			if (y/4)%3 == 0 {
				v -= 24
			}
			img.SetRGBA(x, y, grey(v))
		}
	}
	return img
}

// Strata creates wavy horizontal bands of alternating brightness.
func Strata(size int, seed int64) *image.RGBA {
	rng := rand.New(rand.NewSource(seed))
	img := image.NewRGBA(image.Rect(0, 0, size, size))

	// Band boundaries wander by up to one pixel per column
	offset := make([]int, size)
	for x := 1; x < size; x++ {
		offset[x] = offset[x-1] + rng.Intn(3) - 1
	}
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			band := ((y+offset[x])%size + size) % size / 6
			v := 190 + (band%2)*40 + rng.Intn(16)
			img.SetRGBA(x, y, grey(v))
		}
	}
	return img
}

// Cracked creates grain crossed by a few dark random-walk cracks. Cracks wrap at the
// edges so the texture still tiles.
func Cracked(size int, seed int64) *image.RGBA {
	img := Grain(size, seed)
	rng := rand.New(rand.NewSource(seed + 1))
	crack := grey(110)
	for i := 0; i < 3; i++ {
		x, y := rng.Intn(size), rng.Intn(size)
		for step := 0; step < size; step++ {
			img.SetRGBA(x, y, crack)
			x = (x + 1 + size) % size
			y = (y + rng.Intn(3) - 1 + size) % size
		}
	}
	return img
}

// Tint multiplies img by c and returns a new image.
func Tint(img *image.RGBA, c color.NRGBA) *image.RGBA {
	out := image.NewRGBA(img.Bounds())
	for i := 0; i+3 < len(img.Pix); i += 4 {
		out.Pix[i] = uint8(uint16(img.Pix[i]) * uint16(c.R) / 255)
		out.Pix[i+1] = uint8(uint16(img.Pix[i+1]) * uint16(c.G) / 255)
		out.Pix[i+2] = uint8(uint16(img.Pix[i+2]) * uint16(c.B) / 255)
		out.Pix[i+3] = img.Pix[i+3]
	}
	return out
}

// Swatches tints pattern with every registered material color, in registry order.
func Swatches(reg *fracture.Registry, pattern string, seed int64) []*image.RGBA {
	base := Generate(pattern, TileSize, seed)
	tiles := make([]*image.RGBA, reg.Len())
	for i := range tiles {
		tiles[i] = Tint(base, reg.Material(fracture.MaterialID(i)).Color)
	}
	return tiles
}

// CreateAtlas creates a texture atlas from multiple tiles
func CreateAtlas(tiles []*image.RGBA, columns int) *image.RGBA {
	if columns <= 0 {
		columns = 1
	}
	tileCount := len(tiles)
	rows := (tileCount + columns - 1) / columns

	atlas := image.NewRGBA(image.Rect(0, 0, columns*TileSize, rows*TileSize))

	for i, tile := range tiles {
		if tile == nil {
			continue
		}
		x := (i % columns) * TileSize
		y := (i / columns) * TileSize
		draw.Draw(atlas, image.Rect(x, y, x+TileSize, y+TileSize), tile, tile.Bounds().Min, draw.Src)
	}

	return atlas
}

// SavePNG saves an image to a PNG file
func SavePNG(img image.Image, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return png.Encode(file, img)
}

// GenerateAndSave writes one texture per pattern plus a material swatch atlas into dir
// and returns the written paths.
func GenerateAndSave(dir string, reg *fracture.Registry, seed int64) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create texture dir: %w", err)
	}

	var written []string
	for _, p := range Patterns {
		path := filepath.Join(dir, p+".png")
		if err := SavePNG(Generate(p, TileSize, seed), path); err != nil {
			return written, fmt.Errorf("failed to save %s: %w", path, err)
		}
		written = append(written, path)
	}

	path := filepath.Join(dir, "swatches.png")
	if err := SavePNG(CreateAtlas(Swatches(reg, PatternGrain, seed), 4), path); err != nil {
		return written, fmt.Errorf("failed to save %s: %w", path, err)
	}
	return append(written, path), nil
}

func grey(v int) color.RGBA {
	if v > 255 {
		v = 255
	}
	if v < 0 {
		v = 0
	}
	return color.RGBA{uint8(v), uint8(v), uint8(v), 255}
}
