package textures

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"chosenoffset.com/rubble/internal/core/fracture"
)

func TestGenerateIsDeterministic(t *testing.T) {
	for _, p := range Patterns {
		a := Generate(p, 16, 5)
		b := Generate(p, 16, 5)
		if a.Bounds().Dx() != 16 || a.Bounds().Dy() != 16 {
			t.Fatalf("%s: unexpected bounds %v", p, a.Bounds())
		}
		if string(a.Pix) != string(b.Pix) {
			t.Errorf("%s: same seed produced different pixels", p)
		}
		if a.Pix[3] != 255 {
			t.Errorf("%s: texture must be opaque", p)
		}
	}
}

func TestUnknownPatternFallsBackToGrain(t *testing.T) {
	if string(Generate("plaid", 8, 1).Pix) != string(Grain(8, 1).Pix) {
		t.Error("unknown pattern should produce grain")
	}
}

func TestTintMultipliesChannels(t *testing.T) {
	img := Grain(4, 1)
	img.Pix[0], img.Pix[1], img.Pix[2] = 255, 255, 255
	out := Tint(img, color.NRGBA{R: 100, G: 50, B: 0, A: 255})
	if out.Pix[0] != 100 || out.Pix[1] != 50 || out.Pix[2] != 0 || out.Pix[3] != 255 {
		t.Errorf("unexpected tinted pixel %v", out.Pix[:4])
	}
}

func TestCreateAtlasLayout(t *testing.T) {
	reg := fracture.DefaultRegistry()
	tiles := Swatches(reg, PatternGrain, 1)
	if len(tiles) != reg.Len() {
		t.Fatalf("expected %d swatches, got %d", reg.Len(), len(tiles))
	}

	atlas := CreateAtlas(tiles, 4)
	rows := (reg.Len() + 3) / 4
	if atlas.Bounds().Dx() != 4*TileSize || atlas.Bounds().Dy() != rows*TileSize {
		t.Errorf("unexpected atlas bounds %v", atlas.Bounds())
	}
	if atlas.RGBAAt(TileSize+1, 1) != tiles[1].RGBAAt(1, 1) {
		t.Error("second tile not copied into place")
	}
}

func TestGenerateAndSave(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "textures")
	paths, err := GenerateAndSave(dir, fracture.DefaultRegistry(), 3)
	if err != nil {
		t.Fatalf("GenerateAndSave failed: %v", err)
	}
	if len(paths) != len(Patterns)+1 {
		t.Errorf("expected %d files, got %d", len(Patterns)+1, len(paths))
	}
	for _, p := range paths {
		if info, err := os.Stat(p); err != nil || info.Size() == 0 {
			t.Errorf("missing or empty %s: %v", p, err)
		}
	}
}
