package simulation

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"chosenoffset.com/rubble/internal/debris"
)

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	def := DefaultConfig()
	if cfg.Debris != def.Debris || cfg.Cut != def.Cut {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestLoadConfigOverridesOnlyGivenFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sim.json")
	data := `{"debris": {"width": 32, "fall_speed": 0.8}, "cut": {"bounded": true}, "sync": {"interval_seconds": 0.5}}`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Debris.Width != 32 {
		t.Errorf("expected width 32, got %d", cfg.Debris.Width)
	}
	if cfg.Debris.Height != DefaultConfig().Debris.Height {
		t.Errorf("expected default height, got %d", cfg.Debris.Height)
	}
	if !cfg.CutOptions().Bounded {
		t.Error("expected bounded cut option")
	}

	dc := cfg.DebrisSettings()
	if dc.FallSpeed != 0.8 {
		t.Errorf("expected fall speed 0.8, got %f", dc.FallSpeed)
	}
	if dc.SyncInterval != 500*time.Millisecond {
		t.Errorf("expected 500ms sync interval, got %v", dc.SyncInterval)
	}
	if _, err := debris.New(dc, nil, nil); err != nil {
		t.Errorf("converted config should build a field: %v", err)
	}
}

func TestLoadConfigRejectsBadInput(t *testing.T) {
	dir := t.TempDir()

	broken := filepath.Join(dir, "broken.json")
	os.WriteFile(broken, []byte(`{"debris": `), 0644)
	if _, err := LoadConfig(broken); err == nil {
		t.Error("expected parse error")
	}

	invalid := filepath.Join(dir, "invalid.json")
	os.WriteFile(invalid, []byte(`{"debris": {"cell_size": 0}}`), 0644)
	_, err := LoadConfig(invalid)
	if !errors.Is(err, debris.ErrInvalidGrid) {
		t.Errorf("expected ErrInvalidGrid, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	cfg.Debris.SubstepsPerFrame = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for zero substeps")
	}
}

func TestValidateRejectsOutOfRangeRates(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Debris.FallSpeed = 2
	if err := cfg.Validate(); !errors.Is(err, debris.ErrInvalidRate) {
		t.Errorf("expected ErrInvalidRate for fall speed 2, got %v", err)
	}

	cfg = DefaultConfig()
	cfg.Debris.SlideCoefficient = -0.5
	if err := cfg.Validate(); !errors.Is(err, debris.ErrInvalidRate) {
		t.Errorf("expected ErrInvalidRate for negative slide, got %v", err)
	}

	path := filepath.Join(t.TempDir(), "fast.json")
	os.WriteFile(path, []byte(`{"debris": {"fall_speed": 2}}`), 0644)
	if _, err := LoadConfig(path); !errors.Is(err, debris.ErrInvalidRate) {
		t.Errorf("expected LoadConfig to reject fall speed 2, got %v", err)
	}
}
