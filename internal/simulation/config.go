// Package simulation provides configuration for the terrain and debris simulation.
// Values are loaded from a JSON data file so each scene can tune its own feel.
package simulation

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"chosenoffset.com/rubble/internal/core/cut"
	"chosenoffset.com/rubble/internal/core/geom"
	"chosenoffset.com/rubble/internal/debris"
)

// Config holds all simulation settings
type Config struct {
	// Debris automaton
	Debris DebrisConfig `json:"debris"`

	// Cut pipeline
	Cut CutConfig `json:"cut"`

	// Solid occupancy resampling
	Sync SyncConfig `json:"sync"`

	// Demo presentation
	Render RenderConfig `json:"render"`

	// Materials is the TOML material file, relative to the working directory
	Materials string `json:"materials"`
}

// DebrisConfig defines the granular grid and its rules
type DebrisConfig struct {
	Width            int     `json:"width"`              // Grid columns
	Height           int     `json:"height"`             // Grid rows
	OriginX          float64 `json:"origin_x"`           // World x of the grid's top-left corner
	OriginY          float64 `json:"origin_y"`           // World y of the grid's top-left corner
	CellSize         float64 `json:"cell_size"`          // World units per cell
	Capacity         float64 `json:"capacity"`           // Max quantity per cell
	MinQuantity      float64 `json:"min_quantity"`       // Cells below this are not simulated
	Gravity          float64 `json:"gravity"`            // Added to vertical velocity per second
	Damping          float64 `json:"damping"`            // Fraction of velocity kept per substep
	FallSpeed        float64 `json:"fall_speed"`         // Fraction of a cell's mass that falls per substep
	SlideCoefficient float64 `json:"slide_coefficient"`  // Fraction that slides diagonally per substep
	Lifetime         float64 `json:"lifetime"`           // Seconds before debris despawns (0 = never)
	SubstepsPerFrame int     `json:"substeps_per_frame"` // Automaton substeps per rendered frame
	Jitter           float64 `json:"jitter"`             // Max random velocity on deposit
	Seed             int64   `json:"seed"`               // Seed for slide tie-breaks and jitter
}

// CutConfig defines the cut pipeline
type CutConfig struct {
	Bounded     bool    `json:"bounded"`       // Treat the cut line as a segment instead of a line
	PixelSize   float64 `json:"pixel_size"`    // Silhouette pixel size (0 = no rasterization)
	MassScale   float64 `json:"mass_scale"`    // Debris mass per unit of removed area × density
	MinBodyArea float64 `json:"min_body_area"` // Bodies cut below this area crumble into debris
	Seed        int64   `json:"seed"`          // Seed for torn edge generation
}

// SyncConfig defines how often rigid-body occupancy is resampled
type SyncConfig struct {
	IntervalSeconds float64 `json:"interval_seconds"`
}

// RenderConfig defines the demo window
type RenderConfig struct {
	ScreenWidth  int  `json:"screen_width"`
	ScreenHeight int  `json:"screen_height"`
	ShowGrid     bool `json:"show_grid"`     // Draw solid occupancy as an overlay
	ShowOutlines bool `json:"show_outlines"` // Draw body outlines over their meshes
}

// DefaultConfig returns sensible defaults for the demo scene
func DefaultConfig() *Config {
	return &Config{
		Debris: DebrisConfig{
			Width:            160,
			Height:           90,
			CellSize:         4,
			Capacity:         1,
			MinQuantity:      0.01,
			Gravity:          9.8,
			Damping:          0.9,
			FallSpeed:        0.5,
			SlideCoefficient: 0.25,
			Lifetime:         30,
			SubstepsPerFrame: 2,
			Jitter:           0.5,
			Seed:             1,
		},
		Cut: CutConfig{
			Bounded:     false,
			PixelSize:   2,
			MassScale:   0.02,
			MinBodyArea: 16,
			Seed:        1,
		},
		Sync: SyncConfig{
			IntervalSeconds: 0.25,
		},
		Render: RenderConfig{
			ScreenWidth:  640,
			ScreenHeight: 360,
			ShowOutlines: true,
		},
		Materials: "data/materials.toml",
	}
}

// LoadConfig loads simulation config from a JSON file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		// Return defaults if file doesn't exist
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read simulation config: %w", err)
	}

	config := DefaultConfig() // Start with defaults
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse simulation config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid simulation config: %w", err)
	}

	return config, nil
}

// Validate rejects settings the simulation cannot run with
func (c *Config) Validate() error {
	d := c.Debris
	if d.Width <= 0 || d.Height <= 0 || d.CellSize <= 0 {
		return fmt.Errorf("debris grid %dx%d with cell size %g: %w", d.Width, d.Height, d.CellSize, debris.ErrInvalidGrid)
	}
	if d.Capacity <= 0 {
		return fmt.Errorf("debris capacity must be positive, got %g", d.Capacity)
	}
	if d.FallSpeed < 0 || d.FallSpeed > 1 {
		return fmt.Errorf("fall speed %g: %w", d.FallSpeed, debris.ErrInvalidRate)
	}
	if d.SlideCoefficient < 0 || d.SlideCoefficient > 1 {
		return fmt.Errorf("slide coefficient %g: %w", d.SlideCoefficient, debris.ErrInvalidRate)
	}
	if d.SubstepsPerFrame <= 0 {
		return fmt.Errorf("substeps per frame must be positive, got %d", d.SubstepsPerFrame)
	}
	if c.Cut.MinBodyArea < 0 {
		return fmt.Errorf("min body area must not be negative, got %g", c.Cut.MinBodyArea)
	}
	if c.Cut.PixelSize < 0 {
		return fmt.Errorf("pixel size must not be negative, got %g", c.Cut.PixelSize)
	}
	return nil
}

// DebrisSettings converts the debris section into the automaton's config
func (c *Config) DebrisSettings() debris.Config {
	d := c.Debris
	return debris.Config{
		Width:            d.Width,
		Height:           d.Height,
		Origin:           geom.Pt(d.OriginX, d.OriginY),
		CellSize:         d.CellSize,
		Capacity:         d.Capacity,
		MinQuantity:      d.MinQuantity,
		Gravity:          d.Gravity,
		Damping:          d.Damping,
		FallSpeed:        d.FallSpeed,
		SlideCoefficient: d.SlideCoefficient,
		Lifetime:         d.Lifetime,
		SubstepsPerFrame: d.SubstepsPerFrame,
		Jitter:           d.Jitter,
		SyncInterval:     time.Duration(c.Sync.IntervalSeconds * float64(time.Second)),
		Seed:             d.Seed,
	}
}

// CutOptions converts the cut section into split options
func (c *Config) CutOptions() cut.Options {
	return cut.Options{Bounded: c.Cut.Bounded}
}
