// Package fracture turns straight cut edges into torn ones and keeps the per-material
// parameters that drive it.
//
// Material tags are interned into small integer ids once at load time. Everything on the
// hot path (cut pipeline, debris cells) carries a MaterialID, never a string.
package fracture

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// MaterialID is an interned material tag.
type MaterialID uint8

// DefaultMaterial is always registered and is what unknown tags resolve to.
const DefaultMaterial MaterialID = 0

// DefaultMaterialName is the tag of DefaultMaterial.
const DefaultMaterialName = "default"

// ErrRegistryFull is returned when more materials are registered than MaterialID can
// address.
var ErrRegistryFull = errors.New("fracture: material registry full")

// Profile controls how irregular a generated cut edge is.
type Profile struct {
	// Softness trades few large jagged segments (0) for many smooth ones (1).
	Softness float64
	// Strength scales the perpendicular offset amplitude.
	Strength float64
}

// Clamped returns p with both fields limited to [0,1].
func (p Profile) Clamped() Profile {
	return Profile{Softness: clamp01(p.Softness), Strength: clamp01(p.Strength)}
}

// Material is everything the core knows about a terrain material.
type Material struct {
	Name       string
	Profile    Profile
	Friction   float64
	Bounciness float64
	// Density converts removed area into debris mass.
	Density float64
	Color   color.NRGBA
}

// Registry interns material tags.
type Registry struct {
	ids       map[string]MaterialID
	materials []Material
}

// NewRegistry creates a registry holding only the default material.
func NewRegistry() *Registry {
	r := &Registry{ids: make(map[string]MaterialID)}
	r.Register(Material{
		Name:       DefaultMaterialName,
		Profile:    Profile{Softness: 0.5, Strength: 0.3},
		Friction:   0.6,
		Bounciness: 0.1,
		Density:    1,
		Color:      color.NRGBA{R: 150, G: 140, B: 125, A: 255},
	})
	return r
}

// DefaultRegistry returns a registry with the builtin materials.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, m := range []Material{
		{Name: "stone", Profile: Profile{Softness: 0.15, Strength: 0.45}, Friction: 0.8, Bounciness: 0.05, Density: 1.4, Color: color.NRGBA{R: 120, G: 120, B: 128, A: 255}},
		{Name: "dirt", Profile: Profile{Softness: 0.7, Strength: 0.25}, Friction: 0.9, Bounciness: 0.0, Density: 1.0, Color: color.NRGBA{R: 121, G: 85, B: 58, A: 255}},
		{Name: "wood", Profile: Profile{Softness: 0.35, Strength: 0.6}, Friction: 0.6, Bounciness: 0.2, Density: 0.6, Color: color.NRGBA{R: 160, G: 110, B: 60, A: 255}},
		{Name: "ice", Profile: Profile{Softness: 0.05, Strength: 0.7}, Friction: 0.05, Bounciness: 0.3, Density: 0.9, Color: color.NRGBA{R: 190, G: 225, B: 245, A: 255}},
		{Name: "metal", Profile: Profile{Softness: 0.9, Strength: 0.1}, Friction: 0.4, Bounciness: 0.1, Density: 2.5, Color: color.NRGBA{R: 90, G: 100, B: 110, A: 255}},
	} {
		r.Register(m)
	}
	return r
}

// Register adds m, or replaces the material with the same name while keeping its id.
func (r *Registry) Register(m Material) (MaterialID, error) {
	m.Profile = m.Profile.Clamped()
	if id, ok := r.ids[m.Name]; ok {
		r.materials[id] = m
		return id, nil
	}
	if len(r.materials) > int(^MaterialID(0)) {
		return 0, ErrRegistryFull
	}
	id := MaterialID(len(r.materials))
	r.ids[m.Name] = id
	r.materials = append(r.materials, m)
	return id, nil
}

// Merge registers every material of src into r. Names already known keep their ids, so
// cells tagged before a reload stay valid.
func (r *Registry) Merge(src *Registry) error {
	for _, m := range src.materials {
		if _, err := r.Register(m); err != nil {
			return err
		}
	}
	return nil
}

// Lookup returns the id interned for tag.
func (r *Registry) Lookup(tag string) (MaterialID, bool) {
	id, ok := r.ids[tag]
	return id, ok
}

// Resolve returns the id for tag, or DefaultMaterial when it is unknown.
func (r *Registry) Resolve(tag string) MaterialID {
	if id, ok := r.ids[tag]; ok {
		return id
	}
	return DefaultMaterial
}

// Material returns the material for id. Out of range ids get the default material.
func (r *Registry) Material(id MaterialID) Material {
	if int(id) >= len(r.materials) {
		return r.materials[DefaultMaterial]
	}
	return r.materials[id]
}

// Profile returns the fracture profile for id.
func (r *Registry) Profile(id MaterialID) Profile {
	return r.Material(id).Profile
}

// ProfileByTag resolves tag and returns its profile.
func (r *Registry) ProfileByTag(tag string) Profile {
	return r.Profile(r.Resolve(tag))
}

// Len returns the number of registered materials.
func (r *Registry) Len() int {
	return len(r.materials)
}

// Names returns the registered tags in id order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.materials))
	for i, m := range r.materials {
		names[i] = m.Name
	}
	return names
}

// materialFile is the on-disk layout:
//
//	[[material]]
//	name = "stone"
//	softness = 0.15
//	strength = 0.45
type materialFile struct {
	Material []materialEntry `toml:"material"`
}

type materialEntry struct {
	Name       string   `toml:"name"`
	Softness   float64  `toml:"softness"`
	Strength   float64  `toml:"strength"`
	Friction   *float64 `toml:"friction"`
	Bounciness *float64 `toml:"bounciness"`
	Density    *float64 `toml:"density"`
	Color      string   `toml:"color"`
}

// ParseRegistry parses TOML material definitions on top of the builtin materials.
func ParseRegistry(data []byte) (*Registry, error) {
	var file materialFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse materials: %w", err)
	}

	r := DefaultRegistry()
	for i, e := range file.Material {
		if e.Name == "" {
			return nil, fmt.Errorf("material %d has no name", i)
		}
		// Unknown names start from the default material's physical properties.
		m := r.Material(r.Resolve(e.Name))
		m.Name = e.Name
		m.Profile = Profile{Softness: e.Softness, Strength: e.Strength}
		if e.Friction != nil {
			m.Friction = *e.Friction
		}
		if e.Bounciness != nil {
			m.Bounciness = *e.Bounciness
		}
		if e.Density != nil {
			m.Density = *e.Density
		}
		if e.Color != "" {
			c, err := parseHexColor(e.Color)
			if err != nil {
				return nil, fmt.Errorf("material %q: %w", e.Name, err)
			}
			m.Color = c
		}
		if _, err := r.Register(m); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// LoadRegistry loads material definitions from a TOML file. A missing file yields the
// builtin materials.
func LoadRegistry(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultRegistry(), nil
		}
		return nil, fmt.Errorf("failed to read materials: %w", err)
	}
	return ParseRegistry(data)
}

func parseHexColor(s string) (color.NRGBA, error) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 && len(s) != 8 {
		return color.NRGBA{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	if len(s) == 6 {
		v = v<<8 | 0xff
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
