package config

import "sort"

// Presets are named starting points for the CLI. Each entry builds a fresh
// Config so callers may mutate the result.
var Presets = map[string]func() *Config{
	"default": DefaultConfig,
	"murmuration": func() *Config {
		cfg := DefaultConfig()
		cfg.Boids = 4096
		cfg.Bounds.Radius = 40
		cfg.Spawn.Radius = 30
		cfg.Forces.Alignment = 2
		cfg.Forces.Cohesion = 0.5
		cfg.Distances.Alignment = 5
		cfg.Velocity.Max = 8
		return cfg
	},
	"attractor": func() *Config {
		cfg := DefaultConfig()
		cfg.Boids = 1024
		cfg.Fields = []FieldConfig{
			{Position: []float64{10, 0, 0}, Force: 3},
			{Position: []float64{-10, 0, 0}, Force: 3},
		}
		return cfg
	},
	"repulsor": func() *Config {
		cfg := DefaultConfig()
		cfg.Boids = 1024
		cfg.Spawn.Radius = 4
		cfg.Fields = []FieldConfig{
			{Position: []float64{0, 0, 0}, Force: -6},
		}
		return cfg
	},
	"sparse": func() *Config {
		cfg := DefaultConfig()
		cfg.Boids = 128
		cfg.Bounds.Radius = 30
		cfg.Spawn.Radius = 30
		cfg.Forces.Separation = 0.5
		return cfg
	},
}

func GetPreset(name string) *Config {
	build, ok := Presets[name]
	if !ok {
		return nil
	}
	return build()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
