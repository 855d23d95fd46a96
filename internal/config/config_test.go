package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/san-kum/flocksim/internal/flock"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Boids != DefaultBoids {
		t.Errorf("expected %d boids, got %d", DefaultBoids, cfg.Boids)
	}
	if cfg.Dt <= 0 {
		t.Error("dt should be positive")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}

	fc, fields := cfg.ToFlock()
	if fc.Params != flock.DefaultParams() {
		t.Errorf("params = %+v, want %+v", fc.Params, flock.DefaultParams())
	}
	if len(fields) != 0 {
		t.Errorf("expected no fields, got %d", len(fields))
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("repulsor")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if len(cfg.Fields) != 1 || cfg.Fields[0].Force >= 0 {
		t.Errorf("expected one repulsive field, got %+v", cfg.Fields)
	}

	cfg.Fields[0].Force = 100
	if GetPreset("repulsor").Fields[0].Force == 100 {
		t.Error("preset mutation leaked into the registry")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestPresetsValidate(t *testing.T) {
	for _, name := range ListPresets() {
		t.Run(name, func(t *testing.T) {
			if err := GetPreset(name).Validate(); err != nil {
				t.Errorf("preset %s invalid: %v", name, err)
			}
		})
	}
}

func TestLoadFormats(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"flock.yaml": `
boids: 64
seed: 7
bounds:
  center: [1, 2, 3]
  radius: 12
fields:
  - position: [0, 4, 0]
    force: -2
`,
		"flock.toml": `
boids = 64
seed = 7

[bounds]
center = [1.0, 2.0, 3.0]
radius = 12.0

[[fields]]
position = [0.0, 4.0, 0.0]
force = -2.0
`,
		"flock.json": `{
  "boids": 64,
  "seed": 7,
  "bounds": {"center": [1, 2, 3], "radius": 12},
  "fields": [{"position": [0, 4, 0], "force": -2}]
}`,
	}

	for name, body := range files {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			if err := os.WriteFile(path, []byte(body), 0644); err != nil {
				t.Fatal(err)
			}
			cfg, err := Load(path)
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}

			fc, sources := cfg.ToFlock()
			if fc.Count != 64 || fc.Seed != 7 {
				t.Errorf("count/seed = %d/%d", fc.Count, fc.Seed)
			}
			if fc.Bounds.Center != (mgl32.Vec3{1, 2, 3}) || fc.Bounds.Radius != 12 {
				t.Errorf("bounds = %+v", fc.Bounds)
			}
			// unspecified keys keep their defaults
			if fc.Params.MaxVelocity != flock.DefaultParams().MaxVelocity {
				t.Errorf("max velocity = %v, want default", fc.Params.MaxVelocity)
			}
			if len(sources) != 1 || sources[0].FieldForce() != -2 {
				t.Errorf("fields = %+v", sources)
			}
		})
	}
}

func TestLoadRejectsSchemaViolations(t *testing.T) {
	dir := t.TempDir()
	tests := map[string]string{
		"short center":    "bounds:\n  center: [1, 2]\n  radius: 5\n",
		"zero radius":     "bounds:\n  center: [0, 0, 0]\n  radius: 0\n",
		"unknown backend": "backend: gpu\n",
		"negative boids":  "boids: -3\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, "bad.yaml")
			if err := os.WriteFile(path, []byte(body), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestValidateSemantics(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Velocity.Min = 10
	cfg.Velocity.Max = 2

	err := cfg.Validate()
	if !errors.Is(err, flock.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	var ce *flock.ConfigError
	if errors.As(err, &ce) && ce.Field != "velocity.max" {
		t.Errorf("field = %q, want velocity.max", ce.Field)
	}
}

func TestValidateFieldOverflow(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Fields = []FieldConfig{{Position: []float64{0, 0, 0}, Force: 1e39}}

	err := cfg.Validate()
	var ce *flock.ConfigError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ConfigError, got %v", err)
	}
	if ce.Field != "fields[0].force" {
		t.Errorf("field = %q, want fields[0].force", ce.Field)
	}

	path := filepath.Join(t.TempDir(), "overflow.yaml")
	doc := "boids: 8\nbounds:\n  center: [0, 0, 0]\n  radius: 20\nvelocity:\n  min: 1\n  max: 5\nfields:\n  - position: [1e39, 0, 0]\n    force: 1\n"
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); !errors.Is(err, flock.ErrConfiguration) {
		t.Errorf("Load accepted an overflowing field position: %v", err)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saved.yaml")
	cfg := GetPreset("attractor")
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Boids != cfg.Boids || len(loaded.Fields) != len(cfg.Fields) {
		t.Errorf("loaded %+v, want %+v", loaded, cfg)
	}
}

func TestSetParam(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.SetParam("forces.cohesion", 4); err != nil {
		t.Fatal(err)
	}
	if cfg.Params().CohesionForceFactor != 4 {
		t.Errorf("cohesion = %v, want 4", cfg.Params().CohesionForceFactor)
	}
	if err := cfg.SetParam("nope", 1); err == nil {
		t.Error("expected error for unknown parameter")
	}
}

func TestClone(t *testing.T) {
	cfg := GetPreset("attractor")
	cp := cfg.Clone()
	cp.Bounds.Center[0] = 99
	cp.Fields[0].Position[0] = 99
	if cfg.Bounds.Center[0] == 99 || cfg.Fields[0].Position[0] == 99 {
		t.Error("Clone shares slices with the original")
	}
}
