package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/flocksim/internal/flock"
)

const (
	DefaultBoids         = 2048
	DefaultDt            = 1.0 / 60
	DefaultFrames        = 600
	DefaultRadius        = 20.0
	DefaultSpawnRadius   = 10.0
	DefaultSpawnVelocity = 2.0
)

//go:embed schema.json
var schemaJSON string

type Config struct {
	Boids     int            `yaml:"boids" toml:"boids" json:"boids"`
	Seed      int64          `yaml:"seed" toml:"seed" json:"seed"`
	Dt        float64        `yaml:"dt" toml:"dt" json:"dt"`
	Frames    int            `yaml:"frames" toml:"frames" json:"frames"`
	Backend   string         `yaml:"backend" toml:"backend" json:"backend"`
	Bounds    BoundsConfig   `yaml:"bounds" toml:"bounds" json:"bounds"`
	Spawn     SpawnConfig    `yaml:"spawn" toml:"spawn" json:"spawn"`
	Forces    ForceConfig    `yaml:"forces" toml:"forces" json:"forces"`
	Distances DistanceConfig `yaml:"distances" toml:"distances" json:"distances"`
	Velocity  VelocityConfig `yaml:"velocity" toml:"velocity" json:"velocity"`
	Fields    []FieldConfig  `yaml:"fields" toml:"fields" json:"fields"`
}

type BoundsConfig struct {
	Center []float64 `yaml:"center" toml:"center" json:"center"`
	Radius float64   `yaml:"radius" toml:"radius" json:"radius"`
}

type SpawnConfig struct {
	Radius   float64 `yaml:"radius" toml:"radius" json:"radius"`
	Velocity float64 `yaml:"velocity" toml:"velocity" json:"velocity"`
}

type ForceConfig struct {
	Alignment  float64 `yaml:"alignment" toml:"alignment" json:"alignment"`
	Cohesion   float64 `yaml:"cohesion" toml:"cohesion" json:"cohesion"`
	Separation float64 `yaml:"separation" toml:"separation" json:"separation"`
	Bounds     float64 `yaml:"bounds" toml:"bounds" json:"bounds"`
}

type DistanceConfig struct {
	Alignment  float64 `yaml:"alignment" toml:"alignment" json:"alignment"`
	Cohesion   float64 `yaml:"cohesion" toml:"cohesion" json:"cohesion"`
	Separation float64 `yaml:"separation" toml:"separation" json:"separation"`
}

type VelocityConfig struct {
	Min float64 `yaml:"min" toml:"min" json:"min"`
	Max float64 `yaml:"max" toml:"max" json:"max"`
}

type FieldConfig struct {
	Position []float64 `yaml:"position" toml:"position" json:"position"`
	Force    float64   `yaml:"force" toml:"force" json:"force"`
}

func DefaultConfig() *Config {
	p := flock.DefaultParams()
	return &Config{
		Boids:   DefaultBoids,
		Seed:    1,
		Dt:      DefaultDt,
		Frames:  DefaultFrames,
		Backend: "auto",
		Bounds: BoundsConfig{
			Center: []float64{0, 0, 0},
			Radius: DefaultRadius,
		},
		Spawn: SpawnConfig{
			Radius:   DefaultSpawnRadius,
			Velocity: DefaultSpawnVelocity,
		},
		Forces: ForceConfig{
			Alignment:  float64(p.AlignmentForceFactor),
			Cohesion:   float64(p.CohesionForceFactor),
			Separation: float64(p.SeparationForceFactor),
			Bounds:     float64(p.BoundsForceFactor),
		},
		Distances: DistanceConfig{
			Alignment:  float64(p.AlignmentDistance),
			Cohesion:   float64(p.CohesionDistance),
			Separation: float64(p.SeparationDistance),
		},
		Velocity: VelocityConfig{
			Min: float64(p.MinVelocity),
			Max: float64(p.MaxVelocity),
		},
	}
}

// Load reads a YAML, TOML or JSON file over the defaults and validates it.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
	case ".json":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
	default:
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the document shape against the embedded schema, then the
// simulation semantics.
func (c *Config) Validate() error {
	sch, err := jsonschema.CompileString("flocksim.schema.json", schemaJSON)
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}

	raw, err := json.Marshal(c)
	if err != nil {
		return err
	}
	var doc interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return err
	}
	if err := sch.Validate(doc); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	fc, sources := c.ToFlock()
	if err := fc.Validate(); err != nil {
		return err
	}
	_, err = flock.BuildFields(sources)
	return err
}

// ToFlock converts the document into core construction inputs.
func (c *Config) ToFlock() (flock.Config, []flock.FieldSource) {
	fc := flock.Config{
		Count: c.Boids,
		Bounds: flock.Bounds{
			Center: vec(c.Bounds.Center),
			Radius: float32(c.Bounds.Radius),
		},
		SpawnRadius:   float32(c.Spawn.Radius),
		SpawnVelocity: float32(c.Spawn.Velocity),
		Params:        c.Params(),
		Seed:          c.Seed,
	}

	sources := make([]flock.FieldSource, 0, len(c.Fields))
	for _, f := range c.Fields {
		sources = append(sources, flock.FieldSpec{Position: vec(f.Position), Force: float32(f.Force)})
	}
	return fc, sources
}

func (c *Config) Params() flock.Params {
	return flock.Params{
		AlignmentForceFactor:  float32(c.Forces.Alignment),
		CohesionForceFactor:   float32(c.Forces.Cohesion),
		SeparationForceFactor: float32(c.Forces.Separation),
		BoundsForceFactor:     float32(c.Forces.Bounds),
		AlignmentDistance:     float32(c.Distances.Alignment),
		CohesionDistance:      float32(c.Distances.Cohesion),
		SeparationDistance:    float32(c.Distances.Separation),
		MinVelocity:           float32(c.Velocity.Min),
		MaxVelocity:           float32(c.Velocity.Max),
	}
}

// SetParam updates one tunable by its flat name, e.g. "forces.cohesion".
func (c *Config) SetParam(name string, value float64) error {
	switch name {
	case "forces.alignment":
		c.Forces.Alignment = value
	case "forces.cohesion":
		c.Forces.Cohesion = value
	case "forces.separation":
		c.Forces.Separation = value
	case "forces.bounds":
		c.Forces.Bounds = value
	case "distances.alignment":
		c.Distances.Alignment = value
	case "distances.cohesion":
		c.Distances.Cohesion = value
	case "distances.separation":
		c.Distances.Separation = value
	case "velocity.min":
		c.Velocity.Min = value
	case "velocity.max":
		c.Velocity.Max = value
	case "bounds.radius":
		c.Bounds.Radius = value
	default:
		return fmt.Errorf("unknown parameter: %s", name)
	}
	return nil
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	cp := *c
	cp.Bounds.Center = append([]float64(nil), c.Bounds.Center...)
	cp.Fields = make([]FieldConfig, len(c.Fields))
	for i, f := range c.Fields {
		cp.Fields[i] = FieldConfig{Position: append([]float64(nil), f.Position...), Force: f.Force}
	}
	return &cp
}

func vec(v []float64) mgl32.Vec3 {
	var out mgl32.Vec3
	for i := 0; i < len(v) && i < 3; i++ {
		out[i] = float32(v[i])
	}
	return out
}
