package flock

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Record strides in bytes. Boid is three packed Vec3, Field is a Vec3 and a float.
const (
	BoidStride  = 4 * 3 * 3
	FieldStride = 4 * (3 + 1)
)

// Boid is one simulated agent. Acceleration holds the value computed during
// the tick that produced this record.
type Boid struct {
	Position     mgl32.Vec3
	Velocity     mgl32.Vec3
	Acceleration mgl32.Vec3
}

// Bounds is the spherical containment and spawn region.
type Bounds struct {
	Center mgl32.Vec3
	Radius float32
}

// Contains reports whether p lies inside or on the sphere.
func (b Bounds) Contains(p mgl32.Vec3) bool {
	return p.Sub(b.Center).Len() <= b.Radius
}

// RenderExtent is the half-size of the box an instanced renderer should cull against.
func (b Bounds) RenderExtent() float32 {
	return 1.1 * b.Radius
}

// Params are the tunables held constant for the lifetime of a simulation.
type Params struct {
	AlignmentForceFactor  float32
	CohesionForceFactor   float32
	SeparationForceFactor float32
	BoundsForceFactor     float32

	AlignmentDistance  float32
	CohesionDistance   float32
	SeparationDistance float32

	MinVelocity float32
	MaxVelocity float32
}

// MaxDistance is the largest of the three neighbour thresholds.
func (p Params) MaxDistance() float32 {
	d := p.AlignmentDistance
	if p.CohesionDistance > d {
		d = p.CohesionDistance
	}
	if p.SeparationDistance > d {
		d = p.SeparationDistance
	}
	return d
}

// DefaultParams keeps the stock controller distances (3/3/2).
func DefaultParams() Params {
	return Params{
		AlignmentForceFactor:  1,
		CohesionForceFactor:   1,
		SeparationForceFactor: 1.5,
		BoundsForceFactor:     2,
		AlignmentDistance:     3,
		CohesionDistance:      3,
		SeparationDistance:    2,
		MinVelocity:           1,
		MaxVelocity:           5,
	}
}

// Config holds every construction input except the field sources.
type Config struct {
	Count         int
	Bounds        Bounds
	SpawnRadius   float32
	SpawnVelocity float32
	Params        Params
	Seed          int64
}

func DefaultConfig() Config {
	return Config{
		Count:         2048,
		Bounds:        Bounds{Radius: 20},
		SpawnRadius:   10,
		SpawnVelocity: 2,
		Params:        DefaultParams(),
		Seed:          1,
	}
}

// Validate returns a *ConfigError for the first rejected input.
func (c Config) Validate() error {
	if c.Count < 0 {
		return &ConfigError{Field: "count", Reason: "must not be negative"}
	}
	if !finite(c.Bounds.Radius) || c.Bounds.Radius <= 0 {
		return &ConfigError{Field: "bounds.radius", Reason: "must be finite and positive"}
	}
	if !finiteVec(c.Bounds.Center) {
		return &ConfigError{Field: "bounds.center", Reason: "must be finite"}
	}
	if !finite(c.SpawnRadius) || c.SpawnRadius < 0 {
		return &ConfigError{Field: "spawn.radius", Reason: "must be finite and non-negative"}
	}
	if !finite(c.SpawnVelocity) || c.SpawnVelocity < 0 {
		return &ConfigError{Field: "spawn.velocity", Reason: "must be finite and non-negative"}
	}
	return c.Params.Validate()
}

// Validate checks the tunables on their own.
func (p Params) Validate() error {
	scalars := []struct {
		name string
		v    float32
	}{
		{"forces.alignment", p.AlignmentForceFactor},
		{"forces.cohesion", p.CohesionForceFactor},
		{"forces.separation", p.SeparationForceFactor},
		{"forces.bounds", p.BoundsForceFactor},
	}
	for _, s := range scalars {
		if !finite(s.v) {
			return &ConfigError{Field: s.name, Reason: "must be finite"}
		}
	}

	distances := []struct {
		name string
		v    float32
	}{
		{"distances.alignment", p.AlignmentDistance},
		{"distances.cohesion", p.CohesionDistance},
		{"distances.separation", p.SeparationDistance},
	}
	for _, d := range distances {
		if !finite(d.v) || d.v < 0 {
			return &ConfigError{Field: d.name, Reason: "must be finite and non-negative"}
		}
	}

	if !finite(p.MinVelocity) || p.MinVelocity < 0 {
		return &ConfigError{Field: "velocity.min", Reason: "must be finite and non-negative"}
	}
	if !finite(p.MaxVelocity) || p.MaxVelocity < p.MinVelocity {
		return &ConfigError{Field: "velocity.max", Reason: "must be finite and at least velocity.min"}
	}
	return nil
}

// Frame is a published snapshot. Boids must be treated as read-only.
type Frame struct {
	Index int
	Time  float64
	Boids []Boid
}

// Clone returns a frame that owns its boid slice.
func (f Frame) Clone() Frame {
	c := Frame{Index: f.Index, Time: f.Time, Boids: make([]Boid, len(f.Boids))}
	copy(c.Boids, f.Boids)
	return c
}

// Backend advances every boid of src into dst. Implementations may fan out
// over indices but must only read src and only write dst[i] for the index
// being evaluated. Step returns once every index has been written.
type Backend interface {
	Name() string
	Step(dst, src []Boid, fields []Field, bounds Bounds, p Params, dt float32)
}

// Observer is notified after every published tick. The frame is only valid
// until the next tick begins.
type Observer interface {
	OnFrame(f Frame)
}

type Metric interface {
	Name() string
	Observe(f Frame)
	Value() float64
	Reset()
}

func finite(v float32) bool {
	f := float64(v)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func finiteVec(v mgl32.Vec3) bool {
	return finite(v[0]) && finite(v[1]) && finite(v[2])
}
