package flock

import (
	"errors"
	"math"
	"testing"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

func near(a, b mgl32.Vec3) bool {
	return a.ApproxEqualThreshold(b, 1e-5)
}

func separationOnly() Params {
	return Params{SeparationForceFactor: 1, SeparationDistance: 3}
}

func TestSeparationSymmetry(t *testing.T) {
	boids := []Boid{
		{Position: mgl32.Vec3{1, 2, 3}},
		{Position: mgl32.Vec3{2.5, 1, 3.5}},
	}
	bounds := Bounds{Radius: 100}

	a0 := Accelerate(0, boids, nil, bounds, separationOnly())
	a1 := Accelerate(1, boids, nil, bounds, separationOnly())

	if !near(a0, a1.Mul(-1)) {
		t.Errorf("separation not antisymmetric: %v vs %v", a0, a1)
	}
	if l := a0.Len(); math.Abs(float64(l)-1) > 1e-5 {
		t.Errorf("separation magnitude = %v, want 1", l)
	}
}

func TestIsolatedBoid(t *testing.T) {
	p := Params{
		AlignmentForceFactor:  1,
		CohesionForceFactor:   1,
		SeparationForceFactor: 1,
		AlignmentDistance:     3,
		CohesionDistance:      3,
		SeparationDistance:    2,
	}
	boids := []Boid{
		{Position: mgl32.Vec3{0, 0, 0}, Velocity: mgl32.Vec3{1, 0, 0}},
		{Position: mgl32.Vec3{10, 0, 0}, Velocity: mgl32.Vec3{0, 5, 0}},
	}

	got := Accelerate(0, boids, nil, Bounds{Radius: 100}, p)
	if got != (mgl32.Vec3{}) {
		t.Errorf("isolated boid acceleration = %v, want zero", got)
	}

	alone := Accelerate(0, boids[:1], nil, Bounds{Radius: 100}, p)
	if alone != (mgl32.Vec3{}) {
		t.Errorf("single boid acceleration = %v, want zero", alone)
	}
}

func TestThresholdsAreStrict(t *testing.T) {
	p := Params{
		CohesionForceFactor: 1,
		CohesionDistance:    2,
	}
	boids := []Boid{
		{Position: mgl32.Vec3{0, 0, 0}},
		{Position: mgl32.Vec3{2, 0, 0}},
	}
	if got := Accelerate(0, boids, nil, Bounds{Radius: 100}, p); got != (mgl32.Vec3{}) {
		t.Errorf("neighbour exactly at threshold contributed %v", got)
	}
}

func TestCoincidentBoids(t *testing.T) {
	p := Params{
		CohesionForceFactor:   1,
		SeparationForceFactor: 1,
		CohesionDistance:      3,
		SeparationDistance:    3,
	}
	boids := []Boid{
		{Position: mgl32.Vec3{1, 1, 1}},
		{Position: mgl32.Vec3{1, 1, 1}},
	}
	got := Accelerate(0, boids, nil, Bounds{Radius: 100}, p)
	if got != (mgl32.Vec3{}) {
		t.Errorf("coincident boids acceleration = %v, want zero", got)
	}
	if !finiteVec(got) {
		t.Error("coincident boids produced non-finite acceleration")
	}
}

func TestAlignment(t *testing.T) {
	p := Params{AlignmentForceFactor: 2, AlignmentDistance: 5}
	boids := []Boid{
		{Position: mgl32.Vec3{0, 0, 0}, Velocity: mgl32.Vec3{1, 0, 0}},
		{Position: mgl32.Vec3{1, 0, 0}, Velocity: mgl32.Vec3{0, 2, 0}},
		{Position: mgl32.Vec3{0, 1, 0}, Velocity: mgl32.Vec3{0, 0, 2}},
	}
	// mean neighbour velocity (0,1,1) minus own (1,0,0), scaled by 2
	want := mgl32.Vec3{-2, 2, 2}
	if got := Accelerate(0, boids, nil, Bounds{Radius: 100}, p); !near(got, want) {
		t.Errorf("alignment = %v, want %v", got, want)
	}
}

func TestBoundsForce(t *testing.T) {
	bounds := Bounds{Center: mgl32.Vec3{1, 0, 0}, Radius: 2}
	tests := []struct {
		name string
		pos  mgl32.Vec3
		want mgl32.Vec3
	}{
		{"inside", mgl32.Vec3{2, 0, 0}, mgl32.Vec3{}},
		{"on surface", mgl32.Vec3{3, 0, 0}, mgl32.Vec3{}},
		{"outside", mgl32.Vec3{5, 0, 0}, mgl32.Vec3{-6, 0, 0}},
		{"center", mgl32.Vec3{1, 0, 0}, mgl32.Vec3{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BoundsForce(tt.pos, bounds, 3); !near(got, tt.want) {
				t.Errorf("BoundsForce(%v) = %v, want %v", tt.pos, got, tt.want)
			}
		})
	}
}

func TestFieldForce(t *testing.T) {
	tests := []struct {
		name  string
		field Field
		pos   mgl32.Vec3
		want  mgl32.Vec3
	}{
		{"attractor", Field{Position: mgl32.Vec3{0, 4, 0}, Force: 2}, mgl32.Vec3{}, mgl32.Vec3{0, 2, 0}},
		{"repulsor", Field{Position: mgl32.Vec3{0, 4, 0}, Force: -2}, mgl32.Vec3{}, mgl32.Vec3{0, -2, 0}},
		{"on top of field", Field{Position: mgl32.Vec3{1, 1, 1}, Force: 9}, mgl32.Vec3{1, 1, 1}, mgl32.Vec3{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FieldForce(tt.pos, tt.field); !near(got, tt.want) {
				t.Errorf("FieldForce = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClampSpeed(t *testing.T) {
	tests := []struct {
		name string
		v    mgl32.Vec3
		want mgl32.Vec3
	}{
		{"within", mgl32.Vec3{0, 2, 0}, mgl32.Vec3{0, 2, 0}},
		{"too slow", mgl32.Vec3{0, 0, 0.5}, mgl32.Vec3{0, 0, 1}},
		{"too fast", mgl32.Vec3{6, 8, 0}, mgl32.Vec3{1.8, 2.4, 0}},
		{"zero", mgl32.Vec3{}, mgl32.Vec3{1, 0, 0}},
		{"overflowing square", mgl32.Vec3{3e19, 0, 0}, mgl32.Vec3{3, 0, 0}},
		{"near float32 max", mgl32.Vec3{0, -math.MaxFloat32, 0}, mgl32.Vec3{0, -3, 0}},
		{"infinite", mgl32.Vec3{float32(math.Inf(1)), 0, float32(math.Inf(-1))}, mgl32.Vec3{2.1213203, 0, -2.1213203}},
		{"nan", mgl32.Vec3{float32(math.NaN()), 0, 0}, mgl32.Vec3{1, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClampSpeed(tt.v, 1, 3); !near(got, tt.want) {
				t.Errorf("ClampSpeed(%v) = %v, want %v", tt.v, got, tt.want)
			}
		})
	}
}

func TestContain(t *testing.T) {
	bounds := Bounds{Center: mgl32.Vec3{1, 0, 0}, Radius: 2}
	tests := []struct {
		name string
		pos  mgl32.Vec3
		want mgl32.Vec3
	}{
		{"inside", mgl32.Vec3{2, 0, 0}, mgl32.Vec3{2, 0, 0}},
		{"outside", mgl32.Vec3{1, 5, 0}, mgl32.Vec3{1, 2, 0}},
		{"overflowing square", mgl32.Vec3{3e19, 0, 0}, mgl32.Vec3{3, 0, 0}},
		{"infinite", mgl32.Vec3{0, 0, float32(math.Inf(-1))}, mgl32.Vec3{1, 0, -2}},
		{"nan", mgl32.Vec3{float32(math.NaN()), 0, 0}, mgl32.Vec3{1, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Contain(tt.pos, bounds); !near(got, tt.want) {
				t.Errorf("Contain(%v) = %v, want %v", tt.pos, got, tt.want)
			}
		})
	}
}

func TestTickExtremeDt(t *testing.T) {
	for _, dt := range []float32{1e30, math.MaxFloat32} {
		cfg := Config{
			Bounds: Bounds{Radius: 10},
			Params: Params{MinVelocity: 1, MaxVelocity: 5},
		}
		s, err := New(cfg)
		if err != nil {
			t.Fatal(err)
		}
		boids := []Boid{{Position: mgl32.Vec3{9.5, 0, 0}, Velocity: mgl32.Vec3{1, 0, 0}}}
		if err := s.Restore(boids, FieldSpec{Force: -5}); err != nil {
			t.Fatal(err)
		}
		if err := s.Tick(dt); err != nil {
			t.Fatalf("Tick(%g) failed: %v", dt, err)
		}
		f, _ := s.Snapshot()
		b := f.Boids[0]
		if speed := b.Velocity.Len(); speed < 1-1e-5 || speed > 5+1e-5 {
			t.Errorf("dt=%g: speed %v outside [1,5]", dt, speed)
		}
		if !near(b.Position, mgl32.Vec3{10, 0, 0}) {
			t.Errorf("dt=%g: position %v, want projected onto (10,0,0)", dt, b.Position)
		}
	}
}

func TestIntegrateContains(t *testing.T) {
	bounds := Bounds{Center: mgl32.Vec3{0, 0, 0}, Radius: 1}
	p := Params{MinVelocity: 0, MaxVelocity: 10}
	b := Boid{Position: mgl32.Vec3{0.9, 0, 0}, Velocity: mgl32.Vec3{5, 0, 0}}

	got := Integrate(b, mgl32.Vec3{0, 1, 0}, 1, bounds, p)
	if r := got.Position.Len(); math.Abs(float64(r)-1) > 1e-5 {
		t.Errorf("contained radius = %v, want 1", r)
	}
	if got.Acceleration != (mgl32.Vec3{0, 1, 0}) {
		t.Errorf("acceleration not recorded: %v", got.Acceleration)
	}
	if !near(got.Velocity, mgl32.Vec3{5, 1, 0}) {
		t.Errorf("velocity = %v, want (5,1,0)", got.Velocity)
	}
}

func TestAccelerateAmongMatchesBruteForce(t *testing.T) {
	p := DefaultParams()
	boids := []Boid{
		{Position: mgl32.Vec3{0, 0, 0}, Velocity: mgl32.Vec3{1, 0, 0}},
		{Position: mgl32.Vec3{1, 1, 0}, Velocity: mgl32.Vec3{0, 1, 0}},
		{Position: mgl32.Vec3{0, 2, 1}, Velocity: mgl32.Vec3{0, 0, 1}},
		{Position: mgl32.Vec3{9, 9, 9}, Velocity: mgl32.Vec3{1, 1, 1}},
	}
	fields := []Field{{Position: mgl32.Vec3{3, 0, 0}, Force: 1}}
	bounds := Bounds{Radius: 10}

	want := Accelerate(0, boids, fields, bounds, p)
	got := AccelerateAmong(0, []int32{0, 1, 2}, boids, fields, bounds, p)
	if got != want {
		t.Errorf("AccelerateAmong = %v, want %v", got, want)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"zero radius", func(c *Config) { c.Bounds.Radius = 0 }, "bounds.radius"},
		{"negative radius", func(c *Config) { c.Bounds.Radius = -1 }, "bounds.radius"},
		{"negative count", func(c *Config) { c.Count = -1 }, "count"},
		{"nan center", func(c *Config) { c.Bounds.Center[1] = float32(math.NaN()) }, "bounds.center"},
		{"negative distance", func(c *Config) { c.Params.SeparationDistance = -1 }, "distances.separation"},
		{"inf factor", func(c *Config) { c.Params.CohesionForceFactor = float32(math.Inf(1)) }, "forces.cohesion"},
		{"min above max", func(c *Config) { c.Params.MinVelocity = 9 }, "velocity.max"},
		{"negative spawn velocity", func(c *Config) { c.SpawnVelocity = -1 }, "spawn.velocity"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			var ce *ConfigError
			if !errors.As(err, &ce) {
				t.Fatalf("expected ConfigError, got %v", err)
			}
			if ce.Field != tt.field {
				t.Errorf("field = %q, want %q", ce.Field, tt.field)
			}
			if !errors.Is(err, ErrConfiguration) {
				t.Error("ConfigError does not unwrap to ErrConfiguration")
			}
		})
	}

	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
	zero := DefaultConfig()
	zero.Count = 0
	if err := zero.Validate(); err != nil {
		t.Errorf("empty flock rejected: %v", err)
	}
}

func TestBuildFields(t *testing.T) {
	fields, err := BuildFields([]FieldSource{
		FieldSpec{Position: mgl32.Vec3{1, 2, 3}, Force: 4},
		FieldSpec{Force: -1},
	})
	if err != nil {
		t.Fatalf("BuildFields failed: %v", err)
	}
	if len(fields) != 2 || fields[0].Force != 4 || fields[1].Force != -1 {
		t.Errorf("unexpected registry: %v", fields)
	}

	if _, err := BuildFields([]FieldSource{nil}); !errors.Is(err, ErrConfiguration) {
		t.Errorf("nil source: got %v", err)
	}
}

func TestRecordLayout(t *testing.T) {
	if got := unsafe.Sizeof(Boid{}); got != BoidStride {
		t.Errorf("Boid size = %d, want %d", got, BoidStride)
	}
	if got := unsafe.Sizeof(Field{}); got != FieldStride {
		t.Errorf("Field size = %d, want %d", got, FieldStride)
	}
}

func TestRenderExtent(t *testing.T) {
	b := Bounds{Radius: 10}
	if got := b.RenderExtent(); math.Abs(float64(got)-11) > 1e-5 {
		t.Errorf("RenderExtent = %v, want 11", got)
	}
}
