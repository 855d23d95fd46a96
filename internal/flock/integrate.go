package flock

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// FallbackHeading is the direction given to a boid whose velocity is exactly
// zero when it has to be raised to the minimum speed.
var FallbackHeading = mgl32.Vec3{1, 0, 0}

// Integrate advances one boid by dt with semi-implicit Euler, clamps its speed
// into [MinVelocity, MaxVelocity] and projects it back onto the bounds sphere
// if it left.
func Integrate(b Boid, acc mgl32.Vec3, dt float32, bounds Bounds, p Params) Boid {
	v := ClampSpeed(b.Velocity.Add(acc.Mul(dt)), p.MinVelocity, p.MaxVelocity)
	pos := Contain(b.Position.Add(v.Mul(dt)), bounds)
	return Boid{Position: pos, Velocity: v, Acceleration: acc}
}

// ClampSpeed rescales v so that lo <= |v| <= hi, keeping its direction.
// A NaN velocity is replaced by FallbackHeading at speed lo.
func ClampSpeed(v mgl32.Vec3, lo, hi float32) mgl32.Vec3 {
	speed, dir, ok := norm64(widen(v))
	switch {
	case !ok:
		return FallbackHeading.Mul(lo)
	case speed < float64(lo):
		return narrow(dir, float64(lo))
	case speed > float64(hi):
		return narrow(dir, float64(hi))
	}
	return v
}

// Contain projects p onto the sphere surface when it lies outside. A NaN
// position is moved to the center.
func Contain(p mgl32.Vec3, bounds Bounds) mgl32.Vec3 {
	off := widen(p)
	for i := range off {
		off[i] -= float64(bounds.Center[i])
	}
	r, dir, ok := norm64(off)
	if !ok {
		if r == 0 {
			return p
		}
		return bounds.Center
	}
	if r <= float64(bounds.Radius) {
		return p
	}
	return bounds.Center.Add(narrow(dir, float64(bounds.Radius)))
}

// norm64 returns |v| and v/|v| without overflowing near the float32 limit.
// Infinite components dominate the direction. ok is false for the zero
// vector (length 0) and for NaN input (length NaN).
func norm64(v [3]float64) (float64, [3]float64, bool) {
	inf := false
	for _, c := range v {
		if math.IsNaN(c) {
			return math.NaN(), v, false
		}
		if math.IsInf(c, 0) {
			inf = true
		}
	}
	if inf {
		for i, c := range v {
			switch {
			case math.IsInf(c, 1):
				v[i] = 1
			case math.IsInf(c, -1):
				v[i] = -1
			default:
				v[i] = 0
			}
		}
	}
	l := math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
	if l == 0 {
		return 0, v, false
	}
	dir := [3]float64{v[0] / l, v[1] / l, v[2] / l}
	if inf {
		l = math.Inf(1)
	}
	return l, dir, true
}

func widen(v mgl32.Vec3) [3]float64 {
	return [3]float64{float64(v[0]), float64(v[1]), float64(v[2])}
}

func narrow(dir [3]float64, length float64) mgl32.Vec3 {
	return mgl32.Vec3{float32(dir[0] * length), float32(dir[1] * length), float32(dir[2] * length)}
}

// StepRange runs the evaluator and integrator for indices [start, end).
// It is the unit of work every backend schedules.
func StepRange(dst, src []Boid, fields []Field, bounds Bounds, p Params, dt float32, start, end int) {
	for i := start; i < end; i++ {
		dst[i] = Integrate(src[i], Accelerate(i, src, fields, bounds, p), dt, bounds, p)
	}
}

// Serial is the single-goroutine reference backend.
type Serial struct{}

func (Serial) Name() string { return "serial" }

func (Serial) Step(dst, src []Boid, fields []Field, bounds Bounds, p Params, dt float32) {
	StepRange(dst, src, fields, bounds, p, dt, 0, len(src))
}
