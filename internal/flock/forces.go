package flock

import "github.com/go-gl/mathgl/mgl32"

// neighbourhood accumulates the flocking sums for one boid.
type neighbourhood struct {
	alignSum      mgl32.Vec3
	cohesionSum   mgl32.Vec3
	separationSum mgl32.Vec3
	alignCount    int
	cohesionCount int
}

func (n *neighbourhood) add(self, other Boid, p Params) {
	d := other.Position.Sub(self.Position).Len()

	if d < p.AlignmentDistance {
		n.alignSum = n.alignSum.Add(other.Velocity)
		n.alignCount++
	}
	if d < p.CohesionDistance {
		n.cohesionSum = n.cohesionSum.Add(other.Position)
		n.cohesionCount++
	}
	if d < p.SeparationDistance && d > 0 {
		n.separationSum = n.separationSum.Add(self.Position.Sub(other.Position).Mul(1 / d))
	}
}

func (n *neighbourhood) steer(self Boid, p Params) mgl32.Vec3 {
	var acc mgl32.Vec3
	if n.alignCount > 0 {
		avg := n.alignSum.Mul(1 / float32(n.alignCount))
		acc = acc.Add(avg.Sub(self.Velocity).Mul(p.AlignmentForceFactor))
	}
	if n.cohesionCount > 0 {
		avg := n.cohesionSum.Mul(1 / float32(n.cohesionCount))
		acc = acc.Add(avg.Sub(self.Position).Mul(p.CohesionForceFactor))
	}
	return acc.Add(n.separationSum.Mul(p.SeparationForceFactor))
}

// Accelerate is the brute-force evaluator: every other boid is scanned.
func Accelerate(i int, boids []Boid, fields []Field, bounds Bounds, p Params) mgl32.Vec3 {
	self := boids[i]
	var n neighbourhood
	for j := range boids {
		if j == i {
			continue
		}
		n.add(self, boids[j], p)
	}
	return n.steer(self, p).Add(externalForce(self.Position, fields, bounds, p))
}

// AccelerateAmong evaluates boid i against a candidate subset of indices.
// Candidates must be ascending and must include every index within
// p.MaxDistance() of boid i; the result then matches Accelerate exactly.
func AccelerateAmong(i int, candidates []int32, boids []Boid, fields []Field, bounds Bounds, p Params) mgl32.Vec3 {
	self := boids[i]
	var n neighbourhood
	for _, j := range candidates {
		if int(j) == i {
			continue
		}
		n.add(self, boids[j], p)
	}
	return n.steer(self, p).Add(externalForce(self.Position, fields, bounds, p))
}

// externalForce sums the soft boundary pull and every field.
func externalForce(pos mgl32.Vec3, fields []Field, bounds Bounds, p Params) mgl32.Vec3 {
	acc := BoundsForce(pos, bounds, p.BoundsForceFactor)
	for _, f := range fields {
		acc = acc.Add(FieldForce(pos, f))
	}
	return acc
}

// BoundsForce points back toward the center once pos leaves the sphere and
// grows linearly with the overshoot.
func BoundsForce(pos mgl32.Vec3, bounds Bounds, factor float32) mgl32.Vec3 {
	toCenter := bounds.Center.Sub(pos)
	r := toCenter.Len()
	if r <= bounds.Radius || r == 0 {
		return mgl32.Vec3{}
	}
	return toCenter.Mul(factor * (r - bounds.Radius) / r)
}

// FieldForce is f.Force along the unit vector from pos to the field.
func FieldForce(pos mgl32.Vec3, f Field) mgl32.Vec3 {
	d := f.Position.Sub(pos)
	l := d.Len()
	if l == 0 {
		return mgl32.Vec3{}
	}
	return d.Mul(f.Force / l)
}
