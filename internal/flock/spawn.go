package flock

import (
	"math/rand"

	"github.com/go-gl/mathgl/mgl32"
)

// Spawn creates n boids inside the smaller of spawnRadius and the bounds
// radius, each moving at exactly spawnVelocity in a uniformly random direction.
func Spawn(rng *rand.Rand, n int, bounds Bounds, spawnRadius, spawnVelocity float32) []Boid {
	radius := spawnRadius
	if radius > bounds.Radius {
		radius = bounds.Radius
	}
	if radius < 0 {
		radius = 0
	}

	boids := make([]Boid, n)
	for i := range boids {
		boids[i].Position = bounds.Center.Add(insideUnitSphere(rng).Mul(radius))
		boids[i].Velocity = onUnitSphere(rng).Mul(spawnVelocity)
	}
	return boids
}

// insideUnitSphere rejection-samples the unit ball.
func insideUnitSphere(rng *rand.Rand) mgl32.Vec3 {
	for {
		v := mgl32.Vec3{
			float32(rng.Float64()*2 - 1),
			float32(rng.Float64()*2 - 1),
			float32(rng.Float64()*2 - 1),
		}
		if v.Dot(v) <= 1 {
			return v
		}
	}
}

func onUnitSphere(rng *rand.Rand) mgl32.Vec3 {
	for {
		v := insideUnitSphere(rng)
		if l := v.Len(); l > 1e-4 {
			return v.Mul(1 / l)
		}
	}
}
