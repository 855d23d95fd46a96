// Package flock implements the boid flocking core: a spherical containment
// region, static point force fields and a population of boids advanced one
// tick at a time.
//
// The package is organised around a few values:
//
//   - [Boid]: fixed-stride record (position, velocity, acceleration)
//   - [Field]: static attractor (positive force) or repulsor (negative force)
//   - [Params]: force factors, distance thresholds and velocity limits
//   - [Backend]: fans the per-boid update out over a read-only snapshot
//   - [Simulation]: owns the buffers and drives the create/tick/destroy lifecycle
//
// # Example
//
//	s, _ := flock.New(cfg, flock.WithBackend(compute.NewCPUBackend()))
//	_ = s.Start(flock.FieldSpec{Position: mgl32.Vec3{}, Force: -5})
//	_ = s.Tick(1.0 / 60)
//	frame, _ := s.Snapshot()
//
// # Thread Safety
//
// Tick, Snapshot and View may be called from different goroutines. Every tick
// reads the previously published buffer and writes a private back buffer; the
// swap at the end of the tick is the only publication point, so readers never
// observe a tick in progress.
package flock
