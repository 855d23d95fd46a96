// Package compute provides the flock.Backend implementations.
//
//   - Serial: reference brute-force scan on one goroutine (flock.Serial)
//   - CPU: the same scan fanned out over worker chunks
//   - Grid: CPU fan-out with a uniform cell grid limiting neighbour candidates
//
// Every backend reads the previous tick's buffer and writes disjoint indices
// of the next one, then joins before returning:
//
//	backend := compute.AutoSelectBackend()
//	sim, _ := flock.New(cfg, flock.WithBackend(backend))
//
// The grid backend sorts candidate indices before evaluation, so its results
// are bit-identical to the brute-force scan.
package compute
