package compute

import (
	"runtime"

	"github.com/san-kum/flocksim/internal/flock"
)

// CPUBackend runs the brute-force scan over worker chunks.
type CPUBackend struct {
	workers  int
	minChunk int
}

func NewCPUBackend() *CPUBackend {
	return &CPUBackend{
		workers:  runtime.NumCPU(),
		minChunk: 64,
	}
}

// NewCPUBackendWorkers fixes the worker count and chunk floor.
func NewCPUBackendWorkers(workers, minChunk int) *CPUBackend {
	return &CPUBackend{workers: workers, minChunk: minChunk}
}

func (c *CPUBackend) Name() string { return "cpu" }

func (c *CPUBackend) Step(dst, src []flock.Boid, fields []flock.Field, bounds flock.Bounds, p flock.Params, dt float32) {
	ParallelFor(len(src), c.minChunk, c.workers, func(start, end int) {
		flock.StepRange(dst, src, fields, bounds, p, dt, start, end)
	})
}
