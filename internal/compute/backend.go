package compute

import (
	"fmt"
	"runtime"

	"github.com/san-kum/flocksim/internal/flock"
)

// GroupSize is the number of boids handed to a worker as one unit of work.
const GroupSize = 1024

// DispatchGroups is the number of GroupSize work groups needed for n boids.
func DispatchGroups(n int) int {
	return (n + GroupSize - 1) / GroupSize
}

// AutoSelectBackend picks the CPU fan-out when more than one core is available.
func AutoSelectBackend() flock.Backend {
	if runtime.NumCPU() > 1 {
		return NewCPUBackend()
	}
	return flock.Serial{}
}

// ByName returns a backend for one of "serial", "cpu", "grid" or "auto".
func ByName(name string) (flock.Backend, error) {
	switch name {
	case "serial":
		return flock.Serial{}, nil
	case "cpu", "parallel":
		return NewCPUBackend(), nil
	case "grid":
		return NewGridBackend(), nil
	case "", "auto":
		return AutoSelectBackend(), nil
	}
	return nil, fmt.Errorf("unknown backend: %s", name)
}

// Names lists the selectable backend names.
func Names() []string {
	return []string{"auto", "serial", "cpu", "grid"}
}
