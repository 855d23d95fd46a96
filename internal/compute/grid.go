package compute

import (
	"math"
	"runtime"
	"slices"

	"github.com/san-kum/flocksim/internal/flock"
)

type cellKey struct {
	x, y, z int
}

// cellGrid maps a cell to the ascending indices of the boids inside it.
type cellGrid map[cellKey][]int32

// GridBackend buckets boids into cubic cells sized to the largest neighbour
// threshold, so each boid only scans the 27 cells around its own. The grid is
// rebuilt inside every Step, so one backend may serve several simulations at
// once.
type GridBackend struct {
	workers  int
	minChunk int
}

func NewGridBackend() *GridBackend {
	return &GridBackend{
		workers:  runtime.NumCPU(),
		minChunk: 64,
	}
}

func (g *GridBackend) Name() string { return "grid" }

func (g *GridBackend) Step(dst, src []flock.Boid, fields []flock.Field, bounds flock.Bounds, p flock.Params, dt float32) {
	// Pad the cell so float rounding in keyFor can never split a pair closer
	// than the threshold across non-adjacent cells.
	size := p.MaxDistance() * 1.001
	cells := buildGrid(src, size)

	ParallelFor(len(src), g.minChunk, g.workers, func(start, end int) {
		candidates := make([]int32, 0, 64)
		for i := start; i < end; i++ {
			candidates = cells.neighbours(candidates[:0], src[i], size)
			acc := flock.AccelerateAmong(i, candidates, src, fields, bounds, p)
			dst[i] = flock.Integrate(src[i], acc, dt, bounds, p)
		}
	})
}

func buildGrid(src []flock.Boid, size float32) cellGrid {
	cells := make(cellGrid)
	if size <= 0 {
		return cells
	}
	for i, b := range src {
		k := keyFor(b, size)
		cells[k] = append(cells[k], int32(i))
	}
	return cells
}

// neighbours appends, in ascending order, every index in the 3x3x3 block of
// cells around b.
func (c cellGrid) neighbours(out []int32, b flock.Boid, size float32) []int32 {
	if size <= 0 {
		return out
	}
	k := keyFor(b, size)
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			for dz := -1; dz <= 1; dz++ {
				out = append(out, c[cellKey{k.x + dx, k.y + dy, k.z + dz}]...)
			}
		}
	}
	slices.Sort(out)
	return out
}

func keyFor(b flock.Boid, size float32) cellKey {
	return cellKey{
		x: int(math.Floor(float64(b.Position[0] / size))),
		y: int(math.Floor(float64(b.Position[1] / size))),
		z: int(math.Floor(float64(b.Position[2] / size))),
	}
}
