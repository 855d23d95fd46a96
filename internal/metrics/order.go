package metrics

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/san-kum/flocksim/internal/flock"
)

// PolarizationOf is the order parameter |mean unit heading|: 1 when every
// boid flies the same way, near 0 for random headings. Stationary boids are
// skipped.
func PolarizationOf(boids []flock.Boid) float64 {
	var sum mgl32.Vec3
	n := 0
	for _, b := range boids {
		l := b.Velocity.Len()
		if l == 0 {
			continue
		}
		sum = sum.Add(b.Velocity.Mul(1 / l))
		n++
	}
	if n == 0 {
		return 0
	}
	return float64(sum.Len()) / float64(n)
}

// NearestNeighbourOf is the mean distance from each boid to its closest
// other boid. It scans all pairs.
func NearestNeighbourOf(boids []flock.Boid) float64 {
	if len(boids) < 2 {
		return 0
	}
	var total float64
	for i := range boids {
		best := float32(math.MaxFloat32)
		for j := range boids {
			if i == j {
				continue
			}
			if d := boids[j].Position.Sub(boids[i].Position).Len(); d < best {
				best = d
			}
		}
		total += float64(best)
	}
	return total / float64(len(boids))
}

type Polarization struct {
	name    string
	samples int
	total   float64
}

func NewPolarization() *Polarization {
	return &Polarization{name: "polarization"}
}

func (p *Polarization) Name() string { return p.name }

func (p *Polarization) Observe(f flock.Frame) {
	p.total += PolarizationOf(f.Boids)
	p.samples++
}

func (p *Polarization) Value() float64 {
	if p.samples == 0 {
		return 0
	}
	return p.total / float64(p.samples)
}

func (p *Polarization) Reset() {
	p.total = 0
	p.samples = 0
}

// NearestNeighbour averages NearestNeighbourOf over observed frames. Every
// stride-th frame is sampled since each sample is quadratic in flock size.
type NearestNeighbour struct {
	name    string
	stride  int
	seen    int
	samples int
	total   float64
}

func NewNearestNeighbour(stride int) *NearestNeighbour {
	if stride < 1 {
		stride = 1
	}
	return &NearestNeighbour{name: "nearest_neighbour", stride: stride}
}

func (n *NearestNeighbour) Name() string { return n.name }

func (n *NearestNeighbour) Observe(f flock.Frame) {
	n.seen++
	if (n.seen-1)%n.stride != 0 {
		return
	}
	n.total += NearestNeighbourOf(f.Boids)
	n.samples++
}

func (n *NearestNeighbour) Value() float64 {
	if n.samples == 0 {
		return 0
	}
	return n.total / float64(n.samples)
}

func (n *NearestNeighbour) Reset() {
	n.seen = 0
	n.total = 0
	n.samples = 0
}
