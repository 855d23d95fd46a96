package metrics

import (
	"github.com/san-kum/flocksim/internal/flock"
)

// ExtentOf is the largest distance from the bounds center divided by the
// radius. Values above 1 mean a boid escaped the sphere.
func ExtentOf(boids []flock.Boid, bounds flock.Bounds) float64 {
	var worst float32
	for _, b := range boids {
		if r := b.Position.Sub(bounds.Center).Len(); r > worst {
			worst = r
		}
	}
	return float64(worst / bounds.Radius)
}

// Extent reports the maximum ExtentOf seen over all observed frames.
type Extent struct {
	name   string
	bounds flock.Bounds
	max    float64
}

func NewExtent(bounds flock.Bounds) *Extent {
	return &Extent{name: "extent", bounds: bounds}
}

func (e *Extent) Name() string { return e.name }

func (e *Extent) Observe(f flock.Frame) {
	if v := ExtentOf(f.Boids, e.bounds); v > e.max {
		e.max = v
	}
}

func (e *Extent) Value() float64 { return e.max }

func (e *Extent) Reset() { e.max = 0 }

// Containment is the fraction of frames in which every boid stayed within
// the bounds radius plus tolerance.
type Containment struct {
	name       string
	bounds     flock.Bounds
	tolerance  float32
	violations int
	samples    int
}

func NewContainment(bounds flock.Bounds, tolerance float32) *Containment {
	return &Containment{
		name:      "containment",
		bounds:    bounds,
		tolerance: tolerance,
	}
}

func (c *Containment) Name() string { return c.name }

func (c *Containment) Observe(f flock.Frame) {
	c.samples++
	limit := c.bounds.Radius + c.tolerance
	for _, b := range f.Boids {
		if b.Position.Sub(c.bounds.Center).Len() > limit {
			c.violations++
			break
		}
	}
}

func (c *Containment) Value() float64 {
	if c.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(c.violations)/float64(c.samples)
}

func (c *Containment) Reset() {
	c.violations = 0
	c.samples = 0
}
