package metrics

import (
	"github.com/san-kum/flocksim/internal/flock"
)

// MeanSpeedOf is the average |v| over the flock.
func MeanSpeedOf(boids []flock.Boid) float64 {
	if len(boids) == 0 {
		return 0
	}
	var sum float64
	for _, b := range boids {
		sum += float64(b.Velocity.Len())
	}
	return sum / float64(len(boids))
}

// KineticEnergyOf is the mean of 0.5*|v|^2 with unit mass per boid.
func KineticEnergyOf(boids []flock.Boid) float64 {
	if len(boids) == 0 {
		return 0
	}
	var sum float64
	for _, b := range boids {
		v := b.Velocity
		sum += 0.5 * float64(v.Dot(v))
	}
	return sum / float64(len(boids))
}

type MeanSpeed struct {
	name    string
	samples int
	total   float64
}

func NewMeanSpeed() *MeanSpeed {
	return &MeanSpeed{name: "mean_speed"}
}

func (m *MeanSpeed) Name() string { return m.name }

func (m *MeanSpeed) Observe(f flock.Frame) {
	if len(f.Boids) == 0 {
		return
	}
	m.total += MeanSpeedOf(f.Boids)
	m.samples++
}

func (m *MeanSpeed) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.total / float64(m.samples)
}

func (m *MeanSpeed) Reset() {
	m.total = 0
	m.samples = 0
}

// EnergyDrift tracks the largest relative change of kinetic energy from the
// first observed frame.
type EnergyDrift struct {
	name     string
	initial  float64
	maxDrift float64
	samples  int
}

func NewEnergyDrift() *EnergyDrift {
	return &EnergyDrift{name: "energy_drift"}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(f flock.Frame) {
	energy := KineticEnergyOf(f.Boids)
	if e.samples == 0 {
		e.initial = energy
	}
	e.samples++

	if e.initial != 0 {
		drift := (energy - e.initial) / e.initial
		if drift < 0 {
			drift = -drift
		}
		if drift > e.maxDrift {
			e.maxDrift = drift
		}
	}
}

func (e *EnergyDrift) Value() float64 { return e.maxDrift }

func (e *EnergyDrift) Reset() {
	e.initial = 0
	e.maxDrift = 0
	e.samples = 0
}
