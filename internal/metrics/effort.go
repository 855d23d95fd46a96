package metrics

import (
	"github.com/san-kum/flocksim/internal/flock"
)

// SteeringEffort averages |acceleration| per boid per frame.
type SteeringEffort struct {
	name    string
	sum     float64
	samples int
}

func NewSteeringEffort() *SteeringEffort {
	return &SteeringEffort{name: "steering_effort"}
}

func (s *SteeringEffort) Name() string { return s.name }

func (s *SteeringEffort) Observe(f flock.Frame) {
	for _, b := range f.Boids {
		s.sum += float64(b.Acceleration.Len())
		s.samples++
	}
}

func (s *SteeringEffort) Value() float64 {
	if s.samples == 0 {
		return 0
	}
	return s.sum / float64(s.samples)
}

func (s *SteeringEffort) Reset() {
	s.sum = 0
	s.samples = 0
}
