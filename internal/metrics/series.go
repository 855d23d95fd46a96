package metrics

import (
	"github.com/san-kum/flocksim/internal/flock"
)

// Probe computes one instantaneous value from a frame.
type Probe struct {
	Name string
	Fn   func(flock.Frame) float64
}

// DefaultProbes are the per-frame columns written for every run.
func DefaultProbes(bounds flock.Bounds) []Probe {
	return []Probe{
		{Name: "mean_speed", Fn: func(f flock.Frame) float64 { return MeanSpeedOf(f.Boids) }},
		{Name: "polarization", Fn: func(f flock.Frame) float64 { return PolarizationOf(f.Boids) }},
		{Name: "extent", Fn: func(f flock.Frame) float64 { return ExtentOf(f.Boids, bounds) }},
		{Name: "kinetic_energy", Fn: func(f flock.Frame) float64 { return KineticEnergyOf(f.Boids) }},
	}
}

// Series records probe values for every published frame. It implements
// flock.Observer and forwards each frame to any attached metrics.
type Series struct {
	probes  []Probe
	metrics []flock.Metric

	Times  []float64
	Values map[string][]float64
}

func NewSeries(probes []Probe, metrics ...flock.Metric) *Series {
	s := &Series{
		probes:  probes,
		metrics: metrics,
		Values:  make(map[string][]float64, len(probes)),
	}
	return s
}

func (s *Series) OnFrame(f flock.Frame) {
	s.Times = append(s.Times, f.Time)
	for _, p := range s.probes {
		s.Values[p.Name] = append(s.Values[p.Name], p.Fn(f))
	}
	for _, m := range s.metrics {
		m.Observe(f)
	}
}

// Names returns the probe names in column order.
func (s *Series) Names() []string {
	names := make([]string, len(s.probes))
	for i, p := range s.probes {
		names[i] = p.Name
	}
	return names
}

func (s *Series) Len() int { return len(s.Times) }

// Metrics returns the final value of every attached metric keyed by name.
func (s *Series) Metrics() map[string]float64 {
	out := make(map[string]float64, len(s.metrics))
	for _, m := range s.metrics {
		out[m.Name()] = m.Value()
	}
	return out
}
