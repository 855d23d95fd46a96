package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/flocksim/internal/compute"
	"github.com/san-kum/flocksim/internal/flock"
	"github.com/san-kum/flocksim/internal/metrics"
)

type Registry struct {
	backends map[string]func() flock.Backend
	metrics  map[string]func(flock.Bounds) flock.Metric
}

func NewRegistry() *Registry {
	r := &Registry{
		backends: make(map[string]func() flock.Backend),
		metrics:  make(map[string]func(flock.Bounds) flock.Metric),
	}

	r.backends["serial"] = func() flock.Backend { return flock.Serial{} }
	r.backends["cpu"] = func() flock.Backend { return compute.NewCPUBackend() }
	r.backends["parallel"] = r.backends["cpu"]
	r.backends["grid"] = func() flock.Backend { return compute.NewGridBackend() }
	r.backends["auto"] = compute.AutoSelectBackend
	r.backends[""] = compute.AutoSelectBackend

	r.metrics["mean_speed"] = func(flock.Bounds) flock.Metric { return metrics.NewMeanSpeed() }
	r.metrics["energy_drift"] = func(flock.Bounds) flock.Metric { return metrics.NewEnergyDrift() }
	r.metrics["polarization"] = func(flock.Bounds) flock.Metric { return metrics.NewPolarization() }
	r.metrics["nearest_neighbour"] = func(flock.Bounds) flock.Metric { return metrics.NewNearestNeighbour(10) }
	r.metrics["steering_effort"] = func(flock.Bounds) flock.Metric { return metrics.NewSteeringEffort() }
	r.metrics["extent"] = func(b flock.Bounds) flock.Metric { return metrics.NewExtent(b) }
	r.metrics["containment"] = func(b flock.Bounds) flock.Metric { return metrics.NewContainment(b, 1e-3) }

	return r
}

func (r *Registry) GetBackend(name string) (flock.Backend, error) {
	fn, ok := r.backends[name]
	if !ok {
		return nil, fmt.Errorf("unknown backend: %s", name)
	}
	return fn(), nil
}

func (r *Registry) GetMetric(name string, bounds flock.Bounds) (flock.Metric, error) {
	fn, ok := r.metrics[name]
	if !ok {
		return nil, fmt.Errorf("unknown metric: %s", name)
	}
	return fn(bounds), nil
}

func (r *Registry) ListMetrics() []string {
	names := make([]string, 0, len(r.metrics))
	for name := range r.metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultMetrics is every registered metric for the given bounds.
func (r *Registry) DefaultMetrics(bounds flock.Bounds) []flock.Metric {
	names := r.ListMetrics()
	ms := make([]flock.Metric, 0, len(names))
	for _, name := range names {
		ms = append(ms, r.metrics[name](bounds))
	}
	return ms
}
