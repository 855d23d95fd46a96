package analysis

import (
	"math"
	"math/rand"
	"sort"

	"github.com/san-kum/flocksim/internal/flock"
)

// ScanPoint holds the distinct settled values of a probe for one parameter value.
type ScanPoint struct {
	Param  float64
	Values []float64
}

// ParameterScan sweeps a parameter, letting each flock settle for transient
// frames before recording the probe for record frames. build maps a
// parameter value onto a flock configuration. Recorded values are rounded to
// three decimals and deduplicated, so a settled order parameter yields a
// single value and an oscillating one a spread.
func ParameterScan(
	backend flock.Backend,
	build func(param float64) (flock.Config, []flock.FieldSource, error),
	values []float64,
	probe func(flock.Frame) float64,
	transient, record int,
	dt float32,
) []ScanPoint {
	results := make([]ScanPoint, 0, len(values))

	for _, param := range values {
		cfg, sources, err := build(param)
		if err != nil || cfg.Validate() != nil {
			continue
		}
		fields, err := flock.BuildFields(sources)
		if err != nil {
			continue
		}

		rng := rand.New(rand.NewSource(cfg.Seed))
		cur := flock.Spawn(rng, cfg.Count, cfg.Bounds, cfg.SpawnRadius, cfg.SpawnVelocity)
		next := make([]flock.Boid, len(cur))

		for i := 0; i < transient; i++ {
			backend.Step(next, cur, fields, cfg.Bounds, cfg.Params, dt)
			cur, next = next, cur
		}

		seen := make(map[int64]bool)
		point := ScanPoint{Param: param}
		for i := 0; i < record; i++ {
			backend.Step(next, cur, fields, cfg.Bounds, cfg.Params, dt)
			cur, next = next, cur

			v := probe(flock.Frame{Index: transient + i + 1, Boids: cur})
			key := int64(math.Round(v * 1000))
			if !seen[key] {
				seen[key] = true
				point.Values = append(point.Values, float64(key)/1000)
			}
		}
		sort.Float64s(point.Values)
		results = append(results, point)
	}

	return results
}
