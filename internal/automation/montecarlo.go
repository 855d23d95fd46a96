package automation

import (
	"context"
	"math"
	"math/rand"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/flocksim/internal/config"
	"github.com/san-kum/flocksim/internal/experiment"
)

// MonteCarloConfig repeats one configuration under different spawn seeds.
type MonteCarloConfig struct {
	Base   *config.Config
	Trials int
	Seed   int64
}

type MonteCarloResult struct {
	Trial        int
	Seed         int64
	Polarization float64
	MeanSpeed    float64
	Containment  float64
	// Stable means every frame stayed inside the bounds with finite metrics.
	Stable bool
}

// RunMonteCarlo runs cfg.Trials experiments concurrently, each spawning from
// a seed drawn from cfg.Seed. Results are ordered by trial. The first failing
// trial cancels the rest.
func RunMonteCarlo(ctx context.Context, cfg MonteCarloConfig, logger *zap.Logger) ([]MonteCarloResult, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	registry := experiment.NewRegistry()
	rng := rand.New(rand.NewSource(cfg.Seed))
	results := make([]MonteCarloResult, cfg.Trials)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for trial := 0; trial < cfg.Trials; trial++ {
		c := cfg.Base.Clone()
		c.Seed = rng.Int63()

		g.Go(func() error {
			r, err := runTrial(ctx, registry, c, logger)
			if err != nil {
				return err
			}
			r.Trial = trial
			results[trial] = r
			logger.Debug("trial finished", zap.Int("trial", trial), zap.Int64("seed", c.Seed), zap.Bool("stable", r.Stable))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func runTrial(ctx context.Context, registry *experiment.Registry, c *config.Config, logger *zap.Logger) (MonteCarloResult, error) {
	be, err := registry.GetBackend(c.Backend)
	if err != nil {
		return MonteCarloResult{}, err
	}
	fc, fields := c.ToFlock()
	exp := experiment.New(experiment.Config{
		Flock:   fc,
		Fields:  fields,
		Backend: c.Backend,
		Dt:      float32(c.Dt),
		Frames:  c.Frames,
	}, logger)
	if err := exp.Setup(be, registry.DefaultMetrics(fc.Bounds)); err != nil {
		return MonteCarloResult{}, err
	}
	result, err := exp.Run(ctx)
	if err != nil {
		return MonteCarloResult{}, err
	}

	r := MonteCarloResult{
		Seed:         c.Seed,
		Polarization: result.Metrics["polarization"],
		MeanSpeed:    result.Metrics["mean_speed"],
		Containment:  result.Metrics["containment"],
	}
	r.Stable = r.Containment == 1 && !math.IsNaN(r.Polarization) && !math.IsNaN(r.MeanSpeed)
	return r, nil
}

// MonteCarloStats summarizes trials.
func MonteCarloStats(results []MonteCarloResult) (stable, unstable int, meanPolarization float64) {
	for _, r := range results {
		if r.Stable {
			stable++
		} else {
			unstable++
		}
		meanPolarization += r.Polarization
	}
	if len(results) > 0 {
		meanPolarization /= float64(len(results))
	}
	return
}
