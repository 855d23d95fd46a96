package optim

import (
	"context"
	"testing"

	"github.com/san-kum/flocksim/internal/config"
	"github.com/san-kum/flocksim/internal/experiment"
	"github.com/san-kum/flocksim/internal/flock"
	"github.com/san-kum/flocksim/internal/metrics"
)

func buildFromParams(params map[string]float64) (*experiment.Experiment, error) {
	cfg := config.DefaultConfig()
	cfg.Boids = 24
	for name, v := range params {
		if err := cfg.SetParam(name, v); err != nil {
			return nil, err
		}
	}
	fc, fields := cfg.ToFlock()
	exp := experiment.New(experiment.Config{Flock: fc, Fields: fields, Dt: 0.05, Frames: 5}, nil)
	if err := exp.Setup(flock.Serial{}, []flock.Metric{metrics.NewMeanSpeed()}); err != nil {
		return nil, err
	}
	return exp, nil
}

func TestGridSearchMaxVelocity(t *testing.T) {
	// same seed for every point, so a lower cap can only lower the mean speed
	g := NewGridSearch([]string{"velocity.max"}, [][]float64{{1.5, 3, 5}})
	best, val, err := g.Search(context.Background(), buildFromParams, "mean_speed")
	if err != nil {
		t.Fatal(err)
	}
	if best["velocity.max"] != 1.5 {
		t.Errorf("minimizing picked %v, want 1.5", best)
	}
	if val > 1.5+1e-6 {
		t.Errorf("mean speed %f exceeds the cap", val)
	}
	if len(g.Samples) != 3 {
		t.Errorf("expected 3 samples, got %d", len(g.Samples))
	}

	best, _, err = NewGridSearch([]string{"velocity.max"}, [][]float64{{1.5, 3, 5}}).
		Maximize().
		Search(context.Background(), buildFromParams, "mean_speed")
	if err != nil {
		t.Fatal(err)
	}
	if best["velocity.max"] == 1.5 {
		t.Errorf("maximizing picked the lowest cap")
	}
}

func TestGridSearchUnknownMetric(t *testing.T) {
	g := NewGridSearch([]string{"forces.cohesion"}, [][]float64{{1}})
	if _, _, err := g.Search(context.Background(), buildFromParams, "nope"); err == nil {
		t.Error("expected error when no run reports the metric")
	}
}

func TestGridSearchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	g := NewGridSearch([]string{"forces.cohesion"}, [][]float64{{1, 2}})
	if _, _, err := g.Search(ctx, buildFromParams, "mean_speed"); err == nil {
		t.Error("expected cancellation error")
	}
}

func TestLinspace(t *testing.T) {
	got := Linspace(0, 1, 5)
	want := []float64{0, 0.25, 0.5, 0.75, 1}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Linspace[%d] = %f, want %f", i, got[i], want[i])
		}
	}
	if len(Linspace(3, 9, 1)) != 1 {
		t.Error("n=1 should return a single value")
	}
}
