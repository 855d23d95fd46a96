package experiment

import (
	"context"
	"errors"
	"testing"

	"github.com/san-kum/flocksim/internal/flock"
)

func smallConfig() Config {
	fc := flock.DefaultConfig()
	fc.Count = 48
	return Config{
		Flock:   fc,
		Backend: "serial",
		Dt:      0.05,
		Frames:  10,
	}
}

func TestExperimentRun(t *testing.T) {
	reg := NewRegistry()
	cfg := smallConfig()

	backend, err := reg.GetBackend(cfg.Backend)
	if err != nil {
		t.Fatal(err)
	}
	exp := New(cfg, nil)
	if err := exp.Setup(backend, reg.DefaultMetrics(cfg.Flock.Bounds)); err != nil {
		t.Fatal(err)
	}

	result, err := exp.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(result.Times) != cfg.Frames {
		t.Errorf("expected %d samples, got %d", cfg.Frames, len(result.Times))
	}
	if result.Final.Index != cfg.Frames {
		t.Errorf("final frame = %d, want %d", result.Final.Index, cfg.Frames)
	}
	if len(result.Final.Boids) != cfg.Flock.Count {
		t.Errorf("final boids = %d, want %d", len(result.Final.Boids), cfg.Flock.Count)
	}
	for _, name := range reg.ListMetrics() {
		if _, ok := result.Metrics[name]; !ok {
			t.Errorf("metric %s missing", name)
		}
	}
	if result.Metrics["containment"] != 1 {
		t.Errorf("containment = %f, want 1", result.Metrics["containment"])
	}
}

func TestExperimentResume(t *testing.T) {
	reg := NewRegistry()
	first := smallConfig()
	backend, _ := reg.GetBackend("serial")

	exp := New(first, nil)
	_ = exp.Setup(backend, nil)
	a, err := exp.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	second := smallConfig()
	second.Initial = a.Final.Boids
	second.Frames = 1
	exp = New(second, nil)
	_ = exp.Setup(backend, nil)
	b, err := exp.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	// one resumed tick equals the 11th tick of an uninterrupted run
	whole := smallConfig()
	whole.Frames = 11
	exp = New(whole, nil)
	_ = exp.Setup(backend, nil)
	c, err := exp.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	for i := range c.Final.Boids {
		if b.Final.Boids[i] != c.Final.Boids[i] {
			t.Fatalf("boid %d diverged after resume", i)
		}
	}
}

func TestExperimentNotSetup(t *testing.T) {
	if _, err := New(smallConfig(), nil).Run(context.Background()); err == nil {
		t.Error("expected error for missing setup")
	}
}

func TestExperimentCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	exp := New(smallConfig(), nil)
	_ = exp.Setup(flock.Serial{}, nil)
	if _, err := exp.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRegistryUnknown(t *testing.T) {
	reg := NewRegistry()
	if _, err := reg.GetBackend("gpu"); err == nil {
		t.Error("expected error for unknown backend")
	}
	if _, err := reg.GetMetric("nope", flock.Bounds{Radius: 1}); err == nil {
		t.Error("expected error for unknown metric")
	}
}
