package automation

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/flocksim/internal/config"
	"github.com/san-kum/flocksim/internal/storage"
)

const scenarioYAML = `name: warmup
description: settle then tighten cohesion
steps:
  - name: settle
    preset: sparse
    backend: serial
    boids: 32
    frames: 5
    dt: 0.05
    save: true
  - name: tighten
    config: tight.yaml
    backend: serial
    frames: 3
    resume: true
    params:
      forces.cohesion: 2
`

const tightYAML = `boids: 32
bounds:
  center: [0, 0, 0]
  radius: 20
velocity:
  min: 1
  max: 4
`

func writeScenario(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "tight.yaml"), []byte(tightYAML), 0644); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "scenario.yaml")
	if err := os.WriteFile(path, []byte(scenarioYAML), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunScenario(t *testing.T) {
	sc, err := LoadScenario(writeScenario(t))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if sc.Name != "warmup" || len(sc.Steps) != 2 {
		t.Fatalf("unexpected scenario: %+v", sc)
	}

	st := storage.New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatal(err)
	}

	results, err := RunScenario(context.Background(), sc, st, nil)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].RunID == "" {
		t.Error("first step was not saved")
	}
	if results[1].RunID != "" {
		t.Error("second step saved without being asked")
	}
	if results[1].Config.Initial == nil {
		t.Error("second step did not resume")
	}
	if got := results[1].Config.Flock.Params.CohesionForceFactor; got != 2 {
		t.Errorf("cohesion override = %v, want 2", got)
	}
	if got := len(results[1].Result.Final.Boids); got != 32 {
		t.Errorf("resumed boids = %d, want 32", got)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 {
		t.Errorf("stored runs = %d, want 1", len(runs))
	}
}

func TestStepBuildErrors(t *testing.T) {
	tests := []struct {
		name string
		step Step
	}{
		{"unknown preset", Step{Preset: "nope"}},
		{"unknown param", Step{Params: map[string]float64{"forces.gravity": 1}}},
		{"invalid velocity", Step{Params: map[string]float64{"velocity.min": 10, "velocity.max": 1}}},
		{"missing config", Step{Config: "missing.yaml"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.step.Build(t.TempDir()); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestResumeFirstStep(t *testing.T) {
	sc := &Scenario{Name: "bad", Steps: []Step{{Boids: 4, Frames: 1, Resume: true}}}
	if _, err := RunScenario(context.Background(), sc, nil, nil); err == nil {
		t.Error("resume without a previous step should fail")
	}
}

func TestLoadScenarioEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.yaml")
	if err := os.WriteFile(path, []byte("name: empty\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadScenario(path); err == nil {
		t.Error("expected error for scenario without steps")
	}
}

func TestRunMonteCarlo(t *testing.T) {
	base := config.DefaultConfig()
	base.Boids = 24
	base.Frames = 5
	base.Backend = "serial"

	results, err := RunMonteCarlo(context.Background(), MonteCarloConfig{Base: base, Trials: 3, Seed: 7}, nil)
	if err != nil {
		t.Fatalf("monte carlo failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 trials, got %d", len(results))
	}
	if results[0].Seed == results[1].Seed {
		t.Error("trials share a seed")
	}

	stable, unstable, mean := MonteCarloStats(results)
	if stable+unstable != 3 {
		t.Errorf("stats count = %d", stable+unstable)
	}
	if stable != 3 {
		t.Errorf("expected every trial contained, got %d stable", stable)
	}
	if mean < 0 || mean > 1 {
		t.Errorf("mean polarization %v out of range", mean)
	}
	if base.Seed != 1 {
		t.Error("base config mutated")
	}
}

func TestRunMonteCarloDeterministic(t *testing.T) {
	base := config.DefaultConfig()
	base.Boids = 16
	base.Frames = 4
	base.Backend = "serial"
	mc := MonteCarloConfig{Base: base, Trials: 6, Seed: 11}

	a, err := RunMonteCarlo(context.Background(), mc, nil)
	if err != nil {
		t.Fatal(err)
	}
	b, err := RunMonteCarlo(context.Background(), mc, nil)
	if err != nil {
		t.Fatal(err)
	}
	for i := range a {
		if a[i].Trial != i {
			t.Errorf("result %d reports trial %d", i, a[i].Trial)
		}
		if a[i] != b[i] {
			t.Errorf("trial %d differs between runs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestRunMonteCarloCancelled(t *testing.T) {
	base := config.DefaultConfig()
	base.Boids = 16
	base.Frames = 50
	base.Backend = "serial"

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := RunMonteCarlo(ctx, MonteCarloConfig{Base: base, Trials: 4, Seed: 1}, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
