package automation

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/flocksim/internal/config"
	"github.com/san-kum/flocksim/internal/experiment"
	"github.com/san-kum/flocksim/internal/storage"
)

// Scenario is a scripted sequence of runs.
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Steps       []Step `yaml:"steps"`

	dir string
}

// Step describes one run. Zero values keep whatever the preset or config
// file chose.
type Step struct {
	Name    string             `yaml:"name"`
	Preset  string             `yaml:"preset"`
	Config  string             `yaml:"config"`
	Backend string             `yaml:"backend"`
	Boids   int                `yaml:"boids"`
	Seed    int64              `yaml:"seed"`
	Frames  int                `yaml:"frames"`
	Dt      float64            `yaml:"dt"`
	Params  map[string]float64 `yaml:"params"`

	// Resume continues from the final frame of the previous step.
	Resume bool `yaml:"resume"`
	Save   bool `yaml:"save"`
}

type StepResult struct {
	Step   Step
	Config experiment.Config
	Result *experiment.Result
	RunID  string
}

// LoadScenario reads a YAML scenario. Step config paths are resolved
// relative to the scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if len(sc.Steps) == 0 {
		return nil, fmt.Errorf("scenario %s has no steps", path)
	}
	sc.dir = filepath.Dir(path)
	return &sc, nil
}

// Build resolves a step into a validated configuration.
func (s Step) Build(dir string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if s.Preset != "" {
		cfg = config.GetPreset(s.Preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s", s.Preset)
		}
	}
	if s.Config != "" {
		path := s.Config
		if !filepath.IsAbs(path) && dir != "" {
			path = filepath.Join(dir, path)
		}
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if s.Backend != "" {
		cfg.Backend = s.Backend
	}
	if s.Boids > 0 {
		cfg.Boids = s.Boids
	}
	if s.Seed != 0 {
		cfg.Seed = s.Seed
	}
	if s.Frames > 0 {
		cfg.Frames = s.Frames
	}
	if s.Dt > 0 {
		cfg.Dt = s.Dt
	}
	for name, v := range s.Params {
		if err := cfg.SetParam(name, v); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// RunScenario executes every step in order. Results finished before a
// failing step are returned with the error. st may be nil, in which case
// Save is ignored.
func RunScenario(ctx context.Context, sc *Scenario, st *storage.Store, logger *zap.Logger) ([]StepResult, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	registry := experiment.NewRegistry()
	results := make([]StepResult, 0, len(sc.Steps))

	for i, step := range sc.Steps {
		name := step.Name
		if name == "" {
			name = fmt.Sprintf("step %d", i+1)
		}
		log := logger.With(zap.String("scenario", sc.Name), zap.String("step", name))

		cfg, err := step.Build(sc.dir)
		if err != nil {
			return results, fmt.Errorf("%s: %w", name, err)
		}
		be, err := registry.GetBackend(cfg.Backend)
		if err != nil {
			return results, fmt.Errorf("%s: %w", name, err)
		}

		fc, fields := cfg.ToFlock()
		ecfg := experiment.Config{
			Flock:   fc,
			Fields:  fields,
			Backend: cfg.Backend,
			Dt:      float32(cfg.Dt),
			Frames:  cfg.Frames,
		}
		if step.Resume {
			if len(results) == 0 {
				return results, fmt.Errorf("%s: nothing to resume from", name)
			}
			ecfg.Initial = results[len(results)-1].Result.Final.Boids
		}

		exp := experiment.New(ecfg, log)
		if err := exp.Setup(be, registry.DefaultMetrics(fc.Bounds)); err != nil {
			return results, fmt.Errorf("%s setup: %w", name, err)
		}
		result, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("%s run: %w", name, err)
		}

		sr := StepResult{Step: step, Config: ecfg, Result: result}
		if step.Save && st != nil {
			id, err := st.Save(ecfg, result)
			if err != nil {
				return results, fmt.Errorf("%s save: %w", name, err)
			}
			sr.RunID = id
		}
		log.Info("step finished",
			zap.Int("frames", result.Final.Index),
			zap.Float64("polarization", result.Metrics["polarization"]),
			zap.String("run", sr.RunID),
		)
		results = append(results, sr)
	}

	return results, nil
}
