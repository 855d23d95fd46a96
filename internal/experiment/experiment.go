package experiment

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/san-kum/flocksim/internal/flock"
	"github.com/san-kum/flocksim/internal/metrics"
)

type Config struct {
	Flock   flock.Config
	Fields  []flock.FieldSource
	Backend string
	Dt      float32
	Frames  int

	// Initial resumes from a saved boid array instead of spawning.
	Initial []flock.Boid
}

// Result holds everything a finished run produced.
type Result struct {
	Backend string
	Columns []string
	Times   []float64
	Series  map[string][]float64
	Metrics map[string]float64
	Final   flock.Frame
}

type Experiment struct {
	cfg       Config
	logger    *zap.Logger
	backend   flock.Backend
	metrics   []flock.Metric
	observers []flock.Observer
}

func New(cfg Config, logger *zap.Logger) *Experiment {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Experiment{cfg: cfg, logger: logger}
}

func (e *Experiment) Setup(backend flock.Backend, ms []flock.Metric) error {
	if backend == nil {
		return fmt.Errorf("experiment needs a backend")
	}
	e.backend = backend
	e.metrics = ms
	return nil
}

// AddObserver registers o for every published frame of the next Run.
func (e *Experiment) AddObserver(o flock.Observer) {
	e.observers = append(e.observers, o)
}

func (e *Experiment) Run(ctx context.Context) (*Result, error) {
	if e.backend == nil {
		return nil, fmt.Errorf("experiment not setup")
	}

	series := metrics.NewSeries(metrics.DefaultProbes(e.cfg.Flock.Bounds), e.metrics...)
	opts := []flock.Option{
		flock.WithBackend(e.backend),
		flock.WithLogger(e.logger),
		flock.WithObserver(series),
	}
	for _, o := range e.observers {
		opts = append(opts, flock.WithObserver(o))
	}

	s, err := flock.New(e.cfg.Flock, opts...)
	if err != nil {
		return nil, err
	}
	defer s.Destroy()

	if e.cfg.Initial != nil {
		err = s.Restore(e.cfg.Initial, e.cfg.Fields...)
	} else {
		err = s.Start(e.cfg.Fields...)
	}
	if err != nil {
		return nil, err
	}

	if err := s.Run(ctx, e.cfg.Frames, e.cfg.Dt); err != nil {
		return nil, err
	}

	final, err := s.Snapshot()
	if err != nil {
		return nil, err
	}

	return &Result{
		Backend: e.backend.Name(),
		Columns: series.Names(),
		Times:   series.Times,
		Series:  series.Values,
		Metrics: series.Metrics(),
		Final:   final,
	}, nil
}
