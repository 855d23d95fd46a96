package flock

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"go.uber.org/zap"
)

// Lifecycle states of a Simulation.
type State int

const (
	Uninitialized State = iota
	Running
	Destroyed
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Running:
		return "running"
	case Destroyed:
		return "destroyed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

type Option func(*Simulation)

// WithBackend replaces the default Serial backend.
func WithBackend(b Backend) Option {
	return func(s *Simulation) {
		if b != nil {
			s.backend = b
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Simulation) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithObserver registers o to be notified after each published tick.
func WithObserver(o Observer) Option {
	return func(s *Simulation) { s.observers = append(s.observers, o) }
}

// Simulation owns the boid buffers and field registry for one run.
type Simulation struct {
	cfg       Config
	backend   Backend
	logger    *zap.Logger
	observers []Observer

	// tickMu serializes Tick, Start and Destroy; mu guards publication.
	tickMu sync.Mutex
	mu     sync.RWMutex

	state  State
	front  []Boid
	back   []Boid
	fields []Field
	frame  int
	time   float64
}

// New validates cfg and returns an Uninitialized simulation.
func New(cfg Config, opts ...Option) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Simulation{
		cfg:     cfg,
		backend: Serial{},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Start builds the field registry and spawns the boids. It runs once.
func (s *Simulation) Start(sources ...FieldSource) error {
	s.tickMu.Lock()
	defer s.tickMu.Unlock()

	switch s.State() {
	case Running:
		return ErrAlreadyStarted
	case Destroyed:
		return ErrDestroyed
	}

	rng := rand.New(rand.NewSource(s.cfg.Seed))
	boids := Spawn(rng, s.cfg.Count, s.cfg.Bounds, s.cfg.SpawnRadius, s.cfg.SpawnVelocity)
	return s.startLocked(boids, sources)
}

// Restore starts the simulation from an existing boid array instead of
// spawning, e.g. a frame saved by a previous run. Count is taken from boids.
func (s *Simulation) Restore(boids []Boid, sources ...FieldSource) error {
	s.tickMu.Lock()
	defer s.tickMu.Unlock()

	switch s.State() {
	case Running:
		return ErrAlreadyStarted
	case Destroyed:
		return ErrDestroyed
	}
	for i, b := range boids {
		if !finiteVec(b.Position) || !finiteVec(b.Velocity) {
			return &ConfigError{Field: fmt.Sprintf("boids[%d]", i), Reason: "must be finite"}
		}
	}

	own := make([]Boid, len(boids))
	copy(own, boids)
	s.cfg.Count = len(own)
	return s.startLocked(own, sources)
}

func (s *Simulation) startLocked(boids []Boid, sources []FieldSource) error {
	fields, err := BuildFields(sources)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.fields = fields
	s.front = boids
	s.back = make([]Boid, len(boids))
	s.frame = 0
	s.time = 0
	s.state = Running
	s.mu.Unlock()

	s.logger.Info("simulation started",
		zap.Int("boids", len(boids)),
		zap.Int("fields", len(fields)),
		zap.String("backend", s.backend.Name()),
		zap.Int64("seed", s.cfg.Seed),
	)
	return nil
}

// Tick advances every boid by dt using only the previously published state.
// A rejected dt leaves the published frame untouched.
func (s *Simulation) Tick(dt float32) error {
	s.tickMu.Lock()
	defer s.tickMu.Unlock()

	if err := s.ready(); err != nil {
		return err
	}
	if !finite(dt) || dt < 0 {
		err := &TickError{Frame: s.frame + 1, Dt: dt}
		s.logger.Warn("tick rejected", zap.Int("frame", err.Frame), zap.Float32("dt", dt))
		return err
	}

	// front is only ever written under mu.Lock, so reading it here while
	// View callers hold read locks is safe. back is private to this goroutine.
	s.backend.Step(s.back, s.front, s.fields, s.cfg.Bounds, s.cfg.Params, dt)

	s.mu.Lock()
	s.front, s.back = s.back, s.front
	s.frame++
	s.time += float64(dt)
	s.mu.Unlock()

	if len(s.observers) > 0 {
		f := s.published()
		for _, o := range s.observers {
			o.OnFrame(f)
		}
	}
	return nil
}

// Run ticks frames times with a fixed dt, checking ctx between ticks.
func (s *Simulation) Run(ctx context.Context, frames int, dt float32) error {
	for i := 0; i < frames; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := s.Tick(dt); err != nil {
			return err
		}
	}
	return nil
}

// Snapshot returns a copy of the most recently published frame.
func (s *Simulation) Snapshot() (Frame, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.readyLocked(); err != nil {
		return Frame{}, err
	}
	return Frame{Index: s.frame, Time: s.time, Boids: s.front}.Clone(), nil
}

// View calls fn with the published frame without copying. fn must not
// retain or modify the slice.
func (s *Simulation) View(fn func(Frame)) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.readyLocked(); err != nil {
		return err
	}
	fn(Frame{Index: s.frame, Time: s.time, Boids: s.front})
	return nil
}

// Fields returns a copy of the field registry.
func (s *Simulation) Fields() []Field {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// Destroy releases every buffer. The simulation cannot be restarted.
func (s *Simulation) Destroy() {
	s.tickMu.Lock()
	defer s.tickMu.Unlock()

	s.mu.Lock()
	s.front, s.back, s.fields = nil, nil, nil
	s.state = Destroyed
	s.mu.Unlock()

	s.logger.Debug("simulation destroyed", zap.Int("frames", s.frame))
}

func (s *Simulation) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Simulation) Config() Config   { return s.cfg }
func (s *Simulation) Backend() Backend { return s.backend }

func (s *Simulation) ready() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.readyLocked()
}

func (s *Simulation) readyLocked() error {
	switch s.state {
	case Uninitialized:
		return ErrNotRunning
	case Destroyed:
		return ErrDestroyed
	}
	return nil
}

func (s *Simulation) published() Frame {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Frame{Index: s.frame, Time: s.time, Boids: s.front}
}
