package flock

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrConfiguration indicates construction parameters that cannot produce a valid simulation.
	ErrConfiguration = errors.New("flock: invalid configuration")

	// ErrInvalidInput indicates a tick was rejected (negative or non-finite dt).
	ErrInvalidInput = errors.New("flock: invalid tick input")

	// ErrNotRunning indicates a tick or snapshot was requested before Start.
	ErrNotRunning = errors.New("flock: simulation not running")

	// ErrAlreadyStarted indicates Start was called twice.
	ErrAlreadyStarted = errors.New("flock: simulation already started")

	// ErrDestroyed indicates the simulation buffers were released.
	ErrDestroyed = errors.New("flock: simulation destroyed")
)

// ConfigError reports which construction input was rejected.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("flock: invalid %s: %s", e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrConfiguration
}

// TickError wraps a rejected tick with the frame it was aimed at.
type TickError struct {
	Frame int
	Dt    float32
}

func (e *TickError) Error() string {
	return fmt.Sprintf("flock: frame %d: dt must be finite and non-negative, got %v", e.Frame, e.Dt)
}

func (e *TickError) Unwrap() error {
	return ErrInvalidInput
}
