package flock

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Field is a static point source. Positive force pulls boids toward
// Position, negative force pushes them away.
type Field struct {
	Position mgl32.Vec3
	Force    float32
}

// FieldSource is anything in the host scene that can describe a field at start time.
type FieldSource interface {
	FieldPosition() mgl32.Vec3
	FieldForce() float32
}

// FieldSpec is the plain-value FieldSource.
type FieldSpec struct {
	Position mgl32.Vec3
	Force    float32
}

func (f FieldSpec) FieldPosition() mgl32.Vec3 { return f.Position }
func (f FieldSpec) FieldForce() float32       { return f.Force }

// BuildFields snapshots the sources into an ordered, immutable registry.
func BuildFields(sources []FieldSource) ([]Field, error) {
	fields := make([]Field, 0, len(sources))
	for i, src := range sources {
		if src == nil {
			return nil, &ConfigError{Field: fmt.Sprintf("fields[%d]", i), Reason: "nil source"}
		}
		f := Field{Position: src.FieldPosition(), Force: src.FieldForce()}
		if !finiteVec(f.Position) {
			return nil, &ConfigError{Field: fmt.Sprintf("fields[%d].position", i), Reason: "must be finite"}
		}
		if !finite(f.Force) {
			return nil, &ConfigError{Field: fmt.Sprintf("fields[%d].force", i), Reason: "must be finite"}
		}
		fields = append(fields, f)
	}
	return fields, nil
}
