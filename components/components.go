// Package components defines ECS components for the emitter world.
package components

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/worldblend/blend"
)

// Position represents an entity's world position.
type Position struct {
	X, Y, Z float64
}

// Vec returns the position as a vector.
func (p Position) Vec() r3.Vec {
	return r3.Vec{X: p.X, Y: p.Y, Z: p.Z}
}

// Velocity represents an entity's velocity in world units per tick.
type Velocity struct {
	X, Y, Z float64
}

// Emitter marks an entity as a blend source.
type Emitter struct {
	// ID is a stable label for telemetry output.
	ID uint32

	// Scalar is the runtime blend multiplier. Must stay > 0.
	Scalar float64

	// Weight is the record last written back by the blend engine.
	Weight blend.Weight
}
