package blend

import "gonum.org/v1/gonum/spatial/r3"

// Source is a spatially distributed participant in the blend.
//
// Registered sources must remain valid for as long as they stay registered;
// the engine does not re-check entries on the per-frame path. A source that
// has been torn down but not unregistered is a contract violation by the
// caller.
type Source interface {
	// Position returns the source's current world position.
	Position() r3.Vec

	// BlendScalar returns the runtime multiplier applied on top of the
	// distance bias (e.g. light intensity). Must be > 0; zero or negative
	// scalars produce an unspecified weight distribution.
	BlendScalar() float64
}

// Target is the entity the distance calculations are based on.
type Target interface {
	Position() r3.Vec
}

// ViewPointer is an optional Target capability for viewer-like targets.
// When implemented, distances are measured from the view point rather than
// the target's own position.
type ViewPointer interface {
	ViewPoint() r3.Vec
}

// Liveness is an optional Target capability for weakly held targets.
// A target reporting Alive() == false is treated the same as no target.
type Liveness interface {
	Alive() bool
}

// WeightSink is an optional Source capability. After each recomputation the
// engine hands implementers a copy of their own weight record.
type WeightSink interface {
	ApplyBlendWeight(Weight)
}
