// Package blend computes a normalized set of blend weights for spatially
// distributed sources relative to a single moving target, so downstream
// effects can be cross-faded by relative distance.
//
// The engine recomputes at most once per frame: the first query of a frame
// pays for the computation, later queries in the same frame return the
// cached result. All methods must be called from one goroutine per engine;
// concurrent use requires external synchronization.
package blend

import "gonum.org/v1/gonum/spatial/r3"

// frameNever marks the cache as never computed, forcing the next query to
// recompute regardless of the frame counter.
const frameNever = ^uint64(0)

// DefaultMinDistance is the floor applied to per-source distances when
// Options.MinDistance is zero. It keeps a source coincident with the target
// from collapsing the distribution to infinities.
const DefaultMinDistance = 1e-4

// Options configures an Engine.
type Options struct {
	// MinDistance is the smallest distance a source can report.
	// 0 = DefaultMinDistance.
	MinDistance float64
}

// Engine tracks registered sources and computes their blend weights against
// the current target, memoized per frame.
type Engine struct {
	sources []Source
	target  Target

	minDist float64

	// Frame-gated cache. lastUpdateFrame is the frame stamp of the weights
	// slice; lastValid holds the most recent non-empty result and is only
	// ever overwritten by the next non-empty one.
	lastUpdateFrame uint64
	weights         []Weight
	lastValid       []Weight

	// Scratch buffer for the normalization pass, reused across frames.
	scratch []float64
}

// New creates an engine with no sources and no target.
func New(opts Options) *Engine {
	minDist := opts.MinDistance
	if minDist <= 0 {
		minDist = DefaultMinDistance
	}
	return &Engine{
		minDist:         minDist,
		lastUpdateFrame: frameNever,
	}
}

// Register adds a source. Idempotent: a source already registered keeps its
// original position in the output ordering.
func (e *Engine) Register(s Source) {
	for _, existing := range e.sources {
		if existing == s {
			return
		}
	}
	e.sources = append(e.sources, s)
}

// Unregister removes a source if present. Later sources keep their relative
// order.
func (e *Engine) Unregister(s Source) {
	for i, existing := range e.sources {
		if existing == s {
			e.sources = append(e.sources[:i], e.sources[i+1:]...)
			return
		}
	}
}

// SourceCount returns the number of registered sources.
func (e *Engine) SourceCount() int {
	return len(e.sources)
}

// SetTarget assigns the target the distance calculations are based on.
// Passing a ViewPointer (e.g. a camera) measures from its view point
// instead of its position. Changing the target invalidates the cached
// weights so the next query recomputes even within the same frame.
// A nil target is allowed and makes queries report invalid.
func (e *Engine) SetTarget(t Target) {
	if t != e.target {
		e.weights = e.weights[:0]
		e.lastUpdateFrame = frameNever
	}
	e.target = t
}

// Target returns the current target, which may be nil.
func (e *Engine) Target() Target {
	return e.target
}

// shouldUpdate reports whether the cache is stale for the given frame.
func (e *Engine) shouldUpdate(frame uint64) bool {
	return frame != e.lastUpdateFrame
}

// targetAlive reports whether the current target can be resolved.
func (e *Engine) targetAlive() bool {
	if e.target == nil {
		return false
	}
	if lv, ok := e.target.(Liveness); ok && !lv.Alive() {
		return false
	}
	return true
}

// targetPoint resolves the position distances are measured from.
func (e *Engine) targetPoint() r3.Vec {
	if vp, ok := e.target.(ViewPointer); ok {
		return vp.ViewPoint()
	}
	return e.target.Position()
}

// Weights returns the blend weights for the given frame, recomputing them
// if this frame has not been computed yet. frame is the host's monotonic
// frame counter; planar measures distance in the XY plane only, ignoring Z.
//
// The returned slice is owned by the engine and valid until the next
// recomputation. valid is false when there is no resolvable target or no
// registered sources; callers wanting a stand-in should fall back to
// LastValid.
func (e *Engine) Weights(frame uint64, planar bool) (weights []Weight, valid bool) {
	if !e.targetAlive() {
		return e.weights, false
	}

	if e.shouldUpdate(frame) {
		e.lastUpdateFrame = frame
		e.recompute(planar)

		if len(e.weights) > 0 {
			e.lastValid = append(e.lastValid[:0], e.weights...)
		}
	}

	return e.weights, len(e.weights) > 0
}

// LastValid returns the most recent non-empty result. It never triggers a
// recomputation; it is the fallback for frames where Weights reports
// invalid. valid is false until the first non-empty computation.
func (e *Engine) LastValid() (weights []Weight, valid bool) {
	return e.lastValid, len(e.lastValid) > 0
}
