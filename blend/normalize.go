package blend

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
)

// recompute rebuilds e.weights from the registered sources in registration
// order. Caller has already stamped the frame and verified the target.
func (e *Engine) recompute(planar bool) {
	e.weights = e.weights[:0]
	if len(e.sources) == 0 {
		return
	}

	targetPos := e.targetPoint()

	// Pass 1: sample distance and scalar for every source.
	var totalDist float64
	for _, src := range e.sources {
		diff := r3.Sub(targetPos, src.Position())
		if planar {
			diff.Z = 0
		}
		dist := r3.Norm(diff)
		if dist < e.minDist {
			dist = e.minDist
		}
		totalDist += dist

		e.weights = append(e.weights, Weight{
			Source:       src,
			DistanceBias: 1,
			Scalar:       src.BlendScalar(),
			Dist:         dist,
		})
	}

	// Pass 2: bias each source by its relation to the average distance and
	// apply the runtime scalar. These are precursor weights, prior to
	// scaling against the rest of the set.
	avgDist := totalDist / float64(len(e.weights))
	e.scratch = e.scratch[:0]
	for i := range e.weights {
		w := &e.weights[i]
		w.DistanceBias = avgDist / w.Dist
		e.scratch = append(e.scratch, w.DistanceBias*w.Scalar)
	}

	// Pass 3: scale relative to the lowest entry, then normalize so the set
	// totals 1.0. True division, not reciprocal multiplication: a lone
	// source must come out as exactly 1.0.
	lowest := floats.Min(e.scratch)
	for i := range e.scratch {
		e.scratch[i] /= lowest
	}
	sum := floats.Sum(e.scratch)

	for i := range e.weights {
		e.weights[i].Blend = e.scratch[i] / sum
		if sink, ok := e.weights[i].Source.(WeightSink); ok {
			sink.ApplyBlendWeight(e.weights[i])
		}
	}
}
