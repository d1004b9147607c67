// Package telemetry collects per-frame blend statistics and writes them to
// CSV for offline analysis.
package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/worldblend/blend"
)

// FrameStats summarizes one frame's weight distribution.
type FrameStats struct {
	Frame   uint64 `csv:"frame"`
	Sources int    `csv:"sources"`

	// Dominant is the largest weight in the set.
	Dominant float64 `csv:"dominant"`

	// Entropy is the Shannon entropy of the distribution in nats.
	// 0 = one source holds everything, ln(N) = even split.
	Entropy float64 `csv:"entropy"`

	// Effective is the inverse participation ratio 1/sum(w^2): how many
	// sources meaningfully contribute.
	Effective float64 `csv:"effective"`

	// MeanDist is the average source distance this frame.
	MeanDist float64 `csv:"mean_dist"`
}

// ComputeFrameStats summarizes a weight set. Returns zero stats for an
// empty set.
func ComputeFrameStats(frame uint64, weights []blend.Weight) FrameStats {
	fs := FrameStats{Frame: frame, Sources: len(weights)}
	if len(weights) == 0 {
		return fs
	}

	w := make([]float64, len(weights))
	dists := make([]float64, len(weights))
	for i, bw := range weights {
		w[i] = bw.Blend
		dists[i] = bw.Dist
	}

	fs.Dominant = floats.Max(w)
	fs.Entropy = stat.Entropy(w)
	fs.Effective = 1 / floats.Dot(w, w)
	fs.MeanDist = stat.Mean(dists, nil)
	return fs
}

// WindowStats holds aggregated statistics for a tick window.
type WindowStats struct {
	WindowEnd uint64 `csv:"window_end"`
	Frames    int    `csv:"frames"`

	DominantMean float64 `csv:"dominant_mean"`
	DominantP10  float64 `csv:"dominant_p10"`
	DominantP50  float64 `csv:"dominant_p50"`
	DominantP90  float64 `csv:"dominant_p90"`

	EffectiveMean float64 `csv:"effective_mean"`
	EntropyMean   float64 `csv:"entropy_mean"`
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Uint64("window_end", s.WindowEnd),
		slog.Int("frames", s.Frames),
		slog.Float64("dominant_mean", s.DominantMean),
		slog.Float64("dominant_p10", s.DominantP10),
		slog.Float64("dominant_p50", s.DominantP50),
		slog.Float64("dominant_p90", s.DominantP90),
		slog.Float64("effective_mean", s.EffectiveMean),
		slog.Float64("entropy_mean", s.EntropyMean),
	)
}

// Window accumulates frame stats and emits aggregates every length frames.
type Window struct {
	length int

	dominant  []float64
	effective []float64
	entropy   []float64
	end       uint64
}

// NewWindow creates a window of the given length. Lengths below 1 collapse
// to per-frame windows.
func NewWindow(length int) *Window {
	if length < 1 {
		length = 1
	}
	return &Window{length: length}
}

// Add records one frame. When the window fills it returns the aggregate and
// resets for the next window.
func (w *Window) Add(fs FrameStats) (WindowStats, bool) {
	w.dominant = append(w.dominant, fs.Dominant)
	w.effective = append(w.effective, fs.Effective)
	w.entropy = append(w.entropy, fs.Entropy)
	w.end = fs.Frame

	if len(w.dominant) < w.length {
		return WindowStats{}, false
	}

	sorted := make([]float64, len(w.dominant))
	copy(sorted, w.dominant)
	sort.Float64s(sorted)

	out := WindowStats{
		WindowEnd:     w.end,
		Frames:        len(w.dominant),
		DominantMean:  stat.Mean(w.dominant, nil),
		DominantP10:   stat.Quantile(0.10, stat.LinInterp, sorted, nil),
		DominantP50:   stat.Quantile(0.50, stat.LinInterp, sorted, nil),
		DominantP90:   stat.Quantile(0.90, stat.LinInterp, sorted, nil),
		EffectiveMean: stat.Mean(w.effective, nil),
		EntropyMean:   stat.Mean(w.entropy, nil),
	}

	w.dominant = w.dominant[:0]
	w.effective = w.effective[:0]
	w.entropy = w.entropy[:0]
	return out, true
}
