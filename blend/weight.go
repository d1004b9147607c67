package blend

// Weight is the per-source computed snapshot for one frame.
type Weight struct {
	// Source this record was computed for.
	Source Source

	// Blend is the final computed result; the Blend values of every record
	// in the set total 1.0.
	Blend float64

	// DistanceBias is the ratio of average distance to this source's own
	// distance. Higher means closer to the target; exactly 1.0 when the
	// source sits at the average distance.
	DistanceBias float64

	// Scalar is the runtime multiplier reported by the source when the
	// record was computed.
	Scalar float64

	// Dist is how far the source was from the target.
	Dist float64
}
