package blend

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

// stubSource is a test source that counts position reads.
type stubSource struct {
	pos      r3.Vec
	scalar   float64
	posCalls int
}

func (s *stubSource) Position() r3.Vec {
	s.posCalls++
	return s.pos
}

func (s *stubSource) BlendScalar() float64 { return s.scalar }

// sinkSource additionally records applied weight copies.
type sinkSource struct {
	stubSource
	applied []Weight
}

func (s *sinkSource) ApplyBlendWeight(w Weight) {
	s.applied = append(s.applied, w)
}

// stubTarget is a plain spatial target.
type stubTarget struct {
	pos r3.Vec
}

func (t *stubTarget) Position() r3.Vec { return t.pos }

// viewTarget is a camera-like target whose view point differs from its
// position.
type viewTarget struct {
	pos  r3.Vec
	view r3.Vec
}

func (t *viewTarget) Position() r3.Vec  { return t.pos }
func (t *viewTarget) ViewPoint() r3.Vec { return t.view }

// weakTarget reports its own liveness.
type weakTarget struct {
	pos   r3.Vec
	alive bool
}

func (t *weakTarget) Position() r3.Vec { return t.pos }
func (t *weakTarget) Alive() bool      { return t.alive }

func newTestEngine() *Engine {
	return New(Options{})
}

func TestRegisterIdempotent(t *testing.T) {
	e := newTestEngine()
	a := &stubSource{scalar: 1}
	b := &stubSource{scalar: 1}

	e.Register(a)
	e.Register(b)
	e.Register(a) // duplicate, must keep first-seen order

	if e.SourceCount() != 2 {
		t.Fatalf("expected 2 sources, got %d", e.SourceCount())
	}

	e.SetTarget(&stubTarget{pos: r3.Vec{X: 100}})
	a.pos = r3.Vec{X: 10}
	b.pos = r3.Vec{X: 30}

	weights, valid := e.Weights(1, false)
	if !valid {
		t.Fatal("expected valid weights")
	}
	if weights[0].Source != Source(a) || weights[1].Source != Source(b) {
		t.Error("output ordering should match registration order")
	}
}

func TestUnregister(t *testing.T) {
	e := newTestEngine()
	a := &stubSource{scalar: 1}
	b := &stubSource{scalar: 1}
	c := &stubSource{scalar: 1}

	e.Register(a)
	e.Register(b)
	e.Register(c)
	e.Unregister(b)
	e.Unregister(b) // no-op

	if e.SourceCount() != 2 {
		t.Fatalf("expected 2 sources, got %d", e.SourceCount())
	}

	e.SetTarget(&stubTarget{pos: r3.Vec{X: 100}})
	weights, _ := e.Weights(1, false)
	if weights[0].Source != Source(a) || weights[1].Source != Source(c) {
		t.Error("remaining sources should keep relative order")
	}
}

func TestCacheGating(t *testing.T) {
	e := newTestEngine()
	src := &stubSource{pos: r3.Vec{X: 10}, scalar: 1}
	e.Register(src)
	e.SetTarget(&stubTarget{})

	e.Weights(5, false)
	firstCalls := src.posCalls
	if firstCalls == 0 {
		t.Fatal("first query should sample source positions")
	}

	// Same frame: cached result, no further sampling.
	e.Weights(5, false)
	if src.posCalls != firstCalls {
		t.Errorf("second query in same frame sampled positions again (%d -> %d)", firstCalls, src.posCalls)
	}

	// New frame: recompute.
	e.Weights(6, false)
	if src.posCalls <= firstCalls {
		t.Error("query in a new frame should recompute")
	}
}

func TestTargetChangeInvalidation(t *testing.T) {
	e := newTestEngine()
	src := &stubSource{pos: r3.Vec{X: 10}, scalar: 1}
	e.Register(src)
	e.SetTarget(&stubTarget{})

	e.Weights(7, false)
	calls := src.posCalls

	// Same frame, new target: stale cache must not be returned.
	e.SetTarget(&stubTarget{pos: r3.Vec{X: 100}})
	weights, valid := e.Weights(7, false)
	if !valid {
		t.Fatal("expected valid weights after target change")
	}
	if src.posCalls == calls {
		t.Error("target change should force a recompute in the same frame")
	}
	if weights[0].Dist != 90 {
		t.Errorf("expected distance to the new target (90), got %f", weights[0].Dist)
	}
}

func TestSetTargetSameTargetKeepsCache(t *testing.T) {
	e := newTestEngine()
	src := &stubSource{pos: r3.Vec{X: 10}, scalar: 1}
	e.Register(src)

	target := &stubTarget{}
	e.SetTarget(target)
	e.Weights(3, false)
	calls := src.posCalls

	e.SetTarget(target)
	e.Weights(3, false)
	if src.posCalls != calls {
		t.Error("re-assigning the same target should not invalidate the cache")
	}
}

func TestFallbackRetention(t *testing.T) {
	e := newTestEngine()
	a := &stubSource{pos: r3.Vec{X: 10}, scalar: 1}
	b := &stubSource{pos: r3.Vec{X: 30}, scalar: 1}
	e.Register(a)
	e.Register(b)
	e.SetTarget(&stubTarget{})

	weights, valid := e.Weights(1, false)
	if !valid || len(weights) != 2 {
		t.Fatal("expected a valid two-source result")
	}
	wantFirst := weights[0].Blend

	// Empty computation: invalid live result, fallback untouched.
	e.Unregister(a)
	e.Unregister(b)
	weights, valid = e.Weights(2, false)
	if valid || len(weights) != 0 {
		t.Error("query with no sources should be invalid and empty")
	}

	last, valid := e.LastValid()
	if !valid || len(last) != 2 {
		t.Fatal("last valid weights should retain the prior non-empty snapshot")
	}
	if last[0].Blend != wantFirst {
		t.Errorf("last valid snapshot changed: got %f, want %f", last[0].Blend, wantFirst)
	}
}

func TestLastValidNeverComputes(t *testing.T) {
	e := newTestEngine()
	src := &stubSource{pos: r3.Vec{X: 10}, scalar: 1}
	e.Register(src)
	e.SetTarget(&stubTarget{})

	if _, valid := e.LastValid(); valid {
		t.Error("last valid should be invalid before any computation")
	}
	if src.posCalls != 0 {
		t.Error("LastValid must not trigger a recomputation")
	}
}

func TestNilTarget(t *testing.T) {
	e := newTestEngine()
	src := &stubSource{pos: r3.Vec{X: 10}, scalar: 1}
	e.Register(src)

	weights, valid := e.Weights(1, false)
	if valid || len(weights) != 0 {
		t.Error("query without a target should be invalid")
	}
	if src.posCalls != 0 {
		t.Error("query without a target should not sample sources")
	}

	// Clearing an assigned target must also degrade to invalid.
	e.SetTarget(&stubTarget{})
	e.Weights(1, false)
	e.SetTarget(nil)
	if _, valid := e.Weights(2, false); valid {
		t.Error("cleared target should make queries invalid")
	}
}

func TestDeadTarget(t *testing.T) {
	e := newTestEngine()
	src := &stubSource{pos: r3.Vec{X: 10}, scalar: 1}
	e.Register(src)

	target := &weakTarget{alive: true}
	e.SetTarget(target)
	if _, valid := e.Weights(1, false); !valid {
		t.Fatal("live weak target should produce valid weights")
	}

	calls := src.posCalls
	target.alive = false
	if _, valid := e.Weights(2, false); valid {
		t.Error("dead target should behave like an absent target")
	}
	if src.posCalls != calls {
		t.Error("dead target should not trigger a recompute")
	}
}

func TestViewPointTarget(t *testing.T) {
	e := newTestEngine()
	src := &stubSource{scalar: 1}
	e.Register(src)

	// Position would give distance 100; the view point must win.
	e.SetTarget(&viewTarget{
		pos:  r3.Vec{X: 100},
		view: r3.Vec{X: 25},
	})

	weights, valid := e.Weights(1, false)
	if !valid {
		t.Fatal("expected valid weights")
	}
	if weights[0].Dist != 25 {
		t.Errorf("expected distance from view point (25), got %f", weights[0].Dist)
	}
}

func TestWeightWriteBack(t *testing.T) {
	e := newTestEngine()
	a := &sinkSource{stubSource: stubSource{pos: r3.Vec{X: 10}, scalar: 1}}
	b := &stubSource{pos: r3.Vec{X: 30}, scalar: 1}
	e.Register(a)
	e.Register(b)
	e.SetTarget(&stubTarget{})

	weights, _ := e.Weights(1, false)
	if len(a.applied) != 1 {
		t.Fatalf("expected one applied record, got %d", len(a.applied))
	}
	if a.applied[0] != weights[0] {
		t.Error("applied record should be a copy of the source's own record")
	}
}
