package chart

import (
	"math"
	"testing"
)

func TestRankSmootherInitialOrder(t *testing.T) {
	s := NewRankSmoother([]string{"a", "b", "c"})

	// A frame that confirms the seeded ranking moves nothing far.
	positions := s.Advance(Frame{"a": 0.9, "b": 0.5, "c": 0.1})

	for i, name := range []string{"a", "b", "c"} {
		if math.Abs(positions[name]-float64(i)) > 1e-9 {
			t.Errorf("%s: expected slot %d, got %f", name, i, positions[name])
		}
	}
}

func TestRankSmootherConvergence(t *testing.T) {
	s := NewRankSmoother([]string{"a", "b", "c"})

	// Fixed target: full reversal of the seeded order. 0.85^60 over a
	// 2-slot distance is well under 1e-3.
	frame := Frame{"a": 0.1, "b": 0.5, "c": 0.9}
	var positions map[string]float64
	for i := 0; i < 60; i++ {
		positions = s.Advance(frame)
	}

	targets := map[string]float64{"a": 2, "b": 1, "c": 0}
	for name, target := range targets {
		if diff := math.Abs(positions[name] - target); diff > 1e-3 {
			t.Errorf("%s: after 60 frames expected within 1e-3 of %g, off by %g", name, target, diff)
		}
	}
}

func TestRankSmootherNeverOvershoots(t *testing.T) {
	order := []string{"a", "b", "c", "d"}
	s := NewRankSmoother(order)
	frame := Frame{"a": 0.0, "b": 0.1, "c": 0.2, "d": 0.3}

	for i := 0; i < 100; i++ {
		positions := s.Advance(frame)
		for name, slot := range positions {
			if slot < 0 || slot > float64(len(order)-1) {
				t.Fatalf("frame %d: %s slot %f outside [0, %d]", i, name, slot, len(order)-1)
			}
		}
	}
}

func TestRankSmootherStableTies(t *testing.T) {
	s := NewRankSmoother([]string{"a", "b", "c"})

	// All values equal: display order wins, so nothing moves.
	for i := 0; i < 10; i++ {
		positions := s.Advance(Frame{"a": 0.5, "b": 0.5, "c": 0.5})
		for j, name := range []string{"a", "b", "c"} {
			if math.Abs(positions[name]-float64(j)) > 1e-9 {
				t.Errorf("tie broke display order: %s at %f", name, positions[name])
			}
		}
	}
}

func TestRankSmootherSnapshotIsolated(t *testing.T) {
	s := NewRankSmoother([]string{"a", "b"})
	first := s.Advance(Frame{"a": 0.2, "b": 0.8})
	first["a"] = 99 // caller mutation must not leak into state

	second := s.Advance(Frame{"a": 0.2, "b": 0.8})
	if second["a"] > 1 {
		t.Errorf("smoother state leaked to caller snapshot: %f", second["a"])
	}
}
