package chart

import "sort"

// smoothingFactor is the per-frame blend toward the target slot. Applied
// once per frame it gives an exponential approach: after 30 frames a bar is
// within (1-0.15)^30 ≈ 0.008 slots of its target.
const smoothingFactor = 0.15

// RankSmoother carries the only cross-frame state in the pipeline: each
// series' fractional vertical slot. One instance per render; instances must
// never be shared between concurrent renders.
type RankSmoother struct {
	order []string
	slots map[string]float64
}

// NewRankSmoother seeds every series with its index in the display order.
func NewRankSmoother(displayOrder []string) *RankSmoother {
	slots := make(map[string]float64, len(displayOrder))
	for i, name := range displayOrder {
		slots[name] = float64(i)
	}
	return &RankSmoother{order: append([]string(nil), displayOrder...), slots: slots}
}

// Advance ranks the frame's values descending (ties keep display order) and
// eases every stored slot toward its target rank. The returned map is a
// snapshot the caller may keep.
func (s *RankSmoother) Advance(frame Frame) map[string]float64 {
	type ranked struct {
		name  string
		value float64
	}
	items := make([]ranked, len(s.order))
	for i, name := range s.order {
		items[i] = ranked{name: name, value: frame[name]}
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].value > items[j].value })

	next := make(map[string]float64, len(items))
	for target, it := range items {
		next[it.name] = lerp(s.slots[it.name], float64(target), smoothingFactor)
	}
	s.slots = next

	out := make(map[string]float64, len(next))
	for k, v := range next {
		out[k] = v
	}
	return out
}
