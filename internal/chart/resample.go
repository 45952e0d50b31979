package chart

import (
	"math"
	"time"

	"github.com/goldytalks/novig-kalshi-charts/internal/market"
)

// Frame maps series name to an interpolated value for one output frame.
type Frame map[string]float64

// lerp performs linear interpolation between a and b
func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Resample stretches an irregular table onto frameCount evenly spaced
// frames. Fractional row indices are spread across [0, rows-1] inclusive and
// each frame interpolates linearly between its bracketing rows. A missing
// cell reads as 0 for interpolation purposes. Tables with fewer than two
// rows cannot animate and yield empty slices.
func Resample(t *market.Table, frameCount int) ([]Frame, []time.Time) {
	rows := t.Rows()
	if rows < 2 || frameCount < 1 {
		return nil, nil
	}

	frames := make([]Frame, 0, frameCount)
	timestamps := make([]time.Time, 0, frameCount)

	for i := 0; i < frameCount; i++ {
		idx := 0.0
		if frameCount > 1 {
			idx = float64(i) * float64(rows-1) / float64(frameCount-1)
		}
		lower := int(math.Floor(idx))
		upper := int(math.Ceil(idx))
		if upper > rows-1 {
			upper = rows - 1
		}
		frac := idx - float64(lower)

		frame := make(Frame, len(t.Series))
		for col, name := range t.Series {
			lv := t.Values[lower][col]
			uv := t.Values[upper][col]
			if math.IsNaN(lv) {
				lv = 0
			}
			if math.IsNaN(uv) {
				uv = 0
			}
			frame[name] = lerp(lv, uv, frac)
		}

		ts := t.Timestamps[lower]
		if lower != upper {
			span := t.Timestamps[upper].Sub(t.Timestamps[lower])
			ts = ts.Add(time.Duration(float64(span) * frac))
		}

		frames = append(frames, frame)
		timestamps = append(timestamps, ts)
	}

	return frames, timestamps
}
