package market

import (
	"math"
	"sort"
	"time"
)

// Table is a wide time×series value table. Cells hold odds in [0,1];
// math.NaN marks a missing observation. Rows are sorted by timestamp.
type Table struct {
	Timestamps []time.Time
	Series     []string
	Values     [][]float64 // row-major, len(Values) == len(Timestamps), len(Values[i]) == len(Series)
}

func (t *Table) Rows() int { return len(t.Timestamps) }

// Truncate keeps only the first max series, in input order.
func (t *Table) Truncate(max int) *Table {
	if max >= len(t.Series) {
		return t
	}
	out := &Table{
		Timestamps: t.Timestamps,
		Series:     t.Series[:max],
		Values:     make([][]float64, len(t.Values)),
	}
	for i, row := range t.Values {
		out.Values[i] = row[:max]
	}
	return out
}

// Point is one long-format observation, as produced by the API client.
type Point struct {
	Timestamp time.Time
	Candidate string
	Odds      float64
}

// Pivot converts long-format points to a wide table: one column per
// candidate in first-seen order, one row per distinct timestamp sorted
// ascending. Duplicate (timestamp, candidate) cells keep the last value.
// Gaps are forward-filled, then back-filled, so only series with no data
// at all keep NaN cells.
func Pivot(points []Point) *Table {
	if len(points) == 0 {
		return &Table{}
	}

	var series []string
	colIdx := map[string]int{}
	tsSet := map[time.Time]struct{}{}
	for _, p := range points {
		if _, ok := colIdx[p.Candidate]; !ok {
			colIdx[p.Candidate] = len(series)
			series = append(series, p.Candidate)
		}
		tsSet[p.Timestamp] = struct{}{}
	}

	timestamps := make([]time.Time, 0, len(tsSet))
	for ts := range tsSet {
		timestamps = append(timestamps, ts)
	}
	sort.Slice(timestamps, func(i, j int) bool { return timestamps[i].Before(timestamps[j]) })

	rowIdx := make(map[time.Time]int, len(timestamps))
	for i, ts := range timestamps {
		rowIdx[ts] = i
	}

	values := make([][]float64, len(timestamps))
	for i := range values {
		row := make([]float64, len(series))
		for j := range row {
			row[j] = math.NaN()
		}
		values[i] = row
	}
	for _, p := range points {
		values[rowIdx[p.Timestamp]][colIdx[p.Candidate]] = p.Odds
	}

	t := &Table{Timestamps: timestamps, Series: series, Values: values}
	t.fillGaps()
	return t
}

// fillGaps runs a per-column forward fill followed by a back fill.
func (t *Table) fillGaps() {
	for col := range t.Series {
		last := math.NaN()
		for row := 0; row < len(t.Values); row++ {
			if math.IsNaN(t.Values[row][col]) {
				t.Values[row][col] = last
			} else {
				last = t.Values[row][col]
			}
		}
		next := math.NaN()
		for row := len(t.Values) - 1; row >= 0; row-- {
			if math.IsNaN(t.Values[row][col]) {
				t.Values[row][col] = next
			} else {
				next = t.Values[row][col]
			}
		}
	}
}
