package engine

import (
	"bytes"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goldytalks/novig-kalshi-charts/internal/config"
	"github.com/goldytalks/novig-kalshi-charts/internal/market"
	"github.com/goldytalks/novig-kalshi-charts/internal/video"
)

func testConfig() *config.Config {
	return &config.Config{
		Series:        "KXTEST",
		Title:         "WHO WINS?",
		FPS:           10,
		Duration:      1.0,
		Format:        "square",
		MaxCandidates: 8,
		ShowGridlines: true,
	}
}

func testTable(t *testing.T) *market.Table {
	t.Helper()
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	var points []market.Point
	for i := 0; i < 5; i++ {
		ts := base.Add(time.Duration(i) * time.Hour)
		points = append(points,
			market.Point{Timestamp: ts, Candidate: "Alice", Odds: 0.2 + float64(i)*0.1},
			market.Point{Timestamp: ts, Candidate: "Bob", Odds: 0.6 - float64(i)*0.1},
		)
	}
	return market.Pivot(points)
}

func newProject(t *testing.T, cfg *config.Config, table *market.Table) *ChartProject {
	t.Helper()
	return NewChartProject(cfg, table, video.NewFFmpegEncoder())
}

func TestPrepareValidatesConfig(t *testing.T) {
	cfg := testConfig()
	cfg.FPS = -1

	_, err := newProject(t, cfg, testTable(t)).prepare()
	assert.ErrorIs(t, err, config.ErrInvalidConfiguration)
}

func TestPrepareInsufficientRows(t *testing.T) {
	table := market.Pivot([]market.Point{
		{Timestamp: time.Now(), Candidate: "Alice", Odds: 0.5},
	})

	_, err := newProject(t, testConfig(), table).prepare()
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestPrepareNoSeries(t *testing.T) {
	_, err := newProject(t, testConfig(), market.Pivot(nil)).prepare()
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestPrepareFrameBudget(t *testing.T) {
	r, err := newProject(t, testConfig(), testTable(t)).prepare()
	require.NoError(t, err)
	assert.Len(t, r.frames, 10, "round(fps*duration) frames")
	assert.Len(t, r.timestamps, 10)
}

func TestPreviewIndex(t *testing.T) {
	assert.Equal(t, 192, PreviewIndex(240))
	assert.Equal(t, 0, PreviewIndex(1))
	assert.Equal(t, 3, PreviewIndex(4))
	assert.Equal(t, 0, PreviewIndex(0))
}

func TestPreviewProducesPNG(t *testing.T) {
	p := newProject(t, testConfig(), testTable(t))

	data, err := p.Preview(-1)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err, "preview must be valid PNG")
	assert.Equal(t, 1080, img.Bounds().Dx())
	assert.Equal(t, 1080, img.Bounds().Dy())
}

func TestPreviewIdempotent(t *testing.T) {
	p := newProject(t, testConfig(), testTable(t))

	first, err := p.Preview(6)
	require.NoError(t, err)
	second, err := p.Preview(6)
	require.NoError(t, err)

	assert.True(t, bytes.Equal(first, second), "preview must be deterministic")
}

func TestPreviewTruncatesCandidates(t *testing.T) {
	cfg := testConfig()
	cfg.MaxCandidates = 1

	r, err := newProject(t, cfg, testTable(t)).prepare()
	require.NoError(t, err)
	assert.Equal(t, []string{"Alice"}, r.params.Candidates)
}
