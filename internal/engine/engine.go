package engine

import (
	"context"
	"fmt"
	"image"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/goldytalks/novig-kalshi-charts/internal/assets"
	"github.com/goldytalks/novig-kalshi-charts/internal/chart"
	"github.com/goldytalks/novig-kalshi-charts/internal/config"
	"github.com/goldytalks/novig-kalshi-charts/internal/market"
	"github.com/goldytalks/novig-kalshi-charts/internal/system"
	"github.com/goldytalks/novig-kalshi-charts/internal/video"
)

// ErrInsufficientData is re-exported so callers can classify failures
// without importing market directly.
var ErrInsufficientData = market.ErrInsufficientData

// ChartProject turns one market table into one output artifact. A project
// owns its RankSmoother, so concurrent renders need separate projects.
type ChartProject struct {
	Config  *config.Config
	Table   *market.Table
	Encoder *video.FFmpegEncoder
}

func NewChartProject(cfg *config.Config, table *market.Table, enc *video.FFmpegEncoder) *ChartProject {
	return &ChartProject{Config: cfg, Table: table, Encoder: enc}
}

// run is the prepared per-invocation state: resampled frames plus a fresh
// smoother and renderer.
type run struct {
	frames     []chart.Frame
	timestamps []time.Time
	smoother   *chart.RankSmoother
	renderer   *chart.Renderer
	params     chart.LayoutParams
}

func (p *ChartProject) prepare() (*run, error) {
	if err := p.Config.Validate(); err != nil {
		return nil, err
	}

	table := p.Table.Truncate(p.Config.MaxCandidates)
	if len(table.Series) == 0 {
		return nil, fmt.Errorf("%w: no series to display", ErrInsufficientData)
	}

	frameCount := p.Config.FrameCount()
	frames, timestamps := chart.Resample(table, frameCount)
	if len(frames) == 0 {
		return nil, fmt.Errorf("%w: table has %d rows, need at least 2", ErrInsufficientData, table.Rows())
	}

	format := p.Config.FormatSpec()
	fnt := assets.LoadFont(p.Config.FontPath)
	logo := assets.LoadLogo(p.Config.LogoPath, format.Height*12/100)

	var badge image.Image
	if p.Config.QRContent != "" {
		b, err := assets.QRBadge(p.Config.QRContent, format.Height/10)
		if err != nil {
			log.Printf("[!] QR badge skipped: %v", err)
		} else {
			badge = b
		}
	}

	renderer, err := chart.NewRenderer(fnt, format.DPI, logo, badge)
	if err != nil {
		return nil, err
	}

	return &run{
		frames:     frames,
		timestamps: timestamps,
		smoother:   chart.NewRankSmoother(table.Series),
		renderer:   renderer,
		params: chart.LayoutParams{
			Width:         format.Width,
			Height:        format.Height,
			DPI:           format.DPI,
			Title:         p.Config.Title,
			Candidates:    table.Series,
			ShowGridlines: p.Config.ShowGridlines,
		},
	}, nil
}

// renderFrame advances the rank state and paints frame i. Must be called in
// increasing frame order.
func (r *run) renderFrame(i int) *image.RGBA {
	positions := r.smoother.Advance(r.frames[i])
	plan := chart.BuildPlan(r.frames[i], r.timestamps[i], positions, r.params)
	return r.renderer.Render(plan)
}

// Run renders the full animation and encodes it to Config.OutputPath.
// Rendering and encoding overlap in a bounded producer/consumer pipeline;
// the rank pass itself stays strictly sequential.
func (p *ChartProject) Run(ctx context.Context) error {
	start := time.Now()

	r, err := p.prepare()
	if err != nil {
		return err
	}

	n := len(r.frames)
	fmt.Println("--- [PROJECT: BAR RACE] ---")
	fmt.Printf("[*] Series: %s | Frames: %d @ %d FPS\n", p.Config.Series, n, p.Config.FPS)
	fmt.Printf("[*] Resolution: %dx%d | Candidates: %d\n", r.params.Width, r.params.Height, len(r.params.Candidates))
	fmt.Println("---------------------------")

	rendered := make(chan *image.RGBA, 4)
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(rendered)
		for i := 0; i < n; i++ {
			img := r.renderFrame(i)
			select {
			case rendered <- img:
			case <-ctx.Done():
				return ctx.Err()
			}
			if (i+1)%(p.Config.FPS*2) == 0 || i == n-1 {
				fmt.Printf("[>] Rendered: %d/%d\n", i+1, n)
			}
		}
		return nil
	})

	g.Go(func() error {
		next := func(int) (image.Image, error) {
			img, ok := <-rendered
			if !ok {
				return nil, fmt.Errorf("render pipeline closed early")
			}
			return img, nil
		}
		return p.Encoder.Encode(ctx, n, next, p.Config.FPS, r.params.Width, r.params.Height, p.Config.OutputPath)
	})

	if err := g.Wait(); err != nil {
		return err
	}

	if p.Config.ShowStats {
		stats := system.CollectHostStats()
		elapsed := time.Since(start)
		fmt.Printf(
			"--- [PERFORMANCE REPORT] ---\n"+
				"Build: %s\n"+
				"Total Time: %.2fs\n"+
				"Effective FPS: %.2f\n"+
				"Host: %d cores, %d/%d MB memory\n"+
				"----------------------------\n",
			p.Config.BuildVersion, elapsed.Seconds(), float64(n)/elapsed.Seconds(),
			stats.CPUCores, stats.MemUsedMB, stats.MemTotalMB,
		)
	}

	return nil
}

// PreviewIndex picks the default preview frame: 80% through the sequence,
// where the ranking is representative of the final state.
func PreviewIndex(frameCount int) int {
	idx := frameCount * 4 / 5
	if idx > frameCount-1 {
		idx = frameCount - 1
	}
	if idx < 0 {
		idx = 0
	}
	return idx
}

// Preview renders a single frame as PNG bytes. frameIdx < 0 selects the
// default preview position. No file is written.
func (p *ChartProject) Preview(frameIdx int) ([]byte, error) {
	r, err := p.prepare()
	if err != nil {
		return nil, err
	}
	if frameIdx < 0 {
		frameIdx = PreviewIndex(len(r.frames))
	}
	if frameIdx > len(r.frames)-1 {
		frameIdx = len(r.frames) - 1
	}
	return video.Snapshot(func(i int) (image.Image, error) {
		return r.renderFrame(i), nil
	}, frameIdx)
}
