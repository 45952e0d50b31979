package chart

import (
	"fmt"
	"image"
	"image/color"
	"strings"
	"time"

	"github.com/goldytalks/novig-kalshi-charts/internal/config"
)

// Chart geometry as fractions of the canvas, measured from the bottom-left
// like the axes they came from. Converted to pixel space when a plan is built.
const (
	nameEndX  = 0.26 // right edge of the right-aligned series name
	barStartX = 0.28
	barEndX   = 0.82

	chartTop    = 0.80
	chartBottom = 0.15

	minBarWidth    = 0.01 // sliver so zero values stay visible
	highlightWidth = 0.02 // bars narrower than this get no highlight band
	barRounding    = 0.008

	titleY       = 0.92
	gridLabelPad = 0.02
	timestampY   = 0.04
	attributionY = 0.015
	logoPad      = 0.04
)

// Point sizes, scaled by dpi/72 when rendered.
const (
	sizeTitle       = 32
	sizeName        = 16
	sizePct         = 14
	sizeGridLabel   = 11
	sizeTimestamp   = 16
	sizeAttribution = 10
)

const attribution = "PER NOVIG MARKET DATA"

type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

type VAlign int

const (
	// VMiddle centers the text vertically on the anchor.
	VMiddle VAlign = iota
	// VBaseline puts the baseline on the anchor.
	VBaseline
)

// Text is one placed string: anchor point in pixels, point size, color.
type Text struct {
	Value  string
	X, Y   int
	Align  Align
	VAlign VAlign
	Size   float64
	Color  color.Color
}

// Gridline is one vertical axis reference line with its percentage label.
type Gridline struct {
	X     int
	Label Text
}

// Bar is one series bar with its surrounding text.
type Bar struct {
	Rect      image.Rectangle
	Highlight image.Rectangle // empty when the bar is too narrow
	Rounding  int
	Name      Text
	Pct       Text
}

// RenderPlan is the complete geometry and text placement for one frame.
// It carries no pixels; the Renderer turns it into an image.
type RenderPlan struct {
	Width, Height int
	Title         Text
	Gridlines     []Gridline
	Bars          []Bar
	Timestamp     Text
	Attribution   Text
}

// LayoutParams are the run-constant inputs to plan building.
type LayoutParams struct {
	Width, Height int
	DPI           int
	Title         string
	Candidates    []string
	ShowGridlines bool
}

// gridStep picks the axis step for a given scale: finer gridlines for
// tighter races.
func gridStep(maxVal float64) float64 {
	switch {
	case maxVal <= 0.1:
		return 0.02
	case maxVal <= 0.25:
		return 0.05
	case maxVal <= 0.5:
		return 0.1
	default:
		return 0.2
	}
}

// BuildPlan lays out one frame. Pure: the same inputs always produce the
// same plan.
func BuildPlan(frame Frame, ts time.Time, positions map[string]float64, p LayoutParams) *RenderPlan {
	w, h := float64(p.Width), float64(p.Height)

	// x/y converters from bottom-up axes fractions to top-left pixels.
	px := func(fx float64) int { return int(fx*w + 0.5) }
	py := func(fy float64) int { return int((1-fy)*h + 0.5) }

	plan := &RenderPlan{
		Width:  p.Width,
		Height: p.Height,
		Title: Text{
			Value: strings.ToUpper(p.Title),
			X:     px(0.5), Y: py(titleY),
			Align: AlignCenter, Size: sizeTitle, Color: config.ColorWhite,
		},
		Timestamp: Text{
			Value: strings.ToUpper(ts.Format("January 02, 2006")),
			X:     px(0.5), Y: py(timestampY),
			Align: AlignCenter, Size: sizeTimestamp, Color: config.ColorGray,
		},
		Attribution: Text{
			Value: attribution,
			X:     px(0.5), Y: py(attributionY),
			Align: AlignCenter, Size: sizeAttribution,
			Color: color.NRGBA{R: 0x6b, G: 0x82, B: 0x99, A: 0xb2}, // gray at 70%
		},
	}

	// Axis scale with 10% headroom over the frame's peak.
	maxVal := 0.0
	for _, v := range frame {
		if v > maxVal {
			maxVal = v
		}
	}
	if maxVal <= 0 {
		maxVal = 0.1
	}
	maxVal *= 1.1

	if p.ShowGridlines {
		step := gridStep(maxVal)
		for i := 1; ; i++ {
			gv := float64(i) * step
			if gv > maxVal {
				break
			}
			gx := barStartX + (gv/maxVal)*(barEndX-barStartX)
			if gx > barEndX {
				continue
			}
			plan.Gridlines = append(plan.Gridlines, Gridline{
				X: px(gx),
				Label: Text{
					Value: fmt.Sprintf("%d%%", int(gv*100)),
					X:     px(gx), Y: py(chartTop + gridLabelPad),
					Align: AlignCenter, VAlign: VBaseline,
					Size: sizeGridLabel, Color: config.ColorGray,
				},
			})
		}
	}

	n := len(p.Candidates)
	chartHeight := chartTop - chartBottom
	spacing := chartHeight / float64(max(n, 1))
	barHeight := chartHeight / float64(max(n, 1)) * 0.8
	if barHeight > 0.06 {
		barHeight = 0.06
	}

	for _, candidate := range p.Candidates {
		value := frame[candidate]
		pos := positions[candidate]
		yCenter := chartTop - (pos+0.5)*spacing

		barWidth := minBarWidth
		if value > 0 {
			barWidth = (value / maxVal) * (barEndX - barStartX)
			if barWidth < minBarWidth {
				barWidth = minBarWidth
			}
		}

		rect := image.Rect(
			px(barStartX), py(yCenter+barHeight/2),
			px(barStartX+barWidth), py(yCenter-barHeight/2),
		)

		var highlight image.Rectangle
		if barWidth > highlightWidth {
			highlight = image.Rect(
				px(barStartX), py(yCenter+barHeight*0.40),
				px(barStartX+barWidth), py(yCenter+barHeight*0.25),
			)
		}

		name := strings.ToUpper(candidate)
		if len(name) > 20 {
			name = name[:20]
		}

		plan.Bars = append(plan.Bars, Bar{
			Rect:      rect,
			Highlight: highlight,
			Rounding:  px(barRounding),
			Name: Text{
				Value: name,
				X:     px(nameEndX), Y: py(yCenter),
				Align: AlignRight, Size: sizeName, Color: config.ColorWhite,
			},
			Pct: Text{
				Value: fmt.Sprintf("%.1f%%", value*100),
				X:     px(barStartX + barWidth + 0.02), Y: py(yCenter),
				Align: AlignLeft, Size: sizePct, Color: config.ColorBar,
			},
		})
	}

	return plan
}
