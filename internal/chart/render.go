package chart

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"github.com/goldytalks/novig-kalshi-charts/internal/config"
)

var (
	colorGridlineSoft = color.NRGBA{R: 0x1a, G: 0x3a, B: 0x5c, A: 0x80} // gridline at 50%
	colorHighlight    = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0x33} // white at 20%
)

// Renderer paints RenderPlans into pixel buffers. It owns the prebuilt font
// faces and the optional branding images; everything else comes from the
// plan. Render is a pure function of its plan, so a Renderer may serve many
// frames (but a single face is not safe for concurrent Render calls).
type Renderer struct {
	faces map[float64]font.Face
	logo  image.Image // nil when unavailable, silently omitted
	badge image.Image // optional QR badge, bottom-right
}

// NewRenderer builds the fixed face set used by the layout. fnt must be a
// parsed display font; assets.LoadFont never fails, so neither should this
// under normal use.
func NewRenderer(fnt *sfnt.Font, dpi int, logo, badge image.Image) (*Renderer, error) {
	sizes := []float64{sizeTitle, sizeName, sizePct, sizeGridLabel, sizeTimestamp, sizeAttribution}
	faces := make(map[float64]font.Face, len(sizes))
	for _, size := range sizes {
		if _, ok := faces[size]; ok {
			continue
		}
		face, err := opentype.NewFace(fnt, &opentype.FaceOptions{
			Size:    size,
			DPI:     float64(dpi),
			Hinting: font.HintingFull,
		})
		if err != nil {
			return nil, fmt.Errorf("face %gpt: %w", size, err)
		}
		faces[size] = face
	}
	return &Renderer{faces: faces, logo: logo, badge: badge}, nil
}

// Render paints one frame in strict z-order: background, gridlines, bars,
// highlights, text, branding.
func (r *Renderer) Render(plan *RenderPlan) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, plan.Width, plan.Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(config.ColorBackground), image.Point{}, draw.Src)

	h := float64(plan.Height)
	gridTop := int((1 - chartTop) * h)
	gridBottom := int((1 - chartBottom) * h)
	for _, gl := range plan.Gridlines {
		line := image.Rect(gl.X, gridTop, gl.X+1, gridBottom)
		draw.Draw(img, line, image.NewUniform(colorGridlineSoft), image.Point{}, draw.Over)
		r.drawText(img, gl.Label)
	}

	for _, bar := range plan.Bars {
		fillRoundedRect(img, bar.Rect, bar.Rounding, config.ColorBar)
		if !bar.Highlight.Empty() {
			draw.Draw(img, bar.Highlight, image.NewUniform(colorHighlight), image.Point{}, draw.Over)
		}
	}
	for _, bar := range plan.Bars {
		r.drawText(img, bar.Name)
		r.drawText(img, bar.Pct)
	}

	r.drawText(img, plan.Title)
	r.drawText(img, plan.Timestamp)
	r.drawText(img, plan.Attribution)

	if r.logo != nil {
		pad := int(logoPad * h)
		lb := r.logo.Bounds()
		at := image.Pt(int(logoPad*float64(plan.Width)), plan.Height-pad-lb.Dy())
		draw.Draw(img, image.Rectangle{Min: at, Max: at.Add(lb.Size())}, r.logo, lb.Min, draw.Over)
	}
	if r.badge != nil {
		pad := int(logoPad * h)
		bb := r.badge.Bounds()
		at := image.Pt(plan.Width-pad-bb.Dx(), plan.Height-pad-bb.Dy())
		draw.Draw(img, image.Rectangle{Min: at, Max: at.Add(bb.Size())}, r.badge, bb.Min, draw.Over)
	}

	return img
}

func (r *Renderer) drawText(dst *image.RGBA, t Text) {
	if t.Value == "" {
		return
	}
	face, ok := r.faces[t.Size]
	if !ok {
		face = r.faces[sizeName]
	}

	d := &font.Drawer{Dst: dst, Src: image.NewUniform(t.Color), Face: face}
	adv := d.MeasureString(t.Value)

	x := fixed.I(t.X)
	switch t.Align {
	case AlignCenter:
		x -= adv / 2
	case AlignRight:
		x -= adv
	}

	y := fixed.I(t.Y)
	if t.VAlign == VMiddle {
		m := face.Metrics()
		y += (m.Ascent - m.Descent) / 2
	}

	d.Dot = fixed.Point26_6{X: x, Y: y}
	d.DrawString(t.Value)
}

// fillRoundedRect fills rect with c, rounding the four corners by radius.
func fillRoundedRect(img *image.RGBA, rect image.Rectangle, radius int, c color.RGBA) {
	rect = rect.Intersect(img.Bounds())
	if rect.Empty() {
		return
	}
	maxRadius := rect.Dy() / 2
	if rect.Dx()/2 < maxRadius {
		maxRadius = rect.Dx() / 2
	}
	if radius > maxRadius {
		radius = maxRadius
	}

	rr := float64(radius)
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		inset := 0
		if radius > 0 {
			dy := 0.0
			if y < rect.Min.Y+radius {
				dy = float64(rect.Min.Y+radius-y) - 0.5
			} else if y >= rect.Max.Y-radius {
				dy = float64(y-(rect.Max.Y-radius)) + 0.5
			}
			if dy > 0 {
				inset = radius - int(math.Sqrt(rr*rr-dy*dy)+0.5)
			}
		}
		for x := rect.Min.X + inset; x < rect.Max.X-inset; x++ {
			img.SetRGBA(x, y, c)
		}
	}
}
