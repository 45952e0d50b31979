package assets

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"
	xdraw "golang.org/x/image/draw"
)

// alphaThreshold splits logo pixels into fully opaque and fully transparent
// so the mark keeps crisp edges after scaling.
const alphaThreshold = 100

// LoadLogo loads the brand mark and normalizes it to pure white with binary
// alpha at targetHeight pixels. SVG (and PDF) sources are rasterized through
// MuPDF at 4x and downscaled for quality; raster sources are decoded
// directly. An empty path means no logo. Asset errors are recovered with a
// drawn fallback mark, never surfaced to the caller.
func LoadLogo(path string, targetHeight int) image.Image {
	if path == "" {
		return nil
	}

	var src image.Image
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".svg", ".pdf":
		src, err = rasterizeVector(path, targetHeight*4)
	default:
		src, err = decodeRaster(path)
	}
	if err != nil || src == nil {
		return FallbackLogo(targetHeight)
	}
	return whiten(scaleToHeight(src, targetHeight))
}

func rasterizeVector(path string, renderHeight int) (image.Image, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	bound, err := doc.Bound(0)
	if err != nil {
		return nil, err
	}
	if bound.Dy() == 0 {
		return nil, fmt.Errorf("%s: empty page bounds", path)
	}
	dpi := float64(renderHeight) / float64(bound.Dy()) * 72
	return doc.ImageDPI(0, dpi)
}

func decodeRaster(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	return img, err
}

func scaleToHeight(src image.Image, targetHeight int) *image.RGBA {
	sb := src.Bounds()
	if sb.Dy() == 0 || targetHeight <= 0 {
		return image.NewRGBA(image.Rect(0, 0, 1, 1))
	}
	targetWidth := sb.Dx() * targetHeight / sb.Dy()
	if targetWidth < 1 {
		targetWidth = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, targetWidth, targetHeight))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, sb, xdraw.Over, nil)
	return dst
}

// whiten forces pure white RGB and thresholds alpha to fully on or off.
func whiten(img *image.RGBA) *image.RGBA {
	for i := 0; i < len(img.Pix); i += 4 {
		if img.Pix[i+3] > alphaThreshold {
			img.Pix[i] = 0xff
			img.Pix[i+1] = 0xff
			img.Pix[i+2] = 0xff
			img.Pix[i+3] = 0xff
		} else {
			img.Pix[i] = 0
			img.Pix[i+1] = 0
			img.Pix[i+2] = 0
			img.Pix[i+3] = 0
		}
	}
	return img
}

// FallbackLogo draws a simple white "N" mark: two vertical bars joined by a
// diagonal, on a transparent square.
func FallbackLogo(targetHeight int) image.Image {
	size := targetHeight
	if size < 8 {
		size = 8
	}
	img := image.NewRGBA(image.Rect(0, 0, size, size))

	margin := size / 10
	barWidth := size / 5
	span := size - 2*margin

	fill := func(x0, y0, x1, y1 int) {
		for y := y0; y < y1; y++ {
			for x := x0; x < x1; x++ {
				i := img.PixOffset(x, y)
				img.Pix[i] = 0xff
				img.Pix[i+1] = 0xff
				img.Pix[i+2] = 0xff
				img.Pix[i+3] = 0xff
			}
		}
	}

	fill(margin, margin, margin+barWidth, size-margin)
	fill(size-margin-barWidth, margin, size-margin, size-margin)
	for y := margin; y < size-margin; y++ {
		p := float64(y-margin) / float64(span)
		x0 := margin + int(p*float64(span-barWidth))
		fill(x0, y, x0+barWidth, y+1)
	}

	return img
}
