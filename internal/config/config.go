package config

import (
	"fmt"
	"image/color"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfiguration is returned by Validate for options that would
// make rendering impossible. Checked before any frame is produced.
var ErrInvalidConfiguration = fmt.Errorf("invalid configuration")

type Config struct {
	Series        string
	Title         string
	OutputPath    string
	FPS           int
	Duration      float64 // seconds
	Format        string
	MaxCandidates int
	ShowGridlines bool
	DaysBack      int

	FontPath  string
	LogoPath  string
	QRContent string

	ShowStats    bool
	BuildVersion string
}

// FormatSpec is a named canvas preset. MVP ships square only.
type FormatSpec struct {
	Width  int
	Height int
	DPI    int
}

var Formats = map[string]FormatSpec{
	"square": {Width: 1080, Height: 1080, DPI: 100},
}

// Video export settings. Fixed: the encoder contract promises exactly this.
const (
	VideoCodec   = "libx264"
	VideoBitrate = 8000 // kbps
	VideoPixFmt  = "yuv420p"
)

// Novig brand palette.
var (
	ColorBackground = color.RGBA{R: 0x0a, G: 0x19, B: 0x29, A: 0xff}
	ColorBar        = color.RGBA{R: 0x5a, G: 0xc8, B: 0xfa, A: 0xff}
	ColorWhite      = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	ColorGray       = color.RGBA{R: 0x6b, G: 0x82, B: 0x99, A: 0xff}
	ColorGridline   = color.RGBA{R: 0x1a, G: 0x3a, B: 0x5c, A: 0xff}
)

func (c *Config) FormatSpec() FormatSpec {
	if f, ok := Formats[c.Format]; ok {
		return f
	}
	return Formats["square"]
}

// FrameCount derives the total frame budget from fps and duration.
func (c *Config) FrameCount() int {
	n := int(float64(c.FPS)*c.Duration + 0.5)
	if n < 1 {
		n = 1
	}
	return n
}

func (c *Config) Validate() error {
	if c.FPS <= 0 {
		return fmt.Errorf("%w: fps must be positive, got %d", ErrInvalidConfiguration, c.FPS)
	}
	if c.Duration <= 0 {
		return fmt.Errorf("%w: duration must be positive, got %g", ErrInvalidConfiguration, c.Duration)
	}
	if c.MaxCandidates <= 0 {
		return fmt.Errorf("%w: max candidates must be positive, got %d", ErrInvalidConfiguration, c.MaxCandidates)
	}
	if _, ok := Formats[c.Format]; c.Format != "" && !ok {
		return fmt.Errorf("%w: unknown format %q", ErrInvalidConfiguration, c.Format)
	}
	return nil
}

// Default titles for popular series.
var seriesTitles = map[string]string{
	"KXMICHCOACH": "WHO WILL BE MICHIGAN'S NEXT HEAD COACH?",
	"KXPRESWIN":   "WHO WILL WIN THE 2024 PRESIDENTIAL ELECTION?",
	"KXFEDRATE":   "WHAT WILL THE FED DO WITH INTEREST RATES?",
	"KXSUPERBOWL": "WHO WILL WIN THE SUPER BOWL?",
	"KXNFLMVP":    "WHO WILL WIN NFL MVP?",
}

// LoadTitles merges a user-supplied YAML map of series ticker -> title over
// the built-in defaults.
func LoadTitles(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	custom := map[string]string{}
	if err := yaml.Unmarshal(data, &custom); err != nil {
		return fmt.Errorf("titles file %s: %w", path, err)
	}
	for k, v := range custom {
		seriesTitles[strings.ToUpper(k)] = v
	}
	return nil
}

// DefaultTitle returns the known title for a series ticker, or generates one
// from the ticker itself.
func DefaultTitle(seriesTicker string) string {
	if t, ok := seriesTitles[seriesTicker]; ok {
		return t
	}
	cleaned := strings.ReplaceAll(strings.TrimPrefix(seriesTicker, "KX"), "_", " ")
	return fmt.Sprintf("%s MARKET", strings.ToUpper(cleaned))
}
