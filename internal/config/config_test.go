package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Series:        "KXTEST",
		Title:         "TEST",
		FPS:           30,
		Duration:      8.0,
		Format:        "square",
		MaxCandidates: 8,
	}
}

func TestValidate(t *testing.T) {
	assert.NoError(t, validConfig().Validate())

	bad := validConfig()
	bad.FPS = 0
	assert.ErrorIs(t, bad.Validate(), ErrInvalidConfiguration)

	bad = validConfig()
	bad.Duration = -1
	assert.ErrorIs(t, bad.Validate(), ErrInvalidConfiguration)

	bad = validConfig()
	bad.MaxCandidates = 0
	assert.ErrorIs(t, bad.Validate(), ErrInvalidConfiguration)

	bad = validConfig()
	bad.Format = "banner"
	assert.ErrorIs(t, bad.Validate(), ErrInvalidConfiguration)
}

func TestFrameCount(t *testing.T) {
	c := validConfig()
	assert.Equal(t, 240, c.FrameCount())

	c.FPS = 24
	c.Duration = 0.1
	assert.Equal(t, 2, c.FrameCount(), "round(2.4)")

	c.Duration = 0.001
	assert.Equal(t, 1, c.FrameCount(), "at least one frame")
}

func TestFormatSpec(t *testing.T) {
	c := validConfig()
	f := c.FormatSpec()
	assert.Equal(t, 1080, f.Width)
	assert.Equal(t, 1080, f.Height)
	assert.Equal(t, 100, f.DPI)
}

func TestDefaultTitle(t *testing.T) {
	assert.Equal(t, "WHO WILL WIN NFL MVP?", DefaultTitle("KXNFLMVP"))
	assert.Equal(t, "WORLD CUP MARKET", DefaultTitle("KXWORLD_CUP"))
}

func TestLoadTitles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "titles.yaml")
	require.NoError(t, os.WriteFile(path, []byte("KXCUSTOM: \"MY CUSTOM TITLE\"\n"), 0644))

	require.NoError(t, LoadTitles(path))
	assert.Equal(t, "MY CUSTOM TITLE", DefaultTitle("KXCUSTOM"))

	assert.Error(t, LoadTitles(filepath.Join(t.TempDir(), "missing.yaml")))
}
