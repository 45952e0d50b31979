package video

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func solidFrame(c color.RGBA) RenderFunc {
	return func(int) (image.Image, error) {
		img := image.NewRGBA(image.Rect(0, 0, 64, 64))
		for i := 0; i < len(img.Pix); i += 4 {
			img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
		}
		return img, nil
	}
}

func TestBuildArgs(t *testing.T) {
	e := NewFFmpegEncoder()
	args := strings.Join(e.buildArgs(1080, 1080, 30, "out.mp4"), " ")

	for _, want := range []string{
		"-f rawvideo",
		"-pixel_format rgba",
		"-video_size 1080x1080",
		"-c:v libx264",
		"-pix_fmt yuv420p",
		"-b:v 8000k",
		"-r 30",
	} {
		if !strings.Contains(args, want) {
			t.Errorf("args missing %q: %s", want, args)
		}
	}
	if !strings.HasSuffix(args, "out.mp4") {
		t.Errorf("output path should be last: %s", args)
	}
}

func TestEncodeFailureLeavesNoArtifact(t *testing.T) {
	dir := t.TempDir()
	outPath := filepath.Join(dir, "race.mp4")

	e := NewFFmpegEncoder()
	e.FFmpegPath = filepath.Join(dir, "no-such-ffmpeg")

	err := e.Encode(context.Background(), 3, solidFrame(color.RGBA{A: 255}), 30, 64, 64, outPath)
	if err == nil {
		t.Fatal("expected encode failure")
	}

	if _, statErr := os.Stat(outPath); !os.IsNotExist(statErr) {
		t.Errorf("failed encode left a file at %s", outPath)
	}
	if _, statErr := os.Stat(outPath + ".part"); !os.IsNotExist(statErr) {
		t.Errorf("failed encode left a temp file at %s.part", outPath)
	}
}

func TestEncodeRejectsEmptySequence(t *testing.T) {
	e := NewFFmpegEncoder()
	if err := e.Encode(context.Background(), 0, solidFrame(color.RGBA{}), 30, 64, 64, "x.mp4"); err == nil {
		t.Fatal("expected error for zero frames")
	}
}

func TestSnapshotReturnsPNG(t *testing.T) {
	c := color.RGBA{R: 0x0a, G: 0x19, B: 0x29, A: 0xff}
	data, err := Snapshot(solidFrame(c), 0)
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("snapshot is not valid PNG: %v", err)
	}
	if img.Bounds().Dx() != 64 {
		t.Errorf("unexpected snapshot size: %v", img.Bounds())
	}
}

func TestSnapshotIdempotent(t *testing.T) {
	fn := solidFrame(color.RGBA{R: 0x5a, G: 0xc8, B: 0xfa, A: 0xff})

	first, err := Snapshot(fn, 5)
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	second, err := Snapshot(fn, 5)
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}

	if !bytes.Equal(first, second) {
		t.Error("identical inputs must produce byte-identical images")
	}
}
