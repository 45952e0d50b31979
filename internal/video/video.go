package video

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"
	"os"
	"os/exec"

	"github.com/goldytalks/novig-kalshi-charts/internal/config"
)

// RenderFunc produces the frame at index i. The encoder calls it with
// strictly increasing indices, each exactly once.
type RenderFunc func(i int) (image.Image, error)

// FFmpegEncoder writes H.264 video by streaming raw RGBA frames into an
// ffmpeg child process over stdin.
type FFmpegEncoder struct {
	FFmpegPath  string
	Codec       string
	BitrateKbps int
	PixFmt      string
}

func NewFFmpegEncoder() *FFmpegEncoder {
	return &FFmpegEncoder{
		FFmpegPath:  "ffmpeg",
		Codec:       config.VideoCodec,
		BitrateKbps: config.VideoBitrate,
		PixFmt:      config.VideoPixFmt,
	}
}

func (e *FFmpegEncoder) buildArgs(width, height, fps int, outPath string) []string {
	return []string{
		"-y",
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", width, height),
		"-framerate", fmt.Sprintf("%d", fps),
		"-i", "-",
		"-c:v", e.Codec,
		"-pix_fmt", e.PixFmt,
		"-b:v", fmt.Sprintf("%dk", e.BitrateKbps),
		"-r", fmt.Sprintf("%d", fps),
		outPath,
	}
}

// Encode renders frames 0..frameCount-1 and muxes them into a single video
// file at outPath. The stream is written to a .part sibling first and
// renamed only after ffmpeg exits cleanly, so a failed encode never leaves
// an artifact at outPath.
func (e *FFmpegEncoder) Encode(ctx context.Context, frameCount int, renderFn RenderFunc, fps, width, height int, outPath string) (err error) {
	if frameCount <= 0 {
		return fmt.Errorf("nothing to encode: frame count %d", frameCount)
	}

	tmpPath := outPath + ".part"
	defer func() {
		if err != nil {
			os.Remove(tmpPath)
		}
	}()

	cmd := exec.CommandContext(ctx, e.FFmpegPath, e.buildArgs(width, height, fps, tmpPath)...)
	var ffmpegLog bytes.Buffer
	cmd.Stdout = &ffmpegLog
	cmd.Stderr = &ffmpegLog

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("stdin pipe error: %w", err)
	}
	if err = cmd.Start(); err != nil {
		return fmt.Errorf("ffmpeg start error: %w", err)
	}

	for i := 0; i < frameCount; i++ {
		img, renderErr := renderFn(i)
		if renderErr != nil {
			stdin.Close()
			cmd.Wait()
			return fmt.Errorf("render frame %d: %w", i, renderErr)
		}
		if writeErr := writeRawRGBA(stdin, img); writeErr != nil {
			stdin.Close()
			cmd.Wait()
			return fmt.Errorf("write frame %d: %w (ffmpeg: %s)", i, writeErr, logTail(&ffmpegLog))
		}
	}
	stdin.Close()

	if err = cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg wait error: %w, output: %s", err, logTail(&ffmpegLog))
	}
	if err = os.Rename(tmpPath, outPath); err != nil {
		return fmt.Errorf("finalize %s: %w", outPath, err)
	}
	return nil
}

// Snapshot renders a single frame and returns it as encoded PNG bytes.
// No file is written.
func Snapshot(renderFn RenderFunc, frameIdx int) ([]byte, error) {
	img, err := renderFn(frameIdx)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeRawRGBA(w io.Writer, img image.Image) error {
	bounds := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Stride != bounds.Dx()*4 || rgba.Rect.Min.X != 0 || rgba.Rect.Min.Y != 0 {
		rgba = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	}
	_, err := w.Write(rgba.Pix)
	return err
}

func logTail(buf *bytes.Buffer) string {
	const maxTail = 500
	s := buf.String()
	if len(s) > maxTail {
		s = s[len(s)-maxTail:]
	}
	return s
}
