package thumb

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"os/exec"
	"time"

	"golang.org/x/image/draw"
)

const (
	// DefaultSeekOffset is where the representative frame is taken from.
	DefaultSeekOffset = time.Second

	// DefaultCaptureSize is the edge length of the square output image.
	DefaultCaptureSize = 400

	// DefaultCaptureTimeout bounds the whole ffmpeg invocation.
	DefaultCaptureTimeout = 10 * time.Second

	jpegQuality = 80
)

// FrameCapturer extracts a representative frame from a video file with
// ffmpeg, then center-crops and downscales it to a square JPEG.
type FrameCapturer struct {
	FFmpegPath string        // "" means "ffmpeg" on PATH
	SeekOffset time.Duration // 0 means DefaultSeekOffset
	Size       int           // 0 means DefaultCaptureSize
	Timeout    time.Duration // 0 means DefaultCaptureTimeout
}

// Capture returns nil when the frame cannot be extracted for any reason
// (missing ffmpeg, codec error, timeout); capture failures are a
// fall-through, never an error.
func (f *FrameCapturer) Capture(ctx context.Context, path string) []byte {
	ffmpeg := f.FFmpegPath
	if ffmpeg == "" {
		ffmpeg = "ffmpeg"
	}
	seek := f.SeekOffset
	if seek <= 0 {
		seek = DefaultSeekOffset
	}
	size := f.Size
	if size <= 0 {
		size = DefaultCaptureSize
	}
	timeout := f.Timeout
	if timeout <= 0 {
		timeout = DefaultCaptureTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, ffmpeg,
		"-hide_banner", "-loglevel", "error",
		"-ss", fmt.Sprintf("%.1f", seek.Seconds()),
		"-i", path,
		"-frames:v", "1",
		"-f", "image2pipe", "-vcodec", "mjpeg",
		"-")
	out, err := cmd.Output()
	if err != nil || len(out) == 0 {
		return nil
	}

	src, err := jpeg.Decode(bytes.NewReader(out))
	if err != nil {
		return nil
	}
	return SquareJPEG(src, size)
}

// SquareJPEG center-crops img to a square at the smaller of its
// dimensions and scales it to edge by edge, encoded as JPEG. Returns nil
// for degenerate input.
func SquareJPEG(img image.Image, edge int) []byte {
	b := img.Bounds()
	side := b.Dx()
	if b.Dy() < side {
		side = b.Dy()
	}
	if side <= 0 || edge <= 0 {
		return nil
	}

	x0 := b.Min.X + (b.Dx()-side)/2
	y0 := b.Min.Y + (b.Dy()-side)/2
	crop := image.Rect(x0, y0, x0+side, y0+side)

	dst := image.NewRGBA(image.Rect(0, 0, edge, edge))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, crop, draw.Src, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil
	}
	return buf.Bytes()
}
