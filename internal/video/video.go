// Package video turns rendered preview frames into a video file with
// ffmpeg, or into a PNG sequence.
package video

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"
	"math"
	"os"
	"os/exec"
	"path/filepath"
)

// Params describe the output stream.
type Params struct {
	FPS     int
	Encoder string // h264_videotoolbox, h264_nvenc or libx264
	Quality int
	// Filter is an optional -vf chain applied to the input, such as a
	// drawtext overlay.
	Filter string
	// Duration limits the output in seconds; 0 means the input length.
	// A single still frame is repeated for Duration.
	Duration float64
}

type VideoEncoder interface {
	EncodeFrames(ctx context.Context, frames []*image.RGBA, videoPath string, params Params) error
}

type FFmpegEncoder struct{}

// EncodeFrames pipes frames to ffmpeg as raw RGBA. All frames must share
// the first frame's size.
func (e *FFmpegEncoder) EncodeFrames(ctx context.Context, frames []*image.RGBA, videoPath string, params Params) error {
	if len(frames) == 0 {
		return fmt.Errorf("no frames to encode")
	}
	size := frames[0].Bounds().Size()
	if len(frames) == 1 && params.Duration > 0 {
		n := int(math.Ceil(params.Duration * float64(params.FPS)))
		for len(frames) < n {
			frames = append(frames, frames[0])
		}
	}

	args := e.buildFFmpegArgs(size.X, size.Y, videoPath, params)
	cmd := exec.CommandContext(ctx, "ffmpeg", args...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("stdin pipe error: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("ffmpeg start error: %w", err)
	}

	for i, f := range frames {
		if f.Bounds().Size() != size {
			stdin.Close()
			cmd.Wait()
			return fmt.Errorf("frame %d is %v, want %v", i, f.Bounds().Size(), size)
		}
		if err := e.writeRawRGBA(stdin, f); err != nil {
			stdin.Close()
			cmd.Wait()
			return fmt.Errorf("write raw error: %w", err)
		}
	}
	stdin.Close()

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg wait error: %w", err)
	}
	return nil
}

func (e *FFmpegEncoder) buildFFmpegArgs(inputW, inputH int, videoPath string, params Params) []string {
	args := []string{
		"-y",
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", inputW, inputH),
		"-framerate", fmt.Sprintf("%d", params.FPS),
		"-i", "-",
	}
	if params.Filter != "" {
		args = append(args, "-vf", params.Filter)
	}
	if params.Duration > 0 {
		args = append(args, "-t", fmt.Sprintf("%f", params.Duration))
	}
	args = append(args,
		"-r", fmt.Sprintf("%d", params.FPS),
		"-pix_fmt", "yuv420p",
		"-c:v", params.Encoder,
	)

	// Quality depends on the encoder
	switch params.Encoder {
	case "h264_videotoolbox":
		args = append(args, "-b:v", fmt.Sprintf("%dk", params.Quality*100))
	case "h264_nvenc":
		args = append(args, "-cq", fmt.Sprintf("%d", params.Quality))
	default: // libx264
		args = append(args, "-crf", fmt.Sprintf("%d", params.Quality), "-preset", "medium")
	}

	return append(args, videoPath)
}

func (e *FFmpegEncoder) writeRawRGBA(w io.Writer, img *image.RGBA) error {
	bounds := img.Bounds()
	if img.Stride != bounds.Dx()*4 || bounds.Min != (image.Point{}) {
		packed := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(packed, packed.Bounds(), img, bounds.Min, draw.Src)
		img = packed
	}
	_, err := w.Write(img.Pix)
	return err
}

// WritePNGSequence writes frames as dir/frame_00000.png, ... and returns
// the paths.
func WritePNGSequence(dir string, frames []*image.RGBA) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(frames))
	for i, f := range frames {
		p := filepath.Join(dir, fmt.Sprintf("frame_%05d.png", i))
		if err := writePNG(p, f); err != nil {
			return paths, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
