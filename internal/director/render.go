package director

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/ivlev/overlaykit/internal/effects"
	"github.com/ivlev/overlaykit/internal/geometry"
	"github.com/ivlev/overlaykit/internal/renderer"
	"github.com/ivlev/overlaykit/internal/system"
)

// RenderOptions control RenderFrames.
type RenderOptions struct {
	Width, Height int
	Workers       int
	// Backdrop, if set, is copied under the overlays. It must be
	// Width x Height.
	Backdrop *image.RGBA
	// Pool supplies frame buffers; nil uses the shared pool.
	Pool *system.FramePool
}

// RenderFrames rasterizes every snapshot of res in parallel. Frames come
// from opt.Pool and may be returned to it once encoded.
func RenderFrames(ctx context.Context, res *Result, opt RenderOptions) ([]*image.RGBA, error) {
	if opt.Width <= 0 || opt.Height <= 0 {
		return nil, fmt.Errorf("frame size %dx%d must be positive", opt.Width, opt.Height)
	}
	if opt.Workers <= 0 {
		opt.Workers = 1
	}
	pool := opt.Pool
	if pool == nil {
		pool = system.NewFramePool()
	}

	rect := image.Rect(0, 0, opt.Width, opt.Height)
	surface := geometry.Rect{Width: float64(opt.Width), Height: float64(opt.Height)}
	scale := float64(opt.Width) / res.Canvas.Width

	// Font faces keep per-face scratch buffers, so each worker takes its own.
	faces := sync.Pool{New: func() any { return renderer.NewFaces() }}

	frames := make([]*image.RGBA, len(res.Snapshots))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opt.Workers)

	for i, snap := range res.Snapshots {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			f := faces.Get().(*renderer.Faces)
			defer faces.Put(f)

			img := pool.Get(rect)
			if opt.Backdrop != nil {
				draw.Draw(img, rect, opt.Backdrop, image.Point{}, draw.Src)
			}
			for _, n := range snap.Nodes(res.Canvas, scale) {
				if err := f.Rasterize(img, surface, n); err != nil {
					pool.Put(img)
					return fmt.Errorf("frame %d, element %s: %w", i, n.ElementID, err)
				}
			}
			frames[i] = img
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		for _, img := range frames {
			pool.Put(img)
		}
		return nil, err
	}
	return frames, nil
}

// DrawTextFilter builds an ffmpeg drawtext chain that reproduces the final
// state of every element over a video of width x height: elements that
// played an animation during the replay play their last one at the same
// time offset, the rest are drawn static.
func (d *Director) DrawTextFilter(res *Result, width, height int, fontFile string) (string, error) {
	last := make(map[string]PlaybackRecord)
	for _, pb := range res.Playbacks {
		last[pb.TrackID+"/"+pb.ElementID] = pb
	}
	faces := d.Faces
	if faces == nil {
		faces = renderer.NewFaces()
	}

	var filters []string
	for _, e := range res.Store.Elements() {
		opt := renderer.DrawTextOptions{Width: width, Height: height, FPS: d.FPS, FontFile: fontFile}
		var seq effects.Sequence
		if pb, ok := last[e.TrackID+"/"+e.ID]; ok {
			seq = pb.Sequence
			opt.Start = pb.Start.Seconds()
		}
		if len(seq.Units) > 0 {
			size, err := faces.NaturalSize(renderer.Project(e, res.Canvas, 1, renderer.RestState()))
			if err != nil {
				return "", err
			}
			opt.TextWidth = size.Width * float64(width) / res.Canvas.Width
		}
		if f := renderer.GenerateDrawTextFilter(e, seq, res.Canvas, opt); f != "" {
			filters = append(filters, f)
		}
	}
	return strings.Join(filters, ","), nil
}
