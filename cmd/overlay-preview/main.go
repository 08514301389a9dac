package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/ivlev/overlaykit/internal/config"
	"github.com/ivlev/overlaykit/internal/director"
	"github.com/ivlev/overlaykit/internal/effects"
	olog "github.com/ivlev/overlaykit/internal/log"
	"github.com/ivlev/overlaykit/internal/source"
	"github.com/ivlev/overlaykit/internal/system"
	"github.com/ivlev/overlaykit/internal/video"
)

var version = "dev"

func main() {
	scriptPtr := flag.String("script", "", "Interaction script (default: newest .yaml in input/scripts/)")
	configPtr := flag.String("config", "", "Config file (.yaml or .toml)")
	outputPtr := flag.String("out", "", "Output video (default: output/<script>_<timestamp>.mp4)")
	framesPtr := flag.String("frames", "", "Also write PNG frames to this directory")
	fpsPtr := flag.Int("fps", 30, "FPS")
	widthPtr := flag.Int("width", 1280, "Frame width")
	heightPtr := flag.Int("height", 720, "Frame height")
	presetPtr := flag.String("preset", "", "Format preset: 16:9, 9:16, 4:5")
	backdropPtr := flag.String("backdrop", "", "Image, image folder or PDF drawn behind the overlays")
	pagePtr := flag.Int("page", 0, "Backdrop page index")
	presetsPtr := flag.String("presets", "", "Animation preset file overriding the built-ins")
	splitPtr := flag.String("split", "rune", "Typewriter unit: rune or grapheme")
	modePtr := flag.String("mode", "raster", "raster: draw every frame; filter: let ffmpeg drawtext animate the final state")
	workersPtr := flag.Int("workers", runtime.NumCPU(), "Render workers")
	qualityPtr := flag.Int("quality", 0, "Video quality (0 - auto, x264: CRF 1-51, VideoToolbox: bitrate = Q*100 kbit/s)")
	statsPtr := flag.Bool("stats", false, "Print a performance report")
	verbosePtr := flag.Bool("v", false, "Debug logging")

	flag.Parse()

	cfg := config.Default()
	if *configPtr != "" {
		loaded, err := config.Load(*configPtr)
		if err != nil {
			log.Fatalf("[-] Config error: %v", err)
		}
		cfg = loaded
	}
	cfg.BuildVersion = version

	// Flags given on the command line win over the config file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "script":
			cfg.ScriptPath = *scriptPtr
		case "out":
			cfg.OutputVideo = *outputPtr
		case "frames":
			cfg.FramesDir = *framesPtr
		case "fps":
			cfg.FPS = *fpsPtr
		case "width":
			cfg.Width = *widthPtr
		case "height":
			cfg.Height = *heightPtr
		case "preset":
			cfg.Preset = *presetPtr
		case "backdrop":
			cfg.BackdropPath = *backdropPtr
		case "page":
			cfg.BackdropPage = *pagePtr
		case "presets":
			cfg.PresetFile = *presetsPtr
		case "split":
			cfg.TypewriterSplit = *splitPtr
		case "workers":
			cfg.Workers = *workersPtr
		case "quality":
			cfg.Quality = *qualityPtr
		case "stats":
			cfg.ShowStats = *statsPtr
		}
	})
	cfg.ApplyPreset()
	if *verbosePtr {
		cfg.LogLevel = "debug"
	}
	olog.SetLevel(olog.ParseLevel(cfg.LogLevel))

	if err := cfg.Validate(); err != nil {
		log.Fatalf("[-] Invalid settings: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg, *modePtr); err != nil {
		log.Fatalf("[-] %v", err)
	}
}

func run(ctx context.Context, cfg *config.Config, mode string) error {
	start := time.Now()

	scriptPath := cfg.ScriptPath
	if scriptPath == "" {
		latest, err := director.FindLatestScript(director.ScriptsDir)
		if err != nil {
			return fmt.Errorf("%w. Put a script in %s/", err, director.ScriptsDir)
		}
		scriptPath = latest
		fmt.Printf("[*] Selected script: %s\n", scriptPath)
	}
	script, err := director.ReadScript(scriptPath)
	if err != nil {
		return err
	}
	if !script.Canvas.Valid() {
		script.Canvas.Width, script.Canvas.Height = cfg.CanvasWidth, cfg.CanvasHeight
	}
	if script.Surface.Empty() {
		script.Surface.Width = script.Canvas.Width * cfg.ScaleRatio()
		script.Surface.Height = script.Canvas.Height * cfg.ScaleRatio()
	}

	d := director.NewDirector(cfg.FPS)
	if d.Split, err = effects.ParseSplitMode(cfg.TypewriterSplit); err != nil {
		return err
	}
	if cfg.PresetFile != "" {
		if d.Catalog, err = effects.ReadCatalog(cfg.PresetFile); err != nil {
			return err
		}
		fmt.Printf("[*] Loaded presets: %s\n", cfg.PresetFile)
	}
	defer d.Faces.Close()

	res, err := d.Run(script)
	if err != nil {
		return fmt.Errorf("replay: %w", err)
	}
	fmt.Printf("[*] Replayed %d events into %d frames (%d triggers ignored while busy)\n",
		len(script.Events), len(res.Snapshots), res.Rejected)
	for _, e := range res.Store.Elements() {
		fmt.Printf("[*]   %s/%s %q at (%.1f, %.1f) rot %.0f opacity %.2f anim %s\n",
			e.TrackID, e.ID, e.Content, e.X, e.Y, e.Rotation, e.Opacity, e.Animation)
	}
	if res.Observers != 0 || res.Timers != 0 {
		log.Printf("[!] Leaked %d pointer observers and %d timers after teardown", res.Observers, res.Timers)
	}

	var backdrop *image.RGBA
	if cfg.BackdropPath != "" {
		src, err := source.Open(cfg.BackdropPath)
		if err != nil {
			return fmt.Errorf("backdrop: %w", err)
		}
		backdrop, err = source.Backdrop(src, cfg.BackdropPage, cfg.DPI, cfg.Width, cfg.Height)
		src.Close()
		if err != nil {
			return fmt.Errorf("backdrop: %w", err)
		}
	}

	output := cfg.OutputVideo
	if output == "" && cfg.FramesDir == "" {
		output = defaultOutput(scriptPath)
	}
	encoder := cfg.VideoEncoder
	if encoder == "" {
		encoder = system.GetBestH264Encoder()
		if encoder != "libx264" {
			fmt.Printf("[*] Hardware acceleration detected: %s\n", encoder)
		}
	}
	quality := cfg.Quality
	if quality == 0 {
		quality = system.DefaultQuality(encoder)
	}
	params := video.Params{FPS: cfg.FPS, Encoder: encoder, Quality: quality}
	ve := &video.FFmpegEncoder{}

	frameCount := 0
	switch mode {
	case "raster":
		pool := system.NewFramePool()
		frames, err := director.RenderFrames(ctx, res, director.RenderOptions{
			Width: cfg.Width, Height: cfg.Height, Workers: cfg.Workers, Backdrop: backdrop, Pool: pool,
		})
		if err != nil {
			return fmt.Errorf("render: %w", err)
		}
		defer func() {
			for _, f := range frames {
				pool.Put(f)
			}
		}()
		frameCount = len(frames)

		if cfg.FramesDir != "" {
			if _, err := video.WritePNGSequence(cfg.FramesDir, frames); err != nil {
				return err
			}
			fmt.Printf("[*] Frames written to %s\n", cfg.FramesDir)
		}
		if output != "" {
			if err := ensureDir(output); err != nil {
				return err
			}
			if err := ve.EncodeFrames(ctx, frames, output, params); err != nil {
				return err
			}
		}

	case "filter":
		if output == "" {
			return fmt.Errorf("filter mode needs -out")
		}
		filter, err := d.DrawTextFilter(res, cfg.Width, cfg.Height, "")
		if err != nil {
			return err
		}
		if backdrop == nil {
			backdrop = source.Fit(image.NewRGBA(image.Rect(0, 0, 1, 1)), cfg.Width, cfg.Height)
		}
		last := res.Snapshots[len(res.Snapshots)-1].Time
		params.Filter = filter
		params.Duration = last.Seconds() + 1/float64(cfg.FPS)
		if err := ensureDir(output); err != nil {
			return err
		}
		if err := ve.EncodeFrames(ctx, []*image.RGBA{backdrop}, output, params); err != nil {
			return err
		}
		frameCount = len(res.Snapshots)

	default:
		return fmt.Errorf("unknown mode %q", mode)
	}

	if output != "" {
		fmt.Printf("[+++] Done! Result: %s\n", output)
	}

	if cfg.ShowStats {
		stats, err := system.Report(start, frameCount)
		if err != nil {
			log.Printf("[!] Incomplete performance report: %v", err)
		}
		fmt.Printf("[*] %s\n", stats)
	}
	return nil
}

func defaultOutput(scriptPath string) string {
	base := filepath.Base(scriptPath)
	name := strings.ReplaceAll(strings.TrimSuffix(base, filepath.Ext(base)), " ", "_")
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	return filepath.Join("output", fmt.Sprintf("%s_%s.mp4", name, timestamp))
}

func ensureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0755)
}
