package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/term"

	"github.com/menta2k/easyclip"
	"github.com/menta2k/easyclip/internal/config"
	"github.com/menta2k/easyclip/internal/utils"
	"github.com/menta2k/easyclip/pkg/clip"
	"github.com/menta2k/easyclip/pkg/geom"
	"github.com/menta2k/easyclip/pkg/types"
)

func main() {
	var in, scriptPath, configPath, outDir, ext, preview string
	var quality int
	var full, snap, verbose, initConfig bool

	flag.StringVar(&in, "in", "", "input photo path or file:// URI (jpg/png/webp)")
	flag.StringVar(&scriptPath, "script", "", "JSON gesture script to replay; '-' or a piped stdin reads it from stdin")
	flag.StringVar(&configPath, "config", "", "config file (default "+config.GetConfigPath()+" if present)")
	flag.StringVar(&outDir, "out", "", "output directory for clips (overrides config)")
	flag.StringVar(&ext, "ext", "", "clip format: jpg|png|webp (overrides config)")
	flag.IntVar(&quality, "quality", 0, "JPEG/WebP clip quality 1-100 (overrides config)")
	flag.StringVar(&preview, "preview", "", "also write the on-screen view with mask and border to this file")
	flag.BoolVar(&full, "full", false, "extract the clip from source pixels instead of the view render")
	flag.BoolVar(&snap, "snap", false, "skip the settle animation after gestures")
	flag.BoolVar(&verbose, "v", false, "log library events to stderr")
	flag.BoolVar(&initConfig, "init-config", false, "write the default config file and exit")

	flag.Parse()

	if initConfig {
		path := configPath
		if path == "" {
			path = config.GetConfigPath()
		}
		if err := config.Default().SaveToFile(path); err != nil {
			log.Fatal(err)
		}
		log.Printf("wrote %s", path)
		return
	}

	if in == "" {
		log.Fatalf("usage: %s -in photo.jpg [-script gestures.json] [-out dir] [-ext jpg|png|webp] [-preview view.png] [-v]", filepath.Base(os.Args[0]))
	}

	if verbose {
		easyclip.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		log.Fatal(err)
	}
	if outDir != "" {
		cfg.Output.Dir = outDir
	}
	if ext != "" {
		cfg.Output.Format = ext
	}
	if quality != 0 {
		cfg.Output.Quality = quality
	}
	if full {
		cfg.Cropper.FullResolution = true
	}
	if snap {
		cfg.Clip.SnapImmediately = true
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	script, err := readScript(scriptPath)
	if err != nil {
		log.Fatal(err)
	}

	clock := easyclip.NewVirtualClock(time.Now())
	clipper := easyclip.New(easyclip.OptionsFromConfig(cfg), clip.WithClock(clock.Now))

	// Lay the widget out: crop window inset by the margin, height from the aspect ratio.
	viewW, viewH := float64(cfg.View.Width), float64(cfg.View.Height)
	margin := float64(cfg.View.Margin)
	clipper.SetViewSize(viewW, viewH)
	if err := clipper.Controller().SetCropWindowWidth(geom.Pt(margin, 0), viewW-2*margin); err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	if err := clipper.Load(ctx, in, true); err != nil {
		log.Fatal(err)
	}
	src, _ := clipper.Controller().Source()
	log.Printf("loaded %s: %dx%d (sample size %d)", in, src.Width, src.Height, src.SampleSize)

	if err := clipper.Replay(ctx, script, clock); err != nil {
		log.Fatalf("replay failed: %v", err)
	}
	log.Printf("replayed %d steps, transform %v", len(script.Steps), clipper.Transform())

	if preview != "" {
		if err := clipper.SavePreview(preview); err != nil {
			log.Printf("preview save failed: %v", err)
		} else {
			log.Printf("wrote %s", preview)
		}
	}

	result, err := clipper.Clip()
	if err != nil {
		log.Fatal(err)
	}
	if info, err := os.Stat(result.Path); err == nil {
		log.Printf("wrote %s (%dx%d, %s)", result.Path, result.Width, result.Height, utils.FormatFileSize(info.Size()))
	}

	js, _ := json.MarshalIndent(result, "", "  ")
	fmt.Println(string(js))
}

// loadConfig reads path, or the default config file when path is empty and
// one exists, falling back to built-in defaults.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		path = config.GetConfigPath()
		if !utils.FileExists(path) {
			return config.Default(), nil
		}
	}
	return config.LoadFromFile(path)
}

// readScript loads the gesture script from path, or from stdin when path is
// "-" or stdin is not a terminal. No script is an empty one.
func readScript(path string) (types.GestureScript, error) {
	var script types.GestureScript

	var r io.Reader
	switch {
	case path == "-":
		r = os.Stdin
	case path != "":
		f, err := os.Open(path)
		if err != nil {
			return script, fmt.Errorf("failed to open script: %w", err)
		}
		defer f.Close()
		r = f
	case !term.IsTerminal(int(os.Stdin.Fd())):
		r = os.Stdin
	default:
		return script, nil
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return script, fmt.Errorf("failed to read script: %w", err)
	}
	if len(data) == 0 {
		return script, nil
	}
	if err := json.Unmarshal(data, &script); err != nil {
		return script, fmt.Errorf("failed to parse script: %w", err)
	}
	return script, nil
}
