package main

import (
	"flag"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"

	"medrender/internal/debounce"
	"medrender/pkg/colorbar"
	"medrender/pkg/colormap"
	"medrender/pkg/config"
	"medrender/pkg/imagedata"
	"medrender/pkg/render"
	"medrender/pkg/voi"
)

// options collects the parsed command line
type options struct {
	inputPath    string
	rawPath      string
	rawWidth     int
	rawHeight    int
	rawSigned    bool
	outputPath   string
	windowCenter float64
	windowWidth  float64
	preset       string
	autoMethod   string
	invert       bool
	invertSet    bool
	colormapName string
	scaleFactor  float64
	interpMode   string
	colorbarPath string
	configPath   string
	watch        bool
}

func main() {
	// Parse command line arguments
	inputPath := flag.String("input", "", "Input image (PNG or JPEG)")
	rawPath := flag.String("raw", "", "Input raw little-endian 16-bit pixel file (requires -width and -height)")
	rawWidth := flag.Int("width", 0, "Raw input width in pixels")
	rawHeight := flag.Int("height", 0, "Raw input height in pixels")
	rawSigned := flag.Bool("signed", false, "Interpret raw pixels as signed 16-bit")
	outputPath := flag.String("output", "output.png", "Output image filename (.png, .jpg or .jpeg)")
	windowCenter := flag.Float64("wc", 0, "Window center (requires -ww)")
	windowWidth := flag.Float64("ww", 0, "Window width (requires -wc)")
	preset := flag.String("preset", "", "Named window preset (e.g. ct-lung, ct-bone)")
	autoMethod := flag.String("auto", "", "Auto-window method when no window is given: minmax or percentile")
	invert := flag.Bool("invert", false, "Invert the display range")
	colormapName := flag.String("colormap", "", "Colormap for pseudo-color output (default from config)")
	scaleFactor := flag.Float64("scale", 1.0, "Output scale factor")
	interpMode := flag.String("interp", "bilinear", "Scaling interpolation: nearest, bilinear or catmullrom")
	colorbarPath := flag.String("colorbar", "", "Also render the color-scale bar to this file")
	configPath := flag.String("config", "medrender.yaml", "Configuration file path")
	watch := flag.Bool("watch", false, "Watch the config file and re-render on change")
	initConfig := flag.Bool("init-config", false, "Write a default config file to the -config path and exit")
	flag.Parse()

	if *initConfig {
		if err := config.CreateDefaultConfigFile(*configPath); err != nil {
			log.Fatalf("Failed to create config file: %v", err)
		}
		fmt.Printf("Default configuration written to %s\n", *configPath)
		return
	}

	opts := &options{
		inputPath:    *inputPath,
		rawPath:      *rawPath,
		rawWidth:     *rawWidth,
		rawHeight:    *rawHeight,
		rawSigned:    *rawSigned,
		outputPath:   *outputPath,
		windowCenter: *windowCenter,
		windowWidth:  *windowWidth,
		preset:       *preset,
		autoMethod:   *autoMethod,
		invert:       *invert,
		colormapName: *colormapName,
		scaleFactor:  *scaleFactor,
		interpMode:   *interpMode,
		colorbarPath: *colorbarPath,
		configPath:   *configPath,
		watch:        *watch,
	}
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "invert" {
			opts.invertSet = true
		}
	})

	// Validate inputs
	if opts.inputPath == "" && opts.rawPath == "" {
		flag.Usage()
		os.Exit(1)
	}
	if opts.inputPath != "" && opts.rawPath != "" {
		log.Fatalf("Use either -input or -raw, not both")
	}
	if opts.rawPath != "" && (opts.rawWidth <= 0 || opts.rawHeight <= 0) {
		log.Fatalf("-raw requires positive -width and -height")
	}
	if opts.windowWidth < 0 {
		log.Fatalf("-ww must be positive")
	}
	if opts.windowCenter != 0 && opts.windowWidth == 0 {
		log.Fatalf("-wc requires a positive -ww")
	}

	img, err := loadImage(opts)
	if err != nil {
		log.Fatalf("Failed to load input: %v", err)
	}

	fmt.Println("================================")
	fmt.Println("MEDRENDER - CPU DISPLAY PIPELINE")
	fmt.Println("================================")
	fmt.Printf("Loaded %dx%d image, stored range [%d, %d]\n",
		img.Width, img.Height, img.MinPixelValue, img.MaxPixelValue)

	if err := renderOnce(opts, img); err != nil {
		log.Fatalf("Rendering failed: %v", err)
	}

	if opts.watch {
		if err := watchConfig(opts, img); err != nil {
			log.Fatalf("Watch mode failed: %v", err)
		}
	}
}

// loadImage reads the input file into an Image
func loadImage(opts *options) (*imagedata.Image, error) {
	if opts.rawPath != "" {
		file, err := os.Open(opts.rawPath)
		if err != nil {
			return nil, fmt.Errorf("opening raw input: %w", err)
		}
		defer file.Close()

		return imagedata.ReadRaw(file, opts.rawWidth, opts.rawHeight, opts.rawSigned)
	}

	file, err := os.Open(opts.inputPath)
	if err != nil {
		return nil, fmt.Errorf("opening input image: %w", err)
	}
	defer file.Close()

	decoded, format, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("decoding input image: %w", err)
	}
	fmt.Printf("Decoded %s input: %s\n", format, opts.inputPath)

	return imagedata.FromGray(decoded)
}

// buildViewport resolves the window from flags, presets, or the configured
// auto method
func buildViewport(opts *options, cfg *config.Config, img *imagedata.Image) (*imagedata.Viewport, error) {
	vp := &imagedata.Viewport{Invert: cfg.Display.Invert}
	if opts.invertSet {
		vp.Invert = opts.invert
	}

	switch {
	case opts.windowWidth > 0:
		vp.VOI = &imagedata.Window{Center: opts.windowCenter, Width: opts.windowWidth}

	case opts.preset != "":
		p, ok := cfg.FindPreset(opts.preset)
		if !ok {
			return nil, fmt.Errorf("unknown preset %q", opts.preset)
		}
		w := p.Window
		vp.VOI = &w
		fmt.Printf("Using preset %s (%s): center %g, width %g\n", p.Name, p.Modality, w.Center, w.Width)

	default:
		method := opts.autoMethod
		if method == "" {
			method = cfg.AutoVOI.Method
		}
		switch method {
		case "minmax":
			// Left nil; the display LUT cache derives the full-range
			// window on its miss path.
		case "percentile":
			w, err := voi.AutoPercentile(img, cfg.AutoVOI.LowerQuantile, cfg.AutoVOI.UpperQuantile)
			if err != nil {
				return nil, err
			}
			vp.VOI = &w
			fmt.Printf("Percentile window: center %g, width %g\n", w.Center, w.Width)
		default:
			return nil, fmt.Errorf("unknown auto-window method %q", method)
		}
	}

	return vp, nil
}

// renderOnce runs the full pipeline: config, viewport, frame, scaling,
// output, and the optional colorbar
func renderOnce(opts *options, img *imagedata.Image) error {
	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		return err
	}
	if err := cfg.RegisterColormaps(); err != nil {
		return err
	}

	vp, err := buildViewport(opts, cfg, img)
	if err != nil {
		return err
	}

	name := opts.colormapName
	if name == "" {
		name = cfg.Display.DefaultColormap
	}
	cm, ok := colormap.ByName(name)
	if !ok {
		return fmt.Errorf("unknown colormap %q (available: %s)", name, strings.Join(colormap.Names(), ", "))
	}

	startTime := time.Now()

	// Config changes in watch mode can move the window or colormap under an
	// unchanged viewport object, so force regeneration each pass.
	var frame image.Image
	if strings.EqualFold(cm.Name, "grayscale") {
		frame, err = render.Grayscale(img, vp, true)
	} else {
		frame, err = render.Pseudo(img, vp, cm, true)
	}
	if err != nil {
		return err
	}

	if opts.scaleFactor != 1.0 {
		if opts.scaleFactor <= 0 {
			return fmt.Errorf("scale factor %g must be positive", opts.scaleFactor)
		}
		mode, err := render.ParseInterpolation(opts.interpMode)
		if err != nil {
			return err
		}
		width := int(float64(img.Width) * opts.scaleFactor)
		height := int(float64(img.Height) * opts.scaleFactor)
		frame, err = render.Scale(frame, width, height, mode)
		if err != nil {
			return err
		}
	}

	if err := render.SaveImage(frame, opts.outputPath, cfg.Display.JPEGQuality); err != nil {
		return err
	}
	fmt.Printf("Rendered %s in %.3f seconds\n", opts.outputPath, time.Since(startTime).Seconds())

	if opts.colorbarPath != "" {
		bar := colorbar.New(cm, 64, 512)
		barFrame, err := bar.Render(vp)
		if err != nil {
			return err
		}
		if err := render.SaveImage(barFrame, opts.colorbarPath, cfg.Display.JPEGQuality); err != nil {
			return err
		}
		fmt.Printf("Colorbar saved to %s\n", opts.colorbarPath)
	}

	return nil
}

// watchConfig re-renders with a short debounce whenever the config file
// changes, until interrupted
func watchConfig(opts *options, img *imagedata.Image) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory; editors often replace the file, which drops a
	// watch on the path itself.
	dir := filepath.Dir(opts.configPath)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	rerender := debounce.New(250*time.Millisecond, func() {
		fmt.Println("Config changed, re-rendering...")
		if err := renderOnce(opts, img); err != nil {
			log.Printf("Re-render failed: %v", err)
		}
	})
	defer rerender.Stop()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	fmt.Printf("Watching %s for changes (Ctrl-C to stop)\n", opts.configPath)
	target := filepath.Clean(opts.configPath)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				rerender.Trigger()
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("Watch error: %v", err)

		case <-stop:
			fmt.Println("\nStopping watch mode")
			return nil
		}
	}
}
