// Command oxygl opens a window and draws the configured meshes with one shader program until the
// window is closed or Escape is released.
//
//	oxygl run   [-config file] [-assets dir] [-headless] [-frames n] [-profile] [-fps n]
//	oxygl check [-config file] [-assets dir]
package main

import (
	"embed"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"

	"github.com/Carmen-Shannon/oxy-gl/engine/config"
	"github.com/Carmen-Shannon/oxy-gl/engine/loader"
	"github.com/Carmen-Shannon/oxy-gl/engine/preflight"
)

//go:embed shaders
var shaderFS embed.FS

// defaultHeadlessFrames bounds a headless run whose configuration sets no frame budget.
const defaultHeadlessFrames = 120

func init() {
	// GLFW and the GL context must stay on the main thread.
	runtime.LockOSThread()
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// options are the flags shared by every command.
type options struct {
	configPath string
	assets     string
	logLevel   string
	headless   bool
	frames     int
	profile    bool
	fps        float64
	title      string
	width      int
	height     int
}

func newFlagSet(name string, stderr io.Writer) (*flag.FlagSet, *options) {
	o := &options{}
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.configPath, "config", "", "YAML configuration file (default: built-in textured quad)")
	fs.StringVar(&o.assets, "assets", "", "directory shader names are resolved against (default: embedded shaders)")
	fs.StringVar(&o.logLevel, "log-level", "", "log level: debug, info, warn or error")
	fs.BoolVar(&o.headless, "headless", false, "run without a window on the software device")
	fs.IntVar(&o.frames, "frames", 0, "frame budget of a headless run")
	fs.BoolVar(&o.profile, "profile", false, "log frame rate and memory statistics")
	fs.Float64Var(&o.fps, "fps", 0, "frame rate cap, 0 for uncapped")
	fs.StringVar(&o.title, "title", "", "window title")
	fs.IntVar(&o.width, "width", 0, "window width")
	fs.IntVar(&o.height, "height", 0, "window height")
	return fs, o
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: oxygl <run|check> [flags]")
	fmt.Fprintln(w, "  run    open the window and draw until it closes")
	fmt.Fprintln(w, "  check  build and draw every configured program and mesh on a software device")
}

// run dispatches a command and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		usage(stderr)
		return 2
	}

	cmd := args[0]
	fs, o := newFlagSet(cmd, stderr)
	switch cmd {
	case "run", "check":
	case "-h", "-help", "--help", "help":
		usage(stdout)
		return 0
	default:
		fmt.Fprintf(stderr, "oxygl: unknown command %q\n", cmd)
		usage(stderr)
		return 2
	}
	if err := fs.Parse(args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	cfg, err := loadConfig(fs, o)
	if err != nil {
		fmt.Fprintf(stderr, "oxygl: %v\n", err)
		return 1
	}
	lvl, _ := cfg.Level()
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)

	src := shaderSource(o.assets, logger)
	if err := src.Preload(cfg.Program.Vertex, cfg.Program.Fragment); err != nil {
		logger.Error("oxygl: shader sources unavailable", "err", err)
		return 1
	}

	switch cmd {
	case "check":
		err = checkCommand(cfg, src, logger, stdout)
	case "run":
		err = runDemo(cfg, src, logger, o.headless)
	}
	if err != nil {
		logger.Error("oxygl: "+cmd+" failed", "err", err)
		return 1
	}
	return 0
}

// loadConfig reads the configuration and applies every flag that was set explicitly.
func loadConfig(fs *flag.FlagSet, o *options) (*config.Config, error) {
	cfg := config.Default()
	if o.configPath != "" {
		loaded, err := config.Load(o.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "log-level":
			cfg.LogLevel = o.logLevel
		case "frames":
			cfg.Headless.Frames = o.frames
		case "profile":
			cfg.Profiling = o.profile
		case "fps":
			cfg.FrameLimit = o.fps
		case "title":
			cfg.Window.Title = o.title
		case "width":
			cfg.Window.Width = o.width
		case "height":
			cfg.Window.Height = o.height
		}
	})
	if o.headless && cfg.Headless.Frames == 0 {
		cfg.Headless.Frames = defaultHeadlessFrames
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func shaderSource(assets string, logger *slog.Logger) loader.Loader {
	if assets != "" {
		return loader.NewLoader(loader.BackendTypeDir, loader.WithRoot(assets), loader.WithLogger(logger))
	}
	return loader.NewLoader(loader.BackendTypeFS, loader.WithFS(shaderFS), loader.WithLogger(logger))
}

func checkCommand(cfg *config.Config, src loader.Source, logger *slog.Logger, stdout io.Writer) error {
	report := preflight.NewChecker(src, preflight.WithLogger(logger)).Check(cfg)
	for _, r := range report.Results {
		status := "ok"
		if !r.OK() {
			status = "FAIL"
		}
		line := fmt.Sprintf("%-4s %-7s %s", status, r.Kind, r.Name)
		if r.Draw != nil {
			line += fmt.Sprintf(" (%d indices)", r.Draw.Count)
		}
		fmt.Fprintln(stdout, line)
		for _, w := range r.Warnings {
			fmt.Fprintf(stdout, "     warning: %s\n", w)
		}
		if r.Err != nil {
			fmt.Fprintf(stdout, "     %v\n", r.Err)
		}
	}
	return report.Err()
}
