package main

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine"
	"github.com/Carmen-Shannon/oxy-gl/engine/config"
	"github.com/Carmen-Shannon/oxy-gl/engine/gpu"
	"github.com/Carmen-Shannon/oxy-gl/engine/gpu/gldevice"
	"github.com/Carmen-Shannon/oxy-gl/engine/gpu/headless"
	"github.com/Carmen-Shannon/oxy-gl/engine/loader"
	"github.com/Carmen-Shannon/oxy-gl/engine/mesh"
	"github.com/Carmen-Shannon/oxy-gl/engine/preflight"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-gl/engine/window"
	"github.com/go-gl/mathgl/mgl32"
)

// spinStep is the change in rotation speed per Q/E press, in radians per second.
const spinStep = 0.5

// demo drives the uniforms of the demo shaders and reacts to keys.
type demo struct {
	program shader.Program
	logger  *slog.Logger

	transform  gpu.UniformLocation
	brightness gpu.UniformLocation
	tint       gpu.UniformLocation
	enabled    gpu.UniformLocation

	elapsed float32
	angle   float32
	spin    float32
	lit     bool
}

func newDemo(p shader.Program, logger *slog.Logger) *demo {
	return &demo{
		program:    p,
		logger:     logger,
		transform:  p.UniformLocation("transform"),
		brightness: p.UniformLocation("brightness"),
		tint:       p.UniformLocation("tint"),
		enabled:    p.UniformLocation("enabled"),
		lit:        true,
	}
}

// update uploads the frame's uniforms. Uniforms the program does not declare are skipped.
func (d *demo) update(dt float32) {
	d.elapsed += dt
	d.angle += d.spin * dt

	if d.transform != gpu.UnknownLocation {
		d.program.LoadMatrix(d.transform, mgl32.HomogRotate3DZ(d.angle))
	}
	if d.brightness != gpu.UnknownLocation {
		d.program.LoadFloat(d.brightness, 0.75+0.25*float32(math.Sin(float64(d.elapsed))))
	}
	if d.tint != gpu.UnknownLocation {
		d.program.LoadVector(d.tint, mgl32.Vec3{1, 0.6, 0.2})
	}
	if d.enabled != gpu.UnknownLocation {
		d.program.LoadBoolean(d.enabled, d.lit)
	}
}

// onKey toggles the texture-coordinate shading with Space and changes the spin with Q and E.
func (d *demo) onKey(key uint32, action window.KeyAction) {
	d.logger.Debug("oxygl: key", "key", common.KeyName(key), "action", action)
	if action != window.KeyPress {
		return
	}
	switch key {
	case common.KeySpace:
		d.lit = !d.lit
	case common.KeyQ:
		d.spin += spinStep
	case common.KeyE:
		d.spin -= spinStep
	}
}

// openContext creates the window and the device bound to its context.
func openContext(cfg *config.Config, logger *slog.Logger, headlessRun bool) (window.Window, gpu.Device, error) {
	opts := []window.WindowBuilderOption{
		window.WithTitle(cfg.Window.Title),
		window.WithWidth(cfg.Window.Width),
		window.WithHeight(cfg.Window.Height),
		window.WithVSync(config.Bool(cfg.Window.VSync, true)),
		window.WithResizable(config.Bool(cfg.Window.Resizable, true)),
		window.WithLogger(logger),
	}

	if headlessRun {
		w := window.NewHeadlessWindow(append(opts, window.WithFrameBudget(cfg.Headless.Frames))...)
		return w, headless.New(headless.WithLogger(logger)), nil
	}

	w, err := window.NewWindow(opts...)
	if err != nil {
		return nil, nil, err
	}
	dev, err := gldevice.New(gldevice.WithLogger(logger))
	if err != nil {
		_ = w.Close()
		return nil, nil, err
	}
	return w, dev, nil
}

// runDemo builds the configured program and meshes and runs the frame loop until the window
// closes. Everything built before a failure is released before returning.
func runDemo(cfg *config.Config, src loader.Source, logger *slog.Logger, headlessRun bool) error {
	win, dev, err := openContext(cfg, logger, headlessRun)
	if err != nil {
		return fmt.Errorf("opening window: %w", err)
	}

	program, err := preflight.BuildProgram(dev, src, cfg.Program, shader.WithLogger(logger))
	if err != nil {
		_ = win.Close()
		return err
	}

	var renderables []mesh.Renderable
	release := func() {
		for _, r := range renderables {
			r.Dispose()
		}
		program.Dispose()
		_ = win.Close()
	}
	for _, mc := range cfg.Meshes {
		r, err := preflight.BuildMesh(dev, mc, mesh.WithLogger(logger))
		if err != nil {
			release()
			return err
		}
		renderables = append(renderables, r)
	}

	d := newDemo(program, logger)
	win.SetKeyCallback(d.onKey)

	opts := []engine.EngineBuilderOption{
		engine.WithWindow(win),
		engine.WithDevice(dev),
		engine.WithProgram(program),
		engine.WithLogger(logger),
		engine.WithClearColor(cfg.Clear().RGBA()),
		engine.WithProfiling(cfg.Profiling),
		engine.WithRenderFrameLimit(cfg.FrameLimit),
		engine.WithRenderCallback(d.update),
	}
	for _, r := range renderables {
		opts = append(opts, engine.WithRenderable(r))
	}
	eng, err := engine.NewEngine(opts...)
	if err != nil {
		release()
		return err
	}
	return eng.Run()
}
