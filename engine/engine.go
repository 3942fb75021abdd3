package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Carmen-Shannon/oxy-gl/engine/gpu"
	"github.com/Carmen-Shannon/oxy-gl/engine/mesh"
	"github.com/Carmen-Shannon/oxy-gl/engine/profiler"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-gl/engine/window"
)

// State is the frame loop lifecycle state.
type State int

const (
	// StateRunning is the initial state. The loop keeps drawing frames until the window
	// requests a close.
	StateRunning State = iota

	// StateStopped is terminal. Every registered resource has been disposed and the window closed.
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

var (
	// ErrStopped is returned by Run and Add once the loop has stopped.
	ErrStopped = errors.New("engine: stopped")

	// ErrRunning is returned by a nested Run call.
	ErrRunning = errors.New("engine: already running")

	// ErrNoWindow is returned by NewEngine without WithWindow.
	ErrNoWindow = errors.New("engine: no window")

	// ErrNoDevice is returned by NewEngine without WithDevice.
	ErrNoDevice = errors.New("engine: no device")

	// ErrNoProgram is returned by NewEngine without WithProgram.
	ErrNoProgram = errors.New("engine: no shader program")
)

// engine implements the Engine interface.
type engine struct {
	state   State
	running bool
	frames  uint64

	window  window.Window
	device  gpu.Device
	program shader.Program
	logger  *slog.Logger

	clearColor [4]float32

	profiler         *profiler.Profiler
	profilingEnabled bool

	renderCallback func(deltaTime float32)
	resizeCallback func(width, height int)

	renderables []mesh.Renderable

	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped
}

// Engine is the frame loop. It owns one window, one device and one shader program, draws every
// registered Renderable each frame and releases everything exactly once when the window closes.
type Engine interface {
	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Device returns the graphics device resources are created on.
	//
	// Returns:
	//   - gpu.Device: the device
	Device() gpu.Device

	// Program returns the program bound around every frame's draws.
	//
	// Returns:
	//   - shader.Program: the shader program
	Program() shader.Program

	// State returns the lifecycle state.
	State() State

	// Frames returns the number of completed frames.
	Frames() uint64

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetRenderCallback registers the function called each frame after the program is bound and
	// before any Renderable draws. Use it for uniform uploads.
	//
	// Parameters:
	//   - callback: function receiving the time since the previous frame in seconds
	SetRenderCallback(callback func(deltaTime float32))

	// SetRenderFrameLimit sets an optional frame rate cap in frames per second.
	// Pass 0 to uncap the loop (default).
	//
	// Parameters:
	//   - fps: maximum frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// Add registers a Renderable. Renderables draw in registration order and are disposed in
	// registration order when the loop stops.
	//
	// Parameters:
	//   - r: the renderable
	//
	// Returns:
	//   - error: ErrStopped if the loop has already stopped; r is not registered then
	Add(r mesh.Renderable) error

	// Renderables returns a copy of the registry in registration order.
	Renderables() []mesh.Renderable

	// Run draws frames until the window requests a close, then disposes every Renderable, the
	// program and the window. It blocks on the calling thread, which must own the graphics context.
	//
	// Returns:
	//   - error: ErrStopped if the loop already ran, ErrRunning for a nested call, or the
	//     *gpu.DriverStateError that aborted a frame
	Run() error

	// Quit requests a stop. The current frame completes and the loop stops before the next one.
	Quit()
}

var _ Engine = &engine{}

// NewEngine creates the frame loop. WithWindow, WithDevice and WithProgram are required.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine in StateRunning
//   - error: ErrNoWindow, ErrNoDevice or ErrNoProgram if a collaborator is missing
func NewEngine(options ...EngineBuilderOption) (Engine, error) {
	e := &engine{
		state:            StateRunning,
		logger:           slog.Default(),
		profilingEnabled: false,
	}
	for _, opt := range options {
		opt(e)
	}

	switch {
	case e.window == nil:
		return nil, ErrNoWindow
	case e.device == nil:
		return nil, ErrNoDevice
	case e.program == nil:
		return nil, ErrNoProgram
	}
	if e.profiler == nil {
		e.profiler = profiler.NewProfiler(profiler.WithLogger(e.logger))
	}

	e.window.SetResizeCallback(func(width, height int) {
		e.device.Viewport(0, 0, int32(width), int32(height))
		e.logger.Debug("engine: viewport resized", "width", width, "height", height)
		if e.resizeCallback != nil {
			e.resizeCallback(width, height)
		}
	})
	return e, nil
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Device() gpu.Device {
	return e.device
}

func (e *engine) Program() shader.Program {
	return e.program
}

func (e *engine) State() State {
	return e.state
}

func (e *engine) Frames() uint64 {
	return e.frames
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

func (e *engine) SetRenderCallback(callback func(deltaTime float32)) {
	e.renderCallback = callback
}

// SetRenderFrameLimit sets an optional frame rate cap.
// Pass 0 to uncap the loop.
func (e *engine) SetRenderFrameLimit(fps float64) {
	e.renderFrameLimit = frameDuration(fps)
}

func frameDuration(fps float64) time.Duration {
	if fps <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / fps)
}

func (e *engine) Add(r mesh.Renderable) error {
	if e.state == StateStopped {
		return ErrStopped
	}
	e.renderables = append(e.renderables, r)
	return nil
}

func (e *engine) Renderables() []mesh.Renderable {
	return append([]mesh.Renderable(nil), e.renderables...)
}

func (e *engine) Quit() {
	if e.state == StateRunning && e.window != nil {
		e.window.SetShouldClose(true)
	}
}

func (e *engine) Run() (err error) {
	if e.state == StateStopped {
		return ErrStopped
	}
	if e.running {
		return ErrRunning
	}
	e.running = true
	defer func() { e.running = false }()

	defer func() {
		if r := recover(); r != nil {
			err = e.abort(r)
		}
	}()

	e.device.ClearColor(e.clearColor[0], e.clearColor[1], e.clearColor[2], e.clearColor[3])
	e.device.Viewport(0, 0, int32(e.window.Width()), int32(e.window.Height()))
	e.logger.Info("engine: loop started", "renderables", len(e.renderables))

	lastFrame := time.Now()
	for !e.window.ShouldClose() {
		frameStart := time.Now()
		dt := float32(frameStart.Sub(lastFrame).Seconds())
		lastFrame = frameStart

		e.frame(dt)

		if e.profilingEnabled && e.profiler != nil {
			e.profiler.Tick()
		}
		if e.renderFrameLimit > 0 {
			if remaining := e.renderFrameLimit - time.Since(frameStart); remaining > 0 {
				time.Sleep(remaining)
			}
		}
	}

	e.teardown()
	e.logger.Info("engine: loop stopped", "frames", e.frames)
	return nil
}

// frame runs one iteration: clear, bind, draw everything, present, poll input, unbind.
func (e *engine) frame(dt float32) {
	e.device.Clear()
	e.program.Bind()
	if e.renderCallback != nil {
		e.renderCallback(dt)
	}
	for _, r := range e.renderables {
		r.Render()
	}
	e.window.SwapBuffers()
	e.window.PollEvents()
	e.program.Unbind()
	e.frames++
}

// teardown disposes every Renderable in registration order, then the program, then closes
// the window. It runs at most once.
func (e *engine) teardown() {
	if e.state == StateStopped {
		return
	}
	e.state = StateStopped
	for _, r := range e.renderables {
		r.Dispose()
	}
	e.program.Dispose()
	if err := e.window.Close(); err != nil {
		e.logger.Warn("engine: closing window", "err", err)
	}
}

// abort converts a panic raised during a frame into Run's error and releases what it can.
func (e *engine) abort(r any) error {
	var err error
	if dse, ok := r.(*gpu.DriverStateError); ok {
		err = fmt.Errorf("engine: frame %d: %w", e.frames, dse)
	} else {
		err = fmt.Errorf("engine: frame %d: panic: %v", e.frames, r)
	}
	e.logger.Error("engine: frame aborted", "err", err)

	func() {
		defer func() {
			if r := recover(); r != nil {
				e.logger.Error("engine: teardown after abort failed", "err", r)
			}
		}()
		e.teardown()
	}()
	e.state = StateStopped
	return err
}
