// Package preflight validates a configuration before any window opens. Every shader program
// and mesh is built, drawn once and released on its own headless device, and the checks run
// in parallel on a worker pool.
package preflight

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-gl/engine/config"
	"github.com/Carmen-Shannon/oxy-gl/engine/gpu"
	"github.com/Carmen-Shannon/oxy-gl/engine/gpu/headless"
	"github.com/Carmen-Shannon/oxy-gl/engine/loader"
	"github.com/Carmen-Shannon/oxy-gl/engine/mesh"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/shader"
)

// CheckKind tells what a Result validated.
type CheckKind string

const (
	CheckProgram CheckKind = "program"
	CheckMesh    CheckKind = "mesh"
)

// Result is the outcome of one check.
type Result struct {
	// Index is the position of the check in the report: the program first, then meshes in
	// configuration order.
	Index int
	Kind  CheckKind
	Name  string

	// Draw is the recorded draw of a mesh check.
	Draw *headless.DrawCall

	// Leaked counts device objects still alive after every dispose ran.
	Leaked int

	Warnings []string
	Err      error
}

// OK reports whether the check passed.
func (r Result) OK() bool {
	return r.Err == nil && r.Leaked == 0
}

// Report collects the results of a Check call in index order.
type Report struct {
	Results []Result
}

// Err joins the errors of every failed check, or returns nil.
//
// Returns:
//   - error: the joined errors, each prefixed with the check kind and name
func (r Report) Err() error {
	var errs []error
	for _, res := range r.Results {
		switch {
		case res.Err != nil:
			errs = append(errs, fmt.Errorf("%s %q: %w", res.Kind, res.Name, res.Err))
		case res.Leaked > 0:
			errs = append(errs, fmt.Errorf("%s %q: %d object(s) leaked", res.Kind, res.Name, res.Leaked))
		}
	}
	return errors.Join(errs...)
}

// Checker runs the checks of a configuration.
type Checker struct {
	src      loader.Source
	logger   *slog.Logger
	workers  int
	snippets map[string]string
	devOpts  []headless.DeviceBuilderOption
	newPool  func(workers int) worker.DynamicWorkerPool
}

func newPool(workers int) worker.DynamicWorkerPool {
	return worker.NewDynamicWorkerPool(workers, 256, 1*time.Second)
}

// NewChecker creates a Checker reading shader text from src. The worker count defaults to
// one less than the number of CPUs, at least 1.
//
// Parameters:
//   - src: the shader source collaborator
//   - opts: variadic list of CheckerOption functions
//
// Returns:
//   - *Checker: the checker
func NewChecker(src loader.Source, opts ...CheckerOption) *Checker {
	c := &Checker{
		src:      src,
		logger:   slog.Default(),
		workers:  max(runtime.NumCPU()-1, 1),
		snippets: make(map[string]string),
		newPool:  newPool,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Check validates the program and every mesh of cfg. It blocks until every check finished.
// The worker pool lives for one call and is stopped before Check returns.
//
// Parameters:
//   - cfg: a normalized configuration
//
// Returns:
//   - Report: one Result per check, program first
func (c *Checker) Check(cfg *config.Config) Report {
	results := make([]Result, 1+len(cfg.Meshes))
	pool := c.newPool(c.workers)
	defer pool.Stop()

	var wg sync.WaitGroup
	submit := func(idx int, kind CheckKind, name string, check func(*Result)) {
		wg.Add(1)
		pool.SubmitTask(worker.Task{
			ID: idx,
			Do: func() (any, error) {
				defer wg.Done()
				res := &results[idx]
				res.Index, res.Kind, res.Name = idx, kind, name
				c.run(res, check)
				return nil, nil
			},
		})
	}

	submit(0, CheckProgram, cfg.Program.Label, func(res *Result) {
		c.checkProgram(res, cfg.Program)
	})
	for i, m := range cfg.Meshes {
		submit(i+1, CheckMesh, m.Label, func(res *Result) {
			c.checkMesh(res, cfg.Program, m)
		})
	}
	wg.Wait()

	report := Report{Results: results}
	failed := 0
	for _, r := range results {
		if !r.OK() {
			failed++
		}
		for _, w := range r.Warnings {
			c.logger.Warn("preflight: "+w, "kind", r.Kind, "name", r.Name)
		}
	}
	c.logger.Info("preflight: done", "checks", len(results), "failed", failed)
	return report
}

// run executes one check, turning a driver state panic into the result's error.
func (c *Checker) run(res *Result, check func(*Result)) {
	defer func() {
		if r := recover(); r != nil {
			if dse, ok := r.(*gpu.DriverStateError); ok {
				res.Err = dse
				return
			}
			res.Err = fmt.Errorf("panic: %v", r)
		}
	}()
	check(res)
}

func (c *Checker) device() headless.Device {
	opts := append([]headless.DeviceBuilderOption{headless.WithLogger(c.logger)}, c.devOpts...)
	return headless.New(opts...)
}

func (c *Checker) checkProgram(res *Result, pc config.ProgramConfig) {
	dev := c.device()
	p, err := BuildProgram(dev, c.src, pc, c.programOptions()...)
	if err != nil {
		res.Err = err
		return
	}
	for _, a := range pc.Attributes {
		if _, ok := dev.AttributeLocation(p.Handle(), a.Name); !ok {
			res.Warnings = append(res.Warnings, fmt.Sprintf("attribute %q is not an active input", a.Name))
		}
	}
	p.Bind()
	p.Unbind()
	p.Dispose()
	res.Leaked = dev.LiveObjects()
}

func (c *Checker) checkMesh(res *Result, pc config.ProgramConfig, mc config.MeshConfig) {
	dev := c.device()
	p, err := BuildProgram(dev, c.src, pc, c.programOptions()...)
	if err != nil {
		res.Err = fmt.Errorf("program unavailable: %w", err)
		return
	}
	defer func() { res.Leaked = dev.LiveObjects() }()
	defer p.Dispose()

	r, err := BuildMesh(dev, mc, mesh.WithLogger(c.logger))
	if err != nil {
		res.Err = err
		return
	}
	p.Bind()
	r.Render()
	p.Unbind()
	r.Dispose()

	draws := dev.Draws()
	if len(draws) != 1 {
		res.Err = fmt.Errorf("expected 1 draw, recorded %d", len(draws))
		return
	}
	d := draws[0]
	res.Draw = &d
	for _, slot := range d.UnbackedSlots {
		res.Warnings = append(res.Warnings, fmt.Sprintf("slot %d is enabled without data", slot))
	}
}

func (c *Checker) programOptions() []shader.ProgramBuilderOption {
	opts := []shader.ProgramBuilderOption{shader.WithLogger(c.logger)}
	for k, v := range c.snippets {
		opts = append(opts, shader.WithSnippet(k, v))
	}
	return opts
}

// BuildProgram compiles and links the configured program pair with its attribute bindings.
//
// Parameters:
//   - dev: the device
//   - src: the shader source collaborator
//   - pc: the program configuration
//   - opts: extra program options applied after the configured ones
//
// Returns:
//   - shader.Program: the linked program
//   - error: *loader.ResourceLoadError, *shader.CompileError or *shader.LinkError
func BuildProgram(dev gpu.Device, src loader.Source, pc config.ProgramConfig, opts ...shader.ProgramBuilderOption) (shader.Program, error) {
	all := []shader.ProgramBuilderOption{shader.WithLabel(pc.Label)}
	for _, a := range pc.Attributes {
		all = append(all, shader.WithAttribute(a.Slot, a.Name))
	}
	return shader.Build(dev, src, pc.Vertex, pc.Fragment, append(all, opts...)...)
}

// BuildMesh uploads one configured mesh.
//
// Parameters:
//   - dev: the device
//   - mc: the mesh configuration
//   - opts: extra mesh options applied after the configured ones
//
// Returns:
//   - mesh.Renderable: a *mesh.ColoredMesh or *mesh.TexturedMesh
//   - error: *mesh.DataError if the data is rejected
func BuildMesh(dev gpu.Device, mc config.MeshConfig, opts ...mesh.MeshBuilderOption) (mesh.Renderable, error) {
	all := []mesh.MeshBuilderOption{mesh.WithLabel(mc.Label)}
	if mc.PositionSize != 0 {
		all = append(all, mesh.WithPositionSize(mc.PositionSize))
	}
	switch mc.Kind {
	case config.MeshKindTextured:
		if mc.TexCoords != nil {
			all = append(all, mesh.WithTexCoords(mc.TexCoords))
		}
		m, err := mesh.NewTexturedMesh(dev, mc.Positions, mc.Indices, append(all, opts...)...)
		if err != nil {
			return nil, err
		}
		return m, nil
	case config.MeshKindColored:
		m, err := mesh.NewColoredMesh(dev, mc.Positions, mc.Colors, mc.Indices, append(all, opts...)...)
		if err != nil {
			return nil, err
		}
		return m, nil
	default:
		return nil, fmt.Errorf("%w: mesh %q has unknown kind %q", config.ErrInvalid, mc.Label, mc.Kind)
	}
}
