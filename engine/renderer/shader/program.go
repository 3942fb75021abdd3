// Package shader compiles GLSL stages into linked programs and uploads uniform values.
package shader

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/Carmen-Shannon/oxy-gl/engine/gpu"
	"github.com/Carmen-Shannon/oxy-gl/engine/loader"
	"github.com/go-gl/mathgl/mgl32"
)

// Program is a vertex and fragment stage pair linked into one executable program.
//
// The lifecycle is: NewProgram, AttachVertexShader and AttachFragmentShader, optional
// BindAttribute calls, Link, then any number of Bind/Unbind cycles, then Dispose.
type Program interface {
	// AttachVertexShader reads, pre-processes and compiles the named vertex stage and attaches it.
	//
	// Parameters:
	//   - name: the resource name of the stage text
	//
	// Returns:
	//   - error: a *loader.ResourceLoadError, a pre-processing error, a *CompileError or ErrStageAttached
	AttachVertexShader(name string) error

	// AttachFragmentShader reads, pre-processes and compiles the named fragment stage and attaches it.
	//
	// Parameters:
	//   - name: the resource name of the stage text
	//
	// Returns:
	//   - error: a *loader.ResourceLoadError, a pre-processing error, a *CompileError or ErrStageAttached
	AttachFragmentShader(name string) error

	// BindAttribute binds a vertex input name to an attribute slot. Takes effect at the next Link.
	//
	// Parameters:
	//   - slot: the attribute location
	//   - name: the vertex input name
	BindAttribute(slot uint32, name string)

	// Link links the attached stages.
	//
	// Returns:
	//   - error: *LinkError if the driver rejects the program
	Link() error

	// Linked reports whether the last Link succeeded.
	Linked() bool

	// Bind makes this program current. Panics with *gpu.DriverStateError if the program is
	// not linked or already disposed.
	Bind()

	// Unbind clears the current program if this program is current.
	Unbind()

	// Handle returns the driver program object.
	Handle() gpu.Handle

	// Label returns the name given with WithLabel.
	Label() string

	// Declarations returns the attribute annotations found in both stages, vertex stage first.
	//
	// Returns:
	//   - []Annotation: the attribute declarations
	Declarations() []Annotation

	// UniformLocation resolves a uniform of the linked program. Every call queries the driver;
	// callers that upload every frame should keep the result.
	//
	// Parameters:
	//   - name: the uniform name
	//
	// Returns:
	//   - gpu.UniformLocation: the location, or gpu.UnknownLocation
	UniformLocation(name string) gpu.UniformLocation

	// LoadFloat uploads a float uniform. The program must be bound.
	//
	// Parameters:
	//   - loc: the uniform location
	//   - v: the value
	LoadFloat(loc gpu.UniformLocation, v float32)

	// LoadVector uploads a vec3 uniform. The program must be bound.
	//
	// Parameters:
	//   - loc: the uniform location
	//   - v: the value
	LoadVector(loc gpu.UniformLocation, v mgl32.Vec3)

	// LoadBoolean uploads a boolean as a float uniform, 1 for true and 0 for false.
	// The program must be bound.
	//
	// Parameters:
	//   - loc: the uniform location
	//   - v: the value
	LoadBoolean(loc gpu.UniformLocation, v bool)

	// LoadMatrix uploads a column-major 4x4 matrix uniform. The program must be bound.
	//
	// Parameters:
	//   - loc: the uniform location
	//   - m: the matrix
	LoadMatrix(loc gpu.UniformLocation, m mgl32.Mat4)

	// Dispose unbinds the program if current, detaches and deletes both stages and deletes the
	// program object. Calling it again has no effect.
	Dispose()
}

// emptySourceLog is reported for a stage whose processed text is blank, on every device.
const emptySourceLog = "empty shader source"

type attributeBinding struct {
	slot uint32
	name string
}

type program struct {
	dev    gpu.Device
	src    loader.Source
	logger *slog.Logger
	label  string

	snippets map[string]string
	pending  []attributeBinding
	pp       PreProcessor

	handle   gpu.Handle
	vertex   gpu.Handle
	fragment gpu.Handle

	vertexDecls   []Annotation
	fragmentDecls []Annotation

	linked   bool
	disposed bool
}

var _ Program = &program{}

// NewProgram creates an empty program object on dev. Stage text is read from src.
//
// Parameters:
//   - dev: the device that owns the program
//   - src: resolves stage and include names to GLSL text
//   - opts: variadic list of ProgramBuilderOption functions
//
// Returns:
//   - Program: the program, with no stages attached
//   - error: ErrNoSource if src is nil
func NewProgram(dev gpu.Device, src loader.Source, opts ...ProgramBuilderOption) (Program, error) {
	if src == nil {
		return nil, fmt.Errorf("shader: %w", ErrNoSource)
	}
	p := &program{
		dev:    dev,
		src:    src,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.pp = NewPreProcessor(src, p.snippets)
	p.handle = gpu.MustHandle("CreateProgram", dev.CreateProgram())
	for _, b := range p.pending {
		dev.BindAttribLocation(p.handle, b.slot, b.name)
	}
	p.pending = nil
	p.logger.Debug("shader: program created", "label", p.label, "handle", p.handle)
	return p, nil
}

// Build creates a program from a vertex and fragment stage and links it. On any failure the
// partially built program is disposed before the error is returned.
//
// Parameters:
//   - dev: the device that owns the program
//   - src: resolves stage and include names to GLSL text
//   - vertexName: the resource name of the vertex stage
//   - fragmentName: the resource name of the fragment stage
//   - opts: variadic list of ProgramBuilderOption functions
//
// Returns:
//   - Program: the linked program
//   - error: the first construction error
func Build(dev gpu.Device, src loader.Source, vertexName, fragmentName string, opts ...ProgramBuilderOption) (Program, error) {
	p, err := NewProgram(dev, src, opts...)
	if err != nil {
		return nil, err
	}
	if err := p.AttachVertexShader(vertexName); err != nil {
		p.Dispose()
		return nil, err
	}
	if err := p.AttachFragmentShader(fragmentName); err != nil {
		p.Dispose()
		return nil, err
	}
	if err := p.Link(); err != nil {
		p.Dispose()
		return nil, err
	}
	return p, nil
}

func (p *program) AttachVertexShader(name string) error {
	return p.attach(gpu.VertexStage, name)
}

func (p *program) AttachFragmentShader(name string) error {
	return p.attach(gpu.FragmentStage, name)
}

func (p *program) attach(stage gpu.ShaderStage, name string) error {
	if p.disposed {
		gpu.Violation("AttachShader", p.handle, gpu.ErrDisposed, "program %q", p.label)
	}
	slot := &p.vertex
	decls := &p.vertexDecls
	if stage == gpu.FragmentStage {
		slot = &p.fragment
		decls = &p.fragmentDecls
	}
	if *slot != gpu.None {
		return fmt.Errorf("shader: %s stage %q: %w", stage, name, ErrStageAttached)
	}

	text, err := p.src.ReadText(name)
	if err != nil {
		return fmt.Errorf("shader: loading %s stage: %w", stage, err)
	}
	processed, err := p.pp.Process(text)
	if err != nil {
		return fmt.Errorf("shader: pre-processing %s stage %q: %w", stage, name, err)
	}
	if strings.TrimSpace(processed) == "" {
		p.logger.Error("shader: compile failed", "stage", stage.String(), "name", name, "log", emptySourceLog)
		return &CompileError{Stage: stage, Name: name, Log: emptySourceLog}
	}

	sh := gpu.MustHandle("CreateShader", p.dev.CreateShader(stage))
	p.dev.ShaderSource(sh, processed)
	p.dev.CompileShader(sh)
	if !p.dev.ShaderCompiled(sh) {
		log := p.dev.ShaderInfoLog(sh)
		if log == "" {
			log = "driver reported no diagnostics"
		}
		p.dev.DeleteShader(sh)
		p.logger.Error("shader: compile failed", "stage", stage.String(), "name", name, "log", log)
		return &CompileError{Stage: stage, Name: name, Log: log}
	}

	p.dev.AttachShader(p.handle, sh)
	*slot = sh
	*decls = slices.Clone(p.pp.Declarations())
	for _, d := range *decls {
		p.dev.BindAttribLocation(p.handle, *d.Slot, d.Variable())
	}
	p.logger.Debug("shader: stage attached", "stage", stage.String(), "name", name, "handle", sh)
	return nil
}

func (p *program) BindAttribute(slot uint32, name string) {
	if p.disposed {
		gpu.Violation("BindAttribute", p.handle, gpu.ErrDisposed, "program %q", p.label)
	}
	p.dev.BindAttribLocation(p.handle, slot, name)
}

func (p *program) Link() error {
	if p.disposed {
		gpu.Violation("LinkProgram", p.handle, gpu.ErrDisposed, "program %q", p.label)
	}
	p.dev.LinkProgram(p.handle)
	if !p.dev.ProgramLinked(p.handle) {
		p.linked = false
		log := p.dev.ProgramInfoLog(p.handle)
		if log == "" {
			log = "driver reported no diagnostics"
		}
		p.logger.Error("shader: link failed", "label", p.label, "log", log)
		return &LinkError{Program: p.label, Log: log}
	}
	p.linked = true
	p.logger.Info("shader: program linked", "label", p.label, "handle", p.handle)
	return nil
}

func (p *program) Linked() bool {
	return p.linked
}

func (p *program) Bind() {
	if p.disposed {
		gpu.Violation("Bind", p.handle, gpu.ErrDisposed, "program %q", p.label)
	}
	if !p.linked {
		gpu.Violation("Bind", p.handle, gpu.ErrBindOrder, "program %q is not linked", p.label)
	}
	p.dev.UseProgram(p.handle)
}

func (p *program) Unbind() {
	if p.dev.CurrentProgram() == p.handle && p.handle != gpu.None {
		p.dev.UseProgram(gpu.None)
	}
}

func (p *program) Handle() gpu.Handle {
	return p.handle
}

func (p *program) Label() string {
	return p.label
}

func (p *program) Declarations() []Annotation {
	out := make([]Annotation, 0, len(p.vertexDecls)+len(p.fragmentDecls))
	out = append(out, p.vertexDecls...)
	return append(out, p.fragmentDecls...)
}

func (p *program) UniformLocation(name string) gpu.UniformLocation {
	if !p.linked || p.disposed {
		gpu.Violation("UniformLocation", p.handle, gpu.ErrBindOrder, "program %q is not linked", p.label)
	}
	return p.dev.UniformLocation(p.handle, name)
}

// requireCurrent panics unless this program is the device's current program.
func (p *program) requireCurrent(op string) {
	if p.disposed {
		gpu.Violation(op, p.handle, gpu.ErrDisposed, "program %q", p.label)
	}
	if cur := p.dev.CurrentProgram(); cur != p.handle {
		gpu.Violation(op, p.handle, gpu.ErrBindOrder, "program %q is not bound (current %d)", p.label, cur)
	}
}

func (p *program) LoadFloat(loc gpu.UniformLocation, v float32) {
	p.requireCurrent("LoadFloat")
	p.dev.Uniform1f(loc, v)
}

func (p *program) LoadVector(loc gpu.UniformLocation, v mgl32.Vec3) {
	p.requireCurrent("LoadVector")
	p.dev.Uniform3f(loc, v.X(), v.Y(), v.Z())
}

func (p *program) LoadBoolean(loc gpu.UniformLocation, v bool) {
	p.requireCurrent("LoadBoolean")
	var f float32
	if v {
		f = 1
	}
	p.dev.Uniform1f(loc, f)
}

func (p *program) LoadMatrix(loc gpu.UniformLocation, m mgl32.Mat4) {
	p.requireCurrent("LoadMatrix")
	p.dev.UniformMatrix4f(loc, m)
}

func (p *program) Dispose() {
	if p.disposed {
		return
	}
	p.Unbind()
	stages := []gpu.Handle{p.vertex, p.fragment}
	for _, sh := range stages {
		if sh != gpu.None {
			p.dev.DetachShader(p.handle, sh)
		}
	}
	for _, sh := range stages {
		if sh != gpu.None {
			p.dev.DeleteShader(sh)
		}
	}
	p.vertex, p.fragment = gpu.None, gpu.None
	p.dev.DeleteProgram(p.handle)
	p.linked = false
	p.disposed = true
	p.logger.Debug("shader: program disposed", "label", p.label, "handle", p.handle)
}
