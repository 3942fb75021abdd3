// Package headless provides a software gpu.Device that tracks OpenGL object and binding state
// without a graphics context. It validates the binding order the engine depends on, checks
// shader text, links programs against their declared interfaces and records every draw, so that
// resource lifecycle code can be exercised in tests, in --headless runs and in preflight checks.
package headless

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"sort"
	"strings"

	"github.com/Carmen-Shannon/oxy-gl/engine/gpu"
	"github.com/go-gl/mathgl/mgl32"
)

// DrawCall is a recorded DrawElements invocation.
type DrawCall struct {
	VertexArray   gpu.Handle
	Program       gpu.Handle
	IndexBuffer   gpu.Handle
	Count         int32
	Offset        int
	EnabledSlots  []uint32
	UnbackedSlots []uint32 // enabled slots with no buffer attached
}

// Device is a gpu.Device with inspection helpers for tests and preflight.
type Device interface {
	gpu.Device
	gpu.BufferReader

	// ReadBufferUint16 returns the contents of a buffer interpreted as uint16 values.
	//
	// Parameters:
	//   - buf: the buffer to read
	//
	// Returns:
	//   - []uint16: a copy of the buffer contents
	ReadBufferUint16(buf gpu.Handle) []uint16

	// Draws returns every recorded draw call in submission order.
	//
	// Returns:
	//   - []DrawCall: a copy of the draw log
	Draws() []DrawCall

	// Clears returns how many times Clear was called.
	Clears() int

	// ClearColorValue returns the color most recently set with ClearColor.
	ClearColorValue() [4]float32

	// ViewportValue returns the rectangle most recently set with Viewport.
	ViewportValue() [4]int32

	// Calls returns the recorded driver calls. Empty unless WithCallLog was supplied.
	Calls() []string

	// ResetLogs discards recorded draws, clears and calls.
	ResetLogs()

	// BoundVertexArray returns the currently bound vertex array.
	BoundVertexArray() gpu.Handle

	// BoundBuffer returns the buffer bound to target. For ElementArrayBuffer this is the
	// binding stored in the currently bound vertex array.
	BoundBuffer(target gpu.BufferTarget) gpu.Handle

	// IsLive reports whether handle names an object that has not been deleted.
	IsLive(h gpu.Handle) bool

	// LiveObjects returns the number of allocated objects not yet deleted.
	LiveObjects() int

	// AttributeLocation returns the slot a linked program assigned to a vertex input.
	//
	// Parameters:
	//   - program: the linked program
	//   - name: the vertex input name
	//
	// Returns:
	//   - uint32: the slot
	//   - bool: false if the program has no such active input
	AttributeLocation(program gpu.Handle, name string) (uint32, bool)

	// UniformValue returns the last value written to a uniform of a program.
	//
	// Parameters:
	//   - program: the program
	//   - name: the uniform name
	//
	// Returns:
	//   - []float32: the stored components
	//   - bool: false if never written
	UniformValue(program gpu.Handle, name string) ([]float32, bool)
}

type objectKind int

const (
	kindVertexArray objectKind = iota
	kindBuffer
	kindShader
	kindProgram
)

func (k objectKind) String() string {
	switch k {
	case kindVertexArray:
		return "vertex array"
	case kindBuffer:
		return "buffer"
	case kindShader:
		return "shader"
	case kindProgram:
		return "program"
	default:
		return "object"
	}
}

type attribState struct {
	buffer     gpu.Handle
	components int32
	stride     int32
	offset     int
	enabled    bool
}

type vertexArrayState struct {
	element gpu.Handle
	slots   map[uint32]*attribState
}

type bufferState struct {
	data []byte
}

type shaderState struct {
	stage    gpu.ShaderStage
	source   string
	compiled bool
	log      string
	unit     *glslUnit
}

type programState struct {
	attached   []gpu.Handle
	bindings   map[string]uint32
	linked     bool
	log        string
	attributes map[string]uint32
	uniforms   map[string]gpu.UniformLocation
	values     map[gpu.UniformLocation][]float32
}

type device struct {
	logger     *slog.Logger
	logCalls   bool
	allocLimit int
	allocs     int

	next     gpu.Handle
	kinds    map[gpu.Handle]objectKind
	deleted  map[gpu.Handle]objectKind
	vaos     map[gpu.Handle]*vertexArrayState
	buffers  map[gpu.Handle]*bufferState
	shaders  map[gpu.Handle]*shaderState
	programs map[gpu.Handle]*programState

	boundVAO    gpu.Handle
	boundArray  gpu.Handle
	defaultElem gpu.Handle
	current     gpu.Handle
	clearColor  [4]float32
	viewport    [4]int32
	clears      int
	draws       []DrawCall
	calls       []string
}

var _ Device = &device{}

// New creates a headless device with no live objects.
//
// Parameters:
//   - opts: variadic list of DeviceBuilderOption functions
//
// Returns:
//   - Device: the headless device
func New(opts ...DeviceBuilderOption) Device {
	d := &device{
		logger:     slog.Default(),
		allocLimit: -1,
		kinds:      make(map[gpu.Handle]objectKind),
		deleted:    make(map[gpu.Handle]objectKind),
		vaos:       make(map[gpu.Handle]*vertexArrayState),
		buffers:    make(map[gpu.Handle]*bufferState),
		shaders:    make(map[gpu.Handle]*shaderState),
		programs:   make(map[gpu.Handle]*programState),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *device) record(format string, args ...any) {
	if d.logCalls {
		d.calls = append(d.calls, fmt.Sprintf(format, args...))
	}
}

func (d *device) alloc(kind objectKind) gpu.Handle {
	if d.allocLimit >= 0 && d.allocs >= d.allocLimit {
		return gpu.None
	}
	d.allocs++
	d.next++
	h := d.next
	d.kinds[h] = kind
	d.logger.Debug("headless: allocated", "kind", kind.String(), "handle", h)
	return h
}

// lookup validates that h names a live object of the given kind.
func (d *device) lookup(op string, h gpu.Handle, kind objectKind) {
	if k, ok := d.kinds[h]; ok {
		if k != kind {
			gpu.Violation(op, h, gpu.ErrInvalidHandle, "handle is a %s, not a %s", k, kind)
		}
		return
	}
	if k, ok := d.deleted[h]; ok {
		gpu.Violation(op, h, gpu.ErrInvalidHandle, "%s already deleted", k)
	}
	gpu.Violation(op, h, gpu.ErrInvalidHandle, "unknown %s", kind)
}

func (d *device) release(h gpu.Handle) {
	kind := d.kinds[h]
	delete(d.kinds, h)
	d.deleted[h] = kind
	d.logger.Debug("headless: deleted", "kind", kind.String(), "handle", h)
}

func (d *device) CreateVertexArray() gpu.Handle {
	h := d.alloc(kindVertexArray)
	if h != gpu.None {
		d.vaos[h] = &vertexArrayState{slots: make(map[uint32]*attribState)}
	}
	d.record("CreateVertexArray() = %d", h)
	return h
}

func (d *device) BindVertexArray(vao gpu.Handle) {
	d.record("BindVertexArray(%d)", vao)
	if vao != gpu.None {
		d.lookup("BindVertexArray", vao, kindVertexArray)
	}
	d.boundVAO = vao
}

func (d *device) DeleteVertexArray(vao gpu.Handle) {
	d.record("DeleteVertexArray(%d)", vao)
	if vao == gpu.None {
		return
	}
	d.lookup("DeleteVertexArray", vao, kindVertexArray)
	if d.boundVAO == vao {
		gpu.Violation("DeleteVertexArray", vao, gpu.ErrDeleteBound, "vertex array is still bound")
	}
	delete(d.vaos, vao)
	d.release(vao)
}

func (d *device) CreateBuffer() gpu.Handle {
	h := d.alloc(kindBuffer)
	if h != gpu.None {
		d.buffers[h] = &bufferState{}
	}
	d.record("CreateBuffer() = %d", h)
	return h
}

func (d *device) elementBinding() *gpu.Handle {
	if d.boundVAO == gpu.None {
		return &d.defaultElem
	}
	return &d.vaos[d.boundVAO].element
}

func (d *device) BindBuffer(target gpu.BufferTarget, buf gpu.Handle) {
	d.record("BindBuffer(%s, %d)", target, buf)
	if buf != gpu.None {
		d.lookup("BindBuffer", buf, kindBuffer)
	}
	switch target {
	case gpu.ArrayBuffer:
		d.boundArray = buf
	case gpu.ElementArrayBuffer:
		*d.elementBinding() = buf
	default:
		gpu.Violation("BindBuffer", buf, gpu.ErrBindOrder, "unknown target %d", target)
	}
}

func (d *device) targetBuffer(op string, target gpu.BufferTarget) *bufferState {
	var h gpu.Handle
	switch target {
	case gpu.ArrayBuffer:
		h = d.boundArray
	case gpu.ElementArrayBuffer:
		h = *d.elementBinding()
	}
	if h == gpu.None {
		gpu.Violation(op, h, gpu.ErrBindOrder, "no buffer bound to %s", target)
	}
	return d.buffers[h]
}

func (d *device) BufferFloat32(target gpu.BufferTarget, data []float32, usage gpu.BufferUsage) {
	d.record("BufferFloat32(%s, %d floats)", target, len(data))
	b := d.targetBuffer("BufferFloat32", target)
	out := make([]byte, 4*len(data))
	for i, v := range data {
		binary.LittleEndian.PutUint32(out[4*i:], math.Float32bits(v))
	}
	b.data = out
}

func (d *device) BufferUint16(target gpu.BufferTarget, data []uint16, usage gpu.BufferUsage) {
	d.record("BufferUint16(%s, %d indices)", target, len(data))
	b := d.targetBuffer("BufferUint16", target)
	out := make([]byte, 2*len(data))
	for i, v := range data {
		binary.LittleEndian.PutUint16(out[2*i:], v)
	}
	b.data = out
}

func (d *device) DeleteBuffer(buf gpu.Handle) {
	d.record("DeleteBuffer(%d)", buf)
	if buf == gpu.None {
		return
	}
	d.lookup("DeleteBuffer", buf, kindBuffer)
	if d.boundArray == buf || *d.elementBinding() == buf {
		gpu.Violation("DeleteBuffer", buf, gpu.ErrDeleteBound, "buffer is still bound")
	}
	delete(d.buffers, buf)
	d.release(buf)
}

func (d *device) requireVertexArray(op string) *vertexArrayState {
	if d.boundVAO == gpu.None {
		gpu.Violation(op, gpu.None, gpu.ErrBindOrder, "no vertex array bound")
	}
	return d.vaos[d.boundVAO]
}

func (d *device) slot(vao *vertexArrayState, slot uint32) *attribState {
	a, ok := vao.slots[slot]
	if !ok {
		a = &attribState{}
		vao.slots[slot] = a
	}
	return a
}

func (d *device) VertexAttribPointer(slot uint32, components int32, stride int32, offset int) {
	d.record("VertexAttribPointer(%d, %d, %d, %d)", slot, components, stride, offset)
	vao := d.requireVertexArray("VertexAttribPointer")
	if d.boundArray == gpu.None {
		gpu.Violation("VertexAttribPointer", gpu.None, gpu.ErrBindOrder, "no buffer bound to %s", gpu.ArrayBuffer)
	}
	if components < 1 || components > 4 {
		gpu.Violation("VertexAttribPointer", gpu.None, gpu.ErrBindOrder, "invalid component count %d", components)
	}
	a := d.slot(vao, slot)
	a.buffer = d.boundArray
	a.components = components
	a.stride = stride
	a.offset = offset
}

func (d *device) EnableVertexAttribArray(slot uint32) {
	d.record("EnableVertexAttribArray(%d)", slot)
	vao := d.requireVertexArray("EnableVertexAttribArray")
	d.slot(vao, slot).enabled = true
}

func (d *device) DrawElements(mode gpu.Primitive, count int32, indexType gpu.IndexType, offset int) {
	d.record("DrawElements(%d, %d)", count, offset)
	vao := d.requireVertexArray("DrawElements")
	if d.current == gpu.None {
		gpu.Violation("DrawElements", gpu.None, gpu.ErrBindOrder, "no program in use")
	}
	if vao.element == gpu.None {
		gpu.Violation("DrawElements", d.boundVAO, gpu.ErrBindOrder, "vertex array has no index buffer")
	}
	size := len(d.buffers[vao.element].data)
	if need := offset + int(count)*indexType.Size(); need > size {
		gpu.Violation("DrawElements", vao.element, gpu.ErrBindOrder, "draw reads %d bytes from a %d byte index buffer", need, size)
	}

	call := DrawCall{
		VertexArray: d.boundVAO,
		Program:     d.current,
		IndexBuffer: vao.element,
		Count:       count,
		Offset:      offset,
	}
	for slot, a := range vao.slots {
		if !a.enabled {
			continue
		}
		call.EnabledSlots = append(call.EnabledSlots, slot)
		if a.buffer == gpu.None {
			call.UnbackedSlots = append(call.UnbackedSlots, slot)
		}
	}
	slices.Sort(call.EnabledSlots)
	slices.Sort(call.UnbackedSlots)
	d.draws = append(d.draws, call)
}

func (d *device) CreateShader(stage gpu.ShaderStage) gpu.Handle {
	h := d.alloc(kindShader)
	if h != gpu.None {
		d.shaders[h] = &shaderState{stage: stage}
	}
	d.record("CreateShader(%s) = %d", stage, h)
	return h
}

func (d *device) ShaderSource(shader gpu.Handle, source string) {
	d.record("ShaderSource(%d)", shader)
	d.lookup("ShaderSource", shader, kindShader)
	d.shaders[shader].source = source
}

func (d *device) CompileShader(shader gpu.Handle) {
	d.record("CompileShader(%d)", shader)
	d.lookup("CompileShader", shader, kindShader)
	s := d.shaders[shader]
	s.unit, s.log = checkGLSL(s.source)
	s.compiled = s.unit != nil
}

func (d *device) ShaderCompiled(shader gpu.Handle) bool {
	d.lookup("ShaderCompiled", shader, kindShader)
	return d.shaders[shader].compiled
}

func (d *device) ShaderInfoLog(shader gpu.Handle) string {
	d.lookup("ShaderInfoLog", shader, kindShader)
	return d.shaders[shader].log
}

func (d *device) DeleteShader(shader gpu.Handle) {
	d.record("DeleteShader(%d)", shader)
	if shader == gpu.None {
		return
	}
	d.lookup("DeleteShader", shader, kindShader)
	for p, ps := range d.programs {
		if slices.Contains(ps.attached, shader) {
			gpu.Violation("DeleteShader", shader, gpu.ErrDeleteBound, "shader is still attached to program %d", p)
		}
	}
	delete(d.shaders, shader)
	d.release(shader)
}

func (d *device) CreateProgram() gpu.Handle {
	h := d.alloc(kindProgram)
	if h != gpu.None {
		d.programs[h] = &programState{
			bindings: make(map[string]uint32),
			values:   make(map[gpu.UniformLocation][]float32),
		}
	}
	d.record("CreateProgram() = %d", h)
	return h
}

func (d *device) AttachShader(program, shader gpu.Handle) {
	d.record("AttachShader(%d, %d)", program, shader)
	d.lookup("AttachShader", program, kindProgram)
	d.lookup("AttachShader", shader, kindShader)
	p := d.programs[program]
	if slices.Contains(p.attached, shader) {
		gpu.Violation("AttachShader", shader, gpu.ErrBindOrder, "shader already attached to program %d", program)
	}
	p.attached = append(p.attached, shader)
}

func (d *device) DetachShader(program, shader gpu.Handle) {
	d.record("DetachShader(%d, %d)", program, shader)
	d.lookup("DetachShader", program, kindProgram)
	d.lookup("DetachShader", shader, kindShader)
	p := d.programs[program]
	i := slices.Index(p.attached, shader)
	if i < 0 {
		gpu.Violation("DetachShader", shader, gpu.ErrBindOrder, "shader is not attached to program %d", program)
	}
	p.attached = slices.Delete(p.attached, i, i+1)
}

func (d *device) BindAttribLocation(program gpu.Handle, slot uint32, name string) {
	d.record("BindAttribLocation(%d, %d, %s)", program, slot, name)
	d.lookup("BindAttribLocation", program, kindProgram)
	if strings.HasPrefix(name, "gl_") {
		gpu.Violation("BindAttribLocation", program, gpu.ErrBindOrder, "reserved attribute name %q", name)
	}
	d.programs[program].bindings[name] = slot
}

func (d *device) LinkProgram(program gpu.Handle) {
	d.record("LinkProgram(%d)", program)
	d.lookup("LinkProgram", program, kindProgram)
	p := d.programs[program]
	p.linked = false
	p.attributes = nil
	p.uniforms = nil
	p.values = make(map[gpu.UniformLocation][]float32)

	var vert, frag *glslUnit
	var errs []string
	for _, sh := range p.attached {
		s := d.shaders[sh]
		if !s.compiled {
			errs = append(errs, fmt.Sprintf("error: %s shader %d is not compiled", s.stage, sh))
			continue
		}
		switch s.stage {
		case gpu.VertexStage:
			vert = s.unit
		case gpu.FragmentStage:
			frag = s.unit
		}
	}
	if len(errs) == 0 {
		if vert == nil {
			errs = append(errs, "error: no vertex shader attached")
		}
		if frag == nil {
			errs = append(errs, "error: no fragment shader attached")
		}
	}
	if len(errs) == 0 {
		outs := make(map[string]string, len(vert.Outputs))
		for _, o := range vert.Outputs {
			outs[o.Name] = o.Type
		}
		for _, in := range frag.Inputs {
			t, ok := outs[in.Name]
			if !ok {
				errs = append(errs, fmt.Sprintf("error: fragment input %q is not written by the vertex shader", in.Name))
			} else if t != in.Type {
				errs = append(errs, fmt.Sprintf("error: %q declared as %s in vertex and %s in fragment shader", in.Name, t, in.Type))
			}
		}
		if vert.Version != frag.Version {
			errs = append(errs, fmt.Sprintf("error: version mismatch between stages (%d vs %d)", vert.Version, frag.Version))
		}
	}
	if len(errs) > 0 {
		p.log = strings.Join(errs, "\n")
		return
	}

	p.attributes = assignAttributes(vert.Inputs, p.bindings)
	p.uniforms = assignUniforms(vert.Uniforms, frag.Uniforms)
	p.linked = true
	p.log = ""
}

// assignAttributes resolves vertex input slots: explicit layout qualifiers win over
// BindAttribLocation, remaining inputs take the lowest free slot in declaration order.
func assignAttributes(inputs []glslVariable, bindings map[string]uint32) map[string]uint32 {
	out := make(map[string]uint32, len(inputs))
	used := make(map[uint32]bool)
	var pending []string
	for _, in := range inputs {
		switch {
		case in.Location >= 0:
			out[in.Name] = uint32(in.Location)
		default:
			if slot, ok := bindings[in.Name]; ok {
				out[in.Name] = slot
			} else {
				pending = append(pending, in.Name)
				continue
			}
		}
		used[out[in.Name]] = true
	}
	var next uint32
	for _, name := range pending {
		for used[next] {
			next++
		}
		out[name] = next
		used[next] = true
	}
	return out
}

func assignUniforms(stages ...[]glslVariable) map[string]gpu.UniformLocation {
	var names []string
	seen := make(map[string]bool)
	for _, vars := range stages {
		for _, v := range vars {
			if !seen[v.Name] {
				seen[v.Name] = true
				names = append(names, v.Name)
			}
		}
	}
	sort.Strings(names)
	out := make(map[string]gpu.UniformLocation, len(names))
	for i, n := range names {
		out[n] = gpu.UniformLocation(i)
	}
	return out
}

func (d *device) ProgramLinked(program gpu.Handle) bool {
	d.lookup("ProgramLinked", program, kindProgram)
	return d.programs[program].linked
}

func (d *device) ProgramInfoLog(program gpu.Handle) string {
	d.lookup("ProgramInfoLog", program, kindProgram)
	return d.programs[program].log
}

func (d *device) UseProgram(program gpu.Handle) {
	d.record("UseProgram(%d)", program)
	if program != gpu.None {
		d.lookup("UseProgram", program, kindProgram)
		if !d.programs[program].linked {
			gpu.Violation("UseProgram", program, gpu.ErrBindOrder, "program is not linked")
		}
	}
	d.current = program
}

func (d *device) CurrentProgram() gpu.Handle {
	return d.current
}

func (d *device) DeleteProgram(program gpu.Handle) {
	d.record("DeleteProgram(%d)", program)
	if program == gpu.None {
		return
	}
	d.lookup("DeleteProgram", program, kindProgram)
	if d.current == program {
		gpu.Violation("DeleteProgram", program, gpu.ErrDeleteBound, "program is still in use")
	}
	delete(d.programs, program)
	d.release(program)
}

func (d *device) UniformLocation(program gpu.Handle, name string) gpu.UniformLocation {
	d.lookup("UniformLocation", program, kindProgram)
	p := d.programs[program]
	if !p.linked {
		gpu.Violation("UniformLocation", program, gpu.ErrBindOrder, "program is not linked")
	}
	if loc, ok := p.uniforms[name]; ok {
		return loc
	}
	return gpu.UnknownLocation
}

func (d *device) writeUniform(op string, loc gpu.UniformLocation, values ...float32) {
	d.record("%s(%d)", op, loc)
	if d.current == gpu.None {
		gpu.Violation(op, gpu.None, gpu.ErrBindOrder, "no program in use")
	}
	if loc == gpu.UnknownLocation {
		return
	}
	p := d.programs[d.current]
	if loc < 0 || int(loc) >= len(p.uniforms) {
		gpu.Violation(op, d.current, gpu.ErrInvalidHandle, "location %d is not a uniform of the program in use", loc)
	}
	p.values[loc] = slices.Clone(values)
}

func (d *device) Uniform1f(loc gpu.UniformLocation, v float32) {
	d.writeUniform("Uniform1f", loc, v)
}

func (d *device) Uniform3f(loc gpu.UniformLocation, x, y, z float32) {
	d.writeUniform("Uniform3f", loc, x, y, z)
}

func (d *device) UniformMatrix4f(loc gpu.UniformLocation, m mgl32.Mat4) {
	d.writeUniform("UniformMatrix4f", loc, m[:]...)
}

func (d *device) ClearColor(r, g, b, a float32) {
	d.record("ClearColor(%g, %g, %g, %g)", r, g, b, a)
	d.clearColor = [4]float32{r, g, b, a}
}

func (d *device) Clear() {
	d.record("Clear()")
	d.clears++
}

func (d *device) Viewport(x, y, width, height int32) {
	d.record("Viewport(%d, %d, %d, %d)", x, y, width, height)
	d.viewport = [4]int32{x, y, width, height}
}

func (d *device) ViewportValue() [4]int32 {
	return d.viewport
}

func (d *device) ReadBufferFloat32(buf gpu.Handle) []float32 {
	d.lookup("ReadBufferFloat32", buf, kindBuffer)
	data := d.buffers[buf].data
	out := make([]float32, len(data)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[4*i:]))
	}
	return out
}

func (d *device) ReadBufferUint16(buf gpu.Handle) []uint16 {
	d.lookup("ReadBufferUint16", buf, kindBuffer)
	data := d.buffers[buf].data
	out := make([]uint16, len(data)/2)
	for i := range out {
		out[i] = binary.LittleEndian.Uint16(data[2*i:])
	}
	return out
}

func (d *device) Draws() []DrawCall {
	return slices.Clone(d.draws)
}

func (d *device) Clears() int {
	return d.clears
}

func (d *device) ClearColorValue() [4]float32 {
	return d.clearColor
}

func (d *device) Calls() []string {
	return slices.Clone(d.calls)
}

func (d *device) ResetLogs() {
	d.draws = nil
	d.calls = nil
	d.clears = 0
}

func (d *device) BoundVertexArray() gpu.Handle {
	return d.boundVAO
}

func (d *device) BoundBuffer(target gpu.BufferTarget) gpu.Handle {
	if target == gpu.ElementArrayBuffer {
		return *d.elementBinding()
	}
	return d.boundArray
}

func (d *device) IsLive(h gpu.Handle) bool {
	_, ok := d.kinds[h]
	return ok
}

func (d *device) LiveObjects() int {
	return len(d.kinds)
}

func (d *device) AttributeLocation(program gpu.Handle, name string) (uint32, bool) {
	d.lookup("AttributeLocation", program, kindProgram)
	slot, ok := d.programs[program].attributes[name]
	return slot, ok
}

func (d *device) UniformValue(program gpu.Handle, name string) ([]float32, bool) {
	d.lookup("UniformValue", program, kindProgram)
	p := d.programs[program]
	loc, ok := p.uniforms[name]
	if !ok {
		return nil, false
	}
	v, ok := p.values[loc]
	return slices.Clone(v), ok
}
