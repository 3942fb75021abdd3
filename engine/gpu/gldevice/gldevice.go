// Package gldevice implements gpu.Device on an OpenGL 4.1 core context through go-gl.
package gldevice

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/Carmen-Shannon/oxy-gl/engine/gpu"
	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

type glDevice struct {
	logger  *slog.Logger
	current gpu.Handle
}

var _ gpu.Device = &glDevice{}
var _ gpu.BufferReader = &glDevice{}

// New loads the OpenGL function pointers for the context current on the calling thread and
// returns a device bound to it. The window must have made its context current first.
//
// Parameters:
//   - opts: variadic list of DeviceBuilderOption functions
//
// Returns:
//   - gpu.Device: the OpenGL device
//   - error: error if the GL entry points could not be loaded
func New(opts ...DeviceBuilderOption) (gpu.Device, error) {
	d := &glDevice{logger: slog.Default()}
	for _, opt := range opts {
		opt(d)
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	d.logger.Info("gldevice: context ready",
		"version", gl.GoStr(gl.GetString(gl.VERSION)),
		"renderer", gl.GoStr(gl.GetString(gl.RENDERER)))
	return d, nil
}

func bufferTarget(t gpu.BufferTarget) uint32 {
	if t == gpu.ElementArrayBuffer {
		return gl.ELEMENT_ARRAY_BUFFER
	}
	return gl.ARRAY_BUFFER
}

func bufferUsage(u gpu.BufferUsage) uint32 {
	if u == gpu.DynamicDraw {
		return gl.DYNAMIC_DRAW
	}
	return gl.STATIC_DRAW
}

func (d *glDevice) CreateVertexArray() gpu.Handle {
	var vao uint32
	gl.GenVertexArrays(1, &vao)
	return gpu.Handle(vao)
}

func (d *glDevice) BindVertexArray(vao gpu.Handle) {
	gl.BindVertexArray(uint32(vao))
}

func (d *glDevice) DeleteVertexArray(vao gpu.Handle) {
	h := uint32(vao)
	gl.DeleteVertexArrays(1, &h)
}

func (d *glDevice) CreateBuffer() gpu.Handle {
	var buf uint32
	gl.GenBuffers(1, &buf)
	return gpu.Handle(buf)
}

func (d *glDevice) BindBuffer(target gpu.BufferTarget, buf gpu.Handle) {
	gl.BindBuffer(bufferTarget(target), uint32(buf))
}

func (d *glDevice) BufferFloat32(target gpu.BufferTarget, data []float32, usage gpu.BufferUsage) {
	if len(data) == 0 {
		gl.BufferData(bufferTarget(target), 0, nil, bufferUsage(usage))
		return
	}
	gl.BufferData(bufferTarget(target), 4*len(data), gl.Ptr(data), bufferUsage(usage))
}

func (d *glDevice) BufferUint16(target gpu.BufferTarget, data []uint16, usage gpu.BufferUsage) {
	if len(data) == 0 {
		gl.BufferData(bufferTarget(target), 0, nil, bufferUsage(usage))
		return
	}
	gl.BufferData(bufferTarget(target), 2*len(data), gl.Ptr(data), bufferUsage(usage))
}

func (d *glDevice) DeleteBuffer(buf gpu.Handle) {
	h := uint32(buf)
	gl.DeleteBuffers(1, &h)
}

func (d *glDevice) VertexAttribPointer(slot uint32, components int32, stride int32, offset int) {
	gl.VertexAttribPointerWithOffset(slot, components, gl.FLOAT, false, stride, uintptr(offset))
}

func (d *glDevice) EnableVertexAttribArray(slot uint32) {
	gl.EnableVertexAttribArray(slot)
}

func (d *glDevice) DrawElements(mode gpu.Primitive, count int32, indexType gpu.IndexType, offset int) {
	gl.DrawElementsWithOffset(gl.TRIANGLES, count, gl.UNSIGNED_SHORT, uintptr(offset))
}

func (d *glDevice) CreateShader(stage gpu.ShaderStage) gpu.Handle {
	kind := uint32(gl.VERTEX_SHADER)
	if stage == gpu.FragmentStage {
		kind = gl.FRAGMENT_SHADER
	}
	return gpu.Handle(gl.CreateShader(kind))
}

func (d *glDevice) ShaderSource(shader gpu.Handle, source string) {
	csrc, free := gl.Strs(source + "\x00")
	defer free()
	gl.ShaderSource(uint32(shader), 1, csrc, nil)
}

func (d *glDevice) CompileShader(shader gpu.Handle) {
	gl.CompileShader(uint32(shader))
}

func (d *glDevice) ShaderCompiled(shader gpu.Handle) bool {
	var status int32
	gl.GetShaderiv(uint32(shader), gl.COMPILE_STATUS, &status)
	return status == gl.TRUE
}

func (d *glDevice) ShaderInfoLog(shader gpu.Handle) string {
	var length int32
	gl.GetShaderiv(uint32(shader), gl.INFO_LOG_LENGTH, &length)
	if length <= 0 {
		return ""
	}
	buf := make([]byte, length)
	gl.GetShaderInfoLog(uint32(shader), length, nil, &buf[0])
	return strings.TrimRight(string(buf), "\x00")
}

func (d *glDevice) DeleteShader(shader gpu.Handle) {
	gl.DeleteShader(uint32(shader))
}

func (d *glDevice) CreateProgram() gpu.Handle {
	return gpu.Handle(gl.CreateProgram())
}

func (d *glDevice) AttachShader(program, shader gpu.Handle) {
	gl.AttachShader(uint32(program), uint32(shader))
}

func (d *glDevice) DetachShader(program, shader gpu.Handle) {
	gl.DetachShader(uint32(program), uint32(shader))
}

func (d *glDevice) BindAttribLocation(program gpu.Handle, slot uint32, name string) {
	cname, free := gl.Strs(name + "\x00")
	defer free()
	gl.BindAttribLocation(uint32(program), slot, *cname)
}

func (d *glDevice) LinkProgram(program gpu.Handle) {
	gl.LinkProgram(uint32(program))
}

func (d *glDevice) ProgramLinked(program gpu.Handle) bool {
	var status int32
	gl.GetProgramiv(uint32(program), gl.LINK_STATUS, &status)
	return status == gl.TRUE
}

func (d *glDevice) ProgramInfoLog(program gpu.Handle) string {
	var length int32
	gl.GetProgramiv(uint32(program), gl.INFO_LOG_LENGTH, &length)
	if length <= 0 {
		return ""
	}
	buf := make([]byte, length)
	gl.GetProgramInfoLog(uint32(program), length, nil, &buf[0])
	return strings.TrimRight(string(buf), "\x00")
}

func (d *glDevice) UseProgram(program gpu.Handle) {
	gl.UseProgram(uint32(program))
	d.current = program
}

func (d *glDevice) CurrentProgram() gpu.Handle {
	return d.current
}

func (d *glDevice) DeleteProgram(program gpu.Handle) {
	gl.DeleteProgram(uint32(program))
	if d.current == program {
		d.current = gpu.None
	}
}

func (d *glDevice) UniformLocation(program gpu.Handle, name string) gpu.UniformLocation {
	cname, free := gl.Strs(name + "\x00")
	defer free()
	return gpu.UniformLocation(gl.GetUniformLocation(uint32(program), *cname))
}

func (d *glDevice) Uniform1f(loc gpu.UniformLocation, v float32) {
	gl.Uniform1f(int32(loc), v)
}

func (d *glDevice) Uniform3f(loc gpu.UniformLocation, x, y, z float32) {
	gl.Uniform3f(int32(loc), x, y, z)
}

func (d *glDevice) UniformMatrix4f(loc gpu.UniformLocation, m mgl32.Mat4) {
	gl.UniformMatrix4fv(int32(loc), 1, false, &m[0])
}

func (d *glDevice) ClearColor(r, g, b, a float32) {
	gl.ClearColor(r, g, b, a)
}

func (d *glDevice) Clear() {
	gl.Clear(gl.COLOR_BUFFER_BIT)
}

func (d *glDevice) Viewport(x, y, width, height int32) {
	gl.Viewport(x, y, width, height)
}

// ReadBufferFloat32 maps the buffer through the array binding point, restoring the previous
// array buffer binding afterwards.
func (d *glDevice) ReadBufferFloat32(buf gpu.Handle) []float32 {
	var prev int32
	gl.GetIntegerv(gl.ARRAY_BUFFER_BINDING, &prev)
	defer gl.BindBuffer(gl.ARRAY_BUFFER, uint32(prev))

	gl.BindBuffer(gl.ARRAY_BUFFER, uint32(buf))
	var size int32
	gl.GetBufferParameteriv(gl.ARRAY_BUFFER, gl.BUFFER_SIZE, &size)
	out := make([]float32, size/4)
	if len(out) > 0 {
		gl.GetBufferSubData(gl.ARRAY_BUFFER, 0, len(out)*4, gl.Ptr(out))
	}
	return out
}
