package headless

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-gl/engine/gpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const vertexSrc = `#version 410 core
layout(location = 0) in vec3 position;
in vec2 uv;
uniform mat4 transform;
out vec2 passUV;
void main() {
	passUV = uv;
	gl_Position = transform * vec4(position, 1.0);
}
`

const fragmentSrc = `#version 410 core
in vec2 passUV;
uniform float brightness;
out vec4 fragColor;
void main() {
	fragColor = vec4(passUV, 0.0, 1.0) * brightness;
}
`

func linkedProgram(t *testing.T, d Device) gpu.Handle {
	t.Helper()
	vs := d.CreateShader(gpu.VertexStage)
	d.ShaderSource(vs, vertexSrc)
	d.CompileShader(vs)
	require.True(t, d.ShaderCompiled(vs), d.ShaderInfoLog(vs))

	fs := d.CreateShader(gpu.FragmentStage)
	d.ShaderSource(fs, fragmentSrc)
	d.CompileShader(fs)
	require.True(t, d.ShaderCompiled(fs), d.ShaderInfoLog(fs))

	p := d.CreateProgram()
	d.AttachShader(p, vs)
	d.AttachShader(p, fs)
	d.BindAttribLocation(p, 1, "uv")
	d.LinkProgram(p)
	require.True(t, d.ProgramLinked(p), d.ProgramInfoLog(p))
	return p
}

func TestBufferRoundTrip(t *testing.T) {
	d := New()
	buf := d.CreateBuffer()
	d.BindBuffer(gpu.ArrayBuffer, buf)
	d.BufferFloat32(gpu.ArrayBuffer, []float32{0.5, -1, 3.25}, gpu.StaticDraw)
	assert.Equal(t, []float32{0.5, -1, 3.25}, d.ReadBufferFloat32(buf))

	idx := d.CreateBuffer()
	d.BindBuffer(gpu.ElementArrayBuffer, idx)
	d.BufferUint16(gpu.ElementArrayBuffer, []uint16{0, 1, 2, 65535}, gpu.StaticDraw)
	assert.Equal(t, []uint16{0, 1, 2, 65535}, d.ReadBufferUint16(idx))
}

func TestUploadWithoutBindingPanics(t *testing.T) {
	d := New()
	assert.PanicsWithError(t, "gpu: BufferFloat32: binding order violation: no buffer bound to array buffer", func() {
		d.BufferFloat32(gpu.ArrayBuffer, []float32{1}, gpu.StaticDraw)
	})
}

func TestElementBindingBelongsToVertexArray(t *testing.T) {
	d := New()
	vao := d.CreateVertexArray()
	idx := d.CreateBuffer()

	d.BindVertexArray(vao)
	d.BindBuffer(gpu.ElementArrayBuffer, idx)
	d.BindVertexArray(gpu.None)
	assert.Equal(t, gpu.None, d.BoundBuffer(gpu.ElementArrayBuffer))

	d.BindVertexArray(vao)
	assert.Equal(t, idx, d.BoundBuffer(gpu.ElementArrayBuffer))
}

func TestAttribPointerRequiresBindings(t *testing.T) {
	d := New()
	assert.Panics(t, func() { d.VertexAttribPointer(0, 3, 0, 0) }, "no vertex array bound")

	vao := d.CreateVertexArray()
	d.BindVertexArray(vao)
	assert.Panics(t, func() { d.VertexAttribPointer(0, 3, 0, 0) }, "no array buffer bound")
}

func TestDeleteRules(t *testing.T) {
	d := New()
	vao := d.CreateVertexArray()
	buf := d.CreateBuffer()

	d.BindVertexArray(vao)
	d.BindBuffer(gpu.ArrayBuffer, buf)
	assert.Panics(t, func() { d.DeleteVertexArray(vao) })
	assert.Panics(t, func() { d.DeleteBuffer(buf) })

	d.BindVertexArray(gpu.None)
	d.BindBuffer(gpu.ArrayBuffer, gpu.None)
	d.DeleteVertexArray(vao)
	d.DeleteBuffer(buf)
	assert.Equal(t, 0, d.LiveObjects())

	defer func() {
		r := recover()
		require.NotNil(t, r)
		err, ok := r.(*gpu.DriverStateError)
		require.True(t, ok)
		assert.ErrorIs(t, err, gpu.ErrInvalidHandle)
		assert.Equal(t, buf, err.Handle)
	}()
	d.DeleteBuffer(buf)
}

func TestDeleteNoneIsIgnored(t *testing.T) {
	d := New()
	assert.NotPanics(t, func() {
		d.DeleteVertexArray(gpu.None)
		d.DeleteBuffer(gpu.None)
		d.DeleteShader(gpu.None)
		d.DeleteProgram(gpu.None)
	})
}

func TestAllocationLimit(t *testing.T) {
	d := New(WithAllocationLimit(1))
	assert.NotEqual(t, gpu.None, d.CreateBuffer())
	assert.Equal(t, gpu.None, d.CreateBuffer())
	assert.Equal(t, gpu.None, d.CreateProgram())
}

func TestCompileFailureLog(t *testing.T) {
	d := New()
	sh := d.CreateShader(gpu.VertexStage)
	d.ShaderSource(sh, "#version 410 core\nvoid main() {\n")
	d.CompileShader(sh)
	assert.False(t, d.ShaderCompiled(sh))
	assert.Contains(t, d.ShaderInfoLog(sh), "unclosed brace")
}

func TestLinkAssignsAttributesAndUniforms(t *testing.T) {
	d := New()
	p := linkedProgram(t, d)

	slot, ok := d.AttributeLocation(p, "position")
	require.True(t, ok)
	assert.Equal(t, uint32(0), slot)
	slot, ok = d.AttributeLocation(p, "uv")
	require.True(t, ok)
	assert.Equal(t, uint32(1), slot)

	assert.NotEqual(t, gpu.UnknownLocation, d.UniformLocation(p, "transform"))
	assert.NotEqual(t, gpu.UnknownLocation, d.UniformLocation(p, "brightness"))
	assert.Equal(t, gpu.UnknownLocation, d.UniformLocation(p, "missing"))
}

func TestLinkFailsOnInterfaceMismatch(t *testing.T) {
	d := New()
	vs := d.CreateShader(gpu.VertexStage)
	d.ShaderSource(vs, "#version 410 core\nvoid main() {\n}\n")
	d.CompileShader(vs)

	fs := d.CreateShader(gpu.FragmentStage)
	d.ShaderSource(fs, fragmentSrc)
	d.CompileShader(fs)

	p := d.CreateProgram()
	d.AttachShader(p, vs)
	d.AttachShader(p, fs)
	d.LinkProgram(p)
	assert.False(t, d.ProgramLinked(p))
	assert.Contains(t, d.ProgramInfoLog(p), `"passUV"`)
}

func TestLinkFailsWithoutStages(t *testing.T) {
	d := New()
	p := d.CreateProgram()
	d.LinkProgram(p)
	assert.False(t, d.ProgramLinked(p))
	assert.NotEmpty(t, d.ProgramInfoLog(p))
	assert.Panics(t, func() { d.UseProgram(p) })
}

func TestUniformWrites(t *testing.T) {
	d := New()
	p := linkedProgram(t, d)
	loc := d.UniformLocation(p, "brightness")

	assert.Panics(t, func() { d.Uniform1f(loc, 0.5) }, "no program in use")

	d.UseProgram(p)
	d.Uniform1f(loc, 0.5)
	v, ok := d.UniformValue(p, "brightness")
	require.True(t, ok)
	assert.Equal(t, []float32{0.5}, v)

	d.UniformMatrix4f(d.UniformLocation(p, "transform"), mgl32.Ident4())
	v, ok = d.UniformValue(p, "transform")
	require.True(t, ok)
	assert.Len(t, v, 16)

	assert.NotPanics(t, func() { d.Uniform1f(gpu.UnknownLocation, 1) })
	assert.Panics(t, func() { d.DeleteProgram(p) })
}

func TestDrawRecordsState(t *testing.T) {
	d := New()
	p := linkedProgram(t, d)

	vao := d.CreateVertexArray()
	d.BindVertexArray(vao)
	pos := d.CreateBuffer()
	d.BindBuffer(gpu.ArrayBuffer, pos)
	d.BufferFloat32(gpu.ArrayBuffer, make([]float32, 9), gpu.StaticDraw)
	d.VertexAttribPointer(0, 3, 0, 0)
	idx := d.CreateBuffer()
	d.BindBuffer(gpu.ElementArrayBuffer, idx)
	d.BufferUint16(gpu.ElementArrayBuffer, []uint16{0, 1, 2}, gpu.StaticDraw)
	d.EnableVertexAttribArray(0)
	d.EnableVertexAttribArray(1)

	assert.Panics(t, func() { d.DrawElements(gpu.Triangles, 3, gpu.UnsignedShort, 0) }, "no program in use")

	d.UseProgram(p)
	assert.Panics(t, func() { d.DrawElements(gpu.Triangles, 6, gpu.UnsignedShort, 0) }, "reads past the index buffer")
	d.DrawElements(gpu.Triangles, 3, gpu.UnsignedShort, 0)

	draws := d.Draws()
	require.Len(t, draws, 1)
	assert.Equal(t, DrawCall{
		VertexArray:   vao,
		Program:       p,
		IndexBuffer:   idx,
		Count:         3,
		EnabledSlots:  []uint32{0, 1},
		UnbackedSlots: []uint32{1},
	}, draws[0])
}

func TestCallLog(t *testing.T) {
	d := New(WithCallLog())
	d.ClearColor(0, 0, 0, 1)
	d.Clear()
	assert.Equal(t, []string{"ClearColor(0, 0, 0, 1)", "Clear()"}, d.Calls())
	assert.Equal(t, 1, d.Clears())
	assert.Equal(t, [4]float32{0, 0, 0, 1}, d.ClearColorValue())

	d.ResetLogs()
	assert.Empty(t, d.Calls())
	assert.Zero(t, d.Clears())
}
