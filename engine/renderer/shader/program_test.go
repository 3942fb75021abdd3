package shader

import (
	"fmt"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/Carmen-Shannon/oxy-gl/engine/gpu"
	"github.com/Carmen-Shannon/oxy-gl/engine/gpu/headless"
	"github.com/Carmen-Shannon/oxy-gl/engine/loader"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const texturedVertex = `//@oxy:include version
//@oxy:attribute position vec3 position
in vec2 textureCoords;
uniform mat4 transform;
out vec2 passCoords;
void main() {
	passCoords = textureCoords;
	gl_Position = transform * vec4(position, 1.0);
}
`

const texturedFragment = `#version 410 core
in vec2 passCoords;
uniform float brightness;
uniform vec3 tint;
uniform float enabled;
out vec4 outColor;
void main() {
	outColor = vec4(tint * brightness * enabled, 1.0);
}
`

func testSource() loader.Source {
	return loader.FromFS(fstest.MapFS{
		"shaders/textured.vert": {Data: []byte(texturedVertex)},
		"shaders/textured.frag": {Data: []byte(texturedFragment)},
		"shaders/broken.vert":   {Data: []byte("#version 410 core\nvoid main() {\n\tgl_Position = vec4(0.0);\n")},
		"shaders/empty.vert":    {Data: []byte("")},
		"shaders/blank.frag":    {Data: []byte("\n\t\n")},
		"shaders/orphan.frag":   {Data: []byte("#version 410 core\nin vec3 nowhere;\nout vec4 c;\nvoid main() {\n\tc = vec4(nowhere, 1.0);\n}\n")},
	})
}

func TestBuildAndBind(t *testing.T) {
	dev := headless.New()
	p, err := Build(dev, testSource(), "/shaders/textured.vert", "/shaders/textured.frag",
		WithLabel("textured"), WithAttribute(1, "textureCoords"))
	require.NoError(t, err)
	assert.True(t, p.Linked())
	assert.Equal(t, "textured", p.Label())

	slot, ok := dev.AttributeLocation(p.Handle(), "position")
	require.True(t, ok)
	assert.Equal(t, uint32(0), slot)
	slot, ok = dev.AttributeLocation(p.Handle(), "textureCoords")
	require.True(t, ok)
	assert.Equal(t, uint32(1), slot)

	decls := p.Declarations()
	require.Len(t, decls, 1)
	assert.Equal(t, "position", decls[0].Variable())

	p.Bind()
	assert.Equal(t, p.Handle(), dev.CurrentProgram())
	p.Unbind()
	assert.Equal(t, gpu.None, dev.CurrentProgram())
}

func TestBindAttributeBeforeLink(t *testing.T) {
	dev := headless.New()
	p, err := NewProgram(dev, testSource())
	require.NoError(t, err)
	require.NoError(t, p.AttachVertexShader("shaders/textured.vert"))
	require.NoError(t, p.AttachFragmentShader("shaders/textured.frag"))
	p.BindAttribute(3, "textureCoords")
	require.NoError(t, p.Link())

	slot, ok := dev.AttributeLocation(p.Handle(), "textureCoords")
	require.True(t, ok)
	assert.Equal(t, uint32(3), slot)
}

func TestCompileErrorBeforeLink(t *testing.T) {
	dev := headless.New()
	p, err := NewProgram(dev, testSource())
	require.NoError(t, err)

	err = p.AttachVertexShader("/shaders/broken.vert")
	require.Error(t, err)

	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, gpu.VertexStage, ce.Stage)
	assert.Equal(t, "/shaders/broken.vert", ce.Name)
	assert.NotEmpty(t, ce.Log)
	assert.False(t, p.Linked())
	assert.Equal(t, 1, dev.LiveObjects(), "the failed stage is deleted")

	assert.Panics(t, p.Bind)
	p.Dispose()
	assert.Zero(t, dev.LiveObjects())
}

func TestEmptySourceFailsToCompile(t *testing.T) {
	dev := headless.New(headless.WithCallLog())
	p, err := NewProgram(dev, testSource())
	require.NoError(t, err)

	var ce *CompileError
	require.ErrorAs(t, p.AttachVertexShader("/shaders/empty.vert"), &ce)
	assert.Equal(t, gpu.VertexStage, ce.Stage)
	assert.NotEmpty(t, ce.Log)

	require.ErrorAs(t, p.AttachFragmentShader("/shaders/blank.frag"), &ce)
	assert.Equal(t, gpu.FragmentStage, ce.Stage)
	assert.NotEmpty(t, ce.Log)

	assert.False(t, p.Linked())
	assert.Equal(t, 1, dev.LiveObjects(), "no stage object is created")
	for _, call := range dev.Calls() {
		assert.False(t, strings.HasPrefix(call, "LinkProgram"), call)
		assert.False(t, strings.HasPrefix(call, "CreateShader"), call)
	}
	p.Dispose()
	assert.Zero(t, dev.LiveObjects())
}

func TestLinkErrorOnEmptyProgram(t *testing.T) {
	dev := headless.New()
	p, err := NewProgram(dev, testSource(), WithLabel("empty"))
	require.NoError(t, err)

	err = p.Link()
	var le *LinkError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, "empty", le.Program)
	assert.NotEmpty(t, le.Log)
	assert.False(t, p.Linked())
}

func TestLinkErrorOnInterfaceMismatch(t *testing.T) {
	dev := headless.New()
	_, err := Build(dev, testSource(), "shaders/textured.vert", "shaders/orphan.frag")
	var le *LinkError
	require.ErrorAs(t, err, &le)
	assert.Contains(t, le.Log, "nowhere")
	assert.Zero(t, dev.LiveObjects(), "Build disposes partial programs")
}

func TestAttachErrors(t *testing.T) {
	dev := headless.New()
	p, err := NewProgram(dev, testSource())
	require.NoError(t, err)

	var rle *loader.ResourceLoadError
	assert.ErrorAs(t, p.AttachFragmentShader("/shaders/missing.frag"), &rle)

	require.NoError(t, p.AttachFragmentShader("/shaders/textured.frag"))
	assert.ErrorIs(t, p.AttachFragmentShader("/shaders/textured.frag"), ErrStageAttached)

	_, err = NewProgram(dev, nil)
	assert.ErrorIs(t, err, ErrNoSource)
}

func TestUniformLoaders(t *testing.T) {
	dev := headless.New()
	p, err := Build(dev, testSource(), "shaders/textured.vert", "shaders/textured.frag")
	require.NoError(t, err)

	brightness := p.UniformLocation("brightness")
	tint := p.UniformLocation("tint")
	enabled := p.UniformLocation("enabled")
	transform := p.UniformLocation("transform")
	assert.Equal(t, gpu.UnknownLocation, p.UniformLocation("missing"))

	assert.Panics(t, func() { p.LoadFloat(brightness, 1) }, "loading without Bind")

	p.Bind()
	p.LoadFloat(brightness, 0.75)
	p.LoadVector(tint, mgl32.Vec3{0.1, 0.2, 0.3})
	p.LoadBoolean(enabled, true)
	m := mgl32.Translate3D(1, 2, 3)
	p.LoadMatrix(transform, m)

	v, ok := dev.UniformValue(p.Handle(), "brightness")
	require.True(t, ok)
	assert.Equal(t, []float32{0.75}, v)
	v, _ = dev.UniformValue(p.Handle(), "tint")
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, v)
	v, _ = dev.UniformValue(p.Handle(), "enabled")
	assert.Equal(t, []float32{1}, v)
	v, _ = dev.UniformValue(p.Handle(), "transform")
	assert.Equal(t, m[:], v)

	p.LoadBoolean(enabled, false)
	v, _ = dev.UniformValue(p.Handle(), "enabled")
	assert.Equal(t, []float32{0}, v)
}

func TestUnbindIsInstanceScoped(t *testing.T) {
	dev := headless.New()
	a, err := Build(dev, testSource(), "shaders/textured.vert", "shaders/textured.frag", WithLabel("a"))
	require.NoError(t, err)
	b, err := Build(dev, testSource(), "shaders/textured.vert", "shaders/textured.frag", WithLabel("b"))
	require.NoError(t, err)

	a.Bind()
	b.Unbind()
	assert.Equal(t, a.Handle(), dev.CurrentProgram())

	b.Bind()
	assert.Panics(t, func() { a.LoadFloat(a.UniformLocation("brightness"), 1) })
}

func TestLoadTargetsMostRecentlyBound(t *testing.T) {
	dev := headless.New()
	a, err := Build(dev, testSource(), "shaders/textured.vert", "shaders/textured.frag", WithLabel("a"))
	require.NoError(t, err)
	b, err := Build(dev, testSource(), "shaders/textured.vert", "shaders/textured.frag", WithLabel("b"))
	require.NoError(t, err)

	b.Bind()
	a.Bind()
	a.LoadFloat(a.UniformLocation("brightness"), 0.5)

	v, ok := dev.UniformValue(a.Handle(), "brightness")
	require.True(t, ok)
	assert.Equal(t, []float32{0.5}, v)
	_, ok = dev.UniformValue(b.Handle(), "brightness")
	assert.False(t, ok, "b is left untouched")
}

func TestDisposeOnce(t *testing.T) {
	dev := headless.New(headless.WithCallLog())
	p, err := Build(dev, testSource(), "shaders/textured.vert", "shaders/textured.frag")
	require.NoError(t, err)
	p.Bind()

	p.Dispose()
	assert.Equal(t, gpu.None, dev.CurrentProgram())
	assert.Zero(t, dev.LiveObjects())

	calls := len(dev.Calls())
	assert.NotPanics(t, p.Dispose)
	assert.Len(t, dev.Calls(), calls)
	assert.Panics(t, p.Bind)
}

func TestDisposeDetachesBeforeDeleting(t *testing.T) {
	dev := headless.New(headless.WithCallLog())
	p, err := Build(dev, testSource(), "shaders/textured.vert", "shaders/textured.frag")
	require.NoError(t, err)

	var stages []gpu.Handle
	for _, call := range dev.Calls() {
		var prog, sh gpu.Handle
		if _, err := fmt.Sscanf(call, "AttachShader(%d, %d)", &prog, &sh); err == nil {
			stages = append(stages, sh)
		}
	}
	require.Len(t, stages, 2)

	dev.ResetLogs()
	p.Dispose()
	assert.Equal(t, []string{
		fmt.Sprintf("DetachShader(%d, %d)", p.Handle(), stages[0]),
		fmt.Sprintf("DetachShader(%d, %d)", p.Handle(), stages[1]),
		fmt.Sprintf("DeleteShader(%d)", stages[0]),
		fmt.Sprintf("DeleteShader(%d)", stages[1]),
		fmt.Sprintf("DeleteProgram(%d)", p.Handle()),
	}, dev.Calls())
}

func TestAllocationFailurePanics(t *testing.T) {
	dev := headless.New(headless.WithAllocationLimit(0))
	assert.Panics(t, func() { _, _ = NewProgram(dev, testSource()) })
}
