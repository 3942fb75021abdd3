package shader

import (
	"testing"
	"testing/fstest"

	"github.com/Carmen-Shannon/oxy-gl/engine/loader"
	"github.com/Carmen-Shannon/oxy-gl/engine/mesh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessAttributes(t *testing.T) {
	pp := NewPreProcessor(nil, nil)
	out, err := pp.Process("//@oxy:include version\n//@oxy:attribute position vec3 position\n  //@oxy:attribute texcoord vec2 uv\nvoid main() {}")
	require.NoError(t, err)
	assert.Equal(t, "#version 410 core\nlayout(location = 0) in vec3 position;\nlayout(location = 1) in vec2 uv;\nvoid main() {}", out)

	decls := pp.Declarations()
	require.Len(t, decls, 2)
	assert.Equal(t, AnnotationTypeAttribute, decls[0].Type)
	assert.Equal(t, mesh.SlotPosition, *decls[0].Slot)
	assert.Equal(t, "position", decls[0].Variable())
	assert.Equal(t, 2, decls[0].Line)
	assert.Equal(t, mesh.SlotTexCoord, *decls[1].Slot)
	assert.Equal(t, "uv", decls[1].Variable())
}

func TestProcessLeavesPlainCommentsAlone(t *testing.T) {
	pp := NewPreProcessor(nil, nil)
	src := "// a normal comment\nfloat x = 1.0; // trailing @oxy: is not an annotation\n"
	out, err := pp.Process(src)
	require.NoError(t, err)
	assert.Equal(t, src, out)
	assert.Empty(t, pp.Declarations())
}

func TestProcessIncludeFromSource(t *testing.T) {
	src := loader.FromFS(fstest.MapFS{
		"shaders/common/io.glsl": {Data: []byte("//@oxy:attribute color vec4 color\nout vec4 passColor;")},
	})
	pp := NewPreProcessor(src, map[string]string{"header": "//@oxy:include version"})

	out, err := pp.Process("//@oxy:include header\n//@oxy:include /shaders/common/io.glsl\nvoid main() {}")
	require.NoError(t, err)
	assert.Equal(t, "#version 410 core\nlayout(location = 1) in vec4 color;\nout vec4 passColor;\nvoid main() {}", out)

	decls := pp.Declarations()
	require.Len(t, decls, 1)
	assert.Equal(t, mesh.SlotColor, *decls[0].Slot)
}

func TestProcessResetsDeclarations(t *testing.T) {
	pp := NewPreProcessor(nil, nil)
	_, err := pp.Process("//@oxy:attribute position vec2 position")
	require.NoError(t, err)
	require.Len(t, pp.Declarations(), 1)

	_, err = pp.Process("void main() {}")
	require.NoError(t, err)
	assert.Empty(t, pp.Declarations())
}

func TestProcessIncludeCycle(t *testing.T) {
	pp := NewPreProcessor(nil, map[string]string{
		"a": "//@oxy:include b",
		"b": "//@oxy:include a",
	})
	_, err := pp.Process("//@oxy:include a")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIncludeCycle)
	assert.Contains(t, err.Error(), "a -> b -> a")
}

func TestProcessIncludeMissing(t *testing.T) {
	pp := NewPreProcessor(loader.FromFS(fstest.MapFS{}), nil)
	_, err := pp.Process("//@oxy:include /shaders/none.glsl")
	var rle *loader.ResourceLoadError
	assert.ErrorAs(t, err, &rle)

	pp = NewPreProcessor(nil, nil)
	_, err = pp.Process("//@oxy:include nothing")
	assert.ErrorIs(t, err, ErrAnnotation)
}

func TestProcessMalformedAnnotations(t *testing.T) {
	cases := map[string]string{
		"empty":        "//@oxy:",
		"unknown type": "//@oxy:uniform mat4 m",
		"include args": "//@oxy:include a b",
		"attr args":    "//@oxy:attribute position vec3",
		"bad slot":     "//@oxy:attribute normal vec3 normal",
		"bad type":     "//@oxy:attribute position mat4 position",
		"bad name":     "//@oxy:attribute position vec3 gl_Position",
		"digit name":   "//@oxy:attribute position vec3 3d",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewPreProcessor(nil, nil).Process("void main() {}\n" + src)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrAnnotation)
			assert.Contains(t, err.Error(), "line 2")
		})
	}
}
