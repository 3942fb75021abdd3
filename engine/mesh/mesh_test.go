package mesh

import (
	"fmt"
	"testing"

	"github.com/Carmen-Shannon/oxy-gl/engine/gpu"
	"github.com/Carmen-Shannon/oxy-gl/engine/gpu/headless"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	quad2D = []float32{
		-0.5, 0.5,
		-0.5, -0.5,
		0.5, 0.5,
		0.5, -0.5,
	}
	quadColors = []float32{
		1, 0, 0, 1,
		0, 1, 0, 1,
		0, 0, 1, 1,
		1, 1, 1, 1,
	}
	quad3D = []float32{
		-0.5, 0.5, 0,
		-0.5, -0.5, 0,
		0.5, 0.5, 0,
		0.5, -0.5, 0,
	}
	quadIndices = []uint16{0, 1, 2, 1, 2, 3}
)

// useProgram links a pass-through program so draw calls are accepted.
func useProgram(t *testing.T, dev headless.Device) {
	t.Helper()
	vs := dev.CreateShader(gpu.VertexStage)
	dev.ShaderSource(vs, "#version 410 core\nin vec3 position;\nvoid main() {\n\tgl_Position = vec4(position, 1.0);\n}\n")
	dev.CompileShader(vs)
	fs := dev.CreateShader(gpu.FragmentStage)
	dev.ShaderSource(fs, "#version 410 core\nout vec4 color;\nvoid main() {\n\tcolor = vec4(1.0);\n}\n")
	dev.CompileShader(fs)
	p := dev.CreateProgram()
	dev.AttachShader(p, vs)
	dev.AttachShader(p, fs)
	dev.LinkProgram(p)
	require.True(t, dev.ProgramLinked(p), dev.ProgramInfoLog(p))
	dev.UseProgram(p)
}

func TestColoredMeshUpload(t *testing.T) {
	dev := headless.New()
	m, err := NewColoredMesh(dev, quad2D, quadColors, quadIndices, WithLabel("quad"))
	require.NoError(t, err)

	assert.Equal(t, "quad", m.Label())
	assert.Equal(t, 4, m.VertexCount())
	assert.Equal(t, 6, m.IndexCount())
	assert.Equal(t, gpu.None, dev.BoundVertexArray())

	bufs := m.Buffers()
	require.Len(t, bufs, 2)
	assert.Equal(t, quad2D, dev.ReadBufferFloat32(bufs[0]))
	assert.Equal(t, quadColors, dev.ReadBufferFloat32(bufs[1]))
	assert.Equal(t, quadIndices, dev.ReadBufferUint16(m.IndexBuffer()))
}

func TestColoredMeshRender(t *testing.T) {
	dev := headless.New()
	useProgram(t, dev)
	m, err := NewColoredMesh(dev, quad2D, quadColors, quadIndices)
	require.NoError(t, err)

	m.Render()
	m.Render()

	draws := dev.Draws()
	require.Len(t, draws, 2)
	for _, d := range draws {
		assert.Equal(t, m.VertexArray(), d.VertexArray)
		assert.Equal(t, m.IndexBuffer(), d.IndexBuffer)
		assert.Equal(t, int32(6), d.Count)
		assert.Equal(t, []uint32{SlotPosition, SlotColor}, d.EnabledSlots)
		assert.Empty(t, d.UnbackedSlots)
	}
	assert.Equal(t, gpu.None, dev.BoundVertexArray())
}

func TestColoredMeshPositionSize(t *testing.T) {
	dev := headless.New()
	m, err := NewColoredMesh(dev, quad3D, quadColors, quadIndices, WithPositionSize(3))
	require.NoError(t, err)
	assert.Equal(t, 4, m.VertexCount())
}

func TestDrawCountFollowsIndices(t *testing.T) {
	dev := headless.New()
	useProgram(t, dev)
	tri := []float32{0, 0, 1, 0, 0, 1}
	m, err := NewColoredMesh(dev, tri, quadColors[:12], []uint16{0, 1, 2})
	require.NoError(t, err)

	m.Render()
	require.Len(t, dev.Draws(), 1)
	assert.Equal(t, int32(3), dev.Draws()[0].Count)
}

func TestTexturedMeshSlotOneUnbacked(t *testing.T) {
	dev := headless.New()
	useProgram(t, dev)
	m, err := NewTexturedMesh(dev, quad3D, quadIndices)
	require.NoError(t, err)
	require.Len(t, m.Buffers(), 1)

	m.Render()
	draws := dev.Draws()
	require.Len(t, draws, 1)
	assert.Equal(t, []uint32{SlotPosition, SlotTexCoord}, draws[0].EnabledSlots)
	assert.Equal(t, []uint32{SlotTexCoord}, draws[0].UnbackedSlots)
}

func TestTexturedMeshWithTexCoords(t *testing.T) {
	dev := headless.New()
	useProgram(t, dev)
	uv := []float32{0, 0, 0, 1, 1, 0, 1, 1}
	m, err := NewTexturedMesh(dev, quad3D, quadIndices, WithTexCoords(uv))
	require.NoError(t, err)

	bufs := m.Buffers()
	require.Len(t, bufs, 2)
	assert.Equal(t, uv, dev.ReadBufferFloat32(bufs[1]))

	m.Render()
	assert.Empty(t, dev.Draws()[0].UnbackedSlots)
}

func TestValidationAllocatesNothing(t *testing.T) {
	cases := []struct {
		name     string
		build    func(gpu.Device) error
		sentinel error
	}{
		{"no vertices", func(d gpu.Device) error {
			_, err := NewColoredMesh(d, nil, nil, quadIndices)
			return err
		}, ErrNoVertices},
		{"odd position floats", func(d gpu.Device) error {
			_, err := NewColoredMesh(d, quad2D[:7], quadColors, quadIndices)
			return err
		}, ErrTupleWidth},
		{"unsupported position size", func(d gpu.Device) error {
			_, err := NewColoredMesh(d, quad2D, quadColors, quadIndices, WithPositionSize(5))
			return err
		}, ErrTupleWidth},
		{"short colors", func(d gpu.Device) error {
			_, err := NewColoredMesh(d, quad2D, quadColors[:12], quadIndices)
			return err
		}, ErrColorCount},
		{"partial color", func(d gpu.Device) error {
			_, err := NewColoredMesh(d, quad2D, quadColors[:14], quadIndices)
			return err
		}, ErrTupleWidth},
		{"index count", func(d gpu.Device) error {
			_, err := NewColoredMesh(d, quad2D, quadColors, []uint16{0, 1})
			return err
		}, ErrIndexCount},
		{"empty indices", func(d gpu.Device) error {
			_, err := NewTexturedMesh(d, quad3D, nil)
			return err
		}, ErrIndexCount},
		{"index range", func(d gpu.Device) error {
			_, err := NewColoredMesh(d, quad2D, quadColors, []uint16{0, 1, 4})
			return err
		}, ErrIndexRange},
		{"texcoord count", func(d gpu.Device) error {
			_, err := NewTexturedMesh(d, quad3D, quadIndices, WithTexCoords([]float32{0, 0, 1, 1}))
			return err
		}, ErrTexCoordCount},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dev := headless.New()
			err := tc.build(dev)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.sentinel)

			var de *DataError
			assert.ErrorAs(t, err, &de)
			assert.Zero(t, dev.LiveObjects())
		})
	}
}

func TestDataErrorMessage(t *testing.T) {
	dev := headless.New()
	_, err := NewColoredMesh(dev, quad2D, quadColors, []uint16{0, 1, 9}, WithLabel("quad"))
	require.Error(t, err)
	assert.Equal(t, `mesh "quad": invalid indices: index out of range (indices[2] = 9, vertex count 4)`, err.Error())
}

func TestDisposeOnce(t *testing.T) {
	dev := headless.New()
	m, err := NewColoredMesh(dev, quad2D, quadColors, quadIndices)
	require.NoError(t, err)
	assert.Equal(t, 4, dev.LiveObjects())

	m.Dispose()
	assert.True(t, m.Disposed())
	assert.Zero(t, dev.LiveObjects())

	assert.NotPanics(t, m.Dispose)
	assert.Zero(t, dev.LiveObjects())
}

func TestDisposeOrder(t *testing.T) {
	dev := headless.New(headless.WithCallLog())
	m, err := NewColoredMesh(dev, quad2D, quadColors, quadIndices)
	require.NoError(t, err)
	bufs := m.Buffers()

	dev.ResetLogs()
	m.Dispose()
	assert.Equal(t, []string{
		"BindVertexArray(0)",
		"BindBuffer(array buffer, 0)",
		"BindBuffer(element array buffer, 0)",
		fmt.Sprintf("DeleteVertexArray(%d)", m.VertexArray()),
		fmt.Sprintf("DeleteBuffer(%d)", bufs[0]),
		fmt.Sprintf("DeleteBuffer(%d)", bufs[1]),
		fmt.Sprintf("DeleteBuffer(%d)", m.IndexBuffer()),
	}, dev.Calls())
}

func TestRenderAfterDisposePanics(t *testing.T) {
	dev := headless.New()
	useProgram(t, dev)
	m, err := NewTexturedMesh(dev, quad3D, quadIndices)
	require.NoError(t, err)
	m.Dispose()

	defer func() {
		r := recover()
		require.NotNil(t, r)
		dse, ok := r.(*gpu.DriverStateError)
		require.True(t, ok)
		assert.ErrorIs(t, dse, gpu.ErrDisposed)
	}()
	m.Render()
}

func TestAllocationFailurePanics(t *testing.T) {
	dev := headless.New(headless.WithAllocationLimit(2))
	assert.PanicsWithError(t, "gpu: CreateBuffer: invalid handle: driver returned no object", func() {
		_, _ = NewColoredMesh(dev, quad2D, quadColors, quadIndices)
	})
}

func TestRenderablesShareDevice(t *testing.T) {
	dev := headless.New()
	useProgram(t, dev)
	var rs []Renderable
	for i := 0; i < 3; i++ {
		m, err := NewTexturedMesh(dev, quad3D, quadIndices, WithLabel(fmt.Sprintf("quad-%d", i)))
		require.NoError(t, err)
		rs = append(rs, m)
	}
	for _, r := range rs {
		r.Render()
	}
	draws := dev.Draws()
	require.Len(t, draws, 3)
	assert.NotEqual(t, draws[0].VertexArray, draws[1].VertexArray)

	for _, r := range rs {
		r.Dispose()
	}
	assert.Equal(t, 3, dev.LiveObjects(), "only the program and its two stages remain")
}
