package preflight

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"
	"testing/fstest"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-gl/engine/config"
	"github.com/Carmen-Shannon/oxy-gl/engine/gpu"
	"github.com/Carmen-Shannon/oxy-gl/engine/gpu/headless"
	"github.com/Carmen-Shannon/oxy-gl/engine/loader"
	"github.com/Carmen-Shannon/oxy-gl/engine/mesh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const vertexText = `//@oxy:include version
//@oxy:attribute position vec2 position
//@oxy:attribute color vec4 color
out vec4 passColor;
void main() {
	passColor = color;
	gl_Position = vec4(position, 0.0, 1.0);
}
`

const fragmentText = `//@oxy:include version
in vec4 passColor;
out vec4 outColor;
void main() {
	outColor = passColor;
}
`

func source() loader.Source {
	return loader.FromFS(fstest.MapFS{
		"shaders/colored.vert": {Data: []byte(vertexText)},
		"shaders/colored.frag": {Data: []byte(fragmentText)},
	})
}

func quietLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

func testConfig(meshes ...config.MeshConfig) *config.Config {
	cfg := &config.Config{
		Program: config.ProgramConfig{
			Vertex:   "/shaders/colored.vert",
			Fragment: "/shaders/colored.frag",
		},
		Meshes: meshes,
	}
	cfg.Normalize()
	return cfg
}

var coloredQuad = config.MeshConfig{
	Label:     "quad",
	Kind:      config.MeshKindColored,
	Positions: []float32{-0.5, 0.5, -0.5, -0.5, 0.5, 0.5, 0.5, -0.5},
	Colors:    []float32{1, 0, 0, 1, 0, 1, 0, 1, 0, 0, 1, 1, 1, 1, 1, 1},
	Indices:   []uint16{0, 1, 2, 1, 2, 3},
}

var texturedTriangle = config.MeshConfig{
	Label:     "tri",
	Kind:      config.MeshKindTextured,
	Positions: []float32{0, 0.5, 0, -0.5, -0.5, 0, 0.5, -0.5, 0},
	Indices:   []uint16{0, 1, 2},
}

func TestCheckPasses(t *testing.T) {
	var logs bytes.Buffer
	c := NewChecker(source(), WithWorkers(2), WithLogger(quietLogger(&logs)))

	report := c.Check(testConfig(coloredQuad, texturedTriangle))
	require.NoError(t, report.Err())
	require.Len(t, report.Results, 3)

	for i, r := range report.Results {
		assert.Equal(t, i, r.Index)
		assert.True(t, r.OK(), "check %d", i)
		assert.Zero(t, r.Leaked)
	}
	assert.Equal(t, CheckProgram, report.Results[0].Kind)
	assert.Equal(t, "main", report.Results[0].Name)

	quad := report.Results[1]
	assert.Equal(t, CheckMesh, quad.Kind)
	require.NotNil(t, quad.Draw)
	assert.Equal(t, int32(6), quad.Draw.Count)
	assert.Equal(t, []uint32{mesh.SlotPosition, mesh.SlotColor}, quad.Draw.EnabledSlots)
	assert.Empty(t, quad.Warnings)

	tri := report.Results[2]
	require.NotNil(t, tri.Draw)
	assert.Equal(t, int32(3), tri.Draw.Count)
	assert.Equal(t, []string{"slot 1 is enabled without data"}, tri.Warnings)
	assert.Contains(t, logs.String(), "slot 1 is enabled without data")
}

func TestCheckReportsBadMesh(t *testing.T) {
	bad := coloredQuad
	bad.Label = "bad"
	bad.Indices = []uint16{0, 1, 9}

	c := NewChecker(source(), WithLogger(quietLogger(&bytes.Buffer{})))
	report := c.Check(testConfig(coloredQuad, bad))

	assert.True(t, report.Results[0].OK())
	assert.True(t, report.Results[1].OK())
	res := report.Results[2]
	var de *mesh.DataError
	require.True(t, errors.As(res.Err, &de))
	assert.ErrorIs(t, res.Err, mesh.ErrIndexRange)
	assert.Zero(t, res.Leaked)

	err := report.Err()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `mesh "bad"`)
}

func TestCheckMissingShader(t *testing.T) {
	cfg := testConfig(coloredQuad)
	cfg.Program.Fragment = "/shaders/missing.frag"

	c := NewChecker(source(), WithLogger(quietLogger(&bytes.Buffer{})))
	report := c.Check(cfg)

	var rle *loader.ResourceLoadError
	require.True(t, errors.As(report.Results[0].Err, &rle))
	assert.Equal(t, "/shaders/missing.frag", rle.Name)
	assert.ErrorContains(t, report.Results[1].Err, "program unavailable")
}

func TestCheckRecoversDriverViolation(t *testing.T) {
	c := NewChecker(source(),
		WithLogger(quietLogger(&bytes.Buffer{})),
		WithDeviceOptions(headless.WithAllocationLimit(4)))
	report := c.Check(testConfig(coloredQuad))

	assert.True(t, report.Results[0].OK(), "program fits the limit")
	res := report.Results[1]
	assert.ErrorIs(t, res.Err, gpu.ErrInvalidHandle)
	assert.Positive(t, res.Leaked)
}

func TestCheckWithSnippet(t *testing.T) {
	src := loader.FromFS(fstest.MapFS{
		"v.vert": {Data: []byte("//@oxy:include header\n//@oxy:attribute position vec2 position\nvoid main() {\n\tgl_Position = vec4(position, 0.0, 1.0);\n}\n")},
		"f.frag": {Data: []byte("//@oxy:include header\nout vec4 c;\nvoid main() {\n\tc = vec4(1.0);\n}\n")},
	})
	cfg := testConfig()
	cfg.Program.Vertex, cfg.Program.Fragment = "v.vert", "f.frag"

	c := NewChecker(src,
		WithLogger(quietLogger(&bytes.Buffer{})),
		WithSnippet("header", "#version 410 core\nprecision highp float;"))
	assert.NoError(t, c.Check(cfg).Err())

	plain := NewChecker(src, WithLogger(quietLogger(&bytes.Buffer{})))
	assert.Error(t, plain.Check(cfg).Err(), "unknown include without the snippet")
}

func TestBuildMeshUnknownKind(t *testing.T) {
	_, err := BuildMesh(headless.New(), config.MeshConfig{Label: "x", Kind: "sprite"})
	assert.ErrorIs(t, err, config.ErrInvalid)
}

type countingPool struct {
	worker.DynamicWorkerPool
	stops int
}

func (p *countingPool) Stop() {
	p.stops++
	p.DynamicWorkerPool.Stop()
}

func TestCheckStopsItsPool(t *testing.T) {
	var pools []*countingPool
	c := NewChecker(source(), WithWorkers(2), WithLogger(quietLogger(&bytes.Buffer{})))
	c.newPool = func(workers int) worker.DynamicWorkerPool {
		assert.Equal(t, 2, workers)
		p := &countingPool{DynamicWorkerPool: newPool(workers)}
		pools = append(pools, p)
		return p
	}

	require.NoError(t, c.Check(testConfig(coloredQuad)).Err())
	require.NoError(t, c.Check(testConfig(coloredQuad, texturedTriangle)).Err())

	require.Len(t, pools, 2, "one pool per Check")
	for _, p := range pools {
		assert.Equal(t, 1, p.stops)
	}
}
