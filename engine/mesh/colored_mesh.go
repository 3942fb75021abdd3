package mesh

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-gl/engine/gpu"
)

// ColoredMesh is indexed geometry with a position and an RGBA color per vertex.
// Positions go to SlotPosition, colors to SlotColor.
type ColoredMesh struct {
	bufferSet
}

var _ Renderable = &ColoredMesh{}

// NewColoredMesh validates the geometry, uploads it and configures the vertex array.
// Positions are 2 floats per vertex unless WithPositionSize says otherwise.
//
// Parameters:
//   - dev: the device that owns the new objects
//   - vertices: flat position tuples
//   - colors: flat RGBA tuples, one per vertex
//   - indices: triangle list referencing vertices
//   - opts: variadic list of MeshBuilderOption functions
//
// Returns:
//   - *ColoredMesh: the uploaded mesh
//   - error: *DataError if the geometry is rejected; nothing is allocated in that case
func NewColoredMesh(dev gpu.Device, vertices, colors []float32, indices []uint16, opts ...MeshBuilderOption) (*ColoredMesh, error) {
	cfg := newMeshConfig(2, opts)

	vertexCount, err := validatePositions(cfg.label, vertices, cfg.positionSize)
	if err != nil {
		return nil, err
	}
	colorCount, err := validateTuples(cfg.label, "colors", colors, colorSize)
	if err != nil {
		return nil, err
	}
	if colorCount != vertexCount {
		return nil, &DataError{Mesh: cfg.label, Field: "colors", Err: ErrColorCount, Detail: fmt.Sprintf("%d colors, %d vertices", colorCount, vertexCount)}
	}
	if err := validateIndices(cfg.label, indices, vertexCount); err != nil {
		return nil, err
	}

	m := &ColoredMesh{bufferSet{
		dev:         dev,
		logger:      cfg.logger,
		label:       cfg.label,
		usage:       cfg.usage,
		vertexCount: vertexCount,
	}}
	m.begin()
	m.attribute(SlotPosition, cfg.positionSize, vertices)
	m.attribute(SlotColor, colorSize, colors)
	m.indices(indices)
	m.end(SlotPosition, SlotColor)
	return m, nil
}

// Render draws every index of the mesh as triangles.
func (m *ColoredMesh) Render() {
	m.render()
}

// Dispose unbinds the vertex array and buffer bindings, then deletes the vertex array, the
// position and color buffers and the index buffer in that order.
func (m *ColoredMesh) Dispose() {
	m.dispose()
}
