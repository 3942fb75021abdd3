package mesh

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-gl/engine/gpu"
)

// TexturedMesh is indexed geometry prepared for a texture-sampling program. Positions are
// 3 floats per vertex on SlotPosition. SlotTexCoord is always enabled; it is backed by a buffer
// only when WithTexCoords is supplied, otherwise the program reads the slot's current value.
type TexturedMesh struct {
	bufferSet
}

var _ Renderable = &TexturedMesh{}

// NewTexturedMesh validates the geometry, uploads it and configures the vertex array.
//
// Parameters:
//   - dev: the device that owns the new objects
//   - vertices: flat xyz position tuples
//   - indices: triangle list referencing vertices
//   - opts: variadic list of MeshBuilderOption functions
//
// Returns:
//   - *TexturedMesh: the uploaded mesh
//   - error: *DataError if the geometry is rejected; nothing is allocated in that case
func NewTexturedMesh(dev gpu.Device, vertices []float32, indices []uint16, opts ...MeshBuilderOption) (*TexturedMesh, error) {
	cfg := newMeshConfig(3, opts)

	vertexCount, err := validatePositions(cfg.label, vertices, cfg.positionSize)
	if err != nil {
		return nil, err
	}
	if cfg.texCoords != nil {
		uvCount, err := validateTuples(cfg.label, "texcoords", cfg.texCoords, texCoordSize)
		if err != nil {
			return nil, err
		}
		if uvCount != vertexCount {
			return nil, &DataError{Mesh: cfg.label, Field: "texcoords", Err: ErrTexCoordCount, Detail: fmt.Sprintf("%d pairs, %d vertices", uvCount, vertexCount)}
		}
	}
	if err := validateIndices(cfg.label, indices, vertexCount); err != nil {
		return nil, err
	}

	m := &TexturedMesh{bufferSet{
		dev:         dev,
		logger:      cfg.logger,
		label:       cfg.label,
		usage:       cfg.usage,
		vertexCount: vertexCount,
	}}
	m.begin()
	m.attribute(SlotPosition, cfg.positionSize, vertices)
	if cfg.texCoords != nil {
		m.attribute(SlotTexCoord, texCoordSize, cfg.texCoords)
	}
	m.indices(indices)
	m.end(SlotPosition, SlotTexCoord)
	return m, nil
}

// Render draws every index of the mesh as triangles.
func (m *TexturedMesh) Render() {
	m.render()
}

// Dispose releases the vertex array, the attribute buffers and the index buffer.
func (m *TexturedMesh) Dispose() {
	m.dispose()
}
