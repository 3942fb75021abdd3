package mesh

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/Carmen-Shannon/oxy-gl/engine/gpu"
)

// bufferSet is the GPU state shared by every mesh kind: one vertex array, attribute buffers in
// slot order and one index buffer.
type bufferSet struct {
	dev    gpu.Device
	logger *slog.Logger
	label  string
	usage  gpu.BufferUsage

	vao         gpu.Handle
	attribs     []gpu.Handle
	index       gpu.Handle
	indexCount  int32
	vertexCount int
	disposed    bool
}

// begin allocates and binds the vertex array. Every attribute and index upload must happen
// between begin and end.
func (b *bufferSet) begin() {
	b.vao = gpu.MustHandle("CreateVertexArray", b.dev.CreateVertexArray())
	b.dev.BindVertexArray(b.vao)
}

// attribute uploads one float attribute and points slot at it.
func (b *bufferSet) attribute(slot uint32, width int32, data []float32) {
	buf := gpu.MustHandle("CreateBuffer", b.dev.CreateBuffer())
	b.dev.BindBuffer(gpu.ArrayBuffer, buf)
	b.dev.BufferFloat32(gpu.ArrayBuffer, data, b.usage)
	b.dev.VertexAttribPointer(slot, width, 0, 0)
	b.attribs = append(b.attribs, buf)
}

// indices uploads the index buffer. The element binding is recorded in the bound vertex array.
func (b *bufferSet) indices(data []uint16) {
	b.index = gpu.MustHandle("CreateBuffer", b.dev.CreateBuffer())
	b.dev.BindBuffer(gpu.ElementArrayBuffer, b.index)
	b.dev.BufferUint16(gpu.ElementArrayBuffer, data, b.usage)
	b.indexCount = int32(len(data))
}

// end enables the given slots and unbinds the vertex array and array buffer.
func (b *bufferSet) end(slots ...uint32) {
	for _, slot := range slots {
		b.dev.EnableVertexAttribArray(slot)
	}
	b.dev.BindVertexArray(gpu.None)
	b.dev.BindBuffer(gpu.ArrayBuffer, gpu.None)
	b.logger.Debug("mesh: uploaded",
		"label", b.label,
		"vao", b.vao,
		"vertices", b.vertexCount,
		"indices", b.indexCount)
}

func (b *bufferSet) render() {
	if b.disposed {
		gpu.Violation("Render", b.vao, gpu.ErrDisposed, "mesh %q", b.label)
	}
	b.dev.BindVertexArray(b.vao)
	b.dev.DrawElements(gpu.Triangles, b.indexCount, gpu.UnsignedShort, 0)
	b.dev.BindVertexArray(gpu.None)
}

func (b *bufferSet) dispose() {
	if b.disposed {
		return
	}
	b.dev.BindVertexArray(gpu.None)
	b.dev.BindBuffer(gpu.ArrayBuffer, gpu.None)
	b.dev.BindBuffer(gpu.ElementArrayBuffer, gpu.None)

	b.dev.DeleteVertexArray(b.vao)
	for _, buf := range b.attribs {
		b.dev.DeleteBuffer(buf)
	}
	b.dev.DeleteBuffer(b.index)
	b.disposed = true
	b.logger.Debug("mesh: disposed", "label", b.label, "vao", b.vao)
}

func (b *bufferSet) Label() string {
	return b.label
}

func (b *bufferSet) VertexArray() gpu.Handle {
	return b.vao
}

func (b *bufferSet) Buffers() []gpu.Handle {
	return slices.Clone(b.attribs)
}

func (b *bufferSet) IndexBuffer() gpu.Handle {
	return b.index
}

func (b *bufferSet) IndexCount() int {
	return int(b.indexCount)
}

func (b *bufferSet) VertexCount() int {
	return b.vertexCount
}

func (b *bufferSet) Disposed() bool {
	return b.disposed
}

// validateTuples checks that data splits into whole tuples of width and returns the tuple count.
func validateTuples(label, field string, data []float32, width int32) (int, error) {
	if width < 2 || width > 4 {
		return 0, &DataError{Mesh: label, Field: field, Err: ErrTupleWidth, Detail: fmt.Sprintf("unsupported width %d", width)}
	}
	if len(data)%int(width) != 0 {
		return 0, &DataError{Mesh: label, Field: field, Err: ErrTupleWidth, Detail: fmt.Sprintf("%d floats, width %d", len(data), width)}
	}
	return len(data) / int(width), nil
}

func validateIndices(label string, indices []uint16, vertexCount int) error {
	if len(indices) == 0 || len(indices)%3 != 0 {
		return &DataError{Mesh: label, Field: "indices", Err: ErrIndexCount, Detail: fmt.Sprintf("%d indices", len(indices))}
	}
	for i, idx := range indices {
		if int(idx) >= vertexCount {
			return &DataError{Mesh: label, Field: "indices", Err: ErrIndexRange, Detail: fmt.Sprintf("indices[%d] = %d, vertex count %d", i, idx, vertexCount)}
		}
	}
	return nil
}

func validatePositions(label string, vertices []float32, width int32) (int, error) {
	if len(vertices) == 0 {
		return 0, &DataError{Mesh: label, Field: "vertices", Err: ErrNoVertices}
	}
	return validateTuples(label, "vertices", vertices, width)
}
