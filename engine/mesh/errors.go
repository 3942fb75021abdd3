package mesh

import (
	"errors"
	"fmt"
)

var (
	// ErrNoVertices reports an empty position array.
	ErrNoVertices = errors.New("no vertices")

	// ErrTupleWidth reports an attribute array whose length is not a multiple of its tuple width,
	// or an unsupported tuple width.
	ErrTupleWidth = errors.New("length is not a multiple of the tuple width")

	// ErrColorCount reports a color array whose tuple count differs from the vertex count.
	ErrColorCount = errors.New("color count does not match vertex count")

	// ErrTexCoordCount reports a texture coordinate array whose tuple count differs from the vertex count.
	ErrTexCoordCount = errors.New("texture coordinate count does not match vertex count")

	// ErrIndexCount reports an empty index array or one that is not a multiple of 3.
	ErrIndexCount = errors.New("index count is not a positive multiple of 3")

	// ErrIndexRange reports an index that references a vertex that does not exist.
	ErrIndexRange = errors.New("index out of range")
)

// DataError reports geometry rejected before any GPU object was allocated.
type DataError struct {
	// Mesh is the label of the mesh being built, if any.
	Mesh string

	// Field names the offending input: "vertices", "colors", "texcoords" or "indices".
	Field string

	// Err is one of the package sentinels.
	Err error

	// Detail is free-form context such as the offending position.
	Detail string
}

func (e *DataError) Error() string {
	msg := fmt.Sprintf("mesh: invalid %s", e.Field)
	if e.Mesh != "" {
		msg = fmt.Sprintf("mesh %q: invalid %s", e.Mesh, e.Field)
	}
	msg += ": " + e.Err.Error()
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	return msg
}

func (e *DataError) Unwrap() error {
	return e.Err
}
