// Package mesh uploads indexed geometry to the GPU and draws it.
//
// A mesh owns one vertex array, one buffer per vertex attribute and one index buffer. All of
// them are allocated by the constructor and released exactly once by Dispose. The vertex array
// is left unbound after construction and after every Render call.
package mesh

// Attribute slots shared by meshes and shader programs.
const (
	// SlotPosition carries vertex positions.
	SlotPosition uint32 = 0

	// SlotColor carries per-vertex RGBA colors on colored meshes.
	SlotColor uint32 = 1

	// SlotTexCoord carries texture coordinates on textured meshes.
	SlotTexCoord uint32 = 1
)

const (
	colorSize    = 4
	texCoordSize = 2
)

// Renderable is anything the frame loop can draw and later release.
type Renderable interface {
	// Render binds the vertex array, issues one indexed draw and unbinds the vertex array.
	// The caller must have a linked program in use.
	Render()

	// Dispose releases every GPU object the renderable owns. Calling it again has no effect.
	Dispose()
}
