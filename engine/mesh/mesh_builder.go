package mesh

import (
	"log/slog"

	"github.com/Carmen-Shannon/oxy-gl/engine/gpu"
)

// meshConfig holds the options shared by every mesh constructor.
type meshConfig struct {
	label        string
	positionSize int32
	usage        gpu.BufferUsage
	logger       *slog.Logger
	texCoords    []float32
}

// MeshBuilderOption is a functional option for configuring a mesh.
// Use the With* functions to create options.
type MeshBuilderOption func(c *meshConfig)

// WithLabel names the mesh in log output and errors.
//
// Parameters:
//   - label: the mesh name
//
// Returns:
//   - MeshBuilderOption: option function to apply
func WithLabel(label string) MeshBuilderOption {
	return func(c *meshConfig) {
		c.label = label
	}
}

// WithPositionSize overrides the number of floats per vertex position.
// Colored meshes default to 2, textured meshes to 3. Accepted values are 2, 3 and 4.
//
// Parameters:
//   - size: floats per position
//
// Returns:
//   - MeshBuilderOption: option function to apply
func WithPositionSize(size int) MeshBuilderOption {
	return func(c *meshConfig) {
		c.positionSize = int32(size)
	}
}

// WithUsage sets the usage hint passed with every buffer upload. Defaults to gpu.StaticDraw.
//
// Parameters:
//   - usage: the buffer usage hint
//
// Returns:
//   - MeshBuilderOption: option function to apply
func WithUsage(usage gpu.BufferUsage) MeshBuilderOption {
	return func(c *meshConfig) {
		c.usage = usage
	}
}

// WithTexCoords backs the texture coordinate slot of a textured mesh with two floats per vertex.
// Without it the slot stays enabled but has no buffer attached.
//
// Parameters:
//   - uv: texture coordinates, one pair per vertex
//
// Returns:
//   - MeshBuilderOption: option function to apply
func WithTexCoords(uv []float32) MeshBuilderOption {
	return func(c *meshConfig) {
		c.texCoords = uv
	}
}

// WithLogger sets the logger used for allocation and disposal tracing.
//
// Parameters:
//   - logger: the structured logger
//
// Returns:
//   - MeshBuilderOption: option function to apply
func WithLogger(logger *slog.Logger) MeshBuilderOption {
	return func(c *meshConfig) {
		c.logger = logger
	}
}

func newMeshConfig(defaultPositionSize int32, opts []MeshBuilderOption) *meshConfig {
	c := &meshConfig{
		positionSize: defaultPositionSize,
		usage:        gpu.StaticDraw,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}
