// Package gpu defines the driver contract used by meshes, shader programs and the frame loop.
// The Device interface mirrors the small slice of the OpenGL 4.1 core API that the engine
// needs, so that the same resource lifecycle code runs against a real GL context
// (gpu/gldevice) or the software emulation used for tests and preflight (gpu/headless).
package gpu

import "github.com/go-gl/mathgl/mgl32"

// Handle is an opaque driver object name for a buffer, vertex array, shader stage or program.
// The zero Handle means "none" and is never returned by a successful allocation.
type Handle uint32

// None is the zero Handle used to clear a binding point.
const None Handle = 0

// UniformLocation identifies a uniform variable within a linked program.
// A location of -1 denotes an unknown or optimized-out uniform; writes to it are ignored.
type UniformLocation int32

// UnknownLocation is returned by UniformLocation for names the program does not declare.
const UnknownLocation UniformLocation = -1

// BufferTarget identifies the binding point a buffer is attached to.
type BufferTarget int

const (
	// ArrayBuffer holds per-vertex attribute data.
	ArrayBuffer BufferTarget = iota

	// ElementArrayBuffer holds draw indices. Its binding is part of the bound vertex array state.
	ElementArrayBuffer
)

func (t BufferTarget) String() string {
	switch t {
	case ArrayBuffer:
		return "array buffer"
	case ElementArrayBuffer:
		return "element array buffer"
	default:
		return "unknown buffer target"
	}
}

// BufferUsage is the usage hint supplied when uploading buffer data.
type BufferUsage int

const (
	// StaticDraw marks data that is uploaded once and drawn many times.
	StaticDraw BufferUsage = iota

	// DynamicDraw marks data that is expected to be re-uploaded.
	DynamicDraw
)

// ShaderStage identifies the pipeline stage a shader object is compiled for.
type ShaderStage int

const (
	// VertexStage processes per-vertex attributes.
	VertexStage ShaderStage = iota

	// FragmentStage computes per-fragment color.
	FragmentStage
)

func (s ShaderStage) String() string {
	switch s {
	case VertexStage:
		return "vertex"
	case FragmentStage:
		return "fragment"
	default:
		return "unknown"
	}
}

// Primitive is the topology used by indexed draw calls.
type Primitive int

const (
	// Triangles draws one triangle per index triplet.
	Triangles Primitive = iota
)

// IndexType is the element type of the bound index buffer.
type IndexType int

const (
	// UnsignedShort selects 16-bit unsigned indices.
	UnsignedShort IndexType = iota
)

// Size returns the byte width of a single index.
func (t IndexType) Size() int {
	switch t {
	case UnsignedShort:
		return 2
	default:
		return 0
	}
}

// Device is the graphics driver surface used by the engine.
// All methods must be called from the thread that owns the graphics context.
// Implementations are not safe for concurrent use.
type Device interface {
	// CreateVertexArray allocates a vertex array object.
	//
	// Returns:
	//   - Handle: the new vertex array name, or None if allocation failed
	CreateVertexArray() Handle

	// BindVertexArray makes the vertex array current. Binding None unbinds.
	//
	// Parameters:
	//   - vao: the vertex array to bind
	BindVertexArray(vao Handle)

	// DeleteVertexArray releases a vertex array object.
	//
	// Parameters:
	//   - vao: the vertex array to delete
	DeleteVertexArray(vao Handle)

	// CreateBuffer allocates a buffer object.
	//
	// Returns:
	//   - Handle: the new buffer name, or None if allocation failed
	CreateBuffer() Handle

	// BindBuffer attaches a buffer to a binding point. Binding None clears the binding point.
	//
	// Parameters:
	//   - target: the binding point
	//   - buf: the buffer to bind
	BindBuffer(target BufferTarget, buf Handle)

	// BufferFloat32 copies float data into the buffer bound to target.
	//
	// Parameters:
	//   - target: the binding point whose buffer receives the data
	//   - data: the values to upload
	//   - usage: the usage hint
	BufferFloat32(target BufferTarget, data []float32, usage BufferUsage)

	// BufferUint16 copies 16-bit index data into the buffer bound to target.
	//
	// Parameters:
	//   - target: the binding point whose buffer receives the data
	//   - data: the values to upload
	//   - usage: the usage hint
	BufferUint16(target BufferTarget, data []uint16, usage BufferUsage)

	// DeleteBuffer releases a buffer object.
	//
	// Parameters:
	//   - buf: the buffer to delete
	DeleteBuffer(buf Handle)

	// VertexAttribPointer describes the float layout of an attribute slot, sourcing data
	// from the buffer currently bound to ArrayBuffer. A vertex array must be bound.
	//
	// Parameters:
	//   - slot: the attribute location
	//   - components: floats per vertex (1-4)
	//   - stride: byte stride between vertices, 0 for tightly packed
	//   - offset: byte offset of the first component
	VertexAttribPointer(slot uint32, components int32, stride int32, offset int)

	// EnableVertexAttribArray enables an attribute slot on the bound vertex array.
	//
	// Parameters:
	//   - slot: the attribute location
	EnableVertexAttribArray(slot uint32)

	// DrawElements issues an indexed draw using the bound vertex array and program.
	//
	// Parameters:
	//   - mode: the primitive topology
	//   - count: number of indices to draw
	//   - indexType: element type of the index buffer
	//   - offset: byte offset into the index buffer
	DrawElements(mode Primitive, count int32, indexType IndexType, offset int)

	// CreateShader allocates a shader object for the given stage.
	//
	// Parameters:
	//   - stage: the pipeline stage
	//
	// Returns:
	//   - Handle: the new shader name, or None if allocation failed
	CreateShader(stage ShaderStage) Handle

	// ShaderSource replaces the source text of a shader object.
	//
	// Parameters:
	//   - shader: the shader object
	//   - source: the shader text
	ShaderSource(shader Handle, source string)

	// CompileShader compiles the current source of a shader object.
	//
	// Parameters:
	//   - shader: the shader object
	CompileShader(shader Handle)

	// ShaderCompiled reports the compile status of a shader object.
	//
	// Parameters:
	//   - shader: the shader object
	//
	// Returns:
	//   - bool: true if the last compile succeeded
	ShaderCompiled(shader Handle) bool

	// ShaderInfoLog returns the diagnostic log of the last compile.
	//
	// Parameters:
	//   - shader: the shader object
	//
	// Returns:
	//   - string: the driver's diagnostic text
	ShaderInfoLog(shader Handle) string

	// DeleteShader releases a shader object.
	//
	// Parameters:
	//   - shader: the shader object
	DeleteShader(shader Handle)

	// CreateProgram allocates a program object.
	//
	// Returns:
	//   - Handle: the new program name, or None if allocation failed
	CreateProgram() Handle

	// AttachShader attaches a shader object to a program.
	AttachShader(program, shader Handle)

	// DetachShader detaches a shader object from a program.
	DetachShader(program, shader Handle)

	// BindAttribLocation associates a vertex attribute name with a slot. Takes effect at link.
	BindAttribLocation(program Handle, slot uint32, name string)

	// LinkProgram links the attached stages into an executable program.
	LinkProgram(program Handle)

	// ProgramLinked reports the link status of a program.
	//
	// Parameters:
	//   - program: the program object
	//
	// Returns:
	//   - bool: true if the last link succeeded
	ProgramLinked(program Handle) bool

	// ProgramInfoLog returns the diagnostic log of the last link.
	ProgramInfoLog(program Handle) string

	// UseProgram makes a program current. None clears the current program.
	UseProgram(program Handle)

	// CurrentProgram returns the program most recently made current through this device.
	//
	// Returns:
	//   - Handle: the current program, or None
	CurrentProgram() Handle

	// DeleteProgram releases a program object.
	DeleteProgram(program Handle)

	// UniformLocation resolves a uniform name in a linked program.
	//
	// Parameters:
	//   - program: the linked program
	//   - name: the uniform name
	//
	// Returns:
	//   - UniformLocation: the location, or UnknownLocation
	UniformLocation(program Handle, name string) UniformLocation

	// Uniform1f writes a float uniform of the current program.
	Uniform1f(loc UniformLocation, v float32)

	// Uniform3f writes a vec3 uniform of the current program.
	Uniform3f(loc UniformLocation, x, y, z float32)

	// UniformMatrix4f writes a column-major mat4 uniform of the current program.
	UniformMatrix4f(loc UniformLocation, m mgl32.Mat4)

	// ClearColor sets the color used by Clear.
	ClearColor(r, g, b, a float32)

	// Clear clears the color buffer of the current framebuffer.
	Clear()

	// Viewport maps normalized device coordinates to the given framebuffer rectangle.
	//
	// Parameters:
	//   - x, y: lower-left corner in pixels
	//   - width, height: size in pixels
	Viewport(x, y, width, height int32)
}

// BufferReader is implemented by devices that can read buffer contents back to the CPU.
type BufferReader interface {
	// ReadBufferFloat32 returns the contents of a buffer interpreted as float32 values.
	//
	// Parameters:
	//   - buf: the buffer to read
	//
	// Returns:
	//   - []float32: a copy of the buffer contents
	ReadBufferFloat32(buf Handle) []float32
}
