package shader

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-gl/engine/gpu"
)

var (
	// ErrStageAttached reports a second attach of the same pipeline stage.
	ErrStageAttached = errors.New("stage already attached")

	// ErrAnnotation reports a malformed @oxy: annotation.
	ErrAnnotation = errors.New("malformed annotation")

	// ErrIncludeCycle reports an @oxy:include chain that includes itself or nests too deeply.
	ErrIncludeCycle = errors.New("include cycle")

	// ErrNoSource reports a program constructed without a text source.
	ErrNoSource = errors.New("no shader source")
)

// CompileError reports a shader stage the driver rejected. Log holds the driver diagnostics.
type CompileError struct {
	Stage gpu.ShaderStage
	Name  string
	Log   string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("shader: %s shader %q failed to compile: %s", e.Stage, e.Name, e.Log)
}

// LinkError reports a program the driver could not link. Log holds the driver diagnostics.
type LinkError struct {
	Program string
	Log     string
}

func (e *LinkError) Error() string {
	if e.Program == "" {
		return "shader: program failed to link: " + e.Log
	}
	return fmt.Sprintf("shader: program %q failed to link: %s", e.Program, e.Log)
}
