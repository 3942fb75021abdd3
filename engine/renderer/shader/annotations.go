// annotations.go defines the annotation types, argument constants and parser for the
// Oxy GLSL shader pre-processor. Annotations are single-line GLSL comments prefixed
// with @oxy: that splice shared source into a stage and declare vertex inputs on the
// engine's fixed attribute slots. The parsed results are stored as Annotation values and
// consumed by the PreProcessor and Program to bind attributes without hand-written
// BindAttribute calls.
package shader

import (
	"fmt"
	"slices"
	"strings"

	"github.com/Carmen-Shannon/oxy-gl/engine/mesh"
)

// annotationPrefix is the marker that identifies an Oxy annotation within a GLSL comment line.
// Every annotation must appear on a line beginning with "//" followed by this prefix.
const annotationPrefix = "@oxy:"

// AnnotationType identifies the kind of annotation parsed from a GLSL comment line.
type AnnotationType string

const (
	// annotationTypeInclude splices the text of a registered snippet or a named resource into
	// the shader at the annotation site. The spliced text is pre-processed as well. This
	// annotation does not produce a declaration.
	//
	// Syntax: //@oxy:include <snippet key | resource name>
	//
	// Example: //@oxy:include /shaders/common/transform.glsl
	annotationTypeInclude AnnotationType = "include"

	// AnnotationTypeAttribute generates a vertex input declaration on one of the mesh attribute
	// slots and appends an Annotation to the PreProcessor's declarations list so the Program
	// can bind the variable name to the slot before linking.
	//
	// Syntax: //@oxy:attribute <slot> <glsl type> <var name>
	//
	// Example: //@oxy:attribute position vec3 position
	AnnotationTypeAttribute AnnotationType = "attribute"
)

// Annotation represents a single parsed @oxy: annotation from a GLSL source line.
type Annotation struct {
	// Type identifies which annotation was parsed (include or attribute).
	Type AnnotationType

	// Args holds the annotation's arguments. The contents depend on Type:
	//   - include:   [0] = snippet key or resource name
	//   - attribute: [0] = slot name, [1] = GLSL type, [2] = variable name
	Args []AnnotationArg

	// Line is the 1-based line number in the source where this annotation was found.
	Line int

	// Slot is the vertex attribute location for attribute annotations. Nil for include annotations.
	Slot *uint32
}

// Variable returns the declared variable name of an attribute annotation, or "".
func (a Annotation) Variable() string {
	if a.Type != AnnotationTypeAttribute || len(a.Args) < 3 {
		return ""
	}
	return string(a.Args[2])
}

// AnnotationArg is a typed string constant used as an argument in annotations.
type AnnotationArg string

// ── Slot arguments ─────────────────────────────────────────────────────────────
// These name the fixed vertex attribute slots meshes upload to.

const (
	// AnnotationArgPosition selects mesh.SlotPosition.
	AnnotationArgPosition AnnotationArg = "position"

	// AnnotationArgColor selects mesh.SlotColor.
	AnnotationArgColor AnnotationArg = "color"

	// AnnotationArgTexCoord selects mesh.SlotTexCoord.
	AnnotationArgTexCoord AnnotationArg = "texcoord"
)

// ── Type arguments ─────────────────────────────────────────────────────────────

const (
	annotationArgFloat AnnotationArg = "float"
	annotationArgVec2  AnnotationArg = "vec2"
	annotationArgVec3  AnnotationArg = "vec3"
	annotationArgVec4  AnnotationArg = "vec4"
)

// AnnotationArgVersion is the built-in snippet key for the engine's GLSL version directive.
const AnnotationArgVersion AnnotationArg = "version"

// slotRegistry maps slot arguments to attribute locations.
var slotRegistry = map[AnnotationArg]uint32{
	AnnotationArgPosition: mesh.SlotPosition,
	AnnotationArgColor:    mesh.SlotColor,
	AnnotationArgTexCoord: mesh.SlotTexCoord,
}

// validAttributeTypes lists the GLSL types accepted in attribute annotations. Mesh
// attributes are always float tuples.
var validAttributeTypes = []AnnotationArg{
	annotationArgFloat,
	annotationArgVec2,
	annotationArgVec3,
	annotationArgVec4,
}

// parseAnnotation attempts to parse a single line of GLSL source as an @oxy: annotation.
// Returns nil with no error for lines that do not contain the annotation prefix.
//
// Parameters:
//   - line: the raw GLSL source line to parse
//   - lineNum: the 1-based line number for error reporting
//
// Returns:
//   - *Annotation: the parsed annotation, or nil if the line is not an annotation
//   - error: a descriptive error wrapping ErrAnnotation if the annotation is malformed
func parseAnnotation(line string, lineNum int) (*Annotation, error) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "//") {
		return nil, nil
	}
	_, after, ok := strings.Cut(trimmed, annotationPrefix)
	if !ok {
		return nil, nil
	}

	args := strings.Fields(after)
	if len(args) == 0 {
		return nil, fmt.Errorf("line %d: empty @oxy annotation: %w", lineNum, ErrAnnotation)
	}

	switch args[0] {
	case string(annotationTypeInclude):
		if len(args) != 2 {
			return nil, fmt.Errorf("line %d: @oxy include annotation requires exactly one argument: %w", lineNum, ErrAnnotation)
		}
		return &Annotation{
			Type: annotationTypeInclude,
			Args: []AnnotationArg{AnnotationArg(args[1])},
			Line: lineNum,
		}, nil
	case string(AnnotationTypeAttribute):
		if len(args) != 4 {
			return nil, fmt.Errorf("line %d: @oxy attribute annotation requires exactly three arguments (slot, type, name): %w", lineNum, ErrAnnotation)
		}
		slot, ok := slotRegistry[AnnotationArg(args[1])]
		if !ok {
			return nil, fmt.Errorf("line %d: unknown attribute slot %q in @oxy attribute annotation: %w", lineNum, args[1], ErrAnnotation)
		}
		if !slices.Contains(validAttributeTypes, AnnotationArg(args[2])) {
			return nil, fmt.Errorf("line %d: unsupported attribute type %q in @oxy attribute annotation: %w", lineNum, args[2], ErrAnnotation)
		}
		if !isIdentifier(args[3]) {
			return nil, fmt.Errorf("line %d: invalid variable name %q in @oxy attribute annotation: %w", lineNum, args[3], ErrAnnotation)
		}
		return &Annotation{
			Type: AnnotationTypeAttribute,
			Args: []AnnotationArg{AnnotationArg(args[1]), AnnotationArg(args[2]), AnnotationArg(args[3])},
			Line: lineNum,
			Slot: &slot,
		}, nil
	default:
		return nil, fmt.Errorf("line %d: unknown @oxy annotation type %q: %w", lineNum, args[0], ErrAnnotation)
	}
}

func isIdentifier(s string) bool {
	if s == "" || strings.HasPrefix(s, "gl_") {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
