// pre_processor.go implements the Oxy GLSL shader pre-processor. It scans shader
// source for @oxy: annotations, replaces them with spliced snippet text or generated
// vertex input declarations, and collects a declarations list the Program uses to bind
// attribute names to slots before linking.
//
// Include targets resolve against a snippet registry first and the loader.Source second,
// so shared GLSL can live either in code or next to the stage files.
package shader

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-gl/engine/loader"
)

// maxIncludeDepth bounds nested @oxy:include chains.
const maxIncludeDepth = 16

// defaultVersion is the text of the built-in "version" snippet.
const defaultVersion = "#version 410 core"

// preProcessor is the implementation of the PreProcessor interface.
type preProcessor struct {
	// src resolves include targets that are not registered snippets. May be nil.
	src loader.Source

	// snippetRegistry maps include keys to GLSL text.
	snippetRegistry map[AnnotationArg]string

	// declarations accumulates attribute annotations during a Process call.
	declarations []Annotation
}

// PreProcessor processes raw GLSL shader source containing @oxy: annotations.
type PreProcessor interface {
	// Process replaces @oxy:include annotations with the pre-processed text of their target and
	// @oxy:attribute annotations with "layout(location = N) in <type> <name>;" declarations.
	//
	// The declarations list is reset at the start of each call and can be retrieved
	// via Declarations() after Process returns.
	//
	// Parameters:
	//   - source: the raw GLSL source
	//
	// Returns:
	//   - string: the processed GLSL source
	//   - error: an error wrapping ErrAnnotation for malformed annotations, ErrIncludeCycle for
	//     recursive includes, or the loader error for an unreadable include target
	Process(source string) (string, error)

	// Declarations returns the attribute annotations collected during the most recent call to
	// Process, in source order, including those found in included text.
	//
	// Returns:
	//   - []Annotation: the declarations collected during the last Process call
	Declarations() []Annotation
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a PreProcessor with the built-in "version" snippet registered.
//
// Parameters:
//   - src: resolves include targets that are not registered snippets; may be nil
//   - snippets: extra snippet keys and their GLSL text
//
// Returns:
//   - PreProcessor: a ready-to-use pre-processor instance
func NewPreProcessor(src loader.Source, snippets map[string]string) PreProcessor {
	p := &preProcessor{
		src: src,
		snippetRegistry: map[AnnotationArg]string{
			AnnotationArgVersion: defaultVersion,
		},
	}
	for k, v := range snippets {
		p.snippetRegistry[AnnotationArg(k)] = v
	}
	return p
}

func (p *preProcessor) Process(source string) (string, error) {
	p.declarations = p.declarations[:0]
	return p.process(source, nil)
}

// process expands one level of source; stack holds the include chain leading to it.
func (p *preProcessor) process(source string, stack []string) (string, error) {
	lines := strings.Split(source, "\n")
	out := make([]string, 0, len(lines))

	for i, line := range lines {
		a, err := parseAnnotation(line, i+1)
		if err != nil {
			return "", includeContext(stack, err)
		}
		if a == nil {
			out = append(out, line)
			continue
		}

		switch a.Type {
		case annotationTypeInclude:
			text, err := p.include(a, stack)
			if err != nil {
				return "", err
			}
			out = append(out, text)
		case AnnotationTypeAttribute:
			out = append(out, fmt.Sprintf("layout(location = %d) in %s %s;", *a.Slot, a.Args[1], a.Args[2]))
			p.declarations = append(p.declarations, *a)
		default:
			return "", includeContext(stack, fmt.Errorf("line %d: unknown annotation type %q: %w", i+1, a.Type, ErrAnnotation))
		}
	}
	return strings.Join(out, "\n"), nil
}

func (p *preProcessor) include(a *Annotation, stack []string) (string, error) {
	key := string(a.Args[0])
	for _, seen := range stack {
		if seen == key {
			return "", fmt.Errorf("%s -> %s: %w", strings.Join(stack, " -> "), key, ErrIncludeCycle)
		}
	}
	if len(stack) >= maxIncludeDepth {
		return "", fmt.Errorf("include %q: nesting deeper than %d: %w", key, maxIncludeDepth, ErrIncludeCycle)
	}

	text, ok := p.snippetRegistry[a.Args[0]]
	if !ok {
		if p.src == nil {
			return "", includeContext(stack, fmt.Errorf("line %d: unknown @oxy:include target %q: %w", a.Line, key, ErrAnnotation))
		}
		var err error
		text, err = p.src.ReadText(key)
		if err != nil {
			return "", includeContext(stack, fmt.Errorf("line %d: %w", a.Line, err))
		}
	}
	return p.process(text, append(stack, key))
}

// includeContext prefixes err with the include chain it occurred in.
func includeContext(stack []string, err error) error {
	if len(stack) == 0 {
		return err
	}
	return fmt.Errorf("in %s: %w", stack[len(stack)-1], err)
}

func (p *preProcessor) Declarations() []Annotation {
	return p.declarations
}
