package shader

import "log/slog"

// ProgramBuilderOption is a functional option for configuring a Program.
// Use the With* functions to create options.
type ProgramBuilderOption func(p *program)

// WithLabel names the program in log output and link errors.
//
// Parameters:
//   - label: the program name
//
// Returns:
//   - ProgramBuilderOption: option function to apply
func WithLabel(label string) ProgramBuilderOption {
	return func(p *program) {
		p.label = label
	}
}

// WithLogger sets the logger used for compile and link diagnostics.
//
// Parameters:
//   - logger: the structured logger
//
// Returns:
//   - ProgramBuilderOption: option function to apply
func WithLogger(logger *slog.Logger) ProgramBuilderOption {
	return func(p *program) {
		p.logger = logger
	}
}

// WithAttribute binds an attribute name to a slot as soon as the program object exists.
// Equivalent to calling BindAttribute before the first Link.
//
// Parameters:
//   - slot: the attribute location
//   - name: the vertex input name
//
// Returns:
//   - ProgramBuilderOption: option function to apply
func WithAttribute(slot uint32, name string) ProgramBuilderOption {
	return func(p *program) {
		p.pending = append(p.pending, attributeBinding{slot: slot, name: name})
	}
}

// WithSnippet registers GLSL text that stage sources can splice in with //@oxy:include <key>.
//
// Parameters:
//   - key: the include key
//   - text: the GLSL text
//
// Returns:
//   - ProgramBuilderOption: option function to apply
func WithSnippet(key, text string) ProgramBuilderOption {
	return func(p *program) {
		if p.snippets == nil {
			p.snippets = make(map[string]string)
		}
		p.snippets[key] = text
	}
}
