package preflight

import (
	"log/slog"

	"github.com/Carmen-Shannon/oxy-gl/engine/gpu/headless"
)

// CheckerOption is a functional option for configuring a Checker.
type CheckerOption func(c *Checker)

// WithWorkers sets the number of pool workers. Values below 1 are ignored.
//
// Parameters:
//   - n: worker count
//
// Returns:
//   - CheckerOption: option function to apply
func WithWorkers(n int) CheckerOption {
	return func(c *Checker) {
		if n >= 1 {
			c.workers = n
		}
	}
}

// WithLogger sets the logger passed down to every device, program and mesh.
//
// Parameters:
//   - logger: the structured logger
//
// Returns:
//   - CheckerOption: option function to apply
func WithLogger(logger *slog.Logger) CheckerOption {
	return func(c *Checker) {
		c.logger = logger
	}
}

// WithSnippet registers an include snippet for every program built by the checker.
//
// Parameters:
//   - key: the include key
//   - text: the snippet text
//
// Returns:
//   - CheckerOption: option function to apply
func WithSnippet(key, text string) CheckerOption {
	return func(c *Checker) {
		c.snippets[key] = text
	}
}

// WithDeviceOptions appends options to every headless device the checker creates.
func WithDeviceOptions(opts ...headless.DeviceBuilderOption) CheckerOption {
	return func(c *Checker) {
		c.devOpts = append(c.devOpts, opts...)
	}
}
