package headless

import "log/slog"

// DeviceBuilderOption is a functional option for configuring a headless device.
// Use the With* functions to create options.
type DeviceBuilderOption func(d *device)

// WithAllocationLimit makes every allocation after the first n return gpu.None,
// simulating an exhausted or lost context.
//
// Parameters:
//   - n: number of allocations that succeed
//
// Returns:
//   - DeviceBuilderOption: option function to apply
func WithAllocationLimit(n int) DeviceBuilderOption {
	return func(d *device) {
		d.allocLimit = n
	}
}

// WithCallLog enables recording of every driver call, readable through Calls.
//
// Returns:
//   - DeviceBuilderOption: option function to apply
func WithCallLog() DeviceBuilderOption {
	return func(d *device) {
		d.logCalls = true
	}
}

// WithLogger sets the logger used for debug tracing of object lifetimes.
//
// Parameters:
//   - logger: the structured logger
//
// Returns:
//   - DeviceBuilderOption: option function to apply
func WithLogger(logger *slog.Logger) DeviceBuilderOption {
	return func(d *device) {
		d.logger = logger
	}
}
