package gldevice

import "log/slog"

// DeviceBuilderOption is a functional option for configuring the OpenGL device.
type DeviceBuilderOption func(d *glDevice)

// WithLogger sets the logger that receives context information.
//
// Parameters:
//   - logger: the structured logger
//
// Returns:
//   - DeviceBuilderOption: option function to apply
func WithLogger(logger *slog.Logger) DeviceBuilderOption {
	return func(d *glDevice) {
		d.logger = logger
	}
}
