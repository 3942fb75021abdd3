// package common contains small value types and helpers shared across the engine. They are plain
// structs and functions, not interface-wrapped components.
package common

import "fmt"

// Color is an RGBA color with components in [0, 1].
type Color [4]float32

// Black is transparent black, the default clear color.
var Black = Color{0, 0, 0, 0}

// ColorFromSlice builds a Color from 3 or 4 components. A missing alpha defaults to 1.
//
// Parameters:
//   - v: the components
//
// Returns:
//   - Color: the color
//   - error: error if v has neither 3 nor 4 components or a component is outside [0, 1]
func ColorFromSlice(v []float32) (Color, error) {
	var c Color
	switch len(v) {
	case 3:
		c = Color{v[0], v[1], v[2], 1}
	case 4:
		c = Color{v[0], v[1], v[2], v[3]}
	default:
		return Black, fmt.Errorf("color needs 3 or 4 components, got %d", len(v))
	}
	for i, x := range c {
		if x < 0 || x > 1 {
			return Black, fmt.Errorf("color component %d = %g is outside [0, 1]", i, x)
		}
	}
	return c, nil
}

// RGBA returns the components separately.
func (c Color) RGBA() (r, g, b, a float32) {
	return c[0], c[1], c[2], c[3]
}
