package common

import "fmt"

// Key codes read by the demo and the window. Printable keys use their ASCII value, matching
// GLFW: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
const (
	KeySpace = 32  // Spacebar (ASCII)
	KeyE     = 69  // E key (ASCII)
	KeyQ     = 81  // Q key (ASCII)
	KeyEsc   = 256 // Escape key (GLFW)
)

var keyNames = map[uint32]string{
	KeySpace: "Space",
	KeyEsc:   "Escape",
}

// KeyName returns a readable name for a key code: the character of a printable key, a name for
// the keys above, or "key(N)".
func KeyName(key uint32) string {
	if name, ok := keyNames[key]; ok {
		return name
	}
	if key > 32 && key < 97 {
		return string(rune(key))
	}
	return fmt.Sprintf("key(%d)", key)
}
