package window

import (
	"fmt"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// glfwWindow holds the GLFW-specific window state.
type glfwWindow struct {
	parent *engineWindow
	window *glfw.Window
}

var _ platformWindow = &glfwWindow{}

// newGLFWWindow creates the GLFW window and its OpenGL context, registers input callbacks and
// stores it as the internal window.
//
// GLFW reference: https://www.glfw.org/docs/latest/window_guide.html
// go-gl/glfw: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw
func newGLFWWindow(w *engineWindow) error {
	runtime.LockOSThread()

	if err := glfw.Init(); err != nil {
		return fmt.Errorf("failed to initialize GLFW: %w", err)
	}

	// Reference: https://www.glfw.org/docs/latest/window_guide.html#window_hints_ctx
	glfw.DefaultWindowHints()
	glfw.WindowHint(glfw.Visible, glfw.False)
	glfw.WindowHint(glfw.Resizable, boolHint(w.resizable))
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	win, err := glfw.CreateWindow(w.width, w.height, w.title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return fmt.Errorf("failed to create GLFW window: %w", err)
	}

	gw := &glfwWindow{
		parent: w,
		window: win,
	}
	w.internalWindow = gw

	if w.resizable {
		win.SetSizeLimits(w.minWidth, w.minHeight, w.maxWidth, w.maxHeight)
	}

	if monitor := glfw.GetPrimaryMonitor(); monitor != nil {
		if mode := monitor.GetVideoMode(); mode != nil {
			width, height := win.GetSize()
			win.SetPos((mode.Width-width)/2, (mode.Height-height)/2)
		}
	}

	// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Window.SetKeyCallback
	win.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		switch action {
		case glfw.Press:
			w.dispatchKey(uint32(key), KeyPress)
		case glfw.Repeat:
			w.dispatchKey(uint32(key), KeyRepeat)
		case glfw.Release:
			w.dispatchKey(uint32(key), KeyRelease)
		}
	})

	// Framebuffer size differs from window size on high-DPI displays.
	// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Window.SetFramebufferSizeCallback
	win.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		w.resized(width, height)
	})

	win.MakeContextCurrent()
	if w.vsync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}
	win.Show()

	fbWidth, fbHeight := win.GetFramebufferSize()
	w.width = fbWidth
	w.height = fbHeight
	return nil
}

func boolHint(v bool) int {
	if v {
		return glfw.True
	}
	return glfw.False
}

func (gw *glfwWindow) shouldClose() bool {
	return gw.window.ShouldClose()
}

func (gw *glfwWindow) setShouldClose(value bool) {
	gw.window.SetShouldClose(value)
}

func (gw *glfwWindow) swapBuffers() {
	gw.window.SwapBuffers()
}

// pollEvents processes pending GLFW events without blocking.
//
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#PollEvents
func (gw *glfwWindow) pollEvents() {
	glfw.PollEvents()
}

// destroy destroys the GLFW window and terminates the GLFW library.
func (gw *glfwWindow) destroy() error {
	gw.window.SetKeyCallback(nil)
	gw.window.SetFramebufferSizeCallback(nil)
	gw.window.Destroy()
	glfw.Terminate()
	return nil
}
