package window

import (
	"fmt"
	"log/slog"

	"github.com/Carmen-Shannon/oxy-gl/common"
)

// KeyAction is the transition reported with a key event.
type KeyAction int

const (
	// KeyPress is reported when a key goes down.
	KeyPress KeyAction = iota

	// KeyRelease is reported when a key comes up.
	KeyRelease

	// KeyRepeat is reported while a key is held.
	KeyRepeat
)

func (a KeyAction) String() string {
	switch a {
	case KeyPress:
		return "press"
	case KeyRelease:
		return "release"
	case KeyRepeat:
		return "repeat"
	default:
		return "unknown"
	}
}

// Window provides a drawable surface with a graphics context and input event handling.
// Wraps platform-specific window implementations with a common interface. All methods
// must be called from the thread that created the window.
type Window interface {
	// ShouldClose reports whether a close has been requested by the user or by SetShouldClose.
	//
	// Returns:
	//   - bool: true once the window should close
	ShouldClose() bool

	// SetShouldClose sets or clears the close request.
	//
	// Parameters:
	//   - value: true to request a close
	SetShouldClose(value bool)

	// SwapBuffers presents the back buffer.
	SwapBuffers()

	// PollEvents processes pending window and input events. Callbacks run inside this call.
	PollEvents()

	// SetKeyCallback sets the function called for key events. The escape key release that
	// closes the window is handled before the callback runs.
	//
	// Parameters:
	//   - callback: function receiving the key code and action (or nil to disable)
	SetKeyCallback(callback func(key uint32, action KeyAction))

	// SetResizeCallback sets the function called when the framebuffer is resized.
	//
	// Parameters:
	//   - callback: function receiving new width and height in pixels
	SetResizeCallback(callback func(width, height int))

	// Close destroys the window and releases platform resources.
	//
	// Returns:
	//   - error: error if the window was already closed or never created
	Close() error

	// Title returns the window title.
	Title() string

	// Width returns the current framebuffer width in pixels.
	//
	// Returns:
	//   - int: width in pixels
	Width() int

	// Height returns the current framebuffer height in pixels.
	//
	// Returns:
	//   - int: height in pixels
	Height() int
}

// platformWindow is implemented by each backend holding the native window.
type platformWindow interface {
	shouldClose() bool
	setShouldClose(value bool)
	swapBuffers()
	pollEvents()
	destroy() error
}

// engineWindow is the implementation of the Window interface.
// Holds window configuration, the platform backend and event callbacks.
type engineWindow struct {
	// title is the window title displayed in the title bar.
	title string

	// maxWidth is the maximum allowed window width during resize.
	maxWidth int

	// maxHeight is the maximum allowed window height during resize.
	maxHeight int

	// minWidth is the minimum allowed window width during resize.
	minWidth int

	// minHeight is the minimum allowed window height during resize.
	minHeight int

	// width is the current framebuffer width in pixels.
	width int

	// height is the current framebuffer height in pixels.
	height int

	// vsync enables a swap interval of one.
	vsync bool

	// resizable lets the user resize the window.
	resizable bool

	// frameBudget closes a headless window after this many swaps. Zero means unlimited.
	frameBudget int

	// keyEvents are delivered by a headless window during PollEvents.
	keyEvents []KeyEvent

	logger *slog.Logger

	// internalWindow holds the platform-specific window data.
	internalWindow platformWindow

	// onKey is called for key events (if set).
	onKey func(key uint32, action KeyAction)

	// onResize is called when the framebuffer is resized.
	onResize func(width, height int)
}

var _ Window = &engineWindow{}

func defaultWindow() *engineWindow {
	return &engineWindow{
		title:     "Hello WORLD!",
		maxWidth:  1600,
		maxHeight: 1200,
		minWidth:  200,
		minHeight: 200,
		width:     500,
		height:    500,
		vsync:     true,
		resizable: true,
		logger:    slog.Default(),
	}
}

// NewWindow creates a GLFW window with an OpenGL 4.1 core context made current on the calling
// thread. The calling goroutine is locked to its OS thread. The window is created hidden,
// centered on the primary monitor and shown once the context is configured.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the visible window
//   - error: error if GLFW or the context could not be initialized
func NewWindow(options ...WindowBuilderOption) (Window, error) {
	w := defaultWindow()
	for _, opt := range options {
		opt(w)
	}
	if err := newGLFWWindow(w); err != nil {
		return nil, fmt.Errorf("failed to create platform window: %w", err)
	}
	w.logger.Info("window: created", "title", w.title, "width", w.width, "height", w.height, "vsync", w.vsync)
	return w, nil
}

// NewHeadlessWindow creates a window without a display. It closes itself after the frame
// budget set with WithFrameBudget and delivers key events set with WithKeyEvents.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the headless window
func NewHeadlessWindow(options ...WindowBuilderOption) Window {
	w := defaultWindow()
	for _, opt := range options {
		opt(w)
	}
	w.internalWindow = newHeadlessWindow(w)
	return w
}

// dispatchKey runs the built-in escape handling and the user callback.
func (w *engineWindow) dispatchKey(key uint32, action KeyAction) {
	if key == common.KeyEsc && action == KeyRelease {
		w.logger.Debug("window: escape released, closing")
		w.SetShouldClose(true)
	}
	if w.onKey != nil {
		w.onKey(key, action)
	}
}

// resized records the new framebuffer size and notifies the resize callback.
func (w *engineWindow) resized(width, height int) {
	w.width = width
	w.height = height
	if w.onResize != nil {
		w.onResize(width, height)
	}
}

func (w *engineWindow) ShouldClose() bool {
	if w.internalWindow == nil {
		return true
	}
	return w.internalWindow.shouldClose()
}

func (w *engineWindow) SetShouldClose(value bool) {
	if w.internalWindow != nil {
		w.internalWindow.setShouldClose(value)
	}
}

func (w *engineWindow) SwapBuffers() {
	if w.internalWindow != nil {
		w.internalWindow.swapBuffers()
	}
}

func (w *engineWindow) PollEvents() {
	if w.internalWindow != nil {
		w.internalWindow.pollEvents()
	}
}

func (w *engineWindow) SetKeyCallback(callback func(key uint32, action KeyAction)) {
	w.onKey = callback
}

func (w *engineWindow) SetResizeCallback(callback func(width, height int)) {
	w.onResize = callback
}

func (w *engineWindow) Close() error {
	if w.internalWindow == nil {
		return fmt.Errorf("window is not initialized")
	}
	err := w.internalWindow.destroy()
	w.internalWindow = nil
	w.logger.Info("window: closed", "title", w.title)
	return err
}

func (w *engineWindow) Title() string {
	return w.title
}

func (w *engineWindow) Width() int {
	return w.width
}

func (w *engineWindow) Height() int {
	return w.height
}
