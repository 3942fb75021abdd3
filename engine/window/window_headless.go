package window

// KeyEvent is a key transition a headless window delivers during PollEvents.
type KeyEvent struct {
	// Frame is the number of completed swaps after which the event is delivered.
	Frame int

	Key    uint32
	Action KeyAction
}

// headlessWindow counts swaps instead of presenting and replays scripted key events.
type headlessWindow struct {
	parent  *engineWindow
	close   bool
	frames  int
	pending []KeyEvent
}

var _ platformWindow = &headlessWindow{}

func newHeadlessWindow(w *engineWindow) *headlessWindow {
	return &headlessWindow{
		parent:  w,
		pending: append([]KeyEvent(nil), w.keyEvents...),
	}
}

func (hw *headlessWindow) shouldClose() bool {
	if hw.close {
		return true
	}
	return hw.parent.frameBudget > 0 && hw.frames >= hw.parent.frameBudget
}

func (hw *headlessWindow) setShouldClose(value bool) {
	hw.close = value
}

func (hw *headlessWindow) swapBuffers() {
	hw.frames++
}

// pollEvents delivers every pending event scheduled at or before the current frame, in order.
func (hw *headlessWindow) pollEvents() {
	rest := hw.pending[:0]
	var due []KeyEvent
	for _, ev := range hw.pending {
		if ev.Frame <= hw.frames {
			due = append(due, ev)
		} else {
			rest = append(rest, ev)
		}
	}
	hw.pending = rest
	for _, ev := range due {
		hw.parent.dispatchKey(ev.Key, ev.Action)
	}
}

func (hw *headlessWindow) destroy() error {
	hw.close = true
	return nil
}
