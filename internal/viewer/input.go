package viewer

import (
	"github.com/veandco/go-sdl2/sdl"

	"github.com/Faultbox/demwalk/internal/nav"
)

// Input tracks held keys and mouse-drag look deltas between frames.
type Input struct {
	held     map[sdl.Scancode]bool
	dragging bool
	dragX    float64
	dragY    float64

	resized       bool
	width, height int
}

// NewInput creates a new input handler.
func NewInput() *Input {
	return &Input{
		held: make(map[sdl.Scancode]bool),
	}
}

// Poll drains pending SDL events. Returns true if the viewer should quit.
func (i *Input) Poll() bool {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			return true

		case *sdl.WindowEvent:
			if e.Event == sdl.WINDOWEVENT_RESIZED {
				i.resized = true
				i.width = int(e.Data1)
				i.height = int(e.Data2)
			}

		case *sdl.KeyboardEvent:
			if e.Type == sdl.KEYDOWN {
				if e.Keysym.Scancode == sdl.SCANCODE_ESCAPE {
					return true
				}
				i.held[e.Keysym.Scancode] = true
			} else if e.Type == sdl.KEYUP {
				i.held[e.Keysym.Scancode] = false
			}

		case *sdl.MouseButtonEvent:
			if e.Button == sdl.BUTTON_LEFT {
				i.dragging = e.Type == sdl.MOUSEBUTTONDOWN
			}

		case *sdl.MouseMotionEvent:
			if i.dragging {
				i.dragX += float64(e.XRel)
				i.dragY += float64(e.YRel)
			}
		}
	}
	return false
}

// Intent converts the current input state into a movement intent. Drag
// deltas are normalized by the window size and consumed.
func (i *Input) Intent(winW, winH int) nav.Intent {
	in := nav.Intent{
		Forward:   i.held[sdl.SCANCODE_W] || i.held[sdl.SCANCODE_UP],
		Backward:  i.held[sdl.SCANCODE_S] || i.held[sdl.SCANCODE_DOWN],
		Left:      i.held[sdl.SCANCODE_A],
		Right:     i.held[sdl.SCANCODE_D],
		TurnLeft:  i.held[sdl.SCANCODE_LEFT] || i.held[sdl.SCANCODE_Q],
		TurnRight: i.held[sdl.SCANCODE_RIGHT] || i.held[sdl.SCANCODE_E],
	}
	if winW > 0 && winH > 0 {
		in.LookDX = i.dragX / float64(winW)
		// Dragging up pitches the view up.
		in.LookDY = -i.dragY / float64(winH)
	}
	i.dragX = 0
	i.dragY = 0
	return in
}

// Resized reports a pending window resize and clears it.
func (i *Input) Resized() (int, int, bool) {
	if !i.resized {
		return 0, 0, false
	}
	i.resized = false
	return i.width, i.height, true
}
