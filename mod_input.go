package cinescroll

import (
	"github.com/go-gl/glfw/v3.3/glfw"
)

type Key int

const (
	KeyA Key = iota
	KeyH
	KeyP
	Key0
	Key1
	Key2
	Key3
	KeySpace
	KeyEscape
	KeyF12
	keyCount
)

type InputModule struct{}

// Input is the keyboard and scroll wheel state for the current frame.
type Input struct {
	Pressed      [keyCount]bool
	JustPressed  [keyCount]bool
	JustReleased [keyCount]bool

	// ScrollY is the wheel offset received since the previous frame.
	ScrollY float64

	scrollAcc float64
}

// Set records the state of key for this frame.
func (in *Input) Set(key Key, down bool) {
	if down && !in.Pressed[key] {
		in.JustPressed[key] = true
	}
	if !down && in.Pressed[key] {
		in.JustReleased[key] = true
	}
	in.Pressed[key] = down
}

// Scroll accumulates wheel movement until the next frame starts.
func (in *Input) Scroll(dy float64) { in.scrollAcc += dy }

func (in *Input) beginFrame() {
	in.JustPressed = [keyCount]bool{}
	in.JustReleased = [keyCount]bool{}
	in.ScrollY = in.scrollAcc
	in.scrollAcc = 0
}

func (mod InputModule) Install(app *App, cmd *Commands) {
	ws, ok := Resource[WindowState](app)
	if !ok {
		panic("input module: PlatformWindowModule must be installed first")
	}
	input := &Input{}
	ws.windowGlfw.SetScrollCallback(func(w *glfw.Window, xoff, yoff float64) {
		input.Scroll(yoff)
	})
	cmd.AddResources(input)
	cmd.UseSystem(System(inputSystem).InStage(Prelude))
}

func inputSystem(s *WindowState, input *Input) {
	input.beginFrame()
	for key, glfwKey := range keyToGlfw {
		input.Set(key, s.windowGlfw.GetKey(glfwKey) == glfw.Press)
	}
}

var keyToGlfw = map[Key]glfw.Key{
	KeyA:      glfw.KeyA,
	KeyH:      glfw.KeyH,
	KeyP:      glfw.KeyP,
	Key0:      glfw.Key0,
	Key1:      glfw.Key1,
	Key2:      glfw.Key2,
	Key3:      glfw.Key3,
	KeySpace:  glfw.KeySpace,
	KeyEscape: glfw.KeyEscape,
	KeyF12:    glfw.KeyF12,
}
