package cinescroll

import (
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
)

type WindowState struct {
	windowGlfw   *glfw.Window
	WindowWidth  int
	WindowHeight int
	windowTitle  string
}

// Window exposes the GLFW window for input callbacks.
func (s *WindowState) Window() *glfw.Window { return s.windowGlfw }

// ContentScale is the display's native pixel ratio.
func (s *WindowState) ContentScale() float32 {
	x, _ := s.windowGlfw.GetContentScale()
	if x <= 0 {
		return 1
	}
	return x
}

// FramebufferSize is the drawable size in physical pixels.
func (s *WindowState) FramebufferSize() (int, int) {
	return s.windowGlfw.GetFramebufferSize()
}

// glfwClock is the frame clock while a window exists.
type glfwClock struct{}

func (glfwClock) Now() float64 { return glfw.GetTime() }

// PlatformWindowModule creates the single GLFW window. Install it before
// TimeModule so the frame clock follows glfw.GetTime.
type PlatformWindowModule struct {
	Width  int
	Height int
	Title  string
}

func NewPlatformWindow(width, height int, title string) *PlatformWindowModule {
	if width <= 0 {
		width = 1280
	}
	if height <= 0 {
		height = 720
	}
	if title == "" {
		title = "cinescroll"
	}
	return &PlatformWindowModule{
		Width:  width,
		Height: height,
		Title:  title,
	}
}

// Install provides the WindowState resource if missing.
func (m PlatformWindowModule) Install(app *App, cmd *Commands) {
	if _, ok := Resource[WindowState](app); ok {
		return
	}

	ws := createWindowState(m.Width, m.Height, m.Title)
	cmd.AddResources(ws)
	cmd.OnShutdown(func() {
		ws.windowGlfw.Destroy()
		glfw.Terminate()
	})
	cmd.UseSystem(System(windowEventsSystem).InStage(Prelude))
}

func windowEventsSystem(ws *WindowState, cmd *Commands) {
	glfw.PollEvents()
	if ws.windowGlfw.ShouldClose() {
		cmd.Exit("window closed")
	}
}

func createWindowState(windowWidth int, windowHeight int, windowTitle string) *WindowState {
	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		panic(err)
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI) // Important: tell GLFW we don't want OpenGL
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.ScaleToMonitor, glfw.True)

	win, err := glfw.CreateWindow(windowWidth, windowHeight, windowTitle, nil, nil)
	if err != nil {
		panic(err)
	}

	return &WindowState{
		windowGlfw:   win,
		WindowWidth:  windowWidth,
		WindowHeight: windowHeight,
		windowTitle:  windowTitle,
	}
}
