package cinescroll

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/gekko3d/cinescroll/rt/gpu"
)

const ScopeGPU = "gpu"

type GpuState struct {
	surface       *wgpu.Surface
	adapter       *wgpu.Adapter
	device        *wgpu.Device
	queue         *wgpu.Queue
	surfaceConfig *wgpu.SurfaceConfiguration

	pass     *gpu.PostPass
	uniforms []float32
	hud      *HUD
	log      Logger
	resized  bool
}

// GpuModule renders the post pipeline into the window. It needs the window,
// post and profiler resources; the HUD is drawn when installed.
type GpuModule struct{}

func (GpuModule) Install(app *App, cmd *Commands) {
	ws, ok := Resource[WindowState](app)
	if !ok {
		panic("gpu module: PlatformWindowModule must be installed first")
	}
	if _, ok := Resource[Post](app); !ok {
		panic("gpu module: PostModule must be installed first")
	}
	ensureResource(app, NewProfiler)

	gs, err := createGpuState(ws)
	if err != nil {
		panic(fmt.Errorf("gpu module: %w", err))
	}
	gs.hud, _ = Resource[HUD](app)
	gs.log = Named(app.Logger(), "gpu")
	gs.uniforms = make([]float32, 0, gpu.UniformFloats)
	gs.resized = true

	ws.windowGlfw.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		gs.resize(width, height)
	})

	cmd.AddResources(gs)
	cmd.OnShutdown(gs.release)
	cmd.UseSystem(System(gpuRenderSystem).InStage(Render))
}

func gpuRenderSystem(t *Time, ws *WindowState, gs *GpuState, p *Post, prof *Profiler) {
	prof.BeginScope(ScopeGPU)
	defer prof.EndScope(ScopeGPU)
	log := gs.logf

	if p.DPRPushed() || gs.resized {
		fbW, fbH := ws.FramebufferSize()
		w, h := gpu.ScaledExtent(fbW, fbH, p.AppliedDPR(), p.NativeDPR)
		if err := gs.pass.ResizeScene(w, h); err != nil {
			log("resize scene target: %v", err)
			return
		}
		gs.resized = false
		prof.SetCount("realloc", gs.pass.Reallocations())
	}

	if gs.hud != nil && gs.hud.Visible && gs.hud.Image() != nil {
		if err := gs.pass.UploadOverlay(gs.hud.Image()); err != nil {
			log("hud upload: %v", err)
		}
	} else if gs.pass.OverlaySize() != [2]float32{} {
		if err := gs.pass.UploadOverlay(nil); err != nil {
			log("hud upload: %v", err)
		}
	}

	gs.uniforms = gpu.Pack(gs.uniforms, p.Pipeline.Stages(), gpu.FrameValues{
		DPR:     p.AppliedDPR(),
		Time:    float32(t.Elapsed),
		Overlay: gs.pass.OverlaySize(),
		Output:  [2]float32{float32(gs.surfaceConfig.Width), float32(gs.surfaceConfig.Height)},
	})
	if err := gs.pass.Upload(gs.uniforms); err != nil {
		log("uniform upload: %v", err)
		return
	}

	nextTexture, err := gs.surface.GetCurrentTexture()
	if err != nil {
		log("GetCurrentTexture failed: %v", err)
		return
	}
	defer nextTexture.Release()

	view, err := nextTexture.CreateView(nil)
	if err != nil {
		log("CreateView failed: %v", err)
		return
	}
	defer view.Release()

	encoder, err := gs.device.CreateCommandEncoder(nil)
	if err != nil {
		log("CreateCommandEncoder failed: %v", err)
		return
	}
	defer encoder.Release()
	if err := gs.pass.Encode(encoder, view); err != nil {
		log("%v", err)
		return
	}
	cmdBuf, err := encoder.Finish(nil)
	if err != nil {
		log("Encoder Finish failed: %v", err)
		return
	}
	defer cmdBuf.Release()
	gs.queue.Submit(cmdBuf)
	gs.surface.Present()
}

func (gs *GpuState) logf(format string, args ...any) {
	gs.log.Errorf(format, args...)
}

func (gs *GpuState) resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	gs.surfaceConfig.Width = uint32(width)
	gs.surfaceConfig.Height = uint32(height)
	gs.surface.Configure(gs.adapter, gs.device, gs.surfaceConfig)
	gs.resized = true
}

func (gs *GpuState) release() {
	if gs.pass != nil {
		gs.pass.Release()
	}
	gs.queue.Release()
	gs.device.Release()
	gs.adapter.Release()
	gs.surface.Release()
}

func createGpuState(s *WindowState) (*GpuState, error) {
	instance := wgpu.CreateInstance(nil)
	defer instance.Release()
	// wraps GLFW window into a wgpu surface.
	surface := instance.CreateSurface(wgpuglfw.GetSurfaceDescriptor(s.windowGlfw))
	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: surface,
		PowerPreference:   wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		return nil, err
	}
	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
	})
	if err != nil {
		return nil, err
	}
	queue := device.GetQueue()

	width, height := s.FramebufferSize()
	caps := surface.GetCapabilities(adapter)
	surfaceConfig := wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      caps.Formats[0],
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: wgpu.PresentModeFifo, // vsync
		AlphaMode:   caps.AlphaModes[0],
	}
	surface.Configure(adapter, device, &surfaceConfig)

	pass, err := gpu.NewPostPass(device, surfaceConfig.Format)
	if err != nil {
		return nil, err
	}

	return &GpuState{
		surface:       surface,
		adapter:       adapter,
		device:        device,
		queue:         queue,
		surfaceConfig: &surfaceConfig,
		pass:          pass,
	}, nil
}
