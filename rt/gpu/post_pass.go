package gpu

import (
	"fmt"
	"image"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/gekko3d/cinescroll/rt/shaders"
)

const sceneFormat = wgpu.TextureFormatRGBA8Unorm

// PostPass renders the scene target through the post shader into the swapchain.
// The pipeline, sampler and uniform buffer live as long as the pass; the scene
// target is only reallocated when its extent changes.
type PostPass struct {
	device   *wgpu.Device
	queue    *wgpu.Queue
	pipeline *wgpu.RenderPipeline
	sampler  *wgpu.Sampler
	uniform  *wgpu.Buffer

	scene          *wgpu.Texture
	sceneView      *wgpu.TextureView
	sceneW, sceneH uint32

	overlay            *wgpu.Texture
	overlayView        *wgpu.TextureView
	overlayW, overlayH uint32
	overlayWritten     bool

	bindGroup     *wgpu.BindGroup
	reallocations int
}

func NewPostPass(device *wgpu.Device, format wgpu.TextureFormat) (*PostPass, error) {
	shader, err := device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "Post Shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.PostWGSL},
	})
	if err != nil {
		return nil, fmt.Errorf("post shader: %w", err)
	}
	defer shader.Release()

	pipeline, err := device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label: "Post Pipeline",
		Vertex: wgpu.VertexState{
			Module:     shader,
			EntryPoint: "vs_main",
		},
		Fragment: &wgpu.FragmentState{
			Module:     shader,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{{
				Format:    format,
				WriteMask: wgpu.ColorWriteMaskAll,
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology: wgpu.PrimitiveTopologyTriangleList,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("post pipeline: %w", err)
	}

	sampler, err := device.CreateSampler(&wgpu.SamplerDescriptor{
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeLinear,
		LodMaxClamp:   1.,
		MaxAnisotropy: 1,
	})
	if err != nil {
		pipeline.Release()
		return nil, fmt.Errorf("post sampler: %w", err)
	}

	uniform, err := device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "PostParamsUB",
		Size:  UniformFloats * 4,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		sampler.Release()
		pipeline.Release()
		return nil, fmt.Errorf("post uniform: %w", err)
	}

	p := &PostPass{
		device:   device,
		queue:    device.GetQueue(),
		pipeline: pipeline,
		sampler:  sampler,
		uniform:  uniform,
	}
	// 1x1 placeholders keep the bind group complete until the first resize
	if err := p.ResizeScene(1, 1); err != nil {
		p.Release()
		return nil, err
	}
	if err := p.UploadOverlay(nil); err != nil {
		p.Release()
		return nil, err
	}
	p.reallocations = 0
	return p, nil
}

// SceneExtent is the current size of the scene render target.
func (p *PostPass) SceneExtent() (uint32, uint32) { return p.sceneW, p.sceneH }

// Reallocations counts scene target reallocations.
func (p *PostPass) Reallocations() int { return p.reallocations }

// ResizeScene reallocates the scene target if the extent changed.
func (p *PostPass) ResizeScene(w, h uint32) error {
	if w == 0 || h == 0 || (w == p.sceneW && h == p.sceneH) {
		return nil
	}
	tex, view, err := p.texture("Scene Target", w, h, wgpu.TextureUsageRenderAttachment|wgpu.TextureUsageTextureBinding)
	if err != nil {
		return err
	}
	releaseTexture(p.scene, p.sceneView)
	p.scene, p.sceneView, p.sceneW, p.sceneH = tex, view, w, h
	p.reallocations++
	return p.rebind()
}

// UploadOverlay copies img into the overlay texture. A nil img hides the overlay.
func (p *PostPass) UploadOverlay(img *image.RGBA) error {
	w, h := uint32(1), uint32(1)
	if img != nil {
		w, h = uint32(img.Bounds().Dx()), uint32(img.Bounds().Dy())
	}
	if p.overlay == nil || w != p.overlayW || h != p.overlayH {
		tex, view, err := p.texture("HUD Overlay", w, h, wgpu.TextureUsageTextureBinding|wgpu.TextureUsageCopyDst)
		if err != nil {
			return err
		}
		releaseTexture(p.overlay, p.overlayView)
		p.overlay, p.overlayView, p.overlayW, p.overlayH = tex, view, w, h
		if err := p.rebind(); err != nil {
			return err
		}
	}
	p.overlayWritten = img != nil
	if img == nil {
		return nil
	}
	return p.queue.WriteTexture(p.overlay.AsImageCopy(), img.Pix, &wgpu.TextureDataLayout{
		Offset:       0,
		BytesPerRow:  uint32(img.Stride),
		RowsPerImage: h,
	}, &wgpu.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1})
}

// OverlaySize is the overlay extent in pixels, zero while hidden.
func (p *PostPass) OverlaySize() [2]float32 {
	if !p.overlayWritten {
		return [2]float32{}
	}
	return [2]float32{float32(p.overlayW), float32(p.overlayH)}
}

// Upload writes a packed uniform block (see Pack).
func (p *PostPass) Upload(values []float32) error {
	return p.queue.WriteBuffer(p.uniform, 0, wgpu.ToBytes(values))
}

// Encode clears the scene target and runs the post shader into out.
func (p *PostPass) Encode(encoder *wgpu.CommandEncoder, out *wgpu.TextureView) error {
	scenePass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       p.sceneView,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: wgpu.Color{R: 0.02, G: 0.01, B: 0.05, A: 1},
		}},
	})
	if err := scenePass.End(); err != nil {
		return fmt.Errorf("scene pass: %w", err)
	}

	postPass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       out,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: wgpu.Color{R: 0, G: 0, B: 0, A: 1},
		}},
	})
	postPass.SetPipeline(p.pipeline)
	postPass.SetBindGroup(0, p.bindGroup, nil)
	postPass.Draw(3, 1, 0, 0)
	if err := postPass.End(); err != nil {
		return fmt.Errorf("post pass: %w", err)
	}
	return nil
}

func (p *PostPass) Release() {
	if p.bindGroup != nil {
		p.bindGroup.Release()
		p.bindGroup = nil
	}
	releaseTexture(p.scene, p.sceneView)
	releaseTexture(p.overlay, p.overlayView)
	p.scene, p.sceneView, p.overlay, p.overlayView = nil, nil, nil, nil
	if p.uniform != nil {
		p.uniform.Release()
		p.uniform = nil
	}
	if p.sampler != nil {
		p.sampler.Release()
		p.sampler = nil
	}
	if p.pipeline != nil {
		p.pipeline.Release()
		p.pipeline = nil
	}
}

func (p *PostPass) texture(label string, w, h uint32, usage wgpu.TextureUsage) (*wgpu.Texture, *wgpu.TextureView, error) {
	tex, err := p.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         label,
		Size:          wgpu.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        sceneFormat,
		Usage:         usage,
		SampleCount:   1,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", label, err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, nil, fmt.Errorf("%s view: %w", label, err)
	}
	return tex, view, nil
}

// rebind rebuilds the bind group once both textures exist.
func (p *PostPass) rebind() error {
	if p.sceneView == nil || p.overlayView == nil {
		return nil
	}
	bg, err := p.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout: p.pipeline.GetBindGroupLayout(0),
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: p.uniform, Size: wgpu.WholeSize},
			{Binding: 1, TextureView: p.sceneView},
			{Binding: 2, TextureView: p.overlayView},
			{Binding: 3, Sampler: p.sampler},
		},
	})
	if err != nil {
		return fmt.Errorf("post bind group: %w", err)
	}
	if p.bindGroup != nil {
		p.bindGroup.Release()
	}
	p.bindGroup = bg
	return nil
}

func releaseTexture(tex *wgpu.Texture, view *wgpu.TextureView) {
	if view != nil {
		view.Release()
	}
	if tex != nil {
		tex.Release()
	}
}
