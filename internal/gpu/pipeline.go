package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// rectPipeline owns the shader, bind group layouts, samplers, and one
// render pipeline per color target format. The shared resources are
// format-independent and created once; pipelines are created lazily and
// cached because the same draw path serves both the offscreen readback
// target (RGBA8) and host-provided surface formats (typically BGRA8).
type rectPipeline struct {
	device hal.Device

	shader        hal.ShaderModule
	frameLayout   hal.BindGroupLayout // group 0: draw info + rect records
	samplerLayout hal.BindGroupLayout // group 1: linear + nearest samplers
	atlasLayout   hal.BindGroupLayout // group 2: color + alpha atlas textures
	pipeLayout    hal.PipelineLayout

	samplerLinear  hal.Sampler
	samplerNearest hal.Sampler

	// Per-format pipeline cache.
	pipelines map[gputypes.TextureFormat]hal.RenderPipeline
}

func newRectPipeline(device hal.Device) *rectPipeline {
	return &rectPipeline{
		device:    device,
		pipelines: make(map[gputypes.TextureFormat]hal.RenderPipeline),
	}
}

// createShared builds the format-independent resources: shader module,
// bind group layouts, pipeline layout, and the two clamp-to-edge samplers.
func (p *rectPipeline) createShared() error {
	shader, err := createShaderModule(p.device, "rect_shader", rectShaderSource)
	if err != nil {
		return fmt.Errorf("compile rect shader: %w", err)
	}
	p.shader = shader

	frameLayout, err := p.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "rect_frame_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create frame layout: %w", err)
	}
	p.frameLayout = frameLayout

	samplerLayout, err := p.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "rect_sampler_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create sampler layout: %w", err)
	}
	p.samplerLayout = samplerLayout

	atlasLayout, err := p.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "rect_atlas_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create atlas layout: %w", err)
	}
	p.atlasLayout = atlasLayout

	pipeLayout, err := p.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "rect_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{p.frameLayout, p.samplerLayout, p.atlasLayout},
	})
	if err != nil {
		return fmt.Errorf("create pipeline layout: %w", err)
	}
	p.pipeLayout = pipeLayout

	if err := p.createSamplers(); err != nil {
		return err
	}
	return nil
}

func (p *rectPipeline) createSamplers() error {
	linear, err := p.device.CreateSampler(&hal.SamplerDescriptor{
		Label:        "rect_sampler_linear",
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeLinear,
		MinFilter:    gputypes.FilterModeLinear,
		MipmapFilter: gputypes.FilterModeLinear,
	})
	if err != nil {
		return fmt.Errorf("create linear sampler: %w", err)
	}
	p.samplerLinear = linear

	nearest, err := p.device.CreateSampler(&hal.SamplerDescriptor{
		Label:        "rect_sampler_nearest",
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeNearest,
		MinFilter:    gputypes.FilterModeNearest,
		MipmapFilter: gputypes.FilterModeNearest,
	})
	if err != nil {
		return fmt.Errorf("create nearest sampler: %w", err)
	}
	p.samplerNearest = nearest
	return nil
}

// pipelineFor returns the render pipeline targeting the given color format,
// creating and caching it on first use.
func (p *rectPipeline) pipelineFor(format gputypes.TextureFormat) (hal.RenderPipeline, error) {
	if pl, ok := p.pipelines[format]; ok {
		return pl, nil
	}

	// Straight (non-premultiplied) alpha: output colors carry independent
	// alpha, so color blends by source alpha while alpha accumulates.
	blend := gputypes.BlendState{
		Color: gputypes.BlendComponent{
			SrcFactor: gputypes.BlendFactorSrcAlpha,
			DstFactor: gputypes.BlendFactorOneMinusSrcAlpha,
			Operation: gputypes.BlendOperationAdd,
		},
		Alpha: gputypes.BlendComponent{
			SrcFactor: gputypes.BlendFactorOne,
			DstFactor: gputypes.BlendFactorOneMinusSrcAlpha,
			Operation: gputypes.BlendOperationAdd,
		},
	}

	pipeline, err := p.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "rect_pipeline",
		Layout: p.pipeLayout,
		Vertex: hal.VertexState{
			Module:     p.shader,
			EntryPoint: "vs_main",
			// No vertex buffers: geometry is derived from vertex_index.
		},
		Fragment: &hal.FragmentState{
			Module:     p.shader,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{
				{
					Format:    format,
					Blend:     &blend,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology:  gputypes.PrimitiveTopologyTriangleList,
			FrontFace: gputypes.FrontFaceCCW,
			CullMode:  gputypes.CullModeBack,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create rect pipeline (format %v): %w", format, err)
	}
	p.pipelines[format] = pipeline
	return pipeline, nil
}

// destroy releases all pipeline resources in reverse creation order.
func (p *rectPipeline) destroy() {
	if p.device == nil {
		return
	}
	for format, pl := range p.pipelines {
		p.device.DestroyRenderPipeline(pl)
		delete(p.pipelines, format)
	}
	if p.samplerNearest != nil {
		p.device.DestroySampler(p.samplerNearest)
		p.samplerNearest = nil
	}
	if p.samplerLinear != nil {
		p.device.DestroySampler(p.samplerLinear)
		p.samplerLinear = nil
	}
	if p.pipeLayout != nil {
		p.device.DestroyPipelineLayout(p.pipeLayout)
		p.pipeLayout = nil
	}
	if p.atlasLayout != nil {
		p.device.DestroyBindGroupLayout(p.atlasLayout)
		p.atlasLayout = nil
	}
	if p.samplerLayout != nil {
		p.device.DestroyBindGroupLayout(p.samplerLayout)
		p.samplerLayout = nil
	}
	if p.frameLayout != nil {
		p.device.DestroyBindGroupLayout(p.frameLayout)
		p.frameLayout = nil
	}
	if p.shader != nil {
		p.device.DestroyShaderModule(p.shader)
		p.shader = nil
	}
}
