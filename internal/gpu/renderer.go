package gpu

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"

	"github.com/gogpu/uirect"
)

// RectRenderer renders uirect draw lists on the GPU via wgpu/hal. It
// implements the uirect.GPUBackend interface.
//
// Frames submitted via RenderDrawList are drawn into an offscreen color
// target and read back into the caller's pixel buffer. When the host shares
// its device through SetDeviceProvider, RecordDraws can instead record into
// a render pass the host owns, skipping the readback entirely.
type RectRenderer struct {
	mu sync.Mutex

	// Cfg is read once when GPU resources are created; zero fields fall
	// back to DefaultConfig. Set it before registration.
	Cfg Config

	instance hal.Instance
	device   hal.Device
	queue    hal.Queue

	pipeline *rectPipeline
	buffers  *frameBuffers
	textures *atlasTextures

	samplerBind hal.BindGroup

	// Offscreen render target for the readback path.
	targetTex     hal.Texture
	targetView    hal.TextureView
	width, height uint32

	atlases *uirect.AtlasSource

	// Frame resources retained for a caller-owned render pass.
	pendingFrame *frameResources

	gpuReady       bool
	externalDevice bool // true when using shared device (don't destroy on Close)
}

var (
	_ uirect.GPUBackend          = (*RectRenderer)(nil)
	_ uirect.DeviceProviderAware = (*RectRenderer)(nil)
	_ uirect.AtlasSourceAware    = (*RectRenderer)(nil)
)

func (r *RectRenderer) Name() string { return "wgpu" }

// Init brings up the GPU. Failure is not fatal: the renderer stays
// registered and reports unavailable, so rendering falls back to CPU.
func (r *RectRenderer) Init() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.initGPU(); err != nil {
		slogger().Warn("GPU init failed, rendering will fall back to CPU", "err", err)
	}
	return nil
}

// IsAvailable reports whether the GPU path is usable.
func (r *RectRenderer) IsAvailable() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gpuReady
}

// Close releases all GPU resources. Safe to call multiple times.
func (r *RectRenderer) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.destroyResources()
	if !r.externalDevice {
		if r.device != nil {
			r.device.Destroy()
		}
		if r.instance != nil {
			r.instance.Destroy()
		}
	}
	r.device = nil
	r.instance = nil
	r.queue = nil
	r.gpuReady = false
	r.externalDevice = false
}

// SetLogger routes this package's logging through the given logger.
// Called by uirect.SetLogger via the registered backend.
func (r *RectRenderer) SetLogger(l *slog.Logger) { setLogger(l) }

// SetAtlasSource wires the atlas registry the draw lists reference.
func (r *RectRenderer) SetAtlasSource(atlases *uirect.AtlasSource) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.atlases = atlases
	if r.textures != nil {
		r.textures.setSource(atlases)
	}
}

// SetDeviceProvider switches the renderer to a shared GPU device from an
// external provider (e.g., the host window framework). The provider must
// implement HalDevice() any and HalQueue() any returning hal.Device and
// hal.Queue.
func (r *RectRenderer) SetDeviceProvider(provider any) error {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return fmt.Errorf("uirect-gpu: provider does not expose HAL types")
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return fmt.Errorf("uirect-gpu: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return fmt.Errorf("uirect-gpu: provider HalQueue is not hal.Queue")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Destroy own resources if we created them.
	r.destroyResources()
	if !r.externalDevice && r.device != nil {
		r.device.Destroy()
	}
	if r.instance != nil {
		r.instance.Destroy()
		r.instance = nil
	}

	r.device = device
	r.queue = queue
	r.externalDevice = true

	if err := r.createResources(); err != nil {
		r.gpuReady = false
		return fmt.Errorf("uirect-gpu: create resources with shared device: %w", err)
	}
	r.gpuReady = true
	slogger().Info("switched to shared GPU device")
	return nil
}

// RenderDrawList renders one frame into the target pixel buffer. The frame
// is drawn into an offscreen RGBA8 texture, resolved on the GPU, and read
// back row by row honoring the target stride.
//
// Returns uirect.ErrFallbackToCPU when the GPU is not ready so the caller
// can transparently use the software path.
func (r *RectRenderer) RenderDrawList(target uirect.RenderTarget, dl *uirect.DrawList) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.gpuReady {
		return uirect.ErrFallbackToCPU
	}
	if target.Width <= 0 || target.Height <= 0 {
		return fmt.Errorf("uirect-gpu: invalid target %dx%d", target.Width, target.Height)
	}
	if dl.IsEmpty() && dl.ClearColor() == nil {
		return nil
	}

	w := uint32(target.Width)  //nolint:gosec // dimensions always fit uint32
	h := uint32(target.Height) //nolint:gosec // dimensions always fit uint32
	if err := r.ensureTarget(w, h); err != nil {
		return err
	}

	frame, err := r.prepareFrame(w, h, dl)
	if err != nil {
		return err
	}
	defer frame.destroy(r.device)

	return r.encodeAndReadback(w, h, frame, dl, target)
}

// RecordDraws uploads the frame data and records the draw commands into a
// caller-owned render pass targeting the given color format. The caller
// owns pass lifetime, attachments, and submission; viewport dimensions must
// match the pass color attachment.
func (r *RectRenderer) RecordDraws(rp hal.RenderPassEncoder, format gputypes.TextureFormat, width, height uint32, dl *uirect.DrawList) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.gpuReady {
		return uirect.ErrFallbackToCPU
	}
	frame, err := r.prepareFrame(width, height, dl)
	if err != nil {
		return err
	}
	pipeline, err := r.pipeline.pipelineFor(format)
	if err != nil {
		frame.destroy(r.device)
		return err
	}
	r.recordCommands(rp, pipeline, frame)

	// The frame's bind groups must outlive the caller's pass, so they are
	// retired on the next RecordDraws call instead of here. The caller's
	// submission fencing guarantees the previous frame is no longer in
	// flight by then.
	if r.pendingFrame != nil {
		r.pendingFrame.destroy(r.device)
	}
	r.pendingFrame = frame
	return nil
}

// frameResources holds the per-frame bind groups and draw commands.
type frameResources struct {
	frameBind  hal.BindGroup
	atlasBinds []hal.BindGroup // parallel to cmds; owned by atlasTextures
	cmds       []drawCommand
}

func (f *frameResources) destroy(device hal.Device) {
	if f == nil {
		return
	}
	if f.frameBind != nil {
		device.DestroyBindGroup(f.frameBind)
		f.frameBind = nil
	}
}

// prepareFrame encodes the draw list, uploads the uniform and instance
// buffers, and resolves all bind groups for the frame.
func (r *RectRenderer) prepareFrame(w, h uint32, dl *uirect.DrawList) (*frameResources, error) {
	data, cmds := buildDrawData(dl)

	if err := r.buffers.uploadDrawInfo(w, h); err != nil {
		return nil, err
	}
	if err := r.buffers.uploadInstances(data); err != nil {
		return nil, err
	}
	if err := r.ensureSamplerBind(); err != nil {
		return nil, err
	}

	frame := &frameResources{cmds: cmds}
	if len(cmds) > 0 {
		fb, err := r.buffers.frameBindGroup(r.pipeline.frameLayout, uint64(len(data)))
		if err != nil {
			return nil, fmt.Errorf("create frame bind group: %w", err)
		}
		frame.frameBind = fb

		frame.atlasBinds = make([]hal.BindGroup, len(cmds))
		for i, cmd := range cmds {
			bg, err := r.textures.bindGroupFor(r.pipeline.atlasLayout, texturePair{color: cmd.colorTex, alpha: cmd.alphaTex})
			if err != nil {
				frame.destroy(r.device)
				return nil, err
			}
			frame.atlasBinds[i] = bg
		}
	}
	return frame, nil
}

// recordCommands issues the instanced draws. The first vertex offset keeps
// vertex_index/6 pointing at the absolute record index within the shared
// instance buffer.
func (r *RectRenderer) recordCommands(rp hal.RenderPassEncoder, pipeline hal.RenderPipeline, frame *frameResources) {
	if len(frame.cmds) == 0 {
		return
	}
	rp.SetPipeline(pipeline)
	rp.SetBindGroup(0, frame.frameBind, nil)
	rp.SetBindGroup(1, r.samplerBind, nil)
	for i, cmd := range frame.cmds {
		rp.SetBindGroup(2, frame.atlasBinds[i], nil)
		rp.Draw(cmd.rectCount*verticesPerRect, 1, cmd.firstRect*verticesPerRect, 0)
	}
}

// encodeAndReadback encodes the render pass, copies the color target to a
// staging buffer, submits, waits, and reads the pixels back into target.
func (r *RectRenderer) encodeAndReadback(w, h uint32, frame *frameResources, dl *uirect.DrawList, target uirect.RenderTarget) error {
	pipeline, err := r.pipeline.pipelineFor(gputypes.TextureFormatRGBA8Unorm)
	if err != nil {
		return err
	}

	encoder, err := r.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "rect_encoder",
	})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("rect_render"); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}

	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "rect_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{
			{
				View:       r.targetView,
				LoadOp:     gputypes.LoadOpClear,
				StoreOp:    gputypes.StoreOpStore,
				ClearValue: clearValue(dl),
			},
		},
	})
	r.recordCommands(rp, pipeline, frame)
	rp.End()

	// After the pass the texture is in color-attachment layout;
	// CopyTextureToBuffer needs transfer-src. No-op on non-Vulkan backends.
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: r.targetTex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})

	pixelBufSize := uint64(w) * uint64(h) * 4
	stagingBuf, err := r.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "rect_staging",
		Size:  pixelBufSize,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		encoder.DiscardEncoding()
		return fmt.Errorf("create staging buffer: %w", err)
	}
	defer r.device.DestroyBuffer(stagingBuf)

	encoder.CopyTextureToBuffer(r.targetTex, stagingBuf, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: w * 4, RowsPerImage: h},
		TextureBase:  hal.ImageCopyTexture{Texture: r.targetTex, MipLevel: 0},
		Size:         hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	}})

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer r.device.FreeCommandBuffer(cmdBuf)

	fence, err := r.device.CreateFence()
	if err != nil {
		return fmt.Errorf("create fence: %w", err)
	}
	defer r.device.DestroyFence(fence)

	if err := r.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	fenceOK, err := r.device.Wait(fence, 1, r.Cfg.withDefaults().SubmitTimeout)
	if err != nil || !fenceOK {
		return fmt.Errorf("wait for GPU: ok=%v err=%w", fenceOK, err)
	}

	readback := make([]byte, pixelBufSize)
	if err := r.queue.ReadBuffer(stagingBuf, 0, readback); err != nil {
		return fmt.Errorf("readback: %w", err)
	}

	copyRows(readback, target, int(w), int(h))
	return nil
}

// copyRows copies tightly packed RGBA rows into the strided target buffer.
func copyRows(src []byte, target uirect.RenderTarget, w, h int) {
	rowBytes := w * 4
	for y := 0; y < h; y++ {
		dstOff := y * target.Stride
		if dstOff+rowBytes > len(target.Data) {
			return
		}
		copy(target.Data[dstOff:dstOff+rowBytes], src[y*rowBytes:(y+1)*rowBytes])
	}
}

// clearValue converts the draw list clear color, defaulting to transparent.
func clearValue(dl *uirect.DrawList) gputypes.Color {
	c := dl.ClearColor()
	if c == nil {
		return gputypes.Color{}
	}
	return gputypes.Color{R: c.R, G: c.G, B: c.B, A: c.A}
}

// ensureSamplerBind creates the group-1 sampler bind group once.
func (r *RectRenderer) ensureSamplerBind() error {
	if r.samplerBind != nil {
		return nil
	}
	bg, err := r.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "rect_sampler_bind",
		Layout: r.pipeline.samplerLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.SamplerBinding{Sampler: r.pipeline.samplerLinear.NativeHandle()}},
			{Binding: 1, Resource: gputypes.SamplerBinding{Sampler: r.pipeline.samplerNearest.NativeHandle()}},
		},
	})
	if err != nil {
		return fmt.Errorf("create sampler bind group: %w", err)
	}
	r.samplerBind = bg
	return nil
}

// ensureTarget creates or recreates the offscreen color target when the
// requested size changes.
func (r *RectRenderer) ensureTarget(w, h uint32) error {
	if r.width == w && r.height == h && r.targetTex != nil {
		return nil
	}
	r.destroyTarget()

	tex, err := r.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "rect_target",
		Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return fmt.Errorf("create target texture: %w", err)
	}
	r.targetTex = tex

	view, err := r.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         "rect_target_view",
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		r.destroyTarget()
		return fmt.Errorf("create target view: %w", err)
	}
	r.targetView = view
	r.width = w
	r.height = h
	return nil
}

func (r *RectRenderer) destroyTarget() {
	if r.targetView != nil {
		r.device.DestroyTextureView(r.targetView)
		r.targetView = nil
	}
	if r.targetTex != nil {
		r.device.DestroyTexture(r.targetTex)
		r.targetTex = nil
	}
	r.width = 0
	r.height = 0
}

// initGPU creates the instance, picks an adapter, opens the device, and
// builds the rendering resources.
func (r *RectRenderer) initGPU() error {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return fmt.Errorf("vulkan backend not available")
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return fmt.Errorf("create instance: %w", err)
	}
	r.instance = instance
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		return fmt.Errorf("no GPU adapters found")
	}
	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}
	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		return fmt.Errorf("open device: %w", err)
	}
	r.device = openDev.Device
	r.queue = openDev.Queue
	if err := r.createResources(); err != nil {
		r.device.Destroy()
		r.device = nil
		r.queue = nil
		return fmt.Errorf("create resources: %w", err)
	}
	r.gpuReady = true
	slogger().Info("GPU renderer initialized", "adapter", selected.Info.Name)
	return nil
}

// createResources builds the pipeline, buffers, and texture cache on the
// current device.
func (r *RectRenderer) createResources() error {
	r.pipeline = newRectPipeline(r.device)
	if err := r.pipeline.createShared(); err != nil {
		r.pipeline.destroy()
		r.pipeline = nil
		return err
	}
	r.buffers = newFrameBuffers(r.device, r.queue, r.Cfg.withDefaults().InitialRectCapacity)
	r.textures = newAtlasTextures(r.device, r.queue)
	r.textures.setSource(r.atlases)
	return nil
}

// destroyResources releases everything created on the device, in reverse
// creation order.
func (r *RectRenderer) destroyResources() {
	if r.device == nil {
		return
	}
	if r.pendingFrame != nil {
		r.pendingFrame.destroy(r.device)
		r.pendingFrame = nil
	}
	if r.samplerBind != nil {
		r.device.DestroyBindGroup(r.samplerBind)
		r.samplerBind = nil
	}
	r.destroyTarget()
	if r.textures != nil {
		r.textures.destroy()
		r.textures = nil
	}
	if r.buffers != nil {
		r.buffers.destroy()
		r.buffers = nil
	}
	if r.pipeline != nil {
		r.pipeline.destroy()
		r.pipeline = nil
	}
}
