package uirect

import (
	"errors"
	"image"

	"github.com/gogpu/gpucontext"
)

// DeviceHandle provides GPU device access from the host application.
//
// uirect RECEIVES the device from the host, it does NOT create one: window,
// surface, and device acquisition live in the host framework. DeviceHandle
// is an alias for gpucontext.DeviceProvider, giving this boundary a
// uirect-specific name while staying compatible with the gpucontext
// ecosystem. Pass the handle to SetBackendDeviceProvider to let the GPU
// backend share the host's device.
type DeviceHandle = gpucontext.DeviceProvider

// Renderer draws per-frame DrawLists, preferring the registered GPU backend
// and transparently falling back to the software rasterizer.
//
// A Renderer is driven by one goroutine: the external frame driver builds a
// DrawList, calls Render, and owns all pacing and fencing around it.
type Renderer struct {
	software *SoftwareRenderer
}

// NewRenderer creates a renderer over the given atlas registry (which may
// be nil). If handle is non-nil it is forwarded to the registered GPU
// backend for device sharing; failure to share is non-fatal and the backend
// will initialize its own device.
func NewRenderer(handle DeviceHandle, atlases *AtlasSource) *Renderer {
	if handle != nil {
		if err := SetBackendDeviceProvider(handle); err != nil {
			Logger().Warn("GPU device sharing unavailable", "err", err)
		}
	}
	SetBackendAtlasSource(atlases)
	return &Renderer{software: NewSoftwareRenderer(atlases)}
}

// Render draws the list into dst. The GPU backend is tried first when one
// is registered and available; any backend error falls back to the software
// path so a frame is always produced.
func (r *Renderer) Render(dst *image.NRGBA, dl *DrawList) {
	if dst == nil || dl == nil {
		return
	}

	if b := Backend(); b != nil && b.IsAvailable() {
		target := RenderTarget{
			Data:   dst.Pix,
			Width:  dst.Rect.Dx(),
			Height: dst.Rect.Dy(),
			Stride: dst.Stride,
		}
		if err := b.RenderDrawList(target, dl); err == nil {
			return
		} else if !errors.Is(err, ErrFallbackToCPU) {
			Logger().Warn("GPU render failed, falling back to CPU", "backend", b.Name(), "err", err)
		}
	}

	r.software.Render(dst, dl)
}

// Software returns the underlying software rasterizer, for callers that
// want to force the CPU path.
func (r *Renderer) Software() *SoftwareRenderer {
	return r.software
}
