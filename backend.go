package uirect

import (
	"errors"
	"sync"
)

// ErrFallbackToCPU indicates the GPU backend cannot handle this frame.
// The caller should transparently fall back to software rendering.
var ErrFallbackToCPU = errors.New("uirect: falling back to CPU rendering")

// RenderTarget provides pixel buffer access for rendered output.
// The Data slice holds straight-alpha RGBA, 4 bytes per pixel, laid out
// row by row with the given Stride.
type RenderTarget struct {
	Data          []uint8
	Width, Height int
	Stride        int // bytes per row
}

// GPUBackend is an optional GPU rendering provider for draw lists.
//
// When registered via RegisterBackend, the Renderer tries GPU rendering
// first. If the backend returns ErrFallbackToCPU or any error, rendering
// transparently falls back to the software rasterizer.
//
// Implementations are provided by backend packages; users opt in via blank
// import:
//
//	import _ "github.com/gogpu/uirect/gpu" // enables GPU rendering
type GPUBackend interface {
	// Name returns the backend name (e.g., "wgpu").
	Name() string

	// Init initializes GPU resources. Called once during registration.
	Init() error

	// Close releases GPU resources.
	Close()

	// IsAvailable reports whether the backend can currently render.
	IsAvailable() bool

	// RenderDrawList renders one frame's rectangles into the target.
	// Returns ErrFallbackToCPU if the frame cannot be GPU-rendered.
	RenderDrawList(target RenderTarget, dl *DrawList) error
}

// DeviceProviderAware is an optional interface for backends that can share
// a GPU device with an external provider (e.g., the host window framework).
// When SetDeviceProvider is called, the backend reuses the provided device
// instead of creating its own.
type DeviceProviderAware interface {
	SetDeviceProvider(provider any) error
}

var (
	backendMu sync.RWMutex
	backend   GPUBackend
)

// RegisterBackend registers a GPU backend for optional GPU rendering.
//
// Only one backend can be registered; subsequent calls replace the previous
// one. The backend's Init() method is called during registration; if it
// fails, the backend is not registered and the error is returned.
func RegisterBackend(b GPUBackend) error {
	if b == nil {
		return errors.New("uirect: nil backend")
	}
	if err := b.Init(); err != nil {
		return err
	}

	backendMu.Lock()
	old := backend
	backend = b
	backendMu.Unlock()

	if old != nil {
		old.Close()
	}
	propagateLogger(b, Logger())
	return nil
}

// Backend returns the registered GPU backend, or nil.
func Backend() GPUBackend {
	backendMu.RLock()
	defer backendMu.RUnlock()
	return backend
}

// AtlasSourceAware is an optional interface for backends that sample from
// texture atlases. The Renderer propagates its AtlasSource so the backend
// can upload atlas pixels on demand.
type AtlasSourceAware interface {
	SetAtlasSource(atlases *AtlasSource)
}

// SetBackendAtlasSource passes the atlas registry to the registered
// backend. No-op if no backend is registered or it doesn't sample atlases.
func SetBackendAtlasSource(atlases *AtlasSource) {
	b := Backend()
	if b == nil {
		return
	}
	if asa, ok := b.(AtlasSourceAware); ok {
		asa.SetAtlasSource(atlases)
	}
}

// SetBackendDeviceProvider passes a device provider to the registered
// backend, enabling GPU device sharing. If no backend is registered or it
// doesn't support device sharing, this is a no-op.
//
// The provider should implement HalDevice() any and HalQueue() any methods
// that return wgpu/hal types.
func SetBackendDeviceProvider(provider any) error {
	b := Backend()
	if b == nil {
		return nil
	}
	if dpa, ok := b.(DeviceProviderAware); ok {
		return dpa.SetDeviceProvider(provider)
	}
	return nil
}
