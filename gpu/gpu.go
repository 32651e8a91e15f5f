// Package gpu registers the wgpu rendering backend for uirect.
//
// Import this package to enable GPU rectangle rendering. The backend draws
// every rect instanced through a single fragment-shaded pipeline; without
// it, uirect renders on the CPU.
//
// If GPU initialization fails (no Vulkan available), the backend stays
// registered but reports unavailable and rendering falls back to CPU.
//
// Usage:
//
//	import _ "github.com/gogpu/uirect/gpu" // enable GPU rendering
package gpu

import (
	"github.com/gogpu/uirect"
	gpuimpl "github.com/gogpu/uirect/internal/gpu"
)

func init() {
	if err := uirect.RegisterBackend(&gpuimpl.RectRenderer{}); err != nil {
		uirect.Logger().Warn("GPU backend not available", "err", err)
	}
}

// SetDeviceProvider configures the backend to use a shared GPU device from
// an external provider (e.g., the host window framework). This avoids
// creating a separate GPU instance and enables rendering straight into the
// host's surface.
//
// The provider should be a gpucontext.DeviceProvider that also exposes
// HAL device access (HalDevice() any, HalQueue() any).
//
// Call this before rendering, typically right after creating the host
// device — or pass the handle to uirect.NewRenderer, which forwards it.
func SetDeviceProvider(provider any) error {
	return uirect.SetBackendDeviceProvider(provider)
}
