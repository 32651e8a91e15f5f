package gpu

import (
	_ "embed"
	"fmt"

	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
)

//go:embed shaders/rect.wgsl
var rectShaderSource string

// createShaderModule compiles WGSL into a hal shader module. Backends that
// consume WGSL directly get the source as-is; if the device rejects WGSL
// (Vulkan wants SPIR-V), the source is cross-compiled through naga first.
func createShaderModule(device hal.Device, label, wgsl string) (hal.ShaderModule, error) {
	if wgsl == "" {
		return nil, fmt.Errorf("shader %s: empty source", label)
	}

	module, err := device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  label,
		Source: hal.ShaderSource{WGSL: wgsl},
	})
	if err == nil {
		return module, nil
	}

	spirv, cerr := compileToSPIRV(wgsl)
	if cerr != nil {
		return nil, fmt.Errorf("shader %s: wgsl rejected (%v) and spir-v cross-compile failed: %w", label, err, cerr)
	}
	module, err = device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  label,
		Source: hal.ShaderSource{SPIRV: spirv},
	})
	if err != nil {
		return nil, fmt.Errorf("shader %s: create from spir-v: %w", label, err)
	}
	return module, nil
}

// compileToSPIRV cross-compiles WGSL to SPIR-V words (little-endian).
func compileToSPIRV(wgsl string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(wgsl)
	if err != nil {
		return nil, fmt.Errorf("naga compile: %w", err)
	}
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return words, nil
}
