package gpu

import (
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
)

// createNoopDevice creates a noop device and queue for testing.
// Returns the device, queue, and a cleanup function.
func createNoopDevice(t *testing.T) (hal.Device, hal.Queue, func()) {
	t.Helper()
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open failed: %v", err)
	}
	cleanup := func() {
		openDev.Device.Destroy()
		instance.Destroy()
	}
	return openDev.Device, openDev.Queue, cleanup
}

func TestRectPipelineCreateShared(t *testing.T) {
	device, _, cleanup := createNoopDevice(t)
	defer cleanup()

	p := newRectPipeline(device)
	defer p.destroy()

	if err := p.createShared(); err != nil {
		t.Fatalf("createShared failed: %v", err)
	}
	if p.shader == nil {
		t.Error("expected shader module")
	}
	if p.frameLayout == nil || p.samplerLayout == nil || p.atlasLayout == nil {
		t.Error("expected all bind group layouts")
	}
	if p.pipeLayout == nil {
		t.Error("expected pipeline layout")
	}
	if p.samplerLinear == nil || p.samplerNearest == nil {
		t.Error("expected both samplers")
	}
}

func TestRectPipelineFormatCache(t *testing.T) {
	device, _, cleanup := createNoopDevice(t)
	defer cleanup()

	p := newRectPipeline(device)
	defer p.destroy()
	if err := p.createShared(); err != nil {
		t.Fatalf("createShared failed: %v", err)
	}

	rgba, err := p.pipelineFor(gputypes.TextureFormatRGBA8Unorm)
	if err != nil {
		t.Fatalf("pipelineFor(RGBA8) failed: %v", err)
	}
	again, err := p.pipelineFor(gputypes.TextureFormatRGBA8Unorm)
	if err != nil {
		t.Fatalf("pipelineFor(RGBA8) second call failed: %v", err)
	}
	if rgba != again {
		t.Error("same format should return the cached pipeline")
	}

	bgra, err := p.pipelineFor(gputypes.TextureFormatBGRA8Unorm)
	if err != nil {
		t.Fatalf("pipelineFor(BGRA8) failed: %v", err)
	}
	if bgra == rgba {
		t.Error("different formats should get distinct pipelines")
	}
	if len(p.pipelines) != 2 {
		t.Errorf("pipeline cache size = %d, want 2", len(p.pipelines))
	}
}

func TestRectPipelineDestroyIdempotent(t *testing.T) {
	device, _, cleanup := createNoopDevice(t)
	defer cleanup()

	p := newRectPipeline(device)
	if err := p.createShared(); err != nil {
		t.Fatalf("createShared failed: %v", err)
	}
	if _, err := p.pipelineFor(gputypes.TextureFormatRGBA8Unorm); err != nil {
		t.Fatalf("pipelineFor failed: %v", err)
	}

	p.destroy()
	p.destroy()
	if p.shader != nil || len(p.pipelines) != 0 {
		t.Error("destroy should release everything")
	}
}

func TestShaderSourceEmbedded(t *testing.T) {
	if rectShaderSource == "" {
		t.Fatal("rect shader source is empty")
	}
}
