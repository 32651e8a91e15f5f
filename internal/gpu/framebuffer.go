package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// frameBuffers holds the per-frame GPU buffers: the small fixed-size draw
// info uniform and the rect record storage buffer. The storage buffer grows
// on demand (destroy and recreate at the larger size) and never shrinks, so
// a steady-state frame allocates nothing.
type frameBuffers struct {
	device hal.Device
	queue  hal.Queue

	uniformBuf  hal.Buffer
	instanceBuf hal.Buffer
	instanceCap uint64 // current instanceBuf size in bytes
	initialCap  uint64 // first-allocation size in bytes
}

func newFrameBuffers(device hal.Device, queue hal.Queue, initialRects int) *frameBuffers {
	return &frameBuffers{
		device:     device,
		queue:      queue,
		initialCap: uint64(initialRects) * rectRecordSize,
	}
}

// uploadDrawInfo writes the viewport uniform, creating the buffer on first
// use.
func (fb *frameBuffers) uploadDrawInfo(width, height uint32) error {
	if fb.uniformBuf == nil {
		buf, err := fb.device.CreateBuffer(&hal.BufferDescriptor{
			Label: "rect_draw_info",
			Size:  drawInfoSize,
			Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
		})
		if err != nil {
			return fmt.Errorf("create draw info buffer: %w", err)
		}
		fb.uniformBuf = buf
	}
	fb.queue.WriteBuffer(fb.uniformBuf, 0, encodeDrawInfo(width, height))
	return nil
}

// uploadInstances writes the encoded rect records, growing the storage
// buffer if the current one is too small.
func (fb *frameBuffers) uploadInstances(data []byte) error {
	need := uint64(len(data))
	if need == 0 {
		return nil
	}
	if fb.instanceBuf == nil || fb.instanceCap < need {
		size := need
		if fb.instanceBuf == nil && size < fb.initialCap {
			size = fb.initialCap
		}
		if fb.instanceBuf != nil {
			fb.device.DestroyBuffer(fb.instanceBuf)
			fb.instanceBuf = nil
			fb.instanceCap = 0
		}
		buf, err := fb.device.CreateBuffer(&hal.BufferDescriptor{
			Label: "rect_instances",
			Size:  size,
			Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst,
		})
		if err != nil {
			return fmt.Errorf("create instance buffer (%d bytes): %w", size, err)
		}
		fb.instanceBuf = buf
		fb.instanceCap = size
	}
	fb.queue.WriteBuffer(fb.instanceBuf, 0, data)
	return nil
}

// frameBindGroup creates the group-0 bind group over the current buffers.
// The caller owns the returned bind group; it must be recreated whenever
// the instance buffer grows.
func (fb *frameBuffers) frameBindGroup(layout hal.BindGroupLayout, instanceBytes uint64) (hal.BindGroup, error) {
	return fb.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "rect_frame_bind",
		Layout: layout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{
				Buffer: fb.uniformBuf.NativeHandle(), Offset: 0, Size: drawInfoSize,
			}},
			{Binding: 1, Resource: gputypes.BufferBinding{
				Buffer: fb.instanceBuf.NativeHandle(), Offset: 0, Size: instanceBytes,
			}},
		},
	})
}

// destroy releases the buffers. Safe to call on a zero frameBuffers.
func (fb *frameBuffers) destroy() {
	if fb.device == nil {
		return
	}
	if fb.instanceBuf != nil {
		fb.device.DestroyBuffer(fb.instanceBuf)
		fb.instanceBuf = nil
		fb.instanceCap = 0
	}
	if fb.uniformBuf != nil {
		fb.device.DestroyBuffer(fb.uniformBuf)
		fb.uniformBuf = nil
	}
}
