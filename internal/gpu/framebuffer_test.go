package gpu

import "testing"

func TestFrameBuffersInstanceGrowth(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	fb := newFrameBuffers(device, queue, 0)
	defer fb.destroy()

	small := make([]byte, 2*rectRecordSize)
	if err := fb.uploadInstances(small); err != nil {
		t.Fatalf("uploadInstances failed: %v", err)
	}
	if fb.instanceCap != uint64(len(small)) {
		t.Errorf("capacity = %d, want %d", fb.instanceCap, len(small))
	}
	first := fb.instanceBuf

	// Same size reuses the buffer.
	if err := fb.uploadInstances(small); err != nil {
		t.Fatalf("uploadInstances failed: %v", err)
	}
	if fb.instanceBuf != first {
		t.Error("same-size upload should not recreate the buffer")
	}

	// Larger upload grows.
	large := make([]byte, 8*rectRecordSize)
	if err := fb.uploadInstances(large); err != nil {
		t.Fatalf("uploadInstances failed: %v", err)
	}
	if fb.instanceCap != uint64(len(large)) {
		t.Errorf("capacity after grow = %d, want %d", fb.instanceCap, len(large))
	}

	// Smaller upload keeps the grown buffer.
	grown := fb.instanceBuf
	if err := fb.uploadInstances(small); err != nil {
		t.Fatalf("uploadInstances failed: %v", err)
	}
	if fb.instanceBuf != grown {
		t.Error("buffer should never shrink")
	}
}

func TestFrameBuffersInitialCapacity(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	fb := newFrameBuffers(device, queue, 16)
	defer fb.destroy()

	// First allocation is pre-sized even for a small frame.
	if err := fb.uploadInstances(make([]byte, rectRecordSize)); err != nil {
		t.Fatalf("uploadInstances failed: %v", err)
	}
	if want := uint64(16 * rectRecordSize); fb.instanceCap != want {
		t.Errorf("capacity = %d, want %d", fb.instanceCap, want)
	}

	// An upload within the pre-sized capacity reuses the buffer.
	first := fb.instanceBuf
	if err := fb.uploadInstances(make([]byte, 10*rectRecordSize)); err != nil {
		t.Fatalf("uploadInstances failed: %v", err)
	}
	if fb.instanceBuf != first {
		t.Error("upload within initial capacity should not recreate the buffer")
	}
}

func TestFrameBuffersUploadEmpty(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	fb := newFrameBuffers(device, queue, 16)
	defer fb.destroy()

	if err := fb.uploadInstances(nil); err != nil {
		t.Fatalf("empty upload should succeed: %v", err)
	}
	if fb.instanceBuf != nil {
		t.Error("empty upload should not allocate")
	}
}

func TestFrameBuffersDrawInfoReuse(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	fb := newFrameBuffers(device, queue, 0)
	defer fb.destroy()

	if err := fb.uploadDrawInfo(640, 480); err != nil {
		t.Fatalf("uploadDrawInfo failed: %v", err)
	}
	buf := fb.uniformBuf
	if buf == nil {
		t.Fatal("expected uniform buffer")
	}
	if err := fb.uploadDrawInfo(800, 600); err != nil {
		t.Fatalf("uploadDrawInfo failed: %v", err)
	}
	if fb.uniformBuf != buf {
		t.Error("uniform buffer should be created once")
	}
}

func TestConfigDefaults(t *testing.T) {
	var zero Config
	got := zero.withDefaults()
	if got != DefaultConfig() {
		t.Errorf("zero config = %+v, want defaults %+v", got, DefaultConfig())
	}

	custom := Config{InitialRectCapacity: 4}
	got = custom.withDefaults()
	if got.InitialRectCapacity != 4 {
		t.Errorf("custom capacity overridden: %d", got.InitialRectCapacity)
	}
	if got.SubmitTimeout != DefaultConfig().SubmitTimeout {
		t.Errorf("timeout not defaulted: %v", got.SubmitTimeout)
	}
}
