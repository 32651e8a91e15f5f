package uirect

import "testing"

func TestDrawListPushAndRects(t *testing.T) {
	dl := AcquireDrawList()
	defer ReleaseDrawList(dl)

	if !dl.IsEmpty() || dl.Len() != 0 {
		t.Fatal("fresh list should be empty")
	}

	dl.Push(NewRect(0, 0, 10, 10, Solid(Red)))
	dl.Push(NewRect(5, 5, 20, 20, Solid(Blue)))

	if dl.Len() != 2 {
		t.Errorf("Len = %d, want 2", dl.Len())
	}
	rects := dl.Rects()
	if rects[0].Extent != V(10, 10) || rects[1].Point != V(5, 5) {
		t.Error("rects not stored in push order")
	}
}

func TestDrawListReset(t *testing.T) {
	dl := AcquireDrawList()
	defer ReleaseDrawList(dl)

	dl.Push(NewRect(0, 0, 1, 1, Solid(Red)))
	clear := RGB(0.5, 0.5, 0.5)
	dl.Reset(&clear)

	if !dl.IsEmpty() {
		t.Error("Reset should drop pushed rects")
	}
	got := dl.ClearColor()
	if got == nil || *got != clear {
		t.Errorf("ClearColor = %v, want %v", got, clear)
	}

	dl.Reset(nil)
	if dl.ClearColor() != nil {
		t.Error("Reset(nil) should drop the clear color")
	}
}

func TestDrawListPoolReuse(t *testing.T) {
	dl := AcquireDrawList()
	dl.Push(NewRect(0, 0, 1, 1, Solid(Red)))
	clear := Black
	dl.Reset(&clear)
	dl.Push(NewRect(0, 0, 2, 2, Solid(Green)))
	ReleaseDrawList(dl)

	// Whatever the pool returns must look freshly created.
	got := AcquireDrawList()
	defer ReleaseDrawList(got)
	if !got.IsEmpty() {
		t.Error("pooled list not empty on acquire")
	}
	if got.ClearColor() != nil {
		t.Error("pooled list kept a clear color")
	}
}

func TestReleaseDrawListNil(t *testing.T) {
	// Must not panic.
	ReleaseDrawList(nil)
}
