package uirect

import "sync"

// drawListPool reuses DrawList backing arrays across frames. Immediate-mode
// GUIs rebuild the entire list every frame; pooling keeps the steady state
// allocation-free.
var drawListPool = sync.Pool{
	New: func() any {
		return &DrawList{
			rects: make([]Rect, 0, 1024),
		}
	},
}

// AcquireDrawList gets a cleared DrawList from the pool.
// Call ReleaseDrawList when the frame's draw has completed.
func AcquireDrawList() *DrawList {
	dl := drawListPool.Get().(*DrawList)
	dl.Reset(nil)
	return dl
}

// ReleaseDrawList returns a DrawList to the pool for reuse.
// The list must not be touched after release; in the double-buffered frame
// model, release only after the GPU has finished reading the frame's upload.
func ReleaseDrawList(dl *DrawList) {
	if dl != nil {
		drawListPool.Put(dl)
	}
}

// DrawList accumulates the rectangles of one frame in paint order: later
// rects composite over earlier ones via the fixed-function blend stage, and
// the append order is the only coupling between instances.
//
// A DrawList is built by exactly one goroutine per frame. Concurrent appends
// must be serialized externally, since index order is load-bearing.
type DrawList struct {
	clearColor *RGBA
	rects      []Rect
}

// Reset clears the list for a new frame, retaining capacity.
// clear optionally sets a background clear color for the frame's render
// pass; nil preserves the target's existing contents.
func (dl *DrawList) Reset(clear *RGBA) {
	dl.clearColor = clear
	dl.rects = dl.rects[:0]
}

// ClearColor returns the frame's clear color, or nil if none was set.
func (dl *DrawList) ClearColor() *RGBA {
	return dl.clearColor
}

// Push appends one rectangle. Rects are never mutated after being pushed.
func (dl *DrawList) Push(r Rect) {
	dl.rects = append(dl.rects, r)
}

// Len returns the number of rectangles in the list.
func (dl *DrawList) Len() int {
	return len(dl.rects)
}

// IsEmpty reports whether the list holds no rectangles.
func (dl *DrawList) IsEmpty() bool {
	return len(dl.rects) == 0
}

// Rects returns the rectangles in paint order. The returned slice is owned
// by the list and valid until the next Reset.
func (dl *DrawList) Rects() []Rect {
	return dl.rects
}
