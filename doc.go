// Package uirect implements the styled-rectangle draw primitive of an
// immediate-mode GUI renderer: anti-aliased rounded rectangles with per-edge
// borders and texture or gradient background paints, rendered in a single
// instanced GPU pass.
//
// Every visible surface of a UI — panels, buttons, images, text backgrounds —
// is one Rect pushed onto a per-frame DrawList. The host framework owns
// windows, devices, layout, and text shaping; uirect owns the per-rectangle
// data contract, its tightly packed GPU encoding, and the shader semantics
// that turn it into pixels.
//
// Basic usage:
//
//	dl := uirect.AcquireDrawList()
//	defer uirect.ReleaseDrawList(dl)
//
//	dl.Push(uirect.NewRect(10, 10, 200, 100, uirect.Solid(uirect.Hex("#282c34"))).
//		WithCornerRadius(8).
//		WithBorder(uirect.Hex("#61afef"), 2))
//
//	renderer := uirect.NewRenderer(nil, nil)
//	renderer.Render(img, dl)
//
// GPU rendering is opt-in via blank import:
//
//	import _ "github.com/gogpu/uirect/gpu"
package uirect
