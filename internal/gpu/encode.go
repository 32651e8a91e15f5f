package gpu

import (
	"encoding/binary"
	"math"

	"github.com/gogpu/uirect"
)

// GPU wire format. Layouts here must match shaders/rect.wgsl exactly.
//
// Each rectangle becomes one fixed-size record in a read-only storage
// buffer. All fields are f32 unless noted; offsets are in bytes.
//
//	  0  point      vec2   top-left corner, pixels
//	  8  extent     vec2   width, height, pixels
//	 16  background paint  48-byte paint slot
//	 64  border     paint  48-byte paint slot (gradient layout)
//	112  border_width vec4 left, top, right, bottom, pixels
//	128  corner_radii vec4 top-left, top-right, bottom-left, bottom-right
//	144  flags      u32    control bits
//	148  (padding)         12 zero bytes, total size 160
//
// A paint slot holds three vec4 groups. Their meaning depends on the
// gradient flag:
//
//	sampled:  tint rgba | color atlas region uvwh | alpha atlas region uvwh
//	gradient: color A rgba | color B rgba | start uv, end uv
const (
	rectRecordSize = 160
	paintSlotSize  = 48

	// drawInfoSize is the per-frame uniform: viewport width and height as
	// u32, padded to 16 bytes.
	drawInfoSize = 16

	verticesPerRect = 6
)

// Control flag bits, matching shaders/rect.wgsl.
const (
	flagNearestSampling uint32 = 1 << 0
	flagGradientPaint   uint32 = 1 << 1
)

// drawCommand is one instanced draw over a contiguous run of records that
// share an atlas texture pair. Consecutive rects with the same pair merge
// into one command; gradient and untextured rects use the zero pair and so
// merge freely with their neighbors.
type drawCommand struct {
	colorTex  uirect.TextureID
	alphaTex  uirect.TextureID
	firstRect uint32
	rectCount uint32
}

// encodeDrawInfo packs the per-frame uniform.
func encodeDrawInfo(width, height uint32) []byte {
	buf := make([]byte, drawInfoSize)
	binary.LittleEndian.PutUint32(buf[0:], width)
	binary.LittleEndian.PutUint32(buf[4:], height)
	return buf
}

// buildDrawData encodes every rect in the list into GPU records and splits
// the list into draw commands batched by atlas texture pair.
func buildDrawData(dl *uirect.DrawList) ([]byte, []drawCommand) {
	rects := dl.Rects()
	if len(rects) == 0 {
		return nil, nil
	}

	data := make([]byte, len(rects)*rectRecordSize)
	var cmds []drawCommand
	for i := range rects {
		r := &rects[i]
		encodeRect(data[i*rectRecordSize:], r)

		colorTex, alphaTex := paintTextures(r.Background)
		n := len(cmds)
		if n > 0 && cmds[n-1].colorTex == colorTex && cmds[n-1].alphaTex == alphaTex {
			cmds[n-1].rectCount++
			continue
		}
		cmds = append(cmds, drawCommand{
			colorTex:  colorTex,
			alphaTex:  alphaTex,
			firstRect: uint32(i), //nolint:gosec // rect count fits uint32
			rectCount: 1,
		})
	}
	return data, cmds
}

// paintTextures returns the atlas pair a paint samples from. Gradients and
// untextured fills return the zero pair (bound as fallback pixels).
func paintTextures(p uirect.Paint) (colorTex, alphaTex uirect.TextureID) {
	sp, ok := p.(uirect.SampledPaint)
	if !ok {
		return 0, 0
	}
	return sp.Color.ID, sp.Alpha.ID
}

// encodeRect packs one rect into dst, which must be rectRecordSize bytes.
// Padding bytes are written as zero so records are deterministic.
func encodeRect(dst []byte, r *uirect.Rect) {
	_ = dst[rectRecordSize-1]
	for i := range dst[:rectRecordSize] {
		dst[i] = 0
	}

	putF32(dst, 0, float32(r.Point.X))
	putF32(dst, 4, float32(r.Point.Y))
	putF32(dst, 8, float32(r.Extent.X))
	putF32(dst, 12, float32(r.Extent.Y))

	flags := encodePaint(dst[16:], r.Background)
	encodeGradientSlot(dst[64:], r.BorderColor)

	putF32(dst, 112, float32(r.BorderWidth.Left))
	putF32(dst, 116, float32(r.BorderWidth.Top))
	putF32(dst, 120, float32(r.BorderWidth.Right))
	putF32(dst, 124, float32(r.BorderWidth.Bottom))

	putF32(dst, 128, float32(r.CornerRadii.TopLeft))
	putF32(dst, 132, float32(r.CornerRadii.TopRight))
	putF32(dst, 136, float32(r.CornerRadii.BottomLeft))
	putF32(dst, 140, float32(r.CornerRadii.BottomRight))

	if r.NearestSampling {
		flags |= flagNearestSampling
	}
	binary.LittleEndian.PutUint32(dst[144:], flags)
}

// encodePaint packs a 48-byte paint slot and returns the flag bits the
// paint contributes.
func encodePaint(dst []byte, p uirect.Paint) uint32 {
	switch pp := p.(type) {
	case uirect.GradientPaint:
		encodeGradientSlot(dst, pp)
		return flagGradientPaint
	case uirect.SampledPaint:
		encodeSampledSlot(dst, pp)
		return 0
	default:
		// Nil background renders as an opaque white fill.
		encodeSampledSlot(dst, uirect.SampledPaint{Tint: uirect.White})
		return 0
	}
}

func encodeSampledSlot(dst []byte, p uirect.SampledPaint) {
	putRGBA(dst, 0, p.Tint)
	putUVRect(dst, 16, regionOrFull(p.Color))
	putUVRect(dst, 32, regionOrFull(p.Alpha))
}

func encodeGradientSlot(dst []byte, p uirect.GradientPaint) {
	putRGBA(dst, 0, p.ColorA)
	putRGBA(dst, 16, p.ColorB)
	putF32(dst, 32, float32(p.Start.X))
	putF32(dst, 36, float32(p.Start.Y))
	putF32(dst, 40, float32(p.End.X))
	putF32(dst, 44, float32(p.End.Y))
}

// regionOrFull widens a zero-valued region to the full texture so that an
// unset Texture{} samples the whole atlas (or the 1x1 fallback pixel).
func regionOrFull(t uirect.Texture) uirect.UVRect {
	if t.Region == (uirect.UVRect{}) {
		return uirect.FullTexture
	}
	return t.Region
}

func putRGBA(dst []byte, off int, c uirect.RGBA) {
	putF32(dst, off, float32(c.R))
	putF32(dst, off+4, float32(c.G))
	putF32(dst, off+8, float32(c.B))
	putF32(dst, off+12, float32(c.A))
}

func putUVRect(dst []byte, off int, r uirect.UVRect) {
	putF32(dst, off, float32(r.U))
	putF32(dst, off+4, float32(r.V))
	putF32(dst, off+8, float32(r.W))
	putF32(dst, off+12, float32(r.H))
}

func putF32(dst []byte, off int, v float32) {
	binary.LittleEndian.PutUint32(dst[off:], math.Float32bits(v))
}
