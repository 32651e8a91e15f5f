package uirect

// TextureID identifies an atlas texture owned by the host's texture
// collaborator. The zero value means "no texture": the renderer substitutes
// its built-in 1x1 white pixel (color) or opaque pixel (alpha mask) so every
// rect samples well-defined memory.
type TextureID uint32

// UVRect selects a normalized sub-rectangle of an atlas texture.
// U, V is the top-left corner and W, H the extent, all in [0, 1] texture
// space. The zero value selects nothing; use FullTexture for the whole atlas.
type UVRect struct {
	U, V, W, H float64
}

// FullTexture is the UV rectangle covering an entire texture.
var FullTexture = UVRect{U: 0, V: 0, W: 1, H: 1}

// Texture is a lightweight handle to a region of an atlas texture.
// The atlas collaborator that owns allocation hands these out; uirect never
// allocates atlas space itself.
type Texture struct {
	ID     TextureID
	Region UVRect
}

// IsZero reports whether the handle references no texture.
func (t Texture) IsZero() bool { return t.ID == 0 }

// Sub returns a handle to a sub-region of this texture's region.
// u, v, w, h are normalized within the current region.
func (t Texture) Sub(u, v, w, h float64) Texture {
	r := t.Region
	return Texture{
		ID: t.ID,
		Region: UVRect{
			U: r.U + u*r.W,
			V: r.V + v*r.H,
			W: w * r.W,
			H: h * r.H,
		},
	}
}

// Paint defines how a rectangle's background is filled: either by sampling
// a texture pair (SampledPaint) or by evaluating a two-stop linear gradient
// (GradientPaint). Exactly one concrete type is valid per rect; the shared
// 48-byte wire encoding exists only at the upload boundary in internal/gpu.
type Paint interface {
	isPaint()
}

// SampledPaint fills the rectangle by sampling a color atlas and an
// alpha-mask atlas, multiplying the color sample by Tint and the final alpha
// by the mask's red channel.
type SampledPaint struct {
	// Tint multiplies the sampled atlas color. White leaves it unchanged;
	// with no color texture bound, Tint IS the fill color.
	Tint RGBA

	// Color selects the region of the color atlas to sample.
	Color Texture

	// Alpha selects the region of the alpha-mask atlas. Only the red
	// channel is read.
	Alpha Texture
}

func (SampledPaint) isPaint() {}

// GradientPaint fills the rectangle with a linear gradient from ColorA at
// Start to ColorB at End. Start and End are in the rectangle's local
// [0,1]x[0,1] UV space; fragments project onto the Start->End axis and the
// projection parameter is clamped to [0, 1].
type GradientPaint struct {
	ColorA, ColorB RGBA
	Start, End     Vec
}

func (GradientPaint) isPaint() {}

// ColorAt evaluates the gradient at a point in local UV space.
// A degenerate axis (|End-Start|^2 < 1e-4) always yields ColorA, matching
// the shader's guard against division by near-zero.
func (g GradientPaint) ColorAt(u, v float64) RGBA {
	dx := g.End.X - g.Start.X
	dy := g.End.Y - g.Start.Y
	lenSq := dx*dx + dy*dy

	t := 0.0
	if lenSq >= gradientDegenerateEps {
		t = ((u-g.Start.X)*dx + (v-g.Start.Y)*dy) / lenSq
		t = clamp01(t)
	}
	return g.ColorA.Lerp(g.ColorB, t)
}

// gradientDegenerateEps is the squared-length threshold below which a
// gradient axis is treated as degenerate.
const gradientDegenerateEps = 1e-4

// Solid creates a flat color paint. It is a SampledPaint with no textures:
// the renderer samples its white/opaque fallback pixels and the tint carries
// the color.
func Solid(c RGBA) Paint {
	return SampledPaint{Tint: c}
}

// Textured creates a paint that samples the given color texture with a
// white tint.
func Textured(tex Texture) Paint {
	return SampledPaint{Tint: White, Color: tex}
}

// TexturedTint creates a paint that samples the given color texture
// multiplied by tint.
func TexturedTint(tex Texture, tint RGBA) Paint {
	return SampledPaint{Tint: tint, Color: tex}
}

// Masked creates a paint that fills with a flat color modulated by an
// alpha-mask texture. This is the glyph path: the mask atlas holds
// pre-rasterized coverage and tint carries the text color.
func Masked(c RGBA, mask Texture) Paint {
	return SampledPaint{Tint: c, Alpha: mask}
}

// LinearGradient creates a gradient paint with custom start and end points
// in the rectangle's local [0,1]x[0,1] UV space.
func LinearGradient(a, b RGBA, start, end Vec) Paint {
	return GradientPaint{ColorA: a, ColorB: b, Start: start, End: end}
}

// HorizontalGradient creates a gradient from left to right.
func HorizontalGradient(left, right RGBA) Paint {
	return GradientPaint{ColorA: left, ColorB: right, Start: Vec{X: 0, Y: 0.5}, End: Vec{X: 1, Y: 0.5}}
}

// VerticalGradient creates a gradient from top to bottom.
func VerticalGradient(top, bottom RGBA) Paint {
	return GradientPaint{ColorA: top, ColorB: bottom, Start: Vec{X: 0.5, Y: 0}, End: Vec{X: 0.5, Y: 1}}
}

// SolidGradient creates a degenerate gradient that evaluates to a single
// color everywhere. Borders are always expressed as gradients; this is the
// flat-border case.
func SolidGradient(c RGBA) GradientPaint {
	return GradientPaint{ColorA: c, ColorB: c}
}

// clamp01 clamps a value to [0, 1] range.
func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
