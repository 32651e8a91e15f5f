package uirect

import (
	"image"
)

// SoftwareRenderer rasterizes a DrawList on the CPU with exactly the same
// shape, paint, and border semantics as the GPU pipeline. It exists for
// headless use and as the executable reference the GPU shader is tested
// against.
type SoftwareRenderer struct {
	// Atlases resolves texture handles for sampled paints. nil is valid:
	// every sample then falls back to white/opaque, so solid and gradient
	// rects render normally.
	Atlases *AtlasSource
}

// NewSoftwareRenderer creates a software renderer over the given atlas
// registry (which may be nil).
func NewSoftwareRenderer(atlases *AtlasSource) *SoftwareRenderer {
	return &SoftwareRenderer{Atlases: atlases}
}

// Render draws the list into dst in paint order. The target plays the role
// of the swapchain image: a clear color on the list clears it first,
// otherwise existing content shows through and rects blend over it with
// straight-alpha over blending, the same fixed-function blend the GPU
// pipeline is configured with.
func (sr *SoftwareRenderer) Render(dst *image.NRGBA, dl *DrawList) {
	if dst == nil || dl == nil {
		return
	}

	if c := dl.ClearColor(); c != nil {
		fillNRGBA(dst, *c)
	}

	for i := range dl.Rects() {
		sr.drawRect(dst, &dl.Rects()[i])
	}
}

// drawRect rasterizes one rectangle over dst, evaluating the fragment
// logic at every pixel center inside the rect's AA-padded bounding box.
func (sr *SoftwareRenderer) drawRect(dst *image.NRGBA, r *Rect) {
	if r.Extent.X <= 0 || r.Extent.Y <= 0 {
		return
	}

	bounds := dst.Bounds()
	// One pixel of padding covers the outward half of the AA band.
	x0 := maxInt(int(r.Point.X)-1, bounds.Min.X)
	y0 := maxInt(int(r.Point.Y)-1, bounds.Min.Y)
	x1 := minInt(int(r.Point.X+r.Extent.X)+2, bounds.Max.X)
	y1 := minInt(int(r.Point.Y+r.Extent.Y)+2, bounds.Max.Y)

	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			px := float64(x) + 0.5
			py := float64(y) + 0.5
			c, ok := sr.shade(r, px, py)
			if !ok {
				continue
			}
			blendOver(dst, x, y, c)
		}
	}
}

// shade runs the per-fragment pipeline for one pixel-space point: outer SDF
// and AA, paint resolution, border compositing, then the outer coverage
// applied last so background and border fade out together. ok=false is the
// discard path.
func (sr *SoftwareRenderer) shade(r *Rect, px, py float64) (RGBA, bool) {
	u := (px - r.Point.X) / r.Extent.X
	v := (py - r.Point.Y) / r.Extent.Y

	radius := r.CornerRadii.at(u, v)
	cx := r.Point.X + r.Extent.X/2
	cy := r.Point.Y + r.Extent.Y/2
	dist := RoundedRectSDF(px, py, cx, cy, r.Extent.X/2, r.Extent.Y/2, radius)

	coverage := edgeCoverage(dist)
	if coverage <= 0 {
		return RGBA{}, false
	}

	c := sr.resolvePaint(r, u, v)

	if r.BorderWidth.Any() {
		c = sr.compositeBorder(r, c, px, py, u, v, radius)
	}

	c.A *= coverage
	return c, true
}

// resolvePaint evaluates the background paint at local UV (u, v).
func (sr *SoftwareRenderer) resolvePaint(r *Rect, u, v float64) RGBA {
	switch p := r.background().(type) {
	case GradientPaint:
		return p.ColorAt(u, v)
	case SampledPaint:
		colorUV := p.Color.Region
		cu := colorUV.U + colorUV.W*u
		cv := colorUV.V + colorUV.H*v
		c := sr.Atlases.sampleColor(p.Color, cu, cv, r.NearestSampling)

		alphaUV := p.Alpha.Region
		au := alphaUV.U + alphaUV.W*u
		av := alphaUV.V + alphaUV.H*v
		mask := sr.Atlases.sampleAlpha(p.Alpha, au, av, r.NearestSampling)

		return RGBA{
			R: c.R * p.Tint.R,
			G: c.G * p.Tint.G,
			B: c.B * p.Tint.B,
			A: c.A * p.Tint.A * mask,
		}
	default:
		return White
	}
}

// compositeBorder blends the background toward the border gradient outside
// the border-inset inner rectangle. The inner radius shares a single
// conservative max-width inset rather than per-edge insets, and is clamped
// at zero so the inner distance field cannot sign-flip.
func (sr *SoftwareRenderer) compositeBorder(r *Rect, background RGBA, px, py, u, v, radius float64) RGBA {
	bw := r.BorderWidth
	innerW := r.Extent.X - bw.Left - bw.Right
	innerH := r.Extent.Y - bw.Top - bw.Bottom
	if innerW < 0 {
		innerW = 0
	}
	if innerH < 0 {
		innerH = 0
	}

	innerCX := r.Point.X + bw.Left + innerW/2
	innerCY := r.Point.Y + bw.Top + innerH/2
	innerRadius := radius - bw.Max()
	if innerRadius < 0 {
		innerRadius = 0
	}

	innerDist := RoundedRectSDF(px, py, innerCX, innerCY, innerW/2, innerH/2, innerRadius)
	if innerDist <= -sdfEdgeHalfWidth {
		return background
	}

	borderColor := r.BorderColor.ColorAt(u, v)
	mix := smoothstep(-sdfEdgeHalfWidth, sdfEdgeHalfWidth, innerDist)
	return background.Lerp(borderColor, mix)
}

// blendOver composites src over the destination pixel with straight-alpha
// over blending (SrcAlpha, OneMinusSrcAlpha), matching the pipeline's
// fixed-function blend state.
func blendOver(dst *image.NRGBA, x, y int, src RGBA) {
	if src.A <= 0 {
		return
	}
	if src.A >= 1 {
		setNRGBA(dst, x, y, src)
		return
	}

	d := texelAt(dst, x-dst.Rect.Min.X, y-dst.Rect.Min.Y)
	outA := src.A + d.A*(1-src.A)
	if outA <= 0 {
		setNRGBA(dst, x, y, Transparent)
		return
	}
	out := RGBA{
		R: (src.R*src.A + d.R*d.A*(1-src.A)) / outA,
		G: (src.G*src.A + d.G*d.A*(1-src.A)) / outA,
		B: (src.B*src.A + d.B*d.A*(1-src.A)) / outA,
		A: outA,
	}
	setNRGBA(dst, x, y, out)
}

// setNRGBA writes a straight-alpha color to one pixel.
func setNRGBA(dst *image.NRGBA, x, y int, c RGBA) {
	i := dst.PixOffset(x, y)
	p := dst.Pix[i : i+4 : i+4]
	p[0] = uint8(clamp255(c.R * 255))
	p[1] = uint8(clamp255(c.G * 255))
	p[2] = uint8(clamp255(c.B * 255))
	p[3] = uint8(clamp255(c.A * 255))
}

// fillNRGBA floods the image with a single color.
func fillNRGBA(dst *image.NRGBA, c RGBA) {
	b := dst.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			setNRGBA(dst, x, y, c)
		}
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
