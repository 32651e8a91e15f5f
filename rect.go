package uirect

// Vec represents a 2D point or extent in pixel space (origin top-left,
// Y down) or in local UV space, depending on context.
type Vec struct {
	X, Y float64
}

// V is a convenience function to create a Vec.
func V(x, y float64) Vec {
	return Vec{X: x, Y: y}
}

// Add returns the sum of two vectors.
func (v Vec) Add(w Vec) Vec {
	return Vec{X: v.X + w.X, Y: v.Y + w.Y}
}

// Sub returns the difference of two vectors.
func (v Vec) Sub(w Vec) Vec {
	return Vec{X: v.X - w.X, Y: v.Y - w.Y}
}

// Mul returns the vector scaled by a scalar.
func (v Vec) Mul(s float64) Vec {
	return Vec{X: v.X * s, Y: v.Y * s}
}

// BorderWidths holds independent per-edge border widths in pixels.
// All zero means no border.
type BorderWidths struct {
	Left, Top, Right, Bottom float64
}

// UniformBorder returns equal widths on all four edges.
func UniformBorder(w float64) BorderWidths {
	return BorderWidths{Left: w, Top: w, Right: w, Bottom: w}
}

// Any reports whether any edge has a positive width.
func (b BorderWidths) Any() bool {
	return b.Left > 0 || b.Top > 0 || b.Right > 0 || b.Bottom > 0
}

// Max returns the largest of the four widths.
func (b BorderWidths) Max() float64 {
	m := b.Left
	if b.Top > m {
		m = b.Top
	}
	if b.Right > m {
		m = b.Right
	}
	if b.Bottom > m {
		m = b.Bottom
	}
	return m
}

// CornerRadii holds independent per-corner radii in pixels. Zero means a
// square corner. A radius must not exceed half the shorter rectangle
// dimension at that corner; the shader does not clamp, and violating this
// produces visually wrong but not erroneous output.
type CornerRadii struct {
	TopLeft, TopRight, BottomLeft, BottomRight float64
}

// UniformRadii returns equal radii on all four corners.
func UniformRadii(r float64) CornerRadii {
	return CornerRadii{TopLeft: r, TopRight: r, BottomLeft: r, BottomRight: r}
}

// Any reports whether any corner has a positive radius.
func (r CornerRadii) Any() bool {
	return r.TopLeft > 0 || r.TopRight > 0 || r.BottomLeft > 0 || r.BottomRight > 0
}

// at returns the radius for the quadrant containing local UV (u, v),
// bucketing against the rectangle midlines.
func (r CornerRadii) at(u, v float64) float64 {
	if u < 0.5 {
		if v < 0.5 {
			return r.TopLeft
		}
		return r.BottomLeft
	}
	if v < 0.5 {
		return r.TopRight
	}
	return r.BottomRight
}

// Rect describes one styled rectangle: geometry, background paint, border,
// and sampling mode. It is a pure value type rebuilt every frame by the
// widget layer, appended to a DrawList, and discarded after the frame's
// draw completes. No identity persists across frames.
type Rect struct {
	// Point is the top-left corner in pixel space.
	Point Vec

	// Extent is the width and height in pixels. Components must be >= 0.
	Extent Vec

	// Background fills the rectangle interior. nil draws solid white.
	Background Paint

	// BorderColor paints the border band. Borders are always gradients;
	// a flat border is a degenerate gradient (SolidGradient).
	BorderColor GradientPaint

	// BorderWidth holds the per-edge border widths. All zero disables
	// border compositing entirely.
	BorderWidth BorderWidths

	// CornerRadii holds the per-corner rounding radii.
	CornerRadii CornerRadii

	// NearestSampling disables bilinear filtering for this rect's texture
	// samples. Use for pixel-exact content such as unscaled glyphs.
	NearestSampling bool
}

// NewRect creates a rectangle at (x, y) with the given size and background.
func NewRect(x, y, w, h float64, background Paint) Rect {
	return Rect{
		Point:      Vec{X: x, Y: y},
		Extent:     Vec{X: w, Y: h},
		Background: background,
	}
}

// WithBackground returns the rect with its background replaced.
func (r Rect) WithBackground(p Paint) Rect {
	r.Background = p
	return r
}

// WithBorder returns the rect with a uniform flat-color border.
func (r Rect) WithBorder(c RGBA, width float64) Rect {
	r.BorderColor = SolidGradient(c)
	r.BorderWidth = UniformBorder(width)
	return r
}

// WithBorderGradient returns the rect with a gradient border and per-edge
// widths.
func (r Rect) WithBorderGradient(g GradientPaint, widths BorderWidths) Rect {
	r.BorderColor = g
	r.BorderWidth = widths
	return r
}

// WithCornerRadius returns the rect with the same radius on all corners.
func (r Rect) WithCornerRadius(radius float64) Rect {
	r.CornerRadii = UniformRadii(radius)
	return r
}

// WithCornerRadii returns the rect with per-corner radii.
func (r Rect) WithCornerRadii(radii CornerRadii) Rect {
	r.CornerRadii = radii
	return r
}

// WithNearestSampling returns the rect with bilinear filtering disabled.
func (r Rect) WithNearestSampling() Rect {
	r.NearestSampling = true
	return r
}

// background returns the effective background paint, substituting solid
// white for nil.
func (r Rect) background() Paint {
	if r.Background == nil {
		return SampledPaint{Tint: White}
	}
	return r.Background
}
