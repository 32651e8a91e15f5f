package uirect

import (
	"image"
	"sync"

	xdraw "golang.org/x/image/draw"
)

// AtlasSource holds CPU-side copies of the atlas textures, keyed by
// TextureID, for software rendering. The GPU path never consults it; atlas
// allocation and eviction policy belong to the host collaborator, which
// registers whole atlas images here and slices Texture handles off them.
//
// AtlasSource is safe for concurrent reads; Add calls must be externally
// serialized with rendering.
type AtlasSource struct {
	mu     sync.RWMutex
	nextID TextureID
	images map[TextureID]*image.NRGBA
}

// NewAtlasSource creates an empty atlas registry.
func NewAtlasSource() *AtlasSource {
	return &AtlasSource{
		nextID: 1,
		images: make(map[TextureID]*image.NRGBA),
	}
}

// Add registers an atlas image and returns a handle to its full extent.
// The image is copied into tightly packed NRGBA storage, so the caller may
// reuse or mutate src afterwards.
func (s *AtlasSource) Add(src image.Image) Texture {
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Draw(dst, dst.Bounds(), src, b.Min, xdraw.Src)

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.images[id] = dst
	s.mu.Unlock()

	return Texture{ID: id, Region: FullTexture}
}

// AddScaled registers an atlas image resampled to w x h with bilinear
// interpolation and returns a handle to its full extent.
func (s *AtlasSource) AddScaled(src image.Image, w, h int) Texture {
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	xdraw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.images[id] = dst
	s.mu.Unlock()

	return Texture{ID: id, Region: FullTexture}
}

// Image returns the registered image for a handle, or nil for the zero
// texture.
func (s *AtlasSource) Image(id TextureID) *image.NRGBA {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.images[id]
}

// sampleColor samples a color texture at normalized atlas coordinates.
// The zero texture yields opaque white, matching the GPU white-pixel
// fallback. Addressing clamps to the edge.
func (s *AtlasSource) sampleColor(tex Texture, u, v float64, nearest bool) RGBA {
	if s == nil || tex.IsZero() {
		return White
	}
	img := s.Image(tex.ID)
	if img == nil {
		return White
	}
	return sampleNRGBA(img, u, v, nearest)
}

// sampleAlpha samples an alpha-mask texture's red channel at normalized
// atlas coordinates. The zero texture yields 1, matching the GPU
// opaque-pixel fallback.
func (s *AtlasSource) sampleAlpha(tex Texture, u, v float64, nearest bool) float64 {
	if s == nil || tex.IsZero() {
		return 1
	}
	img := s.Image(tex.ID)
	if img == nil {
		return 1
	}
	return sampleNRGBA(img, u, v, nearest).R
}

// sampleNRGBA performs clamped nearest or bilinear sampling at normalized
// coordinates, mirroring a clamp-to-edge sampler.
func sampleNRGBA(img *image.NRGBA, u, v float64, nearest bool) RGBA {
	w := img.Rect.Dx()
	h := img.Rect.Dy()
	if w == 0 || h == 0 {
		return Transparent
	}

	// Texel space: UV 0..1 maps to 0..w with texel centers at half-integers.
	x := u*float64(w) - 0.5
	y := v*float64(h) - 0.5

	if nearest {
		return texelAt(img, int(clampf(x+0.5, 0, float64(w-1))), int(clampf(y+0.5, 0, float64(h-1))))
	}

	x0 := int(clampf(x, 0, float64(w-1)))
	y0 := int(clampf(y, 0, float64(h-1)))
	x1 := x0 + 1
	y1 := y0 + 1
	if x1 > w-1 {
		x1 = w - 1
	}
	if y1 > h-1 {
		y1 = h - 1
	}
	fx := clamp01(x - float64(x0))
	fy := clamp01(y - float64(y0))

	top := texelAt(img, x0, y0).Lerp(texelAt(img, x1, y0), fx)
	bottom := texelAt(img, x0, y1).Lerp(texelAt(img, x1, y1), fx)
	return top.Lerp(bottom, fy)
}

// texelAt reads one texel as straight-alpha RGBA in [0, 1].
func texelAt(img *image.NRGBA, x, y int) RGBA {
	i := img.PixOffset(img.Rect.Min.X+x, img.Rect.Min.Y+y)
	p := img.Pix[i : i+4 : i+4]
	return RGBA{
		R: float64(p[0]) / 255,
		G: float64(p[1]) / 255,
		B: float64(p[2]) / 255,
		A: float64(p[3]) / 255,
	}
}

// clampf restricts x to [lo, hi].
func clampf(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
