package uirect

import (
	"image"
	"image/color"
	"math"
	"testing"
)

func solidNRGBA(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestAtlasSourceAdd(t *testing.T) {
	s := NewAtlasSource()
	src := solidNRGBA(4, 4, color.NRGBA{R: 255, A: 255})

	tex := s.Add(src)
	if tex.ID == 0 {
		t.Fatal("Add returned zero ID")
	}
	if tex.Region != FullTexture {
		t.Errorf("Add region = %+v, want full", tex.Region)
	}

	// The atlas keeps its own copy.
	src.SetNRGBA(0, 0, color.NRGBA{B: 255, A: 255})
	got := s.Image(tex.ID)
	if got.NRGBAAt(0, 0).R != 255 {
		t.Error("Add should copy the source pixels")
	}

	// IDs are unique.
	tex2 := s.Add(solidNRGBA(2, 2, color.NRGBA{A: 255}))
	if tex2.ID == tex.ID {
		t.Error("Add reused an ID")
	}
}

func TestAtlasSourceAddScaled(t *testing.T) {
	s := NewAtlasSource()
	tex := s.AddScaled(solidNRGBA(8, 8, color.NRGBA{G: 255, A: 255}), 4, 4)

	img := s.Image(tex.ID)
	if img.Rect.Dx() != 4 || img.Rect.Dy() != 4 {
		t.Fatalf("scaled size = %dx%d, want 4x4", img.Rect.Dx(), img.Rect.Dy())
	}
	if img.NRGBAAt(2, 2).G != 255 {
		t.Error("scaled image lost its color")
	}
}

func TestAtlasSourceImageUnknown(t *testing.T) {
	s := NewAtlasSource()
	if s.Image(0) != nil {
		t.Error("zero ID should have no image")
	}
	if s.Image(42) != nil {
		t.Error("unknown ID should have no image")
	}
}

func TestSampleColorFallbacks(t *testing.T) {
	var nilSource *AtlasSource
	if got := nilSource.sampleColor(Texture{ID: 1, Region: FullTexture}, 0.5, 0.5, false); got != White {
		t.Errorf("nil source sample = %+v, want white", got)
	}

	s := NewAtlasSource()
	if got := s.sampleColor(Texture{}, 0.5, 0.5, false); got != White {
		t.Errorf("zero texture sample = %+v, want white", got)
	}
	if got := s.sampleAlpha(Texture{}, 0.5, 0.5, false); got != 1 {
		t.Errorf("zero texture alpha = %v, want 1", got)
	}
	if got := s.sampleAlpha(Texture{ID: 99, Region: FullTexture}, 0.5, 0.5, false); got != 1 {
		t.Errorf("unknown texture alpha = %v, want 1", got)
	}
}

func TestSampleNearestVsBilinear(t *testing.T) {
	// Left half black, right half white.
	img := image.NewNRGBA(image.Rect(0, 0, 4, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 4; x++ {
			v := uint8(0)
			if x >= 2 {
				v = 255
			}
			img.SetNRGBA(x, y, color.NRGBA{R: v, G: v, B: v, A: 255})
		}
	}
	s := NewAtlasSource()
	tex := s.Add(img)

	// Nearest at the seam snaps to one side.
	n := s.sampleColor(tex, 0.5, 0.5, true)
	if n.R != 0 && n.R != 1 {
		t.Errorf("nearest at seam = %v, want 0 or 1", n.R)
	}

	// Bilinear at the seam blends the halves.
	b := s.sampleColor(tex, 0.5, 0.5, false)
	if math.Abs(b.R-0.5) > 0.01 {
		t.Errorf("bilinear at seam = %v, want 0.5", b.R)
	}
}

func TestSampleClampsToEdge(t *testing.T) {
	s := NewAtlasSource()
	tex := s.Add(solidNRGBA(2, 2, color.NRGBA{R: 255, A: 255}))

	// Out-of-range UVs clamp instead of wrapping or failing.
	for _, uv := range [][2]float64{{-1, 0.5}, {2, 0.5}, {0.5, -1}, {0.5, 2}} {
		got := s.sampleColor(tex, uv[0], uv[1], false)
		if got.R != 1 || got.A != 1 {
			t.Errorf("sample(%v, %v) = %+v, want opaque red", uv[0], uv[1], got)
		}
	}
}

func TestSampleAlphaReadsRedChannel(t *testing.T) {
	// Alpha masks store coverage in the red channel.
	img := solidNRGBA(2, 2, color.NRGBA{R: 128, G: 0, B: 0, A: 255})
	s := NewAtlasSource()
	tex := s.Add(img)

	got := s.sampleAlpha(tex, 0.5, 0.5, true)
	if math.Abs(got-128.0/255) > 1e-9 {
		t.Errorf("alpha = %v, want %v", got, 128.0/255)
	}
}
