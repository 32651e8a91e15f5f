package gpu

import (
	"image"
	"testing"

	"github.com/gogpu/uirect"
)

func newTestAtlasTextures(t *testing.T) (*atlasTextures, *rectPipeline, func()) {
	t.Helper()
	device, queue, cleanup := createNoopDevice(t)
	p := newRectPipeline(device)
	if err := p.createShared(); err != nil {
		cleanup()
		t.Fatalf("createShared failed: %v", err)
	}
	at := newAtlasTextures(device, queue)
	return at, p, func() {
		at.destroy()
		p.destroy()
		cleanup()
	}
}

func TestAtlasTexturesFallback(t *testing.T) {
	at, p, cleanup := newTestAtlasTextures(t)
	defer cleanup()

	// Zero pair binds the white fallback for both slots.
	bg, err := at.bindGroupFor(p.atlasLayout, texturePair{})
	if err != nil {
		t.Fatalf("bindGroupFor failed: %v", err)
	}
	if bg == nil {
		t.Fatal("expected bind group")
	}
	if at.whiteTex == nil || at.whiteView == nil {
		t.Error("expected white fallback texture")
	}
	if len(at.textures) != 0 {
		t.Error("fallback should not create atlas textures")
	}
}

func TestAtlasTexturesUploadAndCache(t *testing.T) {
	at, p, cleanup := newTestAtlasTextures(t)
	defer cleanup()

	atlases := uirect.NewAtlasSource()
	at.setSource(atlases)
	tex := atlases.Add(image.NewNRGBA(image.Rect(0, 0, 4, 4)))

	pair := texturePair{color: tex.ID}
	bg, err := at.bindGroupFor(p.atlasLayout, pair)
	if err != nil {
		t.Fatalf("bindGroupFor failed: %v", err)
	}
	if len(at.textures) != 1 {
		t.Errorf("atlas textures = %d, want 1", len(at.textures))
	}

	again, err := at.bindGroupFor(p.atlasLayout, pair)
	if err != nil {
		t.Fatalf("bindGroupFor second call failed: %v", err)
	}
	if bg != again {
		t.Error("same pair should return the cached bind group")
	}
}

func TestAtlasTexturesUnknownID(t *testing.T) {
	at, p, cleanup := newTestAtlasTextures(t)
	defer cleanup()

	at.setSource(uirect.NewAtlasSource())

	// Unknown IDs resolve to the fallback instead of failing the frame.
	if _, err := at.bindGroupFor(p.atlasLayout, texturePair{color: 999}); err != nil {
		t.Fatalf("unknown texture should fall back, got: %v", err)
	}
	if at.whiteView == nil {
		t.Error("expected fallback texture for unknown ID")
	}
}

func TestPackRows(t *testing.T) {
	// Sub-images carry a parent stride wider than their row.
	parent := image.NewNRGBA(image.Rect(0, 0, 8, 4))
	for i := range parent.Pix {
		parent.Pix[i] = byte(i)
	}
	sub, ok := parent.SubImage(image.Rect(2, 1, 6, 3)).(*image.NRGBA)
	if !ok {
		t.Fatal("SubImage did not return *image.NRGBA")
	}

	packed := packRows(sub)
	w, h := sub.Rect.Dx(), sub.Rect.Dy()
	if len(packed) != w*h*4 {
		t.Fatalf("packed size = %d, want %d", len(packed), w*h*4)
	}
	for y := 0; y < h; y++ {
		srcRow := sub.Pix[y*sub.Stride : y*sub.Stride+w*4]
		dstRow := packed[y*w*4 : (y+1)*w*4]
		for x := range srcRow {
			if srcRow[x] != dstRow[x] {
				t.Fatalf("row %d byte %d = %d, want %d", y, x, dstRow[x], srcRow[x])
			}
		}
	}

	// Tightly packed images are returned as-is.
	tight := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	if got := packRows(tight); &got[0] != &tight.Pix[0] {
		t.Error("tight image should not be copied")
	}
}
