package gpu

import (
	"fmt"
	"image"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/uirect"
)

// atlasTextures uploads atlas images to the GPU and caches the resulting
// textures, views, and per-pair bind groups. Atlas images are immutable
// once registered, so each texture is uploaded exactly once.
//
// Texture ID zero (no texture) binds the 1x1 white fallback pixel: for the
// color slot it reads as an opaque white fill, and for the alpha slot its
// red channel reads as a fully opaque mask, so one fallback serves both.
type atlasTextures struct {
	device hal.Device
	queue  hal.Queue

	atlases *uirect.AtlasSource

	textures map[uirect.TextureID]*atlasTexture
	binds    map[texturePair]hal.BindGroup

	whiteTex  hal.Texture
	whiteView hal.TextureView
}

type atlasTexture struct {
	tex  hal.Texture
	view hal.TextureView
}

type texturePair struct {
	color, alpha uirect.TextureID
}

func newAtlasTextures(device hal.Device, queue hal.Queue) *atlasTextures {
	return &atlasTextures{
		device:   device,
		queue:    queue,
		textures: make(map[uirect.TextureID]*atlasTexture),
		binds:    make(map[texturePair]hal.BindGroup),
	}
}

func (at *atlasTextures) setSource(atlases *uirect.AtlasSource) {
	at.atlases = atlases
}

// bindGroupFor returns the group-2 bind group for an atlas texture pair,
// uploading the referenced atlases and creating the bind group on first
// use. Unknown or zero IDs bind the white fallback pixel.
func (at *atlasTextures) bindGroupFor(layout hal.BindGroupLayout, pair texturePair) (hal.BindGroup, error) {
	if bg, ok := at.binds[pair]; ok {
		return bg, nil
	}

	colorView, err := at.viewFor(pair.color)
	if err != nil {
		return nil, err
	}
	alphaView, err := at.viewFor(pair.alpha)
	if err != nil {
		return nil, err
	}

	bg, err := at.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "rect_atlas_bind",
		Layout: layout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.TextureViewBinding{TextureView: colorView.NativeHandle()}},
			{Binding: 1, Resource: gputypes.TextureViewBinding{TextureView: alphaView.NativeHandle()}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create atlas bind group: %w", err)
	}
	at.binds[pair] = bg
	return bg, nil
}

// viewFor resolves a texture ID to a view, uploading the atlas image on
// first use and falling back to the white pixel for zero or unknown IDs.
func (at *atlasTextures) viewFor(id uirect.TextureID) (hal.TextureView, error) {
	if id == 0 || at.atlases == nil {
		return at.whiteFallback()
	}
	if cached, ok := at.textures[id]; ok {
		return cached.view, nil
	}

	img := at.atlases.Image(id)
	if img == nil {
		slogger().Warn("unknown atlas texture, using fallback", "id", uint64(id))
		return at.whiteFallback()
	}

	tex, view, err := at.uploadImage(fmt.Sprintf("rect_atlas_%d", id), img)
	if err != nil {
		return nil, err
	}
	at.textures[id] = &atlasTexture{tex: tex, view: view}
	return view, nil
}

func (at *atlasTextures) whiteFallback() (hal.TextureView, error) {
	if at.whiteView != nil {
		return at.whiteView, nil
	}
	white := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	white.Pix[0], white.Pix[1], white.Pix[2], white.Pix[3] = 255, 255, 255, 255
	tex, view, err := at.uploadImage("rect_white_pixel", white)
	if err != nil {
		return nil, err
	}
	at.whiteTex = tex
	at.whiteView = view
	return view, nil
}

// uploadImage creates an RGBA8 texture from an NRGBA image and uploads its
// pixels via the queue.
func (at *atlasTextures) uploadImage(label string, img *image.NRGBA) (hal.Texture, hal.TextureView, error) {
	w := img.Rect.Dx()
	h := img.Rect.Dy()
	width := uint32(w)  //nolint:gosec // atlas dimensions always fit uint32
	height := uint32(h) //nolint:gosec // atlas dimensions always fit uint32

	tex, err := at.device.CreateTexture(&hal.TextureDescriptor{
		Label:         label,
		Size:          hal.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create texture %s: %w", label, err)
	}

	view, err := at.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         label + "_view",
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		at.device.DestroyTexture(tex)
		return nil, nil, fmt.Errorf("create texture view %s: %w", label, err)
	}

	at.queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: tex, MipLevel: 0},
		packRows(img),
		&hal.ImageDataLayout{Offset: 0, BytesPerRow: width * 4, RowsPerImage: height},
		&hal.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1},
	)
	return tex, view, nil
}

// packRows returns the image pixels as tightly packed rows.
func packRows(img *image.NRGBA) []byte {
	w := img.Rect.Dx()
	h := img.Rect.Dy()
	if img.Stride == w*4 && len(img.Pix) == w*h*4 {
		return img.Pix
	}
	packed := make([]byte, w*h*4)
	for y := 0; y < h; y++ {
		copy(packed[y*w*4:(y+1)*w*4], img.Pix[y*img.Stride:y*img.Stride+w*4])
	}
	return packed
}

// destroy releases all cached GPU textures and bind groups.
func (at *atlasTextures) destroy() {
	if at.device == nil {
		return
	}
	for pair, bg := range at.binds {
		at.device.DestroyBindGroup(bg)
		delete(at.binds, pair)
	}
	for id, t := range at.textures {
		at.device.DestroyTextureView(t.view)
		at.device.DestroyTexture(t.tex)
		delete(at.textures, id)
	}
	if at.whiteView != nil {
		at.device.DestroyTextureView(at.whiteView)
		at.whiteView = nil
	}
	if at.whiteTex != nil {
		at.device.DestroyTexture(at.whiteTex)
		at.whiteTex = nil
	}
}
