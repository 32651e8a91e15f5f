package uirect

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"testing"
)

// fakeBackend is a scriptable GPUBackend for exercising registration and
// the renderer's GPU-first, software-fallback flow.
type fakeBackend struct {
	initErr   error
	renderErr error
	available bool

	rendered int
	closed   int
	logger   *slog.Logger
	atlases  *AtlasSource
	provider any
}

func (f *fakeBackend) Name() string      { return "fake" }
func (f *fakeBackend) Init() error       { return f.initErr }
func (f *fakeBackend) Close()            { f.closed++ }
func (f *fakeBackend) IsAvailable() bool { return f.available }

func (f *fakeBackend) RenderDrawList(target RenderTarget, dl *DrawList) error {
	f.rendered++
	if f.renderErr != nil {
		return f.renderErr
	}
	// Mark the frame so tests can tell the GPU path ran.
	for i := 3; i < len(target.Data); i += 4 {
		target.Data[i] = 255
	}
	return nil
}

func (f *fakeBackend) SetLogger(l *slog.Logger)      { f.logger = l }
func (f *fakeBackend) SetAtlasSource(a *AtlasSource) { f.atlases = a }
func (f *fakeBackend) SetDeviceProvider(p any) error { f.provider = p; return nil }

// swapBackend installs b as the registered backend directly, bypassing
// Init, and restores the previous backend when the test finishes.
func swapBackend(t *testing.T, b GPUBackend) {
	t.Helper()
	backendMu.Lock()
	old := backend
	backend = b
	backendMu.Unlock()
	t.Cleanup(func() {
		backendMu.Lock()
		backend = old
		backendMu.Unlock()
	})
}

func TestRegisterBackendNil(t *testing.T) {
	if err := RegisterBackend(nil); err == nil {
		t.Fatal("RegisterBackend(nil) = nil error")
	}
}

func TestRegisterBackendInitFailure(t *testing.T) {
	swapBackend(t, nil)

	fb := &fakeBackend{initErr: errors.New("no device")}
	if err := RegisterBackend(fb); err == nil {
		t.Fatal("RegisterBackend with failing Init = nil error")
	}
	if Backend() != nil {
		t.Error("failed backend was registered")
	}
}

func TestRegisterBackendReplacesAndCloses(t *testing.T) {
	swapBackend(t, nil)

	first := &fakeBackend{}
	if err := RegisterBackend(first); err != nil {
		t.Fatalf("RegisterBackend: %v", err)
	}
	second := &fakeBackend{}
	if err := RegisterBackend(second); err != nil {
		t.Fatalf("RegisterBackend: %v", err)
	}

	if Backend() != second {
		t.Error("second backend not registered")
	}
	if first.closed != 1 {
		t.Errorf("previous backend closed %d times, want 1", first.closed)
	}
	if second.logger == nil {
		t.Error("logger not propagated at registration")
	}
}

func TestSetLoggerPropagates(t *testing.T) {
	fb := &fakeBackend{}
	swapBackend(t, fb)

	l := slog.New(nopHandler{})
	SetLogger(l)
	defer SetLogger(nil)

	if fb.logger != l {
		t.Error("SetLogger did not reach the backend")
	}
	if Logger() != l {
		t.Error("Logger() did not return the configured logger")
	}
}

func TestSetLoggerNilRestoresSilent(t *testing.T) {
	SetLogger(nil)
	if Logger() == nil {
		t.Fatal("Logger() = nil after SetLogger(nil)")
	}
}

func TestSetBackendDeviceProviderNoBackend(t *testing.T) {
	swapBackend(t, nil)
	if err := SetBackendDeviceProvider(struct{}{}); err != nil {
		t.Errorf("no-backend SetBackendDeviceProvider: %v", err)
	}
}

func TestNewRendererForwardsToBackend(t *testing.T) {
	fb := &fakeBackend{}
	swapBackend(t, fb)

	atlases := NewAtlasSource()
	NewRenderer(nil, atlases)
	if fb.atlases != atlases {
		t.Error("atlas source not propagated to the backend")
	}
}

func TestRendererUsesGPUBackend(t *testing.T) {
	fb := &fakeBackend{available: true}
	swapBackend(t, fb)

	dst := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	dl := AcquireDrawList()
	defer ReleaseDrawList(dl)
	dl.Push(NewRect(0, 0, 4, 4, Solid(Red)))

	NewRenderer(nil, nil).Render(dst, dl)

	if fb.rendered != 1 {
		t.Fatalf("backend rendered %d frames, want 1", fb.rendered)
	}
	// The fake writes alpha only; red stays zero, proving the software
	// rasterizer did not run afterwards.
	if got := dst.NRGBAAt(2, 2); got.A != 255 || got.R != 0 {
		t.Errorf("pixel = %+v, want fake-backend output", got)
	}
}

func TestRendererFallsBackOnError(t *testing.T) {
	fb := &fakeBackend{available: true, renderErr: ErrFallbackToCPU}
	swapBackend(t, fb)

	dst := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	dl := AcquireDrawList()
	defer ReleaseDrawList(dl)
	dl.Push(NewRect(0, 0, 4, 4, Solid(Red)))

	NewRenderer(nil, nil).Render(dst, dl)

	if fb.rendered != 1 {
		t.Fatalf("backend rendered %d frames, want 1", fb.rendered)
	}
	if got := dst.NRGBAAt(2, 2); got.R != 255 || got.A != 255 {
		t.Errorf("pixel = %+v, want software-rendered red", got)
	}
}

// countingHandler records how many log records it receives.
type countingHandler struct{ records *int }

func (countingHandler) Enabled(context.Context, slog.Level) bool { return true }
func (h countingHandler) Handle(context.Context, slog.Record) error {
	*h.records++
	return nil
}
func (h countingHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h countingHandler) WithGroup(string) slog.Handler      { return h }

func TestRendererFallsBackOnWrappedError(t *testing.T) {
	fb := &fakeBackend{
		available: true,
		renderErr: fmt.Errorf("frame exceeds GPU limits: %w", ErrFallbackToCPU),
	}
	swapBackend(t, fb)

	var records int
	SetLogger(slog.New(countingHandler{records: &records}))
	defer SetLogger(nil)

	dst := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	dl := AcquireDrawList()
	defer ReleaseDrawList(dl)
	dl.Push(NewRect(0, 0, 4, 4, Solid(Red)))

	NewRenderer(nil, nil).Render(dst, dl)

	if got := dst.NRGBAAt(2, 2); got.R != 255 || got.A != 255 {
		t.Errorf("pixel = %+v, want software-rendered red", got)
	}
	// A wrapped fallback sentinel is the normal CPU handoff, not a failure
	// worth warning about.
	if records != 0 {
		t.Errorf("logged %d records during fallback, want 0", records)
	}
}

func TestRendererSkipsUnavailableBackend(t *testing.T) {
	fb := &fakeBackend{available: false}
	swapBackend(t, fb)

	dst := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	dl := AcquireDrawList()
	defer ReleaseDrawList(dl)
	dl.Push(NewRect(0, 0, 4, 4, Solid(Red)))

	NewRenderer(nil, nil).Render(dst, dl)

	if fb.rendered != 0 {
		t.Errorf("unavailable backend rendered %d frames, want 0", fb.rendered)
	}
	if got := dst.NRGBAAt(2, 2); got.R != 255 {
		t.Errorf("pixel = %+v, want software-rendered red", got)
	}
}

func TestRendererNilArgs(t *testing.T) {
	r := NewRenderer(nil, nil)
	r.Render(nil, AcquireDrawList())
	r.Render(image.NewNRGBA(image.Rect(0, 0, 1, 1)), nil)
	if r.Software() == nil {
		t.Error("Software() = nil")
	}
}
