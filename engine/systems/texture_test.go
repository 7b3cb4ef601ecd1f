package systems

import (
	"errors"
	"testing"
	"time"

	"github.com/spaghettifunk/anima2d/engine/core"
	"github.com/spaghettifunk/anima2d/engine/renderer/metadata"
)

func newTestTextureSystem(t *testing.T, am *fakeAssets, js *JobSystem) (*TextureSystem, *fakeGraphics) {
	t.Helper()
	g := newFakeGraphics()
	ts, err := NewTextureSystem(&TextureSystemConfig{MaxTextureCount: 8}, js, am, g)
	if err != nil {
		t.Fatal(err)
	}
	if err := ts.Initialize(); err != nil {
		t.Fatal(err)
	}
	return ts, g
}

func TestNewTextureSystemValidates(t *testing.T) {
	if _, err := NewTextureSystem(&TextureSystemConfig{}, nil, nil, newFakeGraphics()); !errors.Is(err, core.ErrInvalidConfiguration) {
		t.Errorf("zero capacity: err = %v", err)
	}
	if _, err := NewTextureSystem(&TextureSystemConfig{MaxTextureCount: 1}, nil, nil, nil); !errors.Is(err, core.ErrMissingGraphicsAPI) {
		t.Errorf("nil graphics: err = %v", err)
	}
}

func TestTextureSystemDefaultTexture(t *testing.T) {
	ts, g := newTestTextureSystem(t, newFakeAssets(), nil)

	def := ts.GetDefaultTexture()
	if !def.IsValid() || def.Width != defaultTextureDimension {
		t.Fatalf("default texture = %+v", def)
	}
	if _, ok := g.textures[def.Handle]; !ok {
		t.Error("default texture not uploaded")
	}
	if got, _ := ts.Acquire(metadata.DEFAULT_TEXTURE_NAME, false); got != def {
		t.Error("Acquire(default) did not return the default texture")
	}
}

func TestTextureSystemReferenceCounting(t *testing.T) {
	am := newFakeAssets()
	am.addImage("hero", 32, 16)
	ts, g := newTestTextureSystem(t, am, nil)

	a, err := ts.Acquire("hero", true)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := ts.Acquire("hero", true)
	if a != b {
		t.Error("second Acquire returned a different texture")
	}
	if a.Width != 32 || a.Height != 16 || !a.IsValid() {
		t.Errorf("texture = %+v", a)
	}
	if am.loads != 1 {
		t.Errorf("loads = %d, want 1", am.loads)
	}
	if am.unloads != 1 {
		t.Errorf("unloads = %d, want 1", am.unloads)
	}
	if ts.ReferenceCount("hero") != 2 {
		t.Errorf("ReferenceCount = %d, want 2", ts.ReferenceCount("hero"))
	}

	handle := a.Handle
	ts.Release("hero")
	if g.deleted[handle] {
		t.Error("texture destroyed with a reference left")
	}
	ts.Release("hero")
	if !g.deleted[handle] {
		t.Error("auto-release texture not destroyed at zero references")
	}
	if _, ok := ts.Get("hero"); ok {
		t.Error("released texture still registered")
	}

	// Releasing again only warns.
	ts.Release("hero")
}

func TestTextureSystemKeepsNonAutoRelease(t *testing.T) {
	am := newFakeAssets()
	am.addImage("tiles", 8, 8)
	ts, g := newTestTextureSystem(t, am, nil)

	tex, _ := ts.Acquire("tiles", false)
	ts.Release("tiles")
	if g.deleted[tex.Handle] {
		t.Error("non auto-release texture destroyed")
	}
	if _, ok := ts.Get("tiles"); !ok {
		t.Error("non auto-release texture unregistered")
	}
}

func TestTextureSystemMissingImage(t *testing.T) {
	ts, _ := newTestTextureSystem(t, newFakeAssets(), nil)
	if _, err := ts.Acquire("nope", true); err == nil {
		t.Error("missing image acquired")
	}
	if ts.Count() != 0 {
		t.Errorf("Count = %d, want 0", ts.Count())
	}
}

func TestTextureSystemCreateFromPixels(t *testing.T) {
	ts, _ := newTestTextureSystem(t, newFakeAssets(), nil)

	pixels := []uint8{255, 255, 255, 255, 0, 0, 0, 128}
	tex, err := ts.CreateFromPixels("", 2, 1, pixels)
	if err != nil {
		t.Fatal(err)
	}
	if tex.Name == "" {
		t.Error("anonymous texture has no name")
	}
	if !tex.HasFlag(metadata.TextureFlagHasTransparency) {
		t.Error("transparency not detected")
	}
	if _, ok := ts.Get(tex.Name); !ok {
		t.Error("anonymous texture not registered")
	}

	if _, err := ts.CreateFromPixels(tex.Name, 2, 1, pixels); !errors.Is(err, core.ErrInvalidConfiguration) {
		t.Errorf("duplicate name: err = %v", err)
	}
	if _, err := ts.CreateFromPixels("short", 2, 2, pixels); !errors.Is(err, core.ErrInvalidConfiguration) {
		t.Errorf("short pixels: err = %v", err)
	}
}

func TestTextureSystemCapacity(t *testing.T) {
	g := newFakeGraphics()
	ts, err := NewTextureSystem(&TextureSystemConfig{MaxTextureCount: 1}, nil, newFakeAssets(), g)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ts.CreateFromPixels("a", 1, 1, []uint8{0, 0, 0, 255}); err != nil {
		t.Fatal(err)
	}
	if _, err := ts.CreateFromPixels("b", 1, 1, []uint8{0, 0, 0, 255}); err == nil {
		t.Error("texture system grew past its capacity")
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("timed out")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestTextureSystemAcquireAsync(t *testing.T) {
	am := newFakeAssets()
	am.addImage("big", 64, 32)
	am.gate = make(chan struct{})
	js, err := NewJobSystem(1, 4)
	if err != nil {
		t.Fatal(err)
	}
	defer js.Shutdown()
	ts, _ := newTestTextureSystem(t, am, js)

	tex, err := ts.AcquireAsync("big", true)
	if err != nil {
		t.Fatal(err)
	}
	if !tex.HasFlag(metadata.TextureFlagIsLoading) {
		t.Error("loading flag not set")
	}
	if tex.Handle != ts.GetDefaultTexture().Handle {
		t.Error("loading texture does not stand in with the default")
	}
	if again, _ := ts.AcquireAsync("big", true); again != tex {
		t.Error("second AcquireAsync returned a different texture")
	}

	close(am.gate)
	waitFor(t, func() bool { return ts.Pending() == 1 })
	ts.Update()

	if tex.HasFlag(metadata.TextureFlagIsLoading) {
		t.Error("loading flag still set after Update")
	}
	if tex.Width != 64 || tex.Height != 32 || tex.Handle == ts.GetDefaultTexture().Handle {
		t.Errorf("texture after upload = %+v", tex)
	}
	if tex.Generation != 1 {
		t.Errorf("Generation = %d, want 1", tex.Generation)
	}
}

func TestTextureSystemAcquireAsyncFailure(t *testing.T) {
	am := newFakeAssets()
	js, err := NewJobSystem(1, 4)
	if err != nil {
		t.Fatal(err)
	}
	defer js.Shutdown()
	ts, _ := newTestTextureSystem(t, am, js)

	tex, err := ts.AcquireAsync("missing", true)
	if err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { return ts.Pending() == 1 })
	ts.Update()

	if tex.HasFlag(metadata.TextureFlagIsLoading) {
		t.Error("loading flag kept after a failed load")
	}
	if tex.Handle != ts.GetDefaultTexture().Handle {
		t.Error("failed texture no longer shows the default")
	}
}
