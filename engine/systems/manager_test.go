package systems

import (
	"testing"

	"github.com/spaghettifunk/anima2d/engine/math"
	"github.com/spaghettifunk/anima2d/engine/renderer/components"
	"github.com/spaghettifunk/anima2d/engine/renderer/metadata"
)

func TestSystemManagerLifecycle(t *testing.T) {
	am := newFakeAssets()
	addTestFont(am, "fonts/ui.fnt", "fonts/ui_0.png")
	g := newFakeGraphics()

	sm, err := NewSystemManager(SystemManagerConfig{
		ViewportWidth:  320,
		ViewportHeight: 240,
		JobWorkers:     1,
		Fonts:          []*metadata.BitmapFontConfig{{Name: "ui", ResourceName: "fonts/ui.fnt"}},
	}, g, am)
	if err != nil {
		t.Fatal(err)
	}
	if err := sm.Initialize(); err != nil {
		t.Fatal(err)
	}

	if sm.Assets() != AssetLoader(am) {
		t.Error("Assets is not the loader the manager was built with")
	}
	if sm.SpriteRenderer().Camera() != sm.CameraSystem().GetDefault() {
		t.Error("renderer not wired to the default camera")
	}
	if _, err := sm.FontSystem().Acquire("ui"); err != nil {
		t.Error(err)
	}
	if _, err := sm.ShaderSystem().Get(metadata.BUILTIN_SHADER_NAME_SPRITE); err != nil {
		t.Error(err)
	}

	tex, err := sm.TextureSystem().AcquireAsync("fonts/ui_0.png", false)
	if err != nil || tex == nil {
		t.Fatalf("AcquireAsync = %v, %v", tex, err)
	}

	sm.CameraSystem().GetDefault().MoveTo(50, 0, 0.5)
	sm.Update(0.5)
	if !sm.CameraSystem().GetDefault().GetPosition().Compare(math.NewVec2(50, 0), 1e-4) {
		t.Errorf("camera = %v, want (50,0)", sm.CameraSystem().GetDefault().GetPosition())
	}

	sm.OnResize(640, 480)
	if w, h := sm.CameraSystem().GetDefault().GetViewportSize(); w != 640 || h != 480 {
		t.Errorf("viewport = %dx%d, want 640x480", w, h)
	}

	r := sm.SpriteRenderer()
	r.Begin()
	s := components.NewSprite(sm.TextureSystem().GetDefaultTexture())
	r.DrawSprite(&s)
	r.End()
	if r.Stats().DrawCalls != 1 {
		t.Errorf("DrawCalls = %d, want 1", r.Stats().DrawCalls)
	}

	if err := sm.Shutdown(); err != nil {
		t.Fatal(err)
	}
	if err := sm.JobSystem().Submit(metadata.JobTask{OnStart: func(interface{}, chan<- interface{}) error { return nil }}); err == nil {
		t.Error("job system still accepts work after Shutdown")
	}
}
