package systems

import (
	"errors"
	"testing"

	"github.com/spaghettifunk/anima2d/engine/core"
	"github.com/spaghettifunk/anima2d/engine/math"
	"github.com/spaghettifunk/anima2d/engine/renderer/components"
)

func newTestCameraSystem(t *testing.T, maxCameras uint16) *CameraSystem {
	t.Helper()
	cs, err := NewCameraSystem(&CameraSystemConfig{MaxCameraCount: maxCameras, ViewportWidth: 800, ViewportHeight: 600})
	if err != nil {
		t.Fatal(err)
	}
	return cs
}

func TestNewCameraSystemValidates(t *testing.T) {
	if _, err := NewCameraSystem(&CameraSystemConfig{}); !errors.Is(err, core.ErrInvalidConfiguration) {
		t.Errorf("err = %v, want ErrInvalidConfiguration", err)
	}
}

func TestCameraSystemAcquireRelease(t *testing.T) {
	cs := newTestCameraSystem(t, 1)

	if c, _ := cs.Acquire(components.DEFAULT_CAMERA_NAME); c != cs.GetDefault() {
		t.Error("Acquire(default) did not return the default camera")
	}

	a, err := cs.Acquire("world")
	if err != nil {
		t.Fatal(err)
	}
	if w, h := a.GetViewportSize(); w != 800 || h != 600 {
		t.Errorf("viewport = %dx%d, want 800x600", w, h)
	}
	b, _ := cs.Acquire("world")
	if a != b {
		t.Error("second Acquire returned a different camera")
	}
	if _, err := cs.Acquire("ui"); !errors.Is(err, core.ErrInvalidConfiguration) {
		t.Errorf("over capacity: err = %v", err)
	}

	a.SetPosition(10, 20)
	cs.Release("world")
	if _, ok := cs.Cameras["world"]; !ok {
		t.Fatal("camera dropped with a reference left")
	}
	cs.Release("world")
	if _, ok := cs.Cameras["world"]; ok {
		t.Error("camera kept at zero references")
	}
	if a.GetPosition() != math.NewVec2Zero() {
		t.Error("released camera not reset")
	}

	// Both are no-ops.
	cs.Release("world")
	cs.Release(components.DEFAULT_CAMERA_NAME)
}

func TestCameraSystemUpdateAndResize(t *testing.T) {
	cs := newTestCameraSystem(t, 4)
	world, _ := cs.Acquire("world")

	world.MoveTo(100, 0, 1)
	cs.GetDefault().MoveTo(0, 100, 1)
	cs.Update(1)
	if !world.GetPosition().Compare(math.NewVec2(100, 0), 1e-4) {
		t.Errorf("acquired camera = %v, want (100,0)", world.GetPosition())
	}
	if !cs.GetDefault().GetPosition().Compare(math.NewVec2(0, 100), 1e-4) {
		t.Errorf("default camera = %v, want (0,100)", cs.GetDefault().GetPosition())
	}

	cs.OnResize(1024, 768)
	for _, c := range []*components.Camera{world, cs.GetDefault()} {
		if w, h := c.GetViewportSize(); w != 1024 || h != 768 {
			t.Errorf("viewport = %dx%d, want 1024x768", w, h)
		}
	}
}
