package ebitengine

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/spaghettifunk/anima2d/engine/core"
)

func TestTranslateKey(t *testing.T) {
	tests := []struct {
		key  ebiten.Key
		want core.KeyCode
	}{
		{ebiten.KeyA, core.KEY_A},
		{ebiten.KeyM, core.KEY_M},
		{ebiten.KeyZ, core.KEY_Z},
		{ebiten.KeyEscape, core.KEY_ESCAPE},
		{ebiten.KeyShiftRight, core.KEY_SHIFT},
		{ebiten.KeyArrowDown, core.KEY_DOWN},
		{ebiten.KeyNumpadAdd, core.KEY_PLUS},
	}
	for _, tt := range tests {
		got, ok := TranslateKey(tt.key)
		if !ok || got != tt.want {
			t.Errorf("TranslateKey(%s) = %#x, %v, want %#x", tt.key, got, ok, tt.want)
		}
	}
	if _, ok := TranslateKey(ebiten.KeyF12); ok {
		t.Error("F12 has no engine key code")
	}
}
