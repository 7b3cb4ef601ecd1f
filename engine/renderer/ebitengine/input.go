package ebitengine

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/spaghettifunk/anima2d/engine/core"
)

var keyTable = map[ebiten.Key]core.KeyCode{
	ebiten.KeyBackspace:      core.KEY_BACKSPACE,
	ebiten.KeyTab:            core.KEY_TAB,
	ebiten.KeyEnter:          core.KEY_ENTER,
	ebiten.KeyShiftLeft:      core.KEY_SHIFT,
	ebiten.KeyShiftRight:     core.KEY_SHIFT,
	ebiten.KeyEscape:         core.KEY_ESCAPE,
	ebiten.KeySpace:          core.KEY_SPACE,
	ebiten.KeyArrowLeft:      core.KEY_LEFT,
	ebiten.KeyArrowUp:        core.KEY_UP,
	ebiten.KeyArrowRight:     core.KEY_RIGHT,
	ebiten.KeyArrowDown:      core.KEY_DOWN,
	ebiten.KeyF1:             core.KEY_F1,
	ebiten.KeyF2:             core.KEY_F2,
	ebiten.KeyF3:             core.KEY_F3,
	ebiten.KeyF4:             core.KEY_F4,
	ebiten.KeyEqual:          core.KEY_PLUS,
	ebiten.KeyNumpadAdd:      core.KEY_PLUS,
	ebiten.KeyMinus:          core.KEY_MINUS,
	ebiten.KeyNumpadSubtract: core.KEY_MINUS,
}

// Letter keys are named "A" to "Z", which are also their engine codes.
func init() {
	for key := ebiten.Key(0); key <= ebiten.KeyMax; key++ {
		if name := key.String(); len(name) == 1 && name[0] >= 'A' && name[0] <= 'Z' {
			keyTable[key] = core.KeyCode(name[0])
		}
	}
}

// TranslateKey maps an ebiten key onto the engine key codes.
func TranslateKey(key ebiten.Key) (core.KeyCode, bool) {
	code, ok := keyTable[key]
	return code, ok
}

// InputPoller forwards ebiten's per-tick key transitions into the engine
// input state, which fires the key events.
type InputPoller struct {
	keys []ebiten.Key
}

func NewInputPoller() *InputPoller {
	return &InputPoller{}
}

// Poll must be called once per ebiten Update.
func (p *InputPoller) Poll() {
	p.keys = inpututil.AppendJustPressedKeys(p.keys[:0])
	p.forward(true)
	p.keys = inpututil.AppendJustReleasedKeys(p.keys[:0])
	p.forward(false)
}

func (p *InputPoller) forward(pressed bool) {
	for _, key := range p.keys {
		code, ok := TranslateKey(key)
		if !ok {
			continue
		}
		if err := core.InputProcessKey(code, pressed); err != nil {
			core.LogWarn("dropped key %s: %s", key, err)
		}
	}
}
