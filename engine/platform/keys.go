package platform

import (
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/spaghettifunk/anima2d/engine/core"
)

var keyTable = map[glfw.Key]core.KeyCode{
	glfw.KeyBackspace:  core.KEY_BACKSPACE,
	glfw.KeyTab:        core.KEY_TAB,
	glfw.KeyEnter:      core.KEY_ENTER,
	glfw.KeyLeftShift:  core.KEY_SHIFT,
	glfw.KeyRightShift: core.KEY_SHIFT,
	glfw.KeyEscape:     core.KEY_ESCAPE,
	glfw.KeySpace:      core.KEY_SPACE,
	glfw.KeyLeft:       core.KEY_LEFT,
	glfw.KeyUp:         core.KEY_UP,
	glfw.KeyRight:      core.KEY_RIGHT,
	glfw.KeyDown:       core.KEY_DOWN,
	glfw.KeyF1:         core.KEY_F1,
	glfw.KeyF2:         core.KEY_F2,
	glfw.KeyF3:         core.KEY_F3,
	glfw.KeyF4:         core.KEY_F4,
	glfw.KeyEqual:      core.KEY_PLUS,
	glfw.KeyKPAdd:      core.KEY_PLUS,
	glfw.KeyMinus:      core.KEY_MINUS,
	glfw.KeyKPSubtract: core.KEY_MINUS,
}

// TranslateKey maps a glfw key onto the engine key codes. Letters share
// their ASCII value in both tables.
func TranslateKey(key glfw.Key) (core.KeyCode, bool) {
	if key >= glfw.KeyA && key <= glfw.KeyZ {
		return core.KEY_A + core.KeyCode(key-glfw.KeyA), true
	}
	code, ok := keyTable[key]
	return code, ok
}
