package graphics

import rl "github.com/gen2brain/raylib-go/raylib"

// keyNames maps raylib keys to the names scripts receive in keyDown/keyUp.
// Letters and digits are their own character.
var keyNames = map[int32]string{
	rl.KeyEscape:       "Escape",
	rl.KeyGrave:        "Back Quote",
	rl.KeyMinus:        "-",
	rl.KeyEqual:        "=",
	rl.KeyBackspace:    "Delete",
	rl.KeyTab:          "Tab",
	rl.KeyLeftBracket:  "[",
	rl.KeyRightBracket: "]",
	rl.KeyBackSlash:    "\\",
	rl.KeySemicolon:    ";",
	rl.KeyEnter:        "Return",
	rl.KeyLeftShift:    "Shift",
	rl.KeyRightShift:   "Shift",
	rl.KeyComma:        "Comma",
	rl.KeyPeriod:       "Period",
	rl.KeySlash:        "/",
	rl.KeyLeftControl:  "Control",
	rl.KeyRightControl: "Control",
	rl.KeyLeftAlt:      "Option",
	rl.KeyRightAlt:     "R. Option",
	rl.KeyLeftSuper:    "Command",
	rl.KeyRightSuper:   "Command",
	rl.KeySpace:        "Space",
	rl.KeyLeft:         "Arrow Left",
	rl.KeyUp:           "Arrow Up",
	rl.KeyRight:        "Arrow Right",
	rl.KeyDown:         "Arrow Down",
}

func init() {
	for k := int32('A'); k <= 'Z'; k++ {
		keyNames[k] = string(rune(k))
	}
	for k := int32('0'); k <= '9'; k++ {
		keyNames[k] = string(rune(k))
	}
}

// KeyName returns the script-facing name of a raylib key.
func KeyName(key int32) (string, bool) {
	name, ok := keyNames[key]
	return name, ok
}

// PollKeys reports this frame's presses and releases of every named key.
func PollKeys(down, up func(name string)) {
	for k, name := range keyNames {
		if rl.IsKeyPressed(k) {
			down(name)
		}
		if rl.IsKeyReleased(k) {
			up(name)
		}
	}
}
