package engine

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"

	"scene-engine/internal/model"
)

// Callback names a script function that is registered by presence.
const (
	TickFunc    = "tick"
	KeyDownFunc = "keyDown"
	KeyUpFunc   = "keyUp"
)

// ScriptHost creates one scripting context per scripted object.
type ScriptHost interface {
	// NewContext evaluates o's script against w. A context may be returned together with
	// an evaluation error; its callbacks stay usable.
	NewContext(o *model.Object, w World) (ScriptContext, error)
}

// ScriptContext is one live scripting runtime bound to one object.
type ScriptContext interface {
	Has(fn string) bool
	// Call invokes fn. Errors have already been reported to the log sink; the return value
	// is for diagnostics only.
	Call(fn string, arg any) error
	Close()
}

// World is what a scripting context can see of the running scene.
type World interface {
	Root() *model.Object
	Entity(id uuid.UUID) Entity
	// FindObject searches the scene tree by name.
	FindObject(name string) *model.Object
	// Camera is the entity of the first top-level Camera object, or nil.
	Camera() Entity
	Resolution() mgl32.Vec2
	// TrackClone registers a clone created while playing; it is removed on Stop.
	TrackClone(e Entity)
}
