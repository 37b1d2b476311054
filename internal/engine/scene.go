package engine

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"scene-engine/internal/model"
)

// Backend names a rendering and physics implementation.
type Backend string

const (
	Raylib Backend = "raylib"
	Soft   Backend = "soft"
)

// Backends lists the selectable backends.
var Backends = []Backend{Raylib, Soft}

// ParseBackend maps a name to a Backend.
func ParseBackend(s string) (Backend, error) {
	for _, b := range Backends {
		if string(b) == s {
			return b, nil
		}
	}
	return "", fmt.Errorf("unknown backend %q (want raylib or soft)", s)
}

// Scene is the runtime counterpart of a scene root: it owns the entity of every object
// in the tree and drives the Stopped/Playing state machine.
type Scene interface {
	Backend() Backend
	Root() *model.Object
	Entity(id uuid.UUID) Entity
	// AddObject creates the entity for an object already linked into the tree. It is valid
	// in both states and calls UpdateFromModel once.
	AddObject(o *model.Object) (Entity, error)
	RemoveObject(o *model.Object)

	Play()
	Stop()
	Tick(t float64)
	KeyDown(key string)
	KeyUp(key string)
	IsPlaying() bool

	// Destroy stops the scene and releases every backend resource.
	Destroy()
}

// Log is the user-visible log sink.
type Log interface {
	Log(line string)
	Clear()
}

// Assets resolves a library asset name to a filesystem path.
type Assets interface {
	Resolve(name string) (string, error)
}

// Options are shared by every backend scene.
type Options struct {
	Scripts    ScriptHost
	Log        Log
	Assets     Assets
	Diag       logrus.FieldLogger
	Resolution mgl32.Vec2
}

func (o Options) withDefaults() Options {
	if o.Log == nil {
		o.Log = nopLog{}
	}
	if o.Diag == nil {
		o.Diag = logrus.StandardLogger()
	}
	if o.Resolution == (mgl32.Vec2{}) {
		o.Resolution = mgl32.Vec2{1280, 720}
	}
	return o
}

type nopLog struct{}

func (nopLog) Log(string) {}
func (nopLog) Clear() {}
