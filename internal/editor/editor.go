// Package editor owns the project being edited and the backend scene built from the
// selected scene root. The backend can be swapped at any time without touching the model.
package editor

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"scene-engine/internal/engine"
	"scene-engine/internal/model"
	"scene-engine/internal/rlscene"
	"scene-engine/internal/softscene"
)

// Factory builds a backend scene for a scene root.
type Factory func(root *model.Object, opts engine.Options) engine.Scene

// Factories returns the built-in backends.
func Factories() map[engine.Backend]Factory {
	return map[engine.Backend]Factory{
		engine.Raylib: func(root *model.Object, opts engine.Options) engine.Scene {
			return rlscene.New(root, opts)
		},
		engine.Soft: func(root *model.Object, opts engine.Options) engine.Scene {
			return softscene.New(root, opts)
		},
	}
}

// Editor is the engine selector. It is not safe for concurrent use; drive it from the
// UI loop.
type Editor struct {
	project   *model.Project
	root      *model.Object
	selected  *model.Object
	scene     engine.Scene
	backend   engine.Backend
	factories map[engine.Backend]Factory
	opts      engine.Options
	diag      logrus.FieldLogger
}

// Option configures an Editor.
type Option func(*Editor)

// WithBackend selects the initial backend.
func WithBackend(b engine.Backend) Option {
	return func(e *Editor) { e.backend = b }
}

// WithFactory registers or replaces the factory for b.
func WithFactory(b engine.Backend, f Factory) Option {
	return func(e *Editor) { e.factories[b] = f }
}

// New returns an editor holding a fresh default project. opts are passed to every
// backend scene it builds.
func New(opts engine.Options, options ...Option) (*Editor, error) {
	e := &Editor{
		backend:   engine.Raylib,
		factories: Factories(),
		opts:      opts,
		diag:      opts.Diag,
	}
	if e.diag == nil {
		e.diag = logrus.StandardLogger()
	}
	for _, o := range options {
		o(e)
	}
	if _, ok := e.factories[e.backend]; !ok {
		return nil, fmt.Errorf("unknown backend %q", e.backend)
	}
	e.NewProject()
	return e, nil
}

func (e *Editor) Project() *model.Project { return e.project }

// SceneRoot is the scene root the active backend scene was built from.
func (e *Editor) SceneRoot() *model.Object { return e.root }

// Scene is the active backend scene, nil when no scene is selected.
func (e *Editor) Scene() engine.Scene { return e.scene }

func (e *Editor) Backend() engine.Backend { return e.backend }

func (e *Editor) Selected() *model.Object { return e.selected }

func (e *Editor) Select(o *model.Object) { e.selected = o }

func (e *Editor) log(line string) {
	if e.opts.Log != nil {
		e.opts.Log.Log(line)
	}
}

// NewProject replaces the project with the default one and selects its start scene.
func (e *Editor) NewProject() {
	e.project = model.NewProject()
	e.SetScene(e.project.Scenes[0], true)
}

// SetScene destroys the active backend scene and builds a new one for root. A nil root
// leaves no scene active.
func (e *Editor) SetScene(root *model.Object, selectInUI bool) {
	if e.scene != nil {
		e.scene.Destroy()
		e.scene = nil
	}
	e.root = root
	if selectInUI {
		e.selected = root
	}
	if root == nil {
		return
	}
	e.scene = e.factories[e.backend](root, e.opts)
	e.diag.WithFields(logrus.Fields{
		"scene":   root.Name,
		"backend": e.backend,
	}).Debug("scene built")
}

// SetBackend switches to backend b. The active scene is stopped and destroyed, then
// rebuilt from the same scene root; the model is not modified.
func (e *Editor) SetBackend(b engine.Backend) error {
	if _, ok := e.factories[b]; !ok {
		return fmt.Errorf("unknown backend %q", b)
	}
	if b == e.backend {
		return nil
	}
	e.backend = b
	e.SetScene(e.root, false)
	return nil
}

func (e *Editor) Play() {
	if e.scene != nil {
		e.scene.Play()
	}
}

func (e *Editor) Stop() {
	if e.scene != nil {
		e.scene.Stop()
	}
}

func (e *Editor) IsPlaying() bool { return e.scene != nil && e.scene.IsPlaying() }

func (e *Editor) Tick(t float64) {
	if e.scene != nil {
		e.scene.Tick(t)
	}
}

func (e *Editor) KeyDown(key string) {
	if e.scene != nil {
		e.scene.KeyDown(key)
	}
}

func (e *Editor) KeyUp(key string) {
	if e.scene != nil {
		e.scene.KeyUp(key)
	}
}

// AddObject links o under parent (a new scene when parent is nil) and, when it lands in
// the active scene, creates the entities of o and its subtree. The entity of o is
// returned, nil when o is not in the active scene.
func (e *Editor) AddObject(parent, o *model.Object) (engine.Entity, error) {
	if err := e.project.Add(parent, o); err != nil {
		return nil, err
	}
	if e.scene == nil || e.root == nil || o.SceneID() != e.root.ID {
		return nil, nil
	}
	for _, n := range model.Collect(o) {
		if _, err := e.scene.AddObject(n); err != nil {
			return nil, err
		}
	}
	return e.scene.Entity(o.ID), nil
}

// Remove unlinks o from the project and removes its entities. Removing the active scene
// root switches to the first remaining scene.
func (e *Editor) Remove(o *model.Object) bool {
	if !e.project.Remove(o) {
		return false
	}
	if o == e.root {
		var next *model.Object
		if len(e.project.Scenes) > 0 {
			next = e.project.Scenes[0]
		}
		e.SetScene(next, true)
		return true
	}
	if e.scene != nil {
		e.scene.RemoveObject(o)
	}
	if contains(o, e.selected) {
		e.selected = e.root
	}
	return true
}

func contains(root, o *model.Object) bool {
	found := false
	model.Walk(root, func(n *model.Object) bool {
		found = found || n == o
		return !found
	})
	return found
}

// Apply pushes edited data groups of o to its entity (all groups when none are named).
func (e *Editor) Apply(o *model.Object, groups ...string) {
	if e.scene == nil {
		return
	}
	if ent := e.scene.Entity(o.ID); ent != nil {
		ent.UpdateFromModel(groups...)
	}
}

// Open loads a project file and selects its first scene. On failure the current project
// stays loaded and the error is reported once.
func (e *Editor) Open(path string) error {
	p, err := model.LoadFile(path)
	if err == nil && len(p.Scenes) == 0 {
		err = fmt.Errorf("open %s: project has no scenes", path)
	}
	if err != nil {
		e.log(fmt.Sprintf("Failed to open %s: %v", path, err))
		e.diag.WithError(err).WithField("path", path).Error("open project")
		return err
	}
	e.project = p
	e.SetScene(p.Scenes[0], true)
	return nil
}

// Save writes the project file. Runtime state (clones, entity poses) is never saved.
func (e *Editor) Save(path string) error {
	if err := model.SaveFile(path, e.project); err != nil {
		e.log(fmt.Sprintf("Failed to save %s: %v", path, err))
		return err
	}
	return nil
}

// Close destroys the active scene.
func (e *Editor) Close() { e.SetScene(nil, false) }
