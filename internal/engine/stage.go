package engine

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"scene-engine/internal/model"
)

// maxStep caps the physics step so a stalled frame does not tunnel bodies.
const maxStep = 0.1

// Builder is the backend half of a scene: it creates entities and owns the physics world.
type Builder interface {
	// NewEntity creates the backend resource for o and attaches it under parent (nil for
	// the scene root).
	NewEntity(o *model.Object, parent Entity) (Entity, error)
	Viewport() mgl32.Vec2
	StepPhysics(dt float32)
	ResetPhysics()
}

// Stage is the backend-independent half of a Scene. Backends embed it and supply a
// Builder; Stage then provides every Scene operation except Backend.
type Stage struct {
	root    *model.Object
	builder Builder
	opts    Options
	diag    logrus.FieldLogger

	entities map[uuid.UUID]Entity
	clones   []Entity

	playing  bool
	contexts []ScriptContext
	ticks    []ScriptContext
	downs    []ScriptContext
	ups      []ScriptContext
	lastTick float64
	ticked   bool
}

// NewStage binds a stage to root. Call Load to create the entities.
func NewStage(root *model.Object, b Builder, opts Options) *Stage {
	opts = opts.withDefaults()
	return &Stage{
		root:     root,
		builder:  b,
		opts:     opts,
		diag:     opts.Diag.WithField("scene", root.Name),
		entities: make(map[uuid.UUID]Entity),
	}
}

// Load creates an entity for every object of the tree in document order, so parents
// exist before their children. Objects that fail are logged and skipped.
func (s *Stage) Load() {
	for _, o := range model.Collect(s.root) {
		if _, err := s.AddObject(o); err != nil {
			s.diag.WithError(err).WithField("object", o.Name).Warn("create entity")
		}
	}
}

// Options returns the options the stage was created with, defaults filled in.
func (s *Stage) Options() Options { return s.opts }

// Diag is the diagnostics logger scoped to this scene.
func (s *Stage) Diag() logrus.FieldLogger { return s.diag }

func (s *Stage) Root() *model.Object { return s.root }

func (s *Stage) Entity(id uuid.UUID) Entity { return s.entities[id] }

// AddObject creates (or returns the existing) entity for o.
func (s *Stage) AddObject(o *model.Object) (Entity, error) {
	if e, ok := s.entities[o.ID]; ok {
		return e, nil
	}
	var parent Entity
	if o != s.root && o.ParentID() != uuid.Nil {
		parent = s.entities[o.ParentID()]
	}
	e, err := s.builder.NewEntity(o, parent)
	if err != nil {
		return nil, fmt.Errorf("add %s: %w", o.Name, err)
	}
	s.entities[o.ID] = e
	e.UpdateFromModel()
	return e, nil
}

// RemoveObject removes the entities of o and its subtree.
func (s *Stage) RemoveObject(o *model.Object) {
	for _, n := range model.Collect(o) {
		if e, ok := s.entities[n.ID]; ok {
			e.Remove()
			delete(s.entities, n.ID)
		}
	}
}

// FindObject returns the first object named name in the scene tree.
func (s *Stage) FindObject(name string) *model.Object {
	return model.FindByName(s.root, name)
}

// Camera returns the entity of the first top-level Camera object, or nil.
func (s *Stage) Camera() Entity {
	for _, c := range s.root.Children {
		if c.Type == model.Camera {
			return s.entities[c.ID]
		}
	}
	return nil
}

func (s *Stage) Resolution() mgl32.Vec2 { return s.builder.Viewport() }

// TrackClone registers a runtime clone.
func (s *Stage) TrackClone(e Entity) {
	s.entities[e.Object().ID] = e
	s.clones = append(s.clones, e)
}

// Clones returns the clones alive in the current session.
func (s *Stage) Clones() []Entity { return s.clones }

func (s *Stage) IsPlaying() bool { return s.playing }

// Play clears the log, creates a scripting context for every scripted object in document
// order and registers its callbacks by presence.
func (s *Stage) Play() {
	if s.playing {
		return
	}
	s.opts.Log.Clear()
	s.contexts, s.ticks, s.downs, s.ups = nil, nil, nil, nil
	s.ticked = false
	s.playing = true
	if s.opts.Scripts == nil {
		return
	}
	for _, o := range model.Collect(s.root) {
		if !o.HasScript() {
			continue
		}
		if s.entities[o.ID] == nil {
			s.diag.WithField("object", o.Name).Warn("scripted object has no entity")
			continue
		}
		ctx, err := s.opts.Scripts.NewContext(o, s)
		if err != nil {
			s.diag.WithError(err).WithField("object", o.Name).Debug("script evaluation")
		}
		if ctx == nil {
			continue
		}
		s.contexts = append(s.contexts, ctx)
		if ctx.Has(TickFunc) {
			s.ticks = append(s.ticks, ctx)
		}
		if ctx.Has(KeyDownFunc) {
			s.downs = append(s.downs, ctx)
		}
		if ctx.Has(KeyUpFunc) {
			s.ups = append(s.ups, ctx)
		}
	}
	s.diag.WithFields(logrus.Fields{
		"contexts": len(s.contexts),
		"tick":     len(s.ticks),
	}).Debug("play")
}

// Stop discards every scripting context, removes clones and restores every entity from
// its data groups.
func (s *Stage) Stop() {
	if !s.playing {
		return
	}
	for _, ctx := range s.contexts {
		ctx.Close()
	}
	s.contexts, s.ticks, s.downs, s.ups = nil, nil, nil, nil
	for _, c := range s.clones {
		c.Remove()
		delete(s.entities, c.Object().ID)
	}
	s.clones = nil
	s.playing = false
	s.builder.ResetPhysics()
	for _, o := range model.Collect(s.root) {
		if e := s.entities[o.ID]; e != nil {
			e.UpdateFromModel()
		}
	}
	s.diag.Debug("stop")
}

// Tick runs every registered tick callback with t in seconds, then steps physics by the
// time since the previous tick.
func (s *Stage) Tick(t float64) {
	if !s.playing {
		return
	}
	dispatch(s.ticks, TickFunc, t)
	var dt float64
	if s.ticked {
		dt = min(max(t-s.lastTick, 0), maxStep)
	}
	s.lastTick, s.ticked = t, true
	s.builder.StepPhysics(float32(dt))
}

func (s *Stage) KeyDown(key string) {
	if s.playing {
		dispatch(s.downs, KeyDownFunc, key)
	}
}

func (s *Stage) KeyUp(key string) {
	if s.playing {
		dispatch(s.ups, KeyUpFunc, key)
	}
}

// Errors are reported by the context itself; one failing callback never blocks the rest.
func dispatch(list []ScriptContext, fn string, arg any) {
	for _, ctx := range list {
		_ = ctx.Call(fn, arg)
	}
}

// Destroy stops the scene and removes every entity.
func (s *Stage) Destroy() {
	s.Stop()
	for _, e := range s.entities {
		e.Remove()
	}
	clear(s.entities)
}
