// Package enginetest provides an in-memory backend and a scripted host for tests of code
// that drives engine.Scene and engine.Entity.
package enginetest

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"scene-engine/internal/data"
	"scene-engine/internal/engine"
	"scene-engine/internal/model"
)

// Backend is the name reported by fake scenes.
const Backend engine.Backend = "fake"

// Scene is a backend scene that keeps entity state in plain fields.
type Scene struct {
	*engine.Stage

	Steps  []float32
	Resets int
}

// NewScene builds a fake scene for root and loads every object.
func NewScene(root *model.Object, opts engine.Options) *Scene {
	s := &Scene{}
	s.Stage = engine.NewStage(root, s, opts)
	s.Load()
	return s
}

func (s *Scene) Backend() engine.Backend { return Backend }

func (s *Scene) NewEntity(o *model.Object, parent engine.Entity) (engine.Entity, error) {
	e := &Entity{EntityBase: engine.EntityBase{Obj: o}, scene: s, Active: true, Scale: mgl32.Vec3{1, 1, 1}, Rotation: mgl32.QuatIdent()}
	if p, ok := parent.(*Entity); ok {
		e.Parent = p
	}
	return e, nil
}

func (s *Scene) Viewport() mgl32.Vec2 { return s.Options().Resolution }

func (s *Scene) StepPhysics(dt float32) { s.Steps = append(s.Steps, dt) }

func (s *Scene) ResetPhysics() { s.Resets++ }

// Entity records every call a script or the stage makes.
type Entity struct {
	engine.EntityBase
	scene *Scene

	Parent   *Entity
	Pos      mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
	Target   mgl32.Vec3
	Active   bool
	Forces   []mgl32.Vec3
	Impulses []mgl32.Vec3
	Updates  int
	Removed  bool
}

func (e *Entity) Position() mgl32.Vec3 { return e.Pos }
func (e *Entity) SetPosition(p mgl32.Vec3) { e.Pos = p }
func (e *Entity) Orientation() mgl32.Quat { return e.Rotation }
func (e *Entity) SetOrientation(q mgl32.Quat) { e.Rotation = engine.SafeQuat(q) }

func (e *Entity) SetEulerAngles(deg mgl32.Vec3) { e.Rotation = engine.EulerQuat(deg) }

func (e *Entity) Transform() mgl32.Mat4 { return engine.Compose(e.Pos, e.Rotation, e.Scale) }

func (e *Entity) SetTransform(m mgl32.Mat4) { e.Pos, e.Rotation, e.Scale = engine.Decompose(m) }

func (e *Entity) IsActive() bool { return e.Active }
func (e *Entity) SetActive(active bool) { e.Active = active }
func (e *Entity) Direction() mgl32.Vec3 { return engine.Direction(e.Rotation) }
func (e *Entity) LookAt() mgl32.Vec3 { return e.Target }
func (e *Entity) SetLookAt(t mgl32.Vec3) { e.Target = t }
func (e *Entity) Resolution() mgl32.Vec2 { return e.scene.Viewport() }

func (e *Entity) AddForce(direction, _ mgl32.Vec3) { e.Forces = append(e.Forces, direction) }

func (e *Entity) ApplyImpulse(direction, _ mgl32.Vec3) {
	e.Impulses = append(e.Impulses, direction)
}

func (e *Entity) Clone() (engine.Entity, error) {
	o, err := e.Obj.Clone()
	if err != nil {
		return nil, err
	}
	c := &Entity{EntityBase: engine.EntityBase{Obj: o}, scene: e.scene, Parent: e.Parent}
	c.Pos, c.Rotation, c.Scale, c.Active, c.Target = e.Pos, e.Rotation, e.Scale, e.Active, e.Target
	return c, nil
}

// UpdateFromModel restores position, rotation and scale (or the camera pose) from the
// data groups. A full reload also makes the entity active again.
func (e *Entity) UpdateFromModel(groups ...string) {
	e.Updates++
	if len(groups) == 0 {
		e.Active = true
	}
	if e.Obj.Type == model.Camera {
		if engine.Wants(groups, data.CameraGroup) {
			cam := engine.ReadCamera(e.Obj.Group(data.CameraGroup))
			e.Pos, e.Target = cam.Position, cam.LookAt
			e.Rotation = engine.LookRotation(cam.Position, cam.LookAt)
		}
		return
	}
	if engine.Wants(groups, data.TransformGroup) {
		t := engine.ReadTransform(e.Obj.Group(data.TransformGroup))
		e.Pos, e.Rotation, e.Scale = t.Position, t.Quat(), t.Scale
	}
}

func (e *Entity) Remove() { e.Removed = true }

// Func is a Go stand-in for a script callback.
type Func func(w engine.World, self engine.Entity, arg any) error

// Script is a fake object script: a set of callbacks and an optional evaluation error.
type Script struct {
	Funcs   map[string]Func
	EvalErr error
}

// Host is an engine.ScriptHost whose scripts are Go functions keyed by object name.
// Callback errors are written to Log as "Error in <name>: <message>".
type Host struct {
	Log     engine.Log
	Scripts map[string]Script

	Calls  []string
	Closed int
}

func (h *Host) NewContext(o *model.Object, w engine.World) (engine.ScriptContext, error) {
	sc, ok := h.Scripts[o.Name]
	if !ok {
		return nil, errors.New("no script registered for " + o.Name)
	}
	ctx := &Context{host: h, obj: o, world: w, script: sc}
	if sc.EvalErr != nil {
		ctx.report(sc.EvalErr)
		return ctx, sc.EvalErr
	}
	return ctx, nil
}

// Context is one fake scripting context.
type Context struct {
	host   *Host
	obj    *model.Object
	world  engine.World
	script Script
}

func (c *Context) Has(fn string) bool {
	_, ok := c.script.Funcs[fn]
	return ok
}

func (c *Context) Call(fn string, arg any) error {
	f, ok := c.script.Funcs[fn]
	if !ok {
		return nil
	}
	c.host.Calls = append(c.host.Calls, fmt.Sprintf("%s.%s(%v)", c.obj.Name, fn, arg))
	if err := f(c.world, c.world.Entity(c.obj.ID), arg); err != nil {
		c.report(err)
		return err
	}
	return nil
}

func (c *Context) Close() { c.host.Closed++ }

func (c *Context) report(err error) {
	if c.host.Log != nil {
		c.host.Log.Log(fmt.Sprintf("Error in %s: %v", c.obj.Name, err))
	}
}
