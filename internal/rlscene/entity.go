package rlscene

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"

	"scene-engine/internal/data"
	"scene-engine/internal/engine"
	"scene-engine/internal/model"
	"scene-engine/internal/physics"
)

// Entity is the raylib-side state of one object. Geometry is drawn from the Procedural
// shape or, for Geometry objects, from the resolved library model.
type Entity struct {
	engine.EntityBase
	scene  *Scene
	parent *Entity

	position rl.Vector3
	rotation rl.Quaternion
	scale    rl.Vector3
	target   rl.Vector3
	fovy     float32
	active   bool
	removed  bool

	material engine.Material
	texture  string // resolved texture path
	model    string // resolved model path
	def      physics.Def
	body     *physics.Body
}

func newEntity(s *Scene, o *model.Object, parent *Entity) *Entity {
	return &Entity{
		EntityBase: engine.EntityBase{Obj: o},
		scene:      s,
		parent:     parent,
		rotation:   rl.QuaternionIdentity(),
		scale:      rl.NewVector3(1, 1, 1),
		fovy:       60,
		active:     true,
		material:   engine.ReadMaterial(nil),
	}
}

func (e *Entity) isCamera() bool { return e.Obj.Type == model.Camera }

func (e *Entity) Position() mgl32.Vec3 { return fromVec3(e.position) }

func (e *Entity) SetPosition(p mgl32.Vec3) {
	if e.isCamera() {
		offset := rl.Vector3Subtract(e.target, e.position)
		e.target = rl.Vector3Add(vec3(p), offset)
	}
	e.position = vec3(p)
	if e.body != nil {
		e.body.Position = array(e.position)
	}
}

func (e *Entity) Orientation() mgl32.Quat { return fromQuat(e.rotation) }

// SetOrientation turns a camera about its position, keeping the distance to its target.
func (e *Entity) SetOrientation(q mgl32.Quat) {
	q = engine.SafeQuat(q)
	e.rotation = quat(q)
	if e.isCamera() {
		dist := rl.Vector3Length(rl.Vector3Subtract(e.target, e.position))
		if dist == 0 {
			dist = 1
		}
		e.target = rl.Vector3Add(e.position, rl.Vector3Scale(vec3(engine.Direction(q)), dist))
	}
}

func (e *Entity) SetEulerAngles(deg mgl32.Vec3) { e.SetOrientation(engine.EulerQuat(deg)) }

func (e *Entity) Transform() mgl32.Mat4 { return fromMatrix(trs(e.position, e.rotation, e.scale)) }

func (e *Entity) SetTransform(m mgl32.Mat4) {
	pos, q, scale := engine.Decompose(m)
	e.SetPosition(pos)
	e.SetOrientation(q)
	e.scale = vec3(scale)
	e.resize()
}

func (e *Entity) IsActive() bool { return e.active }

// SetActive hides the entity and takes its body out of the simulation.
func (e *Entity) SetActive(active bool) {
	if e.active == active {
		return
	}
	e.active = active
	if e.body == nil {
		return
	}
	if active {
		e.scene.attach(e)
	} else {
		e.scene.detach(e)
	}
}

func (e *Entity) Direction() mgl32.Vec3 {
	return fromVec3(rl.Vector3RotateByQuaternion(rl.NewVector3(0, 0, -1), e.rotation))
}

// LookAt is a camera's target. Other entities report the point one unit ahead.
func (e *Entity) LookAt() mgl32.Vec3 {
	if e.isCamera() {
		return fromVec3(e.target)
	}
	return e.Position().Add(e.Direction())
}

func (e *Entity) SetLookAt(t mgl32.Vec3) {
	if e.isCamera() {
		e.target = vec3(t)
	}
	e.rotation = quat(engine.LookRotation(e.Position(), t))
}

func (e *Entity) Resolution() mgl32.Vec2 { return e.scene.Viewport() }

// AddForce applies direction at the body's center at the next step. The application point
// is ignored; bodies do not rotate.
func (e *Entity) AddForce(direction, _ mgl32.Vec3) {
	if e.body != nil {
		e.body.AddForce(direction)
	}
}

func (e *Entity) ApplyImpulse(direction, _ mgl32.Vec3) {
	if e.body != nil {
		e.body.ApplyImpulse(direction)
	}
}

// Clone copies the entity onto a cloned object, with its own body when the original
// has one.
func (e *Entity) Clone() (engine.Entity, error) {
	o, err := e.Obj.Clone()
	if err != nil {
		return nil, err
	}
	c := newEntity(e.scene, o, e.parent)
	c.position, c.rotation, c.scale, c.target, c.fovy = e.position, e.rotation, e.scale, e.target, e.fovy
	c.active = e.active
	c.material, c.texture, c.model = e.material, e.texture, e.model
	c.def = e.def
	if e.body != nil {
		c.rebuildBody()
		c.body.Velocity = e.body.Velocity
	}
	return c, nil
}

// UpdateFromModel re-reads the named data groups (all when none are named).
func (e *Entity) UpdateFromModel(groups ...string) {
	o := e.Obj
	if len(groups) == 0 {
		// A full reload also undoes SetActive from play mode; rebuildBody re-attaches.
		e.active = true
	}
	switch o.Type {
	case model.SceneType:
		if engine.Wants(groups, data.SettingsGroup) {
			e.scene.applySettings(o.Group(data.SettingsGroup))
		}
		return
	case model.Camera:
		if engine.Wants(groups, data.CameraGroup) {
			cam := engine.ReadCamera(o.Group(data.CameraGroup))
			e.position, e.target, e.fovy = vec3(cam.Position), vec3(cam.LookAt), cam.FOV
			e.rotation = quat(engine.LookRotation(cam.Position, cam.LookAt))
		}
		return
	}

	if engine.Wants(groups, data.TransformGroup) {
		t := engine.ReadTransform(o.Group(data.TransformGroup))
		e.position, e.rotation, e.scale = vec3(t.Position), quat(t.Quat()), vec3(t.Scale)
	}
	if o.Type == model.Audio {
		return
	}
	if engine.Wants(groups, data.MaterialGroup) {
		e.material = engine.ReadMaterial(o.Group(data.MaterialGroup))
		e.texture = e.scene.resolve(o, e.material.Texture)
	}
	if o.Type == model.Geometry && len(groups) == 0 {
		e.model = e.scene.resolve(o, o.AssetName)
	}
	if engine.Wants(groups, data.PhysicsGroup) {
		e.def = physics.ReadDef(o.Group(data.PhysicsGroup))
		e.rebuildBody()
	} else if engine.Wants(groups, data.TransformGroup) || engine.Wants(groups, data.ProceduralGroup) {
		e.resize()
		if e.body != nil {
			e.body.Position = array(e.position)
		}
	}
}

// extent is the world-space size of the entity's box.
func (e *Entity) extent() [3]float32 {
	ext := engine.ShapeExtent(e.Obj)
	return [3]float32{ext[0] * e.scale.X, ext[1] * e.scale.Y, ext[2] * e.scale.Z}
}

func (e *Entity) resize() {
	if e.body != nil {
		e.body.Scale = e.extent()
	}
}

func (e *Entity) rebuildBody() {
	if e.body != nil {
		e.scene.detach(e)
	}
	e.body = e.def.NewBody(array(e.position), e.extent())
	if e.body != nil && e.active && !e.removed {
		e.scene.attach(e)
	}
}

// Remove detaches the entity from the simulation and the draw list.
func (e *Entity) Remove() {
	e.removed = true
	if e.body != nil {
		e.scene.detach(e)
	}
}
