package softscene

import (
	"github.com/go-gl/mathgl/mgl32"

	"scene-engine/internal/data"
	"scene-engine/internal/engine"
	"scene-engine/internal/model"
	"scene-engine/internal/physics"
)

// Entity keeps its state in mgl32 values.
type Entity struct {
	engine.EntityBase
	scene  *Scene
	parent *Entity

	pos     mgl32.Vec3
	rot     mgl32.Quat
	scale   mgl32.Vec3
	target  mgl32.Vec3
	fov     float32
	active  bool
	removed bool

	material engine.Material
	texture  string
	model    string
	def      physics.Def
	body     *physics.Body
}

func newEntity(s *Scene, o *model.Object, parent *Entity) *Entity {
	return &Entity{
		EntityBase: engine.EntityBase{Obj: o},
		scene:      s,
		parent:     parent,
		rot:        mgl32.QuatIdent(),
		scale:      mgl32.Vec3{1, 1, 1},
		fov:        60,
		active:     true,
		material:   engine.ReadMaterial(nil),
	}
}

func (e *Entity) isCamera() bool { return e.Obj.Type == model.Camera }

func (e *Entity) Position() mgl32.Vec3 { return e.pos }

func (e *Entity) SetPosition(p mgl32.Vec3) {
	if e.isCamera() {
		e.target = p.Add(e.target.Sub(e.pos))
	}
	e.pos = p
	if e.body != nil {
		e.body.Position = p
	}
}

func (e *Entity) Orientation() mgl32.Quat { return e.rot }

func (e *Entity) SetOrientation(q mgl32.Quat) {
	e.rot = engine.SafeQuat(q)
	if e.isCamera() {
		dist := e.target.Sub(e.pos).Len()
		if dist == 0 {
			dist = 1
		}
		e.target = e.pos.Add(engine.Direction(e.rot).Mul(dist))
	}
}

func (e *Entity) SetEulerAngles(deg mgl32.Vec3) { e.SetOrientation(engine.EulerQuat(deg)) }

func (e *Entity) Transform() mgl32.Mat4 { return engine.Compose(e.pos, e.rot, e.scale) }

func (e *Entity) SetTransform(m mgl32.Mat4) {
	pos, q, scale := engine.Decompose(m)
	e.SetPosition(pos)
	e.SetOrientation(q)
	e.scale = scale
	if e.body != nil {
		e.body.Scale = e.extent()
	}
}

func (e *Entity) IsActive() bool { return e.active }

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

func (e *Entity) Direction() mgl32.Vec3 { return engine.Direction(e.rot) }

func (e *Entity) LookAt() mgl32.Vec3 {
	if e.isCamera() {
		return e.target
	}
	return e.pos.Add(e.Direction())
}

func (e *Entity) SetLookAt(t mgl32.Vec3) {
	if e.isCamera() {
		e.target = t
	}
	e.rot = engine.LookRotation(e.pos, t)
}

func (e *Entity) Resolution() mgl32.Vec2 { return e.scene.Viewport() }

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

func (e *Entity) Clone() (engine.Entity, error) {
	o, err := e.Obj.Clone()
	if err != nil {
		return nil, err
	}
	c := newEntity(e.scene, o, e.parent)
	c.pos, c.rot, c.scale, c.target, c.fov, c.active = e.pos, e.rot, e.scale, e.target, e.fov, e.active
	c.material, c.texture, c.model, c.def = e.material, e.texture, e.model, e.def
	if e.body != nil {
		c.rebuildBody()
		c.body.Velocity = e.body.Velocity
	}
	return c, nil
}

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
			e.pos, e.target, e.fov = cam.Position, cam.LookAt, cam.FOV
			e.rot = engine.LookRotation(cam.Position, cam.LookAt)
		}
		return
	}
	if engine.Wants(groups, data.TransformGroup) {
		t := engine.ReadTransform(o.Group(data.TransformGroup))
		e.pos, e.rot, e.scale = t.Position, t.Quat(), t.Scale
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
	switch {
	case engine.Wants(groups, data.PhysicsGroup):
		e.def = physics.ReadDef(o.Group(data.PhysicsGroup))
		e.rebuildBody()
	case e.body != nil && (engine.Wants(groups, data.TransformGroup) || engine.Wants(groups, data.ProceduralGroup)):
		e.body.Position = e.pos
		e.body.Scale = e.extent()
	}
}

func (e *Entity) extent() [3]float32 {
	ext := engine.ShapeExtent(e.Obj)
	return [3]float32{ext[0] * e.scale[0], ext[1] * e.scale[1], ext[2] * e.scale[2]}
}

func (e *Entity) rebuildBody() {
	if e.body != nil {
		e.scene.detach(e)
	}
	e.body = e.def.NewBody(e.pos, e.extent())
	if e.body != nil && e.active && !e.removed {
		e.scene.attach(e)
	}
}

func (e *Entity) Remove() {
	e.removed = true
	if e.body != nil {
		e.scene.detach(e)
	}
}
