package rlscene

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hack-pad/hackpadfs"
	"github.com/hack-pad/hackpadfs/mem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scene-engine/internal/assets"
	"scene-engine/internal/data"
	"scene-engine/internal/engine"
	"scene-engine/internal/engine/enginetest"
	"scene-engine/internal/logger"
	"scene-engine/internal/model"
)

type fixture struct {
	project *model.Project
	root    *model.Object
	crate   *model.Object
	log     *logger.Logger
	host    *enginetest.Host
}

// newFixture returns the default project plus a dynamic Crate at (0, 5, 0).
func newFixture(t *testing.T) *fixture {
	t.Helper()
	p := model.NewProject()
	root := p.Scenes[0]
	crate := model.NewProcedural(model.Cube, "Crate")
	require.NoError(t, p.Add(root, crate))
	crate.Group(data.TransformGroup).SetFloat3("Position", data.Vec3{0, 5, 0})
	crate.Group(data.PhysicsGroup).SetInt("Type", 2)
	log := logger.New()
	return &fixture{
		project: p,
		root:    root,
		crate:   crate,
		log:     log,
		host:    &enginetest.Host{Log: log, Scripts: map[string]enginetest.Script{}},
	}
}

func (f *fixture) scene(opts ...func(*engine.Options)) *Scene {
	o := engine.Options{Scripts: f.host, Log: f.log, Resolution: mgl32.Vec2{640, 480}}
	for _, fn := range opts {
		fn(&o)
	}
	return New(f.root, o)
}

func (f *fixture) entity(s *Scene, o *model.Object) *Entity {
	return s.Entity(o.ID).(*Entity)
}

func TestLoadWithoutWindow(t *testing.T) {
	f := newFixture(t)
	s := f.scene()
	assert.Equal(t, engine.Raylib, s.Backend())
	assert.Equal(t, mgl32.Vec2{640, 480}, s.Viewport())
	for _, o := range model.Collect(f.root) {
		assert.NotNil(t, s.Entity(o.ID), o.Name)
	}
	assert.Equal(t, mgl32.Vec3{0, 5, 0}, f.entity(s, f.crate).Position())
	assert.Len(t, s.world.Bodies, 1)

	cam := s.Camera()
	require.NotNil(t, cam)
	assert.Equal(t, mgl32.Vec3{0, 0, 3}, cam.Position())
	assert.InDelta(t, -1, cam.Direction()[2], 1e-5)
}

func TestDynamicBodyFallsAndStopRestores(t *testing.T) {
	f := newFixture(t)
	s := f.scene()
	s.Play()
	s.Tick(0)
	s.Tick(0.1)
	s.Tick(0.2)
	e := f.entity(s, f.crate)
	assert.Less(t, e.Position()[1], float32(5))

	s.Stop()
	assert.Equal(t, mgl32.Vec3{0, 5, 0}, e.Position())
	assert.Zero(t, s.world.Time)
	require.Len(t, s.world.Bodies, 1)
	assert.Equal(t, [3]float32{}, s.world.Bodies[0].Velocity)
	assert.Equal(t, [3]float32{0, 5, 0}, s.world.Bodies[0].Position)
}

func TestScriptImpulseMovesBody(t *testing.T) {
	f := newFixture(t)
	f.crate.Script = "impulse"
	f.host.Scripts["Crate"] = enginetest.Script{Funcs: map[string]enginetest.Func{
		engine.KeyDownFunc: func(_ engine.World, self engine.Entity, _ any) error {
			self.ApplyImpulse(mgl32.Vec3{2, 0, 0}, mgl32.Vec3{})
			return nil
		},
	}}
	s := f.scene()
	s.Play()
	s.KeyDown("Space")
	assert.Equal(t, float32(2), f.entity(s, f.crate).body.Velocity[0])
}

func TestCloneHasOwnBody(t *testing.T) {
	f := newFixture(t)
	s := f.scene()
	s.Play()
	orig := f.entity(s, f.crate)
	c, err := orig.Clone()
	require.NoError(t, err)
	s.TrackClone(c)
	require.Len(t, s.world.Bodies, 2)

	c.SetPosition(mgl32.Vec3{3, 0, 0})
	assert.Equal(t, mgl32.Vec3{0, 5, 0}, orig.Position())
	assert.NotEqual(t, orig.Object().ID, c.Object().ID)

	s.Stop()
	assert.Len(t, s.world.Bodies, 1)
	assert.Nil(t, s.Entity(c.Object().ID))
}

func TestSetActiveDetachesBody(t *testing.T) {
	f := newFixture(t)
	s := f.scene()
	e := f.entity(s, f.crate)
	e.SetActive(false)
	assert.Empty(t, s.world.Bodies)
	e.SetActive(true)
	assert.Len(t, s.world.Bodies, 1)
}

func TestStopReactivatesScriptedEntity(t *testing.T) {
	f := newFixture(t)
	f.crate.Script = "hide"
	f.host.Scripts["Crate"] = enginetest.Script{Funcs: map[string]enginetest.Func{
		engine.TickFunc: func(_ engine.World, self engine.Entity, _ any) error {
			self.SetActive(false)
			return nil
		},
	}}
	s := f.scene()
	e := f.entity(s, f.crate)
	s.Play()
	s.Tick(0)
	require.False(t, e.IsActive())
	require.Empty(t, s.world.Bodies)

	s.Stop()
	assert.True(t, e.IsActive())
	require.Len(t, s.world.Bodies, 1)
	assert.Same(t, e.body, s.world.Bodies[0])
	assert.Same(t, e, s.bodies[e.body])
	assert.Equal(t, [3]float32{0, 5, 0}, e.body.Position)
}

func TestUpdateFromModelIdempotent(t *testing.T) {
	f := newFixture(t)
	f.crate.Group(data.TransformGroup).SetFloat3("Rotation", data.Vec3{0, 45, 0})
	f.crate.Group(data.TransformGroup).SetFloat3("Scale", data.Vec3{2, 1, 1})
	s := f.scene()
	e := f.entity(s, f.crate)
	for _, groups := range [][]string{nil, {data.TransformGroup}, {data.PhysicsGroup}, {data.MaterialGroup}} {
		e.UpdateFromModel(groups...)
		pos, rot, scale, mat, n := e.Position(), e.Orientation(), e.scale, e.material, len(s.world.Bodies)
		e.UpdateFromModel(groups...)
		assert.Equal(t, pos, e.Position(), "%v", groups)
		assert.Equal(t, rot, e.Orientation(), "%v", groups)
		assert.Equal(t, scale, e.scale, "%v", groups)
		assert.Equal(t, mat, e.material, "%v", groups)
		assert.Equal(t, n, len(s.world.Bodies), "%v", groups)
		assert.Equal(t, 1, n, "%v", groups)
	}
}

func TestUpdateSingleGroup(t *testing.T) {
	f := newFixture(t)
	s := f.scene()
	f.crate.Group(data.MaterialGroup).SetFloat4("Color", data.Vec4{1, 0, 0, 1})
	f.crate.Group(data.TransformGroup).SetFloat3("Position", data.Vec3{9, 9, 9})

	e := f.entity(s, f.crate)
	e.UpdateFromModel(data.MaterialGroup)
	assert.Equal(t, mgl32.Vec4{1, 0, 0, 1}, e.material.Color)
	assert.Equal(t, mgl32.Vec3{0, 5, 0}, e.Position())

	f.crate.Group(data.PhysicsGroup).SetInt("Type", 0)
	e.UpdateFromModel(data.PhysicsGroup)
	assert.Nil(t, e.body)
	assert.Empty(t, s.world.Bodies)
}

func TestTransformRoundTrip(t *testing.T) {
	f := newFixture(t)
	e := f.entity(f.scene(), f.crate)
	m := mgl32.Translate3D(1, 2, 3).Mul4(mgl32.HomogRotate3DY(mgl32.DegToRad(90)))
	e.SetTransform(m)
	assert.True(t, m.ApproxEqualThreshold(e.Transform(), 1e-5))
	assert.Equal(t, [3]float32{1, 2, 3}, e.body.Position)
}

func TestCameraOrientationKeepsDistance(t *testing.T) {
	f := newFixture(t)
	cam := f.scene().Camera()
	cam.SetEulerAngles(mgl32.Vec3{0, 90, 0})
	target := cam.LookAt()
	assert.InDelta(t, -3, target[0], 1e-5)
	assert.InDelta(t, 3, target[2], 1e-5)

	cam.SetLookAt(mgl32.Vec3{0, 0, 0})
	assert.InDelta(t, -1, cam.Direction()[2], 1e-5)
}

func TestSettingsGroup(t *testing.T) {
	f := newFixture(t)
	f.root.Group(data.SettingsGroup).SetFloat3("Gravity", data.Vec3{0, 0, 0})
	f.root.Group(data.SettingsGroup).SetFloat4("Background", data.Vec4{1, 1, 1, 1})
	s := f.scene()
	assert.Equal(t, [3]float32{}, s.world.Gravity)
	assert.Equal(t, uint8(255), s.background.R)
}

func TestAssetsResolveOrReportOnce(t *testing.T) {
	fsys, err := mem.NewFS()
	require.NoError(t, err)
	require.NoError(t, hackpadfs.MkdirAll(fsys, "lib", 0o755))
	require.NoError(t, hackpadfs.WriteFullFile(fsys, "lib/ship.glb", []byte("glTF"), 0o644))
	lib := assets.New(fsys, "/lib")

	f := newFixture(t)
	ship := model.NewObject(model.Geometry, "Ship")
	ship.AssetName = "ship"
	require.NoError(t, f.project.Add(f.root, ship))
	f.crate.Group(data.MaterialGroup).SetText("Texture", "brick")

	s := f.scene(func(o *engine.Options) { o.Assets = lib })
	assert.Equal(t, "lib/ship.glb", f.entity(s, ship).model)
	assert.Empty(t, f.entity(s, f.crate).texture)
	assert.Equal(t, []string{"Asset not found: brick"}, f.log.Lines())

	s.Play()
	s.Stop()
	assert.Empty(t, f.log.Lines())
}

func TestDestroyReleasesEntities(t *testing.T) {
	f := newFixture(t)
	s := f.scene()
	e := f.entity(s, f.crate)
	s.Destroy()
	assert.True(t, e.removed)
	assert.Empty(t, s.world.Bodies)
	assert.Nil(t, s.Entity(f.crate.ID))
}
