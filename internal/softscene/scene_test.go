package softscene

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scene-engine/internal/data"
	"scene-engine/internal/engine"
	"scene-engine/internal/engine/enginetest"
	"scene-engine/internal/logger"
	"scene-engine/internal/model"
)

func newScene(t *testing.T, edit func(p *model.Project, root *model.Object)) (*Scene, *model.Object) {
	t.Helper()
	p := model.NewProject()
	root := p.Scenes[0]
	if edit != nil {
		edit(p, root)
	}
	return New(root, engine.Options{Log: logger.New(), Resolution: mgl32.Vec2{120, 90}}), root
}

func lit(img image.Image, x, y int) bool {
	r, g, b, _ := img.At(x, y).RGBA()
	return r+g+b > 0
}

func TestBackendAndViewport(t *testing.T) {
	s, _ := newScene(t, nil)
	assert.Equal(t, engine.Soft, s.Backend())
	assert.Equal(t, mgl32.Vec2{120, 90}, s.Viewport())
	assert.Equal(t, mgl32.Vec2{120, 90}, s.Camera().Resolution())
}

func TestRenderDrawsSphereAtCenter(t *testing.T) {
	s, root := newScene(t, nil)
	img, err := s.Render(100, 100)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 100, 100), img.Bounds())
	assert.True(t, lit(img, 50, 50))
	assert.False(t, lit(img, 2, 2))

	s.Entity(model.FindByName(root, "Sphere").ID).SetActive(false)
	img, err = s.Render(100, 100)
	require.NoError(t, err)
	assert.False(t, lit(img, 50, 50))
}

func TestRenderCubeAndPlane(t *testing.T) {
	s, root := newScene(t, func(p *model.Project, root *model.Object) {
		model.FindByName(root, "Sphere").Group(data.TransformGroup).SetFloat3("Position", data.Vec3{0, 0, 10})
		require.NoError(t, p.Add(root, model.NewProcedural(model.Cube, "Box")))
		floor := model.NewProcedural(model.Plane, "Floor")
		floor.Group(data.TransformGroup).SetFloat3("Position", data.Vec3{0, -1, 0})
		floor.Group(data.TransformGroup).SetFloat3("Scale", data.Vec3{4, 1, 4})
		require.NoError(t, p.Add(root, floor))
	})
	img, err := s.Render(100, 100)
	require.NoError(t, err)
	assert.True(t, lit(img, 50, 50), "cube face")
	assert.True(t, lit(img, 50, 95), "floor")
	assert.False(t, lit(img, 50, 2), "sky")

	s.Entity(model.FindByName(root, "Box").ID).SetPosition(mgl32.Vec3{0, 0, 5})
	_, err = s.Render(100, 100)
	require.NoError(t, err)
}

func TestBackgroundFromSettings(t *testing.T) {
	s, _ := newScene(t, func(_ *model.Project, root *model.Object) {
		root.Group(data.SettingsGroup).SetFloat4("Background", data.Vec4{0, 0, 1, 1})
	})
	img, err := s.Render(10, 10)
	require.NoError(t, err)
	_, _, b, _ := img.At(0, 0).RGBA()
	assert.Equal(t, uint32(0xffff), b)
}

func TestRenderRejectsEmptyCanvas(t *testing.T) {
	s, _ := newScene(t, nil)
	_, err := s.Render(0, 10)
	assert.Error(t, err)
}

func TestSnapshotWritesPNG(t *testing.T) {
	s, _ := newScene(t, nil)
	path := filepath.Join(t.TempDir(), "shot.png")
	require.NoError(t, s.Snapshot(path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 120, cfg.Width)
	assert.Equal(t, 90, cfg.Height)
}

func TestPhysicsAndStop(t *testing.T) {
	s, root := newScene(t, func(_ *model.Project, root *model.Object) {
		sphere := model.FindByName(root, "Sphere")
		sphere.Group(data.PhysicsGroup).SetInt("Type", 2)
	})
	sphere := s.Entity(model.FindByName(root, "Sphere").ID)
	s.Play()
	s.Tick(0)
	s.Tick(0.1)
	sphere.AddForce(mgl32.Vec3{10, 0, 0}, mgl32.Vec3{})
	s.Tick(0.2)
	pos := sphere.Position()
	assert.Less(t, pos[1], float32(0))
	assert.Greater(t, pos[0], float32(0))

	clone, err := sphere.Clone()
	require.NoError(t, err)
	s.TrackClone(clone)
	assert.Len(t, s.world.Bodies, 2)

	s.Stop()
	assert.Equal(t, mgl32.Vec3{}, sphere.Position())
	assert.Len(t, s.world.Bodies, 1)
	assert.Zero(t, s.world.Time)
}

func TestStopReactivatesScriptedEntity(t *testing.T) {
	p := model.NewProject()
	root := p.Scenes[0]
	obj := model.FindByName(root, "Sphere")
	obj.Group(data.PhysicsGroup).SetInt("Type", 2)
	obj.Script = "hide"
	log := logger.New()
	host := &enginetest.Host{Log: log, Scripts: map[string]enginetest.Script{
		"Sphere": {Funcs: map[string]enginetest.Func{
			engine.TickFunc: func(_ engine.World, self engine.Entity, _ any) error {
				self.SetActive(false)
				return nil
			},
		}},
	}}
	s := New(root, engine.Options{Scripts: host, Log: log, Resolution: mgl32.Vec2{120, 90}})
	e := s.Entity(obj.ID).(*Entity)
	s.Play()
	s.Tick(0)
	require.False(t, e.IsActive())
	require.Empty(t, s.world.Bodies)

	s.Stop()
	assert.True(t, e.IsActive())
	require.Len(t, s.world.Bodies, 1)
	assert.Same(t, e.body, s.world.Bodies[0])
	assert.Same(t, e, s.bodies[e.body])
}

func TestUpdateFromModelIdempotent(t *testing.T) {
	s, root := newScene(t, func(_ *model.Project, root *model.Object) {
		sphere := model.FindByName(root, "Sphere")
		sphere.Group(data.PhysicsGroup).SetInt("Type", 2)
		sphere.Group(data.TransformGroup).SetFloat3("Rotation", data.Vec3{0, 45, 0})
		sphere.Group(data.TransformGroup).SetFloat3("Scale", data.Vec3{2, 1, 1})
	})
	e := s.Entity(model.FindByName(root, "Sphere").ID).(*Entity)
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

func TestCameraLookAt(t *testing.T) {
	s, _ := newScene(t, nil)
	cam := s.Camera()
	cam.SetPosition(mgl32.Vec3{0, 0, 5})
	assert.Equal(t, mgl32.Vec3{0, 0, 2}, cam.LookAt())

	cam.SetLookAt(mgl32.Vec3{5, 0, 5})
	assert.InDelta(t, 1, cam.Direction()[0], 1e-5)

	m := mgl32.Translate3D(1, 2, 3)
	cam.SetTransform(m)
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, cam.Position())
}
