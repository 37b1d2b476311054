package editor

import (
	"bytes"
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

const other engine.Backend = "other"

type fixture struct {
	ed    *Editor
	log   *logger.Logger
	built map[engine.Backend]int
	live  []*enginetest.Scene
}

func newEditor(t *testing.T, host *enginetest.Host) *fixture {
	t.Helper()
	f := &fixture{log: logger.New(), built: map[engine.Backend]int{}}
	if host != nil {
		host.Log = f.log
	}
	factory := func(b engine.Backend) Factory {
		return func(root *model.Object, opts engine.Options) engine.Scene {
			f.built[b]++
			s := enginetest.NewScene(root, opts)
			f.live = append(f.live, s)
			return s
		}
	}
	opts := engine.Options{Log: f.log}
	if host != nil {
		opts.Scripts = host
	}
	ed, err := New(opts,
		WithFactory(engine.Raylib, factory(engine.Raylib)),
		WithFactory(other, factory(other)),
	)
	require.NoError(t, err)
	f.ed = ed
	return f
}

func encode(t *testing.T, p *model.Project) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, model.Encode(&buf, p))
	return buf.Bytes()
}

func TestNewSelectsStartScene(t *testing.T) {
	f := newEditor(t, nil)
	ed := f.ed
	assert.Equal(t, engine.Raylib, ed.Backend())
	require.NotNil(t, ed.Scene())
	assert.Equal(t, "Start Scene", ed.SceneRoot().Name)
	assert.Same(t, ed.SceneRoot(), ed.Selected())
	assert.Same(t, ed.Project().Scenes[0], ed.Scene().Root())
}

func TestUnknownBackend(t *testing.T) {
	_, err := New(engine.Options{}, WithBackend("vulkan"))
	assert.Error(t, err)

	f := newEditor(t, nil)
	assert.Error(t, f.ed.SetBackend("vulkan"))
	assert.Equal(t, engine.Raylib, f.ed.Backend())
}

func TestSetBackendRebuildsWithoutTouchingModel(t *testing.T) {
	f := newEditor(t, nil)
	ed := f.ed
	sphere := model.FindByName(ed.SceneRoot(), "Sphere")
	ed.Select(sphere)
	before := encode(t, ed.Project())

	old := f.live[0]
	old.Entity(sphere.ID).SetPosition(mgl32.Vec3{4, 4, 4})
	ed.Play()

	require.NoError(t, ed.SetBackend(other))
	assert.Equal(t, other, ed.Backend())
	assert.Equal(t, 1, f.built[other])
	assert.False(t, old.IsPlaying())
	assert.True(t, old.Entity(sphere.ID) == nil, "old scene destroyed")
	assert.Same(t, sphere, ed.Selected())

	fresh := ed.Scene()
	assert.Same(t, ed.SceneRoot(), fresh.Root())
	assert.Equal(t, mgl32.Vec3{}, fresh.Entity(sphere.ID).(*enginetest.Entity).Pos)
	assert.Equal(t, before, encode(t, ed.Project()))

	require.NoError(t, ed.SetBackend(other))
	assert.Equal(t, 1, f.built[other], "same backend is a no-op")
}

func TestPlayTickStopForwarded(t *testing.T) {
	host := &enginetest.Host{Scripts: map[string]enginetest.Script{
		"Sphere": {Funcs: map[string]enginetest.Func{
			engine.TickFunc: func(_ engine.World, self engine.Entity, arg any) error {
				p := self.Position()
				self.SetPosition(p.Add(mgl32.Vec3{1, 0, 0}))
				return nil
			},
			engine.KeyDownFunc: func(engine.World, engine.Entity, any) error { return nil },
		}},
	}}
	f := newEditor(t, host)
	ed := f.ed
	sphere := model.FindByName(ed.SceneRoot(), "Sphere")
	sphere.Script = "function tick(t) {}"

	ed.Play()
	assert.True(t, ed.IsPlaying())
	ed.Tick(0)
	ed.Tick(0.05)
	ed.KeyDown("A")
	ed.KeyUp("A")
	ent := ed.Scene().Entity(sphere.ID)
	assert.Equal(t, float32(2), ent.Position()[0])
	assert.Contains(t, host.Calls, "Sphere.keyDown(A)")

	ed.Stop()
	assert.False(t, ed.IsPlaying())
	assert.Equal(t, mgl32.Vec3{}, ent.Position())
	assert.Equal(t, 1, host.Closed)
}

func TestAddObjectCreatesEntities(t *testing.T) {
	f := newEditor(t, nil)
	ed := f.ed
	require.NoError(t, ed.Project().Add(nil, model.NewObject(model.SceneType, "Level 2")))
	crate := model.NewProcedural(model.Cube, "Crate")

	ent, err := ed.AddObject(ed.SceneRoot(), crate)
	require.NoError(t, err)
	require.NotNil(t, ent)
	assert.Same(t, ent, ed.Scene().Entity(crate.ID))
	assert.Same(t, ed.SceneRoot(), ed.Project().SceneOf(crate))

	level2 := ed.Project().Scenes[1]
	ent, err = ed.AddObject(level2, model.NewProcedural(model.Sphere, "Ball"))
	require.NoError(t, err)
	assert.Nil(t, ent, "not in the active scene")

	_, err = ed.AddObject(crate, model.NewProcedural(model.Sphere, "Ball"))
	assert.Error(t, err, "procedural objects are leaves")
}

func TestRemove(t *testing.T) {
	f := newEditor(t, nil)
	ed := f.ed
	sphere := model.FindByName(ed.SceneRoot(), "Sphere")
	ent := ed.Scene().Entity(sphere.ID).(*enginetest.Entity)
	ed.Select(sphere)

	assert.True(t, ed.Remove(sphere))
	assert.True(t, ent.Removed)
	assert.Nil(t, ed.Scene().Entity(sphere.ID))
	assert.Same(t, ed.SceneRoot(), ed.Selected())
	assert.False(t, ed.Remove(sphere))

	second := model.NewObject(model.SceneType, "Second")
	_, err := ed.AddObject(nil, second)
	require.NoError(t, err)
	assert.True(t, ed.Remove(ed.SceneRoot()))
	assert.Same(t, second, ed.SceneRoot())
	assert.Same(t, second, ed.Scene().Root())

	assert.True(t, ed.Remove(second))
	assert.Nil(t, ed.Scene())
	ed.Play()
	ed.Tick(1)
	assert.False(t, ed.IsPlaying())
}

func TestApplySingleGroup(t *testing.T) {
	f := newEditor(t, nil)
	ed := f.ed
	sphere := model.FindByName(ed.SceneRoot(), "Sphere")
	ent := ed.Scene().Entity(sphere.ID).(*enginetest.Entity)
	updates := ent.Updates

	sphere.Group(data.TransformGroup).SetFloat3("Position", data.Vec3{0, 3, 0})
	ed.Apply(sphere, data.TransformGroup)
	assert.Equal(t, mgl32.Vec3{0, 3, 0}, ent.Pos)
	assert.Equal(t, updates+1, ent.Updates)
}

func TestSaveAndOpen(t *testing.T) {
	f := newEditor(t, nil)
	ed := f.ed
	path := filepath.Join(t.TempDir(), "projects", "demo.json")
	crate := model.NewProcedural(model.Cube, "Crate")
	_, err := ed.AddObject(ed.SceneRoot(), crate)
	require.NoError(t, err)
	require.NoError(t, ed.Save(path))

	ed.NewProject()
	assert.Nil(t, model.FindByName(ed.SceneRoot(), "Crate"))

	require.NoError(t, ed.Open(path))
	got := model.FindByName(ed.SceneRoot(), "Crate")
	require.NotNil(t, got)
	assert.Equal(t, crate.ID, got.ID)
	assert.NotNil(t, ed.Scene().Entity(crate.ID))
}

func TestOpenFailureKeepsProject(t *testing.T) {
	f := newEditor(t, nil)
	ed := f.ed
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0644))

	p, scene := ed.Project(), ed.Scene()
	assert.Error(t, ed.Open(bad))
	assert.Same(t, p, ed.Project())
	assert.Same(t, scene, ed.Scene())
	require.Len(t, f.log.Lines(), 1)
	assert.Contains(t, f.log.Lines()[0], "Failed to open "+bad)

	assert.Error(t, ed.Open(filepath.Join(dir, "missing.json")))
	assert.Len(t, f.log.Lines(), 2)
}

func TestCloseDestroysScene(t *testing.T) {
	f := newEditor(t, nil)
	sphere := model.FindByName(f.ed.SceneRoot(), "Sphere")
	ent := f.ed.Scene().Entity(sphere.ID).(*enginetest.Entity)
	f.ed.Close()
	assert.Nil(t, f.ed.Scene())
	assert.True(t, ent.Removed)
}

func TestDefaultFactories(t *testing.T) {
	fs := Factories()
	assert.Contains(t, fs, engine.Raylib)
	assert.Contains(t, fs, engine.Soft)

	ed, err := New(engine.Options{Resolution: mgl32.Vec2{64, 48}}, WithBackend(engine.Soft))
	require.NoError(t, err)
	assert.Equal(t, engine.Soft, ed.Scene().Backend())
	require.NoError(t, ed.SetBackend(engine.Raylib))
	assert.Equal(t, engine.Raylib, ed.Scene().Backend())
	ed.Close()
}
