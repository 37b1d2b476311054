package engine_test

import (
	"errors"
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

type fixture struct {
	root   *model.Object
	sphere *model.Object
	cube   *model.Object
	log    *logger.Logger
	host   *enginetest.Host
	scene  *enginetest.Scene
}

func newFixture(t *testing.T, scripts map[string]enginetest.Script) *fixture {
	t.Helper()
	p := model.NewProject()
	root := p.Scenes[0]
	cube := model.NewProcedural(model.Cube, "Crate")
	require.NoError(t, p.Add(root, cube))
	sphere := model.FindByName(root, "Sphere")
	for name := range scripts {
		o := model.FindByName(root, name)
		require.NotNil(t, o, name)
		o.Script = "// scripted"
	}
	log := logger.New()
	host := &enginetest.Host{Log: log, Scripts: scripts}
	scene := enginetest.NewScene(root, engine.Options{Scripts: host, Log: log})
	return &fixture{root: root, sphere: sphere, cube: cube, log: log, host: host, scene: scene}
}

func (f *fixture) entity(o *model.Object) *enginetest.Entity {
	return f.scene.Entity(o.ID).(*enginetest.Entity)
}

func TestLoadCreatesEntityPerObject(t *testing.T) {
	f := newFixture(t, nil)
	for _, o := range model.Collect(f.root) {
		e := f.scene.Entity(o.ID)
		require.NotNil(t, e, o.Name)
		assert.Equal(t, 1, e.(*enginetest.Entity).Updates, o.Name)
	}
	assert.Same(t, f.entity(f.root), f.entity(f.sphere).Parent)
	assert.Equal(t, mgl32.Vec3{0, 0, 3}, f.scene.Camera().Position())
}

func TestConcreteScenarioRestoresOnStop(t *testing.T) {
	f := newFixture(t, map[string]enginetest.Script{
		"Sphere": {Funcs: map[string]enginetest.Func{
			engine.TickFunc: func(_ engine.World, self engine.Entity, _ any) error {
				self.SetPosition(mgl32.Vec3{1, 2, 3})
				return nil
			},
		}},
	})
	e := f.scene.Entity(f.sphere.ID)

	f.scene.Tick(0)
	assert.Equal(t, mgl32.Vec3{}, e.Position(), "tick is a no-op while stopped")

	f.scene.Play()
	f.scene.Tick(0)
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, e.Position())

	f.scene.Stop()
	assert.Equal(t, mgl32.Vec3{}, e.Position())
	assert.Equal(t, 1, f.host.Closed)
	assert.Equal(t, 1, f.scene.Resets)
	assert.False(t, f.scene.IsPlaying())
}

func TestStopReactivatesEntities(t *testing.T) {
	f := newFixture(t, map[string]enginetest.Script{
		"Sphere": {Funcs: map[string]enginetest.Func{
			engine.TickFunc: func(_ engine.World, self engine.Entity, _ any) error {
				self.SetActive(false)
				return nil
			},
		}},
	})
	f.scene.Play()
	f.scene.Tick(0)
	require.False(t, f.entity(f.sphere).IsActive())
	f.scene.Stop()
	assert.True(t, f.entity(f.sphere).IsActive())
}

func TestCallbacksRegisteredByPresence(t *testing.T) {
	noop := func(engine.World, engine.Entity, any) error { return nil }
	f := newFixture(t, map[string]enginetest.Script{
		"Sphere": {Funcs: map[string]enginetest.Func{engine.TickFunc: noop}},
		"Crate":  {Funcs: map[string]enginetest.Func{engine.KeyDownFunc: noop, engine.KeyUpFunc: noop}},
	})
	f.scene.Play()
	f.scene.Tick(0.5)
	f.scene.KeyDown("Space")
	f.scene.KeyUp("Space")

	assert.Equal(t, []string{
		"Sphere.tick(0.5)",
		"Crate.keyDown(Space)",
		"Crate.keyUp(Space)",
	}, f.host.Calls)
}

func TestScriptFailureIsIsolated(t *testing.T) {
	calls := 0
	f := newFixture(t, map[string]enginetest.Script{
		"Sphere": {Funcs: map[string]enginetest.Func{
			engine.TickFunc: func(engine.World, engine.Entity, any) error { return errors.New("boom") },
		}},
		"Crate": {Funcs: map[string]enginetest.Func{
			engine.TickFunc: func(engine.World, engine.Entity, any) error { calls++; return nil },
		}},
	})
	f.scene.Play()
	f.scene.Tick(0)

	assert.Equal(t, 1, calls)
	assert.Equal(t, []string{"Error in Sphere: boom"}, f.log.Lines())
}

func TestEvalErrorKeepsDeclaredCallbacks(t *testing.T) {
	calls := 0
	f := newFixture(t, map[string]enginetest.Script{
		"Crate": {
			EvalErr: errors.New("ReferenceError: x is not defined"),
			Funcs: map[string]enginetest.Func{
				engine.TickFunc: func(engine.World, engine.Entity, any) error { calls++; return nil },
			},
		},
	})
	f.scene.Play()
	f.scene.Tick(0)
	assert.Equal(t, 1, calls)
	assert.Len(t, f.log.Lines(), 1)
}

func TestPlayClearsLog(t *testing.T) {
	f := newFixture(t, nil)
	f.log.Log("stale")
	f.scene.Play()
	assert.Empty(t, f.log.Lines())
}

func TestPhysicsStepsAfterScripts(t *testing.T) {
	f := newFixture(t, nil)
	f.scene.Play()
	f.scene.Tick(1.0)
	f.scene.Tick(1.05)
	f.scene.Tick(3.0)
	f.scene.Tick(2.0)

	require.Len(t, f.scene.Steps, 4)
	assert.Equal(t, float32(0), f.scene.Steps[0], "first tick has no previous time")
	assert.InDelta(t, 0.05, f.scene.Steps[1], 1e-6)
	assert.InDelta(t, 0.1, f.scene.Steps[2], 1e-6, "long frames are capped")
	assert.Equal(t, float32(0), f.scene.Steps[3], "time going backwards does not step")
}

func TestClonesRemovedOnStop(t *testing.T) {
	var clone engine.Entity
	f := newFixture(t, map[string]enginetest.Script{
		"Crate": {Funcs: map[string]enginetest.Func{
			engine.TickFunc: func(w engine.World, self engine.Entity, _ any) error {
				if clone != nil {
					return nil
				}
				c, err := self.Clone()
				if err != nil {
					return err
				}
				w.TrackClone(c)
				clone = c
				return nil
			},
		}},
	})
	f.scene.Play()
	f.scene.Tick(0)
	require.NotNil(t, clone)

	clone.SetPosition(mgl32.Vec3{9, 9, 9})
	assert.Equal(t, mgl32.Vec3{}, f.scene.Entity(f.cube.ID).Position())
	assert.Same(t, clone, f.scene.Entity(clone.Object().ID))
	assert.Equal(t, f.cube.ParentID(), clone.Object().ParentID())

	f.scene.Stop()
	assert.True(t, clone.(*enginetest.Entity).Removed)
	assert.Nil(t, f.scene.Entity(clone.Object().ID))
	assert.Empty(t, f.scene.Clones())
	assert.Len(t, f.root.Children, 3, "clones never enter the project tree")
}

func TestAddObjectWhilePlaying(t *testing.T) {
	f := newFixture(t, nil)
	f.scene.Play()

	o := model.NewProcedural(model.Plane, "Floor")
	o.Group(data.TransformGroup).SetFloat3("Position", data.Vec3{0, 5, 0})
	f.root.Children = append(f.root.Children, o)
	model.Link(f.root, o)

	e, err := f.scene.AddObject(o)
	require.NoError(t, err)
	assert.Equal(t, mgl32.Vec3{0, 5, 0}, e.Position())
	assert.Equal(t, 1, e.(*enginetest.Entity).Updates)

	again, err := f.scene.AddObject(o)
	require.NoError(t, err)
	assert.Same(t, e, again)
}

func TestDestroyRemovesEverything(t *testing.T) {
	f := newFixture(t, nil)
	sphere := f.entity(f.sphere)
	f.scene.Play()
	f.scene.Destroy()

	assert.False(t, f.scene.IsPlaying())
	assert.True(t, sphere.Removed)
	assert.Nil(t, f.scene.Entity(f.sphere.ID))
}

func TestParseBackend(t *testing.T) {
	b, err := engine.ParseBackend("soft")
	require.NoError(t, err)
	assert.Equal(t, engine.Soft, b)

	_, err = engine.ParseBackend("metal")
	assert.Error(t, err)
}
