// Package rlscene is the raylib backend: entity state in raylib math types, geometry drawn
// through the primitives registry and bodies simulated by the physics world.
package rlscene

import (
	"errors"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/sirupsen/logrus"

	"scene-engine/internal/data"
	"scene-engine/internal/engine"
	"scene-engine/internal/model"
	"scene-engine/internal/physics"
	"scene-engine/internal/primitives"
)

// Scene is the raylib implementation of engine.Scene.
type Scene struct {
	*engine.Stage

	world   *physics.World
	bodies  map[*physics.Body]*Entity
	prims   *primitives.Registry
	view    *View
	missing map[string]bool

	background rl.Color
}

// New builds the raylib scene for root and creates an entity for every object. No GPU
// resource is touched until the first Draw.
func New(root *model.Object, opts engine.Options) *Scene {
	s := &Scene{
		world:      physics.NewWorld(),
		bodies:     make(map[*physics.Body]*Entity),
		prims:      primitives.NewRegistry(),
		view:       newView(),
		missing:    make(map[string]bool),
		background: rl.Black,
	}
	s.Stage = engine.NewStage(root, s, opts)
	s.Load()
	return s
}

func (s *Scene) Backend() engine.Backend { return engine.Raylib }

func (s *Scene) NewEntity(o *model.Object, parent engine.Entity) (engine.Entity, error) {
	p, _ := parent.(*Entity)
	if parent != nil && p == nil {
		return nil, errors.New("parent entity belongs to another backend")
	}
	return newEntity(s, o, p), nil
}

// Viewport is the window size when a window is open, otherwise the configured resolution.
func (s *Scene) Viewport() mgl32.Vec2 {
	if rl.IsWindowReady() {
		return mgl32.Vec2{float32(rl.GetScreenWidth()), float32(rl.GetScreenHeight())}
	}
	return s.Options().Resolution
}

// StepPhysics advances the world and copies body positions back to their entities.
func (s *Scene) StepPhysics(dt float32) {
	s.world.Step(dt)
	for b, e := range s.bodies {
		if !b.Static {
			e.position = rl.NewVector3(b.Position[0], b.Position[1], b.Position[2])
		}
	}
}

func (s *Scene) ResetPhysics() { s.world.Reset() }

// Play hands the view back to the scene camera.
func (s *Scene) Play() {
	s.view.free = false
	s.Stage.Play()
}

// Destroy stops the scene, removes every entity and releases GPU resources.
func (s *Scene) Destroy() {
	s.Stage.Destroy()
	s.view.unload()
	s.prims.Unload()
}

// SetGridVisible sets whether the editor grid is drawn.
func (s *Scene) SetGridVisible(visible bool) { s.view.GridVisible = visible }

// GridVisible reports whether the editor grid is drawn.
func (s *Scene) GridVisible() bool { return s.view.GridVisible }

func (s *Scene) attach(e *Entity) {
	s.world.AddBody(e.body)
	s.bodies[e.body] = e
}

func (s *Scene) detach(e *Entity) {
	s.world.Remove(e.body)
	delete(s.bodies, e.body)
}

func (s *Scene) applySettings(g *data.Group) {
	s.background = color(mgl32.Vec4(g.GetFloat4("Background", data.Vec4{0, 0, 0, 1})))
	s.world.SetGravity(g.GetFloat3("Gravity", data.Vec3{0, -9.8, 0}))
	s.view.setSkybox(s.resolve(s.Root(), g.GetText("Skybox", "")))
}

// resolve maps an asset name to a path. A miss leaves the entity without the asset and
// is reported once per name.
func (s *Scene) resolve(o *model.Object, name string) string {
	if name == "" {
		return ""
	}
	assets := s.Options().Assets
	if assets == nil {
		return ""
	}
	path, err := assets.Resolve(name)
	if err != nil {
		if !s.missing[name] {
			s.missing[name] = true
			s.Options().Log.Log("Asset not found: " + name)
			s.Diag().WithError(err).WithFields(logrus.Fields{
				"object": o.Name,
				"asset":  name,
			}).Warn("resolve asset")
		}
		return ""
	}
	return path
}
