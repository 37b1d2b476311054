// Package softscene is the software backend. It keeps entity state in mgl32 values,
// simulates bodies with the physics world and renders flat-shaded snapshots with gg.
package softscene

import (
	"errors"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/sirupsen/logrus"

	"scene-engine/internal/data"
	"scene-engine/internal/engine"
	"scene-engine/internal/model"
	"scene-engine/internal/physics"
)

// Scene is the software implementation of engine.Scene.
type Scene struct {
	*engine.Stage

	world      *physics.World
	bodies     map[*physics.Body]*Entity
	missing    map[string]bool
	background mgl32.Vec4
}

// New builds the software scene for root and creates an entity for every object.
func New(root *model.Object, opts engine.Options) *Scene {
	s := &Scene{
		world:      physics.NewWorld(),
		bodies:     make(map[*physics.Body]*Entity),
		missing:    make(map[string]bool),
		background: mgl32.Vec4{0, 0, 0, 1},
	}
	s.Stage = engine.NewStage(root, s, opts)
	s.Load()
	return s
}

func (s *Scene) Backend() engine.Backend { return engine.Soft }

func (s *Scene) NewEntity(o *model.Object, parent engine.Entity) (engine.Entity, error) {
	p, _ := parent.(*Entity)
	if parent != nil && p == nil {
		return nil, errors.New("parent entity belongs to another backend")
	}
	return newEntity(s, o, p), nil
}

// Viewport is the configured canvas size.
func (s *Scene) Viewport() mgl32.Vec2 { return s.Options().Resolution }

func (s *Scene) StepPhysics(dt float32) {
	s.world.Step(dt)
	for b, e := range s.bodies {
		if !b.Static {
			e.pos = b.Position
		}
	}
}

func (s *Scene) ResetPhysics() { s.world.Reset() }

func (s *Scene) attach(e *Entity) {
	s.world.AddBody(e.body)
	s.bodies[e.body] = e
}

func (s *Scene) detach(e *Entity) {
	s.world.Remove(e.body)
	delete(s.bodies, e.body)
}

func (s *Scene) applySettings(g *data.Group) {
	s.background = mgl32.Vec4(g.GetFloat4("Background", data.Vec4{0, 0, 0, 1}))
	s.world.SetGravity(g.GetFloat3("Gravity", data.Vec3{0, -9.8, 0}))
}

func (s *Scene) resolve(o *model.Object, name string) string {
	assets := s.Options().Assets
	if name == "" || assets == nil {
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
