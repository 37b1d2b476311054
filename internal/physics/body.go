package physics

import (
	"github.com/chewxy/math32"

	"scene-engine/internal/data"
)

// Kind selects how a body takes part in the simulation.
type Kind int

const (
	// None means the object has no body.
	None Kind = iota
	// Static bodies collide but never move and ignore gravity, forces and impulses.
	Static
	// Dynamic bodies integrate gravity, forces and impulses.
	Dynamic
)

// Body is a 3D rigid body with position, velocity, and AABB (from scale).
type Body struct {
	Position    [3]float32
	Velocity    [3]float32
	Force       [3]float32 // accumulated until the next step
	Scale       [3]float32
	Mass        float32
	Restitution float32
	Friction    float32
	Static      bool
}

// NewBody returns a body with the given position and scale. Velocity is zero.
// A non-positive mass becomes 1.
func NewBody(position, scale [3]float32, mass float32, static bool) *Body {
	if mass <= 0 || math32.IsNaN(mass) {
		mass = 1
	}
	return &Body{
		Position: position,
		Scale:    scale,
		Mass:     mass,
		Static:   static,
	}
}

// Def is the decoded Physics group of an object.
type Def struct {
	Kind        Kind
	Mass        float32
	Restitution float32
	Friction    float32
}

// ReadDef decodes a Physics group. A missing group or unknown type means no body.
func ReadDef(g *data.Group) Def {
	d := Def{
		Mass:        g.GetFloat("Mass", 1),
		Restitution: clamp01(g.GetFloat("Restitution", 0)),
		Friction:    clamp01(g.GetFloat("Friction", 0.5)),
	}
	switch g.GetMenu("Type", "None") {
	case "Static":
		d.Kind = Static
	case "Dynamic":
		d.Kind = Dynamic
	}
	return d
}

// NewBody creates a body for the definition, or nil when Kind is None.
func (d Def) NewBody(position, scale [3]float32) *Body {
	if d.Kind == None {
		return nil
	}
	b := NewBody(position, scale, d.Mass, d.Kind == Static)
	b.Restitution = d.Restitution
	b.Friction = d.Friction
	return b
}

// AddForce accumulates a force (newtons) applied at the next step.
func (b *Body) AddForce(f [3]float32) {
	if b.Static {
		return
	}
	for i := range f {
		b.Force[i] += sanitize(f[i])
	}
}

// ApplyImpulse changes velocity immediately by J/m.
func (b *Body) ApplyImpulse(j [3]float32) {
	if b.Static {
		return
	}
	for i := range j {
		b.Velocity[i] += sanitize(j[i]) / b.Mass
	}
}

func sanitize(f float32) float32 {
	if math32.IsNaN(f) || math32.IsInf(f, 0) {
		return 0
	}
	return f
}

func clamp01(f float32) float32 {
	return math32.Max(0, math32.Min(1, sanitize(f)))
}
