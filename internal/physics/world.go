package physics

import (
	"slices"

	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// World holds a set of bodies and runs a simple 3D physics step: gravity, forces,
// integration, AABB collision.
type World struct {
	Gravity [3]float32
	Bodies  []*Body
	Time    float64 // simulated seconds since the last Reset
}

// NewWorld returns a new physics world with default gravity (0, -9.8, 0). The scene is
// Y-up so "down" is -Y.
func NewWorld() *World {
	return &World{
		Gravity: [3]float32{0, -9.8, 0},
	}
}

// SetGravity sets the gravity vector.
func (w *World) SetGravity(g [3]float32) {
	w.Gravity = g
}

// AddBody appends a body to the world. Order is preserved.
func (w *World) AddBody(b *Body) {
	if b == nil || slices.Contains(w.Bodies, b) {
		return
	}
	w.Bodies = append(w.Bodies, b)
}

// Remove drops b from the world. It reports whether b was present.
func (w *World) Remove(b *Body) bool {
	i := slices.Index(w.Bodies, b)
	if i < 0 {
		return false
	}
	w.Bodies = slices.Delete(w.Bodies, i, i+1)
	return true
}

// Reset clears the simulated time and every body's velocity and pending force.
// Bodies stay attached; their owners re-seed positions afterwards.
func (w *World) Reset() {
	w.Time = 0
	for _, b := range w.Bodies {
		b.Velocity = [3]float32{}
		b.Force = [3]float32{}
	}
}

// bodyAABB returns the AABB for a body (center position, half extents from scale).
func bodyAABB(b *Body) rl.BoundingBox {
	var half [3]float32
	for i, s := range b.Scale {
		s = math32.Abs(s)
		if s == 0 {
			s = 1
		}
		half[i] = s * 0.5
	}
	return rl.NewBoundingBox(
		rl.NewVector3(b.Position[0]-half[0], b.Position[1]-half[1], b.Position[2]-half[2]),
		rl.NewVector3(b.Position[0]+half[0], b.Position[1]+half[1], b.Position[2]+half[2]),
	)
}

// penetrationAxis returns the overlap amount and axis index (0=X, 1=Y, 2=Z) for the minimum penetration.
// If no overlap, returns (0, -1).
func penetrationAxis(a, b rl.BoundingBox) (depth float32, axis int) {
	overlap := [3]float32{
		min(a.Max.X, b.Max.X) - max(a.Min.X, b.Min.X),
		min(a.Max.Y, b.Max.Y) - max(a.Min.Y, b.Min.Y),
		min(a.Max.Z, b.Max.Z) - max(a.Min.Z, b.Min.Z),
	}
	if overlap[0] <= 0 || overlap[1] <= 0 || overlap[2] <= 0 {
		return 0, -1
	}
	depth, axis = overlap[0], 0
	for i := 1; i < 3; i++ {
		if overlap[i] < depth {
			depth, axis = overlap[i], i
		}
	}
	return depth, axis
}

// center returns the AABB center on axis.
func center(box rl.BoundingBox, axis int) float32 {
	switch axis {
	case 0:
		return (box.Min.X + box.Max.X) / 2
	case 1:
		return (box.Min.Y + box.Max.Y) / 2
	}
	return (box.Min.Z + box.Max.Z) / 2
}

// Step advances the simulation by dt seconds: apply gravity and accumulated forces,
// integrate, then resolve AABB collisions. Forces are cleared after each step.
// A non-positive dt only resolves overlaps.
func (w *World) Step(dt float32) {
	if dt < 0 || math32.IsNaN(dt) {
		dt = 0
	}
	for _, b := range w.Bodies {
		if b.Static {
			continue
		}
		for i := 0; i < 3; i++ {
			b.Velocity[i] += (w.Gravity[i] + b.Force[i]/b.Mass) * dt
			b.Position[i] += b.Velocity[i] * dt
		}
		b.Force = [3]float32{}
	}
	w.Time += float64(dt)

	// AABB collision: resolve overlapping pairs (push apart along minimum penetration axis)
	for i := 0; i < len(w.Bodies); i++ {
		bi := w.Bodies[i]
		boxI := bodyAABB(bi)
		for j := i + 1; j < len(w.Bodies); j++ {
			bj := w.Bodies[j]
			if bi.Static && bj.Static {
				continue
			}
			boxJ := bodyAABB(bj)
			if !rl.CheckCollisionBoxes(boxI, boxJ) {
				continue
			}
			depth, axis := penetrationAxis(boxI, boxJ)
			if axis < 0 {
				continue
			}
			resolve(bi, bj, depth, axis, center(boxI, axis) <= center(boxJ, axis))
			boxI = bodyAABB(bi)
		}
	}
}

// resolve pushes i and j apart by depth along axis, splitting the move by mass, then
// reflects the approaching velocity by the combined restitution and damps the tangent
// velocity by the combined friction. iBelow is true when i sits on the negative side.
func resolve(bi, bj *Body, depth float32, axis int, iBelow bool) {
	sign := float32(1)
	if !iBelow {
		sign = -1
	}
	var moveI, moveJ float32
	switch {
	case bi.Static:
		moveJ = depth
	case bj.Static:
		moveI = -depth
	default:
		total := bi.Mass + bj.Mass
		moveI = -depth * (bj.Mass / total)
		moveJ = depth * (bi.Mass / total)
	}
	bi.Position[axis] += moveI * sign
	bj.Position[axis] += moveJ * sign

	e := math32.Max(bi.Restitution, bj.Restitution)
	mu := math32.Sqrt(bi.Friction * bj.Friction)
	for _, b := range []*Body{bi, bj} {
		if b.Static {
			continue
		}
		b.Velocity[axis] = -b.Velocity[axis] * e
		for k := 0; k < 3; k++ {
			if k != axis {
				b.Velocity[k] *= 1 - mu
			}
		}
	}
}
