package physics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scene-engine/internal/data"
)

func TestBodyRestsOnStaticFloor(t *testing.T) {
	w := NewWorld()
	floor := NewBody([3]float32{0, 0, 0}, [3]float32{10, 1, 10}, 1, true)
	ball := NewBody([3]float32{0, 2, 0}, [3]float32{1, 1, 1}, 1, false)
	w.AddBody(floor)
	w.AddBody(ball)

	for i := 0; i < 240; i++ {
		w.Step(1.0 / 60)
	}
	assert.InDelta(t, 1.0, ball.Position[1], 0.01)
	assert.Equal(t, [3]float32{0, 0, 0}, floor.Position)
	assert.InDelta(t, 4.0, w.Time, 1e-3)
}

func TestImpulseAndForce(t *testing.T) {
	w := NewWorld()
	w.SetGravity([3]float32{})
	b := NewBody([3]float32{}, [3]float32{1, 1, 1}, 2, false)
	w.AddBody(b)

	b.ApplyImpulse([3]float32{4, 0, 0})
	assert.Equal(t, float32(2), b.Velocity[0])
	w.Step(0.5)
	assert.InDelta(t, 1.0, b.Position[0], 1e-6)

	b.AddForce([3]float32{0, 4, 0})
	w.Step(1)
	assert.InDelta(t, 2.0, b.Velocity[1], 1e-6)
	assert.Equal(t, [3]float32{}, b.Force, "forces last one step")
}

func TestStaticIgnoresForces(t *testing.T) {
	b := NewBody([3]float32{}, [3]float32{1, 1, 1}, 1, true)
	b.ApplyImpulse([3]float32{1, 1, 1})
	b.AddForce([3]float32{1, 1, 1})
	assert.Equal(t, [3]float32{}, b.Velocity)
	assert.Equal(t, [3]float32{}, b.Force)
}

func TestRemoveAndReset(t *testing.T) {
	w := NewWorld()
	a := NewBody([3]float32{}, [3]float32{1, 1, 1}, 1, false)
	w.AddBody(a)
	w.AddBody(a)
	require.Len(t, w.Bodies, 1)

	w.Step(0.1)
	assert.NotZero(t, a.Velocity[1])
	w.Reset()
	assert.Equal(t, [3]float32{}, a.Velocity)
	assert.Zero(t, w.Time)

	assert.True(t, w.Remove(a))
	assert.False(t, w.Remove(a))
	assert.Empty(t, w.Bodies)
}

func TestReadDef(t *testing.T) {
	assert.Equal(t, None, ReadDef(nil).Kind)
	assert.Nil(t, ReadDef(nil).NewBody([3]float32{}, [3]float32{1, 1, 1}))

	g := data.NewGroup(data.PhysicsGroup)
	g.SetInt("Type", 2, data.WithUsage(data.Menu), data.WithText("None, Static, Dynamic"))
	g.SetFloat("Mass", 3)
	g.SetFloat("Restitution", 4)
	d := ReadDef(g)
	assert.Equal(t, Dynamic, d.Kind)
	assert.Equal(t, float32(1), d.Restitution, "clamped")

	b := d.NewBody([3]float32{1, 2, 3}, [3]float32{1, 1, 1})
	require.NotNil(t, b)
	assert.False(t, b.Static)
	assert.Equal(t, float32(3), b.Mass)
}
