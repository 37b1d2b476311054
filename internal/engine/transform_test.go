package engine

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"

	"scene-engine/internal/data"
	"scene-engine/internal/model"
)

func vecNear(t *testing.T, want, got mgl32.Vec3) {
	t.Helper()
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-4, "lane %d of %v", i, got)
	}
}

func TestSafeQuat(t *testing.T) {
	assert.Equal(t, mgl32.QuatIdent(), SafeQuat(mgl32.Quat{}))
	assert.Equal(t, mgl32.QuatIdent(), SafeQuat(mgl32.Quat{W: math32.NaN()}))
	q := SafeQuat(mgl32.Quat{W: 2})
	assert.InDelta(t, 1, q.W, 1e-6)
}

func TestDirectionFollowsYaw(t *testing.T) {
	vecNear(t, mgl32.Vec3{0, 0, -1}, Direction(mgl32.QuatIdent()))
	vecNear(t, mgl32.Vec3{-1, 0, 0}, Direction(EulerQuat(mgl32.Vec3{0, 90, 0})))
}

func TestComposeDecompose(t *testing.T) {
	pos := mgl32.Vec3{1, 2, 3}
	rot := EulerQuat(mgl32.Vec3{10, 20, 30})
	scale := mgl32.Vec3{2, 3, 4}
	p, q, s := Decompose(Compose(pos, rot, scale))
	vecNear(t, pos, p)
	vecNear(t, scale, s)
	vecNear(t, Direction(rot), Direction(q))
}

func TestReadGroupsDefaultWhenMissing(t *testing.T) {
	tr := ReadTransform(nil)
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, tr.Scale)
	assert.Equal(t, mgl32.Ident4(), tr.Matrix())

	m := ReadMaterial(nil)
	assert.Equal(t, mgl32.Vec4{1, 1, 1, 1}, m.Color)

	g := data.NewGroup(data.CameraGroup)
	g.SetFloat("FOV", 45)
	cam := ReadCamera(g)
	assert.Equal(t, float32(45), cam.FOV)
	assert.Equal(t, mgl32.Vec3{0, 0, 3}, cam.Position)
}

func TestLookRotation(t *testing.T) {
	q := LookRotation(mgl32.Vec3{0, 0, 3}, mgl32.Vec3{})
	vecNear(t, mgl32.Vec3{0, 0, -1}, Direction(q))

	q = LookRotation(mgl32.Vec3{}, mgl32.Vec3{5, 0, 0})
	vecNear(t, mgl32.Vec3{1, 0, 0}, Direction(q))

	assert.Equal(t, mgl32.QuatIdent(), LookRotation(mgl32.Vec3{1, 1, 1}, mgl32.Vec3{1, 1, 1}))
}

func TestWants(t *testing.T) {
	assert.True(t, Wants(nil, data.TransformGroup))
	assert.True(t, Wants([]string{data.MaterialGroup, data.TransformGroup}, data.TransformGroup))
	assert.False(t, Wants([]string{data.MaterialGroup}, data.TransformGroup))
}

func TestShapeExtent(t *testing.T) {
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, ShapeExtent(model.NewProcedural(model.Cube, "")))
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, ShapeExtent(model.NewProcedural(model.Sphere, "")))
	assert.Equal(t, mgl32.Vec3{1, 0, 1}, ShapeExtent(model.NewProcedural(model.Plane, "")))
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, ShapeExtent(model.NewObject(model.Geometry, "Ship")))
}
