package engine

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"scene-engine/internal/data"
	"scene-engine/internal/model"
)

// Forward is the local forward axis of every entity.
var Forward = mgl32.Vec3{0, 0, -1}

const epsilon = 1e-6

// SafeQuat normalizes q. Zero-length or non-finite input becomes the identity.
func SafeQuat(q mgl32.Quat) mgl32.Quat {
	if !finite(q.W) || !finite(q.V[0]) || !finite(q.V[1]) || !finite(q.V[2]) {
		return mgl32.QuatIdent()
	}
	if q.Len() < epsilon {
		return mgl32.QuatIdent()
	}
	return q.Normalize()
}

func finite(f float32) bool {
	return !math32.IsNaN(f) && !math32.IsInf(f, 0)
}

// EulerQuat converts XYZ Euler angles in degrees to a quaternion.
func EulerQuat(deg mgl32.Vec3) mgl32.Quat {
	return mgl32.AnglesToQuat(
		mgl32.DegToRad(deg[0]),
		mgl32.DegToRad(deg[1]),
		mgl32.DegToRad(deg[2]),
		mgl32.XYZ,
	)
}

// Direction rotates Forward by q.
func Direction(q mgl32.Quat) mgl32.Vec3 {
	return SafeQuat(q).Rotate(Forward)
}

// Compose builds translate * rotate * scale.
func Compose(pos mgl32.Vec3, q mgl32.Quat, scale mgl32.Vec3) mgl32.Mat4 {
	return mgl32.Translate3D(pos[0], pos[1], pos[2]).
		Mul4(SafeQuat(q).Mat4()).
		Mul4(mgl32.Scale3D(scale[0], scale[1], scale[2]))
}

// Decompose splits an affine matrix into translation, rotation and scale. Shear is dropped.
func Decompose(m mgl32.Mat4) (pos mgl32.Vec3, q mgl32.Quat, scale mgl32.Vec3) {
	pos = m.Col(3).Vec3()
	var rot mgl32.Mat3
	for i := 0; i < 3; i++ {
		c := m.Col(i).Vec3()
		s := c.Len()
		scale[i] = s
		if s > epsilon {
			c = c.Mul(1 / s)
		}
		rot.SetCol(i, c)
	}
	q = SafeQuat(mgl32.Mat4ToQuat(rot.Mat4()))
	return pos, q, scale
}

// TRS is the decoded Transform group of an object.
type TRS struct {
	Position mgl32.Vec3
	Rotation mgl32.Vec3 // degrees
	Scale    mgl32.Vec3
}

// Quat is the rotation as a quaternion.
func (t TRS) Quat() mgl32.Quat { return EulerQuat(t.Rotation) }

// Matrix is the composed local transform.
func (t TRS) Matrix() mgl32.Mat4 { return Compose(t.Position, t.Quat(), t.Scale) }

// ReadTransform decodes a Transform group. A nil group yields the identity transform.
func ReadTransform(g *data.Group) TRS {
	return TRS{
		Position: mgl32.Vec3(g.GetFloat3("Position", data.Vec3{})),
		Rotation: mgl32.Vec3(g.GetFloat3("Rotation", data.Vec3{})),
		Scale:    mgl32.Vec3(g.GetFloat3("Scale", data.Vec3{1, 1, 1})),
	}
}

// Material is the decoded Material group.
type Material struct {
	Color     mgl32.Vec4
	Metallic  float32
	Roughness float32
	Texture   string // library asset name, empty for none
}

// ReadMaterial decodes a Material group. A nil group yields opaque white.
func ReadMaterial(g *data.Group) Material {
	return Material{
		Color:     mgl32.Vec4(g.GetFloat4("Color", data.Vec4{1, 1, 1, 1})),
		Metallic:  g.GetFloat("Metallic", 0),
		Roughness: g.GetFloat("Roughness", 0.5),
		Texture:   g.GetText("Texture", ""),
	}
}

// CameraParams is the decoded Camera group.
type CameraParams struct {
	Position mgl32.Vec3
	LookAt   mgl32.Vec3
	FOV      float32 // vertical, degrees
}

// ReadCamera decodes a Camera group.
func ReadCamera(g *data.Group) CameraParams {
	return CameraParams{
		Position: mgl32.Vec3(g.GetFloat3("Position", data.Vec3{0, 0, 3})),
		LookAt:   mgl32.Vec3(g.GetFloat3("LookAt", data.Vec3{})),
		FOV:      g.GetFloat("FOV", 60),
	}
}

// LookRotation returns the orientation whose forward axis points from eye to target.
// Roll is not constrained.
func LookRotation(eye, target mgl32.Vec3) mgl32.Quat {
	dir := target.Sub(eye)
	if dir.Len() < epsilon {
		return mgl32.QuatIdent()
	}
	return SafeQuat(mgl32.QuatBetweenVectors(Forward, dir.Normalize()))
}

// ShapeExtent is the full size of a Procedural object's shape before the Transform scale:
// a cube's Size, a sphere's diameter, a plane's Size on X and Z with no thickness.
// Other objects are a unit cube.
func ShapeExtent(o *model.Object) mgl32.Vec3 {
	g := o.Group(data.ProceduralGroup)
	switch {
	case o.Type != model.Procedural:
		return mgl32.Vec3{1, 1, 1}
	case o.Shape == model.Sphere:
		d := 2 * g.GetFloat("Radius", 0.5)
		return mgl32.Vec3{d, d, d}
	case o.Shape == model.Plane:
		s := g.GetFloat2("Size", data.Vec2{1, 1})
		return mgl32.Vec3{s[0], 0, s[1]}
	default:
		return mgl32.Vec3(g.GetFloat3("Size", data.Vec3{1, 1, 1}))
	}
}
