package rlscene

import (
	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"
)

func vec3(v mgl32.Vec3) rl.Vector3 { return rl.NewVector3(v[0], v[1], v[2]) }

func fromVec3(v rl.Vector3) mgl32.Vec3 { return mgl32.Vec3{v.X, v.Y, v.Z} }

func quat(q mgl32.Quat) rl.Quaternion { return rl.NewQuaternion(q.V[0], q.V[1], q.V[2], q.W) }

func fromQuat(q rl.Quaternion) mgl32.Quat {
	return mgl32.Quat{W: q.W, V: mgl32.Vec3{q.X, q.Y, q.Z}}
}

func array(v rl.Vector3) [3]float32 { return [3]float32{v.X, v.Y, v.Z} }

// fromMatrix reads a raylib matrix into column-major order.
func fromMatrix(m rl.Matrix) mgl32.Mat4 {
	return mgl32.Mat4{
		m.M0, m.M1, m.M2, m.M3,
		m.M4, m.M5, m.M6, m.M7,
		m.M8, m.M9, m.M10, m.M11,
		m.M12, m.M13, m.M14, m.M15,
	}
}

// trs builds scale, then rotation, then translation.
func trs(pos rl.Vector3, q rl.Quaternion, scale rl.Vector3) rl.Matrix {
	m := rl.MatrixMultiply(rl.MatrixScale(scale.X, scale.Y, scale.Z), rl.QuaternionToMatrix(q))
	return rl.MatrixMultiply(m, rl.MatrixTranslate(pos.X, pos.Y, pos.Z))
}

func color(c mgl32.Vec4) rl.Color {
	ch := func(f float32) uint8 {
		if math32.IsNaN(f) {
			return 0
		}
		return uint8(math32.Max(0, math32.Min(1, f))*255 + 0.5)
	}
	return rl.NewColor(ch(c[0]), ch(c[1]), ch(c[2]), ch(c[3]))
}
