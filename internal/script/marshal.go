package script

import (
	"strconv"

	"github.com/chewxy/math32"
	"github.com/dop251/goja"
	"github.com/go-gl/mathgl/mgl32"
)

// Conversions between engine values and script values. Reading builds CT.Math instances
// (plain objects when the math library is not loaded). Writing is total: a missing,
// non-numeric or non-finite field reads as 0, a non-object reads as the zero value and a
// matrix without exactly 16 elements reads as the identity.

type marshaller struct {
	vm *goja.Runtime
}

// ctor returns CT.Math.<name> when it is a constructor.
func (m marshaller) ctor(name string) goja.Value {
	ct, ok := m.vm.Get("CT").(*goja.Object)
	if !ok {
		return nil
	}
	ns, ok := ct.Get("Math").(*goja.Object)
	if !ok {
		return nil
	}
	c := ns.Get(name)
	if _, ok := goja.AssertFunction(c); !ok {
		return nil
	}
	return c
}

func (m marshaller) build(name string, keys []string, vals []float32) goja.Value {
	if c := m.ctor(name); c != nil {
		args := make([]goja.Value, len(vals))
		for i, v := range vals {
			args[i] = m.vm.ToValue(float64(v))
		}
		if obj, err := m.vm.New(c, args...); err == nil {
			return obj
		}
	}
	obj := m.vm.NewObject()
	for i, k := range keys {
		_ = obj.Set(k, float64(vals[i]))
	}
	return obj
}

var (
	xy   = []string{"x", "y"}
	xyz  = []string{"x", "y", "z"}
	xyzw = []string{"x", "y", "z", "w"}
)

func (m marshaller) FromVec2(v mgl32.Vec2) goja.Value {
	return m.build("Vector2", xy, v[:])
}

func (m marshaller) FromVec3(v mgl32.Vec3) goja.Value {
	return m.build("Vector3", xyz, v[:])
}

func (m marshaller) FromQuat(q mgl32.Quat) goja.Value {
	return m.build("Quaternion", xyzw, []float32{q.V[0], q.V[1], q.V[2], q.W})
}

func (m marshaller) FromMat4(mat mgl32.Mat4) goja.Value {
	elems := make([]interface{}, 16)
	for i, f := range mat {
		elems[i] = float64(f)
	}
	arr := m.vm.NewArray(elems...)
	if c := m.ctor("Matrix4"); c != nil {
		if obj, err := m.vm.New(c, arr); err == nil {
			return obj
		}
	}
	obj := m.vm.NewObject()
	_ = obj.Set("elements", arr)
	return obj
}

func number(v goja.Value) float32 {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return 0
	}
	f := float32(v.ToFloat())
	if math32.IsNaN(f) || math32.IsInf(f, 0) {
		return 0
	}
	return f
}

func fields(v goja.Value, keys []string, out []float32) {
	obj, ok := v.(*goja.Object)
	if !ok {
		return
	}
	for i, k := range keys {
		out[i] = number(obj.Get(k))
	}
}

// ToVec3 reads {x, y, z}.
func ToVec3(v goja.Value) (out mgl32.Vec3) {
	fields(v, xyz, out[:])
	return out
}

// ToQuat reads {x, y, z, w}. Malformed input yields the zero quaternion, which entities
// treat as identity.
func ToQuat(v goja.Value) mgl32.Quat {
	var f [4]float32
	fields(v, xyzw, f[:])
	return mgl32.Quat{W: f[3], V: mgl32.Vec3{f[0], f[1], f[2]}}
}

// ToMat4 reads a column-major {elements: [16]}.
func ToMat4(v goja.Value) mgl32.Mat4 {
	obj, ok := v.(*goja.Object)
	if !ok {
		return mgl32.Ident4()
	}
	elems, ok := obj.Get("elements").(*goja.Object)
	if !ok {
		return mgl32.Ident4()
	}
	if n := elems.Get("length"); n == nil || n.ToInteger() != 16 {
		return mgl32.Ident4()
	}
	var out mgl32.Mat4
	for i := range out {
		out[i] = number(elems.Get(strconv.Itoa(i)))
	}
	return out
}
