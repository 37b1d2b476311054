package engine

import (
	"errors"

	"github.com/go-gl/mathgl/mgl32"

	"scene-engine/internal/model"
)

// ErrNotSupported is returned by operations a backend entity has no concept of.
var ErrNotSupported = errors.New("not supported by this entity")

// Entity is the runtime counterpart of one model.Object inside a backend. Scripts and
// editor "apply" actions reach backend state only through these operations.
//
// Angles are degrees. Matrices are column-major. Operations an entity has no concept of
// are no-ops returning zero values; they never fail.
type Entity interface {
	Object() *model.Object

	Position() mgl32.Vec3
	SetPosition(p mgl32.Vec3)
	Orientation() mgl32.Quat
	// SetOrientation treats a zero-length quaternion as identity.
	SetOrientation(q mgl32.Quat)
	SetEulerAngles(deg mgl32.Vec3)
	Transform() mgl32.Mat4
	SetTransform(m mgl32.Mat4)

	IsActive() bool
	SetActive(active bool)

	// Direction is the forward vector (-Z) rotated by the current orientation.
	Direction() mgl32.Vec3
	// LookAt and SetLookAt only apply to cameras.
	LookAt() mgl32.Vec3
	SetLookAt(target mgl32.Vec3)
	// Resolution is the viewport size in backend pixels.
	Resolution() mgl32.Vec2

	AddForce(direction, position mgl32.Vec3)
	ApplyImpulse(direction, position mgl32.Vec3)

	// Clone returns a new entity backed by its own resource and a fresh object that shares
	// the original's parent. The clone is not part of the project.
	Clone() (Entity, error)
	// UpdateFromModel re-reads the named data groups (all when none are given) and applies
	// them to the backend resource. It is idempotent.
	UpdateFromModel(groups ...string)
	// Remove releases the backend resource.
	Remove()
}

// EntityBase implements every Entity operation as a no-op with zero, identity or default
// results. Backends embed it and override what they support.
type EntityBase struct {
	Obj *model.Object
}

func (b EntityBase) Object() *model.Object { return b.Obj }

func (EntityBase) Position() mgl32.Vec3 { return mgl32.Vec3{} }
func (EntityBase) SetPosition(mgl32.Vec3) {}
func (EntityBase) Orientation() mgl32.Quat { return mgl32.QuatIdent() }
func (EntityBase) SetOrientation(mgl32.Quat) {}
func (EntityBase) SetEulerAngles(mgl32.Vec3) {}
func (EntityBase) Transform() mgl32.Mat4 { return mgl32.Ident4() }
func (EntityBase) SetTransform(mgl32.Mat4) {}
func (EntityBase) IsActive() bool { return true }
func (EntityBase) SetActive(bool) {}
func (EntityBase) Direction() mgl32.Vec3 { return Forward }
func (EntityBase) LookAt() mgl32.Vec3 { return mgl32.Vec3{} }
func (EntityBase) SetLookAt(mgl32.Vec3) {}
func (EntityBase) Resolution() mgl32.Vec2 { return mgl32.Vec2{} }
func (EntityBase) AddForce(_, _ mgl32.Vec3) {}
func (EntityBase) ApplyImpulse(_, _ mgl32.Vec3) {}
func (EntityBase) Clone() (Entity, error) { return nil, ErrNotSupported }
func (EntityBase) UpdateFromModel(...string) {}
func (EntityBase) Remove() {}

// Wants reports whether an UpdateFromModel call with the given filter covers group.
func Wants(filter []string, group string) bool {
	if len(filter) == 0 {
		return true
	}
	for _, g := range filter {
		if g == group {
			return true
		}
	}
	return false
}
