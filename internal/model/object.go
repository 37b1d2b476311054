package model

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"

	"scene-engine/internal/data"
)

// Type is the kind of scene object.
type Type string

const (
	Camera     Type = "Camera"
	SceneType  Type = "Scene"
	Procedural Type = "Procedural"
	Geometry   Type = "Geometry"
	Audio      Type = "Audio"
)

// Valid reports whether t is a known object type.
func (t Type) Valid() bool {
	switch t {
	case Camera, SceneType, Procedural, Geometry, Audio:
		return true
	}
	return false
}

// Leaf reports whether objects of this type never hold children.
func (t Type) Leaf() bool {
	return t != SceneType
}

// Shape is the subtype of a Procedural object.
type Shape string

const (
	Plane  Shape = "Plane"
	Sphere Shape = "Sphere"
	Cube   Shape = "Cube"
)

// Object is one node of the scene tree. Parent and scene links are IDs resolved through
// the owning Project; the tree itself is owned by Children.
type Object struct {
	ID         uuid.UUID    `json:"id"`
	Name       string       `json:"name"`
	Type       Type         `json:"type"`
	Shape      Shape        `json:"proceduralSubtype"`
	Children   []*Object    `json:"children"`
	DataGroups *data.Groups `json:"dataGroups"`
	Script     string       `json:"scriptSource"`
	ScriptData string       `json:"scriptDataJSON,omitempty"`
	AssetName  string       `json:"libraryAssetName"`

	parent uuid.UUID
	scene  uuid.UUID
}

// NewObject returns an object of type t with the default data groups of its type.
// Scenes start with an empty child list; leaf types have none.
func NewObject(t Type, name string) *Object {
	if name == "" {
		name = "Unnamed"
	}
	o := &Object{
		ID:         uuid.New(),
		Name:       name,
		Type:       t,
		DataGroups: data.NewGroups(),
	}
	if !t.Leaf() {
		o.Children = []*Object{}
	}
	ApplyDefaults(o)
	return o
}

// NewProcedural returns a Procedural object of the given shape.
func NewProcedural(shape Shape, name string) *Object {
	o := &Object{
		ID:         uuid.New(),
		Name:       name,
		Type:       Procedural,
		Shape:      shape,
		DataGroups: data.NewGroups(),
	}
	if o.Name == "" {
		o.Name = string(shape)
	}
	ApplyDefaults(o)
	return o
}

// Group returns the named data group, or nil.
func (o *Object) Group(name string) *data.Group {
	return o.DataGroups.Get(name)
}

// ParentID is the ID of the parent object, uuid.Nil for a scene root.
func (o *Object) ParentID() uuid.UUID { return o.parent }

// SceneID is the ID of the containing scene root; a scene root is its own scene.
func (o *Object) SceneID() uuid.UUID { return o.scene }

// HasScript reports whether the object carries script source.
func (o *Object) HasScript() bool { return o.Script != "" }

// Clone returns a deep copy with a fresh ID, the same parent and scene links and no
// children. Clones are runtime only and are not added to any project.
func (o *Object) Clone() (*Object, error) {
	c := &Object{}
	if err := copier.CopyWithOption(c, o, copier.Option{DeepCopy: true}); err != nil {
		return nil, fmt.Errorf("clone %s: %w", o.Name, err)
	}
	c.ID = uuid.New()
	c.Children = nil
	if !c.Type.Leaf() {
		c.Children = []*Object{}
	}
	c.parent = o.parent
	c.scene = o.scene
	return c, nil
}

// Walk visits root and its descendants in document order (node, then children depth
// first). Returning false from fn skips the node's children.
func Walk(root *Object, fn func(o *Object) bool) {
	if root == nil || !fn(root) {
		return
	}
	for _, c := range root.Children {
		Walk(c, fn)
	}
}

// Collect returns root and all its descendants in document order.
func Collect(root *Object) []*Object {
	var out []*Object
	Walk(root, func(o *Object) bool {
		out = append(out, o)
		return true
	})
	return out
}

// FindByName returns the first object named name under root (root included), or nil.
func FindByName(root *Object, name string) *Object {
	var found *Object
	Walk(root, func(o *Object) bool {
		if found != nil {
			return false
		}
		if o.Name == name {
			found = o
			return false
		}
		return true
	})
	return found
}

// Link sets the runtime parent and scene links of child from parent. It is used when an
// object is attached outside of a Project reparenting pass.
func Link(parent, child *Object) {
	if parent == nil {
		child.parent = uuid.Nil
		child.scene = child.ID
		return
	}
	child.parent = parent.ID
	child.scene = parent.scene
	if child.scene == uuid.Nil {
		child.scene = parent.ID
	}
}
