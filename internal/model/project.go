package model

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrDuplicateID is returned when two objects of a project share an ID.
	ErrDuplicateID = errors.New("duplicate object id")
	// ErrUnknownType is returned for objects whose type is not one of the known types.
	ErrUnknownType = errors.New("unknown object type")
)

// Project is the document: a flat list of top-level scenes. It owns every object in the
// trees below them and indexes them by ID.
type Project struct {
	Scenes []*Object `json:"scenes"`

	index map[uuid.UUID]*Object
}

// NewProject returns a project with one scene holding a camera and a sphere.
func NewProject() *Project {
	scene := NewObject(SceneType, "Start Scene")
	scene.Children = append(scene.Children,
		NewObject(Camera, "Camera"),
		NewProcedural(Sphere, "Sphere"),
	)
	p := &Project{Scenes: []*Object{scene}}
	// A freshly built tree cannot collide.
	_ = p.Reparent()
	return p
}

// Reparent walks every scene top-down assigning parent and scene links and rebuilds the ID
// index. It must run after decoding before the tree is used.
func (p *Project) Reparent() error {
	p.index = make(map[uuid.UUID]*Object)
	for _, s := range p.Scenes {
		if err := p.reparent(nil, s, s); err != nil {
			return err
		}
	}
	return nil
}

func (p *Project) reparent(parent, o, scene *Object) error {
	if _, dup := p.index[o.ID]; dup {
		return fmt.Errorf("%w: %s (%s)", ErrDuplicateID, o.ID, o.Name)
	}
	p.index[o.ID] = o
	o.scene = scene.ID
	o.parent = uuid.Nil
	if parent != nil {
		o.parent = parent.ID
	}
	for _, c := range o.Children {
		if err := p.reparent(o, c, scene); err != nil {
			return err
		}
	}
	return nil
}

// Relink assigns parent and scene links for a tree that is not part of a project,
// treating root as the scene root.
func Relink(root *Object) {
	Link(nil, root)
	var link func(o *Object)
	link = func(o *Object) {
		for _, c := range o.Children {
			c.parent = o.ID
			c.scene = root.ID
			link(c)
		}
	}
	link(root)
}

// Lookup returns the object with the given ID, or nil.
func (p *Project) Lookup(id uuid.UUID) *Object {
	return p.index[id]
}

// Parent returns the parent of o, or nil for a scene root.
func (p *Project) Parent(o *Object) *Object {
	if o.parent == uuid.Nil {
		return nil
	}
	return p.index[o.parent]
}

// SceneOf returns the scene root containing o.
func (p *Project) SceneOf(o *Object) *Object {
	return p.index[o.scene]
}

// Add appends o to parent's children, or to the scene list when parent is nil.
func (p *Project) Add(parent, o *Object) error {
	if !o.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownType, o.Type)
	}
	if p.index == nil {
		if err := p.Reparent(); err != nil {
			return err
		}
	}
	for _, n := range Collect(o) {
		if _, dup := p.index[n.ID]; dup {
			return fmt.Errorf("%w: %s (%s)", ErrDuplicateID, n.ID, n.Name)
		}
	}
	if parent == nil {
		if o.Type != SceneType {
			return fmt.Errorf("top-level object %s must be a scene, got %s", o.Name, o.Type)
		}
		p.Scenes = append(p.Scenes, o)
		return p.reparent(nil, o, o)
	}
	if parent.Type.Leaf() {
		return fmt.Errorf("cannot add %s under %s: %s objects hold no children", o.Name, parent.Name, parent.Type)
	}
	parent.Children = append(parent.Children, o)
	return p.reparent(parent, o, p.SceneOf(parent))
}

// Remove detaches o (and its subtree) from the project. It reports whether o was found.
func (p *Project) Remove(o *Object) bool {
	if o.parent == uuid.Nil {
		for i, s := range p.Scenes {
			if s == o {
				p.Scenes = append(p.Scenes[:i], p.Scenes[i+1:]...)
				p.unindex(o)
				return true
			}
		}
		return false
	}
	parent := p.Parent(o)
	if parent == nil {
		return false
	}
	for i, c := range parent.Children {
		if c == o {
			parent.Children = append(parent.Children[:i], parent.Children[i+1:]...)
			p.unindex(o)
			return true
		}
	}
	return false
}

func (p *Project) unindex(o *Object) {
	Walk(o, func(n *Object) bool {
		delete(p.index, n.ID)
		return true
	})
}
