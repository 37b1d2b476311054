package data

import (
	"fmt"
	"sort"

	"github.com/jinzhu/copier"
)

// Well-known group names.
const (
	TransformGroup  = "Transform"
	MaterialGroup   = "Material"
	ProceduralGroup = "Procedural"
	PhysicsGroup    = "Physics"
	CameraGroup     = "Camera"
	SettingsGroup   = "Settings"
)

// Groups maps a group name to its Group.
type Groups struct {
	Groups map[string]*Group `json:"groups"`
}

// NewGroups returns an empty set of groups.
func NewGroups() *Groups {
	return &Groups{Groups: make(map[string]*Group)}
}

// Get returns the named group or nil. A nil *Groups has no groups.
func (gs *Groups) Get(name string) *Group {
	if gs == nil {
		return nil
	}
	return gs.Groups[name]
}

// AddGroup stores g under name. If a group of that name already exists, the entities of g
// it lacks are merged in and the existing values are kept, so projects saved by older
// versions pick up new parameters with their defaults.
func (gs *Groups) AddGroup(name string, g *Group) {
	if gs.Groups == nil {
		gs.Groups = make(map[string]*Group)
	}
	if ex, ok := gs.Groups[name]; ok && ex != nil {
		ex.merge(g)
		return
	}
	g.Name = name
	gs.Groups[name] = g
}

// Names returns the group names in sorted order.
func (gs *Groups) Names() []string {
	if gs == nil {
		return nil
	}
	names := make([]string, 0, len(gs.Groups))
	for n := range gs.Groups {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Clone returns a deep copy.
func (gs *Groups) Clone() (*Groups, error) {
	out := NewGroups()
	if gs == nil {
		return out, nil
	}
	if err := copier.CopyWithOption(out, gs, copier.Option{DeepCopy: true}); err != nil {
		return nil, fmt.Errorf("clone data groups: %w", err)
	}
	return out, nil
}

// Validate checks every entity type and the (key, type, time) uniqueness inside each group.
func (gs *Groups) Validate() error {
	if gs == nil {
		return nil
	}
	for _, name := range gs.Names() {
		g := gs.Groups[name]
		if g == nil {
			return fmt.Errorf("group %q: null", name)
		}
		for i, e := range g.Data {
			if e == nil {
				return fmt.Errorf("group %q: entity %d is null", name, i)
			}
			if !e.Type.Valid() {
				return fmt.Errorf("group %q: key %q: unknown type %q", name, e.Key, e.Type)
			}
			for _, prev := range g.Data[:i] {
				if prev.Key == e.Key && prev.Type == e.Type && sameTime(prev.Time, e.Time) {
					return fmt.Errorf("group %q: duplicate key %q (%s)", name, e.Key, e.Type)
				}
			}
		}
	}
	return nil
}
