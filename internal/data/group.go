package data

import (
	"strconv"
	"strings"
)

// Group is an ordered, named bag of entities (e.g. "Transform"). A nil *Group is valid
// and answers every lookup with the caller's default.
type Group struct {
	Name string    `json:"name"`
	Data []*Entity `json:"data"`
}

// NewGroup returns a group holding the given entities.
func NewGroup(name string, entities ...*Entity) *Group {
	return &Group{Name: name, Data: entities}
}

// Lookup returns the entity stored under (key, typ, time).
func (g *Group) Lookup(key string, typ Type, time *float64) (*Entity, bool) {
	if g == nil {
		return nil, false
	}
	for _, e := range g.Data {
		if e.Key == key && e.Type == typ && sameTime(e.Time, time) {
			return e, true
		}
	}
	return nil, false
}

func (g *Group) value(key string, typ Type, time *float64) (Vec4, bool) {
	e, ok := g.Lookup(key, typ, time)
	if !ok {
		return Vec4{}, false
	}
	return e.Value, true
}

// Exists reports whether any entity uses key, whatever its type or time.
func (g *Group) Exists(key string) bool {
	if g == nil {
		return false
	}
	for _, e := range g.Data {
		if e.Key == key {
			return true
		}
	}
	return false
}

// GetInt returns the Int stored under key or def.
func (g *Group) GetInt(key string, def int) int {
	if v, ok := g.value(key, Int, nil); ok {
		return int(v[0])
	}
	return def
}

// GetFloat returns the Float stored under key or def.
func (g *Group) GetFloat(key string, def float32) float32 {
	if v, ok := g.value(key, Float, nil); ok {
		return v[0]
	}
	return def
}

// GetFloat2 returns the Float2 stored under key or def.
func (g *Group) GetFloat2(key string, def Vec2) Vec2 {
	if v, ok := g.value(key, Float2, nil); ok {
		return Vec2{v[0], v[1]}
	}
	return def
}

// GetFloat3 returns the Float3 stored under key or def.
func (g *Group) GetFloat3(key string, def Vec3) Vec3 {
	if v, ok := g.value(key, Float3, nil); ok {
		return Vec3{v[0], v[1], v[2]}
	}
	return def
}

// GetFloat4 returns the Float4 stored under key or def.
func (g *Group) GetFloat4(key string, def Vec4) Vec4 {
	if v, ok := g.value(key, Float4, nil); ok {
		return v
	}
	return def
}

// GetText returns the text of the first entity using key, or def.
func (g *Group) GetText(key, def string) string {
	if g == nil {
		return def
	}
	for _, e := range g.Data {
		if e.Key == key {
			return e.Text
		}
	}
	return def
}

// GetMenu returns the selected option name of a Menu entity, or def when the key is
// missing or the index is out of range.
func (g *Group) GetMenu(key, def string) string {
	e, ok := g.Lookup(key, Int, nil)
	if !ok {
		return def
	}
	opts := strings.Split(e.Text, ",")
	i := int(e.Value[0])
	if i < 0 || i >= len(opts) {
		return def
	}
	return strings.TrimSpace(opts[i])
}

// set upserts the entity for (key, typ, time) taken from opts.
func (g *Group) set(key string, typ Type, v Vec4, opts []Option) {
	probe := NewEntity(key, typ, v, opts...)
	if e, ok := g.Lookup(key, typ, probe.Time); ok {
		e.Value = typ.mask(v)
		return
	}
	g.Data = append(g.Data, probe)
}

// SetInt upserts an Int.
func (g *Group) SetInt(key string, v int, opts ...Option) {
	g.set(key, Int, Vec4{float32(v)}, opts)
}

// SetFloat upserts a Float.
func (g *Group) SetFloat(key string, v float32, opts ...Option) {
	g.set(key, Float, Vec4{v}, opts)
}

// SetFloat2 upserts a Float2.
func (g *Group) SetFloat2(key string, v Vec2, opts ...Option) {
	g.set(key, Float2, Vec4{v[0], v[1]}, opts)
}

// SetFloat3 upserts a Float3.
func (g *Group) SetFloat3(key string, v Vec3, opts ...Option) {
	g.set(key, Float3, Vec4{v[0], v[1], v[2]}, opts)
}

// SetFloat4 upserts a Float4.
func (g *Group) SetFloat4(key string, v Vec4, opts ...Option) {
	g.set(key, Float4, v, opts)
}

// SetText sets the text of every entity using key. It reports whether one was found.
func (g *Group) SetText(key, text string) bool {
	if g == nil {
		return false
	}
	found := false
	for _, e := range g.Data {
		if e.Key == key {
			e.Text = text
			found = true
		}
	}
	return found
}

// Keyed is a read view of a group at one keyframe time.
type Keyed struct {
	g *Group
	t float64
}

// At returns the view of g at time t. Lookups match t exactly; there is no interpolation
// between keyframes, so a miss returns the caller's default.
func (g *Group) At(t float64) Keyed {
	return Keyed{g: g, t: t}
}

// GetFloat returns the Float keyed at the view's time or def.
func (k Keyed) GetFloat(key string, def float32) float32 {
	if v, ok := k.g.value(key, Float, &k.t); ok {
		return v[0]
	}
	return def
}

// GetFloat3 returns the Float3 keyed at the view's time or def.
func (k Keyed) GetFloat3(key string, def Vec3) Vec3 {
	if v, ok := k.g.value(key, Float3, &k.t); ok {
		return Vec3{v[0], v[1], v[2]}
	}
	return def
}

// GetFloat4 returns the Float4 keyed at the view's time or def.
func (k Keyed) GetFloat4(key string, def Vec4) Vec4 {
	if v, ok := k.g.value(key, Float4, &k.t); ok {
		return v
	}
	return def
}

// merge appends the entities of src whose (key, type, time) g does not hold yet.
// Existing values are kept.
func (g *Group) merge(src *Group) {
	for _, e := range src.Data {
		if _, ok := g.Lookup(e.Key, e.Type, e.Time); ok {
			continue
		}
		c := *e
		if e.Time != nil {
			t := *e.Time
			c.Time = &t
		}
		g.Data = append(g.Data, &c)
	}
}

// String is a compact debug form, "Transform[Position=0,0,0 ...]".
func (g *Group) String() string {
	if g == nil {
		return "<nil>"
	}
	var b strings.Builder
	b.WriteString(g.Name)
	b.WriteByte('[')
	for i, e := range g.Data {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(e.Key)
		b.WriteByte('=')
		n := 4
		switch e.Type {
		case Int, Float:
			n = 1
		case Float2:
			n = 2
		case Float3:
			n = 3
		}
		for j := 0; j < n; j++ {
			if j > 0 {
				b.WriteByte(',')
			}
			b.WriteString(strconv.FormatFloat(float64(e.Value[j]), 'g', -1, 32))
		}
	}
	b.WriteByte(']')
	return b.String()
}
