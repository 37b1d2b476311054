package data

// Type is the logical value type of an Entity. Storage is always four floats.
type Type string

const (
	Int    Type = "Int"
	Float  Type = "Float"
	Float2 Type = "Float2"
	Float3 Type = "Float3"
	Float4 Type = "Float4"
)

// Usage tells an editor how to present the value.
type Usage string

const (
	Numeric Usage = "Numeric"
	Slider  Usage = "Slider"
	Color   Usage = "Color"
	Menu    Usage = "Menu"
)

// Feature marks entities with extra meaning, e.g. Texture entities carry an asset name in Text.
type Feature string

const (
	None    Feature = "None"
	Texture Feature = "Texture"
)

// Vec2, Vec3 and Vec4 are the plain value shapes handed out by Group accessors.
type (
	Vec2 [2]float32
	Vec3 [3]float32
	Vec4 [4]float32
)

// Entity is one typed, keyed parameter. Value is stored four wide regardless of Type;
// unused lanes are zero. Time is reserved for keyframes and is nil for the static value.
type Entity struct {
	Key          string   `json:"key"`
	Type         Type     `json:"type"`
	Usage        Usage    `json:"usage"`
	Feature      Feature  `json:"feature"`
	Value        Vec4     `json:"value"`
	DefaultValue Vec4     `json:"defaultValue"`
	Range        Vec2     `json:"range"`
	Time         *float64 `json:"time"`
	Text         string   `json:"text"`
}

// Option adjusts presentation fields of an entity created by a Group setter.
type Option func(*Entity)

// WithRange sets the editor range.
func WithRange(min, max float32) Option {
	return func(e *Entity) { e.Range = Vec2{min, max} }
}

// WithUsage sets the editor usage.
func WithUsage(u Usage) Option {
	return func(e *Entity) { e.Usage = u }
}

// WithFeature sets the entity feature.
func WithFeature(f Feature) Option {
	return func(e *Entity) { e.Feature = f }
}

// WithText sets the entity text (asset name for textures, options for menus).
func WithText(text string) Option {
	return func(e *Entity) { e.Text = text }
}

// AtTime keys the entity at t instead of the static slot.
func AtTime(t float64) Option {
	return func(e *Entity) { e.Time = &t }
}

// NewEntity returns an entity with value v in the lanes Type uses. Defaults follow the
// editor conventions: scalars are sliders over [0,1], vectors are numeric.
func NewEntity(key string, typ Type, v Vec4, opts ...Option) *Entity {
	e := &Entity{
		Key:     key,
		Type:    typ,
		Usage:   Numeric,
		Feature: None,
		Range:   Vec2{0, 1},
	}
	if typ == Int || typ == Float {
		e.Usage = Slider
	}
	for _, o := range opts {
		o(e)
	}
	e.Value = typ.mask(v)
	e.DefaultValue = e.Value
	return e
}

// mask zeroes the lanes a type does not use.
func (t Type) mask(v Vec4) Vec4 {
	switch t {
	case Int, Float:
		return Vec4{v[0], 0, 0, 0}
	case Float2:
		return Vec4{v[0], v[1], 0, 0}
	case Float3:
		return Vec4{v[0], v[1], v[2], 0}
	}
	return v
}

// Valid reports whether t is one of the known types.
func (t Type) Valid() bool {
	switch t {
	case Int, Float, Float2, Float3, Float4:
		return true
	}
	return false
}

func sameTime(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
