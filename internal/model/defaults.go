package model

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"scene-engine/internal/data"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// paramDef is the YAML form of one default parameter.
type paramDef struct {
	Key     string       `yaml:"key"`
	Type    data.Type    `yaml:"type"`
	Value   []float32    `yaml:"value"`
	Range   []float32    `yaml:"range,omitempty"`
	Usage   data.Usage   `yaml:"usage,omitempty"`
	Feature data.Feature `yaml:"feature,omitempty"`
	Text    string       `yaml:"text,omitempty"`
}

type defaultsDoc struct {
	Groups map[string][]paramDef `yaml:"groups"`
	Types  map[Type][]string     `yaml:"types"`
	Shapes map[Shape][]paramDef  `yaml:"shapes"`
}

var loadDefaults = sync.OnceValues(func() (*defaultsDoc, error) {
	var doc defaultsDoc
	if err := yaml.Unmarshal(defaultsYAML, &doc); err != nil {
		return nil, fmt.Errorf("parse defaults: %w", err)
	}
	for name, params := range doc.Groups {
		for _, p := range params {
			if !p.Type.Valid() {
				return nil, fmt.Errorf("defaults: group %s: key %s: unknown type %q", name, p.Key, p.Type)
			}
		}
	}
	return &doc, nil
})

func (p paramDef) entity() *data.Entity {
	var v data.Vec4
	copy(v[:], p.Value)
	var opts []data.Option
	if len(p.Range) == 2 {
		opts = append(opts, data.WithRange(p.Range[0], p.Range[1]))
	}
	if p.Usage != "" {
		opts = append(opts, data.WithUsage(p.Usage))
	}
	if p.Feature != "" {
		opts = append(opts, data.WithFeature(p.Feature))
	}
	if p.Text != "" {
		opts = append(opts, data.WithText(p.Text))
	}
	return data.NewEntity(p.Key, p.Type, v, opts...)
}

func buildGroup(name string, params []paramDef) *data.Group {
	g := data.NewGroup(name)
	for _, p := range params {
		g.Data = append(g.Data, p.entity())
	}
	return g
}

// DefaultGroups returns fresh default groups for an object of type t (and shape, for
// Procedural objects).
func DefaultGroups(t Type, shape Shape) (*data.Groups, error) {
	doc, err := loadDefaults()
	if err != nil {
		return nil, err
	}
	gs := data.NewGroups()
	for _, name := range doc.Types[t] {
		gs.AddGroup(name, buildGroup(name, doc.Groups[name]))
	}
	if t == Procedural {
		if params, ok := doc.Shapes[shape]; ok {
			gs.AddGroup(data.ProceduralGroup, buildGroup(data.ProceduralGroup, params))
		}
	}
	return gs, nil
}

// ApplyDefaults merges the default groups of the object's type into its data groups.
// Existing values win; only missing keys and groups are added.
func ApplyDefaults(o *Object) {
	if o.DataGroups == nil {
		o.DataGroups = data.NewGroups()
	}
	defs, err := DefaultGroups(o.Type, o.Shape)
	if err != nil {
		// The embedded document is fixed at build time; a parse failure is caught by tests.
		return
	}
	for _, name := range defs.Names() {
		o.DataGroups.AddGroup(name, defs.Get(name))
	}
}
