package model

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Decode reads a project document. On any error no project is returned.
func Decode(r io.Reader) (*Project, error) {
	var p Project
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		return nil, fmt.Errorf("decode project: %w", err)
	}
	for _, s := range p.Scenes {
		if s == nil {
			return nil, fmt.Errorf("decode project: null scene")
		}
		if s.Type != SceneType {
			return nil, fmt.Errorf("decode project: top-level object %q is a %s", s.Name, s.Type)
		}
	}
	var bad error
	for _, s := range p.Scenes {
		Walk(s, func(o *Object) bool {
			if bad != nil {
				return false
			}
			if !o.Type.Valid() {
				bad = fmt.Errorf("%w: %q (%s)", ErrUnknownType, o.Type, o.Name)
				return false
			}
			for _, c := range o.Children {
				if c == nil {
					bad = fmt.Errorf("object %s has a null child", o.Name)
					return false
				}
			}
			if err := o.DataGroups.Validate(); err != nil {
				bad = fmt.Errorf("object %s: %w", o.Name, err)
				return false
			}
			ApplyDefaults(o)
			return true
		})
	}
	if bad != nil {
		return nil, fmt.Errorf("decode project: %w", bad)
	}
	if err := p.Reparent(); err != nil {
		return nil, fmt.Errorf("decode project: %w", err)
	}
	return &p, nil
}

// Encode writes the project document as indented JSON.
func Encode(w io.Writer, p *Project) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(p); err != nil {
		return fmt.Errorf("encode project: %w", err)
	}
	return nil
}

// LoadFile reads a project from path.
func LoadFile(path string) (*Project, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open project: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// SaveFile writes a project to path, creating the directory if needed.
func SaveFile(path string, p *Project) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create project: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create project: %w", err)
	}
	if err := Encode(f, p); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
