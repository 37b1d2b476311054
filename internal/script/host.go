// Package script runs object scripts in goja. Each scripted object gets its own runtime
// for the length of one play session, with scene, object and camera proxies bound to
// engine entities.
package script

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"scene-engine/internal/engine"
	"scene-engine/internal/model"
)

//go:embed jslibs/*.js
var builtinLibs embed.FS

// Host creates scripting contexts. It is safe to share between scenes.
type Host struct {
	log     engine.Log
	libs    []fs.FS
	timeout time.Duration
	diag    logrus.FieldLogger
}

// Option configures a Host.
type Option func(*Host)

// WithLibraryDir adds an on-disk directory searched for require()d modules before the
// built-in ones.
func WithLibraryDir(dir string) Option {
	return func(h *Host) {
		if dir != "" {
			h.libs = append([]fs.FS{os.DirFS(dir)}, h.libs...)
		}
	}
}

// WithLibraries adds fsys (module files at its root) ahead of the built-in modules.
func WithLibraries(fsys fs.FS) Option {
	return func(h *Host) { h.libs = append([]fs.FS{fsys}, h.libs...) }
}

// WithTimeout interrupts any single evaluation or callback running longer than d.
// Zero disables the limit.
func WithTimeout(d time.Duration) Option {
	return func(h *Host) { h.timeout = d }
}

// WithDiag sets the diagnostics logger.
func WithDiag(l logrus.FieldLogger) Option {
	return func(h *Host) { h.diag = l }
}

// NewHost returns a host writing script output and errors to log.
func NewHost(log engine.Log, opts ...Option) *Host {
	if log == nil {
		log = discard{}
	}
	sub, _ := fs.Sub(builtinLibs, "jslibs")
	h := &Host{
		log:  log,
		libs: []fs.FS{sub},
		diag: logrus.StandardLogger(),
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

type discard struct{}

func (discard) Log(string) {}
func (discard) Clear() {}

// source finds a module by name, trying name and name.js in every library in order.
func (h *Host) source(name string) (string, error) {
	name = strings.TrimPrefix(path.Clean("/"+name), "/")
	if name == "" || name == "." {
		return "", fmt.Errorf("invalid module name")
	}
	candidates := []string{name}
	if path.Ext(name) != ".js" {
		candidates = []string{name + ".js", name}
	}
	for _, lib := range h.libs {
		for _, c := range candidates {
			b, err := fs.ReadFile(lib, c)
			if err == nil {
				return string(b), nil
			}
		}
	}
	return "", fmt.Errorf("module %q not found", name)
}

// NewContext builds a runtime for o, installs the globals and proxies, loads the math
// module and the object's data, then evaluates its script. Evaluation errors are logged
// and returned along with the context, whose declared callbacks stay usable.
func (h *Host) NewContext(o *model.Object, w engine.World) (engine.ScriptContext, error) {
	c := newContext(h, o, w)
	if err := c.install(); err != nil {
		c.report(err)
		return c, err
	}
	if err := c.eval(o.Name, o.Script); err != nil {
		return c, err
	}
	return c, nil
}
