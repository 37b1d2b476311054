package script

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dop251/goja"
	"github.com/google/uuid"

	"scene-engine/internal/engine"
	"scene-engine/internal/model"
)

// Context is one goja runtime bound to one scripted object.
type Context struct {
	host  *Host
	obj   *model.Object
	world engine.World
	vm    *goja.Runtime
	m     marshaller

	handles map[string]uuid.UUID
	proxies map[proxyKey]*goja.Object
	nextRef int
	loaded  map[string]bool
	closed  bool
}

func newContext(h *Host, o *model.Object, w engine.World) *Context {
	vm := goja.New()
	return &Context{
		host:    h,
		obj:     o,
		world:   w,
		vm:      vm,
		m:       marshaller{vm: vm},
		handles: make(map[string]uuid.UUID),
		proxies: make(map[proxyKey]*goja.Object),
		loaded:  make(map[string]bool),
	}
}

// install sets print, console, require and the proxies, requires math and assigns the
// object's script data. Malformed script data is reported but not fatal.
func (c *Context) install() error {
	vm := c.vm
	if err := vm.Set("print", c.printer("")); err != nil {
		return err
	}
	console := vm.NewObject()
	_ = console.Set("log", c.printer(""))
	_ = console.Set("info", c.printer(""))
	_ = console.Set("warn", c.printer("warning: "))
	_ = console.Set("error", c.printer("error: "))
	if err := vm.Set("console", console); err != nil {
		return err
	}
	if err := vm.Set("require", c.require); err != nil {
		return err
	}

	scene := c.sceneProxy()
	if err := vm.Set("scene", scene); err != nil {
		return err
	}
	if cam := c.world.Camera(); cam != nil {
		if err := vm.Set("camera", c.bind(cameraKind, "__ci", cam.Object().ID, c.cameraProxy)); err != nil {
			return err
		}
	}
	target := scene
	if c.obj.Type != model.SceneType {
		target = c.bind(objectKind, "__oi", c.obj.ID, c.objectProxy)
		if err := vm.Set("object", target); err != nil {
			return err
		}
	}

	if err := c.load("math"); err != nil {
		return fmt.Errorf("require math: %w", err)
	}
	if strings.TrimSpace(c.obj.ScriptData) != "" {
		data, err := c.parseJSON(c.obj.ScriptData)
		if err != nil {
			c.report(fmt.Errorf("script data: %w", err))
		} else {
			_ = target.Set("data", data)
		}
	}
	return nil
}

func (c *Context) parseJSON(src string) (goja.Value, error) {
	var out goja.Value
	err := c.guard(func() error {
		json, ok := c.vm.Get("JSON").(*goja.Object)
		if !ok {
			return errors.New("JSON unavailable")
		}
		parse, ok := goja.AssertFunction(json.Get("parse"))
		if !ok {
			return errors.New("JSON.parse unavailable")
		}
		v, err := parse(json, c.vm.ToValue(src))
		out = v
		return err
	})
	return out, err
}

// eval runs src and reports any error.
func (c *Context) eval(name, src string) error {
	err := c.guard(func() error {
		_, err := c.vm.RunScript(name, src)
		return err
	})
	if err != nil {
		c.report(err)
	}
	return err
}

// Has reports whether the script defines a global function fn.
func (c *Context) Has(fn string) bool {
	if c.closed {
		return false
	}
	_, ok := goja.AssertFunction(c.vm.Get(fn))
	return ok
}

// Call invokes the global function fn with arg. Errors are logged as
// "Error in <object>: <message>" and returned.
func (c *Context) Call(fn string, arg any) error {
	if c.closed {
		return nil
	}
	f, ok := goja.AssertFunction(c.vm.Get(fn))
	if !ok {
		return nil
	}
	err := c.guard(func() error {
		_, err := f(goja.Undefined(), c.vm.ToValue(arg))
		return err
	})
	if err != nil {
		c.report(err)
	}
	return err
}

// Close drops the runtime's bindings. Later calls are no-ops.
func (c *Context) Close() {
	if c.closed {
		return
	}
	c.closed = true
	c.vm.ClearInterrupt()
	clear(c.handles)
	clear(c.proxies)
}

// guard runs fn under the host's time limit and turns Go panics into errors.
func (c *Context) guard(fn func() error) (err error) {
	if d := c.host.timeout; d > 0 {
		t := time.AfterFunc(d, func() { c.vm.Interrupt("execution timeout") })
		defer func() {
			t.Stop()
			c.vm.ClearInterrupt()
		}()
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}

func (c *Context) report(err error) {
	c.host.log.Log(fmt.Sprintf("Error in %s: %s", c.obj.Name, message(err)))
	c.host.diag.WithError(err).WithField("object", c.obj.Name).Debug("script error")
}

// message extracts the script-level error text without the goja stack suffix.
func message(err error) string {
	var exc *goja.Exception
	if errors.As(err, &exc) {
		if v := exc.Value(); v != nil {
			return v.String()
		}
	}
	var intr *goja.InterruptedError
	if errors.As(err, &intr) {
		return fmt.Sprint(intr.Value())
	}
	return err.Error()
}

func (c *Context) printer(prefix string) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		parts := make([]string, len(call.Arguments))
		for i, a := range call.Arguments {
			parts[i] = display(a)
		}
		c.host.log.Log(prefix + strings.Join(parts, " "))
		return goja.Undefined()
	}
}

func display(v goja.Value) string {
	if obj, ok := v.(*goja.Object); ok {
		if s, ok := goja.AssertFunction(obj.Get("toString")); ok && obj.ClassName() == "Object" {
			if out, err := s(obj); err == nil && out.String() != "[object Object]" {
				return out.String()
			}
		}
		return fmt.Sprint(v.Export())
	}
	return v.String()
}

// require loads a library module once per context.
func (c *Context) require(call goja.FunctionCall) goja.Value {
	name := call.Argument(0).String()
	if err := c.load(name); err != nil {
		panic(c.vm.NewGoError(err))
	}
	return c.vm.ToValue(true)
}

func (c *Context) load(name string) error {
	if c.loaded[name] {
		return nil
	}
	src, err := c.host.source(name)
	if err != nil {
		return err
	}
	c.loaded[name] = true
	if _, err := c.vm.RunScript(name, src); err != nil {
		return fmt.Errorf("module %s: %w", name, err)
	}
	return nil
}
