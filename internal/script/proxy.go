package script

import (
	"fmt"

	"github.com/dop251/goja"
	"github.com/google/uuid"

	"scene-engine/internal/engine"
	"scene-engine/internal/model"
)

// Proxies are plain objects with accessor properties. Each one carries an opaque handle
// (stored as the hidden __id property) that the context maps to an object ID; every access
// resolves the entity again, so a proxy whose entity was removed reads as undefined.

// proxyKind separates the views of one object: a scripted camera gets both an object
// proxy (object) and a camera proxy (camera).
type proxyKind uint8

const (
	sceneKind proxyKind = iota
	objectKind
	cameraKind
)

type proxyKey struct {
	kind proxyKind
	id   uuid.UUID
}

func (c *Context) bind(kind proxyKind, handle string, id uuid.UUID, build func(handle string) *goja.Object) *goja.Object {
	key := proxyKey{kind, id}
	if p, ok := c.proxies[key]; ok {
		return p
	}
	c.handles[handle] = id
	p := build(handle)
	_ = p.DefineDataProperty("__id", c.vm.ToValue(handle), goja.FLAG_FALSE, goja.FLAG_FALSE, goja.FLAG_FALSE)
	c.proxies[key] = p
	return p
}

func (c *Context) nextHandle() string {
	c.nextRef++
	return fmt.Sprintf("__ref%d", c.nextRef)
}

func (c *Context) entity(handle string) engine.Entity {
	id, ok := c.handles[handle]
	if !ok {
		return nil
	}
	return c.world.Entity(id)
}

// proxyFor returns the proxy matching o's kind.
func (c *Context) proxyFor(o *model.Object) goja.Value {
	switch {
	case o.ID == c.world.Root().ID:
		return c.sceneProxy()
	case c.world.Entity(o.ID) == nil:
		return goja.Null()
	case o.Type == model.Camera:
		return c.bind(cameraKind, c.nextHandle(), o.ID, c.cameraProxy)
	default:
		return c.bind(objectKind, c.nextHandle(), o.ID, c.objectProxy)
	}
}

func (c *Context) accessor(obj *goja.Object, name string, get func() goja.Value, set func(v goja.Value)) {
	getter := c.vm.ToValue(func(goja.FunctionCall) goja.Value { return get() })
	var setter goja.Value
	if set != nil {
		setter = c.vm.ToValue(func(call goja.FunctionCall) goja.Value {
			set(call.Argument(0))
			return goja.Undefined()
		})
	}
	_ = obj.DefineAccessorProperty(name, getter, setter, goja.FLAG_FALSE, goja.FLAG_TRUE)
}

func (c *Context) method(obj *goja.Object, name string, fn func(call goja.FunctionCall) goja.Value) {
	_ = obj.Set(name, fn)
}

// with resolves handle and runs fn on the entity, returning undefined when it is gone.
func (c *Context) with(handle string, fn func(e engine.Entity) goja.Value) goja.Value {
	e := c.entity(handle)
	if e == nil {
		return goja.Undefined()
	}
	return fn(e)
}

func (c *Context) sceneProxy() *goja.Object {
	return c.bind(sceneKind, "__si", c.world.Root().ID, func(h string) *goja.Object {
		p := c.vm.NewObject()
		c.accessor(p, "name", func() goja.Value {
			return c.vm.ToValue(c.world.Root().Name)
		}, nil)
		c.accessor(p, "resolution", func() goja.Value {
			return c.m.FromVec2(c.world.Resolution())
		}, nil)
		c.accessor(p, "camera", func() goja.Value {
			cam := c.world.Camera()
			if cam == nil {
				return goja.Null()
			}
			return c.bind(cameraKind, "__ci", cam.Object().ID, c.cameraProxy)
		}, nil)
		c.method(p, "getObject", func(call goja.FunctionCall) goja.Value {
			o := c.world.FindObject(call.Argument(0).String())
			if o == nil {
				return goja.Null()
			}
			return c.proxyFor(o)
		})
		return p
	})
}

// spatial installs what objects and cameras share.
func (c *Context) spatial(p *goja.Object, h string) {
	c.accessor(p, "name", func() goja.Value {
		return c.with(h, func(e engine.Entity) goja.Value { return c.vm.ToValue(e.Object().Name) })
	}, nil)
	c.accessor(p, "position", func() goja.Value {
		return c.with(h, func(e engine.Entity) goja.Value { return c.m.FromVec3(e.Position()) })
	}, func(v goja.Value) {
		if e := c.entity(h); e != nil {
			e.SetPosition(ToVec3(v))
		}
	})
	c.accessor(p, "orientation", func() goja.Value {
		return c.with(h, func(e engine.Entity) goja.Value { return c.m.FromQuat(e.Orientation()) })
	}, func(v goja.Value) {
		if e := c.entity(h); e != nil {
			e.SetOrientation(ToQuat(v))
		}
	})
	c.accessor(p, "transform", func() goja.Value {
		return c.with(h, func(e engine.Entity) goja.Value { return c.m.FromMat4(e.Transform()) })
	}, func(v goja.Value) {
		if e := c.entity(h); e != nil {
			e.SetTransform(ToMat4(v))
		}
	})
	c.method(p, "getDirection", func(goja.FunctionCall) goja.Value {
		return c.with(h, func(e engine.Entity) goja.Value { return c.m.FromVec3(e.Direction()) })
	})
	c.method(p, "setEuler", func(call goja.FunctionCall) goja.Value {
		if e := c.entity(h); e != nil {
			e.SetEulerAngles(ToVec3(call.Argument(0)))
		}
		return goja.Undefined()
	})
}

func (c *Context) objectProxy(h string) *goja.Object {
	p := c.vm.NewObject()
	c.spatial(p, h)
	c.accessor(p, "isActive", func() goja.Value {
		return c.with(h, func(e engine.Entity) goja.Value { return c.vm.ToValue(e.IsActive()) })
	}, func(v goja.Value) {
		if e := c.entity(h); e != nil {
			e.SetActive(v != nil && v.ToBoolean())
		}
	})
	c.method(p, "clone", func(goja.FunctionCall) goja.Value {
		e := c.entity(h)
		if e == nil {
			return goja.Null()
		}
		cl, err := e.Clone()
		if err != nil {
			c.report(fmt.Errorf("clone %s: %w", e.Object().Name, err))
			return goja.Null()
		}
		c.world.TrackClone(cl)
		return c.bind(objectKind, c.nextHandle(), cl.Object().ID, c.objectProxy)
	})
	c.method(p, "addForce", func(call goja.FunctionCall) goja.Value {
		if e := c.entity(h); e != nil {
			e.AddForce(ToVec3(call.Argument(0)), ToVec3(call.Argument(1)))
		}
		return goja.Undefined()
	})
	c.method(p, "applyImpulse", func(call goja.FunctionCall) goja.Value {
		if e := c.entity(h); e != nil {
			e.ApplyImpulse(ToVec3(call.Argument(0)), ToVec3(call.Argument(1)))
		}
		return goja.Undefined()
	})
	return p
}

func (c *Context) cameraProxy(h string) *goja.Object {
	p := c.vm.NewObject()
	c.spatial(p, h)
	c.accessor(p, "lookAt", func() goja.Value {
		return c.with(h, func(e engine.Entity) goja.Value { return c.m.FromVec3(e.LookAt()) })
	}, func(v goja.Value) {
		if e := c.entity(h); e != nil {
			e.SetLookAt(ToVec3(v))
		}
	})
	return p
}
