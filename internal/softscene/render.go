package softscene

import (
	"fmt"
	"image"
	"sort"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gg"

	"scene-engine/internal/engine"
	"scene-engine/internal/model"
)

const (
	nearZ   = 0.1
	farZ    = 1000
	ambient = 0.35
)

var lightDir = mgl32.Vec3{0.5, 1, 0.5}.Normalize()

// shape is one filled silhouette in screen space: a polygon, or a circle when radius > 0.
type shape struct {
	pts    []mgl32.Vec2
	center mgl32.Vec2
	radius float32
	depth  float32
	color  mgl32.Vec4
}

type camera struct {
	eye      mgl32.Vec3
	viewProj mgl32.Mat4
	w, h     float32
	focal    float32 // pixels per unit at depth 1
}

func (s *Scene) camera(w, h int) camera {
	eye, target, fov := mgl32.Vec3{0, 0, 3}, mgl32.Vec3{}, float32(60)
	if cam, ok := s.Camera().(*Entity); ok {
		eye, target, fov = cam.pos, cam.target, cam.fov
	}
	if fov <= 0 || fov >= 180 {
		fov = 60
	}
	up := mgl32.Vec3{0, 1, 0}
	if target.Sub(eye).Normalize().Cross(up).Len() < 1e-4 {
		up = mgl32.Vec3{0, 0, -1}
	}
	fw, fh := float32(w), float32(h)
	half := mgl32.DegToRad(fov) / 2
	proj := mgl32.Perspective(2*half, fw/fh, nearZ, farZ)
	return camera{
		eye:      eye,
		viewProj: proj.Mul4(mgl32.LookAtV(eye, target, up)),
		w:        fw,
		h:        fh,
		focal:    fh / 2 / math32.Tan(half),
	}
}

// project maps a world point to pixels. ok is false behind the near plane.
func (c camera) project(p mgl32.Vec3) (px mgl32.Vec2, depth float32, ok bool) {
	clip := c.viewProj.Mul4x1(p.Vec4(1))
	if clip.W() <= nearZ {
		return mgl32.Vec2{}, 0, false
	}
	ndc := clip.Vec3().Mul(1 / clip.W())
	return mgl32.Vec2{(ndc.X() + 1) / 2 * c.w, (1 - ndc.Y()) / 2 * c.h}, clip.W(), true
}

// unit is half the side of the unit cube and plane.
const unit = 0.5

var cubeFaces = [6]struct {
	normal  mgl32.Vec3
	corners [4]mgl32.Vec3
}{
	{mgl32.Vec3{0, 0, 1}, [4]mgl32.Vec3{{-unit, -unit, unit}, {unit, -unit, unit}, {unit, unit, unit}, {-unit, unit, unit}}},
	{mgl32.Vec3{0, 0, -1}, [4]mgl32.Vec3{{unit, -unit, -unit}, {-unit, -unit, -unit}, {-unit, unit, -unit}, {unit, unit, -unit}}},
	{mgl32.Vec3{1, 0, 0}, [4]mgl32.Vec3{{unit, -unit, unit}, {unit, -unit, -unit}, {unit, unit, -unit}, {unit, unit, unit}}},
	{mgl32.Vec3{-1, 0, 0}, [4]mgl32.Vec3{{-unit, -unit, -unit}, {-unit, -unit, unit}, {-unit, unit, unit}, {-unit, unit, -unit}}},
	{mgl32.Vec3{0, 1, 0}, [4]mgl32.Vec3{{-unit, unit, unit}, {unit, unit, unit}, {unit, unit, -unit}, {-unit, unit, -unit}}},
	{mgl32.Vec3{0, -1, 0}, [4]mgl32.Vec3{{-unit, -unit, -unit}, {unit, -unit, -unit}, {unit, -unit, unit}, {-unit, -unit, unit}}},
}

var planeCorners = [4]mgl32.Vec3{{-unit, 0, -unit}, {unit, 0, -unit}, {unit, 0, unit}, {-unit, 0, unit}}

func shade(c mgl32.Vec4, lambert float32) mgl32.Vec4 {
	f := ambient + (1-ambient)*math32.Max(0, lambert)
	return mgl32.Vec4{c[0] * f, c[1] * f, c[2] * f, c[3]}
}

// polygon projects corners through m. It returns false when any corner is behind the camera.
func (c camera) polygon(m mgl32.Mat4, corners []mgl32.Vec3, col mgl32.Vec4) (shape, bool) {
	sh := shape{pts: make([]mgl32.Vec2, len(corners)), color: col}
	for i, p := range corners {
		px, depth, ok := c.project(mgl32.TransformCoordinate(p, m))
		if !ok {
			return shape{}, false
		}
		sh.pts[i] = px
		sh.depth += depth / float32(len(corners))
	}
	return sh, true
}

func (c camera) appendShapes(out []shape, e *Entity) []shape {
	if !e.active || e.removed {
		return out
	}
	o := e.Obj
	if o.Type != model.Procedural && o.Type != model.Geometry {
		return out
	}
	ext := engine.ShapeExtent(o)
	size := mgl32.Vec3{e.scale[0] * ext[0], e.scale[1] * ext[1], e.scale[2] * ext[2]}
	m := engine.Compose(e.pos, e.rot, size)
	col := e.material.Color

	switch {
	case o.Type == model.Procedural && o.Shape == model.Sphere:
		px, depth, ok := c.project(e.pos)
		if !ok {
			return out
		}
		r := math32.Max(math32.Abs(size[0]), math32.Max(math32.Abs(size[1]), math32.Abs(size[2]))) / 2
		if r <= 0 {
			return out
		}
		return append(out, shape{center: px, radius: r * c.focal / depth, depth: depth, color: col})
	case o.Type == model.Procedural && o.Shape == model.Plane:
		n := e.rot.Rotate(mgl32.Vec3{0, 1, 0})
		if sh, ok := c.polygon(m, planeCorners[:], shade(col, math32.Abs(n.Dot(lightDir)))); ok {
			out = append(out, sh)
		}
		return out
	}

	for _, f := range cubeFaces {
		n := e.rot.Rotate(f.normal)
		center := mgl32.TransformCoordinate(f.normal.Mul(unit), m)
		if n.Dot(c.eye.Sub(center)) <= 0 {
			continue
		}
		if sh, ok := c.polygon(m, f.corners[:], shade(col, n.Dot(lightDir))); ok {
			out = append(out, sh)
		}
	}
	return out
}

// Render draws the scene into a w×h image: background, then every active entity in
// back-to-front order, flat shaded from one directional light. Textures are not sampled.
func (s *Scene) Render(w, h int) (image.Image, error) {
	dc, err := s.render(w, h)
	if err != nil {
		return nil, err
	}
	defer dc.Close()
	return dc.Image(), nil
}

// Snapshot renders at the viewport size and writes a PNG to path.
func (s *Scene) Snapshot(path string) error {
	res := s.Viewport()
	dc, err := s.render(int(res[0]), int(res[1]))
	if err != nil {
		return err
	}
	defer dc.Close()
	if err := dc.SavePNG(path); err != nil {
		return fmt.Errorf("snapshot %s: %w", path, err)
	}
	return nil
}

func (s *Scene) render(w, h int) (*gg.Context, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("render: invalid size %dx%d", w, h)
	}
	cam := s.camera(w, h)
	var shapes []shape
	for _, o := range model.Collect(s.Root()) {
		if e, ok := s.Entity(o.ID).(*Entity); ok {
			shapes = cam.appendShapes(shapes, e)
		}
	}
	for _, c := range s.Clones() {
		if e, ok := c.(*Entity); ok {
			shapes = cam.appendShapes(shapes, e)
		}
	}
	sort.SliceStable(shapes, func(i, j int) bool { return shapes[i].depth > shapes[j].depth })

	dc := gg.NewContext(w, h)
	bg := s.background
	dc.ClearWithColor(gg.RGBA2(float64(bg[0]), float64(bg[1]), float64(bg[2]), float64(bg[3])))
	for _, sh := range shapes {
		c := sh.color
		dc.SetRGBA(float64(c[0]), float64(c[1]), float64(c[2]), float64(c[3]))
		if sh.radius > 0 {
			dc.DrawCircle(float64(sh.center[0]), float64(sh.center[1]), float64(sh.radius))
		} else {
			dc.MoveTo(float64(sh.pts[0][0]), float64(sh.pts[0][1]))
			for _, p := range sh.pts[1:] {
				dc.LineTo(float64(p[0]), float64(p[1]))
			}
			dc.ClosePath()
		}
		if err := dc.Fill(); err != nil {
			_ = dc.Close()
			return nil, fmt.Errorf("render: %w", err)
		}
	}
	return dc, nil
}
