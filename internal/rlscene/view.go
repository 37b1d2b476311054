package rlscene

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"scene-engine/internal/data"
	"scene-engine/internal/engine"
	"scene-engine/internal/model"
	"scene-engine/internal/primitives"
)

const (
	gridExtent     = 50
	gridMinorStep  = 1
	gridMajorStep  = 10
	gridMinorAlpha = 50
	gridMajorAlpha = 120
	axisLineAlpha  = 220
	skyboxScale    = 1000
)

// equirectAspectMin/Max: width/height ratio for an equirectangular panorama (typically 2:1).
const (
	equirectAspectMin = 1.8
	equirectAspectMax = 2.2
)

// View holds the editor camera, grid and skybox. The scene camera is used while playing
// and whenever the editor camera has not been moved.
type View struct {
	Camera      rl.Camera3D
	GridVisible bool
	free        bool

	skyboxPath      string
	skyboxPending   bool // path known, GPU load deferred until the next Draw
	skyboxLoaded    bool
	skyboxEquirect  bool // panorama (2D texture + shader), otherwise a cubemap
	skyboxTex       rl.Texture2D
	skyboxMesh      rl.Mesh
	skyboxMtl       rl.Material
	skyboxCamPosLoc int32
	skyboxTexLoc    int32
}

func newView() *View {
	v := &View{GridVisible: true}
	v.Camera.Position = rl.NewVector3(10, 10, 10)
	v.Camera.Target = rl.NewVector3(0, 0, 0)
	v.Camera.Up = rl.NewVector3(0, 1, 0)
	v.Camera.Fovy = 45
	v.Camera.Projection = rl.CameraPerspective
	return v
}

// setSkybox replaces the skybox image. An empty path removes it.
func (v *View) setSkybox(path string) {
	if path == v.skyboxPath {
		return
	}
	v.unload()
	v.skyboxPath = path
	v.skyboxPending = path != ""
}

// ensureSkyboxLoaded runs on Draw with a pending skybox so that textures load after the
// window/OpenGL context exists.
func (v *View) ensureSkyboxLoaded() {
	if !v.skyboxPending {
		return
	}
	v.skyboxPending = false

	img := rl.LoadImage(v.skyboxPath)
	if img == nil || img.Width <= 0 || img.Height <= 0 {
		return
	}
	aspect := float32(img.Width) / float32(img.Height)
	v.skyboxEquirect = aspect >= equirectAspectMin && aspect <= equirectAspectMax

	if !v.skyboxEquirect {
		v.skyboxTex = rl.LoadTextureCubemap(img, rl.CubemapLayoutAutoDetect)
		rl.UnloadImage(img)
		if !rl.IsTextureValid(v.skyboxTex) {
			return
		}
		v.skyboxMesh = rl.GenMeshCube(1, 1, 1)
		v.skyboxMtl = rl.LoadMaterialDefault()
		rl.SetMaterialTexture(&v.skyboxMtl, rl.MapCubemap, v.skyboxTex)
		v.skyboxLoaded = true
		return
	}

	v.skyboxTex = rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	if !rl.IsTextureValid(v.skyboxTex) {
		return
	}
	shader := rl.LoadShaderFromMemory(equirectVS, equirectFS)
	if !rl.IsShaderValid(shader) {
		rl.UnloadTexture(v.skyboxTex)
		return
	}
	v.skyboxMesh = rl.GenMeshCube(1, 1, 1)
	v.skyboxMtl = rl.LoadMaterialDefault()
	v.skyboxMtl.Shader = shader
	v.skyboxCamPosLoc = rl.GetShaderLocation(shader, "cameraPosition")
	v.skyboxTexLoc = rl.GetShaderLocation(shader, "skybox")
	v.skyboxLoaded = true
}

func (v *View) unload() {
	if !v.skyboxLoaded {
		return
	}
	if v.skyboxEquirect {
		rl.UnloadShader(v.skyboxMtl.Shader)
	}
	rl.UnloadTexture(v.skyboxTex)
	rl.UnloadMesh(&v.skyboxMesh)
	v.skyboxLoaded = false
}

// Equirectangular skybox shader: samples a 2D panorama by view direction.
const (
	equirectVS = `#version 330
in vec3 vertexPosition;
uniform mat4 matProjection;
uniform mat4 matView;
uniform mat4 matModel;
out vec3 fragWorldPos;
void main() {
  vec4 worldPos = matModel * vec4(vertexPosition, 1.0);
  fragWorldPos = worldPos.xyz;
  gl_Position = matProjection * matView * worldPos;
}
`
	equirectFS = `#version 330
in vec3 fragWorldPos;
out vec4 finalColor;
uniform sampler2D skybox;
uniform vec3 cameraPosition;
void main() {
  vec3 dir = normalize(fragWorldPos - cameraPosition);
  float lon = atan(dir.z, dir.x);
  float lat = asin(clamp(dir.y, -1.0, 1.0));
  float u = lon / 6.28318530718 + 0.5;
  float v = 0.5 - lat / 3.14159265359;
  finalColor = texture(skybox, vec2(u, v));
}
`
)

// sceneCamera is the camera described by the scene's Camera entity, or the editor camera
// when the scene has none.
func (s *Scene) sceneCamera() rl.Camera3D {
	cam, ok := s.Camera().(*Entity)
	if !ok {
		return s.view.Camera
	}
	return rl.Camera3D{
		Position:   cam.position,
		Target:     cam.target,
		Up:         rl.NewVector3(0, 1, 0),
		Fovy:       cam.fovy,
		Projection: rl.CameraPerspective,
	}
}

// Update moves the editor camera while the right mouse button is held and the scene is
// stopped.
func (s *Scene) Update() {
	if s.IsPlaying() || !rl.IsMouseButtonDown(rl.MouseButtonRight) {
		return
	}
	if !s.view.free {
		s.view.Camera = s.sceneCamera()
		s.view.free = true
	}
	rl.UpdateCamera(&s.view.Camera, rl.CameraFree)
}

// Draw renders the scene: background, skybox, grid, then every active entity in document
// order followed by clones. Call between BeginDrawing and EndDrawing.
func (s *Scene) Draw() {
	v := s.view
	cam := s.sceneCamera()
	if v.free {
		cam = v.Camera
	}
	rl.ClearBackground(s.background)
	v.ensureSkyboxLoaded()
	s.prims.SetView(array(cam.Position), [3]float32{0.5, 1, 0.5})

	rl.BeginMode3D(cam)
	if v.skyboxLoaded {
		v.drawSkybox(cam.Position)
	}
	if v.GridVisible {
		drawEditorGrid()
	}
	for _, o := range model.Collect(s.Root()) {
		if e, ok := s.Entity(o.ID).(*Entity); ok {
			s.draw(e)
		}
	}
	for _, c := range s.Clones() {
		if e, ok := c.(*Entity); ok {
			s.draw(e)
		}
	}
	rl.EndMode3D()
}

func (s *Scene) draw(e *Entity) {
	if !e.active || e.removed {
		return
	}
	o := e.Obj
	it := primitives.Item{
		Color:   color(e.material.Color),
		Texture: e.texture,
	}
	switch o.Type {
	case model.Procedural:
		ext := engine.ShapeExtent(o)
		for i := range ext {
			if ext[i] == 0 {
				ext[i] = 1
			}
		}
		scale := rl.NewVector3(e.scale.X*ext[0], e.scale.Y*ext[1], e.scale.Z*ext[2])
		it.Shape = meshShape(o.Shape)
		it.Segments = o.Group(data.ProceduralGroup).GetInt("Segments", 0)
		it.Transform = trs(e.position, e.rotation, scale)
	case model.Geometry:
		if e.model == "" {
			return
		}
		it.Model = e.model
		it.Transform = trs(e.position, e.rotation, e.scale)
	default:
		return
	}
	s.prims.Draw(it)
}

func meshShape(sh model.Shape) primitives.Shape {
	switch sh {
	case model.Plane:
		return primitives.Plane
	case model.Sphere:
		return primitives.Sphere
	default:
		return primitives.Cube
	}
}

// drawSkybox draws the skybox as a large cube centered on the camera.
func (v *View) drawSkybox(pos rl.Vector3) {
	rl.DisableDepthMask()
	rl.DisableBackfaceCulling()
	scale := rl.MatrixScale(skyboxScale, skyboxScale, skyboxScale)
	trans := rl.MatrixTranslate(pos.X, pos.Y, pos.Z)
	transform := rl.MatrixMultiply(scale, trans)
	if v.skyboxEquirect {
		if v.skyboxCamPosLoc >= 0 {
			camPos := []float32{pos.X, pos.Y, pos.Z}
			rl.SetShaderValueV(v.skyboxMtl.Shader, v.skyboxCamPosLoc, camPos, rl.ShaderUniformVec3, 1)
		}
		if v.skyboxTexLoc >= 0 {
			rl.SetShaderValueTexture(v.skyboxMtl.Shader, v.skyboxTexLoc, v.skyboxTex)
		}
	}
	rl.DrawMesh(v.skyboxMesh, v.skyboxMtl, transform)
	rl.EnableBackfaceCulling()
	rl.EnableDepthMask()
}

// drawEditorGrid draws a grid on the XZ plane with major/minor lines and axis lines.
func drawEditorGrid() {
	minor := rl.NewColor(128, 128, 128, gridMinorAlpha)
	major := rl.NewColor(160, 160, 160, gridMajorAlpha)
	axisX := rl.NewColor(220, 80, 80, axisLineAlpha)
	axisY := rl.NewColor(80, 220, 80, axisLineAlpha)
	axisZ := rl.NewColor(80, 80, 220, axisLineAlpha)

	var start, end rl.Vector3
	for i := -gridExtent; i <= gridExtent; i += gridMinorStep {
		c := major
		if i%gridMajorStep != 0 {
			c = minor
		}
		start.X, start.Y, start.Z = float32(i), 0, -gridExtent
		end.X, end.Y, end.Z = float32(i), 0, gridExtent
		rl.DrawLine3D(start, end, c)
		start.X, start.Y, start.Z = -gridExtent, 0, float32(i)
		end.X, end.Y, end.Z = gridExtent, 0, float32(i)
		rl.DrawLine3D(start, end, c)
	}

	rl.DrawLine3D(rl.NewVector3(-gridExtent, 0, 0), rl.NewVector3(gridExtent, 0, 0), axisX)
	rl.DrawLine3D(rl.NewVector3(0, -gridExtent, 0), rl.NewVector3(0, gridExtent, 0), axisY)
	rl.DrawLine3D(rl.NewVector3(0, 0, -gridExtent), rl.NewVector3(0, 0, gridExtent), axisZ)
}
