package primitives

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Shape names a unit mesh. Cube and plane are 1 wide, the sphere has diameter 1, all
// centered on the origin.
type Shape string

const (
	Cube   Shape = "cube"
	Sphere Shape = "sphere"
	Plane  Shape = "plane"
)

// cached holds mesh and material for one mesh key. texturedMtl is used when drawing with
// an albedo texture (same mesh, different material).
type cached struct {
	mesh        rl.Mesh
	mtl         rl.Material
	texturedMtl rl.Material
}

// Item is one draw request. Transform places the unit mesh in world space.
type Item struct {
	Shape     Shape
	Segments  int // sphere rings and slices, 0 for the default
	Model     string
	Texture   string
	Color     rl.Color
	Transform rl.Matrix
}

// Registry caches meshes, textures and models by key. Everything is created on first
// draw so that GPU resources are allocated after the window/OpenGL context exists.
type Registry struct {
	cache    map[string]cached
	textures map[string]rl.Texture2D
	models   map[string]rl.Model
	viewPos  [3]float32
	lightDir [3]float32
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		cache:    make(map[string]cached),
		textures: make(map[string]rl.Texture2D),
		models:   make(map[string]rl.Model),
		lightDir: [3]float32{0.5, 1, 0.5},
	}
}

// SetView sets camera position and direction-to-light for this frame. Call once per frame
// before drawing so lit meshes get correct shading.
func (r *Registry) SetView(viewPos, lightDir [3]float32) {
	r.viewPos = viewPos
	r.lightDir = lightDir
}

const defaultSphereSegments = 16

func (r *Registry) ensure(shape Shape, segments int) (cached, bool) {
	if segments < 3 {
		segments = defaultSphereSegments
	}
	key := string(shape)
	if shape == Sphere {
		key = fmt.Sprintf("sphere/%d", segments)
	}
	if c, ok := r.cache[key]; ok {
		return c, true
	}
	var mesh rl.Mesh
	switch shape {
	case Cube:
		mesh = rl.GenMeshCube(1, 1, 1)
	case Sphere:
		mesh = rl.GenMeshSphere(0.5, segments, segments)
	case Plane:
		mesh = rl.GenMeshPlane(1, 1, 1, 1)
	default:
		return cached{}, false
	}
	mtl := rl.LoadMaterialDefault()
	if shader := loadLitShader(); rl.IsShaderValid(shader) {
		mtl.Shader = shader
	}
	texturedMtl := rl.LoadMaterialDefault()
	if ts := loadLitTexturedShader(); rl.IsShaderValid(ts) {
		texturedMtl.Shader = ts
	}
	c := cached{mesh: mesh, mtl: mtl, texturedMtl: texturedMtl}
	r.cache[key] = c
	return c, true
}

// Texture returns the texture loaded from path, loading it on first use.
func (r *Registry) Texture(path string) (rl.Texture2D, bool) {
	if path == "" {
		return rl.Texture2D{}, false
	}
	tex, ok := r.textures[path]
	if !ok {
		tex = rl.LoadTexture(path)
		r.textures[path] = tex
	}
	return tex, rl.IsTextureValid(tex)
}

func (r *Registry) model(path string) rl.Model {
	m, ok := r.models[path]
	if !ok {
		m = rl.LoadModel(path)
		r.models[path] = m
	}
	return m
}

// Draw draws one item. Must be called between BeginMode3D and EndMode3D.
func (r *Registry) Draw(it Item) {
	if it.Model != "" {
		m := r.model(it.Model)
		m.Transform = it.Transform
		rl.DrawModel(m, rl.NewVector3(0, 0, 0), 1, it.Color)
		return
	}
	c, ok := r.ensure(it.Shape, it.Segments)
	if !ok {
		return
	}
	mtl := c.mtl
	if tex, ok := r.Texture(it.Texture); ok {
		mtl = c.texturedMtl
		rl.SetMaterialTexture(&mtl, rl.MapAlbedo, tex)
	}
	if albedo := mtl.GetMap(rl.MapAlbedo); albedo != nil {
		albedo.Color = it.Color
	}
	r.setLitShaderUniforms(mtl.Shader)
	rl.DrawMesh(c.mesh, mtl, it.Transform)
}

// Unload releases every GPU resource. The registry can be reused afterwards.
func (r *Registry) Unload() {
	for _, c := range r.cache {
		rl.UnloadMesh(&c.mesh)
		rl.UnloadShader(c.mtl.Shader)
		rl.UnloadShader(c.texturedMtl.Shader)
	}
	for _, t := range r.textures {
		rl.UnloadTexture(t)
	}
	for _, m := range r.models {
		rl.UnloadModel(m)
	}
	clear(r.cache)
	clear(r.textures)
	clear(r.models)
}

func loadLitShader() rl.Shader {
	return rl.LoadShaderFromMemory(litVS, litFS)
}

// loadLitTexturedShader samples the albedo texture before lighting.
func loadLitTexturedShader() rl.Shader {
	return rl.LoadShaderFromMemory(litVS, litTexturedFS)
}

const (
	litVS = `#version 330
in vec3 vertexPosition;
in vec2 vertexTexCoord;
in vec3 vertexNormal;
uniform mat4 matProjection;
uniform mat4 matView;
uniform mat4 matModel;
out vec3 fragPosition;
out vec2 fragTexCoord;
out vec3 fragNormal;
void main() {
  vec4 worldPos = matModel * vec4(vertexPosition, 1.0);
  fragPosition = worldPos.xyz;
  fragTexCoord = vertexTexCoord;
  fragNormal = mat3(matModel) * vertexNormal;
  gl_Position = matProjection * matView * worldPos;
}
`
	litFS = `#version 330
in vec3 fragPosition;
in vec2 fragTexCoord;
in vec3 fragNormal;
uniform vec4 colDiffuse;
uniform vec3 viewPos;
uniform vec3 lightDir;
uniform vec4 ambient;
uniform vec3 lightColor;
uniform float lightIntensity;
uniform float specularPower;
uniform float specularStrength;
out vec4 finalColor;
void main() {
  vec4 tint = colDiffuse;
  vec3 N = normalize(fragNormal);
  vec3 L = normalize(lightDir);
  vec3 V = normalize(viewPos - fragPosition);
  float NdotL = max(dot(N, L), 0.0);
  vec3 diffuse = tint.rgb * NdotL * lightColor * lightIntensity;
  vec3 amb = ambient.rgb * tint.rgb;
  vec3 H = normalize(L + V);
  float NdotH = max(dot(N, H), 0.0);
  float spec = pow(NdotH, specularPower) * specularStrength;
  vec3 specular = lightColor * spec * (NdotL > 0.0 ? 1.0 : 0.0);
  finalColor = vec4(amb + diffuse + specular, tint.a);
}
`
	litTexturedFS = `#version 330
in vec3 fragPosition;
in vec2 fragTexCoord;
in vec3 fragNormal;
uniform vec4 colDiffuse;
uniform vec3 viewPos;
uniform vec3 lightDir;
uniform vec4 ambient;
uniform vec3 lightColor;
uniform float lightIntensity;
uniform float specularPower;
uniform float specularStrength;
uniform sampler2D albedoMap;
out vec4 finalColor;
void main() {
  vec4 tint = texture(albedoMap, fragTexCoord) * colDiffuse;
  vec3 N = normalize(fragNormal);
  vec3 L = normalize(lightDir);
  vec3 V = normalize(viewPos - fragPosition);
  float NdotL = max(dot(N, L), 0.0);
  vec3 diffuse = tint.rgb * NdotL * lightColor * lightIntensity;
  vec3 amb = ambient.rgb * tint.rgb;
  vec3 H = normalize(L + V);
  float NdotH = max(dot(N, H), 0.0);
  float spec = pow(NdotH, specularPower) * specularStrength;
  vec3 specular = lightColor * spec * (NdotL > 0.0 ? 1.0 : 0.0);
  finalColor = vec4(amb + diffuse + specular, tint.a);
}
`
)

var (
	defaultAmbient    = [4]float32{0.2, 0.22, 0.26, 1.0}
	defaultLightColor = [3]float32{1.0, 0.98, 0.95}
)

const (
	defaultLightIntensity   = float32(0.75)
	defaultSpecularPower    = float32(48.0)
	defaultSpecularStrength = float32(0.35)
)

// setLitShaderUniforms sets the light and view uniforms (cgo-safe: local arrays).
func (r *Registry) setLitShaderUniforms(shader rl.Shader) {
	if !rl.IsShaderValid(shader) {
		return
	}
	viewPos := r.viewPos
	lightDir := r.lightDir
	amb := defaultAmbient
	lightColor := defaultLightColor
	if loc := rl.GetShaderLocation(shader, "viewPos"); loc >= 0 {
		rl.SetShaderValueV(shader, loc, viewPos[:], rl.ShaderUniformVec3, 1)
	}
	if loc := rl.GetShaderLocation(shader, "lightDir"); loc >= 0 {
		rl.SetShaderValueV(shader, loc, lightDir[:], rl.ShaderUniformVec3, 1)
	}
	if loc := rl.GetShaderLocation(shader, "ambient"); loc >= 0 {
		rl.SetShaderValueV(shader, loc, amb[:], rl.ShaderUniformVec4, 1)
	}
	if loc := rl.GetShaderLocation(shader, "lightColor"); loc >= 0 {
		rl.SetShaderValueV(shader, loc, lightColor[:], rl.ShaderUniformVec3, 1)
	}
	if loc := rl.GetShaderLocation(shader, "lightIntensity"); loc >= 0 {
		rl.SetShaderValue(shader, loc, []float32{defaultLightIntensity}, rl.ShaderUniformFloat)
	}
	if loc := rl.GetShaderLocation(shader, "specularPower"); loc >= 0 {
		rl.SetShaderValue(shader, loc, []float32{defaultSpecularPower}, rl.ShaderUniformFloat)
	}
	if loc := rl.GetShaderLocation(shader, "specularStrength"); loc >= 0 {
		rl.SetShaderValue(shader, loc, []float32{defaultSpecularStrength}, rl.ShaderUniformFloat)
	}
}
