package debug

import (
	"fmt"
	"runtime"

	rl "github.com/gen2brain/raylib-go/raylib"

	"scene-engine/internal/data"
	"scene-engine/internal/engine"
	"scene-engine/internal/model"
)

const (
	fontSize   = 20
	padding    = 12
	lineHeight = fontSize + 4
	// updateInterval: only refresh FPS/Mem text every N frames to reduce allocations.
	updateInterval = 30
)

// Source is what the overlay reports on.
type Source interface {
	Backend() engine.Backend
	IsPlaying() bool
	Selected() *model.Object
	Scene() engine.Scene
}

// Debug draws the top-right overlay: FPS, heap, editor state and the selected object.
type Debug struct {
	ShowFPS      bool
	ShowMemAlloc bool
	ShowStatus   bool

	frameCount  uint32
	lastFpsText string
	lastMemText string
	memStats    runtime.MemStats
}

// New returns a Debug system with all overlays hidden.
func New() *Debug {
	return &Debug{}
}

// Status describes the editor state and the selected object, one line each.
func Status(src Source) []string {
	state := "stopped"
	if src.IsPlaying() {
		state = "playing"
	}
	lines := []string{fmt.Sprintf("%s | %s", src.Backend(), state)}
	o := src.Selected()
	if o == nil {
		return lines
	}
	lines = append(lines, fmt.Sprintf("%s (%s)", o.Name, o.Type))
	var ent engine.Entity
	if s := src.Scene(); s != nil {
		ent = s.Entity(o.ID)
	}
	if ent != nil && o.Type != model.SceneType {
		p := ent.Position()
		lines = append(lines, fmt.Sprintf("Position: %.2f, %.2f, %.2f", p[0], p[1], p[2]))
	}
	if g := o.Group(data.PhysicsGroup); g != nil {
		lines = append(lines, "Physics: "+[]string{"None", "Static", "Dynamic"}[min(max(g.GetInt("Type", 0), 0), 2)])
	}
	if o.HasScript() {
		lines = append(lines, "Script: yes")
	}
	return lines
}

// Draw renders any enabled overlays. Call after scene and console in the draw loop.
// FPS and heap text are only recomputed every updateInterval frames.
func (d *Debug) Draw(src Source) {
	d.frameCount++
	update := d.frameCount%updateInterval == 0
	var lines []string
	if d.ShowFPS {
		if update || d.lastFpsText == "" {
			d.lastFpsText = fmt.Sprintf("FPS: %d", rl.GetFPS())
		}
		lines = append(lines, d.lastFpsText)
	}
	if d.ShowMemAlloc {
		if update || d.lastMemText == "" {
			runtime.ReadMemStats(&d.memStats)
			d.lastMemText = fmt.Sprintf("Mem: %.2f MiB", float64(d.memStats.Alloc)/(1024*1024))
		}
		lines = append(lines, d.lastMemText)
	}
	if d.ShowStatus && src != nil {
		lines = append(lines, Status(src)...)
	}

	screenW := int32(rl.GetScreenWidth())
	y := int32(padding)
	for _, text := range lines {
		w := rl.MeasureText(text, fontSize)
		rl.DrawText(text, screenW-w-padding, y, fontSize, rl.Green)
		y += lineHeight
	}
}
