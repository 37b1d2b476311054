package main

import (
	"image"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"scene-engine/internal/commands"
	"scene-engine/internal/debug"
	"scene-engine/internal/editor"
	"scene-engine/internal/engine"
	"scene-engine/internal/engineconfig"
	"scene-engine/internal/graphics"
	"scene-engine/internal/logger"
	"scene-engine/internal/terminal"
)

type (
	updater  interface{ Update() }
	drawer   interface{ Draw() }
	renderer interface {
		Render(w, h int) (image.Image, error)
	}
	gridder interface{ SetGridVisible(bool) }
)

// windowed runs the editor loop: console, key forwarding to scripts, scene update and draw.
// F5 toggles play.
func windowed(ed *editor.Editor, log *logger.Logger, queue *logger.Queue, reg *commands.Registry, prefs engineconfig.EnginePrefs) {
	term := terminal.New(log, reg, prefs.ShowConsole)
	overlay := debug.New()
	overlay.ShowFPS, overlay.ShowMemAlloc, overlay.ShowStatus = prefs.ShowFPS, prefs.ShowMemAlloc, prefs.ShowStatus
	var (
		blit  graphics.Blitter
		start time.Time
		last  engine.Scene
	)

	update := func() {
		queue.Drain()
		if s := ed.Scene(); s != last {
			last = s
			if g, ok := s.(gridder); ok {
				g.SetGridVisible(prefs.GridVisible)
			}
		}
		term.Update()
		if !term.IsOpen() {
			if rl.IsKeyPressed(rl.KeyF5) {
				if ed.IsPlaying() {
					ed.Stop()
				} else {
					ed.Play()
					start = time.Now()
				}
			}
			graphics.PollKeys(ed.KeyDown, ed.KeyUp)
		}
		if u, ok := ed.Scene().(updater); ok {
			u.Update()
		}
		if ed.IsPlaying() {
			if start.IsZero() {
				start = time.Now()
			}
			ed.Tick(time.Since(start).Seconds())
		} else {
			start = time.Time{}
		}
		queue.Drain()
	}
	draw := func() {
		switch s := ed.Scene().(type) {
		case drawer:
			s.Draw()
		case renderer:
			if img, err := s.Render(int(rl.GetScreenWidth()), int(rl.GetScreenHeight())); err == nil {
				blit.Draw(img)
			}
		}
		term.Draw()
		overlay.Draw(ed)
	}
	res := prefs.Viewport()
	graphics.Run(graphics.Window{Title: "Scene Engine", Width: int32(res[0]), Height: int32(res[1])}, update, draw)
}
