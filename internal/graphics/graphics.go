package graphics

import (
	"image"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Window describes the main window. Fullscreen ignores Width and Height and uses the monitor size.
type Window struct {
	Title      string
	Width      int32
	Height     int32
	Fullscreen bool
}

// Run starts the window and main loop. Each frame it calls update (e.g. input), then clears the screen and calls draw.
// ESC toggles the console, so it does not quit; close via window button.
func Run(w Window, update, draw func()) {
	if w.Fullscreen {
		rl.SetConfigFlags(rl.FlagFullscreenMode)
		w.Width, w.Height = int32(rl.GetMonitorWidth(0)), int32(rl.GetMonitorHeight(0))
	} else {
		rl.SetConfigFlags(rl.FlagWindowResizable)
	}
	rl.InitWindow(w.Width, w.Height, w.Title)
	defer rl.CloseWindow()

	rl.SetExitKey(rl.KeyNull)
	rl.SetTargetFPS(60)

	for !rl.WindowShouldClose() {
		update()

		rl.BeginDrawing()
		rl.ClearBackground(rl.Black)
		draw()
		rl.EndDrawing()
	}
}

// Blitter draws CPU-rendered frames to the window. The texture of the previous frame is
// released on the next Draw, after raylib has flushed it.
type Blitter struct {
	tex    rl.Texture2D
	loaded bool
}

// Draw uploads img and draws it at the window origin. Call between BeginDrawing and EndDrawing.
func (b *Blitter) Draw(img image.Image) {
	b.Unload()
	im := rl.NewImageFromImage(img)
	b.tex = rl.LoadTextureFromImage(im)
	rl.UnloadImage(im)
	b.loaded = true
	rl.DrawTexture(b.tex, 0, 0, rl.White)
}

func (b *Blitter) Unload() {
	if b.loaded {
		rl.UnloadTexture(b.tex)
		b.loaded = false
	}
}
