package engineconfig

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/sirupsen/logrus"

	"scene-engine/internal/engine"
)

// EngineConfigPath is the path to the engine config file, relative to the process working directory.
const EngineConfigPath = "config/engine.json"

// EnginePrefs holds engine-only preferences (backend, library, logging, console). Persisted across runs.
// Projects are saved separately.
type EnginePrefs struct {
	Backend         string     `json:"backend"`
	LibraryDir      string     `json:"library_dir"`
	LogFile         string     `json:"log_file,omitempty"`
	LogLevel        string     `json:"log_level"`
	ScriptTimeoutMS int        `json:"script_timeout_ms"`
	Resolution      [2]float32 `json:"resolution"`
	GridVisible     bool       `json:"grid_visible"`
	ShowConsole     bool       `json:"show_console"`
	ShowFPS         bool       `json:"show_fps"`
	ShowMemAlloc    bool       `json:"show_memalloc"`
	ShowStatus      bool       `json:"show_status"`
}

// Default returns default engine preferences (raylib backend, grid and status on, console and debug overlays off).
func Default() EnginePrefs {
	return EnginePrefs{
		Backend:         string(engine.Raylib),
		LibraryDir:      "library",
		LogLevel:        "info",
		ScriptTimeoutMS: 2000,
		Resolution:      [2]float32{1280, 720},
		GridVisible:     true,
		ShowConsole:     false,
		ShowStatus:      true,
	}
}

// Load reads engine preferences from config/engine.json. A missing file yields Default();
// an invalid one yields Default() and the error. No file is created.
func Load() (EnginePrefs, error) {
	return LoadFrom(EngineConfigPath)
}

// LoadFrom reads preferences from path. Fields absent from the file keep their defaults.
// A missing file yields Default(); a malformed one yields Default() and the decode error.
func LoadFrom(path string) (EnginePrefs, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Default(), nil
	}
	p := Default()
	if err := json.Unmarshal(data, &p); err != nil {
		return Default(), fmt.Errorf("config %s: %w", path, err)
	}
	return p, nil
}

// Save writes engine preferences to config/engine.json, creating the config directory if needed.
func Save(p EnginePrefs) error {
	return SaveTo(EngineConfigPath, p)
}

func SaveTo(path string, p EnginePrefs) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(p, "", "\t")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// EngineBackend parses Backend.
func (p EnginePrefs) EngineBackend() (engine.Backend, error) {
	return engine.ParseBackend(p.Backend)
}

// Level parses LogLevel, falling back to info.
func (p EnginePrefs) Level() logrus.Level {
	lvl, err := logrus.ParseLevel(p.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}

// ScriptTimeout is the per-call script budget; zero disables it.
func (p EnginePrefs) ScriptTimeout() time.Duration {
	if p.ScriptTimeoutMS <= 0 {
		return 0
	}
	return time.Duration(p.ScriptTimeoutMS) * time.Millisecond
}

// Viewport is Resolution with non-positive sizes replaced by the default.
func (p EnginePrefs) Viewport() mgl32.Vec2 {
	r := p.Resolution
	if r[0] <= 0 || r[1] <= 0 {
		r = Default().Resolution
	}
	return mgl32.Vec2(r)
}
