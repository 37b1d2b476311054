package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"scene-engine/internal/assets"
	"scene-engine/internal/commands"
	"scene-engine/internal/editor"
	"scene-engine/internal/engine"
	"scene-engine/internal/engineconfig"
	"scene-engine/internal/logger"
	"scene-engine/internal/script"
)

type flags struct {
	config   string
	project  string
	backend  string
	library  string
	level    string
	headless bool
	frames   int
	snapshot string
}

func parseFlags(args []string) (flags, error) {
	var f flags
	fs := flag.NewFlagSet("editor", flag.ContinueOnError)
	fs.StringVar(&f.config, "config", engineconfig.EngineConfigPath, "engine preferences file")
	fs.StringVar(&f.project, "project", "", "project file to open")
	fs.StringVar(&f.backend, "backend", "", "raylib or soft (overrides config)")
	fs.StringVar(&f.library, "library", "", "asset and script library directory (overrides config)")
	fs.StringVar(&f.level, "log-level", "", "diagnostics level (overrides config)")
	fs.BoolVar(&f.headless, "headless", false, "run without a window")
	fs.IntVar(&f.frames, "frames", 60, "frames to simulate when headless")
	fs.StringVar(&f.snapshot, "snapshot", "", "write a PNG of the final frame when headless (soft backend)")
	if err := fs.Parse(args); err != nil {
		return flags{}, err
	}
	return f, nil
}

// prefs loads the config file and applies flag overrides.
func (f flags) prefs() engineconfig.EnginePrefs {
	p, err := engineconfig.LoadFrom(f.config)
	if err != nil {
		logrus.WithError(err).Warn("using default engine preferences")
	}
	if f.backend != "" {
		p.Backend = f.backend
	}
	if f.library != "" {
		p.LibraryDir = f.library
	}
	if f.level != "" {
		p.LogLevel = f.level
	}
	return p
}

func main() {
	f, err := parseFlags(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}
	if err := run(f); err != nil {
		logrus.WithError(err).Error("editor")
		os.Exit(1)
	}
}

func run(f flags) error {
	prefs := f.prefs()
	logrus.SetLevel(prefs.Level())
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	diag := logrus.WithField("component", "editor")

	backend, err := prefs.EngineBackend()
	if err != nil {
		return err
	}

	var queue logger.Queue
	logOpts := []logger.Option{logger.WithFile(prefs.LogFile)}
	if !f.headless {
		logOpts = append(logOpts, logger.WithDispatch(queue.Post))
	}
	log := logger.New(logOpts...)

	opts := engine.Options{
		Log:        log,
		Diag:       diag,
		Resolution: prefs.Viewport(),
		Scripts: script.NewHost(log,
			script.WithLibraryDir(filepath.Join(prefs.LibraryDir, "scripts")),
			script.WithTimeout(prefs.ScriptTimeout()),
			script.WithDiag(logrus.WithField("component", "script")),
		),
	}
	lib, err := assets.Open(prefs.LibraryDir)
	if err != nil {
		diag.WithError(err).Warn("asset library unavailable")
	} else {
		opts.Assets = lib
	}

	ed, err := editor.New(opts, editor.WithBackend(backend))
	if err != nil {
		return err
	}
	defer ed.Close()
	if f.project != "" {
		// A failed open keeps the default project and is already logged.
		_ = ed.Open(f.project)
	}

	if f.headless {
		return headless(ed, log, f.frames, f.snapshot)
	}
	reg := commands.NewRegistry()
	commands.RegisterEditor(reg, ed, log)
	windowed(ed, log, &queue, reg, prefs)
	return nil
}

// headless plays the scene for frames ticks at 60 Hz, optionally snapshots the last frame,
// and prints the log.
func headless(ed *editor.Editor, log *logger.Logger, frames int, snapshot string) error {
	ed.Play()
	for i := 0; i < frames; i++ {
		ed.Tick(float64(i) / 60)
	}
	var err error
	if snapshot != "" {
		s, ok := ed.Scene().(interface{ Snapshot(string) error })
		if ok {
			err = s.Snapshot(snapshot)
		} else {
			err = fmt.Errorf("snapshot: not supported by the %s backend", ed.Backend())
		}
	}
	for _, line := range log.Lines() {
		fmt.Println(line)
	}
	ed.Stop()
	return err
}
