package commands

import (
	"errors"
	"flag"
	"fmt"
	"strings"

	"scene-engine/internal/engine"
)

// DefaultProjectPath is used by save until a project has been opened or saved elsewhere.
const DefaultProjectPath = "projects/untitled.json"

// Editor is the part of the engine selector the console drives.
type Editor interface {
	Play()
	Stop()
	IsPlaying() bool
	Backend() engine.Backend
	SetBackend(b engine.Backend) error
	Scene() engine.Scene
	NewProject()
	Open(path string) error
	Save(path string) error
}

type gridToggler interface {
	SetGridVisible(visible bool)
	GridVisible() bool
}

type snapshotter interface {
	Snapshot(path string) error
}

// RegisterEditor adds the editor subcommands to r. Feedback goes to log.
//
//	cmd play | stop | new
//	cmd backend [raylib|soft]
//	cmd open -path p.json      cmd save [-path p.json]
//	cmd grid [-on=false]       cmd snapshot -path shot.png
//	cmd help
func RegisterEditor(r *Registry, ed Editor, log engine.Log) {
	project := DefaultProjectPath

	r.Register("play", flag.NewFlagSet("play", flag.ContinueOnError), func() error {
		ed.Play()
		return nil
	})
	r.Register("stop", flag.NewFlagSet("stop", flag.ContinueOnError), func() error {
		ed.Stop()
		return nil
	})
	r.Register("new", flag.NewFlagSet("new", flag.ContinueOnError), func() error {
		ed.NewProject()
		project = DefaultProjectPath
		return nil
	})

	backendFS := flag.NewFlagSet("backend", flag.ContinueOnError)
	r.Register("backend", backendFS, func() error {
		if backendFS.NArg() == 0 {
			log.Log("backend: " + string(ed.Backend()))
			return nil
		}
		b, err := engine.ParseBackend(backendFS.Arg(0))
		if err != nil {
			return err
		}
		if err := ed.SetBackend(b); err != nil {
			return err
		}
		log.Log("backend: " + string(b))
		return nil
	})

	openFS := flag.NewFlagSet("open", flag.ContinueOnError)
	openPath := openFS.String("path", "", "project file")
	r.Register("open", openFS, func() error {
		defer func() { *openPath = "" }()
		if *openPath == "" {
			return errors.New("open: -path is required")
		}
		// Open reports its own failure to the log.
		if err := ed.Open(*openPath); err != nil {
			return nil
		}
		project = *openPath
		return nil
	})

	saveFS := flag.NewFlagSet("save", flag.ContinueOnError)
	savePath := saveFS.String("path", "", "project file (defaults to the open project)")
	r.Register("save", saveFS, func() error {
		defer func() { *savePath = "" }()
		path := *savePath
		if path == "" {
			path = project
		}
		if err := ed.Save(path); err != nil {
			return nil
		}
		project = path
		log.Log("saved " + path)
		return nil
	})

	gridFS := flag.NewFlagSet("grid", flag.ContinueOnError)
	gridOn := gridFS.Bool("on", true, "show the editor grid")
	r.Register("grid", gridFS, func() error {
		defer func() { *gridOn = true }()
		g, ok := ed.Scene().(gridToggler)
		if !ok {
			return fmt.Errorf("grid: not supported by the %s backend", ed.Backend())
		}
		g.SetGridVisible(*gridOn)
		return nil
	})

	snapFS := flag.NewFlagSet("snapshot", flag.ContinueOnError)
	snapPath := snapFS.String("path", "snapshot.png", "output PNG")
	r.Register("snapshot", snapFS, func() error {
		defer func() { *snapPath = "snapshot.png" }()
		s, ok := ed.Scene().(snapshotter)
		if !ok {
			return fmt.Errorf("snapshot: not supported by the %s backend", ed.Backend())
		}
		if err := s.Snapshot(*snapPath); err != nil {
			return err
		}
		log.Log("wrote " + *snapPath)
		return nil
	})

	r.Register("help", flag.NewFlagSet("help", flag.ContinueOnError), func() error {
		log.Log("commands: " + strings.Join(r.Names(), ", "))
		return nil
	})
}
