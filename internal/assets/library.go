// Package assets resolves library asset names (models, textures) to files on disk.
package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/hack-pad/hackpadfs"
	osfs "github.com/hack-pad/hackpadfs/os"
)

// ErrNotFound is returned when no file in the library matches an asset name.
var ErrNotFound = errors.New("asset not found")

// Extensions are tried in order when a name has no match as given.
var Extensions = []string{".glb", ".gltf", ".obj", ".png", ".jpg", ".jpeg"}

// Library maps asset names to file paths inside a directory of a hackpadfs filesystem.
// Lookups, hits and misses alike, are cached per name for the lifetime of the Library.
type Library struct {
	fsys hackpadfs.FS
	root string
	toOS func(string) (string, error)

	mu    sync.Mutex
	cache map[string]entry
}

type entry struct {
	path string
	err  error
}

// New returns a library rooted at dir inside fsys. Resolved paths are fsys paths.
func New(fsys hackpadfs.FS, dir string) *Library {
	return &Library{
		fsys:  fsys,
		root:  clean(dir),
		toOS:  func(p string) (string, error) { return p, nil },
		cache: make(map[string]entry),
	}
}

// Open returns a library over the host directory dir. Resolved paths are host paths.
func Open(dir string) (*Library, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("asset library %s: %w", dir, err)
	}
	fsys := osfs.NewFS()
	root, err := fsys.FromOSPath(abs)
	if err != nil {
		return nil, fmt.Errorf("asset library %s: %w", dir, err)
	}
	l := New(fsys, root)
	l.toOS = fsys.ToOSPath
	return l, nil
}

func clean(p string) string {
	p = strings.TrimPrefix(path.Clean(filepath.ToSlash(p)), "/")
	if p == "" {
		return "."
	}
	return p
}

// Resolve returns the path of the named asset.
func (l *Library) Resolve(name string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if e, ok := l.cache[name]; ok {
		return e.path, e.err
	}
	p, err := l.lookup(name)
	l.cache[name] = entry{path: p, err: err}
	return p, err
}

func (l *Library) lookup(name string) (string, error) {
	rel := clean(name)
	if name == "" || rel == "." || !fs.ValidPath(rel) || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	candidates := []string{rel}
	if path.Ext(rel) == "" {
		for _, ext := range Extensions {
			candidates = append(candidates, rel+ext)
		}
	}
	for _, c := range candidates {
		full := path.Join(l.root, c)
		info, err := hackpadfs.Stat(l.fsys, full)
		if err != nil || info.IsDir() {
			continue
		}
		return l.toOS(full)
	}
	return "", fmt.Errorf("%w: %q", ErrNotFound, name)
}

// Names lists the assets at the top of the library, sorted. Directories are skipped.
func (l *Library) Names() ([]string, error) {
	entries, err := hackpadfs.ReadDir(l.fsys, l.root)
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Forget drops the cached result for name, e.g. after an asset was added.
func (l *Library) Forget(name string) {
	l.mu.Lock()
	delete(l.cache, name)
	l.mu.Unlock()
}
