package logger

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// DefaultFilePath is where the log is mirrored when no other path is configured, relative to
// the working directory.
const DefaultFilePath = "logs/console.txt"

// Logger is the user-visible log: script output and script errors. Lines are kept in memory
// for the console panel and appended to a file on disk. Subscribers are notified after every
// change.
type Logger struct {
	mu        sync.Mutex
	lines     []string
	path      string
	stamp     bool
	listeners []func()
	dispatch  func(func())
}

// Option configures a Logger.
type Option func(*Logger)

// WithFile mirrors every line to path. An empty path disables the mirror.
func WithFile(path string) Option {
	return func(l *Logger) { l.path = path }
}

// WithTimestamps prefixes each line with [timestamp] using computer time.
func WithTimestamps() Option {
	return func(l *Logger) { l.stamp = true }
}

// WithDispatch routes appends and clears through post, e.g. onto the UI loop. Without it
// changes apply on the calling goroutine.
func WithDispatch(post func(func())) Option {
	return func(l *Logger) { l.dispatch = post }
}

// New returns a Logger and ensures the directory of the mirror file exists.
func New(opts ...Option) *Logger {
	l := &Logger{lines: make([]string, 0)}
	for _, o := range opts {
		o(l)
	}
	if l.path != "" {
		_ = os.MkdirAll(filepath.Dir(l.path), 0755)
	}
	return l
}

// Log appends a line.
func (l *Logger) Log(line string) {
	if l.stamp {
		line = "[" + time.Now().Format("2006-01-02 15:04:05") + "] " + line
	}
	l.post(func() {
		l.mu.Lock()
		l.lines = append(l.lines, line)
		l.mu.Unlock()
		l.mirror(line)
		l.notify()
	})
}

// Clear drops all lines. The mirror file is left alone.
func (l *Logger) Clear() {
	l.post(func() {
		l.mu.Lock()
		l.lines = l.lines[:0]
		l.mu.Unlock()
		l.notify()
	})
}

// Lines returns a copy of all stored lines.
func (l *Logger) Lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.lines))
	copy(out, l.lines)
	return out
}

// Text returns all lines joined with newlines, each line terminated.
func (l *Logger) Text() string {
	lines := l.Lines()
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

// Subscribe registers fn to be called after each change.
func (l *Logger) Subscribe(fn func()) {
	l.mu.Lock()
	l.listeners = append(l.listeners, fn)
	l.mu.Unlock()
}

func (l *Logger) post(fn func()) {
	if l.dispatch != nil {
		l.dispatch(fn)
		return
	}
	fn()
}

func (l *Logger) notify() {
	l.mu.Lock()
	ls := make([]func(), len(l.listeners))
	copy(ls, l.listeners)
	l.mu.Unlock()
	for _, fn := range ls {
		fn()
	}
}

func (l *Logger) mirror(line string) {
	if l.path == "" {
		return
	}
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return
	}
	_, _ = f.WriteString(line + "\n")
	_ = f.Close()
}

// Queue collects posted functions so that a single loop can run them. It is the dispatch
// target used by the window loop: the logger posts, the frame drains.
type Queue struct {
	mu  sync.Mutex
	fns []func()
}

// Post enqueues fn.
func (q *Queue) Post(fn func()) {
	q.mu.Lock()
	q.fns = append(q.fns, fn)
	q.mu.Unlock()
}

// Drain runs every queued function in order.
func (q *Queue) Drain() {
	q.mu.Lock()
	fns := q.fns
	q.fns = nil
	q.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}
