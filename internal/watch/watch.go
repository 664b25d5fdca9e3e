// Package watch records filesystem changes under the sandbox between
// commands, so they can be handed to the engine as a delta.
package watch

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/abhisek/linuxstory/internal/env"
)

// Config tunes the watcher.
type Config struct {
	// Settle is how long the tree must be quiet before Drain returns.
	Settle time.Duration
	// MaxSettle bounds the total wait in Drain on a busy tree.
	MaxSettle time.Duration
	// MaxContent caps how many bytes of each changed file are captured.
	MaxContent int64
}

// DefaultConfig returns settings suited to interactive use.
func DefaultConfig() Config {
	return Config{
		Settle:     40 * time.Millisecond,
		MaxSettle:  500 * time.Millisecond,
		MaxContent: 64 << 10,
	}
}

// Watcher recursively watches a directory tree.
type Watcher struct {
	mu      sync.Mutex
	fw      *fsnotify.Watcher
	root    string
	cfg     Config
	logger  *zap.Logger
	pending []pendingChange
	lastAt  time.Time
	stopCh  chan struct{}
	doneCh  chan struct{}
	running bool
	closed  bool
}

type pendingChange struct {
	rel string
	op  env.Op
}

// New creates a watcher on root and every directory below it. Call Start
// to begin collecting changes.
func New(root string, cfg Config, logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if _, err := os.Stat(root); err != nil {
		return nil, err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fw:     fw,
		root:   filepath.Clean(root),
		cfg:    cfg,
		logger: logger,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
	if err := w.addTree(w.root, false); err != nil {
		fw.Close()
		return nil, err
	}
	return w, nil
}

// Start launches the event loop. It is non-blocking and idempotent.
func (w *Watcher) Start(ctx context.Context) {
	w.mu.Lock()
	if w.running || w.closed {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.mu.Unlock()

	go w.run(ctx)
}

// Close stops the event loop and releases the underlying watcher.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	running := w.running
	w.mu.Unlock()

	if running {
		close(w.stopCh)
		<-w.doneCh
	}
	return w.fw.Close()
}

// Drain waits for the tree to settle, then returns the changes recorded
// since the previous Drain and forgets them. Content is read at drain time.
func (w *Watcher) Drain() env.Delta {
	w.settle()

	w.mu.Lock()
	pending := w.pending
	w.pending = nil
	w.mu.Unlock()

	delta := make(env.Delta, 0, len(pending))
	for _, p := range pending {
		c := env.FileChange{Path: p.rel, Op: p.op}
		if p.op != env.OpRemoved {
			c.Content = w.capture(p.rel)
		}
		delta = append(delta, c)
	}
	return delta
}

// Discard drops recorded changes, such as those made by world setup.
func (w *Watcher) Discard() {
	w.settle()
	w.mu.Lock()
	w.pending = nil
	w.mu.Unlock()
}

func (w *Watcher) settle() {
	deadline := time.Now().Add(w.cfg.MaxSettle)
	time.Sleep(w.cfg.Settle)
	for time.Now().Before(deadline) {
		w.mu.Lock()
		quiet := time.Since(w.lastAt)
		w.mu.Unlock()
		if quiet >= w.cfg.Settle {
			return
		}
		time.Sleep(w.cfg.Settle - quiet)
	}
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	for {
		select {
		case <-ctx.Done():
			return

		case <-w.stopCh:
			return

		case event, ok := <-w.fw.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", zap.Error(err))
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	rel, err := filepath.Rel(w.root, event.Name)
	if err != nil || rel == "." {
		return
	}
	rel = filepath.ToSlash(rel)

	var op env.Op
	switch {
	case event.Op&fsnotify.Create != 0:
		op = env.OpCreated
	case event.Op&fsnotify.Write != 0:
		op = env.OpModified
	case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		op = env.OpRemoved
	default:
		return // chmod
	}
	w.logger.Debug("fs event", zap.String("path", rel), zap.String("op", string(op)))

	w.record(rel, op)

	// New directories need their own watch. Anything created inside
	// before the watch was added would otherwise go unseen.
	if op == env.OpCreated {
		if info, err := os.Lstat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(event.Name, true); err != nil {
				w.logger.Warn("watch new directory", zap.String("path", rel), zap.Error(err))
			}
		}
	}
}

func (w *Watcher) record(rel string, op env.Op) {
	w.mu.Lock()
	w.pending = append(w.pending, pendingChange{rel: rel, op: op})
	w.lastAt = time.Now()
	w.mu.Unlock()
}

// addTree watches dir and its subdirectories. With record set, entries
// found below dir are recorded as created.
func (w *Watcher) addTree(dir string, record bool) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if record && path != dir {
			if rel, err := filepath.Rel(w.root, path); err == nil {
				w.record(filepath.ToSlash(rel), env.OpCreated)
			}
		}
		if d.IsDir() {
			return w.fw.Add(path)
		}
		return nil
	})
}

func (w *Watcher) capture(rel string) []byte {
	f, err := os.Open(filepath.Join(w.root, filepath.FromSlash(rel)))
	if err != nil {
		return nil
	}
	defer f.Close()

	if info, err := f.Stat(); err != nil || info.IsDir() {
		return nil
	}
	data, err := io.ReadAll(io.LimitReader(f, w.cfg.MaxContent))
	if err != nil {
		return nil
	}
	return data
}
