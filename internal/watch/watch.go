// Package watch re-runs an export whenever one of its input spec files changes.
package watch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/dyluth/libdoc2tb/pkg/libdoc"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits for more changes before a rebuild.
const DefaultDebounce = 500 * time.Millisecond

// ChangeFunc is called with the sorted paths that changed since the last call.
// An error is logged and watching continues.
type ChangeFunc func(ctx context.Context, changed []string) error

// Watcher watches the directories holding the input patterns and reports
// changes of files matching them, debounced and deduplicated by content.
type Watcher struct {
	patterns []string
	debounce time.Duration
	watcher  *fsnotify.Watcher
	logger   *slog.Logger

	pendingMu sync.Mutex
	pending   map[string]fsnotify.Op

	// Content hashes of the last reported version of each file
	hashes map[string]string
}

// New creates a watcher for the input patterns. debounce <= 0 uses DefaultDebounce.
func New(patterns []string, debounce time.Duration, logger *slog.Logger) (*Watcher, error) {
	if len(patterns) == 0 {
		return nil, fmt.Errorf("no input patterns to watch")
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = slog.Default()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	w := &Watcher{
		patterns: patterns,
		debounce: debounce,
		watcher:  fsw,
		logger:   logger,
		pending:  make(map[string]fsnotify.Op),
		hashes:   make(map[string]string),
	}

	for _, root := range Roots(patterns) {
		if err := w.addRoot(root.Dir, root.Recursive); err != nil {
			fsw.Close()
			return nil, err
		}
	}

	return w, nil
}

// Prime records the current content of paths so that an unchanged save does
// not trigger a rebuild.
func (w *Watcher) Prime(paths []string) {
	for _, p := range paths {
		if hash, err := fileHash(p); err == nil {
			w.hashes[filepath.Clean(p)] = hash
		}
	}
}

// Run processes events until ctx is cancelled, calling onChange after every
// debounced batch of content changes. It closes the underlying watcher on return.
func (w *Watcher) Run(ctx context.Context, onChange ChangeFunc) error {
	defer w.watcher.Close()

	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("Watcher error", "error", err)

		case <-ticker.C:
			changed := w.flushPending()
			if len(changed) == 0 {
				continue
			}
			if err := onChange(ctx, changed); err != nil {
				w.logger.Error("Rebuild failed", "changed", changed, "error", err)
			}
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := filepath.Clean(event.Name)

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if w.recursiveFor(path) {
				if err := w.addRoot(path, true); err != nil {
					w.logger.Warn("Failed to watch new directory", "path", path, "error", err)
				}
			}
			return
		}
	}

	if !libdoc.Match(w.patterns, path) {
		return
	}

	w.pendingMu.Lock()
	w.pending[path] |= event.Op
	w.pendingMu.Unlock()

	w.logger.Debug("Spec change detected", "path", path, "op", event.Op.String())
}

// flushPending returns the pending paths whose content differs from the last
// reported version. Removed files always count as changed.
func (w *Watcher) flushPending() []string {
	w.pendingMu.Lock()
	toProcess := w.pending
	w.pending = make(map[string]fsnotify.Op)
	w.pendingMu.Unlock()

	var changed []string
	for path := range toProcess {
		hash, err := fileHash(path)
		if err != nil {
			if _, known := w.hashes[path]; known {
				delete(w.hashes, path)
				changed = append(changed, path)
			}
			continue
		}
		if w.hashes[path] == hash {
			continue
		}
		w.hashes[path] = hash
		changed = append(changed, path)
	}

	sort.Strings(changed)
	return changed
}

func (w *Watcher) addRoot(dir string, recursive bool) error {
	if !recursive {
		if err := w.watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		w.logger.Debug("Watching directory", "path", dir)
		return nil
	}

	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		base := filepath.Base(path)
		if path != dir && strings.HasPrefix(base, ".") {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		w.logger.Debug("Watching directory", "path", path)
		return nil
	})
}

// recursiveFor reports whether a new directory lies under a recursive root.
func (w *Watcher) recursiveFor(dir string) bool {
	for _, root := range Roots(w.patterns) {
		if !root.Recursive {
			continue
		}
		if rel, err := filepath.Rel(root.Dir, dir); err == nil && !strings.HasPrefix(rel, "..") {
			return true
		}
	}
	return false
}

// Root is a directory that must be watched to see changes of a pattern.
type Root struct {
	Dir       string
	Recursive bool // Pattern contains "**"
}

// Roots returns the deduplicated watch roots of the input patterns: the static
// prefix directory of each glob, or the parent directory of a plain path.
func Roots(patterns []string) []Root {
	var roots []Root
	seen := make(map[Root]bool)

	for _, p := range patterns {
		base, rest := doublestar.SplitPattern(filepath.ToSlash(p))
		root := Root{
			Dir:       filepath.Clean(filepath.FromSlash(base)),
			Recursive: strings.Contains(rest, "**"),
		}
		if rest == "" || !strings.ContainsAny(rest, "*?[{") {
			root = Root{Dir: filepath.Dir(filepath.Clean(p))}
		}
		if !seen[root] {
			seen[root] = true
			roots = append(roots, root)
		}
	}

	return roots
}

func fileHash(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:]), nil
}
