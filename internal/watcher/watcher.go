// Package watcher re-runs an export when the Java sources under a root change.
package watcher

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/DeusData/javagraph/internal/discover"
)

const (
	baseInterval = 1 * time.Second
	maxInterval  = 60 * time.Second
)

type fileSnapshot struct {
	modTime time.Time
	size    int64
}

// ExportFunc re-runs the export for rootPath.
type ExportFunc func(ctx context.Context, rootPath string) error

// Watcher polls one source root for changes to its Java file set.
type Watcher struct {
	rootPath string
	opts     *discover.Options
	exportFn ExportFunc

	snapshot map[string]fileSnapshot
	interval time.Duration
	nextPoll time.Time
	ctx      context.Context
}

// New creates a Watcher. opts are passed to discovery so the watched file
// set matches the exported one. exportFn is called when a change is seen.
func New(rootPath string, opts *discover.Options, exportFn ExportFunc) *Watcher {
	return &Watcher{
		rootPath: rootPath,
		opts:     opts,
		exportFn: exportFn,
		ctx:      context.Background(),
	}
}

// Run blocks until ctx is cancelled. Ticks at baseInterval and polls only
// when the adaptive interval has elapsed.
func (w *Watcher) Run(ctx context.Context) {
	w.ctx = ctx
	ticker := time.NewTicker(baseInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if time.Now().Before(w.nextPoll) {
				continue
			}
			w.poll()
		}
	}
}

// poll captures a snapshot of the Java file set and compares it with the
// previous one. The first poll only records a baseline.
func (w *Watcher) poll() {
	if _, err := os.Stat(w.rootPath); err != nil {
		slog.Warn("watcher.root_gone", "path", w.rootPath)
		w.nextPoll = time.Now().Add(maxInterval)
		return
	}

	snap, err := captureSnapshot(w.ctx, w.rootPath, w.opts)
	if err != nil {
		slog.Warn("watcher.snapshot", "path", w.rootPath, "err", err)
		w.nextPoll = time.Now().Add(w.interval)
		return
	}

	interval := pollInterval(len(snap))

	if w.snapshot == nil {
		slog.Debug("watcher.baseline", "path", w.rootPath, "files", len(snap))
		w.snapshot = snap
		w.interval = interval
		w.nextPoll = time.Now().Add(interval)
		return
	}

	if snapshotsEqual(w.snapshot, snap) {
		w.interval = interval
		w.nextPoll = time.Now().Add(interval)
		return
	}

	slog.Info("watcher.changed", "path", w.rootPath, "files", len(snap))
	if err := w.exportFn(w.ctx, w.rootPath); err != nil {
		slog.Warn("watcher.export", "path", w.rootPath, "err", err)
		// keep the old snapshot so the next cycle retries
		w.nextPoll = time.Now().Add(interval)
		return
	}

	w.snapshot = snap
	w.interval = interval
	w.nextPoll = time.Now().Add(interval)
}

// captureSnapshot records mtime and size for every discovered Java file.
func captureSnapshot(ctx context.Context, rootPath string, opts *discover.Options) (map[string]fileSnapshot, error) {
	files, err := discover.Discover(ctx, rootPath, opts)
	if err != nil {
		return nil, err
	}

	snap := make(map[string]fileSnapshot, len(files))
	for _, f := range files {
		info, statErr := os.Stat(f.Path)
		if statErr != nil {
			continue
		}
		snap[f.RelPath] = fileSnapshot{
			modTime: info.ModTime(),
			size:    info.Size(),
		}
	}
	return snap, nil
}

func snapshotsEqual(a, b map[string]fileSnapshot) bool {
	if len(a) != len(b) {
		return false
	}
	for path, aSnap := range a {
		bSnap, ok := b[path]
		if !ok {
			return false
		}
		if !aSnap.modTime.Equal(bSnap.modTime) || aSnap.size != bSnap.size {
			return false
		}
	}
	return true
}

// pollInterval is 1s plus 1s per 500 files, capped at 60s.
func pollInterval(fileCount int) time.Duration {
	ms := 1000 + (fileCount/500)*1000
	return min(time.Duration(ms)*time.Millisecond, maxInterval)
}
