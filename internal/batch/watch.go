package batch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/joseph-ayodele/bills-assistant/constants"
)

// WatchConfig configures Watch.
type WatchConfig struct {
	ListOptions
	Dir string
	// Debounce coalesces the write bursts of a file being copied in.
	Debounce time.Duration
}

// Watch emits documents created or rewritten under cfg.Dir until ctx is
// done. Exclusion and hidden-entry rules match ListDocuments. Both channels
// are closed when the watcher stops.
func Watch(ctx context.Context, cfg WatchConfig, logger *slog.Logger) (<-chan Document, <-chan error, error) {
	if logger == nil {
		logger = slog.Default()
	}
	exclude := cfg.Exclude
	if exclude == nil {
		exclude = constants.ExcludedDirs
	}
	skipped := func(path string) bool {
		rel, err := filepath.Rel(cfg.Dir, path)
		if err != nil {
			return true
		}
		for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
			if isHidden(part) {
				return true
			}
			for _, name := range exclude {
				if part == name {
					return true
				}
			}
		}
		return false
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Error("batch.watch.create_error", "error", err)
		return nil, nil, err
	}
	if err := w.Add(cfg.Dir); err != nil {
		_ = w.Close()
		logger.Error("batch.watch.add_error", "dir", cfg.Dir, "error", err)
		return nil, nil, err
	}
	if cfg.Recursive {
		_ = filepath.WalkDir(cfg.Dir, func(path string, d os.DirEntry, walkErr error) error {
			if walkErr != nil || !d.IsDir() || path == cfg.Dir {
				return nil
			}
			if skipped(path) {
				return filepath.SkipDir
			}
			if err := w.Add(path); err != nil {
				logger.Warn("batch.watch.add_error", "dir", path, "error", err)
			}
			return nil
		})
	}

	docs := make(chan Document, 64)
	errs := make(chan error, 1)

	go func() {
		defer close(docs)
		defer close(errs)
		defer func() { _ = w.Close() }()

		pending := map[string]struct{}{}
		var tick <-chan time.Time
		var timer *time.Timer

		flush := func() {
			for path := range pending {
				delete(pending, path)
				info, err := os.Stat(path)
				if err != nil || !info.Mode().IsRegular() {
					continue
				}
				rel, _ := filepath.Rel(cfg.Dir, path)
				doc := Document{Path: path, ID: filepath.ToSlash(rel), Size: info.Size()}
				select {
				case docs <- doc:
				case <-ctx.Done():
					return
				}
			}
		}

		for {
			select {
			case <-ctx.Done():
				return
			case e, ok := <-w.Events:
				if !ok {
					return
				}
				if skipped(e.Name) {
					continue
				}
				if e.Has(fsnotify.Create) && cfg.Recursive {
					if info, err := os.Stat(e.Name); err == nil && info.IsDir() {
						if err := w.Add(e.Name); err != nil {
							logger.Warn("batch.watch.add_error", "dir", e.Name, "error", err)
						}
						continue
					}
				}
				if !constants.IsSupportedExt(filepath.Ext(e.Name)) || !(e.Has(fsnotify.Create) || e.Has(fsnotify.Write)) {
					continue
				}
				pending[e.Name] = struct{}{}
				if cfg.Debounce <= 0 {
					flush()
					continue
				}
				if timer != nil {
					timer.Stop()
				}
				timer = time.NewTimer(cfg.Debounce)
				tick = timer.C
			case <-tick:
				tick = nil
				flush()
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Error("batch.watch.error", "error", err)
				select {
				case errs <- err:
				default:
				}
			}
		}
	}()

	return docs, errs, nil
}
