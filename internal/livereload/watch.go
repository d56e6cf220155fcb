package livereload

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/muurk/godotserve/internal/logging"
	"go.uber.org/zap"
)

// DefaultDebounce collapses the burst of events an export or editor save produces.
const DefaultDebounce = 250 * time.Millisecond

// Watch reports changes below root until ctx is done. Directories created
// after the watch starts are picked up. onChange receives the last changed
// path of each burst, at most once per debounce interval.
func Watch(ctx context.Context, root string, debounce time.Duration, onChange func(path string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("livereload: create watcher: %w", err)
	}
	defer watcher.Close()

	if err := addTree(watcher, root); err != nil {
		return fmt.Errorf("livereload: watch %s: %w", root, err)
	}

	logging.Info("Watching for changes", zap.String("root", root))

	timer := time.NewTimer(debounce)
	timer.Stop()
	var pending string

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ignored(event.Name) || event.Op == fsnotify.Chmod {
				continue
			}

			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := addTree(watcher, event.Name); err != nil {
						logging.Warn("Failed to watch new directory",
							zap.String("dir", event.Name),
							zap.Error(err),
						)
					}
				}
			}

			logging.Debug("File changed",
				zap.String("file", event.Name),
				zap.String("op", event.Op.String()),
			)
			pending = event.Name
			timer.Reset(debounce)

		case <-timer.C:
			onChange(pending)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logging.Warn("File watcher error", zap.Error(err))
		}
	}
}

// addTree watches dir and every non-hidden directory below it.
func addTree(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && ignored(path) {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}

// ignored filters hidden files and editor scratch files.
func ignored(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".") ||
		strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".tmp")
}
