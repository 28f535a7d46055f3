package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/mwiater/nvsbench/internal/logging"
)

// DefaultDebounce is how long Watch waits for the tree to settle before
// re-running ingestion.
const DefaultDebounce = 500 * time.Millisecond

// Watch runs ingestion once, then again every time result files under the
// root change, until ctx is cancelled. onRun receives the outcome of every
// pass. Directories created later are added to the watch set.
func Watch(ctx context.Context, opts Options, debounce time.Duration, onRun func(Summary, error)) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if _, err := Discover(opts.Root, opts.marker()); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := addTree(watcher, opts.Root); err != nil {
		return err
	}

	run := func() {
		summary, err := Run(opts)
		onRun(summary, err)
	}
	run()

	var (
		timer  *time.Timer
		timerC <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !relevant(ev, opts) {
				continue
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := addTree(watcher, ev.Name); err != nil {
						logging.LogWarning("watch %s: %v", ev.Name, err)
					}
				}
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(debounce)
			timerC = timer.C
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logging.LogWarning("watch error: %v", err)
		case <-timerC:
			timerC = nil
			run()
		}
	}
}

func addTree(watcher *fsnotify.Watcher, root string) error {
	var addErr error
	err := walkDirs(root, func(dir string, _ []os.DirEntry) {
		if addErr != nil {
			return
		}
		if err := watcher.Add(dir); err != nil {
			addErr = fmt.Errorf("watch %s: %w", dir, err)
		}
	})
	if err != nil {
		return err
	}
	return addErr
}

// relevant filters out events caused by ingestion's own output and by
// unrelated files.
func relevant(ev fsnotify.Event, opts Options) bool {
	base := filepath.Base(ev.Name)
	if opts.Output != "" && filepath.Clean(ev.Name) == filepath.Clean(opts.Output) {
		return false
	}
	if strings.HasPrefix(base, ".") {
		return false
	}
	if base == opts.marker() {
		return true
	}
	if ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
		return true
	}
	if ev.Has(fsnotify.Create) {
		info, err := os.Stat(ev.Name)
		return err == nil && info.IsDir()
	}
	return false
}
