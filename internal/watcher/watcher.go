// Package watcher re-applies font passes to package parts as they change
// on disk.
package watcher

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/fontfix/internal/storage"
)

// DefaultDebounce is how long a part must be quiet before its callback runs.
const DefaultDebounce = 200 * time.Millisecond

// Callback is called with the slash-separated, root-relative path of a
// part that was created or written and has since settled.
type Callback func(ctx context.Context, part string)

// Watch watches dirs (relative to root) with fsnotify until ctx is
// cancelled, calling cb once per burst of changes to an .xml part.
// Directories in dirs that do not exist yet are picked up when they are
// created under an already watched one. Callbacks run one at a time.
func Watch(ctx context.Context, root string, dirs []string, debounce time.Duration, logger *slog.Logger, cb Callback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	for _, d := range dirs {
		abs := filepath.Join(root, filepath.FromSlash(d))
		if info, statErr := os.Stat(abs); statErr != nil || !info.IsDir() {
			logger.Debug("watcher: dir not present", slog.String("dir", d))
			continue
		}
		if err := w.Add(abs); err != nil {
			return err
		}
	}

	logger.Info("watcher: started", slog.String("root", root))
	return run(ctx, source{events: w.Events, errors: w.Errors, add: w.Add}, root, dirs, debounce, logger, cb)
}

// source is the event side of an fsnotify.Watcher.
type source struct {
	events <-chan fsnotify.Event
	errors <-chan error
	add    func(name string) error
}

// run debounces events from src and calls cb until ctx is cancelled or
// src is closed. Timers still pending when it returns are released.
func run(ctx context.Context, src source, root string, dirs []string, debounce time.Duration, logger *slog.Logger, cb Callback) error {
	fired := make(chan string)
	done := make(chan struct{})
	defer close(done)
	var mu sync.Mutex
	timers := make(map[string]*time.Timer)

	schedule := func(part string) {
		mu.Lock()
		defer mu.Unlock()
		if t, ok := timers[part]; ok {
			t.Reset(debounce)
			return
		}
		timers[part] = time.AfterFunc(debounce, func() {
			mu.Lock()
			delete(timers, part)
			mu.Unlock()
			select {
			case fired <- part:
			case <-ctx.Done():
			case <-done:
			}
		})
	}

	defer func() {
		mu.Lock()
		for _, t := range timers {
			t.Stop()
		}
		mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			logger.Info("watcher: stopped")
			return nil

		case part := <-fired:
			logger.Debug("watcher: part settled", slog.String("part", part))
			cb(ctx, part)

		case ev, ok := <-src.events:
			if !ok {
				return nil
			}
			rel, relErr := filepath.Rel(root, ev.Name)
			if relErr != nil {
				continue
			}
			rel = filepath.ToSlash(rel)

			// --- Handle watched directories created after start ---
			if ev.Op&fsnotify.Create != 0 && slices.Contains(dirs, rel) {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := src.add(ev.Name); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("dir", rel),
							slog.String("error", addErr.Error()))
					} else {
						logger.Debug("watcher: watching new dir", slog.String("dir", rel))
					}
					continue
				}
			}

			if storage.IsTemp(ev.Name) || !strings.HasSuffix(ev.Name, ".xml") {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				schedule(rel)
			}

		case watchErr, ok := <-src.errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
