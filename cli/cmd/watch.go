package cmd

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/subframe7536/yaak/log"
)

const defaultWatchDelay = 100 * time.Millisecond

// Watch renders request files and renders them again whenever they or the
// environment files change.
type Watch struct {
	Files  []string      `arg:"" help:"Model files or glob patterns" name:"file"`
	Output string        `default:"yaml" enum:"yaml,json" help:"Output format (${enum})" short:"o"`
	Silent bool          `help:"Render missing variables and failed functions as empty text"`
	Delay  time.Duration `default:"100ms" help:"Wait this long after a change before rendering"`

	out io.Writer
}

// Run executes the watch command. It returns when ctx is done.
func (w *Watch) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	patterns := append(slices.Clone(w.Files), optionsFrom(ctx).Environments...)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	for _, dir := range watchDirs(patterns) {
		if err := watcher.Add(dir); err != nil {
			return err
		}

		log.DebugContext(ctx, "watching", slog.String("dir", dir))
	}

	w.render(ctx)

	delay := w.Delay
	if delay <= 0 {
		delay = defaultWatchDelay
	}

	timer := time.NewTimer(delay)
	timer.Stop()

	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			if errors.Is(context.Cause(ctx), context.Canceled) {
				return nil
			}

			return context.Cause(ctx)

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if !event.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) ||
				!matchAny(patterns, event.Name) {
				continue
			}

			log.TraceContext(ctx, "file changed",
				slog.String("file", event.Name),
				slog.String("op", event.Op.String()),
			)

			timer.Reset(delay)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			log.WarnContext(ctx, "watch error", slog.Any("error", err))

		case <-timer.C:
			w.render(ctx)
		}
	}
}

// render renders once. Failures are logged and watching continues.
func (w *Watch) render(ctx context.Context) {
	r := Render{
		Files:  w.Files,
		Output: w.Output,
		Silent: w.Silent,
		out:    w.out,
	}

	if err := r.Run(ctx); err != nil {
		log.ErrorContext(ctx, "render failed", slog.Any("error", err))
	}
}

// watchDirs returns the existing directories that may hold files matching
// patterns. Directories are watched instead of files so that editors that
// replace a file on save keep triggering events.
func watchDirs(patterns []string) []string {
	var (
		dirs []string
		seen = make(map[string]struct{})
	)

	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(filepath.Dir(pattern))
		if err != nil {
			continue
		}

		for _, dir := range matches {
			if info, err := os.Stat(dir); err != nil || !info.IsDir() {
				continue
			}

			if _, ok := seen[dir]; ok {
				continue
			}

			seen[dir] = struct{}{}
			dirs = append(dirs, dir)
		}
	}

	return dirs
}

func matchAny(patterns []string, name string) bool {
	name = filepath.Clean(name)

	for _, pattern := range patterns {
		if ok, _ := doublestar.PathMatch(filepath.Clean(pattern), name); ok {
			return true
		}
	}

	return false
}
