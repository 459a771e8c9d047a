package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/eringen/casinocms"
	"github.com/eringen/casinocms/converter"
)

const debounceDuration = 300 * time.Millisecond

func runWatch(args []string) error {
	cmd := flag.NewFlagSet("watch", flag.ContinueOnError)
	var (
		cf  conversionFlags
		out string
	)
	cf.register(cmd)
	cmd.StringVar(&out, "out", "components/templates/custom", "directory generated components are written to")
	if err := cmd.Parse(args); err != nil {
		return err
	}
	if cmd.NArg() != 1 {
		return fmt.Errorf("usage: casinocms watch [flags] dir")
	}
	dir := cmd.Arg(0)

	fsys := afero.NewOsFs()
	opts, err := cf.options(fsys)
	if err != nil {
		return err
	}
	logger := casinocms.NewLogger("info", "console")
	defer logger.Sync()

	w := &exportWatcher{fs: fsys, out: out, opts: opts, logger: logger}
	if err := w.convertAll(dir); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("could not create file watcher: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	logger.Info("watching exports", zap.String("dir", dir), zap.String("out", out))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return w.run(ctx, watcher.Events, watcher.Errors)
}

// exportWatcher regenerates <out>/<slug>.tsx for changed .html exports.
type exportWatcher struct {
	fs     afero.Fs
	out    string
	opts   converter.Options
	logger *zap.Logger
}

func isExport(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".html")
}

func (w *exportWatcher) convertAll(dir string) error {
	entries, err := afero.ReadDir(w.fs, dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.IsDir() || !isExport(e.Name()) {
			continue
		}
		w.regenerate(filepath.Join(dir, e.Name()))
	}
	return nil
}

// regenerate converts one export, logging failures instead of returning
// them so one broken file does not stop the watcher.
func (w *exportWatcher) regenerate(path string) {
	res, err := convertFile(w.fs, path, w.opts)
	if err != nil {
		w.logger.Error("conversion failed", zap.String("file", path), zap.Error(err))
		return
	}
	target := filepath.Join(w.out, exportSlug(path)+".tsx")
	if err := w.fs.MkdirAll(w.out, 0o755); err != nil {
		w.logger.Error("create output dir", zap.String("dir", w.out), zap.Error(err))
		return
	}
	if err := afero.WriteFile(w.fs, target, []byte(res.Source), 0o644); err != nil {
		w.logger.Error("write component", zap.String("file", target), zap.Error(err))
		return
	}
	w.logger.Info("component regenerated",
		zap.String("file", path),
		zap.String("component", res.ComponentName),
		zap.String("out", target),
		zap.Int("bound", res.Bound),
	)
}

// run coalesces bursts of events per file and regenerates each file once
// the burst has been quiet for debounceDuration.
func (w *exportWatcher) run(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error) error {
	pending := make(map[string]time.Time)
	ticker := time.NewTicker(debounceDuration / 3)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-events:
			if !ok {
				return nil
			}
			if !isExport(event.Name) {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				pending[event.Name] = time.Now()
			}
		case err, ok := <-errs:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", zap.Error(err))
		case now := <-ticker.C:
			for path, at := range pending {
				if now.Sub(at) >= debounceDuration {
					delete(pending, path)
					w.regenerate(path)
				}
			}
		}
	}
}
