package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fsnotify/fsnotify"

	"github.com/dtnitsch/har2csv/internal/convert"
	"github.com/dtnitsch/har2csv/models"
	"github.com/dtnitsch/har2csv/pkg/harfile"
	"github.com/dtnitsch/har2csv/pkg/pipeline"
	"github.com/dtnitsch/har2csv/pkg/storage"
)

const DefaultDebounce = 500 * time.Millisecond

// Outcome is reported once per conversion attempt.
type Outcome struct {
	Input  string
	Result *pipeline.Result
	Err    error
}

// Watcher converts HAR files as they appear in a directory.
type Watcher struct {
	Dir       string
	OutputDir string // empty writes each CSV next to its archive
	Config    models.Config
	Logger    *slog.Logger
	Debounce  time.Duration
	Initial   bool          // convert archives already present at start
	Outcomes  chan<- Outcome // optional; sends block, so the receiver must keep up

	storage storage.Storage
}

// Run watches until ctx is cancelled. Conversions run one at a time on the
// calling goroutine; write bursts on the same file collapse into one
// conversion after the debounce interval.
func (w *Watcher) Run(ctx context.Context) error {
	if w.Logger == nil {
		w.Logger = slog.New(slog.DiscardHandler)
	}
	if w.Debounce <= 0 {
		w.Debounce = DefaultDebounce
	}

	dir, err := filepath.Abs(w.Dir)
	if err != nil {
		return fmt.Errorf("bad watch directory %q: %w", w.Dir, err)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("failed to stat watch directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch dir %q: %w", dir, err)
	}
	w.Logger.Info("Watching directory", "path", dir, "debounce", w.Debounce.String())

	if w.Initial {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return fmt.Errorf("failed to list watch directory: %w", err)
		}
		for _, e := range entries {
			if !e.IsDir() && harfile.IsArchivePath(e.Name()) {
				w.convert(ctx, filepath.Join(dir, e.Name()))
			}
		}
	}

	return w.loop(ctx, dir, watcher.Events, watcher.Errors)
}

// loop debounces events per file and converts on the calling goroutine.
// It returns once every pending debounce callback has finished.
func (w *Watcher) loop(ctx context.Context, dir string, events <-chan fsnotify.Event, errs <-chan error) error {
	ctx, cancel := context.WithCancel(ctx)
	ready := make(chan string)
	timers := make(map[string]*time.Timer)
	var pending sync.WaitGroup
	defer func() {
		for _, t := range timers {
			if t.Stop() {
				pending.Done()
			}
		}
		cancel()
		pending.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			w.Logger.Info("Stopped watching", "path", dir)
			return nil
		case event, ok := <-events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if !harfile.IsArchivePath(event.Name) {
				continue
			}
			path := event.Name
			if t, exists := timers[path]; exists && t.Stop() {
				pending.Done()
			}
			pending.Add(1)
			timers[path] = time.AfterFunc(w.Debounce, func() {
				defer pending.Done()
				select {
				case ready <- path:
				case <-ctx.Done():
				}
			})
		case path := <-ready:
			delete(timers, path)
			w.convert(ctx, path)
		case err, ok := <-errs:
			if !ok {
				return nil
			}
			w.Logger.Warn("watcher error", "error", err)
		}
	}
}

func (w *Watcher) convert(ctx context.Context, path string) {
	if !w.storage.HasFile(path) {
		w.Logger.Debug("Archive vanished before conversion", "path", path)
		return
	}
	stats, err := w.storage.GetFileStats(path)
	if err != nil {
		w.Logger.Warn("failed to stat archive", "path", path, "error", err)
		return
	}
	if stats.SizeBytes == 0 {
		w.Logger.Debug("Skipping empty archive", "path", path)
		return
	}

	output := ""
	if w.OutputDir != "" {
		output = filepath.Join(w.OutputDir, harfile.ArchiveStem(path)+".csv")
	}

	w.Logger.Info("Converting archive", "path", path, "size", humanize.Bytes(uint64(stats.SizeBytes)))
	result, err := convert.ConvertFile(path, output, w.Config, w.Logger)
	switch {
	case errors.Is(err, pipeline.ErrNoRecordsFound):
		w.Logger.Warn("no rows found to export", "path", path)
	case err != nil:
		w.Logger.Error("conversion failed", "path", path, "error", err)
	}

	if w.Outcomes != nil {
		select {
		case w.Outcomes <- Outcome{Input: path, Result: result, Err: err}:
		case <-ctx.Done():
		}
	}
}
