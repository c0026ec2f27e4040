// Package watcher converts image files as they appear in a directory.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long a file must be quiet before it is handled.
const DefaultDebounce = 500 * time.Millisecond

const queueSize = 64

// DefaultExtensions are the source formats picked up by default.
var DefaultExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".tif", ".tiff", ".webp"}

var errSameDir = errors.New("input and output directories must differ")

// settle is a debounce timer that fired; seq tells a stale timer from the
// latest one for the same path.
type settle struct {
	path string
	seq  uint64
}

type debounceTimer struct {
	timer *time.Timer
	seq   uint64
}

// Handler converts one settled file. Handlers run one at a time.
type Handler func(ctx context.Context, path string) error

// Options configures a Watcher.
type Options struct {
	InputDir   string
	OutputDir  string
	Debounce   time.Duration
	Extensions []string
}

// Watcher feeds settled files from InputDir to a Handler through a single
// consumer goroutine.
type Watcher struct {
	opts    Options
	handler Handler
	logger  *slog.Logger
	fs      *fsnotify.Watcher
	exts    map[string]bool
}

// New creates a watcher. The directories must differ so outputs are never
// picked up again.
func New(opts Options, handler Handler, logger *slog.Logger) (*Watcher, error) {
	if handler == nil {
		return nil, errors.New("watcher: nil handler")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if len(opts.Extensions) == 0 {
		opts.Extensions = DefaultExtensions
	}

	in, err := filepath.Abs(opts.InputDir)
	if err != nil {
		return nil, err
	}
	out, err := filepath.Abs(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	if in == out {
		return nil, fmt.Errorf("watcher: %w: %s", errSameDir, in)
	}
	opts.InputDir, opts.OutputDir = in, out

	exts := make(map[string]bool, len(opts.Extensions))
	for _, ext := range opts.Extensions {
		exts[strings.ToLower(ext)] = true
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	if err := fsWatcher.Add(in); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("failed to watch folder %s: %w", in, err)
	}

	return &Watcher{
		opts:    opts,
		handler: handler,
		logger:  logger,
		fs:      fsWatcher,
		exts:    exts,
	}, nil
}

// Run processes events until ctx is cancelled, then waits for the handler in
// progress to return and releases the underlying watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fs.Close()

	queue := make(chan string, queueSize)
	ready := make(chan settle)
	done := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		w.consume(ctx, queue)
	}()

	pending := make(map[string]debounceTimer)
	var seq uint64
	defer func() {
		close(done)
		for _, d := range pending {
			d.timer.Stop()
		}
		close(queue)
		wg.Wait()
	}()

	w.logger.Info("Watching folder", "input", w.opts.InputDir, "output", w.opts.OutputDir)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}

			if d, exists := pending[event.Name]; exists {
				d.timer.Stop()
			}
			seq++
			fired := settle{path: event.Name, seq: seq}
			pending[fired.path] = debounceTimer{
				seq: fired.seq,
				timer: time.AfterFunc(w.opts.Debounce, func() {
					select {
					case ready <- fired:
					case <-done:
					}
				}),
			}

		case fired := <-ready:
			if d, ok := pending[fired.path]; !ok || d.seq != fired.seq {
				continue
			}
			delete(pending, fired.path)
			select {
			case queue <- fired.path:
			case <-ctx.Done():
				return nil
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("Watcher error", "error", err)
		}
	}
}

func (w *Watcher) consume(ctx context.Context, queue <-chan string) {
	for path := range queue {
		if ctx.Err() != nil {
			continue
		}
		w.logger.Info("Converting new file", "path", path)
		if err := w.handler(ctx, path); err != nil {
			w.logger.Error("Failed to convert file", "path", path, "error", err)
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return false
	}
	name := filepath.Base(event.Name)
	if strings.HasPrefix(name, ".") {
		return false
	}
	if filepath.Dir(event.Name) == w.opts.OutputDir {
		return false
	}
	return w.exts[strings.ToLower(filepath.Ext(name))]
}
