// Package watch ingests citation batches dropped into an inbox directory
// and re-runs the analysis after each accepted batch.
//
// Files must appear in the inbox atomically (written elsewhere, then
// renamed in) so a batch is never read half-written. Only *.jsonl files
// are considered.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/citescope/internal/adapters/driven/feed"
	"github.com/custodia-labs/citescope/internal/core/domain"
	"github.com/custodia-labs/citescope/internal/core/ports/driving"
	"github.com/custodia-labs/citescope/internal/logger"
)

// DefaultMinInterval is the default minimum gap between analysis runs.
const DefaultMinInterval = 30 * time.Second

const extension = ".jsonl"

// Options configure a Watcher.
type Options struct {
	// MinInterval throttles re-analysis. Batches arriving faster are
	// coalesced into one run.
	MinInterval time.Duration

	// Spec is the run specification used for every re-analysis.
	Spec domain.RunSpec

	// OnIngest is called after each file is ingested.
	OnIngest func(path string, report *domain.NormalisationReport)

	// OnRun is called after each completed analysis run.
	OnRun func(result *domain.RunResult)
}

// Watcher watches an inbox directory.
type Watcher struct {
	dir      string
	ingest   driving.IngestService
	analysis driving.AnalysisService
	opts     Options
	limiter  *rate.Limiter
	seen     map[string]time.Time
	trigger  chan struct{}
}

// New creates a watcher for dir.
func New(dir string, ingest driving.IngestService, analysis driving.AnalysisService, opts Options) (*Watcher, error) {
	if ingest == nil || analysis == nil {
		return nil, errors.New("watch: ingest and analysis services are required")
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch: %s is not a directory", dir)
	}
	if opts.MinInterval <= 0 {
		opts.MinInterval = DefaultMinInterval
	}
	return &Watcher{
		dir:      dir,
		ingest:   ingest,
		analysis: analysis,
		opts:     opts,
		limiter:  rate.NewLimiter(rate.Every(opts.MinInterval), 1),
		seen:     make(map[string]time.Time),
		trigger:  make(chan struct{}, 1),
	}, nil
}

// Run ingests the files already in the inbox, then watches for new ones
// until ctx is cancelled. It returns nil on cancellation.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(w.dir); err != nil {
		return fmt.Errorf("watching %s: %w", w.dir, err)
	}
	logger.Info("watching %s for *%s batches", w.dir, extension)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return w.analyseLoop(ctx) })
	g.Go(func() error { return w.watchLoop(ctx, fsw) })

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (w *Watcher) watchLoop(ctx context.Context, fsw *fsnotify.Watcher) error {
	if err := w.scan(ctx); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				w.process(ctx, event.Name)
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch: %v", err)
		}
	}
}

// analyseLoop runs the analysis once per trigger, no more often than the limiter allows.
func (w *Watcher) analyseLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.trigger:
		}
		if err := w.limiter.Wait(ctx); err != nil {
			return ctx.Err()
		}
		result, err := w.analysis.Run(ctx, w.opts.Spec)
		if errors.Is(err, domain.ErrConfiguration) {
			return err
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Warn("analysis failed: %v", err)
			continue
		}
		if w.opts.OnRun != nil {
			w.opts.OnRun(result)
		}
	}
}

// scan processes existing inbox files in name order.
func (w *Watcher) scan(ctx context.Context) error {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return fmt.Errorf("reading %s: %w", w.dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	for _, name := range names {
		w.process(ctx, filepath.Join(w.dir, name))
	}
	return nil
}

// process ingests one file unless it was already ingested at its current
// modification time. Failures are logged and the watcher carries on.
func (w *Watcher) process(ctx context.Context, path string) {
	if !strings.HasSuffix(path, extension) {
		return
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return
	}
	if mod, ok := w.seen[path]; ok && mod.Equal(info.ModTime()) {
		return
	}

	records, err := feed.ReadRecordsFile(path)
	if err != nil {
		logger.Warn("skipping %s: %v", path, err)
		return
	}
	report, err := w.ingest.Ingest(ctx, records)
	if err != nil {
		logger.Warn("ingesting %s: %v", path, err)
		return
	}
	w.seen[path] = info.ModTime()
	logger.Debug("ingested %s: %d accepted of %d", filepath.Base(path), report.Accepted, report.Received)
	if w.opts.OnIngest != nil {
		w.opts.OnIngest(path, report)
	}

	if report.Accepted > 0 {
		select {
		case w.trigger <- struct{}{}:
		default:
		}
	}
}
