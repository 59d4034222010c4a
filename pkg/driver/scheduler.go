package driver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/hashicorp/go-set/v3"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/nissy-dev/stc/pkg/checker"
	"github.com/nissy-dev/stc/pkg/diag"
	"github.com/nissy-dev/stc/pkg/types"
)

// ErrCancelled is returned by Run when the run's context ends before every
// module finished. It wraps the context's error.
var ErrCancelled = errors.New("driver: run cancelled")

// Scheduler checks a module graph with a bounded pool of workers sharing
// one Loader.
type Scheduler struct {
	loader  *Loader
	workers int
	logger  *slog.Logger
}

// NewScheduler returns a scheduler running at most workers analyses at a
// time; workers <= 0 means GOMAXPROCS.
func NewScheduler(loader *Loader, workers int) *Scheduler {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Scheduler{loader: loader, workers: workers}
}

// WithLogger sets the logger for run summaries.
func (s *Scheduler) WithLogger(logger *slog.Logger) *Scheduler {
	s.logger = logger
	return s
}

func (s *Scheduler) log() *slog.Logger {
	if s.logger == nil {
		return slog.Default()
	}
	return s.logger
}

// Result is the outcome of a run.
type Result struct {
	// Diagnostics of every reached module, ordered by path then position.
	Diagnostics []diag.Diagnostic

	modules map[string]*checker.Module
	exports map[string]*checker.Exports
}

// Paths lists the analyzed modules in sorted order.
func (r *Result) Paths() []string {
	out := make([]string, 0, len(r.exports))
	for p := range r.exports {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Module returns the checked module at path, or nil when it failed or was
// never reached.
func (r *Result) Module(path string) *checker.Module {
	return r.modules[cleanPath(path)]
}

// Exports maps each export of the module at path to its type.
func (r *Result) Exports(path string) map[string]types.Type {
	return r.exports[cleanPath(path)].Types()
}

// Run analyzes entries and every module they reach. Dependencies are
// spawned as their own tasks as soon as an importer's passes discover
// them; a task waiting on another task's module gives up its worker slot
// until that module finishes.
func (s *Scheduler) Run(ctx context.Context, entries []string) (*Result, error) {
	start := time.Now()
	l := s.loader
	for _, e := range entries {
		if !isFile(l.fsys, cleanPath(e)) {
			return nil, fmt.Errorf("driver: entry %s: %w", e, ErrUnresolvedModule)
		}
	}

	sem := semaphore.NewWeighted(int64(s.workers))
	g, gctx := errgroup.WithContext(ctx)
	var mu sync.Mutex
	spawned := set.New[string](len(entries))

	var spawn func(path string)
	spawn = func(path string) {
		mu.Lock()
		fresh := spawned.Insert(path)
		mu.Unlock()
		if !fresh {
			return
		}
		g.Go(func() error {
			if err := sem.Acquire(gctx, 1); err != nil {
				return err
			}
			held := true
			t := l.newTask(gctx)
			t.release = func() {
				sem.Release(1)
				held = false
			}
			t.acquire = func(ctx context.Context) error {
				if err := sem.Acquire(ctx, 1); err != nil {
					return err
				}
				held = true
				return nil
			}
			t.prefetch = spawn
			defer func() {
				if held {
					sem.Release(1)
				}
			}()
			if _, err := l.load(t, path); err != nil && !errors.Is(err, errCycle) {
				return err
			}
			return l.fatalErr()
		})
	}
	for _, e := range entries {
		spawn(cleanPath(e))
	}

	err := g.Wait()
	if fatal := l.fatalErr(); fatal != nil {
		return nil, fatal
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%w: %w", ErrCancelled, ctxErr)
		}
		return nil, err
	}
	l.finishCycles()

	res := s.collect()
	s.log().Info("check finished",
		slog.Int("modules", len(res.exports)),
		slog.Int("diagnostics", len(res.Diagnostics)),
		slog.Int64("cache_hits", l.metrics.cacheHits.Load()),
		slog.Int64("waits", l.metrics.waits.Load()),
		slog.Int64("cycles", l.metrics.cycles.Load()),
		slog.Duration("elapsed", time.Since(start)))
	return res, nil
}

func (s *Scheduler) collect() *Result {
	l := s.loader
	l.mu.Lock()
	res := &Result{
		modules: make(map[string]*checker.Module, len(l.records)),
		exports: make(map[string]*checker.Exports, len(l.records)),
	}
	for path, rec := range l.records {
		switch rec.status {
		case Done:
			res.modules[path] = rec.module
			res.exports[path] = rec.exports
		case Failed:
			res.exports[path] = rec.exports
		}
	}
	l.mu.Unlock()
	res.Diagnostics = l.diags.Sorted()
	return res
}
