package driver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/nissy-dev/stc/pkg/ast"
	"github.com/nissy-dev/stc/pkg/binding"
	"github.com/nissy-dev/stc/pkg/checker"
	"github.com/nissy-dev/stc/pkg/diag"
	"github.com/nissy-dev/stc/pkg/env"
	"github.com/nissy-dev/stc/pkg/passes"
	"github.com/nissy-dev/stc/pkg/types"
)

// errCycle tells an importer that waiting for a module would close an
// import cycle.
var errCycle = errors.New("driver: import cycle")

// Status is the analysis state of a module record.
type Status int

const (
	Unanalyzed Status = iota
	InProgress
	Done
	Failed
)

func (s Status) String() string {
	switch s {
	case InProgress:
		return "in-progress"
	case Done:
		return "done"
	case Failed:
		return "failed"
	}
	return "unanalyzed"
}

// record is the cache entry of one module. The owner task alone mutates
// an InProgress record; once Done or Failed it is shared read-only.
type record struct {
	path    string
	status  Status
	owner   *task
	done    chan struct{}
	pre     *passes.Result
	module  *checker.Module
	exports *checker.Exports
}

// task is one chain of analyses running on a single goroutine. Nested
// imports are analyzed on the task that discovered them.
type task struct {
	id        int
	ctx       context.Context
	waitingOn *record

	// release and acquire hand the worker slot back while the task waits
	// on another task's module. Both are nil outside the scheduler.
	release func()
	acquire func(ctx context.Context) error
	// prefetch is told about every dependency a module imports.
	prefetch func(path string)
}

// pendingLazy is a placeholder export handed out while its module was
// still in progress. It is resolved once the module is Done.
type pendingLazy struct {
	lz       *types.Lazy
	owner    *record
	name     string
	typeSide bool
}

type loaderMetrics struct {
	cacheHits   atomic.Int64
	cacheMisses atomic.Int64
	waits       atomic.Int64
	cycles      atomic.Int64
}

// Loader is the shared module cache. It resolves specifiers, analyzes
// each module at most once per run and hands out placeholder export
// tables to import cycles.
type Loader struct {
	env      *env.Environment
	fsys     FS
	resolver *Resolver
	parser   Parser
	logger   *slog.Logger
	diags    *diag.Collector
	metrics  loaderMetrics

	mu       sync.Mutex
	records  map[string]*record
	pending  map[*types.Lazy]*pendingLazy
	analyses map[string]int
	nextTask int
	fatal    error
}

// NewLoader builds a loader reading modules from fsys and parsing them
// with parser.
func NewLoader(e *env.Environment, fsys FS, parser Parser) *Loader {
	if parser == nil {
		parser = SidecarParser{}
	}
	return &Loader{
		env:      e,
		fsys:     fsys,
		resolver: NewResolver(fsys, e.Options()),
		parser:   parser,
		diags:    diag.NewCollector(),
		records:  make(map[string]*record),
		pending:  make(map[*types.Lazy]*pendingLazy),
		analyses: make(map[string]int),
	}
}

// WithLogger sets the logger used for cache and cycle events.
func (l *Loader) WithLogger(logger *slog.Logger) *Loader {
	l.logger = logger
	return l
}

func (l *Loader) log() *slog.Logger {
	if l.logger == nil {
		return slog.Default()
	}
	return l.logger
}

// Resolver returns the resolver used for import specifiers.
func (l *Loader) Resolver() *Resolver { return l.resolver }

// Analyses reports how many times the module at path was analyzed.
func (l *Loader) Analyses(path string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.analyses[cleanPath(path)]
}

// Status reports the state of the module at path.
func (l *Loader) Status(path string) Status {
	l.mu.Lock()
	defer l.mu.Unlock()
	if rec, ok := l.records[cleanPath(path)]; ok {
		return rec.status
	}
	return Unanalyzed
}

func (l *Loader) newTask(ctx context.Context) *task {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.nextTask++
	return &task{id: l.nextTask, ctx: ctx}
}

// Load analyzes the module at path, and everything it imports, on the
// calling goroutine.
func (l *Loader) Load(ctx context.Context, path string) (*checker.Module, error) {
	t := l.newTask(ctx)
	rec, err := l.load(t, cleanPath(path))
	if err != nil {
		return nil, err
	}
	if err := l.fatalErr(); err != nil {
		return nil, err
	}
	l.finishCycles()
	return rec.module, nil
}

func (l *Loader) fatalErr() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.fatal
}

// load returns the finished record of path. It blocks while another task
// owns the module unless waiting would close a cycle, in which case it
// returns errCycle.
func (l *Loader) load(t *task, path string) (*record, error) {
	for {
		if err := t.ctx.Err(); err != nil {
			return nil, err
		}
		l.mu.Lock()
		rec := l.records[path]
		if rec == nil || rec.status == Unanalyzed {
			rec = &record{path: path, status: InProgress, owner: t, done: make(chan struct{})}
			l.records[path] = rec
			l.analyses[path]++
			l.mu.Unlock()
			l.metrics.cacheMisses.Add(1)
			l.log().Debug("cache miss", slog.String("module", path), slog.Int("task", t.id))
			l.analyze(t, rec)
			if err := t.ctx.Err(); err != nil {
				return nil, err
			}
			return rec, nil
		}
		if rec.status != InProgress {
			l.mu.Unlock()
			l.metrics.cacheHits.Add(1)
			l.log().Debug("cache hit", slog.String("module", path), slog.String("status", rec.status.String()))
			return rec, nil
		}
		if l.closesCycle(t, rec) {
			l.mu.Unlock()
			return nil, errCycle
		}
		t.waitingOn = rec
		l.mu.Unlock()

		l.metrics.waits.Add(1)
		l.log().Debug("waiting on module", slog.String("module", path), slog.Int("task", t.id), slog.Int("owner", rec.owner.id))
		err := l.wait(t, rec)
		l.mu.Lock()
		t.waitingOn = nil
		l.mu.Unlock()
		if err != nil {
			return nil, err
		}
	}
}

func (l *Loader) wait(t *task, rec *record) error {
	if t.release != nil {
		t.release()
	}
	select {
	case <-rec.done:
	case <-t.ctx.Done():
	}
	if t.acquire != nil {
		if err := t.acquire(t.ctx); err != nil {
			t.acquire, t.release = nil, nil
			return err
		}
	}
	return t.ctx.Err()
}

// closesCycle reports whether t waiting on rec would wait on itself,
// directly or through the tasks rec's owner is waiting on. Callers hold
// l.mu.
func (l *Loader) closesCycle(t *task, rec *record) bool {
	for steps := 0; rec != nil && steps <= len(l.records); steps++ {
		if rec.status != InProgress {
			return false
		}
		owner := rec.owner
		if owner == t {
			return true
		}
		if owner == nil {
			return false
		}
		rec = owner.waitingOn
	}
	return false
}

// analyze runs the passes and the checker on rec. A module that can not be
// parsed or whose analysis panics becomes Failed with an Internal
// diagnostic; an invariant violation is also recorded as run-fatal.
func (l *Loader) analyze(t *task, rec *record) {
	defer func() {
		if r := recover(); r != nil {
			if inv, ok := r.(*types.InvariantError); ok {
				l.mu.Lock()
				if l.fatal == nil {
					l.fatal = inv
				}
				l.mu.Unlock()
				l.log().Error("invariant violated", slog.String("module", rec.path), slog.Any("error", inv))
				l.fail(rec, fmt.Sprintf("Internal error: %v", inv))
				return
			}
			l.log().Error("analysis panicked",
				slog.String("module", rec.path),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())))
			l.fail(rec, fmt.Sprintf("Internal error while checking module: %v", r))
		}
	}()

	mod, err := l.parser.Parse(l.fsys, rec.path)
	if err != nil {
		l.fail(rec, fmt.Sprintf("Cannot read syntax tree: %v", err))
		return
	}
	pre := passes.Run(mod, rec.path, l.env.GlobalScope())
	l.mu.Lock()
	rec.pre = pre
	l.mu.Unlock()
	if t.prefetch != nil {
		for _, spec := range pre.Specifiers {
			if dep, err := l.resolver.Resolve(spec, rec.path); err == nil {
				t.prefetch(dep)
			}
		}
	}

	m, err := checker.New(l.env, &moduleImporter{loader: l, task: t}).CheckModule(mod, pre)
	if err != nil {
		l.fail(rec, fmt.Sprintf("Internal error while checking module: %v", err))
		return
	}
	if t.ctx.Err() != nil {
		l.discard(rec)
		return
	}
	l.mu.Lock()
	rec.module = m
	rec.exports = m.Exports
	rec.status = Done
	l.mu.Unlock()
	l.diags.Add(rec.path, m.Diagnostics...)
	close(rec.done)
	l.Settle()
}

func (l *Loader) fail(rec *record, message string) {
	d := diag.New(diag.Internal, ast.Span{}, "%s", message)
	l.mu.Lock()
	if rec.status != InProgress {
		l.mu.Unlock()
		return
	}
	rec.status = Failed
	rec.exports = l.failedExports(rec.path)
	l.mu.Unlock()
	l.diags.Add(rec.path, d)
	close(rec.done)
}

// discard drops a module analyzed under a cancelled run so a later run
// starts it afresh.
func (l *Loader) discard(rec *record) {
	l.mu.Lock()
	rec.status = Unanalyzed
	rec.module, rec.exports = nil, nil
	l.mu.Unlock()
	l.diags.Reset(rec.path)
	close(rec.done)
}

// failedExports is the table of a module that could not be analyzed: it
// lists nothing and answers every name with the fallback type.
func (l *Loader) failedExports(path string) *checker.Exports {
	return checker.NewPlaceholderExports(path, l.env.Interner().Namespace(path), nil, func(name string) *binding.Symbol {
		sym := binding.NewSymbol(name, path)
		sym.SetValueType(types.Fallback)
		sym.SetType(types.Fallback)
		return sym
	})
}

// placeholderExports stands in for rec while its analysis is further up
// the import chain. Every export is a lazy type resolved by Settle.
func (l *Loader) placeholderExports(rec *record) *checker.Exports {
	l.mu.Lock()
	var names []string
	if rec.pre != nil {
		for _, e := range rec.pre.Exports {
			if e.Kind != passes.ExportStar {
				names = append(names, e.Name)
			}
		}
	}
	l.mu.Unlock()
	l.metrics.cycles.Add(1)
	l.log().Debug("import cycle", slog.String("module", rec.path), slog.Int("exports", len(names)))

	in := l.env.Interner()
	return checker.NewPlaceholderExports(rec.path, in.Namespace(rec.path), names, func(name string) *binding.Symbol {
		sym := binding.NewSymbol(name, rec.path)
		sym.SetValueType(l.lazy(rec, name, false))
		sym.SetType(l.lazy(rec, name, true))
		return sym
	})
}

func (l *Loader) lazy(rec *record, name string, typeSide bool) *types.Lazy {
	module := rec.path
	if typeSide {
		module = "type:" + rec.path
	}
	lz := l.env.Interner().Lazy(module, name)
	if _, ok := lz.Resolved(); ok {
		return lz
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.pending[lz]; !ok {
		l.pending[lz] = &pendingLazy{lz: lz, owner: rec, name: name, typeSide: typeSide}
	}
	return lz
}

// Settle resolves the placeholders whose module has finished, repeating
// until no placeholder makes progress. A placeholder whose export resolves
// to itself is circular.
func (l *Loader) Settle() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for round := 1; ; round++ {
		progress := false
		for lz, p := range l.pending {
			switch p.owner.status {
			case Done, Failed:
			default:
				continue
			}
			target, ok := l.exportSide(p)
			if !ok {
				if !p.typeSide {
					l.diags.Add(p.owner.path, diag.New(diag.UnresolvedSymbol, ast.Span{},
						"Module '%s' has no exported member '%s'.", p.owner.path, p.name))
				}
				lz.Resolve(types.Fallback)
				delete(l.pending, lz)
				progress = true
				continue
			}
			if inner, ok := types.Deref(target).(*types.Lazy); ok {
				if inner == lz {
					l.circular(p)
					lz.Resolve(types.Unknown)
					delete(l.pending, lz)
					progress = true
				}
				continue
			}
			lz.Resolve(target)
			delete(l.pending, lz)
			progress = true
		}
		l.log().Debug("settle round", slog.Int("round", round), slog.Int("pending", len(l.pending)))
		if !progress {
			return
		}
	}
}

// finishCycles reports every placeholder left after the run went quiet:
// its export only ever resolved through other placeholders.
func (l *Loader) finishCycles() {
	l.Settle()
	l.mu.Lock()
	defer l.mu.Unlock()
	for lz, p := range l.pending {
		if p.owner.status != Done && p.owner.status != Failed {
			continue
		}
		l.circular(p)
		lz.Resolve(types.Unknown)
		delete(l.pending, lz)
	}
}

// circular reports p as a CircularTypeError. Callers hold l.mu.
func (l *Loader) circular(p *pendingLazy) {
	if p.typeSide {
		return
	}
	var span ast.Span
	if p.owner.exports != nil {
		if sym, ok := p.owner.exports.Lookup(p.name); ok && sym != nil && len(sym.Sites) > 0 {
			span = sym.First().Span()
		}
	}
	l.diags.Add(p.owner.path, diag.New(diag.CircularTypeError, span,
		"'%s' is referenced directly or indirectly in its own type through an import cycle.", p.name))
}

// exportSide looks up the finished type behind p. Callers hold l.mu.
func (l *Loader) exportSide(p *pendingLazy) (types.Type, bool) {
	if p.owner.exports == nil {
		return types.Fallback, true
	}
	sym, ok := p.owner.exports.Lookup(p.name)
	if !ok || sym == nil {
		return nil, false
	}
	var t types.Type
	if p.typeSide {
		if sym.HasType() {
			t = sym.Type()
		}
	} else if sym.HasValue() {
		t = sym.ValueType()
	}
	if t == nil {
		t = types.Fallback
	}
	return t, true
}

// moduleImporter serves a checker's imports from the loader on the task
// analyzing the importing module.
type moduleImporter struct {
	loader *Loader
	task   *task
}

func (m *moduleImporter) Import(from, specifier string) (*checker.Exports, error) {
	path, err := m.loader.resolver.Resolve(specifier, from)
	if err != nil {
		return nil, err
	}
	rec, err := m.loader.load(m.task, path)
	if err == errCycle {
		m.loader.mu.Lock()
		owner := m.loader.records[path]
		m.loader.mu.Unlock()
		return m.loader.placeholderExports(owner), nil
	}
	if err != nil {
		return nil, err
	}
	return rec.exports, nil
}
