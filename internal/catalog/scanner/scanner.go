// Package scanner discovers algorithm functions across a package tree,
// merges their doc comments with their signatures and keeps the result as
// an immutable, cached snapshot.
package scanner

import (
	"context"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/algodoc/algodoc/internal/catalog/cache"
	"github.com/algodoc/algodoc/internal/catalog/docstring"
	catalogerrors "github.com/algodoc/algodoc/internal/catalog/errors"
	"github.com/algodoc/algodoc/internal/catalog/extractor"
	"github.com/algodoc/algodoc/internal/catalog/metadata"
)

// Module is one source file yielded by a Discoverer.
type Module struct {
	Path   string
	Source string
	// Callables lists the public top-level functions in declaration order.
	Callables []string
}

// Discoverer enumerates the modules of a package.
type Discoverer interface {
	Discover(ctx context.Context, pkg string) ([]Module, error)
}

// Reloader refreshes whatever a Discoverer reads from before a rescan.
type Reloader interface {
	Reload(ctx context.Context, pkg string) error
}

// Scanner builds and caches catalog snapshots. It is safe for concurrent
// use; rebuilds are serialized.
type Scanner struct {
	discoverer Discoverer
	reloader   Reloader
	store      cache.Store[*Snapshot]
	parser     *docstring.Parser
	labels     metadata.CategoryLabels
	logger     *zap.Logger

	mu      sync.Mutex
	current atomic.Pointer[Snapshot]
}

// Option configures a Scanner
type Option func(*Scanner)

// WithStore injects the snapshot store
func WithStore(store cache.Store[*Snapshot]) Option {
	return func(s *Scanner) {
		if store != nil {
			s.store = store
		}
	}
}

// WithReloader sets the reload collaborator. By default the discoverer is
// used when it implements Reloader.
func WithReloader(r Reloader) Option {
	return func(s *Scanner) {
		s.reloader = r
	}
}

// WithLabels replaces the category label table
func WithLabels(labels metadata.CategoryLabels) Option {
	return func(s *Scanner) {
		if labels != nil {
			s.labels = labels
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *Scanner) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a scanner over d.
func New(d Discoverer, opts ...Option) *Scanner {
	s := &Scanner{
		discoverer: d,
		store:      cache.NewMemory[*Snapshot](),
		labels:     metadata.DefaultCategoryLabels(),
		logger:     zap.NewNop(),
	}
	if r, ok := d.(Reloader); ok {
		s.reloader = r
	}
	for _, opt := range opts {
		opt(s)
	}
	s.parser = docstring.NewParser(docstring.WithLogger(s.logger))
	return s
}

// Labels returns the category label table in use
func (s *Scanner) Labels() metadata.CategoryLabels {
	return s.labels
}

// Snapshot returns the cached snapshot of pkg, building it on first use.
func (s *Scanner) Snapshot(ctx context.Context, pkg string) (*Snapshot, error) {
	key := packageKey(pkg)
	if entry, ok := s.store.Get(key); ok {
		s.current.Store(entry.Value)
		return entry.Value, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, ok := s.store.Get(key); ok {
		s.current.Store(entry.Value)
		return entry.Value, nil
	}
	return s.rebuild(ctx, key)
}

// Scan returns the algorithms of pkg grouped by raw category.
func (s *Scanner) Scan(ctx context.Context, pkg string) (map[string][]metadata.Algorithm, error) {
	snap, err := s.Snapshot(ctx, pkg)
	if err != nil {
		return nil, err
	}
	return snap.ByCategory(), nil
}

// ScanWithLabels returns the algorithms of pkg grouped by display label.
func (s *Scanner) ScanWithLabels(ctx context.Context, pkg string) (map[string][]metadata.Algorithm, error) {
	snap, err := s.Snapshot(ctx, pkg)
	if err != nil {
		return nil, err
	}
	return snap.ByLabel(s.labels), nil
}

// Categories returns the categories of pkg in first-seen order.
func (s *Scanner) Categories(ctx context.Context, pkg string) ([]string, error) {
	snap, err := s.Snapshot(ctx, pkg)
	if err != nil {
		return nil, err
	}
	return snap.Categories(), nil
}

// GetAllAlgorithms returns every algorithm of the most recently used
// snapshot in scan order, or nil before the first scan.
func (s *Scanner) GetAllAlgorithms() []metadata.Algorithm {
	snap := s.current.Load()
	if snap == nil {
		return nil
	}
	return snap.Algorithms()
}

// GetAlgorithmByID looks id up in the most recently used snapshot.
func (s *Scanner) GetAlgorithmByID(id string) (metadata.Algorithm, bool) {
	snap := s.current.Load()
	if snap == nil {
		return metadata.Algorithm{}, false
	}
	return snap.Get(id)
}

// Invalidate drops the cached snapshot of pkg. Readers holding the old
// snapshot keep a consistent view.
func (s *Scanner) Invalidate(pkg string) {
	s.store.Invalidate(packageKey(pkg))
	s.logger.Debug("snapshot invalidated", zap.String("package", packageKey(pkg)))
}

// InvalidateAll drops every cached snapshot
func (s *Scanner) InvalidateAll() {
	s.store.InvalidateAll()
}

// Reload asks the reload collaborator to refresh pkg, then rebuilds the
// snapshot unconditionally.
func (s *Scanner) Reload(ctx context.Context, pkg string) (*Snapshot, error) {
	key := packageKey(pkg)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.reloader != nil {
		if err := s.reloader.Reload(ctx, key); err != nil {
			return nil, catalogerrors.NewPackageImport(key, err)
		}
	}
	s.store.Invalidate(key)
	return s.rebuild(ctx, key)
}

// rebuild must be called with s.mu held.
func (s *Scanner) rebuild(ctx context.Context, key string) (*Snapshot, error) {
	snap, err := s.build(ctx, key)
	if err != nil {
		s.logger.Error("scan failed", zap.String("package", key), zap.Error(err))
		return nil, err
	}
	s.store.Set(key, snap, snap.Fingerprint)
	s.current.Store(snap)

	s.logger.Info("package scanned",
		zap.String("package", key),
		zap.String("revision", snap.Revision),
		zap.Int("modules", snap.Report.Modules),
		zap.Int("algorithms", snap.Len()),
		zap.Int("skipped", len(snap.Report.Skipped)),
		zap.Duration("duration", snap.Report.Duration))
	return snap, nil
}

func (s *Scanner) build(ctx context.Context, key string) (*Snapshot, error) {
	start := time.Now()

	modules, err := s.discoverer.Discover(ctx, key)
	if err != nil {
		return nil, catalogerrors.NewPackageImport(key, err)
	}
	modules = append([]Module(nil), modules...)
	sort.SliceStable(modules, func(i, j int) bool { return modules[i].Path < modules[j].Path })

	b := newBuilder()
	pairs := make([][2]string, 0, len(modules))
	for _, mod := range modules {
		if err := ctx.Err(); err != nil {
			return nil, catalogerrors.NewPackageImport(key, err)
		}
		pairs = append(pairs, [2]string{mod.Path, mod.Source})
		s.scanModule(b, mod)
	}

	snap := b.snapshot(key)
	snap.Revision = uuid.NewString()
	snap.Fingerprint = cache.Fingerprint(pairs...)
	snap.ScannedAt = time.Now()
	snap.Report.Duration = time.Since(start)
	return snap, nil
}

func (s *Scanner) scanModule(b *builder, mod Module) {
	b.report.Modules++
	src, err := extractor.ParseSource(mod.Path, mod.Source)
	if err != nil {
		s.logger.Warn("skipping module", zap.String("module", mod.Path), zap.Error(err))
		b.skip(mod.Path, "", err)
		return
	}

	for _, name := range mod.Callables {
		b.report.Functions++
		fn, err := src.Function(name)
		if err != nil {
			s.logger.Warn("skipping function", zap.String("module", mod.Path),
				zap.String("function", name), zap.Error(err))
			b.skip(mod.Path, name, err)
			continue
		}
		if !docstring.HasAlgorithm(fn.Doc) {
			continue
		}

		doc := s.parser.Parse(fn.Doc)
		a, warnings, err := Assemble(fn, src.Imports, doc)
		for _, w := range warnings {
			w.WithFile(mod.Path).WithSymbol(name)
			s.logger.Warn("docstring warning", zap.String("module", mod.Path),
				zap.String("function", name), zap.String("message", w.Message))
		}
		b.report.Warnings = append(b.report.Warnings, warnings...)
		if err != nil {
			s.logger.Warn("skipping function", zap.String("module", mod.Path),
				zap.String("function", name), zap.Error(err))
			b.skip(mod.Path, name, err)
			continue
		}

		if prev, dup := b.add(a, mod.Path); dup {
			diag := catalogerrors.NewDuplicateIdentifier(a.ID, prev, mod.Path)
			b.report.Duplicates = append(b.report.Duplicates, Duplicate{ID: a.ID, Previous: prev, Current: mod.Path})
			b.report.Warnings = append(b.report.Warnings, diag)
			s.logger.Warn("duplicate algorithm id", zap.String("id", a.ID),
				zap.String("previous", prev), zap.String("current", mod.Path))
		}
	}
}

func packageKey(pkg string) string {
	pkg = strings.Trim(strings.TrimSpace(pkg), "/")
	if pkg == "" {
		return "."
	}
	return pkg
}
