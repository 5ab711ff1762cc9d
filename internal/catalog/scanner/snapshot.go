package scanner

import (
	"time"

	catalogerrors "github.com/algodoc/algodoc/internal/catalog/errors"
	"github.com/algodoc/algodoc/internal/catalog/metadata"
)

// Skip records a module or function left out of a snapshot.
type Skip struct {
	Module   string
	Function string
	Err      error
}

// Duplicate records an id defined more than once. Current replaced
// Previous.
type Duplicate struct {
	ID       string
	Previous string
	Current  string
}

// Report summarizes one scan.
type Report struct {
	Modules    int
	Functions  int
	Skipped    []Skip
	Duplicates []Duplicate
	Warnings   catalogerrors.List
	Duration   time.Duration
}

// Snapshot is the immutable result of scanning one package. Accessors
// return copies, so callers can never change a cached snapshot.
type Snapshot struct {
	Package     string
	Revision    string
	Fingerprint string
	ScannedAt   time.Time
	Report      Report

	byID   map[string]metadata.Algorithm
	order  []string
	origin map[string]string
}

// Len returns the number of algorithms
func (s *Snapshot) Len() int {
	return len(s.order)
}

// Get returns a copy of the algorithm with the given id
func (s *Snapshot) Get(id string) (metadata.Algorithm, bool) {
	a, ok := s.byID[id]
	if !ok {
		return metadata.Algorithm{}, false
	}
	return a.Clone(), true
}

// Module returns the module path an algorithm was read from
func (s *Snapshot) Module(id string) (string, bool) {
	m, ok := s.origin[id]
	return m, ok
}

// Algorithms returns copies of every algorithm in scan order.
func (s *Snapshot) Algorithms() []metadata.Algorithm {
	out := make([]metadata.Algorithm, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id].Clone())
	}
	return out
}

// Categories returns the categories in order of first appearance.
func (s *Snapshot) Categories() []string {
	var out []string
	seen := make(map[string]bool)
	for _, id := range s.order {
		c := s.byID[id].Category
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}

// ByCategory groups algorithms by raw category, each list in scan order.
func (s *Snapshot) ByCategory() map[string][]metadata.Algorithm {
	out := make(map[string][]metadata.Algorithm)
	for _, id := range s.order {
		a := s.byID[id]
		out[a.Category] = append(out[a.Category], a.Clone())
	}
	return out
}

// ByLabel groups algorithms by the display label of their category.
func (s *Snapshot) ByLabel(labels metadata.CategoryLabels) map[string][]metadata.Algorithm {
	out := make(map[string][]metadata.Algorithm)
	for _, id := range s.order {
		a := s.byID[id]
		label := labels.Label(a.Category)
		out[label] = append(out[label], a.Clone())
	}
	return out
}

// builder accumulates a snapshot; it is never shared.
type builder struct {
	byID   map[string]metadata.Algorithm
	order  []string
	origin map[string]string
	report Report
}

func newBuilder() *builder {
	return &builder{
		byID:   make(map[string]metadata.Algorithm),
		origin: make(map[string]string),
	}
}

// add stores a, replacing any earlier algorithm with the same id. The
// replaced algorithm's module is returned with dup set.
func (b *builder) add(a metadata.Algorithm, module string) (prev string, dup bool) {
	if old, exists := b.origin[a.ID]; exists {
		prev, dup = old, true
		for i, id := range b.order {
			if id == a.ID {
				b.order = append(b.order[:i], b.order[i+1:]...)
				break
			}
		}
	}
	b.byID[a.ID] = a
	b.origin[a.ID] = module
	b.order = append(b.order, a.ID)
	return prev, dup
}

func (b *builder) skip(module, function string, err error) {
	b.report.Skipped = append(b.report.Skipped, Skip{Module: module, Function: function, Err: err})
}

func (b *builder) snapshot(pkg string) *Snapshot {
	return &Snapshot{
		Package: pkg,
		Report:  b.report,
		byID:    b.byID,
		order:   b.order,
		origin:  b.origin,
	}
}
