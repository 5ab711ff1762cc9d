package watch

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/algodoc/algodoc/internal/catalog/scanner"
)

// Rescanner rebuilds the snapshot of a package
type Rescanner interface {
	Reload(ctx context.Context, pkg string) (*scanner.Snapshot, error)
}

// ReloadResult describes one reload triggered by a batch of changes
type ReloadResult struct {
	Success      bool
	ChangedFiles []string
	Revision     string
	Algorithms   int
	Skipped      int
	Duration     time.Duration
	Err          error
}

// Reloader turns batches of changed files into package rescans.
type Reloader struct {
	scanner Rescanner
	pkg     string
	logger  *zap.Logger

	mu       sync.Mutex
	last     *ReloadResult
	onReload func(*ReloadResult)
}

// NewReloader creates a reloader that rescans pkg
func NewReloader(s Rescanner, pkg string, logger *zap.Logger) *Reloader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reloader{scanner: s, pkg: pkg, logger: logger}
}

// OnReload registers a function called after every reload
func (r *Reloader) OnReload(fn func(*ReloadResult)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onReload = fn
}

// Last returns the most recent result, or nil
func (r *Reloader) Last() *ReloadResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

// HandleChanges rescans the package when any of files is a module. Other
// files are ignored and yield a nil result.
func (r *Reloader) HandleChanges(ctx context.Context, files []string) (*ReloadResult, error) {
	modules := FilterModules(files)
	if len(modules) == 0 {
		return nil, nil
	}

	start := time.Now()
	result := &ReloadResult{ChangedFiles: modules}

	snap, err := r.scanner.Reload(ctx, r.pkg)
	result.Duration = time.Since(start)
	if err != nil {
		result.Err = err
		r.logger.Error("reload failed", zap.String("package", r.pkg), zap.Error(err))
	} else {
		result.Success = true
		result.Revision = snap.Revision
		result.Algorithms = snap.Len()
		result.Skipped = len(snap.Report.Skipped)
		r.logger.Info("library reloaded",
			zap.String("package", r.pkg),
			zap.Strings("changed", modules),
			zap.Int("algorithms", result.Algorithms),
			zap.Duration("duration", result.Duration))
	}

	r.mu.Lock()
	r.last = result
	notify := r.onReload
	r.mu.Unlock()
	if notify != nil {
		notify(result)
	}
	return result, err
}

// Callback adapts the reloader to FileWatcher's change callback
func (r *Reloader) Callback(ctx context.Context) func([]string) error {
	return func(files []string) error {
		_, err := r.HandleChanges(ctx, files)
		return err
	}
}

// FilterModules keeps the Go source files a scan would read
func FilterModules(files []string) []string {
	var out []string
	for _, f := range files {
		base := filepath.Base(f)
		if filepath.Ext(base) != ".go" || strings.HasSuffix(base, "_test.go") {
			continue
		}
		if underSkippedDir(f) {
			continue
		}
		out = append(out, f)
	}
	return out
}

func underSkippedDir(path string) bool {
	dir := filepath.Dir(filepath.ToSlash(path))
	for _, part := range strings.Split(dir, "/") {
		if part != "." && part != ".." && part != "" && skipDir(part) {
			return true
		}
	}
	return false
}
