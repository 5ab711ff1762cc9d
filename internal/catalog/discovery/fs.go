// Package discovery enumerates algorithm modules from a directory tree.
package discovery

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/algodoc/algodoc/internal/catalog/extractor"
	"github.com/algodoc/algodoc/internal/catalog/scanner"
)

// FS discovers modules as .go files below a root directory. Test files,
// testdata and hidden or underscore-prefixed directories are skipped.
type FS struct {
	fs     afero.Fs
	root   string
	logger *zap.Logger
}

// Option configures an FS discoverer
type Option func(*FS)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(d *FS) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// New creates a discoverer rooted at root on fsys.
func New(fsys afero.Fs, root string, opts ...Option) *FS {
	d := &FS{fs: fsys, root: root, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// NewOS creates a discoverer over the operating system filesystem
func NewOS(root string, opts ...Option) *FS {
	return New(afero.NewOsFs(), root, opts...)
}

var _ scanner.Discoverer = (*FS)(nil)
var _ scanner.Reloader = (*FS)(nil)

// Discover returns every module below root/pkg sorted by path. Module
// paths are slash-separated and relative to root.
func (d *FS) Discover(ctx context.Context, pkg string) ([]scanner.Module, error) {
	dir := d.dir(pkg)
	info, err := d.fs.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	var modules []scanner.Module
	walkErr := afero.Walk(d.fs, dir, func(p string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if info.IsDir() {
			if p != dir && skipDir(info.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !isModule(info.Name()) {
			return nil
		}

		content, err := afero.ReadFile(d.fs, p)
		if err != nil {
			return fmt.Errorf("read %s: %w", p, err)
		}
		rel, err := filepath.Rel(d.root, p)
		if err != nil {
			rel = p
		}
		mod := scanner.Module{Path: filepath.ToSlash(rel), Source: string(content)}

		if src, perr := extractor.ParseSource(mod.Path, mod.Source); perr == nil {
			mod.Callables = src.PublicFunctions()
		} else {
			d.logger.Debug("module does not parse", zap.String("module", mod.Path), zap.Error(perr))
		}
		modules = append(modules, mod)
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, walkErr)
	}

	sort.Slice(modules, func(i, j int) bool { return modules[i].Path < modules[j].Path })
	d.logger.Debug("discovered modules", zap.String("package", pkg), zap.Int("count", len(modules)))
	return modules, nil
}

// Reload checks that the package directory is still readable. Sources are
// re-read on every Discover, so there is nothing else to refresh.
func (d *FS) Reload(ctx context.Context, pkg string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := d.fs.Stat(d.dir(pkg)); err != nil {
		return fmt.Errorf("reload %s: %w", pkg, err)
	}
	return nil
}

func (d *FS) dir(pkg string) string {
	pkg = strings.Trim(filepath.ToSlash(pkg), "/")
	if pkg == "" || pkg == "." {
		return d.root
	}
	return filepath.Join(d.root, filepath.FromSlash(path.Clean(pkg)))
}

func skipDir(name string) bool {
	return name == "testdata" || name == "vendor" ||
		strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")
}

func isModule(name string) bool {
	return strings.HasSuffix(name, ".go") && !strings.HasSuffix(name, "_test.go")
}
