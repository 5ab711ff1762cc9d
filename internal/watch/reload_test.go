package watch

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/algodoc/algodoc/internal/catalog/scanner"
)

type fakeRescanner struct {
	calls int
	pkg   string
	err   error
}

func (f *fakeRescanner) Reload(ctx context.Context, pkg string) (*scanner.Snapshot, error) {
	f.calls++
	f.pkg = pkg
	if f.err != nil {
		return nil, f.err
	}
	return &scanner.Snapshot{Package: pkg, Revision: "rev-1"}, nil
}

func TestFilterModules(t *testing.T) {
	files := []string{
		"lib/smooth.go",
		"lib/smooth_test.go",
		"lib/README.md",
		"lib/testdata/fixture.go",
		"lib/.cache/x.go",
		"lib/plots/bar.go",
	}
	assert.Equal(t, []string{"lib/smooth.go", "lib/plots/bar.go"}, FilterModules(files))
}

func TestReloaderRescansOnModuleChange(t *testing.T) {
	fake := &fakeRescanner{}
	r := NewReloader(fake, "algorithms", nil)

	var notified *ReloadResult
	r.OnReload(func(res *ReloadResult) { notified = res })

	res, err := r.HandleChanges(context.Background(), []string{"algorithms/smooth.go", "notes.md"})
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.True(t, res.Success)
	assert.Equal(t, "rev-1", res.Revision)
	assert.Equal(t, []string{"algorithms/smooth.go"}, res.ChangedFiles)
	assert.Equal(t, "algorithms", fake.pkg)
	assert.Same(t, res, notified)
	assert.Same(t, res, r.Last())
}

func TestReloaderIgnoresNonModules(t *testing.T) {
	fake := &fakeRescanner{}
	r := NewReloader(fake, "algorithms", nil)

	res, err := r.HandleChanges(context.Background(), []string{"notes.md", "smooth_test.go"})
	require.NoError(t, err)
	assert.Nil(t, res)
	assert.Zero(t, fake.calls)
}

func TestReloaderReportsFailure(t *testing.T) {
	fake := &fakeRescanner{err: stderrors.New("gone")}
	r := NewReloader(fake, "algorithms", nil)

	err := r.Callback(context.Background())([]string{"smooth.go"})
	require.Error(t, err)
	require.NotNil(t, r.Last())
	assert.False(t, r.Last().Success)
	assert.EqualError(t, r.Last().Err, "gone")
}
