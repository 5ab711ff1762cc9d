package scanner

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/algodoc/algodoc/internal/catalog/cache"
	catalogerrors "github.com/algodoc/algodoc/internal/catalog/errors"
	"github.com/algodoc/algodoc/internal/catalog/extractor"
	"github.com/algodoc/algodoc/internal/catalog/metadata"
)

const anomalySource = `package anomaly

import "math"

// iqr_anomaly flags rows outside the interquartile fences.
//
// Algorithm:
//
//	name: IQR Anomaly
//	category: anomaly_detection
//
// Parameters:
//
//	df (DataFrame): Input table
//	multiplier (float): Fence multiplier
//	  - default: 1.5
//	  - min: 0.5
//	  - max: 5.0
func iqr_anomaly(df DataFrame, multiplier float64) DataFrame {
	_ = math.Abs(multiplier)
	return df
}

// helper is not an algorithm.
func helper() {}
`

const plotSource = `package plotting

// line_plot draws a line chart.
//
// Algorithm:
//
//	name: Line Plot
//	category: plotting
//	node_type: chart
//
// Parameters:
//
//	df (DataFrame): Data
//	x_column (str): X axis
//	color (str): Line color
//	  - default: "#1f77b4"
func line_plot(df DataFrame, x_column string, color string) (Figure, error) {
	return nil, nil
}

// zscore_anomaly flags rows by z-score.
//
// Algorithm:
//
//	name: Z-Score Anomaly
//	category: anomaly_detection
func zscore_anomaly(df DataFrame) DataFrame {
	return df
}
`

const invalidSource = `package broken

// pick chooses a mode.
//
// Algorithm:
//
//	name: Pick
//
// Parameters:
//
//	mode (str): Mode
//	  - widget: select
//	  - options: a, b, c
//	  - default: z
func pick(mode string) {}
`

type fakeDiscoverer struct {
	mu      sync.Mutex
	modules []Module
	err     error
	calls   int
	reloads int
}

func (f *fakeDiscoverer) Discover(ctx context.Context, pkg string) ([]Module, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.modules, nil
}

func (f *fakeDiscoverer) Reload(ctx context.Context, pkg string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reloads++
	return nil
}

func (f *fakeDiscoverer) set(modules ...Module) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.modules = modules
}

func module(t *testing.T, path, src string) Module {
	t.Helper()
	mod := Module{Path: path, Source: src}
	if parsed, err := extractor.ParseSource(path, src); err == nil {
		mod.Callables = parsed.PublicFunctions()
	}
	return mod
}

func newLibrary(t *testing.T) *fakeDiscoverer {
	return &fakeDiscoverer{modules: []Module{
		module(t, "plotting/line.go", plotSource),
		module(t, "anomaly/iqr.go", anomalySource),
	}}
}

func TestScanGroupsByCategory(t *testing.T) {
	s := New(newLibrary(t))

	groups, err := s.Scan(context.Background(), "algorithms")
	require.NoError(t, err)

	require.Len(t, groups["anomaly_detection"], 2)
	assert.Equal(t, "iqr_anomaly", groups["anomaly_detection"][0].ID)
	assert.Equal(t, "zscore_anomaly", groups["anomaly_detection"][1].ID)
	require.Len(t, groups["plotting"], 1)

	categories, err := s.Categories(context.Background(), "algorithms")
	require.NoError(t, err)
	assert.Equal(t, []string{"anomaly_detection", "plotting"}, categories)

	_, ok := s.GetAlgorithmByID("helper")
	assert.False(t, ok)
}

func TestScanMergesSignatureAndDocstring(t *testing.T) {
	s := New(newLibrary(t))
	_, err := s.Scan(context.Background(), "algorithms")
	require.NoError(t, err)

	iqr, ok := s.GetAlgorithmByID("iqr_anomaly")
	require.True(t, ok)
	assert.Equal(t, "IQR Anomaly", iqr.Name)
	assert.Equal(t, []string{"math"}, iqr.Imports)
	assert.Equal(t, []metadata.Port{{Name: "df", Type: "DataFrame", Description: "Input table"}}, iqr.Inputs)
	assert.Equal(t, []metadata.Port{{Name: "result", Type: "DataFrame"}}, iqr.Outputs)
	require.Len(t, iqr.Parameters, 1)
	assert.Equal(t, 1.5, iqr.Parameters[0].Default)
	assert.Equal(t, metadata.WidgetNumber, iqr.Parameters[0].Widget)
	assert.Equal(t, "_ = math.Abs(multiplier)\nreturn df", iqr.Template)

	plot, ok := s.GetAlgorithmByID("line_plot")
	require.True(t, ok)
	assert.Equal(t, "chart", plot.NodeType)
	assert.Equal(t, "#1f77b4", plot.Parameters[1].Default)
	assert.Equal(t, metadata.WidgetColumnSelector, plot.Parameters[0].Widget)
	assert.Equal(t, metadata.WidgetColorPicker, plot.Parameters[1].Widget)
	assert.Equal(t, []metadata.Port{{Name: "result", Type: "Figure"}}, plot.Outputs)
}

func TestScanWithLabels(t *testing.T) {
	s := New(newLibrary(t), WithLabels(metadata.DefaultCategoryLabels().Merge(map[string]string{"plotting": "Charts"})))

	groups, err := s.ScanWithLabels(context.Background(), "algorithms")
	require.NoError(t, err)
	assert.Len(t, groups["Anomaly Detection"], 2)
	assert.Len(t, groups["Charts"], 1)
}

func TestScanSkipsBrokenEntries(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	lib := newLibrary(t)
	lib.modules = append(lib.modules,
		module(t, "broken/pick.go", invalidSource),
		Module{Path: "broken/syntax.go", Source: "package broken\nfunc (", Callables: []string{"x"}},
	)
	s := New(lib, WithLogger(zap.New(core)))

	snap, err := s.Snapshot(context.Background(), "algorithms")
	require.NoError(t, err)

	assert.Equal(t, 3, snap.Len())
	require.Len(t, snap.Report.Skipped, 2)
	assert.Equal(t, "broken/pick.go", snap.Report.Skipped[0].Module)
	assert.ErrorIs(t, snap.Report.Skipped[0].Err, catalogerrors.ErrInvalidMetadata)
	assert.ErrorIs(t, snap.Report.Skipped[1].Err, catalogerrors.ErrExtraction)
	assert.Equal(t, 2, logs.FilterMessageSnippet("skipping").Len())
}

func TestDuplicateIdLastScannedWins(t *testing.T) {
	lib := newLibrary(t)
	lib.modules = append(lib.modules, module(t, "zz/copy.go", `package zz

// iqr_anomaly is a second definition.
//
// Algorithm:
//
//	name: IQR Copy
func iqr_anomaly(df DataFrame) DataFrame { return df }
`))
	s := New(lib)

	snap, err := s.Snapshot(context.Background(), "algorithms")
	require.NoError(t, err)

	iqr, ok := snap.Get("iqr_anomaly")
	require.True(t, ok)
	assert.Equal(t, "IQR Copy", iqr.Name)
	assert.Equal(t, []Duplicate{{ID: "iqr_anomaly", Previous: "anomaly/iqr.go", Current: "zz/copy.go"}}, snap.Report.Duplicates)

	all := snap.Algorithms()
	assert.Equal(t, "iqr_anomaly", all[len(all)-1].ID)
	origin, _ := snap.Module("iqr_anomaly")
	assert.Equal(t, "zz/copy.go", origin)
}

func TestPackageImportFailureIsFatal(t *testing.T) {
	s := New(&fakeDiscoverer{err: stderrors.New("no such package")})

	_, err := s.Scan(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, catalogerrors.ErrPackageImport)
	assert.Nil(t, s.GetAllAlgorithms())
}

func TestScanIsCachedUntilInvalidated(t *testing.T) {
	lib := newLibrary(t)
	store, err := cache.NewLRU[*Snapshot](4)
	require.NoError(t, err)
	s := New(lib, WithStore(store))
	ctx := context.Background()

	first, err := s.Snapshot(ctx, "algorithms")
	require.NoError(t, err)
	second, err := s.Snapshot(ctx, "algorithms")
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1, lib.calls)

	s.Invalidate("algorithms")
	third, err := s.Snapshot(ctx, "algorithms")
	require.NoError(t, err)
	assert.NotEqual(t, first.Revision, third.Revision)
	assert.Equal(t, first.Fingerprint, third.Fingerprint)
	assert.Equal(t, 2, lib.calls)
}

func TestReloadUsesCollaborator(t *testing.T) {
	lib := newLibrary(t)
	s := New(lib)
	ctx := context.Background()

	before, err := s.Snapshot(ctx, "algorithms")
	require.NoError(t, err)

	lib.set(module(t, "anomaly/iqr.go", anomalySource))
	after, err := s.Reload(ctx, "algorithms")
	require.NoError(t, err)

	assert.Equal(t, 1, lib.reloads)
	assert.Equal(t, 3, before.Len())
	assert.Equal(t, 1, after.Len())
	assert.Len(t, s.GetAllAlgorithms(), 1)
}

func TestSnapshotsAreCopyOnWrite(t *testing.T) {
	s := New(newLibrary(t))
	snap, err := s.Snapshot(context.Background(), "algorithms")
	require.NoError(t, err)

	a, _ := snap.Get("iqr_anomaly")
	a.Name = "mutated"
	a.Parameters[0].Default = 9.0
	groups := snap.ByCategory()
	groups["anomaly_detection"][0].Name = "mutated"

	again, _ := snap.Get("iqr_anomaly")
	assert.Equal(t, "IQR Anomaly", again.Name)
	assert.Equal(t, 1.5, again.Parameters[0].Default)
}

func TestScanIsDeterministic(t *testing.T) {
	a, err := New(newLibrary(t)).Scan(context.Background(), "algorithms")
	require.NoError(t, err)

	lib := newLibrary(t)
	lib.modules[0], lib.modules[1] = lib.modules[1], lib.modules[0]
	b, err := New(lib).Scan(context.Background(), "algorithms")
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestConcurrentSnapshotBuildsOnce(t *testing.T) {
	lib := newLibrary(t)
	s := New(lib)

	var wg sync.WaitGroup
	revisions := make([]string, 16)
	for i := range revisions {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			snap, err := s.Snapshot(context.Background(), "algorithms")
			if err == nil {
				revisions[i] = snap.Revision
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, lib.calls)
	for _, r := range revisions {
		assert.Equal(t, revisions[0], r)
	}
}
