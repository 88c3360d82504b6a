package staleness_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/hxt/internal/adapters/fs"
	"go.trai.ch/hxt/internal/core/domain"
	"go.trai.ch/hxt/internal/core/ports/mocks"
	"go.trai.ch/hxt/internal/engine/staleness"
	"go.uber.org/mock/gomock"
)

var base = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func touch(t *testing.T, path string, at time.Time) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), domain.DirPerm))
	if _, err := os.Stat(path); err != nil {
		require.NoError(t, os.WriteFile(path, []byte(filepath.Base(path)), domain.FilePerm))
	}
	require.NoError(t, os.Chtimes(path, at, at))
}

type noProducers struct{}

func (noProducers) Producer(domain.InternedString) (*domain.Task, bool) { return nil, false }

type producers map[string]*domain.Task

func (p producers) Producer(path domain.InternedString) (*domain.Task, bool) {
	t, ok := p[path.String()]
	return t, ok
}

func newEvaluator(t *testing.T, root string, prod staleness.Producers) (*staleness.Evaluator, *mocks.MockBuildInfoStore) {
	t.Helper()
	ctrl := gomock.NewController(t)
	store := mocks.NewMockBuildInfoStore(ctrl)
	return staleness.NewEvaluator(fs.NewFileSystem(), store, root, prod), store
}

func TestIsStale_DependencyNewerThanTarget(t *testing.T) {
	root := t.TempDir()
	dep := filepath.Join(root, "main.ts")
	target := filepath.Join(root, "terraform", ".manifest.resources")
	touch(t, target, base)
	touch(t, dep, base.Add(time.Minute))

	e, _ := newEvaluator(t, root, noProducers{})
	isStale, err := e.IsStale(domain.TrackAll(dep), domain.TrackAll(target))
	require.NoError(t, err)
	assert.True(t, isStale)

	touch(t, target, base.Add(2*time.Minute))
	isStale, err = e.IsStale(domain.TrackAll(dep), domain.TrackAll(target))
	require.NoError(t, err)
	assert.False(t, isStale)
}

func TestIsStale_ComparesAgainstOldestTarget(t *testing.T) {
	root := t.TempDir()
	dep := filepath.Join(root, "gen-providers.ts")
	oldTarget := filepath.Join(root, "aws", "resources.ts")
	newTarget := filepath.Join(root, "random", "resources.ts")
	touch(t, oldTarget, base)
	touch(t, dep, base.Add(time.Minute))
	touch(t, newTarget, base.Add(2*time.Minute))

	e, _ := newEvaluator(t, root, noProducers{})
	isStale, err := e.IsStale(domain.TrackAll(dep), domain.TrackAll(oldTarget, newTarget))
	require.NoError(t, err)
	assert.True(t, isStale)
}

func TestIsStale_MissingTarget(t *testing.T) {
	root := t.TempDir()
	dep := filepath.Join(root, "handler.py")
	touch(t, dep, base)

	e, _ := newEvaluator(t, root, noProducers{})
	isStale, err := e.IsStale(domain.TrackAll(dep), domain.TrackAll(filepath.Join(root, "build", "handler.zip")))
	require.NoError(t, err)
	assert.True(t, isStale)
}

func TestIsStale_NoDepsAndPresentTargets(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "out")
	touch(t, target, base)

	e, _ := newEvaluator(t, root, noProducers{})
	isStale, err := e.IsStale(nil, domain.TrackAll(target))
	require.NoError(t, err)
	assert.False(t, isStale)
}

func TestIsStale_MissingDependency(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "out")
	touch(t, target, base)

	e, _ := newEvaluator(t, root, noProducers{})
	_, err := e.IsStale(domain.TrackAll(filepath.Join(root, "absent.ts")), domain.TrackAll(target))
	require.ErrorIs(t, err, domain.ErrMissingDependency)
}

func TestIsStale_MissingProducedDependency(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "tfplan")
	manifest := filepath.Join(root, ".manifest.providers")
	touch(t, target, base)

	gen, err := domain.NewTask("generateTerraform", nil, domain.WithTargets(manifest))
	require.NoError(t, err)

	e, _ := newEvaluator(t, root, producers{manifest: gen})
	isStale, err := e.IsStale(domain.TrackAll(manifest), domain.TrackAll(target))
	require.NoError(t, err)
	assert.True(t, isStale)
}

func TestEvaluate_AlwaysRun(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "tfplan")
	touch(t, target, base)
	task, err := domain.NewTask("plan", nil, domain.WithTargets(target), domain.AlwaysRun())
	require.NoError(t, err)

	e, _ := newEvaluator(t, root, noProducers{})
	for range 3 {
		d, err := e.Evaluate(task, nil)
		require.NoError(t, err)
		assert.True(t, d.Stale)
	}
}

func TestEvaluate_DependencyRanThisPass(t *testing.T) {
	root := t.TempDir()
	dep := filepath.Join(root, "main.ts")
	target := filepath.Join(root, "out")
	touch(t, dep, base)
	touch(t, target, base.Add(time.Minute))

	task, err := domain.NewTask("generateTerraform", nil,
		domain.WithDeps(domain.OnTask("generateProviders"), domain.OnFile(dep)),
		domain.WithTargets(target))
	require.NoError(t, err)

	e, _ := newEvaluator(t, root, noProducers{})

	d, err := e.Evaluate(task, map[domain.InternedString]bool{})
	require.NoError(t, err)
	assert.False(t, d.Stale)

	d, err = e.Evaluate(task, map[domain.InternedString]bool{domain.NewInternedString("generateProviders"): true})
	require.NoError(t, err)
	assert.True(t, d.Stale)
}

func TestEvaluate_FileProducerRanThisPass(t *testing.T) {
	root := t.TempDir()
	manifest := filepath.Join(root, "terraform", ".manifest.resources")
	target := filepath.Join(root, "out")
	touch(t, manifest, base)
	touch(t, target, base.Add(time.Minute))

	gen, err := domain.NewTask("generateTerraform", nil, domain.WithTargets(manifest))
	require.NoError(t, err)
	task, err := domain.NewTask("init", nil, domain.WithDeps(domain.OnFile(manifest)), domain.WithTargets(target))
	require.NoError(t, err)

	e, _ := newEvaluator(t, root, producers{manifest: gen})

	d, err := e.Evaluate(task, map[domain.InternedString]bool{})
	require.NoError(t, err)
	assert.False(t, d.Stale)

	// The generator ran but left its target untouched.
	d, err = e.Evaluate(task, map[domain.InternedString]bool{gen.Name: true})
	require.NoError(t, err)
	assert.True(t, d.Stale)
	assert.Contains(t, d.Reason, "generateTerraform")
}

func TestEvaluate_FingerprintError(t *testing.T) {
	ctrl := gomock.NewController(t)
	fileSystem := mocks.NewMockFileSystem(ctrl)
	store := mocks.NewMockBuildInfoStore(ctrl)
	root := t.TempDir()
	dep := filepath.Join(root, "main.ts")
	target := filepath.Join(root, "out")

	task, err := domain.NewTask("compile", nil, domain.WithDeps(domain.OnFile(dep)), domain.WithTargets(target))
	require.NoError(t, err)

	statErr := errors.New("permission denied")
	fileSystem.EXPECT().Fingerprint(dep).Return(domain.Fingerprint{}, statErr)

	e := staleness.NewEvaluator(fileSystem, store, root, noProducers{})
	_, err = e.Evaluate(task, nil)
	require.ErrorIs(t, err, statErr)
}

func TestEvaluate_TargetlessUsesRecordedStamps(t *testing.T) {
	root := t.TempDir()
	pkg := filepath.Join(root, "typescript", "package.json")
	touch(t, pkg, base)

	task, err := domain.NewTask("yarnLocal", nil, domain.WithDeps(domain.OnFile(pkg)))
	require.NoError(t, err)

	e, store := newEvaluator(t, root, noProducers{})

	store.EXPECT().Get(root, "yarnLocal").Return(nil, nil)
	d, err := e.Evaluate(task, nil)
	require.NoError(t, err)
	assert.True(t, d.Stale)

	var recorded domain.BuildInfo
	store.EXPECT().Put(root, gomock.Any()).DoAndReturn(func(_ string, info domain.BuildInfo) error {
		recorded = info
		return nil
	})
	require.NoError(t, e.Record(task))
	require.Contains(t, recorded.Stamps, pkg)
	assert.Equal(t, base.UnixNano(), recorded.Stamps[pkg].ModTime)

	store.EXPECT().Get(root, "yarnLocal").Return(&recorded, nil)
	d, err = e.Evaluate(task, nil)
	require.NoError(t, err)
	assert.False(t, d.Stale)

	// Same content, new mtime: still up to date.
	touch(t, pkg, base.Add(time.Hour))
	store.EXPECT().Get(root, "yarnLocal").Return(&recorded, nil)
	d, err = e.Evaluate(task, nil)
	require.NoError(t, err)
	assert.False(t, d.Stale)

	require.NoError(t, os.WriteFile(pkg, []byte(`{"name":"changed"}`), domain.FilePerm))
	store.EXPECT().Get(root, "yarnLocal").Return(&recorded, nil)
	d, err = e.Evaluate(task, nil)
	require.NoError(t, err)
	assert.True(t, d.Stale)
}

func TestRecord_SkipsTasksWithTargets(t *testing.T) {
	root := t.TempDir()
	task, err := domain.NewTask("zipLambdaHandler", nil, domain.WithTargets(filepath.Join(root, "x.zip")))
	require.NoError(t, err)

	e, _ := newEvaluator(t, root, noProducers{})
	require.NoError(t, e.Record(task))
}
