package app_test

import (
	"bytes"
	"context"
	"iter"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/hxt/internal/adapters/cas"
	"go.trai.ch/hxt/internal/adapters/fs"
	"go.trai.ch/hxt/internal/adapters/manifest"
	"go.trai.ch/hxt/internal/adapters/telemetry"
	"go.trai.ch/hxt/internal/app"
	"go.trai.ch/hxt/internal/core/domain"
	"go.trai.ch/hxt/internal/core/ports"
	"go.trai.ch/hxt/internal/core/ports/mocks"
	"go.trai.ch/hxt/internal/engine/scheduler"
	"go.uber.org/mock/gomock"
)

type fixture struct {
	project   *domain.Project
	app       *app.App
	stdout    *bytes.Buffer
	logger    *mocks.MockLogger
	runner    *mocks.MockCommandRunner
	hcl       *mocks.MockHCLChecker
	confirmer *mocks.MockConfirmer
	watcher   *mocks.MockWatcher
	archiver  *mocks.MockArchiver
}

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), domain.DirPerm))
	require.NoError(t, os.WriteFile(path, []byte(content), domain.FilePerm))
}

func newProject(t *testing.T) *domain.Project {
	t.Helper()
	root := t.TempDir()
	write(t, filepath.Join(root, "terraform", "main.tf"), "")
	write(t, filepath.Join(root, "lambdas", "post_cron.py"), "def handler(): pass\n")

	return &domain.Project{
		Root: root,
		Home: t.TempDir(),
		GOOS: "linux",
		Terraform: domain.TerraformSettings{
			Dir:         filepath.Join(root, "terraform"),
			Parallelism: 20,
		},
		Yarn: domain.YarnSettings{Dirs: []domain.YarnDir{
			{Task: "yarnLocal", Dir: filepath.Join(root, "typescript")},
			{Task: "yarnHxTerraform", Dir: filepath.Join(root, "typescript", "hx-terraform")},
		}},
		Lambdas: domain.LambdaSettings{
			Dirs:   []string{filepath.Join(root, "lambdas")},
			OutDir: filepath.Join(root, "build", "lambdas"),
		},
		ADL: domain.ADLSettings{Version: "0.37", ReleaseURL: "https://example.invalid/releases"},
		Camus2: domain.Camus2Settings{
			Dir:        filepath.Join(root, "camus2"),
			SourceURL:  "https://example.invalid/%s.zip",
			ReleaseURL: "https://example.invalid/%s/camus2.gz",
		},
		Watch: domain.WatchSettings{Ignore: []string{"dist"}},
	}
}

func newFixture(t *testing.T, store ports.BuildInfoStore) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	f := &fixture{
		project:   newProject(t),
		stdout:    new(bytes.Buffer),
		logger:    mocks.NewMockLogger(ctrl),
		runner:    mocks.NewMockCommandRunner(ctrl),
		hcl:       mocks.NewMockHCLChecker(ctrl),
		confirmer: mocks.NewMockConfirmer(ctrl),
		watcher:   mocks.NewMockWatcher(ctrl),
		archiver:  mocks.NewMockArchiver(ctrl),
	}
	f.logger.EXPECT().Info(gomock.Any()).AnyTimes()

	loader := mocks.NewMockConfigLoader(ctrl)
	loader.EXPECT().Load(gomock.Any()).Return(f.project, nil).AnyTimes()

	if store == nil {
		store = cas.NewStore()
	}
	fileSystem := fs.NewFileSystem()
	tracer := telemetry.NewNoOpTracer()
	f.app = app.New(app.Deps{
		Loader:     loader,
		Scheduler:  scheduler.NewScheduler(fileSystem, store, tracer),
		Logger:     f.logger,
		FS:         fileSystem,
		Walker:     fs.NewWalker(),
		Store:      store,
		Runner:     f.runner,
		Archiver:   f.archiver,
		Downloader: mocks.NewMockDownloader(ctrl),
		HCL:        f.hcl,
		Manifests:  manifest.NewReader(),
		Confirmer:  f.confirmer,
		Watcher:    f.watcher,
		Tracer:     tracer,
	}).WithStdout(f.stdout)
	return f
}

func (f *fixture) tf(parts ...string) string {
	return filepath.Join(append([]string{f.project.Terraform.Dir}, parts...)...)
}

func (f *fixture) lambdaSource() string {
	return filepath.Join(f.project.Root, "lambdas", "post_cron.py")
}

// expectZip makes the archiver write the zip for post_cron on each call.
func (f *fixture) expectZip(t *testing.T) *gomock.Call {
	t.Helper()
	dest := filepath.Join(f.project.Lambdas.OutDir, "post_cron.zip")
	return f.archiver.EXPECT().Create(dest, []string{f.lambdaSource()}).DoAndReturn(func(dest string, _ []string) error {
		write(t, dest, "zip")
		return nil
	})
}

func TestApp_Run_SkipsUpToDateTasks(t *testing.T) {
	f := newFixture(t, nil)
	f.expectZip(t).Times(1)

	require.NoError(t, f.app.Run(context.Background(), []string{"zipLambdaPostCron"}, app.RunOptions{}))
	require.NoError(t, f.app.Run(context.Background(), []string{"zipLambdaPostCron"}, app.RunOptions{}))
}

func TestApp_Run_NoTargets(t *testing.T) {
	f := newFixture(t, nil)
	err := f.app.Run(context.Background(), nil, app.RunOptions{})
	require.ErrorIs(t, err, domain.ErrNoTargetsSpecified)
}

func TestApp_Run_UnknownTask(t *testing.T) {
	f := newFixture(t, nil)
	err := f.app.Run(context.Background(), []string{"deploy"}, app.RunOptions{})
	require.ErrorIs(t, err, domain.ErrTaskNotFound)
}

func TestApp_Run_DryRun(t *testing.T) {
	f := newFixture(t, nil)

	require.NoError(t, f.app.Run(context.Background(), []string{"refresh", "updateCamus2"}, app.RunOptions{DryRun: true}))

	out := f.stdout.String()
	assert.Contains(t, out, "$ (cd "+f.tf()+" && terraform refresh)\n")
	assert.Contains(t, out, "# adlToolchain: bootstrap hxadl 0.37\n")
	assert.Contains(t, out, "# updateCamus2: update bindings in "+f.project.Camus2.Dir+"\n")
	assert.NoDirExists(t, domain.StorePath(f.project.Root))
}

func TestApp_Run_ApplyDeclinedKeepsPlan(t *testing.T) {
	f := newFixture(t, nil)
	plan := f.tf("tfplan")
	write(t, plan, "plan")

	f.confirmer.EXPECT().Confirm(gomock.Any(), gomock.Any()).Return(false, nil)
	f.logger.EXPECT().Warn("apply aborted, the plan was kept")

	require.NoError(t, f.app.Run(context.Background(), []string{"apply"}, app.RunOptions{}))
	assert.FileExists(t, plan)
}

func TestApp_Run_AutoApprove(t *testing.T) {
	f := newFixture(t, nil)
	plan := f.tf("tfplan")
	write(t, plan, "plan")

	f.runner.EXPECT().Run(gomock.Any(), ports.Command{
		Argv: []string{"terraform", "apply", "tfplan"},
		Dir:  f.tf(),
	}).Return(ports.Result{}, nil)

	require.NoError(t, f.app.Run(context.Background(), []string{"apply"}, app.RunOptions{AutoApprove: true}))
	assert.NoFileExists(t, plan)
}

func TestApp_Run_ApplyWithoutPlan(t *testing.T) {
	f := newFixture(t, nil)

	err := f.app.Run(context.Background(), []string{"apply"}, app.RunOptions{AutoApprove: true})
	require.ErrorIs(t, err, domain.ErrPlanMissing)
	require.ErrorIs(t, err, domain.ErrTaskExecutionFailed)
}

func TestApp_Run_ToolchainWithoutHome(t *testing.T) {
	f := newFixture(t, nil)
	f.project.Home = ""

	f.expectZip(t)
	require.NoError(t, f.app.Run(context.Background(), []string{"zipLambdaPostCron"}, app.RunOptions{}))

	err := f.app.Run(context.Background(), []string{"adlToolchain"}, app.RunOptions{})
	require.ErrorIs(t, err, domain.ErrConfiguration)
	require.ErrorIs(t, err, domain.ErrTaskExecutionFailed)
}

func TestApp_List(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	f := newFixture(t, nil)

	require.NoError(t, f.app.List(context.Background()))
	goldie.New(t).Assert(t, "list", f.stdout.Bytes())
}

func TestApp_Clean(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockBuildInfoStore(ctrl)
	f := newFixture(t, store)

	plan := f.tf("tfplan")
	zip := filepath.Join(f.project.Lambdas.OutDir, "post_cron.zip")
	generated := f.tf("resources.tf.json")
	resources := f.tf(".manifest.resources")
	for _, path := range []string{plan, zip, generated} {
		write(t, path, "x")
	}
	write(t, resources, `[{"file":"resources.tf.json","hash":"abc"}]`)

	require.NoError(t, f.app.Clean(context.Background(), app.CleanOptions{}))
	assert.NoFileExists(t, plan)
	assert.NoFileExists(t, zip)
	assert.FileExists(t, generated)
	assert.FileExists(t, resources)

	store.EXPECT().Reset(f.project.Root).Return(nil)
	require.NoError(t, f.app.Clean(context.Background(), app.CleanOptions{Generated: true, Store: true}))
	assert.NoFileExists(t, generated)
	assert.NoFileExists(t, resources)
	assert.FileExists(t, f.tf("main.tf"))
}

func TestApp_Clean_InvalidManifest(t *testing.T) {
	f := newFixture(t, nil)
	write(t, f.tf(".manifest.adhoc"), "{not json")

	err := f.app.Clean(context.Background(), app.CleanOptions{Generated: true})
	require.ErrorIs(t, err, domain.ErrManifestInvalid)
}

func TestApp_Watch(t *testing.T) {
	f := newFixture(t, nil)
	f.app.WithDebounce(10 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := make(chan ports.WatchEvent)
	stopped := make(chan struct{})
	f.watcher.EXPECT().Start(gomock.Any(), f.project.Root, []string{"dist"}).Return(nil)
	var seq iter.Seq[ports.WatchEvent] = func(yield func(ports.WatchEvent) bool) {
		for {
			select {
			case <-stopped:
				return
			case e := <-events:
				if !yield(e) {
					return
				}
			}
		}
	}
	f.watcher.EXPECT().Events().Return(seq)
	f.watcher.EXPECT().Stop().DoAndReturn(func() error {
		close(stopped)
		return nil
	})

	calls := 0
	dest := filepath.Join(f.project.Lambdas.OutDir, "post_cron.zip")
	f.archiver.EXPECT().Create(dest, []string{f.lambdaSource()}).DoAndReturn(func(string, []string) error {
		calls++
		if calls == 2 {
			cancel()
		}
		return nil
	}).Times(2)

	go func() {
		// Keep reporting an edit until the watcher stops; edits made during a pass are dropped.
		for {
			select {
			case <-stopped:
				return
			case events <- ports.WatchEvent{Path: f.lambdaSource(), Operation: ports.OpWrite}:
				time.Sleep(20 * time.Millisecond)
			}
		}
	}()

	require.NoError(t, f.app.Watch(ctx, []string{"zipLambdaPostCron"}, app.RunOptions{Force: true}))
	assert.Equal(t, 2, calls)
}

func TestApp_Watch_NoTargets(t *testing.T) {
	f := newFixture(t, nil)
	err := f.app.Watch(context.Background(), nil, app.RunOptions{})
	require.ErrorIs(t, err, domain.ErrNoTargetsSpecified)
}

func TestApp_Provision(t *testing.T) {
	f := newFixture(t, nil)
	gomock.InOrder(
		f.runner.EXPECT().Run(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, cmd ports.Command) (ports.Result, error) {
				assert.Equal(t, "modify-db-instance", cmd.Argv[2])
				return ports.Result{}, nil
			}),
		f.runner.EXPECT().Run(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, cmd ports.Command) (ports.Result, error) {
				assert.Equal(t, "put-secret-value", cmd.Argv[2])
				return ports.Result{}, nil
			}),
	)

	require.NoError(t, f.app.Provision(context.Background(), "main-db", "arn:aws:secretsmanager:x"))
}
