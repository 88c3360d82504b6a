package executor_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/hxt/internal/adapters/fs"
	"go.trai.ch/hxt/internal/adapters/shell"
	"go.trai.ch/hxt/internal/core/domain"
	"go.trai.ch/hxt/internal/core/ports"
	"go.trai.ch/hxt/internal/core/ports/mocks"
	"go.trai.ch/hxt/internal/engine/executor"
	"go.trai.ch/hxt/internal/engine/planguard"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"
)

type fixture struct {
	exec       *executor.Executor
	recorder   *shell.Recorder
	archiver   *mocks.MockArchiver
	downloader *mocks.MockDownloader
	hcl        *mocks.MockHCLChecker
	confirmer  *mocks.MockConfirmer
	clock      clockwork.FakeClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Info(gomock.Any()).AnyTimes()

	f := &fixture{
		recorder:   shell.NewRecorder(nil),
		archiver:   mocks.NewMockArchiver(ctrl),
		downloader: mocks.NewMockDownloader(ctrl),
		hcl:        mocks.NewMockHCLChecker(ctrl),
		confirmer:  mocks.NewMockConfirmer(ctrl),
		clock:      clockwork.NewFakeClockAt(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)),
	}
	f.exec = executor.New(executor.Deps{
		Runner:     f.recorder,
		Archiver:   f.archiver,
		Downloader: f.downloader,
		HCL:        f.hcl,
		Walker:     fs.NewWalker(),
		Guard:      planguard.New(fs.NewFileSystem(), f.confirmer, f.clock),
		Logger:     logger,
		Host: executor.Host{
			UID: 1000,
			GID: 100,
			LookupEnv: func(name string) (string, bool) {
				if name == "AWS_PROFILE" {
					return "dev", true
				}
				return "", false
			},
		},
	})
	return f
}

func task(t *testing.T, action domain.Action) *domain.Task {
	t.Helper()
	tk, err := domain.NewTask("subject", action)
	require.NoError(t, err)
	return tk
}

func TestExecute_Exec(t *testing.T) {
	f := newFixture(t)
	err := f.exec.Execute(context.Background(), task(t, domain.Exec{
		Argv: []string{"yarn"},
		Dir:  "/p/typescript",
	}), nil)
	require.NoError(t, err)

	want := []ports.Command{{Argv: []string{"yarn"}, Dir: "/p/typescript"}}
	if diff := cmp.Diff(want, f.recorder.Commands()); diff != "" {
		t.Errorf("commands mismatch (-want +got):\n%s", diff)
	}
}

func TestExecute_ExecInContainer(t *testing.T) {
	f := newFixture(t)
	err := f.exec.Execute(context.Background(), task(t, domain.Exec{
		Argv: []string{"plan", "-parallelism=20", "-out=tfplan"},
		Dir:  "/p/terraform",
		Container: &domain.Container{
			Image:   "hashicorp/terraform:0.15.3",
			Root:    "/p",
			PassEnv: []string{"AWS_ACCESS_KEY_ID", "AWS_PROFILE"},
		},
	}), nil)
	require.NoError(t, err)

	want := []ports.Command{{
		Argv: []string{
			"docker", "run", "--rm",
			"-u", "1000:100",
			"-v", "/p:/src",
			"-w", "/src/terraform",
			"-e", "AWS_PROFILE",
			"hashicorp/terraform:0.15.3",
			"plan", "-parallelism=20", "-out=tfplan",
		},
		Dir: "/p",
		Env: map[string]string{"AWS_PROFILE": "dev"},
	}}
	if diff := cmp.Diff(want, f.recorder.Commands()); diff != "" {
		t.Errorf("commands mismatch (-want +got):\n%s", diff)
	}
}

func TestExecute_Archive(t *testing.T) {
	f := newFixture(t)
	f.archiver.EXPECT().Create("/p/build/lambdas/h.zip", []string{"/p/lambdas/h.py"}).Return(nil)

	err := f.exec.Execute(context.Background(), task(t, domain.Archive{
		Dest:    "/p/build/lambdas/h.zip",
		Sources: []string{"/p/lambdas/h.py"},
	}), nil)
	require.NoError(t, err)
}

func TestExecute_CheckHCL(t *testing.T) {
	f := newFixture(t)
	f.hcl.EXPECT().Check("/p/terraform").Return(domain.ErrHCLInvalid)

	err := f.exec.Execute(context.Background(), task(t, domain.CheckHCL{Dir: "/p/terraform"}), nil)
	require.ErrorIs(t, err, domain.ErrHCLInvalid)
}

func TestExecute_ApplyWithoutPlan(t *testing.T) {
	f := newFixture(t)
	err := f.exec.Execute(context.Background(), task(t, domain.Apply{
		Plan: domain.Track(filepath.Join(t.TempDir(), "tfplan")),
		Exec: domain.Exec{Argv: []string{"terraform", "apply", "tfplan"}},
	}), nil)

	require.ErrorIs(t, err, domain.ErrPlanMissing)
	assert.Empty(t, f.recorder.Commands())
}

func TestExecute_ApplyConfirmed(t *testing.T) {
	f := newFixture(t)
	plan := filepath.Join(t.TempDir(), "tfplan")
	require.NoError(t, os.WriteFile(plan, []byte("plan"), domain.FilePerm))
	now := f.clock.Now()
	require.NoError(t, os.Chtimes(plan, now, now))
	f.confirmer.EXPECT().Confirm(gomock.Any(), "Apply?").Return(true, nil)

	err := f.exec.Execute(context.Background(), task(t, domain.Apply{
		Plan:   domain.Track(plan),
		Prompt: "Apply?",
		Exec:   domain.Exec{Argv: []string{"terraform", "apply", "tfplan"}},
	}), nil)
	require.NoError(t, err)

	require.Len(t, f.recorder.Commands(), 1)
	assert.Equal(t, []string{"terraform", "apply", "tfplan"}, f.recorder.Commands()[0].Argv)
	_, statErr := os.Stat(plan)
	assert.ErrorIs(t, statErr, os.ErrNotExist)
}

func TestExecute_BootstrapSkipsInstalledVersion(t *testing.T) {
	f := newFixture(t)
	dir := t.TempDir()

	err := f.exec.Execute(context.Background(), task(t, domain.Bootstrap{
		Tool: "hxadl", Version: "0.37", Dir: dir, URL: "https://example.invalid/x.zip",
	}), nil)
	require.NoError(t, err)
}

func TestExecute_BootstrapDownloadsAndExtracts(t *testing.T) {
	f := newFixture(t)
	cache := t.TempDir()
	dir := filepath.Join(cache, "hxadl", "0.37")
	downloads := filepath.Join(cache, "hxadl", "downloads")
	url := "https://example.invalid/v0.37/hxadl-bindist-0.37-linux.zip"

	f.downloader.EXPECT().Download(gomock.Any(), url, filepath.Join(downloads, "hxadl-bindist-0.37-linux.zip")).Return(nil)
	f.archiver.EXPECT().Extract(filepath.Join(downloads, "hxadl-bindist-0.37-linux.zip"), dir).Return(nil)

	err := f.exec.Execute(context.Background(), task(t, domain.Bootstrap{
		Tool: "hxadl", Version: "0.37", URL: url, Dir: dir, DownloadDir: downloads,
	}), nil)
	require.NoError(t, err)
	assert.DirExists(t, dir)
}

func TestExecute_BootstrapExtractFailureRemovesDir(t *testing.T) {
	f := newFixture(t)
	cache := t.TempDir()
	dir := filepath.Join(cache, "hxadl", "0.37")

	f.downloader.EXPECT().Download(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	f.archiver.EXPECT().Extract(gomock.Any(), dir).Return(domain.ErrArchiveFailed)

	err := f.exec.Execute(context.Background(), task(t, domain.Bootstrap{
		Tool: "hxadl", Version: "0.37", URL: "https://example.invalid/a.zip", Dir: dir,
		DownloadDir: filepath.Join(cache, "downloads"),
	}), nil)
	require.ErrorIs(t, err, domain.ErrArchiveFailed)
	assert.NoDirExists(t, dir)
}

func TestExecute_BootstrapWithoutCacheLocation(t *testing.T) {
	f := newFixture(t)
	layoutErr := zerr.Wrap(domain.ErrConfiguration, "HOME is not set")

	err := f.exec.Execute(context.Background(), task(t, domain.Bootstrap{
		Tool: "hxadl", Version: "0.37", Err: layoutErr,
	}), nil)
	require.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestExecute_UpdateBindingsWithoutToolchain(t *testing.T) {
	f := newFixture(t)
	err := f.exec.Execute(context.Background(), task(t, domain.UpdateBindings{Dir: t.TempDir()}),
		map[string]string{"version": "0.5"})
	require.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestExecute_UpdateBindingsRequiresVersion(t *testing.T) {
	f := newFixture(t)
	err := f.exec.Execute(context.Background(), task(t, domain.UpdateBindings{Dir: t.TempDir()}), nil)
	require.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestExecute_UpdateBindings(t *testing.T) {
	f := newFixture(t)
	dir := t.TempDir()
	toolchain := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(toolchain, "lib", "adl", "sys"), domain.DirPerm))
	require.NoError(t, os.WriteFile(filepath.Join(toolchain, "lib", "adl", "sys", "types.adl"), nil, domain.FilePerm))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "adl-gen"), domain.DirPerm))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "adl-gen", "stale.ts"), nil, domain.FilePerm))

	f.downloader.EXPECT().Download(gomock.Any(), "https://example.invalid/archive/0.5.zip", gomock.Any()).Return(nil)
	f.archiver.EXPECT().Extract(gomock.Any(), dir).DoAndReturn(func(_, dest string) error {
		src := filepath.Join(dest, "camus2-0.5", "adl")
		require.NoError(t, os.MkdirAll(src, domain.DirPerm))
		return os.WriteFile(filepath.Join(src, "config.adl"), []byte("module config {};"), domain.FilePerm)
	})

	err := f.exec.Execute(context.Background(), task(t, domain.UpdateBindings{
		Dir:           dir,
		SourceURL:     "https://example.invalid/archive/%s.zip",
		ReleaseURL:    "https://example.invalid/releases/%s/camus2.gz",
		ArchivePrefix: "camus2-%s",
		Toolchain:     toolchain,
	}), map[string]string{"version": "0.5"})
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dir, "adl", "config.adl"))
	assert.NoFileExists(t, filepath.Join(dir, "adl-gen", "stale.ts"))
	assert.NoDirExists(t, filepath.Join(dir, "camus2-0.5"))

	module, err := os.ReadFile(filepath.Join(dir, executor.ReleaseURLFile))
	require.NoError(t, err)
	assert.Equal(t,
		"export const release_url: string = \"https://example.invalid/releases/0.5/camus2.gz -O /opt/bin/camus2.gz\";\n",
		string(module))

	cmds := f.recorder.Commands()
	require.Len(t, cmds, 1)
	argv := cmds[0].Argv
	assert.Equal(t, filepath.Join(toolchain, "bin", "adlc"), argv[0])
	assert.Equal(t, "typescript", argv[1])
	assert.Contains(t, argv, filepath.Join(dir, "adl", "config.adl"))
	assert.Contains(t, argv, filepath.Join(toolchain, "lib", "adl", "sys", "types.adl"))
}

func TestExecute_Alias(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.exec.Execute(context.Background(), task(t, nil), nil))
	assert.Empty(t, f.recorder.Commands())
}
