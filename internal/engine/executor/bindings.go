package executor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/hxt/internal/core/domain"
	"go.trai.ch/hxt/internal/core/ports"
	"go.trai.ch/zerr"
)

// ReleaseURLFile is the generated module recording where the component binary is fetched from.
const ReleaseURLFile = "releaseurl.ts"

// updateBindings replaces a.Dir/adl with the sources of the requested release and
// regenerates a.Dir/adl-gen with the ADL compiler.
func (e *Executor) updateBindings(ctx context.Context, a domain.UpdateBindings, args map[string]string) error {
	version := args["version"]
	if version == "" {
		return zerr.With(zerr.Wrap(domain.ErrConfiguration, "a --arg version=<release> argument is required"),
			"dir", a.Dir)
	}
	if a.Toolchain == "" {
		return zerr.With(zerr.Wrap(domain.ErrConfiguration, "the ADL toolchain location is unknown"), "dir", a.Dir)
	}

	if err := os.MkdirAll(a.Dir, domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create bindings directory"), "dir", a.Dir)
	}
	archive := filepath.Join(a.Dir, "source-"+version+".zip")
	defer func() { _ = os.Remove(archive) }()

	e.logger.Info("fetching sources for " + version)
	if err := e.downloader.Download(ctx, fmt.Sprintf(a.SourceURL, version), archive); err != nil {
		return err
	}
	e.logger.Info("unpacking sources")
	if err := e.archiver.Extract(archive, a.Dir); err != nil {
		return err
	}

	unpacked := filepath.Join(a.Dir, fmt.Sprintf(a.ArchivePrefix, version))
	defer func() { _ = os.RemoveAll(unpacked) }()

	adlDir := filepath.Join(a.Dir, "adl")
	genDir := filepath.Join(a.Dir, "adl-gen")
	for _, dir := range []string{adlDir, genDir} {
		if err := os.RemoveAll(dir); err != nil {
			return zerr.With(zerr.Wrap(err, "failed to clear directory"), "dir", dir)
		}
	}
	if err := os.Rename(filepath.Join(unpacked, "adl"), adlDir); err != nil {
		return zerr.With(zerr.Wrap(err, "release archive has no adl directory"), "version", version)
	}
	if err := os.MkdirAll(genDir, domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create output directory"), "dir", genDir)
	}

	e.logger.Info("generating typescript")
	argv := []string{
		filepath.Join(a.Toolchain, "bin", "adlc"),
		"typescript",
		"--searchdir", adlDir,
		"--runtime-dir", "runtime",
		"--outputdir", genDir,
		"--include-rt",
		"--include-resolver",
		"--manifest", filepath.Join(genDir, ".manifest"),
	}
	argv = append(argv, e.adlSources(adlDir)...)
	argv = append(argv, e.adlSources(filepath.Join(a.Toolchain, "lib", "adl"))...)
	if _, err := e.runner.Run(ctx, ports.Command{Argv: argv, Dir: a.Dir}); err != nil {
		return err
	}

	release := fmt.Sprintf(a.ReleaseURL, version)
	module := fmt.Sprintf("export const release_url: string = %q;\n", release+" -O /opt/bin/camus2.gz")
	if err := os.WriteFile(filepath.Join(a.Dir, ReleaseURLFile), []byte(module), domain.FilePerm); err != nil {
		return zerr.Wrap(err, "failed to write release url module")
	}
	return nil
}

func (e *Executor) adlSources(dir string) []string {
	var srcs []string
	for path := range e.walker.WalkFiles(dir, nil) {
		if strings.HasSuffix(path, ".adl") {
			srcs = append(srcs, path)
		}
	}
	return srcs
}
