package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"go.trai.ch/zerr"
)

// CleanOptions configuration for the Clean method.
type CleanOptions struct {
	// Generated also removes the files listed in the generator manifests and
	// the manifests themselves.
	Generated bool
	// Store forgets every recorded build.
	Store bool
}

// Clean removes the plan and packaged lambdas, plus whatever options select.
func (a *App) Clean(_ context.Context, options CleanOptions) error {
	s, err := a.load()
	if err != nil {
		return err
	}

	var errs error
	removed := 0
	remove := func(path string) {
		if err := a.FS.Remove(path); err != nil {
			errs = errors.Join(errs, zerr.With(zerr.Wrap(err, "failed to remove file"), "path", path))
			return
		}
		removed++
	}

	remove(s.build.Plan.String())
	for _, zip := range s.build.LambdaZips {
		remove(zip.String())
	}

	if options.Generated {
		for _, m := range s.build.Manifests.All() {
			entries, err := a.Manifests.Read(m.String())
			if err != nil {
				errs = errors.Join(errs, err)
				continue
			}
			dir := filepath.Dir(m.String())
			for _, e := range entries {
				remove(filepath.Join(dir, e.File))
			}
			remove(m.String())
		}
	}

	if options.Store {
		if err := a.Store.Reset(s.project.Root); err != nil {
			errs = errors.Join(errs, err)
		} else {
			a.Logger.Info("removed build info store")
		}
	}

	a.Logger.Info(fmt.Sprintf("removed %d files", removed))
	return errs
}
