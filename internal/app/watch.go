package app

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.trai.ch/hxt/internal/adapters/watcher"
	"go.trai.ch/hxt/internal/core/domain"
	"golang.org/x/sync/errgroup"
)

// Watch runs targetNames once, then again whenever files under the project
// root settle after a change. Changes seen while a pass is running, and writes
// to declared task targets, do not trigger a pass. Failures are logged and
// watching continues until ctx is cancelled.
func (a *App) Watch(ctx context.Context, targetNames []string, opts RunOptions) error {
	if len(targetNames) == 0 {
		return domain.ErrNoTargetsSpecified
	}
	s, err := a.load()
	if err != nil {
		return err
	}
	if err := a.Watcher.Start(ctx, s.project.Root, s.project.Watch.Ignore); err != nil {
		return err
	}

	var running atomic.Bool
	changes := make(chan []string, 1)
	debouncer := watcher.NewDebouncer(a.debounce(), func(paths []string) {
		select {
		case changes <- paths:
		default:
			// A pass is already queued and will see these changes too.
		}
	})

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-ctx.Done()
		return a.Watcher.Stop()
	})
	g.Go(func() error {
		for event := range a.Watcher.Events() {
			if running.Load() {
				continue
			}
			if _, produced := s.build.Graph.Producer(domain.Track(event.Path).Path); produced {
				continue
			}
			debouncer.Add(event.Path)
		}
		return nil
	})
	g.Go(func() error {
		pass := func() {
			running.Store(true)
			defer running.Store(false)
			if err := a.Run(ctx, targetNames, opts); err != nil && ctx.Err() == nil {
				a.Logger.Error(err)
			}
		}

		pass()
		for {
			select {
			case <-ctx.Done():
				return nil
			case paths := <-changes:
				a.Logger.Info(fmt.Sprintf("%d files changed, running %v", len(paths), targetNames))
				pass()
			}
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func (a *App) debounce() time.Duration {
	if a.debounceWindow > 0 {
		return a.debounceWindow
	}
	return watcher.DefaultDebounceWindow
}
