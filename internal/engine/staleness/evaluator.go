// Package staleness decides whether a task's action needs to run.
package staleness

import (
	"time"

	"go.trai.ch/hxt/internal/core/domain"
	"go.trai.ch/hxt/internal/core/ports"
	"go.trai.ch/zerr"
)

// Producers resolves which task, if any, declares a path as its target.
type Producers interface {
	Producer(path domain.InternedString) (*domain.Task, bool)
}

// Decision is the outcome of evaluating one task.
type Decision struct {
	Stale  bool
	Reason string
}

func stale(reason string) Decision { return Decision{Stale: true, Reason: reason} }

var upToDate = Decision{Reason: "up to date"}

// Evaluator compares dependency and target fingerprints for one project.
type Evaluator struct {
	fs        ports.FileSystem
	store     ports.BuildInfoStore
	root      string
	producers Producers
	now       func() time.Time
}

// NewEvaluator returns an evaluator for the project at root.
func NewEvaluator(fs ports.FileSystem, store ports.BuildInfoStore, root string, producers Producers) *Evaluator {
	return &Evaluator{
		fs:        fs,
		store:     store,
		root:      root,
		producers: producers,
		now:       time.Now,
	}
}

// IsStale reports whether targets are out of date with respect to deps: true when any
// target is absent or any dependency is newer than the oldest target.
// With no targets the answer is false.
// An absent dependency that no task produces is an error; one that a task produces counts as stale.
func (e *Evaluator) IsStale(deps, targets []domain.TrackedFile) (bool, error) {
	depPrints, missingProduced, err := e.fingerprintDeps(deps)
	if err != nil {
		return false, err
	}
	if len(targets) == 0 {
		return false, nil
	}

	var oldest time.Time
	for i, target := range targets {
		fp, err := e.fs.Fingerprint(target.String())
		if err != nil {
			return false, err
		}
		if !fp.Exists {
			return true, nil
		}
		if i == 0 || fp.ModTime.Before(oldest) {
			oldest = fp.ModTime
		}
	}
	if missingProduced {
		return true, nil
	}

	for _, fp := range depPrints {
		if fp.ModTime.After(oldest) {
			return true, nil
		}
	}
	return false, nil
}

func (e *Evaluator) fingerprintDeps(deps []domain.TrackedFile) ([]domain.Fingerprint, bool, error) {
	prints := make([]domain.Fingerprint, 0, len(deps))
	missingProduced := false
	for _, dep := range deps {
		fp, err := e.fs.Fingerprint(dep.String())
		if err != nil {
			return nil, false, err
		}
		if !fp.Exists {
			if e.producers != nil {
				if _, ok := e.producers.Producer(dep.Path); ok {
					missingProduced = true
					continue
				}
			}
			return nil, false, zerr.With(zerr.Wrap(domain.ErrMissingDependency, "dependency file does not exist"),
				"path", dep.String())
		}
		prints = append(prints, fp)
	}
	return prints, missingProduced, nil
}

// Evaluate decides whether task must run in this pass. executed holds the tasks
// whose actions already ran during the pass; a task depending on one of them,
// by name or through a file it produces, is stale.
func (e *Evaluator) Evaluate(task *domain.Task, executed map[domain.InternedString]bool) (Decision, error) {
	if task.Policy == domain.PolicyAlwaysRun {
		return stale("always runs"), nil
	}
	for _, dep := range task.TaskDeps() {
		if executed[dep] {
			return stale("dependency " + dep.String() + " ran"), nil
		}
	}
	if e.producers != nil {
		for _, dep := range task.FileDeps() {
			if producer, ok := e.producers.Producer(dep.Path); ok && executed[producer.Name] {
				return stale("producer " + producer.Name.String() + " of " + dep.String() + " ran"), nil
			}
		}
	}

	if len(task.Targets) == 0 {
		return e.compareRecord(task)
	}

	isStale, err := e.IsStale(task.FileDeps(), task.Targets)
	if err != nil {
		return Decision{}, zerr.With(err, "task", task.Name.String())
	}
	if isStale {
		return stale("targets older than dependencies"), nil
	}
	return upToDate, nil
}

// compareRecord handles tasks without targets: the last successful run's stamps stand in for them.
// A file whose mtime moved but whose content hash is unchanged does not make the task stale.
func (e *Evaluator) compareRecord(task *domain.Task) (Decision, error) {
	info, err := e.store.Get(e.root, task.Name.String())
	if err != nil {
		return Decision{}, err
	}
	if info == nil {
		return stale("no previous run recorded"), nil
	}

	for _, dep := range task.FileDeps() {
		path := dep.String()
		fp, err := e.fs.Fingerprint(path)
		if err != nil {
			return Decision{}, err
		}
		if !fp.Exists {
			if e.producers != nil {
				if _, ok := e.producers.Producer(dep.Path); ok {
					return stale(path + " not yet produced"), nil
				}
			}
			return Decision{}, zerr.With(zerr.With(zerr.Wrap(domain.ErrMissingDependency, "dependency file does not exist"),
				"path", path), "task", task.Name.String())
		}
		stamp, ok := info.Stamps[path]
		if !ok {
			return stale(path + " is new"), nil
		}
		if fp.ModTime.UnixNano() == stamp.ModTime {
			continue
		}
		hash, err := e.fs.HashFile(path)
		if err != nil {
			return Decision{}, err
		}
		if hash != stamp.Hash {
			return stale(path + " changed"), nil
		}
	}
	return upToDate, nil
}

// Record stores the current stamps of a targetless task's file dependencies after it ran.
// Tasks with targets are tracked through their targets and are not recorded.
func (e *Evaluator) Record(task *domain.Task) error {
	if len(task.Targets) > 0 || task.Policy == domain.PolicyAlwaysRun {
		return nil
	}
	stamps := make(map[string]domain.Stamp, len(task.Dependencies))
	for _, dep := range task.FileDeps() {
		path := dep.String()
		fp, err := e.fs.Fingerprint(path)
		if err != nil {
			return err
		}
		if !fp.Exists {
			continue
		}
		hash, err := e.fs.HashFile(path)
		if err != nil {
			return err
		}
		stamps[path] = domain.Stamp{ModTime: fp.ModTime.UnixNano(), Hash: hash}
	}
	return e.store.Put(e.root, domain.BuildInfo{
		TaskName:  task.Name.String(),
		Stamps:    stamps,
		Timestamp: e.now(),
	})
}
