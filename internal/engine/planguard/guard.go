// Package planguard enforces the single-use, time-limited life of a terraform plan artifact.
package planguard

import (
	"context"

	"github.com/jonboulle/clockwork"
	"go.trai.ch/hxt/internal/core/domain"
	"go.trai.ch/hxt/internal/core/ports"
	"go.trai.ch/zerr"
)

// Guard checks plan age, asks for confirmation and consumes the plan.
type Guard struct {
	fs        ports.FileSystem
	confirmer ports.Confirmer
	clock     clockwork.Clock
}

// New returns a guard. Plans older than domain.PlanValidity are expired.
func New(fs ports.FileSystem, confirmer ports.Confirmer, clock clockwork.Clock) *Guard {
	return &Guard{
		fs:        fs,
		confirmer: confirmer,
		clock:     clock,
	}
}

// Validate reports the plan's state. An expired plan is deleted before returning.
func (g *Guard) Validate(plan domain.TrackedFile) (domain.PlanState, error) {
	fp, err := g.fs.Fingerprint(plan.String())
	if err != nil {
		return domain.PlanMissing, err
	}
	if !fp.Exists {
		return domain.PlanMissing, nil
	}
	if g.clock.Since(fp.ModTime) > domain.PlanValidity {
		if err := g.fs.Remove(plan.String()); err != nil {
			return domain.PlanExpired, err
		}
		return domain.PlanExpired, nil
	}
	return domain.PlanValid, nil
}

// Require returns nil only for a valid plan.
func (g *Guard) Require(plan domain.TrackedFile) error {
	state, err := g.Validate(plan)
	if err != nil {
		return err
	}
	switch state {
	case domain.PlanMissing:
		return zerr.With(zerr.Wrap(domain.ErrPlanMissing, "cannot apply"), "plan", plan.String())
	case domain.PlanExpired:
		return zerr.With(zerr.With(zerr.Wrap(domain.ErrPlanExpired, "cannot apply"),
			"plan", plan.String()), "validity", domain.PlanValidity.String())
	default:
		return nil
	}
}

// Apply requires a valid plan, asks the operator, then calls apply. A declined prompt
// returns domain.ErrUserAborted and keeps the plan. Once apply has been called the
// plan is deleted whether or not it succeeded, since terraform refuses a plan it
// has partially applied.
func (g *Guard) Apply(ctx context.Context, plan domain.TrackedFile, prompt string, apply func(context.Context) error) error {
	if err := g.Require(plan); err != nil {
		return err
	}

	ok, err := g.confirmer.Confirm(ctx, prompt)
	if err != nil {
		return zerr.Wrap(err, "failed to read confirmation")
	}
	if !ok {
		return domain.ErrUserAborted
	}

	applyErr := apply(ctx)
	if err := g.fs.Remove(plan.String()); err != nil && applyErr == nil {
		return err
	}
	return applyErr
}
