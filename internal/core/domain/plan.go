package domain

import "time"

// PlanValidity is how long a written plan may be applied.
const PlanValidity = 5 * time.Minute

// PlanState is the result of checking a plan artifact.
type PlanState uint8

const (
	// PlanMissing means no plan artifact exists.
	PlanMissing PlanState = iota
	// PlanValid means the artifact is younger than the validity window.
	PlanValid
	// PlanExpired means the artifact was too old and has been deleted.
	PlanExpired
)

func (s PlanState) String() string {
	switch s {
	case PlanValid:
		return "valid"
	case PlanExpired:
		return "expired"
	default:
		return "missing"
	}
}
