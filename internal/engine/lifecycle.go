package engine

import (
	"time"

	"github.com/planprove/backend/internal/models"
)

// Facts is everything the lifecycle evaluator may look at. All fields are
// persisted, so replaying history reproduces the same state.
type Facts struct {
	Status       models.PlanStatus
	EndDate      time.Time
	VotesFor     int
	VotesAgainst int
}

// EvaluateStatus derives the lifecycle state of a plan at the given time.
//
//	ACTIVE -> VERIFICATION_PENDING  once the deadline passes
//	VERIFICATION_PENDING -> COMPLETED_SUCCESS | COMPLETED_FAIL
//	                                once the 2-day vote window closes
//
// Success requires a strict majority of approving votes; a tie or an empty
// tally fails. Terminal states (including FAILED_BY_ABANDONMENT, which is
// set only by an explicit owner action or the housekeeping sweep) are
// absorbing, so re-evaluating is always a no-op. "Not yet time" is never an
// error; the evaluator just reports the current state.
func EvaluateStatus(f Facts, now time.Time) models.PlanStatus {
	if f.Status.IsTerminal() {
		return f.Status
	}
	if !now.After(f.EndDate) {
		return models.StatusActive
	}
	if !now.After(f.EndDate.Add(VerificationWindow)) {
		return models.StatusVerificationPending
	}
	if f.VotesFor > f.VotesAgainst {
		return models.StatusCompletedSuccess
	}
	return models.StatusCompletedFail
}
