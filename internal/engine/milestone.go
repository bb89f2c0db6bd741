package engine

import (
	"time"

	"github.com/planprove/backend/internal/models"
)

// MilestoneState classifies a milestone relative to its due date.
type MilestoneState string

const (
	MilestoneCompleted   MilestoneState = "COMPLETED"
	MilestoneOpen        MilestoneState = "OPEN"
	MilestoneGracePeriod MilestoneState = "GRACE_PERIOD"
	MilestoneExpired     MilestoneState = "EXPIRED"
)

// StateOf returns the verification state of a milestone at the given time.
// A completed milestone stays completed; otherwise evidence is accepted up
// to the due date, tolerated through the grace period, and refused after.
func StateOf(m models.Milestone, now time.Time) MilestoneState {
	if m.IsCompleted {
		return MilestoneCompleted
	}
	if !now.After(m.DueDate) {
		return MilestoneOpen
	}
	if !now.After(m.DueDate.Add(GracePeriod)) {
		return MilestoneGracePeriod
	}
	return MilestoneExpired
}

// CanSubmitEvidence decides whether an evidence submission at the given
// time may complete the milestone. Expired and already-completed milestones
// reject with ErrPolicyViolation; the caller must evaluate this against the
// request's own timestamp at the moment of the write.
func CanSubmitEvidence(m models.Milestone, now time.Time) error {
	switch StateOf(m, now) {
	case MilestoneOpen, MilestoneGracePeriod:
		return nil
	default:
		return ErrPolicyViolation
	}
}
