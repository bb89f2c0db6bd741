// Package engine implements the challenge lifecycle and credibility rules:
// milestone verification states, weighted progress, user trust scores,
// popularity ranking and the plan lifecycle state machine.
//
// Every function is pure and takes the evaluation time as an explicit
// parameter, so the same stored facts always reproduce the same result.
// Persistence, clocks and transports live in the service layer.
package engine

import "time"

const (
	// GracePeriod is how long after a milestone's due date late evidence
	// is still accepted.
	GracePeriod = 24 * time.Hour

	// VerificationWindow is the community voting period that opens when a
	// plan passes its deadline.
	VerificationWindow = 48 * time.Hour

	// MinMilestones and MaxMilestones bound the milestone breakdown at
	// plan creation.
	MinMilestones = 5
	MaxMilestones = 50

	// MilestoneLikeCap is the global per-milestone like ceiling. The cap is
	// deliberately not tracked per user.
	MilestoneLikeCap = 5

	// AbandonmentThreshold is how long an active plan may sit without any
	// evidence before the housekeeping sweep fails it.
	AbandonmentThreshold = 14 * 24 * time.Hour
)
