package engine

import "errors"

// All engine errors are recoverable and user-facing. A violation leaves
// state untouched; callers surface the message and carry on.
var (
	ErrPolicyViolation = errors.New("milestone can no longer be completed")
	ErrCapReached      = errors.New("milestone like cap reached")
	ErrAlreadyVoted    = errors.New("already voted on this plan")
	ErrAlreadyLiked    = errors.New("already liked")
	ErrInvalidWeight   = errors.New("milestone weight must be 1, 2 or 3")
	ErrMilestoneCount  = errors.New("plans need between 5 and 50 milestones")
)
