package engine

import "github.com/planprove/backend/internal/models"

// ValidWeight reports whether w is an allowed milestone weight.
func ValidWeight(w int) bool {
	return w >= 1 && w <= 3
}

// ValidateMilestones checks a plan's milestone breakdown at creation time:
// between 5 and 50 milestones, each weighted 1..3.
func ValidateMilestones(milestones []models.Milestone) error {
	if len(milestones) < MinMilestones || len(milestones) > MaxMilestones {
		return ErrMilestoneCount
	}
	for _, m := range milestones {
		if !ValidWeight(m.Weight) {
			return ErrInvalidWeight
		}
	}
	return nil
}
