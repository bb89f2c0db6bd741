package engine

import (
	"math"

	"github.com/planprove/backend/internal/models"
)

// Progress aggregates milestones into a weighted completion percentage,
// 0..100. It is recomputed on every read and never stored, so retroactive
// milestone changes can't leave a stale number behind.
func Progress(milestones []models.Milestone) int {
	totalWeight := 0
	earnedWeight := 0
	for _, m := range milestones {
		w := m.Weight
		if w == 0 {
			w = 2
		}
		totalWeight += w
		if m.IsCompleted {
			earnedWeight += w
		}
	}
	if totalWeight == 0 {
		return 0
	}
	return int(math.Round(float64(earnedWeight) / float64(totalWeight) * 100))
}
