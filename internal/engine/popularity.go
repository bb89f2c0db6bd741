package engine

import (
	"math"

	"github.com/planprove/backend/internal/models"
)

// Popularity shares: likes 20, demonstrated progress 40, owner trust 40.
// Weighting progress and trust above raw engagement keeps the popular feed
// from being gamed by likes alone.
const (
	popularityLikeShare     = 20.0
	popularityProgressShare = 40.0
	popularityTrustShare    = 40.0

	// likeSaturation is the total like count treated as "maximum" for
	// normalization.
	likeSaturation = 50.0
)

// Popularity combines a plan's likes, its weighted progress and the owner's
// trust score into a single feed-ordering score. Ties are broken by the
// caller on creation time, newest first.
func Popularity(plan models.Plan, ownerTrust int) int {
	totalLikes := plan.Likes
	for _, m := range plan.Milestones {
		totalLikes += m.Likes
	}

	likeScore := math.Min(float64(totalLikes)/likeSaturation*popularityLikeShare, popularityLikeShare)
	progressScore := float64(Progress(plan.Milestones)) / 100 * popularityProgressShare
	trustScore := float64(ownerTrust) / 100 * popularityTrustShare

	return int(math.Round(likeScore + progressScore + trustScore))
}
