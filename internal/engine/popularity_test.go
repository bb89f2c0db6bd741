package engine

import (
	"testing"

	"github.com/planprove/backend/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestPopularity_ReferenceScenario(t *testing.T) {
	// Plan likes 10, one milestone carrying 5 likes, progress 50%, owner
	// trust 80: likeScore 6, progressScore 20, trustContribution 32 -> 58.
	plan := models.Plan{
		Likes: 10,
		Milestones: []models.Milestone{
			{Weight: 2, IsCompleted: true, Likes: 5},
			{Weight: 2, IsCompleted: false},
		},
	}

	assert.Equal(t, 50, Progress(plan.Milestones))
	assert.Equal(t, 58, Popularity(plan, 80))
}

func TestPopularity_LikesSaturate(t *testing.T) {
	// Past 50 total likes the like share is pinned at 20; raw engagement
	// alone can't push a plan with no progress past that.
	plan := models.Plan{
		Likes:      5000,
		Milestones: []models.Milestone{{Weight: 2}},
	}
	assert.Equal(t, 20, Popularity(plan, 0))
}

func TestPopularity_Bounds(t *testing.T) {
	empty := models.Plan{}
	assert.Equal(t, 0, Popularity(empty, 0))

	full := models.Plan{
		Likes:      100,
		Milestones: []models.Milestone{{Weight: 3, IsCompleted: true, Likes: 5}},
	}
	assert.Equal(t, 100, Popularity(full, 100))
}
