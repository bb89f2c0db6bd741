package services

import (
	"testing"
	"time"

	"github.com/planprove/backend/internal/config"
	"github.com/planprove/backend/internal/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Without a configured collaborator every call takes the deterministic
// fallback path, which is what these tests exercise.
func TestAnalyzeMilestoneFallback(t *testing.T) {
	db := newTestDB(t)
	svc := NewAnalysisService(db, &config.Config{})

	owner := seedUser(t, db, "owner@example.com")
	now := time.Now()
	plan := seedPlan(t, db, owner.ID, now, now.Add(30*24*time.Hour))

	analysis, err := svc.AnalyzeMilestone(plan.Milestones[0].ID)
	require.NoError(t, err)
	assert.NotEmpty(t, analysis.ActionType)
	assert.NotEmpty(t, analysis.RecommendedEvidence)
}

func TestSuggestMilestonesFillsMinimum(t *testing.T) {
	db := newTestDB(t)
	svc := NewAnalysisService(db, &config.Config{})

	start := time.Now()
	end := start.Add(30 * 24 * time.Hour)

	drafts, err := svc.SuggestMilestones(dto.SuggestMilestonesRequest{
		Title:     "Write a short story collection",
		StartDate: start,
		EndDate:   end,
	})
	require.NoError(t, err)
	require.Len(t, drafts, 5)
	for _, d := range drafts {
		assert.NotEmpty(t, d.Title)
		assert.False(t, d.DueDate.Before(start))
		assert.False(t, d.DueDate.After(end))
		assert.GreaterOrEqual(t, d.Weight, 1)
		assert.LessOrEqual(t, d.Weight, 3)
	}
}

func TestAssessFeasibilityFallback(t *testing.T) {
	db := newTestDB(t)
	svc := NewAnalysisService(db, &config.Config{})

	start := time.Now()
	resp, err := svc.AssessFeasibility(dto.SuggestMilestonesRequest{
		Title:     "Learn conversational Spanish",
		StartDate: start,
		EndDate:   start.Add(90 * 24 * time.Hour),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Assessment)
}
