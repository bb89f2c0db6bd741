package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/planprove/backend/internal/dto"
	"github.com/planprove/backend/internal/engine"
	"github.com/planprove/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePlan(t *testing.T) {
	db := newTestDB(t)
	svc := NewPlanService(db)

	owner := seedUser(t, db, "owner@example.com")
	start := time.Now()
	end := start.Add(60 * 24 * time.Hour)

	plan, err := svc.CreatePlan(owner.ID, dto.CreatePlanRequest{
		Title:      "Learn to swim",
		Categories: []string{"fitness"},
		Hashtags:   []string{"#swimming"},
		StartDate:  start,
		EndDate:    end,
		Milestones: milestoneDrafts(start, end, 6),
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, plan.Status)
	assert.Len(t, plan.Milestones, 6)
	for i, m := range plan.Milestones {
		assert.Equal(t, i+1, m.Position)
		assert.Equal(t, 2, m.Weight)
	}
}

func TestCreatePlanValidation(t *testing.T) {
	db := newTestDB(t)
	svc := NewPlanService(db)

	owner := seedUser(t, db, "owner@example.com")
	start := time.Now()
	end := start.Add(60 * 24 * time.Hour)

	_, err := svc.CreatePlan(owner.ID, dto.CreatePlanRequest{
		Title:      "Too coarse",
		StartDate:  start,
		EndDate:    end,
		Milestones: milestoneDrafts(start, end, 4),
	})
	assert.ErrorIs(t, err, engine.ErrMilestoneCount)

	_, err = svc.CreatePlan(owner.ID, dto.CreatePlanRequest{
		Title:      "Backwards dates",
		StartDate:  end,
		EndDate:    start,
		Milestones: milestoneDrafts(start, end, 6),
	})
	assert.ErrorIs(t, err, ErrInvalidDates)

	_, err = svc.CreatePlan(owner.ID, dto.CreatePlanRequest{
		StartDate:  start,
		EndDate:    end,
		Milestones: milestoneDrafts(start, end, 6),
	})
	assert.ErrorIs(t, err, ErrTitleRequired)

	drafts := milestoneDrafts(start, end, 6)
	drafts[2].Weight = 4
	_, err = svc.CreatePlan(owner.ID, dto.CreatePlanRequest{
		Title:      "Bad weight",
		StartDate:  start,
		EndDate:    end,
		Milestones: drafts,
	})
	assert.ErrorIs(t, err, engine.ErrInvalidWeight)
}

func TestGetPlanDecoration(t *testing.T) {
	db := newTestDB(t)
	svc := NewPlanService(db)

	owner := seedUser(t, db, "owner@example.com")
	viewer := seedUser(t, db, "viewer@example.com")
	now := time.Now()
	plan := seedPlan(t, db, owner.ID, now, now.Add(30*24*time.Hour))

	// Two of five equal-weight milestones done: 40 percent.
	for _, m := range plan.Milestones[:2] {
		require.NoError(t, db.Model(&models.Milestone{}).
			Where("id = ?", m.ID).
			Update("is_completed", true).Error)
	}

	require.NoError(t, db.Create(&models.PlanLike{
		ID: uuid.New(), PlanID: plan.ID, UserID: viewer.ID,
	}).Error)

	resp, err := svc.GetPlan(plan.ID, viewer.ID)
	require.NoError(t, err)
	assert.Equal(t, 40, resp.Progress)
	assert.True(t, resp.LikedByMe)
	assert.Nil(t, resp.MyVote)

	anon, err := svc.GetPlan(plan.ID, uuid.Nil)
	require.NoError(t, err)
	assert.False(t, anon.LikedByMe)
}

func TestPopularFeedOrdering(t *testing.T) {
	db := newTestDB(t)
	svc := NewPlanService(db)

	trusted := seedUser(t, db, "trusted@example.com")
	require.NoError(t, db.Model(&models.User{}).
		Where("id = ?", trusted.ID).
		Update("trust_score", 100).Error)
	newcomer := seedUser(t, db, "newcomer@example.com")

	now := time.Now()
	strong := seedPlan(t, db, trusted.ID, now.Add(-48*time.Hour), now.Add(30*24*time.Hour))
	weak := seedPlan(t, db, newcomer.ID, now.Add(-24*time.Hour), now.Add(30*24*time.Hour))

	feed, err := svc.PopularFeed("", 10, 0)
	require.NoError(t, err)
	require.Len(t, feed, 2)

	// Owner trust alone outranks the newer plan.
	assert.Equal(t, strong.ID, feed[0].Plan.ID)
	assert.Equal(t, weak.ID, feed[1].Plan.ID)
	assert.Greater(t, feed[0].Popularity, feed[1].Popularity)
}

func TestPopularFeedTieBreaksNewestFirst(t *testing.T) {
	db := newTestDB(t)
	svc := NewPlanService(db)

	owner := seedUser(t, db, "owner@example.com")
	now := time.Now()
	older := seedPlan(t, db, owner.ID, now.Add(-72*time.Hour), now.Add(30*24*time.Hour))
	newer := seedPlan(t, db, owner.ID, now.Add(-24*time.Hour), now.Add(30*24*time.Hour))

	feed, err := svc.PopularFeed("", 10, 0)
	require.NoError(t, err)
	require.Len(t, feed, 2)
	assert.Equal(t, feed[0].Popularity, feed[1].Popularity)
	assert.Equal(t, newer.ID, feed[0].Plan.ID)
	assert.Equal(t, older.ID, feed[1].Plan.ID)
}

func TestMilestoneStatesCredibility(t *testing.T) {
	db := newTestDB(t)
	svc := NewPlanService(db)

	owner := seedUser(t, db, "owner@example.com")
	now := time.Now()
	plan := seedPlan(t, db, owner.ID, now, now.Add(30*24*time.Hour))

	require.NoError(t, db.Model(&models.Milestone{}).
		Where("id = ?", plan.Milestones[0].ID).
		Updates(map[string]any{
			"is_completed":      true,
			"verification_type": models.VerificationPhotoText,
		}).Error)
	require.NoError(t, db.Model(&models.Milestone{}).
		Where("id = ?", plan.Milestones[1].ID).
		Updates(map[string]any{
			"is_completed":      true,
			"verification_type": models.VerificationBiometric,
		}).Error)

	states, err := svc.MilestoneStates(plan.ID, now)
	require.NoError(t, err)
	require.Len(t, states, 5)

	assert.Equal(t, "COMPLETED", states[0].State)
	assert.Equal(t, 20, states[0].Credibility)
	assert.Equal(t, 80, states[1].Credibility)

	// Incomplete milestones carry no evidence weight.
	assert.Equal(t, 0, states[2].Credibility)
}

func TestAbandon(t *testing.T) {
	db := newTestDB(t)
	svc := NewPlanService(db)

	owner := seedUser(t, db, "owner@example.com")
	stranger := seedUser(t, db, "stranger@example.com")
	now := time.Now()
	plan := seedPlan(t, db, owner.ID, now, now.Add(30*24*time.Hour))

	assert.ErrorIs(t, svc.Abandon(plan.ID, stranger.ID), ErrNotPlanOwner)

	require.NoError(t, svc.Abandon(plan.ID, owner.ID))

	var stored models.Plan
	require.NoError(t, db.First(&stored, "id = ?", plan.ID).Error)
	assert.Equal(t, models.StatusFailedByAbandonment, stored.Status)

	// Terminal plans cannot be abandoned again.
	assert.ErrorIs(t, svc.Abandon(plan.ID, owner.ID), ErrPlanNotActive)
}

func TestTopHashtags(t *testing.T) {
	db := newTestDB(t)
	svc := NewPlanService(db)

	owner := seedUser(t, db, "owner@example.com")
	start := time.Now()
	end := start.Add(60 * 24 * time.Hour)

	tagSets := [][]string{
		{"#running", "#health"},
		{"#running", "#morning"},
		{"#running"},
		{"#health"},
	}
	for _, tags := range tagSets {
		_, err := svc.CreatePlan(owner.ID, dto.CreatePlanRequest{
			Title:      "Tagged plan",
			Hashtags:   tags,
			StartDate:  start,
			EndDate:    end,
			Milestones: milestoneDrafts(start, end, 5),
		})
		require.NoError(t, err)
	}

	tags, err := svc.TopHashtags("", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"#running", "#health"}, tags)
}

func TestTopHashtagsByCategory(t *testing.T) {
	db := newTestDB(t)
	svc := NewPlanService(db)

	owner := seedUser(t, db, "owner@example.com")
	start := time.Now()
	end := start.Add(60 * 24 * time.Hour)

	plans := []struct {
		category string
		tags     []string
	}{
		{"fitness", []string{"#running", "#5k"}},
		{"fitness", []string{"#running"}},
		{"learning", []string{"#spanish"}},
		{"learning", []string{"#spanish", "#books"}},
	}
	for _, p := range plans {
		_, err := svc.CreatePlan(owner.ID, dto.CreatePlanRequest{
			Title:      "Tagged plan",
			Categories: []string{p.category},
			Hashtags:   p.tags,
			StartDate:  start,
			EndDate:    end,
			Milestones: milestoneDrafts(start, end, 5),
		})
		require.NoError(t, err)
	}

	// Scoped counts exclude the other category entirely.
	tags, err := svc.TopHashtags("fitness", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"#running", "#5k"}, tags)

	tags, err = svc.TopHashtags("learning", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"#spanish", "#books"}, tags)
}

func TestGroupChallengeLeaderboard(t *testing.T) {
	db := newTestDB(t)
	svc := NewPlanService(db)

	group := models.GroupChallenge{
		ID:       uuid.New(),
		Title:    "30 days of running",
		Category: "fitness",
	}
	require.NoError(t, db.Create(&group).Error)

	now := time.Now()
	leader := seedUser(t, db, "leader@example.com")
	trailer := seedUser(t, db, "trailer@example.com")

	leaderPlan := seedPlan(t, db, leader.ID, now, now.Add(30*24*time.Hour))
	trailerPlan := seedPlan(t, db, trailer.ID, now, now.Add(30*24*time.Hour))
	require.NoError(t, db.Model(&models.Milestone{}).
		Where("id = ?", leaderPlan.Milestones[0].ID).
		Update("is_completed", true).Error)

	for _, p := range []struct {
		user uuid.UUID
		plan uuid.UUID
	}{{leader.ID, leaderPlan.ID}, {trailer.ID, trailerPlan.ID}} {
		require.NoError(t, db.Create(&models.GroupParticipant{
			ID: uuid.New(), GroupID: group.ID, UserID: p.user, PlanID: p.plan,
		}).Error)
	}

	resp, err := svc.GetGroupChallenge(group.ID)
	require.NoError(t, err)
	require.Len(t, resp.Participants, 2)
	assert.Equal(t, leader.ID, resp.Participants[0].User.ID)
	assert.Equal(t, 20, resp.Participants[0].Progress)
	assert.Equal(t, 0, resp.Participants[1].Progress)
}
