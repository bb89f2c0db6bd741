package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/planprove/backend/internal/dto"
	"github.com/planprove/backend/internal/engine"
	"github.com/planprove/backend/internal/models"
	"gorm.io/gorm"
)

// EngagementService owns likes and verification votes. Counters live on
// the liked row and move together with the dedup row inside a transaction,
// so a crash can never strand a half-counted like.
type EngagementService struct {
	db *gorm.DB
}

func NewEngagementService(db *gorm.DB) *EngagementService {
	return &EngagementService{db: db}
}

// TogglePlanLike likes the plan for the user, or removes the like if one
// exists. Returns whether the plan is liked after the call.
func (s *EngagementService) TogglePlanLike(planID, userID uuid.UUID) (bool, error) {
	var plan models.Plan
	if err := s.db.First(&plan, "id = ?", planID).Error; err != nil {
		return false, ErrPlanNotFound
	}

	var existing models.PlanLike
	err := s.db.Where("plan_id = ? AND user_id = ?", planID, userID).First(&existing).Error
	if err == nil {
		if err := s.removeLike(planID, userID); err != nil {
			return true, fmt.Errorf("failed to remove like: %w", err)
		}
		return false, nil
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		like := models.PlanLike{
			ID:     uuid.New(),
			PlanID: planID,
			UserID: userID,
		}
		if err := tx.Create(&like).Error; err != nil {
			// Unique (plan,user) pair: a concurrent like already landed.
			return engine.ErrAlreadyLiked
		}
		return tx.Model(&models.Plan{}).
			Where("id = ?", planID).
			Update("likes", gorm.Expr("likes + 1")).Error
	})
	if err != nil {
		if errors.Is(err, engine.ErrAlreadyLiked) {
			return true, nil
		}
		return false, fmt.Errorf("failed to like plan: %w", err)
	}
	return true, nil
}

// removeLike deletes the dedup row and moves the counter with it. The
// delete is keyed and its row count checked, so of two racing unlikes only
// the one that actually removed the row decrements; the loser is a no-op.
func (s *EngagementService) removeLike(planID, userID uuid.UUID) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("plan_id = ? AND user_id = ?", planID, userID).
			Delete(&models.PlanLike{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			// A concurrent unlike already removed the row and decremented.
			return nil
		}
		return tx.Model(&models.Plan{}).
			Where("id = ? AND likes > 0", planID).
			Update("likes", gorm.Expr("likes - 1")).Error
	})
}

// LikeMilestone bumps a milestone's like counter. Milestone likes are
// anonymous and capped: once the counter reaches the cap every further
// like is refused. The guard rides in the UPDATE itself, so concurrent
// likers cannot push the counter past the cap.
func (s *EngagementService) LikeMilestone(milestoneID uuid.UUID) (int, error) {
	result := s.db.Model(&models.Milestone{}).
		Where("id = ? AND likes < ?", milestoneID, engine.MilestoneLikeCap).
		Update("likes", gorm.Expr("likes + 1"))
	if result.Error != nil {
		return 0, fmt.Errorf("failed to like milestone: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		var milestone models.Milestone
		if err := s.db.First(&milestone, "id = ?", milestoneID).Error; err != nil {
			return 0, ErrMilestoneNotFound
		}
		return milestone.Likes, engine.ErrCapReached
	}

	var milestone models.Milestone
	if err := s.db.First(&milestone, "id = ?", milestoneID).Error; err != nil {
		return 0, err
	}
	return milestone.Likes, nil
}

// CastVote records the user's one-shot success prediction for a plan in
// its verification window. Votes cannot be changed once cast.
func (s *EngagementService) CastVote(planID, userID uuid.UUID, approve bool, now time.Time) error {
	var plan models.Plan
	if err := s.db.First(&plan, "id = ?", planID).Error; err != nil {
		return ErrPlanNotFound
	}

	tally, err := s.Tally(planID)
	if err != nil {
		return err
	}
	facts := engine.Facts{
		Status:       plan.Status,
		EndDate:      plan.EndDate,
		VotesFor:     tally.VotesFor,
		VotesAgainst: tally.VotesAgainst,
	}
	if engine.EvaluateStatus(facts, now) != models.StatusVerificationPending {
		return engine.ErrPolicyViolation
	}

	var existing int64
	s.db.Model(&models.VerificationVote{}).
		Where("plan_id = ? AND user_id = ?", planID, userID).
		Count(&existing)
	if existing > 0 {
		return engine.ErrAlreadyVoted
	}

	vote := models.VerificationVote{
		ID:      uuid.New(),
		PlanID:  planID,
		UserID:  userID,
		Approve: approve,
	}
	if err := s.db.Create(&vote).Error; err != nil {
		return engine.ErrAlreadyVoted
	}
	return nil
}

// Tally counts a plan's verification votes. While the plan is undecided
// the response carries the moment the vote window closes, for clients
// rendering a countdown.
func (s *EngagementService) Tally(planID uuid.UUID) (dto.VoteTallyResponse, error) {
	var plan models.Plan
	if err := s.db.First(&plan, "id = ?", planID).Error; err != nil {
		return dto.VoteTallyResponse{}, ErrPlanNotFound
	}

	var votesFor, votesAgainst int64
	if err := s.db.Model(&models.VerificationVote{}).
		Where("plan_id = ? AND approve = true", planID).
		Count(&votesFor).Error; err != nil {
		return dto.VoteTallyResponse{}, fmt.Errorf("failed to tally votes: %w", err)
	}
	if err := s.db.Model(&models.VerificationVote{}).
		Where("plan_id = ? AND approve = false", planID).
		Count(&votesAgainst).Error; err != nil {
		return dto.VoteTallyResponse{}, fmt.Errorf("failed to tally votes: %w", err)
	}
	resp := dto.VoteTallyResponse{
		VotesFor:     int(votesFor),
		VotesAgainst: int(votesAgainst),
	}
	if !plan.Status.IsTerminal() {
		closesAt := plan.EndDate.Add(engine.VerificationWindow)
		resp.ClosesAt = &closesAt
	}
	return resp, nil
}
