package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/planprove/backend/internal/dto"
	"github.com/planprove/backend/internal/engine"
	"github.com/planprove/backend/internal/models"
	"gorm.io/gorm"
)

// LifecycleService is the only writer of plan status. Transitions are
// derived by the engine from persisted facts and applied with conditional
// updates, so refreshing a plan twice (or from two processes at once) is
// harmless.
type LifecycleService struct {
	db    *gorm.DB
	users *UserService
}

func NewLifecycleService(db *gorm.DB, users *UserService) *LifecycleService {
	return &LifecycleService{db: db, users: users}
}

// Refresh re-derives a plan's status at the given time and persists the
// transition if one is due. Returns the status after the call. A plan that
// sat unevaluated past its whole vote window lands directly in its
// terminal state.
func (s *LifecycleService) Refresh(planID uuid.UUID, now time.Time) (models.PlanStatus, error) {
	var plan models.Plan
	if err := s.db.First(&plan, "id = ?", planID).Error; err != nil {
		return "", ErrPlanNotFound
	}
	if plan.Status.IsTerminal() {
		return plan.Status, nil
	}

	tally, err := s.tally(planID)
	if err != nil {
		return plan.Status, err
	}

	next := engine.EvaluateStatus(engine.Facts{
		Status:       plan.Status,
		EndDate:      plan.EndDate,
		VotesFor:     tally.VotesFor,
		VotesAgainst: tally.VotesAgainst,
	}, now)
	if next == plan.Status {
		return next, nil
	}

	// Guard on the status we read; a racing refresh that already moved the
	// plan wins and this write becomes a no-op.
	result := s.db.Model(&models.Plan{}).
		Where("id = ? AND status = ?", planID, plan.Status).
		Update("status", next)
	if result.Error != nil {
		return plan.Status, fmt.Errorf("failed to persist transition: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		var current models.Plan
		if err := s.db.First(&current, "id = ?", planID).Error; err != nil {
			return plan.Status, err
		}
		return current.Status, nil
	}

	slog.Info("plan transitioned",
		"plan_id", planID.String(),
		"from", string(plan.Status),
		"to", string(next))

	if next.IsTerminal() {
		if err := s.users.RecomputeTrustScore(plan.UserID); err != nil {
			slog.Error("trust recompute after transition failed",
				"user_id", plan.UserID.String(), "error", err.Error())
		}
	}
	return next, nil
}

// SweepDue refreshes every non-terminal plan whose deadline has passed.
func (s *LifecycleService) SweepDue(now time.Time) (int, error) {
	var ids []uuid.UUID
	err := s.db.Model(&models.Plan{}).
		Where("status IN ? AND end_date < ?",
			[]models.PlanStatus{models.StatusActive, models.StatusVerificationPending}, now).
		Pluck("id", &ids).Error
	if err != nil {
		return 0, fmt.Errorf("failed to list due plans: %w", err)
	}

	transitioned := 0
	for _, id := range ids {
		before, err := s.currentStatus(id)
		if err != nil {
			continue
		}
		after, err := s.Refresh(id, now)
		if err != nil {
			slog.Error("sweep refresh failed", "plan_id", id.String(), "error", err.Error())
			continue
		}
		if after != before {
			transitioned++
		}
	}
	return transitioned, nil
}

// SweepAbandoned fails every active plan with no evidence activity for the
// abandonment threshold. The activity clock starts at plan creation and
// resets on each accepted submission.
func (s *LifecycleService) SweepAbandoned(now time.Time) (int, error) {
	cutoff := now.Add(-engine.AbandonmentThreshold)

	var plans []models.Plan
	err := s.db.Where("status = ? AND created_at < ?", models.StatusActive, cutoff).
		Find(&plans).Error
	if err != nil {
		return 0, fmt.Errorf("failed to list candidates: %w", err)
	}

	failed := 0
	for _, plan := range plans {
		var lastLog models.ProgressLog
		err := s.db.Where("plan_id = ?", plan.ID).
			Order("created_at DESC").
			First(&lastLog).Error
		if err == nil && lastLog.CreatedAt.After(cutoff) {
			continue
		}

		result := s.db.Model(&models.Plan{}).
			Where("id = ? AND status = ?", plan.ID, models.StatusActive).
			Update("status", models.StatusFailedByAbandonment)
		if result.Error != nil || result.RowsAffected == 0 {
			continue
		}
		failed++
		slog.Info("plan failed by abandonment", "plan_id", plan.ID.String())

		if err := s.users.RecomputeTrustScore(plan.UserID); err != nil {
			slog.Error("trust recompute after abandonment failed",
				"user_id", plan.UserID.String(), "error", err.Error())
		}
	}
	return failed, nil
}

// StartSweeper runs both sweeps on the given interval until the context is
// cancelled. Called once from main.
func (s *LifecycleService) StartSweeper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				now := time.Now()
				if n, err := s.SweepDue(now); err != nil {
					slog.Error("due sweep failed", "error", err.Error())
				} else if n > 0 {
					slog.Info("due sweep complete", "transitioned", n)
				}
				if n, err := s.SweepAbandoned(now); err != nil {
					slog.Error("abandonment sweep failed", "error", err.Error())
				} else if n > 0 {
					slog.Info("abandonment sweep complete", "failed", n)
				}
			}
		}
	}()
}

func (s *LifecycleService) currentStatus(planID uuid.UUID) (models.PlanStatus, error) {
	var plan models.Plan
	if err := s.db.Select("status").First(&plan, "id = ?", planID).Error; err != nil {
		return "", err
	}
	return plan.Status, nil
}

func (s *LifecycleService) tally(planID uuid.UUID) (dto.VoteTallyResponse, error) {
	var votesFor, votesAgainst int64
	if err := s.db.Model(&models.VerificationVote{}).
		Where("plan_id = ? AND approve = true", planID).
		Count(&votesFor).Error; err != nil {
		return dto.VoteTallyResponse{}, err
	}
	if err := s.db.Model(&models.VerificationVote{}).
		Where("plan_id = ? AND approve = false", planID).
		Count(&votesAgainst).Error; err != nil {
		return dto.VoteTallyResponse{}, err
	}
	return dto.VoteTallyResponse{VotesFor: int(votesFor), VotesAgainst: int(votesAgainst)}, nil
}
