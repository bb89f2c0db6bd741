package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/planprove/backend/internal/dto"
	"github.com/planprove/backend/internal/engine"
	"github.com/planprove/backend/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrMilestoneNotFound   = errors.New("milestone not found")
	ErrMilestoneCompleted  = errors.New("milestone already completed")
	ErrEvidenceWindow      = errors.New("evidence window has closed")
	ErrInvalidVerification = errors.New("invalid verification type")
	ErrImageRequired       = errors.New("evidence image is required")
)

// EvidenceService accepts milestone evidence. An accepted submission marks
// the milestone completed and appends exactly one immutable progress log,
// in one transaction.
type EvidenceService struct {
	db *gorm.DB
}

func NewEvidenceService(db *gorm.DB) *EvidenceService {
	return &EvidenceService{db: db}
}

// SubmitEvidence completes a milestone on behalf of the plan owner. The
// acceptance window is judged against the request's own arrival time, so a
// submission that raced past the grace period is refused even if the row
// was still open when the request was sent. All writes are atomic; a
// rejected submission leaves no partial state.
func (s *EvidenceService) SubmitEvidence(planID, milestoneID, userID uuid.UUID, req dto.SubmitEvidenceRequest, now time.Time) (*models.ProgressLog, error) {
	if req.Image == "" {
		return nil, ErrImageRequired
	}
	if !req.VerificationType.Valid() {
		return nil, ErrInvalidVerification
	}

	var plan models.Plan
	if err := s.db.First(&plan, "id = ?", planID).Error; err != nil {
		return nil, ErrPlanNotFound
	}
	if plan.UserID != userID {
		return nil, ErrNotPlanOwner
	}
	if plan.Status != models.StatusActive {
		return nil, ErrPlanNotActive
	}

	var log models.ProgressLog
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var milestone models.Milestone
		if err := tx.Where("id = ? AND plan_id = ?", milestoneID, planID).
			First(&milestone).Error; err != nil {
			return ErrMilestoneNotFound
		}
		if milestone.IsCompleted {
			return ErrMilestoneCompleted
		}
		if err := engine.CanSubmitEvidence(milestone, now); err != nil {
			return ErrEvidenceWindow
		}

		answers, err := json.Marshal(req.Answers)
		if err != nil {
			return fmt.Errorf("failed to encode answers: %w", err)
		}

		updates := map[string]any{
			"is_completed":      true,
			"verification_type": req.VerificationType,
		}
		if err := tx.Model(&milestone).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to complete milestone: %w", err)
		}

		log = models.ProgressLog{
			ID:               uuid.New(),
			PlanID:           planID,
			MilestoneID:      milestoneID,
			MilestoneTitle:   milestone.Title,
			Image:            req.Image,
			VerificationType: req.VerificationType,
			Answers:          datatypes.JSON(answers),
			CreatedAt:        now,
		}
		if err := tx.Create(&log).Error; err != nil {
			return fmt.Errorf("failed to append progress log: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &log, nil
}

// PlanLogs returns a plan's evidence trail oldest-first.
func (s *EvidenceService) PlanLogs(planID uuid.UUID) ([]models.ProgressLog, error) {
	var logs []models.ProgressLog
	err := s.db.Where("plan_id = ?", planID).
		Order("created_at ASC").
		Find(&logs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load progress logs: %w", err)
	}
	return logs, nil
}
