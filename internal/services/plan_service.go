package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/planprove/backend/internal/dto"
	"github.com/planprove/backend/internal/engine"
	"github.com/planprove/backend/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrPlanNotFound  = errors.New("plan not found")
	ErrGroupNotFound = errors.New("group challenge not found")
	ErrNotPlanOwner  = errors.New("not the plan owner")
	ErrPlanNotActive = errors.New("plan is not active")
	ErrInvalidDates  = errors.New("end date must be after start date")
	ErrTitleRequired = errors.New("title is required")
)

// PlanService owns plan creation and the read surface: detail, feeds,
// hashtags and group challenges. Status writes live in LifecycleService.
type PlanService struct {
	db *gorm.DB
}

func NewPlanService(db *gorm.DB) *PlanService {
	return &PlanService{db: db}
}

// CreatePlan persists a plan together with its milestone breakdown. The
// breakdown is fixed at creation: 5 to 50 milestones, each weighted 1..3
// (weight defaults to 2 when omitted).
func (s *PlanService) CreatePlan(userID uuid.UUID, req dto.CreatePlanRequest) (*models.Plan, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, ErrTitleRequired
	}
	if !req.EndDate.After(req.StartDate) {
		return nil, ErrInvalidDates
	}

	milestones := make([]models.Milestone, 0, len(req.Milestones))
	for i, draft := range req.Milestones {
		weight := draft.Weight
		if weight == 0 {
			weight = 2
		}
		milestones = append(milestones, models.Milestone{
			ID:       uuid.New(),
			Position: i + 1,
			Title:    draft.Title,
			DueDate:  draft.DueDate,
			Weight:   weight,
		})
	}
	if err := engine.ValidateMilestones(milestones); err != nil {
		return nil, err
	}

	plan := models.Plan{
		ID:          uuid.New(),
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		Images:      toJSON(req.Images),
		Categories:  toJSON(req.Categories),
		Hashtags:    toJSON(req.Hashtags),
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Status:      models.StatusActive,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&plan).Error; err != nil {
			return fmt.Errorf("failed to create plan: %w", err)
		}
		for i := range milestones {
			milestones[i].PlanID = plan.ID
		}
		if err := tx.Create(&milestones).Error; err != nil {
			return fmt.Errorf("failed to create milestones: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	plan.Milestones = milestones
	return &plan, nil
}

// GetPlan loads a plan with its milestones, logs and owner, and decorates
// it with the derived progress and popularity scores. viewerID may be
// uuid.Nil for anonymous reads.
func (s *PlanService) GetPlan(planID, viewerID uuid.UUID) (*dto.PlanResponse, error) {
	var plan models.Plan
	err := s.db.
		Preload("Milestones", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Logs", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("User").
		First(&plan, "id = ?", planID).Error
	if err != nil {
		return nil, ErrPlanNotFound
	}

	resp := s.decorate(plan)
	if viewerID != uuid.Nil {
		var liked int64
		s.db.Model(&models.PlanLike{}).
			Where("plan_id = ? AND user_id = ?", planID, viewerID).
			Count(&liked)
		resp.LikedByMe = liked > 0

		var vote models.VerificationVote
		if s.db.Where("plan_id = ? AND user_id = ?", planID, viewerID).
			First(&vote).Error == nil {
			approve := vote.Approve
			resp.MyVote = &approve
		}
	}
	return &resp, nil
}

// ListUserPlans returns a user's plans newest-first with derived scores.
func (s *PlanService) ListUserPlans(userID uuid.UUID) ([]dto.PlanResponse, error) {
	var plans []models.Plan
	err := s.db.
		Preload("Milestones").
		Preload("User").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&plans).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	return s.decorateAll(plans), nil
}

// NewFeed returns plans newest-first, optionally filtered by category.
func (s *PlanService) NewFeed(category string, limit, offset int) ([]dto.PlanResponse, error) {
	plans, err := s.feedCandidates(category, limit, offset, "created_at DESC")
	if err != nil {
		return nil, err
	}
	return s.decorateAll(plans), nil
}

// PopularFeed ranks plans by popularity score, ties broken newest-first.
// Ranking happens in memory because the score folds in milestone likes and
// the owner's trust, neither of which lives on the plans row.
func (s *PlanService) PopularFeed(category string, limit, offset int) ([]dto.PlanResponse, error) {
	plans, err := s.feedCandidates(category, 0, 0, "created_at DESC")
	if err != nil {
		return nil, err
	}

	decorated := s.decorateAll(plans)
	sort.SliceStable(decorated, func(i, j int) bool {
		if decorated[i].Popularity != decorated[j].Popularity {
			return decorated[i].Popularity > decorated[j].Popularity
		}
		return decorated[i].Plan.CreatedAt.After(decorated[j].Plan.CreatedAt)
	})

	if offset >= len(decorated) {
		return []dto.PlanResponse{}, nil
	}
	decorated = decorated[offset:]
	if limit > 0 && limit < len(decorated) {
		decorated = decorated[:limit]
	}
	return decorated, nil
}

// TopHashtags returns the most used hashtags across recent plans,
// optionally scoped to one category. Tags are stored as JSON arrays, so
// counting happens in memory over a bounded window of recent rows.
func (s *PlanService) TopHashtags(category string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 10
	}

	query := s.db.Select("hashtags").
		Order("created_at DESC").
		Limit(500)
	if category != "" {
		query = query.Where("categories LIKE ?", "%"+`"`+category+`"`+"%")
	}
	var rows []models.Plan
	err := query.Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load hashtags: %w", err)
	}

	counts := make(map[string]int)
	for _, row := range rows {
		for _, tag := range fromJSON(row.Hashtags) {
			tag = strings.ToLower(strings.TrimSpace(tag))
			if tag != "" {
				counts[tag]++
			}
		}
	}

	tags := make([]string, 0, len(counts))
	for tag := range counts {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool {
		if counts[tags[i]] != counts[tags[j]] {
			return counts[tags[i]] > counts[tags[j]]
		}
		return tags[i] < tags[j]
	})
	if limit < len(tags) {
		tags = tags[:limit]
	}
	return tags, nil
}

// Abandon lets the owner give up an active plan. The transition lands in
// FAILED_BY_ABANDONMENT immediately and is absorbing; the conditional
// update keeps a concurrent lifecycle write from being overwritten.
func (s *PlanService) Abandon(planID, userID uuid.UUID) error {
	var plan models.Plan
	if err := s.db.First(&plan, "id = ?", planID).Error; err != nil {
		return ErrPlanNotFound
	}
	if plan.UserID != userID {
		return ErrNotPlanOwner
	}
	if plan.Status != models.StatusActive {
		return ErrPlanNotActive
	}

	result := s.db.Model(&models.Plan{}).
		Where("id = ? AND status = ?", planID, models.StatusActive).
		Update("status", models.StatusFailedByAbandonment)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPlanNotActive
	}
	return nil
}

// ListGroupChallenges returns the curated group challenges, optionally by
// category.
func (s *PlanService) ListGroupChallenges(category string) ([]models.GroupChallenge, error) {
	query := s.db.Order("created_at DESC")
	if category != "" {
		query = query.Where("category = ?", category)
	}
	var groups []models.GroupChallenge
	if err := query.Find(&groups).Error; err != nil {
		return nil, fmt.Errorf("failed to list group challenges: %w", err)
	}
	return groups, nil
}

// GetGroupChallenge composes a group's leaderboard from each participant's
// own plan. The group has no lifecycle of its own.
func (s *PlanService) GetGroupChallenge(groupID uuid.UUID) (*dto.GroupChallengeResponse, error) {
	var group models.GroupChallenge
	if err := s.db.First(&group, "id = ?", groupID).Error; err != nil {
		return nil, ErrGroupNotFound
	}

	var participants []models.GroupParticipant
	if err := s.db.Where("group_id = ?", groupID).Find(&participants).Error; err != nil {
		return nil, fmt.Errorf("failed to load participants: %w", err)
	}

	resp := dto.GroupChallengeResponse{
		Group:        group,
		Participants: make([]dto.GroupParticipantResponse, 0, len(participants)),
	}
	for _, p := range participants {
		var plan models.Plan
		if err := s.db.Preload("Milestones").First(&plan, "id = ?", p.PlanID).Error; err != nil {
			continue
		}
		var user models.User
		if err := s.db.First(&user, "id = ?", p.UserID).Error; err != nil {
			continue
		}
		resp.Participants = append(resp.Participants, dto.GroupParticipantResponse{
			User: dto.UserResponse{
				ID:             user.ID,
				Name:           user.Name,
				Avatar:         user.Avatar,
				TrustScore:     user.TrustScore,
				IsFaceVerified: user.IsFaceVerified,
			},
			PlanID:   plan.ID,
			Progress: engine.Progress(plan.Milestones),
			Status:   plan.Status,
			EndDate:  plan.EndDate,
		})
	}

	// Leaderboard order: furthest along first.
	sort.SliceStable(resp.Participants, func(i, j int) bool {
		return resp.Participants[i].Progress > resp.Participants[j].Progress
	})
	return &resp, nil
}

// JoinGroupChallenge spawns a personal plan from the group's template dates
// supplied by the caller and links it into the group. Joining twice is
// rejected by the unique participant pair.
func (s *PlanService) JoinGroupChallenge(groupID, userID uuid.UUID, req dto.CreatePlanRequest) (*models.Plan, error) {
	var group models.GroupChallenge
	if err := s.db.First(&group, "id = ?", groupID).Error; err != nil {
		return nil, ErrGroupNotFound
	}

	var existing int64
	s.db.Model(&models.GroupParticipant{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Count(&existing)
	if existing > 0 {
		return nil, errors.New("already participating in this challenge")
	}

	if req.Title == "" {
		req.Title = group.Title
	}
	if len(req.Categories) == 0 && group.Category != "" {
		req.Categories = []string{group.Category}
	}

	plan, err := s.CreatePlan(userID, req)
	if err != nil {
		return nil, err
	}

	participant := models.GroupParticipant{
		ID:      uuid.New(),
		GroupID: groupID,
		UserID:  userID,
		PlanID:  plan.ID,
	}
	if err := s.db.Create(&participant).Error; err != nil {
		return nil, fmt.Errorf("failed to join challenge: %w", err)
	}
	return plan, nil
}

// MilestoneStates reports each milestone's verification state at the given
// time, for the plan detail screen.
func (s *PlanService) MilestoneStates(planID uuid.UUID, now time.Time) ([]dto.MilestoneStateResponse, error) {
	var milestones []models.Milestone
	err := s.db.Where("plan_id = ?", planID).Order("position ASC").Find(&milestones).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load milestones: %w", err)
	}
	out := make([]dto.MilestoneStateResponse, 0, len(milestones))
	for _, m := range milestones {
		resp := dto.MilestoneStateResponse{
			Milestone: m,
			State:     string(engine.StateOf(m, now)),
		}
		if m.IsCompleted {
			resp.Credibility = m.VerificationType.Credibility()
		}
		out = append(out, resp)
	}
	return out, nil
}

func (s *PlanService) feedCandidates(category string, limit, offset int, order string) ([]models.Plan, error) {
	query := s.db.
		Preload("Milestones").
		Preload("User").
		Order(order)
	if category != "" {
		// Categories are stored as a JSON array; the quoted element match
		// works on both postgres jsonb text and sqlite text storage.
		query = query.Where("categories LIKE ?", "%"+`"`+category+`"`+"%")
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	var plans []models.Plan
	if err := query.Find(&plans).Error; err != nil {
		return nil, fmt.Errorf("failed to load feed: %w", err)
	}
	return plans, nil
}

func (s *PlanService) decorate(plan models.Plan) dto.PlanResponse {
	ownerTrust := 0
	if plan.User != nil {
		ownerTrust = plan.User.TrustScore
	}
	return dto.PlanResponse{
		Plan:       plan,
		Progress:   engine.Progress(plan.Milestones),
		Popularity: engine.Popularity(plan, ownerTrust),
	}
}

func (s *PlanService) decorateAll(plans []models.Plan) []dto.PlanResponse {
	out := make([]dto.PlanResponse, 0, len(plans))
	for _, plan := range plans {
		out = append(out, s.decorate(plan))
	}
	return out
}

func toJSON(values []string) datatypes.JSON {
	if len(values) == 0 {
		return datatypes.JSON("[]")
	}
	raw, err := json.Marshal(values)
	if err != nil {
		return datatypes.JSON("[]")
	}
	return datatypes.JSON(raw)
}

func fromJSON(raw datatypes.JSON) []string {
	if len(raw) == 0 {
		return nil
	}
	var values []string
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil
	}
	return values
}
