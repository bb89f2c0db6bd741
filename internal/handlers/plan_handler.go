package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/planprove/backend/internal/dto"
	"github.com/planprove/backend/internal/engine"
	"github.com/planprove/backend/internal/middleware"
	"github.com/planprove/backend/internal/services"
)

type PlanHandler struct {
	planService      *services.PlanService
	evidenceService  *services.EvidenceService
	lifecycleService *services.LifecycleService
	analysisService  *services.AnalysisService
	moderation       *services.ModerationService
}

func NewPlanHandler(
	planService *services.PlanService,
	evidenceService *services.EvidenceService,
	lifecycleService *services.LifecycleService,
	analysisService *services.AnalysisService,
	moderation *services.ModerationService,
) *PlanHandler {
	return &PlanHandler{
		planService:      planService,
		evidenceService:  evidenceService,
		lifecycleService: lifecycleService,
		analysisService:  analysisService,
		moderation:       moderation,
	}
}

func (h *PlanHandler) Create(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.CreatePlanRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if ok, reason := h.moderation.FilterContent(req.Title); !ok {
		return badRequest(c, h.moderation.GetRejectionMessage(reason))
	}
	if ok, reason := h.moderation.FilterContent(req.Description); !ok {
		return badRequest(c, h.moderation.GetRejectionMessage(reason))
	}

	plan, err := h.planService.CreatePlan(userID, req)
	if err != nil {
		return badRequest(c, err.Error())
	}
	return c.Status(fiber.StatusCreated).JSON(plan)
}

func (h *PlanHandler) Get(c *fiber.Ctx) error {
	planID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid plan id")
	}

	// Viewer identity is optional on reads.
	viewerID, _ := middleware.CurrentUserID(c)

	// A read is the natural moment to catch up on an overdue transition.
	if _, err := h.lifecycleService.Refresh(planID, time.Now()); err != nil &&
		!errors.Is(err, services.ErrPlanNotFound) {
		return internalError(c)
	}

	resp, err := h.planService.GetPlan(planID, viewerID)
	if err != nil {
		return notFound(c, "Plan not found")
	}
	return c.JSON(resp)
}

func (h *PlanHandler) NewFeed(c *fiber.Ctx) error {
	plans, err := h.planService.NewFeed(
		c.Query("category"),
		c.QueryInt("limit", 20),
		c.QueryInt("offset", 0),
	)
	if err != nil {
		return internalError(c)
	}
	return c.JSON(plans)
}

func (h *PlanHandler) PopularFeed(c *fiber.Ctx) error {
	plans, err := h.planService.PopularFeed(
		c.Query("category"),
		c.QueryInt("limit", 20),
		c.QueryInt("offset", 0),
	)
	if err != nil {
		return internalError(c)
	}
	return c.JSON(plans)
}

func (h *PlanHandler) TopHashtags(c *fiber.Ctx) error {
	tags, err := h.planService.TopHashtags(c.Query("category"), c.QueryInt("limit", 10))
	if err != nil {
		return internalError(c)
	}
	return c.JSON(fiber.Map{"hashtags": tags})
}

func (h *PlanHandler) MilestoneStates(c *fiber.Ctx) error {
	planID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid plan id")
	}

	states, err := h.planService.MilestoneStates(planID, time.Now())
	if err != nil {
		return internalError(c)
	}
	return c.JSON(states)
}

func (h *PlanHandler) Abandon(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	planID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid plan id")
	}

	switch err := h.planService.Abandon(planID, userID); {
	case err == nil:
		return c.SendStatus(fiber.StatusNoContent)
	case errors.Is(err, services.ErrPlanNotFound):
		return notFound(c, "Plan not found")
	case errors.Is(err, services.ErrNotPlanOwner):
		return forbidden(c, err.Error())
	case errors.Is(err, services.ErrPlanNotActive):
		return conflict(c, err.Error())
	default:
		return internalError(c)
	}
}

func (h *PlanHandler) SubmitEvidence(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	planID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid plan id")
	}
	milestoneID, err := uuid.Parse(c.Params("milestoneId"))
	if err != nil {
		return badRequest(c, "Invalid milestone id")
	}

	var req dto.SubmitEvidenceRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	for _, answer := range []string{
		req.Answers.Q1, req.Answers.Q2, req.Answers.Q3, req.Answers.Q4,
		req.Answers.Q5, req.Answers.Q6, req.Answers.Q7,
	} {
		if ok, reason := h.moderation.FilterContent(answer); !ok {
			return badRequest(c, h.moderation.GetRejectionMessage(reason))
		}
	}

	log, err := h.evidenceService.SubmitEvidence(planID, milestoneID, userID, req, time.Now())
	switch {
	case err == nil:
		return c.Status(fiber.StatusCreated).JSON(log)
	case errors.Is(err, services.ErrPlanNotFound), errors.Is(err, services.ErrMilestoneNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, services.ErrNotPlanOwner):
		return forbidden(c, err.Error())
	case errors.Is(err, services.ErrMilestoneCompleted),
		errors.Is(err, services.ErrEvidenceWindow),
		errors.Is(err, services.ErrPlanNotActive):
		return conflict(c, err.Error())
	default:
		return badRequest(c, err.Error())
	}
}

func (h *PlanHandler) Logs(c *fiber.Ctx) error {
	planID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid plan id")
	}

	logs, err := h.evidenceService.PlanLogs(planID)
	if err != nil {
		return internalError(c)
	}
	return c.JSON(logs)
}

func (h *PlanHandler) RefreshStatus(c *fiber.Ctx) error {
	planID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid plan id")
	}

	status, err := h.lifecycleService.Refresh(planID, time.Now())
	if err != nil {
		if errors.Is(err, services.ErrPlanNotFound) {
			return notFound(c, "Plan not found")
		}
		return internalError(c)
	}
	return c.JSON(fiber.Map{"status": status})
}

func (h *PlanHandler) ListGroups(c *fiber.Ctx) error {
	groups, err := h.planService.ListGroupChallenges(c.Query("category"))
	if err != nil {
		return internalError(c)
	}
	return c.JSON(groups)
}

func (h *PlanHandler) GetGroup(c *fiber.Ctx) error {
	groupID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid group id")
	}

	resp, err := h.planService.GetGroupChallenge(groupID)
	if err != nil {
		return notFound(c, "Group challenge not found")
	}
	return c.JSON(resp)
}

func (h *PlanHandler) JoinGroup(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	groupID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid group id")
	}

	var req dto.CreatePlanRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	plan, err := h.planService.JoinGroupChallenge(groupID, userID, req)
	if err != nil {
		if errors.Is(err, services.ErrGroupNotFound) {
			return notFound(c, "Group challenge not found")
		}
		return badRequest(c, err.Error())
	}
	return c.Status(fiber.StatusCreated).JSON(plan)
}

func (h *PlanHandler) AnalyzeMilestone(c *fiber.Ctx) error {
	milestoneID, err := uuid.Parse(c.Params("milestoneId"))
	if err != nil {
		return badRequest(c, "Invalid milestone id")
	}

	analysis, err := h.analysisService.AnalyzeMilestone(milestoneID)
	if err != nil {
		if errors.Is(err, services.ErrMilestoneNotFound) {
			return notFound(c, "Milestone not found")
		}
		return internalError(c)
	}
	return c.JSON(analysis)
}

func (h *PlanHandler) SuggestMilestones(c *fiber.Ctx) error {
	var req dto.SuggestMilestonesRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if !req.EndDate.After(req.StartDate) {
		return badRequest(c, "end date must be after start date")
	}

	drafts, err := h.analysisService.SuggestMilestones(req)
	if err != nil {
		return internalError(c)
	}
	return c.JSON(drafts)
}

func (h *PlanHandler) AssessFeasibility(c *fiber.Ctx) error {
	var req dto.SuggestMilestonesRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	resp, err := h.analysisService.AssessFeasibility(req)
	if err != nil {
		return internalError(c)
	}
	return c.JSON(resp)
}

// engine constants surfaced for clients that render countdowns locally.
func (h *PlanHandler) PolicyInfo(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"grace_period_hours":        int(engine.GracePeriod.Hours()),
		"verification_window_hours": int(engine.VerificationWindow.Hours()),
		"min_milestones":            engine.MinMilestones,
		"max_milestones":            engine.MaxMilestones,
		"milestone_like_cap":        engine.MilestoneLikeCap,
		"abandonment_days":          int(engine.AbandonmentThreshold.Hours() / 24),
	})
}
