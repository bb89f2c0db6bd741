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

type EngagementHandler struct {
	engagementService *services.EngagementService
}

func NewEngagementHandler(engagementService *services.EngagementService) *EngagementHandler {
	return &EngagementHandler{engagementService: engagementService}
}

func (h *EngagementHandler) TogglePlanLike(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	planID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid plan id")
	}

	liked, err := h.engagementService.TogglePlanLike(planID, userID)
	if err != nil {
		if errors.Is(err, services.ErrPlanNotFound) {
			return notFound(c, "Plan not found")
		}
		return internalError(c)
	}
	return c.JSON(fiber.Map{"liked": liked})
}

func (h *EngagementHandler) LikeMilestone(c *fiber.Ctx) error {
	milestoneID, err := uuid.Parse(c.Params("milestoneId"))
	if err != nil {
		return badRequest(c, "Invalid milestone id")
	}

	likes, err := h.engagementService.LikeMilestone(milestoneID)
	switch {
	case err == nil:
		return c.JSON(fiber.Map{"likes": likes})
	case errors.Is(err, engine.ErrCapReached):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Error: true, Message: "milestone like cap reached",
		})
	case errors.Is(err, services.ErrMilestoneNotFound):
		return notFound(c, "Milestone not found")
	default:
		return internalError(c)
	}
}

func (h *EngagementHandler) CastVote(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	planID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid plan id")
	}

	var req dto.CastVoteRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	switch err := h.engagementService.CastVote(planID, userID, req.Approve, time.Now()); {
	case err == nil:
		return c.SendStatus(fiber.StatusCreated)
	case errors.Is(err, services.ErrPlanNotFound):
		return notFound(c, "Plan not found")
	case errors.Is(err, engine.ErrAlreadyVoted):
		return conflict(c, "vote already cast")
	case errors.Is(err, engine.ErrPolicyViolation):
		return conflict(c, "plan is not open for voting")
	default:
		return internalError(c)
	}
}

func (h *EngagementHandler) Tally(c *fiber.Ctx) error {
	planID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid plan id")
	}

	tally, err := h.engagementService.Tally(planID)
	if err != nil {
		if errors.Is(err, services.ErrPlanNotFound) {
			return notFound(c, "Plan not found")
		}
		return internalError(c)
	}
	return c.JSON(tally)
}
