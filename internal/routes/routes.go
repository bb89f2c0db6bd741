package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/planprove/backend/internal/config"
	"github.com/planprove/backend/internal/handlers"
	"github.com/planprove/backend/internal/middleware"
	"gorm.io/gorm"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	db *gorm.DB,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	planHandler *handlers.PlanHandler,
	engagementHandler *handlers.EngagementHandler,
	moderationHandler *handlers.ModerationHandler,
	healthHandler *handlers.HealthHandler,
) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)
	api.Get("/policy", planHandler.PolicyInfo)

	// Auth — public, with a stricter rate limit: 10 req/min per IP
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh)

	api.Post("/auth/logout", middleware.JWTProtected(cfg), authHandler.Logout)
	api.Delete("/auth/account", middleware.JWTProtected(cfg), authHandler.DeleteAccount)

	// Users
	api.Get("/users/me", middleware.JWTProtected(cfg), userHandler.GetMe)
	api.Get("/users/:id", userHandler.GetProfile)
	api.Get("/users/:id/plans", userHandler.ListPlans)
	api.Post("/users/:id/follow", middleware.JWTProtected(cfg), userHandler.ToggleFollow)
	api.Post("/users/me/verify-face", middleware.JWTProtected(cfg), userHandler.VerifyFace)

	// Plans — feeds and detail are public reads
	api.Get("/plans/feed/new", planHandler.NewFeed)
	api.Get("/plans/feed/popular", planHandler.PopularFeed)
	api.Get("/plans/hashtags", planHandler.TopHashtags)
	api.Get("/plans/:id", planHandler.Get)
	api.Get("/plans/:id/milestones", planHandler.MilestoneStates)
	api.Get("/plans/:id/logs", planHandler.Logs)
	api.Get("/plans/:id/votes", engagementHandler.Tally)
	api.Post("/plans/:id/refresh", planHandler.RefreshStatus)

	api.Post("/plans", middleware.JWTProtected(cfg), planHandler.Create)
	api.Post("/plans/:id/abandon", middleware.JWTProtected(cfg), planHandler.Abandon)
	api.Post("/plans/:id/milestones/:milestoneId/evidence", middleware.JWTProtected(cfg), planHandler.SubmitEvidence)
	api.Post("/plans/:id/like", middleware.JWTProtected(cfg), engagementHandler.TogglePlanLike)
	api.Post("/plans/:id/votes", middleware.JWTProtected(cfg), engagementHandler.CastVote)

	// Milestone likes stay anonymous; the cap does the throttling.
	api.Post("/milestones/:milestoneId/like", engagementHandler.LikeMilestone)
	api.Post("/milestones/:milestoneId/analyze", middleware.JWTProtected(cfg), planHandler.AnalyzeMilestone)

	// Planning assistance
	api.Post("/planning/suggest", middleware.JWTProtected(cfg), planHandler.SuggestMilestones)
	api.Post("/planning/feasibility", middleware.JWTProtected(cfg), planHandler.AssessFeasibility)

	// Group challenges
	api.Get("/groups", planHandler.ListGroups)
	api.Get("/groups/:id", planHandler.GetGroup)
	api.Post("/groups/:id/join", middleware.JWTProtected(cfg), planHandler.JoinGroup)

	// Moderation — user endpoints
	api.Post("/reports", middleware.JWTProtected(cfg), moderationHandler.CreateReport)
	api.Get("/blocks", middleware.JWTProtected(cfg), moderationHandler.ListBlocked)
	api.Post("/blocks/:id", middleware.JWTProtected(cfg), moderationHandler.BlockUser)
	api.Delete("/blocks/:id", middleware.JWTProtected(cfg), moderationHandler.UnblockUser)

	// Admin moderation panel
	admin := api.Group("/admin", middleware.JWTProtected(cfg), middleware.AdminRequired(db, cfg))
	admin.Get("/moderation/reports", moderationHandler.ListReports)
	admin.Put("/moderation/reports/:id", moderationHandler.ActionReport)
}
