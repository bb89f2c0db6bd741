package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/planprove/backend/internal/models"
)

type MilestoneDraft struct {
	Title   string    `json:"title"`
	DueDate time.Time `json:"due_date"`
	Weight  int       `json:"weight"`
}

type CreatePlanRequest struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Images      []string         `json:"images"`
	Categories  []string         `json:"categories"`
	Hashtags    []string         `json:"hashtags"`
	StartDate   time.Time        `json:"start_date"`
	EndDate     time.Time        `json:"end_date"`
	Milestones  []MilestoneDraft `json:"milestones"`
}

type SubmitEvidenceRequest struct {
	Image            string                   `json:"image"`
	VerificationType models.VerificationType  `json:"verification_type"`
	Answers          models.ReflectionAnswers `json:"answers"`
}

type CastVoteRequest struct {
	Approve bool `json:"approve"`
}

// PlanResponse decorates a plan with everything the engine derives on read.
type PlanResponse struct {
	Plan       models.Plan `json:"plan"`
	Progress   int         `json:"progress"`
	Popularity int         `json:"popularity"`
	LikedByMe  bool        `json:"liked_by_me"`
	MyVote     *bool       `json:"my_vote,omitempty"`
}

type MilestoneStateResponse struct {
	Milestone models.Milestone `json:"milestone"`
	State     string           `json:"state"`
	// Credibility is the evidence weight of a completed milestone (20 for
	// photo/text, 80 for official biometric); zero while incomplete.
	Credibility int `json:"credibility,omitempty"`
}

type VoteTallyResponse struct {
	VotesFor     int        `json:"votes_for"`
	VotesAgainst int        `json:"votes_against"`
	ClosesAt     *time.Time `json:"closes_at,omitempty"`
}

type GroupParticipantResponse struct {
	User     UserResponse      `json:"user"`
	PlanID   uuid.UUID         `json:"plan_id"`
	Progress int               `json:"progress"`
	Status   models.PlanStatus `json:"status"`
	EndDate  time.Time         `json:"end_date"`
}

type GroupChallengeResponse struct {
	Group        models.GroupChallenge      `json:"group"`
	Participants []GroupParticipantResponse `json:"participants"`
}

// MilestoneAnalysis is the advisory output of the evidence-analysis
// collaborator. It is display guidance only; no lifecycle transition ever
// depends on it.
type MilestoneAnalysis struct {
	ActionType          string   `json:"action_type"`
	ActionTags          []string `json:"action_tags"`
	RequiredBiometrics  []string `json:"required_biometrics"`
	RecommendedEvidence []string `json:"recommended_evidence"`
	Notes               string   `json:"notes"`
}

type SuggestMilestonesRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
}

type FeasibilityResponse struct {
	Assessment string `json:"assessment"`
}
