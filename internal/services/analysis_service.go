package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/planprove/backend/internal/config"
	"github.com/planprove/backend/internal/dto"
	"github.com/planprove/backend/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AnalysisService calls the language-model collaborator for advisory
// output: per-milestone evidence guidance, milestone suggestions and a
// feasibility read on a draft plan. Every call degrades to a deterministic
// fallback when the collaborator is unreachable; nothing in the lifecycle
// depends on these results.
type AnalysisService struct {
	db  *gorm.DB
	cfg *config.Config
}

func NewAnalysisService(db *gorm.DB, cfg *config.Config) *AnalysisService {
	return &AnalysisService{db: db, cfg: cfg}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// AnalyzeMilestone classifies a milestone's action and recommends evidence
// types, storing the result on the milestone row for the detail screen.
func (s *AnalysisService) AnalyzeMilestone(milestoneID uuid.UUID) (*dto.MilestoneAnalysis, error) {
	var milestone models.Milestone
	if err := s.db.First(&milestone, "id = ?", milestoneID).Error; err != nil {
		return nil, ErrMilestoneNotFound
	}

	analysis := s.classifyMilestone(milestone.Title)

	raw, err := json.Marshal(analysis)
	if err != nil {
		return nil, fmt.Errorf("failed to encode analysis: %w", err)
	}
	if err := s.db.Model(&milestone).Update("analysis", datatypes.JSON(raw)).Error; err != nil {
		return nil, fmt.Errorf("failed to store analysis: %w", err)
	}
	return &analysis, nil
}

// SuggestMilestones drafts a milestone breakdown for a plan-in-progress.
// The result always satisfies the minimum milestone count: when the model
// returns fewer, evenly spaced generic checkpoints fill the gap.
func (s *AnalysisService) SuggestMilestones(req dto.SuggestMilestonesRequest) ([]dto.MilestoneDraft, error) {
	prompt := fmt.Sprintf(
		"Break this personal challenge into 5-10 verifiable milestones. Title: %q. Description: %q. It runs from %s to %s. Respond with JSON only (no markdown, no code fences): [{\"title\": \"...\", \"due_date\": \"RFC3339 timestamp within the range\", \"weight\": 1-3}]. Order by due date.",
		req.Title, req.Description,
		req.StartDate.Format(time.RFC3339), req.EndDate.Format(time.RFC3339))

	var drafts []dto.MilestoneDraft
	if content, err := s.complete(
		"You are a goal-planning assistant for a challenge-tracking app.",
		prompt,
	); err == nil {
		_ = json.Unmarshal([]byte(content), &drafts)
	}

	drafts = sanitizeDrafts(drafts, req.StartDate, req.EndDate)
	return fillDrafts(drafts, req.StartDate, req.EndDate), nil
}

// AssessFeasibility returns a short written read on whether the draft plan
// is realistic for its time box.
func (s *AnalysisService) AssessFeasibility(req dto.SuggestMilestonesRequest) (*dto.FeasibilityResponse, error) {
	days := int(req.EndDate.Sub(req.StartDate).Hours() / 24)
	prompt := fmt.Sprintf(
		"Assess in 2-3 plain sentences whether this personal challenge is realistic. Title: %q. Description: %q. Duration: %d days. Mention the biggest risk. Respond with the sentences only.",
		req.Title, req.Description, days)

	content, err := s.complete(
		"You are a pragmatic coach for a challenge-tracking app.", prompt)
	if err != nil || content == "" {
		content = fmt.Sprintf(
			"A %d-day window leaves room for steady progress if the work is spread evenly. The biggest risk is front-loading effort and stalling midway, so anchor each week to a concrete milestone.",
			days)
	}
	return &dto.FeasibilityResponse{Assessment: content}, nil
}

func (s *AnalysisService) classifyMilestone(title string) dto.MilestoneAnalysis {
	prompt := fmt.Sprintf(
		"Classify this challenge milestone: %q. Respond with JSON only (no markdown, no code fences): {\"action_type\": short verb phrase, \"action_tags\": up to 3 tags, \"required_biometrics\": subset of [\"heart_rate\",\"step_count\",\"gps_track\",\"sleep_data\"] or empty, \"recommended_evidence\": up to 3 concrete photo/document suggestions, \"notes\": one sentence of guidance}.",
		title)

	if content, err := s.complete(
		"You classify milestones for an evidence-based challenge app.", prompt,
	); err == nil {
		var analysis dto.MilestoneAnalysis
		if json.Unmarshal([]byte(content), &analysis) == nil && analysis.ActionType != "" {
			return analysis
		}
	}
	return fallbackAnalysis(title)
}

// complete sends one chat-completion round trip and returns the model text
// with any code fences stripped.
func (s *AnalysisService) complete(system, user string) (string, error) {
	if s.cfg.AIAPIKey == "" {
		return "", fmt.Errorf("analysis collaborator not configured")
	}

	body, err := json.Marshal(chatRequest{
		Model: s.cfg.AIModel,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequest(http.MethodPost, s.cfg.AIAPIURL, bytes.NewBuffer(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.cfg.AIAPIKey)

	client := &http.Client{Timeout: s.cfg.AITimeout}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("analysis collaborator returned %d", resp.StatusCode)
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", err
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("empty completion")
	}

	content := strings.TrimSpace(chatResp.Choices[0].Message.Content)
	if strings.HasPrefix(content, "```") {
		lines := strings.Split(content, "\n")
		if len(lines) > 2 {
			content = strings.Join(lines[1:len(lines)-1], "\n")
		}
	}
	return content, nil
}

func fallbackAnalysis(title string) dto.MilestoneAnalysis {
	lower := strings.ToLower(title)
	analysis := dto.MilestoneAnalysis{
		ActionType:          "general task",
		ActionTags:          []string{"general"},
		RequiredBiometrics:  []string{},
		RecommendedEvidence: []string{"photo of the completed work"},
		Notes:               "Capture the result in a single clear photo.",
	}
	switch {
	case strings.Contains(lower, "run") || strings.Contains(lower, "walk") || strings.Contains(lower, "km"):
		analysis.ActionType = "physical exercise"
		analysis.ActionTags = []string{"fitness", "cardio"}
		analysis.RequiredBiometrics = []string{"heart_rate", "gps_track"}
		analysis.RecommendedEvidence = []string{"tracking app screenshot", "post-activity selfie"}
		analysis.Notes = "A tracked route makes this easy to verify."
	case strings.Contains(lower, "read") || strings.Contains(lower, "book") || strings.Contains(lower, "chapter"):
		analysis.ActionType = "reading"
		analysis.ActionTags = []string{"learning", "reading"}
		analysis.RecommendedEvidence = []string{"photo of book and notes", "written summary"}
		analysis.Notes = "A short summary proves the reading better than a cover photo."
	case strings.Contains(lower, "save") || strings.Contains(lower, "budget"):
		analysis.ActionType = "financial habit"
		analysis.ActionTags = []string{"finance"}
		analysis.RecommendedEvidence = []string{"redacted statement screenshot"}
		analysis.Notes = "Redact account numbers before uploading."
	}
	return analysis
}

func sanitizeDrafts(drafts []dto.MilestoneDraft, start, end time.Time) []dto.MilestoneDraft {
	out := drafts[:0]
	for _, d := range drafts {
		if strings.TrimSpace(d.Title) == "" {
			continue
		}
		if d.DueDate.Before(start) || d.DueDate.After(end) {
			continue
		}
		if d.Weight < 1 || d.Weight > 3 {
			d.Weight = 2
		}
		out = append(out, d)
	}
	return out
}

// fillDrafts pads a suggestion list up to the minimum milestone count with
// evenly spaced checkpoints.
func fillDrafts(drafts []dto.MilestoneDraft, start, end time.Time) []dto.MilestoneDraft {
	const minCount = 5
	if len(drafts) >= minCount {
		return drafts
	}

	missing := minCount - len(drafts)
	span := end.Sub(start)
	for i := 0; i < missing; i++ {
		due := start.Add(span * time.Duration(i+1) / time.Duration(missing+1))
		drafts = append(drafts, dto.MilestoneDraft{
			Title:   fmt.Sprintf("Checkpoint %d", len(drafts)+1),
			DueDate: due,
			Weight:  2,
		})
	}
	return drafts
}
