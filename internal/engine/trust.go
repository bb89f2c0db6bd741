package engine

import (
	"math"

	"github.com/planprove/backend/internal/models"
)

// Trust score shares: up to 70 points from the historical success rate,
// a flat 30 for a verified face.
const (
	trustHistoryShare = 70
	trustFaceShare    = 30
)

// TrustScore derives a user's 0..100 credibility score from the outcomes of
// their past plans plus identity verification. Only terminal plans count;
// a user with no finished plans and no face verification scores exactly 0.
// The score moves only when a plan reaches a terminal state or the face
// verification flag changes.
func TrustScore(faceVerified bool, outcomes []models.PlanStatus) int {
	terminal := 0
	succeeded := 0
	for _, st := range outcomes {
		if !st.IsTerminal() {
			continue
		}
		terminal++
		if st == models.StatusCompletedSuccess {
			succeeded++
		}
	}

	historyScore := 0
	if terminal > 0 {
		successRate := float64(succeeded) / float64(terminal)
		historyScore = int(math.Round(successRate * trustHistoryShare))
	}

	faceScore := 0
	if faceVerified {
		faceScore = trustFaceShare
	}

	return historyScore + faceScore
}
