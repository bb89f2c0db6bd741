package engine

import (
	"testing"

	"github.com/planprove/backend/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestTrustScore(t *testing.T) {
	tests := []struct {
		name         string
		faceVerified bool
		outcomes     []models.PlanStatus
		want         int
	}{
		{"brand new user", false, nil, 0},
		{"face verified only", true, nil, 30},
		{"active plans don't count", false, []models.PlanStatus{models.StatusActive, models.StatusVerificationPending}, 0},
		{
			"three of four succeeded",
			false,
			[]models.PlanStatus{
				models.StatusCompletedSuccess,
				models.StatusCompletedSuccess,
				models.StatusCompletedSuccess,
				models.StatusCompletedFail,
			},
			53, // round(0.75 * 70)
		},
		{
			"abandonment counts as a terminal failure",
			true,
			[]models.PlanStatus{models.StatusCompletedSuccess, models.StatusFailedByAbandonment},
			65, // round(0.5 * 70) + 30
		},
		{
			"perfect history with face verification",
			true,
			[]models.PlanStatus{models.StatusCompletedSuccess, models.StatusCompletedSuccess},
			100,
		},
		{
			"all failed",
			false,
			[]models.PlanStatus{models.StatusCompletedFail, models.StatusCompletedFail},
			0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TrustScore(tt.faceVerified, tt.outcomes)
			assert.Equal(t, tt.want, got)
			assert.GreaterOrEqual(t, got, 0)
			assert.LessOrEqual(t, got, 100)
		})
	}
}
