package score

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/factlens/factlens/internal/model"
)

func TestOverall(t *testing.T) {
	tests := []struct {
		name   string
		cfg    Config
		claims []model.ClaimVerdict
		want   int
	}{
		{
			name:   "no claims uses empty score",
			cfg:    Config{EmptyScore: 0},
			claims: nil,
			want:   0,
		},
		{
			name:   "no claims with lenient policy",
			cfg:    Config{EmptyScore: 100},
			claims: []model.ClaimVerdict{},
			want:   100,
		},
		{
			name:   "single verified",
			claims: []model.ClaimVerdict{{Status: model.StatusVerified, Confidence: 90}},
			want:   100,
		},
		{
			name:   "single hallucinated",
			claims: []model.ClaimVerdict{{Status: model.StatusHallucinated, Confidence: 95}},
			want:   0,
		},
		{
			name:   "uncertain at full confidence caps at 30",
			claims: []model.ClaimVerdict{{Status: model.StatusUncertain, Confidence: 100}},
			want:   30,
		},
		{
			name:   "uncertain at zero confidence contributes nothing",
			claims: []model.ClaimVerdict{{Status: model.StatusUncertain, Confidence: 0}},
			want:   0,
		},
		{
			name:   "uncertain scales with confidence",
			claims: []model.ClaimVerdict{{Status: model.StatusUncertain, Confidence: 50}},
			want:   15,
		},
		{
			name: "verified and hallucinated average to fifty",
			claims: []model.ClaimVerdict{
				{Status: model.StatusVerified},
				{Status: model.StatusHallucinated},
			},
			want: 50,
		},
		{
			name: "mixed statuses",
			claims: []model.ClaimVerdict{
				{Status: model.StatusVerified},
				{Status: model.StatusUncertain, Confidence: 100},
				{Status: model.StatusHallucinated},
			},
			want: 43, // (1.0 + 0.3 + 0.0) / 3 = 0.4333
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overall(tt.cfg, tt.claims))
		})
	}
}

func TestOverall_Deterministic(t *testing.T) {
	claims := []model.ClaimVerdict{
		{Status: model.StatusVerified},
		{Status: model.StatusUncertain, Confidence: 42},
	}
	first := Overall(Config{}, claims)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Overall(Config{}, claims))
	}
}
