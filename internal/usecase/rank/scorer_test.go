package rank_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oppscout/oppscout-backend/internal/config"
	"github.com/oppscout/oppscout-backend/internal/domain"
	"github.com/oppscout/oppscout-backend/internal/usecase/rank"
)

func intPtr(v int) *int { return &v }

func effortPtr(v domain.EffortLevel) *domain.EffortLevel { return &v }

func newScorer() *rank.Scorer {
	return rank.NewScorer(config.ScoringConfig{
		WeightIncome: 0.35,
		WeightEffort: 0.35,
		WeightFit:    0.30,
	})
}

func TestScore_AllComponentsInBounds(t *testing.T) {
	scorer := newScorer()
	profile := domain.DefaultProfile()

	cases := []struct {
		name string
		opp  *domain.Opportunity
	}{
		{"empty", &domain.Opportunity{}},
		{"rich", &domain.Opportunity{
			IncomeHigh:     intPtr(500000),
			HoursPerWeek:   intPtr(5),
			Remote:         true,
			Type:           domain.TypeJob,
			SkillsRequired: profile.Skills,
			EquityOffered:  true,
		}},
		{"hostile", &domain.Opportunity{
			IncomeHigh:   intPtr(1),
			HoursPerWeek: intPtr(100),
			Remote:       false,
		}},
		{"negative extracted income", &domain.Opportunity{
			IncomeHigh:   intPtr(-50000),
			HoursPerWeek: intPtr(200),
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			scorer.Score(tc.opp, profile)
			for name, score := range map[string]float64{
				"income":  tc.opp.IncomeScore,
				"effort":  tc.opp.EffortScore,
				"fit":     tc.opp.RelevanceScore,
				"overall": tc.opp.OverallScore,
			} {
				assert.GreaterOrEqual(t, score, 0.0, name)
				assert.LessOrEqual(t, score, 1.0, name)
			}
		})
	}
}

func TestScore_IncomeCurve(t *testing.T) {
	scorer := newScorer()
	profile := &domain.UserProfile{MinIncome: 100000, MaxHoursWeekly: 20}

	cases := []struct {
		name   string
		income *int
		want   float64
	}{
		{"unknown income is neutral", nil, 0.5},
		{"at target", intPtr(100000), 0.5},
		{"half of target", intPtr(50000), 0.25},
		{"1.5x target", intPtr(150000), 0.75},
		{"double target caps at 1", intPtr(200000), 1.0},
		{"far beyond target stays capped", intPtr(900000), 1.0},
		{"negative income floors at 0", intPtr(-50000), 0.0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			opp := &domain.Opportunity{IncomeHigh: tc.income}
			scorer.Score(opp, profile)
			assert.InDelta(t, tc.want, opp.IncomeScore, 1e-9)
		})
	}
}

func TestScore_IncomeFallsBackToLowBound(t *testing.T) {
	scorer := newScorer()
	profile := &domain.UserProfile{MinIncome: 100000}

	opp := &domain.Opportunity{IncomeLow: intPtr(200000)}
	scorer.Score(opp, profile)
	assert.InDelta(t, 1.0, opp.IncomeScore, 1e-9)
}

func TestScore_ZeroTargetIsNeutral(t *testing.T) {
	scorer := newScorer()
	profile := &domain.UserProfile{MinIncome: 0}

	opp := &domain.Opportunity{IncomeHigh: intPtr(50000)}
	scorer.Score(opp, profile)
	assert.InDelta(t, 0.5, opp.IncomeScore, 1e-9)
}

func TestScore_EffortCurve(t *testing.T) {
	scorer := newScorer()
	profile := &domain.UserProfile{MaxHoursWeekly: 20}

	cases := []struct {
		name  string
		hours *int
		level *domain.EffortLevel
		want  float64
	}{
		{"half of max", intPtr(10), nil, 0.75},
		{"exactly max", intPtr(20), nil, 0.5},
		{"1.5x max", intPtr(30), nil, 0.25},
		{"double max hits zero", intPtr(40), nil, 0.0},
		{"beyond double max stays zero", intPtr(60), nil, 0.0},
		{"effort level supplies hours", nil, effortPtr(domain.EffortMinimal), 0.75},
		{"unknown effort assumes 40 hours", nil, nil, 0.0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			opp := &domain.Opportunity{HoursPerWeek: tc.hours, EffortLevel: tc.level}
			scorer.Score(opp, profile)
			assert.InDelta(t, tc.want, opp.EffortScore, 1e-9)
		})
	}
}

func TestScore_EffortZeroMaxHours(t *testing.T) {
	scorer := newScorer()
	profile := &domain.UserProfile{MaxHoursWeekly: 0}

	for _, hours := range []int{1, 40, 80} {
		opp := &domain.Opportunity{HoursPerWeek: intPtr(hours)}
		scorer.Score(opp, profile)
		assert.InDelta(t, 0.0, opp.EffortScore, 1e-9)
	}
}

func TestScore_FitAdjustments(t *testing.T) {
	scorer := newScorer()

	cases := []struct {
		name    string
		opp     *domain.Opportunity
		profile *domain.UserProfile
		want    float64
	}{
		{
			name:    "no signals stays neutral",
			opp:     &domain.Opportunity{},
			profile: &domain.UserProfile{},
			want:    0.5,
		},
		{
			name: "full skill overlap",
			opp:  &domain.Opportunity{SkillsRequired: []string{"Go", "SQL"}},
			profile: &domain.UserProfile{
				Skills: []string{"go", "sql", "docker"},
			},
			want: 0.7,
		},
		{
			name: "partial skill overlap",
			opp:  &domain.Opportunity{SkillsRequired: []string{"go", "rust"}},
			profile: &domain.UserProfile{
				Skills: []string{"go"},
			},
			want: 0.6,
		},
		{
			name:    "remote match",
			opp:     &domain.Opportunity{Remote: true},
			profile: &domain.UserProfile{RemoteOnly: true},
			want:    0.6,
		},
		{
			name:    "onsite against remote-only",
			opp:     &domain.Opportunity{Remote: false},
			profile: &domain.UserProfile{RemoteOnly: true},
			want:    0.3,
		},
		{
			name: "accepted category",
			opp:  &domain.Opportunity{Type: domain.TypeJob},
			profile: &domain.UserProfile{
				OpportunityTypes: []domain.OpportunityType{domain.TypeJob},
			},
			want: 0.6,
		},
		{
			name: "equity interest",
			opp:  &domain.Opportunity{EquityOffered: true},
			profile: &domain.UserProfile{
				InterestedInEquity: true,
			},
			want: 0.6,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			scorer.Score(tc.opp, tc.profile)
			assert.InDelta(t, tc.want, tc.opp.RelevanceScore, 1e-9)
		})
	}
}

func TestScore_OverallIsWeightedSum(t *testing.T) {
	scorer := newScorer()
	profile := &domain.UserProfile{MinIncome: 100000, MaxHoursWeekly: 20, RemoteOnly: true}

	opp := &domain.Opportunity{
		IncomeHigh:   intPtr(200000),
		HoursPerWeek: intPtr(10),
		Remote:       true,
	}
	scorer.Score(opp, profile)

	assert.InDelta(t, 1.0, opp.IncomeScore, 1e-9)
	assert.InDelta(t, 0.75, opp.EffortScore, 1e-9)
	assert.InDelta(t, 0.6, opp.RelevanceScore, 1e-9)

	want := 0.35*1.0 + 0.35*0.75 + 0.30*0.6
	assert.InDelta(t, want, opp.OverallScore, 1e-9)
}

func TestScoreAndRank_SortsDescending(t *testing.T) {
	scorer := newScorer()
	profile := &domain.UserProfile{MinIncome: 100000, MaxHoursWeekly: 20}

	low := &domain.Opportunity{ID: "low", IncomeHigh: intPtr(20000), HoursPerWeek: intPtr(40)}
	mid := &domain.Opportunity{ID: "mid", IncomeHigh: intPtr(100000), HoursPerWeek: intPtr(20)}
	high := &domain.Opportunity{ID: "high", IncomeHigh: intPtr(250000), HoursPerWeek: intPtr(10)}

	ranked := scorer.ScoreAndRank([]*domain.Opportunity{low, high, mid}, profile)

	require.Len(t, ranked, 3)
	assert.Equal(t, "high", ranked[0].ID)
	assert.Equal(t, "mid", ranked[1].ID)
	assert.Equal(t, "low", ranked[2].ID)
	for i := 1; i < len(ranked); i++ {
		assert.GreaterOrEqual(t, ranked[i-1].OverallScore, ranked[i].OverallScore)
	}
}

func TestEfficiencyMetric(t *testing.T) {
	eff, ok := rank.EfficiencyMetric(&domain.Opportunity{
		IncomeHigh:   intPtr(100000),
		HoursPerWeek: intPtr(20),
	})
	require.True(t, ok)
	assert.InDelta(t, 100.0, eff, 1e-9)

	_, ok = rank.EfficiencyMetric(&domain.Opportunity{IncomeHigh: intPtr(100000)})
	assert.False(t, ok)

	_, ok = rank.EfficiencyMetric(&domain.Opportunity{
		IncomeHigh:   intPtr(100000),
		HoursPerWeek: intPtr(0),
	})
	assert.False(t, ok)
}
