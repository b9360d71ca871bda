package finder_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oppscout/oppscout-backend/internal/domain"
	"github.com/oppscout/oppscout-backend/internal/usecase/finder"
)

func rankedWithScores(scores ...float64) []*domain.Opportunity {
	opps := make([]*domain.Opportunity, len(scores))
	for i, s := range scores {
		opps[i] = &domain.Opportunity{OverallScore: s}
	}
	return opps
}

func TestShouldResearch(t *testing.T) {
	policy := finder.DefaultResearchPolicy()

	cases := []struct {
		name   string
		ranked []*domain.Opportunity
		want   bool
	}{
		{"enough strong candidates", rankedWithScores(0.75, 0.7, 0.65), true},
		{"too few even when strong", rankedWithScores(0.9, 0.85), false},
		{"enough but top too weak", rankedWithScores(0.5, 0.45, 0.4, 0.3, 0.2), false},
		{"top exactly at threshold", rankedWithScores(0.6, 0.6, 0.6), false},
		{"empty list", nil, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, finder.ShouldResearch(tc.ranked, policy))
		})
	}
}

func TestShouldResearch_CustomPolicy(t *testing.T) {
	policy := finder.ResearchPolicy{MinCandidates: 1, MinTopScore: 0.3, MaxCandidates: 10}
	assert.True(t, finder.ShouldResearch(rankedWithScores(0.4), policy))
	assert.False(t, finder.ShouldResearch(nil, policy))
}

func TestNext_LinearPath(t *testing.T) {
	policy := finder.DefaultResearchPolicy()
	weak := rankedWithScores(0.4, 0.3)

	cases := []struct {
		from finder.State
		want finder.State
	}{
		{finder.StateUnderstand, finder.StateSearch},
		{finder.StateSearch, finder.StateRank},
		{finder.StateRank, finder.StateRecommend},
		{finder.StateResearch, finder.StateRecommend},
		{finder.StateRecommend, finder.StateDone},
		{finder.StateDone, finder.StateDone},
	}

	for _, tc := range cases {
		t.Run(string(tc.from), func(t *testing.T) {
			assert.Equal(t, tc.want, finder.Next(tc.from, weak, policy))
		})
	}
}

func TestNext_ResearchBranch(t *testing.T) {
	policy := finder.DefaultResearchPolicy()
	strong := rankedWithScores(0.8, 0.75, 0.7)

	assert.Equal(t, finder.StateResearch, finder.Next(finder.StateRank, strong, policy))
	assert.Equal(t, finder.StateRecommend, finder.Next(finder.StateResearch, strong, policy))
}

func TestNext_AlwaysTerminates(t *testing.T) {
	policy := finder.DefaultResearchPolicy()
	strong := rankedWithScores(0.9, 0.9, 0.9)

	state := finder.StateUnderstand
	for i := 0; i < 10; i++ {
		if state == finder.StateDone {
			return
		}
		state = finder.Next(state, strong, policy)
	}
	t.Fatalf("workflow did not reach DONE within 10 transitions, stuck at %s", state)
}
