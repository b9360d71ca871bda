// Package finder orchestrates the discovery workflow as an explicit
// finite-state machine:
//
//	UNDERSTAND ──► SEARCH ──► RANK ──┬──► RESEARCH ──► RECOMMEND ──► DONE
//	                                 └────────────────────►│
//
// The RESEARCH stage only runs when the ranked list is strong enough to
// justify the extra cost.
package finder

import "github.com/oppscout/oppscout-backend/internal/domain"

// State is one stage of the discovery workflow.
type State string

const (
	StateUnderstand State = "UNDERSTAND"
	StateSearch     State = "SEARCH"
	StateRank       State = "RANK"
	StateResearch   State = "RESEARCH"
	StateRecommend  State = "RECOMMEND"
	StateDone       State = "DONE"
)

// ResearchPolicy holds the tunable thresholds for the deep-research
// branch. These are policy values, not invariants.
type ResearchPolicy struct {
	MinCandidates int     // ranked list must have at least this many entries
	MinTopScore   float64 // top entry's overall score must exceed this
	MaxCandidates int     // research at most this many from the top
}

// DefaultResearchPolicy mirrors the stock configuration.
func DefaultResearchPolicy() ResearchPolicy {
	return ResearchPolicy{MinCandidates: 3, MinTopScore: 0.6, MaxCandidates: 5}
}

// ShouldResearch reports whether the ranked list justifies deep research:
// at least MinCandidates entries and a top score above MinTopScore.
func ShouldResearch(ranked []*domain.Opportunity, policy ResearchPolicy) bool {
	if len(ranked) < policy.MinCandidates {
		return false
	}
	return ranked[0].OverallScore > policy.MinTopScore
}

// Next is the pure transition function. The only branch point is after
// RANK, decided by ShouldResearch over the ranked list. DONE is terminal.
func Next(state State, ranked []*domain.Opportunity, policy ResearchPolicy) State {
	switch state {
	case StateUnderstand:
		return StateSearch
	case StateSearch:
		return StateRank
	case StateRank:
		if ShouldResearch(ranked, policy) {
			return StateResearch
		}
		return StateRecommend
	case StateResearch:
		return StateRecommend
	case StateRecommend:
		return StateDone
	}
	return StateDone
}
