// Package rank computes the multi-factor ranking score for discovered
// opportunities: income potential, time investment, and profile fit.
package rank

import (
	"sort"
	"strings"

	"github.com/oppscout/oppscout-backend/internal/config"
	"github.com/oppscout/oppscout-backend/internal/domain"
)

// hoursUnknown is assumed when neither explicit hours nor an effort
// level is present. Unknown effort is penalized, not rewarded.
const hoursUnknown = 40

// weeksPerYear is used for the $/hour efficiency metric.
const weeksPerYear = 50

// Scorer scores opportunities against a user profile. Deterministic for
// a given (opportunity, profile) pair; the weights are policy constants
// set once from config, not learned.
type Scorer struct {
	weightIncome float64
	weightEffort float64
	weightFit    float64
}

func NewScorer(cfg config.ScoringConfig) *Scorer {
	return &Scorer{
		weightIncome: cfg.WeightIncome,
		weightEffort: cfg.WeightEffort,
		weightFit:    cfg.WeightFit,
	}
}

// Score writes all four score fields on the opportunity in place and
// returns it.
func (s *Scorer) Score(opp *domain.Opportunity, profile *domain.UserProfile) *domain.Opportunity {
	opp.IncomeScore = scoreIncome(opp, profile)
	opp.EffortScore = scoreEffort(opp, profile)
	opp.RelevanceScore = scoreFit(opp, profile)
	opp.OverallScore = s.weightIncome*opp.IncomeScore +
		s.weightEffort*opp.EffortScore +
		s.weightFit*opp.RelevanceScore
	return opp
}

// ScoreAndRank scores every opportunity and stable-sorts descending by
// overall score.
func (s *Scorer) ScoreAndRank(opps []*domain.Opportunity, profile *domain.UserProfile) []*domain.Opportunity {
	for _, opp := range opps {
		s.Score(opp, profile)
	}
	sort.SliceStable(opps, func(i, j int) bool {
		return opps[i].OverallScore > opps[j].OverallScore
	})
	return opps
}

// EfficiencyMetric returns dollars per hour worked when both income and
// hours are known. Display-only; not used in ranking.
func EfficiencyMetric(opp *domain.Opportunity) (float64, bool) {
	if opp.IncomeHigh == nil || opp.HoursPerWeek == nil || *opp.HoursPerWeek == 0 {
		return 0, false
	}
	annualHours := float64(*opp.HoursPerWeek) * weeksPerYear
	return float64(*opp.IncomeHigh) / annualHours, true
}

// scoreIncome rewards exceeding the income target, penalizes sub-linearly
// below it, and stays neutral when income is unknown.
//
// ratio >= 2.0        -> 1.0
// 1.0 <= ratio < 2.0  -> 0.5 + 0.5*(ratio-1)
// ratio < 1.0         -> 0.5*ratio
func scoreIncome(opp *domain.Opportunity, profile *domain.UserProfile) float64 {
	if opp.IncomeHigh == nil && opp.IncomeLow == nil {
		return 0.5
	}

	income := 0
	if opp.IncomeHigh != nil {
		income = *opp.IncomeHigh
	} else {
		income = *opp.IncomeLow
	}

	ratio := 1.0
	if profile.MinIncome > 0 {
		ratio = float64(income) / float64(profile.MinIncome)
	}

	switch {
	case ratio >= 2.0:
		return 1.0
	case ratio >= 1.0:
		return 0.5 + (ratio-1.0)*0.5
	default:
		// Extracted income can be garbage (negative), keep the score
		// in range.
		return clamp01(ratio * 0.5)
	}
}

// scoreEffort scores inversely to weekly hours. Continuous at
// hours == max (0.5 from both sides), reaching 0 at hours == 2*max.
func scoreEffort(opp *domain.Opportunity, profile *domain.UserProfile) float64 {
	hours := hoursUnknown
	if opp.HoursPerWeek != nil && *opp.HoursPerWeek > 0 {
		hours = *opp.HoursPerWeek
	} else if opp.EffortLevel != nil {
		hours = opp.EffortLevel.Hours()
	}

	max := profile.MaxHoursWeekly
	if max <= 0 {
		// Without a positive cap any real workload counts as 2x over.
		return 0
	}

	if hours <= max {
		return 0.5 + 0.5*(1.0-float64(hours)/float64(max))
	}

	overage := float64(hours) / float64(max)
	score := 0.5 * (2.0 - overage)
	if score < 0 {
		return 0
	}
	return score
}

// scoreFit starts neutral and adjusts for skill overlap, remote
// preference, accepted category, and equity interest.
func scoreFit(opp *domain.Opportunity, profile *domain.UserProfile) float64 {
	score := 0.5

	if len(opp.SkillsRequired) > 0 && len(profile.Skills) > 0 {
		required := lowerSet(opp.SkillsRequired)
		mine := lowerSet(profile.Skills)
		overlap := 0
		for skill := range required {
			if mine[skill] {
				overlap++
			}
		}
		score += 0.2 * float64(overlap) / float64(len(required))
	}

	if profile.RemoteOnly {
		if opp.Remote {
			score += 0.1
		} else {
			score -= 0.2
		}
	}

	if profile.AcceptsType(opp.Type) {
		score += 0.1
	}

	if opp.EquityOffered && profile.InterestedInEquity {
		score += 0.1
	}

	return clamp01(score)
}

func lowerSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[strings.ToLower(v)] = true
	}
	return set
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
