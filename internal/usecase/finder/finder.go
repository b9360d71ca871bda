package finder

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/oppscout/oppscout-backend/internal/domain"
	"github.com/oppscout/oppscout-backend/internal/usecase/aggregate"
	"github.com/oppscout/oppscout-backend/internal/usecase/memory"
	"github.com/oppscout/oppscout-backend/internal/usecase/rank"
)

// Completer is the language-model completion capability.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
	CompleteFast(ctx context.Context, prompt string) (string, error)
}

// Researcher is the deep-research capability.
type Researcher interface {
	Research(ctx context.Context, title, company, url string) (string, error)
}

const (
	searchLimit      = 30 // results requested from the aggregator per run
	quickSearchLimit = 20
	recommendLimit   = 10 // recommendations returned
	summaryTop       = 5  // items fed into the executive summary
)

// Scores carries the four score components of a recommendation.
type Scores struct {
	Overall float64 `json:"overall"`
	Income  float64 `json:"income"`
	Effort  float64 `json:"effort"`
	Fit     float64 `json:"fit"`
}

// Recommendation is one ranked result with its scores, the $/hour
// efficiency metric when known, and any deep-research report.
type Recommendation struct {
	Opportunity *domain.Opportunity `json:"opportunity"`
	Scores      Scores              `json:"scores"`
	Efficiency  *float64            `json:"efficiency,omitempty"`
	Research    string              `json:"research,omitempty"`
}

// FindResponse is the terminal output of one workflow run.
type FindResponse struct {
	Recommendations []Recommendation `json:"recommendations"`
	Summary         string           `json:"summary"`
	TotalFound      int              `json:"total_found"`
	SourcesSearched []string         `json:"sources_searched"`
	Timestamp       time.Time        `json:"timestamp"`
}

// run is the mutable context threaded through the workflow states.
type run struct {
	id          string
	query       string
	profile     *domain.UserProfile
	includeSeen bool
	messages    []string

	opportunities []*domain.Opportunity
	ranked        []*domain.Opportunity
	sources       []string
	research      map[string]string
}

// Finder drives the discovery workflow over the aggregator, scorer, and
// memory, with optional LLM and research capabilities. Both llm and
// researcher may be nil; the corresponding stages degrade gracefully.
type Finder struct {
	aggregator *aggregate.Aggregator
	scorer     *rank.Scorer
	memory     *memory.Memory
	llm        Completer
	researcher Researcher
	policy     ResearchPolicy
	log        *zap.Logger
}

func NewFinder(
	aggregator *aggregate.Aggregator,
	scorer *rank.Scorer,
	mem *memory.Memory,
	llm Completer,
	researcher Researcher,
	policy ResearchPolicy,
	log *zap.Logger,
) *Finder {
	return &Finder{
		aggregator: aggregator,
		scorer:     scorer,
		memory:     mem,
		llm:        llm,
		researcher: researcher,
		policy:     policy,
		log:        log,
	}
}

// Find runs the full workflow for a query and returns ranked
// recommendations with a natural-language summary. includeSeen keeps
// previously seen opportunities in the results. A request with every
// provider unavailable returns an empty recommendation list, not an
// error.
func (f *Finder) Find(ctx context.Context, query string, profile *domain.UserProfile, includeSeen bool) (*FindResponse, error) {
	r := &run{
		id:          uuid.NewString(),
		query:       query,
		profile:     profile,
		includeSeen: includeSeen,
		research:    make(map[string]string),
	}
	log := f.log.With(zap.String("run_id", r.id))

	var resp *FindResponse
	for state := StateUnderstand; state != StateDone; state = Next(state, r.ranked, f.policy) {
		log.Debug("workflow stage", zap.String("state", string(state)))

		switch state {
		case StateUnderstand:
			f.understand(ctx, r)
		case StateSearch:
			if err := f.search(ctx, r); err != nil {
				return nil, err
			}
		case StateRank:
			r.ranked = f.scorer.ScoreAndRank(r.opportunities, r.profile)
		case StateResearch:
			f.deepResearch(ctx, r, log)
		case StateRecommend:
			resp = f.recommend(ctx, r)
		}
	}

	log.Info("workflow complete",
		zap.Int("total_found", resp.TotalFound),
		zap.Int("recommendations", len(resp.Recommendations)),
		zap.Bool("researched", len(r.research) > 0),
		zap.Strings("transcript", r.messages))
	return resp, nil
}

// QuickSearch skips the LLM understanding/summary/research stages for
// low-latency callers: just search and rank.
func (f *Finder) QuickSearch(ctx context.Context, query string, profile *domain.UserProfile) ([]*domain.Opportunity, error) {
	sq := &domain.SearchQuery{Query: query, MaxResults: quickSearchLimit}
	result, err := f.aggregator.Search(ctx, sq, profile)
	if err != nil {
		return nil, err
	}
	return f.scorer.ScoreAndRank(result.Opportunities, profile), nil
}

// Research runs a deep dive on a single opportunity.
func (f *Finder) Research(ctx context.Context, opp *domain.Opportunity) (string, error) {
	if f.researcher == nil {
		return "", domain.ErrNotConfigured
	}
	company := "Unknown"
	if opp.Company != nil {
		company = *opp.Company
	}
	return f.researcher.Research(ctx, opp.Title, company, opp.URL)
}

// understand asks the LLM to extract search intent. The result is
// advisory context only; search proceeds regardless of its outcome.
func (f *Finder) understand(ctx context.Context, r *run) {
	if f.llm == nil {
		return
	}

	prompt := fmt.Sprintf(`You are an opportunity hunting assistant.
Analyze the user's query and extract:
1. What type of opportunity they want (job, freelance, grant, funding, etc.)
2. Key skills or domains mentioned
3. Any specific requirements or preferences

User query: %s

User profile:
- Skills: %s
- Industries: %s
- Target income: $%d
- Max hours: %d/week
- Remote only: %t

What should we search for?`,
		r.query,
		strings.Join(r.profile.Skills, ", "),
		strings.Join(r.profile.Industries, ", "),
		r.profile.MinIncome,
		r.profile.MaxHoursWeekly,
		r.profile.RemoteOnly,
	)

	intent, err := f.llm.Complete(ctx, prompt)
	if err != nil {
		f.log.Warn("intent extraction failed, searching anyway", zap.Error(err))
		return
	}
	r.messages = append(r.messages, intent)
}

// search invokes the aggregator, filters previously seen items, and
// persists everything discovered into memory.
func (f *Finder) search(ctx context.Context, r *run) error {
	sq := &domain.SearchQuery{
		Query:            r.query,
		OpportunityTypes: r.profile.OpportunityTypes,
		MaxResults:       searchLimit,
		IncludeSeen:      r.includeSeen,
	}
	result, err := f.aggregator.Search(ctx, sq, r.profile)
	if err != nil {
		return err
	}

	opportunities := result.Opportunities
	if !sq.IncludeSeen {
		seen, err := f.memory.SeenIDs(ctx)
		if err != nil {
			f.log.Warn("loading seen ids failed, keeping all results", zap.Error(err))
		} else if len(seen) > 0 {
			fresh := opportunities[:0]
			for _, opp := range opportunities {
				if !seen[opp.ID] {
					fresh = append(fresh, opp)
				}
			}
			opportunities = fresh
		}
	}

	f.memory.StoreOpportunities(ctx, opportunities)

	r.opportunities = opportunities
	r.sources = result.SourcesSearched
	r.messages = append(r.messages, fmt.Sprintf(
		"Found %d opportunities from %s",
		len(opportunities), strings.Join(result.SourcesSearched, ", ")))
	return nil
}

// deepResearch runs concurrent research calls for the top candidates
// that have a known company. A failed call leaves that id absent from
// the results map and never blocks the others.
func (f *Finder) deepResearch(ctx context.Context, r *run, log *zap.Logger) {
	if f.researcher == nil {
		return
	}

	top := r.ranked
	if len(top) > f.policy.MaxCandidates {
		top = top[:f.policy.MaxCandidates]
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, opp := range top {
		if opp.Company == nil || *opp.Company == "" {
			continue
		}
		wg.Add(1)
		go func(o *domain.Opportunity) {
			defer wg.Done()
			report, err := f.researcher.Research(ctx, o.Title, *o.Company, o.URL)
			if err != nil {
				log.Warn("deep research failed",
					zap.String("id", o.ID), zap.Error(err))
				return
			}
			mu.Lock()
			r.research[o.ID] = report
			mu.Unlock()
		}(opp)
	}
	wg.Wait()
}

// recommend assembles the final list and asks the fast model for a
// one-paragraph executive summary of the top entries.
func (f *Finder) recommend(ctx context.Context, r *run) *FindResponse {
	top := r.ranked
	if len(top) > recommendLimit {
		top = top[:recommendLimit]
	}

	recommendations := make([]Recommendation, 0, len(top))
	for _, opp := range top {
		rec := Recommendation{
			Opportunity: opp,
			Scores: Scores{
				Overall: opp.OverallScore,
				Income:  opp.IncomeScore,
				Effort:  opp.EffortScore,
				Fit:     opp.RelevanceScore,
			},
			Research: r.research[opp.ID],
		}
		if eff, ok := rank.EfficiencyMetric(opp); ok {
			rec.Efficiency = &eff
		}
		recommendations = append(recommendations, rec)
	}

	return &FindResponse{
		Recommendations: recommendations,
		Summary:         f.summarize(ctx, r, recommendations),
		TotalFound:      len(r.opportunities),
		SourcesSearched: r.sources,
		Timestamp:       time.Now().UTC(),
	}
}

func (f *Finder) summarize(ctx context.Context, r *run, recommendations []Recommendation) string {
	fallback := fmt.Sprintf("Found %d opportunities; top %d ranked by income, effort, and fit.",
		len(r.opportunities), len(recommendations))
	if f.llm == nil || len(recommendations) == 0 {
		return fallback
	}

	var sb strings.Builder
	limit := summaryTop
	if len(recommendations) < limit {
		limit = len(recommendations)
	}
	for i := 0; i < limit; i++ {
		opp := recommendations[i].Opportunity
		company := ""
		if opp.Company != nil {
			company = " at " + *opp.Company
		}
		income := "?"
		if opp.IncomeHigh != nil {
			income = fmt.Sprintf("$%d", *opp.IncomeHigh)
		}
		hours := "?"
		if opp.HoursPerWeek != nil {
			hours = fmt.Sprintf("%d", *opp.HoursPerWeek)
		}
		fmt.Fprintf(&sb, "- %s%s (score %.2f, income %s, %s hrs/week)\n",
			opp.Title, company, opp.OverallScore, income, hours)
	}

	prompt := fmt.Sprintf(`Based on these top opportunities, create a brief executive summary.

User wants: $%d+ with max %d hrs/week

Top opportunities:
%s
Provide:
1. One sentence summary
2. Top recommendation and why
3. Any quick wins (easy to apply, high chance of success)`,
		r.profile.MinIncome, r.profile.MaxHoursWeekly, sb.String())

	summary, err := f.llm.CompleteFast(ctx, prompt)
	if err != nil {
		f.log.Warn("summary generation failed", zap.Error(err))
		return fallback
	}
	return summary
}
