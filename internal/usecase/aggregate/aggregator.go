// Package aggregate fans out category sub-searches to the web search
// provider, deduplicates and normalizes the raw hits into opportunities,
// and optionally enriches them through the LLM extraction port.
package aggregate

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/oppscout/oppscout-backend/internal/domain"
)

// SearchProvider is the external web-search capability. A provider with
// no credential returns (nil, nil).
type SearchProvider interface {
	Search(ctx context.Context, query, freshness string, count int) ([]domain.RawResult, error)
}

// Extractor is the LLM structured-extraction capability.
type Extractor interface {
	Extract(ctx context.Context, title, description, url string) (*domain.Extraction, error)
}

// maxExtractConcurrency bounds parallel extraction calls per search.
const maxExtractConcurrency = 5

// maxExtractedSkills caps the skills the extractor may attach.
const maxExtractedSkills = 5

// Aggregator turns a SearchQuery + UserProfile into a deduplicated,
// normalized, optionally enriched SearchResult. Both ports may be nil;
// a nil provider yields empty results and a nil extractor skips
// enrichment.
type Aggregator struct {
	provider  SearchProvider
	extractor Extractor
	log       *zap.Logger
}

func NewAggregator(provider SearchProvider, extractor Extractor, log *zap.Logger) *Aggregator {
	return &Aggregator{provider: provider, extractor: extractor, log: log}
}

// subSearch is one category-specific search branch.
type subSearch struct {
	source    string
	category  domain.OpportunityType
	query     string
	freshness string
}

// branchOutcome is the explicit success-or-failure result of one branch.
type branchOutcome struct {
	results []domain.RawResult
	err     error
}

// Search executes all applicable sub-searches concurrently, merges their
// results by stable branch order, and returns the normalized list capped
// at query.MaxResults. No branch failure is fatal; the call can
// legitimately return an empty list.
func (a *Aggregator) Search(ctx context.Context, query *domain.SearchQuery, profile *domain.UserProfile) (*domain.SearchResult, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	branches := a.planSearches(query, profile)

	outcomes := make([]branchOutcome, len(branches))
	var wg sync.WaitGroup
	for i, branch := range branches {
		wg.Add(1)
		go func(slot int, b subSearch) {
			defer wg.Done()
			if a.provider == nil {
				return
			}
			results, err := a.provider.Search(ctx, b.query, b.freshness, 0)
			outcomes[slot] = branchOutcome{results: results, err: err}
		}(i, branch)
	}
	wg.Wait()

	sources := make([]string, 0, len(branches))
	var raw []domain.RawResult
	for i, branch := range branches {
		sources = append(sources, branch.source)
		if outcomes[i].err != nil {
			a.log.Warn("sub-search failed",
				zap.String("source", branch.source),
				zap.Error(outcomes[i].err))
			continue
		}
		for _, r := range outcomes[i].results {
			r.Category = branch.category
			raw = append(raw, r)
		}
	}

	// Dedup by exact URL before any enrichment; results without a URL
	// are discarded outright.
	seen := make(map[string]bool, len(raw))
	unique := raw[:0]
	for _, r := range raw {
		if r.URL == "" || seen[r.URL] {
			continue
		}
		seen[r.URL] = true
		unique = append(unique, r)
	}

	opportunities := a.normalize(ctx, unique, profile)

	if len(opportunities) > query.MaxResults {
		opportunities = opportunities[:query.MaxResults]
	}

	return &domain.SearchResult{
		Opportunities:   opportunities,
		Query:           *query,
		SourcesSearched: sources,
		Timestamp:       time.Now().UTC(),
	}, nil
}

// planSearches decides which category sub-searches to run from the union
// of query-requested and profile-preferred categories, always appending
// one generic web search as a catch-all.
func (a *Aggregator) planSearches(query *domain.SearchQuery, profile *domain.UserProfile) []subSearch {
	wanted := make(map[domain.OpportunityType]bool)
	for _, t := range query.OpportunityTypes {
		wanted[t] = true
	}
	for _, t := range profile.OpportunityTypes {
		wanted[t] = true
	}

	skills := topN(profile.Skills, 5)
	industry := "technology"
	if len(profile.Industries) > 0 {
		industry = profile.Industries[0]
	}
	remote := ""
	if profile.RemoteOnly {
		remote = "remote"
	}

	var branches []subSearch

	if wanted[domain.TypeJob] || wanted[domain.TypeContract] {
		branches = append(branches, subSearch{
			source:    "jobs",
			category:  domain.TypeJob,
			query:     strings.TrimSpace(query.Query + " " + strings.Join(skills, " OR ") + " job hiring " + remote),
			freshness: "pw",
		})
	}
	if wanted[domain.TypeFreelance] {
		branches = append(branches, subSearch{
			source:    "freelance",
			category:  domain.TypeFreelance,
			query:     strings.TrimSpace(strings.Join(skills, " OR ") + " freelance contract remote site:upwork.com OR site:toptal.com OR site:flexjobs.com"),
			freshness: "pw",
		})
	}
	if wanted[domain.TypeGrant] {
		branches = append(branches, subSearch{
			source:    "grants",
			category:  domain.TypeGrant,
			query:     strings.TrimSpace(query.Query + " " + industry + " grant funding opportunity " + strings.Join(topN(profile.Skills, 3), " ")),
			freshness: "pm",
		})
	}
	if wanted[domain.TypeVCFunding] || wanted[domain.TypeAngel] {
		branches = append(branches, subSearch{
			source:    "funding",
			category:  domain.TypeVCFunding,
			query:     industry + " seed funding startup investment opportunity open",
			freshness: "pm",
		})
	}

	// Always run a generic web search as a catch-all.
	branches = append(branches, subSearch{
		source:    "web",
		category:  domain.TypeJob,
		query:     strings.TrimSpace(query.Query + " opportunity " + remote + " hiring apply"),
		freshness: "pw",
	})

	return branches
}

// normalize maps surviving raw results onto canonical Opportunity values
// and enriches them through the extractor when one is configured.
// Extraction failures degrade individual items to their basic mapping.
func (a *Aggregator) normalize(ctx context.Context, raw []domain.RawResult, profile *domain.UserProfile) []*domain.Opportunity {
	opportunities := make([]*domain.Opportunity, 0, len(raw))
	for _, r := range raw {
		title := r.Title
		if title == "" {
			title = "Unknown"
		}
		opportunities = append(opportunities, &domain.Opportunity{
			ID:          domain.OpportunityID(r.URL, title),
			Title:       title,
			Description: r.Description,
			Type:        r.Category,
			URL:         r.URL,
			Remote:      profile.RemoteOnly, // assumed from search context
			Source:      r.Source,
		})
	}

	if a.extractor == nil {
		return opportunities
	}

	sem := make(chan struct{}, maxExtractConcurrency)
	var wg sync.WaitGroup
	for _, opp := range opportunities {
		if opp.Description == "" {
			continue
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(o *domain.Opportunity) {
			defer wg.Done()
			defer func() { <-sem }()
			a.enrich(ctx, o)
		}(opp)
	}
	wg.Wait()

	return opportunities
}

// enrich applies extracted fields onto the opportunity. Enum values are
// validated against the closed sets; invalid values are dropped, not
// fatal. Category and URL are immutable after creation except for the
// extractor's refined category, which is still constrained to the enum.
func (a *Aggregator) enrich(ctx context.Context, opp *domain.Opportunity) {
	ext, err := a.extractor.Extract(ctx, opp.Title, opp.Description, opp.URL)
	if err != nil {
		a.log.Warn("extraction failed, keeping basic item",
			zap.String("id", opp.ID),
			zap.Error(err))
		return
	}

	if ext.Company != nil && *ext.Company != "" {
		opp.Company = ext.Company
	}
	if ext.IncomeLow != nil {
		opp.IncomeLow = ext.IncomeLow
	}
	if ext.IncomeHigh != nil {
		opp.IncomeHigh = ext.IncomeHigh
	}
	if ext.EffortLevel != nil {
		if level, err := domain.ParseEffortLevel(*ext.EffortLevel); err == nil {
			opp.EffortLevel = &level
		}
	}
	if ext.HoursPerWeek != nil {
		opp.HoursPerWeek = ext.HoursPerWeek
	}
	if ext.Remote != nil {
		opp.Remote = *ext.Remote
	}
	if len(ext.SkillsRequired) > 0 {
		opp.SkillsRequired = topN(ext.SkillsRequired, maxExtractedSkills)
	}
	if ext.OpportunityType != nil {
		if t, err := domain.ParseOpportunityType(*ext.OpportunityType); err == nil {
			opp.Type = t
		}
	}
}

func topN(values []string, n int) []string {
	if len(values) <= n {
		return values
	}
	return values[:n]
}
