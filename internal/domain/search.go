package domain

import "time"

const (
	MinSearchResults = 1
	MaxSearchResults = 100
)

// SearchQuery describes what to look for.
type SearchQuery struct {
	Query            string            `json:"query"`
	OpportunityTypes []OpportunityType `json:"opportunity_types,omitempty"`
	MaxResults       int               `json:"max_results"`
	IncludeSeen      bool              `json:"include_seen"`
}

// Validate rejects out-of-bounds queries before the pipeline runs.
func (q *SearchQuery) Validate() error {
	if q.Query == "" {
		return ErrEmptyQuery
	}
	if q.MaxResults < MinSearchResults || q.MaxResults > MaxSearchResults {
		return ErrInvalidResultCap
	}
	for _, t := range q.OpportunityTypes {
		if _, err := ParseOpportunityType(string(t)); err != nil {
			return err
		}
	}
	return nil
}

// SearchResult is the outcome of one aggregated search.
type SearchResult struct {
	Opportunities   []*Opportunity `json:"opportunities"`
	Query           SearchQuery    `json:"query"`
	SourcesSearched []string       `json:"sources_searched"`
	Timestamp       time.Time      `json:"timestamp"`
}

// RawResult is a provider-shaped search hit, normalized to the canonical
// Opportunity at the aggregator boundary and never passed further.
type RawResult struct {
	Title       string
	URL         string
	Description string
	Source      string
	Category    OpportunityType // tagged by the sub-search that produced it
}
