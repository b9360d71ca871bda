package aggregate_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/oppscout/oppscout-backend/internal/domain"
	"github.com/oppscout/oppscout-backend/internal/usecase/aggregate"
)

// fakeProvider returns canned results per query substring, or a global
// error when failAll is set.
type fakeProvider struct {
	mu      sync.Mutex
	results []domain.RawResult
	failAll bool
	queries []string
}

func (f *fakeProvider) Search(_ context.Context, query, _ string, _ int) ([]domain.RawResult, error) {
	f.mu.Lock()
	f.queries = append(f.queries, query)
	f.mu.Unlock()

	if f.failAll {
		return nil, errors.New("provider down")
	}
	return f.results, nil
}

type fakeExtractor struct {
	extraction *domain.Extraction
	err        error
}

func (f *fakeExtractor) Extract(_ context.Context, _, _, _ string) (*domain.Extraction, error) {
	return f.extraction, f.err
}

func strPtr(s string) *string { return &s }

func profileWithTypes(types ...domain.OpportunityType) *domain.UserProfile {
	p := domain.DefaultProfile()
	p.OpportunityTypes = types
	return p
}

func TestSearch_RejectsInvalidQuery(t *testing.T) {
	agg := aggregate.NewAggregator(&fakeProvider{}, nil, zap.NewNop())

	_, err := agg.Search(context.Background(),
		&domain.SearchQuery{Query: "", MaxResults: 10},
		domain.DefaultProfile())
	assert.ErrorIs(t, err, domain.ErrEmptyQuery)

	_, err = agg.Search(context.Background(),
		&domain.SearchQuery{Query: "golang", MaxResults: 0},
		domain.DefaultProfile())
	assert.ErrorIs(t, err, domain.ErrInvalidResultCap)
}

func TestSearch_DeduplicatesByURL(t *testing.T) {
	provider := &fakeProvider{results: []domain.RawResult{
		{Title: "Go Developer", URL: "https://example.com/a", Source: "brave"},
		{Title: "Go Developer (repost)", URL: "https://example.com/a", Source: "brave"},
		{Title: "Rust Developer", URL: "https://example.com/b", Source: "brave"},
	}}
	agg := aggregate.NewAggregator(provider, nil, zap.NewNop())

	result, err := agg.Search(context.Background(),
		&domain.SearchQuery{Query: "developer", MaxResults: 50},
		profileWithTypes(domain.TypeJob))
	require.NoError(t, err)

	urls := make(map[string]int)
	for _, opp := range result.Opportunities {
		urls[opp.URL]++
	}
	assert.Equal(t, 1, urls["https://example.com/a"])
	assert.Equal(t, 1, urls["https://example.com/b"])
	assert.Len(t, urls, 2)
}

func TestSearch_DiscardsResultsWithoutURL(t *testing.T) {
	provider := &fakeProvider{results: []domain.RawResult{
		{Title: "No link here", URL: ""},
		{Title: "Real one", URL: "https://example.com/x"},
	}}
	agg := aggregate.NewAggregator(provider, nil, zap.NewNop())

	result, err := agg.Search(context.Background(),
		&domain.SearchQuery{Query: "anything", MaxResults: 50},
		profileWithTypes(domain.TypeJob))
	require.NoError(t, err)

	require.Len(t, result.Opportunities, 1)
	assert.Equal(t, "https://example.com/x", result.Opportunities[0].URL)
}

func TestSearch_AllBranchesFailingIsNotAnError(t *testing.T) {
	provider := &fakeProvider{failAll: true}
	agg := aggregate.NewAggregator(provider, nil, zap.NewNop())

	result, err := agg.Search(context.Background(),
		&domain.SearchQuery{Query: "golang", MaxResults: 10},
		domain.DefaultProfile())
	require.NoError(t, err)

	assert.Empty(t, result.Opportunities)
	assert.NotEmpty(t, result.SourcesSearched)
}

func TestSearch_NilProviderYieldsEmptyResult(t *testing.T) {
	agg := aggregate.NewAggregator(nil, nil, zap.NewNop())

	result, err := agg.Search(context.Background(),
		&domain.SearchQuery{Query: "golang", MaxResults: 10},
		domain.DefaultProfile())
	require.NoError(t, err)
	assert.Empty(t, result.Opportunities)
}

func TestSearch_TruncatesToMaxResults(t *testing.T) {
	results := make([]domain.RawResult, 0, 20)
	for i := 0; i < 20; i++ {
		results = append(results, domain.RawResult{
			Title: "Listing",
			URL:   "https://example.com/" + string(rune('a'+i)),
		})
	}
	provider := &fakeProvider{results: results}
	agg := aggregate.NewAggregator(provider, nil, zap.NewNop())

	result, err := agg.Search(context.Background(),
		&domain.SearchQuery{Query: "listing", MaxResults: 5},
		profileWithTypes(domain.TypeJob))
	require.NoError(t, err)
	assert.Len(t, result.Opportunities, 5)
}

func TestSearch_RunsCategoryBranches(t *testing.T) {
	provider := &fakeProvider{}
	agg := aggregate.NewAggregator(provider, nil, zap.NewNop())

	profile := domain.DefaultProfile()
	profile.OpportunityTypes = []domain.OpportunityType{
		domain.TypeJob, domain.TypeFreelance, domain.TypeGrant, domain.TypeVCFunding,
	}

	result, err := agg.Search(context.Background(),
		&domain.SearchQuery{Query: "golang", MaxResults: 10}, profile)
	require.NoError(t, err)

	assert.ElementsMatch(t,
		[]string{"jobs", "freelance", "grants", "funding", "web"},
		result.SourcesSearched)
	assert.Len(t, provider.queries, 5)
}

func TestSearch_AlwaysRunsGenericWebBranch(t *testing.T) {
	provider := &fakeProvider{}
	agg := aggregate.NewAggregator(provider, nil, zap.NewNop())

	profile := domain.DefaultProfile()
	profile.OpportunityTypes = nil

	result, err := agg.Search(context.Background(),
		&domain.SearchQuery{Query: "golang", MaxResults: 10}, profile)
	require.NoError(t, err)
	assert.Equal(t, []string{"web"}, result.SourcesSearched)
}

func TestSearch_NormalizesResults(t *testing.T) {
	provider := &fakeProvider{results: []domain.RawResult{
		{Title: "", URL: "https://example.com/untitled", Description: "something", Source: "brave"},
	}}
	agg := aggregate.NewAggregator(provider, nil, zap.NewNop())

	result, err := agg.Search(context.Background(),
		&domain.SearchQuery{Query: "anything", MaxResults: 10},
		profileWithTypes(domain.TypeJob))
	require.NoError(t, err)

	require.NotEmpty(t, result.Opportunities)
	opp := result.Opportunities[0]
	assert.Equal(t, "Unknown", opp.Title)
	assert.Equal(t, domain.OpportunityID(opp.URL, "Unknown"), opp.ID)
	assert.Equal(t, "brave", opp.Source)
	assert.True(t, opp.Remote) // assumed from the remote-only profile
}

func TestSearch_EnrichesThroughExtractor(t *testing.T) {
	provider := &fakeProvider{results: []domain.RawResult{
		{Title: "Go Contractor", URL: "https://example.com/go", Description: "Remote Go contract work"},
	}}
	income := 150000
	hours := 15
	remote := true
	extractor := &fakeExtractor{extraction: &domain.Extraction{
		Company:         strPtr("Acme"),
		IncomeHigh:      &income,
		HoursPerWeek:    &hours,
		Remote:          &remote,
		EffortLevel:     strPtr("light"),
		OpportunityType: strPtr("contract"),
		SkillsRequired:  []string{"go", "grpc", "sql", "docker", "k8s", "terraform"},
	}}
	agg := aggregate.NewAggregator(provider, extractor, zap.NewNop())

	result, err := agg.Search(context.Background(),
		&domain.SearchQuery{Query: "go contract", MaxResults: 10},
		profileWithTypes(domain.TypeJob))
	require.NoError(t, err)

	var opp *domain.Opportunity
	for _, o := range result.Opportunities {
		if o.URL == "https://example.com/go" {
			opp = o
		}
	}
	require.NotNil(t, opp)

	assert.Equal(t, "Acme", *opp.Company)
	assert.Equal(t, 150000, *opp.IncomeHigh)
	assert.Equal(t, 15, *opp.HoursPerWeek)
	assert.Equal(t, domain.EffortLight, *opp.EffortLevel)
	assert.Equal(t, domain.TypeContract, opp.Type)
	assert.Len(t, opp.SkillsRequired, 5) // capped
}

func TestSearch_InvalidExtractedEnumsAreDropped(t *testing.T) {
	provider := &fakeProvider{results: []domain.RawResult{
		{Title: "Odd listing", URL: "https://example.com/odd", Description: "text"},
	}}
	extractor := &fakeExtractor{extraction: &domain.Extraction{
		EffortLevel:     strPtr("herculean"),
		OpportunityType: strPtr("pyramid_scheme"),
	}}
	agg := aggregate.NewAggregator(provider, extractor, zap.NewNop())

	result, err := agg.Search(context.Background(),
		&domain.SearchQuery{Query: "odd", MaxResults: 10},
		profileWithTypes(domain.TypeJob))
	require.NoError(t, err)

	var opp *domain.Opportunity
	for _, o := range result.Opportunities {
		if o.URL == "https://example.com/odd" {
			opp = o
		}
	}
	require.NotNil(t, opp)

	assert.Nil(t, opp.EffortLevel)
	assert.Equal(t, domain.TypeJob, opp.Type) // branch category kept
}

func TestSearch_ExtractionFailureKeepsBasicItem(t *testing.T) {
	provider := &fakeProvider{results: []domain.RawResult{
		{Title: "Fragile", URL: "https://example.com/fragile", Description: "text"},
	}}
	extractor := &fakeExtractor{err: errors.New("model unavailable")}
	agg := aggregate.NewAggregator(provider, extractor, zap.NewNop())

	result, err := agg.Search(context.Background(),
		&domain.SearchQuery{Query: "fragile", MaxResults: 10},
		profileWithTypes(domain.TypeJob))
	require.NoError(t, err)

	var opp *domain.Opportunity
	for _, o := range result.Opportunities {
		if o.URL == "https://example.com/fragile" {
			opp = o
		}
	}
	require.NotNil(t, opp)
	assert.Equal(t, "Fragile", opp.Title)
	assert.Nil(t, opp.Company)
}

func TestSearch_JobQueryMentionsRemoteForRemoteProfile(t *testing.T) {
	provider := &fakeProvider{}
	agg := aggregate.NewAggregator(provider, nil, zap.NewNop())

	profile := profileWithTypes(domain.TypeJob)
	profile.RemoteOnly = true

	_, err := agg.Search(context.Background(),
		&domain.SearchQuery{Query: "golang", MaxResults: 10}, profile)
	require.NoError(t, err)

	found := false
	for _, q := range provider.queries {
		if strings.Contains(q, "remote") {
			found = true
		}
	}
	assert.True(t, found, "expected at least one branch query to request remote work")
}
