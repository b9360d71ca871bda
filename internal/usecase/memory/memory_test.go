package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/oppscout/oppscout-backend/internal/domain"
	"github.com/oppscout/oppscout-backend/internal/repository"
	"github.com/oppscout/oppscout-backend/internal/repository/inmem"
	"github.com/oppscout/oppscout-backend/internal/usecase/memory"
)

// wordEmbedder maps known words to fixed unit vectors so distances in
// tests are predictable.
type wordEmbedder struct {
	vectors map[string][]float32
}

func (e *wordEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if v, ok := e.vectors[text]; ok {
		return v, nil
	}
	return []float32{0, 0, 0}, nil
}

func newMemory(t *testing.T, embedder memory.Embedder) (*memory.Memory, *inmem.Store) {
	t.Helper()
	store := inmem.NewStore()
	return memory.NewMemory(store, embedder, nil, 3, zap.NewNop()), store
}

func opp(id, url, title string) *domain.Opportunity {
	return &domain.Opportunity{ID: id, URL: url, Title: title}
}

func TestStoreOpportunity_RequiresURL(t *testing.T) {
	mem, _ := newMemory(t, nil)

	_, err := mem.StoreOpportunity(context.Background(), opp("x", "", "No link"))
	assert.ErrorIs(t, err, domain.ErrMissingURL)
}

func TestStoreOpportunity_IsIdempotent(t *testing.T) {
	mem, _ := newMemory(t, nil)
	ctx := context.Background()

	o := opp("", "https://example.com/a", "Go Developer")
	id1, err := mem.StoreOpportunity(ctx, o)
	require.NoError(t, err)
	id2, err := mem.StoreOpportunity(ctx, o)
	require.NoError(t, err)

	assert.Equal(t, id1, id2)
	assert.Equal(t, domain.OpportunityID(o.URL, o.Title), id1)

	stats, err := mem.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.OpportunitiesStored)
}

func TestStoreOpportunities_SkipsBrokenItems(t *testing.T) {
	mem, _ := newMemory(t, nil)

	ids := mem.StoreOpportunities(context.Background(), []*domain.Opportunity{
		opp("", "https://example.com/a", "Good"),
		opp("", "", "No URL"),
		opp("", "https://example.com/b", "Also good"),
	})
	assert.Len(t, ids, 2)
}

func TestFindSimilar_OrdersByDistanceAndFilters(t *testing.T) {
	embedder := &wordEmbedder{vectors: map[string][]float32{
		"go backend work": {1, 0, 0},
	}}
	mem, store := newMemory(t, embedder)
	ctx := context.Background()

	// Seed the store directly with vectors at known distances from the
	// query vector (1,0,0).
	for _, item := range []repository.Item{
		{ID: "near", Vector: []float32{1, 0, 0}, Document: "go job"},
		{ID: "mid", Vector: []float32{0, 1, 0}, Document: "design job"},
		{ID: "far", Vector: []float32{-3, 0, 0}, Document: "unrelated"},
	} {
		require.NoError(t, store.Upsert(ctx, repository.CollectionOpportunities, item))
	}

	results, err := mem.FindSimilar(ctx, "go backend work", 10, 0)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "near", results[0].ID)
	assert.InDelta(t, 1.0, results[0].Similarity, 1e-9) // distance 0
	assert.Equal(t, "mid", results[1].ID)
	assert.Equal(t, "far", results[2].ID)
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Similarity, results[i].Similarity)
	}

	// A threshold drops the distant hits but keeps order.
	filtered, err := mem.FindSimilar(ctx, "go backend work", 10, 0.4)
	require.NoError(t, err)
	require.Len(t, filtered, 2)
	assert.Equal(t, "near", filtered[0].ID)
	assert.Equal(t, "mid", filtered[1].ID)
}

func TestMarkSeen_FeedsSeenIDs(t *testing.T) {
	mem, _ := newMemory(t, nil)
	ctx := context.Background()

	require.NoError(t, mem.MarkSeen(ctx, "opp-1"))
	require.NoError(t, mem.MarkSeen(ctx, "opp-2"))
	require.NoError(t, mem.MarkSeen(ctx, "opp-1")) // repeat overwrites

	seen, err := mem.SeenIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"opp-1": true, "opp-2": true}, seen)

	stats, err := mem.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.InteractionsRecorded)
}

func TestMarkApplied_DoesNotCountAsSeen(t *testing.T) {
	mem, _ := newMemory(t, nil)
	ctx := context.Background()

	require.NoError(t, mem.MarkApplied(ctx, "opp-1"))

	seen, err := mem.SeenIDs(ctx)
	require.NoError(t, err)
	assert.Empty(t, seen)
}

func TestMarkFeedback_OneSignalPerSignPerOpportunity(t *testing.T) {
	mem, _ := newMemory(t, nil)
	ctx := context.Background()

	require.NoError(t, mem.MarkFeedback(ctx, "opp-1", true, "great pay"))
	require.NoError(t, mem.MarkFeedback(ctx, "opp-1", true, "still great pay"))
	require.NoError(t, mem.MarkFeedback(ctx, "opp-1", false, "too many hours"))

	stats, err := mem.GetStats(ctx)
	require.NoError(t, err)
	// One positive and one negative preference signal survive.
	assert.Equal(t, 2, stats.PreferencesLearned)
	// liked and passed are distinct interactions.
	assert.Equal(t, 2, stats.InteractionsRecorded)
}

func TestMarkFeedback_NoReasonMeansNoPreferenceSignal(t *testing.T) {
	mem, _ := newMemory(t, nil)
	ctx := context.Background()

	require.NoError(t, mem.MarkFeedback(ctx, "opp-1", true, ""))

	stats, err := mem.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.PreferencesLearned)
	assert.Equal(t, 1, stats.InteractionsRecorded)
}

func TestLearnPreferences_ReplacesProfile(t *testing.T) {
	mem, _ := newMemory(t, nil)
	ctx := context.Background()

	first := domain.DefaultProfile()
	require.NoError(t, mem.LearnPreferences(ctx, first))

	second := domain.DefaultProfile()
	second.MinIncome = 250000
	require.NoError(t, mem.LearnPreferences(ctx, second))

	stats, err := mem.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.PreferencesLearned)
}

func TestEmbed_ZeroVectorFallbackKeepsMemoryUsable(t *testing.T) {
	// No embedder at all: storing and querying still work, similarity
	// just carries no signal.
	mem, _ := newMemory(t, nil)
	ctx := context.Background()

	_, err := mem.StoreOpportunity(ctx, opp("", "https://example.com/a", "Listing A"))
	require.NoError(t, err)
	_, err = mem.StoreOpportunity(ctx, opp("", "https://example.com/b", "Listing B"))
	require.NoError(t, err)

	results, err := mem.FindSimilar(ctx, "anything", 10, 0)
	require.NoError(t, err)
	assert.Len(t, results, 2)
	for _, r := range results {
		assert.InDelta(t, 1.0, r.Similarity, 1e-9) // all zero vectors coincide
	}
}
