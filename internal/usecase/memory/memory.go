// Package memory is the semantic store for opportunities, interactions,
// and learned preferences, backed by the VectorStore and Embedder ports.
package memory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/oppscout/oppscout-backend/internal/domain"
	"github.com/oppscout/oppscout-backend/internal/repository"
)

// Embedder is the text-embedding capability.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// profileKey is the single fixed id under which the profile embedding
// lives; storing a new profile replaces it rather than appending.
const profileKey = "user_profile"

// SimilarOpportunity is one semantic-search hit.
type SimilarOpportunity struct {
	ID         string            `json:"id"`
	Document   string            `json:"document"`
	Metadata   map[string]string `json:"metadata"`
	Similarity float64           `json:"similarity"`
}

// Stats summarizes what the memory currently holds.
type Stats struct {
	OpportunitiesStored  int `json:"opportunities_stored"`
	InteractionsRecorded int `json:"interactions_recorded"`
	PreferencesLearned   int `json:"preferences_learned"`
}

// Memory stores opportunities and preference signals as vectors and
// keeps the interaction ledger. A nil embedder degrades every embedding
// to a fixed-length zero vector: similarity search still functions but
// carries no discriminative signal. An optional archive repository
// mirrors opportunities durably.
type Memory struct {
	store    repository.VectorStore
	embedder Embedder
	archive  repository.OpportunityRepository
	embedDim int
	log      *zap.Logger
}

func NewMemory(store repository.VectorStore, embedder Embedder, archive repository.OpportunityRepository, embedDim int, log *zap.Logger) *Memory {
	return &Memory{
		store:    store,
		embedder: embedder,
		archive:  archive,
		embedDim: embedDim,
		log:      log,
	}
}

// StoreOpportunity embeds the canonical text summary and upserts it
// keyed by the stable id. Re-storing the same opportunity overwrites.
func (m *Memory) StoreOpportunity(ctx context.Context, opp *domain.Opportunity) (string, error) {
	if opp.URL == "" {
		return "", domain.ErrMissingURL
	}

	id := opp.StableID()
	doc := opportunityText(opp)
	vector := m.embed(ctx, doc)

	company := ""
	if opp.Company != nil {
		company = *opp.Company
	}
	item := repository.Item{
		ID:       id,
		Vector:   vector,
		Document: doc,
		Metadata: map[string]string{
			"title":         opp.Title,
			"company":       company,
			"type":          string(opp.Type),
			"url":           opp.URL,
			"source":        opp.Source,
			"overall_score": fmt.Sprintf("%.4f", opp.OverallScore),
			"stored_at":     time.Now().UTC().Format(time.RFC3339),
		},
	}
	if err := m.store.Upsert(ctx, repository.CollectionOpportunities, item); err != nil {
		return "", fmt.Errorf("store opportunity: %w", err)
	}

	if m.archive != nil {
		if err := m.archive.Upsert(ctx, opp); err != nil {
			m.log.Warn("opportunity archive upsert failed",
				zap.String("id", id), zap.Error(err))
		}
	}
	return id, nil
}

// StoreOpportunities stores a batch, returning the ids in input order.
// Individual failures are logged and skipped.
func (m *Memory) StoreOpportunities(ctx context.Context, opps []*domain.Opportunity) []string {
	ids := make([]string, 0, len(opps))
	for _, opp := range opps {
		id, err := m.StoreOpportunity(ctx, opp)
		if err != nil {
			m.log.Warn("skipping opportunity store", zap.Error(err))
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// FindSimilar retrieves stored opportunities nearest to the query text.
// Distances map to similarity via 1/(1+d); hits below minSimilarity are
// dropped and nearest-first order is preserved.
func (m *Memory) FindSimilar(ctx context.Context, queryText string, limit int, minSimilarity float64) ([]SimilarOpportunity, error) {
	vector := m.embed(ctx, queryText)

	matches, err := m.store.Query(ctx, repository.CollectionOpportunities, vector, limit)
	if err != nil {
		return nil, fmt.Errorf("similarity query: %w", err)
	}

	results := make([]SimilarOpportunity, 0, len(matches))
	for _, match := range matches {
		similarity := 1.0 / (1.0 + match.Distance)
		if similarity < minSimilarity {
			continue
		}
		results = append(results, SimilarOpportunity{
			ID:         match.ID,
			Document:   match.Document,
			Metadata:   match.Metadata,
			Similarity: similarity,
		})
	}
	return results, nil
}

// MarkSeen records that the opportunity was shown. Idempotent.
func (m *Memory) MarkSeen(ctx context.Context, oppID string) error {
	return m.recordInteraction(ctx, oppID, domain.ActionSeen, "")
}

// MarkApplied records that the user applied. Idempotent.
func (m *Memory) MarkApplied(ctx context.Context, oppID string) error {
	return m.recordInteraction(ctx, oppID, domain.ActionApplied, "")
}

// MarkFeedback records a liked/passed interaction. A non-empty reason is
// additionally embedded as a preference signal keyed so each opportunity
// contributes at most one positive and one negative signal.
func (m *Memory) MarkFeedback(ctx context.Context, oppID string, liked bool, reason string) error {
	action := domain.ActionPassed
	sign := "negative"
	if liked {
		action = domain.ActionLiked
		sign = "positive"
	}

	if err := m.recordInteraction(ctx, oppID, action, reason); err != nil {
		return err
	}

	if reason == "" {
		return nil
	}

	item := repository.Item{
		ID:       fmt.Sprintf("pref:%s:%s", oppID, sign),
		Vector:   m.embed(ctx, reason),
		Document: reason,
		Metadata: map[string]string{
			"type":      sign,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		},
	}
	if err := m.store.Upsert(ctx, repository.CollectionPreferences, item); err != nil {
		return fmt.Errorf("store preference signal: %w", err)
	}
	return nil
}

// LearnPreferences embeds the profile's canonical text and upserts it
// under the fixed profile key, replacing any previous profile vector.
func (m *Memory) LearnPreferences(ctx context.Context, profile *domain.UserProfile) error {
	doc := profileText(profile)
	item := repository.Item{
		ID:       profileKey,
		Vector:   m.embed(ctx, doc),
		Document: doc,
		Metadata: map[string]string{
			"type":       "profile",
			"updated_at": time.Now().UTC().Format(time.RFC3339),
		},
	}
	if err := m.store.Upsert(ctx, repository.CollectionPreferences, item); err != nil {
		return fmt.Errorf("store profile preferences: %w", err)
	}
	return nil
}

// SeenIDs returns the ids of every opportunity with a recorded "seen"
// interaction.
func (m *Memory) SeenIDs(ctx context.Context) (map[string]bool, error) {
	items, err := m.store.GetByMetadata(ctx, repository.CollectionInteractions, map[string]string{
		"action": string(domain.ActionSeen),
	})
	if err != nil {
		return nil, fmt.Errorf("load seen interactions: %w", err)
	}
	ids := make(map[string]bool, len(items))
	for _, item := range items {
		if oppID := item.Metadata["opportunity_id"]; oppID != "" {
			ids[oppID] = true
		}
	}
	return ids, nil
}

// GetStats returns counts of stored opportunities, interactions, and
// preference signals.
func (m *Memory) GetStats(ctx context.Context) (*Stats, error) {
	opps, err := m.store.Count(ctx, repository.CollectionOpportunities)
	if err != nil {
		return nil, err
	}
	interactions, err := m.store.Count(ctx, repository.CollectionInteractions)
	if err != nil {
		return nil, err
	}
	prefs, err := m.store.Count(ctx, repository.CollectionPreferences)
	if err != nil {
		return nil, err
	}
	return &Stats{
		OpportunitiesStored:  opps,
		InteractionsRecorded: interactions,
		PreferencesLearned:   prefs,
	}, nil
}

// recordInteraction upserts the interaction keyed (id, action) so
// re-recording the same action overwrites instead of duplicating.
func (m *Memory) recordInteraction(ctx context.Context, oppID string, action domain.InteractionAction, reason string) error {
	doc := string(action)
	if reason != "" {
		doc = reason
	}
	item := repository.Item{
		ID:       fmt.Sprintf("%s:%s", oppID, action),
		Document: doc,
		Metadata: map[string]string{
			"opportunity_id": oppID,
			"action":         string(action),
			"reason":         reason,
			"timestamp":      time.Now().UTC().Format(time.RFC3339),
		},
	}
	if err := m.store.Upsert(ctx, repository.CollectionInteractions, item); err != nil {
		return fmt.Errorf("record interaction: %w", err)
	}
	return nil
}

// embed produces a vector for the text, falling back to the fixed-length
// zero vector when no embedder is configured or the call fails. The
// degraded vector keeps similarity search functional, just undiscriminating.
func (m *Memory) embed(ctx context.Context, text string) []float32 {
	if m.embedder == nil {
		return make([]float32, m.embedDim)
	}
	vector, err := m.embedder.Embed(ctx, text)
	if err != nil {
		m.log.Warn("embedding failed, using zero vector", zap.Error(err))
		return make([]float32, m.embedDim)
	}
	return vector
}

// opportunityText renders the canonical searchable summary.
func opportunityText(opp *domain.Opportunity) string {
	parts := []string{
		"Title: " + opp.Title,
		"Type: " + string(opp.Type),
		"Description: " + opp.Description,
	}
	if opp.Company != nil && *opp.Company != "" {
		parts = append(parts, "Company: "+*opp.Company)
	}
	if len(opp.SkillsRequired) > 0 {
		parts = append(parts, "Skills: "+strings.Join(opp.SkillsRequired, ", "))
	}
	if opp.IncomeHigh != nil {
		parts = append(parts, fmt.Sprintf("Compensation: up to $%d", *opp.IncomeHigh))
	}
	if opp.EffortLevel != nil {
		parts = append(parts, "Effort: "+string(*opp.EffortLevel))
	}
	return strings.Join(parts, "\n")
}

// profileText renders the profile for preference embedding.
func profileText(p *domain.UserProfile) string {
	return fmt.Sprintf(`Skills: %s
Industries: %s
Minimum income: $%d
Maximum hours: %d per week
Remote only: %t
Experience: %d years
Open to equity: %t
Open to founding: %t
Interested in grants: %t`,
		strings.Join(p.Skills, ", "),
		strings.Join(p.Industries, ", "),
		p.MinIncome,
		p.MaxHoursWeekly,
		p.RemoteOnly,
		p.ExperienceYears,
		p.InterestedInEquity,
		p.InterestedInFounding,
		p.InterestedInGrants,
	)
}
