package repository

import "context"

// Collection names used by the semantic memory. All writes are upserts
// keyed by a deterministic id, so concurrent writers converge without
// locking.
const (
	CollectionOpportunities = "opportunities"
	CollectionInteractions  = "interactions"
	CollectionPreferences   = "preferences"
)

// Item is one stored (vector, document, metadata) record.
type Item struct {
	ID       string
	Vector   []float32
	Document string
	Metadata map[string]string
}

// Match is a nearest-neighbor query hit. Distance is L2; smaller is
// closer.
type Match struct {
	Item
	Distance float64
}

// VectorStore is the persistence port for the semantic memory. Upsert
// semantics: re-writing an existing id overwrites rather than duplicates.
type VectorStore interface {
	Upsert(ctx context.Context, collection string, item Item) error
	// Query returns up to k nearest neighbors, closest first.
	Query(ctx context.Context, collection string, vector []float32, k int) ([]Match, error)
	// GetByMetadata returns items whose metadata contains all given pairs.
	GetByMetadata(ctx context.Context, collection string, where map[string]string) ([]Item, error)
	Count(ctx context.Context, collection string) (int, error)
}
