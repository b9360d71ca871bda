// Package inmem provides a process-local VectorStore used when no Redis
// backend is configured, and by tests.
package inmem

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/oppscout/oppscout-backend/internal/repository"
)

type Store struct {
	mu          sync.RWMutex
	collections map[string]map[string]repository.Item
}

func NewStore() *Store {
	return &Store{collections: make(map[string]map[string]repository.Item)}
}

func (s *Store) Upsert(_ context.Context, collection string, item repository.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	coll, ok := s.collections[collection]
	if !ok {
		coll = make(map[string]repository.Item)
		s.collections[collection] = coll
	}
	coll[item.ID] = item
	return nil
}

func (s *Store) Query(_ context.Context, collection string, vector []float32, k int) ([]repository.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matches := make([]repository.Match, 0, len(s.collections[collection]))
	for _, item := range s.collections[collection] {
		matches = append(matches, repository.Match{
			Item:     item,
			Distance: l2Distance(vector, item.Vector),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Distance < matches[j].Distance
	})
	if k > 0 && len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

func (s *Store) GetByMetadata(_ context.Context, collection string, where map[string]string) ([]repository.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var items []repository.Item
	for _, item := range s.collections[collection] {
		if metadataMatches(item.Metadata, where) {
			items = append(items, item)
		}
	}
	return items, nil
}

func (s *Store) Count(_ context.Context, collection string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.collections[collection]), nil
}

func metadataMatches(meta, where map[string]string) bool {
	for k, v := range where {
		if meta[k] != v {
			return false
		}
	}
	return true
}

// l2Distance computes Euclidean distance over the overlapping prefix;
// missing trailing components are treated as zero.
func l2Distance(a, b []float32) float64 {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		var av, bv float64
		if i < len(a) {
			av = float64(a[i])
		}
		if i < len(b) {
			bv = float64(b[i])
		}
		d := av - bv
		sum += d * d
	}
	return math.Sqrt(sum)
}
