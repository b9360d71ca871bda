// Package redisvec implements the VectorStore port on Redis hashes.
//
// Layout per collection:
//
//	vec:{collection}:ids         SET of item ids
//	vec:{collection}:item:{id}   HASH {vector, document, metadata}
//
// Vectors and metadata are stored as JSON. Nearest-neighbor queries load
// the collection (pipelined) and scan in process; collections here are
// per-user working sets, not production-scale indexes.
package redisvec

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/redis/go-redis/v9"

	"github.com/oppscout/oppscout-backend/internal/repository"
)

type Store struct {
	rdb *redis.Client
}

func NewStore(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

func idsKey(collection string) string { return "vec:" + collection + ":ids" }

func itemKey(collection, id string) string {
	return "vec:" + collection + ":item:" + id
}

func (s *Store) Upsert(ctx context.Context, collection string, item repository.Item) error {
	vecJSON, err := json.Marshal(item.Vector)
	if err != nil {
		return fmt.Errorf("marshal vector: %w", err)
	}
	metaJSON, err := json.Marshal(item.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}

	pipe := s.rdb.TxPipeline()
	pipe.HSet(ctx, itemKey(collection, item.ID), map[string]interface{}{
		"vector":   string(vecJSON),
		"document": item.Document,
		"metadata": string(metaJSON),
	})
	pipe.SAdd(ctx, idsKey(collection), item.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis upsert: %w", err)
	}
	return nil
}

func (s *Store) Query(ctx context.Context, collection string, vector []float32, k int) ([]repository.Match, error) {
	items, err := s.loadAll(ctx, collection)
	if err != nil {
		return nil, err
	}

	matches := make([]repository.Match, 0, len(items))
	for _, item := range items {
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

func (s *Store) GetByMetadata(ctx context.Context, collection string, where map[string]string) ([]repository.Item, error) {
	items, err := s.loadAll(ctx, collection)
	if err != nil {
		return nil, err
	}

	var filtered []repository.Item
	for _, item := range items {
		ok := true
		for k, v := range where {
			if item.Metadata[k] != v {
				ok = false
				break
			}
		}
		if ok {
			filtered = append(filtered, item)
		}
	}
	return filtered, nil
}

func (s *Store) Count(ctx context.Context, collection string) (int, error) {
	n, err := s.rdb.SCard(ctx, idsKey(collection)).Result()
	if err != nil {
		return 0, fmt.Errorf("redis scard: %w", err)
	}
	return int(n), nil
}

func (s *Store) loadAll(ctx context.Context, collection string) ([]repository.Item, error) {
	ids, err := s.rdb.SMembers(ctx, idsKey(collection)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis smembers: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	pipe := s.rdb.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.HGetAll(ctx, itemKey(collection, id))
	}
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, fmt.Errorf("redis hgetall pipeline: %w", err)
	}

	items := make([]repository.Item, 0, len(ids))
	for i, cmd := range cmds {
		fields, err := cmd.Result()
		if err != nil || len(fields) == 0 {
			continue // id set out of sync with hash; skip
		}
		item := repository.Item{
			ID:       ids[i],
			Document: fields["document"],
		}
		if raw := fields["vector"]; raw != "" {
			if err := json.Unmarshal([]byte(raw), &item.Vector); err != nil {
				continue
			}
		}
		if raw := fields["metadata"]; raw != "" {
			if err := json.Unmarshal([]byte(raw), &item.Metadata); err != nil {
				continue
			}
		}
		items = append(items, item)
	}
	return items, nil
}

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
