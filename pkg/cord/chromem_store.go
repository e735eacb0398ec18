// chromem_store.go backs SeedStore with an in-process chromem-go
// collection — no server, no network hop, matching CORD's single-process
// deployment model.
package cord

import (
	"context"
	"sync"

	"github.com/google/uuid"
	chromem "github.com/philippgille/chromem-go"
)

const chromemCollectionName = "cord_intent_seeds"

// ChromemSeedStore is a SeedStore backed by an in-memory chromem-go
// collection.
type ChromemSeedStore struct {
	db         *chromem.DB
	collection *chromem.Collection
	mu         sync.RWMutex
}

// NewChromemSeedStore creates an empty, ready-to-use seed store.
func NewChromemSeedStore() (*ChromemSeedStore, error) {
	db := chromem.NewDB()
	// Embeddings are supplied by the caller (LocalEmbedder), so no
	// embedding func is passed (nil); chromem-go never needs one as long
	// as callers always pass a pre-computed vector.
	collection, err := db.CreateCollection(chromemCollectionName, nil, nil)
	if err != nil {
		return nil, err
	}
	return &ChromemSeedStore{db: db, collection: collection}, nil
}

func (s *ChromemSeedStore) IsHealthy() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collection != nil
}

func (s *ChromemSeedStore) UpsertSeed(ctx context.Context, seed *IntentSeed) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seed.ID == uuid.Nil {
		seed.ID = uuid.New()
	}
	doc := chromem.Document{
		ID:        seed.ID.String(),
		Content:   seed.Text,
		Embedding: seed.Embedding,
		Metadata: map[string]string{
			"label":    seed.Label,
			"language": seed.Language,
			"source":   seed.Source,
		},
	}
	return s.collection.AddDocument(ctx, doc)
}

func (s *ChromemSeedStore) BulkUpsert(ctx context.Context, seeds []*IntentSeed) (int, error) {
	count := 0
	for _, seed := range seeds {
		if err := s.UpsertSeed(ctx, seed); err != nil {
			continue
		}
		count++
	}
	return count, nil
}

func (s *ChromemSeedStore) ListSeeds(ctx context.Context, label string, limit int) ([]*IntentSeed, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := s.collection.Count()
	if limit <= 0 || limit > count {
		limit = count
	}
	if limit == 0 {
		return nil, nil
	}
	// chromem-go has no plain "list" primitive; approximate it by
	// querying with a zero-ish embedding scoped to the label filter.
	results, err := s.collection.QueryEmbedding(ctx, make([]float32, EmbeddingDimension), limit, map[string]string{"label": label}, nil)
	if err != nil {
		return nil, err
	}
	return toIntentSeeds(results), nil
}

func (s *ChromemSeedStore) SearchSimilar(ctx context.Context, embedding []float32, limit int, minSimilarity float64) ([]SeedMatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := s.collection.Count()
	if count == 0 {
		return nil, nil
	}
	if limit <= 0 || limit > count {
		limit = count
	}
	results, err := s.collection.QueryEmbedding(ctx, embedding, limit, nil, nil)
	if err != nil {
		return nil, err
	}
	var matches []SeedMatch
	for _, res := range results {
		if float64(res.Similarity) < minSimilarity {
			continue
		}
		seed := resultToSeed(res)
		matches = append(matches, SeedMatch{Seed: seed, Similarity: float64(res.Similarity)})
	}
	return matches, nil
}

func (s *ChromemSeedStore) Close() error {
	return nil
}

func toIntentSeeds(results []chromem.Result) []*IntentSeed {
	seeds := make([]*IntentSeed, 0, len(results))
	for _, res := range results {
		seeds = append(seeds, resultToSeed(res))
	}
	return seeds
}

func resultToSeed(res chromem.Result) *IntentSeed {
	id, _ := uuid.Parse(res.ID)
	return &IntentSeed{
		ID:        id,
		Label:     res.Metadata["label"],
		Text:      res.Content,
		Embedding: res.Embedding,
		Language:  res.Metadata["language"],
		Source:    res.Metadata["source"],
	}
}
