// Semantic seed store: an in-process vector index of known session-intent
// phrasings, used to widen intent_drift beyond the static synonym table in
// engine.go when a proposal's wording doesn't literally share a token with
// the declared session intent.
package cord

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
)

var (
	ErrSeedStoreUnavailable = errors.New("semantic seed store unavailable")
	ErrSeedNotFound         = errors.New("seed not found")
	ErrInvalidEmbedding     = errors.New("invalid embedding dimensions")
)

// IntentSeed is one known-good phrasing of an intent family ("update the
// site", "ship the release") paired with its embedding, so a proposal whose
// text is semantically close — even with no shared token — can still be
// recognized as aligned.
type IntentSeed struct {
	ID        uuid.UUID `json:"id"`
	Label     string    `json:"label"` // canonical intent family, e.g. "publish"
	Text      string    `json:"text"`
	Embedding []float32 `json:"embedding,omitempty"`
	Language  string    `json:"language"`
	Source    string    `json:"source"` // yaml, learned
	CreatedAt time.Time `json:"created_at"`
}

// SeedMatch is one semantic similarity hit against the seed store.
type SeedMatch struct {
	Seed       *IntentSeed `json:"seed"`
	Similarity float64     `json:"similarity"`
}

// SeedStore indexes IntentSeeds and serves nearest-neighbor queries against
// a query embedding.
type SeedStore interface {
	IsHealthy() bool
	UpsertSeed(ctx context.Context, seed *IntentSeed) error
	ListSeeds(ctx context.Context, label string, limit int) ([]*IntentSeed, error)
	SearchSimilar(ctx context.Context, embedding []float32, limit int, minSimilarity float64) ([]SeedMatch, error)
	BulkUpsert(ctx context.Context, seeds []*IntentSeed) (int, error)
	Close() error
}

// EmbeddingProvider generates embeddings for text.
type EmbeddingProvider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
}

// CosineSimilarityF32 calculates similarity between two float32 vectors.
func CosineSimilarityF32(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0.0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0.0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// L2Distance calculates Euclidean distance between two float32 vectors.
func L2Distance(a, b []float32) float64 {
	if len(a) != len(b) {
		return math.MaxFloat64
	}

	var sum float64
	for i := range a {
		diff := float64(a[i]) - float64(b[i])
		sum += diff * diff
	}

	return math.Sqrt(sum)
}
