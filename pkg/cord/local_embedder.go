// local_embedder.go - deterministic local embedding, no external model.
//
// The reference stack embeds seed phrases via an ONNX sentence-transformer
// loaded through Hugot. That requires a downloaded model artifact this
// build has no way to fetch, so intent-seed embeddings here are produced by
// hashing each token into a fixed-width vector instead — no GPU, no model
// file, no network fetch, and (critically for the audit log) fully
// reproducible across runs and hosts.
package cord

import (
	"context"
	"crypto/sha256"
	"log"
	"math"
	"strings"
	"sync"
)

// EmbeddingDimension is the output width of LocalEmbedder's vectors.
const EmbeddingDimension = 64

// LocalEmbedder produces deterministic bag-of-tokens embeddings: each
// lowercased token's SHA256 digest adds a signed value to every dimension,
// and the result is L2-normalized. Semantically similar phrases that share
// vocabulary land close together in cosine distance; this is far cruder
// than a trained sentence embedding but needs nothing at runtime beyond
// the standard library.
type LocalEmbedder struct {
	mu    sync.RWMutex
	ready bool
}

// NewLocalEmbedder returns an embedder that is immediately ready — there is
// no model file to load.
func NewLocalEmbedder() *LocalEmbedder {
	e := &LocalEmbedder{ready: true}
	log.Printf("[cord] local embedder ready (hash-based, dimension=%d)", EmbeddingDimension)
	return e
}

// IsReady reports whether the embedder can serve requests.
func (e *LocalEmbedder) IsReady() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.ready
}

// Dimension returns the embedding width.
func (e *LocalEmbedder) Dimension() int {
	return EmbeddingDimension
}

// Embed returns the deterministic embedding for text.
func (e *LocalEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return hashEmbed(text), nil
}

// EmbedBatch embeds each text independently.
func (e *LocalEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = hashEmbed(t)
	}
	return out, nil
}

// EmbedSingle is a convenience wrapper over Embed with a background context.
func (e *LocalEmbedder) EmbedSingle(text string) []float32 {
	return hashEmbed(text)
}

// Close releases no resources; present to satisfy the EmbeddingProvider
// lifecycle callers expect from a real model-backed implementation.
func (e *LocalEmbedder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ready = false
	return nil
}

func hashEmbed(text string) []float32 {
	vec := make([]float32, EmbeddingDimension)
	tokens := strings.Fields(strings.ToLower(text))
	if len(tokens) == 0 {
		return vec
	}
	for _, tok := range tokens {
		sum := sha256.Sum256([]byte(tok))
		for i := 0; i < EmbeddingDimension; i++ {
			b := sum[i%len(sum)]
			sign := float32(1)
			if b&1 == 1 {
				sign = -1
			}
			vec[i] += sign * float32(b) / 255.0
		}
	}
	normalize(vec)
	return vec
}

func normalize(vec []float32) {
	var sumSq float64
	for _, v := range vec {
		sumSq += float64(v) * float64(v)
	}
	if sumSq == 0 {
		return
	}
	norm := float32(1.0 / math.Sqrt(sumSq))
	for i := range vec {
		vec[i] *= norm
	}
}
