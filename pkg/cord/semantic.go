package cord

import (
	"context"
	"sync"
)

// semanticStore and semanticEmbedder are optional global enrichments for
// intent matching. Nil until EnableSemanticIntentMatch is called — the
// pipeline works fine without them, falling back to the plain token/
// synonym match in engine.go.
var (
	semanticStore    SeedStore
	semanticEmbedder EmbeddingProvider
	semanticMu       sync.RWMutex
)

// EnableSemanticIntentMatch wires a seed store and embedder into the
// pipeline's intent-drift check. Call once at startup after loading seeds
// with SeedLoader; safe to call with nil to disable again.
func EnableSemanticIntentMatch(store SeedStore, embedder EmbeddingProvider) {
	semanticMu.Lock()
	defer semanticMu.Unlock()
	semanticStore = store
	semanticEmbedder = embedder
}

// semanticallyAligned reports whether text is close enough to any seed
// phrase tagged with an intent label present in sessionIntent's own token
// set, per cosine similarity. Returns false (no opinion) if no store is
// configured, a query error occurs, or nothing clears the threshold — the
// caller treats that exactly like "semantic layer had nothing to add."
func semanticallyAligned(sessionIntent, text string) bool {
	semanticMu.RLock()
	store, embedder := semanticStore, semanticEmbedder
	semanticMu.RUnlock()

	if store == nil || embedder == nil || sessionIntent == "" {
		return false
	}
	ctx := context.Background()
	embedding, err := embedder.Embed(ctx, text)
	if err != nil {
		return false
	}
	matches, err := store.SearchSimilar(ctx, embedding, 5, 0.80)
	if err != nil {
		return false
	}
	intentTokens := tokenize(sessionIntent)
	for _, m := range matches {
		if m.Seed != nil && intentTokens[m.Seed.Label] {
			return true
		}
	}
	return false
}
