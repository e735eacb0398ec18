// seed_loader.go bootstraps the semantic seed store from YAML: every *.yaml
// file in the seed directory, each in the semantic_intents.yaml shape
// mapping an intent label to the example phrasings that count as that
// intent.
package cord

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// SeedLoader loads intent seeds from YAML files into a SeedStore.
type SeedLoader struct {
	store       SeedStore
	embedder    EmbeddingProvider
	seedDir     string
	loadedFiles map[string]time.Time
	mu          sync.RWMutex
}

// NewSeedLoader creates a seed loader writing into store via embedder.
func NewSeedLoader(store SeedStore, embedder EmbeddingProvider, seedDir string) *SeedLoader {
	return &SeedLoader{
		store:       store,
		embedder:    embedder,
		seedDir:     seedDir,
		loadedFiles: make(map[string]time.Time),
	}
}

// LoadAll loads every *.yaml file in the configured seed directory. A
// missing directory loads zero seeds without error — the seed store is an
// enrichment, not a requirement.
func (l *SeedLoader) LoadAll(ctx context.Context) (int, error) {
	files, err := filepath.Glob(filepath.Join(l.seedDir, "*.yaml"))
	if err != nil {
		return 0, fmt.Errorf("list seed files: %w", err)
	}

	total := 0
	for _, file := range files {
		loaded, err := l.LoadFile(ctx, file)
		if err != nil {
			continue
		}
		total += loaded
	}
	return total, nil
}

// semanticIntentsFile is the shape of semantic_intents.yaml: a label maps
// to the phrasings that express it.
type semanticIntentsFile struct {
	Intents map[string][]string `yaml:"intents"`
}

// LoadFile loads and embeds one semantic_intents.yaml file.
func (l *SeedLoader) LoadFile(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read seed file: %w", err)
	}

	var file semanticIntentsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return 0, fmt.Errorf("parse seed file %s: %w", path, err)
	}

	var seeds []*IntentSeed
	for label, phrases := range file.Intents {
		for _, phrase := range phrases {
			embedding, err := l.embedder.Embed(ctx, phrase)
			if err != nil {
				continue
			}
			seeds = append(seeds, &IntentSeed{
				ID:        uuid.New(),
				Label:     label,
				Text:      phrase,
				Embedding: embedding,
				Language:  "en",
				Source:    "yaml",
				CreatedAt: time.Now(),
			})
		}
	}

	loaded, err := l.store.BulkUpsert(ctx, seeds)
	if err != nil {
		return 0, err
	}

	l.mu.Lock()
	l.loadedFiles[path] = time.Now()
	l.mu.Unlock()

	return loaded, nil
}
