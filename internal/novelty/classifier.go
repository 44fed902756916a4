package novelty

import (
	"context"
	"log/slog"
	"math"

	"sentinlk/internal/memory"
	"sentinlk/internal/ports"
)

// Verdict is the novelty decision for one candidate text.
type Verdict int

const (
	// Novel means nothing similar is in the recency window.
	Novel Verdict = iota
	// Corroborated means at least one near-identical report exists below
	// the duplicate threshold: multiple sources covering the same event.
	Corroborated
	// Duplicate means the text matches a cached report closely enough to
	// be the same item; it must be dropped before scoring.
	Duplicate
)

// Result carries the verdict plus the computed embedding so the caller can
// cache it after the item is accepted for persistence.
type Result struct {
	Verdict        Verdict
	Vector         []float32
	Corroborations int
}

// Classifier decides duplicate / corroborated / novel via cosine similarity
// against the embedding cache.
type Classifier struct {
	embedder           ports.Embedder
	cache              *memory.EmbeddingCache
	duplicateThreshold float64
	corroborationFloor float64
	logger             *slog.Logger
}

// NewClassifier wires the embedder and the shared cache. Thresholds are
// tunables; sensible observed values are 0.75-0.85 and 0.60.
func NewClassifier(embedder ports.Embedder, cache *memory.EmbeddingCache, duplicateThreshold, corroborationFloor float64, logger *slog.Logger) *Classifier {
	return &Classifier{
		embedder:           embedder,
		cache:              cache,
		duplicateThreshold: duplicateThreshold,
		corroborationFloor: corroborationFloor,
		logger:             logger,
	}
}

// Classify embeds the text and compares it against the cache snapshot.
// Embedding failures degrade to Novel with a nil vector: novelty detection
// is disabled for the item rather than blocking the pipeline.
func (c *Classifier) Classify(ctx context.Context, text string) Result {
	if c.embedder == nil {
		return Result{Verdict: Novel}
	}

	vectors, err := c.embedder.Embed(ctx, []string{text})
	if err != nil || len(vectors) == 0 {
		if c.logger != nil {
			c.logger.Warn("embedding unavailable, treating item as novel", "error", err)
		}
		return Result{Verdict: Novel}
	}

	vec := vectors[0]
	snapshot := c.cache.Snapshot()
	if len(snapshot) == 0 {
		return Result{Verdict: Novel, Vector: vec}
	}

	corroborations := 0
	for _, entry := range snapshot {
		sim := Cosine(vec, entry.Vector)
		if sim > c.duplicateThreshold {
			return Result{Verdict: Duplicate, Vector: vec}
		}
		if sim >= c.corroborationFloor {
			corroborations++
		}
	}

	if corroborations > 0 {
		return Result{Verdict: Corroborated, Vector: vec, Corroborations: corroborations}
	}

	return Result{Verdict: Novel, Vector: vec}
}

// Cosine computes the cosine similarity between two vectors. Mismatched or
// zero-length vectors yield 0.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
