package repository

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"legalassist-backend/ai"
	"legalassist-backend/models"
)

// MemoryCaseRepository is an in-process CaseRepository backed by a slice.
// It serves tests, seeding, and development runs where Postgres is not
// wired up. Writes are serialized by a mutex; reads work on a snapshot.
type MemoryCaseRepository struct {
	mu       sync.RWMutex
	embedder ai.Embedder
	cases    []models.CaseRecord
	nextID   int64
}

// NewMemoryCaseRepository creates an empty in-memory case repository
func NewMemoryCaseRepository(embedder ai.Embedder) *MemoryCaseRepository {
	return &MemoryCaseRepository{
		embedder: embedder,
		nextID:   1,
	}
}

// AddCase embeds the canonical case text and appends the case.
// Ids are sequential in insertion order.
func (r *MemoryCaseRepository) AddCase(ctx context.Context, c *models.CaseRecord) (int64, error) {
	embedding, err := r.embedder.Embed(ctx, CanonicalCaseText(c))
	if err != nil {
		return 0, fmt.Errorf("failed to embed case %q: %w", c.CaseName, err)
	}
	if len(embedding) == 0 {
		return 0, ErrEmptyEmbedding
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *c
	stored.ID = r.nextID
	stored.Embedding = embedding
	r.cases = append(r.cases, stored)
	r.nextID++

	c.ID = stored.ID
	return stored.ID, nil
}

// FindSimilar ranks stored cases by cosine distance to the query embedding.
// Ties keep insertion order; the sort is stable over a slice already in
// insertion order.
func (r *MemoryCaseRepository) FindSimilar(ctx context.Context, queryText string, filters CaseFilters, limit int) ([]models.CaseRecord, error) {
	if limit <= 0 {
		return []models.CaseRecord{}, nil
	}

	queryEmbedding, err := r.embedder.Embed(ctx, queryText)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	r.mu.RLock()
	candidates := make([]models.CaseRecord, 0, len(r.cases))
	for _, c := range r.cases {
		if filters.Jurisdiction != "" && c.Jurisdiction != filters.Jurisdiction {
			continue
		}
		if filters.CaseType != "" && c.CaseType != filters.CaseType {
			continue
		}
		c.Distance = cosineDistance(queryEmbedding, c.Embedding)
		candidates = append(candidates, c)
	}
	r.mu.RUnlock()

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Distance < candidates[j].Distance
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates, nil
}

// GetCase fetches one case by id
func (r *MemoryCaseRepository) GetCase(_ context.Context, id int64) (*models.CaseRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.cases {
		if c.ID == id {
			found := c
			return &found, nil
		}
	}
	return nil, ErrCaseNotFound
}

// Stats counts stored cases by jurisdiction and case type
func (r *MemoryCaseRepository) Stats(_ context.Context) (*models.RepositoryStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := &models.RepositoryStats{
		TotalCases:    len(r.cases),
		Jurisdictions: make(map[string]int),
		CaseTypes:     make(map[string]int),
	}
	for _, c := range r.cases {
		stats.Jurisdictions[c.Jurisdiction]++
		stats.CaseTypes[c.CaseType]++
	}
	return stats, nil
}

// cosineDistance is 1 minus cosine similarity, matching the pgvector <=>
// operator. Mismatched or zero vectors get the maximum distance so they sink
// to the bottom of the ranking.
func cosineDistance(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 2.0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 2.0
	}

	return 1.0 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}
