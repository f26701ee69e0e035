package ai

import (
	"context"
	"hash/fnv"
	"strings"
	"unicode"
)

// LocalEmbedder is a deterministic feature-hashing embedder. It needs no
// network or API key, which makes it the embedder for tests, seeding, and
// development runs. Similarity is driven by token overlap, so documents
// sharing vocabulary land close together.
type LocalEmbedder struct {
	dims int
}

// NewLocalEmbedder creates a local embedder producing vectors of the given
// dimensionality
func NewLocalEmbedder(dims int) *LocalEmbedder {
	if dims <= 0 {
		dims = embeddingDims
	}
	return &LocalEmbedder{dims: dims}
}

// Dimensions returns the configured vector length
func (e *LocalEmbedder) Dimensions() int {
	return e.dims
}

// Embed hashes lowercased word tokens into a fixed-length vector and
// L2-normalizes it. The same text always produces the same vector.
func (e *LocalEmbedder) Embed(_ context.Context, text string) ([]float64, error) {
	vector := make([]float64, e.dims)

	tokens := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	for _, token := range tokens {
		h := fnv.New32a()
		h.Write([]byte(token))
		sum := h.Sum32()

		idx := int(sum % uint32(e.dims))
		// Low bit of the hash decides the sign so collisions tend to cancel
		// rather than pile up
		if sum&1 == 0 {
			vector[idx]++
		} else {
			vector[idx]--
		}
	}

	normalizeVector(vector)
	return vector, nil
}
