// Package embedding implements the embed operation shared by the HTTP routes:
// it drives the configured backend and enforces the response contract.
package embedding

import (
	"context"
	"fmt"
	"time"

	"github.com/embedworks/embedderd/internal/encoder"
	"github.com/embedworks/embedderd/internal/models"
	"github.com/embedworks/embedderd/internal/observability"
	"github.com/embedworks/embedderd/internal/vector"
)

// Service wraps an encoder and guarantees three invariants regardless of
// backend behavior: output order matches input order, every vector in a
// response has the same length, and every vector has unit L2 norm.
type Service struct {
	enc     encoder.Encoder
	backend string
	timeout time.Duration
	obs     *observability.Provider
}

// NewService wires the encoder behind the embed operation.
func NewService(enc encoder.Encoder, backend string, timeout time.Duration, obs *observability.Provider) *Service {
	return &Service{enc: enc, backend: backend, timeout: timeout, obs: obs}
}

// Model reports the served model's identity.
func (s *Service) Model() models.Model {
	return models.Model{
		ID:         s.enc.ModelID(),
		Backend:    s.backend,
		Dimensions: s.enc.Dimensions(),
	}
}

// EmbedBatch encodes texts and returns unit-norm vectors in input order.
// An empty batch returns an empty result without touching the backend.
func (s *Service) EmbedBatch(ctx context.Context, texts []string) (models.EmbeddingsResult, error) {
	if len(texts) == 0 {
		return models.EmbeddingsResult{Model: s.enc.ModelID(), Embeddings: []models.Embedding{}}, nil
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	result, err := s.enc.Encode(ctx, models.EmbeddingsRequest{Input: texts})
	status := "ok"
	if err != nil {
		status = "error"
	}
	s.obs.RecordEncode(s.enc.ModelID(), s.backend, status, len(texts), time.Since(start))
	if err != nil {
		return models.EmbeddingsResult{}, fmt.Errorf("encode batch: %w", err)
	}

	ordered, err := orderEmbeddings(result.Embeddings, len(texts))
	if err != nil {
		return models.EmbeddingsResult{}, err
	}

	width := len(ordered[0].Vector)
	for i := range ordered {
		if len(ordered[i].Vector) != width {
			return models.EmbeddingsResult{}, fmt.Errorf("embedding %d has %d dimensions, want %d", i, len(ordered[i].Vector), width)
		}
		vector.NormalizeL2(ordered[i].Vector)
	}

	result.Embeddings = ordered
	if result.Model == "" {
		result.Model = s.enc.ModelID()
	}
	return result, nil
}

// orderEmbeddings rearranges backend output by its reported indices, checking
// that exactly the n requested positions are covered.
func orderEmbeddings(in []models.Embedding, n int) ([]models.Embedding, error) {
	if len(in) != n {
		return nil, fmt.Errorf("backend returned %d embeddings for %d inputs", len(in), n)
	}
	out := make([]models.Embedding, n)
	seen := make([]bool, n)
	for _, emb := range in {
		if emb.Index < 0 || emb.Index >= n {
			return nil, fmt.Errorf("backend returned embedding index %d outside batch of %d", emb.Index, n)
		}
		if seen[emb.Index] {
			return nil, fmt.Errorf("backend returned duplicate embedding index %d", emb.Index)
		}
		seen[emb.Index] = true
		out[emb.Index] = emb
	}
	return out, nil
}
