package app

import (
	"context"
	"testing"
	"time"

	"github.com/embedworks/embedderd/internal/config"
	"github.com/embedworks/embedderd/internal/encoder"
	"github.com/embedworks/embedderd/internal/models"
)

func init() {
	encoder.RegisterDefinition(encoder.Definition{
		Name:        "stub",
		Description: "in-memory backend for container tests",
		Builder: func(ctx context.Context, cfg *config.Config) (encoder.Encoder, error) {
			return &stubEncoder{id: cfg.Model.Name, dims: cfg.Model.Dimensions}, nil
		},
	})
}

type stubEncoder struct {
	id     string
	dims   int
	closed bool
}

func (s *stubEncoder) Encode(ctx context.Context, req models.EmbeddingsRequest) (models.EmbeddingsResult, error) {
	embeddings := make([]models.Embedding, len(req.Input))
	for i := range req.Input {
		vec := make([]float32, s.dims)
		vec[0] = 1
		embeddings[i] = models.Embedding{Index: i, Vector: vec}
	}
	return models.EmbeddingsResult{Model: s.id, Embeddings: embeddings}, nil
}

func (s *stubEncoder) ModelID() string                  { return s.id }
func (s *stubEncoder) Dimensions() int                  { return s.dims }
func (s *stubEncoder) Health(ctx context.Context) error { return nil }
func (s *stubEncoder) Close() error                     { s.closed = true; return nil }

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{EncodeTimeout: time.Second},
		Model: config.ModelConfig{
			Backend:    "stub",
			Name:       "stub-model",
			Dimensions: 4,
		},
	}
}

func TestNewContainerRequiresConfig(t *testing.T) {
	if _, err := NewContainer(context.Background(), nil); err == nil {
		t.Fatal("expected error for nil config")
	}
}

func TestNewContainerFailsFastOnUnknownBackend(t *testing.T) {
	cfg := testConfig()
	cfg.Model.Backend = "missing"
	if _, err := NewContainer(context.Background(), cfg); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestNewContainerWiresEmbeddingService(t *testing.T) {
	container, err := NewContainer(context.Background(), testConfig())
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}
	t.Cleanup(func() {
		_ = container.Close(context.Background())
	})

	if container.Encoder == nil || container.Embeddings == nil {
		t.Fatal("expected encoder and embedding service to be wired")
	}

	result, err := container.Embeddings.EmbedBatch(context.Background(), []string{"hello"})
	if err != nil {
		t.Fatalf("EmbedBatch returned error: %v", err)
	}
	if len(result.Embeddings) != 1 {
		t.Fatalf("expected one embedding, got %d", len(result.Embeddings))
	}
}

func TestContainerCloseReleasesEncoder(t *testing.T) {
	container, err := NewContainer(context.Background(), testConfig())
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}
	if err := container.Close(context.Background()); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	stub, ok := container.Encoder.(*stubEncoder)
	if !ok {
		t.Fatalf("expected stub encoder, got %T", container.Encoder)
	}
	if !stub.closed {
		t.Fatal("expected encoder to be closed")
	}
}
