package encoder

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/embedworks/embedderd/internal/config"
	"github.com/embedworks/embedderd/internal/models"
)

type stubEncoder struct {
	id string
}

func (s *stubEncoder) Encode(ctx context.Context, req models.EmbeddingsRequest) (models.EmbeddingsResult, error) {
	return models.EmbeddingsResult{Model: s.id}, nil
}

func (s *stubEncoder) ModelID() string                  { return s.id }
func (s *stubEncoder) Dimensions() int                  { return 4 }
func (s *stubEncoder) Health(ctx context.Context) error { return nil }
func (s *stubEncoder) Close() error                     { return nil }

func TestFactoryBuildUsesRegisteredBuilder(t *testing.T) {
	cfg := &config.Config{Model: config.ModelConfig{Backend: "stub", Name: "test-model"}}
	factory := NewFactory(cfg)
	factory.Register("stub", func(ctx context.Context, cfg *config.Config) (Encoder, error) {
		return &stubEncoder{id: cfg.Model.Name}, nil
	})

	enc, err := factory.Build(context.Background())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if enc.ModelID() != "test-model" {
		t.Fatalf("expected builder to receive config, got model id %q", enc.ModelID())
	}
}

func TestFactoryBuildUnknownBackend(t *testing.T) {
	cfg := &config.Config{Model: config.ModelConfig{Backend: "does-not-exist", Name: "m"}}
	factory := NewFactory(cfg)

	if _, err := factory.Build(context.Background()); err == nil || !strings.Contains(err.Error(), "unsupported") {
		t.Fatalf("expected unsupported backend error, got %v", err)
	}
}

func TestFactoryBuildWrapsBuilderError(t *testing.T) {
	cause := errors.New("boom")
	cfg := &config.Config{Model: config.ModelConfig{Backend: "stub", Name: "m"}}
	factory := NewFactory(cfg)
	factory.Register("stub", func(ctx context.Context, cfg *config.Config) (Encoder, error) {
		return nil, cause
	})

	_, err := factory.Build(context.Background())
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped builder error, got %v", err)
	}
	if !strings.Contains(err.Error(), "stub") {
		t.Fatalf("expected backend name in error, got %v", err)
	}
}

func TestDefaultDefinitionsIncludeAllBackends(t *testing.T) {
	found := map[string]bool{}
	for _, def := range DefaultDefinitions() {
		found[def.Name] = true
	}
	for _, name := range []string{"bedrock", "local", "openai", "vertex"} {
		if !found[name] {
			t.Fatalf("expected %q in default definitions, got %v", name, found)
		}
	}
}

func TestRegisterDefinitionPanicsWithoutBuilder(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for nil builder")
		}
	}()
	RegisterDefinition(Definition{Name: "broken"})
}
