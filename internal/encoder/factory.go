package encoder

import (
	"context"
	"fmt"

	"github.com/embedworks/embedderd/internal/config"
)

// Builder constructs an Encoder for the configured model.
type Builder func(ctx context.Context, cfg *config.Config) (Encoder, error)

// Factory builds the embedding backend from configuration using a registry of builders.
type Factory struct {
	cfg      *config.Config
	builders map[string]Builder
}

// NewFactory creates a factory with the default backend registry.
func NewFactory(cfg *config.Config) *Factory {
	return &Factory{cfg: cfg, builders: cloneDefaultBuilders()}
}

// Register allows tests or callers to override backend builders.
func (f *Factory) Register(name string, builder Builder) {
	if f.builders == nil {
		f.builders = make(map[string]Builder)
	}
	f.builders[name] = builder
}

// Build instantiates the encoder selected by model.backend.
func (f *Factory) Build(ctx context.Context) (Encoder, error) {
	backend := f.cfg.Model.Backend
	builder, ok := f.builders[backend]
	if !ok {
		return nil, fmt.Errorf("model %q: backend %q unsupported", f.cfg.Model.Name, backend)
	}
	enc, err := builder(ctx, f.cfg)
	if err != nil {
		return nil, fmt.Errorf("backend %q: %w", backend, err)
	}
	return enc, nil
}
