package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/embedworks/embedderd/internal/config"
	"github.com/embedworks/embedderd/internal/encoder"
	"github.com/embedworks/embedderd/internal/observability"
	"github.com/embedworks/embedderd/internal/services/embedding"
)

// Container aggregates runtime dependencies for handlers and services.
type Container struct {
	Config        *config.Config
	Encoder       encoder.Encoder
	Embeddings    *embedding.Service
	Observability *observability.Provider
}

// NewContainer builds the dependency container. The encoder comes up first,
// so a model that cannot load aborts startup before the listener ever opens.
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	enc, err := encoder.NewFactory(cfg).Build(ctx)
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}

	obsProvider, err := observability.Setup(ctx, cfg.Observability)
	if err != nil {
		_ = enc.Close()
		return nil, fmt.Errorf("setup observability: %w", err)
	}

	embeddings := embedding.NewService(enc, cfg.Model.Backend, cfg.Server.EncodeTimeout, obsProvider)

	return &Container{
		Config:        cfg,
		Encoder:       enc,
		Embeddings:    embeddings,
		Observability: obsProvider,
	}, nil
}

// Close releases the encoder and flushes telemetry exporters.
func (c *Container) Close(ctx context.Context) error {
	if c == nil {
		return nil
	}

	var errs []error
	if c.Encoder != nil {
		if err := c.Encoder.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close encoder: %w", err))
		}
	}
	if c.Observability != nil {
		if err := c.Observability.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown observability: %w", err))
		}
	}
	return errors.Join(errs...)
}
