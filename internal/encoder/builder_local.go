package encoder

import (
	"context"
	"strings"

	"github.com/embedworks/embedderd/internal/config"
	"github.com/embedworks/embedderd/internal/encoder/local"
)

func init() {
	RegisterDefinition(Definition{
		Name:         "local",
		Description:  "In-process ONNX feature-extraction pipeline (no network calls at inference time)",
		Capabilities: []string{"embeddings", "offline"},
		Builder:      buildLocalEncoder,
	})
}

func buildLocalEncoder(ctx context.Context, cfg *config.Config) (Encoder, error) {
	cfg = EnsureConfig(cfg)
	cacheDir := strings.TrimSpace(cfg.Model.CacheDir)
	if cacheDir == "" {
		cacheDir = "./models"
	}
	return local.New(ctx, local.Options{
		ModelName: strings.TrimSpace(cfg.Model.Name),
		CacheDir:  cacheDir,
	})
}
