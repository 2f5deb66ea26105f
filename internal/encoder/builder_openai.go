package encoder

import (
	"context"
	"fmt"
	"strings"

	"github.com/embedworks/embedderd/internal/config"
	"github.com/embedworks/embedderd/internal/encoder/openai"
)

func init() {
	RegisterDefinition(Definition{
		Name:         "openai",
		Description:  "OpenAI embeddings API (or any compatible endpoint via base_url)",
		Capabilities: []string{"embeddings", "models"},
		Builder:      buildOpenAIEncoder,
	})
}

func buildOpenAIEncoder(ctx context.Context, cfg *config.Config) (Encoder, error) {
	cfg = EnsureConfig(cfg)
	apiKey := strings.TrimSpace(cfg.Model.OpenAI.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("openai backend requires api key (model.openai.api_key)")
	}
	return openai.New(openai.Options{
		APIKey:       apiKey,
		BaseURL:      strings.TrimSpace(cfg.Model.OpenAI.BaseURL),
		Organization: strings.TrimSpace(cfg.Model.OpenAI.Organization),
		Model:        strings.TrimSpace(cfg.Model.Name),
		Dimensions:   cfg.Model.Dimensions,
	})
}
