package encoder

import (
	"context"
	"fmt"
	"strings"

	"github.com/embedworks/embedderd/internal/config"
	"github.com/embedworks/embedderd/internal/encoder/bedrock"
)

func init() {
	RegisterDefinition(Definition{
		Name:         "bedrock",
		Description:  "Amazon Bedrock Titan text embeddings",
		Capabilities: []string{"embeddings"},
		Builder:      buildBedrockEncoder,
	})
}

func buildBedrockEncoder(ctx context.Context, cfg *config.Config) (Encoder, error) {
	cfg = EnsureConfig(cfg)
	region := strings.TrimSpace(cfg.Model.Bedrock.Region)
	if region == "" {
		return nil, fmt.Errorf("bedrock backend requires region (model.bedrock.region)")
	}
	return bedrock.New(ctx, bedrock.Options{
		Region:          region,
		Profile:         strings.TrimSpace(cfg.Model.Bedrock.Profile),
		AccessKeyID:     strings.TrimSpace(cfg.Model.Bedrock.AccessKeyID),
		SecretAccessKey: strings.TrimSpace(cfg.Model.Bedrock.SecretAccessKey),
		SessionToken:    strings.TrimSpace(cfg.Model.Bedrock.SessionToken),
		ModelID:         strings.TrimSpace(cfg.Model.Name),
		Dimensions:      int32(cfg.Model.Dimensions),
		Normalize:       cfg.Model.Bedrock.Normalize,
	})
}
