package encoder

import (
	"context"
	"fmt"
	"strings"

	"github.com/embedworks/embedderd/internal/config"
	"github.com/embedworks/embedderd/internal/encoder/vertex"
)

func init() {
	RegisterDefinition(Definition{
		Name:         "vertex",
		Description:  "Google Vertex AI publisher text-embedding models",
		Capabilities: []string{"embeddings"},
		Builder:      buildVertexEncoder,
	})
}

func buildVertexEncoder(ctx context.Context, cfg *config.Config) (Encoder, error) {
	cfg = EnsureConfig(cfg)
	project := strings.TrimSpace(cfg.Model.Vertex.ProjectID)
	if project == "" {
		return nil, fmt.Errorf("vertex backend requires project id (model.vertex.project_id)")
	}
	location := strings.TrimSpace(cfg.Model.Vertex.Location)
	if location == "" {
		return nil, fmt.Errorf("vertex backend requires location (model.vertex.location)")
	}
	creds := strings.TrimSpace(cfg.Model.Vertex.CredentialsJSON)
	if creds == "" {
		return nil, fmt.Errorf("vertex backend requires service account credentials (model.vertex.credentials_json)")
	}
	return vertex.New(ctx, vertex.Options{
		ProjectID:       project,
		Location:        location,
		Publisher:       strings.TrimSpace(cfg.Model.Vertex.Publisher),
		Model:           strings.TrimSpace(cfg.Model.Name),
		Endpoint:        strings.TrimSpace(cfg.Model.Vertex.Endpoint),
		CredentialsJSON: []byte(creds),
		Dimensions:      cfg.Model.Dimensions,
	})
}
