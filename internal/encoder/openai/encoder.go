// Package openai adapts the OpenAI embeddings API to the encoder interface.
package openai

import (
	"context"
	"errors"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/packages/param"

	"github.com/embedworks/embedderd/internal/models"
)

// Options configure the OpenAI-backed encoder.
type Options struct {
	APIKey       string
	BaseURL      string
	Organization string
	Model        string
	Dimensions   int
	Extra        []option.RequestOption
}

// Encoder sends each batch to the OpenAI embeddings endpoint in one call.
type Encoder struct {
	client  *openai.Client
	modelID string
	dims    int
}

// New creates an encoder using the provided API key and optional base URL/organization.
func New(opts Options) (*Encoder, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("openai: api key required")
	}
	if strings.TrimSpace(opts.Model) == "" {
		return nil, errors.New("openai: model required")
	}

	requestOpts := []option.RequestOption{option.WithAPIKey(opts.APIKey)}
	if strings.TrimSpace(opts.BaseURL) != "" {
		requestOpts = append(requestOpts, option.WithBaseURL(strings.TrimRight(opts.BaseURL, "/")))
	}
	if strings.TrimSpace(opts.Organization) != "" {
		requestOpts = append(requestOpts, option.WithOrganization(strings.TrimSpace(opts.Organization)))
	}
	requestOpts = append(requestOpts, opts.Extra...)

	client := openai.NewClient(requestOpts...)
	return &Encoder{client: &client, modelID: opts.Model, dims: opts.Dimensions}, nil
}

// Encode creates embeddings for the batch. The API reports each vector's
// index, which is carried through untouched.
func (e *Encoder) Encode(ctx context.Context, req models.EmbeddingsRequest) (models.EmbeddingsResult, error) {
	if len(req.Input) == 0 {
		return models.EmbeddingsResult{Model: e.modelID}, nil
	}
	params := openai.EmbeddingNewParams{Model: openai.EmbeddingModel(e.modelID)}
	if len(req.Input) == 1 {
		params.Input.OfString = param.NewOpt(req.Input[0])
	} else {
		params.Input.OfArrayOfStrings = append(params.Input.OfArrayOfStrings, req.Input...)
	}
	resp, err := e.client.Embeddings.New(ctx, params)
	if err != nil {
		return models.EmbeddingsResult{}, err
	}
	return convertEmbeddingsResponse(*resp, e.modelID), nil
}

func convertEmbeddingsResponse(resp openai.CreateEmbeddingResponse, modelID string) models.EmbeddingsResult {
	embeddings := make([]models.Embedding, 0, len(resp.Data))
	for _, item := range resp.Data {
		vec := make([]float32, len(item.Embedding))
		for i, v := range item.Embedding {
			vec[i] = float32(v)
		}
		embeddings = append(embeddings, models.Embedding{Index: int(item.Index), Vector: vec})
	}
	return models.EmbeddingsResult{
		Model:        modelID,
		Embeddings:   embeddings,
		PromptTokens: int32(resp.Usage.PromptTokens),
	}
}

// ModelID reports the configured model name.
func (e *Encoder) ModelID() string { return e.modelID }

// Dimensions reports the configured output width.
func (e *Encoder) Dimensions() int { return e.dims }

// Health uses the Models API as a lightweight readiness probe.
func (e *Encoder) Health(ctx context.Context) error {
	_, err := e.client.Models.List(ctx)
	return err
}

// Close is a no-op; the underlying HTTP client holds no resources to release.
func (e *Encoder) Close() error { return nil }
