// Package bedrock adapts Amazon Bedrock Titan text embeddings to the encoder
// interface.
package bedrock

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"github.com/embedworks/embedderd/internal/models"
)

// Options controls how the Bedrock encoder is initialised.
type Options struct {
	Region          string
	Profile         string
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string

	ModelID    string
	Dimensions int32
	Normalize  bool
}

// Encoder invokes a Titan text-embedding model through the Bedrock runtime.
type Encoder struct {
	client    *bedrockruntime.Client
	stsClient *sts.Client
	opts      Options
}

// New creates a Bedrock encoder using the provided credentials/region.
func New(ctx context.Context, opts Options) (*Encoder, error) {
	if opts.Region == "" {
		return nil, errors.New("bedrock region required")
	}
	if opts.ModelID == "" {
		return nil, errors.New("bedrock model id required")
	}

	loadOpts := []func(*config.LoadOptions) error{
		config.WithRegion(opts.Region),
	}
	if opts.Profile != "" {
		loadOpts = append(loadOpts, config.WithSharedConfigProfile(opts.Profile))
	}
	if opts.AccessKeyID != "" && opts.SecretAccessKey != "" {
		staticProvider := credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, opts.SessionToken)
		loadOpts = append(loadOpts, config.WithCredentialsProvider(staticProvider))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	if awsCfg.Region == "" {
		awsCfg.Region = opts.Region
	}

	return &Encoder{
		client:    bedrockruntime.NewFromConfig(awsCfg),
		stsClient: sts.NewFromConfig(awsCfg),
		opts:      opts,
	}, nil
}

// Encode invokes the model once per text; Titan embeds a single input per call.
func (e *Encoder) Encode(ctx context.Context, req models.EmbeddingsRequest) (models.EmbeddingsResult, error) {
	if len(req.Input) == 0 {
		return models.EmbeddingsResult{Model: e.opts.ModelID}, nil
	}

	embeddings := make([]models.Embedding, 0, len(req.Input))
	var totalTokens int32

	for idx, text := range req.Input {
		// Titan rejects empty input text outright.
		if text == "" {
			return models.EmbeddingsResult{}, fmt.Errorf("input %d is empty", idx)
		}

		body := titanEmbedRequest{InputText: text}
		if e.opts.Dimensions > 0 {
			body.Dimensions = e.opts.Dimensions
		}
		if e.opts.Normalize {
			body.Normalize = aws.Bool(true)
		}

		raw, err := json.Marshal(body)
		if err != nil {
			return models.EmbeddingsResult{}, fmt.Errorf("encode titan request: %w", err)
		}

		invoke := &bedrockruntime.InvokeModelInput{
			ModelId:     aws.String(e.opts.ModelID),
			Body:        raw,
			ContentType: aws.String("application/json"),
			Accept:      aws.String("application/json"),
		}

		out, err := e.client.InvokeModel(ctx, invoke)
		if err != nil {
			return models.EmbeddingsResult{}, fmt.Errorf("invoke model for input %d: %w", idx, err)
		}

		vector, tokens, err := parseTitanEmbedding(out.Body)
		if err != nil {
			return models.EmbeddingsResult{}, err
		}

		embeddings = append(embeddings, models.Embedding{Index: idx, Vector: vector})
		totalTokens += tokens
	}

	return models.EmbeddingsResult{
		Model:        e.opts.ModelID,
		Embeddings:   embeddings,
		PromptTokens: totalTokens,
	}, nil
}

// ModelID reports the configured Bedrock model id.
func (e *Encoder) ModelID() string { return e.opts.ModelID }

// Dimensions reports the configured output width.
func (e *Encoder) Dimensions() int { return int(e.opts.Dimensions) }

// Health verifies the AWS credentials resolve (no inference cost).
func (e *Encoder) Health(ctx context.Context) error {
	if e.stsClient == nil {
		return errors.New("bedrock sts client not initialised")
	}
	_, err := e.stsClient.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	return err
}

// Close is a no-op; the SDK clients hold no resources to release.
func (e *Encoder) Close() error { return nil }

type titanEmbedRequest struct {
	InputText  string `json:"inputText"`
	Dimensions int32  `json:"dimensions,omitempty"`
	Normalize  *bool  `json:"normalize,omitempty"`
}

type titanEmbedResponse struct {
	Embedding           []float64 `json:"embedding"`
	InputTextTokenCount int32     `json:"inputTextTokenCount"`
}

type titanEmbedResponseAlt struct {
	Embeddings []struct {
		Values []float64 `json:"values"`
	} `json:"embeddings"`
	InputTokenCount int32 `json:"inputTextTokenCount"`
}

func parseTitanEmbedding(payload []byte) ([]float32, int32, error) {
	var primary titanEmbedResponse
	if err := json.Unmarshal(payload, &primary); err == nil && len(primary.Embedding) > 0 {
		return float64To32(primary.Embedding), primary.InputTextTokenCount, nil
	}

	var alt titanEmbedResponseAlt
	if err := json.Unmarshal(payload, &alt); err == nil && len(alt.Embeddings) > 0 {
		return float64To32(alt.Embeddings[0].Values), alt.InputTokenCount, nil
	}

	return nil, 0, errors.New("unexpected titan embedding response")
}

func float64To32(values []float64) []float32 {
	result := make([]float32, len(values))
	for i, v := range values {
		result[i] = float32(v)
	}
	return result
}
