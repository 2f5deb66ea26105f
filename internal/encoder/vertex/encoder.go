// Package vertex adapts Vertex AI publisher text-embedding models to the
// encoder interface via the REST :predict endpoint.
package vertex

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/embedworks/embedderd/internal/models"
)

const cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

// Options configure the Vertex encoder.
type Options struct {
	ProjectID       string
	Location        string
	Publisher       string
	Model           string
	Endpoint        string
	CredentialsJSON []byte
	Dimensions      int
	// HTTPClient overrides the OAuth client; used by tests.
	HTTPClient *http.Client
}

// Encoder calls a publisher text-embedding model through :predict.
type Encoder struct {
	client   *http.Client
	modelID  string
	dims     int
	baseURL  string
	embedURL string
}

// New creates a Vertex encoder using service-account credentials.
func New(ctx context.Context, opts Options) (*Encoder, error) {
	if opts.ProjectID == "" {
		return nil, errors.New("vertex: project id required")
	}
	if opts.Location == "" {
		return nil, errors.New("vertex: location required")
	}
	if opts.Model == "" {
		return nil, errors.New("vertex: model id required")
	}
	if len(opts.CredentialsJSON) == 0 && opts.HTTPClient == nil {
		return nil, errors.New("vertex: credentials json required")
	}

	publisher := strings.TrimSpace(opts.Publisher)
	if publisher == "" {
		publisher = "google"
	}

	base := strings.TrimSpace(opts.Endpoint)
	if base == "" {
		base = fmt.Sprintf("https://%s-aiplatform.googleapis.com/v1/projects/%s/locations/%s/publishers/%s/models/%s",
			opts.Location, opts.ProjectID, opts.Location, publisher, opts.Model)
	}
	base = strings.TrimSuffix(base, ":predict")
	base = strings.TrimSuffix(base, "/")

	httpClient := opts.HTTPClient
	if httpClient == nil {
		creds, err := google.CredentialsFromJSON(ctx, opts.CredentialsJSON, cloudPlatformScope)
		if err != nil {
			return nil, fmt.Errorf("vertex: load credentials: %w", err)
		}
		httpClient = oauth2.NewClient(ctx, creds.TokenSource)
	}

	return &Encoder{
		client:   httpClient,
		modelID:  opts.Model,
		dims:     opts.Dimensions,
		baseURL:  base,
		embedURL: base + ":predict",
	}, nil
}

// Encode sends the whole batch as a single predict call; predictions come
// back in instance order.
func (e *Encoder) Encode(ctx context.Context, req models.EmbeddingsRequest) (models.EmbeddingsResult, error) {
	if len(req.Input) == 0 {
		return models.EmbeddingsResult{Model: e.modelID}, nil
	}

	payload := vertexPredictRequest{Instances: make([]vertexPredictInstance, 0, len(req.Input))}
	for _, text := range req.Input {
		payload.Instances = append(payload.Instances, vertexPredictInstance{Content: text})
	}

	var resp vertexPredictResponse
	if err := e.postJSON(ctx, e.embedURL, payload, &resp); err != nil {
		return models.EmbeddingsResult{}, err
	}
	return convertPredictResponse(resp, e.modelID, len(req.Input))
}

func convertPredictResponse(v vertexPredictResponse, modelID string, want int) (models.EmbeddingsResult, error) {
	if len(v.Predictions) == 0 {
		return models.EmbeddingsResult{}, errors.New("vertex embeddings response empty")
	}
	if len(v.Predictions) != want {
		return models.EmbeddingsResult{}, fmt.Errorf("vertex returned %d predictions for %d instances", len(v.Predictions), want)
	}
	embeddings := make([]models.Embedding, 0, len(v.Predictions))
	for idx, pred := range v.Predictions {
		values := pred.vector()
		if len(values) == 0 {
			return models.EmbeddingsResult{}, fmt.Errorf("vertex prediction %d has no values", idx)
		}
		vec := make([]float32, len(values))
		for i, val := range values {
			vec[i] = float32(val)
		}
		embeddings = append(embeddings, models.Embedding{Index: idx, Vector: vec})
	}
	return models.EmbeddingsResult{Model: modelID, Embeddings: embeddings}, nil
}

// ModelID reports the configured model id.
func (e *Encoder) ModelID() string { return e.modelID }

// Dimensions reports the configured output width.
func (e *Encoder) Dimensions() int { return e.dims }

// Health probes the model endpoint; only 5xx responses count as failures
// since auth errors still prove the endpoint is reachable.
func (e *Encoder) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.baseURL, nil)
	if err != nil {
		return err
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 500 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("vertex health check status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}

// Close is a no-op; the OAuth client holds no resources to release.
func (e *Encoder) Close() error { return nil }

func (e *Encoder) postJSON(ctx context.Context, url string, payload any, out any) error {
	resp, err := e.post(ctx, url, payload)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("vertex decode response: %w", err)
	}
	return nil
}

func (e *Encoder) post(ctx context.Context, url string, payload any) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("vertex encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		return nil, decodeAPIError(resp)
	}
	return resp, nil
}
