// Package local runs sentence-embedding inference in-process through a hugot
// feature-extraction pipeline backed by an ONNX export of the model.
package local

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelines"

	"github.com/embedworks/embedderd/internal/models"
)

// Options configure the in-process encoder.
type Options struct {
	// ModelName is a Hugging Face repository id, e.g.
	// sentence-transformers/all-MiniLM-L6-v2.
	ModelName string
	// CacheDir is where downloaded model files are stored between runs.
	CacheDir string
}

// Encoder owns a hugot session and a single feature-extraction pipeline.
// The pipeline is not reentrant, so encode calls are serialized.
type Encoder struct {
	mu       sync.Mutex
	session  *hugot.Session
	pipeline *pipelines.FeatureExtractionPipeline
	modelID  string
	dims     int
}

// New downloads the model if needed, builds the pipeline, and runs a warmup
// encode so a broken runtime surfaces before the process starts serving.
func New(ctx context.Context, opts Options) (*Encoder, error) {
	if strings.TrimSpace(opts.ModelName) == "" {
		return nil, errors.New("local: model name required")
	}
	if strings.TrimSpace(opts.CacheDir) == "" {
		return nil, errors.New("local: cache dir required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	session, err := hugot.NewGoSession()
	if err != nil {
		return nil, fmt.Errorf("local: create session: %w", err)
	}

	modelPath, err := hugot.DownloadModel(opts.ModelName, opts.CacheDir, hugot.NewDownloadOptions())
	if err != nil {
		_ = session.Destroy()
		return nil, fmt.Errorf("local: fetch model %s: %w", opts.ModelName, err)
	}

	pipeline, err := hugot.NewPipeline(session, hugot.FeatureExtractionConfig{
		ModelPath: modelPath,
		Name:      "embedder",
	})
	if err != nil {
		_ = session.Destroy()
		return nil, fmt.Errorf("local: build pipeline: %w", err)
	}

	enc := &Encoder{session: session, pipeline: pipeline, modelID: opts.ModelName}

	// One warmup run pins the output width and proves the runtime works.
	vectors, err := enc.run([]string{"warmup"})
	if err != nil {
		_ = session.Destroy()
		return nil, fmt.Errorf("local: warmup encode: %w", err)
	}
	if len(vectors) != 1 || len(vectors[0]) == 0 {
		_ = session.Destroy()
		return nil, errors.New("local: warmup encode returned no embedding")
	}
	enc.dims = len(vectors[0])

	return enc, nil
}

// Encode runs the whole batch through the pipeline in one call. Cancellation
// is honored up to the point inference starts; the pipeline itself does not
// take a context.
func (e *Encoder) Encode(ctx context.Context, req models.EmbeddingsRequest) (models.EmbeddingsResult, error) {
	if len(req.Input) == 0 {
		return models.EmbeddingsResult{Model: e.modelID}, nil
	}
	if err := ctx.Err(); err != nil {
		return models.EmbeddingsResult{}, err
	}

	vectors, err := e.run(req.Input)
	if err != nil {
		return models.EmbeddingsResult{}, fmt.Errorf("run pipeline: %w", err)
	}
	if len(vectors) != len(req.Input) {
		return models.EmbeddingsResult{}, fmt.Errorf("pipeline returned %d embeddings for %d inputs", len(vectors), len(req.Input))
	}

	embeddings := make([]models.Embedding, len(vectors))
	for i, vec := range vectors {
		embeddings[i] = models.Embedding{Index: i, Vector: vec}
	}
	return models.EmbeddingsResult{Model: e.modelID, Embeddings: embeddings}, nil
}

func (e *Encoder) run(texts []string) ([][]float32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.pipeline == nil {
		return nil, errors.New("encoder closed")
	}
	output, err := e.pipeline.RunPipeline(texts)
	if err != nil {
		return nil, err
	}
	if output == nil {
		return nil, errors.New("pipeline returned no output")
	}
	return output.Embeddings, nil
}

// ModelID reports the configured model name.
func (e *Encoder) ModelID() string { return e.modelID }

// Dimensions reports the output width measured during warmup.
func (e *Encoder) Dimensions() int { return e.dims }

// Health runs a single short encode through the pipeline.
func (e *Encoder) Health(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := e.run([]string{"ping"})
	return err
}

// Close destroys the session; subsequent encode calls fail.
func (e *Encoder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == nil {
		return nil
	}
	err := e.session.Destroy()
	e.session = nil
	e.pipeline = nil
	return err
}
