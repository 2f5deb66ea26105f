package openai

import (
	"strings"
	"testing"

	"github.com/openai/openai-go/v3"

	"github.com/embedworks/embedderd/internal/encoder/fixtures"
)

func TestNewValidation(t *testing.T) {
	tests := map[string]struct {
		opts    Options
		wantErr string
	}{
		"missing api key": {
			opts:    Options{Model: "text-embedding-3-small"},
			wantErr: "api key",
		},
		"missing model": {
			opts:    Options{APIKey: "sk-test"},
			wantErr: "model",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := New(tc.opts)
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestNewDefaults(t *testing.T) {
	enc, err := New(Options{APIKey: "sk-test", Model: "text-embedding-3-small", Dimensions: 1536})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if enc.ModelID() != "text-embedding-3-small" {
		t.Fatalf("unexpected model id %q", enc.ModelID())
	}
	if enc.Dimensions() != 1536 {
		t.Fatalf("unexpected dimensions %d", enc.Dimensions())
	}
}

func TestConvertEmbeddingsResponse(t *testing.T) {
	var resp openai.CreateEmbeddingResponse
	if err := fixtures.JSON("openai_embeddings.json", &resp); err != nil {
		t.Fatalf("load fixture: %v", err)
	}

	result := convertEmbeddingsResponse(resp, "text-embedding-3-small")

	if result.Model != "text-embedding-3-small" {
		t.Fatalf("unexpected model %q", result.Model)
	}
	if len(result.Embeddings) != 2 {
		t.Fatalf("expected 2 embeddings, got %d", len(result.Embeddings))
	}
	// The fixture lists index 1 first; conversion must preserve API indices.
	if result.Embeddings[0].Index != 1 || result.Embeddings[1].Index != 0 {
		t.Fatalf("indices not preserved: %+v", result.Embeddings)
	}
	if result.Embeddings[0].Vector[1] != 1.0 || result.Embeddings[1].Vector[0] != 1.0 {
		t.Fatalf("unexpected vector contents: %+v", result.Embeddings)
	}
	if result.PromptTokens != 8 {
		t.Fatalf("expected 8 prompt tokens, got %d", result.PromptTokens)
	}
}
