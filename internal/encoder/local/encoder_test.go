package local

import (
	"context"
	"strings"
	"testing"
)

func TestNewRejectsMissingModelName(t *testing.T) {
	_, err := New(context.Background(), Options{CacheDir: t.TempDir()})
	if err == nil || !strings.Contains(err.Error(), "model name") {
		t.Fatalf("expected model name error, got %v", err)
	}
}

func TestNewRejectsMissingCacheDir(t *testing.T) {
	_, err := New(context.Background(), Options{ModelName: "sentence-transformers/all-MiniLM-L6-v2"})
	if err == nil || !strings.Contains(err.Error(), "cache dir") {
		t.Fatalf("expected cache dir error, got %v", err)
	}
}

func TestNewHonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(ctx, Options{ModelName: "sentence-transformers/all-MiniLM-L6-v2", CacheDir: t.TempDir()})
	if err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestClosedEncoderRejectsEncode(t *testing.T) {
	enc := &Encoder{modelID: "m"}
	if err := enc.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := enc.run([]string{"x"}); err == nil || !strings.Contains(err.Error(), "closed") {
		t.Fatalf("expected closed error, got %v", err)
	}
}
