// Package encoder defines the embedding backend abstraction and the registry
// used to construct the configured backend at startup.
package encoder

import (
	"context"

	"github.com/embedworks/embedderd/internal/models"
)

// Encoder produces fixed-length embedding vectors for batches of text.
// Implementations must account for every input exactly once and tag each
// vector with its batch index. Implementations are safe for concurrent use;
// backends with single-threaded runtimes serialize internally.
type Encoder interface {
	Encode(ctx context.Context, req models.EmbeddingsRequest) (models.EmbeddingsResult, error)
	ModelID() string
	Dimensions() int
	Health(ctx context.Context) error
	Close() error
}
