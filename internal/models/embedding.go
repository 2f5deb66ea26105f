package models

// EmbeddingsRequest is the backend-facing encode request for one batch of
// texts. Input order is significant and backends must account for every
// element exactly once.
type EmbeddingsRequest struct {
	Input []string
}

// Embedding is a single encoded vector and its position within the batch.
type Embedding struct {
	Index  int
	Vector []float32
}

// EmbeddingsResult carries the encoded batch returned by a backend. Token
// accounting is zero for backends that do not report it.
type EmbeddingsResult struct {
	Model        string
	Embeddings   []Embedding
	PromptTokens int32
}
