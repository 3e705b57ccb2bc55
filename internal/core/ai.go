package core

import "context"

// EmbeddingProvider turns a batch of texts into one vector per text, same order.
type EmbeddingProvider interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}
