package llm

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/markdave123-py/contexta-ingest/internal/core"
)

// OpenAIEmbedder talks to any OpenAI-compatible embeddings endpoint
// (OpenAI, Ollama, vLLM, LM Studio) through langchaingo.
type OpenAIEmbedder struct {
	embedder embeddings.Embedder
	logger   *slog.Logger
}

// NewOpenAIEmbedder builds the client. An empty token is sent as "none" so local
// servers that skip authentication still accept the request.
func NewOpenAIEmbedder(baseURL, token, modelName string, batchSize int) (*OpenAIEmbedder, error) {
	if token == "" {
		token = "none"
	}
	opts := []openai.Option{
		openai.WithToken(token),
		openai.WithEmbeddingModel(modelName),
	}
	if baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}
	client, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("openai client: %w", err)
	}

	embOpts := []embeddings.Option{embeddings.WithStripNewLines(true)}
	if batchSize > 0 {
		embOpts = append(embOpts, embeddings.WithBatchSize(batchSize))
	}
	emb, err := embeddings.NewEmbedder(client, embOpts...)
	if err != nil {
		return nil, fmt.Errorf("openai embedder: %w", err)
	}

	return &OpenAIEmbedder{
		embedder: emb,
		logger:   slog.Default().With("component", "openai-embedder"),
	}, nil
}

// EmbedTexts generates vector embeddings for multiple text strings in a batch.
func (e *OpenAIEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	e.logger.Debug("embedding batch", "count", len(texts))

	vecs, err := e.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		e.logger.Error("failed to generate embeddings", "count", len(texts), "err", err)
		return nil, fmt.Errorf("openai embed: %w", err)
	}
	return vecs, nil
}

var _ core.EmbeddingProvider = (*OpenAIEmbedder)(nil)
