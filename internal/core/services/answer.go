package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/askhub-ai/askhub/internal/core/domain"
	"github.com/askhub-ai/askhub/internal/core/ports/driven"
	"github.com/askhub-ai/askhub/internal/core/ports/driving"
	"github.com/askhub-ai/askhub/internal/logger"
)

var _ driving.Answerer = (*AnswerService)(nil)

const answerSystemPrompt = `You are a helpful assistant that answers questions using only the provided context. If the context does not contain the information needed, say: "I don't have enough information in the knowledge base to answer that."`

// AnswerConfig holds retrieval settings.
type AnswerConfig struct {
	// TopK is how many matches to retrieve for each question.
	TopK int

	// MinScore drops matches scoring below it. Zero disables the
	// filter.
	MinScore float64
}

// AnswerService answers questions by retrieving the closest chunks
// from the vector index and handing them to the language model as
// grounding context.
type AnswerService struct {
	cfg      AnswerConfig
	embedder driven.EmbeddingService
	index    driven.VectorIndex
	llm      driven.LLMService
}

// NewAnswerService creates the answer composer.
func NewAnswerService(cfg AnswerConfig, embedder driven.EmbeddingService, index driven.VectorIndex, llm driven.LLMService) *AnswerService {
	if cfg.TopK <= 0 {
		cfg.TopK = 5
	}
	return &AnswerService{cfg: cfg, embedder: embedder, index: index, llm: llm}
}

// Retrieve embeds the query and returns the top matches in index
// order, dropping those below the configured minimum score.
func (s *AnswerService) Retrieve(ctx context.Context, query string, topK int) ([]domain.Match, error) {
	if topK <= 0 {
		topK = s.cfg.TopK
	}
	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	matches, err := s.index.Query(ctx, vector, topK)
	if err != nil {
		return nil, fmt.Errorf("query index: %w", err)
	}
	if s.cfg.MinScore <= 0 {
		return matches, nil
	}
	kept := matches[:0]
	for _, m := range matches {
		if m.Score >= s.cfg.MinScore {
			kept = append(kept, m)
		}
	}
	return kept, nil
}

// Answer retrieves context for the query and asks the language model
// for a grounded answer. A blank query yields domain.ErrEmptyQuery.
func (s *AnswerService) Answer(ctx context.Context, query string) (string, []domain.Match, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", nil, domain.ErrEmptyQuery
	}

	matches, err := s.Retrieve(ctx, query, s.cfg.TopK)
	if err != nil {
		return "", nil, err
	}
	logger.Debug("answer: %d match(es) retrieved for query", len(matches))

	messages := []driven.ChatMessage{
		{Role: "system", Content: answerSystemPrompt},
		{Role: "user", Content: buildUserMessage(query, matches)},
	}
	answer, err := s.llm.Chat(ctx, messages, driven.ChatOptions{
		Temperature: 0.2,
		MaxTokens:   600,
	})
	if err != nil {
		return "", nil, fmt.Errorf("chat completion: %w", err)
	}
	return strings.TrimSpace(answer), matches, nil
}

// buildUserMessage assembles the context blocks and the question into
// a single user message.
func buildUserMessage(query string, matches []domain.Match) string {
	blocks := make([]string, 0, len(matches))
	for _, m := range matches {
		blocks = append(blocks, fmt.Sprintf("[%s]\n%s", m.Title, m.Text))
	}
	return fmt.Sprintf("Context:\n%s\n\nQuestion: %s\nAnswer clearly and concisely.",
		strings.Join(blocks, "\n\n---\n\n"), query)
}
