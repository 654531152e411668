package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askhub-ai/askhub/internal/core/domain"
	"github.com/askhub-ai/askhub/internal/core/ports/driven"
)

// fakeLLM records the conversation it was asked to complete.
type fakeLLM struct {
	reply    string
	err      error
	messages []driven.ChatMessage
	opts     driven.ChatOptions
	calls    int
}

func (l *fakeLLM) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	l.calls++
	l.messages = messages
	l.opts = opts
	if l.err != nil {
		return "", l.err
	}
	return l.reply, nil
}

func newAnswerFixture(cfg AnswerConfig, matches []domain.Match) (*AnswerService, *fakeIndex, *fakeLLM) {
	index := &fakeIndex{matches: matches}
	llm := &fakeLLM{reply: "The answer."}
	return NewAnswerService(cfg, &fakeEmbedder{}, index, llm), index, llm
}

func TestAnswer_EmptyQuery(t *testing.T) {
	svc, index, llm := newAnswerFixture(AnswerConfig{TopK: 5}, nil)

	for _, q := range []string{"", "   ", "\n\t"} {
		_, _, err := svc.Answer(context.Background(), q)
		assert.ErrorIs(t, err, domain.ErrEmptyQuery)
	}
	assert.Zero(t, index.queryCalls)
	assert.Zero(t, llm.calls)
}

func TestAnswer_GroundedPrompt(t *testing.T) {
	matches := []domain.Match{
		{Score: 0.9, Title: "Biography", Text: "Born in 1970."},
		{Score: 0.8, Title: "Career", Text: "Founded the firm in 2001."},
	}
	svc, index, llm := newAnswerFixture(AnswerConfig{TopK: 3}, matches)

	answer, got, err := svc.Answer(context.Background(), "  When was he born?  ")
	require.NoError(t, err)
	assert.Equal(t, "The answer.", answer)
	assert.Equal(t, matches, got)
	assert.Equal(t, 3, index.lastTopK)

	require.Len(t, llm.messages, 2)
	assert.Equal(t, "system", llm.messages[0].Role)
	assert.Contains(t, llm.messages[0].Content, "only the provided context")

	user := llm.messages[1].Content
	assert.True(t, strings.HasPrefix(user, "Context:\n"))
	assert.Contains(t, user, "[Biography]\nBorn in 1970.")
	assert.Contains(t, user, "\n\n---\n\n[Career]\nFounded the firm in 2001.")
	assert.Contains(t, user, "Question: When was he born?\n")

	assert.Equal(t, 0.2, llm.opts.Temperature)
	assert.Equal(t, 600, llm.opts.MaxTokens)
}

func TestAnswer_TrimsReply(t *testing.T) {
	svc, _, llm := newAnswerFixture(AnswerConfig{}, nil)
	llm.reply = "\n  Padded reply.  \n"

	answer, _, err := svc.Answer(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, "Padded reply.", answer)
}

func TestAnswer_LLMFailure(t *testing.T) {
	svc, _, llm := newAnswerFixture(AnswerConfig{}, nil)
	llm.err = errors.New("upstream down")

	_, _, err := svc.Answer(context.Background(), "q")
	assert.Error(t, err)
}

func TestRetrieve_MinScoreFilter(t *testing.T) {
	matches := []domain.Match{
		{Score: 0.91, Title: "a"},
		{Score: 0.85, Title: "b"},
		{Score: 0.40, Title: "c"},
	}
	svc, _, _ := newAnswerFixture(AnswerConfig{TopK: 5, MinScore: 0.5}, matches)

	got, err := svc.Retrieve(context.Background(), "q", 5)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Title)
	assert.Equal(t, "b", got[1].Title)
}

func TestRetrieve_ZeroMinScoreKeepsAll(t *testing.T) {
	matches := []domain.Match{{Score: 0.01, Title: "low"}}
	svc, _, _ := newAnswerFixture(AnswerConfig{TopK: 5}, matches)

	got, err := svc.Retrieve(context.Background(), "q", 5)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestRetrieve_DefaultTopK(t *testing.T) {
	svc, index, _ := newAnswerFixture(AnswerConfig{TopK: 7}, nil)

	_, err := svc.Retrieve(context.Background(), "q", 0)
	require.NoError(t, err)
	assert.Equal(t, 7, index.lastTopK)
}

func TestRetrieve_QueryFailure(t *testing.T) {
	svc, index, _ := newAnswerFixture(AnswerConfig{}, nil)
	index.queryErr = errors.New("index offline")

	_, err := svc.Retrieve(context.Background(), "q", 3)
	assert.Error(t, err)
}
