package textproc

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/pkoukk/tiktoken-go"

	"github.com/askhub-ai/askhub/internal/core/domain"
)

// Default chunking parameters.
const (
	// DefaultRoughSize is the target size of a rough piece in characters.
	DefaultRoughSize = 1200
	// DefaultRoughOverlap is the character overlap between rough pieces.
	DefaultRoughOverlap = 200
	// DefaultMaxTokens is the maximum tokens per emitted chunk.
	DefaultMaxTokens = 500
	// DefaultTokenOverlap is the token overlap between windows of an
	// oversized piece.
	DefaultTokenOverlap = 50
	// DefaultEncoding is the embedding model's token scheme.
	DefaultEncoding = "cl100k_base"
)

// roughSeparators is the prioritised separator list for the first
// stage: paragraph break, line break, space, character boundary.
var roughSeparators = []string{"\n\n", "\n", " ", ""}

// ChunkerConfig holds chunking parameters. Zero values select the
// defaults above.
type ChunkerConfig struct {
	RoughSize    int
	RoughOverlap int
	MaxTokens    int
	TokenOverlap int
	Encoding     string
}

// Chunker splits cleaned text into chunks in two stages: a
// character-based recursive split into manageable pieces, then a
// token-accurate re-split of any piece exceeding the token bound.
type Chunker struct {
	roughSize    int
	roughOverlap int
	maxTokens    int
	tokenOverlap int
	enc          *tiktoken.Tiktoken
}

// NewChunker creates a chunker for the given configuration.
func NewChunker(cfg ChunkerConfig) (*Chunker, error) {
	if cfg.RoughSize <= 0 {
		cfg.RoughSize = DefaultRoughSize
	}
	if cfg.RoughOverlap < 0 || cfg.RoughOverlap >= cfg.RoughSize {
		cfg.RoughOverlap = DefaultRoughOverlap
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.TokenOverlap < 0 || cfg.TokenOverlap >= cfg.MaxTokens {
		cfg.TokenOverlap = DefaultTokenOverlap
	}
	if cfg.Encoding == "" {
		cfg.Encoding = DefaultEncoding
	}

	enc, err := tiktoken.GetEncoding(cfg.Encoding)
	if err != nil {
		return nil, fmt.Errorf("get encoding %s: %w", cfg.Encoding, err)
	}

	return &Chunker{
		roughSize:    cfg.RoughSize,
		roughOverlap: cfg.RoughOverlap,
		maxTokens:    cfg.MaxTokens,
		tokenOverlap: cfg.TokenOverlap,
		enc:          enc,
	}, nil
}

// Split produces an ordered sequence of chunks covering the whole
// input. Every chunk gets a fresh unique identifier, its own token
// count and the supplied source/title metadata. Empty input yields
// zero chunks.
func (c *Chunker) Split(text, source, title string) []domain.Chunk {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var chunks []domain.Chunk
	for _, piece := range c.roughSplit(text, roughSeparators) {
		for _, w := range c.tokenWindows(piece) {
			chunks = append(chunks, domain.Chunk{
				ID:     uuid.New().String(),
				Text:   w.text,
				Source: source,
				Title:  title,
				Tokens: w.tokens,
			})
		}
	}
	return chunks
}

type window struct {
	text   string
	tokens int
}

// tokenWindows enforces the token bound on one rough piece. A piece
// within the bound is emitted unchanged; an oversized piece is
// re-split into fixed-size token windows with a fixed step, the final
// window shorter than the nominal size (no padding).
func (c *Chunker) tokenWindows(piece string) []window {
	tokens := c.enc.Encode(piece, nil, nil)
	if len(tokens) <= c.maxTokens {
		return []window{{text: strings.TrimSpace(piece), tokens: len(tokens)}}
	}

	step := c.maxTokens - c.tokenOverlap
	windows := make([]window, 0, (len(tokens)-c.tokenOverlap+step-1)/step)
	for start := 0; ; start += step {
		end := start + c.maxTokens
		if end > len(tokens) {
			end = len(tokens)
		}
		win := tokens[start:end]
		windows = append(windows, window{
			text:   strings.TrimSpace(c.enc.Decode(win)),
			tokens: len(win),
		})
		// The last window absorbs the remainder; a further window
		// would contain nothing but overlap.
		if end == len(tokens) {
			break
		}
	}
	return windows
}

// roughSplit recursively partitions text on the highest-priority
// separator present, merging the resulting splits back into pieces
// of roughly roughSize characters with roughOverlap carried between
// adjacent pieces.
func (c *Chunker) roughSplit(text string, seps []string) []string {
	sep := seps[len(seps)-1]
	var rest []string
	for i, s := range seps {
		if s == "" || strings.Contains(text, s) {
			sep = s
			rest = seps[i+1:]
			break
		}
	}

	var final []string
	var pending []string
	for _, piece := range splitOn(text, sep) {
		if len(piece) < c.roughSize {
			pending = append(pending, piece)
			continue
		}
		if len(pending) > 0 {
			final = append(final, c.mergeSplits(pending, sep)...)
			pending = nil
		}
		if len(rest) == 0 {
			final = append(final, piece)
		} else {
			final = append(final, c.roughSplit(piece, rest)...)
		}
	}
	if len(pending) > 0 {
		final = append(final, c.mergeSplits(pending, sep)...)
	}
	return final
}

// splitOn splits text on sep, dropping empty fragments. The empty
// separator splits into individual characters as the last resort.
func splitOn(text, sep string) []string {
	if sep == "" {
		out := make([]string, 0, len(text))
		for _, r := range text {
			out = append(out, string(r))
		}
		return out
	}

	parts := strings.Split(text, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// mergeSplits greedily joins splits into pieces no larger than
// roughSize, carrying up to roughOverlap characters of trailing
// splits into the next piece.
func (c *Chunker) mergeSplits(splits []string, sep string) []string {
	sepLen := len(sep)

	var docs []string
	var current []string
	total := 0

	for _, s := range splits {
		l := len(s)
		joined := total + l
		if len(current) > 0 {
			joined += sepLen
		}
		if joined > c.roughSize && len(current) > 0 {
			if doc := strings.TrimSpace(strings.Join(current, sep)); doc != "" {
				docs = append(docs, doc)
			}
			// Drop leading splits until what remains fits in the
			// overlap budget alongside the incoming split.
			for len(current) > 0 && (total > c.roughOverlap ||
				(total+l+sepLen > c.roughSize && total > 0)) {
				total -= len(current[0])
				if len(current) > 1 {
					total -= sepLen
				}
				current = current[1:]
			}
		}
		current = append(current, s)
		total += l
		if len(current) > 1 {
			total += sepLen
		}
	}

	if doc := strings.TrimSpace(strings.Join(current, sep)); doc != "" {
		docs = append(docs, doc)
	}
	return docs
}
