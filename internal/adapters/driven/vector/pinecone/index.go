// Package pinecone implements the VectorIndex port against the
// Pinecone data-plane REST API.
package pinecone

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/askhub-ai/askhub/internal/core/domain"
	"github.com/askhub-ai/askhub/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// DefaultTimeout is the default request timeout.
const DefaultTimeout = 60 * time.Second

// Config holds configuration for the Pinecone index client.
type Config struct {
	// APIKey is the Pinecone API key (required).
	APIKey string

	// IndexHost is the index's data-plane host, e.g.
	// https://my-index-abc123.svc.us-east-1-aws.pinecone.io (required).
	IndexHost string

	// Timeout is the request timeout (default: 60s).
	Timeout time.Duration
}

// Index talks to one Pinecone index over its data-plane API.
type Index struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

// vectorRecord is the Pinecone vector wire format.
type vectorRecord struct {
	ID       string         `json:"id"`
	Values   []float32      `json:"values"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// upsertRequest is the /vectors/upsert request format.
type upsertRequest struct {
	Vectors []vectorRecord `json:"vectors"`
}

// queryRequest is the /query request format.
type queryRequest struct {
	Vector          []float32 `json:"vector"`
	TopK            int       `json:"topK"`
	IncludeMetadata bool      `json:"includeMetadata"`
}

// queryResponse is the /query response format.
type queryResponse struct {
	Matches []struct {
		ID       string         `json:"id"`
		Score    float64        `json:"score"`
		Metadata map[string]any `json:"metadata"`
	} `json:"matches"`
}

// deleteRequest is the /vectors/delete request format.
type deleteRequest struct {
	Filter map[string]any `json:"filter"`
}

// apiError is the Pinecone error response format.
type apiError struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// New creates a new Pinecone index client.
func New(cfg Config) (*Index, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("pinecone: API key is required")
	}
	if cfg.IndexHost == "" {
		return nil, fmt.Errorf("pinecone: index host is required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	host := cfg.IndexHost
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "https://" + host
	}

	return &Index{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: strings.TrimRight(host, "/"),
		apiKey:  cfg.APIKey,
	}, nil
}

// Upsert inserts or replaces vectors in the index.
func (x *Index) Upsert(ctx context.Context, vectors []domain.Vector) error {
	if len(vectors) == 0 {
		return nil
	}

	records := make([]vectorRecord, len(vectors))
	for i, v := range vectors {
		records[i] = vectorRecord{
			ID:       v.ID,
			Values:   v.Values,
			Metadata: v.Metadata,
		}
	}

	return x.post(ctx, "/vectors/upsert", upsertRequest{Vectors: records}, nil)
}

// Query returns the topK nearest matches with metadata, in the score
// order supplied by the index (descending similarity).
func (x *Index) Query(ctx context.Context, vector []float32, topK int) ([]domain.Match, error) {
	var resp queryResponse
	err := x.post(ctx, "/query", queryRequest{
		Vector:          vector,
		TopK:            topK,
		IncludeMetadata: true,
	}, &resp)
	if err != nil {
		return nil, err
	}

	matches := make([]domain.Match, 0, len(resp.Matches))
	for _, m := range resp.Matches {
		matches = append(matches, domain.Match{
			Score:  m.Score,
			Title:  metaString(m.Metadata, "title"),
			Source: metaString(m.Metadata, "source"),
			Text:   metaString(m.Metadata, "text"),
			FileID: metaString(m.Metadata, "file_id"),
		})
	}
	return matches, nil
}

// DeleteByFile removes every vector carrying the given file_id in
// its metadata.
func (x *Index) DeleteByFile(ctx context.Context, fileID string) error {
	return x.post(ctx, "/vectors/delete", deleteRequest{
		Filter: map[string]any{
			"file_id": map[string]any{"$eq": fileID},
		},
	}, nil)
}

// post sends a JSON request to the index and decodes the response
// into out when out is non-nil.
func (x *Index) post(ctx context.Context, path string, payload any, out any) error {
	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		x.baseURL+path,
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Api-Key", x.apiKey)

	resp, err := x.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Message != "" {
			return fmt.Errorf("pinecone error (status %d): %s", resp.StatusCode, apiErr.Message)
		}
		return fmt.Errorf("pinecone error (status %d): %s", resp.StatusCode, string(body))
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func metaString(md map[string]any, key string) string {
	if md == nil {
		return ""
	}
	s, _ := md[key].(string)
	return s
}
