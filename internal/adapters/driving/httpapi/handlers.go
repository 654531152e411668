package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/askhub-ai/askhub/internal/core/domain"
	"github.com/askhub-ai/askhub/internal/logger"
)

type askRequest struct {
	Text string `json:"text"`
}

type retrievedMatch struct {
	Score  float64 `json:"score"`
	Title  string  `json:"title"`
	Source string  `json:"source"`
	Text   string  `json:"text"`
}

type askResponse struct {
	Query     string           `json:"query"`
	Answer    string           `json:"answer"`
	Retrieved []retrievedMatch `json:"retrieved"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"app":    s.cfg.AppName,
	})
}

// handleSanity reports which external collaborators are configured,
// without calling any of them.
func (s *Server) handleSanity(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"openai_configured":   s.cfg.OpenAIConfigured,
		"pinecone_configured": s.cfg.PineconeConfigured,
		"drive_configured":    s.cfg.DriveConfigured,
		"embed_model":         s.cfg.EmbedModel,
		"pinecone_index":      s.cfg.PineconeIndex,
	})
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		err = fmt.Errorf("%w: malformed JSON body", domain.ErrInvalidInput)
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	answer, matches, err := s.answerer.Answer(r.Context(), req.Text)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyQuery) {
			respondError(w, http.StatusBadRequest, "question text must not be empty")
			return
		}
		logger.Error("http: /ask failed: %v", err)
		respondError(w, http.StatusBadGateway, "failed to answer the question")
		return
	}

	retrieved := make([]retrievedMatch, 0, len(matches))
	for _, m := range matches {
		retrieved = append(retrieved, retrievedMatch{
			Score:  m.Score,
			Title:  m.Title,
			Source: m.Source,
			Text:   m.Text,
		})
	}
	respondJSON(w, http.StatusOK, askResponse{
		Query:     req.Text,
		Answer:    answer,
		Retrieved: retrieved,
	})
}

func (s *Server) handleIngestRun(w http.ResponseWriter, r *http.Request) {
	summary, err := s.ingester.Run(r.Context())
	if err != nil {
		if errors.Is(err, domain.ErrIngestRunning) {
			respondError(w, http.StatusConflict, "an ingestion run is already in progress")
			return
		}
		logger.Error("http: /ingest/run failed: %v", err)
		respondError(w, http.StatusInternalServerError, "ingestion run failed")
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("http: encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
