package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/FocuswithJustin/DataLens/core/value"
	"github.com/FocuswithJustin/DataLens/internal/logging"
)

// APIResponse is the envelope for all JSON responses.
type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
	Meta    *APIMeta  `json:"meta,omitempty"`
}

// APIError describes a failed request.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// APIMeta carries response metadata.
type APIMeta struct {
	Total     int    `json:"total"`
	Timestamp string `json:"timestamp"`
}

// ConvertRequest is the POST /api/v1/convert payload.
type ConvertRequest struct {
	Input string `json:"input"`
	// Formats optionally restricts interpretation to the named
	// providers (IDs or aliases).
	Formats []string `json:"formats,omitempty"`
}

// HealthInfo is the health check response.
type HealthInfo struct {
	Status  string `json:"status"`
	Uptime  string `json:"uptime"`
	Formats int    `json:"formats"`
}

var startTime = time.Now()

func respond(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respond(w, status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: message},
	})
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Endpoint not found")
		return
	}
	respond(w, http.StatusOK, map[string]any{
		"name": "DataLens API",
		"endpoints": []string{
			"GET /healthz",
			"POST /api/v1/convert",
			"GET /api/v1/formats",
			"WS /ws",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Only GET is allowed")
		return
	}
	respond(w, http.StatusOK, HealthInfo{
		Status:  "healthy",
		Uptime:  time.Since(startTime).String(),
		Formats: s.eng.Registry().Len(),
	})
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Only POST is allowed")
		return
	}

	var req ConvertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "request body is not valid JSON")
		return
	}
	if req.Input == "" {
		respondError(w, http.StatusBadRequest, "MISSING_PARAMS", "input is required")
		return
	}

	ctx, cancel := s.requestContext(r.Context())
	defer cancel()

	var results []value.Result
	if len(req.Formats) > 0 {
		results = s.eng.ConvertAllFiltered(ctx, req.Input, req.Formats)
	} else {
		results = s.eng.ConvertAll(ctx, req.Input)
	}
	logging.LoggerFromContext(r.Context()).Debug("convert_request",
		"input_len", len(req.Input), "interpretations", len(results))

	respond(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    results,
		Meta: &APIMeta{
			Total:     len(results),
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
	})
}

func (s *Server) handleFormats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Only GET is allowed")
		return
	}

	infos := s.eng.Registry().Infos()
	respond(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    infos,
		Meta: &APIMeta{
			Total:     len(infos),
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
	})
}
