package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"drivetest-quiz/internal/app"
	"drivetest-quiz/internal/domain"
	"go.uber.org/zap"
)

// ResultsHandler serves the last stored results summary.
type ResultsHandler struct {
	service *app.QuizService
	logger  *zap.Logger
}

func NewResultsHandler(service *app.QuizService, logger *zap.Logger) *ResultsHandler {
	return &ResultsHandler{service: service, logger: logger}
}

func (h *ResultsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeJSON(w, http.StatusMethodNotAllowed, errorPayload{Message: "method not allowed"})
		return
	}

	results, err := h.service.LatestResults(r.Context())
	if errors.Is(err, domain.ErrResultsNotFound) {
		writeJSON(w, http.StatusNotFound, errorPayload{Message: "no results"})
		return
	}
	if err != nil {
		h.logger.Error("load results", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorPayload{Message: "could not load results"})
		return
	}
	writeJSON(w, http.StatusOK, app.NewResultsView(results))
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
