// Package handler implements the HTTP endpoints under /api.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"go-quality-pipeline/internal/model"
	"go-quality-pipeline/internal/pipeline"
	"go-quality-pipeline/internal/seed"
	"go-quality-pipeline/internal/store"

	"go.uber.org/zap"
)

// maxBodyBytes bounds request bodies
const maxBodyBytes = 1 << 20

// Runner executes a pipeline against its source
type Runner interface {
	Run(ctx context.Context, p model.Pipeline, src model.DataSource) (*model.PipelineRun, error)
}

// DefinitionsFunc supplies the definitions installed by initialize-sample-data
type DefinitionsFunc func() (*store.Definitions, error)

// Handler serves the API. It holds no request state and is safe for
// concurrent use.
type Handler struct {
	store       *store.Store
	runner      Runner
	definitions DefinitionsFunc
	logger      *zap.Logger
}

// New creates a Handler. A nil definitions func installs the built-in samples.
func New(s *store.Store, runner Runner, definitions DefinitionsFunc, logger *zap.Logger) *Handler {
	if definitions == nil {
		definitions = func() (*store.Definitions, error) { return seed.Defaults(), nil }
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		store:       s,
		runner:      runner,
		definitions: definitions,
		logger:      logger.Named("api"),
	}
}

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// MessageResponse acknowledges an action
type MessageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, ErrorResponse{Detail: detail})
}

// fail maps err onto a response. notFound is the detail used for
// store.ErrNotFound.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error, notFound string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, notFound)
	case errors.Is(err, store.ErrInvalid), errors.Is(err, pipeline.ErrBadQuery):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: invalid JSON payload: %v", store.ErrInvalid, err)
	}
	return nil
}

// queryLimit reads ?limit=, falling back to def and clamping to [1, max]
func queryLimit(r *http.Request, def, max int) int {
	n, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil {
		return def
	}
	if n < 1 {
		return 1
	}
	if n > max {
		return max
	}
	return n
}

// Root returns the API banner
// @Summary API banner
// @Tags meta
// @Produce json
// @Success 200 {object} MessageResponse
// @Router / [get]
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Data Pipeline Engineering Platform API"})
}
