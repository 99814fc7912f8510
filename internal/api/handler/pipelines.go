package handler

import (
	"errors"
	"net/http"
	"strings"

	"go-quality-pipeline/internal/model"
	"go-quality-pipeline/internal/store"
	"go-quality-pipeline/pkg/router"

	"go.uber.org/zap"
)

// CreatePipeline creates a new data pipeline in draft status
// @Summary Create a new pipeline
// @Description Create a pipeline definition bound to a data source
// @Tags pipelines
// @Accept json
// @Produce json
// @Param pipeline body model.PipelineCreate true "Pipeline configuration"
// @Success 200 {object} model.Pipeline
// @Failure 400 {object} ErrorResponse "Invalid request payload"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /pipelines [post]
func (h *Handler) CreatePipeline(w http.ResponseWriter, r *http.Request) {
	var in model.PipelineCreate
	if err := decodeBody(w, r, &in); err != nil {
		h.fail(w, r, err, "")
		return
	}
	if strings.TrimSpace(in.Name) == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	p, err := h.store.CreatePipeline(r.Context(), in)
	if err != nil {
		h.fail(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// ListPipelines retrieves all pipelines
// @Summary List all pipelines
// @Tags pipelines
// @Produce json
// @Success 200 {array} model.Pipeline
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /pipelines [get]
func (h *Handler) ListPipelines(w http.ResponseWriter, r *http.Request) {
	pipelines, err := h.store.ListPipelines(r.Context())
	if err != nil {
		h.fail(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, pipelines)
}

// GetPipeline retrieves a specific pipeline
// @Summary Get pipeline
// @Tags pipelines
// @Produce json
// @Param id path string true "Pipeline ID"
// @Success 200 {object} model.Pipeline
// @Failure 404 {object} ErrorResponse "Pipeline not found"
// @Router /pipelines/{id} [get]
func (h *Handler) GetPipeline(w http.ResponseWriter, r *http.Request) {
	p, err := h.store.GetPipeline(r.Context(), router.Param(r, 0))
	if err != nil {
		h.fail(w, r, err, "Pipeline not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// UpdatePipeline applies a partial update to a pipeline
// @Summary Update pipeline
// @Description Sets name, description, source_id, transformations, schedule or status. Other keys are ignored.
// @Tags pipelines
// @Accept json
// @Produce json
// @Param id path string true "Pipeline ID"
// @Param updates body map[string]interface{} true "Fields to update"
// @Success 200 {object} model.Pipeline
// @Failure 400 {object} ErrorResponse "Invalid request payload"
// @Failure 404 {object} ErrorResponse "Pipeline not found"
// @Router /pipelines/{id} [put]
func (h *Handler) UpdatePipeline(w http.ResponseWriter, r *http.Request) {
	var patch map[string]interface{}
	if err := decodeBody(w, r, &patch); err != nil {
		h.fail(w, r, err, "")
		return
	}
	p, err := h.store.UpdatePipeline(r.Context(), router.Param(r, 0), patch)
	if err != nil {
		h.fail(w, r, err, "Pipeline not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// DeletePipeline removes a pipeline; its runs are kept
// @Summary Delete pipeline
// @Tags pipelines
// @Produce json
// @Param id path string true "Pipeline ID"
// @Success 200 {object} MessageResponse
// @Failure 404 {object} ErrorResponse "Pipeline not found"
// @Router /pipelines/{id} [delete]
func (h *Handler) DeletePipeline(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeletePipeline(r.Context(), router.Param(r, 0)); err != nil {
		h.fail(w, r, err, "Pipeline not found")
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Pipeline deleted successfully"})
}

// ExecutePipeline runs a pipeline synchronously and returns the run record
// @Summary Execute pipeline
// @Description Ingests from the pipeline's source, applies its transformations, runs the active quality rules and stores the run. A failed run is still returned with status 200.
// @Tags pipelines
// @Produce json
// @Param id path string true "Pipeline ID"
// @Success 200 {object} model.PipelineRun
// @Failure 404 {object} ErrorResponse "Pipeline not found"
// @Failure 500 {object} ErrorResponse "Run could not be saved"
// @Router /pipelines/{id}/execute [post]
func (h *Handler) ExecutePipeline(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p, err := h.store.GetPipeline(ctx, router.Param(r, 0))
	if err != nil {
		h.fail(w, r, err, "Pipeline not found")
		return
	}

	// A dangling source_id still runs, against a bare source.
	src := model.DataSource{ID: p.SourceID}
	if found, err := h.store.GetDataSource(ctx, p.SourceID); err == nil {
		src = *found
	} else if !errors.Is(err, store.ErrNotFound) {
		h.fail(w, r, err, "")
		return
	}

	run, err := h.runner.Run(ctx, *p, src)
	if err != nil {
		h.fail(w, r, err, "")
		return
	}
	h.logger.Info("pipeline executed",
		zap.String("pipeline_id", p.ID),
		zap.String("run_id", run.ID),
		zap.String("status", run.Status),
	)
	writeJSON(w, http.StatusOK, run)
}
