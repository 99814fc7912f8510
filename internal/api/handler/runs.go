package handler

import (
	"net/http"

	"go-quality-pipeline/pkg/router"
)

// ListPipelineRuns returns the most recent runs, newest first
// @Summary List pipeline runs
// @Tags pipeline-runs
// @Produce json
// @Param limit query int false "Maximum number of runs" default(50)
// @Success 200 {array} model.PipelineRun
// @Router /pipeline-runs [get]
func (h *Handler) ListPipelineRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := h.store.ListRuns(r.Context(), queryLimit(r, 50, 1000))
	if err != nil {
		h.fail(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

// GetPipelineRun returns one run with its log trail
// @Summary Get pipeline run
// @Tags pipeline-runs
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} model.PipelineRun
// @Failure 404 {object} ErrorResponse "Pipeline run not found"
// @Router /pipeline-runs/{id} [get]
func (h *Handler) GetPipelineRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.store.GetRun(r.Context(), router.Param(r, 0))
	if err != nil {
		h.fail(w, r, err, "Pipeline run not found")
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// ListQualityResults returns the most recent quality results, newest first
// @Summary List quality results
// @Tags quality
// @Produce json
// @Param limit query int false "Maximum number of results" default(100)
// @Success 200 {array} model.QualityResult
// @Router /quality-results [get]
func (h *Handler) ListQualityResults(w http.ResponseWriter, r *http.Request) {
	results, err := h.store.ListQualityResults(r.Context(), queryLimit(r, 100, 1000))
	if err != nil {
		h.fail(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, results)
}
