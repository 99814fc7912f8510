package handler

import (
	"fmt"
	"net/http"

	"go-quality-pipeline/internal/pipeline"
)

// analyticsSamples is the number of recent processed samples a query reads
const analyticsSamples = 10

// AnalyticsQuery runs a query over recently processed samples
// @Summary Query processed data
// @Description select_all returns the combined records of the 10 most recent samples; group_by aggregates agg_field per group_field. At most 100 rows are returned.
// @Tags analytics
// @Accept json
// @Produce json
// @Param query body pipeline.AnalyticsQuery true "Query"
// @Success 200 {object} pipeline.QueryResult
// @Failure 400 {object} ErrorResponse "Query execution failed"
// @Router /analytics/query [post]
func (h *Handler) AnalyticsQuery(w http.ResponseWriter, r *http.Request) {
	var q pipeline.AnalyticsQuery
	if err := decodeBody(w, r, &q); err != nil {
		h.fail(w, r, err, "")
		return
	}
	samples, err := h.store.RecentSamples(r.Context(), analyticsSamples)
	if err != nil {
		h.fail(w, r, err, "")
		return
	}
	res, err := pipeline.ExecuteQuery(samples, q)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Query execution failed: %v", err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// DashboardStats returns the overview counters
// @Summary Dashboard statistics
// @Tags analytics
// @Produce json
// @Success 200 {object} model.DashboardStats
// @Router /dashboard/stats [get]
func (h *Handler) DashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.DashboardStats(r.Context())
	if err != nil {
		h.fail(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
