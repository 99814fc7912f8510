package handler

import (
	"net/http"
	"strings"

	"go-quality-pipeline/internal/model"
)

// CreateDataSource registers a data source
// @Summary Create a data source
// @Tags data-sources
// @Accept json
// @Produce json
// @Param source body model.DataSourceCreate true "Data source"
// @Success 200 {object} model.DataSource
// @Failure 400 {object} ErrorResponse
// @Router /data-sources [post]
func (h *Handler) CreateDataSource(w http.ResponseWriter, r *http.Request) {
	var in model.DataSourceCreate
	if err := decodeBody(w, r, &in); err != nil {
		h.fail(w, r, err, "")
		return
	}
	if strings.TrimSpace(in.Name) == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	ds, err := h.store.CreateDataSource(r.Context(), in)
	if err != nil {
		h.fail(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, ds)
}

// ListDataSources returns every data source
// @Summary List data sources
// @Tags data-sources
// @Produce json
// @Success 200 {array} model.DataSource
// @Router /data-sources [get]
func (h *Handler) ListDataSources(w http.ResponseWriter, r *http.Request) {
	sources, err := h.store.ListDataSources(r.Context())
	if err != nil {
		h.fail(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, sources)
}

// InitializeSampleData replaces sources, pipelines and rules with the sample set
// @Summary Initialize sample data
// @Description Clears data sources, pipelines and quality rules and installs the sample definitions. Runs and results are kept.
// @Tags meta
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} ErrorResponse
// @Router /initialize-sample-data [post]
func (h *Handler) InitializeSampleData(w http.ResponseWriter, r *http.Request) {
	defs, err := h.definitions()
	if err != nil {
		h.fail(w, r, err, "")
		return
	}
	if err := h.store.ReplaceDefinitions(r.Context(), defs); err != nil {
		h.fail(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":   "Sample data initialized successfully",
		"sources":   len(defs.Sources),
		"pipelines": len(defs.Pipelines),
		"rules":     len(defs.Rules),
	})
}
