package handler

import (
	"net/http"
	"strings"

	"go-quality-pipeline/internal/model"
	"go-quality-pipeline/pkg/router"
)

// CreateQualityRule creates an active quality rule
// @Summary Create a quality rule
// @Tags quality
// @Accept json
// @Produce json
// @Param rule body model.QualityRuleCreate true "Quality rule"
// @Success 200 {object} model.QualityRule
// @Failure 400 {object} ErrorResponse "Invalid request payload"
// @Router /quality-rules [post]
func (h *Handler) CreateQualityRule(w http.ResponseWriter, r *http.Request) {
	var in model.QualityRuleCreate
	if err := decodeBody(w, r, &in); err != nil {
		h.fail(w, r, err, "")
		return
	}
	if strings.TrimSpace(in.Name) == "" || in.RuleType == "" {
		writeError(w, http.StatusBadRequest, "name and rule_type are required")
		return
	}
	rule, err := h.store.CreateQualityRule(r.Context(), in)
	if err != nil {
		h.fail(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, rule)
}

// ListQualityRules returns every quality rule
// @Summary List quality rules
// @Tags quality
// @Produce json
// @Success 200 {array} model.QualityRule
// @Router /quality-rules [get]
func (h *Handler) ListQualityRules(w http.ResponseWriter, r *http.Request) {
	rules, err := h.store.ListQualityRules(r.Context())
	if err != nil {
		h.fail(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, rules)
}

// UpdateQualityRule applies a partial update to a rule
// @Summary Update quality rule
// @Description Sets name, description, rule_type, field, condition, severity or active. Other keys are ignored.
// @Tags quality
// @Accept json
// @Produce json
// @Param id path string true "Rule ID"
// @Param updates body map[string]interface{} true "Fields to update"
// @Success 200 {object} model.QualityRule
// @Failure 400 {object} ErrorResponse "Invalid request payload"
// @Failure 404 {object} ErrorResponse "Quality rule not found"
// @Router /quality-rules/{id} [put]
func (h *Handler) UpdateQualityRule(w http.ResponseWriter, r *http.Request) {
	var patch map[string]interface{}
	if err := decodeBody(w, r, &patch); err != nil {
		h.fail(w, r, err, "")
		return
	}
	rule, err := h.store.UpdateQualityRule(r.Context(), router.Param(r, 0), patch)
	if err != nil {
		h.fail(w, r, err, "Quality rule not found")
		return
	}
	writeJSON(w, http.StatusOK, rule)
}
