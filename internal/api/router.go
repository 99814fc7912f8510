// Package api wires the HTTP handlers onto the router.
package api

import (
	"net/http"

	_ "go-quality-pipeline/docs"
	"go-quality-pipeline/internal/api/handler"
	"go-quality-pipeline/pkg/router"

	httpSwagger "github.com/swaggo/http-swagger"
)

// RegisterRoutes mounts the /api endpoints and the Swagger UI. metrics, when
// non-nil, is served at /metrics.
func RegisterRoutes(r *router.Router, h *handler.Handler, metrics http.Handler) {
	r.GET("/api", h.Root)
	r.GET("/api/", h.Root)

	r.POST("/api/data-sources", h.CreateDataSource)
	r.GET("/api/data-sources", h.ListDataSources)

	r.POST("/api/pipelines", h.CreatePipeline)
	r.GET("/api/pipelines", h.ListPipelines)
	r.GET("/api/pipelines/*", h.GetPipeline)
	r.PUT("/api/pipelines/*", h.UpdatePipeline)
	r.DELETE("/api/pipelines/*", h.DeletePipeline)
	r.POST("/api/pipelines/*/execute", h.ExecutePipeline)

	r.GET("/api/pipeline-runs", h.ListPipelineRuns)
	r.GET("/api/pipeline-runs/*", h.GetPipelineRun)

	r.POST("/api/quality-rules", h.CreateQualityRule)
	r.GET("/api/quality-rules", h.ListQualityRules)
	r.PUT("/api/quality-rules/*", h.UpdateQualityRule)
	r.GET("/api/quality-results", h.ListQualityResults)

	r.POST("/api/analytics/query", h.AnalyticsQuery)
	r.GET("/api/dashboard/stats", h.DashboardStats)
	r.POST("/api/initialize-sample-data", h.InitializeSampleData)

	r.Handle("/swagger/", httpSwagger.WrapHandler)
	if metrics != nil {
		r.Handle("/metrics", metrics)
	}
}
