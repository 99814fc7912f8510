// Package docs registers the OpenAPI description served under /swagger/.
// Regenerate with: swag init -g cmd/pipeline/main.go
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/": {
            "get": {"tags": ["meta"], "summary": "API banner", "produces": ["application/json"],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.MessageResponse"}}}}
        },
        "/data-sources": {
            "get": {"tags": ["data-sources"], "summary": "List data sources", "produces": ["application/json"],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/model.DataSource"}}}}},
            "post": {"tags": ["data-sources"], "summary": "Create a data source", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"description": "Data source", "name": "source", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.DataSourceCreate"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/model.DataSource"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}}}
        },
        "/pipelines": {
            "get": {"tags": ["pipelines"], "summary": "List all pipelines", "produces": ["application/json"],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/model.Pipeline"}}}}},
            "post": {"tags": ["pipelines"], "summary": "Create a new pipeline", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"description": "Pipeline configuration", "name": "pipeline", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.PipelineCreate"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/model.Pipeline"}},
                    "400": {"description": "Invalid request payload", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}}}
        },
        "/pipelines/{id}": {
            "get": {"tags": ["pipelines"], "summary": "Get pipeline", "produces": ["application/json"],
                "parameters": [{"type": "string", "description": "Pipeline ID", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/model.Pipeline"}},
                    "404": {"description": "Pipeline not found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}}},
            "put": {"tags": ["pipelines"], "summary": "Update pipeline", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"type": "string", "description": "Pipeline ID", "name": "id", "in": "path", "required": true},
                    {"description": "Fields to update", "name": "updates", "in": "body", "required": true, "schema": {"type": "object"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/model.Pipeline"}},
                    "404": {"description": "Pipeline not found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}}},
            "delete": {"tags": ["pipelines"], "summary": "Delete pipeline", "produces": ["application/json"],
                "parameters": [{"type": "string", "description": "Pipeline ID", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.MessageResponse"}},
                    "404": {"description": "Pipeline not found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}}}
        },
        "/pipelines/{id}/execute": {
            "post": {"tags": ["pipelines"], "summary": "Execute pipeline", "produces": ["application/json"],
                "parameters": [{"type": "string", "description": "Pipeline ID", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/model.PipelineRun"}},
                    "404": {"description": "Pipeline not found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}}}
        },
        "/pipeline-runs": {
            "get": {"tags": ["pipeline-runs"], "summary": "List pipeline runs", "produces": ["application/json"],
                "parameters": [{"type": "integer", "default": 50, "description": "Maximum number of runs", "name": "limit", "in": "query"}],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/model.PipelineRun"}}}}}
        },
        "/pipeline-runs/{id}": {
            "get": {"tags": ["pipeline-runs"], "summary": "Get pipeline run", "produces": ["application/json"],
                "parameters": [{"type": "string", "description": "Run ID", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/model.PipelineRun"}},
                    "404": {"description": "Pipeline run not found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}}}
        },
        "/quality-rules": {
            "get": {"tags": ["quality"], "summary": "List quality rules", "produces": ["application/json"],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/model.QualityRule"}}}}},
            "post": {"tags": ["quality"], "summary": "Create a quality rule", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"description": "Quality rule", "name": "rule", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.QualityRuleCreate"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/model.QualityRule"}}}}
        },
        "/quality-rules/{id}": {
            "put": {"tags": ["quality"], "summary": "Update quality rule", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"type": "string", "description": "Rule ID", "name": "id", "in": "path", "required": true},
                    {"description": "Fields to update", "name": "updates", "in": "body", "required": true, "schema": {"type": "object"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/model.QualityRule"}},
                    "404": {"description": "Quality rule not found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}}}
        },
        "/quality-results": {
            "get": {"tags": ["quality"], "summary": "List quality results", "produces": ["application/json"],
                "parameters": [{"type": "integer", "default": 100, "description": "Maximum number of results", "name": "limit", "in": "query"}],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/model.QualityResult"}}}}}
        },
        "/analytics/query": {
            "post": {"tags": ["analytics"], "summary": "Query processed data", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"description": "Query", "name": "query", "in": "body", "required": true, "schema": {"$ref": "#/definitions/pipeline.AnalyticsQuery"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/pipeline.QueryResult"}},
                    "400": {"description": "Query execution failed", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}}}
        },
        "/dashboard/stats": {
            "get": {"tags": ["analytics"], "summary": "Dashboard statistics", "produces": ["application/json"],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/model.DashboardStats"}}}}
        },
        "/initialize-sample-data": {
            "post": {"tags": ["meta"], "summary": "Initialize sample data", "produces": ["application/json"],
                "responses": {"200": {"description": "OK", "schema": {"type": "object"}}}}
        }
    },
    "definitions": {
        "handler.ErrorResponse": {"type": "object", "properties": {"detail": {"type": "string"}}},
        "handler.MessageResponse": {"type": "object", "properties": {"message": {"type": "string"}}},
        "model.DataSource": {"type": "object", "properties": {
            "id": {"type": "string"}, "name": {"type": "string"}, "type": {"type": "string"},
            "location": {"type": "string"}, "status": {"type": "string"}, "config": {"type": "object"},
            "created_at": {"type": "string"}}},
        "model.DataSourceCreate": {"type": "object", "properties": {
            "name": {"type": "string"}, "type": {"type": "string"}, "location": {"type": "string"}, "config": {"type": "object"}}},
        "model.Pipeline": {"type": "object", "properties": {
            "id": {"type": "string"}, "name": {"type": "string"}, "description": {"type": "string"},
            "source_id": {"type": "string"}, "transformations": {"type": "array", "items": {"type": "object"}},
            "schedule": {"type": "string"}, "status": {"type": "string"},
            "created_at": {"type": "string"}, "updated_at": {"type": "string"}}},
        "model.PipelineCreate": {"type": "object", "properties": {
            "name": {"type": "string"}, "description": {"type": "string"}, "source_id": {"type": "string"},
            "transformations": {"type": "array", "items": {"type": "object"}}, "schedule": {"type": "string"}}},
        "model.LogEntry": {"type": "object", "properties": {
            "timestamp": {"type": "string"}, "level": {"type": "string"}, "message": {"type": "string"}}},
        "model.QualityMetrics": {"type": "object", "properties": {
            "overall_quality_score": {"type": "number"}, "scoring": {"type": "string"}}},
        "model.PipelineRun": {"type": "object", "properties": {
            "id": {"type": "string"}, "pipeline_id": {"type": "string"}, "pipeline_name": {"type": "string"},
            "status": {"type": "string"}, "start_time": {"type": "string"}, "end_time": {"type": "string"},
            "records_processed": {"type": "integer"}, "records_failed": {"type": "integer"},
            "logs": {"type": "array", "items": {"$ref": "#/definitions/model.LogEntry"}},
            "metrics": {"$ref": "#/definitions/model.QualityMetrics"}, "error_message": {"type": "string"}}},
        "model.QualityRule": {"type": "object", "properties": {
            "id": {"type": "string"}, "name": {"type": "string"}, "description": {"type": "string"},
            "rule_type": {"type": "string"}, "field": {"type": "string"}, "condition": {"type": "object"},
            "severity": {"type": "string"}, "active": {"type": "boolean"}, "created_at": {"type": "string"}}},
        "model.QualityRuleCreate": {"type": "object", "properties": {
            "name": {"type": "string"}, "description": {"type": "string"}, "rule_type": {"type": "string"},
            "field": {"type": "string"}, "condition": {"type": "object"}, "severity": {"type": "string"}}},
        "model.QualityResult": {"type": "object", "properties": {
            "id": {"type": "string"}, "pipeline_run_id": {"type": "string"}, "rule_id": {"type": "string"},
            "rule_name": {"type": "string"}, "severity": {"type": "string"}, "passed": {"type": "boolean"},
            "records_checked": {"type": "integer"}, "records_failed": {"type": "integer"},
            "quality_score": {"type": "number"}, "timestamp": {"type": "string"}}},
        "model.DashboardStats": {"type": "object", "properties": {
            "total_pipelines": {"type": "integer"}, "active_pipelines": {"type": "integer"}, "total_sources": {"type": "integer"},
            "recent_runs": {"type": "array", "items": {"$ref": "#/definitions/model.PipelineRun"}},
            "run_stats": {"type": "object", "properties": {"success": {"type": "integer"}, "failed": {"type": "integer"}, "running": {"type": "integer"}}},
            "avg_quality_score": {"type": "number"},
            "quality_trend": {"type": "array", "items": {"$ref": "#/definitions/model.QualityResult"}}}},
        "pipeline.AnalyticsQuery": {"type": "object", "properties": {
            "type": {"type": "string", "enum": ["select_all", "group_by"]}, "group_field": {"type": "string"},
            "agg_field": {"type": "string"}, "agg_func": {"type": "string", "enum": ["sum", "avg", "count"]}}},
        "pipeline.QueryResult": {"type": "object", "properties": {
            "columns": {"type": "array", "items": {"type": "string"}},
            "rows": {"type": "array", "items": {"type": "object"}}, "row_count": {"type": "integer"}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "Quality Pipeline API",
	Description:      "Quality-gated ETL pipelines: sources, pipelines, quality rules, runs and analytics.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
