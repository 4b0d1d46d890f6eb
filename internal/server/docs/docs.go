// Package docs holds the swagger document served under /swagger.
// Regenerate with `go generate ./internal/server` after changing handler
// annotations.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "Clauseguard Maintainers",
            "url": "https://github.com/raysh454/clauseguard"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["meta"],
                "summary": "Liveness check",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/server.HealthResponse"}}
                }
            }
        },
        "/categories": {
            "get": {
                "produces": ["application/json"],
                "tags": ["meta"],
                "summary": "List the risk catalog",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/model.RiskCategory"}}}
                }
            }
        },
        "/analyses": {
            "post": {
                "description": "Accepts a multipart upload (\"file\", \"language\", \"explain\") or a JSON body. With ?format= the rendered report is returned instead of JSON.",
                "consumes": ["application/json", "multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["analyses"],
                "summary": "Analyze a contract synchronously",
                "parameters": [
                    {"description": "Text to analyze", "name": "request", "in": "body", "schema": {"$ref": "#/definitions/server.AnalyzeRequest"}},
                    {"enum": ["text", "markdown", "json", "html", "terminal", "pdf"], "type": "string", "description": "Report format", "name": "format", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.AssessmentResult"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/server.ErrorResponse"}},
                    "413": {"description": "Request Entity Too Large", "schema": {"$ref": "#/definitions/server.ErrorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/server.ErrorResponse"}}
                }
            }
        },
        "/analyses/compare": {
            "post": {
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["analyses"],
                "summary": "Compare two versions of a contract",
                "parameters": [
                    {"type": "file", "description": "Previous version", "name": "old", "in": "formData", "required": true},
                    {"type": "file", "description": "Revised version", "name": "new", "in": "formData", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/assessment.Comparison"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/server.ErrorResponse"}}
                }
            }
        },
        "/jobs": {
            "get": {
                "produces": ["application/json"],
                "tags": ["jobs"],
                "summary": "List retained jobs, newest first",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/app.Job"}}}
                }
            }
        },
        "/jobs/analyses": {
            "post": {
                "description": "Same inputs as POST /analyses. Follow progress on /ws/jobs/{id} or poll /jobs/{id}.",
                "consumes": ["application/json", "multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["jobs"],
                "summary": "Start a background analysis",
                "parameters": [
                    {"description": "Text to analyze", "name": "request", "in": "body", "schema": {"$ref": "#/definitions/server.AnalyzeRequest"}}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/app.Job"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/server.ErrorResponse"}}
                }
            }
        },
        "/jobs/{jobID}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["jobs"],
                "summary": "Get a job and, once done, its result",
                "parameters": [
                    {"type": "string", "description": "Job ID", "name": "jobID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/app.Job"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/server.ErrorResponse"}}
                }
            },
            "delete": {
                "tags": ["jobs"],
                "summary": "Cancel a job",
                "parameters": [
                    {"type": "string", "description": "Job ID", "name": "jobID", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/server.ErrorResponse"}}
                }
            }
        },
        "/jobs/{jobID}/report": {
            "get": {
                "produces": ["text/plain", "application/json", "text/html", "application/octet-stream"],
                "tags": ["jobs"],
                "summary": "Download a finished job's report",
                "parameters": [
                    {"type": "string", "description": "Job ID", "name": "jobID", "in": "path", "required": true},
                    {"enum": ["text", "markdown", "json", "html", "terminal", "pdf"], "type": "string", "description": "Report format", "name": "format", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "file"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/server.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/server.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "server.AnalyzeRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string", "example": "lease.txt"},
                "text": {"type": "string", "example": "1. The Tenant shall indemnify the Landlord against all claims..."},
                "language": {"type": "string", "enum": ["en", "hi", "both"], "example": "en"},
                "explain": {"type": "string", "enum": ["all", "none"], "example": "all"}
            }
        },
        "server.HealthResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "example": "ok"},
                "version": {"type": "string", "example": "0.1.0"},
                "explanations": {"type": "boolean", "example": true}
            }
        },
        "server.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string", "example": "document is empty"}
            }
        },
        "model.RiskCategory": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "label": {"type": "string"},
                "severity": {"type": "string", "enum": ["low", "medium", "high", "critical"]},
                "description": {"type": "string"}
            }
        },
        "model.Explanation": {
            "type": "object",
            "properties": {
                "meaning": {"type": "string"},
                "risk": {"type": "string"},
                "beneficiary": {"type": "string"},
                "recommendation": {"type": "string"},
                "source": {"type": "string", "enum": ["ai", "template"]},
                "language": {"type": "string"},
                "notice": {"type": "string"}
            }
        },
        "model.ClauseMatch": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "clause_index": {"type": "integer"},
                "category_id": {"type": "string"},
                "category_label": {"type": "string"},
                "severity": {"type": "string"},
                "weight": {"type": "integer"},
                "pattern": {"type": "string"},
                "excerpt": {"type": "string"},
                "via_translation": {"type": "boolean"},
                "explanation": {"$ref": "#/definitions/model.Explanation"}
            }
        },
        "model.AssessmentResult": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "document_name": {"type": "string"},
                "format": {"type": "string"},
                "language": {"type": "string"},
                "explanation_language": {"type": "string"},
                "score": {"type": "integer", "example": 72},
                "grade": {"type": "string", "example": "B"},
                "band": {"type": "string", "enum": ["low", "moderate", "high"]},
                "recommendation": {"type": "string"},
                "degraded": {"type": "boolean"},
                "warnings": {"type": "array", "items": {"type": "string"}},
                "matches": {"type": "array", "items": {"$ref": "#/definitions/model.ClauseMatch"}}
            }
        },
        "assessment.Comparison": {
            "type": "object",
            "properties": {
                "old": {"$ref": "#/definitions/model.AssessmentResult"},
                "new": {"$ref": "#/definitions/model.AssessmentResult"},
                "score_delta": {"type": "integer"},
                "added": {"type": "array", "items": {"type": "string"}},
                "removed": {"type": "array", "items": {"type": "string"}},
                "unchanged": {"type": "array", "items": {"type": "string"}}
            }
        },
        "app.Job": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "type": {"type": "string", "example": "analysis"},
                "document": {"type": "string"},
                "status": {"type": "string", "enum": ["pending", "running", "done", "failed", "canceled"]},
                "error": {"type": "string"},
                "started_at": {"type": "string"},
                "ended_at": {"type": "string"},
                "result": {"$ref": "#/definitions/model.AssessmentResult"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "0.1",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Clauseguard API",
	Description:      "Contract risk analysis: upload a contract, get matched risk clauses, explanations and a 0-100 safety score.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
