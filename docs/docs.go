// Package docs holds the Swagger description of the audit API.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "API Support"
        },
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/audits": {
            "get": {
                "description": "Returns stored audits. Filter parameters are validated but not applied yet; every stored audit is returned.",
                "produces": ["application/json"],
                "tags": ["Audits"],
                "summary": "List audits",
                "parameters": [
                    {"type": "array", "items": {"enum": ["READ", "CREATE", "UPDATE", "DELETE", "SEARCH", "SECURITY"], "type": "string"}, "collectionFormat": "multi", "description": "Audit types", "name": "auditType", "in": "query"},
                    {"type": "array", "items": {"enum": ["METADATA", "TRACKER", "AGGREGATE"], "type": "string"}, "collectionFormat": "multi", "description": "Audit scopes", "name": "auditScope", "in": "query"},
                    {"type": "array", "items": {"type": "string"}, "collectionFormat": "multi", "description": "Audited classes", "name": "klass", "in": "query"},
                    {"type": "array", "items": {"type": "string"}, "collectionFormat": "multi", "description": "Object uids", "name": "uid", "in": "query"},
                    {"type": "array", "items": {"type": "string"}, "collectionFormat": "multi", "description": "Object codes", "name": "code", "in": "query"},
                    {"type": "string", "description": "Created at or after (RFC3339)", "name": "from", "in": "query"},
                    {"type": "string", "description": "Created at or before (RFC3339)", "name": "to", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/AuditListResponse"}},
                    "400": {"description": "Invalid query parameters", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "500": {"description": "Internal server error", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            },
            "post": {
                "description": "Validates and stores one audit, returning its generated id. With async=true the audit is published to the ingest topic instead and stored by the consumer.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Audits"],
                "summary": "Record an audit",
                "parameters": [
                    {"description": "Audit document (id is ignored)", "name": "audit", "in": "body", "required": true, "schema": {"$ref": "#/definitions/Audit"}},
                    {"type": "boolean", "description": "Publish to Kafka instead of storing synchronously", "name": "async", "in": "query"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/CreateAuditResponse"}},
                    "202": {"description": "Audit queued", "schema": {"$ref": "#/definitions/response.SuccessResponse"}},
                    "400": {"description": "Invalid audit document", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "500": {"description": "Internal server error", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "503": {"description": "Asynchronous ingest not configured", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            },
            "delete": {
                "description": "Criteria deletion is not implemented by the store; nothing is removed.",
                "produces": ["application/json"],
                "tags": ["Audits"],
                "summary": "Delete audits matching criteria",
                "parameters": [
                    {"type": "array", "items": {"type": "string"}, "collectionFormat": "multi", "description": "Audit types", "name": "auditType", "in": "query"},
                    {"type": "array", "items": {"type": "string"}, "collectionFormat": "multi", "description": "Audit scopes", "name": "auditScope", "in": "query"},
                    {"type": "array", "items": {"type": "string"}, "collectionFormat": "multi", "description": "Object uids", "name": "uid", "in": "query"}
                ],
                "responses": {
                    "204": {"description": "Request accepted"},
                    "400": {"description": "Invalid query parameters", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "500": {"description": "Internal server error", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/audits/batch": {
            "post": {
                "description": "Validates every document and hands the batch to the store's batch save. Batch save does not persist anything yet; the response is 202 so callers do not assume durability.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Audits"],
                "summary": "Record a batch of audits",
                "parameters": [
                    {"description": "Audit documents", "name": "audits", "in": "body", "required": true, "schema": {"type": "array", "items": {"$ref": "#/definitions/Audit"}}}
                ],
                "responses": {
                    "202": {"description": "Batch accepted", "schema": {"$ref": "#/definitions/response.SuccessResponse"}},
                    "400": {"description": "Invalid audit document", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "500": {"description": "Internal server error", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/audits/count": {
            "get": {
                "description": "Counting is not implemented by the store and always reports 0.",
                "produces": ["application/json"],
                "tags": ["Audits"],
                "summary": "Count audits",
                "parameters": [
                    {"type": "array", "items": {"type": "string"}, "collectionFormat": "multi", "description": "Audit types", "name": "auditType", "in": "query"},
                    {"type": "array", "items": {"type": "string"}, "collectionFormat": "multi", "description": "Audit scopes", "name": "auditScope", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/AuditCountResponse"}},
                    "400": {"description": "Invalid query parameters", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "500": {"description": "Internal server error", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/audits/{id}": {
            "delete": {
                "description": "Deletes the audit with the given id. Deleting an unknown id succeeds.",
                "produces": ["application/json"],
                "tags": ["Audits"],
                "summary": "Delete an audit",
                "parameters": [
                    {"type": "integer", "description": "Audit ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "Audit deleted"},
                    "400": {"description": "Invalid id", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "500": {"description": "Internal server error", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/health": {
            "get": {
                "description": "Returns the health status of the API service and its database",
                "produces": ["application/json"],
                "tags": ["System"],
                "summary": "Health check endpoint",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/HealthResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/HealthResponse"}}
                }
            }
        },
        "/metrics": {
            "get": {
                "description": "Returns audit store counters in the Prometheus text exposition format",
                "produces": ["text/plain"],
                "tags": ["System"],
                "summary": "Prometheus metrics",
                "responses": {
                    "200": {"description": "Prometheus metrics", "schema": {"type": "string"}}
                }
            }
        }
    },
    "definitions": {
        "Audit": {
            "type": "object",
            "properties": {
                "id": {"type": "integer", "example": 42},
                "auditType": {"type": "string", "enum": ["READ", "CREATE", "UPDATE", "DELETE", "SEARCH", "SECURITY"], "example": "UPDATE"},
                "auditScope": {"type": "string", "enum": ["METADATA", "TRACKER", "AGGREGATE"], "example": "METADATA"},
                "createdAt": {"type": "string", "example": "2025-11-05T10:30:00Z"},
                "createdBy": {"type": "string", "example": "admin"},
                "klass": {"type": "string", "example": "org.hisp.dhis.dataelement.DataElement"},
                "uid": {"type": "string", "example": "fbfJHSPpUQD"},
                "code": {"type": "string", "example": "DE_ANC1"},
                "data": {"type": "string", "example": "{\"name\":\"ANC 1st visit\"}"}
            }
        },
        "AuditCountResponse": {
            "type": "object",
            "properties": {
                "count": {"type": "integer", "example": 0}
            }
        },
        "AuditListResponse": {
            "type": "object",
            "properties": {
                "audits": {"type": "array", "items": {"$ref": "#/definitions/Audit"}},
                "total": {"type": "integer", "example": 1}
            }
        },
        "CreateAuditResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "integer", "example": 42}
            }
        },
        "ErrorResponse": {
            "type": "object",
            "properties": {
                "details": {},
                "error": {"type": "string", "example": "invalid request body"},
                "trace_id": {"type": "string", "example": "6f1c2a9e-3d4b-4c1e-9a51-2b0f8d7c5e10"}
            }
        },
        "HealthResponse": {
            "type": "object",
            "properties": {
                "database": {"type": "string", "example": "up"},
                "service": {"type": "string", "example": "audit-store"},
                "status": {"type": "string", "example": "ok"},
                "version": {"type": "string", "example": "1.0.0"}
            }
        },
        "response.SuccessResponse": {
            "type": "object",
            "properties": {
                "data": {},
                "message": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{"http", "https"},
	Title:            "Audit Store API",
	Description:      "Persistence service for DHIS2 audit records backed by MySQL or PostgreSQL, with optional Kafka ingest and a retention job.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
