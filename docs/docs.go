// Package docs holds the OpenAPI document served at /swagger/doc.json.
// Regenerate with: swag init -g cmd/surveyflow/main.go
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
        "/v1/surveys/{surveyId}/pages": {
            "get": {
                "produces": ["application/json"],
                "tags": ["surveys"],
                "summary": "Preview a survey's pages",
                "parameters": [
                    {"type": "integer", "description": "Survey ID", "name": "surveyId", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.PagesResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/v1/surveys/{surveyId}/sessions": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["sessions"],
                "summary": "Start a session",
                "parameters": [
                    {"type": "integer", "description": "Survey ID", "name": "surveyId", "in": "path", "required": true},
                    {"description": "Respondent", "name": "body", "in": "body", "schema": {"$ref": "#/definitions/model.StartSessionRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/service.StartResult"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/v1/sessions/{sessionId}": {
            "get": {
                "security": [{"SessionToken": []}],
                "produces": ["application/json"],
                "tags": ["sessions"],
                "summary": "Current page of a session",
                "parameters": [
                    {"type": "string", "description": "Session ID", "name": "sessionId", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/engine.View"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            },
            "delete": {
                "security": [{"SessionToken": []}],
                "tags": ["sessions"],
                "summary": "Discard a session",
                "parameters": [
                    {"type": "string", "description": "Session ID", "name": "sessionId", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/v1/sessions/{sessionId}/answers/{questionId}": {
            "put": {
                "security": [{"SessionToken": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["sessions"],
                "summary": "Set an answer",
                "parameters": [
                    {"type": "string", "description": "Session ID", "name": "sessionId", "in": "path", "required": true},
                    {"type": "integer", "description": "Question ID", "name": "questionId", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/engine.View"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/v1/sessions/{sessionId}/next": {
            "post": {
                "security": [{"SessionToken": []}],
                "produces": ["application/json"],
                "tags": ["sessions"],
                "summary": "Advance, or submit from the last page",
                "parameters": [
                    {"type": "string", "description": "Session ID", "name": "sessionId", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.NextResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/handler.SubmissionFailedResponse"}}
                }
            }
        },
        "/v1/sessions/{sessionId}/back": {
            "post": {
                "security": [{"SessionToken": []}],
                "produces": ["application/json"],
                "tags": ["sessions"],
                "summary": "Go back one page",
                "parameters": [
                    {"type": "string", "description": "Session ID", "name": "sessionId", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.BackResponse"}}
                }
            }
        }
    },
    "definitions": {
        "handler.ErrorResponse": {
            "type": "object",
            "properties": {"error": {"type": "string"}}
        },
        "handler.PagesResponse": {
            "type": "object",
            "properties": {
                "survey_id": {"type": "integer"},
                "name": {"type": "string"},
                "pagination": {"type": "string"},
                "progress_display": {"type": "string"},
                "skipping_allowed": {"type": "boolean"},
                "pages": {"type": "array", "items": {"$ref": "#/definitions/model.Page"}}
            }
        },
        "handler.NextResponse": {
            "type": "object",
            "properties": {
                "outcome": {"type": "string"},
                "view": {"$ref": "#/definitions/engine.View"}
            }
        },
        "handler.BackResponse": {
            "type": "object",
            "properties": {
                "moved": {"type": "boolean"},
                "view": {"$ref": "#/definitions/engine.View"}
            }
        },
        "handler.SubmissionFailedResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "retryable": {"type": "boolean"},
                "view": {"$ref": "#/definitions/engine.View"}
            }
        },
        "model.StartSessionRequest": {
            "type": "object",
            "properties": {
                "respondent_id": {"type": "integer"},
                "context_metadata": {"type": "object", "additionalProperties": true}
            }
        },
        "model.Page": {
            "type": "object",
            "properties": {
                "number": {"type": "integer"},
                "title": {"type": "string"},
                "questions": {"type": "array", "items": {"$ref": "#/definitions/model.Question"}}
            }
        },
        "model.Question": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "text": {"type": "string"},
                "kind": {"type": "string"},
                "required": {"type": "boolean"},
                "options": {"type": "array", "items": {"type": "object"}},
                "rows": {"type": "array", "items": {"type": "string"}},
                "columns": {"type": "array", "items": {"type": "string"}}
            }
        },
        "engine.View": {
            "type": "object",
            "properties": {
                "state": {"type": "string"},
                "page_number": {"type": "integer"},
                "page_count": {"type": "integer"},
                "is_last_page": {"type": "boolean"},
                "skipping_allowed": {"type": "boolean"},
                "page": {"$ref": "#/definitions/model.Page"},
                "answers": {"type": "object", "additionalProperties": true},
                "errors": {"type": "object", "additionalProperties": {"type": "string"}},
                "progress": {"type": "object"},
                "last_error": {"type": "string"},
                "closing_message": {"type": "string"}
            }
        },
        "service.StartResult": {
            "type": "object",
            "properties": {
                "session_id": {"type": "string"},
                "token": {"type": "string"},
                "view": {"$ref": "#/definitions/engine.View"}
            }
        }
    },
    "securityDefinitions": {
        "SessionToken": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "surveyflow API",
	Description:      "Paginated survey sessions: answers, validation, progress and submission.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
