// Package docs registers the OpenAPI document served under /swagger.
// Keep it in step with the handler annotations in internal/server.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "Promptlab Maintainers"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/problems": {
            "get": {
                "produces": ["application/json"],
                "tags": ["problems"],
                "summary": "List problems",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {"$ref": "#/definitions/catalog.Problem"}
                        }
                    },
                    "500": {
                        "description": "Internal Server Error",
                        "schema": {"$ref": "#/definitions/server.ErrorResponse"}
                    }
                }
            }
        },
        "/api/problems/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["problems"],
                "summary": "Get a problem",
                "parameters": [
                    {"type": "string", "description": "Problem ID", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "Practice mode (guided or evaluation)", "name": "mode", "in": "query"}
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/catalog.Problem"}
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {"$ref": "#/definitions/server.ErrorResponse"}
                    }
                }
            }
        }
    },
    "definitions": {
        "catalog.Problem": {
            "type": "object",
            "properties": {
                "id": {"type": "string", "example": "story_001"},
                "title": {"type": "string"},
                "description": {"type": "string"},
                "expected_output_type": {"type": "string", "example": "text"},
                "skills_required": {"type": "array", "items": {"type": "string"}},
                "reference_prompt": {"type": "string"},
                "reference_result": {"type": "string"},
                "tags": {"type": "array", "items": {"type": "string"}}
            }
        },
        "server.ErrorResponse": {
            "type": "object",
            "properties": {
                "detail": {"type": "string", "example": "problem not found"}
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
	Title:            "Promptlab Problem API",
	Description:      "Practice problems for prompt-writing exercises.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
