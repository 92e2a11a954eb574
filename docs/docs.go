// Package docs registers the OpenAPI document served under /swagger/ when the
// binary is built with -tags=swagger. Regenerate with `swag init -g cmd/extractd/docs.go`.
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
        "/extract": {
            "post": {
                "description": "Always answers 200 with a result for well-formed JSON, empty text included; generation problems are reported in the error field.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "summary": "Extract tax id and full name",
                "parameters": [
                    {
                        "description": "text to analyze",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/types.ExtractRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/extract.Result"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "415": {"description": "Unsupported Media Type", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/models": {
            "get": {
                "produces": ["application/json"],
                "summary": "List discovered GGUF models",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.ModelsResponse"}}
                }
            }
        },
        "/status": {
            "get": {
                "produces": ["application/json"],
                "summary": "Backend and profile status",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.StatusResponse"}}
                }
            }
        }
    },
    "definitions": {
        "extract.Result": {
            "type": "object",
            "properties": {
                "taxId": {"type": "string", "example": "123456789012"},
                "fullName": {"type": "string", "example": "Петров Алексей Сергеевич"},
                "method": {"type": "string", "example": "rule-based"},
                "rawModelOutput": {"type": "string"},
                "error": {"type": "string"}
            }
        },
        "types.ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "integer", "example": 400},
                "error": {"type": "string", "example": "invalid JSON body"}
            }
        },
        "types.ExtractRequest": {
            "type": "object",
            "properties": {
                "text": {"type": "string", "example": "Клиент: Петров Алексей Сергеевич, ИНН 123456789012"}
            }
        },
        "types.Model": {
            "type": "object",
            "properties": {
                "id": {"type": "string", "example": "gemma-2-2b-it.Q4_K_M.gguf"},
                "name": {"type": "string", "example": "gemma-2-2b-it.Q4_K_M.gguf"},
                "path": {"type": "string", "example": "/home/user/models/gemma-2-2b-it.Q4_K_M.gguf"},
                "size_bytes": {"type": "integer", "example": 1708582752}
            }
        },
        "types.ModelsResponse": {
            "type": "object",
            "properties": {
                "models": {"type": "array", "items": {"$ref": "#/definitions/types.Model"}}
            }
        },
        "types.StatusResponse": {
            "type": "object",
            "properties": {
                "backend": {"type": "string", "example": "llama-server"},
                "backend_error": {"type": "string"},
                "backend_ready": {"type": "boolean", "example": true},
                "profile": {"type": "string", "example": "default"},
                "uptime_seconds": {"type": "integer", "example": 3600}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "extractd API",
	Description:      "Extracts a taxpayer id (ИНН) and a full name (ФИО) from Russian free text.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
