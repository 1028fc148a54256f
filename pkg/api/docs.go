package api

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
        "/health": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "description": "Get the health status of the API and whether the initial load has finished",
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/books": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "description": "Search, sort and page through the catalog",
                "produces": ["application/json"],
                "tags": ["books"],
                "summary": "List books",
                "parameters": [
                    {"type": "string", "description": "Case-insensitive substring over id, title, author and catalog number", "name": "search", "in": "query"},
                    {"type": "string", "description": "id, title, author, catalog, date or quantity", "name": "sort", "in": "query"},
                    {"type": "integer", "description": "1-based page number", "name": "page", "in": "query"},
                    {"type": "integer", "description": "Books per page", "name": "page_size", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.PageResponse"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            },
            "post": {
                "security": [{"ApiKeyAuth": []}],
                "description": "Validate and store a new book",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["books"],
                "summary": "Add a book",
                "parameters": [
                    {"description": "Book", "name": "book", "in": "body", "required": true, "schema": {"$ref": "#/definitions/api.BookPayload"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/api.BookPayload"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "409": {"description": "Conflict", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/books/{id}": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "description": "Retrieve a book by id",
                "produces": ["application/json"],
                "tags": ["books"],
                "summary": "Get a book",
                "parameters": [
                    {"type": "string", "description": "Book id (LIB-nnn)", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.BookPayload"}},
                    "404": {"description": "Not Found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            },
            "put": {
                "security": [{"ApiKeyAuth": []}],
                "description": "Replace every field except the id",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["books"],
                "summary": "Update a book",
                "parameters": [
                    {"type": "string", "description": "Book id", "name": "id", "in": "path", "required": true},
                    {"description": "Book", "name": "book", "in": "body", "required": true, "schema": {"$ref": "#/definitions/api.BookPayload"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.BookPayload"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "404": {"description": "Not Found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            },
            "delete": {
                "security": [{"ApiKeyAuth": []}],
                "description": "Remove a book by id. Deleting an absent id succeeds and changes nothing.",
                "produces": ["application/json"],
                "tags": ["books"],
                "summary": "Delete a book",
                "parameters": [
                    {"type": "string", "description": "Book id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/stats": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "description": "Book count, data file size, persist counters and load outcome",
                "produces": ["application/json"],
                "tags": ["diagnostics"],
                "summary": "Store statistics",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/store.Stats"}}
                }
            }
        }
    },
    "definitions": {
        "api.BookPayload": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "title": {"type": "string"},
                "author": {"type": "string"},
                "catalog_number": {"type": "string"},
                "publication_date": {"type": "string"},
                "quantity": {"type": "integer"}
            }
        },
        "api.PageResponse": {
            "type": "object",
            "properties": {
                "books": {"type": "array", "items": {"$ref": "#/definitions/api.BookPayload"}},
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_items": {"type": "integer"},
                "total_pages": {"type": "integer"},
                "sort": {"type": "string"},
                "search": {"type": "string"}
            }
        },
        "store.Stats": {
            "type": "object",
            "properties": {
                "books": {"type": "integer"},
                "data_size": {"type": "integer"},
                "persists": {"type": "integer"},
                "persist_failures": {"type": "integer"},
                "last_persist_error": {"type": "string"},
                "loaded": {"type": "boolean"},
                "load": {"type": "object"}
            }
        }
    },
    "securityDefinitions": {
        "ApiKeyAuth": {"type": "apiKey", "name": "X-API-Key", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "ShelfDB REST API",
	Description:      "REST API for ShelfDB, a file-backed library catalog.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
