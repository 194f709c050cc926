// Package docs registers the OpenAPI description served at /swagger.
// Regenerate with `swag init -g cmd/api/main.go -o internal/docs`.
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
        "/cron/sync-admin-rights": {
            "get": {
                "security": [{"CronSecret": []}],
                "produces": ["application/json"],
                "tags": ["cron"],
                "summary": "Reconcile Telegram admin rights for every organization",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.SyncAdminRightsResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/participants/backfill-orphans": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["participants"],
                "summary": "Create participants for chat members with activity but no record",
                "parameters": [
                    {"description": "Backfill request", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.BackfillRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.BackfillResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/v1/orgs/{org_id}/participants": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["participants"],
                "summary": "List an organization's participants",
                "parameters": [
                    {"type": "string", "description": "Organization ID", "name": "org_id", "in": "path", "required": true},
                    {"type": "integer", "description": "Page number", "name": "page", "in": "query"},
                    {"type": "integer", "description": "Page size", "name": "page_size", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/v1/orgs/{org_id}/participants/{participant_id}/merge": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["participants"],
                "summary": "Merge a duplicate participant into another",
                "parameters": [
                    {"type": "string", "description": "Organization ID", "name": "org_id", "in": "path", "required": true},
                    {"type": "string", "description": "Duplicate participant ID", "name": "participant_id", "in": "path", "required": true},
                    {"description": "Merge target", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.MergeParticipantRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/v1/telegram/chats/{chat_id}/admins/{tg_user_id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["telegram"],
                "summary": "Check cached admin rights of a user in a chat",
                "parameters": [
                    {"type": "integer", "description": "Chat ID", "name": "chat_id", "in": "path", "required": true},
                    {"type": "integer", "description": "Telegram user ID", "name": "tg_user_id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/v1/telegram/chats/{chat_id}/resolve": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["telegram"],
                "summary": "Follow chat migrations to the current chat id",
                "parameters": [
                    {"type": "integer", "description": "Chat ID", "name": "chat_id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/v1/telegram/migrations": {
            "get": {
                "security": [{"CronSecret": []}],
                "produces": ["application/json"],
                "tags": ["telegram"],
                "summary": "List recorded chat migrations",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        }
    },
    "definitions": {
        "handlers.ErrorDetail": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "handlers.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"$ref": "#/definitions/handlers.ErrorDetail"}
            }
        },
        "handlers.BackfillRequest": {
            "type": "object",
            "required": ["orgId"],
            "properties": {
                "orgId": {"type": "string"},
                "chatIds": {"type": "array", "items": {"type": "integer"}},
                "force": {"type": "boolean"}
            }
        },
        "handlers.BackfillResponse": {
            "type": "object",
            "properties": {
                "ok": {"type": "boolean"},
                "orgId": {"type": "string"},
                "inserted": {"type": "integer"},
                "totalParticipants": {"type": "integer"},
                "chatIds": {"type": "array", "items": {"type": "integer"}}
            }
        },
        "handlers.MergeParticipantRequest": {
            "type": "object",
            "required": ["target_id"],
            "properties": {
                "target_id": {"type": "string"}
            }
        },
        "handlers.SyncAdminRightsResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "duration_ms": {"type": "integer"},
                "organizations_processed": {"type": "integer"},
                "results": {"type": "array", "items": {"type": "object"}}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and JWT token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        },
        "CronSecret": {
            "description": "Type \"Bearer\" followed by a space and the CRON_SECRET value.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "Orbo API",
	Description:      "Orbo keeps Telegram community state in sync: admin rights, chat migrations and participant records.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
