// Package docs registers the swagger document served at /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {"tags": ["system"], "summary": "Health check", "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}}}
        },
        "/auth/sign-up": {
            "post": {"tags": ["auth"], "summary": "Sign up", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/credentials"}}],
                "responses": {"200": {"description": "id"}, "400": {"description": "Bad Request"}, "409": {"description": "Conflict"}}}
        },
        "/auth/sign-in": {
            "post": {"tags": ["auth"], "summary": "Sign in", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/credentials"}}],
                "responses": {"200": {"description": "token"}, "400": {"description": "Bad Request"}, "401": {"description": "Unauthorized"}}}
        },
        "/ws": {
            "get": {"tags": ["timer"], "summary": "Timer stream (WebSocket)",
                "responses": {"101": {"description": "Switching Protocols"}}}
        },
        "/api/v1/timer/options": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["timer"], "summary": "List duration options", "produces": ["application/json"],
                "responses": {"200": {"description": "count, options"}, "401": {"description": "Unauthorized"}}}
        },
        "/api/v1/timer/state": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["timer"], "summary": "Get timer state", "produces": ["application/json"],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.TimerState"}}, "401": {"description": "Unauthorized"}}}
        },
        "/api/v1/timer/duration": {
            "put": {"security": [{"BearerAuth": []}], "tags": ["timer"], "summary": "Select duration", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.DurationRequest"}}],
                "responses": {"200": {"description": "status, state"}, "400": {"description": "Bad Request"}, "401": {"description": "Unauthorized"}, "500": {"description": "Internal Server Error"}}}
        },
        "/api/v1/timer/start": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["timer"], "summary": "Start timer", "produces": ["application/json"],
                "responses": {"200": {"description": "status, state"}, "400": {"description": "Bad Request"}, "401": {"description": "Unauthorized"}, "500": {"description": "Internal Server Error"}}}
        },
        "/api/v1/timer/cancel": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["timer"], "summary": "Cancel timer", "produces": ["application/json"],
                "responses": {"200": {"description": "status, state"}, "401": {"description": "Unauthorized"}, "500": {"description": "Internal Server Error"}}}
        },
        "/api/v1/notifications": {
            "delete": {"security": [{"BearerAuth": []}], "tags": ["notifications"], "summary": "Dismiss notifications", "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}, "500": {"description": "Internal Server Error"}}}
        },
        "/api/v1/notifications/current": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["notifications"], "summary": "Current notification", "produces": ["application/json"],
                "responses": {"200": {"description": "notification"}, "401": {"description": "Unauthorized"}}}
        },
        "/api/v1/notifications/snooze": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["notifications"], "summary": "Snooze", "produces": ["application/json"],
                "responses": {"200": {"description": "status, trigger_at_millis"}, "401": {"description": "Unauthorized"}, "409": {"description": "Conflict"}, "500": {"description": "Internal Server Error"}, "503": {"description": "Service Unavailable"}}}
        },
        "/api/v1/push/topics": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["push"], "summary": "List subscribed topics", "produces": ["application/json"],
                "responses": {"200": {"description": "topics"}, "401": {"description": "Unauthorized"}, "500": {"description": "Internal Server Error"}}}
        },
        "/api/v1/push/topics/{topic}/subscribe": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["push"], "summary": "Subscribe to topic", "produces": ["application/json"],
                "parameters": [{"in": "path", "name": "topic", "type": "string", "required": true}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "401": {"description": "Unauthorized"}, "500": {"description": "Internal Server Error"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["push"], "summary": "Unsubscribe from topic", "produces": ["application/json"],
                "parameters": [{"in": "path", "name": "topic", "type": "string", "required": true}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "401": {"description": "Unauthorized"}, "500": {"description": "Internal Server Error"}}}
        },
        "/api/v1/push/topics/{topic}/messages": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["push"], "summary": "Publish to topic", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [
                    {"in": "path", "name": "topic", "type": "string", "required": true},
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.PublishRequest"}}
                ],
                "responses": {"202": {"description": "topic, subscribers"}, "400": {"description": "Bad Request"}, "401": {"description": "Unauthorized"}, "500": {"description": "Internal Server Error"}}}
        },
        "/api/v1/logs": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["logs"], "summary": "List logs", "produces": ["application/json"],
                "parameters": [
                    {"in": "query", "name": "from", "type": "string"},
                    {"in": "query", "name": "to", "type": "string"},
                    {"in": "query", "name": "type", "type": "string",
                        "enum": ["START", "CANCEL", "EXPIRE", "RESUME", "NOTIFY", "SNOOZE", "PUSH", "ERROR"]}
                ],
                "responses": {"200": {"description": "count, events"}, "400": {"description": "Bad Request"}, "401": {"description": "Unauthorized"}, "500": {"description": "Internal Server Error"}}}
        }
    },
    "definitions": {
        "credentials": {
            "type": "object",
            "required": ["username", "password"],
            "properties": {"username": {"type": "string"}, "password": {"type": "string"}}
        },
        "handlers.DurationRequest": {
            "type": "object",
            "required": ["index"],
            "properties": {"index": {"type": "integer", "example": 3}}
        },
        "handlers.PublishRequest": {
            "type": "object",
            "properties": {
                "data": {"type": "object", "additionalProperties": {"type": "string"}},
                "notification": {"type": "object", "properties": {"title": {"type": "string"}, "body": {"type": "string"}}}
            }
        },
        "models.TimerState": {
            "type": "object",
            "properties": {
                "duration_index": {"type": "integer"},
                "is_active": {"type": "boolean"},
                "remaining_millis": {"type": "integer"},
                "trigger_at_millis": {"type": "integer"},
                "updated_at": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "eggtimer API",
	Description:      "Egg timer countdown, notifications and topic pushes.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
