// Package docs holds the OpenAPI document served under /swagger.
// Regenerate with: swag init -g cmd/agrocean-console/main.go
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
        "/session": {
            "get": {
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "Current session",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.sessionResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/session/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "Login",
                "parameters": [
                    {"description": "Credentials and optional return URL", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.loginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.loginResponse"}},
                    "400": {"description": "Bad Request"},
                    "401": {"description": "Unauthorized"},
                    "422": {"description": "Unprocessable Entity"},
                    "502": {"description": "Bad Gateway"}
                }
            }
        },
        "/session/logout": {
            "post": {
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "Logout",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/session/refresh": {
            "post": {
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "Refresh token",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.sessionResponse"}},
                    "401": {"description": "Unauthorized"}
                }
            }
        },
        "/session/profile": {
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "Update profile",
                "responses": {"200": {"description": "OK"}, "422": {"description": "Unprocessable Entity"}}
            }
        },
        "/session/password": {
            "post": {
                "consumes": ["application/json"],
                "tags": ["session"],
                "summary": "Change password",
                "responses": {"204": {"description": "No Content"}, "422": {"description": "Unprocessable Entity"}}
            }
        },
        "/session/menu": {
            "get": {
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "Navigation menu",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/session/navigate": {
            "get": {
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "Guard decision",
                "parameters": [
                    {"type": "string", "description": "Console path, e.g. /ventes/create", "name": "path", "in": "query", "required": true}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/session/dashboard": {
            "get": {
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "Dashboard",
                "responses": {"200": {"description": "OK"}, "502": {"description": "Bad Gateway"}}
            }
        },
        "/session/stream": {
            "get": {
                "description": "Pushes identity, navigate and alerts events.",
                "tags": ["session"],
                "summary": "Session event stream",
                "responses": {"101": {"description": "Switching Protocols"}}
            }
        },
        "/api/{path}": {
            "get": {
                "description": "Forwards to the AGROCEAN API with the console session. Area access follows the route table.",
                "tags": ["proxy"],
                "summary": "Backend proxy",
                "parameters": [
                    {"type": "string", "description": "Backend path", "name": "path", "in": "path", "required": true}
                ],
                "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}, "502": {"description": "Bad Gateway"}}
            }
        },
        "/ui/supply-requests/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["ui"],
                "summary": "Supply request with allowed actions",
                "parameters": [
                    {"type": "integer", "description": "Demande ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        },
        "/ui/supply-requests/{id}/{action}": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["ui"],
                "summary": "Run a supply request action",
                "parameters": [
                    {"type": "integer", "description": "Demande ID", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "envoyer, annuler, prendre-en-charge, traiter or rejeter", "name": "action", "in": "path", "required": true}
                ],
                "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}, "422": {"description": "Unprocessable Entity"}}
            }
        },
        "/ui/purchase-orders/quote": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["ui"],
                "summary": "Purchase order totals",
                "responses": {"200": {"description": "OK"}, "422": {"description": "Unprocessable Entity"}}
            }
        },
        "/ui/products/{id}/reorder": {
            "get": {
                "produces": ["application/json"],
                "tags": ["ui"],
                "summary": "Reorder suggestion",
                "parameters": [
                    {"type": "integer", "description": "Produit ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/ui/reference/{kind}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["ui"],
                "summary": "Reference data",
                "parameters": [
                    {"type": "string", "description": "categories or entrepots", "name": "kind", "in": "path", "required": true}
                ],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        }
    },
    "definitions": {
        "handler.loginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"},
                "return_url": {"type": "string"}
            }
        },
        "handler.sessionResponse": {
            "type": "object",
            "properties": {
                "user": {"type": "object"},
                "role_label": {"type": "string"},
                "full_name": {"type": "string"},
                "expires_at": {"type": "string"}
            }
        },
        "handler.loginResponse": {
            "type": "object",
            "properties": {
                "session": {"$ref": "#/definitions/handler.sessionResponse"},
                "redirect": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "AGROCEAN Console",
	Description:      "Session gateway and role-aware proxy in front of the AGROCEAN management API.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
