// Package docs registers the OpenAPI document for the v1 API. The document is
// maintained by hand alongside the handler annotations; update both together.
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
        "/clips": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Returns every clip of the authenticated user, newest first, with its latest render.",
                "produces": ["application/json"],
                "tags": ["clips"],
                "summary": "List the caller's clips",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/dto.ClipResponse"}}},
                    "401": {"description": "unauthorized", "schema": {"type": "string"}},
                    "500": {"description": "internal server error", "schema": {"type": "string"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Runs persona, scene and sentiment analysis, then generates a title and description and stores the clip. Lite users are limited to 15 clips per UTC day.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["clips"],
                "summary": "Generate a viral clip",
                "parameters": [
                    {"description": "Clip generation request", "name": "clip", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.GenerateClipRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/dto.GenerateClipResponse"}},
                    "400": {"description": "Validation failed", "schema": {"type": "string"}},
                    "401": {"description": "unauthorized", "schema": {"type": "string"}},
                    "403": {"description": "Lite users can only generate 15 clips per day", "schema": {"type": "string"}},
                    "500": {"description": "internal server error", "schema": {"type": "string"}}
                }
            }
        },
        "/clips/{id}/render": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Cuts the clip from its source video, optionally embeds captions, and uploads it. Subtitles default to the caller's preference.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["clips"],
                "summary": "Queue a render of a clip",
                "parameters": [
                    {"type": "integer", "description": "Clip ID", "name": "id", "in": "path", "required": true},
                    {"description": "Render options", "name": "render", "in": "body", "schema": {"$ref": "#/definitions/dto.RenderRequest"}}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/dto.ClipRenderResponse"}},
                    "400": {"description": "Invalid clip id", "schema": {"type": "string"}},
                    "401": {"description": "unauthorized", "schema": {"type": "string"}},
                    "404": {"description": "clip not found", "schema": {"type": "string"}},
                    "500": {"description": "internal server error", "schema": {"type": "string"}}
                }
            }
        },
        "/usage": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Returns clips generated today (UTC), the lite daily limit and the remaining allowance.",
                "produces": ["application/json"],
                "tags": ["usage"],
                "summary": "Today's clip usage",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/service.UsageSummary"}},
                    "401": {"description": "unauthorized", "schema": {"type": "string"}},
                    "500": {"description": "internal server error", "schema": {"type": "string"}}
                }
            }
        },
        "/tier": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Returns lite or pro. Users without a tier record are reported as lite.",
                "produces": ["application/json"],
                "tags": ["subscriptions"],
                "summary": "Get the caller's tier",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.TierResponse"}},
                    "401": {"description": "unauthorized", "schema": {"type": "string"}},
                    "500": {"description": "internal server error", "schema": {"type": "string"}}
                }
            }
        },
        "/users/me": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Get the current user",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.UserResponse"}},
                    "401": {"description": "unauthorized", "schema": {"type": "string"}},
                    "404": {"description": "user not found", "schema": {"type": "string"}},
                    "500": {"description": "internal server error", "schema": {"type": "string"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Creates or refreshes the user behind the bearer token and provisions a lite tier on first sign-in.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Sign in",
                "parameters": [
                    {"description": "Profile fields", "name": "user", "in": "body", "schema": {"$ref": "#/definitions/dto.SignInRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.UserResponse"}},
                    "400": {"description": "Validation failed", "schema": {"type": "string"}},
                    "401": {"description": "unauthorized", "schema": {"type": "string"}},
                    "500": {"description": "internal server error", "schema": {"type": "string"}}
                }
            }
        },
        "/users/me/preferences": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Get creation-form defaults",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.PreferencesResponse"}},
                    "401": {"description": "unauthorized", "schema": {"type": "string"}},
                    "500": {"description": "internal server error", "schema": {"type": "string"}}
                }
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "description": "Omitted fields keep their stored values.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Update creation-form defaults",
                "parameters": [
                    {"description": "Preferences update", "name": "preferences", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.UpdatePreferencesRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.PreferencesResponse"}},
                    "400": {"description": "Validation failed", "schema": {"type": "string"}},
                    "401": {"description": "unauthorized", "schema": {"type": "string"}},
                    "500": {"description": "internal server error", "schema": {"type": "string"}}
                }
            }
        },
        "/subscriptions/checkout": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["subscriptions"],
                "summary": "Start a Stripe Checkout session for the pro plan",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.SessionURLResponse"}},
                    "401": {"description": "unauthorized", "schema": {"type": "string"}},
                    "404": {"description": "user not found", "schema": {"type": "string"}},
                    "500": {"description": "internal server error", "schema": {"type": "string"}},
                    "503": {"description": "billing is not enabled", "schema": {"type": "string"}}
                }
            }
        },
        "/subscriptions/portal": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["subscriptions"],
                "summary": "Create a Stripe Customer Portal session",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.SessionURLResponse"}},
                    "401": {"description": "unauthorized", "schema": {"type": "string"}},
                    "404": {"description": "user not found", "schema": {"type": "string"}},
                    "500": {"description": "internal server error", "schema": {"type": "string"}},
                    "503": {"description": "billing is not enabled", "schema": {"type": "string"}}
                }
            }
        },
        "/subscriptions/webhook": {
            "post": {
                "description": "Receives Stripe events. Authenticated by the Stripe-Signature header, not a bearer token.",
                "consumes": ["application/json"],
                "tags": ["subscriptions"],
                "summary": "Stripe webhook",
                "parameters": [
                    {"type": "string", "description": "Stripe signature", "name": "Stripe-Signature", "in": "header", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "bad payload or signature", "schema": {"type": "string"}},
                    "500": {"description": "failed to apply event", "schema": {"type": "string"}},
                    "503": {"description": "billing is not enabled", "schema": {"type": "string"}}
                }
            }
        },
        "/healthz": {
            "get": {
                "description": "Also served at /healthz outside the base path.",
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Liveness and database check",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "503": {"description": "database unreachable", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        }
    },
    "definitions": {
        "dto.GenerateClipRequest": {
            "type": "object",
            "required": ["artistName", "sceneTheme", "videoSource", "videoUrl"],
            "properties": {
                "artistName": {"type": "string"},
                "keywords": {"type": "string"},
                "sceneTheme": {"type": "string"},
                "videoSource": {"type": "string", "enum": ["youtube", "upload"]},
                "videoUrl": {"type": "string"}
            }
        },
        "dto.GenerateClipResponse": {
            "type": "object",
            "properties": {
                "clip": {"$ref": "#/definitions/dto.ClipResponse"},
                "success": {"type": "boolean"}
            }
        },
        "dto.ClipResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "userId": {"type": "string"},
                "videoUrl": {"type": "string"},
                "videoSource": {"type": "string"},
                "artistName": {"type": "string"},
                "sceneTheme": {"type": "string"},
                "keywords": {"type": "string"},
                "clipTitle": {"type": "string"},
                "clipDescription": {"type": "string"},
                "clipUrl": {"type": "string"},
                "startTime": {"type": "integer"},
                "endTime": {"type": "integer"},
                "duration": {"type": "integer"},
                "hasSubtitles": {"type": "boolean"},
                "viralScore": {"type": "integer"},
                "personaAnalysis": {"type": "object"},
                "themeAnalysis": {"type": "object"},
                "sentimentAnalysis": {"type": "object"},
                "latestRender": {"$ref": "#/definitions/dto.ClipRenderResponse"},
                "createdAt": {"type": "string"}
            }
        },
        "dto.ClipRenderResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "clipId": {"type": "integer"},
                "status": {"type": "string", "enum": ["queued", "processing", "complete", "failed"]},
                "withSubtitles": {"type": "boolean"},
                "url": {"type": "string"},
                "error": {"type": "string"},
                "createdAt": {"type": "string"},
                "updatedAt": {"type": "string"}
            }
        },
        "dto.RenderRequest": {
            "type": "object",
            "properties": {"withSubtitles": {"type": "boolean"}}
        },
        "dto.TierResponse": {
            "type": "object",
            "properties": {"tier": {"type": "string", "enum": ["lite", "pro"]}}
        },
        "dto.SessionURLResponse": {
            "type": "object",
            "properties": {"url": {"type": "string"}}
        },
        "dto.SignInRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "loginMethod": {"type": "string"},
                "name": {"type": "string"}
            }
        },
        "dto.UserResponse": {
            "type": "object",
            "properties": {
                "userId": {"type": "string"},
                "name": {"type": "string"},
                "email": {"type": "string"},
                "loginMethod": {"type": "string"},
                "role": {"type": "string"},
                "createdAt": {"type": "string"},
                "lastSignedIn": {"type": "string"}
            }
        },
        "dto.UpdatePreferencesRequest": {
            "type": "object",
            "properties": {
                "defaultArtistName": {"type": "string"},
                "defaultTheme": {"type": "string"},
                "subtitlesEnabled": {"type": "boolean"}
            }
        },
        "dto.PreferencesResponse": {
            "type": "object",
            "properties": {
                "defaultArtistName": {"type": "string"},
                "defaultTheme": {"type": "string"},
                "subtitlesEnabled": {"type": "boolean"}
            }
        },
        "service.UsageSummary": {
            "type": "object",
            "properties": {
                "clipsGenerated": {"type": "integer"},
                "dailyLimit": {"type": "integer"},
                "remaining": {"type": "integer"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/v1",
	Schemes:          []string{"http", "https"},
	Title:            "Viral Clip API",
	Description:      "Generate short-form clips with AI-written titles and descriptions.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
