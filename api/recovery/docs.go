// Package recovery holds the generated OpenAPI description served under
// /swagger/. Regenerate with:
//
//	swag init -g internal/recovery/http/router.go -o api/recovery
package recovery

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "AussieBroadWAN Team",
            "url": "https://github.com/aussiebroadwan/regain"
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
        "/livez": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Health Check Endpoint",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/recoversdk.HealthResponse"}
                    }
                }
            }
        },
        "/readyz": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Readiness Check Endpoint",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/recoversdk.HealthResponse"}
                    },
                    "503": {
                        "description": "service not ready",
                        "schema": {"$ref": "#/definitions/recoversdk.HealthResponse"}
                    }
                }
            }
        },
        "/v1/recovery/start": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Recovery"],
                "summary": "Start Account Recovery",
                "parameters": [
                    {
                        "description": "identifier and trust factors",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/recoversdk.StartRequest"}
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {"$ref": "#/definitions/recoversdk.StartResponse"}
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {"$ref": "#/definitions/recoversdk.APIError"}
                    },
                    "429": {"description": "rate limited"}
                }
            }
        },
        "/v1/recovery/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Recovery"],
                "summary": "Get Recovery Session",
                "parameters": [
                    {"type": "string", "description": "session id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/recoversdk.SessionResponse"}
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {"$ref": "#/definitions/recoversdk.APIError"}
                    }
                }
            }
        },
        "/v1/recovery/{id}/answers": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Recovery"],
                "summary": "Submit Re-verification Answers",
                "parameters": [
                    {"type": "string", "description": "session id", "name": "id", "in": "path", "required": true},
                    {
                        "description": "answers keyed by question id",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/recoversdk.AnswersRequest"}
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/recoversdk.SessionResponse"}
                    },
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/recoversdk.APIError"}},
                    "403": {"description": "session blocked", "schema": {"$ref": "#/definitions/recoversdk.APIError"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/recoversdk.APIError"}},
                    "410": {"description": "session expired", "schema": {"$ref": "#/definitions/recoversdk.APIError"}}
                }
            }
        },
        "/v1/recovery/complete": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Recovery"],
                "summary": "Complete Account Recovery",
                "parameters": [
                    {
                        "description": "the recovery token",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/recoversdk.CompleteRequest"}
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/recoversdk.CompleteResponse"}
                    },
                    "400": {"description": "invalid or expired token", "schema": {"$ref": "#/definitions/recoversdk.APIError"}},
                    "404": {"description": "no verified session for the token", "schema": {"$ref": "#/definitions/recoversdk.APIError"}}
                }
            }
        },
        "/v1/tokens/validate": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Tokens"],
                "summary": "Validate Recovery Token",
                "parameters": [
                    {
                        "description": "the token to check",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/recoversdk.ValidateRequest"}
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/recoversdk.ValidateResponse"}
                    },
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/recoversdk.APIError"}}
                }
            }
        },
        "/v1/tokens/stats": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Tokens"],
                "summary": "Token Store Statistics",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/recoversdk.StatsResponse"}
                    }
                }
            }
        },
        "/v1/users/{id}/tokens/revoke": {
            "post": {
                "produces": ["application/json"],
                "tags": ["Tokens"],
                "summary": "Revoke User Recovery Tokens",
                "parameters": [
                    {"type": "string", "description": "user id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/recoversdk.RevokeResponse"}
                    },
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/recoversdk.APIError"}}
                }
            }
        },
        "/v1/enrollments/{identifier}": {
            "put": {
                "consumes": ["application/json"],
                "tags": ["Enrollments"],
                "summary": "Enroll Authenticator",
                "parameters": [
                    {"type": "string", "description": "email or phone", "name": "identifier", "in": "path", "required": true},
                    {
                        "description": "base32 TOTP secret",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/recoversdk.EnrollRequest"}
                    }
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/recoversdk.APIError"}}
                }
            },
            "delete": {
                "tags": ["Enrollments"],
                "summary": "Unenroll Authenticator",
                "parameters": [
                    {"type": "string", "description": "email or phone", "name": "identifier", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/recoversdk.APIError"}}
                }
            }
        }
    },
    "definitions": {
        "recoversdk.APIError": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "error_description": {"type": "string"}
            }
        },
        "recoversdk.AnswersRequest": {
            "type": "object",
            "properties": {
                "answers": {
                    "type": "object",
                    "additionalProperties": {"type": "string"}
                }
            }
        },
        "recoversdk.CompleteRequest": {
            "type": "object",
            "properties": {
                "token": {"type": "string"}
            }
        },
        "recoversdk.CompleteResponse": {
            "type": "object",
            "properties": {
                "confirmation_id": {"type": "string"},
                "user_id": {"type": "string"},
                "completed_at": {"type": "string"},
                "grant": {"type": "string"}
            }
        },
        "recoversdk.EnrollRequest": {
            "type": "object",
            "properties": {
                "secret": {"type": "string"}
            }
        },
        "recoversdk.HealthResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "uptime": {"type": "string"},
                "version": {"type": "string"},
                "checks": {"$ref": "#/definitions/recoversdk.HealthChecks"}
            }
        },
        "recoversdk.HealthChecks": {
            "type": "object",
            "properties": {
                "database": {"type": "string"}
            }
        },
        "recoversdk.Question": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "prompt": {"type": "string"},
                "kind": {"type": "string"},
                "choices": {"type": "array", "items": {"type": "string"}},
                "required": {"type": "boolean"}
            }
        },
        "recoversdk.RiskFactors": {
            "type": "object",
            "properties": {
                "ip_reputation": {"type": "number"},
                "device_fingerprint": {"type": "number"},
                "velocity": {"type": "number"},
                "location_anomaly": {"type": "number"},
                "request_pattern": {"type": "number"},
                "time_pattern": {"type": "number"}
            }
        },
        "recoversdk.SessionResponse": {
            "type": "object",
            "properties": {
                "session_id": {"type": "string"},
                "state": {"type": "string"},
                "risk_level": {"type": "string"},
                "confidence": {"type": "number"},
                "blocked": {"type": "boolean"},
                "questions": {"type": "array", "items": {"$ref": "#/definitions/recoversdk.Question"}},
                "expires_at": {"type": "string"}
            }
        },
        "recoversdk.StartRequest": {
            "type": "object",
            "properties": {
                "identifier": {"type": "string"},
                "factors": {"$ref": "#/definitions/recoversdk.RiskFactors"}
            }
        },
        "recoversdk.StartResponse": {
            "type": "object",
            "properties": {
                "session_id": {"type": "string"},
                "state": {"type": "string"},
                "expires_at": {"type": "string"}
            }
        },
        "recoversdk.StatsResponse": {
            "type": "object",
            "properties": {
                "total_tokens": {"type": "integer"}
            }
        },
        "recoversdk.RevokeResponse": {
            "type": "object",
            "properties": {
                "revoked_count": {"type": "integer"}
            }
        },
        "recoversdk.ValidateRequest": {
            "type": "object",
            "properties": {
                "token": {"type": "string"}
            }
        },
        "recoversdk.ValidateResponse": {
            "type": "object",
            "properties": {
                "valid": {"type": "boolean"},
                "user_id": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "0.1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "Regain Account Recovery Service API",
	Description:      "Risk-scored account recovery: adaptive re-verification questions, single-use recovery tokens and signed completion grants.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
