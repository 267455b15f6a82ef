// Package docs holds the OpenAPI document served under /swagger. Regenerate with `swag init -g cmd/main.go`.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "API Support",
            "url": "https://github.com/guttosm/stockreturn"
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
        "/api/v1/stocks/calculate": {
            "post": {
                "description": "Computes what an amount invested in a symbol on a past date is worth today.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["stocks"],
                "summary": "Calculate investment returns",
                "parameters": [
                    {
                        "description": "Investment to evaluate",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/dto.CalculateRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.CalculateResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/api/v1/stocks/info/{symbol}": {
            "get": {
                "description": "Returns the most recent daily close of a symbol.",
                "produces": ["application/json"],
                "tags": ["stocks"],
                "summary": "Current stock price",
                "parameters": [
                    {"type": "string", "description": "Ticker symbol", "name": "symbol", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.StockInfoResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/healthz": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Liveness probe",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/readyz": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Readiness probe",
                "responses": {"200": {"description": "OK"}, "503": {"description": "Service Unavailable"}}
            }
        }
    },
    "definitions": {
        "dto.CalculateRequest": {
            "type": "object",
            "required": ["amount", "date", "symbol"],
            "properties": {
                "amount": {"type": "number", "example": 1000},
                "date": {"type": "string", "example": "2020-01-02"},
                "symbol": {"type": "string", "example": "AAPL"}
            }
        },
        "dto.CalculateResponse": {
            "type": "object",
            "properties": {
                "symbol": {"type": "string", "example": "AAPL"},
                "investmentDate": {"type": "string", "example": "2020-01-02"},
                "originalAmount": {"type": "number", "example": 1000},
                "historicalPrice": {"type": "string", "example": "150.00"},
                "currentPrice": {"type": "string", "example": "180.00"},
                "sharesPurchased": {"type": "string", "example": "6.6667"},
                "currentValue": {"type": "string", "example": "1200.00"},
                "totalReturn": {"type": "string", "example": "200.00"},
                "returnPercentage": {"type": "string", "example": "20.00"},
                "annualizedReturn": {"type": "string", "example": "3.71"},
                "yearsHeld": {"type": "string", "example": "5.00"}
            }
        },
        "dto.StockInfoResponse": {
            "type": "object",
            "properties": {
                "symbol": {"type": "string", "example": "AAPL"},
                "currentPrice": {"type": "string", "example": "180.00"},
                "timestamp": {"type": "string", "example": "2025-01-02T15:04:05Z"}
            }
        },
        "dto.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string", "example": "Missing required fields: symbol, date, amount"},
                "details": {"type": "string"},
                "timestamp": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "stockreturn API",
	Description:      "Historical investment return calculator.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
