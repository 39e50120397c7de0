// Package docs registers the OpenAPI document served under /swagger.
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
        "/wallet/balance": {"get": {"security": [{"BearerAuth": []}], "tags": ["wallet"], "summary": "Caller balance", "responses": {"200": {"description": "OK"}}}},
        "/wallet/transactions": {"get": {"security": [{"BearerAuth": []}], "tags": ["wallet"], "summary": "Caller ledger entries", "responses": {"200": {"description": "OK"}}}},
        "/wallet/recharges": {"post": {"security": [{"BearerAuth": []}], "tags": ["wallet"], "summary": "Start a recharge checkout", "responses": {"201": {"description": "Created"}}}},
        "/calls": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["calls"], "summary": "Call history", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["calls"], "summary": "Open a call room", "responses": {"201": {"description": "Created"}}}
        },
        "/calls/{room}/finalize": {"post": {"security": [{"BearerAuth": []}], "tags": ["calls"], "summary": "Settle a call", "parameters": [{"name": "room", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}, "409": {"description": "Already finalized"}}}},
        "/calls/{room}/cancel": {"post": {"security": [{"BearerAuth": []}], "tags": ["calls"], "summary": "Close a call without billing", "parameters": [{"name": "room", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}}}},
        "/streamer/rate": {"put": {"security": [{"BearerAuth": []}], "tags": ["pricing"], "summary": "Set own price per minute", "responses": {"200": {"description": "OK"}}}},
        "/withdrawals": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["withdrawals"], "summary": "List own withdrawals", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["withdrawals"], "summary": "Request a withdrawal", "responses": {"202": {"description": "Accepted"}, "403": {"description": "KYC required"}, "422": {"description": "Insufficient balance"}, "429": {"description": "Daily limit reached"}}}
        },
        "/withdrawals/eligibility": {"get": {"security": [{"BearerAuth": []}], "tags": ["withdrawals"], "summary": "Check withdrawal eligibility", "parameters": [{"name": "amount", "in": "query", "required": true, "type": "integer"}], "responses": {"200": {"description": "OK"}}}},
        "/kyc": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["kyc"], "summary": "Latest KYC submission", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["kyc"], "summary": "Submit KYC", "responses": {"201": {"description": "Created"}, "409": {"description": "Submission already active"}}}
        },
        "/webhooks/recharge": {"post": {"tags": ["webhooks"], "summary": "Stripe checkout events", "responses": {"200": {"description": "OK"}}}},
        "/webhooks/payout": {"post": {"tags": ["webhooks"], "summary": "Pix gateway transfer events", "responses": {"200": {"description": "OK"}}}}
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Enter your Bearer token in the format: ` + "`" + `Bearer {token}` + "`" + `",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "localhost:3000",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Payminute API",
	Description:      "Settlement core of a pay-per-minute video call marketplace",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
