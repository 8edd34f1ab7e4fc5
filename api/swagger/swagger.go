package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Campus Election API",
        "description": "Ballot casting and results tallying engine",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Elections", "description": "Election lifecycle management"},
        {"name": "Ballots", "description": "Participation and ballot casting"},
        {"name": "Results", "description": "Tallies, turnout and exports"}
    ],
    "paths": {
        "/elections": {
            "get": {
                "tags": ["Elections"],
                "summary": "List elections",
                "parameters": [
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Elections"],
                "summary": "Create election",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateElectionRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/elections/{id}": {
            "get": {
                "tags": ["Elections"],
                "summary": "Get election with positions and candidates",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/elections/{id}/transition": {
            "post": {
                "tags": ["Elections"],
                "summary": "Move election to a new status",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/TransitionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/elections/{id}/release": {
            "post": {
                "tags": ["Elections"],
                "summary": "Release or retract per-position results",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ReleaseRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/elections/{id}/participation": {
            "post": {
                "tags": ["Ballots"],
                "summary": "Confirm intent to participate",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/elections/{id}/ballots": {
            "post": {
                "tags": ["Ballots"],
                "summary": "Cast a ballot",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CastBallotRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Already voted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/elections/{id}/ballot-status": {
            "get": {
                "tags": ["Ballots"],
                "summary": "Ballot standing for the authenticated voter",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/elections/{id}/results": {
            "get": {
                "tags": ["Results"],
                "summary": "Tallies for every position",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "department", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/elections/{id}/positions/{positionId}/results": {
            "get": {
                "tags": ["Results"],
                "summary": "Tally for one position",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "positionId", "in": "path", "required": true, "type": "string"},
                    {"name": "department", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/elections/{id}/turnout": {
            "get": {
                "tags": ["Results"],
                "summary": "Participation and voting ratios",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "department", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/elections/{id}/results/export": {
            "get": {
                "tags": ["Results"],
                "summary": "Download results as CSV or PDF",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/elections/{id}/turnout/export": {
            "get": {
                "tags": ["Results"],
                "summary": "Download turnout snapshot as CSV",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        }
    },
    "definitions": {
        "CreateElectionRequest": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "scope": {"type": "string", "enum": ["INSTITUTION", "DEPARTMENT"]},
                "department_id": {"type": "string"},
                "year": {"type": "integer"},
                "scheduled_date": {"type": "string"},
                "ballot_open": {"type": "string"},
                "ballot_close": {"type": "string"},
                "positions": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/CreatePositionRequest"}
                }
            },
            "required": ["title", "scope", "year", "scheduled_date", "ballot_open", "ballot_close", "positions"]
        },
        "CreatePositionRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "max_votes": {"type": "integer"},
                "order_index": {"type": "integer"},
                "candidates": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/CreateCandidateRequest"}
                }
            },
            "required": ["name", "max_votes"]
        },
        "CreateCandidateRequest": {
            "type": "object",
            "properties": {
                "seq": {"type": "integer"},
                "full_name": {"type": "string"},
                "affiliation": {"type": "string"}
            },
            "required": ["seq", "full_name"]
        },
        "TransitionRequest": {
            "type": "object",
            "properties": {
                "target_status": {"type": "string", "enum": ["UPCOMING", "ACTIVE", "COMPLETED", "CANCELLED"]}
            },
            "required": ["target_status"]
        },
        "ReleaseRequest": {
            "type": "object",
            "properties": {
                "position_id": {"type": "string"},
                "released": {"type": "boolean"}
            },
            "required": ["position_id"]
        },
        "CastBallotRequest": {
            "type": "object",
            "properties": {
                "selections": {
                    "type": "object",
                    "additionalProperties": {
                        "type": "array",
                        "items": {"type": "string"}
                    }
                }
            },
            "required": ["selections"]
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
