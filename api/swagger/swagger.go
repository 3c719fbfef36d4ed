package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "ASQ-3 Screening API",
        "description": "Developmental screening engine: questionnaires, scoring, classification and follow-up",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "security": [{"BearerAuth": []}],
    "tags": [
        {"name": "Reference", "description": "ASQ-3 domains, age intervals, questions and recommendations"},
        {"name": "Screenings", "description": "Screening workflow"},
        {"name": "Interventions", "description": "Follow-up actions on completed screenings"}
    ],
    "paths": {
        "/asq3/domains": {
            "get": {
                "tags": ["Reference"],
                "summary": "List developmental domains",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/asq3/age-intervals": {
            "get": {
                "tags": ["Reference"],
                "summary": "List questionnaire age intervals",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/asq3/age-intervals/{id}/questions": {
            "get": {
                "tags": ["Reference"],
                "summary": "Question sheet of an age interval grouped by domain",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/asq3/recommendations": {
            "get": {
                "tags": ["Reference"],
                "summary": "Recommendation texts for a domain and age interval",
                "parameters": [
                    {"name": "domain_id", "in": "query", "required": true, "type": "string"},
                    {"name": "age_interval_id", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/asq3/reference/reload": {
            "post": {
                "tags": ["Reference"],
                "summary": "Reload reference data (ADMIN)",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/children/{childId}/screenings": {
            "get": {
                "tags": ["Screenings"],
                "summary": "List a child's screenings",
                "parameters": [
                    {"name": "childId", "in": "path", "required": true, "type": "string"},
                    {"name": "status", "in": "query", "type": "string", "enum": ["in_progress", "completed", "cancelled"]},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Screenings"],
                "summary": "Start a screening",
                "parameters": [
                    {"name": "childId", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "schema": {"$ref": "#/definitions/StartScreeningRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "412": {"description": "Reference data or child not usable", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Age out of range", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/screenings/{id}": {
            "get": {
                "tags": ["Screenings"],
                "summary": "Screening detail with answers and results",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "patch": {
                "tags": ["Screenings"],
                "summary": "Update notes",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateNotesRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/screenings/{id}/answers": {
            "post": {
                "tags": ["Screenings"],
                "summary": "Save a batch of answers",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SubmitAnswersRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Screening not in progress or concurrent update", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Question belongs to another age interval", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/screenings/{id}/complete": {
            "post": {
                "tags": ["Screenings"],
                "summary": "Score, classify and complete",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Unanswered questions remain", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/screenings/{id}/cancel": {
            "post": {
                "tags": ["Screenings"],
                "summary": "Cancel an in-progress screening",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/screenings/{id}/progress": {
            "get": {
                "tags": ["Screenings"],
                "summary": "Answering progress",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/screenings/{id}/results": {
            "get": {
                "tags": ["Screenings"],
                "summary": "Domain results of a completed screening",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/screenings/{id}/recommendations": {
            "get": {
                "tags": ["Screenings"],
                "summary": "Recommendations for domains not classified sesuai",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/screenings/{id}/export": {
            "get": {
                "tags": ["Screenings"],
                "summary": "Download results as CSV, PDF or XLSX",
                "produces": ["text/csv", "application/pdf", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf", "xlsx"]}
                ],
                "responses": {"200": {"description": "File"}}
            }
        },
        "/screenings/{id}/interventions": {
            "get": {
                "tags": ["Interventions"],
                "summary": "List interventions",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Interventions"],
                "summary": "Add an intervention",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateInterventionRequest"}}
                ],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/screenings/{id}/interventions/{interventionId}": {
            "patch": {
                "tags": ["Interventions"],
                "summary": "Update an intervention",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "interventionId", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateInterventionRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "delete": {
                "tags": ["Interventions"],
                "summary": "Delete an intervention",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "interventionId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/screenings/{id}/interventions/{interventionId}/complete": {
            "post": {
                "tags": ["Interventions"],
                "summary": "Mark an intervention completed",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "interventionId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        }
    },
    "definitions": {
        "StartScreeningRequest": {
            "type": "object",
            "properties": {
                "screening_date": {"type": "string", "format": "date"},
                "notes": {"type": "string"}
            }
        },
        "UpdateNotesRequest": {
            "type": "object",
            "properties": {
                "notes": {"type": "string"}
            }
        },
        "AnswerItem": {
            "type": "object",
            "properties": {
                "question_id": {"type": "string"},
                "answer": {"type": "string", "enum": ["yes", "sometimes", "no"]}
            },
            "required": ["question_id", "answer"]
        },
        "SubmitAnswersRequest": {
            "type": "object",
            "properties": {
                "answers": {"type": "array", "items": {"$ref": "#/definitions/AnswerItem"}}
            },
            "required": ["answers"]
        },
        "CreateInterventionRequest": {
            "type": "object",
            "properties": {
                "domain_id": {"type": "string"},
                "type": {"type": "string", "enum": ["stimulation", "referral", "follow_up", "counseling", "other"]},
                "action": {"type": "string"},
                "notes": {"type": "string"},
                "follow_up_date": {"type": "string", "format": "date"}
            },
            "required": ["action"]
        },
        "UpdateInterventionRequest": {
            "type": "object",
            "properties": {
                "domain_id": {"type": "string"},
                "type": {"type": "string", "enum": ["stimulation", "referral", "follow_up", "counseling", "other"]},
                "action": {"type": "string"},
                "notes": {"type": "string"},
                "status": {"type": "string", "enum": ["planned", "in_progress", "completed", "cancelled"]},
                "follow_up_date": {"type": "string", "format": "date"}
            }
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
