package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "SMA Timetable API",
        "description": "Constraint and feasibility validation for school timetable generation",
        "version": "0.2.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "SchoolTiming", "description": "Active days and periods of the school week"},
        {"name": "ScheduleSettings", "description": "Per-term subject, teacher and substitution rules"},
        {"name": "Feasibility", "description": "Pre-generation validation reports"},
        {"name": "System", "description": "Health and service metrics"}
    ],
    "paths": {
        "/school-timing": {
            "get": {
                "tags": ["SchoolTiming"],
                "summary": "Get school timing",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["SchoolTiming"],
                "summary": "Update school timing",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateSchoolTimingRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid week", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedule-settings": {
            "get": {
                "tags": ["ScheduleSettings"],
                "summary": "Get schedule settings of a term",
                "parameters": [
                    {"name": "termId", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedule-settings/subjects/{subjectId}": {
            "put": {
                "tags": ["ScheduleSettings"],
                "summary": "Replace the period rules of a subject",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "termId", "in": "query", "required": true, "type": "string"},
                    {"name": "subjectId", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpsertSubjectConstraintRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown subject", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedule-settings/teachers/{teacherId}": {
            "put": {
                "tags": ["ScheduleSettings"],
                "summary": "Replace the availability rules of a teacher",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "termId", "in": "query", "required": true, "type": "string"},
                    {"name": "teacherId", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpsertTeacherConstraintRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown teacher", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedule-settings/substitution": {
            "put": {
                "tags": ["ScheduleSettings"],
                "summary": "Set the substitution policy of a term",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "termId", "in": "query", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateSubstitutionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedule-settings/meetings": {
            "put": {
                "tags": ["ScheduleSettings"],
                "summary": "Replace the specialization meetings of a term",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "termId", "in": "query", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ReplaceMeetingsRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/feasibility/report": {
            "get": {
                "tags": ["Feasibility"],
                "summary": "Validate the constraints of a term",
                "parameters": [
                    {"name": "termId", "in": "query", "required": true, "type": "string"},
                    {"name": "phase", "in": "query", "type": "string"},
                    {"name": "relatedId", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/feasibility/preflight": {
            "get": {
                "tags": ["Feasibility"],
                "summary": "Check whether generation may start",
                "parameters": [
                    {"name": "termId", "in": "query", "required": true, "type": "string"},
                    {"name": "phase", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/feasibility/check": {
            "post": {
                "tags": ["Feasibility"],
                "summary": "Validate an ad-hoc snapshot",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CheckRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/feasibility/substitution-balance": {
            "get": {
                "tags": ["Feasibility"],
                "summary": "Compare substitution demand with spare teacher capacity",
                "parameters": [
                    {"name": "termId", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/feasibility/distribution": {
            "get": {
                "tags": ["Feasibility"],
                "summary": "Describe how a weekly load spreads over the week",
                "parameters": [
                    {"name": "periodsPerClass", "in": "query", "required": true, "type": "integer"},
                    {"name": "weekDays", "in": "query", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/feasibility/report/export": {
            "get": {
                "tags": ["Feasibility"],
                "summary": "Download the validation report",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "termId", "in": "query", "required": true, "type": "string"},
                    {"name": "phase", "in": "query", "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "File"},
                    "400": {"description": "Unsupported format", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/feasibility/report/links": {
            "post": {
                "tags": ["Feasibility"],
                "summary": "Archive the validation report behind a signed download link",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "termId", "in": "query", "required": true, "type": "string"},
                    {"name": "phase", "in": "query", "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Unsupported format", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/feasibility/downloads/{token}": {
            "get": {
                "tags": ["Feasibility"],
                "summary": "Download an archived validation report",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "token", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File"},
                    "403": {"description": "Invalid or expired link", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Report no longer available", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/system/metrics": {
            "get": {
                "tags": ["System"],
                "summary": "Service metrics snapshot",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "UpdateSchoolTimingRequest": {
            "type": "object",
            "properties": {
                "activeDays": {"type": "array", "items": {"type": "string"}},
                "periodsPerDay": {"type": "integer"}
            },
            "required": ["activeDays", "periodsPerDay"]
        },
        "UpsertSubjectConstraintRequest": {
            "type": "object",
            "properties": {
                "excludedPeriods": {"type": "array", "items": {"type": "integer"}},
                "preferredPeriods": {"type": "array", "items": {"type": "integer"}},
                "enableDoublePeriods": {"type": "boolean"}
            }
        },
        "DailyLimit": {
            "type": "object",
            "properties": {
                "min": {"type": "integer"},
                "max": {"type": "integer"},
                "windowStart": {"type": "integer"},
                "windowEnd": {"type": "integer"}
            }
        },
        "UpsertTeacherConstraintRequest": {
            "type": "object",
            "properties": {
                "maxConsecutive": {"type": "integer"},
                "excludedSlots": {"type": "object", "additionalProperties": {"type": "array", "items": {"type": "integer"}}},
                "dailyLimits": {"type": "object", "additionalProperties": {"$ref": "#/definitions/DailyLimit"}},
                "earlyExitMode": {"type": "string", "enum": ["manual", "auto"]},
                "earlyExit": {"type": "object", "additionalProperties": {"type": "integer"}},
                "maxFirstPeriods": {"type": "integer"},
                "maxLastPeriods": {"type": "integer"}
            }
        },
        "UpdateSubstitutionRequest": {
            "type": "object",
            "properties": {
                "method": {"type": "string", "enum": ["auto", "fixed", "manual"]},
                "maxTotalQuota": {"type": "integer"},
                "maxDailyTotal": {"type": "integer"},
                "fixedPerPeriod": {"type": "integer"}
            },
            "required": ["method", "maxTotalQuota"]
        },
        "Meeting": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "specializationId": {"type": "string"},
                "day": {"type": "string"},
                "period": {"type": "integer"},
                "teacherIds": {"type": "array", "items": {"type": "string"}}
            },
            "required": ["specializationId", "day", "period"]
        },
        "ReplaceMeetingsRequest": {
            "type": "object",
            "properties": {
                "meetings": {"type": "array", "items": {"$ref": "#/definitions/Meeting"}}
            }
        },
        "CheckRequest": {
            "type": "object",
            "properties": {
                "settings": {"type": "object"},
                "subjects": {"type": "array", "items": {"type": "object"}},
                "teachers": {"type": "array", "items": {"type": "object"}},
                "timing": {"type": "object"},
                "classCount": {"type": "integer"}
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
