package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Travel & Attendance Analytics Engine",
        "description": "Normalises monthly attendance/travel workbooks into a relational store and serves cross-sheet KPIs, anomaly detection, and multi-month aggregation.",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": ["http"],
    "tags": [
        {"name": "Ingestion", "description": "Workbook upload, progress, and month lifecycle"},
        {"name": "Aggregation", "description": "Cross-sheet KPIs, projects, departments, anomalies"},
        {"name": "Observability", "description": "Health, readiness, and metrics"}
    ],
    "paths": {
        "/upload": {
            "post": {
                "tags": ["Ingestion"],
                "summary": "Upload a monthly workbook",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "file", "in": "formData", "required": true, "type": "file"}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/progress/{task_id}": {
            "get": {
                "tags": ["Ingestion"],
                "summary": "Read an ingestion task's progress",
                "parameters": [
                    {"name": "task_id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not Found"}
                }
            }
        },
        "/months": {
            "get": {
                "tags": ["Ingestion"],
                "summary": "List months present in the store",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/months/{m}": {
            "delete": {
                "tags": ["Ingestion"],
                "summary": "Delete one month's rows",
                "parameters": [
                    {"name": "m", "in": "path", "required": true, "type": "string", "description": "YYYY-MM"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/analyze": {
            "post": {
                "tags": ["Aggregation"],
                "summary": "Summary KPIs plus dashboard bundle",
                "parameters": [
                    {"name": "months", "in": "query", "type": "string", "description": "comma-separated YYYY-MM"},
                    {"name": "quarter", "in": "query", "type": "integer"},
                    {"name": "year", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/booking-behavior": {
            "get": {
                "tags": ["Aggregation"],
                "summary": "Booking-urgency metrics",
                "parameters": [
                    {"name": "months", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/projects": {
            "get": {
                "tags": ["Aggregation"],
                "summary": "List projects, optionally top-N by total cost",
                "parameters": [
                    {"name": "months", "in": "query", "type": "string"},
                    {"name": "top_n", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/projects/{code}/orders": {
            "get": {
                "tags": ["Aggregation"],
                "summary": "List orders for one project code",
                "parameters": [
                    {"name": "code", "in": "path", "required": true, "type": "string"},
                    {"name": "months", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/departments/hierarchy": {
            "get": {
                "tags": ["Aggregation"],
                "summary": "Three-level department forest",
                "parameters": [
                    {"name": "months", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/departments/list": {
            "get": {
                "tags": ["Aggregation"],
                "summary": "Department summaries at one level",
                "parameters": [
                    {"name": "months", "in": "query", "type": "string"},
                    {"name": "level", "in": "query", "required": true, "type": "integer"},
                    {"name": "parent", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/departments/details": {
            "get": {
                "tags": ["Aggregation"],
                "summary": "One department's dossier",
                "parameters": [
                    {"name": "months", "in": "query", "type": "string"},
                    {"name": "name", "in": "query", "required": true, "type": "string"},
                    {"name": "level", "in": "query", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/departments/level1/statistics": {
            "get": {
                "tags": ["Aggregation"],
                "summary": "Level-1 department plus child breakdown",
                "parameters": [
                    {"name": "months", "in": "query", "type": "string"},
                    {"name": "name", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/departments/level2/statistics": {
            "get": {
                "tags": ["Aggregation"],
                "summary": "Level-2 department plus child breakdown",
                "parameters": [
                    {"name": "months", "in": "query", "type": "string"},
                    {"name": "name", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/anomalies": {
            "get": {
                "tags": ["Aggregation"],
                "summary": "List detected anomalies, optionally exported",
                "parameters": [
                    {"name": "months", "in": "query", "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "description": "csv|pdf"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/health": {
            "get": {
                "tags": ["Observability"],
                "summary": "Liveness check",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/ready": {
            "get": {
                "tags": ["Observability"],
                "summary": "Readiness check",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/metrics": {
            "get": {
                "tags": ["Observability"],
                "summary": "Prometheus scrape endpoint",
                "responses": {"200": {"description": "OK"}}
            }
        }
    },
    "definitions": {
        "OrderBreakdown": {
            "type": "object",
            "properties": {
                "flight": {"type": "integer"},
                "hotel": {"type": "integer"},
                "train": {"type": "integer"},
                "total": {"type": "integer"}
            }
        },
        "Summary": {
            "type": "object",
            "properties": {
                "total_cost": {"type": "number"},
                "avg_work_hours": {"type": "number"},
                "holiday_avg_work_hours": {"type": "number"},
                "anomaly_count": {"type": "integer"},
                "total_orders": {"type": "integer"},
                "order_breakdown": {"$ref": "#/definitions/OrderBreakdown"},
                "over_standard_count": {"type": "integer"},
                "over_standard_breakdown": {"$ref": "#/definitions/OrderBreakdown"},
                "flight_over_type_breakdown": {"type": "object"},
                "total_project_count": {"type": "integer"}
            }
        },
        "BookingBehavior": {
            "type": "object",
            "properties": {
                "total_orders": {"type": "integer"},
                "urgent_orders": {"type": "integer"},
                "urgent_ratio": {"type": "number"},
                "avg_advance_days": {"type": "number"}
            }
        },
        "AnomalyListItem": {
            "type": "object",
            "properties": {
                "date": {"type": "string"},
                "employee_name": {"type": "string"},
                "department_path": {"type": "array", "items": {"type": "string"}},
                "kind": {"type": "string"},
                "attendance_status": {"type": "string"},
                "detail": {"type": "string"}
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
                "success": {"type": "boolean"},
                "message": {"type": "string"},
                "data": {"type": "object"}
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
