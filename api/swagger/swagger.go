package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Aptiv Interns Platform API",
        "description": "Intern registration, search and messaging for the HR team",
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
        {"name": "Auth", "description": "Login and password management"},
        {"name": "Interns", "description": "Intern registration and lifecycle"},
        {"name": "Search", "description": "Intern search, filter options and exports"},
        {"name": "Messages", "description": "HR and intern messaging"},
        {"name": "Notifications", "description": "In-app notifications"},
        {"name": "Activities", "description": "Intern activity log"},
        {"name": "Attendance", "description": "Daily check-in and check-out"},
        {"name": "Documents", "description": "Intern document upload and download"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Exchange credentials for an access token",
                "security": [],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}],
                "responses": {
                    "200": {"description": "Token issued", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auth/change-password": {
            "post": {
                "tags": ["Auth"],
                "summary": "Change the caller's password",
                "responses": {"204": {"description": "Password changed"}}
            }
        },
        "/interns": {
            "get": {
                "tags": ["Interns"],
                "summary": "List interns",
                "parameters": [
                    {"in": "query", "name": "page", "type": "integer"},
                    {"in": "query", "name": "size", "type": "integer"},
                    {"in": "query", "name": "sortBy", "type": "string"},
                    {"in": "query", "name": "sortDirection", "type": "string", "enum": ["asc", "desc"]}
                ],
                "responses": {"200": {"description": "Page of interns", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Interns"],
                "summary": "Register one intern and send the welcome notification",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/InternRecord"}}],
                "responses": {
                    "201": {"description": "Intern created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Email already registered", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/interns/batch": {
            "post": {
                "tags": ["Interns"],
                "summary": "Register interns from a JSON list",
                "responses": {"201": {"description": "Batch persisted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/interns/batch/upload": {
            "post": {
                "tags": ["Interns"],
                "summary": "Register interns from a CSV or XLSX file",
                "consumes": ["multipart/form-data"],
                "parameters": [{"in": "formData", "name": "file", "type": "file", "required": true}],
                "responses": {"201": {"description": "Batch persisted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/interns/count": {
            "get": {"tags": ["Interns"], "summary": "Count interns", "responses": {"200": {"description": "Count"}}}
        },
        "/interns/active/count": {
            "get": {"tags": ["Interns"], "summary": "Count active interns", "responses": {"200": {"description": "Count"}}}
        },
        "/interns/upcoming-end-dates/count": {
            "get": {"tags": ["Interns"], "summary": "Count active interns ending within 30 days", "responses": {"200": {"description": "Count"}}}
        },
        "/interns/my": {
            "get": {"tags": ["Interns"], "summary": "Intern profile of the caller", "responses": {"200": {"description": "Intern"}}}
        },
        "/interns/{id}": {
            "get": {"tags": ["Interns"], "summary": "Get an intern", "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}], "responses": {"200": {"description": "Intern"}, "404": {"description": "Not found"}}},
            "patch": {"tags": ["Interns"], "summary": "Update intern details", "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}], "responses": {"200": {"description": "Intern"}}},
            "delete": {"tags": ["Interns"], "summary": "Delete an intern and its account", "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}], "responses": {"204": {"description": "Deleted"}}}
        },
        "/interns/{id}/status": {
            "patch": {"tags": ["Interns"], "summary": "Change intern status", "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}], "responses": {"200": {"description": "Intern"}}}
        },
        "/interns/{id}/welcome": {
            "post": {"tags": ["Interns"], "summary": "Resend the welcome notification", "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}], "responses": {"200": {"description": "Notification outcome"}}}
        },
        "/interns/search": {
            "get": {
                "tags": ["Search"],
                "summary": "Search interns",
                "parameters": [
                    {"in": "query", "name": "keyword", "type": "string"},
                    {"in": "query", "name": "department", "type": "string"},
                    {"in": "query", "name": "university", "type": "string"},
                    {"in": "query", "name": "major", "type": "string"},
                    {"in": "query", "name": "supervisor", "type": "string"},
                    {"in": "query", "name": "status", "type": "string", "enum": ["ACTIVE", "COMPLETED", "TERMINATED"]},
                    {"in": "query", "name": "startDateFrom", "type": "string", "format": "date"},
                    {"in": "query", "name": "startDateTo", "type": "string", "format": "date"},
                    {"in": "query", "name": "endDateFrom", "type": "string", "format": "date"},
                    {"in": "query", "name": "endDateTo", "type": "string", "format": "date"},
                    {"in": "query", "name": "page", "type": "integer"},
                    {"in": "query", "name": "size", "type": "integer"},
                    {"in": "query", "name": "sortBy", "type": "string"},
                    {"in": "query", "name": "sortDirection", "type": "string", "enum": ["asc", "desc"]}
                ],
                "responses": {
                    "200": {"description": "Page of intern summaries", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid query or pagination", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/interns/search/options": {
            "get": {"tags": ["Search"], "summary": "Distinct filter values", "responses": {"200": {"description": "Filter options"}}}
        },
        "/interns/search/statistics": {
            "get": {"tags": ["Search"], "summary": "Intern counts by status and department", "responses": {"200": {"description": "Statistics"}}}
        },
        "/interns/search/suggestions": {
            "get": {"tags": ["Search"], "summary": "Autocomplete suggestions", "parameters": [{"in": "query", "name": "query", "type": "string"}], "responses": {"200": {"description": "Suggestions"}}}
        },
        "/interns/search/export": {
            "get": {
                "tags": ["Search"],
                "summary": "Export matching interns",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [{"in": "query", "name": "format", "type": "string", "enum": ["csv", "pdf"]}],
                "responses": {"200": {"description": "Export file"}}
            }
        },
        "/interns/{id}/message": {
            "post": {"tags": ["Messages"], "summary": "Message one intern", "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}, {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/MessageRequest"}}], "responses": {"200": {"description": "Delivery outcome"}, "502": {"description": "Delivery failed"}}}
        },
        "/interns/message/batch": {
            "post": {"tags": ["Messages"], "summary": "Message selected interns", "responses": {"200": {"description": "Per-intern outcomes"}}}
        },
        "/interns/message/all": {
            "post": {"tags": ["Messages"], "summary": "Message every active intern", "responses": {"200": {"description": "Per-intern outcomes"}}}
        },
        "/messages/hr": {
            "post": {"tags": ["Messages"], "summary": "Message the intern's HR contact", "responses": {"200": {"description": "Delivery outcome"}}}
        },
        "/messages/my": {
            "get": {"tags": ["Messages"], "summary": "Message history visible to the caller", "parameters": [{"in": "query", "name": "page", "type": "integer"}, {"in": "query", "name": "size", "type": "integer"}], "responses": {"200": {"description": "Page of messages"}}}
        },
        "/messages/unread-count": {
            "get": {"tags": ["Messages"], "summary": "Unread received message count", "responses": {"200": {"description": "Count"}}}
        },
        "/messages/{id}/read": {
            "patch": {"tags": ["Messages"], "summary": "Mark a received message read", "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}], "responses": {"204": {"description": "Marked"}, "404": {"description": "Not found"}}}
        },
        "/interns/{id}/attendance": {
            "get": {
                "tags": ["Attendance"],
                "summary": "An intern's attendance history",
                "parameters": [
                    {"in": "path", "name": "id", "type": "string", "required": true},
                    {"in": "query", "name": "from", "type": "string", "format": "date"},
                    {"in": "query", "name": "to", "type": "string", "format": "date"}
                ],
                "responses": {"200": {"description": "Attendance rows"}, "404": {"description": "Not found"}}
            }
        },
        "/activities": {
            "get": {"tags": ["Activities"], "summary": "List every intern's activities", "parameters": [{"in": "query", "name": "page", "type": "integer"}, {"in": "query", "name": "size", "type": "integer"}], "responses": {"200": {"description": "Page of activities"}}},
            "post": {"tags": ["Activities"], "summary": "Log today's activity", "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/CreateActivityRequest"}}], "responses": {"201": {"description": "Activity created"}, "400": {"description": "Invalid description"}}}
        },
        "/activities/my": {
            "get": {"tags": ["Activities"], "summary": "List the caller's activities", "responses": {"200": {"description": "Page of activities"}}}
        },
        "/attendance/checkin": {
            "post": {"tags": ["Attendance"], "summary": "Check in for today", "parameters": [{"in": "body", "name": "body", "schema": {"$ref": "#/definitions/AttendanceRequest"}}], "responses": {"200": {"description": "Attendance row"}, "403": {"description": "Internship is not active"}}}
        },
        "/attendance/checkout": {
            "post": {"tags": ["Attendance"], "summary": "Check out for today", "responses": {"200": {"description": "Attendance row"}, "404": {"description": "No check-in today"}}}
        },
        "/attendance/my": {
            "get": {"tags": ["Attendance"], "summary": "The caller's attendance history", "parameters": [{"in": "query", "name": "from", "type": "string", "format": "date"}, {"in": "query", "name": "to", "type": "string", "format": "date"}], "responses": {"200": {"description": "Attendance rows"}}}
        },
        "/documents": {
            "get": {"tags": ["Documents"], "summary": "List every document", "responses": {"200": {"description": "Page of documents"}}},
            "post": {
                "tags": ["Documents"],
                "summary": "Upload a document",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"in": "formData", "name": "file", "type": "file", "required": true},
                    {"in": "formData", "name": "type", "type": "string", "enum": ["REPORT", "CERTIFICATE", "CV", "OTHER"]},
                    {"in": "formData", "name": "comment", "type": "string"}
                ],
                "responses": {"201": {"description": "Document stored"}, "400": {"description": "Invalid upload"}}
            }
        },
        "/documents/my": {
            "get": {"tags": ["Documents"], "summary": "List the caller's documents", "responses": {"200": {"description": "Page of documents"}}}
        },
        "/documents/{id}/download": {
            "get": {"tags": ["Documents"], "summary": "Download a document", "produces": ["application/octet-stream"], "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}], "responses": {"200": {"description": "File"}, "403": {"description": "Not the owner"}, "404": {"description": "Not found"}}}
        },
        "/documents/{id}/link": {
            "post": {"tags": ["Documents"], "summary": "Issue a temporary download link", "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}], "responses": {"200": {"description": "Signed link"}}}
        },
        "/files/{token}": {
            "get": {"tags": ["Documents"], "summary": "Download through a signed link", "security": [], "produces": ["application/octet-stream"], "parameters": [{"in": "path", "name": "token", "type": "string", "required": true}], "responses": {"200": {"description": "File"}, "401": {"description": "Invalid or expired link"}}}
        },
        "/notifications": {
            "get": {"tags": ["Notifications"], "summary": "List the caller's notifications", "parameters": [{"in": "query", "name": "unread", "type": "boolean"}], "responses": {"200": {"description": "Page of notifications"}}}
        },
        "/notifications/unread-count": {
            "get": {"tags": ["Notifications"], "summary": "Unread notification count", "responses": {"200": {"description": "Count"}}}
        },
        "/notifications/{id}/read": {
            "patch": {"tags": ["Notifications"], "summary": "Mark a notification read", "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}], "responses": {"204": {"description": "Marked"}}}
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "InternRecord": {
            "type": "object",
            "properties": {
                "first_name": {"type": "string"},
                "last_name": {"type": "string"},
                "email": {"type": "string"},
                "phone": {"type": "string"},
                "university": {"type": "string"},
                "major": {"type": "string"},
                "start_date": {"type": "string", "format": "date"},
                "end_date": {"type": "string", "format": "date"},
                "supervisor": {"type": "string"},
                "department": {"type": "string"}
            }
        },
        "MessageRequest": {
            "type": "object",
            "required": ["subject", "content"],
            "properties": {
                "subject": {"type": "string"},
                "content": {"type": "string"}
            }
        },
        "CreateActivityRequest": {
            "type": "object",
            "required": ["description"],
            "properties": {
                "description": {"type": "string", "minLength": 10, "maxLength": 2000}
            }
        },
        "AttendanceRequest": {
            "type": "object",
            "properties": {
                "remarks": {"type": "string", "maxLength": 500}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "size": {"type": "integer"},
                "total_elements": {"type": "integer"},
                "total_pages": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"},
                "details": {"type": "object"}
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
