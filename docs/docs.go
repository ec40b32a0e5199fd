// Package docs holds the swagger document served at /swagger/index.html.
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
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dao.HealthResponse"}}
                }
            }
        },
        "/api/v1/analyze_video": {
            "post": {
                "description": "Upload a CCTV video to receive bird counts and weight proxies",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["analysis"],
                "summary": "Analyze a video",
                "parameters": [
                    {"type": "file", "description": "video file", "name": "file", "in": "formData", "required": true},
                    {"type": "integer", "default": 30, "description": "requested analysis rate", "name": "fps_sample", "in": "formData"},
                    {"type": "number", "default": 0.3, "description": "detection confidence threshold", "name": "conf_thresh", "in": "formData"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dao.AnalyzeVideoResponse"}},
                    "400": {"description": "invalid parameters", "schema": {"$ref": "#/definitions/server.ErrorResponse"}},
                    "422": {"description": "video cannot be decoded", "schema": {"$ref": "#/definitions/server.ErrorResponse"}},
                    "500": {"description": "internal server error", "schema": {"$ref": "#/definitions/server.ErrorResponse"}},
                    "502": {"description": "detector unavailable", "schema": {"$ref": "#/definitions/server.ErrorResponse"}}
                }
            }
        },
        "/api/v1/download/{filename}": {
            "get": {
                "produces": ["application/octet-stream"],
                "tags": ["analysis"],
                "summary": "Download an annotated video",
                "parameters": [
                    {"type": "string", "description": "artifact name", "name": "filename", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "file"}},
                    "400": {"description": "invalid file name", "schema": {"$ref": "#/definitions/server.ErrorResponse"}},
                    "404": {"description": "file not found", "schema": {"$ref": "#/definitions/server.ErrorResponse"}}
                }
            }
        },
        "/api/v1/analysis": {
            "get": {
                "produces": ["application/json"],
                "tags": ["analysis"],
                "summary": "List analyses",
                "parameters": [
                    {"type": "integer", "default": 0, "description": "offset", "name": "start", "in": "query"},
                    {"type": "integer", "default": 10, "description": "page size", "name": "limit", "in": "query"},
                    {"type": "boolean", "description": "omit per-frame data", "name": "brief", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dao.ListAnalysisResponse"}},
                    "400": {"description": "invalid parameters", "schema": {"$ref": "#/definitions/server.ErrorResponse"}},
                    "500": {"description": "internal server error", "schema": {"$ref": "#/definitions/server.ErrorResponse"}}
                }
            }
        },
        "/api/v1/analysis/{analysis_id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["analysis"],
                "summary": "Get an analysis",
                "parameters": [
                    {"type": "string", "description": "analysis id", "name": "analysis_id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dao.AnalysisSpec"}},
                    "404": {"description": "analysis not found", "schema": {"$ref": "#/definitions/server.ErrorResponse"}},
                    "500": {"description": "internal server error", "schema": {"$ref": "#/definitions/server.ErrorResponse"}}
                }
            },
            "delete": {
                "tags": ["analysis"],
                "summary": "Delete an analysis and its video",
                "parameters": [
                    {"type": "string", "description": "analysis id", "name": "analysis_id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "analysis not found", "schema": {"$ref": "#/definitions/server.ErrorResponse"}},
                    "500": {"description": "internal server error", "schema": {"$ref": "#/definitions/server.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "analysis.FrameStat": {
            "type": "object",
            "properties": {
                "time_sec": {"type": "number"},
                "count": {"type": "integer"},
                "avg_weight_proxy": {"type": "number"}
            }
        },
        "analysis.TrackRecord": {
            "type": "object",
            "properties": {
                "first_seen_frame": {"type": "integer"},
                "confidence": {"type": "number"},
                "sample_box": {"type": "array", "items": {"type": "integer"}}
            }
        },
        "analysis.Result": {
            "type": "object",
            "properties": {
                "total_frames_processed": {"type": "integer"},
                "counts_timeseries": {"type": "array", "items": {"$ref": "#/definitions/analysis.FrameStat"}},
                "unique_birds_tracked": {"type": "integer"},
                "tracks_sample": {"type": "object", "additionalProperties": {"$ref": "#/definitions/analysis.TrackRecord"}},
                "weight_summary": {"type": "string"}
            }
        },
        "dao.HealthResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "service": {"type": "string"},
                "version": {"type": "string"}
            }
        },
        "dao.AnalyzeVideoResponse": {
            "type": "object",
            "properties": {
                "analysis_id": {"type": "string"},
                "status": {"type": "string"},
                "video_download_url": {"type": "string"},
                "data": {"$ref": "#/definitions/analysis.Result"}
            }
        },
        "dao.AnalysisSpec": {
            "type": "object",
            "properties": {
                "analysis_id": {"type": "string"},
                "status": {"type": "string"},
                "input": {"type": "string"},
                "video_download_url": {"type": "string"},
                "object_path": {"type": "string"},
                "fps_sample": {"type": "integer"},
                "conf_threshold": {"type": "number"},
                "create_time": {"type": "string"},
                "data": {"$ref": "#/definitions/analysis.Result"}
            }
        },
        "dao.ListAnalysisResponse": {
            "type": "object",
            "properties": {
                "items": {"type": "array", "items": {"$ref": "#/definitions/dao.AnalysisSpec"}},
                "total": {"type": "integer"}
            }
        },
        "server.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"}
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
	Title:            "flockscope API",
	Description:      "Detect, count and estimate the weight proxy of birds in CCTV video.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
