// Package docs Boundary Microservice API.
//
// Определяет контур административной единицы (город, регион, округ, страна),
// содержащей точку, и кеширует найденные полигоны.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "API Support"
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
        "/api/v1/boundaries": {
            "get": {
                "description": "Возвращает контур самого точного уровня, для которого у провайдера есть полигон. Результат кешируется.",
                "produces": ["application/json"],
                "tags": ["Boundaries"],
                "summary": "Граница административной единицы для точки",
                "parameters": [
                    {"type": "number", "description": "Широта (-90..90)", "name": "lat", "in": "query", "required": true},
                    {"type": "number", "description": "Долгота (-180..180)", "name": "lon", "in": "query", "required": true},
                    {"type": "string", "description": "Уровни через запятую", "name": "levels", "in": "query"},
                    {"type": "string", "description": "Описание маркера", "name": "description", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.BoundaryResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}},
                    "504": {"description": "Gateway Timeout", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}}
                }
            }
        },
        "/api/v1/boundaries/batch": {
            "post": {
                "description": "Разрешает границы для нескольких точек за один запрос (до 100).",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Boundaries"],
                "summary": "Пакетное получение границ",
                "parameters": [
                    {"description": "Точки", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.BatchBoundaryRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.BatchBoundaryResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}}
                }
            }
        },
        "/api/v1/boundaries/postal/{code}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Boundaries"],
                "summary": "Граница почтового индекса",
                "parameters": [
                    {"type": "string", "description": "Почтовый индекс", "name": "code", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.BoundaryResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}}
                }
            }
        },
        "/api/v1/cache/stats": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Cache"],
                "summary": "Статистика кеша границ",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.CacheStatsResponse"}}
                }
            }
        },
        "/api/v1/cache": {
            "delete": {
                "produces": ["application/json"],
                "tags": ["Cache"],
                "summary": "Очистка кеша границ",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.ClearCacheResponse"}}
                }
            }
        }
    },
    "definitions": {
        "domain.Coordinate": {
            "type": "object",
            "properties": {
                "lat": {"type": "number"},
                "lon": {"type": "number"}
            }
        },
        "dto.BoundaryResponse": {
            "type": "object",
            "properties": {
                "level": {"type": "string"},
                "name": {"type": "string"},
                "entity_type": {"type": "string"},
                "geometry_id": {"type": "string"},
                "provider": {"type": "string"},
                "description": {"type": "string"},
                "ring": {"type": "array", "items": {"$ref": "#/definitions/domain.Coordinate"}},
                "bbox": {"type": "array", "items": {"type": "number"}},
                "polygon": {"type": "object"}
            }
        },
        "dto.BatchBoundaryRequest": {
            "type": "object",
            "required": ["items"],
            "properties": {
                "items": {
                    "type": "array",
                    "maxItems": 100,
                    "minItems": 1,
                    "items": {
                        "type": "object",
                        "required": ["lat", "lon"],
                        "properties": {
                            "lat": {"type": "number"},
                            "lon": {"type": "number"},
                            "description": {"type": "string"},
                            "levels": {"type": "array", "items": {"type": "string"}}
                        }
                    }
                }
            }
        },
        "dto.BatchBoundaryResponse": {
            "type": "object",
            "properties": {
                "results": {"type": "array", "items": {"type": "object"}},
                "total": {"type": "integer"},
                "failed": {"type": "integer"}
            }
        },
        "dto.CacheStatsResponse": {
            "type": "object",
            "properties": {
                "backend": {"type": "string"},
                "entries": {"type": "integer"},
                "total_size_bytes": {"type": "integer"},
                "oldest": {"type": "string"},
                "newest": {"type": "string"},
                "hits": {"type": "integer"},
                "misses": {"type": "integer"},
                "hit_ratio": {"type": "number"}
            }
        },
        "dto.ClearCacheResponse": {
            "type": "object",
            "properties": {
                "removed": {"type": "integer"}
            }
        },
        "utils.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {
                    "type": "object",
                    "properties": {
                        "code": {"type": "string"},
                        "message": {"type": "string"},
                        "details": {"type": "object"}
                    }
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "Boundary Microservice API",
	Description:      "Определение контуров административных границ для точек и почтовых индексов с персистентным кешем полигонов.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
