// Package docs holds the Swagger description of the catalog API served at /docs.
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
				"produces": [
					"application/json"
				],
				"tags": [
					"system"
				],
				"summary": "Health check",
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/handlers.HealthResponse"
						}
					},
					"503": {
						"description": "Service Unavailable",
						"schema": {
							"$ref": "#/definitions/handlers.HealthResponse"
						}
					}
				}
			}
		},
		"/categories": {
			"get": {
				"description": "Returns all categories. fields limits the returned top-level fields (the id is always included).",
				"produces": [
					"application/json"
				],
				"tags": [
					"catalog"
				],
				"summary": "List categories",
				"parameters": [
					{
						"type": "string",
						"description": "Comma-separated list of fields, e.g. path,name",
						"name": "fields",
						"in": "query"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "array",
							"items": {
								"$ref": "#/definitions/types.Category"
							}
						}
					},
					"500": {
						"description": "Internal Server Error",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					}
				}
			}
		},
		"/category": {
			"post": {
				"description": "Resolves the body by path, then url, then name, the same way batch records are matched.",
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"catalog"
				],
				"summary": "Find category",
				"parameters": [
					{
						"description": "Category identity, e.g. {\"path\": \"/books\"}",
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/types.Category"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/types.Category"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					},
					"500": {
						"description": "Internal Server Error",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					}
				}
			}
		},
		"/category/{id}": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"catalog"
				],
				"summary": "Get category",
				"parameters": [
					{
						"type": "string",
						"description": "Category id",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/types.Category"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					},
					"500": {
						"description": "Internal Server Error",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					}
				}
			},
			"put": {
				"description": "Shallow update: every top-level field in the body replaces the stored one. The id cannot be changed.",
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"catalog"
				],
				"summary": "Update category",
				"parameters": [
					{
						"type": "string",
						"description": "Category id",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"description": "Fields to set",
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"type": "object"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/types.Category"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					},
					"500": {
						"description": "Internal Server Error",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					}
				}
			},
			"post": {
				"description": "Shallow update: every top-level field in the body replaces the stored one. The id cannot be changed.",
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"catalog"
				],
				"summary": "Update category",
				"parameters": [
					{
						"type": "string",
						"description": "Category id",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"description": "Fields to set",
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"type": "object"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/types.Category"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					},
					"500": {
						"description": "Internal Server Error",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					}
				}
			}
		},
		"/products": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"catalog"
				],
				"summary": "List products",
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "array",
							"items": {
								"$ref": "#/definitions/types.Product"
							}
						}
					},
					"500": {
						"description": "Internal Server Error",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					}
				}
			}
		},
		"/product/{id}": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"catalog"
				],
				"summary": "Get product",
				"parameters": [
					{
						"type": "string",
						"description": "Product id",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/types.Product"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					},
					"500": {
						"description": "Internal Server Error",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					}
				}
			},
			"put": {
				"description": "The owning category comes from the body's category_path or category, otherwise from the category already holding the product. A product missing from that category is appended.",
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"catalog"
				],
				"summary": "Update product by id",
				"parameters": [
					{
						"type": "string",
						"description": "Product id",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"description": "Product fields",
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/types.Product"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/types.Product"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					},
					"500": {
						"description": "Internal Server Error",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					}
				}
			},
			"post": {
				"description": "The owning category comes from the body's category_path or category, otherwise from the category already holding the product. A product missing from that category is appended.",
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"catalog"
				],
				"summary": "Update product by id",
				"parameters": [
					{
						"type": "string",
						"description": "Product id",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"description": "Product fields",
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/types.Product"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/types.Product"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					},
					"500": {
						"description": "Internal Server Error",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					}
				}
			}
		},
		"/productbyurl/{url}": {
			"put": {
				"description": "The url path segment must be URL-encoded.",
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"catalog"
				],
				"summary": "Update product by url",
				"parameters": [
					{
						"type": "string",
						"description": "URL-encoded product url",
						"name": "url",
						"in": "path",
						"required": true
					},
					{
						"description": "Product fields",
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/types.Product"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/types.Product"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					},
					"500": {
						"description": "Internal Server Error",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					}
				}
			}
		},
		"/update": {
			"get": {
				"description": "Reads the newest category and product batch files, reconciles them into the store and archives them. By default the pass runs in the background and 202 is returned; wait=true blocks until it finishes.",
				"produces": [
					"application/json"
				],
				"tags": [
					"ingestion"
				],
				"summary": "Run an ingestion pass",
				"parameters": [
					{
						"type": "boolean",
						"description": "Run synchronously",
						"name": "wait",
						"in": "query"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/types.IngestionRun"
						}
					},
					"202": {
						"description": "Accepted",
						"schema": {
							"$ref": "#/definitions/handlers.UpdateStartedResponse"
						}
					},
					"409": {
						"description": "A pass is already running",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					},
					"500": {
						"description": "Internal Server Error",
						"schema": {
							"$ref": "#/definitions/types.IngestionRun"
						}
					}
				}
			}
		},
		"/runs": {
			"get": {
				"description": "Returns ingestion runs newest first with an optional status filter",
				"produces": [
					"application/json"
				],
				"tags": [
					"ingestion"
				],
				"summary": "List ingestion runs",
				"parameters": [
					{
						"enum": [
							"running",
							"completed",
							"failed"
						],
						"type": "string",
						"description": "Filter by status",
						"name": "status",
						"in": "query"
					},
					{
						"maximum": 100,
						"minimum": 1,
						"type": "integer",
						"default": 20,
						"description": "Number of items to return",
						"name": "limit",
						"in": "query"
					},
					{
						"minimum": 0,
						"type": "integer",
						"default": 0,
						"description": "Number of items to skip",
						"name": "offset",
						"in": "query"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/handlers.ListRunsResponse"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					},
					"500": {
						"description": "Internal Server Error",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					}
				}
			}
		},
		"/runs/{runId}": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"ingestion"
				],
				"summary": "Get ingestion run",
				"parameters": [
					{
						"type": "string",
						"description": "Run id",
						"name": "runId",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/types.IngestionRun"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					},
					"500": {
						"description": "Internal Server Error",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					}
				}
			}
		},
		"/shutdown": {
			"get": {
				"description": "Stops accepting requests, waits for a running pass to finish and exits.",
				"produces": [
					"application/json"
				],
				"tags": [
					"system"
				],
				"summary": "Shut down the service",
				"responses": {
					"202": {
						"description": "Accepted",
						"schema": {
							"type": "object",
							"additionalProperties": {
								"type": "string"
							}
						}
					}
				}
			}
		}
	},
	"definitions": {
		"handlers.ErrorResponse": {
			"type": "object",
			"properties": {
				"error": {
					"type": "string"
				}
			}
		},
		"handlers.HealthResponse": {
			"type": "object",
			"properties": {
				"status": {
					"type": "string"
				},
				"database": {
					"type": "string"
				},
				"pass": {
					"$ref": "#/definitions/types.PassState"
				}
			}
		},
		"handlers.ListRunsResponse": {
			"type": "object",
			"required": [
				"runs",
				"total"
			],
			"properties": {
				"runs": {
					"type": "array",
					"items": {
						"$ref": "#/definitions/types.IngestionRun"
					}
				},
				"total": {
					"type": "integer"
				}
			}
		},
		"handlers.UpdateStartedResponse": {
			"type": "object",
			"properties": {
				"runId": {
					"type": "string"
				},
				"status": {
					"type": "string"
				},
				"pollUrl": {
					"type": "string"
				}
			}
		},
		"types.Category": {
			"type": "object",
			"properties": {
				"id": {
					"type": "string"
				},
				"url": {
					"type": "string"
				},
				"path": {
					"type": "string",
					"description": "Hierarchical category path; authoritative identity"
				},
				"name": {
					"type": "string"
				},
				"products": {
					"type": "array",
					"items": {
						"$ref": "#/definitions/types.Product"
					}
				},
				"wasUpdated": {
					"type": "boolean"
				},
				"lastUpdate": {
					"type": "string"
				}
			}
		},
		"types.Product": {
			"type": "object",
			"properties": {
				"id": {
					"type": "string",
					"description": "Product identifier; JSON string or number"
				},
				"url": {
					"type": "string"
				},
				"category_path": {
					"type": "string",
					"description": "Path of the owning category"
				},
				"category": {
					"type": "string",
					"description": "Legacy owning category name"
				},
				"name": {
					"type": "string"
				},
				"available": {
					"type": "string"
				},
				"average_customer_review": {
					"type": "string"
				},
				"first_available": {
					"type": "string"
				},
				"asin": {
					"type": "string"
				},
				"brand": {
					"type": "string"
				},
				"item_model_number": {
					"type": "string"
				},
				"rating_change": {
					"type": "string"
				},
				"video": {
					"type": "string"
				},
				"current_price": {
					"type": "string"
				},
				"count_customer_reviews": {
					"type": "string"
				},
				"previous_price": {
					"type": "string"
				},
				"extraField1": {
					"type": "string"
				},
				"extraField2": {
					"type": "string"
				},
				"extraField3": {
					"type": "string"
				},
				"extraField4": {
					"type": "string"
				},
				"reviews": {
					"type": "array",
					"items": {
						"type": "string"
					}
				},
				"image": {
					"type": "array",
					"items": {
						"type": "string"
					}
				},
				"isDisplayed": {
					"type": "boolean"
				},
				"wasUpdated": {
					"type": "boolean"
				},
				"lastUpdate": {
					"type": "string"
				}
			}
		},
		"types.PassState": {
			"type": "string",
			"enum": [
				"idle",
				"categories_in_flight",
				"categories_done",
				"products_in_flight",
				"products_done",
				"archived"
			],
			"x-enum-varnames": [
				"PassIdle",
				"PassCategoriesInFlight",
				"PassCategoriesDone",
				"PassProductsInFlight",
				"PassProductsDone",
				"PassArchived"
			]
		},
		"types.ParseStats": {
			"type": "object",
			"properties": {
				"file": {
					"type": "string"
				},
				"lines": {
					"type": "integer"
				},
				"valid": {
					"type": "integer"
				},
				"unparseable": {
					"type": "integer"
				}
			}
		},
		"types.CategoryStats": {
			"type": "object",
			"properties": {
				"records": {
					"type": "integer"
				},
				"skipped": {
					"type": "integer"
				},
				"created": {
					"type": "integer"
				},
				"updated": {
					"type": "integer"
				},
				"failed": {
					"type": "integer"
				},
				"concurrency": {
					"type": "integer"
				}
			}
		},
		"types.ProductStats": {
			"type": "object",
			"properties": {
				"records": {
					"type": "integer"
				},
				"skipped": {
					"type": "integer"
				},
				"merged": {
					"type": "integer"
				},
				"inserted": {
					"type": "integer"
				},
				"dropped": {
					"type": "integer"
				},
				"lookups": {
					"type": "integer"
				},
				"lookupFailures": {
					"type": "integer"
				},
				"saved": {
					"type": "integer"
				},
				"saveFailures": {
					"type": "integer"
				}
			}
		},
		"types.IngestionRun": {
			"type": "object",
			"properties": {
				"id": {
					"type": "string"
				},
				"trigger": {
					"type": "string"
				},
				"status": {
					"type": "string"
				},
				"state": {
					"$ref": "#/definitions/types.PassState"
				},
				"categoriesFile": {
					"type": "string"
				},
				"productsFile": {
					"type": "string"
				},
				"categoriesParse": {
					"$ref": "#/definitions/types.ParseStats"
				},
				"productsParse": {
					"$ref": "#/definitions/types.ParseStats"
				},
				"categories": {
					"$ref": "#/definitions/types.CategoryStats"
				},
				"products": {
					"$ref": "#/definitions/types.ProductStats"
				},
				"archivedFiles": {
					"type": "array",
					"items": {
						"type": "string"
					}
				},
				"archiveErrors": {
					"type": "array",
					"items": {
						"type": "string"
					}
				},
				"error": {
					"type": "string"
				},
				"startedAt": {
					"type": "string"
				},
				"completedAt": {
					"type": "string"
				},
				"durationMs": {
					"type": "integer"
				}
			}
		}
	},
	"securityDefinitions": {
		"ApiKeyAuth": {
			"type": "apiKey",
			"name": "X-API-Key",
			"in": "header"
		}
	}
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Catalog Service API",
	Description:      "Category and product catalog with batch reconciliation from newline-delimited JSON files.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
