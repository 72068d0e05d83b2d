package api

import "net/http"

// openAPIDocument describes the kitchen endpoints.
func (s *Server) openAPIDocument() map[string]any {
	const security = "recipe_hunter_security"

	entryRef := map[string]any{"$ref": "#/components/schemas/kitchen.recipes.entry"}
	errorBody := func(description string) map[string]any {
		return map[string]any{
			"description": description,
			"content": map[string]any{
				"application/json": map[string]any{
					"schema": map[string]any{"$ref": "#/components/schemas/error"},
				},
			},
		}
	}

	return map[string]any{
		"openapi": "3.0.0",
		"info": map[string]any{
			"title":   "Recipe Hunter",
			"version": s.version,
		},
		"security": []map[string][]string{{security: {}}},
		"paths": map[string]any{
			"/kitchen/recipes": map[string]any{
				"post": map[string]any{
					"tags":        []string{"kitchen"},
					"summary":     "Add recipe to collection",
					"operationId": "post_recipe",
					"requestBody": map[string]any{"$ref": "#/components/requestBodies/kitchen.recipes.request"},
					"security":    []map[string][]string{{security: {}}},
					"responses": map[string]any{
						"201": map[string]any{
							"description": "Successfully added recipe",
							"content": map[string]any{
								"application/json": map[string]any{"schema": entryRef},
							},
						},
						"400": errorBody("Failed to extract recipe"),
						"401": errorBody("Unauthorized"),
					},
				},
				"get": map[string]any{
					"tags":        []string{"kitchen"},
					"summary":     "List recipes in the collection",
					"operationId": "list_recipes",
					"security":    []map[string][]string{},
					"parameters": []map[string]any{
						{"name": "limit", "in": "query", "schema": map[string]any{"type": "integer", "minimum": 1, "maximum": 200}},
						{"name": "offset", "in": "query", "schema": map[string]any{"type": "integer", "minimum": 0}},
					},
					"responses": map[string]any{
						"200": map[string]any{"description": "A page of recipes"},
					},
				},
			},
			"/kitchen/recipes/{id}": map[string]any{
				"get": map[string]any{
					"tags":        []string{"kitchen"},
					"summary":     "Get one recipe",
					"operationId": "get_recipe",
					"security":    []map[string][]string{},
					"parameters": []map[string]any{
						{"name": "id", "in": "path", "required": true, "schema": map[string]any{"type": "string", "format": "uuid"}},
					},
					"responses": map[string]any{
						"200": map[string]any{
							"description": "The recipe",
							"content": map[string]any{
								"application/json": map[string]any{"schema": entryRef},
							},
						},
						"404": errorBody("Recipe not found"),
					},
				},
			},
		},
		"components": map[string]any{
			"securitySchemes": map[string]any{
				security: map[string]any{
					"type":   "http",
					"scheme": "bearer",
				},
			},
			"requestBodies": map[string]any{
				"kitchen.recipes.request": map[string]any{
					"description": "Request to extract recipe from URL",
					"required":    true,
					"content": map[string]any{
						"application/json": map[string]any{
							"schema": map[string]any{
								"type":     "object",
								"required": []string{"url"},
								"properties": map[string]any{
									"url": map[string]any{
										"type":        "string",
										"format":      "uri",
										"description": "URL to extract recipe from",
									},
								},
							},
						},
					},
				},
			},
			"schemas": map[string]any{
				"error": map[string]any{
					"type":       "object",
					"properties": map[string]any{"error": map[string]any{"type": "string"}},
				},
				"kitchen.recipes.entry": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"id":         map[string]any{"type": "string", "format": "uuid"},
						"source_url": map[string]any{"type": "string", "format": "uri"},
						"created_at": map[string]any{"type": "string", "format": "date-time"},
						"recipe":     map[string]any{"type": "object", "description": "schema.org Recipe"},
					},
				},
			},
		},
	}
}

func (s *Server) handleOpenAPI(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.openAPIDocument())
}
