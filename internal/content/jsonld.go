package content

import (
	"encoding/json"
	"strings"
)

// graphRecipes returns the Recipe nodes nested in a JSON-LD block that is an array
// or carries an @graph, re-encoded for decoding. A top-level object is not returned
// itself; the caller has already tried it.
func graphRecipes(raw string) []json.RawMessage {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	var payload any
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil
	}

	var nodes []map[string]any
	switch t := payload.(type) {
	case map[string]any:
		if graph, ok := t["@graph"].([]any); ok {
			for _, item := range graph {
				collectRecipes(item, &nodes)
			}
		}
	case []any:
		for _, item := range t {
			collectRecipes(item, &nodes)
		}
	}

	out := make([]json.RawMessage, 0, len(nodes))
	for _, node := range nodes {
		data, err := json.Marshal(node)
		if err != nil {
			continue
		}
		out = append(out, data)
	}
	return out
}

func collectRecipes(payload any, out *[]map[string]any) {
	switch t := payload.(type) {
	case map[string]any:
		if isRecipeType(t["@type"]) {
			*out = append(*out, t)
		}
		if graph, ok := t["@graph"].([]any); ok {
			for _, item := range graph {
				collectRecipes(item, out)
			}
		}
	case []any:
		for _, item := range t {
			collectRecipes(item, out)
		}
	}
}

func isRecipeType(t any) bool {
	switch v := t.(type) {
	case string:
		return v == "Recipe"
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok && s == "Recipe" {
				return true
			}
		}
	}
	return false
}
