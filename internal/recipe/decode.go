package recipe

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
)

const (
	shapeObject  = "object"
	shapeArray   = "array"
	shapeString  = "string"
	shapeNumber  = "number"
	shapeBoolean = "boolean"
	shapeNull    = "null"
	shapeNothing = "nothing"
)

// JSON keys of the Recipe schema.
const (
	keyName               = "name"
	keyImage              = "image"
	keyDescription        = "description"
	keyKeywords           = "keywords"
	keyRecipeCuisine      = "recipeCuisine"
	keyRecipeCategory     = "recipeCategory"
	keyRecipeIngredient   = "recipeIngredient"
	keyRecipeInstructions = "recipeInstructions"
	keyCookTime           = "cookTime"
	keyPrepTime           = "prepTime"
	keyTotalTime          = "totalTime"
)

// Decode decodes a single JSON payload into a Recipe.
// Every failure is a *DecodeError carrying the field path.
func Decode(payload string) (Recipe, error) {
	return DecodeBytes([]byte(payload))
}

// DecodeBytes is Decode for a byte payload.
func DecodeBytes(payload []byte) (Recipe, error) {
	if !json.Valid(payload) {
		var probe any
		err := json.Unmarshal(payload, &probe)
		if err == nil {
			err = errors.New("invalid JSON")
		}
		return Recipe{}, syntaxError(err)
	}

	var root fieldPath
	fields, err := decodeObject(payload, root)
	if err != nil {
		return Recipe{}, err
	}

	var r Recipe

	nameRaw, ok := present(fields, keyName)
	if !ok {
		return Recipe{}, missingError(root.key(keyName))
	}
	if r.Name, err = decodeString(nameRaw, root.key(keyName)); err != nil {
		return Recipe{}, err
	}
	if r.Name == "" {
		return Recipe{}, missingError(root.key(keyName))
	}

	imageRaw, ok := present(fields, keyImage)
	if !ok {
		return Recipe{}, missingError(root.key(keyImage))
	}
	images, err := decodeOneOrMany(imageRaw, root.key(keyImage), decodeURI)
	if err != nil {
		return Recipe{}, err
	}
	r.Image = images.Slice()

	if raw, ok := present(fields, keyDescription); ok {
		if r.Description, err = decodeString(raw, root.key(keyDescription)); err != nil {
			return Recipe{}, err
		}
	}

	if r.Keywords, err = optionalStrings(fields, root, keyKeywords); err != nil {
		return Recipe{}, err
	}
	if r.RecipeCuisine, err = optionalStrings(fields, root, keyRecipeCuisine); err != nil {
		return Recipe{}, err
	}
	if r.RecipeCategory, err = optionalStrings(fields, root, keyRecipeCategory); err != nil {
		return Recipe{}, err
	}

	r.RecipeIngredient = []string{}
	if raw, ok := present(fields, keyRecipeIngredient); ok {
		if r.RecipeIngredient, err = decodeStringList(raw, root.key(keyRecipeIngredient)); err != nil {
			return Recipe{}, err
		}
	}

	r.RecipeInstructions = []string{}
	if raw, ok := present(fields, keyRecipeInstructions); ok {
		instructions, err := decodeInstructions(raw, root.key(keyRecipeInstructions))
		if err != nil {
			return Recipe{}, err
		}
		r.RecipeInstructions = instructions.Slice()
	}

	if r.CookTime, err = optionalDuration(fields, root, keyCookTime); err != nil {
		return Recipe{}, err
	}
	if r.PrepTime, err = optionalDuration(fields, root, keyPrepTime); err != nil {
		return Recipe{}, err
	}
	if r.TotalTime, err = optionalDuration(fields, root, keyTotalTime); err != nil {
		return Recipe{}, err
	}

	return r, nil
}

func optionalStrings(fields map[string]json.RawMessage, root fieldPath, key string) ([]string, error) {
	raw, ok := present(fields, key)
	if !ok {
		return []string{}, nil
	}
	v, err := decodeOneOrMany(raw, root.key(key), decodeString)
	if err != nil {
		return nil, err
	}
	return v.Slice(), nil
}

func optionalDuration(fields map[string]json.RawMessage, root fieldPath, key string) (*Duration, error) {
	raw, ok := present(fields, key)
	if !ok {
		return nil, nil
	}
	s, err := decodeString(raw, root.key(key))
	if err != nil {
		return nil, err
	}
	d, err := ParseDuration(s)
	if err != nil {
		return nil, invalidValue(root.key(key), err)
	}
	return &d, nil
}

// present treats an explicit JSON null like an absent key.
func present(fields map[string]json.RawMessage, key string) (json.RawMessage, bool) {
	raw, ok := fields[key]
	if !ok || shapeOf(raw) == shapeNull {
		return nil, false
	}
	return raw, true
}

func decodeObject(raw json.RawMessage, p fieldPath) (map[string]json.RawMessage, error) {
	if shapeOf(raw) != shapeObject {
		return nil, typeError(p, shapeObject, raw)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, invalidValue(p, err)
	}
	return fields, nil
}

func decodeArray(raw json.RawMessage, p fieldPath) ([]json.RawMessage, error) {
	if shapeOf(raw) != shapeArray {
		return nil, typeError(p, shapeArray, raw)
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, invalidValue(p, err)
	}
	return items, nil
}

func decodeString(raw json.RawMessage, p fieldPath) (string, error) {
	if shapeOf(raw) != shapeString {
		return "", typeError(p, shapeString, raw)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", invalidValue(p, err)
	}
	return s, nil
}

func decodeStringList(raw json.RawMessage, p fieldPath) ([]string, error) {
	items, err := decodeArray(raw, p)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(items))
	for i, item := range items {
		s, err := decodeString(item, p.index(i))
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func decodeURI(raw json.RawMessage, p fieldPath) (*url.URL, error) {
	s, err := decodeString(raw, p)
	if err != nil {
		return nil, err
	}
	u, err := parseURI(s)
	if err != nil {
		return nil, invalidValue(p, err)
	}
	return u, nil
}

// parseURI accepts absolute URIs only.
func parseURI(s string) (*url.URL, error) {
	u, err := url.Parse(s)
	if err != nil {
		return nil, err
	}
	if u.Scheme == "" || (u.Host == "" && u.Opaque == "") {
		return nil, fmt.Errorf("relative URL %q", s)
	}
	return u, nil
}

func decodeJSON[T any](raw json.RawMessage, p fieldPath) (T, error) {
	var v T
	if shapeOf(raw) == shapeNull {
		return v, typeError(p, "value", raw)
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, invalidValue(p, err)
	}
	return v, nil
}

func shapeOf(raw []byte) string {
	raw = bytes.TrimLeft(raw, " \t\r\n")
	if len(raw) == 0 {
		return shapeNothing
	}
	switch raw[0] {
	case '{':
		return shapeObject
	case '[':
		return shapeArray
	case '"':
		return shapeString
	case 't', 'f':
		return shapeBoolean
	case 'n':
		return shapeNull
	default:
		return shapeNumber
	}
}
