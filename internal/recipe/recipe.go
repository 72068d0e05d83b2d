// Package recipe decodes schema.org Recipe payloads (the JSON-LD variant) into a
// normalized Recipe. The schema's loose typing (a value or a list of values, plain
// or step-object instructions) is reconciled while decoding, and every rejection is
// reported as a *DecodeError with the path of the offending field.
package recipe

import (
	"encoding/json"
	"net/url"
)

// Recipe is the normalized form of a schema.org Recipe. It is built in one step by
// Decode and not modified afterwards; list fields are never nil.
type Recipe struct {
	Name               string
	Image              []*url.URL
	Description        string
	Keywords           []string
	RecipeCuisine      []string
	RecipeCategory     []string
	RecipeIngredient   []string
	RecipeInstructions []string
	CookTime           *Duration
	PrepTime           *Duration
	TotalTime          *Duration
}

type wireRecipe struct {
	Context            string   `json:"@context"`
	Type               string   `json:"@type"`
	Name               string   `json:"name"`
	Image              []string `json:"image"`
	Description        string   `json:"description,omitempty"`
	Keywords           []string `json:"keywords"`
	RecipeCuisine      []string `json:"recipeCuisine"`
	RecipeCategory     []string `json:"recipeCategory"`
	RecipeIngredient   []string `json:"recipeIngredient"`
	RecipeInstructions []string `json:"recipeInstructions"`
	CookTime           string   `json:"cookTime,omitempty"`
	PrepTime           string   `json:"prepTime,omitempty"`
	TotalTime          string   `json:"totalTime,omitempty"`
}

// MarshalJSON writes the schema.org JSON form, which Decode reads back unchanged.
func (r Recipe) MarshalJSON() ([]byte, error) {
	w := wireRecipe{
		Context:            "https://schema.org",
		Type:               "Recipe",
		Name:               r.Name,
		Image:              make([]string, 0, len(r.Image)),
		Description:        r.Description,
		Keywords:           nonNil(r.Keywords),
		RecipeCuisine:      nonNil(r.RecipeCuisine),
		RecipeCategory:     nonNil(r.RecipeCategory),
		RecipeIngredient:   nonNil(r.RecipeIngredient),
		RecipeInstructions: nonNil(r.RecipeInstructions),
		CookTime:           durationString(r.CookTime),
		PrepTime:           durationString(r.PrepTime),
		TotalTime:          durationString(r.TotalTime),
	}
	for _, u := range r.Image {
		if u != nil {
			w.Image = append(w.Image, u.String())
		}
	}
	return json.Marshal(w)
}

func (r *Recipe) UnmarshalJSON(data []byte) error {
	decoded, err := DecodeBytes(data)
	if err != nil {
		return err
	}
	*r = decoded
	return nil
}

// TotalDuration returns TotalTime, or PrepTime+CookTime when the page omits the total.
func (r Recipe) TotalDuration() (Duration, bool) {
	if r.TotalTime != nil {
		return *r.TotalTime, true
	}
	if r.PrepTime == nil && r.CookTime == nil {
		return Duration{}, false
	}
	var sum Duration
	for _, d := range []*Duration{r.PrepTime, r.CookTime} {
		if d == nil {
			continue
		}
		sum.Years += d.Years
		sum.Months += d.Months
		sum.Weeks += d.Weeks
		sum.Days += d.Days
		sum.Hours += d.Hours
		sum.Minutes += d.Minutes
		sum.Seconds += d.Seconds
	}
	return sum, true
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func durationString(d *Duration) string {
	if d == nil {
		return ""
	}
	return d.String()
}
