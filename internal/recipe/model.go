package recipe

import (
	"encoding/json"
	"strings"
)

// Recipe is the summary record returned by recipe generation.
type Recipe struct {
	Name                  string   `json:"name"`
	Content               string   `json:"content,omitempty"`
	Description           string   `json:"description,omitempty"`
	Difficulty            string   `json:"difficulty,omitempty"`
	TimeEstimate          string   `json:"timeEstimate,omitempty"`
	AdditionalIngredients []string `json:"additionalIngredients,omitempty"`
	ImageURL              string   `json:"imageUrl,omitempty"`
	ValidationInfo        string   `json:"validationInfo,omitempty"`

	// CookingTime is derived on the client from Content.
	CookingTime string `json:"cookingTime,omitempty"`
}

// UnmarshalJSON implements the json.Unmarshaler interface for Recipe.
// Models occasionally answer additionalIngredients with a single
// comma separated string instead of a list; both forms are accepted.
func (r *Recipe) UnmarshalJSON(data []byte) error {
	type Alias Recipe // Create an alias to avoid infinite recursion
	aux := &struct {
		AdditionalIngredients json.RawMessage `json:"additionalIngredients"`
		*Alias
	}{
		Alias: (*Alias)(r),
	}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	r.Name = strings.TrimSpace(r.Name)
	r.AdditionalIngredients = nil
	if len(aux.AdditionalIngredients) == 0 || string(aux.AdditionalIngredients) == "null" {
		return nil
	}

	var list []string
	if err := json.Unmarshal(aux.AdditionalIngredients, &list); err == nil {
		r.AdditionalIngredients = list
		return nil
	}

	var joined string
	if err := json.Unmarshal(aux.AdditionalIngredients, &joined); err != nil {
		return err
	}
	for _, item := range strings.Split(joined, ",") {
		if item = strings.TrimSpace(item); item != "" {
			r.AdditionalIngredients = append(r.AdditionalIngredients, item)
		}
	}
	return nil
}

// Details is a recipe summary enriched with its full text and nutrition
// analysis.
type Details struct {
	Summary           Recipe `json:"summary"`
	Body              string `json:"recipe"`
	NutritionAnalysis string `json:"nutritionAnalysis"`
}

// Parsed returns the structured view of the details body. It is computed
// on every call from the raw text.
func (d *Details) Parsed() Parsed {
	return Parse(d.Body)
}

// Nutrition returns the nutrition analysis split into display lines.
func (d *Details) Nutrition() []NutritionLine {
	return ParseNutrition(d.NutritionAnalysis)
}
