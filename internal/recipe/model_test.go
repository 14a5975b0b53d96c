package recipe

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecipe_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []string
	}{
		{"list", `{"name":" Pancakes ","additionalIngredients":["milk","butter"]}`, []string{"milk", "butter"}},
		{"string", `{"name":"Pancakes","additionalIngredients":"milk, butter,"}`, []string{"milk", "butter"}},
		{"missing", `{"name":"Pancakes"}`, nil},
		{"null", `{"name":"Pancakes","additionalIngredients":null}`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r Recipe
			require.NoError(t, json.Unmarshal([]byte(tt.body), &r))
			assert.Equal(t, "Pancakes", r.Name)
			assert.Equal(t, tt.want, r.AdditionalIngredients)
		})
	}
}

func TestRecipe_UnmarshalJSON_Invalid(t *testing.T) {
	var r Recipe
	assert.Error(t, json.Unmarshal([]byte(`{"name":"x","additionalIngredients":42}`), &r))
}

func TestImageNames(t *testing.T) {
	assert.Equal(t, "spicy_egg_fried_rice.png", ImageName("Spicy Egg Fried Rice"))
	assert.Equal(t, "chefs_special_stir_fry.png", SafeImageName("Chef's \"Special\" Stir-fry"))
	assert.Equal(t, "pancakes.png", SafeImageName("Pancakes"))
}
