package recipe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse_SectionsAndTimes(t *testing.T) {
	text := "Cooking Time: 35 minutes\n\nPrep Time: 15 minutes\n\nServings: 4 portions\n\n" +
		"Ingredients:\n- 2 eggs\n- 1 cup flour\n\n" +
		"Instructions:\n1. Whisk the eggs.\n  \n2. Fold in the flour."

	p := Parse(text)

	assert.Equal(t, "35 minutes", p.CookingTime)
	assert.Equal(t, "15 minutes", p.PrepTime)
	assert.Equal(t, "4 portions", p.Servings)
	assert.Equal(t, []string{"- 2 eggs", "- 1 cup flour"}, p.Ingredients)
	assert.Equal(t, []string{"1. Whisk the eggs.", "2. Fold in the flour."}, p.Instructions)
}

func TestParse_IngredientsAndInstructions(t *testing.T) {
	p := Parse("Ingredients:\nA\nB\n\nInstructions:\n1. Do X")

	assert.Equal(t, []string{"A", "B"}, p.Ingredients)
	assert.Equal(t, []string{"1. Do X"}, p.Instructions)
}

func TestParse_Defaults(t *testing.T) {
	for _, text := range []string{"", "   \n\n ", "just some prose with no structure"} {
		p := Parse(text)
		assert.Equal(t, DefaultCookingTime, p.CookingTime)
		assert.Equal(t, DefaultPrepTime, p.PrepTime)
		assert.Equal(t, DefaultServings, p.Servings)
		assert.Empty(t, p.Ingredients)
		assert.NotNil(t, p.Ingredients)
		assert.Empty(t, p.Instructions)
		assert.NotNil(t, p.Instructions)
	}
}

func TestParse_CookingTime(t *testing.T) {
	assert.Equal(t, "35 minutes", Parse("Cooking Time: 35 minutes").CookingTime)
	assert.Equal(t, "20 minutes", Parse("Bake until golden.").CookingTime)
	assert.Equal(t, "1 minutes", Parse("COOKING TIME 1 minute").CookingTime)
}

func TestParse_PreparationHeading(t *testing.T) {
	p := Parse("Preparation time: 5 minutes\n\nPreparation:\nChop\nStir")

	assert.Equal(t, []string{"Chop", "Stir"}, p.Instructions)
	assert.Equal(t, "5 minutes", p.PrepTime)
}

func TestParse_HeadingOnly(t *testing.T) {
	// Only the first line of a section decides its role.
	p := Parse("Instructions:\n1. Gather the ingredients\n2. Cook")

	assert.Empty(t, p.Ingredients)
	assert.Equal(t, []string{"1. Gather the ingredients", "2. Cook"}, p.Instructions)
}

func TestParse_ServingsNeedPortions(t *testing.T) {
	assert.Equal(t, DefaultServings, Parse("Servings: 4").Servings)
	assert.Equal(t, "6 portions", Parse("Servings: 6 portion").Servings)
}

func TestParse_CRLF(t *testing.T) {
	p := Parse("Ingredients:\r\nA\r\nB\r\n\r\nInstructions:\r\n1. Do X")

	assert.Equal(t, []string{"A", "B"}, p.Ingredients)
	assert.Equal(t, []string{"1. Do X"}, p.Instructions)
}

func TestParse_LaterSectionWins(t *testing.T) {
	p := Parse("Ingredients:\nA\n\nIngredients for the sauce:\nB")

	assert.Equal(t, []string{"B"}, p.Ingredients)
}

func TestDeriveCookingTime(t *testing.T) {
	tests := []struct {
		content string
		want    string
	}{
		{"A quick dish. cooking time: 15 minutes", "15 minutes"},
		{"Cooking Time 40 Minutes", "40 minutes"},
		{"takes 15 minutes", "20 minutes"},
		{"", "20 minutes"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DeriveCookingTime(tt.content), tt.content)
	}
}

func TestDetails_Parsed(t *testing.T) {
	d := &Details{
		Summary:           Recipe{Name: "Pancakes"},
		Body:              "Ingredients:\negg\nflour",
		NutritionAnalysis: "Calories: 250",
	}

	assert.Equal(t, []string{"egg", "flour"}, d.Parsed().Ingredients)
	assert.Equal(t, []NutritionLine{{Label: "Calories", Value: "250"}}, d.Nutrition())
}
