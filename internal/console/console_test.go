package console

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipebook/internal/recipe"
	"recipebook/internal/recipeapi"
	"recipebook/internal/session"
)

const detailsText = `Ingredients:
2 eggs
1 cup rice

Instructions:
1. Beat the eggs
2. Fry the rice

Prep time: 5 minutes

Cooking time: 15 minutes

Servings: 3 portions`

type stubAPI struct {
	recipes      []recipe.Recipe
	generateErr  error
	nutritionErr error
	lastDeadline time.Time
}

func (s *stubAPI) GenerateRecipes(ctx context.Context, _ []string) (*recipeapi.GenerateResponse, error) {
	s.lastDeadline, _ = ctx.Deadline()
	if s.generateErr != nil {
		return nil, s.generateErr
	}
	return &recipeapi.GenerateResponse{Recipes: s.recipes}, nil
}

func (s *stubAPI) RecipeDetails(context.Context, string, []string) (*recipeapi.DetailsResponse, error) {
	return &recipeapi.DetailsResponse{Recipe: detailsText}, nil
}

func (s *stubAPI) NutritionInfo(context.Context, string, []string) (string, error) {
	if s.nutritionErr != nil {
		return "", s.nutritionErr
	}
	return "Calories: 420 kcal\nProtein: 18g: lean\nA balanced meal.", nil
}

type stubImages struct {
	available map[string]bool
}

func (s stubImages) ImageURL(name string) string {
	return "http://localhost:8080/images/" + recipe.ImageName(name)
}

func (s stubImages) ImageAvailable(_ context.Context, name string) bool {
	return s.available[name]
}

func sampleRecipes() []recipe.Recipe {
	return []recipe.Recipe{
		{Name: "Egg Fried Rice", Description: "Quick weeknight rice", Difficulty: "Easy", Content: "Cooking time: 15 minutes"},
		{Name: "Rice Pudding", Description: "Sweet and creamy", Difficulty: "Medium", ImageURL: "http://cdn/rice_pudding.png"},
	}
}

func run(t *testing.T, api *stubAPI, images Images, script string, opts ...Option) (string, *session.Session) {
	t.Helper()
	sess := session.New(api, nil)
	var out bytes.Buffer
	c := New(sess, images, strings.NewReader(script), &out, opts...)
	require.NoError(t, c.Run(context.Background()))
	return out.String(), sess
}

func TestRun_FullFlow(t *testing.T) {
	api := &stubAPI{recipes: sampleRecipes()}
	images := stubImages{available: map[string]bool{"Egg Fried Rice": true}}

	out, sess := run(t, api, images, strings.Join([]string{
		"add eggs",
		"add rice",
		"generate",
		"next",
		"open",
	}, "\n")+"\n")

	assert.Equal(t, session.StageDetails, sess.Stage())
	assert.Contains(t, out, "2 ingredient(s) added")
	assert.Contains(t, out, "Your Recipe Book")
	assert.Contains(t, out, "Page 1 of 4")
	assert.Contains(t, out, "Page 2 of 4")
	assert.Contains(t, out, "1. Egg Fried Rice")
	assert.Contains(t, out, "15 minutes")
	assert.Contains(t, out, "Image: http://localhost:8080/images/egg_fried_rice.png")

	assert.Contains(t, out, "5 minutes")
	assert.Contains(t, out, "3 portions")
	assert.Contains(t, out, "• 2 eggs")
	assert.Contains(t, out, "2. 2. Fry the rice")
	assert.Contains(t, out, "Chef's Tips")
	assert.Contains(t, out, "Calories: 420 kcal")
	assert.Contains(t, out, "Protein: 18g: lean")
	assert.Contains(t, out, "A balanced meal.")
}

func TestRun_Quit(t *testing.T) {
	out, sess := run(t, &stubAPI{}, nil, "add eggs\nquit\nadd rice\n")
	assert.Contains(t, out, "Bon Appétit!")
	assert.Equal(t, []string{"eggs"}, sess.Snapshot().Ingredients)
}

func TestRun_ValidationBanner(t *testing.T) {
	out, sess := run(t, &stubAPI{recipes: sampleRecipes()}, nil, "add eggs\ngenerate\n")
	assert.Equal(t, session.StageIngredients, sess.Stage())
	assert.Contains(t, out, "! Please add at least 2 ingredients")
	assert.Contains(t, out, "Add at least 2 ingredients to generate recipes")
}

func TestRun_APIErrorBannerAndDismiss(t *testing.T) {
	api := &stubAPI{generateErr: &recipeapi.APIError{StatusCode: 400, Message: "Failed to validate ingredients or generate recipes"}}
	_, sess := run(t, api, nil, "add eggs\nadd rice\ngenerate\n")
	assert.Equal(t, "Failed to validate ingredients or generate recipes", sess.Err())

	_, sess = run(t, api, nil, "add eggs\nadd rice\ngenerate\ndismiss\n")
	assert.Empty(t, sess.Err())
}

func TestRun_ImagePlaceholder(t *testing.T) {
	out, _ := run(t, &stubAPI{recipes: sampleRecipes()}, stubImages{}, "add eggs\nadd rice\ngenerate\npage 2\n")
	assert.Contains(t, out, "[ Recipe Image ]")

	out, _ = run(t, &stubAPI{recipes: sampleRecipes()}, nil, "add eggs\nadd rice\ngenerate\npage 3\n")
	assert.Contains(t, out, "Image: http://cdn/rice_pudding.png")
}

func TestRun_FailedDetailsStayInRecipes(t *testing.T) {
	api := &stubAPI{recipes: sampleRecipes(), nutritionErr: errors.New("down")}
	out, sess := run(t, api, nil, "add eggs\nadd rice\ngenerate\nopen 1\n")
	assert.Equal(t, session.StageRecipes, sess.Stage())
	assert.Contains(t, out, "! Failed to get recipe details")
}

func TestRun_Timeout(t *testing.T) {
	api := &stubAPI{recipes: sampleRecipes()}
	before := time.Now()
	run(t, api, nil, "add eggs\nadd rice\ngenerate\n", WithTimeout(time.Minute))
	require.False(t, api.lastDeadline.IsZero())
	assert.WithinDuration(t, before.Add(time.Minute), api.lastDeadline, 5*time.Second)
}

func TestExecute(t *testing.T) {
	sess := session.New(&stubAPI{recipes: sampleRecipes()}, nil)
	c := New(sess, nil, strings.NewReader(""), &bytes.Buffer{})
	ctx := context.Background()

	require.NoError(t, c.Execute(ctx, "add eggs"))
	assert.Error(t, c.Execute(ctx, "add eggs"))
	assert.Error(t, c.Execute(ctx, "add   "))
	assert.Error(t, c.Execute(ctx, "rm 5"))
	assert.Error(t, c.Execute(ctx, "rm x"))
	assert.Error(t, c.Execute(ctx, "next"))
	assert.NoError(t, c.Execute(ctx, ""))
	require.NoError(t, c.Execute(ctx, "add rice"))
	require.NoError(t, c.Execute(ctx, "rm 1"))
	assert.Equal(t, []string{"rice"}, sess.Snapshot().Ingredients)

	require.NoError(t, c.Execute(ctx, "add eggs"))
	require.NoError(t, c.Execute(ctx, "generate"))
	require.Equal(t, session.StageRecipes, sess.Stage())

	assert.EqualError(t, c.Execute(ctx, "open"), "turn to a recipe page or give a recipe number")
	assert.EqualError(t, c.Execute(ctx, "open 9"), "no such recipe")
	require.NoError(t, c.Execute(ctx, "page 99"))
	assert.Equal(t, 3, sess.Page())
	require.NoError(t, c.Execute(ctx, "prev"))
	assert.Equal(t, 2, sess.Page())

	require.NoError(t, c.Execute(ctx, "back"))
	assert.Equal(t, session.StageIngredients, sess.Stage())
	assert.ErrorIs(t, c.Execute(ctx, "quit"), errQuit)
}
