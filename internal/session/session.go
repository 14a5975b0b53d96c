// Package session holds the recipe book wizard: the ingredient list, the
// generated recipes, and the selected recipe's details, moved between the
// ingredients, recipes and details stages by user actions and API results.
//
// A Session is the single owner of that state. Its methods may be called
// from several goroutines; network calls run without holding the lock and
// their results are applied afterwards.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"

	"recipebook/internal/recipe"
	"recipebook/internal/recipeapi"
)

// Stage is one step of the wizard.
type Stage int

const (
	StageIngredients Stage = iota
	StageRecipes
	StageDetails
)

// String returns the stage name.
func (s Stage) String() string {
	switch s {
	case StageIngredients:
		return "ingredients"
	case StageRecipes:
		return "recipes"
	case StageDetails:
		return "details"
	default:
		return "unknown"
	}
}

// User-facing messages.
const (
	msgTooFewIngredients = "Please add at least 2 ingredients"
	msgGenerateFailed    = "Failed to generate recipes. Please try again."
	msgInvalidResponse   = "Invalid response format from server"
	msgDetailsFailed     = "Failed to get recipe details"
)

// API is the subset of the recipe API the session needs.
type API interface {
	GenerateRecipes(ctx context.Context, ingredients []string) (*recipeapi.GenerateResponse, error)
	RecipeDetails(ctx context.Context, name string, ingredients []string) (*recipeapi.DetailsResponse, error)
	NutritionInfo(ctx context.Context, name string, ingredients []string) (string, error)
}

// State is a point-in-time copy of a Session for rendering.
type State struct {
	Stage       Stage
	Ingredients []string
	Recipes     []recipe.Recipe
	Selected    *recipe.Recipe
	Details     *recipe.Details
	Page        int
	PageCount   int
	Busy        bool
	Err         string
}

// Session is the recipe book wizard.
type Session struct {
	api    API
	guard  *Guard
	logger *slog.Logger

	mu          sync.Mutex
	stage       Stage
	ingredients Collector
	recipes     []recipe.Recipe
	selected    *recipe.Recipe
	details     *recipe.Details
	page        int
	err         string
	// generation counts successful Generate calls so a Select can tell
	// whether the list it read from was replaced.
	generation int
}

// New creates a session in the ingredients stage.
func New(api API, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{api: api, guard: NewGuard(), logger: logger}
}

// AddIngredient adds an ingredient. See Collector.Add.
func (s *Session) AddIngredient(text string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ingredients.Add(text)
}

// RemoveIngredient removes the ingredient at index. See Collector.Remove.
func (s *Session) RemoveIngredient(index int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ingredients.Remove(index)
}

// CanGenerate reports whether the generate action is enabled: there are
// enough ingredients and no generation is running.
func (s *Session) CanGenerate() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ingredients.CanGenerate() && !s.guard.Held(KeyGenerate)
}

// Stage returns the current stage.
func (s *Session) Stage() Stage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stage
}

// Busy reports whether any request is in flight.
func (s *Session) Busy() bool {
	return s.guard.Active() > 0
}

// Err returns the message shown in the error banner, if any.
func (s *Session) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// DismissError clears the error banner.
func (s *Session) DismissError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = ""
}

// Snapshot returns a copy of the session state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := State{
		Stage:       s.stage,
		Ingredients: s.ingredients.Items(),
		Recipes:     slices.Clone(s.recipes),
		Page:        s.page,
		PageCount:   s.pageCount(),
		Busy:        s.guard.Active() > 0,
		Err:         s.err,
	}
	if s.selected != nil {
		sel := *s.selected
		st.Selected = &sel
	}
	if s.details != nil {
		d := *s.details
		st.Details = &d
	}
	return st
}

// Generate requests recipes for the current ingredients and moves to the
// recipes stage on success. It is only available in the ingredients stage. With too few ingredients it returns a
// *ValidationError and makes no request. A second call while one is
// running returns ErrRequestInFlight and leaves the session untouched.
func (s *Session) Generate(ctx context.Context) error {
	token, release, err := s.guard.Acquire(KeyGenerate)
	if err != nil {
		return err
	}
	defer release()

	s.mu.Lock()
	if s.stage != StageIngredients {
		s.mu.Unlock()
		return ErrWrongStage
	}
	s.err = ""
	if !s.ingredients.CanGenerate() {
		s.err = msgTooFewIngredients
		s.mu.Unlock()
		return &ValidationError{Message: msgTooFewIngredients}
	}
	ingredients := s.ingredients.Items()
	s.mu.Unlock()

	s.logger.Debug("generating recipes", "token", token, "ingredients", ingredients)
	resp, err := s.api.GenerateRecipes(ctx, ingredients)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.err = userMessage(err, msgGenerateFailed)
		s.logger.Debug("generate recipes failed", "token", token, "err", err)
		return fmt.Errorf("generate recipes: %w", err)
	}
	if resp == nil || resp.Recipes == nil {
		s.err = msgInvalidResponse
		return ErrInvalidResponse
	}

	recipes := make([]recipe.Recipe, len(resp.Recipes))
	for i, r := range resp.Recipes {
		r.CookingTime = recipe.DeriveCookingTime(r.Content)
		recipes[i] = r
	}
	s.recipes = recipes
	s.generation++
	s.page = 0
	s.stage = StageRecipes
	return nil
}

// Select fetches the details and nutrition of the recipe at index
// concurrently and moves to the details stage once both have arrived. If
// either fails the session stays in the recipes stage and keeps nothing
// from the attempt. If the recipe list was regenerated or the user left the
// recipes stage meanwhile, the result is dropped and ErrSuperseded returned.
func (s *Session) Select(ctx context.Context, index int) error {
	token, release, err := s.guard.Acquire(KeySelect)
	if err != nil {
		return err
	}
	defer release()

	s.mu.Lock()
	if s.stage != StageRecipes {
		s.mu.Unlock()
		return ErrWrongStage
	}
	if index < 0 || index >= len(s.recipes) {
		s.mu.Unlock()
		return ErrNoSuchRecipe
	}
	s.err = ""
	chosen := s.recipes[index]
	ingredients := s.ingredients.Items()
	generation := s.generation
	s.mu.Unlock()

	s.logger.Debug("fetching recipe details", "token", token, "recipe", chosen.Name)

	var (
		details   *recipeapi.DetailsResponse
		nutrition string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		details, err = s.api.RecipeDetails(gctx, chosen.Name, ingredients)
		return err
	})
	g.Go(func() error {
		var err error
		nutrition, err = s.api.NutritionInfo(gctx, chosen.Name, ingredients)
		return err
	})
	err = g.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.generation != generation || s.stage != StageRecipes {
		s.logger.Debug("dropping stale recipe details", "token", token, "recipe", chosen.Name)
		return ErrSuperseded
	}
	if err != nil {
		s.err = msgDetailsFailed
		s.logger.Debug("recipe details failed", "token", token, "recipe", chosen.Name, "err", err)
		return fmt.Errorf("select recipe %q: %w", chosen.Name, err)
	}
	if details == nil {
		s.err = msgDetailsFailed
		return ErrInvalidResponse
	}

	s.selected = &chosen
	s.details = &recipe.Details{
		Summary:           chosen,
		Body:              details.Recipe,
		NutritionAnalysis: nutrition,
	}
	s.stage = StageDetails
	return nil
}

// Back returns to the previous stage. Nothing fetched so far is dropped.
func (s *Session) Back() Stage {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.stage {
	case StageRecipes:
		s.stage = StageIngredients
	case StageDetails:
		s.stage = StageRecipes
	}
	return s.stage
}

// Page returns the current flip-book page. Page 0 is the front cover.
func (s *Session) Page() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page
}

// PageCount returns the number of flip-book pages: a cover either side of
// one page per recipe.
func (s *Session) PageCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pageCount()
}

func (s *Session) pageCount() int {
	return len(s.recipes) + 2
}

// SetPage turns the flip-book to page n, clamped to the book.
func (s *Session) SetPage(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.page = max(0, min(n, s.pageCount()-1))
	return s.page
}

// RecipeOnPage returns the index of the recipe on page n, or -1 for a cover.
func RecipeOnPage(n, recipes int) int {
	if n < 1 || n > recipes {
		return -1
	}
	return n - 1
}

func userMessage(err error, fallback string) string {
	var apiErr *recipeapi.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "The request timed out. Please try again."
	}
	return fallback
}
