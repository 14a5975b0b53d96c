// Package kitchen turns ingredient lists into recipe ideas, detailed
// recipes and nutrition analyses by prompting an LLM provider.
package kitchen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"recipebook/internal/providers"
	"recipebook/internal/recipe"
)

// MaxOptions is the number of recipe ideas requested and kept.
const MaxOptions = 6

// GenerationTimeout bounds a provider call shared by concurrent callers.
const GenerationTimeout = 60 * time.Second

// Errors returned by Service.
var (
	ErrTooFewIngredients = errors.New("at least 2 ingredients are required")
	ErrNoRecipes         = errors.New("no recipes generated")
	ErrNoProvider        = errors.New("no LLM provider configured")
)

// Service generates recipe text. Validation, details and nutrition are
// cached in a recipe.Store; identical concurrent calls share one provider
// request.
type Service struct {
	provider providers.Provider
	store    recipe.Store
	logger   *slog.Logger
	calls    singleflight.Group
}

// NewService creates a Service.
func NewService(provider providers.Provider, store recipe.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{provider: provider, store: store, logger: logger}
}

// Provider returns the configured LLM provider, or nil.
func (s *Service) Provider() providers.Provider {
	return s.provider
}

// ValidateIngredients returns a short assessment of the ingredient list.
func (s *Service) ValidateIngredients(ctx context.Context, ingredients []string) (string, error) {
	ingredients = clean(ingredients)
	if len(ingredients) < 2 {
		return "", ErrTooFewIngredients
	}
	return s.cached(ctx, recipe.KindValidation, "", ingredients, validationPrompt(ingredients))
}

// GenerateOptions asks for up to MaxOptions recipe ideas. Ideas are not
// cached so repeated requests can return new suggestions.
func (s *Service) GenerateOptions(ctx context.Context, ingredients []string) ([]recipe.Recipe, error) {
	if s.provider == nil {
		return nil, ErrNoProvider
	}
	ingredients = clean(ingredients)
	key := recipe.CacheKey(recipe.KindOptions, "", ingredients)

	reply, _, err := s.share(ctx, key, func(ctx context.Context) (string, error) {
		return s.provider.Complete(ctx, optionsPrompt(ingredients))
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate recipe options: %w", err)
	}

	recipes, err := parseOptions(reply)
	if err != nil {
		return nil, err
	}
	if len(recipes) < MaxOptions {
		s.logger.Warn("generated fewer recipes than requested", "got", len(recipes), "want", MaxOptions)
	}
	return recipes, nil
}

// GenerateRecipes validates the ingredients and generates recipe ideas
// concurrently. Each idea carries the validation summary.
func (s *Service) GenerateRecipes(ctx context.Context, ingredients []string) ([]recipe.Recipe, error) {
	var (
		validation string
		recipes    []recipe.Recipe
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		validation, err = s.ValidateIngredients(gctx, ingredients)
		return err
	})
	g.Go(func() error {
		var err error
		recipes, err = s.GenerateOptions(gctx, ingredients)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i := range recipes {
		recipes[i].ValidationInfo = validation
	}
	return recipes, nil
}

// DetailedRecipe returns the full recipe text for name.
func (s *Service) DetailedRecipe(ctx context.Context, name string, ingredients []string) (string, error) {
	ingredients = clean(ingredients)
	return s.cached(ctx, recipe.KindDetails, name, ingredients, detailsPrompt(name, ingredients))
}

// NutritionAnalysis returns the nutrition analysis text for name.
func (s *Service) NutritionAnalysis(ctx context.Context, name string, ingredients []string) (string, error) {
	ingredients = clean(ingredients)
	return s.cached(ctx, recipe.KindNutrition, name, ingredients, nutritionPrompt(name, ingredients))
}

func (s *Service) cached(ctx context.Context, kind, name string, ingredients []string, prompt providers.Prompt) (string, error) {
	key := recipe.CacheKey(kind, name, ingredients)

	if text, err := s.store.GetText(ctx, key); err != nil {
		s.logger.Error("cache lookup failed", "kind", kind, "err", err)
	} else if text != "" {
		s.logger.Debug("cache hit", "kind", kind, "recipe", name)
		return text, nil
	}

	if s.provider == nil {
		return "", ErrNoProvider
	}
	text, shared, err := s.share(ctx, key, func(ctx context.Context) (string, error) {
		s.logger.Info("generating text", "kind", kind, "recipe", name, "provider", s.provider.Name())
		text, err := s.provider.Complete(ctx, prompt)
		if err != nil {
			return "", err
		}
		if err := s.store.SaveText(ctx, key, kind, text); err != nil {
			s.logger.Error("failed to cache generated text", "kind", kind, "err", err)
		}
		return text, nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate %s: %w", kind, err)
	}
	if shared {
		s.logger.Debug("shared in-flight generation", "kind", kind, "recipe", name)
	}
	return text, nil
}

// share runs fn once per key for all concurrent callers. fn gets a context
// that outlives any single caller, bounded by GenerationTimeout; each caller
// stops waiting when its own ctx is done.
func (s *Service) share(ctx context.Context, key string, fn func(context.Context) (string, error)) (string, bool, error) {
	ch := s.calls.DoChan(key, func() (any, error) {
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), GenerationTimeout)
		defer cancel()
		return fn(callCtx)
	})

	select {
	case <-ctx.Done():
		return "", false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Shared, res.Err
		}
		return res.Val.(string), res.Shared, nil
	}
}

// parseOptions extracts the JSON array of recipe ideas from a model reply,
// which may be wrapped in prose or markdown fences.
func parseOptions(reply string) ([]recipe.Recipe, error) {
	start := strings.Index(reply, "[")
	end := strings.LastIndex(reply, "]")
	if start == -1 || end == -1 || start > end {
		return nil, fmt.Errorf("could not find JSON array in response: %s", reply)
	}

	var recipes []recipe.Recipe
	if err := json.Unmarshal([]byte(reply[start:end+1]), &recipes); err != nil {
		return nil, fmt.Errorf("failed to unmarshal recipe options: %w", err)
	}

	recipes = lo.Filter(recipes, func(r recipe.Recipe, _ int) bool { return r.Name != "" })
	if len(recipes) == 0 {
		return nil, ErrNoRecipes
	}
	if len(recipes) > MaxOptions {
		recipes = recipes[:MaxOptions]
	}
	return recipes, nil
}

func clean(ingredients []string) []string {
	return lo.Uniq(lo.Compact(lo.Map(ingredients, func(s string, _ int) string {
		return strings.TrimSpace(s)
	})))
}
