package images

import (
	"context"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"recipebook/internal/recipe"
)

// GenerateWorkers is how many pictures are generated at once.
const GenerateWorkers = 3

// Generator paints a picture of a recipe. The returned bytes are a PNG or
// JPEG image.
type Generator interface {
	Generate(ctx context.Context, recipeName string) ([]byte, error)
}

// Illustrate makes sure each recipe has a picture and returns the stored
// file name per recipe name. Recipes without a stored image are painted by
// gen, GenerateWorkers at a time. A failed picture is logged and left out;
// with a nil gen only existing images are reported.
func (s *Store) Illustrate(ctx context.Context, gen Generator, recipeNames []string) map[string]string {
	found := make(map[string]string)
	var missing []string
	for _, name := range lo.Uniq(recipeNames) {
		if s.Exists(name) {
			found[name] = recipe.SafeImageName(name)
		} else if gen != nil && recipe.SafeImageName(name) != ".png" {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return found
	}

	filenames := make([]string, len(missing))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(GenerateWorkers)
	for i, name := range missing {
		g.Go(func() error {
			data, err := gen.Generate(gctx, name)
			if err != nil {
				s.logger.Error("failed to generate recipe image", "recipe", name, "err", err)
				return nil
			}
			filename, err := s.Save(name, data)
			if err != nil {
				s.logger.Error("failed to store generated image", "recipe", name, "err", err)
				return nil
			}
			filenames[i] = filename
			return nil
		})
	}
	_ = g.Wait()

	for i, name := range missing {
		if filenames[i] != "" {
			found[name] = filenames[i]
		}
	}
	return found
}
