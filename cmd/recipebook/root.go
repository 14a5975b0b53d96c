package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"recipebook/internal/console"
	"recipebook/internal/recipe"
	"recipebook/internal/recipeapi"
	"recipebook/internal/session"
)

func newRootCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "recipebook",
		Short: "Turn the ingredients you have into a recipe book",
		Long: `recipebook collects ingredients, asks the recipe API for ideas and
shows them as a flip-book. Open any recipe to see its full instructions and
nutrition analysis.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			_ = godotenv.Load()

			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
		},
	}
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log requests to stderr")

	cmd.AddCommand(newCookCmd(), newParseCmd())
	return cmd
}

func newCookCmd() *cobra.Command {
	var (
		apiURL      string
		imageURL    string
		timeout     time.Duration
		ingredients []string
	)

	cmd := &cobra.Command{
		Use:   "cook",
		Short: "Start an interactive recipe book session",
		Example: `  # Use the API on localhost
  recipebook cook

  # Start with some ingredients already listed
  recipebook cook -i eggs -i rice --api-url https://recipes.example.com/api`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if apiURL == "" {
				apiURL = envOr("RECIPEBOOK_API_URL", recipeapi.DefaultBaseURL)
			}

			opts := []recipeapi.Option{recipeapi.WithLogger(slog.Default())}
			if imageURL != "" {
				opts = append(opts, recipeapi.WithImageBaseURL(imageURL))
			}
			client := recipeapi.New(apiURL, opts...)

			sess := session.New(client, slog.Default())
			for _, item := range ingredients {
				sess.AddIngredient(item)
			}

			c := console.New(sess, client, cmd.InOrStdin(), cmd.OutOrStdout(),
				console.WithTimeout(timeout),
				console.WithLogger(slog.Default()),
			)
			return c.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&apiURL, "api-url", "", "Recipe API base URL (env RECIPEBOOK_API_URL)")
	cmd.Flags().StringVar(&imageURL, "image-url", "", "Base URL images are served from (defaults to the API host)")
	cmd.Flags().DurationVar(&timeout, "timeout", console.DefaultTimeout, "Timeout for each request")
	cmd.Flags().StringArrayVarP(&ingredients, "ingredient", "i", nil, "Ingredient to start with (repeatable)")

	return cmd
}

func newParseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse [file]",
		Short: "Parse a recipe text and print what was recognised",
		Long: `Reads recipe text from a file, or from stdin when no file is given,
and prints the ingredients, instructions, times and servings recognised in it.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				data []byte
				err  error
			)
			if len(args) == 1 {
				data, err = os.ReadFile(args[0])
			} else {
				data, err = io.ReadAll(cmd.InOrStdin())
			}
			if err != nil {
				return fmt.Errorf("failed to read recipe: %w", err)
			}

			writeParsed(cmd.OutOrStdout(), recipe.Parse(string(data)))
			return nil
		},
	}
}

func writeParsed(w io.Writer, p recipe.Parsed) {
	fmt.Fprintf(w, "Prep time:    %s\n", p.PrepTime)
	fmt.Fprintf(w, "Cooking time: %s\n", p.CookingTime)
	fmt.Fprintf(w, "Servings:     %s\n", p.Servings)
	fmt.Fprintln(w, "\nIngredients:")
	for _, item := range p.Ingredients {
		fmt.Fprintf(w, "  - %s\n", item)
	}
	fmt.Fprintln(w, "\nInstructions:")
	for i, step := range p.Instructions {
		fmt.Fprintf(w, "  %d. %s\n", i+1, step)
	}
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
