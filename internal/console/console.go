// Package console is a line-oriented terminal front end for a recipe book
// session. Each command is read from an io.Reader and the current stage is
// rendered to an io.Writer after it runs.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"recipebook/internal/session"
)

// DefaultTimeout bounds each request made on behalf of a command.
const DefaultTimeout = 90 * time.Second

// Images locates recipe pictures.
type Images interface {
	ImageURL(name string) string
	ImageAvailable(ctx context.Context, name string) bool
}

// Console drives a session from text commands.
type Console struct {
	session *session.Session
	images  Images
	in      *bufio.Scanner
	out     io.Writer
	styles  styles
	timeout time.Duration
	logger  *slog.Logger
}

// Option configures a Console.
type Option func(*Console)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Console) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Console) { c.logger = l }
}

// New creates a Console. images may be nil, in which case pictures are
// shown as placeholders.
func New(sess *session.Session, images Images, in io.Reader, out io.Writer, opts ...Option) *Console {
	c := &Console{
		session: sess,
		images:  images,
		in:      bufio.NewScanner(in),
		out:     out,
		styles:  newStyles(lipgloss.NewRenderer(out)),
		timeout: DefaultTimeout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// errQuit ends the loop without an error.
var errQuit = errors.New("quit")

// Run renders the session and executes commands until the input ends, a
// quit command is read or ctx is cancelled.
func (c *Console) Run(ctx context.Context) error {
	c.render(ctx)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprint(c.out, c.styles.prompt.Render("recipebook> "))
		if !c.in.Scan() {
			fmt.Fprintln(c.out)
			return c.in.Err()
		}

		err := c.Execute(ctx, c.in.Text())
		if errors.Is(err, errQuit) {
			fmt.Fprintln(c.out, c.styles.muted.Render("Bon Appétit!"))
			return nil
		}
		if err != nil {
			c.println(c.styles.hint.Render(err.Error()))
		}
		c.render(ctx)
	}
}

// Execute runs a single command line. Unknown commands and commands that
// do not apply to the current stage return an error describing the
// problem; failed requests are reported through the session's error
// banner instead.
func (c *Console) Execute(ctx context.Context, line string) error {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	cmd = strings.ToLower(cmd)
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "":
		return nil
	case "quit", "exit", "q":
		return errQuit
	case "help", "?":
		c.printHelp()
		return nil
	case "dismiss":
		c.session.DismissError()
		return nil
	case "back":
		c.session.Back()
		return nil
	}

	switch c.session.Stage() {
	case session.StageIngredients:
		return c.ingredientCommand(ctx, cmd, arg)
	case session.StageRecipes:
		return c.recipeCommand(ctx, cmd, arg)
	}
	return fmt.Errorf("unknown command %q, type 'help' for a list", cmd)
}

func (c *Console) ingredientCommand(ctx context.Context, cmd, arg string) error {
	switch cmd {
	case "add":
		if !c.session.AddIngredient(arg) {
			return fmt.Errorf("ingredient %q is empty or already listed", arg)
		}
		return nil
	case "rm", "remove":
		n, err := strconv.Atoi(arg)
		if err != nil || !c.session.RemoveIngredient(n-1) {
			return fmt.Errorf("no ingredient number %q", arg)
		}
		return nil
	case "generate", "gen":
		c.println(c.styles.muted.Render("Generating recipes..."))
		return c.request(ctx, c.session.Generate)
	}
	return fmt.Errorf("unknown command %q, type 'help' for a list", cmd)
}

func (c *Console) recipeCommand(ctx context.Context, cmd, arg string) error {
	switch cmd {
	case "next", "n":
		c.session.SetPage(c.session.Page() + 1)
		return nil
	case "prev", "p":
		c.session.SetPage(c.session.Page() - 1)
		return nil
	case "page":
		n, err := strconv.Atoi(arg)
		if err != nil {
			return fmt.Errorf("invalid page %q", arg)
		}
		c.session.SetPage(n - 1)
		return nil
	case "open", "view":
		index, err := c.recipeIndex(arg)
		if err != nil {
			return err
		}
		c.println(c.styles.muted.Render("Fetching recipe details..."))
		return c.request(ctx, func(ctx context.Context) error {
			return c.session.Select(ctx, index)
		})
	}
	return fmt.Errorf("unknown command %q, type 'help' for a list", cmd)
}

// recipeIndex resolves the argument of open: a 1-based recipe number, or
// the recipe on the current page when empty.
func (c *Console) recipeIndex(arg string) (int, error) {
	if arg == "" {
		state := c.session.Snapshot()
		index := session.RecipeOnPage(state.Page, len(state.Recipes))
		if index < 0 {
			return 0, errors.New("turn to a recipe page or give a recipe number")
		}
		return index, nil
	}
	n, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid recipe number %q", arg)
	}
	return n - 1, nil
}

// request runs fn under the console's timeout. Errors already shown in the
// banner are logged and swallowed.
func (c *Console) request(ctx context.Context, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	err := fn(ctx)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, session.ErrRequestInFlight):
		return errors.New("a request is already running")
	case errors.Is(err, session.ErrNoSuchRecipe):
		return errors.New("no such recipe")
	case errors.Is(err, session.ErrWrongStage):
		return errors.New("that command does not apply here")
	case errors.Is(err, session.ErrSuperseded):
		return errors.New("the recipe list changed, pick a recipe again")
	}
	c.logger.Debug("request failed", "err", err)
	return nil
}

func (c *Console) printHelp() {
	var lines []string
	switch c.session.Stage() {
	case session.StageIngredients:
		lines = []string{
			"add <ingredient>  add an ingredient",
			"rm <n>            remove ingredient n",
			"generate          generate recipes (needs 2 ingredients)",
		}
	case session.StageRecipes:
		lines = []string{
			"next, prev        turn the page",
			"page <n>          go to page n",
			"open [n]          open recipe n or the one on this page",
			"back              back to ingredients",
		}
	case session.StageDetails:
		lines = []string{"back              back to the recipe book"}
	}
	lines = append(lines, "dismiss           hide the error message", "quit              leave")
	for _, l := range lines {
		c.println(c.styles.muted.Render("  " + l))
	}
}

func (c *Console) println(s string) {
	fmt.Fprintln(c.out, s)
}
