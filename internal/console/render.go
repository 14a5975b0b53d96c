package console

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"recipebook/internal/recipe"
	"recipebook/internal/session"
)

const chefsTip = "For best results, use fresh ingredients and serve immediately."

type styles struct {
	title   lipgloss.Style
	heading lipgloss.Style
	body    lipgloss.Style
	muted   lipgloss.Style
	hint    lipgloss.Style
	banner  lipgloss.Style
	card    lipgloss.Style
	label   lipgloss.Style
	tip     lipgloss.Style
	prompt  lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		title:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("#fde68a")),
		heading: r.NewStyle().Bold(true).Foreground(lipgloss.Color("#bae6fd")),
		body:    r.NewStyle().Foreground(lipgloss.Color("#d4d4d8")),
		muted:   r.NewStyle().Foreground(lipgloss.Color("#71717a")),
		hint:    r.NewStyle().Foreground(lipgloss.Color("#a1a1aa")).Italic(true),
		banner:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("#fca5a5")),
		card:    r.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#52525b")).Padding(0, 1),
		label:   r.NewStyle().Foreground(lipgloss.Color("#bbf7d0")),
		tip:     r.NewStyle().Foreground(lipgloss.Color("#fde68a")),
		prompt:  r.NewStyle().Foreground(lipgloss.Color("#94a3b8")),
	}
}

func (c *Console) render(ctx context.Context) {
	state := c.session.Snapshot()

	var b strings.Builder
	b.WriteString("\n")
	if state.Err != "" {
		b.WriteString(c.styles.banner.Render("! "+state.Err) + c.styles.muted.Render("  (dismiss)") + "\n\n")
	}

	switch state.Stage {
	case session.StageIngredients:
		c.renderIngredients(&b, state)
	case session.StageRecipes:
		c.renderBook(ctx, &b, state)
	case session.StageDetails:
		c.renderDetails(ctx, &b, state)
	}
	fmt.Fprint(c.out, b.String())
}

func (c *Console) renderIngredients(b *strings.Builder, state session.State) {
	b.WriteString(c.styles.title.Render("Ingredients") + "\n")
	for i, item := range state.Ingredients {
		fmt.Fprintf(b, "  %d. %s\n", i+1, c.styles.body.Render(item))
	}
	fmt.Fprintf(b, "%s\n", c.styles.muted.Render(fmt.Sprintf("%d ingredient(s) added", len(state.Ingredients))))
	if len(state.Ingredients) < session.MinIngredients {
		b.WriteString(c.styles.hint.Render("Add at least 2 ingredients to generate recipes") + "\n")
	} else {
		b.WriteString(c.styles.hint.Render("Type 'generate' to create recipes") + "\n")
	}
}

func (c *Console) renderBook(ctx context.Context, b *strings.Builder, state session.State) {
	switch index := session.RecipeOnPage(state.Page, len(state.Recipes)); {
	case state.Page == 0:
		b.WriteString(c.styles.card.Render(
			c.styles.title.Render("Your Recipe Book")+"\n"+
				c.styles.muted.Render("A Collection of Culinary Delights")) + "\n")
	case index < 0:
		b.WriteString(c.styles.card.Render(c.styles.title.Render("Bon Appétit!")) + "\n")
	default:
		r := state.Recipes[index]
		var page strings.Builder
		page.WriteString(c.image(ctx, r) + "\n")
		page.WriteString(c.styles.heading.Render(fmt.Sprintf("%d. %s", index+1, r.Name)) + "\n")
		if r.Description != "" {
			page.WriteString(c.styles.body.Render(r.Description) + "\n")
		}
		page.WriteString(c.styles.label.Render("Cooking: ") + r.CookingTime)
		if r.Difficulty != "" {
			page.WriteString(c.styles.label.Render("  Difficulty: ") + r.Difficulty)
		}
		if len(r.AdditionalIngredients) > 0 {
			page.WriteString("\n" + c.styles.label.Render("Also needs: ") + strings.Join(r.AdditionalIngredients, ", "))
		}
		b.WriteString(c.styles.card.Render(page.String()) + "\n")
		b.WriteString(c.styles.hint.Render("Type 'open' to view the full recipe") + "\n")
	}
	b.WriteString(c.styles.muted.Render(fmt.Sprintf("Page %d of %d", state.Page+1, state.PageCount)) + "\n")
}

func (c *Console) renderDetails(ctx context.Context, b *strings.Builder, state session.State) {
	if state.Selected == nil || state.Details == nil {
		return
	}
	parsed := state.Details.Parsed()

	b.WriteString(c.image(ctx, *state.Selected) + "\n")
	b.WriteString(c.styles.title.Render(state.Selected.Name) + "\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		c.styles.card.Render(c.styles.label.Render("Prep Time")+"\n"+parsed.PrepTime),
		c.styles.card.Render(c.styles.label.Render("Cooking Time")+"\n"+parsed.CookingTime),
		c.styles.card.Render(c.styles.label.Render("Servings")+"\n"+parsed.Servings),
	) + "\n")

	b.WriteString("\n" + c.styles.heading.Render("Ingredients") + "\n")
	for _, item := range parsed.Ingredients {
		b.WriteString("  • " + c.styles.body.Render(item) + "\n")
	}

	b.WriteString("\n" + c.styles.heading.Render("Instructions") + "\n")
	for i, step := range parsed.Instructions {
		fmt.Fprintf(b, "  %d. %s\n", i+1, c.styles.body.Render(step))
	}

	b.WriteString("\n" + c.styles.tip.Render("Chef's Tips") + "\n")
	b.WriteString("  " + c.styles.body.Render(chefsTip) + "\n")

	b.WriteString("\n" + c.styles.heading.Render("Nutritional Information") + "\n")
	for _, line := range state.Details.Nutrition() {
		if line.IsPair() {
			fmt.Fprintf(b, "  %s %s\n", c.styles.label.Render(line.Label+":"), line.Value)
		} else {
			b.WriteString("  " + c.styles.body.Render(line.Text) + "\n")
		}
	}
}

// image returns the picture line for r: its URL when one is known and
// reachable, otherwise a placeholder.
func (c *Console) image(ctx context.Context, r recipe.Recipe) string {
	placeholder := c.styles.muted.Render("[ Recipe Image ]")
	if r.ImageURL != "" {
		return c.styles.muted.Render("Image: " + r.ImageURL)
	}
	if c.images == nil {
		return placeholder
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	if !c.images.ImageAvailable(ctx, r.Name) {
		return placeholder
	}
	return c.styles.muted.Render("Image: " + c.images.ImageURL(r.Name))
}
