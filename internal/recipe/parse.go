package recipe

import (
	"regexp"
	"strings"
)

// Defaults used when the text does not mention a value.
const (
	DefaultCookingTime = "20 minutes"
	DefaultPrepTime    = "10 minutes"
	DefaultServings    = "2 portions"
)

var (
	summaryCookingTimeRe = regexp.MustCompile(`(?i)cooking time:?\s*(\d+)\s*minutes`)
	minutesRe            = regexp.MustCompile(`(?i)(\d+)\s*minutes?`)
	portionsRe           = regexp.MustCompile(`(?i)(\d+)\s*portions?`)
)

// Parsed is the structured view of a free-text recipe body.
type Parsed struct {
	Ingredients  []string
	Instructions []string
	CookingTime  string
	PrepTime     string
	Servings     string
}

// Parse extracts ingredients, instructions, times and servings from
// AI-generated recipe text organised as blank-line separated sections.
//
// This is a heuristic over prose, not a grammar. Known failure modes:
// sections not separated by a blank line are read as one section;
// "Servings: 4" without the word "portions" keeps the default; a step
// whose first line mentions "ingredients" is read as the ingredient list.
// Parse never fails; anything it cannot read falls back to the defaults.
func Parse(text string) Parsed {
	p := Parsed{
		Ingredients:  []string{},
		Instructions: []string{},
		CookingTime:  DefaultCookingTime,
		PrepTime:     DefaultPrepTime,
		Servings:     DefaultServings,
	}
	if strings.TrimSpace(text) == "" {
		return p
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	for _, section := range strings.Split(text, "\n\n") {
		heading, body, _ := strings.Cut(section, "\n")
		heading = strings.ToLower(heading)

		switch {
		case strings.Contains(heading, "ingredients"):
			p.Ingredients = nonEmptyLines(body)
		case strings.Contains(heading, "preparation"), strings.Contains(heading, "instructions"):
			p.Instructions = nonEmptyLines(body)
		}

		lower := strings.ToLower(section)
		if strings.Contains(lower, "cooking time") {
			if n := firstMatch(minutesRe, section); n != "" {
				p.CookingTime = n + " minutes"
			}
		}
		if strings.Contains(lower, "preparation time") || strings.Contains(lower, "prep time") {
			if n := firstMatch(minutesRe, section); n != "" {
				p.PrepTime = n + " minutes"
			}
		}
		if strings.Contains(lower, "servings") {
			if n := firstMatch(portionsRe, section); n != "" {
				p.Servings = n + " portions"
			}
		}
	}
	return p
}

// DeriveCookingTime reads "cooking time: N minutes" from a recipe summary's
// content, falling back to DefaultCookingTime.
func DeriveCookingTime(content string) string {
	if n := firstMatch(summaryCookingTimeRe, content); n != "" {
		return n + " minutes"
	}
	return DefaultCookingTime
}

func firstMatch(re *regexp.Regexp, s string) string {
	m := re.FindStringSubmatch(s)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}

func nonEmptyLines(s string) []string {
	lines := []string{}
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
