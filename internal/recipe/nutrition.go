package recipe

import "strings"

// NutritionLine is one display line of a nutrition analysis. Lines
// without a colon carry only Text.
type NutritionLine struct {
	Label string
	Value string
	Text  string
}

// IsPair reports whether the line renders as a label/value pair.
func (l NutritionLine) IsPair() bool {
	return l.Text == ""
}

// ParseNutrition splits free-text nutrition output into display lines.
// Blank lines are dropped and lines with a colon are split on the first one.
func ParseNutrition(text string) []NutritionLine {
	var lines []NutritionLine
	for _, raw := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if label, value, ok := strings.Cut(line, ":"); ok {
			lines = append(lines, NutritionLine{
				Label: strings.TrimSpace(label),
				Value: strings.TrimSpace(value),
			})
			continue
		}
		lines = append(lines, NutritionLine{Text: line})
	}
	return lines
}
