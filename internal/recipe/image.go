package recipe

import "strings"

// ImageName is the file name the client expects a recipe's picture under:
// the lower-cased name with spaces replaced by underscores.
func ImageName(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "_") + ".png"
}

// SafeImageName is the stricter name the backend stores images under. Only
// lower-case letters, digits and underscores survive; hyphens become
// underscores and quotes are dropped.
func SafeImageName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r == ' ', r == '-', r == '_':
			b.WriteRune('_')
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		}
	}
	return b.String() + ".png"
}
