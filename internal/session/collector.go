package session

import (
	"slices"
	"strings"
)

// MinIngredients is how many ingredients recipe generation needs.
const MinIngredients = 2

// Collector is an ordered list of unique, trimmed, non-empty ingredients.
// It is not safe for concurrent use; Session guards it.
type Collector struct {
	items []string
}

// Add trims text and appends it unless it is empty or already present.
// Matching is case-sensitive. It reports whether the list changed.
func (c *Collector) Add(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" || slices.Contains(c.items, text) {
		return false
	}
	c.items = append(c.items, text)
	return true
}

// Remove deletes the entry at index. Out-of-range indexes are ignored.
func (c *Collector) Remove(index int) bool {
	if index < 0 || index >= len(c.items) {
		return false
	}
	c.items = slices.Delete(c.items, index, index+1)
	return true
}

// Len returns the number of ingredients.
func (c *Collector) Len() int { return len(c.items) }

// Items returns a copy of the ingredients in insertion order.
func (c *Collector) Items() []string {
	return slices.Clone(c.items)
}

// CanGenerate reports whether there are enough ingredients to ask for
// recipes.
func (c *Collector) CanGenerate() bool {
	return len(c.items) >= MinIngredients
}
