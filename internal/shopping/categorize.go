// Package shopping assigns categories to shopping-list items so the
// family list stays grouped without anyone tagging entries by hand.
package shopping

import "strings"

// Categorize returns the category for an item name. Matching is
// case-insensitive: exact name first, then substring. Unknown items
// land in "Other".
func Categorize(name string) string {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return "Other"
	}

	if cat, ok := exactMatch[key]; ok {
		return cat
	}

	// Substring entries are ordered most-specific first.
	for _, entry := range substringMatches {
		if strings.Contains(key, entry.keyword) {
			return entry.category
		}
	}

	return "Other"
}

var exactMatch = map[string]string{
	// Groceries
	"apples":       "Groceries",
	"bananas":      "Groceries",
	"oranges":      "Groceries",
	"grapes":       "Groceries",
	"strawberries": "Groceries",
	"tomatoes":     "Groceries",
	"potatoes":     "Groceries",
	"onions":       "Groceries",
	"lettuce":      "Groceries",
	"carrots":      "Groceries",
	"milk":         "Groceries",
	"eggs":         "Groceries",
	"butter":       "Groceries",
	"cheese":       "Groceries",
	"yogurt":       "Groceries",
	"bread":        "Groceries",
	"rice":         "Groceries",
	"pasta":        "Groceries",
	"cereal":       "Groceries",
	"flour":        "Groceries",
	"sugar":        "Groceries",
	"coffee":       "Groceries",
	"tea":          "Groceries",
	"chicken":      "Groceries",
	"beef":         "Groceries",
	"fish":         "Groceries",

	// Household
	"paper towels":      "Household",
	"toilet paper":      "Household",
	"dish soap":         "Household",
	"laundry detergent": "Household",
	"trash bags":        "Household",
	"sponges":           "Household",
	"light bulbs":       "Household",
	"batteries":         "Household",

	// Personal care
	"toothpaste":  "Personal Care",
	"shampoo":     "Personal Care",
	"conditioner": "Personal Care",
	"deodorant":   "Personal Care",
	"sunscreen":   "Personal Care",
	"band-aids":   "Personal Care",

	// School
	"notebooks":       "School",
	"pencils":         "School",
	"markers":         "School",
	"glue sticks":     "School",
	"backpack":        "School",
	"lunch box":       "School",
	"crayons":         "School",
	"index cards":     "School",
	"binder":          "School",
	"highlighters":    "School",
	"erasers":         "School",
	"pencil case":     "School",
	"ruler":           "School",
	"calculator":      "School",
	"poster board":    "School",
	"colored pencils": "School",
}

var substringMatches = []struct {
	keyword  string
	category string
}{
	{"detergent", "Household"},
	{"cleaner", "Household"},
	{"soap", "Personal Care"},
	{"toothbrush", "Personal Care"},
	{"shampoo", "Personal Care"},
	{"vitamin", "Personal Care"},
	{"diaper", "Baby"},
	{"wipes", "Baby"},
	{"formula", "Baby"},
	{"dog", "Pets"},
	{"cat", "Pets"},
	{"pet", "Pets"},
	{"notebook", "School"},
	{"pencil", "School"},
	{"folder", "School"},
	{"juice", "Groceries"},
	{"milk", "Groceries"},
	{"cheese", "Groceries"},
	{"bread", "Groceries"},
	{"frozen", "Groceries"},
	{"snack", "Groceries"},
	{"chips", "Groceries"},
	{"sauce", "Groceries"},
	{"cereal", "Groceries"},
	{"yogurt", "Groceries"},
	{"chocolate", "Groceries"},
	{"candy", "Groceries"},
	{"water", "Groceries"},
	{"soda", "Groceries"},
	{"paper", "Household"},
	{"towel", "Household"},
	{"battery", "Household"},
	{"batteries", "Household"},
	{"bulb", "Household"},
	{"toy", "Kids"},
	{"game", "Kids"},
	{"lego", "Kids"},
	{"shoes", "Clothing"},
	{"socks", "Clothing"},
	{"shirt", "Clothing"},
	{"jacket", "Clothing"},
	{"pants", "Clothing"},
}
