package knowledge

import "strings"

// Classifier maps a line item description to a category name. The builder
// accepts any classifier so the taxonomy can be swapped without touching
// graph construction.
type Classifier func(description string) string

// CategoryOther is assigned when no keyword set matches.
const CategoryOther = "Other"

// categoryKeywords is scanned in order; the first category with a matching
// keyword wins.
var categoryKeywords = []struct {
	category string
	keywords []string
}{
	{"IT Equipment", []string{"laptop", "computer", "monitor", "keyboard", "mouse", "software"}},
	{"Office Supplies", []string{"paper", "pen", "pencil", "sticky", "folder", "binder"}},
	{"Manufacturing", []string{"printer", "cnc", "industrial", "equipment", "machine"}},
	{"Services", []string{"consulting", "training", "service", "support", "maintenance"}},
}

// DefaultClassifier infers a category by case-insensitive keyword-substring
// matching against four fixed keyword sets.
func DefaultClassifier(description string) string {
	desc := strings.ToLower(description)
	for _, set := range categoryKeywords {
		for _, keyword := range set.keywords {
			if strings.Contains(desc, keyword) {
				return set.category
			}
		}
	}
	return CategoryOther
}
