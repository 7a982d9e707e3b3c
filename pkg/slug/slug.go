package slug

import (
	"regexp"
	"strings"
)

var (
	disallowed = regexp.MustCompile(`[^\w\s-]`)
	separators = regexp.MustCompile(`[\s_-]+`)
)

// Generate creates a URL-friendly slug from the given name. Characters other
// than ASCII letters, digits, whitespace, underscores and hyphens are dropped;
// runs of separators become a single hyphen.
//
// Examples:
//   - "Hello World" → "hello-world"
//   - "Product with Special !@# Characters" → "product-with-special-characters"
//   - "Multiple   Spaces   Between" → "multiple-spaces-between"
func Generate(name string) string {
	s := strings.ToLower(name)
	s = disallowed.ReplaceAllString(s, "")
	s = separators.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
