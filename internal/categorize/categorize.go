// Package categorize assigns a topic category to a story title.
package categorize

import "strings"

// DefaultCategory is returned when no rule matches.
const DefaultCategory = "technology"

// rule maps a set of title keywords to a category. Rules are evaluated in
// declaration order and the first match wins, so a title containing keywords
// from several rules resolves to the earliest one.
type rule struct {
	category string
	keywords []string
}

var rules = []rule{
	{"ai", []string{"ai", "machine learning", "gpt"}},
	{"frontend", []string{"react", "vue", "frontend"}},
	{"backend", []string{"backend", "api", "server"}},
	{"security", []string{"security", "vulnerability", "hack"}},
	{"blockchain", []string{"blockchain", "crypto", "bitcoin"}},
	{"startups", []string{"startup", "funding", "vc"}},
	{"programming", []string{"programming", "code", "developer"}},
	{"databases", []string{"database", "sql", "nosql"}},
	{"cloud", []string{"cloud", "aws", "azure"}},
	{"mobile", []string{"mobile", "ios", "android"}},
}

// Title returns the category for a story title. It is total: every title,
// including the empty one, resolves to a non-empty category.
func Title(title string) string {
	lower := strings.ToLower(title)
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(lower, kw) {
				return r.category
			}
		}
	}
	return DefaultCategory
}

// Categories returns the closed set of known categories, in rule order, with
// the default category last.
func Categories() []string {
	out := make([]string, 0, len(rules)+1)
	for _, r := range rules {
		out = append(out, r.category)
	}
	return append(out, DefaultCategory)
}
