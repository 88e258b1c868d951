package requirements

import (
	"regexp"
	"strings"
)

// DefaultConjunction joins alternatives in formatted exam lists.
const DefaultConjunction = "или"

var alternativePattern = regexp.MustCompile(`\s*/\s*`)

// Formatter renders requirement text for display, one clause per line with
// alternatives joined by a conjunction. It has no effect on matching.
type Formatter struct {
	separator string
}

// NewFormatter creates a Formatter; a blank conjunction uses DefaultConjunction.
func NewFormatter(conjunction string) *Formatter {
	conjunction = strings.TrimSpace(conjunction)
	if conjunction == "" {
		conjunction = DefaultConjunction
	}
	return &Formatter{separator: " " + conjunction + " "}
}

// Format turns "A - 40; B - 39 / C - 44" into "A - 40\nB - 39 или C - 44".
func (f *Formatter) Format(text string) string {
	clauses := strings.Split(text, clauseSeparator)
	for i, clause := range clauses {
		clauses[i] = alternativePattern.ReplaceAllLiteralString(strings.TrimSpace(clause), f.separator)
	}
	return strings.Join(clauses, "\n")
}

var defaultFormatter = NewFormatter(DefaultConjunction)

// Format renders text with the default conjunction.
func Format(text string) string {
	return defaultFormatter.Format(text)
}
