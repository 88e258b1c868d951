package requirements

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/nonsonwune/admission_match/models"
)

// DefaultExtraMarkers identify extra assessments in the admission plan. They are
// held by the university itself rather than scored in exams.
var DefaultExtraMarkers = []string{"творческое", "профессиональное", "собеседование"}

// DefaultForeignLanguageKey is both the generic subject a candidate reports a
// foreign language score under and the substring that identifies a specific
// foreign language requirement such as "Иностранный язык (английский)".
const DefaultForeignLanguageKey = "Иностранный язык"

// MatchPolicy configures how requirements are evaluated
type MatchPolicy struct {
	ExtraMarkers       []string
	ForeignLanguageKey string
}

// DefaultPolicy returns the policy of the admission plan.
func DefaultPolicy() MatchPolicy {
	return MatchPolicy{
		ExtraMarkers:       append([]string(nil), DefaultExtraMarkers...),
		ForeignLanguageKey: DefaultForeignLanguageKey,
	}
}

// Matcher decides whether candidate scores satisfy qualification variants.
// It holds no mutable state and is safe for concurrent use.
type Matcher struct {
	extraMarkers []string
	foreignKey   string
}

// NewMatcher creates a Matcher for policy. An empty policy falls back to the
// defaults field by field.
func NewMatcher(policy MatchPolicy) *Matcher {
	markers := policy.ExtraMarkers
	if len(markers) == 0 {
		markers = DefaultExtraMarkers
	}
	folded := make([]string, 0, len(markers))
	for _, marker := range markers {
		marker = strings.TrimSpace(marker)
		if marker == "" {
			continue
		}
		folded = append(folded, cases.Fold().String(marker))
	}

	foreignKey := models.NormalizeSubject(policy.ForeignLanguageKey)
	if foreignKey == "" {
		foreignKey = DefaultForeignLanguageKey
	}

	return &Matcher{extraMarkers: folded, foreignKey: foreignKey}
}

// Outcome describes how a set of variants was evaluated
type Outcome struct {
	Matched bool
	// Variant is the index of the first satisfied variant, -1 if none was.
	Variant int
	// SkippedExtra counts variants passed over because they need an extra
	// assessment and those were not requested.
	SkippedExtra int
}

// IsExtra reports whether subject is an extra assessment (creative or
// professional test, interview). The comparison is case-insensitive.
func (m *Matcher) IsExtra(subject string) bool {
	folded := cases.Fold().String(subject)
	for _, marker := range m.extraMarkers {
		if strings.Contains(folded, marker) {
			return true
		}
	}
	return false
}

// Evaluate checks the variants in order and stops at the first one the
// candidate satisfies.
func (m *Matcher) Evaluate(candidate models.CandidateScores, variants []models.QualificationVariant, includeExtra bool) Outcome {
	outcome := Outcome{Variant: -1}
	for i, variant := range variants {
		required := make([]models.SubjectRequirement, 0, len(variant))
		hasExtra := false
		for _, req := range variant {
			if m.IsExtra(req.Subject) {
				hasExtra = true
				continue
			}
			required = append(required, req)
		}

		if hasExtra && !includeExtra {
			outcome.SkippedExtra++
			continue
		}

		met := 0
		for _, req := range required {
			if m.satisfies(candidate, req) {
				met++
			}
		}
		if met == len(required) {
			outcome.Matched = true
			outcome.Variant = i
			return outcome
		}
	}
	return outcome
}

// Matches reports whether the candidate satisfies at least one variant.
func (m *Matcher) Matches(candidate models.CandidateScores, variants []models.QualificationVariant, includeExtra bool) bool {
	return m.Evaluate(candidate, variants, includeExtra).Matched
}

func (m *Matcher) satisfies(candidate models.CandidateScores, req models.SubjectRequirement) bool {
	if score, ok := candidate.Score(req.Subject); ok && score >= req.MinScore {
		return true
	}
	if strings.Contains(req.Subject, m.foreignKey) {
		if score, ok := candidate.Score(m.foreignKey); ok && score >= req.MinScore {
			return true
		}
	}
	return false
}

var defaultMatcher = NewMatcher(DefaultPolicy())

// Matches evaluates variants with the default policy.
func Matches(candidate models.CandidateScores, variants []models.QualificationVariant, includeExtra bool) bool {
	return defaultMatcher.Matches(candidate, variants, includeExtra)
}
