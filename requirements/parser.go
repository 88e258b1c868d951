package requirements

import (
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/nonsonwune/admission_match/models"
)

const (
	clauseSeparator      = ";"
	alternativeSeparator = "/"
)

// subjectPattern matches "name - digits" with an optional trailing non-digit
// (footnote markers and stray punctuation), which is discarded.
var subjectPattern = regexp.MustCompile(`(.+?)\s*-\s*(\d+)\s*\D?`)

// IssueReason classifies a piece of requirement text the parser had to drop
type IssueReason string

const (
	ReasonUnparsableAlternative IssueReason = "unparsable_alternative"
	ReasonUnparsableClause      IssueReason = "unparsable_clause"
	ReasonEmptyGroup            IssueReason = "empty_group"
	ReasonNoRequirements        IssueReason = "no_requirements"
)

// Issue records a dropped fragment of requirement text
type Issue struct {
	Clause string      `json:"clause"`
	Reason IssueReason `json:"reason"`
}

// Result is the outcome of parsing one requirement text
type Result struct {
	Variants []models.QualificationVariant
	Issues   []Issue
}

// ParseRequirements parses a requirement text into qualification variants.
//
// Malformed fragments never fail the parse: an alternative or mandatory clause
// without a recognisable "name - number" pair is dropped, and a group whose
// alternatives were all dropped vanishes from the product. Each drop is listed
// in Result.Issues. Blank text produces no variants. Non-blank text that yields
// no requirement at all produces a single empty variant, which any candidate
// meets.
func ParseRequirements(text string) Result {
	var result Result
	if strings.TrimSpace(text) == "" {
		return result
	}

	var mandatory models.QualificationVariant
	var groups [][]models.SubjectRequirement

	for _, clause := range strings.Split(text, clauseSeparator) {
		clause = strings.TrimSpace(clause)
		if clause == "" {
			continue
		}

		if !strings.Contains(clause, alternativeSeparator) {
			req, ok := parseSubject(clause)
			if !ok {
				result.Issues = append(result.Issues, Issue{Clause: clause, Reason: ReasonUnparsableClause})
				continue
			}
			mandatory = append(mandatory, req)
			continue
		}

		var group []models.SubjectRequirement
		for _, alternative := range strings.Split(clause, alternativeSeparator) {
			alternative = strings.TrimSpace(alternative)
			req, ok := parseSubject(alternative)
			if !ok {
				result.Issues = append(result.Issues, Issue{Clause: alternative, Reason: ReasonUnparsableAlternative})
				continue
			}
			group = append(group, req)
		}
		if len(group) == 0 {
			// TODO: decide with the admissions office whether a group with no
			// readable alternative should make the whole row unmatchable.
			result.Issues = append(result.Issues, Issue{Clause: clause, Reason: ReasonEmptyGroup})
			continue
		}
		groups = append(groups, group)
	}

	if len(groups) == 0 {
		if len(mandatory) == 0 {
			result.Issues = append(result.Issues, Issue{Clause: strings.TrimSpace(text), Reason: ReasonNoRequirements})
			mandatory = models.QualificationVariant{}
		}
		result.Variants = []models.QualificationVariant{mandatory}
		return result
	}

	for _, combo := range Product(groups) {
		variant := make(models.QualificationVariant, 0, len(mandatory)+len(combo))
		variant = append(variant, mandatory...)
		variant = append(variant, combo...)
		result.Variants = append(result.Variants, variant)
	}
	return result
}

func parseSubject(s string) (models.SubjectRequirement, bool) {
	m := subjectPattern.FindStringSubmatch(s)
	if m == nil {
		return models.SubjectRequirement{}, false
	}
	score, err := strconv.Atoi(m[2])
	if err != nil {
		return models.SubjectRequirement{}, false
	}
	name := models.NormalizeSubject(m[1])
	if name == "" {
		return models.SubjectRequirement{}, false
	}
	return models.SubjectRequirement{Subject: name, MinScore: score}, true
}

// IssueRecorder receives one call per dropped fragment
type IssueRecorder interface {
	RecordParseIssue(reason string)
}

type nopRecorder struct{}

func (nopRecorder) RecordParseIssue(string) {}

// Parser wraps ParseRequirements and reports every dropped fragment to a logger
// and a recorder, so data-quality regressions in the admission plan show up
// without breaking the evaluation pass.
type Parser struct {
	logger   *zap.Logger
	recorder IssueRecorder
}

// NewParser creates a Parser. Either argument may be nil.
func NewParser(logger *zap.Logger, recorder IssueRecorder) *Parser {
	if logger == nil {
		logger = zap.NewNop()
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Parser{logger: logger, recorder: recorder}
}

// Parse returns the qualification variants of text. Extra fields (row number,
// programme code) are attached to the diagnostics it logs.
func (p *Parser) Parse(text string, fields ...zap.Field) []models.QualificationVariant {
	result := ParseRequirements(text)
	for _, issue := range result.Issues {
		p.recorder.RecordParseIssue(string(issue.Reason))
		p.logger.Debug("dropped requirement fragment",
			append(fields,
				zap.String("fragment", issue.Clause),
				zap.String("reason", string(issue.Reason)),
			)...,
		)
	}
	return result.Variants
}
