package importer

import (
	"sort"
	"strings"

	"github.com/nonsonwune/admission_match/models"
)

const (
	// MinMatchConfidence is the lowest similarity considered a candidate header
	MinMatchConfidence = 0.6
	// AutoAcceptConfidence is the similarity above which a fuzzy match is used
	AutoAcceptConfidence = 0.8
)

// Logical fields of an admission plan row
const (
	FieldUnit                 = "unit"
	FieldCode                 = "code"
	FieldName                 = "name"
	FieldExams                = "exams"
	FieldFullTimeBudget       = "full_time_budget"
	FieldFullTimePaid         = "full_time_paid"
	FieldPartTimeBudget       = "part_time_budget"
	FieldPartTimePaid         = "part_time_paid"
	FieldCorrespondenceBudget = "correspondence_budget"
	FieldCorrespondencePaid   = "correspondence_paid"
)

// Columns holds the source header of every logical field
type Columns struct {
	Unit                 string `mapstructure:"unit"`
	Code                 string `mapstructure:"code"`
	Name                 string `mapstructure:"name"`
	Exams                string `mapstructure:"exams"`
	FullTimeBudget       string `mapstructure:"full_time_budget"`
	FullTimePaid         string `mapstructure:"full_time_paid"`
	PartTimeBudget       string `mapstructure:"part_time_budget"`
	PartTimePaid         string `mapstructure:"part_time_paid"`
	CorrespondenceBudget string `mapstructure:"correspondence_budget"`
	CorrespondencePaid   string `mapstructure:"correspondence_paid"`
}

// DefaultColumns returns the headers of the university's admission plan export.
func DefaultColumns() Columns {
	return Columns{
		Unit:                 "УчП",
		Code:                 "Код НПС",
		Name:                 "Наименование образовательной программы",
		Exams:                "Перечень вступительных испытаний для поступающих на базе СОО и минимальное количество баллов",
		FullTimeBudget:       "Количество мест для приема на обучение по очной форме в рамках КЦП (бюджетные места)",
		FullTimePaid:         "Количество мест для приема на обучение по очной форме по ДОПОУ (платный прием)",
		PartTimeBudget:       "Количество мест для приема на обучение по очно-заочной форме в рамках КЦП (бюджетные места)",
		PartTimePaid:         "Количество мест для приема на обучение по очно-заочной форме по ДОПОУ (платный прием)",
		CorrespondenceBudget: "Количество мест для приема на обучение по заочной форме в рамках КЦП (бюджетные места)",
		CorrespondencePaid:   "Количество мест для приема на обучение по заочной форме по ДОПОУ (платный прием)",
	}
}

// ColumnMapping defines how a logical field maps to a source column
type ColumnMapping struct {
	Field        string
	SourceColumn string
	Required     bool
}

// Mappings lists the field mappings, exam text first.
func (c Columns) Mappings() []ColumnMapping {
	return []ColumnMapping{
		{Field: FieldExams, SourceColumn: c.Exams, Required: true},
		{Field: FieldUnit, SourceColumn: c.Unit},
		{Field: FieldCode, SourceColumn: c.Code},
		{Field: FieldName, SourceColumn: c.Name},
		{Field: FieldFullTimeBudget, SourceColumn: c.FullTimeBudget},
		{Field: FieldFullTimePaid, SourceColumn: c.FullTimePaid},
		{Field: FieldPartTimeBudget, SourceColumn: c.PartTimeBudget},
		{Field: FieldPartTimePaid, SourceColumn: c.PartTimePaid},
		{Field: FieldCorrespondenceBudget, SourceColumn: c.CorrespondenceBudget},
		{Field: FieldCorrespondencePaid, SourceColumn: c.CorrespondencePaid},
	}
}

// seatFields pairs each enrollment form with its budget and paid fields
var seatFields = []struct {
	form   models.EnrollmentForm
	budget string
	paid   string
}{
	{models.FullTime, FieldFullTimeBudget, FieldFullTimePaid},
	{models.PartTime, FieldPartTimeBudget, FieldPartTimePaid},
	{models.Correspondence, FieldCorrespondenceBudget, FieldCorrespondencePaid},
}

// ColumnMatch is a candidate header for a configured column
type ColumnMatch struct {
	SourceColumn      string
	DestinationColumn string
	Confidence        float64
}

// normalizeHeader folds case and drops spaces and underscores
func normalizeHeader(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "_", "")
	return strings.Join(strings.Fields(s), "")
}

// getColumnIndex returns the index of a column in headers, ignoring case,
// whitespace and underscores
func getColumnIndex(headers []string, columnName string) int {
	want := normalizeHeader(columnName)
	for i, header := range headers {
		if header == columnName {
			return i
		}
		if normalizeHeader(header) == want {
			return i
		}
	}
	return -1
}

// findBestColumnMatch ranks headers by similarity to the wanted column
func findBestColumnMatch(wanted string, headers []string) []ColumnMatch {
	matches := make([]ColumnMatch, 0)
	normalizedWanted := normalizeHeader(wanted)

	for _, header := range headers {
		normalizedHeader := normalizeHeader(header)
		maxLen := max(len([]rune(normalizedWanted)), len([]rune(normalizedHeader)))
		if maxLen == 0 {
			continue
		}
		distance := levenshteinDistance(normalizedWanted, normalizedHeader)
		confidence := 1.0 - float64(distance)/float64(maxLen)

		if confidence > MinMatchConfidence {
			matches = append(matches, ColumnMatch{
				SourceColumn:      header,
				DestinationColumn: wanted,
				Confidence:        confidence,
			})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Confidence > matches[j].Confidence
	})
	return matches
}

// levenshteinDistance is the edit distance between s1 and s2, counted in runes
// so Cyrillic headers compare by letter.
func levenshteinDistance(s1, s2 string) int {
	r1, r2 := []rune(s1), []rune(s2)
	if len(r1) == 0 {
		return len(r2)
	}
	if len(r2) == 0 {
		return len(r1)
	}

	prev := make([]int, len(r2)+1)
	curr := make([]int, len(r2)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(r1); i++ {
		curr[0] = i
		for j := 1; j <= len(r2); j++ {
			if r1[i-1] == r2[j-1] {
				curr[j] = prev[j-1]
			} else {
				curr[j] = min(
					prev[j]+1,   // deletion
					curr[j-1]+1, // insertion
					prev[j-1]+1, // substitution
				)
			}
		}
		prev, curr = curr, prev
	}

	return prev[len(r2)]
}
