package importer

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/nonsonwune/admission_match/models"
)

// shortColumns keeps test fixtures readable
var shortColumns = Columns{
	Unit:                 "Unit",
	Code:                 "Code",
	Name:                 "Program",
	Exams:                "Exams",
	FullTimeBudget:       "FT budget",
	FullTimePaid:         "FT paid",
	PartTimeBudget:       "PT budget",
	PartTimePaid:         "PT paid",
	CorrespondenceBudget: "C budget",
	CorrespondencePaid:   "C paid",
}

type countingRecorder struct {
	reasons map[string]int
}

func (r *countingRecorder) RecordImportRejected(reason string) {
	if r.reasons == nil {
		r.reasons = make(map[string]int)
	}
	r.reasons[reason]++
}

func TestParseInt(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"25", 25},
		{"  25", 25},
		{"12.0", 12},
		{"15 мест", 15},
		{"-3", -3},
		{"+7", 7},
		{"—", 0},
		{"abc12", 0},
		{"-", 0},
		{"99999999999999999999", math.MaxInt},
		{"-99999999999999999999 мест", math.MinInt},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseInt(tt.in))
		})
	}
}

func TestLevenshteinDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"kitten", "sitting", 3},
		{"очной", "очная", 2},
		{"УчП", "УчП", 0},
	}

	for _, tt := range tests {
		t.Run(tt.a+"/"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, levenshteinDistance(tt.a, tt.b))
		})
	}
}

func TestGetColumnIndex(t *testing.T) {
	headers := []string{"Код НПС", "exam_text", " УчП "}

	assert.Equal(t, 0, getColumnIndex(headers, "Код НПС"))
	assert.Equal(t, 1, getColumnIndex(headers, "Exam Text"))
	assert.Equal(t, 2, getColumnIndex(headers, "учп"))
	assert.Equal(t, -1, getColumnIndex(headers, "Наименование"))
}

func TestFindBestColumnMatch(t *testing.T) {
	headers := []string{"Код НПС", "Наименование образовательной программ", "Наименование"}

	matches := findBestColumnMatch("Наименование образовательной программы", headers)
	require.NotEmpty(t, matches)
	assert.Equal(t, "Наименование образовательной программ", matches[0].SourceColumn)
	assert.Greater(t, matches[0].Confidence, AutoAcceptConfidence)

	assert.Empty(t, findBestColumnMatch("УчП", headers))
}

func TestFuzzyMatchSkipsClaimedHeaders(t *testing.T) {
	// "PT budget" is one letter away from "FT budget", which is already taken
	input := "Exams;FT budget\nМатематика - 40;9\n"

	imp := NewImporter(ImportConfig{Columns: shortColumns}, nil, nil)
	rows, stats, err := imp.Import(context.Background(), strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, "FT budget", stats.ResolvedColumns[FieldFullTimeBudget])
	assert.NotContains(t, stats.ResolvedColumns, FieldPartTimeBudget)
	assert.Contains(t, stats.MissingColumns, FieldPartTimeBudget)
	assert.Equal(t, 0, rows[0].SeatsFor(models.PartTime).Budget)
}

func TestFuzzyMatchedColumn(t *testing.T) {
	input := "Exam text;FT budget\nМатематика - 40;9\n"

	cols := shortColumns
	cols.Exams = "Exam texts"
	imp := NewImporter(ImportConfig{Columns: cols}, nil, nil)
	rows, stats, err := imp.Import(context.Background(), strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, "Exam text", stats.ResolvedColumns[FieldExams])
	require.Len(t, stats.FuzzyMatches, 1)
	assert.Equal(t, "Математика - 40", rows[0].ExamText)
}

func TestImport(t *testing.T) {
	input := strings.Join([]string{
		"Unit;Code;Program;Exams;FT budget;FT paid;PT budget;PT paid;C budget;C paid",
		`Институт ИТ;09.03.01;Информатика;"Математика - 40; Информатика - 44";25;10;;;0;5`,
		";38.03.01;Экономика;Математика - 39;0;12;3;3;;",
		";;;;;;;;;",
	}, "\n")

	recorder := &countingRecorder{}
	imp := NewImporter(ImportConfig{Columns: shortColumns}, zaptest.NewLogger(t), recorder)

	rows, stats, err := imp.Import(context.Background(), strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	first := rows[0]
	assert.Equal(t, 2, first.Line)
	assert.Equal(t, "Институт ИТ", first.Unit)
	assert.Equal(t, "09.03.01", first.Code)
	assert.Equal(t, "Информатика", first.Name)
	assert.Equal(t, "Математика - 40; Информатика - 44", first.ExamText)
	assert.Equal(t, models.SeatCounts{Budget: 25, Paid: 10}, first.SeatsFor(models.FullTime))
	assert.Equal(t, models.SeatCounts{}, first.SeatsFor(models.PartTime))
	assert.Equal(t, models.SeatCounts{Budget: 0, Paid: 5}, first.SeatsFor(models.Correspondence))

	second := rows[1]
	assert.Equal(t, models.DefaultUnit, second.Unit)
	assert.Equal(t, models.SeatCounts{Budget: 3, Paid: 3}, second.SeatsFor(models.PartTime))

	assert.Equal(t, 3, stats.TotalProcessed)
	assert.Equal(t, 2, stats.ValidRecords)
	assert.Equal(t, 1, stats.SkippedRecords)
	assert.Equal(t, 1, stats.ErrorsByType[RejectBlankRecord])
	assert.Equal(t, 1, recorder.reasons[RejectBlankRecord])
}

func TestImportCommaDelimitedWithBOM(t *testing.T) {
	input := "\xEF\xBB\xBFCode,Exams,FT budget\n" +
		"01.03.02,\"Математика - 40; Физика / Информатика - 45\",7\n"

	imp := NewImporter(ImportConfig{Columns: shortColumns}, nil, nil)
	rows, stats, err := imp.Import(context.Background(), strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, "01.03.02", rows[0].Code)
	assert.Equal(t, "Математика - 40; Физика / Информатика - 45", rows[0].ExamText)
	assert.Equal(t, 7, rows[0].SeatsFor(models.FullTime).Budget)
	assert.Equal(t, models.DefaultUnit, rows[0].Unit)
	assert.ElementsMatch(t, []string{
		FieldUnit, FieldName, FieldFullTimePaid,
		FieldPartTimeBudget, FieldPartTimePaid,
		FieldCorrespondenceBudget, FieldCorrespondencePaid,
	}, stats.MissingColumns)
}

func TestImportCustomDefaultUnit(t *testing.T) {
	input := "Exams\nМатематика - 40\n"

	imp := NewImporter(ImportConfig{Columns: shortColumns, DefaultUnit: "Other"}, nil, nil)
	rows, _, err := imp.Import(context.Background(), strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Other", rows[0].Unit)
}

func TestImportShortRecord(t *testing.T) {
	input := "Code;Exams;FT budget;FT paid\n09.03.01;Математика - 40\n"

	imp := NewImporter(ImportConfig{Columns: shortColumns}, nil, nil)
	rows, _, err := imp.Import(context.Background(), strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, models.SeatCounts{}, rows[0].SeatsFor(models.FullTime))
}

func TestImportOutOfRangeSeatCount(t *testing.T) {
	input := "Code;Exams;FT budget;FT paid\n09.03.01;Математика - 40;99999999999999999999;1\n"

	imp := NewImporter(ImportConfig{Columns: shortColumns}, nil, nil)
	rows, _, err := imp.Import(context.Background(), strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 1)

	seats := rows[0].SeatsFor(models.FullTime)
	assert.Equal(t, models.SeatCounts{Budget: math.MaxInt, Paid: 1}, seats)
	assert.Equal(t, math.MaxInt, seats.Total())
}

func TestImportMissingExamColumn(t *testing.T) {
	input := "Code;Program\n09.03.01;Информатика\n"

	imp := NewImporter(ImportConfig{Columns: shortColumns}, nil, nil)
	_, _, err := imp.Import(context.Background(), strings.NewReader(input))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingColumn))

	var importErr *ImportError
	require.True(t, errors.As(err, &importErr))
	assert.Equal(t, "MISSING_COLUMN", importErr.Code)
	assert.Equal(t, FieldExams, importErr.Context["field"])
}

func TestImportEmptyInput(t *testing.T) {
	imp := NewImporter(ImportConfig{Columns: shortColumns}, nil, nil)

	for _, input := range []string{"", "   \n", "\xEF\xBB\xBF"} {
		_, _, err := imp.Import(context.Background(), strings.NewReader(input))
		assert.ErrorIs(t, err, ErrEmptyInput)
	}
}

func TestImportCancelled(t *testing.T) {
	input := "Exams\nМатематика - 40\nФизика - 39\n"

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	imp := NewImporter(ImportConfig{Columns: shortColumns}, nil, nil)
	_, _, err := imp.Import(ctx, strings.NewReader(input))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestImportFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.csv")
	require.NoError(t, os.WriteFile(path, []byte("Exams;FT budget\nМатематика - 40;2\n"), 0o644))

	imp := NewImporter(ImportConfig{Columns: shortColumns}, nil, nil)
	rows, _, err := imp.ImportFile(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 2, rows[0].SeatsFor(models.FullTime).Budget)

	_, _, err = imp.ImportFile(context.Background(), filepath.Join(t.TempDir(), "missing.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDefaultColumnsResolveAgainstOriginalHeaders(t *testing.T) {
	cols := DefaultColumns()
	headers := []string{
		cols.Unit, cols.Code, cols.Name, cols.Exams,
		cols.FullTimeBudget, cols.FullTimePaid,
		cols.PartTimeBudget, cols.PartTimePaid,
		cols.CorrespondenceBudget, cols.CorrespondencePaid,
	}
	records := []map[string]string{{
		cols.Unit:           "ИФМИТ",
		cols.Exams:          "Математика - 40",
		cols.PartTimeBudget: "4",
	}}

	imp := NewImporter(ImportConfig{Columns: cols}, nil, nil)
	rows, stats, err := imp.Convert(context.Background(), headers, records)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Empty(t, stats.MissingColumns)
	assert.Empty(t, stats.FuzzyMatches)
	assert.Equal(t, 4, rows[0].SeatsFor(models.PartTime).Budget)
	assert.Equal(t, 0, rows[0].SeatsFor(models.FullTime).Budget)
}
