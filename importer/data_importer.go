package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"

	"go.uber.org/zap"

	"github.com/nonsonwune/admission_match/models"
)

var (
	ErrMissingColumn = errors.New("missing required column")
	ErrEmptyInput    = errors.New("empty input")
)

// Rejection reasons
const (
	RejectBlankRecord = "blank_record"
)

// ImportConfig holds the configuration for data import
type ImportConfig struct {
	Columns     Columns
	DefaultUnit string
}

// ImportError describes a problem with the structure of the input file
type ImportError struct {
	Code      string
	Message   string
	Timestamp time.Time
	Context   map[string]string
	Err       error
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *ImportError) Unwrap() error {
	return e.Err
}

// ImportStats summarises one import
type ImportStats struct {
	TotalProcessed int
	ValidRecords   int
	SkippedRecords int
	ErrorsByType   map[string]int
	// ResolvedColumns maps each logical field to the header it was read from
	ResolvedColumns map[string]string
	MissingColumns  []string
	FuzzyMatches    []ColumnMatch
}

func NewImportStats() *ImportStats {
	return &ImportStats{
		ErrorsByType:    make(map[string]int),
		ResolvedColumns: make(map[string]string),
	}
}

func (s *ImportStats) AddError(errType string) {
	s.ErrorsByType[errType]++
	s.SkippedRecords++
}

// RejectRecorder receives one call per rejected record
type RejectRecorder interface {
	RecordImportRejected(reason string)
}

type nopRecorder struct{}

func (nopRecorder) RecordImportRejected(string) {}

// Importer converts admission plan exports into program rows
type Importer struct {
	config   ImportConfig
	logger   *zap.Logger
	recorder RejectRecorder
}

// NewImporter creates an Importer. A blank default unit becomes models.DefaultUnit;
// logger and recorder may be nil.
func NewImporter(config ImportConfig, logger *zap.Logger, recorder RejectRecorder) *Importer {
	if strings.TrimSpace(config.DefaultUnit) == "" {
		config.DefaultUnit = models.DefaultUnit
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Importer{config: config, logger: logger, recorder: recorder}
}

// ImportFile reads the admission plan from a CSV file.
func (im *Importer) ImportFile(ctx context.Context, path string) ([]models.ProgramRow, *ImportStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("error opening admission plan: %w", err)
	}
	defer f.Close()

	rows, stats, err := im.Import(ctx, f)
	if err != nil {
		return nil, stats, fmt.Errorf("error importing %s: %w", filepath.Base(path), err)
	}
	return rows, stats, nil
}

// Import reads a CSV export and converts its records into program rows.
func (im *Importer) Import(ctx context.Context, r io.Reader) ([]models.ProgramRow, *ImportStats, error) {
	table, err := ReadTable(ctx, r)
	if err != nil {
		return nil, nil, err
	}
	return im.Convert(ctx, table.Headers, table.Records)
}

// Convert resolves the configured columns against headers and turns each
// record into a ProgramRow. Line numbers count the header as line 1.
func (im *Importer) Convert(ctx context.Context, headers []string, records []map[string]string) ([]models.ProgramRow, *ImportStats, error) {
	stats := NewImportStats()
	if err := im.validateHeaders(headers, stats); err != nil {
		return nil, stats, err
	}

	rows := make([]models.ProgramRow, 0, len(records))
	for i, record := range records {
		if err := ctx.Err(); err != nil {
			return nil, stats, err
		}
		stats.TotalProcessed++

		row, ok := im.processRecord(record, stats.ResolvedColumns, i+2)
		if !ok {
			stats.AddError(RejectBlankRecord)
			im.recorder.RecordImportRejected(RejectBlankRecord)
			continue
		}
		rows = append(rows, row)
		stats.ValidRecords++
	}

	im.printImportSummary(stats)
	return rows, stats, nil
}

// validateHeaders maps every configured column onto a header. Exact matches
// are taken first; fuzzy matching then only considers headers no other column
// claimed, so similar seat headers never share a source. Only the exam text
// column is required; missing optional columns read as blank.
func (im *Importer) validateHeaders(headers []string, stats *ImportStats) error {
	claimed := make(map[string]bool, len(headers))
	pending := make([]ColumnMapping, 0)

	for _, mapping := range im.config.Columns.Mappings() {
		if strings.TrimSpace(mapping.SourceColumn) != "" {
			if idx := getColumnIndex(headers, mapping.SourceColumn); idx != -1 && !claimed[headers[idx]] {
				stats.ResolvedColumns[mapping.Field] = headers[idx]
				claimed[headers[idx]] = true
				continue
			}
		}
		pending = append(pending, mapping)
	}

	for _, mapping := range pending {
		if strings.TrimSpace(mapping.SourceColumn) != "" {
			free := make([]string, 0, len(headers))
			for _, header := range headers {
				if !claimed[header] {
					free = append(free, header)
				}
			}

			matches := findBestColumnMatch(mapping.SourceColumn, free)
			if len(matches) > 0 && matches[0].Confidence > AutoAcceptConfidence {
				match := matches[0]
				stats.ResolvedColumns[mapping.Field] = match.SourceColumn
				stats.FuzzyMatches = append(stats.FuzzyMatches, match)
				claimed[match.SourceColumn] = true
				im.logger.Info("automatically mapped column",
					zap.String("column", mapping.SourceColumn),
					zap.String("header", match.SourceColumn),
					zap.Float64("confidence", match.Confidence),
				)
				continue
			}
		}

		if mapping.Required {
			return im.missingColumn(mapping, headers)
		}
		stats.MissingColumns = append(stats.MissingColumns, mapping.Field)
		im.logger.Warn("column not found, values will be blank",
			zap.String("field", mapping.Field),
			zap.String("column", mapping.SourceColumn),
		)
	}
	return nil
}

func (im *Importer) missingColumn(mapping ColumnMapping, headers []string) error {
	return &ImportError{
		Code:      "MISSING_COLUMN",
		Message:   fmt.Sprintf("required column %q not found", mapping.SourceColumn),
		Timestamp: time.Now(),
		Context: map[string]string{
			"field":   mapping.Field,
			"headers": strings.Join(headers, " | "),
		},
		Err: ErrMissingColumn,
	}
}

// processRecord converts one record. It reports false for a record with no
// content at all.
func (im *Importer) processRecord(record map[string]string, columns map[string]string, line int) (models.ProgramRow, bool) {
	blank := true
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			blank = false
			break
		}
	}
	if blank {
		return models.ProgramRow{}, false
	}

	get := func(field string) string {
		header, ok := columns[field]
		if !ok {
			return ""
		}
		return strings.TrimSpace(record[header])
	}

	row := models.ProgramRow{
		Line:     line,
		Unit:     get(FieldUnit),
		Code:     get(FieldCode),
		Name:     get(FieldName),
		ExamText: get(FieldExams),
		Seats:    make(map[models.EnrollmentForm]models.SeatCounts, len(seatFields)),
	}
	if row.Unit == "" {
		row.Unit = im.config.DefaultUnit
	}
	for _, sf := range seatFields {
		row.Seats[sf.form] = models.SeatCounts{
			Budget: ParseInt(get(sf.budget)),
			Paid:   ParseInt(get(sf.paid)),
		}
	}
	return row, true
}

// ParseInt reads the leading integer of s the way spreadsheet exports are
// usually coerced: surrounding whitespace and an optional sign are accepted,
// anything after the digits is ignored, and a value without digits is 0.
// "12.0" is 12, "15 мест" is 15, "" and "—" are 0.
func ParseInt(s string) int {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		// out of range, saturate
		if s[0] == '-' {
			return math.MinInt
		}
		return math.MaxInt
	}
	return n
}

func (im *Importer) printImportSummary(stats *ImportStats) {
	im.logger.Info("import summary",
		zap.Int("total_records", stats.TotalProcessed),
		zap.Int("imported", stats.ValidRecords),
		zap.Int("skipped", stats.SkippedRecords),
		zap.Strings("missing_columns", stats.MissingColumns),
		zap.Int("fuzzy_matches", len(stats.FuzzyMatches)),
	)

	if len(stats.ErrorsByType) > 0 {
		types := make([]string, 0, len(stats.ErrorsByType))
		for errType := range stats.ErrorsByType {
			types = append(types, errType)
		}
		sort.Strings(types)
		for _, errType := range types {
			im.logger.Info("skipped records",
				zap.String("reason", errType),
				zap.Int("count", stats.ErrorsByType[errType]),
			)
		}
	}
}
