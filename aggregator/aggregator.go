// Package aggregator evaluates a candidate against every programme of the
// admission plan and groups the programmes they can apply to by
// administrative unit.
package aggregator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/nonsonwune/admission_match/models"
	"github.com/nonsonwune/admission_match/requirements"
)

// Row outcomes
const (
	OutcomeMatched        = "matched"
	OutcomeNoRequirements = "no_requirements"
	OutcomeNoMatch        = "no_match"
	OutcomeNoSeats        = "no_seats"
)

// Recorder receives row outcomes and pass durations
type Recorder interface {
	RecordRow(outcome string)
	RecordEvaluation(seconds float64)
}

type nopRecorder struct{}

func (nopRecorder) RecordRow(string)         {}
func (nopRecorder) RecordEvaluation(float64) {}

// Stats counts the rows of one pass by outcome
type Stats struct {
	Rows     int
	Outcomes map[string]int
}

// Matched returns the number of programmes in the result.
func (s Stats) Matched() int {
	return s.Outcomes[OutcomeMatched]
}

// Options configures an Aggregator. Zero values fall back to defaults.
type Options struct {
	Parser      *requirements.Parser
	Matcher     *requirements.Matcher
	Formatter   *requirements.Formatter
	Logger      *zap.Logger
	Recorder    Recorder
	Workers     int
	DefaultUnit string
}

// Aggregator builds the grouped programme list for a match request
type Aggregator struct {
	parser      *requirements.Parser
	matcher     *requirements.Matcher
	formatter   *requirements.Formatter
	logger      *zap.Logger
	recorder    Recorder
	workers     int
	defaultUnit string
}

// New creates an Aggregator.
func New(opts Options) *Aggregator {
	a := &Aggregator{
		parser:      opts.Parser,
		matcher:     opts.Matcher,
		formatter:   opts.Formatter,
		logger:      opts.Logger,
		recorder:    opts.Recorder,
		workers:     opts.Workers,
		defaultUnit: strings.TrimSpace(opts.DefaultUnit),
	}
	if a.logger == nil {
		a.logger = zap.NewNop()
	}
	if a.parser == nil {
		a.parser = requirements.NewParser(a.logger, nil)
	}
	if a.matcher == nil {
		a.matcher = requirements.NewMatcher(requirements.DefaultPolicy())
	}
	if a.formatter == nil {
		a.formatter = requirements.NewFormatter(requirements.DefaultConjunction)
	}
	if a.recorder == nil {
		a.recorder = nopRecorder{}
	}
	if a.workers < 1 {
		a.workers = 1
	}
	if a.defaultUnit == "" {
		a.defaultUnit = models.DefaultUnit
	}
	return a
}

type rowResult struct {
	outcome string
	entry   models.ProgramEntry
}

// Evaluate decides a single row. The entry is only meaningful when the
// outcome is OutcomeMatched.
func (a *Aggregator) Evaluate(row models.ProgramRow, req models.MatchRequest) (models.ProgramEntry, string) {
	if strings.TrimSpace(row.ExamText) == "" {
		return models.ProgramEntry{}, OutcomeNoRequirements
	}

	variants := a.parser.Parse(row.ExamText, zap.Int("line", row.Line), zap.String("code", row.Code))
	if !a.matcher.Matches(req.Scores, variants, req.IncludeExtra) {
		return models.ProgramEntry{}, OutcomeNoMatch
	}

	var places models.EnrollmentFormAvailability
	for _, form := range req.Forms() {
		seats := row.SeatsFor(form)
		if seats.Total() > 0 {
			places = append(places, models.NewFormPlaces(form, seats))
		}
	}
	if len(places) == 0 {
		return models.ProgramEntry{}, OutcomeNoSeats
	}

	return models.ProgramEntry{
		Code:   row.Code,
		Name:   row.Name,
		Exams:  a.formatter.Format(row.ExamText),
		Places: places,
	}, OutcomeMatched
}

// Aggregate evaluates every row and returns the matched programmes grouped
// by administrative unit. Groups keep the order in which their unit first
// appears in rows, programmes keep row order, whatever the number of workers.
func (a *Aggregator) Aggregate(ctx context.Context, rows []models.ProgramRow, req models.MatchRequest) ([]models.AdministrativeGroup, Stats, error) {
	start := time.Now()
	results := make([]rowResult, len(rows))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)
	for i := range rows {
		if gctx.Err() != nil {
			break
		}
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			entry, outcome := a.Evaluate(rows[i], req)
			results[i] = rowResult{outcome: outcome, entry: entry}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, Stats{}, fmt.Errorf("evaluation canceled: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, Stats{}, fmt.Errorf("evaluation canceled: %w", err)
	}

	stats := Stats{Rows: len(rows), Outcomes: make(map[string]int, 4)}
	groups := make([]models.AdministrativeGroup, 0)
	index := make(map[string]int)

	for i, res := range results {
		stats.Outcomes[res.outcome]++
		a.recorder.RecordRow(res.outcome)
		if res.outcome != OutcomeMatched {
			continue
		}

		unit := strings.TrimSpace(rows[i].Unit)
		if unit == "" {
			unit = a.defaultUnit
		}
		pos, ok := index[unit]
		if !ok {
			pos = len(groups)
			index[unit] = pos
			groups = append(groups, models.AdministrativeGroup{Name: unit})
		}
		groups[pos].Programs = append(groups[pos].Programs, res.entry)
	}

	elapsed := time.Since(start)
	a.recorder.RecordEvaluation(elapsed.Seconds())
	a.logger.Info("evaluation complete",
		zap.Int("rows", stats.Rows),
		zap.Int("matched", stats.Outcomes[OutcomeMatched]),
		zap.Int("no_requirements", stats.Outcomes[OutcomeNoRequirements]),
		zap.Int("no_match", stats.Outcomes[OutcomeNoMatch]),
		zap.Int("no_seats", stats.Outcomes[OutcomeNoSeats]),
		zap.Int("groups", len(groups)),
		zap.Duration("duration", elapsed),
	)
	return groups, stats, nil
}

// BuildReport wraps groups with the echo of the request.
func BuildReport(req models.MatchRequest, groups []models.AdministrativeGroup) models.MatchReport {
	if groups == nil {
		groups = []models.AdministrativeGroup{}
	}
	scores := req.Scores
	if scores == nil {
		scores = models.CandidateScores{}
	}
	return models.MatchReport{
		Scores: scores,
		Forms: models.RequestedForms{
			FullTime:       req.FullTime,
			PartTime:       req.PartTime,
			Correspondence: req.Correspondence,
		},
		Results: groups,
	}
}
