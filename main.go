package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/nonsonwune/admission_match/aggregator"
	"github.com/nonsonwune/admission_match/config"
	"github.com/nonsonwune/admission_match/importer"
	"github.com/nonsonwune/admission_match/logger"
	"github.com/nonsonwune/admission_match/metrics"
	"github.com/nonsonwune/admission_match/models"
	"github.com/nonsonwune/admission_match/requirements"
)

const defaultExportFile = "admission_report.json"

type app struct {
	cfg         *config.Config
	log         *zap.Logger
	rows        []models.ProgramRow
	importStats *importer.ImportStats
	aggregator  *aggregator.Aggregator
	matcher     *requirements.Matcher
	in          *bufio.Scanner
	out         io.Writer

	request    models.MatchRequest
	lastReport *models.MatchReport
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		color.Red("Configuration error: %v", err)
		os.Exit(1)
	}

	zl, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		color.Red("Error creating logger: %v", err)
		os.Exit(1)
	}
	zl = logger.WithRun(zl, uuid.NewString())

	ctx := context.Background()
	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	imp := importer.NewImporter(importer.ImportConfig{
		Columns:     cfg.Columns,
		DefaultUnit: cfg.DefaultUnit,
	}, zl, m)
	rows, stats, err := imp.ImportFile(ctx, cfg.DataFile)
	if err != nil {
		zl.Error("failed to load admission plan", zap.String("file", cfg.DataFile), zap.Error(err))
		_ = zl.Sync()
		color.Red("Error loading admission plan: %v", err)
		os.Exit(1)
	}

	matcher := requirements.NewMatcher(cfg.MatchPolicy())
	a := &app{
		cfg:         cfg,
		log:         zl,
		rows:        rows,
		importStats: stats,
		matcher:     matcher,
		aggregator: aggregator.New(aggregator.Options{
			Parser:      requirements.NewParser(zl, m),
			Matcher:     matcher,
			Formatter:   requirements.NewFormatter(cfg.ExamConjunction),
			Logger:      zl,
			Recorder:    m,
			Workers:     cfg.Workers,
			DefaultUnit: cfg.DefaultUnit,
		}),
		in:      bufio.NewScanner(os.Stdin),
		out:     os.Stdout,
		request: models.MatchRequest{FullTime: true},
	}

	a.run(ctx)

	if cfg.MetricsTextfile != "" {
		if err := m.WriteTextfile(cfg.MetricsTextfile); err != nil {
			zl.Error("failed to write metrics", zap.Error(err))
		}
	}
	_ = zl.Sync()
}

func (a *app) run(ctx context.Context) {
	for {
		a.displayMenu()
		choice, ok := a.readLine()
		if !ok {
			return
		}

		switch strings.TrimSpace(choice) {
		case "1":
			a.enterScores()
		case "2":
			a.showScores()
		case "3":
			a.request.FullTime = !a.request.FullTime
			a.showToggle(models.FullTime.String(), a.request.FullTime)
		case "4":
			a.request.PartTime = !a.request.PartTime
			a.showToggle(models.PartTime.String(), a.request.PartTime)
		case "5":
			a.request.Correspondence = !a.request.Correspondence
			a.showToggle(models.Correspondence.String(), a.request.Correspondence)
		case "6":
			a.request.IncludeExtra = !a.request.IncludeExtra
			a.showToggle("Extra assessments", a.request.IncludeExtra)
		case "7":
			a.findProgrammes(ctx)
		case "8":
			a.explainProgramme()
		case "9":
			a.dataQualityReport()
		case "10":
			a.exportReport()
		case "11":
			color.Green("Thank you for using the Admission Programme Matcher!")
			return
		default:
			color.Red("Invalid choice. Please try again.")
		}
	}
}

func (a *app) displayMenu() {
	color.Cyan("\n=== Admission Programme Matcher ===")
	fmt.Fprintf(a.out, "%d programmes loaded from %s\n", len(a.rows), a.cfg.DataFile)
	fmt.Fprintln(a.out, "1. Enter Exam Scores")
	fmt.Fprintln(a.out, "2. Show Scores and Options")
	fmt.Fprintf(a.out, "3. Toggle %s [%s]\n", models.FullTime, onOff(a.request.FullTime))
	fmt.Fprintf(a.out, "4. Toggle %s [%s]\n", models.PartTime, onOff(a.request.PartTime))
	fmt.Fprintf(a.out, "5. Toggle %s [%s]\n", models.Correspondence, onOff(a.request.Correspondence))
	fmt.Fprintf(a.out, "6. Toggle Extra Assessments [%s]\n", onOff(a.request.IncludeExtra))
	fmt.Fprintln(a.out, "7. Find Matching Programmes")
	fmt.Fprintln(a.out, "8. Explain Programme Requirements")
	fmt.Fprintln(a.out, "9. Data Quality Report")
	fmt.Fprintln(a.out, "10. Export Last Result to JSON")
	fmt.Fprintln(a.out, "11. Exit")
	fmt.Fprint(a.out, "\nEnter your choice (1-11): ")
}

func (a *app) readLine() (string, bool) {
	if !a.in.Scan() {
		return "", false
	}
	return a.in.Text(), true
}

func (a *app) prompt(label string) string {
	fmt.Fprint(a.out, label)
	line, _ := a.readLine()
	return strings.TrimSpace(line)
}

func (a *app) enterScores() {
	fmt.Fprintln(a.out, "Enter scores as 'Subject = score', one per line. Empty line to finish.")
	raw := make(map[string]int)
	for {
		fmt.Fprint(a.out, "> ")
		line, ok := a.readLine()
		if !ok || strings.TrimSpace(line) == "" {
			break
		}
		subject, score, err := parseScoreLine(line)
		if err != nil {
			color.Red("%v", err)
			continue
		}
		raw[subject] = score
	}

	if len(raw) == 0 {
		color.Yellow("No scores entered, keeping the previous ones.")
		return
	}
	a.request.Scores = models.NewCandidateScores(raw)
	a.lastReport = nil
	color.Green("Stored %d scores.", len(a.request.Scores))
}

// parseScoreLine reads "Subject = score" or "Subject: score". A score that
// is not a number counts as 0.
func parseScoreLine(line string) (string, int, error) {
	idx := strings.LastIndexAny(line, "=:")
	if idx < 0 {
		return "", 0, fmt.Errorf("expected 'Subject = score', got %q", strings.TrimSpace(line))
	}
	subject := strings.TrimSpace(line[:idx])
	if subject == "" {
		return "", 0, fmt.Errorf("missing subject name in %q", strings.TrimSpace(line))
	}
	return subject, importer.ParseInt(line[idx+1:]), nil
}

func (a *app) showScores() {
	if len(a.request.Scores) == 0 {
		color.Yellow("No scores entered yet.")
	} else {
		subjects := make([]string, 0, len(a.request.Scores))
		for subject := range a.request.Scores {
			subjects = append(subjects, subject)
		}
		sort.Strings(subjects)

		color.Yellow("\nExam Scores")
		table := tablewriter.NewWriter(a.out)
		table.SetHeader([]string{"Subject", "Score"})
		for _, subject := range subjects {
			table.Append([]string{subject, strconv.Itoa(a.request.Scores[subject])})
		}
		table.Render()
	}

	color.Yellow("\nOptions")
	table := tablewriter.NewWriter(a.out)
	table.SetHeader([]string{"Option", "Value"})
	for _, form := range models.AllForms {
		table.Append([]string{form.String(), onOff(requested(a.request, form))})
	}
	table.Append([]string{"Extra assessments", onOff(a.request.IncludeExtra)})
	table.Render()
}

func (a *app) showToggle(name string, on bool) {
	a.lastReport = nil
	if on {
		color.Green("%s: on", name)
		return
	}
	color.Yellow("%s: off", name)
}

func (a *app) findProgrammes(ctx context.Context) {
	if len(a.request.Scores) == 0 {
		color.Red("Enter exam scores first (option 1).")
		return
	}
	if len(a.request.Forms()) == 0 {
		color.Red("Select at least one enrollment form (options 3-5).")
		return
	}

	groups, stats, err := a.aggregator.Aggregate(ctx, a.rows, a.request)
	if err != nil {
		a.log.Error("evaluation failed", zap.Error(err))
		color.Red("Error evaluating programmes: %v", err)
		return
	}

	report := aggregator.BuildReport(a.request, groups)
	a.lastReport = &report
	renderReport(a.out, report)
	color.Cyan("\nMatched %d of %d programmes (%d without requirement text, %d without seats in the selected forms).",
		stats.Matched(), stats.Rows,
		stats.Outcomes[aggregator.OutcomeNoRequirements],
		stats.Outcomes[aggregator.OutcomeNoSeats],
	)
}

func (a *app) explainProgramme() {
	code := a.prompt("Enter programme code (e.g. 09.03.01): ")
	if code == "" {
		return
	}

	found := 0
	for _, row := range a.rows {
		if !strings.EqualFold(row.Code, code) {
			continue
		}
		found++
		renderExplanation(a.out, a.matcher, row, a.request)
	}
	if found == 0 {
		color.Red("No programme with code %s in the admission plan.", code)
	}
}

func (a *app) dataQualityReport() {
	s := a.importStats
	if s != nil {
		color.Yellow("\nImport")
		table := tablewriter.NewWriter(a.out)
		table.SetHeader([]string{"Metric", "Value"})
		table.Append([]string{"Records read", strconv.Itoa(s.TotalProcessed)})
		table.Append([]string{"Programmes loaded", strconv.Itoa(s.ValidRecords)})
		table.Append([]string{"Records skipped", strconv.Itoa(s.SkippedRecords)})
		table.Append([]string{"Missing columns", strings.Join(s.MissingColumns, ", ")})
		for _, match := range s.FuzzyMatches {
			table.Append([]string{
				"Column matched approximately",
				fmt.Sprintf("%s -> %s (%.0f%%)", match.DestinationColumn, match.SourceColumn, match.Confidence*100),
			})
		}
		table.Render()
	}

	issues := collectIssues(a.rows)
	if len(issues) == 0 {
		color.Green("\nEvery requirement text was read completely.")
		return
	}
	renderIssues(a.out, issues)
}

func (a *app) exportReport() {
	if a.lastReport == nil {
		color.Red("Run a search first (option 7).")
		return
	}

	path := a.prompt(fmt.Sprintf("Output file [%s]: ", defaultExportFile))
	if path == "" {
		path = defaultExportFile
	}
	if err := writeReportFile(path, *a.lastReport); err != nil {
		a.log.Error("export failed", zap.String("file", path), zap.Error(err))
		color.Red("Error exporting report: %v", err)
		return
	}
	a.log.Info("report exported", zap.String("file", path), zap.Int("programmes", a.lastReport.ProgramCount()))
	color.Green("Exported %d programmes to %s", a.lastReport.ProgramCount(), path)
}

func requested(req models.MatchRequest, form models.EnrollmentForm) bool {
	for _, f := range req.Forms() {
		if f == form {
			return true
		}
	}
	return false
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}
