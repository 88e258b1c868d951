package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/nonsonwune/admission_match/models"
	"github.com/nonsonwune/admission_match/requirements"
)

var (
	groupTitle = color.New(color.FgYellow, color.Bold)
	notice     = color.New(color.FgYellow)
)

func renderReport(w io.Writer, report models.MatchReport) {
	if len(report.Results) == 0 {
		notice.Fprintln(w, "\nNo programmes match these scores and options.")
		return
	}

	for _, group := range report.Results {
		groupTitle.Fprintf(w, "\n%s (%d)\n", group.Name, len(group.Programs))

		table := tablewriter.NewWriter(w)
		table.SetHeader([]string{"Code", "Programme", "Exams", "Places"})
		table.SetAutoWrapText(false)
		table.SetRowLine(true)
		for _, p := range group.Programs {
			table.Append([]string{p.Code, p.Name, p.Exams, describePlaces(p.Places)})
		}
		table.Render()
	}
}

func describePlaces(places models.EnrollmentFormAvailability) string {
	lines := make([]string, 0, len(places))
	for _, p := range places {
		lines = append(lines, fmt.Sprintf("%s: %s", p.FormName, p.Description))
	}
	return strings.Join(lines, "\n")
}

func renderExplanation(w io.Writer, matcher *requirements.Matcher, row models.ProgramRow, req models.MatchRequest) {
	groupTitle.Fprintf(w, "\n%s %s\n", row.Code, row.Name)
	fmt.Fprintf(w, "Unit: %s, line %d\n", row.Unit, row.Line)
	fmt.Fprintf(w, "Requirements as written: %s\n", row.ExamText)

	result := requirements.ParseRequirements(row.ExamText)
	switch {
	case len(result.Variants) == 0:
		notice.Fprintln(w, "No requirement text, the programme is never matched.")
	case len(result.Variants) == 1 && len(result.Variants[0]) == 0:
		notice.Fprintln(w, "No requirement could be read from this text, any candidate meets it.")
	default:
		table := tablewriter.NewWriter(w)
		table.SetHeader([]string{"#", "Subjects", "Status"})
		table.SetAutoWrapText(false)
		for i, variant := range result.Variants {
			table.Append([]string{
				strconv.Itoa(i + 1),
				strings.ReplaceAll(variant.String(), "; ", "\n"),
				variantStatus(matcher, req, variant),
			})
		}
		table.Render()
	}

	if len(result.Issues) > 0 {
		notice.Fprintln(w, "Ignored fragments:")
		for _, issue := range result.Issues {
			fmt.Fprintf(w, "  - %q (%s)\n", issue.Clause, issue.Reason)
		}
	}

	seats := tablewriter.NewWriter(w)
	seats.SetHeader([]string{"Form", "Budget", "Paid"})
	for _, form := range models.AllForms {
		s := row.SeatsFor(form)
		seats.Append([]string{form.String(), strconv.Itoa(s.Budget), strconv.Itoa(s.Paid)})
	}
	seats.Render()
}

func variantStatus(matcher *requirements.Matcher, req models.MatchRequest, variant models.QualificationVariant) string {
	outcome := matcher.Evaluate(req.Scores, []models.QualificationVariant{variant}, req.IncludeExtra)
	switch {
	case outcome.Matched:
		return "met"
	case outcome.SkippedExtra > 0:
		return "needs extra assessment"
	default:
		return "not met"
	}
}

// rowIssue is a dropped requirement fragment of one admission plan row
type rowIssue struct {
	Line  int
	Code  string
	Issue requirements.Issue
}

func collectIssues(rows []models.ProgramRow) []rowIssue {
	var issues []rowIssue
	for _, row := range rows {
		if strings.TrimSpace(row.ExamText) == "" {
			continue
		}
		for _, issue := range requirements.ParseRequirements(row.ExamText).Issues {
			issues = append(issues, rowIssue{Line: row.Line, Code: row.Code, Issue: issue})
		}
	}
	return issues
}

func renderIssues(w io.Writer, issues []rowIssue) {
	counts := make(map[requirements.IssueReason]int)
	for _, ri := range issues {
		counts[ri.Issue.Reason]++
	}

	groupTitle.Fprintf(w, "\nRequirement fragments that were ignored (%d)\n", len(issues))
	summary := tablewriter.NewWriter(w)
	summary.SetHeader([]string{"Reason", "Count"})
	for _, reason := range []requirements.IssueReason{
		requirements.ReasonUnparsableClause,
		requirements.ReasonUnparsableAlternative,
		requirements.ReasonEmptyGroup,
		requirements.ReasonNoRequirements,
	} {
		if counts[reason] > 0 {
			summary.Append([]string{string(reason), strconv.Itoa(counts[reason])})
		}
	}
	summary.Render()

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Line", "Code", "Reason", "Fragment"})
	for _, ri := range issues {
		table.Append([]string{strconv.Itoa(ri.Line), ri.Code, string(ri.Issue.Reason), ri.Issue.Clause})
	}
	table.Render()
}

func writeReport(w io.Writer, report models.MatchReport) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("error encoding report: %w", err)
	}
	return nil
}

func writeReportFile(path string, report models.MatchReport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating %s: %w", path, err)
	}
	if err := writeReport(f, report); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
