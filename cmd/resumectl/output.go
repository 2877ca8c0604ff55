package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fadilmartias/resume-analyzer/internal/report"
	"github.com/fadilmartias/resume-analyzer/internal/result"
	"github.com/fadilmartias/resume-analyzer/internal/session"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorBold   = "\033[1m"
)

func colorize(color, text string) string {
	if noColor {
		return text
	}
	return color + text + colorReset
}

func printSuccess(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(os.Stderr, colorize(colorGreen, "✓ "+msg))
}

func printError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(os.Stderr, colorize(colorRed, "✗ "+msg))
}

func printWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(os.Stderr, colorize(colorYellow, "⚠ "+msg))
}

func printStep(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(os.Stderr, colorize(colorCyan, "→ "+msg))
}

// printPhase reports session progress on stderr.
func printPhase(st session.State) {
	switch st.Phase {
	case session.PhaseSubmitting:
		printStep("Submitting resume for %s", st.Email)
	case session.PhaseWaiting:
		printStep("Submission accepted, waiting for analysis")
	case session.PhasePolling:
		printStep("Checking for results (attempt %d)", st.Attempts)
	case session.PhaseTimedOut:
		printWarning("Analysis is taking longer than expected; try `resumectl poll` later")
	case session.PhaseCancelled:
		printWarning("Cancelled")
	}
}

// printResults writes a plain-text report of r to w.
func printResults(w io.Writer, r result.Results) {
	bold := func(s string) string { return colorize(colorBold, s) }

	fmt.Fprintf(w, "%s %s <%s>\n", bold("Candidate:"), r.Name, r.Email)
	if r.JobTitle != "" || r.CompanyName != "" {
		fmt.Fprintf(w, "%s %s at %s\n", bold("Role:"), r.JobTitle, r.CompanyName)
	}
	if r.ReportDate != "" {
		fmt.Fprintf(w, "%s %s\n", bold("Date:"), r.ReportDate)
	}
	fmt.Fprintf(w, "%s %s\n", bold("ATS score:"), r.ScoreLabel())

	if len(r.Breakdown) > 0 {
		fmt.Fprintln(w, bold("\nBreakdown"))
		for _, c := range r.Breakdown {
			fmt.Fprintf(w, "  %-24s %s\n", c.Label, result.FormatPercent(c.Score))
		}
	}

	fmt.Fprintln(w, bold("\nMissing skills"))
	if len(r.MissingSkills) == 0 {
		fmt.Fprintf(w, "  %s\n", report.NoMissingSkills)
	} else {
		fmt.Fprintf(w, "  %s\n", strings.Join(r.MissingSkills, ", "))
	}

	printList(w, bold("\nEvaluation"), r.Evaluation, report.NoEvaluation)
	printList(w, bold("\nMentorship"), r.Mentorship, report.NoMentorship)

	if r.CoverLetter != "" {
		fmt.Fprintln(w, bold("\nCover letter"))
		fmt.Fprintln(w, r.CoverLetter)
	}
}

func printList(w io.Writer, title string, items []string, empty string) {
	fmt.Fprintln(w, title)
	if len(items) == 0 {
		fmt.Fprintf(w, "  %s\n", empty)
		return
	}
	for _, item := range items {
		fmt.Fprintf(w, "  • %s\n", item)
	}
}
