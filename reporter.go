package cssval

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// ReportConfig configures the console report.
type ReportConfig struct {
	Validation ValidationConfig
	UseColors  bool // force colors even when stdout is not a terminal
	PrintLines bool // print the offending source line under each diagnostic
}

// Reporter writes the line-oriented console report
type Reporter struct {
	w            io.Writer
	useColors    bool
	printLines   bool
	showWarnings bool
}

// NewReporter creates a new reporter with the given configuration
func NewReporter(w io.Writer, config ReportConfig) *Reporter {
	return &Reporter{
		w:            w,
		useColors:    shouldUseColors(config.UseColors),
		printLines:   config.PrintLines,
		showWarnings: !config.Validation.ErrorsOnly && config.Validation.WarningLevel > 0,
	}
}

// shouldUseColors determines if colors should be enabled
func shouldUseColors(force bool) bool {
	if force {
		return true
	}

	if os.Getenv("NO_COLOR") != "" {
		return false
	}

	if os.Getenv("FORCE_COLOR") != "" {
		return true
	}

	if os.Getenv("GITHUB_ACTIONS") == "true" {
		return true
	}

	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// PrintResult writes one file's outcome: a pass/fail marker with the file
// name, then for failed files one line per error and, unless warnings are
// hidden, one line per warning.
func (r *Reporter) PrintResult(result FileResult) {
	name := RelativePath(result.File)

	mark, style := reportPalette.outcome(result.OK)
	fmt.Fprintf(r.w, "%s %s\n", r.paint(style, mark), name)
	if result.OK {
		return
	}

	for _, d := range result.Errors {
		r.printDiagnostic(name, result.File, d)
	}
	if !r.showWarnings {
		return
	}
	for _, d := range result.Warnings {
		r.printDiagnostic(name, result.File, d)
	}
}

// printDiagnostic formats a diagnostic as `<file>:<line>[:<col>] - <message>`.
func (r *Reporter) printDiagnostic(name, path string, d Diagnostic) {
	fmt.Fprintf(r.w, "  %s - %s\n",
		r.paint(reportPalette.location, formatLocation(name, d)),
		r.paint(reportPalette.severity(d.Severity), d.Message))

	if !r.printLines {
		return
	}
	line, ok := sourceLine(path, d.Line)
	if !ok {
		return
	}
	fmt.Fprintf(r.w, "\t%s\n", r.paint(reportPalette.excerpt, line))
	if col := diagnosticColumn(d, line); col > 0 {
		fmt.Fprintf(r.w, "\t%s\n", r.paint(reportPalette.warning, r.buildCaretIndicator(line, col)))
	}
}

// formatLocation renders <name>:<line>[:<col>]. The line is always present;
// an unknown line prints as 0.
func formatLocation(name string, d Diagnostic) string {
	line := max(d.Line, 0)
	if d.Line <= 0 || d.Column <= 0 {
		return fmt.Sprintf("%s:%d", name, line)
	}
	return fmt.Sprintf("%s:%d:%d", name, line, d.Column)
}

// buildCaretIndicator creates the "^" indicator aligned with the column.
// Tabs in the prefix are kept so the caret lines up with the printed source.
func (r *Reporter) buildCaretIndicator(sourceLine string, column int) string {
	if column <= 0 {
		return "^"
	}

	prefixLen := column - 1
	if prefixLen > len(sourceLine) {
		prefixLen = len(sourceLine)
	}

	var padding strings.Builder
	for _, ch := range sourceLine[:prefixLen] {
		if ch == '\t' {
			padding.WriteRune('\t')
		} else {
			padding.WriteRune(' ')
		}
	}

	return padding.String() + "^"
}

// PrintSummary writes the closing `N passed, M failed` line.
func (r *Reporter) PrintSummary(summary *RunSummary) {
	fmt.Fprintln(r.w, "")

	passed := fmt.Sprintf("%d passed", summary.Passed)
	failed := fmt.Sprintf("%d failed", summary.Failed)
	if summary.Failed > 0 {
		failed = r.paint(reportPalette.fail, failed)
	} else {
		passed = r.paint(reportPalette.pass, passed)
	}
	fmt.Fprintf(r.w, "%s, %s (%s)\n", passed, failed, pluralizeCount(len(summary.Results), "file", "files"))
}

// pluralizeCount returns a formatted string with count and singular/plural form
func pluralizeCount(count int, singular, plural string) string {
	if count == 1 {
		return fmt.Sprintf("%d %s", count, singular)
	}
	return fmt.Sprintf("%d %s", count, plural)
}

// UseColors returns whether colors are enabled
func (r *Reporter) UseColors() bool {
	return r.useColors
}
