package cssval

import (
	"fmt"
	"io"
)

// OutputFormat selects how a run is written out.
type OutputFormat string

const (
	// OutputText is the line-oriented console report.
	OutputText OutputFormat = "text"
	// OutputJSON is a single JSON document holding the RunSummary.
	OutputJSON OutputFormat = "json"
)

// DetermineOutputFormat selects the output format from the --format flag and
// the output-as-data setting. Output-as-data always means JSON; unknown
// formats fall back to text.
func DetermineOutputFormat(formatFlag string, asData bool) OutputFormat {
	if asData {
		return OutputJSON
	}

	switch formatFlag {
	case "json":
		return OutputJSON
	default:
		return OutputText
	}
}

// WriteOutput writes a finished run in the given format. For text output
// every FileResult is printed before the summary line; callers that already
// reported results incrementally only need PrintSummary.
func WriteOutput(w io.Writer, summary *RunSummary, format OutputFormat, config ReportConfig) error {
	switch format {
	case OutputJSON:
		return WriteJSON(w, summary)
	case OutputText:
		reporter := NewReporter(w, config)
		for _, result := range summary.Results {
			reporter.PrintResult(result)
		}
		reporter.PrintSummary(summary)
		return nil
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
