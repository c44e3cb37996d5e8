package cssval

import (
	"encoding/json"
	"io"
)

// WriteJSON writes the summary as indented JSON:
// {passed, failed, results: [{file, ok, errors, warnings}]}.
func WriteJSON(w io.Writer, summary *RunSummary) error {
	if summary == nil {
		summary = newRunSummary(nil)
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(summary)
}
