package cssval

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"
)

// ExtractJSON decodes the text between the first '{' and the last '}' as a
// JSON object. Log lines before or after the object are ignored.
func ExtractJSON(text string) (map[string]any, bool) {
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end <= start {
		return nil, false
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(text[start : end+1])))
	dec.UseNumber()

	var obj map[string]any
	if err := dec.Decode(&obj); err != nil || obj == nil {
		return nil, false
	}
	// the object must span the whole candidate
	if _, err := dec.Token(); err != io.EOF {
		return nil, false
	}
	return obj, true
}

// extractPayload finds the validator's JSON object. The engine is not
// consistent about which stream it writes to, so channels are tried in a
// fixed order: stdout, stderr, then both concatenated.
func extractPayload(stdout, stderr string) (map[string]any, error) {
	for _, text := range []string{stdout, stderr, stdout + stderr} {
		if obj, ok := ExtractJSON(text); ok {
			return obj, nil
		}
	}
	return nil, ErrNoStructuredOutput
}
