package cssval

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ProcessOutput is the raw result of one validator invocation.
type ProcessOutput struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Err      error // why the process could not run, if it could not
}

// Normalize extracts the diagnostics for filePath from raw validator output.
//
// Errors whose message names an unknown property listed in config.Tolerate
// are downgraded to warnings; they are kept only when includeWarnings is set.
// Warnings the engine tags as deprecations are dropped unless
// includeDeprecations is set. Diagnostics attributed to other sources (for
// example imported stylesheets) are dropped. Both lists keep the order in
// which the engine emitted them.
//
// ErrNoStructuredOutput is returned when no output channel holds a JSON object.
func Normalize(out ProcessOutput, filePath string, includeWarnings, includeDeprecations bool, config ValidationConfig) ([]Diagnostic, []Diagnostic, error) {
	payload, err := extractPayload(out.Stdout, out.Stderr)
	if err != nil {
		return nil, nil, err
	}

	file, err := filepath.Abs(filePath)
	if err != nil {
		return nil, nil, fmt.Errorf("resolving %s: %w", filePath, err)
	}

	root := payloadRoot(payload)
	tolerate := config.tolerateSet()

	errs := []Diagnostic{}
	warns := []Diagnostic{}

	for _, item := range itemsOf(root, errorKeys) {
		if !attributedTo(stringField(item, sourceKeys), file) {
			continue
		}
		d := toDiagnostic(item, SeverityError)

		if name, ok := ToleratedProperty(d.Message); ok {
			if _, tolerated := tolerate[name]; tolerated {
				if includeWarnings {
					d.Severity = SeverityWarning
					warns = append(warns, d)
				}
				continue
			}
		}
		errs = append(errs, d)
	}

	if !includeWarnings {
		return errs, warns, nil
	}

	for _, item := range itemsOf(root, warningKeys) {
		if !attributedTo(stringField(item, sourceKeys), file) {
			continue
		}
		if !includeDeprecations && isDeprecation(item) {
			continue
		}
		warns = append(warns, toDiagnostic(item, SeverityWarning))
	}

	return errs, warns, nil
}

func toDiagnostic(item map[string]any, severity Severity) Diagnostic {
	return Diagnostic{
		Line:     intField(item, lineKeys),
		Column:   intField(item, columnKeys),
		Message:  cleanMessage(stringField(item, messageKeys)),
		Severity: severity,
	}
}

// cleanMessage trims whitespace and strips one trailing colon.
func cleanMessage(msg string) string {
	msg = strings.TrimSpace(msg)
	msg = strings.TrimSuffix(msg, ":")
	return strings.TrimSpace(msg)
}

func isDeprecation(item map[string]any) bool {
	return strings.Contains(strings.ToLower(stringField(item, categoryKeys)), "deprecat")
}
