package cssval

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-playground/validator/v10"
	"github.com/yacobolo/cssval/internal/engine"
)

// Sentinel errors returned by Validate.
var (
	// ErrHostUnavailable indicates the Java runtime is missing.
	ErrHostUnavailable = engine.ErrHostUnavailable

	// ErrProvisioningFailed indicates no source produced a valid validator jar.
	ErrProvisioningFailed = engine.ErrProvisioningFailed

	// ErrInputNotFound indicates the target path does not exist.
	ErrInputNotFound = errors.New("input not found")

	// ErrInputNotCSS indicates a single-file target without a .css extension.
	ErrInputNotCSS = errors.New("input is not a .css file")

	// ErrNoStructuredOutput indicates no output channel held a decodable JSON object.
	ErrNoStructuredOutput = errors.New("validator produced no structured output")

	// ErrInvalidConfig indicates a ValidationConfig that fails its rules.
	ErrInvalidConfig = errors.New("invalid validation config")
)

// Profile selects the CSS level the validator checks against.
type Profile string

// Supported profiles
const (
	ProfileCSS3  Profile = "css3"
	ProfileCSS21 Profile = "css21"
	ProfileCSS1  Profile = "css1"
	ProfileSVG   Profile = "svg"
)

// Severity classifies a diagnostic
type Severity string

// Severity constants
const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Diagnostic is a single issue reported for one file
type Diagnostic struct {
	Line     int      `json:"line"`     // 0 when unknown
	Column   int      `json:"column"`   // 0 when unknown
	Message  string   `json:"message"`  // trimmed, trailing colon stripped
	Severity Severity `json:"severity"` // "error" or "warning"
}

// FileResult is the outcome for one input file
type FileResult struct {
	File     string       `json:"file"` // absolute path
	OK       bool         `json:"ok"`
	Errors   []Diagnostic `json:"errors"`   // engine emission order
	Warnings []Diagnostic `json:"warnings"` // engine emission order
}

// RunSummary aggregates a run. Counts are derived from Results.
type RunSummary struct {
	Passed  int          `json:"passed"`
	Failed  int          `json:"failed"`
	Results []FileResult `json:"results"` // input file order
}

// ValidationConfig holds the settings for one validation run
type ValidationConfig struct {
	Profile             Profile  `validate:"oneof=css3 css21 css1 svg"`
	WarningLevel        int      `validate:"min=0,max=2"` // 0 none, 1 normal, 2 all
	IncludeDeprecations bool     // keep deprecation warnings
	ErrorsOnly          bool     // warnings ignored for pass/fail and display
	Tolerate            []string `validate:"dive,required"` // properties whose "doesn't exist" errors become warnings
	OutputAsData        bool     // machine-readable output, no incremental report
	Exclude             []string // doublestar patterns relative to a directory target
	RespectGitignore    bool     // skip files ignored by the target directory's .gitignore
}

var configValidate = validator.New()

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() ValidationConfig {
	return ValidationConfig{
		Profile:      ProfileCSS3,
		WarningLevel: 1,
	}
}

// Validate checks the config against its field rules.
func (c ValidationConfig) Validate() error {
	if err := configValidate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	for _, pattern := range c.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("%w: bad exclude pattern %q", ErrInvalidConfig, pattern)
		}
	}
	return nil
}

// IncludeWarnings reports whether warnings are collected at all.
func (c ValidationConfig) IncludeWarnings() bool {
	return !c.ErrorsOnly && c.WarningLevel > 0
}

// tolerateSet returns the lower-cased tolerate list as a set.
func (c ValidationConfig) tolerateSet() map[string]struct{} {
	set := make(map[string]struct{}, len(c.Tolerate))
	for _, name := range c.Tolerate {
		name = strings.ToLower(strings.TrimSpace(name))
		if name != "" {
			set[name] = struct{}{}
		}
	}
	return set
}

// newFileResult classifies a file: it passes when it has no errors and either
// no warnings or warnings are excluded by ErrorsOnly.
func newFileResult(file string, errs, warns []Diagnostic, config ValidationConfig) FileResult {
	if errs == nil {
		errs = []Diagnostic{}
	}
	if warns == nil {
		warns = []Diagnostic{}
	}
	return FileResult{
		File:     file,
		OK:       len(errs) == 0 && (len(warns) == 0 || config.ErrorsOnly),
		Errors:   errs,
		Warnings: warns,
	}
}

// newRunSummary derives the pass/fail counts from results.
func newRunSummary(results []FileResult) *RunSummary {
	if results == nil {
		results = []FileResult{}
	}
	summary := &RunSummary{Results: results}
	for _, r := range results {
		if r.OK {
			summary.Passed++
		} else {
			summary.Failed++
		}
	}
	return summary
}
