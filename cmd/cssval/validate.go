package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"github.com/yacobolo/cssval"
)

// errValidationFailed signals that the run completed but some files failed.
var errValidationFailed = errors.New("validation failed")

var validateCmd = &cobra.Command{
	Use:   "validate [path]",
	Short: "Validate a CSS file or a directory of stylesheets",
	Long: `Run the W3C CSS validator on a file, or on every .css file under a
directory (default: the current directory). Exits 1 when any file fails.`,
	Args: cobra.MaximumNArgs(1),
	PreRunE: func(cmd *cobra.Command, _ []string) error {
		return loadConfig(cmd)
	},
	RunE: runValidate,
}

func init() {
	addValidateFlags(validateCmd)
}

// addValidateFlags registers the validation flags on cmd. The root command
// carries them too so `cssval styles/` works without the subcommand.
func addValidateFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("profile", "css3", "CSS profile: css3|css21|css1|svg")
	f.Int("warning", 1, "Warning level: 0 (none), 1 (normal), 2 (all)")
	f.Bool("deprecations", false, "Report deprecation warnings")
	f.Bool("errors-only", false, "Ignore warnings for pass/fail and output")
	f.StringSlice("tolerate", nil, "Properties whose \"doesn't exist\" errors become warnings")
	f.Bool("json", false, "Write the run summary as JSON")
	f.String("format", "", "Output format: text|json")
	f.Int("jobs", 1, "Files validated in parallel")
	f.Duration("timeout", 60*time.Second, "Timeout per validator run")
	f.StringSlice("exclude", nil, "Glob patterns to skip, relative to a directory target")
	f.Bool("respect-gitignore", false, "Skip files ignored by the directory's .gitignore")
	f.Bool("print-lines", false, "Show the source line under each diagnostic")

	_ = cmd.RegisterFlagCompletionFunc("profile", cobra.FixedCompletions(profileNames, cobra.ShellCompDirectiveNoFileComp))
	_ = cmd.RegisterFlagCompletionFunc("format", cobra.FixedCompletions([]string{"text", "json"}, cobra.ShellCompDirectiveNoFileComp))
}

var profileNames = []string{
	string(cssval.ProfileCSS3),
	string(cssval.ProfileCSS21),
	string(cssval.ProfileCSS1),
	string(cssval.ProfileSVG),
}

func runValidate(cmd *cobra.Command, args []string) error {
	target := "."
	if len(args) > 0 {
		target = args[0]
	}

	config := buildValidationConfig()
	quiet := getBoolWithFallback("quiet", "quiet", false)
	format := cssval.DetermineOutputFormat(getStringWithFallback("format", "format", ""), config.OutputAsData)
	out := cmd.OutOrStdout()

	logger := newLogger(cmd.ErrOrStderr(), getBoolWithFallback("verbose", "verbose", false))
	opts := []cssval.Option{
		cssval.WithLogger(logger),
		cssval.WithResolver(newProvisioner(engineLogger(logger))),
		cssval.WithJava(javaCommand()),
		cssval.WithTimeout(getDurationWithFallback("timeout", "validate.timeout", 60*time.Second)),
		cssval.WithJobs(getIntWithFallback("jobs", "validate.jobs", 1)),
	}

	// Text output is reported file by file as results arrive.
	var reporter *cssval.Reporter
	if !quiet && format == cssval.OutputText {
		reporter = cssval.NewReporter(out, buildReportConfig(config))
		opts = append(opts, cssval.WithProgress(reporter.PrintResult))
	}

	summary, err := cssval.NewValidator(opts...).Validate(cmd.Context(), target, config)
	if err != nil {
		return err
	}

	if !quiet {
		if reporter != nil {
			reporter.PrintSummary(summary)
		} else if err := cssval.WriteOutput(out, summary, format, buildReportConfig(config)); err != nil {
			return fmt.Errorf("writing output: %w", err)
		}
	}

	if summary.Failed > 0 {
		return fmt.Errorf("%w: %d of %d files", errValidationFailed, summary.Failed, len(summary.Results))
	}
	return nil
}

// newLogger returns the diagnostic logger: debug level when verbose, warnings otherwise.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
