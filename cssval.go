// Package cssval validates stylesheets with the W3C CSS validator.
//
// The validator is a Java program. cssval downloads it on first use, caches
// it, runs it once per file and turns its loosely structured output into a
// stable result set.
//
// # Validation
//
// Validate a file or a directory tree:
//
//	config := cssval.DefaultConfig()
//	config.Tolerate = []string{"zoom", "text-size-adjust"}
//	summary, err := cssval.Validate(ctx, "web/styles", config)
//	if err != nil {
//		return err
//	}
//	fmt.Printf("%d passed, %d failed\n", summary.Passed, summary.Failed)
//
// Errors abort the run only when nothing can be validated at all: a missing
// Java runtime (ErrHostUnavailable), a jar that no source could provide
// (ErrProvisioningFailed) or a bad target (ErrInputNotFound, ErrInputNotCSS).
// Anything that goes wrong for a single file is reported as a failed
// FileResult.
//
// # Customizing
//
// NewValidator accepts options for the cache location, download sources,
// Java command, parallelism and logging. WithResolver and WithInvoker replace
// the provisioner and process runner entirely, which is how tests run
// without Java or network access.
//
// # CLI Tool
//
// The cssval command wraps this package:
//
//	cssval styles/                  # validate a directory
//	cssval --tolerate zoom app.css  # downgrade unknown-property errors
//	cssval --json styles/ > out.json
//	cssval cache status
package cssval
