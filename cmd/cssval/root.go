package main

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "cssval [path]",
	Short: "Validate stylesheets with the W3C CSS validator",
	Long: `Validate a CSS file or every stylesheet under a directory with the
W3C CSS validator. The validator jar is downloaded on first use and cached.
Requires a Java runtime.`,
	Args: cobra.MaximumNArgs(1),
	// Default behavior: run validate when no subcommand is given.
	// loadConfig must be called here because PreRunE of validateCmd
	// is not triggered when delegating via rootCmd.RunE.
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(cmd); err != nil {
			return err
		}
		return runValidate(cmd, args)
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Global persistent flags (inherited by all subcommands)
	pf := rootCmd.PersistentFlags()
	pf.BoolP("verbose", "v", false, "Enable verbose logging")
	pf.BoolP("quiet", "q", false, "Suppress all output (exit code only)")
	pf.Bool("color", false, "Force color output")
	pf.String("config", ".cssval.yaml", "Config file path")
	pf.String("java", "java", "Java runtime command")
	pf.String("cache-dir", "", "Directory caching the validator jar (default: user cache dir)")
	pf.StringSlice("source", nil, "Validator jar download URLs, tried in order")
	pf.Duration("download-timeout", 0, "Timeout per download attempt (default 2m)")

	addValidateFlags(rootCmd)

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(completionCmd)
	rootCmd.AddCommand(versionCmd)
}
