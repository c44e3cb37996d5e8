package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate a default .cssval.yaml config file",
	Long:  `Create a .cssval.yaml configuration file in the current directory with sensible defaults.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		force, _ := cmd.Flags().GetBool("force")

		if _, err := os.Stat(".cssval.yaml"); err == nil && !force {
			return fmt.Errorf(".cssval.yaml already exists (use --force to overwrite)")
		}

		if err := os.WriteFile(".cssval.yaml", []byte(defaultConfig), 0644); err != nil {
			return fmt.Errorf("writing config file: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), "Created .cssval.yaml")
		return nil
	},
}

const defaultConfig = `# cssval configuration
# Environment variables override this file: CSSVAL_PROFILE, CSSVAL_VALIDATE_JOBS,
# CSSVAL_ENGINE_CACHE_DIR, ... Command-line flags override both.

# Shared settings
profile: css3          # css3 | css21 | css1 | svg
warning: 1             # 0 = none, 1 = normal, 2 = all
deprecations: false
errors-only: false
tolerate: []           # e.g. [zoom, text-size-adjust]
json: false
color: false
verbose: false

# Validation run
validate:
  jobs: 1
  timeout: 60s
  exclude: []          # e.g. ["vendor/**", "**/*.min.css"]
  respect-gitignore: false
  print-lines: false

# Validator engine
engine:
  java: java
  cache-dir: ""        # default: <user cache dir>/cssval
  sources: []          # default: GitHub release, then w3.org
  download-timeout: 2m
`

func init() {
	initCmd.Flags().Bool("force", false, "Overwrite existing config file")
}
