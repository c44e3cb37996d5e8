package main

import (
	"fmt"
	"io"
	"runtime/debug"

	"github.com/spf13/cobra"
	"github.com/yacobolo/cssval/internal/engine"
)

// version is overridden at release time:
//
//	go build -ldflags "-X main.version=1.0.0" ./cmd/cssval
var version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the cssval version and validator engine details",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		writeVersion(cmd.OutOrStdout(), buildVersion(), verbose)
		return nil
	},
}

// buildVersion prefers the ldflags value, then the module version recorded
// by `go install`, then "dev".
func buildVersion() string {
	if version != "dev" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		if v := info.Main.Version; v != "" && v != "(devel)" {
			return v
		}
	}
	return version
}

// writeVersion prints the version line and, when verbose, the jar name and
// the sources it is fetched from.
func writeVersion(w io.Writer, v string, verbose bool) {
	fmt.Fprintf(w, "cssval %s\n", v)
	if !verbose {
		return
	}
	fmt.Fprintf(w, "engine: %s\n", engine.JarName)
	for _, src := range engine.DefaultSources {
		fmt.Fprintf(w, "source: %s\n", src)
	}
}
