package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/yacobolo/cssval/internal/engine"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the cached validator jar",
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return loadConfig(cmd)
	},
}

var cachePathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print where the validator jar is cached",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), newProvisioner().Path())
		return nil
	},
}

var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether a usable validator jar is cached",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		status, err := newProvisioner().Status()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "path:   %s\n", status.Path)
		switch {
		case !status.Exists:
			fmt.Fprintln(out, "state:  missing (downloaded on next run)")
		case !status.Valid:
			fmt.Fprintln(out, "state:  corrupt (replaced on next run)")
		default:
			fmt.Fprintf(out, "state:  ok (%d bytes)\n", status.Size)
		}
		return nil
	},
}

var cacheFetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download the validator jar now if it is not cached",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		logger := newLogger(cmd.ErrOrStderr(), getBoolWithFallback("verbose", "verbose", false))

		path, err := newProvisioner(engineLogger(logger)).Resolve(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

var cacheCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove the cached validator jar",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		p := newProvisioner()
		if err := p.Clear(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", p.Path())
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cachePathCmd)
	cacheCmd.AddCommand(cacheStatusCmd)
	cacheCmd.AddCommand(cacheFetchCmd)
	cacheCmd.AddCommand(cacheCleanCmd)
}

func engineLogger(logger *slog.Logger) engine.Option {
	return engine.WithLogger(logger.With(slog.String("component", "engine")))
}
