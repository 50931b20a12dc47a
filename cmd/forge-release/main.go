// Command forge-release decides which container tags to build and push for a
// pipeline trigger, and rebuilds every historically supported release on the
// weekly schedule. It exits non-zero when any publish attempt fails.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

const (
	// FlagConfig points at the pipeline configuration file.
	FlagConfig = "config"

	// FlagVerbose enables debug logging.
	FlagVerbose = "verbose"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		// Cobra already printed usage errors; publish failures are logged
		// where they happen. The exit code is the contract.
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "forge-release",
		Short: "Container release tag resolution and rebuild sweeps",
		Long: `forge-release maps pipeline triggers to container deploy tags.

A pushed release tag (v4.1.0) publishes the stripped version (4.1.0), the
default branch publishes "latest", and any other branch publishes under its
own name. The sweep command rebuilds every historical tag matching the
configured support pattern.`,
		SilenceUsage:      true,
		DisableAutoGenTag: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().String(FlagConfig, "", "path to the pipeline config (defaults to $FORGE_RELEASE_CONFIG, then the XDG config dir)")
	cmd.PersistentFlags().BoolP(FlagVerbose, "v", false, "enable debug logging")

	cmd.AddCommand(newPublishCmd())
	cmd.AddCommand(newSweepCmd())

	return cmd
}

// newLogger builds the process logger from the verbose flag.
func newLogger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelInfo
	if verbose, _ := cmd.Flags().GetBool(FlagVerbose); verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
