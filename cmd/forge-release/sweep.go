// Command forge-release sweep: the scheduled rebuild of every historically
// supported release.
package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/input-output-hk/catalyst-forge-release/git"
	"github.com/input-output-hk/catalyst-forge-release/sweep"
)

// FlagRepo points at the checkout whose tags are enumerated.
const FlagRepo = "repo"

func newSweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Rebuild every historical tag matching the support pattern",
		Long: `Enumerate all tags in the repository, keep those matching the configured
support pattern, and rebuild each one. Failures are isolated per tag: every
eligible release is attempted and the full outcome report is printed before
the command exits non-zero.`,
		Example: "  forge-release sweep --repo /src/server",
		RunE:    runSweep,
	}

	cmd.Flags().String(FlagRepo, ".", "path to the git checkout to enumerate tags from")

	return cmd
}

func runSweep(cmd *cobra.Command, _ []string) error {
	repoPath, _ := cmd.Flags().GetString(FlagRepo)
	repo, err := git.Open(repoPath)
	if err != nil {
		return err
	}

	app, err := buildApp(cmd, sweep.WithLister(repo))
	if err != nil {
		return err
	}

	result, err := app.orchestrator.Sweep(cmd.Context())
	if err != nil {
		return err
	}

	app.trackJobs(cmd.Context(), result.Jobs...)
	printReport(result)

	if result.Failed() {
		_, failed := result.Counts()
		return fmt.Errorf("%d of %d rebuilds failed", failed, len(result.Jobs))
	}
	return nil
}

// printReport enumerates every attempted reference with its outcome.
func printReport(result *sweep.Result) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "REFERENCE\tDEPLOY TAG\tOUTCOME")
	for _, job := range result.Jobs {
		outcome := "ok"
		if job.Failed() {
			outcome = "failed: " + job.Err.Error()
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", job.Ref, job.Tag, outcome)
	}
	w.Flush()
}
