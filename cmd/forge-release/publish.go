// Command forge-release publish: the single-shot path run on every ordinary
// pipeline trigger.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/input-output-hk/catalyst-forge-release/release"
)

const (
	// FlagTag carries the pushed tag name for tag-push triggers.
	FlagTag = "tag"

	// FlagBranch carries the pushed branch name for branch-push triggers.
	FlagBranch = "branch"

	// FlagDefault marks the pushed branch as the repository default.
	FlagDefault = "default"
)

func newPublishCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "publish {--tag NAME | --branch NAME [--default]}",
		Short: "Resolve one deploy tag from the trigger and publish it",
		Example: `  forge-release publish --tag v4.1.0
  forge-release publish --branch master --default
  forge-release publish --branch feature-x`,
		RunE: runPublish,
	}

	cmd.Flags().String(FlagTag, "", "pushed tag name (tag-push trigger)")
	cmd.Flags().String(FlagBranch, "", "pushed branch name (branch-push trigger)")
	cmd.Flags().Bool(FlagDefault, false, "the pushed branch is the repository's default branch")
	cmd.MarkFlagsMutuallyExclusive(FlagTag, FlagBranch)

	return cmd
}

func runPublish(cmd *cobra.Command, _ []string) error {
	trigger, err := triggerFromFlags(cmd)
	if err != nil {
		return err
	}

	app, err := buildApp(cmd)
	if err != nil {
		return err
	}

	job, err := app.orchestrator.RunOnce(cmd.Context(), trigger)
	if err != nil {
		return err
	}

	app.trackJobs(cmd.Context(), job)

	if job.Failed() {
		return fmt.Errorf("publish %s: %w", job.String(), job.Err)
	}
	return nil
}

// triggerFromFlags builds the trigger union from the flag surface.
func triggerFromFlags(cmd *cobra.Command) (release.Trigger, error) {
	tag, _ := cmd.Flags().GetString(FlagTag)
	branch, _ := cmd.Flags().GetString(FlagBranch)
	isDefault, _ := cmd.Flags().GetBool(FlagDefault)

	switch {
	case tag != "":
		return release.TagPush{Tag: tag}, nil
	case branch != "":
		return release.BranchPush{Branch: branch, IsDefault: isDefault}, nil
	default:
		return nil, fmt.Errorf("one of --%s or --%s is required", FlagTag, FlagBranch)
	}
}
