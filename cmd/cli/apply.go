package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sevigo/repo-pilot/internal/core"
	"github.com/sevigo/repo-pilot/internal/gitutil"
	"github.com/sevigo/repo-pilot/internal/pipeline"
)

var (
	applyFrom   string
	applyNumber int64
	applyFile   string
)

var applyCmd = &cobra.Command{
	Use:   "apply <owner/repo>",
	Short: "Publish a proposed fix as a pull request",
	Long: `Publish a fix proposal as a branch, a commit and a pull request against the
default branch. The proposal is read from a stored analysis or from a JSON file.

Examples:
  repo-pilot apply octo/app --from issue --number 42
  repo-pilot apply octo/app --from ci --number 9876543210
  repo-pilot apply octo/app --file proposal.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		t, err := target(args, gitutil.KindRepo)
		if err != nil {
			return err
		}
		if (applyFile == "") == (applyFrom == "") {
			return fmt.Errorf("exactly one of --file or --from is required")
		}

		ctx := context.Background()
		return withServices(ctx, func(r *runner) error {
			proposal, err := loadProposal(ctx, r, t)
			if err != nil {
				return err
			}

			timer := newStepTimer(verbose)
			timer.step(fmt.Sprintf("Publishing %q to %s", proposal.BranchName, t.FullName()))
			result, err := r.Pipeline.ApplyFix(ctx, r.sess, t.Owner, t.Repo, proposal)
			if err != nil {
				return fmt.Errorf("failed to apply fix: %w", err)
			}
			timer.done()
			if outputJSON {
				return printJSON(result)
			}
			successColor.Printf("✅ Pull request opened: %s\n", result.PRURL)
			dimColor.Printf("   Branch: %s\n   Commit: %s\n", result.BranchName, result.CommitSHA)
			return nil
		})
	},
}

func loadProposal(ctx context.Context, r *runner, t gitutil.Target) (*core.FixProposal, error) {
	if applyFile != "" {
		raw, err := os.ReadFile(applyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", applyFile, err)
		}
		var proposal core.FixProposal
		if err := json.Unmarshal(raw, &proposal); err != nil {
			return nil, fmt.Errorf("failed to parse proposal in %s: %w", applyFile, err)
		}
		return &proposal, nil
	}

	source := pipeline.ProposalSource(applyFrom)
	switch source {
	case pipeline.SourceIssue, pipeline.SourcePR, pipeline.SourceCI:
	default:
		return nil, fmt.Errorf("unknown source %q, expected issue, pr or ci", applyFrom)
	}
	if applyNumber <= 0 {
		return nil, fmt.Errorf("--number is required with --from")
	}
	proposal, err := r.Pipeline.StoredProposal(ctx, t.Owner, t.Repo, source, applyNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to load stored proposal: %w", err)
	}
	return proposal, nil
}

func init() { //nolint:gochecknoinits // Cobra command registration
	applyCmd.Flags().StringVar(&applyFrom, "from", "", "Stored analysis holding the fix: issue, pr or ci")
	applyCmd.Flags().Int64VarP(&applyNumber, "number", "n", 0, "Issue number, pull request number or workflow run ID")
	applyCmd.Flags().StringVar(&applyFile, "file", "", "JSON file holding a fix proposal")
	rootCmd.AddCommand(applyCmd)
}
