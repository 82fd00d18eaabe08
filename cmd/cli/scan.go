package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sevigo/repo-pilot/internal/gitutil"
)

var triageCmd = &cobra.Command{
	Use:   "triage <owner/repo> [number]",
	Short: "Triage one issue, or every untriaged open issue",
	Long: `Triage decides whether an issue carries enough information to be worked on.
Issues lacking details get the needs-more-info label and a question for the
author. The others get the triage-complete label. Both labels can be renamed
in .repo-pilot.yml.

Without an issue number every open issue that carries neither label is triaged.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(_ *cobra.Command, args []string) error {
		t, err := gitutil.ParseTarget(args[0])
		if err != nil {
			return err
		}
		if t.Kind == gitutil.KindIssue || len(args) > 1 {
			if t, err = target(args, gitutil.KindIssue); err != nil {
				return err
			}
		}

		ctx := context.Background()
		return withServices(ctx, func(r *runner) error {
			timer := newStepTimer(verbose)
			if t.Kind == gitutil.KindIssue {
				timer.step(fmt.Sprintf("Triaging issue #%d in %s", t.Number, t.FullName()))
				result, err := r.Pipeline.TriageIssue(ctx, r.sess, t.Owner, t.Repo, int(t.Number))
				if err != nil {
					return fmt.Errorf("failed to triage issue: %w", err)
				}
				timer.done()
				if outputJSON {
					return printJSON(result)
				}
				printTriage(int(t.Number), result)
				return nil
			}

			timer.step("Triaging open issues in " + t.FullName())
			report, err := r.Pipeline.RunTriagePass(ctx, r.sess, t.Owner, t.Repo)
			if err != nil {
				return fmt.Errorf("failed to run triage pass: %w", err)
			}
			timer.done()
			if outputJSON {
				return printJSON(report)
			}
			printScanReport("TRIAGE PASS", report)
			return nil
		})
	},
}

var scanCmd = &cobra.Command{
	Use:   "scan <owner/repo>",
	Short: "Follow up on issues waiting for more information",
	Long: `Scans issues labelled needs-more-info. When the author has answered since the
label was added, the label is removed and the answer is acknowledged.`,
	Args: cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		t, err := target(args, gitutil.KindRepo)
		if err != nil {
			return err
		}
		ctx := context.Background()
		return withServices(ctx, func(r *runner) error {
			timer := newStepTimer(verbose)
			timer.step("Scanning issues awaiting information in " + t.FullName())
			report, err := r.Pipeline.RunWeeklyScan(ctx, r.sess, t.Owner, t.Repo)
			if err != nil {
				return fmt.Errorf("failed to run weekly scan: %w", err)
			}
			timer.done()
			if outputJSON {
				return printJSON(report)
			}
			printScanReport("WEEKLY SCAN", report)
			return nil
		})
	},
}

func init() { //nolint:gochecknoinits // Cobra command registration
	rootCmd.AddCommand(triageCmd, scanCmd)
}
