package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sevigo/repo-pilot/internal/gitutil"
)

var (
	feedback   string
	docsOutput string
)

var issueCmd = &cobra.Command{
	Use:   "issue <owner/repo> [number]",
	Short: "Analyze an issue and propose an implementation plan",
	Long: `Analyze an issue against the repository structure and propose an
implementation plan, and a fix when the model is confident.

Examples:
  repo-pilot issue octo/app 42
  repo-pilot issue https://github.com/octo/app/issues/42 --feedback "keep the public API unchanged"`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(_ *cobra.Command, args []string) error {
		t, err := target(args, gitutil.KindIssue)
		if err != nil {
			return err
		}
		return withServices(context.Background(), func(r *runner) error {
			timer := newStepTimer(verbose)
			timer.step(fmt.Sprintf("Analyzing issue #%d in %s", t.Number, t.FullName()))
			analysis, err := r.Pipeline.AnalyzeIssue(context.Background(), r.sess, t.Owner, t.Repo, int(t.Number), feedback)
			if err != nil {
				return fmt.Errorf("failed to analyze issue: %w", err)
			}
			timer.done()
			if outputJSON {
				return printJSON(analysis)
			}
			printIssueAnalysis(analysis)
			return nil
		})
	},
}

var reviewCmd = &cobra.Command{
	Use:   "review <owner/repo> [number]",
	Short: "Review a pull request",
	Long: `Review a pull request from its diff and the full content of every changed file.

Examples:
  repo-pilot review https://github.com/octo/app/pull/123
  repo-pilot review octo/app 123 --json`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(_ *cobra.Command, args []string) error {
		t, err := target(args, gitutil.KindPull)
		if err != nil {
			return err
		}
		return withServices(context.Background(), func(r *runner) error {
			timer := newStepTimer(verbose)
			timer.step(fmt.Sprintf("Reviewing pull request #%d in %s", t.Number, t.FullName()))
			review, err := r.Pipeline.ReviewPullRequest(context.Background(), r.sess, t.Owner, t.Repo, int(t.Number))
			if err != nil {
				return fmt.Errorf("failed to review pull request: %w", err)
			}
			timer.done()
			if outputJSON {
				return printJSON(review)
			}
			printReview(review)
			return nil
		})
	},
}

var ciCmd = &cobra.Command{
	Use:   "ci <owner/repo> [run-id]",
	Short: "Find the root cause of a failed workflow run",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(_ *cobra.Command, args []string) error {
		t, err := target(args, gitutil.KindRun)
		if err != nil {
			return err
		}
		return withServices(context.Background(), func(r *runner) error {
			timer := newStepTimer(verbose)
			timer.step(fmt.Sprintf("Analyzing workflow run %d in %s", t.Number, t.FullName()))
			analysis, err := r.Pipeline.AnalyzeWorkflowRun(context.Background(), r.sess, t.Owner, t.Repo, t.Number)
			if err != nil {
				return fmt.Errorf("failed to analyze workflow run: %w", err)
			}
			timer.done()
			if outputJSON {
				return printJSON(analysis)
			}
			printCIAnalysis(analysis)
			return nil
		})
	},
}

var docsCmd = &cobra.Command{
	Use:   "docs <owner/repo>",
	Short: "Generate technical documentation from the README",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		t, err := target(args, gitutil.KindRepo)
		if err != nil {
			return err
		}
		return withServices(context.Background(), func(r *runner) error {
			timer := newStepTimer(verbose)
			timer.step("Generating documentation for " + t.FullName())
			doc, err := r.Pipeline.GenerateDocumentation(context.Background(), r.sess, t.Owner, t.Repo)
			if err != nil {
				return fmt.Errorf("failed to generate documentation: %w", err)
			}
			timer.done()

			if docsOutput != "" {
				if err := os.WriteFile(docsOutput, []byte(doc.Content), 0o600); err != nil {
					return fmt.Errorf("failed to write %s: %w", docsOutput, err)
				}
				successColor.Printf("✅ Documentation written to %s\n", docsOutput)
				return nil
			}
			if outputJSON {
				return printJSON(doc)
			}
			printMarkdown(doc.Content)
			return nil
		})
	},
}

func init() { //nolint:gochecknoinits // Cobra command registration
	issueCmd.Flags().StringVarP(&feedback, "feedback", "f", "", "Feedback on a previous analysis to take into account")
	docsCmd.Flags().StringVarP(&docsOutput, "output", "o", "", "Write the documentation to a file")
	rootCmd.AddCommand(issueCmd, reviewCmd, ciCmd, docsCmd)
}

// stepTimer tracks timing for verbose output. It stays silent when stdout
// carries JSON.
type stepTimer struct {
	start   time.Time
	verbose bool
	quiet   bool
}

func newStepTimer(verbose bool) *stepTimer {
	return &stepTimer{verbose: verbose, quiet: outputJSON}
}

func (t *stepTimer) step(name string) {
	t.start = time.Now()
	if !t.quiet {
		titleColor.Printf("🔧 %s...\n", name)
	}
}

func (t *stepTimer) done() {
	if t.verbose && !t.quiet {
		successColor.Printf("   ✓ Done (%s)\n", time.Since(t.start).Round(time.Millisecond))
	}
}
